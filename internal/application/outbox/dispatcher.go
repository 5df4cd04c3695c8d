// Package outbox delivers verification emails asynchronously. Messages
// enqueued during a transaction are held back until the transaction commits,
// then pushed onto a bounded channel that a single worker drains.
package outbox

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/ports"
)

const defaultQueueSize = 256

// Dispatcher implements ports.EventDispatcher. It owns the channel between
// the request path and the sending worker.
type Dispatcher struct {
	queue  chan ports.OutboxMessage
	tx     ports.TransactionManager
	logger *logrus.Logger
}

func NewDispatcher(tx ports.TransactionManager, queueSize int, logger *logrus.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		queue:  make(chan ports.OutboxMessage, queueSize),
		tx:     tx,
		logger: logger,
	}
}

// Enqueue schedules msg for delivery. Inside a transaction the message is
// held until commit; on rollback it is discarded. Enqueue never blocks the
// request path: when the queue is full the message is dropped and counted.
func (d *Dispatcher) Enqueue(ctx context.Context, msg ports.OutboxMessage) {
	d.tx.AfterCommit(ctx, func() {
		msg.EnqueuedAt = time.Now()
		select {
		case d.queue <- msg:
			messagesEnqueued.Inc()
		default:
			messagesDropped.Inc()
			if d.logger != nil {
				d.logger.WithFields(logrus.Fields{
					"recipient": msg.Recipient,
					"type":      msg.Type,
				}).Warn("outbox queue full, dropping verification email")
			}
		}
	})
}

// Messages exposes the delivery channel to the worker.
func (d *Dispatcher) Messages() <-chan ports.OutboxMessage {
	return d.queue
}
