package outbox

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/ports"
)

// Worker drains the dispatcher's queue and hands each message to the email
// sender. A send failure is logged and counted but never retried here; the
// user can request a resend.
type Worker struct {
	messages <-chan ports.OutboxMessage
	sender   ports.EmailSender
	logger   *logrus.Logger
}

func NewWorker(dispatcher *Dispatcher, sender ports.EmailSender, logger *logrus.Logger) *Worker {
	return &Worker{
		messages: dispatcher.Messages(),
		sender:   sender,
		logger:   logger,
	}
}

// Run processes messages until ctx is cancelled. It is meant to be started
// once, as a goroutine, from main.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if w.logger != nil {
				w.logger.Info("outbox worker stopped")
			}
			return
		case msg := <-w.messages:
			w.deliver(ctx, msg)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, msg ports.OutboxMessage) {
	if err := w.sender.SendVerificationEmail(ctx, msg.Recipient, msg.Token); err != nil {
		messagesFailed.Inc()
		if w.logger != nil {
			w.logger.WithError(err).WithFields(logrus.Fields{
				"recipient": msg.Recipient,
				"type":      msg.Type,
				"resend":    msg.Resend,
			}).Error("failed to send verification email")
		}
		return
	}

	messagesSent.Inc()
	if w.logger != nil {
		w.logger.WithFields(logrus.Fields{
			"recipient": msg.Recipient,
			"type":      msg.Type,
			"resend":    msg.Resend,
		}).Info("verification email sent")
	}
}
