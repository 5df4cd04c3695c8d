package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	messagesEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_messages_enqueued_total",
		Help: "The total number of verification emails accepted into the outbox queue",
	})
	messagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_messages_sent_total",
		Help: "The total number of verification emails delivered to the email provider",
	})
	messagesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_messages_failed_total",
		Help: "The total number of verification emails the email provider rejected",
	})
	messagesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_messages_dropped_total",
		Help: "The total number of verification emails dropped because the queue was full",
	})
)

func init() {
	prometheus.MustRegister(messagesEnqueued)
	prometheus.MustRegister(messagesSent)
	prometheus.MustRegister(messagesFailed)
	prometheus.MustRegister(messagesDropped)
}
