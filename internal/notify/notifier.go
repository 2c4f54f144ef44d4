// Package notify defines how the core emits email notifications. Delivery
// is best-effort everywhere: a failed Send is logged by the caller and never
// aborts the operation that produced it.
package notify

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
)

// Notifier sends one notification to a user's email address.
// attachmentPath may be empty.
type Notifier interface {
	Send(ctx context.Context, toEmail, subject, body, attachmentPath string) error
}

// QueueNotifier publishes notifications to the AMQP queue for the delivery
// worker to pick up.
type QueueNotifier struct {
	client *amqp.Client
}

func NewQueueNotifier(client *amqp.Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) Send(ctx context.Context, toEmail, subject, body, attachmentPath string) error {
	msg := amqp.NewNotificationMessage(toEmail, subject, body, attachmentPath)
	return n.client.PublishNotification(ctx, msg)
}

// LogNotifier is the fallback when AMQP is not configured: notifications are
// only written to the log.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, toEmail, subject, body, attachmentPath string) error {
	slog.InfoContext(ctx, "Notification (delivery disabled)",
		"to", toEmail,
		"subject", subject,
		"body", body,
		"attachment", attachmentPath)
	return nil
}
