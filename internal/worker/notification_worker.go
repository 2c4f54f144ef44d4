// Package worker delivers queued notifications over SMTP.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/notify"
)

// NotificationWorker drains the notification queue and hands each message
// to a sender. Returning an error from the handler makes the AMQP client
// nack and requeue the delivery, so transient SMTP failures retry.
type NotificationWorker struct {
	queue  *amqp.Client
	sender notify.Notifier
}

func NewNotificationWorker(queue *amqp.Client, sender notify.Notifier) *NotificationWorker {
	return &NotificationWorker{queue: queue, sender: sender}
}

// Run consumes until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) error {
	return w.queue.ConsumeNotifications(ctx, func(msg *amqp.NotificationMessage) error {
		return w.deliver(ctx, msg)
	})
}

func (w *NotificationWorker) deliver(ctx context.Context, msg *amqp.NotificationMessage) error {
	start := time.Now()

	if msg.To == "" {
		// Nothing to deliver to; dropping beats requeueing forever.
		slog.WarnContext(ctx, "Dropping notification without recipient", "subject", msg.Subject)
		return nil
	}

	if err := w.sender.Send(ctx, msg.To, msg.Subject, msg.Body, msg.AttachmentPath); err != nil {
		slog.ErrorContext(ctx, "Notification delivery failed",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err)
		return fmt.Errorf("deliver notification: %w", err)
	}

	slog.InfoContext(ctx, "Notification delivered",
		"to", msg.To,
		"subject", msg.Subject,
		"has_attachment", msg.AttachmentPath != "",
		"duration", time.Since(start).String())
	return nil
}
