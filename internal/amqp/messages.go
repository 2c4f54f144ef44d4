package amqp

import (
	"encoding/json"
	"time"
)

// NotificationMessage carries one email notification through the queue. The
// API server and the sweeps publish these; the worker consumes them and
// delivers over SMTP.
type NotificationMessage struct {
	To             string    `json:"to"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	AttachmentPath string    `json:"attachment_path,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewNotificationMessage builds a message stamped with the current time.
func NewNotificationMessage(to, subject, body, attachmentPath string) *NotificationMessage {
	return &NotificationMessage{
		To:             to,
		Subject:        subject,
		Body:           body,
		AttachmentPath: attachmentPath,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
