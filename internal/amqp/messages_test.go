package amqp

import (
	"testing"
	"time"
)

func TestNotificationMessageRoundTrip(t *testing.T) {
	msg := NewNotificationMessage("user@example.com", "Monthly Budget Exceeded", "You have exceeded your monthly budget of $500.", "")
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	decoded, err := NotificationMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.To != msg.To || decoded.Subject != msg.Subject || decoded.Body != msg.Body {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, msg)
	}
	if !decoded.Timestamp.Equal(msg.Timestamp.Truncate(time.Nanosecond)) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestNotificationMessageAttachment(t *testing.T) {
	msg := NewNotificationMessage("user@example.com", "Your Monthly Financial Report", "Report attached.", "/data/reports/report.csv")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	decoded, err := NotificationMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.AttachmentPath != "/data/reports/report.csv" {
		t.Fatalf("attachment path lost: %q", decoded.AttachmentPath)
	}
}

func TestNotificationMessageFromJSONInvalid(t *testing.T) {
	if _, err := NotificationMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}
