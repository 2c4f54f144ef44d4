package notify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSender() *SMTPSender {
	return NewSMTPSender(SMTPConfig{
		Host: "smtp.example.com",
		Port: "587",
		User: "notifier@example.com",
		Pass: "secret",
		From: "notifier@example.com",
	})
}

func TestBuildMessagePlain(t *testing.T) {
	msg, err := testSender().buildMessage("user@example.com", "Goal Completed: Vacation", "Congratulations!", "")
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}

	text := string(msg)
	for _, want := range []string{
		"To: user@example.com",
		"Subject: Goal Completed: Vacation",
		"Congratulations!",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("message missing %q:\n%s", want, text)
		}
	}
}

func TestBuildMessageWithAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	if err := os.WriteFile(path, []byte("category,total\nFood,100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	msg, err := testSender().buildMessage("user@example.com", "Your Monthly Financial Report", "Report attached.", path)
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}

	text := string(msg)
	for _, want := range []string{
		"multipart/mixed",
		`attachment; filename="report.csv"`,
		"base64",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("message missing %q", want)
		}
	}
}

func TestBuildMessageMissingAttachment(t *testing.T) {
	_, err := testSender().buildMessage("user@example.com", "subject", "body", "/nonexistent/file.csv")
	if err == nil {
		t.Fatal("expected error for missing attachment")
	}
}
