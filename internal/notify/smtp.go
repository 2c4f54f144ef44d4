package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
)

// SMTPConfig holds the mail-server settings for outbound delivery.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// SMTPSender delivers notifications over plain SMTP. It runs inside the
// worker, on the consuming side of the notification queue.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, toEmail, subject, body, attachmentPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.buildMessage(toEmail, subject, body, attachmentPath)
	if err != nil {
		return fmt.Errorf("build mail: %w", err)
	}

	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", toEmail, err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(toEmail, subject, body, attachmentPath string) ([]byte, error) {
	var buf bytes.Buffer

	if attachmentPath == "" {
		fmt.Fprintf(&buf, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", s.cfg.From, toEmail, subject)
		buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	data, err := os.ReadFile(attachmentPath)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	writer := multipart.NewWriter(&buf)
	header := &bytes.Buffer{}
	fmt.Fprintf(header, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", s.cfg.From, toEmail, subject)
	fmt.Fprintf(header, "MIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	name := filepath.Base(attachmentPath)
	filePart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", name)},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if _, err := filePart.Write([]byte(encoded)); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return append(header.Bytes(), buf.Bytes()...), nil
}
