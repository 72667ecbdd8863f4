package services

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/logger"
)

// NewDeliveryService picks the delivery backend from configuration.
// Incomplete mailgun or smtp settings fall back to the mock sender with a
// warning instead of failing the export.
func NewDeliveryService(cfg *config.Config) DeliveryService {
	provider := strings.ToLower(cfg.Delivery.Provider)
	logger.L.Info("Initializing delivery service", "provider", provider)

	switch provider {
	case "mailgun":
		d := cfg.Delivery
		if d.MailgunDomain == "" || d.MailgunPrivateAPIKey == "" || d.SenderEmail == "" || d.Recipient == "" {
			logger.L.Warn("Mailgun configuration incomplete (domain, API key, sender or recipient missing). Falling back to mock delivery.")
			return &MockDeliveryService{}
		}
		mg := mailgun.NewMailgun(d.MailgunDomain, d.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", d.MailgunDomain)
		return &MailgunDeliveryService{
			mg:          mg,
			senderEmail: d.SenderEmail,
			senderName:  d.SenderName,
			recipient:   d.Recipient,
		}
	case "smtp":
		d := cfg.Delivery
		if d.SMTPServer == "" || d.SMTPUser == "" || d.SMTPPassword == "" || d.SenderEmail == "" || d.Recipient == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to mock delivery.")
			return &MockDeliveryService{}
		}
		return &SMTPDeliveryService{
			SMTPServer:   d.SMTPServer,
			SMTPPort:     d.SMTPPort,
			SMTPUser:     d.SMTPUser,
			SMTPPassword: d.SMTPPassword,
			SenderEmail:  d.SenderEmail,
			Recipient:    d.Recipient,
		}
	default:
		logger.L.Info("Defaulting to mock delivery.")
		return &MockDeliveryService{}
	}
}

type MailgunDeliveryService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
	recipient   string
}

func (s *MailgunDeliveryService) SendReport(ctx context.Context, subject string, htmlPaths []string) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	plainTextBody := fmt.Sprintf("Portfolio charts attached (%d files). Open them in a browser for the interactive version.", len(htmlPaths))

	var items strings.Builder
	for _, path := range htmlPaths {
		fmt.Fprintf(&items, "<li>%s</li>", filepath.Base(path))
	}
	htmlBody := fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6;">
			<p>Your portfolio charts are attached:</p>
			<ul>%s</ul>
			<p>Open an attachment in a browser for the interactive version.</p>
		</body>
	</html>`, items.String())

	message := s.mg.NewMessage(from, subject, plainTextBody, s.recipient)
	message.SetHtml(htmlBody)
	message.AddTag("chart-report")
	for _, path := range htmlPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading attachment %s: %w", path, err)
		}
		message.AddBufferAttachment(filepath.Base(path), data)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send report via Mailgun", "error", err, "to", s.recipient, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Report sent successfully via Mailgun", "to", s.recipient, "id", id, "mailgunResp", resp)
	return nil
}

// SMTPDeliveryService sends a plain-text notification listing the written
// pages. Attachments stay on disk; plain SMTP keeps the message small.
type SMTPDeliveryService struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
	Recipient    string
}

func (s *SMTPDeliveryService) SendReport(_ context.Context, subject string, htmlPaths []string) error {
	from := s.SenderEmail
	to := []string{s.Recipient}
	body := fmt.Sprintf("Portfolio charts generated:\n%s\n", strings.Join(htmlPaths, "\n"))

	header := make(map[string]string)
	header["From"] = from
	header["To"] = s.Recipient
	header["Subject"] = subject
	header["MIME-version"] = "1.0"
	header["Content-Type"] = "text/plain; charset=\"UTF-8\""
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	if err := smtp.SendMail(addr, auth, from, to, []byte(message)); err != nil {
		logger.L.Error("Failed to send report notification via SMTP", "error", err, "to", s.Recipient)
		return fmt.Errorf("failed to send report notification via SMTP: %w", err)
	}
	logger.L.Info("Report notification sent successfully via SMTP", "to", s.Recipient)
	return nil
}

type MockDeliveryService struct{}

func (m *MockDeliveryService) SendReport(_ context.Context, subject string, htmlPaths []string) error {
	logger.L.Info("MockDeliveryService: Would send report email.", "subject", subject, "attachments", strings.Join(htmlPaths, ", "))
	return nil
}
