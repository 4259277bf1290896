// Package alertsender delivers risk alerts from the broker queue to the
// user's mailbox.
package alertsender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	smtptransport "github.com/solvradar/solvency-radar/internal/lib/smtp"
	"github.com/solvradar/solvency-radar/internal/models"
)

// Transport is the SMTP connection factory; a seam for tests.
type Transport interface {
	Connect() (smtptransport.Client, error)
	GetSMTPUser() string
}

// Service consumes serialized risk alerts and sends them as plain-text email.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New creates the alert sender.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendRiskAlert unmarshals one queued alert and emails it to the user.
func (s *Service) SendRiskAlert(body []byte) error {
	var alert models.RiskAlert
	if err := json.Unmarshal(body, &alert); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Solvency alert: fixed expenses in zone %s", alert.Level)
	bodyText := fmt.Sprintf("Hello, %s!\n\n%s\n\nOpen your monthly report to see which expenses to renegotiate first.",
		alert.Username, alert.Message)

	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", alert.Email),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(alert.Email); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", alert.Email, err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get write closer: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("failed to close write closer: %w", err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	s.log.Info("risk alert email sent",
		slog.String("to", alert.Email),
		slog.String("level", alert.Level))
	return nil
}
