// Package sender доставляет уведомления о наступивших взносах по электронной почте.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendInstallmentDue разбирает уведомление из очереди и отправляет письмо получателю из конфига.
// Ошибка доставки возвращает сообщение в очередь, неразборчивое сообщение отбрасывается.
func (s *Service) SendInstallmentDue(body []byte) error {
	const op = "services.sender.SendInstallmentDue"

	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrUnprocessable, err)
	}

	to := []string{s.transport.GetRecipient()}
	bodyText := fmt.Sprintf("%s\n\nRef: %s\nDate: %s",
		n.Body, n.CorrelationID, n.SentAt.Format("2006-01-02"))

	if err := s.sendEmail(to, n.Title, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
