package smtp

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/installment-tracker/internal/config"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
)

// Transport реализует SMTP транспорт для отправки писем.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect устанавливает соединение с SMTP сервером, включает STARTTLS и авторизуется.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: failed to dial SMTP server: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: failed to create SMTP client: %w", op, err)
	}

	fail := func(msg string, err error) (Client, error) {
		t.log.Error(msg, sl.Err(err))
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %s: %w", op, msg, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fail("starttls unavailable", ErrNoStartTLS)
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fail("failed to start TLS", err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		return fail("smtp auth failed", err)
	}

	return &smtpClientWrapper{client: client}, nil
}

// GetSMTPUser возвращает адрес отправителя.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}

// GetRecipient возвращает адрес получателя уведомлений.
func (t *Transport) GetRecipient() string {
	return t.cfg.SMTPRecipient
}
