// Package smtp предоставляет SMTP транспорт для писем-уведомлений.
package smtp

import (
	"errors"
	"io"
	"net/smtp"
)

// ErrNoStartTLS возвращается, если сервер не поддерживает STARTTLS.
var ErrNoStartTLS = errors.New("smtp server does not support STARTTLS")

// Client интерфейс для SMTP клиента.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface интерфейс для SMTP транспорта.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
	GetRecipient() string
}

// smtpClientWrapper обертка для *smtp.Client, реализующая интерфейс Client.
type smtpClientWrapper struct {
	client *smtp.Client
}

func (w *smtpClientWrapper) Mail(from string) error {
	return w.client.Mail(from)
}

func (w *smtpClientWrapper) Rcpt(to string) error {
	return w.client.Rcpt(to)
}

func (w *smtpClientWrapper) Data() (io.WriteCloser, error) {
	return w.client.Data()
}

func (w *smtpClientWrapper) Quit() error {
	return w.client.Quit()
}

func (w *smtpClientWrapper) Close() error {
	return w.client.Close()
}
