// Package sender собирает процесс доставки уведомлений о наступивших взносах.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/installment-tracker/internal/config"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/installment-tracker/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewService(transport, logger),
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueInstallmentDue, a.senderService.SendInstallmentDue)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.QueueInstallmentDue), sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
