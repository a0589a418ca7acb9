// Package dispatch отправляет расходы и уведомления о взносах во внешние
// журналы через RabbitMQ.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// Dispatcher публикует сообщения в обменники ledger и notifications.
type Dispatcher struct {
	ch  rabbitmq.Publisher
	log *slog.Logger
	now func() time.Time
}

// New создаёт Dispatcher поверх канала RabbitMQ.
func New(ch rabbitmq.Publisher, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		ch:  ch,
		log: log,
		now: time.Now,
	}
}

// PostExpense публикует запись расхода. Вид записи всегда expense.
func (d *Dispatcher) PostExpense(ctx context.Context, expense models.Expense) error {
	const op = "services.dispatch.PostExpense"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	expense.Kind = models.KindExpense
	if err := rabbitmq.PublishMessage(d.ch, rabbitmq.ExchangeLedger, rabbitmq.RoutingKeyExpense, expense); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	d.log.Debug("expense posted",
		slog.String("installment_id", expense.InstallmentID),
		slog.String("amount", expense.Amount.StringFixed(2)))
	return nil
}

// SendImmediateNotification публикует уведомление о наступившем взносе.
func (d *Dispatcher) SendImmediateNotification(ctx context.Context, title, body, correlationID string) error {
	const op = "services.dispatch.SendImmediateNotification"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n := models.Notification{
		Title:         title,
		Body:          body,
		CorrelationID: correlationID,
		SentAt:        d.now(),
	}
	if err := rabbitmq.PublishMessage(d.ch, rabbitmq.ExchangeNotifications, rabbitmq.RoutingKeyInstallmentDue, n); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
