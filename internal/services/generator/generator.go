// Package generator проводит наступившие взносы: для каждой активной покупки,
// у которой дата взноса наступила, отправляет расход и уведомление и
// регистрирует оплату. Пропущенные циклы догоняются по одному расходу на цикл.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/month"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/metrics"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// NotificationTitle — заголовок уведомления о наступившем взносе.
const NotificationTitle = "Installment due"

// fallbackCategory используется, если карта покупки не найдена и категория не задана.
const fallbackCategory = "Credit card"

// Ledger — часть леджера рассрочек, нужная генератору.
type Ledger interface {
	DueOn(day time.Time) []models.Installment
	Get(id string) (models.Installment, bool)
	RegisterPayment(ctx context.Context, id string) bool
}

// CardRegistry отдаёт карту покупки для категории расхода.
type CardRegistry interface {
	GetCard(ctx context.Context, id string) (*models.Card, error)
}

// ExpenseLedger принимает записи расходов.
type ExpenseLedger interface {
	PostExpense(ctx context.Context, expense models.Expense) error
}

// Notifier отправляет немедленные уведомления.
type Notifier interface {
	SendImmediateNotification(ctx context.Context, title, body, correlationID string) error
}

// Generator выполняет проходы по наступившим взносам. Одновременно идёт не больше одного прохода.
type Generator struct {
	running  sync.Mutex
	ledger   Ledger
	cards    CardRegistry
	expenses ExpenseLedger
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт Generator.
func New(ledger Ledger, cards CardRegistry, expenses ExpenseLedger, notifier Notifier, log *slog.Logger) *Generator {
	return &Generator{
		ledger:   ledger,
		cards:    cards,
		expenses: expenses,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Start выполняет проход сразу, затем по тикеру с интервалом interval, пока ctx не завершён.
func (g *Generator) Start(ctx context.Context, interval time.Duration) {
	g.RunOnce(ctx, g.now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.log.Info("generator stopped")
			return
		case <-ticker.C:
			g.RunOnce(ctx, g.now())
		}
	}
}

// RunOnce проводит все взносы с датой не позже now и возвращает число
// отправленных расходов. Если предыдущий проход ещё идёт, возвращает 0.
func (g *Generator) RunOnce(ctx context.Context, now time.Time) int {
	const op = "services.generator.RunOnce"
	log := g.log.With(sl.Op(op))

	if !g.running.TryLock() {
		log.Warn("previous pass still running, skipping")
		return 0
	}
	defer g.running.Unlock()

	due := g.ledger.DueOn(now)
	if len(due) == 0 {
		log.Debug("no due installments")
		return 0
	}
	log.Info("found due installments", slog.Int("count", len(due)))

	posted := 0
	for _, item := range due {
		posted += g.catchUp(ctx, log, item.ID, now)
		if ctx.Err() != nil {
			log.Warn("pass interrupted", sl.Err(ctx.Err()))
			break
		}
	}
	log.Info("pass finished", slog.Int("posted", posted))
	return posted
}

// catchUp проводит все наступившие циклы одной покупки.
func (g *Generator) catchUp(ctx context.Context, log *slog.Logger, id string, now time.Time) int {
	posted := 0
	for ctx.Err() == nil {
		item, ok := g.ledger.Get(id)
		if !ok || !item.IsActive() || !month.OnOrBefore(item.NextDueDate, now) {
			break
		}

		if err := g.post(ctx, log, item); err != nil {
			// цикл остаётся непроведённым и повторится в следующем проходе
			break
		}
		if !g.ledger.RegisterPayment(ctx, id) {
			break
		}
		posted++
	}
	return posted
}

// post отправляет расход и уведомление. Ошибка публикации расхода возвращается,
// и взнос не регистрируется. Ошибка уведомления только логируется.
func (g *Generator) post(ctx context.Context, log *slog.Logger, item models.Installment) error {
	log = log.With(slog.String("id", item.ID))

	expense := models.Expense{
		Amount:        item.InstallmentAmount,
		Description:   Description(item),
		Category:      g.category(ctx, log, item),
		Kind:          models.KindExpense,
		InstallmentID: item.ID,
		Date:          item.NextDueDate,
	}
	if err := g.expenses.PostExpense(ctx, expense); err != nil {
		metrics.PublishFailures.WithLabelValues("expense").Inc()
		log.Error("failed to post expense, cycle left for next pass", sl.Err(err))
		return err
	}
	metrics.ExpensesPosted.Inc()

	body := fmt.Sprintf("%s: %s", expense.Description, item.InstallmentAmount.StringFixed(2))
	if err := g.notifier.SendImmediateNotification(ctx, NotificationTitle, body, item.ID); err != nil {
		metrics.PublishFailures.WithLabelValues("notification").Inc()
		log.Error("failed to send notification", sl.Err(err))
	}
	return nil
}

func (g *Generator) category(ctx context.Context, log *slog.Logger, item models.Installment) string {
	c, err := g.cards.GetCard(ctx, item.CardID)
	if err == nil {
		return c.CategoryLabel()
	}
	log.Warn("card not available for expense category", slog.String("card_id", item.CardID), sl.Err(err))
	if item.Category != "" {
		return item.Category
	}
	return fallbackCategory
}

// Description формирует описание расхода: "Installment {n}/{count}: {description}".
func Description(item models.Installment) string {
	return fmt.Sprintf("Installment %d/%d: %s", item.PaidInstallments+1, item.InstallmentCount, item.Description)
}
