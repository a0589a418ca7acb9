// Package installment реализует леджер покупок в рассрочку: создание,
// регистрацию взносов, правку, удаление и агрегирующие запросы.
//
// Коллекция целиком живёт в памяти и считается авторитетной. После каждой
// мутации она полностью перезаписывается в хранилище; ошибка записи
// логируется и не откатывает состояние в памяти.
package installment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/month"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/metrics"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/services/card"
)

// Repository — долговременное хранилище коллекции рассрочек.
type Repository interface {
	// LoadInstallments читает всю коллекцию.
	LoadInstallments(ctx context.Context) ([]models.Installment, error)
	// ReplaceInstallments перезаписывает коллекцию целиком.
	ReplaceInstallments(ctx context.Context, items []models.Installment) error
}

// CardRegistry отдаёт карты по ID. Для отсутствующей карты возвращает card.ErrCardNotFound.
type CardRegistry interface {
	GetCard(ctx context.Context, id string) (*models.Card, error)
}

// Ledger хранит покупки в рассрочку. Все операции сериализуются одним мьютексом.
type Ledger struct {
	mu    sync.Mutex
	items map[string]*models.Installment
	order []string

	repo  Repository
	cards CardRegistry
	log   *slog.Logger
	loc   *time.Location

	now   func() time.Time
	newID func() string
}

// New создаёт пустой леджер. Состояние из хранилища поднимается вызовом Load.
func New(repo Repository, cards CardRegistry, log *slog.Logger) *Ledger {
	return &Ledger{
		items: make(map[string]*models.Installment),
		repo:  repo,
		cards: cards,
		log:   log,
		loc:   time.UTC,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SetLocation задаёт часовой пояс, в котором считаются календарные даты взносов.
// Даты, поднятые из хранилища, переводятся в этот пояс.
func (l *Ledger) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loc = loc
}

// Load заменяет содержимое леджера коллекцией из хранилища.
func (l *Ledger) Load(ctx context.Context) error {
	const op = "services.installment.Load"

	items, err := l.repo.LoadInstallments(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make(map[string]*models.Installment, len(items))
	l.order = l.order[:0]
	for i := range items {
		item := items[i]
		// TIMESTAMPTZ возвращается в поясе процесса, а не в поясе леджера
		item.PurchaseDate = item.PurchaseDate.In(l.loc)
		item.NextDueDate = item.NextDueDate.In(l.loc)
		if _, dup := l.items[item.ID]; dup {
			continue
		}
		l.items[item.ID] = &item
		l.order = append(l.order, item.ID)
	}
	l.updateGauge()
	l.log.Info("installments loaded", sl.Op(op), slog.Int("count", len(l.order)))
	return nil
}

// Create добавляет покупку. Дата первого взноса считается от дня закрытия
// выписки карты; если карта не найдена, берётся сама дата покупки.
func (l *Ledger) Create(ctx context.Context, in models.NewInstallment) models.Installment {
	const op = "services.installment.Create"
	log := l.log.With(sl.Op(op))

	l.mu.Lock()
	defer l.mu.Unlock()

	purchase := month.Normalize(in.PurchaseDate)
	nextDue := purchase
	if c := l.lookupCard(ctx, log, in.CardID); c != nil {
		nextDue = month.InitialDueDate(purchase, c.StatementDay)
	} else {
		log.Warn("card not found, first installment falls on purchase date", slog.String("card_id", in.CardID))
	}

	now := l.now()
	item := &models.Installment{
		ID:                l.newID(),
		CardID:            in.CardID,
		Description:       in.Description,
		Merchant:          in.Merchant,
		Category:          in.Category,
		TotalAmount:       in.TotalAmount,
		InstallmentCount:  in.InstallmentCount,
		InstallmentAmount: models.PerInstallment(in.TotalAmount, in.InstallmentCount),
		PurchaseDate:      purchase,
		NextDueDate:       nextDue,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	item.DeriveStatus()

	l.items[item.ID] = item
	l.order = append(l.order, item.ID)
	metrics.InstallmentsCreated.Inc()
	log.Info("installment created", slog.String("id", item.ID),
		slog.String("amount", item.InstallmentAmount.StringFixed(2)),
		slog.Time("next_due_date", item.NextDueDate))

	l.persist(ctx)
	return *item
}

// Get возвращает копию покупки.
func (l *Ledger) Get(id string) (models.Installment, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[id]
	if !ok {
		return models.Installment{}, false
	}
	return *item, true
}

// List возвращает покупки в порядке добавления, отфильтрованные по карте и статусу.
func (l *Ledger) List(filter models.Filter) []models.Installment {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]models.Installment, 0, len(l.order))
	for _, id := range l.order {
		item := l.items[id]
		if filter.CardID != "" && item.CardID != filter.CardID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		result = append(result, *item)
	}
	return result
}

// RegisterPayment отмечает очередной взнос оплаченным. Для неизвестной или
// завершённой покупки ничего не делает и возвращает false.
func (l *Ledger) RegisterPayment(ctx context.Context, id string) bool {
	const op = "services.installment.RegisterPayment"
	log := l.log.With(sl.Op(op), slog.String("id", id))

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[id]
	if !ok || !item.IsActive() || item.PaidInstallments >= item.InstallmentCount {
		return false
	}

	item.PaidInstallments++
	if item.PaidInstallments >= item.InstallmentCount {
		// дата последнего взноса остаётся как есть
		item.Status = models.StatusCompleted
	} else {
		anchor := item.NextDueDate.Day()
		if c := l.lookupCard(ctx, log, item.CardID); c != nil {
			anchor = c.StatementDay
		}
		item.NextDueDate = month.NextDueDate(item.NextDueDate, anchor)
	}
	item.UpdatedAt = l.now()

	metrics.PaymentsRegistered.Inc()
	log.Info("payment registered",
		slog.Int("paid", item.PaidInstallments),
		slog.Int("count", item.InstallmentCount),
		slog.String("status", string(item.Status)))

	l.persist(ctx)
	return true
}

// Edit частично обновляет покупку. При изменении суммы или количества взносов
// размер взноса пересчитывается из новых значений. Возвращает число изменённых
// записей (0 для неизвестного id) или *ValidationError, если после правки
// оплаченных взносов оказалось бы больше, чем взносов всего.
func (l *Ledger) Edit(ctx context.Context, id string, patch models.InstallmentPatch) (int, error) {
	const op = "services.installment.Edit"

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[id]
	if !ok {
		return 0, nil
	}

	updated := *item
	if patch.CardID != nil {
		updated.CardID = *patch.CardID
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Merchant != nil {
		updated.Merchant = *patch.Merchant
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	recompute := false
	if patch.TotalAmount != nil && !patch.TotalAmount.Equal(updated.TotalAmount) {
		updated.TotalAmount = *patch.TotalAmount
		recompute = true
	}
	if patch.InstallmentCount != nil && *patch.InstallmentCount != updated.InstallmentCount {
		updated.InstallmentCount = *patch.InstallmentCount
		recompute = true
	}
	if patch.PaidInstallments != nil {
		updated.PaidInstallments = *patch.PaidInstallments
	}

	switch {
	case updated.PaidInstallments < 0:
		return 0, &ValidationError{Field: "paid_installments", Err: ErrNegativePaid}
	case updated.PaidInstallments > updated.InstallmentCount:
		return 0, &ValidationError{Field: "paid_installments", Err: ErrPaidExceedsCount}
	}

	if recompute {
		updated.InstallmentAmount = models.PerInstallment(updated.TotalAmount, updated.InstallmentCount)
	}
	updated.DeriveStatus()
	updated.UpdatedAt = l.now()
	*item = updated

	l.updateGauge()
	l.log.Info("installment edited", sl.Op(op), slog.String("id", id),
		slog.Bool("amount_recomputed", recompute))

	l.persist(ctx)
	return 1, nil
}

// Delete удаляет покупку. Уже отправленные расходы не затрагиваются.
func (l *Ledger) Delete(ctx context.Context, id string) int {
	const op = "services.installment.Delete"

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[id]; !ok {
		return 0
	}
	delete(l.items, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}

	l.log.Info("installment deleted", sl.Op(op), slog.String("id", id))
	l.persist(ctx)
	return 1
}

// DueOn возвращает активные покупки, у которых дата взноса не позже day (сравниваются только даты).
func (l *Ledger) DueOn(day time.Time) []models.Installment {
	l.mu.Lock()
	defer l.mu.Unlock()

	var due []models.Installment
	for _, id := range l.order {
		item := l.items[id]
		if item.IsActive() && month.OnOrBefore(item.NextDueDate.In(l.loc), day) {
			due = append(due, *item)
		}
	}
	return due
}

// lookupCard вызывается под мьютексом. Любая ошибка, кроме отсутствия карты, только логируется.
func (l *Ledger) lookupCard(ctx context.Context, log *slog.Logger, cardID string) *models.Card {
	if l.cards == nil || cardID == "" {
		return nil
	}
	c, err := l.cards.GetCard(ctx, cardID)
	if err != nil {
		if !errors.Is(err, card.ErrCardNotFound) {
			log.Error("failed to get card", slog.String("card_id", cardID), sl.Err(err))
		}
		return nil
	}
	return c
}

// persist вызывается под мьютексом.
func (l *Ledger) persist(ctx context.Context) {
	snapshot := make([]models.Installment, 0, len(l.order))
	for _, id := range l.order {
		snapshot = append(snapshot, *l.items[id])
	}
	l.updateGauge()

	if err := l.repo.ReplaceInstallments(ctx, snapshot); err != nil {
		metrics.PersistFailures.Inc()
		l.log.Error("failed to persist installments", sl.Err(err), slog.Int("count", len(snapshot)))
	}
}

func (l *Ledger) updateGauge() {
	active := 0
	for _, item := range l.items {
		if item.IsActive() {
			active++
		}
	}
	metrics.ActiveInstallments.Set(float64(active))
}

// sum складывает размеры взносов.
func sum(items []*models.Installment) models.Amount {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.InstallmentAmount)
	}
	return total
}
