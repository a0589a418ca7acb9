package installment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/services/card"
)

// memRepo хранит последнюю записанную коллекцию.
type memRepo struct {
	mu      sync.Mutex
	saved   []models.Installment
	writes  int
	failErr error
}

func (r *memRepo) LoadInstallments(_ context.Context) ([]models.Installment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Installment(nil), r.saved...), nil
}

func (r *memRepo) ReplaceInstallments(_ context.Context, items []models.Installment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if r.failErr != nil {
		return r.failErr
	}
	r.saved = append([]models.Installment(nil), items...)
	return nil
}

type CardsMock struct{ mock.Mock }

func (m *CardsMock) GetCard(ctx context.Context, id string) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

// staticCards — реестр из фиксированного набора карт.
type staticCards map[string]models.Card

func (s staticCards) GetCard(_ context.Context, id string) (*models.Card, error) {
	c, ok := s[id]
	if !ok {
		return nil, card.ErrCardNotFound
	}
	return &c, nil
}

var fixedNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func newTestLedger(t *testing.T, cards CardRegistry) (*Ledger, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	l := New(repo, cards, slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.now = func() time.Time { return fixedNow }
	seq := 0
	l.newID = func() string {
		seq++
		return fmt.Sprintf("inst-%d", seq)
	}
	return l, repo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreate_FirstDueDate(t *testing.T) {
	cards := staticCards{
		"c10": {ID: "c10", Name: "Visa", StatementDay: 10},
		"c31": {ID: "c31", Name: "Amex", StatementDay: 31},
	}

	tests := []struct {
		name     string
		cardID   string
		purchase time.Time
		wantDue  time.Time
	}{
		{"after cut goes to next month", "c10", date(2024, time.March, 12), time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)},
		{"on cut day stays in same month", "c10", date(2024, time.March, 10), time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)},
		{"before cut stays in same month", "c10", date(2024, time.March, 2), time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)},
		{"december rolls year", "c10", date(2024, time.December, 20), time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)},
		{"day 31 clamps in february", "c31", date(2024, time.February, 5), time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)},
		{"unknown card uses purchase date", "missing", date(2024, time.March, 12), time.Date(2024, time.March, 12, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t, cards)
			item := l.Create(context.Background(), models.NewInstallment{
				CardID:           tt.cardID,
				Description:      "Laptop",
				TotalAmount:      dec("1200"),
				InstallmentCount: 12,
				PurchaseDate:     tt.purchase,
			})
			assert.True(t, tt.wantDue.Equal(item.NextDueDate), "got %s", item.NextDueDate)
			assert.Equal(t, models.StatusActive, item.Status)
		})
	}
}

func TestCreate_AmountAndPersistence(t *testing.T) {
	l, repo := newTestLedger(t, staticCards{})

	item := l.Create(context.Background(), models.NewInstallment{
		CardID:           "c1",
		Description:      "Phone",
		TotalAmount:      dec("100"),
		InstallmentCount: 3,
		PurchaseDate:     date(2024, time.March, 1),
	})

	assert.Equal(t, "inst-1", item.ID)
	assert.True(t, dec("33.33").Equal(item.InstallmentAmount))
	assert.Equal(t, fixedNow, item.CreatedAt)

	// остаток округления не распределяется, но расхождение не больше копейки
	diff := item.InstallmentAmount.Mul(decimal.NewFromInt(3)).Round(2).Sub(item.TotalAmount).Abs()
	assert.True(t, diff.LessThanOrEqual(dec("0.01")))

	require.Len(t, repo.saved, 1)
	assert.Equal(t, item.ID, repo.saved[0].ID)
}

func TestAmountConservation(t *testing.T) {
	totals := []string{"1200", "100", "999.99", "0.05", "12345.67", "10"}
	for _, total := range totals {
		for count := 2; count <= 60; count++ {
			amount := models.PerInstallment(dec(total), count)
			product := amount.Mul(decimal.NewFromInt(int64(count))).Round(2)
			diff := product.Sub(dec(total)).Abs()
			// не больше половины копейки на каждый взнос
			limit := dec("0.005").Mul(decimal.NewFromInt(int64(count)))
			assert.Truef(t, diff.LessThanOrEqual(limit), "total=%s count=%d diff=%s", total, count, diff)
		}
	}
}

func TestRegisterPayment_ScenarioTwelveInstallments(t *testing.T) {
	ctx := context.Background()
	l, repo := newTestLedger(t, staticCards{"c1": {ID: "c1", Name: "Visa", StatementDay: 10}})

	item := l.Create(ctx, models.NewInstallment{
		CardID:           "c1",
		Description:      "TV",
		TotalAmount:      dec("1200"),
		InstallmentCount: 12,
		PurchaseDate:     date(2024, time.March, 12),
	})
	assert.True(t, dec("100.00").Equal(item.InstallmentAmount))
	assert.Equal(t, time.April, item.NextDueDate.Month())
	assert.Equal(t, 10, item.NextDueDate.Day())

	prevDue := item.NextDueDate
	for i := 1; i <= 12; i++ {
		require.True(t, l.RegisterPayment(ctx, item.ID))
		got, ok := l.Get(item.ID)
		require.True(t, ok)
		assert.Equal(t, i, got.PaidInstallments)
		if i < 12 {
			assert.True(t, got.NextDueDate.After(prevDue))
			assert.Equal(t, 10, got.NextDueDate.Day())
			prevDue = got.NextDueDate
		}
	}

	got, _ := l.Get(item.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, 12, got.PaidInstallments)
	// дата последнего взноса не сдвигается
	assert.True(t, prevDue.Equal(got.NextDueDate))
	assert.Equal(t, time.March, got.NextDueDate.Month())
	assert.Equal(t, 2025, got.NextDueDate.Year())

	// после завершения вызовы ничего не меняют
	writes := repo.writes
	for range 3 {
		assert.False(t, l.RegisterPayment(ctx, item.ID))
	}
	again, _ := l.Get(item.ID)
	assert.Equal(t, got, again)
	assert.Equal(t, writes, repo.writes)
}

func TestRegisterPayment_ClampsWithoutCarryForward(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, staticCards{"c31": {ID: "c31", StatementDay: 31}})

	item := l.Create(ctx, models.NewInstallment{
		CardID:           "c31",
		TotalAmount:      dec("600"),
		InstallmentCount: 6,
		PurchaseDate:     date(2024, time.January, 5),
	})
	require.Equal(t, 31, item.NextDueDate.Day())

	wantDays := []int{29, 31, 30, 31}
	for _, want := range wantDays {
		require.True(t, l.RegisterPayment(ctx, item.ID))
		got, _ := l.Get(item.ID)
		assert.Equal(t, want, got.NextDueDate.Day())
	}
}

func TestRegisterPayment_CardGoneReusesDueDay(t *testing.T) {
	ctx := context.Background()
	cards := new(CardsMock)
	cards.On("GetCard", mock.Anything, "c1").
		Return(&models.Card{ID: "c1", StatementDay: 15}, nil).Once()
	cards.On("GetCard", mock.Anything, "c1").Return(nil, card.ErrCardNotFound)

	l, _ := newTestLedger(t, cards)
	item := l.Create(ctx, models.NewInstallment{
		CardID:           "c1",
		TotalAmount:      dec("300"),
		InstallmentCount: 3,
		PurchaseDate:     date(2024, time.May, 1),
	})
	require.Equal(t, 15, item.NextDueDate.Day())

	require.True(t, l.RegisterPayment(ctx, item.ID))
	got, _ := l.Get(item.ID)
	assert.Equal(t, time.June, got.NextDueDate.Month())
	assert.Equal(t, 15, got.NextDueDate.Day())
	cards.AssertExpectations(t)
}

func TestRegisterPayment_UnknownID(t *testing.T) {
	l, repo := newTestLedger(t, staticCards{})

	assert.False(t, l.RegisterPayment(context.Background(), "nope"))
	assert.Equal(t, 0, repo.writes)
}

func TestEdit(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	strPtr := func(v string) *string { return &v }
	amountPtr := func(v string) *models.Amount { d := dec(v); return &d }

	tests := []struct {
		name       string
		paid       int
		patch      models.InstallmentPatch
		wantErr    error
		wantAmount string
		wantPaid   int
		wantStatus models.Status
	}{
		{
			name:       "description only keeps amount",
			patch:      models.InstallmentPatch{Description: strPtr("Fridge")},
			wantAmount: "100",
			wantStatus: models.StatusActive,
		},
		{
			name:       "new total recomputes amount",
			patch:      models.InstallmentPatch{TotalAmount: amountPtr("1000")},
			wantAmount: "83.33",
			wantStatus: models.StatusActive,
		},
		{
			name:       "new count recomputes amount from new values",
			patch:      models.InstallmentPatch{TotalAmount: amountPtr("600"), InstallmentCount: intPtr(6)},
			wantAmount: "100",
			wantStatus: models.StatusActive,
		},
		{
			name:       "count lowered to paid completes",
			paid:       4,
			patch:      models.InstallmentPatch{InstallmentCount: intPtr(4)},
			wantAmount: "300",
			wantPaid:   4,
			wantStatus: models.StatusCompleted,
		},
		{
			name:     "count below paid is rejected",
			paid:     5,
			patch:    models.InstallmentPatch{InstallmentCount: intPtr(4)},
			wantErr:  ErrPaidExceedsCount,
			wantPaid: 5,
		},
		{
			name:    "paid above count is rejected",
			patch:   models.InstallmentPatch{PaidInstallments: intPtr(13)},
			wantErr: ErrPaidExceedsCount,
		},
		{
			name:    "negative paid is rejected",
			patch:   models.InstallmentPatch{PaidInstallments: intPtr(-1)},
			wantErr: ErrNegativePaid,
		},
		{
			name:       "paid set to count completes",
			patch:      models.InstallmentPatch{PaidInstallments: intPtr(12)},
			wantAmount: "100",
			wantPaid:   12,
			wantStatus: models.StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l, _ := newTestLedger(t, staticCards{})
			item := l.Create(ctx, models.NewInstallment{
				CardID:           "c1",
				Description:      "TV",
				TotalAmount:      dec("1200"),
				InstallmentCount: 12,
				PurchaseDate:     date(2024, time.March, 1),
			})
			for range tt.paid {
				require.True(t, l.RegisterPayment(ctx, item.ID))
			}

			affected, err := l.Edit(ctx, item.ID, tt.patch)
			got, _ := l.Get(item.ID)
			if tt.wantErr != nil {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, "paid_installments", vErr.Field)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, affected)
				// запись не изменилась
				assert.Equal(t, 12, got.InstallmentCount)
				assert.Equal(t, tt.wantPaid, got.PaidInstallments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, affected)
			assert.True(t, dec(tt.wantAmount).Equal(got.InstallmentAmount), "amount %s", got.InstallmentAmount)
			assert.Equal(t, tt.wantPaid, got.PaidInstallments)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestEdit_UnknownID(t *testing.T) {
	l, _ := newTestLedger(t, staticCards{})

	affected, err := l.Edit(context.Background(), "nope", models.InstallmentPatch{})
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	l, repo := newTestLedger(t, staticCards{})
	first := l.Create(ctx, models.NewInstallment{CardID: "c1", TotalAmount: dec("200"), InstallmentCount: 2, PurchaseDate: date(2024, 1, 1)})
	second := l.Create(ctx, models.NewInstallment{CardID: "c1", TotalAmount: dec("300"), InstallmentCount: 3, PurchaseDate: date(2024, 1, 1)})

	assert.Equal(t, 1, l.Delete(ctx, first.ID))
	assert.Equal(t, 0, l.Delete(ctx, first.ID))

	_, ok := l.Get(first.ID)
	assert.False(t, ok)
	list := l.List(models.Filter{})
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
	require.Len(t, repo.saved, 1)
}

func TestList_Filter(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, staticCards{})
	a := l.Create(ctx, models.NewInstallment{CardID: "c1", TotalAmount: dec("200"), InstallmentCount: 2, PurchaseDate: date(2024, 1, 1)})
	l.Create(ctx, models.NewInstallment{CardID: "c2", TotalAmount: dec("300"), InstallmentCount: 3, PurchaseDate: date(2024, 1, 1)})
	c := l.Create(ctx, models.NewInstallment{CardID: "c1", TotalAmount: dec("400"), InstallmentCount: 4, PurchaseDate: date(2024, 1, 1)})
	l.RegisterPayment(ctx, a.ID)
	l.RegisterPayment(ctx, a.ID)

	assert.Len(t, l.List(models.Filter{}), 3)
	assert.Len(t, l.List(models.Filter{CardID: "c1"}), 2)

	active := l.List(models.Filter{CardID: "c1", Status: models.StatusActive})
	require.Len(t, active, 1)
	assert.Equal(t, c.ID, active[0].ID)

	completed := l.List(models.Filter{Status: models.StatusCompleted})
	require.Len(t, completed, 1)
	assert.Equal(t, a.ID, completed[0].ID)
}

func TestDueOn_DateOnlyComparison(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, staticCards{"c1": {ID: "c1", StatementDay: 10}})
	item := l.Create(ctx, models.NewInstallment{CardID: "c1", TotalAmount: dec("200"), InstallmentCount: 2, PurchaseDate: date(2024, 3, 1)})

	// дата взноса 10 марта, 12:00; раннее утро того же дня уже считается наступившим
	assert.Empty(t, l.DueOn(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)))
	due := l.DueOn(time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC))
	require.Len(t, due, 1)
	assert.Equal(t, item.ID, due[0].ID)

	l.RegisterPayment(ctx, item.ID)
	l.RegisterPayment(ctx, item.ID)
	assert.Empty(t, l.DueOn(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	l, repo := newTestLedger(t, staticCards{})
	repo.failErr = errors.New("disk full")

	item := l.Create(ctx, models.NewInstallment{CardID: "c1", TotalAmount: dec("200"), InstallmentCount: 2, PurchaseDate: date(2024, 3, 1)})
	require.True(t, l.RegisterPayment(ctx, item.ID))

	got, ok := l.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.PaidInstallments)
	assert.Empty(t, repo.saved)
	assert.Equal(t, 2, repo.writes)

	// следующая успешная запись содержит актуальное состояние
	repo.failErr = nil
	require.True(t, l.RegisterPayment(ctx, item.ID))
	require.Len(t, repo.saved, 1)
	assert.Equal(t, models.StatusCompleted, repo.saved[0].Status)
}

func TestLoad_RestoresOrder(t *testing.T) {
	ctx := context.Background()
	l, repo := newTestLedger(t, staticCards{})
	for i := 0; i < 3; i++ {
		l.Create(ctx, models.NewInstallment{CardID: "c1", Description: fmt.Sprint(i), TotalAmount: dec("200"), InstallmentCount: 2, PurchaseDate: date(2024, 3, 1)})
	}

	restored := New(repo, staticCards{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, restored.Load(ctx))

	list := restored.List(models.Filter{})
	require.Len(t, list, 3)
	for i, item := range list {
		assert.Equal(t, fmt.Sprint(i), item.Description)
	}
}

func TestLoad_DueDatesJudgedInLedgerLocation(t *testing.T) {
	ctx := context.Background()
	art := time.FixedZone("ART", -3*60*60)
	cards := staticCards{"c1": {ID: "c1", Name: "Visa", StatementDay: 10}}

	l, repo := newTestLedger(t, cards)
	l.SetLocation(art)
	item := l.Create(ctx, models.NewInstallment{
		CardID:           "c1",
		Description:      "Phone",
		TotalAmount:      dec("600"),
		InstallmentCount: 6,
		PurchaseDate:     time.Date(2024, time.March, 5, 0, 0, 0, 0, art),
	})
	require.True(t, item.NextDueDate.Equal(time.Date(2024, time.March, 10, 12, 0, 0, 0, art)))

	// хранилище с TIMESTAMPTZ отдаёт время в UTC
	repo.mu.Lock()
	for i := range repo.saved {
		repo.saved[i].PurchaseDate = repo.saved[i].PurchaseDate.UTC()
		repo.saved[i].NextDueDate = repo.saved[i].NextDueDate.UTC()
	}
	repo.mu.Unlock()

	restored := New(repo, cards, slog.New(slog.NewTextHandler(io.Discard, nil)))
	restored.SetLocation(art)
	require.NoError(t, restored.Load(ctx))

	got, ok := restored.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, art, got.NextDueDate.Location())
	assert.Equal(t, 10, got.NextDueDate.Day())

	assert.Empty(t, restored.DueOn(time.Date(2024, time.March, 9, 22, 0, 0, 0, art)))
	assert.Len(t, restored.DueOn(time.Date(2024, time.March, 10, 8, 0, 0, 0, art)), 1)

	require.True(t, restored.RegisterPayment(ctx, item.ID))
	got, _ = restored.Get(item.ID)
	assert.True(t, got.NextDueDate.Equal(time.Date(2024, time.April, 10, 12, 0, 0, 0, art)), got.NextDueDate)
}
