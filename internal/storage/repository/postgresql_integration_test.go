package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/installment-tracker/internal/migrations"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/storage"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := New(dsn)
	require.NoError(t, err)

	projectRoot, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(st.DB, filepath.Join(projectRoot, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, st))

	cleanup := func() {
		_ = st.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return st, cleanup
}

func newInstallment(description string, paid int) models.Installment {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	item := models.Installment{
		ID:                uuid.NewString(),
		CardID:            "card-1",
		Description:       description,
		Merchant:          "Store",
		TotalAmount:       decimal.RequireFromString("1200.00"),
		InstallmentCount:  12,
		InstallmentAmount: decimal.RequireFromString("100.00"),
		PaidInstallments:  paid,
		PurchaseDate:      now,
		NextDueDate:       now.AddDate(0, 1, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	item.DeriveStatus()
	return item
}

func TestStorage_ReplaceAndLoadInstallments(t *testing.T) {
	st, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	first := []models.Installment{newInstallment("Laptop", 0), newInstallment("Phone", 12)}
	require.NoError(t, st.ReplaceInstallments(ctx, first))

	loaded, err := st.LoadInstallments(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Laptop", loaded[0].Description)
	assert.True(t, loaded[0].TotalAmount.Equal(decimal.RequireFromString("1200")))
	assert.Equal(t, models.StatusCompleted, loaded[1].Status)
	assert.True(t, loaded[0].NextDueDate.Equal(first[0].NextDueDate))

	// полная перезапись: старые записи исчезают
	second := []models.Installment{newInstallment("TV", 3)}
	require.NoError(t, st.ReplaceInstallments(ctx, second))

	loaded, err = st.LoadInstallments(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "TV", loaded[0].Description)
	assert.Equal(t, 3, loaded[0].PaidInstallments)
}

func TestStorage_Cards(t *testing.T) {
	st, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	card := models.Card{ID: uuid.NewString(), Name: "Visa", StatementDay: 10, PaymentDay: 25}
	require.NoError(t, st.CreateCard(ctx, card))

	got, err := st.ReadCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, *got)

	list, err := st.ListCards(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err := st.RemoveCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = st.ReadCard(ctx, card.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
