package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/storage"
)

// CreateCard вставляет новую карту.
func (s *Storage) CreateCard(ctx context.Context, card models.Card) error {
	const op = "storage.repository.CreateCard"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO cards (id, name, color, statement_day, payment_day)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query,
		card.ID, card.Name, card.Color, card.StatementDay, card.PaymentDay); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadCard возвращает карту по ID или storage.ErrNotFound.
func (s *Storage) ReadCard(ctx context.Context, id string) (*models.Card, error) {
	const op = "storage.repository.ReadCard"

	query := `SELECT id, name, color, statement_day, payment_day
			  FROM cards WHERE id = $1`
	var card models.Card
	err := s.DB.QueryRowContext(ctx, query, id).
		Scan(&card.ID, &card.Name, &card.Color, &card.StatementDay, &card.PaymentDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &card, nil
}

// ListCards возвращает все карты.
func (s *Storage) ListCards(ctx context.Context) ([]*models.Card, error) {
	const op = "storage.repository.ListCards"

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, color, statement_day, payment_day
			  FROM cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Card
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.ID, &card.Name, &card.Color, &card.StatementDay, &card.PaymentDay); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveCard удаляет карту и возвращает количество удалённых строк.
// Рассрочки карты не трогаются: ссылка на карту слабая.
func (s *Storage) RemoveCard(ctx context.Context, id string) (int, error) {
	const op = "storage.repository.RemoveCard"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
