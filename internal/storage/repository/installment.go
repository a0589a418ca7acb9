package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// LoadInstallments читает всю коллекцию рассрочек.
func (s *Storage) LoadInstallments(ctx context.Context) ([]models.Installment, error) {
	const op = "storage.repository.LoadInstallments"

	query := `SELECT id, card_id, description, merchant, category, total_amount,
				installment_count, installment_amount, paid_installments,
				purchase_date, next_due_date, status, created_at, updated_at
			  FROM installments
			  ORDER BY position`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Installment
	for rows.Next() {
		var item models.Installment
		if err := rows.Scan(&item.ID, &item.CardID, &item.Description, &item.Merchant, &item.Category,
			&item.TotalAmount, &item.InstallmentCount, &item.InstallmentAmount, &item.PaidInstallments,
			&item.PurchaseDate, &item.NextDueDate, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplaceInstallments перезаписывает коллекцию целиком в одной транзакции.
func (s *Storage) ReplaceInstallments(ctx context.Context, items []models.Installment) error {
	const op = "storage.repository.ReplaceInstallments"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM installments`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO installments (id, position, card_id, description,
				merchant, category, total_amount, installment_count, installment_amount,
				paid_installments, purchase_date, next_due_date, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for pos, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, pos, item.CardID, item.Description,
			item.Merchant, item.Category, item.TotalAmount, item.InstallmentCount, item.InstallmentAmount,
			item.PaidInstallments, item.PurchaseDate, item.NextDueDate, string(item.Status),
			item.CreatedAt, item.UpdatedAt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
