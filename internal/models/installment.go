// Package models содержит доменные структуры леджера рассрочек:
// покупки в рассрочку, карты, расходы, уведомления и помесячную проекцию.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount — денежная сумма. Для расчётов используется decimal, чтобы
// округление до копеек было точным.
type Amount = decimal.Decimal

// Status — состояние покупки в рассрочку.
type Status string

const (
	// StatusActive — остались неоплаченные взносы.
	StatusActive Status = "active"
	// StatusCompleted — все взносы оплачены, терминальное состояние.
	StatusCompleted Status = "completed"
)

// Installment представляет покупку, разбитую на фиксированные ежемесячные взносы.
//
// Инварианты:
//   - 0 <= PaidInstallments <= InstallmentCount;
//   - Status == StatusCompleted тогда и только тогда, когда PaidInstallments >= InstallmentCount;
//   - после завершения NextDueDate больше не меняется.
type Installment struct {
	ID                string    `json:"id"`
	CardID            string    `json:"card_id"`
	Description       string    `json:"description"`
	Merchant          string    `json:"merchant,omitempty"`
	Category          string    `json:"category,omitempty"`
	TotalAmount       Amount    `json:"total_amount"`
	InstallmentCount  int       `json:"installment_count"`
	InstallmentAmount Amount    `json:"installment_amount"`
	PaidInstallments  int       `json:"paid_installments"`
	PurchaseDate      time.Time `json:"purchase_date"`
	NextDueDate       time.Time `json:"next_due_date"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PerInstallment делит сумму покупки на количество взносов с округлением до 2 знаков.
// Остаток от округления не распределяется.
func PerInstallment(total Amount, count int) Amount {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// Remaining возвращает количество неоплаченных взносов.
func (i Installment) Remaining() int {
	if i.PaidInstallments >= i.InstallmentCount {
		return 0
	}
	return i.InstallmentCount - i.PaidInstallments
}

// RemainingBalance — непогашенный остаток: total - amount*paid.
func (i Installment) RemainingBalance() Amount {
	paid := i.InstallmentAmount.Mul(decimal.NewFromInt(int64(i.PaidInstallments)))
	return i.TotalAmount.Sub(paid)
}

// IsActive сообщает, остались ли неоплаченные взносы.
func (i Installment) IsActive() bool {
	return i.Status == StatusActive
}

// DeriveStatus приводит Status в соответствие с количеством оплаченных взносов.
func (i *Installment) DeriveStatus() {
	if i.PaidInstallments >= i.InstallmentCount {
		i.Status = StatusCompleted
		return
	}
	i.Status = StatusActive
}

// NewInstallment — данные для создания покупки, уже прошедшие проверку вызывающей стороной.
type NewInstallment struct {
	CardID           string
	Description      string
	Merchant         string
	Category         string
	TotalAmount      Amount
	InstallmentCount int
	PurchaseDate     time.Time
}

// InstallmentPatch — частичное обновление покупки. nil-поля не изменяются.
type InstallmentPatch struct {
	CardID           *string
	Description      *string
	Merchant         *string
	Category         *string
	TotalAmount      *Amount
	InstallmentCount *int
	PaidInstallments *int
}

// DummyInstallment используется для приёма данных из JSON-запроса.
// Дата покупки приходит строкой в формате 2006-01-02.
type DummyInstallment struct {
	CardID           string  `json:"card_id" validate:"required"`
	Description      string  `json:"description" validate:"required"`
	Merchant         string  `json:"merchant,omitempty"`
	Category         string  `json:"category,omitempty"`
	TotalAmount      float64 `json:"total_amount" validate:"required,gt=0"`
	InstallmentCount int     `json:"installment_count" validate:"required,min=2,max=60"`
	PurchaseDate     string  `json:"purchase_date" validate:"required"`
}

// DummyInstallmentPatch — тело PATCH-запроса.
type DummyInstallmentPatch struct {
	CardID           *string  `json:"card_id,omitempty" validate:"omitempty,min=1"`
	Description      *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Merchant         *string  `json:"merchant,omitempty"`
	Category         *string  `json:"category,omitempty"`
	TotalAmount      *float64 `json:"total_amount,omitempty" validate:"omitempty,gt=0"`
	InstallmentCount *int     `json:"installment_count,omitempty" validate:"omitempty,min=2,max=60"`
	PaidInstallments *int     `json:"paid_installments,omitempty" validate:"omitempty,min=0"`
}

// Filter ограничивает выборку рассрочек. Пустые поля не фильтруют.
type Filter struct {
	CardID string
	Status Status
}
