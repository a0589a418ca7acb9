package models

import "time"

// KindExpense — единственный вид записей, который леджер рассрочек отправляет в журнал расходов.
const KindExpense = "expense"

// Expense — запись расхода, публикуемая при наступлении срока взноса.
type Expense struct {
	Amount        Amount    `json:"amount"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Kind          string    `json:"kind"`
	InstallmentID string    `json:"installment_id"`
	Date          time.Time `json:"date"`
}

// Notification — немедленное уведомление о наступившем взносе.
type Notification struct {
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CorrelationID string    `json:"correlation_id"`
	SentAt        time.Time `json:"sent_at"`
}
