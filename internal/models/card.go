package models

// Card описывает кредитную карту из реестра карт.
// Леджер рассрочек только читает карты: день закрытия выписки (StatementDay)
// используется как якорь для дат платежей.
type Card struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color,omitempty"`
	StatementDay int    `json:"statement_day"` // 1–31, день закрытия цикла
	PaymentDay   int    `json:"payment_day"`   // 1–31
}

// CategoryLabel возвращает автоматически сгенерированную категорию расходов карты.
func (c Card) CategoryLabel() string {
	return "Credit card: " + c.Name
}

// DummyCard используется для приёма данных карты из JSON-запроса.
type DummyCard struct {
	Name         string `json:"name" validate:"required"`
	Color        string `json:"color,omitempty"`
	StatementDay int    `json:"statement_day" validate:"required,min=1,max=31"`
	PaymentDay   int    `json:"payment_day" validate:"required,min=1,max=31"`
}

// CardStatistics агрегирует активные рассрочки одной карты.
type CardStatistics struct {
	CardID           string `json:"card_id"`
	ActiveCount      int    `json:"active_count"`
	MonthlyAmount    Amount `json:"monthly_amount"`
	RemainingBalance Amount `json:"remaining_balance"`
}
