package models

// ProjectionItem — покупка, последний взнос которой приходится на месяц проекции.
type ProjectionItem struct {
	ID                string `json:"id"`
	CardID            string `json:"card_id"`
	Description       string `json:"description"`
	InstallmentAmount Amount `json:"installment_amount"`
}

// ProjectionMonth — оценка суммы взносов за один календарный месяц.
// Index 0 соответствует текущему месяцу.
type ProjectionMonth struct {
	Index     int              `json:"index"`
	Label     string           `json:"label"`
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Total     Amount           `json:"total"`
	Finishing []ProjectionItem `json:"finishing"`
}
