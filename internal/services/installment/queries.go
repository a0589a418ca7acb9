package installment

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/month"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// TotalMonthlyCommitment — сумма взносов всех активных покупок.
func (l *Ledger) TotalMonthlyCommitment() models.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()

	return sum(l.activeLocked())
}

// StatisticsForCard считает активные покупки карты, их ежемесячную сумму
// и непогашенный остаток.
func (l *Ledger) StatisticsForCard(cardID string) models.CardStatistics {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := models.CardStatistics{
		CardID:           cardID,
		MonthlyAmount:    decimal.Zero,
		RemainingBalance: decimal.Zero,
	}
	for _, item := range l.activeLocked() {
		if item.CardID != cardID {
			continue
		}
		stats.ActiveCount++
		stats.MonthlyAmount = stats.MonthlyAmount.Add(item.InstallmentAmount)
		stats.RemainingBalance = stats.RemainingBalance.Add(item.RemainingBalance())
	}
	return stats
}

// MonthlyProjection возвращает ровно monthsAhead помесячных оценок, начиная
// с месяца now (индекс 0). Покупка с remaining неоплаченными взносами
// учитывается в месяцах [0, remaining) и завершается в месяце remaining-1.
// Реальные даты взносов не пересчитываются: считается, что на каждый месяц
// приходится ровно один взнос.
//
// Набор активных покупок фиксируется в момент вызова; месяцы вычисляются
// по мере обхода последовательности.
func (l *Ledger) MonthlyProjection(now time.Time, monthsAhead int) iter.Seq[models.ProjectionMonth] {
	l.mu.Lock()
	active := l.activeLocked()
	snapshot := make([]models.Installment, 0, len(active))
	for _, item := range active {
		snapshot = append(snapshot, *item)
	}
	l.mu.Unlock()

	return func(yield func(models.ProjectionMonth) bool) {
		for i := 0; i < monthsAhead; i++ {
			year, m := month.AddMonths(now.Year(), now.Month(), i)
			entry := models.ProjectionMonth{
				Index:     i,
				Label:     month.Label(year, m),
				Year:      year,
				Month:     int(m),
				Total:     decimal.Zero,
				Finishing: []models.ProjectionItem{},
			}
			for _, item := range snapshot {
				remaining := item.Remaining()
				if i >= remaining {
					continue
				}
				entry.Total = entry.Total.Add(item.InstallmentAmount)
				if i == remaining-1 {
					entry.Finishing = append(entry.Finishing, models.ProjectionItem{
						ID:                item.ID,
						CardID:            item.CardID,
						Description:       item.Description,
						InstallmentAmount: item.InstallmentAmount,
					})
				}
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// activeLocked вызывается под мьютексом.
func (l *Ledger) activeLocked() []*models.Installment {
	var active []*models.Installment
	for _, id := range l.order {
		if item := l.items[id]; item.IsActive() {
			active = append(active, item)
		}
	}
	return active
}
