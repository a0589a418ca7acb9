// Package month содержит календарную арифметику для дат взносов.
//
// Все даты взносов привязаны к дню закрытия выписки карты и нормализованы
// на полдень, чтобы сравнения не зависели от границ часовых поясов.
package month

import (
	"fmt"
	"time"
)

// Midday — час, на который нормализуются все даты взносов.
const Midday = 12

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month, loc *time.Location) int {
	// нулевой день следующего месяца — последний день текущего
	return time.Date(year, m+1, 0, 0, 0, 0, 0, loc).Day()
}

// AnchoredDate возвращает дату с днём day в указанном месяце.
// Если в месяце меньше дней, день прижимается к последнему дню месяца.
func AnchoredDate(year int, m time.Month, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	// нормализуем переполнение месяца (13 -> январь следующего года)
	first := time.Date(year, m, 1, Midday, 0, 0, 0, loc)
	year, m = first.Year(), first.Month()

	if last := DaysIn(year, m, loc); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, m, day, Midday, 0, 0, 0, loc)
}

// InitialDueDate вычисляет дату первого взноса.
// Покупка после дня закрытия попадает в следующий цикл, иначе в текущий.
func InitialDueDate(purchase time.Time, statementDay int) time.Time {
	target := purchase.Month()
	if purchase.Day() > statementDay {
		target++
	}
	return AnchoredDate(purchase.Year(), target, statementDay, purchase.Location())
}

// NextDueDate вычисляет дату следующего взноса: следующий месяц, тот же
// (прижатый) день закрытия. Недостача дней не переносится на следующий цикл.
func NextDueDate(current time.Time, statementDay int) time.Time {
	return AnchoredDate(current.Year(), current.Month()+1, statementDay, current.Location())
}

// Normalize переносит время даты на полдень того же дня.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), Midday, 0, 0, 0, t.Location())
}

// DateOnly отбрасывает время суток.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// OnOrBefore сравнивает только даты: true, если день a не позже дня b.
// b переводится в часовой пояс a.
func OnOrBefore(a, b time.Time) bool {
	return !DateOnly(a).After(DateOnly(b.In(a.Location())))
}

// AddMonths сдвигает пару (год, месяц) на n месяцев.
func AddMonths(year int, m time.Month, n int) (int, time.Month) {
	total := year*12 + int(m) - 1 + n
	return total / 12, time.Month(total%12 + 1)
}

// Label возвращает подпись месяца в формате 2006-01.
func Label(year int, m time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(m))
}
