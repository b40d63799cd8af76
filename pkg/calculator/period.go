package calculator

import (
	"fmt"
	"time"

	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
)

// PeriodScheme splits customers into two coarse periods by year of last purchase.
// Years in EarlyYears belong to period A, every other year to period B.
type PeriodScheme struct {
	EarlyYears []int
	EarlyLabel string
	LateLabel  string
}

// DefaultPeriods compares 2009-10 against 2011-12.
func DefaultPeriods() PeriodScheme {
	return PeriodScheme{EarlyYears: []int{2009, 2010}, EarlyLabel: "2009-10", LateLabel: "2011-12"}
}

// IsEarly reports whether t falls in period A.
func (p PeriodScheme) IsEarly(t time.Time) bool {
	return lo.Contains(p.EarlyYears, t.Year())
}

// Label returns the period label of t.
func (p PeriodScheme) Label(t time.Time) string {
	if p.IsEarly(t) {
		return p.EarlyLabel
	}
	return p.LateLabel
}

// Split partitions customers into (period A, period B), keeping input order.
func (p PeriodScheme) Split(customers []models.CustomerRecord) ([]models.CustomerRecord, []models.CustomerRecord) {
	return lo.FilterReject(customers, func(c models.CustomerRecord, _ int) bool {
		return p.IsEarly(c.LastPurchaseDate)
	})
}

// MonthBucket truncates t to the first day of its month (UTC).
func MonthBucket(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthAxis returns every month between the earliest and latest bucket of rows, inclusive.
func MonthAxis(rows []models.TrendRow) []time.Time {
	if len(rows) == 0 {
		return nil
	}
	first, last := rows[0].Month, rows[0].Month
	for _, r := range rows[1:] {
		if r.Month.Before(first) {
			first = r.Month
		}
		if r.Month.After(last) {
			last = r.Month
		}
	}
	return monthsBetweenInclusive(first, last)
}

func monthsBetweenInclusive(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// FormatMonth renders a month bucket as "MM/YYYY".
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}
