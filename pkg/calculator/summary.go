package calculator

import (
	"math"

	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
)

// Headline metric names, in display order.
const (
	NameCustomers        = "Active Customers"
	NameTotalCLV         = "Total CLV"
	NameAverageCLV       = "Average CLV"
	NameAverageFrequency = "Average Frequency"
	NameAverageLifetime  = "Avg Customer Lifetime"
)

// PercentChange returns (b - a) / a * 100, or NaN when a is zero.
func PercentChange(a, b float64) float64 {
	if a == 0 {
		return math.NaN()
	}
	return (b - a) / a * 100
}

// Mean averages metric over customers; NaN for an empty slice.
func Mean(customers []models.CustomerRecord, metric models.Metric) float64 {
	if len(customers) == 0 {
		return math.NaN()
	}
	return Sum(customers, metric) / float64(len(customers))
}

// Sum adds metric over customers.
func Sum(customers []models.CustomerRecord, metric models.Metric) float64 {
	return lo.SumBy(customers, func(c models.CustomerRecord) float64 { return metric.Value(c) })
}

type periodStats struct {
	count   float64
	total   float64
	avgCLV  float64
	avgFreq float64
	avgLife float64
}

func statsOf(customers []models.CustomerRecord) periodStats {
	st := periodStats{
		count:   float64(len(customers)),
		total:   Sum(customers, models.MetricTotalCLV),
		avgFreq: Mean(customers, models.MetricFrequency),
		avgLife: Mean(customers, models.MetricCustomerLifetime),
	}
	st.avgCLV = math.NaN()
	if st.count > 0 {
		st.avgCLV = st.total / st.count
	}
	return st
}

// Summarize computes the five headline metrics overall and per period, with A→B percent deltas.
func Summarize(customers []models.CustomerRecord, periods PeriodScheme) models.Summary {
	early, late := periods.Split(customers)
	all, a, b := statsOf(customers), statsOf(early), statsOf(late)

	delta := func(name string, pick func(periodStats) float64) models.MetricDelta {
		va, vb := pick(a), pick(b)
		return models.MetricDelta{
			Name:    name,
			Value:   pick(all),
			PeriodA: va,
			PeriodB: vb,
			Delta:   PercentChange(va, vb),
		}
	}

	return models.Summary{
		PeriodALabel:     periods.EarlyLabel,
		PeriodBLabel:     periods.LateLabel,
		Customers:        delta(NameCustomers, func(s periodStats) float64 { return s.count }),
		TotalCLV:         delta(NameTotalCLV, func(s periodStats) float64 { return s.total }),
		AverageCLV:       delta(NameAverageCLV, func(s periodStats) float64 { return s.avgCLV }),
		AverageFrequency: delta(NameAverageFrequency, func(s periodStats) float64 { return s.avgFreq }),
		AverageLifetime:  delta(NameAverageLifetime, func(s periodStats) float64 { return s.avgLife }),
	}
}
