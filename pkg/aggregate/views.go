package aggregate

import (
	"sort"
	"time"

	"clv-dashboard/pkg/calculator"
	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
)

// Mode selects how the CLV trend reduces each (month, segment) group.
type Mode int

const (
	ModeTotal Mode = iota
	ModeAverage
)

func (m Mode) String() string {
	if m == ModeAverage {
		return "average"
	}
	return "total"
}

// Title is the chart title for the trend in this mode.
func (m Mode) Title() string {
	if m == ModeAverage {
		return "Average CLV by Customer Segment"
	}
	return "Total CLV by Customer Segment"
}

// Toggle switches between total and average.
func (m Mode) Toggle() Mode {
	if m == ModeAverage {
		return ModeTotal
	}
	return ModeAverage
}

type trendKey struct {
	month   time.Time
	segment models.Segment
}

// CLVTrend groups customers by (month of last purchase, segment) and sums or averages TotalCLV.
// Only groups present in the input are returned, ordered by month then segment.
func CLVTrend(customers []models.CustomerRecord, mode Mode) []models.TrendRow {
	groups := lo.GroupBy(customers, func(c models.CustomerRecord) trendKey {
		return trendKey{month: calculator.MonthBucket(c.LastPurchaseDate), segment: c.Segment}
	})

	rows := make([]models.TrendRow, 0, len(groups))
	for k, members := range groups {
		v := calculator.Sum(members, models.MetricTotalCLV)
		if mode == ModeAverage {
			v = calculator.Mean(members, models.MetricTotalCLV)
		}
		rows = append(rows, models.TrendRow{Month: k.month, Segment: k.segment, Value: v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Month.Equal(rows[j].Month) {
			return rows[i].Month.Before(rows[j].Month)
		}
		return rows[i].Segment.Rank() < rows[j].Segment.Rank()
	})
	return rows
}

// MeanBySegment averages metric per segment present in customers, in display order.
func MeanBySegment(customers []models.CustomerRecord, metric models.Metric) []models.SegmentValue {
	groups := lo.GroupBy(customers, func(c models.CustomerRecord) models.Segment { return c.Segment })

	keys := lo.Keys(groups)
	sortSegments(keys)

	out := make([]models.SegmentValue, 0, len(keys))
	for _, s := range keys {
		out = append(out, models.SegmentValue{
			Segment: s,
			Value:   calculator.Mean(groups[s], metric),
			Count:   len(groups[s]),
		})
	}
	return out
}

// SegmentBars is one per-segment bar chart.
type SegmentBars struct {
	Title  string
	Metric models.Metric
	Rows   []models.SegmentValue
}

// SegmentBarViews builds the three per-segment bar charts: lifetime, frequency and order value.
func SegmentBarViews(customers []models.CustomerRecord) []SegmentBars {
	return []SegmentBars{
		{Title: "Average Customer Lifetime by Segment", Metric: models.MetricCustomerLifetime,
			Rows: MeanBySegment(customers, models.MetricCustomerLifetime)},
		{Title: "Average Frequency by Segment", Metric: models.MetricFrequency,
			Rows: MeanBySegment(customers, models.MetricFrequency)},
		{Title: "Average Order Value by Segment", Metric: models.MetricAvgOrderValue,
			Rows: MeanBySegment(customers, models.MetricAvgOrderValue)},
	}
}

// SegmentProfile summarizes a single segment and carries its histogram inputs.
type SegmentProfile struct {
	Segment         models.Segment
	Customers       int
	AvgLifetime     float64 // NaN when the segment has no customers
	AvgFrequency    float64
	AvgPurchaseRate float64
	Recency         []float64
	Monetary        []float64
}

// Profile computes the single-segment view over the full customer table.
func Profile(customers []models.CustomerRecord, segment models.Segment) SegmentProfile {
	members := OnlySegment(customers, segment)
	return SegmentProfile{
		Segment:         segment,
		Customers:       len(members),
		AvgLifetime:     calculator.Mean(members, models.MetricCustomerLifetime),
		AvgFrequency:    calculator.Mean(members, models.MetricFrequency),
		AvgPurchaseRate: calculator.Mean(members, models.MetricPurchaseRate),
		Recency:         values(members, models.MetricRecency),
		Monetary:        values(members, models.MetricMonetary),
	}
}

func values(customers []models.CustomerRecord, metric models.Metric) []float64 {
	return lo.Map(customers, func(c models.CustomerRecord, _ int) float64 { return metric.Value(c) })
}

func sortSegments(s []models.Segment) {
	sort.Slice(s, func(i, j int) bool { return s[i].Rank() < s[j].Rank() })
}
