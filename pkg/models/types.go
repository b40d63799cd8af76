package models

import (
	"fmt"
	"time"
)

/*
LOAD → typed records read from the customer and segment tables.
*/

// Segment is one of the eight customer groups assigned upstream.
type Segment string

const (
	SegmentPremium   Segment = "Premium"
	SegmentCore      Segment = "Core"
	SegmentPromising Segment = "Promising"
	SegmentEmerging  Segment = "Emerging"
	SegmentDeclining Segment = "Declining"
	SegmentCritical  Segment = "Critical"
	SegmentInactive  Segment = "Inactive"
	SegmentWatchlist Segment = "Watchlist"
)

var allSegments = []Segment{
	SegmentPremium, SegmentCore, SegmentPromising, SegmentEmerging,
	SegmentDeclining, SegmentCritical, SegmentInactive, SegmentWatchlist,
}

// AllSegments returns the closed segment set in display order.
func AllSegments() []Segment {
	out := make([]Segment, len(allSegments))
	copy(out, allSegments)
	return out
}

// ParseSegment accepts only labels from the closed set (exact match).
func ParseSegment(s string) (Segment, error) {
	for _, seg := range allSegments {
		if string(seg) == s {
			return seg, nil
		}
	}
	return "", fmt.Errorf("unknown segment %q", s)
}

// Rank is the position of the segment in display order, -1 if unknown.
func (s Segment) Rank() int {
	for i, seg := range allSegments {
		if seg == s {
			return i
		}
	}
	return -1
}

// CustomerRecord is one row of the per-customer table.
// Period and month buckets are derived from LastPurchaseDate by the calculator, never stored.
type CustomerRecord struct {
	CustomerID       string
	LastPurchaseDate time.Time // UTC
	Recency          float64   // days since last purchase
	Frequency        float64   // purchase count
	Monetary         float64
	PurchaseRate     float64
	AvgOrderValue    float64
	CustomerLifetime float64 // days
	TotalCLV         float64
	Segment          Segment
}

// SegmentRecord is one row of the per-segment table.
type SegmentRecord struct {
	Segment  Segment
	TotalCLV float64
}

// Dataset is the immutable pair of tables produced by one load.
type Dataset struct {
	Customers []CustomerRecord
	Segments  []SegmentRecord
	Source    string
	LoadedAt  time.Time
}

/*
METRICS → numeric fields of a customer, addressable by name.
*/

// Metric names a numeric column of the customer table.
type Metric string

const (
	MetricRecency          Metric = "Recency"
	MetricFrequency        Metric = "Frequency"
	MetricMonetary         Metric = "Monetary"
	MetricPurchaseRate     Metric = "PurchaseRate"
	MetricAvgOrderValue    Metric = "AvgOrderValue"
	MetricCustomerLifetime Metric = "CustomerLifetime"
	MetricTotalCLV         Metric = "TotalCLV"
)

// Value reads the metric from a customer. Unknown metrics read as 0.
func (m Metric) Value(c CustomerRecord) float64 {
	switch m {
	case MetricRecency:
		return c.Recency
	case MetricFrequency:
		return c.Frequency
	case MetricMonetary:
		return c.Monetary
	case MetricPurchaseRate:
		return c.PurchaseRate
	case MetricAvgOrderValue:
		return c.AvgOrderValue
	case MetricCustomerLifetime:
		return c.CustomerLifetime
	case MetricTotalCLV:
		return c.TotalCLV
	}
	return 0
}

// ComparisonMetrics is the fixed metric list of the top customer comparison.
func ComparisonMetrics() []Metric {
	return []Metric{MetricRecency, MetricFrequency, MetricMonetary, MetricCustomerLifetime, MetricTotalCLV}
}

/*
COMPUTE → ephemeral view rows, rebuilt on every pass.
*/

// MetricDelta is a headline number with its period-over-period change.
// Delta is NaN when the period A value is zero.
type MetricDelta struct {
	Name    string
	Value   float64
	PeriodA float64
	PeriodB float64
	Delta   float64 // percent
}

// Summary holds the five headline metrics.
type Summary struct {
	PeriodALabel string
	PeriodBLabel string

	Customers        MetricDelta
	TotalCLV         MetricDelta
	AverageCLV       MetricDelta
	AverageFrequency MetricDelta
	AverageLifetime  MetricDelta
}

// Metrics lists the headline metrics in display order.
func (s Summary) Metrics() []MetricDelta {
	return []MetricDelta{s.Customers, s.TotalCLV, s.AverageCLV, s.AverageFrequency, s.AverageLifetime}
}

// TrendRow is one (month, segment) point of the CLV time series.
type TrendRow struct {
	Month   time.Time
	Segment Segment
	Value   float64
}

// SegmentValue is one bar of a per-segment chart.
type SegmentValue struct {
	Segment Segment
	Value   float64
	Count   int
}

// NormalizedRow is one (customer, metric) value scaled by the metric's global maximum.
type NormalizedRow struct {
	CustomerID string
	Metric     Metric
	Value      float64 // NaN when the global maximum is zero
}

// ShareRow is one slice of the share-of-total-CLV pie.
type ShareRow struct {
	Segment  Segment
	TotalCLV float64
	Percent  float64 // NaN when total CLV is zero
}
