package aggregate

import (
	"math"
	"testing"
	"time"

	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }

func fixture() []models.CustomerRecord {
	return []models.CustomerRecord{
		{CustomerID: "1", Segment: models.SegmentCore, LastPurchaseDate: month(2011, 3, 4), TotalCLV: 100, CustomerLifetime: 50, Frequency: 2, AvgOrderValue: 10, Recency: 5, Monetary: 80, PurchaseRate: 0.2},
		{CustomerID: "2", Segment: models.SegmentPremium, LastPurchaseDate: month(2011, 3, 20), TotalCLV: 300, CustomerLifetime: 90, Frequency: 5, AvgOrderValue: 40, Recency: 1, Monetary: 250, PurchaseRate: 0.6},
		{CustomerID: "3", Segment: models.SegmentCore, LastPurchaseDate: month(2011, 3, 28), TotalCLV: 200, CustomerLifetime: 70, Frequency: 3, AvgOrderValue: 20, Recency: 9, Monetary: 160, PurchaseRate: 0.4},
		{CustomerID: "4", Segment: models.SegmentInactive, LastPurchaseDate: month(2010, 1, 2), TotalCLV: 40, CustomerLifetime: 10, Frequency: 1, AvgOrderValue: 40, Recency: 400, Monetary: 40, PurchaseRate: 0.1},
		{CustomerID: "5", Segment: models.SegmentCore, LastPurchaseDate: month(2010, 1, 15), TotalCLV: 60, CustomerLifetime: 30, Frequency: 1, AvgOrderValue: 60, Recency: 380, Monetary: 60, PurchaseRate: 0.1},
	}
}

func segmentsOf(rows []models.SegmentValue) []models.Segment {
	return lo.Map(rows, func(r models.SegmentValue, _ int) models.Segment { return r.Segment })
}

func TestFilterSegments(t *testing.T) {
	got := FilterSegments(fixture(), []models.Segment{models.SegmentCore})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "3", "5"}, lo.Map(got, func(c models.CustomerRecord, _ int) string { return c.CustomerID }))
}

func TestFilterSegments_Empty(t *testing.T) {
	got := FilterSegments(fixture(), nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, CLVTrend(got, ModeTotal))
	assert.Empty(t, MeanBySegment(got, models.MetricFrequency))
}

func TestFilterThenGroup_SegmentsMatchSelection(t *testing.T) {
	data := fixture()
	present := lo.Uniq(lo.Map(data, func(c models.CustomerRecord, _ int) models.Segment { return c.Segment }))

	selections := [][]models.Segment{
		{models.SegmentCore},
		{models.SegmentCore, models.SegmentPremium},
		{models.SegmentWatchlist},
		{models.SegmentInactive, models.SegmentWatchlist, models.SegmentEmerging},
		models.AllSegments(),
	}
	for _, sel := range selections {
		rows := MeanBySegment(FilterSegments(data, sel), models.MetricCustomerLifetime)
		want := lo.Intersect(sel, present)
		assert.ElementsMatch(t, want, segmentsOf(rows), "selection %v", sel)
	}
}

func TestCLVTrend_Total(t *testing.T) {
	rows := CLVTrend(fixture(), ModeTotal)
	require.Len(t, rows, 4)

	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), rows[0].Month)
	assert.Equal(t, models.SegmentCore, rows[0].Segment)
	assert.Equal(t, 60.0, rows[0].Value)
	assert.Equal(t, models.SegmentInactive, rows[1].Segment)

	assert.Equal(t, time.Date(2011, 3, 1, 0, 0, 0, 0, time.UTC), rows[2].Month)
	assert.Equal(t, models.SegmentPremium, rows[2].Segment)
	assert.Equal(t, 300.0, rows[2].Value)
	assert.Equal(t, models.SegmentCore, rows[3].Segment)
	assert.Equal(t, 300.0, rows[3].Value)
}

func TestCLVTrend_Average(t *testing.T) {
	rows := CLVTrend(fixture(), ModeAverage)
	require.Len(t, rows, 4)
	assert.Equal(t, 150.0, rows[3].Value) // Core, 03/2011: (100+200)/2
}

func TestCLVTrend_Deterministic(t *testing.T) {
	first := CLVTrend(fixture(), ModeTotal)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, CLVTrend(fixture(), ModeTotal))
	}
}

func TestMeanBySegment(t *testing.T) {
	rows := MeanBySegment(fixture(), models.MetricCustomerLifetime)
	assert.Equal(t, []models.SegmentValue{
		{Segment: models.SegmentPremium, Value: 90, Count: 1},
		{Segment: models.SegmentCore, Value: 50, Count: 3},
		{Segment: models.SegmentInactive, Value: 10, Count: 1},
	}, rows)
}

func TestSegmentBarViews(t *testing.T) {
	views := SegmentBarViews(fixture())
	require.Len(t, views, 3)
	assert.Equal(t, "Average Customer Lifetime by Segment", views[0].Title)
	assert.Equal(t, models.MetricFrequency, views[1].Metric)
	assert.Equal(t, "Average Order Value by Segment", views[2].Title)
	assert.Equal(t, 30.0, views[2].Rows[1].Value) // Core: (10+20+60)/3
}

func TestProfile(t *testing.T) {
	p := Profile(fixture(), models.SegmentCore)
	assert.Equal(t, 3, p.Customers)
	assert.Equal(t, 50.0, p.AvgLifetime)
	assert.InDelta(t, 1.6667, p.AvgFrequency, 0.0001)
	assert.InDelta(t, 0.2333, p.AvgPurchaseRate, 0.0001)
	assert.Equal(t, []float64{5, 9, 380}, p.Recency)
	assert.Equal(t, []float64{80, 160, 60}, p.Monetary)

	empty := Profile(fixture(), models.SegmentWatchlist)
	assert.Zero(t, empty.Customers)
	assert.True(t, math.IsNaN(empty.AvgLifetime))
	assert.Empty(t, empty.Recency)
}

func TestMode(t *testing.T) {
	assert.Equal(t, ModeAverage, ModeTotal.Toggle())
	assert.Equal(t, ModeTotal, ModeAverage.Toggle())
	assert.Equal(t, "Average CLV by Customer Segment", ModeAverage.Title())
	assert.Equal(t, "total", ModeTotal.String())
}

// Three customers: A Core (100, 50d, 2), B Premium (300, 90d, 5), C Core (200, 70d, 3).
func TestThreeCustomerScenario(t *testing.T) {
	customers := []models.CustomerRecord{
		{CustomerID: "A", Segment: models.SegmentCore, TotalCLV: 100, CustomerLifetime: 50, Frequency: 2},
		{CustomerID: "B", Segment: models.SegmentPremium, TotalCLV: 300, CustomerLifetime: 90, Frequency: 5},
		{CustomerID: "C", Segment: models.SegmentCore, TotalCLV: 200, CustomerLifetime: 70, Frequency: 3},
	}

	life := MeanBySegment(customers, models.MetricCustomerLifetime)
	core, ok := lo.Find(life, func(r models.SegmentValue) bool { return r.Segment == models.SegmentCore })
	require.True(t, ok)
	assert.Equal(t, 60.0, core.Value)

	// segment table as the upstream pipeline would aggregate it
	segments := []models.SegmentRecord{
		{Segment: models.SegmentCore, TotalCLV: 300},
		{Segment: models.SegmentPremium, TotalCLV: 300},
	}
	assert.Equal(t, 600.0, lo.SumBy(segments, func(s models.SegmentRecord) float64 { return s.TotalCLV }))
	assert.Equal(t, 600.0, lo.SumBy(customers, func(c models.CustomerRecord) float64 { return c.TotalCLV }))

	share := SegmentShare(segments)
	assert.Equal(t, 50.0, share[1].Percent)
}
