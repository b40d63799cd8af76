package calculator

import (
	"math"
	"testing"
	"time"

	"clv-dashboard/pkg/models"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestPercentChange(t *testing.T) {
	cases := []struct{ a, b float64 }{
		{100, 150}, {200, 50}, {3, 3}, {0.5, 1.75}, {7, 0},
	}
	for _, c := range cases {
		assert.Equal(t, (c.b-c.a)/c.a*100, PercentChange(c.a, c.b))
	}
	assert.True(t, math.IsNaN(PercentChange(0, 10)))
	assert.True(t, math.IsNaN(PercentChange(0, 0)))
}

func TestMean_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Mean(nil, models.MetricFrequency)))
	assert.Equal(t, 0.0, Sum(nil, models.MetricTotalCLV))
}

func TestSummarize(t *testing.T) {
	customers := []models.CustomerRecord{
		{CustomerID: "a", LastPurchaseDate: day(2010, 5, 1), TotalCLV: 100, Frequency: 2, CustomerLifetime: 50},
		{CustomerID: "b", LastPurchaseDate: day(2011, 5, 1), TotalCLV: 300, Frequency: 5, CustomerLifetime: 90},
		{CustomerID: "c", LastPurchaseDate: day(2011, 8, 1), TotalCLV: 200, Frequency: 3, CustomerLifetime: 70},
		{CustomerID: "d", LastPurchaseDate: day(2009, 12, 1), TotalCLV: 100, Frequency: 4, CustomerLifetime: 30},
	}
	s := Summarize(customers, DefaultPeriods())

	assert.Equal(t, "2009-10", s.PeriodALabel)
	assert.Equal(t, "2011-12", s.PeriodBLabel)

	assert.Equal(t, NameCustomers, s.Customers.Name)
	assert.Equal(t, 4.0, s.Customers.Value)
	assert.Equal(t, 2.0, s.Customers.PeriodA)
	assert.Equal(t, 2.0, s.Customers.PeriodB)
	assert.Equal(t, 0.0, s.Customers.Delta)

	assert.Equal(t, 700.0, s.TotalCLV.Value)
	assert.Equal(t, 200.0, s.TotalCLV.PeriodA)
	assert.Equal(t, 500.0, s.TotalCLV.PeriodB)
	assert.Equal(t, 150.0, s.TotalCLV.Delta)

	assert.Equal(t, 175.0, s.AverageCLV.Value)
	assert.Equal(t, 100.0, s.AverageCLV.PeriodA)
	assert.Equal(t, 250.0, s.AverageCLV.PeriodB)
	assert.Equal(t, 150.0, s.AverageCLV.Delta)

	assert.Equal(t, 3.5, s.AverageFrequency.Value)
	assert.Equal(t, 3.0, s.AverageFrequency.PeriodA)
	assert.Equal(t, 4.0, s.AverageFrequency.PeriodB)
	assert.InDelta(t, 33.333, s.AverageFrequency.Delta, 0.001)

	assert.Equal(t, 60.0, s.AverageLifetime.Value)
	assert.Equal(t, 40.0, s.AverageLifetime.PeriodA)
	assert.Equal(t, 80.0, s.AverageLifetime.PeriodB)
	assert.Equal(t, 100.0, s.AverageLifetime.Delta)

	assert.Len(t, s.Metrics(), 5)
	assert.Equal(t, NameAverageLifetime, s.Metrics()[4].Name)
}

func TestSummarize_EmptyPeriodA(t *testing.T) {
	customers := []models.CustomerRecord{
		{CustomerID: "b", LastPurchaseDate: day(2011, 5, 1), TotalCLV: 300, Frequency: 5, CustomerLifetime: 90},
	}
	s := Summarize(customers, DefaultPeriods())

	assert.Equal(t, 0.0, s.Customers.PeriodA)
	for _, m := range s.Metrics() {
		assert.True(t, math.IsNaN(m.Delta), m.Name)
	}
	assert.Equal(t, 300.0, s.AverageCLV.Value)
	assert.True(t, math.IsNaN(s.AverageCLV.PeriodA))
}

func TestSummarize_NoCustomers(t *testing.T) {
	s := Summarize(nil, DefaultPeriods())
	assert.Equal(t, 0.0, s.Customers.Value)
	assert.True(t, math.IsNaN(s.AverageCLV.Value))
	assert.True(t, math.IsNaN(s.AverageFrequency.Value))
}
