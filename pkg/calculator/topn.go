package calculator

import (
	"math"
	"sort"

	"clv-dashboard/pkg/models"
)

// DefaultTopN is the size of the top customer comparison.
const DefaultTopN = 5

// TopCustomers returns the k customers with the highest TotalCLV.
// Ties keep input order; fewer than k rows returns them all.
func TopCustomers(customers []models.CustomerRecord, k int) []models.CustomerRecord {
	if k <= 0 || len(customers) == 0 {
		return nil
	}
	sorted := make([]models.CustomerRecord, len(customers))
	copy(sorted, customers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalCLV > sorted[j].TotalCLV })
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// GlobalMax returns the maximum of each metric over customers. Empty input yields no entries.
func GlobalMax(customers []models.CustomerRecord, metrics []models.Metric) map[models.Metric]float64 {
	out := make(map[models.Metric]float64, len(metrics))
	if len(customers) == 0 {
		return out
	}
	for _, m := range metrics {
		best := math.Inf(-1)
		for _, c := range customers {
			if v := m.Value(c); v > best {
				best = v
			}
		}
		out[m] = best
	}
	return out
}

// Normalize scales each metric of the top customers by its maximum over the whole table
// (all customers, not just top). A zero maximum yields NaN for that metric.
// Rows are customer-major, metrics in the order given.
func Normalize(all, top []models.CustomerRecord, metrics []models.Metric) []models.NormalizedRow {
	maxes := GlobalMax(all, metrics)
	out := make([]models.NormalizedRow, 0, len(top)*len(metrics))
	for _, c := range top {
		for _, m := range metrics {
			v := math.NaN()
			if d, ok := maxes[m]; ok && d != 0 {
				v = m.Value(c) / d
			}
			out = append(out, models.NormalizedRow{CustomerID: c.CustomerID, Metric: m, Value: v})
		}
	}
	return out
}

// CustomerIDs lists the identifiers of customers, in order.
func CustomerIDs(customers []models.CustomerRecord) []string {
	ids := make([]string, len(customers))
	for i, c := range customers {
		ids[i] = c.CustomerID
	}
	return ids
}
