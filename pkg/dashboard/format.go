package dashboard

import (
	"fmt"
	"math"

	"clv-dashboard/pkg/calculator"
	"clv-dashboard/pkg/models"
)

const notAvailable = "n/a"

// FormatDelta renders a percent change as "+1.2%", or "n/a" when undefined.
func FormatDelta(d float64) string {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%+.1f%%", d)
}

// FormatMetric renders a headline value the way its card shows it.
func FormatMetric(m models.MetricDelta) string {
	if math.IsNaN(m.Value) {
		return notAvailable
	}
	switch m.Name {
	case calculator.NameCustomers:
		return fmt.Sprintf("%.0f", m.Value)
	case calculator.NameTotalCLV:
		return fmt.Sprintf("$%.1fM", m.Value/1e6)
	case calculator.NameAverageCLV:
		return fmt.Sprintf("$%.1fK", m.Value/1e3)
	}
	return fmt.Sprintf("%.1f", m.Value)
}

// formatFixed renders v with prec decimals, "n/a" for NaN.
func formatFixed(v float64, prec int) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// formatCompact keeps table cells short: 1.2M, 3.4K, 56.7.
func formatCompact(v float64) string {
	switch abs := math.Abs(v); {
	case math.IsNaN(v):
		return notAvailable
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	}
	return fmt.Sprintf("%.1f", v)
}
