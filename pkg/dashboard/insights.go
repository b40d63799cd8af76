package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
)

// concentrationShare is the share of total CLV the leading segments are counted up to.
const concentrationShare = 80.0

// Insights derives the takeaways panel from a report. An insight whose inputs are undefined is left out.
func Insights(r Report) []string {
	var out []string

	if s, ok := concentration(r.Share); ok {
		out = append(out, s)
	}

	sum := r.Summary
	if !math.IsNaN(sum.Customers.Delta) && !math.IsNaN(sum.AverageCLV.Delta) {
		out = append(out, fmt.Sprintf("Active customers %s, average CLV %s (%s → %s)",
			FormatDelta(sum.Customers.Delta), FormatDelta(sum.AverageCLV.Delta), sum.PeriodALabel, sum.PeriodBLabel))
	}

	if !math.IsNaN(sum.AverageLifetime.Value) && !math.IsNaN(sum.AverageFrequency.Value) {
		out = append(out, fmt.Sprintf("Customers stay %.0f days on average and buy %.1f times",
			sum.AverageLifetime.Value, sum.AverageFrequency.Value))
	}

	for _, b := range r.Bars {
		if b.Metric != models.MetricAvgOrderValue || len(b.Rows) == 0 {
			continue
		}
		top := lo.MaxBy(b.Rows, func(a, c models.SegmentValue) bool { return a.Value > c.Value })
		out = append(out, fmt.Sprintf("Highest average order value: %s (%s)", top.Segment, formatFixed(top.Value, 2)))
	}
	return out
}

// concentration names the fewest segments whose shares reach concentrationShare.
func concentration(rows []models.ShareRow) (string, bool) {
	ranked := lo.Filter(rows, func(r models.ShareRow, _ int) bool { return !math.IsNaN(r.Percent) })
	if len(ranked) == 0 {
		return "", false
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Percent > ranked[j].Percent })

	var (
		names []string
		total float64
	)
	for _, r := range ranked {
		names = append(names, string(r.Segment))
		total += r.Percent
		if total >= concentrationShare {
			break
		}
	}
	subject := fmt.Sprintf("%d segments drive", len(names))
	if len(names) == 1 {
		subject = "1 segment drives"
	}
	return fmt.Sprintf("%s %.0f%% of total CLV: %s", subject, total, strings.Join(names, ", ")), true
}
