package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"clv-dashboard/pkg/aggregate"
	"clv-dashboard/pkg/calculator"
	"clv-dashboard/pkg/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

var segmentColors = map[models.Segment]lipgloss.Color{
	models.SegmentPremium:   "#F4A261",
	models.SegmentCritical:  "#3A86FF",
	models.SegmentCore:      "#2EC4B6",
	models.SegmentPromising: "#FF9F1C",
	models.SegmentWatchlist: "#8AC926",
	models.SegmentDeclining: "#90DBF4",
	models.SegmentInactive:  "#FF595E",
	models.SegmentEmerging:  "#FFD166",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F4A261"))
	captionStyle = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginRight(1)
	labelStyle   = lipgloss.NewStyle().Faint(true)
	upStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#2EC4B6"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF595E"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD166"))
	focusStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
)

const (
	minBarWidth = 10
	labelWidth  = 22
)

// Render lays the report out as text, width columns wide.
func Render(r Report, width int) string {
	sections := []string{
		titleStyle.Render("Customer Lifetime Value Analysis"),
		captionStyle.Render("Understand customer value, segments and revenue contribution"),
		renderSummary(r.Summary),
		renderTrend(r, width),
	}
	for _, b := range r.Bars {
		sections = append(sections, renderSegmentBars(b, r.Warnings, width))
	}
	sections = append(sections,
		renderProfile(r.Profile, r.SegmentOptions, width),
		renderComparison(r.Comparison, width),
		renderShare(r.Share, width),
		renderInsights(Insights(r)),
	)
	if r.CustomerPreview != nil {
		sections = append(sections, renderCustomerPreview(r.CustomerPreview))
	}
	if r.SegmentPreview != nil {
		sections = append(sections, renderSegmentPreview(r.SegmentPreview))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func renderSummary(s models.Summary) string {
	cards := lo.Map(s.Metrics(), func(m models.MetricDelta, _ int) string {
		body := labelStyle.Render(m.Name) + "\n" + lipgloss.NewStyle().Bold(true).Render(FormatMetric(m))
		if !math.IsNaN(m.Delta) {
			style := upStyle
			arrow := "▲"
			if m.Delta < 0 {
				style, arrow = downStyle, "▼"
			}
			body += "\n" + style.Render(arrow+" "+FormatDelta(m.Delta))
		} else {
			body += "\n" + labelStyle.Render(notAvailable)
		}
		return cardStyle.Render(body)
	})
	legend := captionStyle.Render(fmt.Sprintf("change: %s → %s", s.PeriodALabel, s.PeriodBLabel))
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, cards...), legend)
}

func hasWarning(warnings []string, w string) bool { return lo.Contains(warnings, w) }

func renderTrend(r Report, width int) string {
	out := []string{headerStyle.Render(r.Trend.Title)}
	if hasWarning(r.Warnings, WarnEmptySelection) {
		return strings.Join(append(out, warnStyle.Render("⚠ "+WarnEmptySelection)), "\n")
	}

	segs := lo.Uniq(lo.Map(r.Trend.Rows, func(t models.TrendRow, _ int) models.Segment { return t.Segment }))
	sortByRank(segs)

	cells := make(map[time.Time]map[models.Segment]float64)
	for _, row := range r.Trend.Rows {
		if cells[row.Month] == nil {
			cells[row.Month] = make(map[models.Segment]float64)
		}
		cells[row.Month][row.Segment] = row.Value
	}

	colWidth := 10
	var hdr strings.Builder
	fmt.Fprintf(&hdr, "%-8s", "Month")
	for _, s := range segs {
		fmt.Fprintf(&hdr, " %*s", colWidth, truncate(string(s), colWidth))
	}
	out = append(out, truncate(hdr.String(), width))

	for _, m := range calculator.MonthAxis(r.Trend.Rows) {
		var line strings.Builder
		fmt.Fprintf(&line, "%-8s", calculator.FormatMonth(m))
		for _, s := range segs {
			v, ok := cells[m][s]
			cell := "-"
			if ok {
				cell = formatCompact(v)
			}
			fmt.Fprintf(&line, " %*s", colWidth, cell)
		}
		out = append(out, truncate(line.String(), width))
	}
	return strings.Join(out, "\n")
}

func renderSegmentBars(b aggregate.SegmentBars, warnings []string, width int) string {
	out := []string{headerStyle.Render(b.Title)}
	if hasWarning(warnings, WarnEmptySelection) {
		return strings.Join(append(out, warnStyle.Render("⚠ "+WarnEmptySelection)), "\n")
	}
	maxV := lo.MaxBy(b.Rows, func(a, c models.SegmentValue) bool { return a.Value > c.Value }).Value
	for _, row := range b.Rows {
		out = append(out, barLine(string(row.Segment), row.Value, maxV, formatFixed(row.Value, 1), segmentStyle(row.Segment), width))
	}
	return strings.Join(out, "\n")
}

func renderProfile(p *ProfileView, options []models.Segment, width int) string {
	out := []string{headerStyle.Render("Segment analysis")}
	if p == nil {
		names := lo.Map(options, func(s models.Segment, _ int) string { return string(s) })
		out = append(out, captionStyle.Render("Select a segment: "+strings.Join(names, ", ")))
		return strings.Join(out, "\n")
	}

	cards := []string{
		cardStyle.Render(labelStyle.Render("Avg Customer Lifetime") + "\n" + formatFixed(p.AvgLifetime, 2)),
		cardStyle.Render(labelStyle.Render("Average Frequency") + "\n" + formatFixed(p.AvgFrequency, 2)),
		cardStyle.Render(labelStyle.Render("Average Purchase Rate") + "\n" + formatFixed(p.AvgPurchaseRate, 2)),
	}
	out = append(out,
		segmentStyle(p.Segment).Bold(true).Render(fmt.Sprintf("%s (%d customers)", p.Segment, p.Customers)),
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		renderHistogram("Recency", p.RecencyBins, p.Segment, width),
		renderHistogram("Monetary", p.MonetaryBins, p.Segment, width),
	)
	return strings.Join(out, "\n")
}

func renderHistogram(title string, bins []aggregate.Bin, seg models.Segment, width int) string {
	out := []string{labelStyle.Render(title)}
	if len(bins) == 0 {
		return strings.Join(append(out, captionStyle.Render("no customers")), "\n")
	}
	maxC := lo.MaxBy(bins, func(a, b aggregate.Bin) bool { return a.Count > b.Count }).Count
	for _, b := range bins {
		label := fmt.Sprintf("%s–%s", formatCompact(b.Lower), formatCompact(b.Upper))
		out = append(out, barLine(label, float64(b.Count), float64(maxC), fmt.Sprintf("%d", b.Count), segmentStyle(seg), width))
	}
	return strings.Join(out, "\n")
}

func renderComparison(c ComparisonView, width int) string {
	out := []string{headerStyle.Render(c.Title)}
	if len(c.Top) == 0 {
		return strings.Join(append(out, captionStyle.Render("no customers")), "\n")
	}
	ids := lo.Map(c.Top, func(id string, _ int) string {
		if id == c.Selected {
			return focusStyle.Render(" " + id + " ")
		}
		return " " + id + " "
	})
	out = append(out, "Customer ID: "+strings.Join(ids, " "))
	for _, r := range c.SelectedRows() {
		out = append(out, barLine(string(r.Metric), r.Value, 1, formatFixed(r.Value, 2), lipgloss.NewStyle(), width))
	}
	return strings.Join(out, "\n")
}

func renderShare(rows []models.ShareRow, width int) string {
	out := []string{headerStyle.Render("Share of Total CLV")}
	for _, r := range rows {
		label := formatFixed(r.Percent, 1) + "%"
		out = append(out, barLine(string(r.Segment), r.Percent, 100, label, segmentStyle(r.Segment), width))
	}
	return strings.Join(out, "\n")
}

func renderInsights(items []string) string {
	out := []string{headerStyle.Render("Insights")}
	for i, item := range items {
		out = append(out, fmt.Sprintf("%d. %s", i+1, item))
	}
	return strings.Join(out, "\n")
}

func renderCustomerPreview(rows []models.CustomerRecord) string {
	out := []string{
		headerStyle.Render("Customer Data Preview"),
		fmt.Sprintf("%-12s %-10s %8s %9s %10s %8s %10s %9s %10s %-10s",
			"Customer ID", "LastPurch", "Recency", "Frequency", "Monetary", "PurchRt", "AvgOrder", "Lifetime", "TotalCLV", "Segment"),
	}
	for _, c := range rows {
		out = append(out, fmt.Sprintf("%-12s %-10s %8.0f %9.0f %10.2f %8.3f %10.2f %9.0f %10.2f %-10s",
			c.CustomerID, c.LastPurchaseDate.Format("2006-01-02"), c.Recency, c.Frequency, c.Monetary,
			c.PurchaseRate, c.AvgOrderValue, c.CustomerLifetime, c.TotalCLV, c.Segment))
	}
	return strings.Join(out, "\n")
}

func renderSegmentPreview(rows []models.SegmentRecord) string {
	out := []string{headerStyle.Render("Segment Data Preview"), fmt.Sprintf("%-10s %14s", "Segment", "TotalCLV")}
	for _, s := range rows {
		out = append(out, fmt.Sprintf("%-10s %14.2f", s.Segment, s.TotalCLV))
	}
	return strings.Join(out, "\n")
}

// barLine draws "label ████ value" with the bar scaled against maxV.
func barLine(label string, v, maxV float64, value string, style lipgloss.Style, width int) string {
	barWidth := width - labelWidth - len(value) - 2
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	n := 0
	if maxV > 0 && !math.IsNaN(v) && v > 0 {
		n = int(math.Round(v / maxV * float64(barWidth)))
	}
	if n > barWidth {
		n = barWidth
	}
	return fmt.Sprintf("%-*s %s %s", labelWidth, truncate(label, labelWidth), style.Render(strings.Repeat("█", n)), value)
}

func segmentStyle(s models.Segment) lipgloss.Style {
	if c, ok := segmentColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle()
}

func sortByRank(segs []models.Segment) {
	sort.Slice(segs, func(i, j int) bool { return segs[i].Rank() < segs[j].Rank() })
}

func truncate(s string, w int) string {
	if w <= 0 || lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	if len(r) > w {
		r = r[:w]
	}
	return string(r)
}
