package dashboard

import (
	"fmt"

	"clv-dashboard/pkg/aggregate"
	"clv-dashboard/pkg/calculator"
	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// WarnEmptySelection is shown instead of the segment charts when nothing is selected.
const WarnEmptySelection = "Please select at least one segment"

// Options tunes report assembly.
type Options struct {
	Periods       calculator.PeriodScheme
	TopN          int
	PreviewRows   int // 0 previews every row
	HistogramBins int // 0 picks the bin count from the data
}

func DefaultOptions() Options {
	return Options{Periods: calculator.DefaultPeriods(), TopN: calculator.DefaultTopN, PreviewRows: 20}
}

// TrendView is the month x segment CLV series.
type TrendView struct {
	Title string
	Mode  aggregate.Mode
	Rows  []models.TrendRow
}

// ProfileView is the single-segment section.
type ProfileView struct {
	aggregate.SegmentProfile
	RecencyBins  []aggregate.Bin
	MonetaryBins []aggregate.Bin
}

// ComparisonView is the normalized top customer comparison.
type ComparisonView struct {
	Title    string
	Metrics  []models.Metric
	Top      []string
	Rows     []models.NormalizedRow // every top customer
	Selected string
}

// SelectedRows returns the rows of the selected customer.
func (c ComparisonView) SelectedRows() []models.NormalizedRow {
	return lo.Filter(c.Rows, func(r models.NormalizedRow, _ int) bool { return r.CustomerID == c.Selected })
}

// Report is everything one render pass needs.
type Report struct {
	Summary         models.Summary
	Trend           TrendView
	Bars            []aggregate.SegmentBars
	SegmentOptions  []models.Segment
	Profile         *ProfileView // nil until a segment is chosen
	Comparison      ComparisonView
	Share           []models.ShareRow
	CustomerPreview []models.CustomerRecord // nil unless toggled on
	SegmentPreview  []models.SegmentRecord
	Warnings        []string
}

// Builder turns the immutable dataset and a session into a Report.
// Values that do not depend on the session are computed once.
type Builder struct {
	ds     *models.Dataset
	opts   Options
	logger *zap.Logger

	summary    models.Summary
	top        []models.CustomerRecord
	comparison []models.NormalizedRow
	share      []models.ShareRow
	options    []models.Segment
}

func NewBuilder(ds *models.Dataset, opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopN <= 0 {
		opts.TopN = calculator.DefaultTopN
	}
	b := &Builder{ds: ds, opts: opts, logger: logger}
	b.summary = calculator.Summarize(ds.Customers, opts.Periods)
	b.top = calculator.TopCustomers(ds.Customers, opts.TopN)
	b.comparison = calculator.Normalize(ds.Customers, b.top, models.ComparisonMetrics())
	b.share = aggregate.SegmentShare(ds.Segments)
	b.options = aggregate.SegmentOptions(ds.Segments)
	return b
}

// TopCustomerIDs are the choices of the customer selector.
func (b *Builder) TopCustomerIDs() []string { return calculator.CustomerIDs(b.top) }

// SegmentOptions are the choices of the single-segment selector.
func (b *Builder) SegmentOptions() []models.Segment { return b.options }

// Build recomputes every session-dependent view.
func (b *Builder) Build(s *Session) Report {
	filtered := aggregate.FilterSegments(b.ds.Customers, s.Selected)

	r := Report{
		Summary: b.summary,
		Trend: TrendView{
			Title: s.Mode.Title(),
			Mode:  s.Mode,
			Rows:  aggregate.CLVTrend(filtered, s.Mode),
		},
		Bars:           aggregate.SegmentBarViews(filtered),
		SegmentOptions: b.options,
		Share:          b.share,
	}

	if len(r.Trend.Rows) == 0 {
		r.Warnings = append(r.Warnings, WarnEmptySelection)
		b.logger.Debug("empty segment selection", zap.Int("selected", len(s.Selected)))
	}

	if s.FocusSegment != "" && lo.Contains(b.options, s.FocusSegment) {
		p := aggregate.Profile(b.ds.Customers, s.FocusSegment)
		r.Profile = &ProfileView{
			SegmentProfile: p,
			RecencyBins:    aggregate.Histogram(p.Recency, b.opts.HistogramBins),
			MonetaryBins:   aggregate.Histogram(p.Monetary, b.opts.HistogramBins),
		}
	}

	top := b.TopCustomerIDs()
	selected := s.FocusCustomer
	if !lo.Contains(top, selected) && len(top) > 0 {
		selected = top[0]
	}
	r.Comparison = ComparisonView{
		Title:    fmt.Sprintf("Top %d Customer Comparison", b.opts.TopN),
		Metrics:  models.ComparisonMetrics(),
		Top:      top,
		Rows:     b.comparison,
		Selected: selected,
	}

	if s.ShowCustomers {
		r.CustomerPreview = head(b.ds.Customers, b.opts.PreviewRows)
	}
	if s.ShowSegments {
		r.SegmentPreview = head(b.ds.Segments, b.opts.PreviewRows)
	}
	return r
}

func head[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}
