package aggregate

import (
	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
)

// FilterSegments keeps the customers whose segment is selected, in input order.
// An empty selection yields an empty result; callers surface it as a warning.
func FilterSegments(customers []models.CustomerRecord, selected []models.Segment) []models.CustomerRecord {
	if len(selected) == 0 {
		return []models.CustomerRecord{}
	}
	set := make(map[models.Segment]bool, len(selected))
	for _, s := range selected {
		set[s] = true
	}
	return lo.Filter(customers, func(c models.CustomerRecord, _ int) bool { return set[c.Segment] })
}

// OnlySegment restricts customers to a single segment.
func OnlySegment(customers []models.CustomerRecord, segment models.Segment) []models.CustomerRecord {
	return FilterSegments(customers, []models.Segment{segment})
}

// SegmentOptions lists the distinct segments of the segment table, in display order.
func SegmentOptions(segments []models.SegmentRecord) []models.Segment {
	opts := lo.Uniq(lo.Map(segments, func(s models.SegmentRecord, _ int) models.Segment { return s.Segment }))
	sortSegments(opts)
	return opts
}
