package aggregate

import (
	"math"

	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
)

// SegmentShare derives each segment row's percent of the table's total CLV.
// A zero total makes every percent NaN.
func SegmentShare(segments []models.SegmentRecord) []models.ShareRow {
	total := lo.SumBy(segments, func(s models.SegmentRecord) float64 { return s.TotalCLV })
	out := make([]models.ShareRow, 0, len(segments))
	for _, s := range segments {
		pct := math.NaN()
		if total != 0 {
			pct = s.TotalCLV / total * 100
		}
		out = append(out, models.ShareRow{Segment: s.Segment, TotalCLV: s.TotalCLV, Percent: pct})
	}
	return out
}
