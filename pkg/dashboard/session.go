package dashboard

import (
	"clv-dashboard/pkg/aggregate"
	"clv-dashboard/pkg/models"

	"github.com/samber/lo"
)

// Session holds one user's view state. It is never shared between users;
// the dataset behind it is.
type Session struct {
	Selected      []models.Segment // multi-select, display order
	Mode          aggregate.Mode
	FocusSegment  models.Segment // "" means "Select a segment"
	FocusCustomer string         // "" means the first top customer
	ShowCustomers bool           // raw customer table preview
	ShowSegments  bool           // raw segment table preview
}

// NewSession starts with every segment selected and the total CLV trend.
func NewSession() *Session {
	return &Session{Selected: models.AllSegments(), Mode: aggregate.ModeTotal}
}

func (s *Session) IsSelected(seg models.Segment) bool {
	return lo.Contains(s.Selected, seg)
}

// ToggleSegment adds or removes seg from the selection, keeping display order.
func (s *Session) ToggleSegment(seg models.Segment) {
	if seg.Rank() < 0 {
		return
	}
	if s.IsSelected(seg) {
		s.Selected = lo.Without(s.Selected, seg)
		return
	}
	s.Selected = lo.Filter(models.AllSegments(), func(x models.Segment, _ int) bool {
		return x == seg || lo.Contains(s.Selected, x)
	})
}

func (s *Session) SelectAll()      { s.Selected = models.AllSegments() }
func (s *Session) ClearSelection() { s.Selected = []models.Segment{} }
func (s *Session) ToggleMode()     { s.Mode = s.Mode.Toggle() }

// CycleFocusSegment steps through "none" then each option, wrapping around.
func (s *Session) CycleFocusSegment(options []models.Segment) {
	if len(options) == 0 {
		s.FocusSegment = ""
		return
	}
	idx := lo.IndexOf(options, s.FocusSegment)
	switch {
	case s.FocusSegment == "" || idx < 0:
		s.FocusSegment = options[0]
	case idx == len(options)-1:
		s.FocusSegment = ""
	default:
		s.FocusSegment = options[idx+1]
	}
}

// CycleFocusCustomer steps through the top customers, wrapping around.
func (s *Session) CycleFocusCustomer(top []string) {
	if len(top) == 0 {
		s.FocusCustomer = ""
		return
	}
	idx := lo.IndexOf(top, s.FocusCustomer)
	if idx < 0 {
		idx = 0 // "" shows the first customer
	}
	s.FocusCustomer = top[(idx+1)%len(top)]
}
