package dashboard

import (
	"strings"

	"clv-dashboard/pkg/aggregate"
	"clv-dashboard/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const helpText = "←/→ segment · space toggle · a all · n none · t total/avg · s segment · c customer · p/g previews · j/k scroll · q quit"

// Model is the interactive dashboard. Every key that changes the session rebuilds the report.
type Model struct {
	builder *Builder
	session *Session
	report  Report
	logger  *zap.Logger

	cursor int // index into models.AllSegments()
	scroll int
	width  int
	height int
}

func NewModel(b *Builder, s *Session, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s == nil {
		s = NewSession()
	}
	return Model{builder: b, session: s, report: b.Build(s), logger: logger, width: 100, height: 40}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	segments := models.AllSegments()
	changed := true

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "left", "h":
		m.cursor = (m.cursor + len(segments) - 1) % len(segments)
		changed = false
	case "right", "l":
		m.cursor = (m.cursor + 1) % len(segments)
		changed = false
	case " ", "space", "enter":
		m.session.ToggleSegment(segments[m.cursor])
	case "a":
		m.session.SelectAll()
	case "n":
		m.session.ClearSelection()
	case "t":
		m.session.ToggleMode()
	case "s":
		m.session.CycleFocusSegment(m.builder.SegmentOptions())
	case "c":
		m.session.CycleFocusCustomer(m.builder.TopCustomerIDs())
	case "p":
		m.session.ShowCustomers = !m.session.ShowCustomers
	case "g":
		m.session.ShowSegments = !m.session.ShowSegments
	case "j", "down":
		m.scroll++
		changed = false
	case "k", "up":
		if m.scroll > 0 {
			m.scroll--
		}
		changed = false
	default:
		changed = false
	}

	if changed {
		m.report = m.builder.Build(m.session)
		m.logger.Debug("report rebuilt",
			zap.Int("selected", len(m.session.Selected)),
			zap.String("mode", m.session.Mode.String()),
			zap.String("segment", string(m.session.FocusSegment)))
	}
	return m, nil
}

// Session exposes the current view state.
func (m Model) Session() *Session { return m.session }

// Report exposes the last built report.
func (m Model) Report() Report { return m.report }

func (m Model) View() string {
	header := lipgloss.JoinVertical(lipgloss.Left, m.segmentPicker(), captionStyle.Render(helpText))
	body := strings.Split(Render(m.report, m.width), "\n")

	visible := m.height - lipgloss.Height(header) - 1
	if visible < 1 {
		visible = len(body)
	}
	start := m.scroll
	if start > len(body)-1 {
		start = len(body) - 1
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(body) {
		end = len(body)
	}
	return header + "\n" + strings.Join(body[start:end], "\n")
}

func (m Model) segmentPicker() string {
	var b strings.Builder
	b.WriteString("Select a Customer Group: ")
	for i, s := range models.AllSegments() {
		box := "[ ]"
		if m.session.IsSelected(s) {
			box = "[x]"
		}
		item := box + " " + string(s)
		if i == m.cursor {
			item = focusStyle.Render(item)
		} else {
			item = segmentStyle(s).Render(item)
		}
		b.WriteString(item + " ")
	}
	mode := "Show Average CLV: off"
	if m.session.Mode == aggregate.ModeAverage {
		mode = "Show Average CLV: on"
	}
	b.WriteString(" · " + mode)
	return b.String()
}
