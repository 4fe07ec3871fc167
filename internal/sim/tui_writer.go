package sim

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// rowMsg carries the latest telemetry sample.
type rowMsg struct{ reactor.Row }

// eventMsg carries a casualty lifecycle log line.
type eventMsg struct{ line string }

// stateMsg carries a simulation state update.
type stateMsg struct{ reactor.StateRow }

const maxEventLines = 200

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	tuiSafeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tuiUnsafeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	tuiOpsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	tuiBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// TUIWriter renders telemetry in a live bubbletea view: a channel table on
// top, a scrolling casualty/operations log below.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(runID string) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(runID), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		// Quitting the TUI stops the whole run.
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements RowWriter.
func (w *TUIWriter) Write(row reactor.Row) error {
	w.program.Send(rowMsg{row})
	return nil
}

// WriteBatch sends multiple telemetry rows.
func (w *TUIWriter) WriteBatch(rows []reactor.Row) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(ev casualty.EventRow) error {
	line := fmt.Sprintf("[%s] %s %s/%s at minute %d",
		ev.Timestamp.Format("15:04:05"), ev.Event, ev.Type, ev.Severity, ev.Minute)
	w.program.Send(eventMsg{line: line})
	return nil
}

// WriteEvents sends multiple casualty events.
func (w *TUIWriter) WriteEvents(rows []casualty.EventRow) error {
	for _, ev := range rows {
		_ = w.WriteEvent(ev)
	}
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row reactor.StateRow) error {
	w.program.Send(stateMsg{row})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	runID  string
	table  table.Model
	vp     viewport.Model
	logs   []string
	row    reactor.Row
	state  reactor.StateRow
	width  int
	height int
	wrap   bool
	ready  bool
}

func newTUIModel(runID string) tuiModel {
	cols := []table.Column{
		{Title: "CHANNEL", Width: 16},
		{Title: "VALUE", Width: 12},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(9))
	t.SetStyles(table.DefaultStyles())
	return tuiModel{runID: runID, table: t, wrap: true}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 16
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.vp = viewport.New(m.width-4, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = m.width - 4
			m.vp.Height = vpHeight
		}
		m.refreshViewport()
	case rowMsg:
		m.row = msg.Row
		m.table.SetRows([]table.Row{
			{"pH", fmt.Sprintf("%.3f", m.row.PH)},
			{"hydrogen", fmt.Sprintf("%.2f cc/kg", m.row.Hydrogen)},
			{"total gas", fmt.Sprintf("%.2f cc/kg", m.row.TotalGas)},
			{"temperature", fmt.Sprintf("%.1f F", m.row.Temperature)},
			{"pressure", fmt.Sprintf("%.1f psi", m.row.Pressure)},
			{"radioactivity", fmt.Sprintf("%.2f rad", m.row.Radioactivity)},
			{"power", fmt.Sprintf("%.1f %%", m.row.Power)},
		})
	case stateMsg:
		m.state = msg.StateRow
	case eventMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxEventLines {
			m.logs = m.logs[len(m.logs)-maxEventLines:]
		}
		m.refreshViewport()
		m.vp.GotoBottom()
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *tuiModel) refreshViewport() {
	if !m.ready {
		return
	}
	content := ""
	for _, l := range m.logs {
		if m.wrap {
			l = wordwrap.String(l, m.vp.Width)
		}
		content += l + "\n"
	}
	m.vp.SetContent(content)
}

func (m tuiModel) View() string {
	title := tuiTitleStyle.Render(fmt.Sprintf("nrsim %s  minute %d", m.runID, m.row.Minute))

	status := tuiSafeStyle.Render("reactor safe")
	if m.row.Safety != 0 {
		status = tuiUnsafeStyle.Render("REACTOR UNSAFE")
	}
	if m.row.Casualty != "" && m.row.Casualty != casualty.LabelNominal {
		status += "  " + tuiUnsafeStyle.Render(m.row.Casualty+"/"+m.row.Severity)
	}
	switch {
	case m.row.Charging:
		status += "  " + tuiOpsStyle.Render("chemical addition")
	case m.row.VentingGas:
		status += "  " + tuiOpsStyle.Render("venting gas")
	}

	channels := tuiBorderStyle.Render(m.table.View())
	log := tuiBorderStyle.Render(m.vp.View())
	help := lipgloss.NewStyle().Faint(true).Render("q quit · w wrap")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, channels, log, help)
}
