// Package ui renders live batch progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"limbs/internal/batch"
)

const statusWidth = 10

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	cachedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type fileRow struct {
	path   string
	stage  batch.Stage
	status batch.Status
}

func (r fileRow) finished() bool {
	switch r.status {
	case batch.StatusDone, batch.StatusCached, batch.StatusError:
		return true
	}
	return false
}

type progressModel struct {
	title   string
	events  <-chan batch.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	index   map[string]int
	width   int
	done    bool
}

type eventMsg batch.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one row per batch
// file and an overall bar. The program quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan batch.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	rows := make([]fileRow, len(files))
	index := make(map[string]int, len(files))
	for i, f := range files {
		rows[i] = fileRow{path: f, status: batch.StatusQueued}
		index[f] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    rows,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(batch.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished := 0
	for _, r := range m.rows {
		if r.finished() {
			finished++
		}
	}
	header := fmt.Sprintf("%s %s  %d/%d", m.spinner.View(), m.title, finished, len(m.rows))
	if m.done {
		header = fmt.Sprintf("done: %s  %d/%d", m.title, finished, len(m.rows))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, r := range m.rows {
		label := rowLabel(r)
		fmt.Fprintf(&b, "  %s %s\n", rowStyle(r).Render(fmt.Sprintf("%*s", statusWidth, label)), truncate(r.path, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev batch.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	m.rows[idx].stage = ev.Stage
	m.rows[idx].status = ev.Status
	return m.bar.SetPercent(m.fraction())
}

// fraction weighs partially processed files by stage.
func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range m.rows {
		total += rowWeight(r)
	}
	return total / float64(len(m.rows))
}

func rowWeight(r fileRow) float64 {
	if r.finished() {
		return 1
	}
	if r.status != batch.StatusWorking {
		return 0
	}
	switch r.stage {
	case batch.StageRead:
		return 0.1
	case batch.StageCache:
		return 0.2
	case batch.StageEval:
		return 0.5
	default:
		return 0
	}
}

func rowLabel(r fileRow) string {
	if r.status != batch.StatusWorking {
		return string(r.status)
	}
	switch r.stage {
	case batch.StageRead:
		return "reading"
	case batch.StageCache:
		return "lookup"
	case batch.StageEval:
		return "evaluating"
	default:
		return "working"
	}
}

func rowStyle(r fileRow) lipgloss.Style {
	switch r.status {
	case batch.StatusDone:
		return doneStyle
	case batch.StatusCached:
		return cachedStyle
	case batch.StatusError:
		return errorStyle
	case batch.StatusWorking:
		return workingStyle
	default:
		return idleStyle
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
