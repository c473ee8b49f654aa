// Package tui renders a live terminal dashboard over the sync layer's
// snapshots. It never talks to the server itself; everything it shows comes
// from the local store.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/beanapologist/ProductiveMining-sub001/internal/dashboard"
)

// SnapshotSource provides point-in-time dashboard state.
type SnapshotSource interface {
	Snapshot() dashboard.Snapshot
}

const maxWidth = 110

var (
	indigo = lipgloss.Color("99")
	green  = lipgloss.Color("40")
	red    = lipgloss.Color("196")
	grey   = lipgloss.Color("240")
)

type styles struct {
	base      lipgloss.Style
	header    lipgloss.Style
	pane      lipgloss.Style
	paneTitle lipgloss.Style
	connected lipgloss.Style
	offline   lipgloss.Style
	dim       lipgloss.Style
}

func newStyles(lg *lipgloss.Renderer) *styles {
	s := &styles{}
	s.base = lg.NewStyle().Padding(1, 2)
	s.header = lg.NewStyle().Foreground(indigo).Bold(true).Padding(0, 1)
	s.pane = lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(indigo).
		Padding(0, 1).
		MarginTop(1)
	s.paneTitle = lg.NewStyle().Foreground(indigo).Bold(true)
	s.connected = lg.NewStyle().Foreground(green).Bold(true)
	s.offline = lg.NewStyle().Foreground(red).Bold(true)
	s.dim = lg.NewStyle().Foreground(grey)
	return s
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the bubbletea model for the terminal dashboard.
type Model struct {
	source SnapshotSource
	styles *styles
	width  int
	snap   dashboard.Snapshot
}

// New creates a dashboard model reading from source.
func New(source SnapshotSource) Model {
	return Model{
		source: source,
		styles: newStyles(lipgloss.DefaultRenderer()),
		width:  maxWidth,
		snap:   source.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > maxWidth {
			m.width = maxWidth
		}
	case tickMsg:
		m.snap = m.source.Snapshot()
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	s := m.styles

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.metricsView())
	b.WriteString("\n")
	b.WriteString(m.operationsView())
	b.WriteString("\n")
	b.WriteString(m.blocksView())
	b.WriteString("\n")
	b.WriteString(m.discoveriesView())
	b.WriteString("\n\n")
	b.WriteString(s.dim.Render("q quit"))
	return s.base.Render(b.String())
}

func (m Model) headerView() string {
	s := m.styles
	status := s.offline.Render("● offline")
	if m.snap.Connected {
		status = s.connected.Render("● live")
	}
	title := s.header.Render("Productive Mining")
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status) - 4
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + status
}

func (m Model) metricsView() string {
	s := m.styles
	if m.snap.Metrics == nil {
		return s.pane.Width(m.width - 4).Render(
			s.paneTitle.Render("Network") + "\n" + s.dim.Render("waiting for metrics"))
	}
	mt := m.snap.Metrics
	line1 := fmt.Sprintf("miners %d    blocks/h %.1f    avg block %.0fs",
		mt.ActiveMiners, mt.BlocksPerHour, mt.AverageBlockTime)
	line2 := fmt.Sprintf("hashrate %.0f    value/h $%.0f    knowledge %d",
		mt.NetworkHashrate, mt.ScientificValue, mt.TotalKnowledgeCreated)
	return s.pane.Width(m.width - 4).Render(
		s.paneTitle.Render("Network") + "\n" + line1 + "\n" + line2)
}

func (m Model) operationsView() string {
	s := m.styles
	var lines []string
	for _, op := range m.snap.Operations {
		lines = append(lines, fmt.Sprintf("%-22s d%-3d %s %3.0f%%  %s",
			op.WorkType, op.Difficulty, progressBar(op.Progress), op.Progress*100, op.Status))
	}
	if len(lines) == 0 {
		lines = append(lines, s.dim.Render("no operations"))
	}
	return s.pane.Width(m.width - 4).Render(
		s.paneTitle.Render("Operations") + "\n" + strings.Join(lines, "\n"))
}

func (m Model) blocksView() string {
	s := m.styles
	var lines []string
	for i, b := range m.snap.Blocks {
		if i >= 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("#%-5d %s  $%-7.0f %s",
			b.Index, shortHash(b.BlockHash), b.TotalScientificValue,
			b.Timestamp.Local().Format("15:04:05")))
	}
	if len(lines) == 0 {
		lines = append(lines, s.dim.Render("no blocks yet"))
	}
	return s.pane.Width(m.width - 4).Render(
		s.paneTitle.Render("Blocks") + "\n" + strings.Join(lines, "\n"))
}

func (m Model) discoveriesView() string {
	s := m.styles
	var lines []string
	for i, d := range m.snap.Discoveries {
		if i >= 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("%-22s d%-3d $%-7.0f %s",
			d.WorkType, d.Difficulty, d.ScientificValue,
			d.Timestamp.Local().Format("15:04:05")))
	}
	if len(lines) == 0 {
		lines = append(lines, s.dim.Render("no discoveries yet"))
	}
	return s.pane.Width(m.width - 4).Render(
		s.paneTitle.Render("Discoveries") + "\n" + strings.Join(lines, "\n"))
}

func progressBar(p float64) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	const width = 20
	filled := int(p * width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}

// Run blocks inside the bubbletea program until the user quits.
func Run(source SnapshotSource) error {
	p := tea.NewProgram(New(source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
