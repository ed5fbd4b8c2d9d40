package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	histBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type statsLoadedMsg struct {
	stats *datasetStats
	err   error
}

type model struct {
	dir     string
	workers int

	loading bool
	err     error
	stats   *datasetStats
	table   table.Model
}

func newModel(dir string, workers int) model {
	return model{dir: dir, workers: workers, loading: true}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		stats, err := collectStats(m.dir, m.workers)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.stats = msg.stats
		if m.stats != nil {
			m.table = buildEdgeTable(m.stats)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📊 Dataset Preview: " + m.dir))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("  Scanning dataset...\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("  Error: " + m.err.Error()))
		b.WriteString("\n")
	default:
		left := statsBoxStyle.Render(renderStats(m.stats))
		right := histBoxStyle.Render(renderHistogram(m.stats))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
		b.WriteString("\n\n")
		b.WriteString("  Sample edges:\n")
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("q: quit • ↑/↓: scroll edges"))
	return b.String()
}

func renderStats(st *datasetStats) string {
	return fmt.Sprintf(
		"Nodes:        %d\nEdges:        %d\n\nOut-degree\n  Mean:       %.2f\n  Std dev:    %.2f\n  Max:        %d",
		st.NodeCount, st.EdgeCount,
		st.MeanOutDegree, st.StdDevOutDegree, st.MaxOutDegree,
	)
}

func renderHistogram(st *datasetStats) string {
	var max int64
	for _, c := range st.DegreeHistogram {
		if c > max {
			max = c
		}
	}

	var b strings.Builder
	b.WriteString("Out-degree histogram\n")
	for i, c := range st.DegreeHistogram {
		bar := 0
		if max > 0 {
			bar = int(c * 24 / max)
		}
		fmt.Fprintf(&b, "%-12s %s %d\n", bucketLabel(i), strings.Repeat("█", bar), c)
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildEdgeTable(st *datasetStats) table.Model {
	cols := make([]table.Column, len(st.EdgeColumns))
	for i, name := range st.EdgeColumns {
		width := 12
		if len(name) > width {
			width = len(name)
		}
		cols[i] = table.Column{Title: name, Width: width}
	}

	rows := make([]table.Row, 0, len(st.SampleEdges))
	for _, edge := range st.SampleEdges {
		row := make(table.Row, len(cols))
		for i := range cols {
			if i < len(edge) {
				row[i] = edge[i]
			}
		}
		rows = append(rows, row)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(12),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	s.Selected = s.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#FF00FF"))
	t.SetStyles(s)
	return t
}
