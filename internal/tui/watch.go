// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FScoward/oh-my-claudecode/internal/watch"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginLeft(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginLeft(1).
			MarginTop(1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")).
		MarginLeft(1)

	countsStyle = lipgloss.NewStyle().
			Bold(true).
			MarginLeft(1).
			MarginBottom(1)
)

// WatchModel represents the interactive overlap watch TUI state.
type WatchModel struct {
	table      table.Model
	watcher    *watch.Watcher
	teamName   string
	workers    int
	lastUpdate time.Time
	quitting   bool
	overlaps   int
}

type tickMsg time.Time

type overlapsMsg struct {
	overlaps []watch.Overlap
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// NewWatchModel creates an overlap watch TUI over a running watcher.
func NewWatchModel(watcher *watch.Watcher, teamName string, workers int) WatchModel {
	columns := []table.Column{
		{Title: "File", Width: 50},
		{Title: "Workers", Width: 30},
		{Title: "Last Modified", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("12"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return WatchModel{
		table:    t,
		watcher:  watcher,
		teamName: teamName,
		workers:  workers,
	}
}

// Init initializes the model.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.refreshOverlaps(),
	)
}

// Update handles messages and updates the model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			// Manual refresh
			return m, m.refreshOverlaps()
		}

	case tea.WindowSizeMsg:
		// Reserve space for header, counts, and footer
		m.table.SetHeight(msg.Height - 8)
		return m, nil

	case tickMsg:
		return m, tea.Batch(
			tickCmd(),
			m.refreshOverlaps(),
		)

	case overlapsMsg:
		m.lastUpdate = time.Now()
		m.overlaps = len(msg.overlaps)

		rows := make([]table.Row, len(msg.overlaps))
		for i, overlap := range msg.overlaps {
			rows[i] = table.Row{
				overlap.RelativePath,
				strings.Join(overlap.Workers, ", "),
				overlap.LastModified.Format("15:04:05"),
			}
		}
		m.table.SetRows(rows)
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the TUI.
func (m WatchModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf("Overlap Watch: %s", m.teamName))
	timestamp := timestampStyle.Render(fmt.Sprintf("Last update: %s", m.lastUpdate.Format("15:04:05")))

	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", 5),
		timestamp,
	)
	b.WriteString(header)
	b.WriteString("\n\n")

	counts := countsStyle.Render(fmt.Sprintf(
		"Workers watched: %d | Overlapping files: %d",
		m.workers, m.overlaps,
	))
	b.WriteString(counts)
	b.WriteString("\n")

	if m.overlaps == 0 {
		b.WriteString(okStyle.Render("No overlapping files. Workers are staying in their lanes."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	help := helpStyle.Render("↑/↓: navigate • r: refresh • q/esc: quit")
	b.WriteString(help)

	return b.String()
}

func (m WatchModel) refreshOverlaps() tea.Cmd {
	return func() tea.Msg {
		return overlapsMsg{overlaps: m.watcher.Overlaps()}
	}
}

// RunWatch starts the interactive overlap watch TUI over a running watcher.
func RunWatch(watcher *watch.Watcher, teamName string, workers int) error {
	p := tea.NewProgram(
		NewWatchModel(watcher, teamName, workers),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
