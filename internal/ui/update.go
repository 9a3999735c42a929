package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobanhawi/freewatch/internal/monitor"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case eventMsg:
		return m.handleEvent(msg.Event)

	case feedClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey()
	}

	return m, nil
}

func (m Model) handleEvent(e monitor.Event) (tea.Model, tea.Cmd) {
	m.appendLine(e.Time.Format("15:04:05") + "  " + e.Line())

	var cmd tea.Cmd
	switch e.Kind {
	case monitor.EventFreeSpace:
		m.freeBytes = e.FreeBytes
		m.haveFree = true
	case monitor.EventPurgeStarted:
		if m.state == StateWatching {
			m.state = StatePurging
		}
	case monitor.EventPurgeFinished:
		if m.state == StatePurging {
			m.state = StateWatching
		}
	case monitor.EventNextRun:
		m.nextRun = e.NextRun
		cmd = tea.SetWindowTitle("NEXT RUN: " + e.NextRun.Format("15:04"))
	case monitor.EventStopped:
		m.state = StateStopped
		return m, tea.Quit
	}
	return m, tea.Batch(cmd, m.feed.next())
}

// handleKey stops the monitor on any key. While a purge finishes, a second
// key leaves the screen right away.
func (m Model) handleKey() (tea.Model, tea.Cmd) {
	if m.state == StateStopping {
		return m, tea.Quit
	}
	m.state = StateStopping
	m.appendLine("Stopping, waiting for the current check to finish…")
	if m.cancel != nil {
		m.cancel()
	}
	return m, nil
}
