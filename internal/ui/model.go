package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const appName = "freewatch"

// maxLines caps the status history kept in memory.
const maxLines = 500

// AppState controls what the model is showing.
type AppState int

const (
	// StateWatching is sampling or waiting for the next check.
	StateWatching AppState = iota
	// StatePurging shows a spinner while the directory is purged.
	StatePurging
	// StateStopping waits for the monitor to finish its current cycle.
	StateStopping
	// StateStopped is shown for the final frame.
	StateStopped
)

// Summary is the fixed information shown in the header.
type Summary struct {
	TargetDir string
	Volume    string
	MinFreeGB uint64
	Period    time.Duration
	Pattern   string
}

// Model is the Bubble Tea application model.
type Model struct {
	info   Summary
	feed   *Feed
	cancel func()

	state     AppState
	lines     []string
	freeBytes uint64
	haveFree  bool
	nextRun   time.Time

	// UI dimensions
	width  int
	height int

	sp spinner.Model
}

// New builds the model. cancel is called on the first key press.
func New(info Summary, feed *Feed, cancel func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleBusy

	return Model{
		info:   info,
		feed:   feed,
		cancel: cancel,
		state:  StateWatching,
		sp:     sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.sp.Tick,
		tea.SetWindowTitle(appName),
		m.feed.next(),
	)
}

// appendLine adds a status line, dropping the oldest past maxLines.
func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if over := len(m.lines) - maxLines; over > 0 {
		m.lines = append(m.lines[:0], m.lines[over:]...)
	}
}
