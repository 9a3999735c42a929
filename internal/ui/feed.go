package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobanhawi/freewatch/internal/monitor"
)

// eventMsg carries a monitor event into the Bubble Tea loop.
type eventMsg struct{ monitor.Event }

// feedClosedMsg is sent once the feed is closed and drained.
type feedClosedMsg struct{}

// Feed is a monitor.Sink that hands events to the UI. Report blocks while the
// buffer is full so no event is dropped, and stops blocking once the feed is
// closed.
type Feed struct {
	events chan monitor.Event
	done   chan struct{}
	once   sync.Once
}

// NewFeed returns an open Feed.
func NewFeed() *Feed {
	return &Feed{
		events: make(chan monitor.Event, 64),
		done:   make(chan struct{}),
	}
}

// Report implements monitor.Sink.
func (f *Feed) Report(e monitor.Event) {
	select {
	case f.events <- e:
	case <-f.done:
	}
}

// Close releases any blocked Report. Safe to call more than once.
func (f *Feed) Close() {
	f.once.Do(func() { close(f.done) })
}

// next waits for the next event.
func (f *Feed) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-f.events:
			return eventMsg{e}
		case <-f.done:
			return feedClosedMsg{}
		}
	}
}
