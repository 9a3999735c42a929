package monitor

import (
	"fmt"
	"io"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/mobanhawi/freewatch/internal/purge"
)

// EventKind says what an Event reports.
type EventKind int

const (
	// EventFreeSpace carries a fresh free space reading.
	EventFreeSpace EventKind = iota
	// EventBelowThreshold is sent right before a purge is started.
	EventBelowThreshold
	// EventPurgeStarted names the directory being purged.
	EventPurgeStarted
	// EventPurgeFinished carries the purge outcome, and Err for soft failures.
	EventPurgeFinished
	// EventProbeFailed carries a ProbeError; the cycle makes no purge decision.
	EventProbeFailed
	// EventCycleFailed reports a fault recovered at the cycle boundary.
	EventCycleFailed
	// EventNextRun carries the advisory time of the next cycle.
	EventNextRun
	// EventStopped is the last event of a monitor.
	EventStopped
)

// Event is one status update from the monitor loop.
type Event struct {
	Kind EventKind
	Time time.Time

	Cycle     int
	Dir       string
	Volume    string
	FreeBytes uint64
	FreeGB    uint64
	MinGB     uint64
	Outcome   purge.Outcome
	Err       error
	NextRun   time.Time
}

// Line renders the event as a single status line.
func (e Event) Line() string {
	switch e.Kind {
	case EventFreeSpace:
		return fmt.Sprintf("Current free space: %d GB (%s)", e.FreeGB, humanize.IBytes(e.FreeBytes))
	case EventBelowThreshold:
		return fmt.Sprintf("%s Free space in %s (%d GB) is below the minimum specified (%d GB)",
			e.Time.Format(time.DateTime), e.Volume, e.FreeGB, e.MinGB)
	case EventPurgeStarted:
		return "Proceeding to clean the content of: " + e.Dir
	case EventPurgeFinished:
		o := e.Outcome
		line := fmt.Sprintf("Purge finished: %d files (%s) and %d folders removed, %d skipped",
			o.Removed, humanize.IBytes(uint64(max(o.Bytes, 0))), o.DirsRemoved, o.Skipped)
		if e.Err != nil {
			line += ": " + e.Err.Error()
		}
		return line
	case EventProbeFailed:
		return "Could not read free space: " + errString(e.Err)
	case EventCycleFailed:
		return "Check failed: " + errString(e.Err)
	case EventNextRun:
		return "Next run: " + e.NextRun.Format(time.Kitchen)
	case EventStopped:
		return fmt.Sprintf("Monitor stopped after %d checks", e.Cycle)
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Sink receives monitor events. Report is called from the monitor goroutine.
type Sink interface {
	Report(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Report implements Sink.
func (f SinkFunc) Report(e Event) { f(e) }

// MultiSink fans an event out to every sink in order.
type MultiSink []Sink

// Report implements Sink.
func (m MultiSink) Report(e Event) {
	for _, s := range m {
		s.Report(e)
	}
}

// WriterSink prints one line per event.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Report implements Sink.
func (s *WriterSink) Report(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, e.Line())
}

// LogSink turns events into structured log records.
type LogSink struct {
	logger log.Logger
}

// NewLogSink returns a LogSink writing to logger.
func NewLogSink(logger log.Logger) LogSink {
	return LogSink{logger: logger}
}

// Report implements Sink.
func (s LogSink) Report(e Event) {
	switch e.Kind {
	case EventFreeSpace:
		level.Debug(s.logger).Log("msg", "free space", "cycle", e.Cycle, "free_bytes", e.FreeBytes, "free_gb", e.FreeGB)
	case EventBelowThreshold:
		level.Info(s.logger).Log("msg", "free space below minimum", "volume", e.Volume, "free_gb", e.FreeGB, "min_gb", e.MinGB)
	case EventPurgeStarted:
		level.Info(s.logger).Log("msg", "purging", "dir", e.Dir)
	case EventPurgeFinished:
		l := level.Info(s.logger)
		if e.Err != nil {
			l = level.Warn(s.logger)
		}
		l.Log("msg", "purge finished", "dir", e.Dir, "completed", e.Outcome.Completed,
			"removed", e.Outcome.Removed, "dirs_removed", e.Outcome.DirsRemoved,
			"skipped", e.Outcome.Skipped, "bytes", e.Outcome.Bytes, "err", e.Err)
	case EventProbeFailed:
		level.Warn(s.logger).Log("msg", "probe failed", "cycle", e.Cycle, "err", e.Err)
	case EventCycleFailed:
		level.Error(s.logger).Log("msg", "cycle failed", "cycle", e.Cycle, "err", e.Err)
	case EventNextRun:
		level.Debug(s.logger).Log("msg", "next run scheduled", "at", e.NextRun)
	case EventStopped:
		level.Info(s.logger).Log("msg", "monitor stopped", "cycles", e.Cycle)
	}
}
