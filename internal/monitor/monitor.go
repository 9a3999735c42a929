// Package monitor runs the free space watch loop: sample the volume, purge
// the target directory when below the minimum, sleep, repeat until cancelled.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mobanhawi/freewatch/internal/config"
	"github.com/mobanhawi/freewatch/internal/purge"
	"github.com/mobanhawi/freewatch/internal/volume"
)

// ErrAlreadyRunning is returned by Run when the loop is already active.
var ErrAlreadyRunning = errors.New("monitor is already running")

// State is the loop's current phase.
type State int32

const (
	// StateIdle is between cycles.
	StateIdle State = iota
	// StateSampling is reading free space.
	StateSampling
	// StatePurging is waiting for the purge to return.
	StatePurging
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StatePurging:
		return "purging"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Probe reads the free bytes of the volume hosting a path.
type Probe interface {
	FreeBytes(path string) (uint64, error)
}

// Purger removes the content of a directory. It is called synchronously and
// may leave files behind without that being an error.
type Purger interface {
	Purge(ctx context.Context, dir string) (purge.Outcome, error)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSink sets where status events go.
func WithSink(s Sink) Option {
	return func(m *Monitor) { m.sink = s }
}

// WithRegisterer registers the monitor's metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Monitor) { m.reg = reg }
}

// WithVolume sets the volume name shown in below-threshold events.
func WithVolume(name string) Option {
	return func(m *Monitor) { m.volume = name }
}

// WithClock replaces time.Now for event timestamps and the next run time.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// Monitor is the threshold watch loop. Only the goroutine running Run
// touches its cycle state; other goroutines may read State and Cycles.
type Monitor struct {
	cfg    config.Execution
	probe  Probe
	purger Purger
	cancel *Canceller

	sink    Sink
	volume  string
	now     func() time.Time
	reg     prometheus.Registerer
	metrics *metrics

	running atomic.Bool
	state   atomic.Int32
	cycles  atomic.Int64
}

// New builds a Monitor for cfg. cancel stops it.
func New(cfg config.Execution, probe Probe, purger Purger, cancel *Canceller, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		probe:  probe,
		purger: purger,
		cancel: cancel,
		volume: cfg.TargetDir(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	m.metrics = newMetrics(m.reg)
	return m
}

// State returns the loop's current phase.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Cycles returns how many cycles have started.
func (m *Monitor) Cycles() int {
	return int(m.cycles.Load())
}

// Run loops until the Canceller fires. Cancellation is checked before each
// cycle and before each sleep, and wakes a sleeping loop at once. A purge in
// progress is not interrupted by it; ctx is handed to the purger for that.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.stop()

	for !m.cancel.Cancelled() {
		m.cycle(ctx)
		if m.cancel.Cancelled() {
			return nil
		}

		period := m.cfg.CheckPeriod()
		m.emit(Event{Kind: EventNextRun, NextRun: m.now().Add(period)})
		m.sleep(period)
	}
	return nil
}

func (m *Monitor) stop() {
	m.setState(StateStopped)
	m.emit(Event{Kind: EventStopped})
}

func (m *Monitor) sleep(d time.Duration) {
	m.setState(StateIdle)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-m.cancel.Done():
	}
}

// cycle runs probe, conditional purge and re-probe. Nothing raised inside
// escapes it.
func (m *Monitor) cycle(ctx context.Context) {
	m.cycles.Add(1)
	m.metrics.cycles.Inc()

	defer func() {
		if r := recover(); r != nil {
			m.metrics.cycleFailures.Inc()
			m.emit(Event{Kind: EventCycleFailed, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	m.setState(StateSampling)
	freeGB, ok := m.sample()
	if !ok {
		return
	}

	minGB := m.cfg.MinFreeSpaceGB()
	if freeGB >= minGB {
		return
	}

	m.emit(Event{Kind: EventBelowThreshold, FreeGB: freeGB})
	m.setState(StatePurging)
	m.purge(ctx)

	m.setState(StateSampling)
	m.sample()
}

// sample reads free space and reports it. ok is false when the probe failed.
func (m *Monitor) sample() (freeGB uint64, ok bool) {
	free, err := m.probe.FreeBytes(m.cfg.TargetDir())
	if err != nil {
		m.metrics.probeErrors.Inc()
		m.emit(Event{Kind: EventProbeFailed, Err: err})
		return 0, false
	}

	m.metrics.freeBytes.Set(float64(free))
	freeGB = volume.ToGB(free)
	m.emit(Event{Kind: EventFreeSpace, FreeBytes: free, FreeGB: freeGB})
	return freeGB, true
}

func (m *Monitor) purge(ctx context.Context) {
	dir := m.cfg.TargetDir()
	m.metrics.purges.Inc()
	m.emit(Event{Kind: EventPurgeStarted})

	start := time.Now()
	out, err := m.safePurge(ctx, dir)
	m.metrics.purgeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		m.metrics.purgeFailures.Inc()
	}
	m.metrics.filesRemoved.Add(float64(out.Removed))
	m.metrics.filesSkipped.Add(float64(out.Skipped))
	m.emit(Event{Kind: EventPurgeFinished, Outcome: out, Err: err})
}

// safePurge turns a panicking purger into a soft failure so the re-probe
// still happens.
func (m *Monitor) safePurge(ctx context.Context, dir string) (out purge.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("purge panic: %v", r)
		}
	}()
	return m.purger.Purge(ctx, dir)
}

func (m *Monitor) setState(s State) {
	m.state.Store(int32(s))
}

func (m *Monitor) emit(e Event) {
	if m.sink == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = m.now()
	}
	e.Cycle = m.Cycles()
	e.Dir = m.cfg.TargetDir()
	e.Volume = m.volume
	e.MinGB = m.cfg.MinFreeSpaceGB()
	m.sink.Report(e)
}
