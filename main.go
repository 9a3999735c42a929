package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mobanhawi/freewatch/internal/config"
	"github.com/mobanhawi/freewatch/internal/logging"
	"github.com/mobanhawi/freewatch/internal/monitor"
	"github.com/mobanhawi/freewatch/internal/purge"
	"github.com/mobanhawi/freewatch/internal/ui"
	"github.com/mobanhawi/freewatch/internal/volume"
)

// Exit codes.
const (
	exitSuccess     = 0
	exitHelp        = 1
	exitInvalidArgs = 2
)

var version = "dev"

var runProgram = func(p *tea.Program) (tea.Model, error) { // injected for testing
	return p.Run()
}

var osExit = os.Exit

// isInteractive reports whether the terminal can host the full screen UI.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// waitForKey is closed when a line (any key followed by Enter) is read from
// r. Closed input never fires it, leaving signals as the only way to stop.
var waitForKey = func(r io.Reader) <-chan struct{} {
	pressed := make(chan struct{})
	go func() {
		var buf [1]byte
		if n, _ := r.Read(buf[:]); n > 0 {
			close(pressed)
		}
	}()
	return pressed
}

func main() {
	osExit(run(os.Args))
}

func run(args []string) int {
	opts, err := config.Parse(args)
	if err != nil {
		var cfgErr *config.Error
		switch {
		case errors.Is(err, config.ErrHelp):
			program := "freewatch"
			if len(args) > 0 {
				program = args[0]
			}
			config.Usage(os.Stdout, program)
			return exitHelp
		case errors.As(err, &cfgErr):
			fmt.Fprintln(os.Stderr, cfgErr.Msg)
			return exitInvalidArgs
		default:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitInvalidArgs
		}
	}

	if opts.ShowVersion {
		fmt.Printf("freewatch version %s\n", version)
		return exitSuccess
	}

	interactive := !opts.Headless && isInteractive()

	logger, closeLog := newLogger(opts, interactive)
	defer closeLog()

	exec := opts.Execution
	probe := volume.NewProbe()
	root, err := probe.MountPoint(exec.TargetDir())
	if err != nil {
		level.Warn(logger).Log("msg", "could not resolve volume root", "err", err)
		root = exec.TargetDir()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stopMetrics := serveMetrics(opts.MetricsAddr, reg, logger)
	defer stopMetrics()

	canceller := monitor.NewCanceller()

	// The purge context only ends on a second signal; a normal stop lets
	// the purge in progress finish.
	purgeCtx, abortPurge := context.WithCancel(context.Background())
	defer abortPurge()
	stopSignals := handleSignals(canceller, abortPurge, logger)
	defer stopSignals()

	level.Info(logger).Log("msg", "starting", "version", version, "dir", exec.TargetDir(),
		"volume", root, "min_gb", exec.MinFreeSpaceGB(), "period", exec.CheckPeriod(), "pattern", opts.Pattern)

	purger := purge.New(opts.Pattern, log.With(logger, "component", "purge"))
	sinks := monitor.MultiSink{monitor.NewLogSink(log.With(logger, "component", "monitor"))}

	if interactive {
		return runInteractive(opts, root, probe, purger, canceller, purgeCtx, reg, sinks)
	}
	return runHeadless(opts, root, probe, purger, canceller, purgeCtx, reg, sinks)
}

func runInteractive(
	opts config.Options,
	root string,
	probe monitor.Probe,
	purger monitor.Purger,
	canceller *monitor.Canceller,
	purgeCtx context.Context,
	reg prometheus.Registerer,
	sinks monitor.MultiSink,
) int {
	exec := opts.Execution
	feed := ui.NewFeed()
	model := ui.New(ui.Summary{
		TargetDir: exec.TargetDir(),
		Volume:    root,
		MinFreeGB: exec.MinFreeSpaceGB(),
		Period:    exec.CheckPeriod(),
		Pattern:   opts.Pattern,
	}, feed, canceller.Cancel)

	mon := monitor.New(exec, probe, purger, canceller,
		monitor.WithSink(append(sinks, feed)),
		monitor.WithVolume(root),
		monitor.WithRegisterer(reg),
	)
	done := startMonitor(purgeCtx, mon)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := runProgram(p)

	canceller.Cancel()
	feed.Close()
	if mon.State() == monitor.StatePurging {
		fmt.Println("Waiting for the purge in progress to finish…")
	}
	<-done

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", runErr)
		return 1
	}
	fmt.Println("Process terminated.")
	return exitSuccess
}

func runHeadless(
	opts config.Options,
	root string,
	probe monitor.Probe,
	purger monitor.Purger,
	canceller *monitor.Canceller,
	purgeCtx context.Context,
	reg prometheus.Registerer,
	sinks monitor.MultiSink,
) int {
	mon := monitor.New(opts.Execution, probe, purger, canceller,
		monitor.WithSink(append(sinks, monitor.NewWriterSink(os.Stdout))),
		monitor.WithVolume(root),
		monitor.WithRegisterer(reg),
	)

	fmt.Println()
	fmt.Println(">>>>>>>>>> Press Enter to end the process...")
	fmt.Println()

	done := startMonitor(purgeCtx, mon)
	select {
	case <-waitForKey(os.Stdin):
		canceller.Cancel()
	case <-canceller.Done():
	}
	<-done

	fmt.Println("Process terminated.")
	return exitSuccess
}

func startMonitor(ctx context.Context, mon *monitor.Monitor) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = mon.Run(ctx)
	}()
	return done
}

func newLogger(opts config.Options, interactive bool) (log.Logger, func()) {
	if opts.LogFile != "" {
		logger, closer := logging.NewFile(opts.LogFile, opts.LogLevel)
		return logger, func() { _ = closer.Close() }
	}
	if interactive {
		// The alternate screen owns the terminal.
		return log.NewNopLogger(), func() {}
	}
	return logging.New(os.Stderr, opts.LogLevel), func() {}
}

// handleSignals cancels the monitor on the first SIGINT/SIGTERM and aborts a
// running purge on the second.
func handleSignals(canceller *monitor.Canceller, abortPurge context.CancelFunc, logger log.Logger) func() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	quit := make(chan struct{})

	go func() {
		count := 0
		for {
			select {
			case sig := <-sigCh:
				count++
				if count == 1 {
					level.Info(logger).Log("msg", "stopping", "signal", sig)
					canceller.Cancel()
					continue
				}
				level.Warn(logger).Log("msg", "aborting purge in progress", "signal", sig)
				abortPurge()
			case <-quit:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(quit)
	}
}

// serveMetrics exposes reg on addr until the returned func is called. An empty
// addr disables it.
func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "metrics server failed", "addr", addr, "err", err)
		}
	}()
	level.Info(logger).Log("msg", "serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
