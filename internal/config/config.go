package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// DefaultCheckPeriod is used when no check period argument is given.
const DefaultCheckPeriod = 60 * time.Minute

// DefaultPattern matches every file name.
const DefaultPattern = "*"

// ErrHelp is returned by Parse when the help text should be shown instead of
// running, either because it was asked for or because arguments are missing.
var ErrHelp = errors.New("help requested")

// Error describes an argument that could not be accepted.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Execution is the immutable parameter bundle consumed by the monitor.
// It is built once by NewExecution and never changes afterwards.
type Execution struct {
	minFreeSpaceGB uint64
	targetDir      string
	checkPeriod    time.Duration
}

// NewExecution validates and builds an Execution.
func NewExecution(minFreeSpaceGB uint64, targetDir string, checkPeriod time.Duration) (Execution, error) {
	if targetDir == "" {
		return Execution{}, invalid("Invalid folder: %q", targetDir)
	}
	if checkPeriod <= 0 {
		return Execution{}, invalid("Invalid check period: %s", checkPeriod)
	}
	return Execution{
		minFreeSpaceGB: minFreeSpaceGB,
		targetDir:      targetDir,
		checkPeriod:    checkPeriod,
	}, nil
}

// MinFreeSpaceGB is the threshold in whole GB.
func (e Execution) MinFreeSpaceGB() uint64 { return e.minFreeSpaceGB }

// TargetDir is the absolute path of the directory to purge.
func (e Execution) TargetDir() string { return e.targetDir }

// CheckPeriod is the time between two cycles.
func (e Execution) CheckPeriod() time.Duration { return e.checkPeriod }

// Options is everything the command line can set.
type Options struct {
	Execution Execution

	Pattern     string
	LogFile     string
	LogLevel    string
	MetricsAddr string
	Headless    bool
	ShowVersion bool
}

// Parse reads the process arguments (args[0] being the program name).
//
// It returns ErrHelp when fewer than two positional arguments are given or
// help is requested, and an *Error for anything unparseable.
func Parse(args []string) (Options, error) {
	var opts Options
	if len(args) == 0 {
		return opts, ErrHelp
	}

	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Pattern, "pattern", DefaultPattern, "only purge files whose name matches this wildcard")
	fs.StringVar(&opts.LogFile, "log-file", "", "write logs to this file, rotated")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&opts.Headless, "headless", false, "print status lines instead of the interactive screen")
	fs.BoolVarP(&opts.ShowVersion, "version", "v", false, "print version and exit")
	help := fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args[1:]); err != nil {
		return opts, invalid("Invalid arguments: %v", err)
	}
	if *help {
		return opts, ErrHelp
	}
	if opts.ShowVersion {
		return opts, nil
	}

	switch strings.ToLower(opts.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return opts, invalid("Invalid log level: %s", opts.LogLevel)
	}
	if opts.Pattern == "" {
		return opts, invalid("Invalid pattern: %q", opts.Pattern)
	}

	pos := fs.Args()
	if len(pos) < 2 {
		return opts, ErrHelp
	}

	minFree, err := strconv.ParseUint(pos[0], 10, 32)
	if err != nil {
		return opts, invalid("Invalid value for minimum free space: %s GB", pos[0])
	}

	dir, err := resolveDir(pos[1])
	if err != nil {
		return opts, err
	}

	period := DefaultCheckPeriod
	if len(pos) > 2 {
		mins, err := strconv.ParseUint(pos[2], 10, 32)
		if err != nil || mins == 0 {
			return opts, invalid("Invalid check period in minutes: %s min", pos[2])
		}
		period = time.Duration(mins) * time.Minute
	}

	opts.Execution, err = NewExecution(minFree, dir, period)
	return opts, err
}

// resolveDir makes path absolute and checks that it is an existing directory.
func resolveDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", invalid("Invalid folder: %q", path)
	}
	abs = filepath.Clean(abs)

	// #nosec G703 -- the folder comes from the operator on purpose.
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", invalid("Invalid folder: %q", path)
	}
	return abs, nil
}

// Usage writes the help text for the given program name.
func Usage(w io.Writer, program string) {
	program = filepath.Base(program)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Usage:")
	fmt.Fprintf(w, "|\t%s [flags] <min free space (GB)> <folder to delete content from> [check period in mins]\n", program)
	fmt.Fprintln(w, "|")
	fmt.Fprintln(w, "| Once free space drops below the minimum, all the content of the folder is deleted to free up space.")
	fmt.Fprintln(w, "| Free space is checked on the same volume as the folder.")
	fmt.Fprintln(w, "| Content in the folder that is used by other processes is skipped.")
	fmt.Fprintf(w, "| If [check period] is not provided, the default is %d min.\n", int(DefaultCheckPeriod/time.Minute))
	fmt.Fprintln(w, "|")
	fmt.Fprintln(w, "| Flags:")
	fmt.Fprintln(w, "|\t--pattern string        only purge files whose name matches (default \"*\")")
	fmt.Fprintln(w, "|\t--log-file string       write logs to a rotated file")
	fmt.Fprintln(w, "|\t--log-level string      debug, info, warn, error (default \"info\")")
	fmt.Fprintln(w, "|\t--metrics-addr string   serve Prometheus metrics, e.g. :9105")
	fmt.Fprintln(w, "|\t--headless              print status lines instead of the interactive screen")
	fmt.Fprintln(w, "|\t-v, --version           print version")
	fmt.Fprintln(w, "|")
	fmt.Fprintln(w, "| Example: remove everything in /var/tmp/cache once its volume is below 50 GB")
	fmt.Fprintf(w, "|\t%s 50 /var/tmp/cache\n", program)
	fmt.Fprintln(w)
}
