package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/log"

	"github.com/mobanhawi/freewatch/internal/monitor"
)

// silence redirects stdout and stderr to the null device for the test.
func silence(t *testing.T) {
	t.Helper()
	oldStdout := os.Stdout
	oldStderr := os.Stderr
	t.Cleanup(func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	})

	nullOut, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return
	}
	t.Cleanup(func() { _ = nullOut.Close() })
	os.Stdout = nullOut
	os.Stderr = nullOut
}

// mockForeground makes run() leave the foreground wait at once.
func mockForeground(t *testing.T, interactive bool, runErr error) {
	t.Helper()
	originalRunProgram := runProgram
	originalInteractive := isInteractive
	originalWaitForKey := waitForKey
	t.Cleanup(func() {
		runProgram = originalRunProgram
		isInteractive = originalInteractive
		waitForKey = originalWaitForKey
	})

	runProgram = func(_ *tea.Program) (tea.Model, error) {
		return nil, runErr
	}
	isInteractive = func() bool { return interactive }
	waitForKey = func(io.Reader) <-chan struct{} {
		pressed := make(chan struct{})
		close(pressed)
		return pressed
	}
}

func TestRun(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name         string
		args         []string
		interactive  bool
		mockRunError error
		expectedCode int
	}{
		{
			name:         "version flag -v",
			args:         []string{"freewatch", "-v"},
			expectedCode: 0,
		},
		{
			name:         "version flag --version",
			args:         []string{"freewatch", "--version"},
			expectedCode: 0,
		},
		{
			name:         "help flag -h",
			args:         []string{"freewatch", "-h"},
			expectedCode: 1,
		},
		{
			name:         "no args",
			args:         []string{"freewatch"},
			expectedCode: 1,
		},
		{
			name:         "only one argument shows help",
			args:         []string{"freewatch", "50"},
			expectedCode: 1,
		},
		{
			name:         "missing directory",
			args:         []string{"freewatch", "50", filepath.Join(tempDir, "does-not-exist")},
			expectedCode: 2,
		},
		{
			name:         "unparseable minimum",
			args:         []string{"freewatch", "lots", tempDir},
			expectedCode: 2,
		},
		{
			name:         "unparseable period",
			args:         []string{"freewatch", "50", tempDir, "hourly"},
			expectedCode: 2,
		},
		{
			name:         "zero period",
			args:         []string{"freewatch", "50", tempDir, "0"},
			expectedCode: 2,
		},
		{
			name:         "interactive success",
			args:         []string{"freewatch", "0", tempDir},
			interactive:  true,
			expectedCode: 0,
		},
		{
			name:         "interactive tea program error",
			args:         []string{"freewatch", "0", tempDir},
			interactive:  true,
			mockRunError: errors.New("tea program failed"),
			expectedCode: 1,
		},
		{
			name:         "headless success",
			args:         []string{"freewatch", "0", tempDir, "1"},
			expectedCode: 0,
		},
		{
			name:         "headless forced by flag",
			args:         []string{"freewatch", "--headless", "--log-level", "debug", "0", tempDir},
			interactive:  true,
			expectedCode: 0,
		},
		{
			name:         "log file",
			args:         []string{"freewatch", "--log-file", filepath.Join(tempDir, "logs", "freewatch.log"), "0", tempDir},
			expectedCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockForeground(t, tt.interactive, tt.mockRunError)
			silence(t)

			code := run(tt.args)
			if code != tt.expectedCode {
				t.Errorf("expected exit code %d, got %d", tt.expectedCode, code)
			}
		})
	}
}

func TestRunLeavesTargetAlone(t *testing.T) {
	// A zero minimum never purges, whatever the volume holds.
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(keep, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	mockForeground(t, false, nil)
	silence(t)

	if code := run([]string{"freewatch", "0", dir}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("file should be kept: %v", err)
	}
}

func TestMainFunc(t *testing.T) {
	// mock os.Args, osExit
	originalArgs := os.Args
	originalOsExit := osExit

	defer func() {
		os.Args = originalArgs
		osExit = originalOsExit
	}()

	os.Args = []string{"freewatch", "-v"}
	silence(t)

	exitedWith := -1
	osExit = func(code int) {
		exitedWith = code
	}

	main()

	if exitedWith != 0 {
		t.Errorf("expected main to exit with 0, got %d", exitedWith)
	}
}

func TestHandleSignals(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("os.Interrupt cannot be sent to a process on windows")
	}

	canceller := monitor.NewCanceller()
	aborted := make(chan struct{})
	stop := handleSignals(canceller, func() { close(aborted) }, log.NewNopLogger())
	defer stop()

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}

	if err := self.Signal(os.Interrupt); err != nil {
		t.Fatal(err)
	}
	select {
	case <-canceller.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("first signal did not cancel the monitor")
	}
	select {
	case <-aborted:
		t.Fatal("first signal must not abort the purge")
	default:
	}

	if err := self.Signal(os.Interrupt); err != nil {
		t.Fatal(err)
	}
	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not abort the purge")
	}
}
