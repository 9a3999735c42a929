package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name       string
		args       []string
		wantHelp   bool
		wantInvErr bool
		wantMin    uint64
		wantPeriod time.Duration
	}{
		{
			name:     "GivenNoArgs_WhenParsed_ThenHelp",
			args:     []string{"freewatch"},
			wantHelp: true,
		},
		{
			name:     "GivenOneArg_WhenParsed_ThenHelp",
			args:     []string{"freewatch", "50"},
			wantHelp: true,
		},
		{
			name:     "GivenHelpFlag_WhenParsed_ThenHelp",
			args:     []string{"freewatch", "-h"},
			wantHelp: true,
		},
		{
			name:       "GivenMinAndDir_WhenParsed_ThenDefaultPeriod",
			args:       []string{"freewatch", "50", dir},
			wantMin:    50,
			wantPeriod: DefaultCheckPeriod,
		},
		{
			name:       "GivenZeroMin_WhenParsed_ThenAccepted",
			args:       []string{"freewatch", "0", dir},
			wantMin:    0,
			wantPeriod: DefaultCheckPeriod,
		},
		{
			name:       "GivenPeriod_WhenParsed_ThenPeriodInMinutes",
			args:       []string{"freewatch", "10", dir, "5"},
			wantMin:    10,
			wantPeriod: 5 * time.Minute,
		},
		{
			name:       "GivenFlagsBeforePositionals_WhenParsed_ThenAccepted",
			args:       []string{"freewatch", "--pattern", "*.log", "--headless", "10", dir},
			wantMin:    10,
			wantPeriod: DefaultCheckPeriod,
		},
		{
			name:       "GivenNonNumericMin_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "fifty", dir},
			wantInvErr: true,
		},
		{
			name:       "GivenNegativeMin_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "-5", dir},
			wantInvErr: true,
		},
		{
			name:       "GivenMissingDir_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "50", filepath.Join(dir, "nope")},
			wantInvErr: true,
		},
		{
			name:       "GivenFileInsteadOfDir_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "50", file},
			wantInvErr: true,
		},
		{
			name:       "GivenZeroPeriod_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "50", dir, "0"},
			wantInvErr: true,
		},
		{
			name:       "GivenNonNumericPeriod_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "50", dir, "soon"},
			wantInvErr: true,
		},
		{
			name:       "GivenUnknownFlag_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "--bogus", "50", dir},
			wantInvErr: true,
		},
		{
			name:       "GivenBadLogLevel_WhenParsed_ThenInvalid",
			args:       []string{"freewatch", "--log-level", "loud", "50", dir},
			wantInvErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := Parse(tc.args)

			if tc.wantHelp {
				if !errors.Is(err, ErrHelp) {
					t.Fatalf("err = %v, want ErrHelp", err)
				}
				return
			}
			if tc.wantInvErr {
				var cfgErr *Error
				if !errors.As(err, &cfgErr) {
					t.Fatalf("err = %v, want *Error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			exec := opts.Execution
			if exec.MinFreeSpaceGB() != tc.wantMin {
				t.Errorf("MinFreeSpaceGB() = %d, want %d", exec.MinFreeSpaceGB(), tc.wantMin)
			}
			if exec.CheckPeriod() != tc.wantPeriod {
				t.Errorf("CheckPeriod() = %v, want %v", exec.CheckPeriod(), tc.wantPeriod)
			}
			if !filepath.IsAbs(exec.TargetDir()) {
				t.Errorf("TargetDir() = %q, want absolute path", exec.TargetDir())
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	t.Run("GivenVersionFlag_WhenParsed_ThenNoPositionalsRequired", func(t *testing.T) {
		opts, err := Parse([]string{"freewatch", "--version"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !opts.ShowVersion {
			t.Error("ShowVersion = false, want true")
		}
	})
}

func TestParseRelativeDir(t *testing.T) {
	t.Run("GivenRelativeDir_WhenParsed_ThenResolvedToAbsolute", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		if err := os.Mkdir("cache", 0o755); err != nil {
			t.Fatal(err)
		}

		opts, err := Parse([]string{"freewatch", "1", "cache"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := filepath.Base(opts.Execution.TargetDir()); got != "cache" {
			t.Errorf("TargetDir() base = %q, want %q", got, "cache")
		}
		if !filepath.IsAbs(opts.Execution.TargetDir()) {
			t.Errorf("TargetDir() = %q, want absolute", opts.Execution.TargetDir())
		}
	})
}

func TestNewExecution(t *testing.T) {
	testCases := []struct {
		name    string
		dir     string
		period  time.Duration
		wantErr bool
	}{
		{name: "GivenValidValues_WhenBuilt_ThenOK", dir: "/tmp", period: time.Minute},
		{name: "GivenZeroPeriod_WhenBuilt_ThenError", dir: "/tmp", period: 0, wantErr: true},
		{name: "GivenNegativePeriod_WhenBuilt_ThenError", dir: "/tmp", period: -time.Second, wantErr: true},
		{name: "GivenEmptyDir_WhenBuilt_ThenError", dir: "", period: time.Minute, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewExecution(1, tc.dir, tc.period)
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf, "/usr/local/bin/freewatch")
	out := buf.String()

	for _, want := range []string{"freewatch 50 /var/tmp/cache", "default is 60 min"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage does not contain %q:\n%s", want, out)
		}
	}
}
