// Package purge removes the content of a directory, skipping whatever is in
// use by other processes.
package purge

import (
	"context"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/IGLOU-EU/go-wildcard"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// readDirBatchSize caps how many entries are held in memory per directory.
const readDirBatchSize = 1024

// Outcome summarises one purge. Bytes is the apparent size of removed files;
// how much space the volume actually gained is only known by probing again.
type Outcome struct {
	Completed   bool
	Removed     int
	DirsRemoved int
	Skipped     int
	Bytes       int64
}

// Purger deletes files under a directory whose name matches Pattern, then
// prunes subdirectories left empty. The directory itself is kept.
type Purger struct {
	pattern string
	logger  log.Logger
}

// New returns a Purger. An empty pattern matches everything.
func New(pattern string, logger log.Logger) *Purger {
	if pattern == "" {
		pattern = "*"
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Purger{pattern: pattern, logger: logger}
}

// Purge removes the content of dir. Entries that cannot be removed are
// counted in Outcome.Skipped and do not make Purge fail. An error is returned
// only when dir itself cannot be read or ctx is done.
func (p *Purger) Purge(ctx context.Context, dir string) (Outcome, error) {
	var out Outcome
	info, err := os.Stat(dir)
	if err != nil {
		return out, err
	}
	if !info.IsDir() {
		return out, &fs.PathError{Op: "purge", Path: dir, Err: fs.ErrInvalid}
	}

	if err := p.purgeDir(ctx, dir, &out); err != nil {
		return out, err
	}
	out.Completed = out.Skipped == 0
	return out, nil
}

func (p *Purger) purgeDir(ctx context.Context, dir string, out *Outcome) error {
	// #nosec G304 -- dir is the configured target or one of its children.
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sep := string(os.PathSeparator)
	prefix := dir
	if !strings.HasSuffix(prefix, sep) {
		prefix += sep
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := f.ReadDir(readDirBatchSize)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if err := p.purgeBatch(ctx, prefix, entries, out); err != nil {
			return err
		}
	}
}

func (p *Purger) purgeBatch(ctx context.Context, prefix string, entries []fs.DirEntry, out *Outcome) error {
	for _, entry := range entries {
		path := prefix + entry.Name()

		// Symlinks are removed, never followed.
		if entry.IsDir() && entry.Type()&fs.ModeSymlink == 0 {
			if err := p.purgeDir(ctx, path, out); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				level.Debug(p.logger).Log("msg", "skipping unreadable directory", "path", path, "err", err)
				out.Skipped++
				continue
			}
			// Fails while matching or locked files remain, which is fine.
			if err := os.Remove(path); err == nil {
				out.DirsRemoved++
			}
			continue
		}

		if !p.matches(entry.Name()) {
			continue
		}

		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		if err := os.Remove(path); err != nil {
			level.Debug(p.logger).Log("msg", "skipping file in use", "path", path, "err", err)
			out.Skipped++
			continue
		}
		out.Removed++
		out.Bytes += size
	}
	return nil
}

func (p *Purger) matches(name string) bool {
	if p.pattern == "*" {
		return true
	}
	return wildcard.Match(p.pattern, name)
}
