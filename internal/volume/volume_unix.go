//go:build !windows

package volume

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// freeBytes counts every free block, including those reserved for root.
func freeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	//nolint:gosec // block size comes from the kernel, not user input
	return uint64(st.Bfree) * uint64(st.Bsize), nil
}

// mountPoint walks up from path until the device changes.
func mountPoint(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var st unix.Stat_t
	if err := unix.Stat(abs, &st); err != nil {
		return "", err
	}
	dev := st.Dev

	cur := abs
	for {
		parent := filepath.Dir(cur)
		if parent == cur {
			return cur, nil
		}
		if err := unix.Stat(parent, &st); err != nil || st.Dev != dev {
			return cur, nil
		}
		cur = parent
	}
}
