// Package volume measures free space on the filesystem hosting a path.
package volume

import "fmt"

// GB is the divisor used for whole-GB thresholds.
const GB = 1 << 30

// ProbeError is returned when the volume hosting Path cannot be read.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("reading free space for %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Probe reads free space with a system call on every call. Nothing is cached,
// since other processes change free space at any time.
type Probe struct{}

// NewProbe returns a Probe.
func NewProbe() Probe { return Probe{} }

// FreeBytes returns the total free bytes of the volume hosting path.
func (Probe) FreeBytes(path string) (uint64, error) {
	free, err := freeBytes(path)
	if err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}
	return free, nil
}

// MountPoint returns the root of the volume hosting path.
func (Probe) MountPoint(path string) (string, error) {
	root, err := mountPoint(path)
	if err != nil {
		return "", &ProbeError{Path: path, Err: err}
	}
	return root, nil
}

// ToGB converts bytes to whole GB, truncating.
func ToGB(bytes uint64) uint64 {
	return bytes / GB
}
