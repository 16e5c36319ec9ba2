//go:build linux || darwin

package rlimit

import (
	"os/signal"
	"runtime/debug"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func (l Limits) apply() error {
	if l.MemoryMB > 0 {
		bytes := uint64(l.MemoryMB) << 20
		debug.SetMemoryLimit(int64(bytes))
		if err := unix.Setrlimit(unix.RLIMIT_DATA, &unix.Rlimit{Cur: bytes, Max: bytes}); err != nil {
			return errors.Wrap(err, "cannot set memory limit")
		}
	}
	if l.FileSizeMB > 0 {
		// Writes beyond the limit then fail with EFBIG instead of killing the process.
		signal.Ignore(unix.SIGXFSZ)
		bytes := uint64(l.FileSizeMB) << 20
		if err := unix.Setrlimit(unix.RLIMIT_FSIZE, &unix.Rlimit{Cur: bytes, Max: bytes}); err != nil {
			return errors.Wrap(err, "cannot set file size limit")
		}
	}
	return nil
}

// IsFileSizeLimit is true iff err was caused by a write beyond the file size limit.
func IsFileSizeLimit(err error) bool {
	return errors.Is(err, unix.EFBIG) || errors.Is(err, ErrFileSizeLimitExceeded)
}
