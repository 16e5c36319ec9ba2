//go:build !linux && !darwin

package rlimit

import "github.com/pkg/errors"

func (l Limits) apply() error {
	if l.MemoryMB > 0 || l.FileSizeMB > 0 {
		return errors.New("memory and file size limits are not supported on this platform")
	}
	return nil
}

// IsFileSizeLimit is true iff err was caused by a write beyond the file size limit.
func IsFileSizeLimit(err error) bool {
	return errors.Is(err, ErrFileSizeLimitExceeded)
}
