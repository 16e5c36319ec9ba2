// Package rlimit enforces the resource limits of a cnftools run:
// memory and output file size through process limits, and time through a watchdog
// that makes sure nothing is written once the time limit is exceeded.
package rlimit

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrTimeLimitExceeded is returned by Commit once the time limit is exceeded.
	ErrTimeLimitExceeded = errors.New("time limit exceeded")
	// ErrFileSizeLimitExceeded is reported when a write went beyond the file size limit.
	ErrFileSizeLimitExceeded = errors.New("file size limit exceeded")
)

// Limits describes the resources a run may use. Zero values mean no limit.
type Limits struct {
	Timeout    time.Duration
	MemoryMB   int
	FileSizeMB int
}

// Apply sets the memory and file size limits of the current process.
func (l Limits) Apply() error {
	if l.MemoryMB < 0 || l.FileSizeMB < 0 {
		return errors.Errorf("invalid negative limit (memory %d MB, file size %d MB)", l.MemoryMB, l.FileSizeMB)
	}
	return l.apply()
}

// A Watchdog calls a function when the time limit is exceeded,
// unless the results of the run have started being committed.
type Watchdog struct {
	mu        sync.Mutex
	timer     *time.Timer
	expired   bool
	committed bool
}

// Watch starts a watchdog calling onExpire after timeout.
// If timeout is 0, it never expires.
func Watch(timeout time.Duration, onExpire func()) *Watchdog {
	w := &Watchdog{}
	if timeout > 0 {
		w.timer = time.AfterFunc(timeout, func() {
			w.mu.Lock()
			if w.committed {
				w.mu.Unlock()
				return
			}
			w.expired = true
			w.mu.Unlock()
			if onExpire != nil {
				onExpire()
			}
		})
	}
	return w
}

// Commit runs fn, which is supposed to write the results of the run,
// unless the time limit was already exceeded. Once Commit is called,
// the watchdog does not expire anymore.
func (w *Watchdog) Commit(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired {
		return ErrTimeLimitExceeded
	}
	w.committed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	return fn()
}

// Stop disables the watchdog without committing anything.
func (w *Watchdog) Stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}
