package controller

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRunInProgress means another process holds the employer's run lock.
var ErrRunInProgress = errors.New("a run for this employer is already in progress")

// RunLock is an advisory file lock that keeps two processes from running the
// same employer at once.
type RunLock struct {
	fl *flock.Flock
}

// AcquireRunLock takes the lock for slug under dir without blocking.
func AcquireRunLock(dir, slug string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}
	fl := flock.New(filepath.Join(dir, slug+".lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", slug, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", slug, ErrRunInProgress)
	}
	return &RunLock{fl: fl}, nil
}

// Release drops the lock.
func (l *RunLock) Release() error {
	return l.fl.Unlock()
}
