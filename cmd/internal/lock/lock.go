package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultPollInterval is how often WaitTrigger checks the lock file.
const DefaultPollInterval = 50 * time.Millisecond

var ErrLocked = errors.New("another novault process is already running")

// Lock is a held single-instance lock on a file.
// The same file doubles as a trigger: writing to it (see Trigger) wakes a process blocked in WaitTrigger.
type Lock struct {
	path string
	f    *os.File
}

// Acquire takes the lock at path, creating the file if needed.
// ErrLocked is returned if another process holds it.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := tryLock(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Lock{path: path, f: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release gives up the lock.
func (l *Lock) Release() error {
	if l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

// WaitTrigger blocks until something writes to the lock file, or ctx is done.
// This is meant to be bound to a desktop keybinding running 'novault trigger'.
func (l *Lock) WaitTrigger(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	start, err := l.f.Stat()
	if err != nil {
		return err
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			info, err := os.Stat(l.path)
			if err != nil {
				return err
			}
			if info.Size() != start.Size() || !info.ModTime().Equal(start.ModTime()) {
				return l.f.Truncate(0)
			}
		}
	}
}

// Trigger wakes a process waiting on the lock file at path.
func Trigger(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.New("no novault process is waiting")
		}
		return err
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
