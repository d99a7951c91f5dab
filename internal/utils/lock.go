package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"

	// DefaultLockWait bounds how long a writer waits for another one.
	DefaultLockWait = 2 * time.Minute

	lockRetryDelay = 250 * time.Millisecond
)

// ErrLockBusy is wrapped by LockError when the wait for the database lock
// ended before the other writer let go.
var ErrLockBusy = errors.New("database is locked by another supplyscope process")

// LockError reports a failure to take or release the database lock.
type LockError struct {
	Op   string // "acquire" or "release"
	Path string
	Err  error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("%s lock %s: %v", e.Op, e.Path, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }

// DBLock serializes writers of one local database across processes. The
// lock lives next to the database file as <db>.lock.
type DBLock struct {
	lock  *flock.Flock
	path  string
	wait  time.Duration
	retry time.Duration
}

// NewDBLock returns the lock guarding dbPath. wait <= 0 means DefaultLockWait.
func NewDBLock(dbPath string, wait time.Duration) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute db path: %w", err)
	}
	if wait <= 0 {
		wait = DefaultLockWait
	}
	lockPath := absPath + lockFileSuffix
	return &DBLock{
		lock:  flock.New(lockPath),
		path:  lockPath,
		wait:  wait,
		retry: lockRetryDelay,
	}, nil
}

// Path returns the lock file location.
func (l *DBLock) Path() string { return l.path }

// Lock takes the lock, polling while another process holds it. It gives up
// with ErrLockBusy after the configured wait, or with ctx's error when ctx
// ends first.
func (l *DBLock) Lock(ctx context.Context) error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return &LockError{Op: "acquire", Path: l.path, Err: err}
	}
	if locked {
		return nil
	}

	Log.Infof("Another supplyscope process is writing to the local database, waiting up to %s...", l.wait)
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()
	locked, err = l.lock.TryLockContext(waitCtx, l.retry)
	if locked {
		return nil
	}
	if ctx.Err() != nil {
		return &LockError{Op: "acquire", Path: l.path, Err: ctx.Err()}
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		err = ErrLockBusy
	}
	return &LockError{Op: "acquire", Path: l.path, Err: err}
}

// Unlock releases the lock. A lock file removed behind our back is not an
// error.
func (l *DBLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &LockError{Op: "release", Path: l.path, Err: err}
	}
	return nil
}

// GetAbsDBPath resolves the database path, defaulting to the user config dir.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "supplyscope", "supplyscope.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
