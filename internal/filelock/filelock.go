// Package filelock serializes read-modify-write cycles on a goalplan
// workspace across processes with an advisory lock file.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the lock file created inside the workspace directory.
const FileName = ".lock"

const lockFileMode = 0o600

// Lock is a held advisory lock.
type Lock struct {
	f *os.File
}

// Acquire takes an exclusive lock on the file at path, creating it if it
// does not exist. It blocks until no other process holds the lock.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file inside the workspace
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock and closes the lock file.
func (l *Lock) Release() error {
	unlockErr := unlockFile(l.f)
	closeErr := l.f.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

// With runs fn while holding the lock of the workspace in dir.
func With(dir string, fn func() error) (err error) {
	l, err := Acquire(filepath.Join(dir, FileName))
	if err != nil {
		return err
	}
	defer func() {
		if rerr := l.Release(); err == nil {
			err = rerr
		}
	}()
	return fn()
}
