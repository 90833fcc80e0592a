package annotations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrLockTimeout indicates the lock acquisition timed out.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// fileLock guards the annotations file against concurrent writers from
// other server processes using flock(2). The kernel releases the lock if
// the process dies.
type fileLock struct {
	path string
	file *os.File
}

func newFileLock(path string) *fileLock {
	return &fileLock{path: path}
}

// lock acquires the exclusive lock, polling until it is available or the
// timeout expires.
func (l *fileLock) lock(timeout time.Duration) error {
	if err := l.open(); err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	poll := 10 * time.Millisecond
	for {
		err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			l.close()
			return fmt.Errorf("flock failed: %w", err)
		}
		if time.Now().After(deadline) {
			l.close()
			return ErrLockTimeout
		}
		time.Sleep(poll)
		poll = min(poll*2, 200*time.Millisecond)
	}
}

// unlock releases the lock. Safe to call when not held.
func (l *fileLock) unlock() error {
	if l.file == nil {
		return nil
	}
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.close()
	if err != nil {
		return fmt.Errorf("flock unlock failed: %w", err)
	}
	return closeErr
}

func (l *fileLock) open() error {
	if l.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("opening lock file: %w", err)
	}
	l.file = file
	return nil
}

func (l *fileLock) close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
