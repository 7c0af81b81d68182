// Package lockfile provides a file-based mutex for serializing operations
// across processes, such as kit scans rewriting the shared registry cache.
package lockfile

import (
	"fmt"
	"os"
)

// Mutex is a cross-process mutex backed by a lock file. The file is created
// on first use and never removed; only the lock state matters.
type Mutex struct {
	path string
}

// MutexAt returns a mutex backed by the file at path.
func MutexAt(path string) *Mutex {
	return &Mutex{path: path}
}

// Lock acquires the mutex, blocking until it is free, and returns the
// function releasing it.
func (m *Mutex) Lock() (unlock func(), err error) {
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lock(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", m.path, err)
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
