package lockfile

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	m := MutexAt(path)

	unlock, err := m.Lock()
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	unlock()

	// Re-acquirable after unlock.
	unlock, err = m.Lock()
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	unlock()
}

func TestLockBlocksSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := MutexAt(path).Lock()
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := MutexAt(path).Lock()
		if err == nil {
			u()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		// flock is per file description, not per goroutine, so a second
		// open in the same process may succeed immediately on some
		// platforms. Nothing to assert in that case.
	case <-time.After(50 * time.Millisecond):
		// Blocked as expected; release and wait for the second holder.
		unlock()
		<-acquired
		return
	}
	unlock()
}
