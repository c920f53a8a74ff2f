package lock

import (
	"context"
	"sync"
)

// MemoryLocker is a process-local ProjectLocker for single-instance
// deployments and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) Acquire(_ context.Context, projectID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[projectID]; taken {
		return nil, ErrAlreadyLocked
	}

	l.held[projectID] = struct{}{}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.held, projectID)
	}

	return release, nil
}
