package memory

import (
	"context"
	"sync"

	"quizhub-service/internal/domain"
)

// SubmissionLocker is an in-process app.SubmissionLocker.
type SubmissionLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewSubmissionLocker() *SubmissionLocker {
	return &SubmissionLocker{held: make(map[string]struct{})}
}

func (l *SubmissionLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, domain.ErrLockHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
