package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/bananamath/internal/model"
)

// KeyedLocker is an in-process Locker with one lock per key
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewKeyedLocker creates an empty KeyedLocker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]chan struct{})}
}

var _ Locker = (*KeyedLocker)(nil)

// Acquire waits for the lock on key
func (l *KeyedLocker) Acquire(ctx context.Context, key string) (func(), error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s", model.ErrLockTimeout, key)
		}

		l.mu.Lock()
		held, busy := l.locks[key]
		if !busy {
			done := make(chan struct{})
			l.locks[key] = done
			l.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, key)
					l.mu.Unlock()
					close(done)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", model.ErrLockTimeout, key)
		}
	}
}
