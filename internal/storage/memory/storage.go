package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	*storage.KeyedLocker

	mu         sync.RWMutex
	namespaces map[string]map[string][]byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		KeyedLocker: storage.NewKeyedLocker(),
		namespaces:  make(map[string]map[string][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Save(ctx context.Context, namespace, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.namespaces[namespace] = ns
	}
	ns[key] = append([]byte(nil), blob...)
	return nil
}

func (s *Storage) Load(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.namespaces[namespace][key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (s *Storage) Delete(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces[namespace], key)
	return nil
}

func (s *Storage) List(ctx context.Context, namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.namespaces[namespace]))
	for key := range s.namespaces[namespace] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}
