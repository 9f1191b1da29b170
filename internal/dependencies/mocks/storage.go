package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/bananamath/internal/storage"
)

// FaultyStorage wraps a Storage and fails selected operations on demand
type FaultyStorage struct {
	storage.Storage

	mu         sync.Mutex
	SaveErr    error
	LoadErr    error
	AcquireErr error
}

// Ensure FaultyStorage implements Storage
var _ storage.Storage = (*FaultyStorage)(nil)

// NewFaultyStorage wraps inner
func NewFaultyStorage(inner storage.Storage) *FaultyStorage {
	return &FaultyStorage{Storage: inner}
}

// Save fails with SaveErr when set
func (f *FaultyStorage) Save(ctx context.Context, namespace, key string, blob []byte) error {
	f.mu.Lock()
	err := f.SaveErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Storage.Save(ctx, namespace, key, blob)
}

// Load fails with LoadErr when set
func (f *FaultyStorage) Load(ctx context.Context, namespace, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.LoadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Storage.Load(ctx, namespace, key)
}

// Acquire fails with AcquireErr when set
func (f *FaultyStorage) Acquire(ctx context.Context, key string) (func(), error) {
	f.mu.Lock()
	err := f.AcquireErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Storage.Acquire(ctx, key)
}

// Fail sets the errors returned by Save, Load and Acquire
func (f *FaultyStorage) Fail(save, load, acquire error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveErr, f.LoadErr, f.AcquireErr = save, load, acquire
}
