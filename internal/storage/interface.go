package storage

import (
	"context"
)

// Namespaces used by the services
const (
	NamespaceProfiles  = "profiles"
	NamespaceUsernames = "usernames"
	NamespaceSaves     = "saves"
)

// Store persists opaque blobs addressed by namespace and key.
// Load returns model.ErrNotFound when the key does not exist.
type Store interface {
	Save(ctx context.Context, namespace, key string, blob []byte) error
	Load(ctx context.Context, namespace, key string) ([]byte, error)
	Delete(ctx context.Context, namespace, key string) error
	// List returns the keys of a namespace in lexical order
	List(ctx context.Context, namespace string) ([]string, error)
}

// Locker hands out exclusive named locks. Acquire blocks until the lock is
// held or ctx is done, in which case it returns an error wrapping
// model.ErrLockTimeout. The returned release func is safe to call twice.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Storage is a Store that can also lock keys
type Storage interface {
	Store
	Locker
	Close() error
}
