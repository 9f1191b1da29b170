package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/storage"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Save(ctx context.Context, namespace, key string, blob []byte) error {
	indexKey := namespaceIndexKey(namespace)

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, blobKey(namespace, key), blob, s.cfg.SaveTTL)
	pipe.SAdd(ctx, indexKey, key)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) Load(ctx context.Context, namespace, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, blobKey(namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) Delete(ctx context.Context, namespace, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, blobKey(namespace, key))
	pipe.SRem(ctx, namespaceIndexKey(namespace), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) List(ctx context.Context, namespace string) ([]string, error) {
	keys, err := s.client.SMembers(ctx, namespaceIndexKey(namespace)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []string{}, nil
	}

	// Drop index entries whose blob has expired
	blobKeys := make([]string, len(keys))
	for i, k := range keys {
		blobKeys[i] = blobKey(namespace, k)
	}
	counts := make([]*redis.IntCmd, len(keys))
	pipe := s.client.Pipeline()
	for i, bk := range blobKeys {
		counts[i] = pipe.Exists(ctx, bk)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	live := make([]string, 0, len(keys))
	for i, k := range keys {
		if counts[i].Val() > 0 {
			live = append(live, k)
		}
	}
	sort.Strings(live)
	return live, nil
}

// Acquire takes a SET NX lock, polling until ctx is done
func (s *Storage) Acquire(ctx context.Context, name string) (func(), error) {
	key := lockKey(name)
	token := uuid.NewString()

	ticker := time.NewTicker(s.cfg.LockRetry)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, key, token, s.cfg.LockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", model.ErrLockTimeout, name)
			}
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					// Release must succeed even when the caller's context is already done
					releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
					defer cancel()
					_ = releaseScript.Run(releaseCtx, s.client, []string{key}, token).Err()
				})
			}, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", model.ErrLockTimeout, name)
		}
	}
}
