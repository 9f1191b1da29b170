package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "bananamath"

// blobKey returns the Redis key for a stored blob
func blobKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, key)
}

// namespaceIndexKey returns the Redis key for the SET of keys in a namespace
func namespaceIndexKey(namespace string) string {
	return fmt.Sprintf("%s:idx:ns:%s", keyPrefix, namespace)
}

// lockKey returns the Redis key for a named lock
func lockKey(name string) string {
	return fmt.Sprintf("%s:lock:%s", keyPrefix, name)
}
