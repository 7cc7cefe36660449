// Package cmap provides a concurrent map split into independently locked
// shards.
//
// Keys are assigned to shards with murmur3, so unrelated keys rarely share a
// lock. Reads take a shard read lock; writes take the shard write lock.
//
// Usage:
//
//	m := cmap.New[string, []byte]()
//	m.Set("ping", []byte("pong"))
//	v, ok := m.Get("ping")
package cmap
