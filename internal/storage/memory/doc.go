// Package memory provides the in-memory Store backend.
//
// Values live in a sharded concurrent map (pkg/cmap), so lookups from many
// connections only contend when they hash to the same shard.
package memory
