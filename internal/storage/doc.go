// Package storage defines the key/value boundary consumed by command
// dispatch, and its Badger-backed implementation.
//
// Backends:
//
//   - memory (internal/storage/memory): sharded concurrent map, the default
//   - badger: persistent LSM store with periodic value-log GC
//
// Dispatch only needs Get; Set exists so the server can seed data at
// startup.
package storage
