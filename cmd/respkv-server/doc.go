// Package main provides the entry point for respkv-server.
//
// The server speaks the Redis serialization protocol over TCP and answers
// GET and PING from a key-value store (in-memory or Badger). It optionally
// exposes Prometheus metrics over HTTP.
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server --config /etc/respkv/config.yaml
//	respkv-server --addr 0.0.0.0:6378 --log-level debug
//
// Configuration is layered: built-in defaults, the YAML file, RESPKV_*
// environment variables, then command-line flags. The log level is
// reloaded when the configuration file changes.
package main
