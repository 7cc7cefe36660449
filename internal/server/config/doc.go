// Package config provides server configuration for respkv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (addresses, engine, limits)
//   - sanitize.go: Log-safe copy of the configuration
//
// Configuration is loaded via internal/infra/confloader from files,
// environment variables and flags.
package config
