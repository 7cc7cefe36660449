// Package logger provides structured logging for respkv.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: handler selection (json, text, tint console) and level control
//   - file.go: rotating file output via lumberjack
//   - context.go: context-aware logging with connection IDs
//   - redact.go: secret redaction and payload truncation
package logger
