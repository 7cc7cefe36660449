package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// MaxPayloadLen is the number of payload bytes kept in a log entry.
const MaxPayloadLen = 64

// Keys whose values are never written to the log.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
}

// Keys whose values are client data and get truncated.
var payloadKeys = map[string]bool{
	"payload": true,
	"value":   true,
	"frame":   true,
}

const redactedValue = "***REDACTED***"

// redactSensitive rewrites a single attribute before it reaches the handler.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if IsSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, redactedValue)
	}

	if payloadKeys[strings.ToLower(a.Key)] {
		switch a.Value.Kind() {
		case slog.KindString:
			return slog.String(a.Key, TruncatePayload(a.Value.String()))
		case slog.KindAny:
			if b, ok := a.Value.Any().([]byte); ok {
				return slog.String(a.Key, TruncatePayload(string(b)))
			}
		}
	}

	return a
}

// TruncatePayload shortens s to MaxPayloadLen bytes, cutting on a rune
// boundary and noting the original size.
func TruncatePayload(s string) string {
	if len(s) <= MaxPayloadLen {
		return s
	}
	cut := MaxPayloadLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:cut], len(s))
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
