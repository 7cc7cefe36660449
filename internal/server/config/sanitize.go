package config

import (
	"maps"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Sanitize returns a copy of the config that is safe to log.
//
// Seed values are client data and may be large, so they are truncated.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if cfg.Storage.Seed != nil {
		sanitized.Storage.Seed = maps.Clone(cfg.Storage.Seed)
		for k, v := range sanitized.Storage.Seed {
			sanitized.Storage.Seed[k] = logger.TruncatePayload(v)
		}
	}

	return &sanitized
}
