package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr   = "127.0.0.1:6378"
	DefaultMetricsAddr = "127.0.0.1:9378"

	DefaultEngine            = "memory"
	DefaultDataDir           = "/var/lib/respkv/data"
	DefaultBadgerGCInterval  = 10 * time.Minute
	DefaultBadgerGCThreshold = 0.5

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogMaxSize = 100
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr: DefaultRedisAddr,
			},
			Metrics: MetricsConfig{
				Enabled: false,
				Addr:    DefaultMetricsAddr,
			},
		},
		Storage: StorageSection{
			Engine:  DefaultEngine,
			DataDir: DefaultDataDir,
			Seed:    map[string]string{"ping": "pong"},
			Badger: BadgerSection{
				GCInterval:  DefaultBadgerGCInterval,
				GCThreshold: DefaultBadgerGCThreshold,
			},
		},
		Log: LogSection{
			Level:     DefaultLogLevel,
			Format:    DefaultLogFormat,
			MaxSizeMB: DefaultLogMaxSize,
		},
	}
}
