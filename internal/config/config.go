package config

import "time"

const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheNATS   = "nats"
)

type Config struct {
	APIURL      string `flag:"api-url"`
	Token       string `flag:"token"`
	LocationURL string `flag:"location-url"`

	LogLevel string `flag:"log-level"`
	Pretty   bool   `flag:"pretty"`

	CacheBackend string `flag:"cache"`
	CachePath    string `flag:"cache-path"`
	NATSURL      string `flag:"nats-url"`
	NATSBucket   string `flag:"nats-bucket"`

	SearchDebounce   time.Duration `flag:"search-debounce"`
	LocationDebounce time.Duration `flag:"location-debounce"`

	PageSize    int    `flag:"page-size"`
	MetricsAddr string `flag:"metrics-addr"`
}
