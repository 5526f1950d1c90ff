package flags

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"feedsync/internal/config"
)

var (
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validCacheBackends = []string{config.CacheMemory, config.CacheSQLite, config.CacheNATS}
)

func oneOf(name string, allowed []string) func(string) error {
	return func(value string) error {
		if !slices.Contains(allowed, value) {
			return fmt.Errorf("invalid %s: %s, allowed values are: %s", name, value, allowed)
		}
		return nil
	}
}

var APIURL = &cli.StringFlag{
	Name:    "api-url",
	Aliases: []string{"u"},
	Usage:   "Base URL of the feed API",
	Value:   "http://localhost:8080",
	Sources: cli.EnvVars("FEEDSYNC_API_URL"),
}

var Token = &cli.StringFlag{
	Name:    "token",
	Aliases: []string{"t"},
	Usage:   "Session token sent with every API request",
	Sources: cli.EnvVars("FEEDSYNC_TOKEN"),
}

var LocationURL = &cli.StringFlag{
	Name:    "location-url",
	Usage:   "Base URL of the Nominatim compatible location search",
	Value:   "https://nominatim.openstreetmap.org",
	Sources: cli.EnvVars("FEEDSYNC_LOCATION_URL"),
}

var LogLevel = &cli.StringFlag{
	Name:      "log-level",
	Aliases:   []string{"l"},
	Usage:     "The level of the logs",
	Value:     "info",
	Validator: oneOf("log level", validLogLevels),
	Sources:   cli.EnvVars("LOG_LEVEL"),
}

var Pretty = &cli.BoolFlag{
	Name:    "pretty",
	Aliases: []string{"p"},
	Usage:   "Dump raw entities instead of tables",
	Sources: cli.EnvVars("FEEDSYNC_PRETTY"),
}

var Cache = &cli.StringFlag{
	Name:      "cache",
	Usage:     "Where recent searches are cached: memory, sqlite or nats",
	Value:     config.CacheSQLite,
	Validator: oneOf("cache backend", validCacheBackends),
	Sources:   cli.EnvVars("FEEDSYNC_CACHE"),
}

var CachePath = &cli.StringFlag{
	Name:    "cache-path",
	Usage:   "The SQLite cache file",
	Value:   defaultCachePath(),
	Sources: cli.EnvVars("FEEDSYNC_CACHE_PATH"),
}

var NATSURL = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server",
	Value:   libnats.DefaultURL,
	Sources: cli.EnvVars("NATS_URL"),
}

var NATSBucket = &cli.StringFlag{
	Name:    "nats-bucket",
	Usage:   "The JetStream key-value bucket of the cache",
	Value:   "feedsync",
	Sources: cli.EnvVars("NATS_BUCKET"),
}

var SearchDebounce = &cli.DurationFlag{
	Name:    "search-debounce",
	Usage:   "Quiet interval before a user search is sent",
	Value:   400 * time.Millisecond,
	Sources: cli.EnvVars("FEEDSYNC_SEARCH_DEBOUNCE"),
}

var LocationDebounce = &cli.DurationFlag{
	Name:    "location-debounce",
	Usage:   "Quiet interval before a location search is sent",
	Value:   300 * time.Millisecond,
	Sources: cli.EnvVars("FEEDSYNC_LOCATION_DEBOUNCE"),
}

var PageSize = &cli.IntFlag{
	Name:    "page-size",
	Usage:   "Posts per page",
	Value:   12,
	Sources: cli.EnvVars("FEEDSYNC_PAGE_SIZE"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Aliases: []string{"m"},
	Usage:   "Listen address of the metrics server, empty to disable",
	Value:   ":9090",
	Sources: cli.EnvVars("FEEDSYNC_METRICS_ADDR"),
}

var ReplyTo = &cli.StringFlag{
	Name:  "reply-to",
	Usage: "Id of the root comment to reply to",
}

var Tab = &cli.StringFlag{
	Name:  "tab",
	Usage: "Profile tab to show: posts or saved",
	Value: "posts",
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "feedsync", "cache.db")
}
