package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "feedsync_store_entities",
		Help: "Number of entities currently held by a store.",
	}, []string{"store"})
)

// SizeSource reports the current size of one store.
type SizeSource interface {
	Sizes() map[string]int
}

type Collector struct {
	Logger *slog.Logger
	Source SizeSource

	Interval time.Duration
}

func (c *Collector) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "metrics.Collector")
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
	return nil
}

func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		c.Collect()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Collector) Collect() {
	if c.Source == nil {
		return
	}
	for store, size := range c.Source.Sizes() {
		storeSize.WithLabelValues(store).Set(float64(size))
	}
	c.Logger.Debug("collected store sizes")
}
