package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"feedsync/internal/core"
)

const (
	recentKeyPrefix = "recent_searches"
	recentVersion   = 1
)

type recentSnapshot struct {
	Version int                 `json:"version"`
	Items   []core.RecentSearch `json:"items"`
}

// Recent keeps a snapshot of the recent-search list in a key-value backend.
// It is best effort: read problems yield an empty list.
type Recent struct {
	kv     core.KeyValue
	key    string
	logger *slog.Logger
}

// NewRecent scopes the snapshot to owner, usually the viewer id.
func NewRecent(kv core.KeyValue, owner string, logger *slog.Logger) *Recent {
	key := recentKeyPrefix
	if owner != "" {
		key += "." + owner
	}
	return &Recent{
		kv:     kv,
		key:    key,
		logger: logger.With("component", "cache.Recent", "key", key),
	}
}

func (r *Recent) Load(ctx context.Context) []core.RecentSearch {
	raw, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if !errors.Is(err, core.ErrKeyNotFound) {
			r.logger.Warn("failed to read recent searches", "error", err)
		}
		return nil
	}

	var snapshot recentSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		r.logger.Warn("discarding corrupt recent searches", "error", err)
		return nil
	}
	if snapshot.Version != recentVersion {
		r.logger.Debug("discarding recent searches of another version", "version", snapshot.Version)
		return nil
	}

	return snapshot.Items
}

func (r *Recent) Save(ctx context.Context, items []core.RecentSearch) error {
	raw, err := json.Marshal(recentSnapshot{Version: recentVersion, Items: items})
	if err != nil {
		return err
	}
	if err := r.kv.Put(ctx, r.key, raw); err != nil {
		return fmt.Errorf("failed to persist recent searches: %w", err)
	}
	return nil
}
