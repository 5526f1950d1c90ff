// Package search implements the debounced user and location search streams
// and the recent-search list.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"feedsync/internal/cache"
	"feedsync/internal/core"
	"feedsync/internal/optimistic"
	"feedsync/pkg/async"
	"feedsync/pkg/observe"
)

// errAlreadyRecent refuses a save of text the list already holds.
var errAlreadyRecent = errors.New("already in recent searches")

const (
	storeName = "search"

	DefaultUserDebounce     = 400 * time.Millisecond
	DefaultLocationDebounce = 300 * time.Millisecond
)

// Recent is the recent-search list.
type Recent struct {
	Items  []core.RecentSearch
	Loaded bool
	Err    error
}

type Config struct {
	UserDebounce     time.Duration
	LocationDebounce time.Duration
	Clock            clockwork.Clock
}

type Store struct {
	searches core.SearchAPI
	cache    *cache.Recent
	logger   *slog.Logger

	Users     *Debouncer[core.SearchUser]
	Locations *Debouncer[core.LocationSuggestion]

	recent *observe.Value[Recent]

	loadMu sync.Mutex
}

// NewStore wires the search streams. locations may be nil when location
// search is not available.
func NewStore(users core.UserAPI, searches core.SearchAPI, locations core.LocationAPI, recentCache *cache.Recent, cfg Config, logger *slog.Logger) *Store {
	if cfg.UserDebounce == 0 {
		cfg.UserDebounce = DefaultUserDebounce
	}
	if cfg.LocationDebounce == 0 {
		cfg.LocationDebounce = DefaultLocationDebounce
	}

	s := &Store{
		searches: searches,
		cache:    recentCache,
		logger:   logger.With("component", "search.Store"),
		recent:   observe.NewValue(Recent{}),
	}

	s.Users = NewDebouncer(users.SearchUsers, DebouncerConfig{
		Name:   "users",
		Quiet:  cfg.UserDebounce,
		Clock:  cfg.Clock,
		Logger: logger,
	})

	if locations != nil {
		s.Locations = NewDebouncer(locations.SearchLocations, DebouncerConfig{
			Name:   "locations",
			Quiet:  cfg.LocationDebounce,
			Clock:  cfg.Clock,
			Logger: logger,
		})
	}

	return s
}

func (s *Store) Close() {
	s.Users.Close()
	if s.Locations != nil {
		s.Locations.Close()
	}
}

// Input feeds the user search stream.
func (s *Store) Input(ctx context.Context, query string) {
	s.Users.Input(ctx, query)
}

func (s *Store) Results() []core.SearchUser {
	return s.Users.Results()
}

func (s *Store) Recent() Recent {
	return s.recent.Get()
}

func (s *Store) SubscribeRecent(fn func(Recent)) func() {
	return s.recent.Subscribe(fn)
}

func (s *Store) Sizes() map[string]int {
	return map[string]int{
		"search_users":  len(s.Users.Results()),
		"search_recent": len(s.recent.Get().Items),
	}
}

// LoadRecent shows the cached list first, then replaces it with the server's.
// It runs once per session; after a failure the next call tries again.
func (s *Store) LoadRecent(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.recent.Get().Loaded {
		return nil
	}

	if s.cache != nil {
		if cached := s.cache.Load(ctx); len(cached) > 0 {
			s.recent.Update(func(r Recent) Recent {
				r.Items = cached
				return r
			})
			s.logger.Debug("recent searches hydrated from cache", "count", len(cached))
		}
	}

	items, err := s.searches.RecentSearches(ctx)
	if err != nil {
		s.recent.Update(func(r Recent) Recent {
			r.Err = err
			return r
		})
		return fmt.Errorf("failed to load recent searches: %w", err)
	}

	s.recent.Set(Recent{Items: items, Loaded: true})
	s.persist(ctx)

	return nil
}

// SaveToRecent adds text to the top of the recent list. Text already present,
// ignoring case, is not added again.
func (s *Store) SaveToRecent(ctx context.Context, text string) *async.JobHandle[core.RecentSearch] {
	text = strings.TrimSpace(text)
	if text == "" {
		return async.Done(core.RecentSearch{}, core.ErrEmptyQuery)
	}

	var (
		tempID   = "tmp-" + uuid.NewString()
		existing core.RecentSearch
	)

	handle := optimistic.Run(ctx, s.logger, s.recent, optimistic.Mutation[Recent, core.RecentSearch]{
		Store:     storeName,
		Operation: "save_recent",
		Apply: func(r Recent) (Recent, error) {
			if item, ok := lo.Find(r.Items, func(item core.RecentSearch) bool {
				return strings.EqualFold(item.Text, text)
			}); ok {
				existing = item
				return r, errAlreadyRecent
			}

			now := time.Now()
			entry := core.RecentSearch{ID: tempID, Text: text, CreatedAt: now, SearchAt: now, UpdatedAt: now}
			r.Items = append([]core.RecentSearch{entry}, r.Items...)
			return r, nil
		},
		Dispatch: func(ctx context.Context) (core.RecentSearch, error) {
			return s.searches.SaveSearch(ctx, text)
		},
		Reconcile: func(r Recent, saved core.RecentSearch) Recent {
			r.Items = lo.Map(r.Items, func(item core.RecentSearch, _ int) core.RecentSearch {
				if item.ID != tempID {
					return item
				}
				if saved.Text == "" {
					saved.Text = item.Text
				}
				return saved
			})
			return r
		},
		Revert: func(r, _ Recent) Recent {
			r.Items = lo.Filter(r.Items, func(item core.RecentSearch, _ int) bool {
				return item.ID != tempID
			})
			return r
		},
	})

	if errors.Is(handle.Error(), errAlreadyRecent) {
		return async.Done(existing, nil)
	}

	return persistAfter(ctx, s, handle)
}

// DeleteRecent removes an entry from the recent list.
func (s *Store) DeleteRecent(ctx context.Context, id string) *async.JobHandle[struct{}] {
	handle := optimistic.Run(ctx, s.logger, s.recent, optimistic.Mutation[Recent, struct{}]{
		Store:     storeName,
		Operation: "delete_recent",
		Apply: func(r Recent) (Recent, error) {
			if !lo.ContainsBy(r.Items, func(item core.RecentSearch) bool { return item.ID == id }) {
				return r, fmt.Errorf("%w: recent search %s", core.ErrNotFound, id)
			}
			r.Items = lo.Filter(r.Items, func(item core.RecentSearch, _ int) bool {
				return item.ID != id
			})
			return r, nil
		},
		Dispatch: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.searches.DeleteSearch(ctx, id)
		},
		Revert: func(r, snapshot Recent) Recent {
			item, index, ok := lo.FindIndexOf(snapshot.Items, func(item core.RecentSearch) bool {
				return item.ID == id
			})
			if !ok {
				return r
			}
			index = min(index, len(r.Items))
			r.Items = slices.Insert(slices.Clone(r.Items), index, item)
			return r
		},
	})

	return persistAfter(ctx, s, handle)
}

// TriggerRecent searches for a recent entry right away.
func (s *Store) TriggerRecent(ctx context.Context, text string) ([]core.SearchUser, error) {
	return s.Users.Submit(ctx, text)
}

// RecentMatching returns the recent entries fuzzily matching query, best
// matches first. An empty query returns the whole list.
func (s *Store) RecentMatching(query string) []core.RecentSearch {
	items := s.recent.Get().Items
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	texts := lo.Map(items, func(item core.RecentSearch, _ int) string {
		return item.Text
	})

	ranks := fuzzy.RankFindFold(query, texts)
	sort.Stable(ranks)

	return lo.Map(ranks, func(rank fuzzy.Rank, _ int) core.RecentSearch {
		return items[rank.OriginalIndex]
	})
}

// persistAfter caches the recent list once handle finished successfully.
func persistAfter[T any](ctx context.Context, s *Store, handle *async.JobHandle[T]) *async.JobHandle[T] {
	return async.Job(ctx, func(ctx context.Context) (T, error) {
		value, err := handle.Wait()
		if err == nil {
			s.persist(ctx)
		}
		return value, err
	})
}

func (s *Store) persist(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, s.recent.Get().Items); err != nil {
		s.logger.Warn("failed to cache recent searches", "error", err)
	}
}
