// Package posts holds the posts of the open profile: the profile feed, the
// viewer's saved posts, and every optimistic mutation on them.
package posts

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"feedsync/internal/core"
	"feedsync/internal/metrics"
	"feedsync/internal/optimistic"
	"feedsync/pkg/async"
	"feedsync/pkg/observe"
)

const (
	storeName       = "posts"
	DefaultPageSize = 12
)

type Store struct {
	api    core.PostAPI
	viewer core.Viewer
	logger *slog.Logger

	PageSize int

	state *observe.Value[State]

	// loadGen invalidates feed loads superseded by a newer one.
	loadGen atomic.Uint64

	viewedMu sync.Mutex
	viewed   map[string]struct{}
}

func NewStore(api core.PostAPI, viewer core.Viewer, logger *slog.Logger) *Store {
	return &Store{
		api:      api,
		viewer:   viewer,
		logger:   logger.With("component", "posts.Store"),
		PageSize: DefaultPageSize,
		state:    observe.NewValue(State{Posts: map[string]core.Post{}}),
		viewed:   map[string]struct{}{},
	}
}

func (s *Store) State() State {
	return s.state.Get()
}

// Subscribe calls fn with every new state. See observe.Value.Subscribe.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

// Feed returns the posts of the loaded profile, newest first.
func (s *Store) Feed() []core.Post {
	state := s.state.Get()
	return state.list(state.Feed)
}

// List is Feed.
func (s *Store) List() []core.Post {
	return s.Feed()
}

func (s *Store) Saved() []core.Post {
	state := s.state.Get()
	return state.list(state.Saved)
}

func (s *Store) Get(id string) (core.Post, bool) {
	post, ok := s.state.Get().Posts[id]
	return post, ok
}

func (s *Store) HasMore() bool {
	return s.state.Get().HasMore
}

func (s *Store) Sizes() map[string]int {
	state := s.state.Get()
	return map[string]int{
		"posts":       len(state.Posts),
		"posts_feed":  len(state.Feed),
		"posts_saved": len(state.Saved),
	}
}

// Load replaces the feed with the first page of userID's posts. Switching to
// another user also forgets the saved view.
func (s *Store) Load(ctx context.Context, userID string) error {
	gen := s.loadGen.Add(1)

	s.state.Update(func(state State) State {
		if state.UserID != userID {
			state.Saved = nil
			state.SavedLoaded = false
		}
		state.UserID = userID
		state.Loading = true
		state.Err = nil
		return state
	})

	page, err := s.api.ListPosts(ctx, s.feedQuery(userID, 0))

	if s.loadGen.Load() != gen {
		metrics.StaleResponse(storeName)
		s.logger.Debug("discarding stale feed", "user_id", userID)
		return fmt.Errorf("%w: feed of %s", core.ErrStale, userID)
	}

	if err != nil {
		s.state.Update(func(state State) State {
			state.Loading = false
			state.Err = err
			return state
		})
		return fmt.Errorf("failed to load posts of %s: %w", userID, err)
	}

	s.state.Update(func(state State) State {
		state = state.withPosts(page.Items)
		state.Feed = lo.Uniq(lo.Map(page.Items, postID))
		state.HasMore = page.IsNext
		state.Loading = false
		return state.prune()
	})

	s.logger.Debug("feed loaded", "user_id", userID, "count", len(page.Items), "has_more", page.IsNext)

	return nil
}

// LoadMore appends the next page of the loaded feed.
func (s *Store) LoadMore(ctx context.Context) error {
	current := s.state.Get()
	if !current.HasMore || current.Loading {
		return nil
	}

	gen := s.loadGen.Load()

	page, err := s.api.ListPosts(ctx, s.feedQuery(current.UserID, len(current.Feed)))
	if err != nil {
		return fmt.Errorf("failed to load more posts: %w", err)
	}

	if s.loadGen.Load() != gen {
		metrics.StaleResponse(storeName)
		return fmt.Errorf("%w: next page of %s", core.ErrStale, current.UserID)
	}

	s.state.Update(func(state State) State {
		state = state.withPosts(page.Items)
		state.Feed = lo.Uniq(append(slices.Clone(state.Feed), lo.Map(page.Items, postID)...))
		state.HasMore = page.IsNext
		return state
	})

	return nil
}

// LoadSaved fills the saved view with the viewer's saved posts.
func (s *Store) LoadSaved(ctx context.Context) error {
	page, err := s.api.ListPosts(ctx, core.PostQuery{
		IsSaved: true,
		Limit:   s.PageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to load saved posts: %w", err)
	}

	s.state.Update(func(state State) State {
		state = state.withPosts(page.Items)
		state.Saved = lo.Uniq(lo.Map(page.Items, postID))
		state.SavedLoaded = true
		return state.prune()
	})

	return nil
}

// ToggleLike flips the like of a post locally and asks the server to do the
// same. The server's answer wins.
func (s *Store) ToggleLike(ctx context.Context, id string) *async.JobHandle[bool] {
	return optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, bool]{
		Store:     storeName,
		Operation: "like",
		Apply: func(state State) (State, error) {
			post, ok := state.Posts[id]
			if !ok {
				return state, fmt.Errorf("%w: post %s", core.ErrNotFound, id)
			}
			return state.withPost(post.WithLike(post.LikeToggle().Flip())), nil
		},
		Dispatch: func(ctx context.Context) (bool, error) {
			return s.api.TogglePostLike(ctx, id)
		},
		Reconcile: func(state State, liked bool) State {
			return state.updatePost(id, func(post core.Post) core.Post {
				return post.WithLike(post.LikeToggle().Settle(liked))
			})
		},
		Revert: func(state, snapshot State) State {
			return state.updatePost(id, func(post core.Post) core.Post {
				return post.WithLike(snapshot.Posts[id].LikeToggle())
			})
		},
	})
}

// ToggleSave flips the saved flag of a post. Saving one's own post is refused
// with core.ErrBlocked; unsaving it is allowed.
func (s *Store) ToggleSave(ctx context.Context, id string) *async.JobHandle[bool] {
	var want bool

	return optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, bool]{
		Store:     storeName,
		Operation: "save",
		Apply: func(state State) (State, error) {
			post, ok := state.Posts[id]
			if !ok {
				return state, fmt.Errorf("%w: post %s", core.ErrNotFound, id)
			}
			if s.isOwn(post) && !post.IsSaved {
				return state, fmt.Errorf("%w: cannot save own post %s", core.ErrBlocked, id)
			}

			post.IsSaved = !post.IsSaved
			want = post.IsSaved
			return state.withPost(post), nil
		},
		Dispatch: func(ctx context.Context) (bool, error) {
			saved, err := s.api.TogglePostSave(ctx, id)
			if err != nil {
				return false, err
			}
			if saved == nil {
				return want, nil
			}
			return *saved, nil
		},
		Reconcile: func(state State, saved bool) State {
			state = state.updatePost(id, func(post core.Post) core.Post {
				post.IsSaved = saved
				return post
			})
			if _, ok := state.Posts[id]; !ok {
				return state
			}

			switch {
			case !saved:
				state.Saved = lo.Without(state.Saved, id)
			case state.SavedLoaded && !lo.Contains(state.Saved, id):
				state.Saved = prepend(state.Saved, id)
			}
			return state.prune()
		},
		Revert: func(state, snapshot State) State {
			return state.updatePost(id, func(post core.Post) core.Post {
				post.IsSaved = snapshot.Posts[id].IsSaved
				return post
			})
		},
	})
}

// MarkViewed registers a view of the post once per session. Further calls
// return an already finished handle without a request.
func (s *Store) MarkViewed(ctx context.Context, id string) *async.JobHandle[struct{}] {
	s.viewedMu.Lock()
	_, seen := s.viewed[id]
	s.viewed[id] = struct{}{}
	s.viewedMu.Unlock()

	if seen {
		return async.Done(struct{}{}, nil)
	}

	return async.Job(ctx, func(ctx context.Context) (struct{}, error) {
		if err := s.api.MarkPostViewed(ctx, id); err != nil {
			s.logger.Warn("failed to register view", "post_id", id, "error", err)
			return struct{}{}, err
		}

		s.state.Update(func(state State) State {
			return state.updatePost(id, func(post core.Post) core.Post {
				post.ViewCount++
				return post
			})
		})
		return struct{}{}, nil
	})
}

// AddOptimistic puts a freshly created post at the top of the feed before
// the feed is reloaded.
func (s *Store) AddOptimistic(post core.Post) {
	s.state.Update(func(state State) State {
		state = state.withPost(post)
		state.Feed = prepend(state.Feed, post.ID)
		return state
	})
}

// Create publishes a post and shows it at the top of the feed.
func (s *Store) Create(ctx context.Context, req core.CreatePostRequest) *async.JobHandle[core.Post] {
	return async.Job(ctx, func(ctx context.Context) (core.Post, error) {
		post, err := s.api.CreatePost(ctx, req)
		if err != nil {
			metrics.Mutation(storeName, "create", metrics.OutcomeReverted)
			return core.Post{}, fmt.Errorf("failed to create post: %w", err)
		}

		s.AddOptimistic(post)
		metrics.Mutation(storeName, "create", metrics.OutcomeReconciled)

		return post, nil
	})
}

// ApplyUpdate edits a post locally and on the server. The handle reports the
// post as it stands once the server confirmed the edit.
func (s *Store) ApplyUpdate(ctx context.Context, id string, patch core.PostPatch) *async.JobHandle[core.Post] {
	var confirmed core.Post

	handle := optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, core.Echo[core.Post]]{
		Store:     storeName,
		Operation: "update",
		Apply: func(state State) (State, error) {
			post, ok := state.Posts[id]
			if !ok {
				return state, fmt.Errorf("%w: post %s", core.ErrNotFound, id)
			}
			return state.withPost(post.ApplyPatch(patch)), nil
		},
		Dispatch: func(ctx context.Context) (core.Echo[core.Post], error) {
			return s.api.UpdatePost(ctx, id, patch)
		},
		Reconcile: func(state State, echo core.Echo[core.Post]) State {
			state = state.updatePost(id, func(post core.Post) core.Post {
				return post.Merge(echo)
			})
			confirmed = state.Posts[id]
			return state
		},
		Revert: func(state, snapshot State) State {
			return state.updatePost(id, func(core.Post) core.Post {
				return snapshot.Posts[id]
			})
		},
	})

	return async.Then(handle, func(echo core.Echo[core.Post]) core.Post {
		if confirmed.ID == "" {
			return echo.Value()
		}
		return confirmed
	})
}

// Remove deletes a post from every view. On failure the post comes back at
// the positions it had.
func (s *Store) Remove(ctx context.Context, id string) *async.JobHandle[struct{}] {
	return optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, struct{}]{
		Store:     storeName,
		Operation: "delete",
		Apply: func(state State) (State, error) {
			if _, ok := state.Posts[id]; !ok {
				return state, fmt.Errorf("%w: post %s", core.ErrNotFound, id)
			}
			state.Feed = lo.Without(state.Feed, id)
			state.Saved = lo.Without(state.Saved, id)
			return state.prune(), nil
		},
		Dispatch: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeletePost(ctx, id)
		},
		Revert: func(state, snapshot State) State {
			post, ok := snapshot.Posts[id]
			if !ok {
				return state
			}
			if i := slices.Index(snapshot.Feed, id); i >= 0 {
				state.Feed = insertAt(state.Feed, i, id)
			}
			if i := slices.Index(snapshot.Saved, id); i >= 0 {
				state.Saved = insertAt(state.Saved, i, id)
			}
			return state.withPost(post)
		},
	})
}

// AdjustCommentCount moves the comment counter of a post by delta. It is a
// local side effect of comment create and delete, never rolled back.
func (s *Store) AdjustCommentCount(postID string, delta int) {
	s.state.Swap(func(state State) (State, bool) {
		if _, ok := state.Posts[postID]; !ok {
			return state, false
		}
		return state.updatePost(postID, func(post core.Post) core.Post {
			post.CommentsCount = max(post.CommentsCount+delta, 0)
			return post
		}), true
	})
}

// feedQuery lists the regular posts of a user, newest first.
func (s *Store) feedQuery(userID string, skip int) core.PostQuery {
	return core.PostQuery{
		UserID:    userID,
		Limit:     s.PageSize,
		Skip:      skip,
		SortKey:   "createdAt",
		SortOrder: -1,
		PostType:  core.PostTypeRegular,
	}
}

func (s *Store) isOwn(post core.Post) bool {
	if s.viewer == nil {
		return false
	}
	viewerID := s.viewer.ViewerID()
	return viewerID != "" && post.Author().ID == viewerID
}

func postID(post core.Post, _ int) string {
	return post.ID
}
