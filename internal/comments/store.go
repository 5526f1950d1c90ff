// Package comments holds the comment tree of the post that is currently open.
package comments

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"feedsync/internal/core"
	"feedsync/internal/metrics"
	"feedsync/internal/optimistic"
	"feedsync/pkg/async"
	"feedsync/pkg/observe"
)

const (
	storeName = "comments"

	// TempIDPrefix marks comments that only exist locally so far.
	TempIDPrefix = "tmp-"
)

// CountHook is told when a comment was added to or removed from a post.
type CountHook func(postID string, delta int)

type Store struct {
	api    core.CommentAPI
	logger *slog.Logger

	// Author is the author attached to comments created locally.
	Author    func() core.Author
	CountHook CountHook
	// ReplyConcurrency bounds the reply requests of one load, 0 is unbounded.
	ReplyConcurrency int

	state *observe.Value[State]
}

func NewStore(api core.CommentAPI, logger *slog.Logger) *Store {
	return &Store{
		api:    api,
		logger: logger.With("component", "comments.Store"),
		state:  observe.NewValue(State{}),
	}
}

func (s *Store) State() State {
	return s.state.Get()
}

func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

func (s *Store) Comments() []core.Comment {
	return s.state.Get().Comments
}

func (s *Store) Tree() Tree {
	return BuildTree(s.state.Get().Comments)
}

func (s *Store) Sizes() map[string]int {
	return map[string]int{"comments": len(s.state.Get().Comments)}
}

// LoadForPost replaces the comments with those of postID: the roots first,
// then the replies of every root fetched concurrently. Loading ends when all
// reply requests finished. If another post is opened meanwhile the results
// are dropped and core.ErrStale is returned.
func (s *Store) LoadForPost(ctx context.Context, postID string) error {
	next := s.state.Update(func(state State) State {
		return State{
			PostID:     postID,
			Generation: state.Generation + 1,
			Loading:    true,
		}
	})
	gen := next.Generation
	logger := s.logger.With("post_id", postID, "generation", gen)

	roots, err := s.api.ListComments(ctx, postID, "")
	if !s.isCurrent(gen) {
		return s.stale(logger)
	}
	if err != nil {
		s.finish(gen, nil, err)
		return fmt.Errorf("failed to load comments of %s: %w", postID, err)
	}

	results := async.Settle(ctx, roots, s.ReplyConcurrency, func(ctx context.Context, root core.Comment) ([]core.Comment, error) {
		return s.api.ListComments(ctx, postID, root.ID)
	})
	if !s.isCurrent(gen) {
		return s.stale(logger)
	}

	all := slices.Clone(roots)
	for _, replies := range async.Values(results) {
		all = append(all, replies...)
	}

	replyErr := async.FirstErr(results)
	if replyErr != nil {
		logger.Warn("some replies failed to load", "error", replyErr)
	}

	s.finish(gen, all, replyErr)
	logger.Debug("comments loaded", "roots", len(roots), "total", len(all))

	return nil
}

func (s *Store) finish(gen uint64, list []core.Comment, err error) {
	s.state.Swap(func(state State) (State, bool) {
		if state.Generation != gen {
			return state, false
		}
		state.Comments = list
		state.Loading = false
		state.Err = err
		return state, true
	})
}

func (s *Store) isCurrent(gen uint64) bool {
	return s.state.Get().Generation == gen
}

func (s *Store) stale(logger *slog.Logger) error {
	metrics.StaleResponse(storeName)
	logger.Debug("discarding stale comments")
	return core.ErrStale
}

// Clear empties the store and invalidates every pending load.
func (s *Store) Clear() {
	s.state.Update(func(state State) State {
		return State{Generation: state.Generation + 1}
	})
}

// Create shows the comment immediately under a temporary id and swaps in the
// server's copy once it is created.
func (s *Store) Create(ctx context.Context, draft core.CommentDraft) *async.JobHandle[core.Comment] {
	tempID := TempIDPrefix + uuid.NewString()
	var gen uint64

	return optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, core.Comment]{
		Store:     storeName,
		Operation: "create",
		Apply: func(state State) (State, error) {
			if state.PostID == "" || state.PostID != draft.PostID {
				return state, fmt.Errorf("%w: post %s is not open", core.ErrBlocked, draft.PostID)
			}
			if draft.ParentID != "" {
				parent, _, ok := state.find(draft.ParentID)
				if !ok || !parent.IsRoot() {
					return state, fmt.Errorf("%w: root comment %s", core.ErrNotFound, draft.ParentID)
				}
			}

			gen = state.Generation
			state.Comments = append(slices.Clone(state.Comments), s.draftComment(tempID, draft))
			return state, nil
		},
		Dispatch: func(ctx context.Context) (core.Comment, error) {
			created, err := s.api.CreateComment(ctx, draft)
			if err != nil {
				return created, err
			}
			s.count(draft.PostID, 1)
			return created, nil
		},
		Reconcile: func(state State, created core.Comment) State {
			if state.Generation != gen {
				return state
			}
			return state.replace(tempID, func(local core.Comment) core.Comment {
				return local.Complete(created)
			})
		},
		Revert: func(state, _ State) State {
			return state.without(tempID)
		},
	})
}

func (s *Store) draftComment(id string, draft core.CommentDraft) core.Comment {
	now := time.Now()
	comment := core.Comment{
		ID:        id,
		PostID:    draft.PostID,
		ParentID:  draft.ParentID,
		Content:   draft.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.Author != nil {
		author := s.Author()
		comment.User = &author
		comment.UserID = author.ID
	}
	return comment
}

// Update edits the content of a comment. The handle reports the comment as
// it stands once the server confirmed the edit.
func (s *Store) Update(ctx context.Context, id string, patch core.CommentPatch) *async.JobHandle[core.Comment] {
	var confirmed core.Comment

	handle := optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, core.Echo[core.Comment]]{
		Store:     storeName,
		Operation: "update",
		Apply: func(state State) (State, error) {
			if _, _, ok := state.find(id); !ok {
				return state, fmt.Errorf("%w: comment %s", core.ErrNotFound, id)
			}
			return state.replace(id, func(c core.Comment) core.Comment {
				c.Content = patch.Content
				return c
			}), nil
		},
		Dispatch: func(ctx context.Context) (core.Echo[core.Comment], error) {
			return s.api.UpdateComment(ctx, id, patch)
		},
		Reconcile: func(state State, echo core.Echo[core.Comment]) State {
			state = state.replace(id, func(local core.Comment) core.Comment {
				return local.Merge(echo)
			})
			confirmed, _, _ = state.find(id)
			return state
		},
		Revert: func(state, snapshot State) State {
			original, _, ok := snapshot.find(id)
			if !ok {
				return state
			}
			return state.replace(id, func(core.Comment) core.Comment {
				return original
			})
		},
	})

	return async.Then(handle, func(echo core.Echo[core.Comment]) core.Comment {
		if confirmed.ID == "" {
			return echo.Value()
		}
		return confirmed
	})
}

// Delete removes a single comment. Replies of a deleted root stay and show up
// as orphans in the tree.
func (s *Store) Delete(ctx context.Context, id string) *async.JobHandle[struct{}] {
	var postID string

	return optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, struct{}]{
		Store:     storeName,
		Operation: "delete",
		Apply: func(state State) (State, error) {
			comment, _, ok := state.find(id)
			if !ok {
				return state, fmt.Errorf("%w: comment %s", core.ErrNotFound, id)
			}
			postID = comment.PostID
			return state.without(id), nil
		},
		Dispatch: func(ctx context.Context) (struct{}, error) {
			if err := s.api.DeleteComment(ctx, id); err != nil {
				return struct{}{}, err
			}
			s.count(postID, -1)
			return struct{}{}, nil
		},
		Revert: func(state, snapshot State) State {
			if state.Generation != snapshot.Generation {
				return state
			}
			comment, index, ok := snapshot.find(id)
			if !ok {
				return state
			}
			if _, _, exists := state.find(id); exists {
				return state
			}
			index = min(index, len(state.Comments))
			state.Comments = slices.Insert(slices.Clone(state.Comments), index, comment)
			return state
		},
	})
}

// ToggleLike flips the like of a comment; the server's answer wins.
func (s *Store) ToggleLike(ctx context.Context, id string) *async.JobHandle[bool] {
	return optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, bool]{
		Store:     storeName,
		Operation: "like",
		Apply: func(state State) (State, error) {
			if _, _, ok := state.find(id); !ok {
				return state, fmt.Errorf("%w: comment %s", core.ErrNotFound, id)
			}
			return state.replace(id, func(c core.Comment) core.Comment {
				return c.WithLike(c.LikeToggle().Flip())
			}), nil
		},
		Dispatch: func(ctx context.Context) (bool, error) {
			return s.api.ToggleCommentLike(ctx, id)
		},
		Reconcile: func(state State, liked bool) State {
			return state.replace(id, func(c core.Comment) core.Comment {
				return c.WithLike(c.LikeToggle().Settle(liked))
			})
		},
		Revert: func(state, snapshot State) State {
			original, _, ok := snapshot.find(id)
			if !ok {
				return state
			}
			return state.replace(id, func(c core.Comment) core.Comment {
				return c.WithLike(original.LikeToggle())
			})
		},
	})
}

func (s *Store) count(postID string, delta int) {
	if s.CountHook != nil && postID != "" {
		s.CountHook(postID, delta)
	}
}
