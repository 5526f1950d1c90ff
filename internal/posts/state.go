package posts

import (
	"maps"
	"slices"

	"github.com/samber/lo"

	"feedsync/internal/core"
)

// State is an immutable snapshot of the post store. Posts is the single
// entity table; Feed and Saved are ordered id lists referencing it, so a post
// present in both views is one record.
type State struct {
	Posts map[string]core.Post

	// UserID is the owner of the loaded feed.
	UserID string
	Feed   []string
	Saved  []string

	HasMore     bool
	SavedLoaded bool
	Loading     bool
	Err         error
}

func (s State) list(ids []string) []core.Post {
	return lo.FilterMap(ids, func(id string, _ int) (core.Post, bool) {
		post, ok := s.Posts[id]
		return post, ok
	})
}

// withPost returns a copy of s with post stored under its id.
func (s State) withPost(post core.Post) State {
	s.Posts = maps.Clone(s.Posts)
	if s.Posts == nil {
		s.Posts = map[string]core.Post{}
	}
	s.Posts[post.ID] = post
	return s
}

// withPosts stores server copies of posts, replacing local ones.
func (s State) withPosts(posts []core.Post) State {
	s.Posts = maps.Clone(s.Posts)
	if s.Posts == nil {
		s.Posts = map[string]core.Post{}
	}
	for _, post := range posts {
		s.Posts[post.ID] = post
	}
	return s
}

// updatePost returns a copy of s with fn applied to the post id, or s itself
// when the post is not in the table.
func (s State) updatePost(id string, fn func(core.Post) core.Post) State {
	post, ok := s.Posts[id]
	if !ok {
		return s
	}
	return s.withPost(fn(post))
}

// prune drops table entries no view references any more.
func (s State) prune() State {
	referenced := lo.Associate(append(slices.Clone(s.Feed), s.Saved...), func(id string) (string, struct{}) {
		return id, struct{}{}
	})

	s.Posts = maps.Clone(s.Posts)
	maps.DeleteFunc(s.Posts, func(id string, _ core.Post) bool {
		_, ok := referenced[id]
		return !ok
	})
	return s
}

func prepend(ids []string, id string) []string {
	return append([]string{id}, lo.Without(ids, id)...)
}

// insertAt puts id back at index, or at the end when the list got shorter.
func insertAt(ids []string, index int, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	index = min(max(index, 0), len(ids))
	return slices.Insert(slices.Clone(ids), index, id)
}
