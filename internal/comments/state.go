package comments

import (
	"slices"

	"github.com/samber/lo"

	"feedsync/internal/core"
)

// State holds the comments of the open post, roots and replies in load order.
type State struct {
	PostID   string
	Comments []core.Comment

	// Generation changes with every LoadForPost and Clear. Async results
	// carrying an older generation are discarded.
	Generation uint64

	Loading bool
	Err     error
}

func (s State) find(id string) (core.Comment, int, bool) {
	comment, index, ok := lo.FindIndexOf(s.Comments, func(c core.Comment) bool {
		return c.ID == id
	})
	return comment, index, ok
}

func (s State) replace(id string, fn func(core.Comment) core.Comment) State {
	_, index, ok := s.find(id)
	if !ok {
		return s
	}
	s.Comments = slices.Clone(s.Comments)
	s.Comments[index] = fn(s.Comments[index])
	return s
}

func (s State) without(id string) State {
	s.Comments = lo.Filter(s.Comments, func(c core.Comment, _ int) bool {
		return c.ID != id
	})
	return s
}

// Tree is the two level view of the comments of a post.
type Tree struct {
	Roots []core.Comment
	// Replies maps a root id to its replies in load order.
	Replies map[string][]core.Comment
	// Orphans are replies whose root is not loaded.
	Orphans []core.Comment
}

func (t Tree) RepliesOf(rootID string) []core.Comment {
	return t.Replies[rootID]
}

func BuildTree(list []core.Comment) Tree {
	isRoot := func(c core.Comment, _ int) bool {
		return c.IsRoot()
	}
	roots := lo.Filter(list, isRoot)
	replies := lo.Reject(list, isRoot)

	rootIDs := lo.Associate(roots, func(c core.Comment) (string, struct{}) {
		return c.ID, struct{}{}
	})

	hasRoot := func(c core.Comment, _ int) bool {
		_, ok := rootIDs[c.ParentID]
		return ok
	}
	attached := lo.Filter(replies, hasRoot)
	orphans := lo.Reject(replies, hasRoot)

	return Tree{
		Roots: roots,
		Replies: lo.GroupBy(attached, func(c core.Comment) string {
			return c.ParentID
		}),
		Orphans: orphans,
	}
}
