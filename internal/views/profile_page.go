// Package views derives what the profile screen shows from the stores.
package views

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"feedsync/internal/comments"
	"feedsync/internal/core"
	"feedsync/internal/posts"
)

type Tab string

const (
	TabPosts Tab = "posts"
	TabSaved Tab = "saved"
)

func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabPosts, TabSaved:
		return Tab(s), nil
	default:
		return "", fmt.Errorf("unknown tab %q", s)
	}
}

// Grid returns the posts of a tab in display order.
func Grid(store *posts.Store, tab Tab) []core.Post {
	if tab == TabSaved {
		return store.Saved()
	}
	return store.Feed()
}

// ProfilePage is the selection state of one profile screen: the active tab
// and the post open in the detail modal.
type ProfilePage struct {
	posts    *posts.Store
	comments *comments.Store

	mu       sync.Mutex
	userID   string
	tab      Tab
	selected string
}

func NewProfilePage(postStore *posts.Store, commentStore *comments.Store) *ProfilePage {
	return &ProfilePage{
		posts:    postStore,
		comments: commentStore,
		tab:      TabPosts,
	}
}

// Show loads the profile of userID. Switching to another profile resets the
// tab and closes the modal.
func (p *ProfilePage) Show(ctx context.Context, userID string) error {
	p.mu.Lock()
	if p.userID != userID {
		p.userID = userID
		p.tab = TabPosts
		p.selected = ""
		p.comments.Clear()
	}
	p.mu.Unlock()

	return p.posts.Load(ctx, userID)
}

func (p *ProfilePage) Tab() Tab {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.tab
}

// SwitchTab activates tab, loading the saved posts the first time they are
// shown. The modal is closed.
func (p *ProfilePage) SwitchTab(ctx context.Context, tab Tab) error {
	p.mu.Lock()
	changed := p.tab != tab
	p.tab = tab
	if changed {
		p.selected = ""
	}
	p.mu.Unlock()

	if changed {
		p.comments.Clear()
	}

	if tab == TabSaved && !p.posts.State().SavedLoaded {
		return p.posts.LoadSaved(ctx)
	}
	return nil
}

func (p *ProfilePage) Grid() []core.Post {
	return Grid(p.posts, p.Tab())
}

// Open shows a post of the active tab in the modal: its view is registered
// and its comments are loaded.
func (p *ProfilePage) Open(ctx context.Context, postID string) error {
	p.mu.Lock()
	tab := p.tab
	p.mu.Unlock()

	if !containsPost(Grid(p.posts, tab), postID) {
		return fmt.Errorf("%w: post %s is not in the %s tab", core.ErrNotFound, postID, tab)
	}

	p.mu.Lock()
	p.selected = postID
	p.mu.Unlock()

	p.posts.MarkViewed(ctx, postID)

	return p.comments.LoadForPost(ctx, postID)
}

func (p *ProfilePage) Close() {
	p.mu.Lock()
	p.selected = ""
	p.mu.Unlock()

	p.comments.Clear()
}

// SelectedPost is the post shown in the modal. It is read from the list of
// the active tab, so a post that left that list is no longer selected.
func (p *ProfilePage) SelectedPost() (core.Post, bool) {
	p.mu.Lock()
	tab, selected := p.tab, p.selected
	p.mu.Unlock()

	if selected == "" {
		return core.Post{}, false
	}

	list := Grid(p.posts, tab)
	i := slices.IndexFunc(list, func(post core.Post) bool {
		return post.ID == selected
	})
	if i < 0 {
		return core.Post{}, false
	}
	return list[i], true
}

// CommentTree is the comment tree of the open post.
func (p *ProfilePage) CommentTree() comments.Tree {
	return p.comments.Tree()
}

func containsPost(list []core.Post, id string) bool {
	return slices.ContainsFunc(list, func(post core.Post) bool {
		return post.ID == id
	})
}
