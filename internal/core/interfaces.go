package core

import (
	"context"
)

type PostAPI interface {
	ListPosts(ctx context.Context, query PostQuery) (Page[Post], error)
	CreatePost(ctx context.Context, req CreatePostRequest) (Post, error)
	UpdatePost(ctx context.Context, id string, patch PostPatch) (Echo[Post], error)
	DeletePost(ctx context.Context, id string) error
	// TogglePostLike returns the liked state the server ended up with.
	TogglePostLike(ctx context.Context, id string) (bool, error)
	// TogglePostSave returns the saved state, nil when the server omits it.
	TogglePostSave(ctx context.Context, id string) (*bool, error)
	MarkPostViewed(ctx context.Context, id string) error
}

type CommentAPI interface {
	// ListComments lists root comments, or the replies of parentID.
	ListComments(ctx context.Context, postID, parentID string) ([]Comment, error)
	CreateComment(ctx context.Context, draft CommentDraft) (Comment, error)
	UpdateComment(ctx context.Context, id string, patch CommentPatch) (Echo[Comment], error)
	DeleteComment(ctx context.Context, id string) error
	ToggleCommentLike(ctx context.Context, id string) (bool, error)
}

type UserAPI interface {
	SearchUsers(ctx context.Context, query string) ([]SearchUser, error)
	CurrentUser(ctx context.Context) (Profile, error)
	UserCounts(ctx context.Context, userID string) (ProfileCounts, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (Echo[Profile], error)
}

type SearchAPI interface {
	RecentSearches(ctx context.Context) ([]RecentSearch, error)
	SaveSearch(ctx context.Context, text string) (RecentSearch, error)
	DeleteSearch(ctx context.Context, id string) error
}

type LocationAPI interface {
	SearchLocations(ctx context.Context, query string) ([]LocationSuggestion, error)
}

// KeyValue is a small persistence capability. Get returns ErrKeyNotFound for
// missing keys.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Viewer identifies the signed in user. An empty id means anonymous.
type Viewer interface {
	ViewerID() string
}

type ViewerFunc func() string

func (f ViewerFunc) ViewerID() string {
	return f()
}
