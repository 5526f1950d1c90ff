// Package api maps the feed backend's REST endpoints onto the store-facing
// interfaces of package core.
package api

import (
	"context"
	"net/url"

	"feedsync/internal/core"
)

const (
	postsPath    = "/v2/post"
	postPath     = "/v1/post"
	postLikePath = "/v1/post/like"
	postSavePath = "/v1/post/save"
	postViewPath = "/v1/post/view"

	commentPath     = "/v1/comment"
	commentLikePath = "/v1/comment/like"

	userDetailsPath = "/v1/user/details"
	usersPath       = "/v1/user"
	userUpdatePath  = "/v1/user/register"

	searchPath = "/v1/search"

	// commentPageSize matches what the web client requests: comments are
	// loaded in full for the open post.
	commentPageSize = 1000
)

// Gateway is the transport the API is built on, see feedapi.Client.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Put(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type API struct {
	Gateway Gateway
}

var (
	_ core.PostAPI    = (*API)(nil)
	_ core.CommentAPI = (*API)(nil)
	_ core.UserAPI    = (*API)(nil)
	_ core.SearchAPI  = (*API)(nil)
)

func New(gateway Gateway) *API {
	return &API{Gateway: gateway}
}

func itemPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
