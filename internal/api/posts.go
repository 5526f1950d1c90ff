package api

import (
	"context"

	"feedsync/internal/core"
	"feedsync/pkg/feedapi"
)

func (a *API) ListPosts(ctx context.Context, query core.PostQuery) (core.Page[core.Post], error) {
	var page core.Page[core.Post]

	err := a.Gateway.Get(ctx, postsPath, feedapi.Params(map[string]any{
		"userId":    query.UserID,
		"isSaved":   query.IsSaved,
		"limit":     query.Limit,
		"skip":      query.Skip,
		"sortKey":   query.SortKey,
		"sortOrder": query.SortOrder,
		"postType":  query.PostType,
	}), &page)

	return page, err
}

func (a *API) CreatePost(ctx context.Context, req core.CreatePostRequest) (core.Post, error) {
	var post core.Post
	err := a.Gateway.Post(ctx, postPath, req, &post)
	return post, err
}

func (a *API) UpdatePost(ctx context.Context, id string, patch core.PostPatch) (core.Echo[core.Post], error) {
	var echo core.Echo[core.Post]
	err := a.Gateway.Put(ctx, itemPath(postPath, id), patch, &echo)
	return echo, err
}

func (a *API) DeletePost(ctx context.Context, id string) error {
	return a.Gateway.Delete(ctx, itemPath(postPath, id), nil)
}

func (a *API) TogglePostLike(ctx context.Context, id string) (bool, error) {
	var res struct {
		Liked bool `json:"liked"`
	}
	err := a.Gateway.Post(ctx, itemPath(postLikePath, id), struct{}{}, &res)
	return res.Liked, err
}

func (a *API) TogglePostSave(ctx context.Context, id string) (*bool, error) {
	var res struct {
		IsSaved *bool `json:"isSaved"`
		Saved   *bool `json:"saved"`
	}
	if err := a.Gateway.Post(ctx, itemPath(postSavePath, id), struct{}{}, &res); err != nil {
		return nil, err
	}
	if res.IsSaved != nil {
		return res.IsSaved, nil
	}
	return res.Saved, nil
}

func (a *API) MarkPostViewed(ctx context.Context, id string) error {
	return a.Gateway.Post(ctx, itemPath(postViewPath, id), struct{}{}, nil)
}
