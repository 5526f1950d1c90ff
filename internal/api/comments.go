package api

import (
	"context"

	"feedsync/internal/core"
	"feedsync/pkg/feedapi"
)

func (a *API) ListComments(ctx context.Context, postID, parentID string) ([]core.Comment, error) {
	var res struct {
		Items []core.Comment `json:"items"`
	}

	err := a.Gateway.Get(ctx, commentPath, feedapi.Params(map[string]any{
		"postId":    postID,
		"commentId": parentID,
		"limit":     commentPageSize,
	}), &res)

	return res.Items, err
}

func (a *API) CreateComment(ctx context.Context, draft core.CommentDraft) (core.Comment, error) {
	var comment core.Comment
	err := a.Gateway.Post(ctx, commentPath, draft, &comment)
	return comment, err
}

func (a *API) UpdateComment(ctx context.Context, id string, patch core.CommentPatch) (core.Echo[core.Comment], error) {
	var echo core.Echo[core.Comment]
	err := a.Gateway.Put(ctx, itemPath(commentPath, id), patch, &echo)
	return echo, err
}

func (a *API) DeleteComment(ctx context.Context, id string) error {
	return a.Gateway.Delete(ctx, itemPath(commentPath, id), nil)
}

func (a *API) ToggleCommentLike(ctx context.Context, id string) (bool, error) {
	var res struct {
		Liked bool `json:"liked"`
	}
	err := a.Gateway.Post(ctx, itemPath(commentLikePath, id), struct{}{}, &res)
	return res.Liked, err
}
