package api

import (
	"context"

	"feedsync/internal/core"
)

func (a *API) RecentSearches(ctx context.Context) ([]core.RecentSearch, error) {
	var res struct {
		Searches []core.RecentSearch `json:"searches"`
	}
	err := a.Gateway.Get(ctx, searchPath, nil, &res)
	return res.Searches, err
}

// SaveSearch stores text as a recent search. The backend double-wraps the
// created item: {"data": {"data": item}}.
func (a *API) SaveSearch(ctx context.Context, text string) (core.RecentSearch, error) {
	var res struct {
		Data core.RecentSearch `json:"data"`
	}
	err := a.Gateway.Post(ctx, searchPath, map[string]string{"text": text}, &res)
	return res.Data, err
}

func (a *API) DeleteSearch(ctx context.Context, id string) error {
	return a.Gateway.Delete(ctx, itemPath(searchPath, id), nil)
}
