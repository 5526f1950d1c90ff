package api

import (
	"context"
	"net/url"

	"feedsync/internal/core"
)

func (a *API) SearchUsers(ctx context.Context, query string) ([]core.SearchUser, error) {
	var res struct {
		Items []core.SearchUser `json:"items"`
	}
	err := a.Gateway.Get(ctx, usersPath, url.Values{"search": {query}}, &res)
	return res.Items, err
}

func (a *API) CurrentUser(ctx context.Context) (core.Profile, error) {
	var profile core.Profile
	err := a.Gateway.Get(ctx, userDetailsPath, nil, &profile)
	return profile, err
}

// UserCounts reads the derived counters from the user listing; a user the
// server does not return has zero counts.
func (a *API) UserCounts(ctx context.Context, userID string) (core.ProfileCounts, error) {
	var res struct {
		Items []core.ProfileCounts `json:"items"`
	}
	if err := a.Gateway.Get(ctx, usersPath, url.Values{"_id": {userID}}, &res); err != nil {
		return core.ProfileCounts{}, err
	}
	if len(res.Items) == 0 {
		return core.ProfileCounts{}, nil
	}
	return res.Items[0], nil
}

func (a *API) UpdateProfile(ctx context.Context, update core.ProfileUpdate) (core.Echo[core.Profile], error) {
	var echo core.Echo[core.Profile]
	err := a.Gateway.Put(ctx, userUpdatePath, update, &echo)
	return echo, err
}
