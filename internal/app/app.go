// Package app wires the gateway, the cache and the stores of one session.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"resty.dev/v3"

	"feedsync/internal/api"
	"feedsync/internal/cache"
	"feedsync/internal/comments"
	"feedsync/internal/config"
	"feedsync/internal/core"
	"feedsync/internal/metrics"
	"feedsync/internal/posts"
	"feedsync/internal/profile"
	"feedsync/internal/search"
	"feedsync/internal/session"
	"feedsync/internal/views"
	"feedsync/pkg/feedapi"
)

type App struct {
	Logger *slog.Logger
	Config *config.Config

	Client    *feedapi.Client
	Locations *api.Locations
	API       *api.API
	Session   *session.Session
	Cache     core.KeyValue

	Profile  *profile.Store
	Posts    *posts.Store
	Comments *comments.Store
	Search   *search.Store
	Page     *views.ProfilePage
}

func (a *App) Init(ctx context.Context) error {
	a.Logger = a.Logger.With("component", "app.App")

	if a.Config.Token != "" {
		s, err := session.New(a.Config.Token)
		if err != nil {
			return err
		}
		a.Session = s
	}

	kv, err := OpenCache(ctx, a.Config)
	if err != nil {
		return err
	}
	a.Cache = kv

	a.Client = feedapi.NewClient(&feedapi.ClientConfig{
		BaseURL:             a.Config.APIURL,
		Token:               a.token(),
		TransportSettings:   feedapi.DefaultConfig.TransportSettings,
		RequestMiddlewares:  []resty.RequestMiddleware{feedapi.RequestIDMiddleware},
		ResponseMiddlewares: []resty.ResponseMiddleware{metrics.APIMiddleware},
	})
	a.API = api.New(a.Client)

	locationURL := a.Config.LocationURL
	if locationURL == "" {
		locationURL = api.DefaultLocationURL
	}
	a.Locations = api.NewLocations(locationURL, metrics.APIMiddleware)

	a.Profile = profile.NewStore(a.API, a.Logger)

	a.Posts = posts.NewStore(a.API, core.ViewerFunc(a.ViewerID), a.Logger)
	if a.Config.PageSize > 0 {
		a.Posts.PageSize = a.Config.PageSize
	}

	a.Comments = comments.NewStore(a.API, a.Logger)
	a.Comments.Author = a.Profile.Author
	a.Comments.CountHook = a.Posts.AdjustCommentCount

	a.Search = search.NewStore(a.API, a.API, a.Locations,
		cache.NewRecent(a.Cache, a.ViewerID(), a.Logger),
		search.Config{
			UserDebounce:     a.Config.SearchDebounce,
			LocationDebounce: a.Config.LocationDebounce,
		},
		a.Logger,
	)

	a.Page = views.NewProfilePage(a.Posts, a.Comments)

	a.Logger.Debug("initialized", "api_url", a.Config.APIURL, "cache", a.Config.CacheBackend, "viewer", a.ViewerID())

	return nil
}

func (a *App) HealthCheck(ctx context.Context) error {
	if checker, ok := a.Cache.(interface{ HealthCheck(context.Context) error }); ok {
		return checker.HealthCheck(ctx)
	}
	return nil
}

func (a *App) Shutdown(context.Context) error {
	if a.Search != nil {
		a.Search.Close()
	}

	var errs []error
	if a.Client != nil {
		errs = append(errs, a.Client.Close())
	}
	if a.Locations != nil {
		errs = append(errs, a.Locations.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	return errors.Join(errs...)
}

// ViewerID is the signed in user: taken from the session token, or from the
// loaded profile when the token does not carry it.
func (a *App) ViewerID() string {
	if id := a.Session.ViewerID(); id != "" {
		return id
	}
	if a.Profile == nil {
		return ""
	}
	return a.Profile.ViewerID()
}

// Sizes reports the entity counts of all stores.
func (a *App) Sizes() map[string]int {
	sizes := map[string]int{}
	maps.Copy(sizes, a.Posts.Sizes())
	maps.Copy(sizes, a.Comments.Sizes())
	maps.Copy(sizes, a.Search.Sizes())
	return sizes
}

func (a *App) token() string {
	if a.Session == nil {
		return ""
	}
	return a.Session.Token
}

// OpenCache opens the key-value backend selected by cfg.
func OpenCache(ctx context.Context, cfg *config.Config) (core.KeyValue, error) {
	switch cfg.CacheBackend {
	case "", config.CacheMemory:
		return cache.NewMemory(), nil
	case config.CacheSQLite:
		kv, err := cache.OpenSQLite(ctx, cfg.CachePath)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.CacheNATS:
		kv, err := cache.OpenNATS(ctx, cfg.NATSURL, cfg.NATSBucket)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
