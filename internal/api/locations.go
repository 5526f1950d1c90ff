package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samber/lo"
	"resty.dev/v3"

	"feedsync/internal/core"
	"feedsync/pkg/feedapi"
)

const (
	DefaultLocationURL = "https://nominatim.openstreetmap.org"

	locationSearchPath = "/search"
	locationLimit      = 6
)

// Locations resolves free text to coordinates through a Nominatim compatible
// service. It is not part of the feed backend and is called without auth.
type Locations struct {
	client *resty.Client
}

var _ core.LocationAPI = (*Locations)(nil)

func NewLocations(baseURL string, middlewares ...resty.ResponseMiddleware) *Locations {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "feedsync")

	for _, m := range middlewares {
		client.AddResponseMiddleware(m)
	}

	return &Locations{client: client}
}

func (l *Locations) Close() error {
	return l.client.Close()
}

type nominatimItem struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (l *Locations) SearchLocations(ctx context.Context, query string) ([]core.LocationSuggestion, error) {
	var items []nominatimItem

	res, err := l.client.R().
		WithContext(ctx).
		SetQueryParamsFromValues(url.Values{
			"q":              {query},
			"format":         {"jsonv2"},
			"limit":          {strconv.Itoa(locationLimit)},
			"addressdetails": {"0"},
		}).
		SetResult(&items).
		Get(locationSearchPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &feedapi.APIError{Message: err.Error(), Err: err}
	}
	if res.IsError() {
		return nil, &feedapi.APIError{
			Status:  res.StatusCode(),
			Message: "location search failed: " + http.StatusText(res.StatusCode()),
		}
	}

	return lo.Map(items, func(item nominatimItem, _ int) core.LocationSuggestion {
		lat, _ := strconv.ParseFloat(item.Lat, 64)
		lon, _ := strconv.ParseFloat(item.Lon, 64)
		return core.LocationSuggestion{
			DisplayName: item.DisplayName,
			Latitude:    lat,
			Longitude:   lon,
		}
	}), nil
}
