// Package feedapi is a thin JSON gateway to the feed backend. Every response
// is wrapped in a {"data": ...} envelope, failures in {"error": {"message"}}.
package feedapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"resty.dev/v3"
)

const authorizationHeader = "Authorization"

type Client struct {
	client *resty.Client
}

func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = DefaultConfig
	}

	settings := cfg.TransportSettings
	if settings == nil {
		settings = DefaultConfig.TransportSettings
	}

	client := resty.NewWithTransportSettings(settings).
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")

	if cfg.Token != "" {
		client.SetHeader(authorizationHeader, cfg.Token)
	}

	for _, m := range cfg.RequestMiddlewares {
		client.AddRequestMiddleware(m)
	}
	for _, m := range cfg.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	return &Client{
		client: client,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetToken replaces the session token sent with every request. The backend
// expects the bare token, without an auth scheme.
func (c *Client) SetToken(token string) {
	c.client.SetHeader(authorizationHeader, token)
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request and decodes the data envelope into out, which may be
// nil when the caller does not need the payload.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	req := c.r(ctx).
		SetResult(&envelope{}).
		SetError(&errorEnvelope{})

	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &APIError{Message: err.Error(), Err: err}
	}

	if res.IsError() {
		return newAPIError(res.StatusCode(), res.Error(), res.String())
	}

	if out == nil {
		return nil
	}

	env, ok := res.Result().(*envelope)
	if !ok || len(env.Data) == 0 {
		return &APIError{Status: res.StatusCode(), Message: "empty response", Err: ErrMalformedResponse}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Status: res.StatusCode(), Message: "malformed response", Err: errors.Join(ErrMalformedResponse, err)}
	}

	return nil
}
