package feedapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"resty.dev/v3"

	"feedsync/pkg/feedapi"
)

type item struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) *feedapi.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := feedapi.NewClient(&feedapi.ClientConfig{
		BaseURL:            srv.URL,
		Token:              "secret",
		RequestMiddlewares: []resty.RequestMiddleware{feedapi.RequestIDMiddleware},
	})
	t.Cleanup(func() { client.Close() }) //nolint:errcheck

	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestClient_Get(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/things", r.URL.Path)
		require.Equal(t, "abc", r.URL.Query().Get("search"))
		require.Equal(t, "secret", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get(feedapi.RequestIDHeader))

		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"items": []item{{ID: "1", Name: "one"}}},
		})
	})

	var out struct {
		Items []item `json:"items"`
	}
	err := client.Get(t.Context(), "/v1/things", url.Values{"search": {"abc"}}, &out)
	require.NoError(t, err)
	require.Equal(t, []item{{ID: "1", Name: "one"}}, out.Items)
}

func TestClient_Post(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "hello", body["text"])

		writeJSON(w, http.StatusCreated, map[string]any{"data": item{ID: "9", Name: body["text"]}})
	})

	var out item
	require.NoError(t, client.Post(t.Context(), "/v1/things", map[string]string{"text": "hello"}, &out))
	require.Equal(t, item{ID: "9", Name: "hello"}, out)
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        any
		kind        feedapi.ErrorKind
		message     string
		recoverable bool
	}{
		{"rejected", http.StatusConflict, map[string]any{"error": map[string]any{"message": "already liked"}}, feedapi.KindRejected, "already liked", true},
		{"top level message", http.StatusBadRequest, map[string]any{"message": "bad caption"}, feedapi.KindRejected, "bad caption", true},
		{"server", http.StatusBadGateway, map[string]any{}, feedapi.KindServer, "Bad Gateway", true},
		{"unauthorized", http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "expired"}}, feedapi.KindUnauthorized, "expired", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			err := client.Delete(t.Context(), "/v1/things/1", nil)

			var apiErr *feedapi.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.kind, apiErr.Kind())
			require.Equal(t, tt.message, apiErr.Message)
			require.Equal(t, tt.recoverable, feedapi.IsRecoverable(err))
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := feedapi.NewClient(&feedapi.ClientConfig{BaseURL: srv.URL})
	defer client.Close() //nolint:errcheck

	err := client.Get(t.Context(), "/v1/things", nil, nil)
	require.Error(t, err)
	require.Equal(t, feedapi.KindTransient, feedapi.KindOf(err))
	require.True(t, feedapi.IsRecoverable(err))
}

func TestClient_Canceled(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{}})
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := client.Get(ctx, "/v1/things", nil, nil)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestParams(t *testing.T) {
	t.Parallel()

	var nilPtr *int
	values := feedapi.Params(map[string]any{
		"userId":    "u1",
		"blank":     "  ",
		"limit":     12,
		"skip":      0,
		"sortOrder": -1,
		"isSaved":   false,
		"tags":      []string{"a", "b"},
		"empty":     []string{},
		"nil":       nil,
		"ptr":       nilPtr,
	})

	require.Equal(t, url.Values{
		"userId":    {"u1"},
		"limit":     {"12"},
		"sortOrder": {"-1"},
		"tags":      {"a", "b"},
	}, values)
}
