package app_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"feedsync/internal/app"
	"feedsync/internal/config"
	"feedsync/internal/core"
)

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func backend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/user/details", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]any{"data": map[string]any{"_id": "me", "userName": "me"}})
	})
	mux.HandleFunc("GET /v1/user", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]any{"data": map[string]any{"items": []any{map[string]any{"postsCount": 1}}}})
	})
	mux.HandleFunc("GET /v2/post", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]any{"data": map[string]any{
			"items":  []any{map[string]any{"_id": "p1", "userId": "me", "likesCount": 10}},
			"isNext": false,
		}})
	})
	mux.HandleFunc("GET /v1/comment", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]any{"data": map[string]any{"items": []any{}}})
	})
	mux.HandleFunc("POST /v1/comment", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusCreated, map[string]any{"data": map[string]any{"_id": "c1", "postId": "p1", "content": "hi"}})
	})
	mux.HandleFunc("POST /v1/post/like/{id}", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "boom"}})
	})
	mux.HandleFunc("POST /v1/post/save/{id}", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]any{"data": map[string]any{"isSaved": true}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func token(t *testing.T) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "me"}).SignedString([]byte("k"))
	require.NoError(t, err)
	return signed
}

func newApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()

	a := &app.App{Logger: slog.Default(), Config: cfg}
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestApp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := backend(t)

	a := newApp(t, &config.Config{
		APIURL:       srv.URL,
		Token:        token(t),
		CacheBackend: config.CacheSQLite,
		CachePath:    filepath.Join(t.TempDir(), "cache.db"),
	})

	require.Equal(t, "me", a.ViewerID())
	require.NoError(t, a.Profile.Load(ctx))
	require.Equal(t, 1, a.Profile.Counts().Posts)

	require.NoError(t, a.Page.Show(ctx, "me"))
	require.NoError(t, a.Page.Open(ctx, "p1"))

	t.Run("failed like is reverted", func(t *testing.T) {
		_, err := a.Posts.ToggleLike(ctx, "p1").Wait()
		require.Error(t, err)

		post, _ := a.Posts.Get("p1")
		require.False(t, post.IsLiked)
		require.Equal(t, 10, post.LikesCount)
	})

	t.Run("own unsaved post cannot be saved", func(t *testing.T) {
		_, err := a.Posts.ToggleSave(ctx, "p1").Wait()
		require.ErrorIs(t, err, core.ErrBlocked)
	})

	t.Run("comment bumps the post counter", func(t *testing.T) {
		created, err := a.Comments.Create(ctx, core.CommentDraft{PostID: "p1", Content: "hi"}).Wait()
		require.NoError(t, err)
		require.Equal(t, "c1", created.ID)
		require.Equal(t, "me", a.Comments.Comments()[0].User.UserName)

		post, _ := a.Posts.Get("p1")
		require.Equal(t, 1, post.CommentsCount)
	})

	require.Equal(t, 1, a.Sizes()["posts"])
}

func TestOpenCache(t *testing.T) {
	t.Parallel()

	kv, err := app.OpenCache(context.Background(), &config.Config{})
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	_, err = app.OpenCache(context.Background(), &config.Config{CacheBackend: "redis"})
	require.Error(t, err)
}
