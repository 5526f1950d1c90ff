package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"feedsync/internal/api"
	"feedsync/internal/core"
	"feedsync/pkg/feedapi"
)

func newAPI(t *testing.T, routes map[string]http.HandlerFunc) *api.API {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := feedapi.NewClient(&feedapi.ClientConfig{BaseURL: srv.URL})
	t.Cleanup(func() { client.Close() }) //nolint:errcheck

	return api.New(client)
}

func respond(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data}) //nolint:errcheck
}

func TestAPI_ListPosts(t *testing.T) {
	t.Parallel()

	a := newAPI(t, map[string]http.HandlerFunc{
		"GET /v2/post": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, "u1", q.Get("userId"))
			require.Equal(t, "12", q.Get("limit"))
			require.Equal(t, "-1", q.Get("sortOrder"))
			require.False(t, q.Has("skip"))
			require.False(t, q.Has("isSaved"))

			respond(w, map[string]any{
				"items":  []map[string]any{{"_id": "p1", "userId": "u1", "likesCount": 3, "isLiked": true}},
				"isNext": true,
			})
		},
	})

	page, err := a.ListPosts(t.Context(), core.PostQuery{UserID: "u1", Limit: 12, SortKey: "createdAt", SortOrder: -1})
	require.NoError(t, err)
	require.True(t, page.IsNext)
	require.Len(t, page.Items, 1)
	require.Equal(t, core.Toggle{On: true, Count: 3}, page.Items[0].LikeToggle())
}

func TestAPI_TogglePostSave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     map[string]any
		expected *bool
	}{
		{"isSaved", map[string]any{"isSaved": true}, func() *bool { b := true; return &b }()},
		{"saved", map[string]any{"saved": false}, func() *bool { b := false; return &b }()},
		{"missing", map[string]any{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newAPI(t, map[string]http.HandlerFunc{
				"POST /v1/post/save/{id}": func(w http.ResponseWriter, r *http.Request) {
					require.Equal(t, "p1", r.PathValue("id"))
					respond(w, tt.data)
				},
			})

			saved, err := a.TogglePostSave(t.Context(), "p1")
			require.NoError(t, err)
			require.Equal(t, tt.expected, saved)
		})
	}
}

func TestAPI_UpdatePost(t *testing.T) {
	t.Parallel()

	a := newAPI(t, map[string]http.HandlerFunc{
		"PUT /v1/post/{id}": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "p1", r.PathValue("id"))
			respond(w, map[string]any{"_id": "p1", "caption": "edited"})
		},
	})

	caption := "edited"
	echo, err := a.UpdatePost(t.Context(), "p1", core.PostPatch{Caption: &caption})
	require.NoError(t, err)

	merged := core.Post{ID: "p1", Caption: "old", IsLiked: true, LikesCount: 7}.Merge(echo)
	require.Equal(t, "edited", merged.Caption)
	require.Equal(t, core.Toggle{On: true, Count: 7}, merged.LikeToggle())
}

func TestAPI_ListComments(t *testing.T) {
	t.Parallel()

	a := newAPI(t, map[string]http.HandlerFunc{
		"GET /v1/comment": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, "p1", q.Get("postId"))
			require.Equal(t, "1000", q.Get("limit"))

			if q.Get("commentId") == "c1" {
				respond(w, map[string]any{"items": []map[string]any{{"_id": "r1", "postId": "p1", "commentId": "c1"}}})
				return
			}
			respond(w, map[string]any{"items": []map[string]any{{"_id": "c1", "postId": "p1"}}})
		},
	})

	roots, err := a.ListComments(t.Context(), "p1", "")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.True(t, roots[0].IsRoot())

	replies, err := a.ListComments(t.Context(), "p1", "c1")
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, "c1", replies[0].ParentID)
}

func TestAPI_Searches(t *testing.T) {
	t.Parallel()

	a := newAPI(t, map[string]http.HandlerFunc{
		"GET /v1/search": func(w http.ResponseWriter, _ *http.Request) {
			respond(w, map[string]any{"searches": []map[string]any{{"_id": "s1", "text": "alice"}}})
		},
		"POST /v1/search": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			respond(w, map[string]any{"data": map[string]any{"_id": "s2", "text": body["text"]}})
		},
	})

	recent, err := a.RecentSearches(t.Context())
	require.NoError(t, err)
	require.Equal(t, "alice", recent[0].Text)

	saved, err := a.SaveSearch(t.Context(), "bob")
	require.NoError(t, err)
	require.Equal(t, core.RecentSearch{ID: "s2", Text: "bob"}, saved)
}

func TestAPI_UserCounts(t *testing.T) {
	t.Parallel()

	a := newAPI(t, map[string]http.HandlerFunc{
		"GET /v1/user": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("_id") == "u1" {
				respond(w, map[string]any{"items": []map[string]any{{"followerCount": 5, "followingCount": 2, "postsCount": 7}}})
				return
			}
			respond(w, map[string]any{"items": []any{}})
		},
	})

	counts, err := a.UserCounts(t.Context(), "u1")
	require.NoError(t, err)
	require.Equal(t, core.ProfileCounts{Followers: 5, Following: 2, Posts: 7}, counts)

	counts, err = a.UserCounts(t.Context(), "nobody")
	require.NoError(t, err)
	require.Zero(t, counts)
}

func TestLocations_SearchLocations(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "berlin", r.URL.Query().Get("q"))
		require.Equal(t, "6", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"display_name":"Berlin, Germany","lat":"52.52","lon":"13.40"}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	locations := api.NewLocations(srv.URL)
	defer locations.Close() //nolint:errcheck

	res, err := locations.SearchLocations(t.Context(), "berlin")
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "Berlin, Germany", res[0].DisplayName)
	require.InDelta(t, 52.52, res[0].Latitude, 1e-9)
	require.InDelta(t, 13.40, res[0].Longitude, 1e-9)
}
