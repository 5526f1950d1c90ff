package core_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"feedsync/internal/core"
)

func TestToggle(t *testing.T) {
	t.Parallel()

	t.Run("flip", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, core.Toggle{On: true, Count: 11}, core.Toggle{On: false, Count: 10}.Flip())
		require.Equal(t, core.Toggle{On: false, Count: 9}, core.Toggle{On: true, Count: 10}.Flip())
		require.Equal(t, core.Toggle{On: false, Count: 0}, core.Toggle{On: true, Count: 0}.Flip())
	})

	t.Run("double flip is identity", func(t *testing.T) {
		t.Parallel()

		start := core.Toggle{On: false, Count: 10}
		require.Equal(t, start, start.Flip().Flip())
	})

	t.Run("settle", func(t *testing.T) {
		t.Parallel()

		optimistic := core.Toggle{On: true, Count: 11}
		require.Equal(t, optimistic, optimistic.Settle(true))
		require.Equal(t, core.Toggle{On: false, Count: 10}, optimistic.Settle(false))
	})
}

func TestPost_ApplyPatch(t *testing.T) {
	t.Parallel()

	post := core.Post{ID: "p1", Caption: "old", HideLikes: false, Hashtags: []string{"a"}}

	patched := post.ApplyPatch(core.PostPatch{
		Caption:   lo.ToPtr("new"),
		HideLikes: lo.ToPtr(true),
		Latitude:  lo.ToPtr(52.5),
		Longitude: lo.ToPtr(13.4),
	})

	require.Equal(t, "new", patched.Caption)
	require.True(t, patched.HideLikes)
	require.Equal(t, []string{"a"}, patched.Hashtags)

	lat, lon, ok := patched.Coordinates()
	require.True(t, ok)
	require.InDelta(t, 52.5, lat, 1e-9)
	require.InDelta(t, 13.4, lon, 1e-9)

	require.Equal(t, "old", post.Caption)
}

func TestPost_Merge(t *testing.T) {
	t.Parallel()

	local := core.Post{
		ID:         "p1",
		UserID:     "u1",
		User:       &core.Author{ID: "u1", UserName: "alice"},
		Media:      []core.Media{{URL: "a.jpg", Kind: core.MediaImage}},
		IsLiked:    true,
		LikesCount: 9,
		ViewCount:  2,
	}

	echo, err := core.EchoOf[core.Post](map[string]any{"_id": "p1", "caption": "server", "likesCount": 3, "media": []any{}})
	require.NoError(t, err)

	merged := local.Merge(echo)

	require.Equal(t, "server", merged.Caption)
	require.Equal(t, 3, merged.LikesCount)
	require.True(t, merged.IsLiked)
	require.Equal(t, 2, merged.ViewCount)
	require.Equal(t, "alice", merged.Author().UserName)
	require.Equal(t, local.Media, merged.Media)
}

func TestComment_Complete(t *testing.T) {
	t.Parallel()

	local := core.Comment{ID: "tmp", PostID: "p1", ParentID: "c1", User: &core.Author{UserName: "bob"}}
	merged := local.Complete(core.Comment{ID: "c9", Content: "hi"})

	require.Equal(t, "c9", merged.ID)
	require.Equal(t, "p1", merged.PostID)
	require.Equal(t, "c1", merged.ParentID)
	require.Equal(t, "bob", merged.User.UserName)
	require.False(t, merged.IsRoot())
}

func TestEcho(t *testing.T) {
	t.Parallel()

	t.Run("only sent fields change", func(t *testing.T) {
		t.Parallel()

		local := core.Comment{ID: "c1", Content: "old", IsLiked: true, LikesCount: 4}

		var echo core.Echo[core.Comment]
		require.NoError(t, echo.UnmarshalJSON([]byte(`{"_id":"c1","content":"new"}`)))

		merged := echo.Over(local)
		require.Equal(t, "new", merged.Content)
		require.True(t, merged.IsLiked)
		require.Equal(t, 4, merged.LikesCount)
	})

	t.Run("local nested values are not written to", func(t *testing.T) {
		t.Parallel()

		local := core.Post{ID: "p1", User: &core.Author{UserName: "alice"}, Hashtags: []string{"a", "b"}}

		var echo core.Echo[core.Post]
		require.NoError(t, echo.UnmarshalJSON([]byte(`{"user":{"userName":"bob"},"hashtags":["z"]}`)))

		merged := echo.Over(local)
		require.Equal(t, "bob", merged.User.UserName)
		require.Equal(t, []string{"z"}, merged.Hashtags)
		require.Equal(t, "alice", local.User.UserName)
		require.Equal(t, []string{"a", "b"}, local.Hashtags)
	})

	t.Run("empty echo keeps local", func(t *testing.T) {
		t.Parallel()

		local := core.Profile{ID: "me", Name: "Alice"}
		require.Equal(t, local, core.Echo[core.Profile]{}.Over(local))
		require.Equal(t, local, local.Merge(core.Echo[core.Profile]{}))
	})

	t.Run("malformed payload is rejected", func(t *testing.T) {
		t.Parallel()

		var echo core.Echo[core.Post]
		require.Error(t, echo.UnmarshalJSON([]byte(`{"likesCount":"many"}`)))
	})
}

func TestProfile_Apply(t *testing.T) {
	t.Parallel()

	p := core.Profile{ID: "u1", Name: "Alice", Link: "a.example"}
	updated := p.Apply(core.ProfileUpdate{Name: lo.ToPtr("Alicia"), PrivateAccount: lo.ToPtr(true)})

	require.Equal(t, "Alicia", updated.Name)
	require.Equal(t, "a.example", updated.Link)
	require.True(t, updated.PrivateAccount)
}
