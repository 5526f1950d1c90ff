package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"feedsync/internal/comments"
	"feedsync/internal/core"
	"feedsync/internal/search"
)

func TestPrinter(t *testing.T) {
	t.Parallel()

	t.Run("posts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printer{w: &buf}.Posts([]core.Post{{
			ID:         "p1",
			UserName:   "alice",
			Caption:    "first\npost",
			LikesCount: 3,
		}})

		require.Contains(t, buf.String(), "p1")
		require.Contains(t, buf.String(), "@alice")
		require.Contains(t, buf.String(), "first post")
	})

	t.Run("comment tree", func(t *testing.T) {
		t.Parallel()

		tree := comments.BuildTree([]core.Comment{
			{ID: "c1", Content: "root"},
			{ID: "c2", Content: "reply", ParentID: "c1"},
		})

		var buf bytes.Buffer
		printer{w: &buf}.Comments(tree)

		out := buf.String()
		require.Less(t, bytes.Index(buf.Bytes(), []byte("c1")), bytes.Index(buf.Bytes(), []byte("c2")))
		require.Contains(t, out, "↳ reply")
	})

	t.Run("pretty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printer{w: &buf, pretty: true}.Recent([]core.RecentSearch{{ID: "r1", Text: "bern"}})

		require.Contains(t, buf.String(), "bern")
		require.NotContains(t, buf.String(), "SEARCHED")
	})
}

func TestSnapshotLine(t *testing.T) {
	t.Parallel()

	line := snapshotLine("users", search.Snapshot[core.SearchUser]{
		Query:   "al",
		Results: []core.SearchUser{{UserName: "alice"}, {UserName: "alan"}},
	}, func(u core.SearchUser) string { return u.UserName })

	require.Contains(t, line, `"al"`)
	require.Contains(t, line, "alice, alan")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
