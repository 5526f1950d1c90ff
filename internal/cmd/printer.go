package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/olekukonko/tablewriter"

	"feedsync/internal/comments"
	"feedsync/internal/core"
	"feedsync/internal/search"
)

var (
	likedMark = color.New(color.FgHiRed, color.Bold).Sprint("♥")
	savedMark = color.New(color.FgHiYellow).Sprint("★")
	dimmed    = color.New(color.Faint)
	errColor  = color.New(color.FgRed)
)

// printer renders entities as tables, or dumps them raw with pp when pretty
// is set.
type printer struct {
	w      io.Writer
	pretty bool
}

func (p printer) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(p.w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func (p printer) dump(v any) bool {
	if !p.pretty {
		return false
	}
	pp.Fprintln(p.w, v) //nolint:errcheck
	return true
}

func (p printer) Posts(list []core.Post) {
	if p.dump(list) {
		return
	}

	rows := make([][]string, 0, len(list))
	for _, post := range list {
		rows = append(rows, []string{
			post.ID,
			"@" + post.Author().UserName,
			truncate(post.Caption, 40),
			mark(post.IsLiked, likedMark) + " " + strconv.Itoa(post.LikesCount),
			strconv.Itoa(post.CommentsCount),
			strconv.Itoa(post.ViewCount),
			mark(post.IsSaved, savedMark),
		})
	}
	p.table([]string{"ID", "Author", "Caption", "Likes", "Comments", "Views", "Saved"}, rows)
}

func (p printer) Post(post core.Post) {
	p.Posts([]core.Post{post})
}

func (p printer) Comments(tree comments.Tree) {
	if p.dump(tree) {
		return
	}

	row := func(c core.Comment, indent string) []string {
		author := c.UserID
		if c.User != nil {
			author = "@" + c.User.UserName
		}
		return []string{
			c.ID,
			author,
			indent + truncate(c.Content, 60),
			mark(c.IsLiked, likedMark) + " " + strconv.Itoa(c.LikesCount),
		}
	}

	var rows [][]string
	for _, root := range tree.Roots {
		rows = append(rows, row(root, ""))
		for _, reply := range tree.RepliesOf(root.ID) {
			rows = append(rows, row(reply, "  ↳ "))
		}
	}
	for _, orphan := range tree.Orphans {
		rows = append(rows, row(orphan, dimmed.Sprint("  ? ")))
	}

	p.table([]string{"ID", "Author", "Content", "Likes"}, rows)
}

func (p printer) Users(users []core.SearchUser) {
	if p.dump(users) {
		return
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		var relation []string
		if u.IsFollowing {
			relation = append(relation, "following")
		}
		if u.IsFollower {
			relation = append(relation, "follows you")
		}
		rows = append(rows, []string{u.ID, "@" + u.UserName, u.Name, strings.Join(relation, ", ")})
	}
	p.table([]string{"ID", "Username", "Name", "Relation"}, rows)
}

func (p printer) Recent(items []core.RecentSearch) {
	if p.dump(items) {
		return
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.ID, item.Text, item.SearchAt.Format("2006-01-02 15:04")})
	}
	p.table([]string{"ID", "Text", "Searched"}, rows)
}

func (p printer) Locations(list []core.LocationSuggestion) {
	if p.dump(list) {
		return
	}

	rows := make([][]string, 0, len(list))
	for _, l := range list {
		rows = append(rows, []string{
			truncate(l.DisplayName, 60),
			strconv.FormatFloat(l.Latitude, 'f', 5, 64),
			strconv.FormatFloat(l.Longitude, 'f', 5, 64),
		})
	}
	p.table([]string{"Place", "Lat", "Lon"}, rows)
}

func (p printer) Profile(profile core.Profile, counts core.ProfileCounts) {
	if p.dump(map[string]any{"profile": profile, "counts": counts}) {
		return
	}

	p.table([]string{"Username", "Name", "Posts", "Followers", "Following", "Private"}, [][]string{{
		"@" + profile.UserName,
		profile.Name,
		strconv.Itoa(counts.Posts),
		strconv.Itoa(counts.Followers),
		strconv.Itoa(counts.Following),
		strconv.FormatBool(profile.PrivateAccount),
	}})
	if profile.Description != "" {
		fmt.Fprintln(p.w, profile.Description) //nolint:errcheck
	}
}

// snapshotLine formats one state of a search stream.
func snapshotLine[T any](name string, s search.Snapshot[T], label func(T) string) string {
	if s.Err != nil {
		return errColor.Sprintf("[%s] %q failed: %v", name, s.Query, s.Err)
	}

	labels := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		labels = append(labels, label(r))
	}
	return fmt.Sprintf("[%s] %q %s: %s", name, s.Query, dimmed.Sprint(s.Phase), strings.Join(labels, ", "))
}

func mark(on bool, symbol string) string {
	if on {
		return symbol
	}
	return " "
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
