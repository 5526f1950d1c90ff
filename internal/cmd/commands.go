package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"feedsync/internal/app"
	"feedsync/internal/cmd/flags"
	"feedsync/internal/config"
	"feedsync/internal/core"
	"feedsync/internal/views"
	"feedsync/pkg/clicfg"
)

var ErrMissingArgument = errors.New("missing argument")

var userFlag = &cli.StringFlag{
	Name:  "user",
	Usage: "Owner of the profile the post is shown on, defaults to the signed in user",
}

var profileCmd = &cli.Command{
	Name:  "profile",
	Usage: "Show the signed in user's profile",
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		if err := a.Profile.Load(ctx); err != nil {
			return err
		}
		out.Profile(a.Profile.Summary(), a.Profile.Counts())
		return nil
	}),
}

var feedCmd = &cli.Command{
	Name:      "feed",
	Usage:     "Show the post grid of a profile",
	ArgsUsage: "[userId]",
	Flags:     []cli.Flag{flags.Tab},
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		tab, err := views.ParseTab(c.String(flags.Tab.Name))
		if err != nil {
			return err
		}
		if err := showProfile(ctx, a, c.Args().First()); err != nil {
			return err
		}
		if err := a.Page.SwitchTab(ctx, tab); err != nil {
			return err
		}
		out.Posts(a.Page.Grid())
		return nil
	}),
}

var savedCmd = &cli.Command{
	Name:  "saved",
	Usage: "Show the posts saved by the signed in user",
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		if err := showProfile(ctx, a, ""); err != nil {
			return err
		}
		if err := a.Page.SwitchTab(ctx, views.TabSaved); err != nil {
			return err
		}
		out.Posts(a.Page.Grid())
		return nil
	}),
}

var likeCmd = &cli.Command{
	Name:      "like",
	Usage:     "Toggle the like of a post",
	ArgsUsage: "<postId>",
	Flags:     []cli.Flag{userFlag},
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		return togglePost(ctx, c, a, out, func(ctx context.Context, id string) error {
			_, err := a.Posts.ToggleLike(ctx, id).Wait()
			return err
		})
	}),
}

var saveCmd = &cli.Command{
	Name:      "save",
	Usage:     "Toggle the bookmark of a post",
	ArgsUsage: "<postId>",
	Flags:     []cli.Flag{userFlag},
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		return togglePost(ctx, c, a, out, func(ctx context.Context, id string) error {
			_, err := a.Posts.ToggleSave(ctx, id).Wait()
			return err
		})
	}),
}

var commentsCmd = &cli.Command{
	Name:      "comments",
	Usage:     "Show the comment tree of a post",
	ArgsUsage: "<postId>",
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		postID, err := arg(c, 0, "postId")
		if err != nil {
			return err
		}
		if err := a.Comments.LoadForPost(ctx, postID); err != nil {
			return err
		}
		out.Comments(a.Comments.Tree())
		return nil
	}),
}

var commentCmd = &cli.Command{
	Name:      "comment",
	Usage:     "Comment on a post, or reply to one of its comments",
	ArgsUsage: "<postId> <text>",
	Flags:     []cli.Flag{flags.ReplyTo},
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		postID, err := arg(c, 0, "postId")
		if err != nil {
			return err
		}
		text, err := arg(c, 1, "text")
		if err != nil {
			return err
		}

		if err := a.Profile.Load(ctx); err != nil {
			return err
		}
		if err := a.Comments.LoadForPost(ctx, postID); err != nil {
			return err
		}

		_, err = a.Comments.Create(ctx, core.CommentDraft{
			PostID:   postID,
			Content:  text,
			ParentID: c.String(flags.ReplyTo.Name),
		}).Wait()
		if err != nil {
			return err
		}

		out.Comments(a.Comments.Tree())
		return nil
	}),
}

var searchCmd = &cli.Command{
	Name:      "search",
	Usage:     "Search users and remember the query",
	ArgsUsage: "<query>",
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		query, err := arg(c, 0, "query")
		if err != nil {
			return err
		}

		if err := a.Search.LoadRecent(ctx); err != nil {
			a.Logger.Warn("failed to load recent searches", "error", err)
		}

		users, err := a.Search.Users.Submit(ctx, query)
		if err != nil {
			return err
		}
		out.Users(users)

		_, err = a.Search.SaveToRecent(ctx, query).Wait()
		return err
	}),
}

var recentCmd = &cli.Command{
	Name:  "recent",
	Usage: "List recent searches",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "match", Usage: "Only show searches fuzzily matching the text"},
		&cli.StringFlag{Name: "delete", Usage: "Delete the recent search with this id"},
		&cli.StringFlag{Name: "run", Usage: "Run the recent search with this text again"},
	},
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		if err := a.Search.LoadRecent(ctx); err != nil {
			return err
		}

		if id := c.String("delete"); id != "" {
			if _, err := a.Search.DeleteRecent(ctx, id).Wait(); err != nil {
				return err
			}
		}

		if text := c.String("run"); text != "" {
			users, err := a.Search.TriggerRecent(ctx, text)
			if err != nil {
				return err
			}
			out.Users(users)
			return nil
		}

		if match := c.String("match"); match != "" {
			out.Recent(a.Search.RecentMatching(match))
			return nil
		}

		out.Recent(a.Search.Recent().Items)
		return nil
	}),
}

var locationsCmd = &cli.Command{
	Name:      "locations",
	Usage:     "Look up places by name",
	ArgsUsage: "<query>",
	Action: withApp(func(ctx context.Context, c *cli.Command, a *app.App, out printer) error {
		query, err := arg(c, 0, "query")
		if err != nil {
			return err
		}

		list, err := a.Search.Locations.Submit(ctx, query)
		if err != nil {
			return err
		}
		out.Locations(list)
		return nil
	}),
}

type action func(ctx context.Context, c *cli.Command, a *app.App, out printer) error

// withApp runs fn against an initialized App that is shut down afterwards.
func withApp(fn action) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		cfg := config.Config{}
		if err := clicfg.ParseFlags(c, &cfg); err != nil {
			return err
		}

		a := &app.App{Logger: slog.Default(), Config: &cfg}
		if err := a.Init(ctx); err != nil {
			return err
		}
		defer func() {
			if err := a.Shutdown(context.Background()); err != nil {
				a.Logger.Warn("shutdown failed", "error", err)
			}
		}()

		return fn(ctx, c, a, printer{w: os.Stdout, pretty: cfg.Pretty})
	}
}

// showProfile opens the grid of userID, the signed in user when empty.
func showProfile(ctx context.Context, a *app.App, userID string) error {
	if userID == "" {
		if err := a.Profile.Load(ctx); err != nil {
			return err
		}
		userID = a.ViewerID()
	}
	return a.Page.Show(ctx, userID)
}

func togglePost(ctx context.Context, c *cli.Command, a *app.App, out printer, toggle func(context.Context, string) error) error {
	postID, err := arg(c, 0, "postId")
	if err != nil {
		return err
	}
	if err := showProfile(ctx, a, c.String(userFlag.Name)); err != nil {
		return err
	}
	if _, ok := a.Posts.Get(postID); !ok {
		return fmt.Errorf("%w: post %s", core.ErrNotFound, postID)
	}

	if err := toggle(ctx, postID); err != nil {
		return err
	}

	post, _ := a.Posts.Get(postID)
	out.Post(post)
	return nil
}

func arg(c *cli.Command, i int, name string) (string, error) {
	value := c.Args().Get(i)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return value, nil
}
