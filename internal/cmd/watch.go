package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"feedsync/internal/app"
	"feedsync/internal/cmd/flags"
	"feedsync/internal/config"
	"feedsync/internal/core"
	"feedsync/internal/metrics"
	"feedsync/internal/search"
)

const locationPrefix = "@"

var watchCmd = &cli.Command{
	Name:  "watch",
	Usage: "Type-ahead search: every input line feeds the user search, lines starting with @ the location search",
	Flags: []cli.Flag{
		flags.MetricsAddr,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide(&app.App{}),
			pal.Provide(&metrics.HTTPServer{}),
			pal.Provide(&watcher{}),
		)
	},
}

type watcher struct {
	Logger *slog.Logger
	Config *config.Config
	App    *app.App

	in  io.Reader
	out io.Writer
}

func (w *watcher) Init(_ context.Context) error {
	w.Logger = w.Logger.With("component", "watcher")
	w.in = os.Stdin
	w.out = os.Stdout
	return nil
}

func (w *watcher) Run(ctx context.Context) error {
	collector := &metrics.Collector{Logger: w.Logger, Source: w.App}
	if err := collector.Init(ctx); err != nil {
		return err
	}
	go collector.Run(ctx) //nolint:errcheck

	unsubscribeUsers := w.App.Search.Users.Subscribe(func(s search.Snapshot[core.SearchUser]) {
		w.print(s.Phase, snapshotLine("users", s, func(u core.SearchUser) string { return "@" + u.UserName }))
	})
	defer unsubscribeUsers()

	unsubscribeLocations := w.App.Search.Locations.Subscribe(func(s search.Snapshot[core.LocationSuggestion]) {
		w.print(s.Phase, snapshotLine("locations", s, func(l core.LocationSuggestion) string { return l.DisplayName }))
	})
	defer unsubscribeLocations()

	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(w.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	w.Logger.Info("watching input, press Ctrl-C to exit")

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return nil
			}
			if query, found := strings.CutPrefix(line, locationPrefix); found {
				w.App.Search.Locations.Input(ctx, query)
				continue
			}
			w.App.Search.Input(ctx, line)
		}
	}
}

// print skips the pending phase, the previous results are still shown then.
func (w *watcher) print(phase search.Phase, line string) {
	if phase == search.Pending {
		return
	}
	fmt.Fprintln(w.out, line) //nolint:errcheck
}
