package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"feedsync/internal/cmd/flags"
	"feedsync/internal/config"
	"feedsync/pkg/clicfg"
	"feedsync/pkg/feedapi"
)

const VERSION = "0.1.0"

var cmd = &cli.Command{
	Name:    "feedsync",
	Usage:   "feedsync is a command line client for a social feed",
	Version: VERSION,
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := initLogger(c.String("log-level")); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	Flags: []cli.Flag{
		flags.APIURL,
		flags.Token,
		flags.LocationURL,
		flags.LogLevel,
		flags.Pretty,
		flags.Cache,
		flags.CachePath,
		flags.NATSURL,
		flags.NATSBucket,
		flags.SearchDebounce,
		flags.LocationDebounce,
		flags.PageSize,
	},
	Commands: []*cli.Command{
		profileCmd,
		feedCmd,
		savedCmd,
		likeCmd,
		saveCmd,
		commentsCmd,
		commentCmd,
		searchCmd,
		recentCmd,
		locationsCmd,
		watchCmd,
	},
}

func Run() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		if !feedapi.IsRecoverable(err) {
			fmt.Println("the session token was rejected, pass a fresh one with --token")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.Command, services ...pal.ServiceDef) error {
	cfg := config.Config{}
	if err := clicfg.ParseFlags(c, &cfg); err != nil {
		return err
	}
	services = append(services, pal.Provide(&cfg))

	return pal.New(services...).
		InjectSlog().
		InitTimeout(5*time.Second).
		HealthCheckTimeout(1*time.Second).
		ShutdownTimeout(10*time.Second).
		Run(ctx, syscall.SIGINT, syscall.SIGTERM)
}
