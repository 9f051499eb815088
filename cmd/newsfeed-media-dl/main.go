package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/equescalculi/newsfeed-media-dl/internal/config"
	"github.com/equescalculi/newsfeed-media-dl/internal/downloader"
	"github.com/equescalculi/newsfeed-media-dl/internal/fetcher"
	"github.com/equescalculi/newsfeed-media-dl/internal/runner"
)

type options struct {
	Args struct {
		Settings string `positional-arg-name:"SETTINGS" description:"path to the settings file"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	log := newLogger(os.Getenv("LOG_LEVEL"))

	settings, err := config.Load(opts.Args.Settings)
	if err != nil {
		log.Error("invalid settings", "path", opts.Args.Settings, "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f := fetcher.New(http.DefaultClient)
	invoker := downloader.New(downloader.ExecRunner{Dir: settings.Directory})

	r := runner.New(f, invoker, log)
	if err := r.Run(ctx, settings); err != nil {
		log.Error("run aborted", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
