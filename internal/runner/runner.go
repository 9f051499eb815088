// Package runner orchestrates one scan pass over the configured feeds.
package runner

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/equescalculi/newsfeed-media-dl/internal/config"
	"github.com/equescalculi/newsfeed-media-dl/internal/filter"
	"github.com/equescalculi/newsfeed-media-dl/internal/history"
	"github.com/equescalculi/newsfeed-media-dl/internal/watermark"
)

// FeedSource is the interface for retrieving and parsing a feed.
type FeedSource interface {
	Fetch(ctx context.Context, url string) (*gofeed.Feed, error)
}

// Invoker is the interface for dispatching a link to a downloader program.
type Invoker interface {
	Download(ctx context.Context, name, url string) error
}

// History is the interface for the download log.
type History interface {
	Record(ctx context.Context, feedURL, link, downloaderName string, dlErr error) error
	Succeeded(ctx context.Context, link string) (bool, error)
	Close() error
}

// Runner performs a single pass: for each feed, extract links newer than the
// cutoff with a matching title, dispatch them sequentially, and checkpoint
// the feed's watermark.
type Runner struct {
	source  FeedSource
	invoker Invoker
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Runner.
func New(source FeedSource, invoker Invoker, log *slog.Logger) *Runner {
	return &Runner{
		source:  source,
		invoker: invoker,
		log:     log,
		now:     time.Now,
	}
}

// SetNow overrides the clock used for the max-age window (useful for testing).
func (r *Runner) SetNow(now func() time.Time) {
	r.now = now
}

// Run processes all feeds in settings order. Feed-level failures (fetch
// errors, empty feeds, entries without timestamps) are logged and skipped
// without touching that feed's watermark; only watermark persistence
// failures and context cancellation abort the pass.
func (r *Runner) Run(ctx context.Context, settings *config.Settings) error {
	globalStart := r.startTime(settings.MaxAge)

	marks := watermark.Load(settings.Directory, r.log)
	hist := r.openHistory(ctx, settings.Directory)
	if hist != nil {
		defer func() { _ = hist.Close() }()
	}

	for _, feed := range settings.Feeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		cutoff := marks.Cutoff(feed.URL, globalStart)
		if err := r.processFeed(ctx, feed, cutoff, marks, hist); err != nil {
			return err
		}
	}
	return nil
}

// startTime is midnight of the current day minus maxAge days, local time.
// Computed once per run and shared by all feeds without a watermark.
func (r *Runner) startTime(maxAge int) time.Time {
	now := r.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -maxAge)
}

func (r *Runner) openHistory(ctx context.Context, dir string) History {
	hist, err := history.Open(ctx, filepath.Join(dir, history.FileName))
	if err != nil {
		r.log.Warn("download history unavailable, continuing without it", "error", err)
		return nil
	}
	return hist
}

func (r *Runner) processFeed(ctx context.Context, feed config.Feed, cutoff time.Time, marks *watermark.Store, hist History) error {
	r.log.Debug("checking feed", "url", feed.URL, "cutoff", cutoff)

	parsed, err := r.source.Fetch(ctx, feed.URL)
	if err != nil {
		r.log.Error("fetch feed", "url", feed.URL, "error", err)
		return nil
	}

	links, newest, err := filter.Extract(parsed, feed.Pattern, cutoff)
	if err != nil {
		r.log.Error("extract items", "url", feed.URL, "error", err)
		return nil
	}

	for _, link := range links {
		r.log.Debug("found link", "url", link)
		if r.alreadyDownloaded(ctx, hist, link) {
			r.log.Debug("already downloaded, skipping", "url", link)
			continue
		}
		dlErr := r.invoker.Download(ctx, feed.Downloader, link)
		if dlErr != nil {
			r.log.Error("download failed", "url", link, "error", dlErr)
		}
		r.record(ctx, hist, feed, link, dlErr)
	}

	marks.Set(feed.URL, newest)
	if err := marks.Save(); err != nil {
		return err
	}
	return nil
}

func (r *Runner) alreadyDownloaded(ctx context.Context, hist History, link string) bool {
	if hist == nil {
		return false
	}
	done, err := hist.Succeeded(ctx, link)
	if err != nil {
		r.log.Warn("check download history", "url", link, "error", err)
		return false
	}
	return done
}

func (r *Runner) record(ctx context.Context, hist History, feed config.Feed, link string, dlErr error) {
	if hist == nil {
		return
	}
	if err := hist.Record(ctx, feed.URL, link, feed.Downloader, dlErr); err != nil {
		r.log.Warn("record download", "url", link, "error", err)
	}
}
