package filter

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/gofeed"

	"github.com/equescalculi/newsfeed-media-dl/internal/config"
	"github.com/equescalculi/newsfeed-media-dl/internal/fetcher"
)

func loadFeed(t *testing.T) *gofeed.Feed {
	t.Helper()
	data, err := os.ReadFile("../../testdata/sample.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return feed
}

func TestExtract(t *testing.T) {
	feed := loadFeed(t)
	newest := time.Date(2023, 3, 15, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		pattern   string
		cutoff    time.Time
		wantLinks []string
	}{
		{
			name:    "all new breaking entries in feed order",
			pattern: "Breaking",
			cutoff:  time.Date(2023, 3, 13, 0, 0, 0, 0, time.UTC),
			wantLinks: []string{
				"https://example.com/media/breaking-news.mp4",
				"https://example.com/media/breaking-update.mp4",
			},
		},
		{
			name:    "cutoff excludes older entry",
			pattern: "Breaking",
			cutoff:  time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
			wantLinks: []string{
				"https://example.com/media/breaking-update.mp4",
			},
		},
		{
			name:      "entry at exactly the cutoff is not new",
			pattern:   "Breaking",
			cutoff:    time.Date(2023, 3, 15, 12, 30, 0, 0, time.UTC),
			wantLinks: nil,
		},
		{
			name:      "pattern must match at the title start",
			pattern:   "News",
			cutoff:    time.Date(2023, 3, 13, 0, 0, 0, 0, time.UTC),
			wantLinks: nil,
		},
		{
			name:    "pattern need not consume the whole title",
			pattern: "Other",
			cutoff:  time.Date(2023, 3, 13, 0, 0, 0, 0, time.UTC),
			wantLinks: []string{
				"https://example.com/media/other.mp4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, err := config.CompileAnchored(tt.pattern)
			if err != nil {
				t.Fatalf("compile pattern: %v", err)
			}

			links, gotNewest, err := Extract(feed, pattern, tt.cutoff)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantLinks, links); diff != "" {
				t.Errorf("links mismatch (-want +got):\n%s", diff)
			}
			if !gotNewest.Equal(newest) {
				t.Errorf("newest = %v, want %v", gotNewest, newest)
			}
		})
	}
}

func TestExtractEmptyFeed(t *testing.T) {
	pattern, err := config.CompileAnchored(".*")
	if err != nil {
		t.Fatalf("compile pattern: %v", err)
	}

	_, _, err = Extract(&gofeed.Feed{}, pattern, time.Time{})
	if !errors.Is(err, ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}
}

func TestExtractEntryWithoutTimestamp(t *testing.T) {
	pattern, err := config.CompileAnchored(".*")
	if err != nil {
		t.Fatalf("compile pattern: %v", err)
	}

	feed := &gofeed.Feed{Items: []*gofeed.Item{
		{Title: "untimed", Link: "https://example.com/untimed"},
	}}
	_, _, err = Extract(feed, pattern, time.Time{})
	if !errors.Is(err, fetcher.ErrNoTimestamp) {
		t.Fatalf("expected ErrNoTimestamp, got %v", err)
	}
}
