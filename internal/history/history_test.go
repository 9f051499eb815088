package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/equescalculi/newsfeed-media-dl/internal/model"
)

var ignoreRowMeta = cmpopts.IgnoreFields(model.Download{}, "ID", "CreatedAt")

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("not a sqlite database"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := Open(context.Background(), path); err == nil {
		t.Fatal("expected error opening corrupt database, got nil")
	}
}

func TestRecordAndSucceeded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ok := "https://example.com/media/ok.mp4"
	failed := "https://example.com/media/failed.mp4"

	if err := s.Record(ctx, "https://example.com/rss", ok, "wget", nil); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := s.Record(ctx, "https://example.com/rss", failed, "wget", errors.New("exit status 1")); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	tests := []struct {
		name string
		link string
		want bool
	}{
		{name: "successful link", link: ok, want: true},
		{name: "failed link", link: failed, want: false},
		{name: "unknown link", link: "https://example.com/media/new.mp4", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Succeeded(ctx, tt.link)
			if err != nil {
				t.Fatalf("succeeded: %v", err)
			}
			if got != tt.want {
				t.Errorf("Succeeded(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}

func TestFailureThenSuccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	link := "https://example.com/media/retry.mp4"

	if err := s.Record(ctx, "https://example.com/rss", link, "aria2c", errors.New("timeout")); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := s.Record(ctx, "https://example.com/rss", link, "aria2c", nil); err != nil {
		t.Fatalf("record success: %v", err)
	}

	done, err := s.Succeeded(ctx, link)
	if err != nil {
		t.Fatalf("succeeded: %v", err)
	}
	if !done {
		t.Error("expected link to count as downloaded after a later success")
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Record(ctx, "https://example.com/rss", "https://example.com/media/a.mp4", "wget", nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(ctx, "https://example.com/rss", "https://example.com/media/b.mp4", "wget", errors.New("exit status 8")); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []model.Download{
		{
			FeedURL:    "https://example.com/rss",
			Link:       "https://example.com/media/b.mp4",
			Downloader: "wget",
			Status:     model.DownloadFailed,
			Error:      "exit status 8",
		},
		{
			FeedURL:    "https://example.com/rss",
			Link:       "https://example.com/media/a.mp4",
			Downloader: "wget",
			Status:     model.DownloadOK,
		},
	}
	if diff := cmp.Diff(want, got, ignoreRowMeta); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}
