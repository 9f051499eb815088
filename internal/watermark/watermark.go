// Package watermark persists the newest processed entry timestamp per feed.
package watermark

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FileName is the watermark file kept in the settings directory.
const FileName = ".newsfeed_media_dl.json"

// timeLayout is a local time without offset, matching the persisted format.
const timeLayout = "2006-01-02T15:04:05"

// Store maps feed URLs to the newest entry timestamp already processed.
// Not safe for concurrent use; a run is single-threaded.
type Store struct {
	path  string
	marks map[string]time.Time
}

// Load reads the watermark file under dir. A missing file yields an empty
// store; a corrupt file or an unparseable timestamp is logged at warning
// level and ignored. Load never fails: losing a watermark only means some
// entries inside the max-age window get reconsidered.
func Load(dir string, log *slog.Logger) *Store {
	s := &Store{
		path:  filepath.Join(dir, FileName),
		marks: make(map[string]time.Time),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("ignoring unreadable watermark file", "path", s.path, "error", err)
		}
		return s
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("ignoring watermark file due to parsing error", "path", s.path, "error", err)
		return s
	}
	for url, v := range raw {
		t, err := time.ParseInLocation(timeLayout, v, time.Local)
		if err != nil {
			log.Warn("ignoring watermark with invalid timestamp", "url", url, "value", v)
			continue
		}
		s.marks[url] = t
	}
	return s
}

// Cutoff returns the stored mark for url when it is after floor, floor
// otherwise. Entries must be strictly newer than the result to be processed.
func (s *Store) Cutoff(url string, floor time.Time) time.Time {
	if t, ok := s.marks[url]; ok && t.After(floor) {
		return t
	}
	return floor
}

// Set records the newest entry timestamp for url in memory.
func (s *Store) Set(url string, t time.Time) {
	s.marks[url] = t
}

// Save overwrites the watermark file with the full in-memory store. Called
// after each feed so a crash on a later feed keeps earlier progress.
func (s *Store) Save() error {
	raw := make(map[string]string, len(s.marks))
	for url, t := range s.marks {
		raw[url] = t.In(time.Local).Format(timeLayout)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode watermarks: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
