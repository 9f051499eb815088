// Package config loads and validates the settings file that drives a run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/equescalculi/newsfeed-media-dl/internal/downloader"
)

// Error marks a configuration problem. Any Error aborts the whole run,
// unlike per-feed and per-link failures which are logged and tolerated.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Feed is one configured feed: where to fetch, what titles to accept, and
// which program downloads the matching links.
type Feed struct {
	URL        string
	Regex      string
	Downloader string

	// Pattern is Regex compiled to match at the start of a title.
	Pattern *regexp.Regexp
}

// Settings holds the validated contents of a settings file.
// Immutable after Load.
type Settings struct {
	Directory string
	MaxAge    int
	Feeds     []Feed
}

type rawFeed struct {
	URL        *string `json:"url" yaml:"url"`
	Regex      *string `json:"regex" yaml:"regex"`
	Downloader *string `json:"downloader" yaml:"downloader"`
}

type rawSettings struct {
	Directory *string    `json:"directory" yaml:"directory"`
	MaxAge    *int       `json:"maxage" yaml:"maxage"`
	Feeds     *[]rawFeed `json:"feeds" yaml:"feeds"`
}

// Load reads and validates a settings file. The file is parsed as YAML when
// its extension is .yaml or .yml, as JSON otherwise. Every feed is validated
// here, before any feed is fetched, so a malformed entry anywhere in the
// list aborts the run without network access.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the CLI argument
	if err != nil {
		return nil, errorf("read settings file %s: %v", path, err)
	}

	var raw rawSettings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errorf("parse settings file %s: %v", path, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errorf("parse settings file %s: %v", path, err)
		}
	}

	if raw.Directory == nil || *raw.Directory == "" {
		return nil, errorf("no directory given in settings file")
	}
	info, err := os.Stat(*raw.Directory)
	if err != nil || !info.IsDir() {
		return nil, errorf("directory %s given in settings file does not exist", *raw.Directory)
	}

	if raw.MaxAge == nil {
		return nil, errorf("no time frame given in settings file")
	}
	if *raw.MaxAge < 0 {
		return nil, errorf("invalid time frame %d given in settings file", *raw.MaxAge)
	}

	if raw.Feeds == nil {
		return nil, errorf("no feeds given in settings file")
	}

	s := &Settings{
		Directory: *raw.Directory,
		MaxAge:    *raw.MaxAge,
	}
	for i, rf := range *raw.Feeds {
		feed, err := validateFeed(i, rf)
		if err != nil {
			return nil, err
		}
		s.Feeds = append(s.Feeds, feed)
	}
	return s, nil
}

func validateFeed(i int, rf rawFeed) (Feed, error) {
	if rf.URL == nil || *rf.URL == "" {
		return Feed{}, errorf("feed %d: no url given", i)
	}
	if rf.Regex == nil {
		return Feed{}, errorf("feed %d: no regex given", i)
	}
	pattern, err := CompileAnchored(*rf.Regex)
	if err != nil {
		return Feed{}, errorf("feed %d: invalid regex %q: %v", i, *rf.Regex, err)
	}
	if rf.Downloader == nil || *rf.Downloader == "" {
		return Feed{}, errorf("feed %d: no downloader given", i)
	}
	if !downloader.IsSupported(*rf.Downloader) {
		return Feed{}, errorf("unsupported downloader: %s", *rf.Downloader)
	}
	return Feed{
		URL:        *rf.URL,
		Regex:      *rf.Regex,
		Downloader: *rf.Downloader,
		Pattern:    pattern,
	}, nil
}

// CompileAnchored compiles pattern so it must match at the start of the
// input, without requiring it to consume the whole string.
func CompileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")")
}
