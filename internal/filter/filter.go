// Package filter selects new feed entries by title pattern and recency.
package filter

import (
	"errors"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/equescalculi/newsfeed-media-dl/internal/fetcher"
)

// ErrNoEntries is returned for feeds without entries, where the newest
// timestamp is undefined and nothing can be checkpointed.
var ErrNoEntries = errors.New("feed has no entries")

// Extract returns the links of entries newer than cutoff whose title matches
// pattern, in feed order, together with the newest entry timestamp across
// the whole feed. The newest value is independent of the filter: it is what
// gets checkpointed, so later runs skip entries this run already saw even if
// none of them matched.
func Extract(feed *gofeed.Feed, pattern *regexp.Regexp, cutoff time.Time) ([]string, time.Time, error) {
	if len(feed.Items) == 0 {
		return nil, time.Time{}, ErrNoEntries
	}

	var links []string
	var newest time.Time
	for _, item := range feed.Items {
		t, err := fetcher.EntryTime(item)
		if err != nil {
			return nil, time.Time{}, err
		}
		if t.After(newest) {
			newest = t
		}
		if t.After(cutoff) && pattern.MatchString(item.Title) {
			links = append(links, item.Link)
		}
	}
	return links, newest, nil
}
