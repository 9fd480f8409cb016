// Package provider abstracts the external library managers (Radarr,
// Sonarr) behind a single capability: listing media records with their
// provider-reported file paths.
package provider

import (
	"context"
	"fmt"
)

type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeEpisode MediaType = "episode"
	// MediaTypeManual marks ad-hoc translation requests that bypass the index.
	MediaTypeManual MediaType = "manual"
)

// MediaRecord is an immutable snapshot of one movie or episode as reported
// by a provider during a scan cycle.
type MediaRecord struct {
	ProviderID  int64
	Title       string
	Year        int
	Type        MediaType
	SeriesTitle string
	Season      int
	Episode     int
	RemotePath  string
}

// DisplayTitle renders a human-readable title for job listings.
func (r MediaRecord) DisplayTitle() string {
	if r.Type == MediaTypeEpisode && r.SeriesTitle != "" {
		return fmt.Sprintf("%s S%02dE%02d - %s", r.SeriesTitle, r.Season, r.Episode, r.Title)
	}
	if r.Year > 0 {
		return fmt.Sprintf("%s (%d)", r.Title, r.Year)
	}
	return r.Title
}

// MediaProvider lists the media records an external library manager knows
// about. Implementations must be safe for use from the scan goroutine.
type MediaProvider interface {
	Name() string
	ListRecords(ctx context.Context) ([]MediaRecord, error)
}
