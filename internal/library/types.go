// Package library indexes media items discovered from the configured
// providers and drives periodic scans of their subtitle files.
package library

import (
	"context"
	"time"

	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/provider"
)

// MediaItem is one indexed movie or episode with its resolved local state.
// The ID is "{provider}-{providerID}" so items from different providers
// never collide.
type MediaItem struct {
	ID                string             `json:"id"`
	Provider          string             `json:"provider"`
	ProviderID        int64              `json:"provider_id"`
	Title             string             `json:"title"`
	Type              provider.MediaType `json:"type"`
	SeriesTitle       string             `json:"series_title,omitempty"`
	Season            int                `json:"season,omitempty"`
	Episode           int                `json:"episode,omitempty"`
	RemotePath        string             `json:"remote_path"`
	LocalPath         string             `json:"local_path,omitempty"`
	Mapped            bool               `json:"mapped"`
	SubtitlePaths     []string           `json:"subtitle_paths,omitempty"`
	HasSubtitle       bool               `json:"has_subtitle"`
	HasPirateSubtitle bool               `json:"has_pirate_subtitle"`
	LastScanned       time.Time          `json:"last_scanned"`
}

// ScanState reports whether a scan is in flight and when scans last ran
// and will next run.
type ScanState struct {
	IsScanning    bool       `json:"is_scanning"`
	LastScanTime  *time.Time `json:"last_scan_time,omitempty"`
	NextScanTime  *time.Time `json:"next_scan_time,omitempty"`
	ScheduleIsSet bool       `json:"schedule_is_set"`
}

// ScanSummary aggregates what one scan pass found and did.
type ScanSummary struct {
	MoviesFound        int      `json:"movies_found"`
	EpisodesFound      int      `json:"episodes_found"`
	SubtitlesFound     int      `json:"subtitles_found"`
	TranslationsQueued int      `json:"translations_queued"`
	ItemsPruned        int      `json:"items_pruned"`
	ProviderErrors     []string `json:"provider_errors,omitempty"`
}

// MediaStore persists the media index across restarts.
type MediaStore interface {
	UpsertMediaItem(ctx context.Context, item *MediaItem) error
	GetMediaItem(ctx context.Context, id string) (*MediaItem, error)
	ListMediaItems(ctx context.Context, mediaType provider.MediaType) ([]*MediaItem, error)
	// PruneMissing deletes a provider's items whose IDs are absent from
	// seenIDs and returns how many were removed.
	PruneMissing(ctx context.Context, providerName string, seenIDs map[string]struct{}) (int, error)
}

// TranslationQueue is the slice of the job queue the scanner needs.
type TranslationQueue interface {
	Enqueue(req jobs.EnqueueRequest) (*jobs.TranslationJob, bool)
}
