package provider

import (
	"context"
	"strconv"

	"github.com/piratarr/piratarr/pkg/log"
)

// SonarrClient lists TV episodes from a Sonarr instance. Building the
// episode list takes three calls per series: the series listing, then the
// episode files and episodes for each series, joined on episodeFileId.
type SonarrClient struct {
	apiClient
}

func NewSonarrClient(baseURL, apiKey string) *SonarrClient {
	return &SonarrClient{apiClient: newAPIClient(baseURL, apiKey)}
}

func (c *SonarrClient) Name() string { return "sonarr" }

type sonarrSeries struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type sonarrEpisodeFile struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

type sonarrEpisode struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	HasFile       bool   `json:"hasFile"`
	EpisodeFileID int64  `json:"episodeFileId"`
}

// ListRecords fetches all episodes with files across all series. A single
// series failing mid-listing is logged and skipped so the rest of the
// library still scans.
func (c *SonarrClient) ListRecords(ctx context.Context) ([]MediaRecord, error) {
	var seriesList []sonarrSeries
	if err := c.getJSON(ctx, "series", nil, &seriesList); err != nil {
		return nil, err
	}

	records := make([]MediaRecord, 0)
	for _, series := range seriesList {
		seriesID := strconv.FormatInt(series.ID, 10)

		var files []sonarrEpisodeFile
		if err := c.getJSON(ctx, "episodefile", map[string]string{"seriesId": seriesID}, &files); err != nil {
			log.Warn("Failed to list episode files for series %q: %v", series.Title, err)
			continue
		}
		pathByFileID := make(map[int64]string, len(files))
		for _, f := range files {
			pathByFileID[f.ID] = f.Path
		}

		var episodes []sonarrEpisode
		if err := c.getJSON(ctx, "episode", map[string]string{"seriesId": seriesID}, &episodes); err != nil {
			log.Warn("Failed to list episodes for series %q: %v", series.Title, err)
			continue
		}

		for _, ep := range episodes {
			if !ep.HasFile {
				continue
			}
			path := pathByFileID[ep.EpisodeFileID]
			if path == "" {
				continue
			}
			records = append(records, MediaRecord{
				ProviderID:  ep.ID,
				Title:       ep.Title,
				Type:        MediaTypeEpisode,
				SeriesTitle: series.Title,
				Season:      ep.SeasonNumber,
				Episode:     ep.EpisodeNumber,
				RemotePath:  path,
			})
		}
	}
	return records, nil
}
