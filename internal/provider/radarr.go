package provider

import "context"

// RadarrClient lists movies from a Radarr instance.
type RadarrClient struct {
	apiClient
}

func NewRadarrClient(baseURL, apiKey string) *RadarrClient {
	return &RadarrClient{apiClient: newAPIClient(baseURL, apiKey)}
}

func (c *RadarrClient) Name() string { return "radarr" }

type radarrMovie struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	HasFile   bool   `json:"hasFile"`
	MovieFile struct {
		Path string `json:"path"`
	} `json:"movieFile"`
}

// ListRecords fetches all movies with files on disk.
func (c *RadarrClient) ListRecords(ctx context.Context) ([]MediaRecord, error) {
	var movies []radarrMovie
	if err := c.getJSON(ctx, "movie", nil, &movies); err != nil {
		return nil, err
	}

	records := make([]MediaRecord, 0, len(movies))
	for _, movie := range movies {
		if !movie.HasFile || movie.MovieFile.Path == "" {
			continue
		}
		records = append(records, MediaRecord{
			ProviderID: movie.ID,
			Title:      movie.Title,
			Year:       movie.Year,
			Type:       MediaTypeMovie,
			RemotePath: movie.MovieFile.Path,
		})
	}
	return records, nil
}
