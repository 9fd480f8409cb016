package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadarrClient_ListRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/movie", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "title": "Treasure Island", "year": 1990, "hasFile": true,
			 "movieFile": {"path": "/movies/Treasure Island (1990)/movie.mkv"}},
			{"id": 2, "title": "Not Downloaded", "year": 2024, "hasFile": false},
			{"id": 3, "title": "Empty Path", "year": 2020, "hasFile": true, "movieFile": {"path": ""}}
		]`))
	}))
	defer srv.Close()

	client := NewRadarrClient(srv.URL, "secret")
	records, err := client.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, int64(1), records[0].ProviderID)
	assert.Equal(t, "Treasure Island", records[0].Title)
	assert.Equal(t, 1990, records[0].Year)
	assert.Equal(t, MediaTypeMovie, records[0].Type)
	assert.Equal(t, "/movies/Treasure Island (1990)/movie.mkv", records[0].RemotePath)
}

func TestRadarrClient_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewRadarrClient(srv.URL, "wrong")
	_, err := client.ListRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSonarrClient_ListRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v3/series":
			w.Write([]byte(`[{"id": 10, "title": "Black Sails"}]`))
		case "/api/v3/episodefile":
			require.Equal(t, "10", r.URL.Query().Get("seriesId"))
			w.Write([]byte(`[{"id": 100, "path": "/tv/Black Sails/S01E01.mkv"}]`))
		case "/api/v3/episode":
			require.Equal(t, "10", r.URL.Query().Get("seriesId"))
			w.Write([]byte(`[
				{"id": 1000, "title": "I.", "seasonNumber": 1, "episodeNumber": 1,
				 "hasFile": true, "episodeFileId": 100},
				{"id": 1001, "title": "II.", "seasonNumber": 1, "episodeNumber": 2,
				 "hasFile": false, "episodeFileId": 0}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewSonarrClient(srv.URL, "secret")
	records, err := client.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, int64(1000), rec.ProviderID)
	assert.Equal(t, MediaTypeEpisode, rec.Type)
	assert.Equal(t, "Black Sails", rec.SeriesTitle)
	assert.Equal(t, 1, rec.Season)
	assert.Equal(t, 1, rec.Episode)
	assert.Equal(t, "/tv/Black Sails/S01E01.mkv", rec.RemotePath)
	assert.Equal(t, "Black Sails S01E01 - I.", rec.DisplayTitle())
}

func TestSonarrClient_SkipsFailingSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/v3/series":
			w.Write([]byte(`[{"id": 1, "title": "Broken"}, {"id": 2, "title": "Working"}]`))
		case r.URL.Query().Get("seriesId") == "1":
			http.Error(w, "boom", http.StatusInternalServerError)
		case r.URL.Path == "/api/v3/episodefile":
			w.Write([]byte(`[{"id": 20, "path": "/tv/Working/S01E01.mkv"}]`))
		case r.URL.Path == "/api/v3/episode":
			w.Write([]byte(`[{"id": 200, "title": "Pilot", "seasonNumber": 1, "episodeNumber": 1,
				"hasFile": true, "episodeFileId": 20}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewSonarrClient(srv.URL, "secret")
	records, err := client.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Working", records[0].SeriesTitle)
}

func TestSonarrClient_SeriesListingFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewSonarrClient(srv.URL, "secret")
	_, err := client.ListRecords(context.Background())
	require.Error(t, err)
}

func TestDisplayTitle_Movie(t *testing.T) {
	rec := MediaRecord{Title: "Treasure Island", Year: 1990, Type: MediaTypeMovie}
	assert.Equal(t, "Treasure Island (1990)", rec.DisplayTitle())

	rec.Year = 0
	assert.Equal(t, "Treasure Island", rec.DisplayTitle())
}
