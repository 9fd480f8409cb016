package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/library"
	"github.com/piratarr/piratarr/internal/provider"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "piratarr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_JobsRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	job := &jobs.TranslationJob{
		ID:         "job-1",
		MediaTitle: "Treasure Island (1990)",
		MediaType:  "movie",
		SourcePath: "/movies/ti/movie.en.srt",
		Status:     jobs.StatusPending,
		Attempts:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.UpsertJob(ctx, job))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, job.ID, all[0].ID)
	assert.Equal(t, job.Status, all[0].Status)
	assert.Equal(t, job.SourcePath, all[0].SourcePath)

	job.Status = jobs.StatusCompleted
	job.OutputPath = "/movies/ti/movie.pirate.en.srt"
	job.CueCount = 42
	job.Attempts = 1
	require.NoError(t, store.UpsertJob(ctx, job))

	all, err = store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, jobs.StatusCompleted, all[0].Status)
	assert.Equal(t, "/movies/ti/movie.pirate.en.srt", all[0].OutputPath)
	assert.Equal(t, 42, all[0].CueCount)

	require.NoError(t, store.DeleteJob(ctx, job.ID))
	all, err = store.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteStore_MediaItemsRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	item := &library.MediaItem{
		ID:                "sonarr-1000",
		Provider:          "sonarr",
		ProviderID:        1000,
		Title:             "I.",
		Type:              provider.MediaTypeEpisode,
		SeriesTitle:       "Black Sails",
		Season:            1,
		Episode:           1,
		RemotePath:        "/data/tv/Black Sails/S01E01.mkv",
		LocalPath:         "/tv/Black Sails/S01E01.mkv",
		Mapped:            true,
		SubtitlePaths:     []string{"/tv/Black Sails/S01E01.en.srt"},
		HasSubtitle:       true,
		HasPirateSubtitle: false,
		LastScanned:       time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, store.UpsertMediaItem(ctx, item))

	got, err := store.GetMediaItem(ctx, "sonarr-1000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.SeriesTitle, got.SeriesTitle)
	assert.Equal(t, item.SubtitlePaths, got.SubtitlePaths)
	assert.True(t, got.Mapped)
	assert.True(t, got.HasSubtitle)
	assert.False(t, got.HasPirateSubtitle)

	missing, err := store.GetMediaItem(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_ListMediaItems_FiltersByType(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.UpsertMediaItem(ctx, &library.MediaItem{
		ID: "radarr-1", Provider: "radarr", ProviderID: 1,
		Title: "Treasure Island", Type: provider.MediaTypeMovie,
		RemotePath: "/movies/ti/movie.mkv", LastScanned: now,
	}))
	require.NoError(t, store.UpsertMediaItem(ctx, &library.MediaItem{
		ID: "sonarr-2", Provider: "sonarr", ProviderID: 2,
		Title: "Pilot", Type: provider.MediaTypeEpisode, SeriesTitle: "Black Sails",
		RemotePath: "/tv/bs/S01E01.mkv", LastScanned: now,
	}))

	all, err := store.ListMediaItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	movies, err := store.ListMediaItems(ctx, provider.MediaTypeMovie)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "radarr-1", movies[0].ID)
}

func TestSQLiteStore_PruneMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"radarr-1", "radarr-2"} {
		require.NoError(t, store.UpsertMediaItem(ctx, &library.MediaItem{
			ID: id, Provider: "radarr", Title: id,
			Type: provider.MediaTypeMovie, RemotePath: "/m/" + id, LastScanned: now,
		}))
	}
	require.NoError(t, store.UpsertMediaItem(ctx, &library.MediaItem{
		ID: "sonarr-9", Provider: "sonarr", Title: "ep",
		Type: provider.MediaTypeEpisode, RemotePath: "/t/e", LastScanned: now,
	}))

	// radarr-2 disappeared from the provider; sonarr items must be untouched.
	pruned, err := store.PruneMissing(ctx, "radarr", map[string]struct{}{"radarr-1": {}})
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	all, err := store.ListMediaItems(ctx, "")
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, item := range all {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []string{"radarr-1", "sonarr-9"}, ids)
}
