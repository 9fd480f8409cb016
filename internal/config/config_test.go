package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piratarr/piratarr/internal/pathmap"
)

func TestNewFromEnv_Defaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3600, cfg.Scan.IntervalSeconds)
	assert.True(t, cfg.Scan.AutoTranslate)
	assert.Equal(t, 0.12, cfg.Translate.ExclamationChance)
	assert.Equal(t, "/config", cfg.System.DataDir)
	assert.Equal(t, ":8585", cfg.System.HTTPAddr)
	assert.Equal(t, "info", cfg.System.LogLevel)
	assert.Equal(t, "/config/piratarr.db", cfg.System.DBPath())
	assert.Equal(t, "@every 3600s", cfg.Scan.CronExpr())
	assert.False(t, cfg.Providers.Radarr.Enabled())
	assert.False(t, cfg.Providers.Sonarr.Enabled())
}

func TestNewFromEnv_ReadsEnvironment(t *testing.T) {
	t.Setenv("RADARR_URL", "http://radarr:7878")
	t.Setenv("RADARR_API_KEY", "key1")
	t.Setenv("SCAN_INTERVAL", "120")
	t.Setenv("AUTO_TRANSLATE", "false")
	t.Setenv("PATH_MAPPINGS", "/data/tv=/tv,/data/movies=/movies")
	t.Setenv("EXCLAMATION_CHANCE", "0.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.Providers.Radarr.Enabled())
	assert.Equal(t, "http://radarr:7878", cfg.Providers.Radarr.BaseURL)
	assert.Equal(t, 120, cfg.Scan.IntervalSeconds)
	assert.False(t, cfg.Scan.AutoTranslate)
	assert.Equal(t, "@every 120s", cfg.Scan.CronExpr())
	assert.Equal(t, 0.5, cfg.Translate.ExclamationChance)
	assert.Equal(t, "debug", cfg.System.LogLevel)
	require.Len(t, cfg.Scan.PathMappings, 2)
	assert.Equal(t, pathmap.Mapping{RemotePrefix: "/data/tv", LocalPrefix: "/tv"}, cfg.Scan.PathMappings[0])
}

func TestNewFromEnv_RejectsBadValues(t *testing.T) {
	t.Setenv("SCAN_INTERVAL", "-5")
	_, err := NewFromEnv()
	assert.Error(t, err)
}

func TestNewFromEnv_RejectsOutOfRangeChance(t *testing.T) {
	t.Setenv("EXCLAMATION_CHANCE", "1.5")
	_, err := NewFromEnv()
	assert.Error(t, err)
}

func TestParsePathMappings(t *testing.T) {
	mappings, err := ParsePathMappings(" /data/tv = /tv , /data/movies=/movies ")
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, "/data/tv", mappings[0].RemotePrefix)
	assert.Equal(t, "/tv", mappings[0].LocalPrefix)

	empty, err := ParsePathMappings("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParsePathMappings("/data/tv")
	assert.Error(t, err)

	_, err = ParsePathMappings("=/tv")
	assert.Error(t, err)
}
