// Package persistence stores jobs and the media index in a single SQLite
// database under the configured data directory.
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/library"
	"github.com/piratarr/piratarr/internal/provider"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLiteStore implements jobs.Store and library.MediaStore over one
// database file. MaxOpenConns(1) keeps modernc's driver serialized.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.TranslationJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, media_title, media_type, source_path, output_path, status, error, cue_count, attempts, created_at, updated_at
		 FROM jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.TranslationJob, 0)
	for rows.Next() {
		var item jobs.TranslationJob
		var status string
		if err := rows.Scan(
			&item.ID,
			&item.MediaTitle,
			&item.MediaType,
			&item.SourcePath,
			&item.OutputPath,
			&status,
			&item.Error,
			&item.CueCount,
			&item.Attempts,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = jobs.Status(status)
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.TranslationJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
			id, media_title, media_type, source_path, output_path, status, error, cue_count, attempts, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			media_title=excluded.media_title,
			media_type=excluded.media_type,
			source_path=excluded.source_path,
			output_path=excluded.output_path,
			status=excluded.status,
			error=excluded.error,
			cue_count=excluded.cue_count,
			attempts=excluded.attempts,
			updated_at=excluded.updated_at`,
		job.ID,
		job.MediaTitle,
		job.MediaType,
		job.SourcePath,
		job.OutputPath,
		string(job.Status),
		job.Error,
		job.CueCount,
		job.Attempts,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

func (s *SQLiteStore) UpsertMediaItem(ctx context.Context, item *library.MediaItem) error {
	if item == nil {
		return fmt.Errorf("media item is nil")
	}
	subtitlesJSON, err := json.Marshal(item.SubtitlePaths)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO media_items (
			id, provider, provider_id, title, media_type, series_title, season, episode,
			remote_path, local_path, mapped, subtitle_paths_json, has_subtitle, has_pirate_subtitle, last_scanned
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider=excluded.provider,
			provider_id=excluded.provider_id,
			title=excluded.title,
			media_type=excluded.media_type,
			series_title=excluded.series_title,
			season=excluded.season,
			episode=excluded.episode,
			remote_path=excluded.remote_path,
			local_path=excluded.local_path,
			mapped=excluded.mapped,
			subtitle_paths_json=excluded.subtitle_paths_json,
			has_subtitle=excluded.has_subtitle,
			has_pirate_subtitle=excluded.has_pirate_subtitle,
			last_scanned=excluded.last_scanned`,
		item.ID,
		item.Provider,
		item.ProviderID,
		item.Title,
		string(item.Type),
		item.SeriesTitle,
		item.Season,
		item.Episode,
		item.RemotePath,
		item.LocalPath,
		boolToInt(item.Mapped),
		string(subtitlesJSON),
		boolToInt(item.HasSubtitle),
		boolToInt(item.HasPirateSubtitle),
		item.LastScanned,
	)
	return err
}

func (s *SQLiteStore) GetMediaItem(ctx context.Context, id string) (*library.MediaItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, provider, provider_id, title, media_type, series_title, season, episode,
			remote_path, local_path, mapped, subtitle_paths_json, has_subtitle, has_pirate_subtitle, last_scanned
		 FROM media_items
		 WHERE id = ?`,
		id,
	)
	item, err := scanMediaItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (s *SQLiteStore) ListMediaItems(ctx context.Context, mediaType provider.MediaType) ([]*library.MediaItem, error) {
	query := `SELECT id, provider, provider_id, title, media_type, series_title, season, episode,
		remote_path, local_path, mapped, subtitle_paths_json, has_subtitle, has_pirate_subtitle, last_scanned
		FROM media_items`
	args := make([]any, 0, 1)
	if mediaType != "" {
		query += ` WHERE media_type = ?`
		args = append(args, string(mediaType))
	}
	query += ` ORDER BY title ASC, season ASC, episode ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*library.MediaItem, 0)
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) PruneMissing(ctx context.Context, providerName string, seenIDs map[string]struct{}) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM media_items WHERE provider = ?`, providerName)
	if err != nil {
		return 0, err
	}
	stale := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		if _, ok := seenIDs[id]; !ok {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range stale {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaItem(row rowScanner) (*library.MediaItem, error) {
	var item library.MediaItem
	var mediaType string
	var subtitlesJSON string
	var mapped, hasSubtitle, hasPirate int
	if err := row.Scan(
		&item.ID,
		&item.Provider,
		&item.ProviderID,
		&item.Title,
		&mediaType,
		&item.SeriesTitle,
		&item.Season,
		&item.Episode,
		&item.RemotePath,
		&item.LocalPath,
		&mapped,
		&subtitlesJSON,
		&hasSubtitle,
		&hasPirate,
		&item.LastScanned,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(subtitlesJSON), &item.SubtitlePaths); err != nil {
		return nil, err
	}
	item.Type = provider.MediaType(mediaType)
	item.Mapped = mapped == 1
	item.HasSubtitle = hasSubtitle == 1
	item.HasPirateSubtitle = hasPirate == 1
	return &item, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
