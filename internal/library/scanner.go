package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/pathmap"
	"github.com/piratarr/piratarr/internal/provider"
	"github.com/piratarr/piratarr/pkg/file"
	"github.com/piratarr/piratarr/pkg/icron"
	"github.com/piratarr/piratarr/pkg/log"
)

// ErrScanBusy is returned when a scan is requested while one is running.
var ErrScanBusy = errors.New("a scan is already in progress")

// subsDirName is the per-media subdirectory some download clients drop
// subtitle files into.
const subsDirName = "Subs"

// Scanner walks the configured providers, indexes their media with local
// paths resolved through the path mappings, and queues translations for
// subtitles that have no pirate sidecar yet. At most one scan runs at a
// time; concurrent requests are rejected, not queued.
type Scanner struct {
	providers     []provider.MediaProvider
	store         MediaStore
	queue         TranslationQueue
	mappings      []pathmap.Mapping
	autoTranslate bool
	cronExpr      string

	mu       sync.Mutex
	scanning bool
	lastScan time.Time
}

func NewScanner(providers []provider.MediaProvider, store MediaStore, queue TranslationQueue, mappings []pathmap.Mapping, autoTranslate bool) *Scanner {
	return &Scanner{
		providers:     providers,
		store:         store,
		queue:         queue,
		mappings:      mappings,
		autoTranslate: autoTranslate,
	}
}

// providerResult pairs one provider's listing with its outcome. Items from
// a failed provider are left untouched in the index.
type providerResult struct {
	name    string
	records []provider.MediaRecord
	err     error
}

// Scan runs one full pass: fetch from every provider concurrently, index
// what they report, queue missing translations, and prune items that
// disappeared from a provider that answered successfully.
func (s *Scanner) Scan(ctx context.Context) (*ScanSummary, error) {
	if !s.begin() {
		return nil, ErrScanBusy
	}
	defer s.end()
	return s.run(ctx), nil
}

// TriggerScan starts a scan in the background. The busy check happens
// before this returns, so callers get ErrScanBusy synchronously.
func (s *Scanner) TriggerScan() error {
	if !s.begin() {
		return ErrScanBusy
	}
	go func() {
		defer s.end()
		s.run(context.Background())
	}()
	return nil
}

func (s *Scanner) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanning {
		return false
	}
	s.scanning = true
	return true
}

func (s *Scanner) end() {
	s.mu.Lock()
	s.scanning = false
	s.lastScan = time.Now()
	s.mu.Unlock()
}

func (s *Scanner) run(ctx context.Context) *ScanSummary {
	log.Info("Starting library scan across %d provider(s)", len(s.providers))
	started := time.Now()

	results := make([]providerResult, len(s.providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range s.providers {
		i, p := i, p
		g.Go(func() error {
			records, err := p.ListRecords(gctx)
			results[i] = providerResult{name: p.Name(), records: records, err: err}
			return nil
		})
	}
	_ = g.Wait()

	summary := &ScanSummary{}
	for _, res := range results {
		if res.err != nil {
			log.Error("Provider %s failed: %v", res.name, res.err)
			summary.ProviderErrors = append(summary.ProviderErrors, fmt.Sprintf("%s: %v", res.name, res.err))
			continue
		}
		s.indexProvider(ctx, res, summary)
	}

	log.Info("Scan finished in %s: %d movies, %d episodes, %d subtitles, %d translations queued, %d pruned",
		time.Since(started).Round(time.Millisecond),
		summary.MoviesFound, summary.EpisodesFound, summary.SubtitlesFound,
		summary.TranslationsQueued, summary.ItemsPruned)
	return summary
}

func (s *Scanner) indexProvider(ctx context.Context, res providerResult, summary *ScanSummary) {
	seen := make(map[string]struct{}, len(res.records))
	now := time.Now()

	for _, rec := range res.records {
		item := &MediaItem{
			ID:          fmt.Sprintf("%s-%d", res.name, rec.ProviderID),
			Provider:    res.name,
			ProviderID:  rec.ProviderID,
			Title:       rec.Title,
			Type:        rec.Type,
			SeriesTitle: rec.SeriesTitle,
			Season:      rec.Season,
			Episode:     rec.Episode,
			RemotePath:  rec.RemotePath,
			LastScanned: now,
		}
		seen[item.ID] = struct{}{}

		switch rec.Type {
		case provider.MediaTypeMovie:
			summary.MoviesFound++
		case provider.MediaTypeEpisode:
			summary.EpisodesFound++
		}

		localPath, ok := pathmap.Resolve(rec.RemotePath, s.mappings)
		if !ok {
			log.Warn("No path mapping matches %q (%s); indexed without local state", rec.RemotePath, rec.DisplayTitle())
		} else {
			item.LocalPath = localPath
			item.Mapped = true
			s.inspectSubtitles(item, rec, summary)
		}

		if err := s.store.UpsertMediaItem(ctx, item); err != nil {
			log.Error("Failed to index %s: %v", item.ID, err)
		}
	}

	pruned, err := s.store.PruneMissing(ctx, res.name, seen)
	if err != nil {
		log.Error("Failed to prune stale %s items: %v", res.name, err)
		return
	}
	summary.ItemsPruned += pruned
}

func (s *Scanner) inspectSubtitles(item *MediaItem, rec provider.MediaRecord, summary *ScanSummary) {
	subs := findSubtitleFiles(item.LocalPath)
	item.SubtitlePaths = subs
	item.HasSubtitle = len(subs) > 0
	summary.SubtitlesFound += len(subs)

	allPirated := len(subs) > 0
	for _, sub := range subs {
		pirated := fileExists(file.PirateSidecarPath(sub))
		if pirated {
			continue
		}
		allPirated = false
		if !s.autoTranslate || s.queue == nil {
			continue
		}
		_, created := s.queue.Enqueue(jobs.EnqueueRequest{
			MediaTitle: rec.DisplayTitle(),
			MediaType:  string(rec.Type),
			SourcePath: sub,
		})
		if created {
			summary.TranslationsQueued++
		}
	}
	item.HasPirateSubtitle = allPirated
}

// findSubtitleFiles locates .srt sidecars for a media file: files in the
// same directory whose name starts with the media basename, plus anything
// in a Subs/ subdirectory. Pirate sidecars are excluded.
func findSubtitleFiles(mediaPath string) []string {
	dir := filepath.Dir(mediaPath)
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	subs := make([]string, 0)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return subs
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".srt") {
			continue
		}
		if !strings.HasPrefix(name, base) {
			continue
		}
		if file.IsPirateSidecar(name) {
			continue
		}
		subs = append(subs, filepath.Join(dir, name))
	}

	subsDir := filepath.Join(dir, subsDirName)
	if nested, err := os.ReadDir(subsDir); err == nil {
		for _, entry := range nested {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !strings.EqualFold(filepath.Ext(name), ".srt") {
				continue
			}
			if file.IsPirateSidecar(name) {
				continue
			}
			subs = append(subs, filepath.Join(subsDir, name))
		}
	}

	sort.Strings(subs)
	return subs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Schedule registers periodic scans on c. Scans triggered while a previous
// one is still running are absorbed by the busy gate.
func (s *Scanner) Schedule(c *cron.Cron, expr string) error {
	_, err := c.AddFunc(expr, func() {
		if _, err := s.Scan(context.Background()); err != nil {
			if errors.Is(err, ErrScanBusy) {
				log.Warn("Skipping scheduled scan: previous scan still running")
				return
			}
			log.Error("Scheduled scan failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule scan: %w", err)
	}
	s.mu.Lock()
	s.cronExpr = expr
	s.mu.Unlock()
	return nil
}

// State reports the current scan status for the API.
func (s *Scanner) State() ScanState {
	s.mu.Lock()
	scanning := s.scanning
	lastScan := s.lastScan
	expr := s.cronExpr
	s.mu.Unlock()

	state := ScanState{IsScanning: scanning}
	if !lastScan.IsZero() {
		t := lastScan
		state.LastScanTime = &t
	}
	if expr != "" {
		state.ScheduleIsSet = true
		if info, err := icron.GetTriggerInfo(expr, time.Now()); err == nil {
			next := info.Next
			state.NextScanTime = &next
		}
	}
	return state
}
