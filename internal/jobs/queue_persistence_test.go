package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	jobs map[string]*TranslationJob
}

func newMemoryStore() *memoryStore {
	return &memoryStore{jobs: make(map[string]*TranslationJob)}
}

func (s *memoryStore) LoadJobs(_ context.Context) ([]*TranslationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]*TranslationJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		tmp := *job
		ret = append(ret, &tmp)
	}
	return ret, nil
}

func (s *memoryStore) UpsertJob(_ context.Context, job *TranslationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := *job
	s.jobs[job.ID] = &tmp
	return nil
}

func (s *memoryStore) DeleteJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}

func TestQueue_HydrateDemotesProcessingToPending(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.UpsertJob(context.Background(), &TranslationJob{
		ID:         "interrupted",
		SourcePath: "/tv/s01e01.en.srt",
		Status:     StatusProcessing,
		Attempts:   1,
		CreatedAt:  time.Now().Add(-time.Minute),
		UpdatedAt:  time.Now().Add(-time.Minute),
	}))

	q := NewQueue(1, store)

	got, ok := q.Get("interrupted")
	require.True(t, ok)
	assert.Equal(t, StatusPending, got.Status)

	// The demoted status must be written back so a second restart sees it.
	persisted, err := store.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, StatusPending, persisted[0].Status)
}

func TestQueue_HydrateRestoresDedupeForActiveJobs(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.UpsertJob(context.Background(), &TranslationJob{
		ID:         "existing",
		SourcePath: "/movies/dup.en.srt",
		Status:     StatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}))

	q := NewQueue(1, store)

	job, created := q.Enqueue(EnqueueRequest{SourcePath: "/movies/dup.en.srt"})
	require.False(t, created)
	assert.Equal(t, "existing", job.ID)
}

func TestQueue_PersistsTransitions(t *testing.T) {
	store := newMemoryStore()
	q := NewQueue(1, store)
	q.Start(func(_ context.Context, _ *TranslationJob) (ExecResult, error) {
		return ExecResult{OutputPath: "/out.pirate.en.srt", CueCount: 2}, nil
	})
	defer q.Stop()

	job, created := q.Enqueue(EnqueueRequest{SourcePath: "/out.en.srt"})
	require.True(t, created)

	require.Eventually(t, func() bool {
		persisted, err := store.LoadJobs(context.Background())
		if err != nil || len(persisted) != 1 {
			return false
		}
		return persisted[0].ID == job.ID && persisted[0].Status == StatusCompleted
	}, time.Second, 10*time.Millisecond)

	persisted, _ := store.LoadJobs(context.Background())
	assert.Equal(t, "/out.pirate.en.srt", persisted[0].OutputPath)
	assert.Equal(t, 2, persisted[0].CueCount)
}
