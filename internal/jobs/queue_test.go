package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Enqueue_DeduplicatesActiveSourcePath(t *testing.T) {
	q := NewQueue(2, nil)

	jobA, createdA := q.Enqueue(EnqueueRequest{
		MediaTitle: "Treasure Island (1990)",
		MediaType:  "movie",
		SourcePath: "/movies/ti/movie.en.srt",
	})
	jobB, createdB := q.Enqueue(EnqueueRequest{
		MediaTitle: "Treasure Island (1990)",
		MediaType:  "movie",
		SourcePath: "/movies/ti/movie.en.srt",
	})

	require.True(t, createdA)
	require.False(t, createdB)
	require.NotNil(t, jobA)
	require.NotNil(t, jobB)
	assert.Equal(t, jobA.ID, jobB.ID)
}

func TestQueue_Enqueue_AllowsNewJobAfterCompletion(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(func(_ context.Context, _ *TranslationJob) (ExecResult, error) {
		return ExecResult{OutputPath: "/movies/out.pirate.en.srt", CueCount: 3}, nil
	})
	defer q.Stop()

	first, created := q.Enqueue(EnqueueRequest{SourcePath: "/movies/out.en.srt"})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(first.ID)
		return ok && got.Status == StatusCompleted
	}, time.Second, 10*time.Millisecond)

	done, _ := q.Get(first.ID)
	assert.Equal(t, "/movies/out.pirate.en.srt", done.OutputPath)
	assert.Equal(t, 3, done.CueCount)
	assert.Equal(t, 0, done.Attempts)

	second, created := q.Enqueue(EnqueueRequest{SourcePath: "/movies/out.en.srt"})
	require.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestQueue_FailedJobRecordsError(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(func(_ context.Context, _ *TranslationJob) (ExecResult, error) {
		return ExecResult{}, assert.AnError
	})
	defer q.Stop()

	job, created := q.Enqueue(EnqueueRequest{SourcePath: "/movies/bad.en.srt"})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(job.ID)
		return ok && got.Status == StatusFailed
	}, time.Second, 10*time.Millisecond)

	failed, _ := q.Get(job.ID)
	assert.Equal(t, assert.AnError.Error(), failed.Error)
}

func TestQueue_Retry_ReRunsFailedJob(t *testing.T) {
	q := NewQueue(1, nil)

	var mu sync.Mutex
	attempts := 0
	q.Start(func(_ context.Context, _ *TranslationJob) (ExecResult, error) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			return ExecResult{}, assert.AnError
		}
		return ExecResult{CueCount: 1}, nil
	})
	defer q.Stop()

	job, created := q.Enqueue(EnqueueRequest{SourcePath: "/tv/flaky.en.srt"})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(job.ID)
		return ok && got.Status == StatusFailed
	}, time.Second, 10*time.Millisecond)

	retried, err := q.Retry(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, retried.ID)
	assert.Empty(t, retried.Error)
	assert.Equal(t, 1, retried.Attempts)

	require.Eventually(t, func() bool {
		got, ok := q.Get(job.ID)
		return ok && got.Status == StatusCompleted
	}, time.Second, 10*time.Millisecond)

	done, _ := q.Get(job.ID)
	assert.Equal(t, 1, done.Attempts)
}

func TestQueue_Retry_KeepsNewerJobAsActiveForPath(t *testing.T) {
	q := NewQueue(1, nil)

	old, created := q.Enqueue(EnqueueRequest{SourcePath: "/tv/x.en.srt"})
	require.True(t, created)
	q.markFailed(old.ID, assert.AnError)

	newer, created := q.Enqueue(EnqueueRequest{SourcePath: "/tv/x.en.srt"})
	require.True(t, created)
	require.NotEqual(t, old.ID, newer.ID)

	retried, err := q.Retry(old.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, retried.Status)

	dup, created := q.Enqueue(EnqueueRequest{SourcePath: "/tv/x.en.srt"})
	assert.False(t, created)
	assert.Equal(t, newer.ID, dup.ID)
}

func TestQueue_Retry_RejectsNonFailedJobs(t *testing.T) {
	q := NewQueue(1, nil)

	job, _ := q.Enqueue(EnqueueRequest{SourcePath: "/tv/pending.en.srt"})

	_, err := q.Retry(job.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = q.Retry("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueue_List_FiltersByStatusAndSortsByCreation(t *testing.T) {
	q := NewQueue(1, nil)

	a, _ := q.Enqueue(EnqueueRequest{SourcePath: "/a.en.srt"})
	b, _ := q.Enqueue(EnqueueRequest{SourcePath: "/b.en.srt"})

	all := q.List("")
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	pending := q.List(StatusPending)
	assert.Len(t, pending, 2)
	assert.Empty(t, q.List(StatusFailed))
}

func TestQueue_Counts(t *testing.T) {
	q := NewQueue(1, nil)
	q.Enqueue(EnqueueRequest{SourcePath: "/a.en.srt"})
	q.Enqueue(EnqueueRequest{SourcePath: "/b.en.srt"})

	counts := q.Counts()
	assert.Equal(t, 2, counts[StatusPending])
	assert.Equal(t, 0, counts[StatusFailed])
}
