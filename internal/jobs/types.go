package jobs

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether the job will receive no further state changes
// unless retried.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// EnqueueRequest describes one subtitle file to translate. SourcePath is
// also the dedupe key: only one active job per source file may exist.
type EnqueueRequest struct {
	MediaTitle string
	MediaType  string
	SourcePath string
}

// TranslationJob tracks the lifecycle of one subtitle translation from
// enqueue through completion or failure.
type TranslationJob struct {
	ID         string    `json:"id"`
	MediaTitle string    `json:"media_title"`
	MediaType  string    `json:"media_type"`
	SourcePath string    `json:"source_path"`
	OutputPath string    `json:"output_path,omitempty"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CueCount   int       `json:"cue_count,omitempty"`
	Attempts   int       `json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
