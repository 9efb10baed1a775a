package batch

import "time"

// Status is the durable progress state of one chunk. Recorded status is
// authoritative; the presence of chunk files on disk is only a hint.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the chunk needs no further work.
// A chunk stuck at "sent" is not terminal: a crash between dispatch and
// confirmation leaves it there, and the next run retries it.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// ChunkState is one row of the batch state.
type ChunkState struct {
	ChunkID    int
	StartIndex int
	EndIndex   int
	Status     Status
	// Result maps original cue index to translated text. Present iff the
	// chunk is completed.
	Result    map[int]string
	Error     string
	UpdatedAt time.Time
}

// Summary counts chunks per status.
type Summary struct {
	Total     int
	Pending   int
	Sent      int
	Completed int
	Failed    int
}
