package jobs

import (
	"errors"
	"time"

	"github.com/scenecast/scenecast-api/segmenter"
)

// ErrJobNotFound is returned for unknown or already-reaped job ids.
var ErrJobNotFound = errors.New("job not found")

// ErrAccessDenied is returned when a caller is neither the job owner nor an admin.
var ErrAccessDenied = errors.New("access denied")

const (
	// TTL keeps a terminal job available for polling before it is reaped.
	TTL = 30 * time.Minute

	// AbandonAfter is the absolute ceiling after which a still-running job
	// answers polls with a timeout instead of an in-progress snapshot.
	AbandonAfter = time.Hour
)

// Status of a generation job. Once a job leaves running it never returns.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one asynchronous execution of the generation pipeline. It is
// mutated only by its owning background runner; everyone else reads
// snapshots.
type Job struct {
	ID        string            `json:"id"`
	OwnerID   uint              `json:"owner_id"`
	ProjectID uint              `json:"project_id"`
	Status    Status            `json:"status"`
	Message   string            `json:"message"`
	Scenes    []segmenter.Scene `json:"scenes,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Terminal reports whether the job reached completed or failed.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// EventType classifies stream messages delivered to subscribers.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is one self-contained progress or terminal record. The stream
// closes after a terminal event.
type Event struct {
	Type       EventType `json:"type"`
	Status     Status    `json:"status,omitempty"`
	Message    string    `json:"message,omitempty"`
	SceneCount int       `json:"scene_count,omitempty"`
	Error      string    `json:"error,omitempty"`
}
