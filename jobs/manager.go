package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scenecast/scenecast-api/processing"
	"gorm.io/gorm"
)

// ScriptSegmenter splits free-form script text into scene narrations.
type ScriptSegmenter interface {
	SegmentScript(ctx context.Context, script string, wordsPerScene int) ([]string, error)
}

// Enricher produces a visual description and an image for one scene.
type Enricher interface {
	DescribeScene(ctx context.Context, req processing.DescribeRequest) (string, error)
	GenerateImage(ctx context.Context, description, style string) (string, error)
}

// Source types accepted by StartRequest.
const (
	SourceScript    = "script"
	SourceSubtitles = "subtitles"
)

// StartRequest carries the generation input for one job.
type StartRequest struct {
	OwnerID        uint
	ProjectID      uint
	Text           string
	SourceType     string
	Style          string
	NegativePrompt string
	Characters     []processing.Character
	SceneDelay     time.Duration
	WordsPerScene  int
}

// Manager owns the job store, one broadcaster per live job, and the
// background runners. One Manager serves the whole process.
type Manager struct {
	store     Store
	db        *gorm.DB
	segmenter ScriptSegmenter
	enricher  Enricher

	mu           sync.Mutex
	broadcasters map[string]*Broadcaster
}

func NewManager(store Store, db *gorm.DB, seg ScriptSegmenter, enricher Enricher) *Manager {
	return &Manager{
		store:        store,
		db:           db,
		segmenter:    seg,
		enricher:     enricher,
		broadcasters: make(map[string]*Broadcaster),
	}
}

// Start creates the job in running state and launches the generation as
// a background task. Returns the new job id immediately.
func (m *Manager) Start(req StartRequest) string {
	now := time.Now()
	job := Job{
		ID:        uuid.NewString(),
		OwnerID:   req.OwnerID,
		ProjectID: req.ProjectID,
		Status:    StatusRunning,
		Message:   "Generation started",
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.store.Put(job)

	m.mu.Lock()
	m.broadcasters[job.ID] = NewBroadcaster()
	m.mu.Unlock()

	go m.run(context.Background(), job.ID, req)
	return job.ID
}

// Snapshot returns the current state of a job.
func (m *Manager) Snapshot(id string) (Job, error) {
	job, ok := m.store.Get(id)
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// Subscribe attaches a new observer. It returns the current snapshot,
// the subscriber id for Unsubscribe, and the event channel. The channel
// closes after exactly one terminal event.
func (m *Manager) Subscribe(id string) (Job, int, <-chan Event, error) {
	job, ok := m.store.Get(id)
	if !ok {
		return Job{}, 0, nil, ErrJobNotFound
	}

	m.mu.Lock()
	b, ok := m.broadcasters[id]
	m.mu.Unlock()
	if !ok {
		// Terminal job whose broadcaster was already released: serve the
		// snapshot with an immediately-terminated stream.
		b = NewBroadcaster()
		b.Close(terminalEvent(job))
	}

	subID, ch := b.Subscribe()
	return job, subID, ch, nil
}

// Unsubscribe detaches one observer without affecting the job or its
// other subscribers.
func (m *Manager) Unsubscribe(id string, subID int) {
	m.mu.Lock()
	b, ok := m.broadcasters[id]
	m.mu.Unlock()
	if ok {
		b.Unsubscribe(subID)
	}
}

// Sweep reaps terminal jobs past their retention TTL, dropping their
// broadcasters with them. Wired to a cron schedule in the API process.
func (m *Manager) Sweep() {
	reaped := m.store.Sweep(TTL)
	if len(reaped) == 0 {
		return
	}

	m.mu.Lock()
	for _, id := range reaped {
		delete(m.broadcasters, id)
	}
	m.mu.Unlock()
	log.Printf("Reaped %d expired generation jobs", len(reaped))
}

func (m *Manager) broadcaster(id string) *Broadcaster {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.broadcasters[id]
}

func terminalEvent(job Job) Event {
	if job.Status == StatusFailed {
		return Event{Type: EventFailed, Status: StatusFailed, Error: job.Error}
	}
	return Event{Type: EventCompleted, Status: StatusCompleted, SceneCount: len(job.Scenes)}
}
