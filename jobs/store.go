package jobs

import (
	"sync"
	"time"
)

// Store holds live jobs. Backed by an in-process map in a single
// instance; the interface leaves room for a shared store when running
// multiple instances. Mutation stays single-writer per job: only the
// owning runner calls Update for a given id.
type Store interface {
	Put(job Job)
	Get(id string) (Job, bool)
	Update(id string, mutate func(*Job)) bool
	Delete(id string)
	Sweep(ttl time.Duration) []string
}

// MemoryStore is the in-process Store used by a single API instance.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

func (s *MemoryStore) Put(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns a point-in-time snapshot of the job.
func (s *MemoryStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Update applies mutate to the stored job under the lock and stamps
// UpdatedAt. Returns false for unknown ids.
func (s *MemoryStore) Update(id string, mutate func(*Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	mutate(&job)
	job.UpdatedAt = time.Now()
	s.jobs[id] = job
	return true
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// Sweep removes terminal jobs that have been idle past ttl and returns
// the reaped ids. Running jobs are never reaped.
func (s *MemoryStore) Sweep(ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	var reaped []string
	for id, job := range s.jobs {
		if job.Terminal() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			reaped = append(reaped, id)
		}
	}
	return reaped
}
