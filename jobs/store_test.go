package jobs

import (
	"testing"
	"time"
)

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore()
	old := time.Now().Add(-time.Hour)

	s.Put(Job{ID: "done-old", Status: StatusCompleted, UpdatedAt: old})
	s.Put(Job{ID: "failed-old", Status: StatusFailed, UpdatedAt: old})
	s.Put(Job{ID: "done-fresh", Status: StatusCompleted, UpdatedAt: time.Now()})
	s.Put(Job{ID: "still-running", Status: StatusRunning, UpdatedAt: old})

	reaped := s.Sweep(30 * time.Minute)
	if len(reaped) != 2 {
		t.Fatalf("reaped %d jobs, want 2: %v", len(reaped), reaped)
	}

	if _, ok := s.Get("done-old"); ok {
		t.Error("expired terminal job survived sweep")
	}
	if _, ok := s.Get("done-fresh"); !ok {
		t.Error("fresh terminal job was reaped")
	}
	if _, ok := s.Get("still-running"); !ok {
		t.Error("running job must never be reaped")
	}
}

func TestMemoryStoreUpdateStampsTime(t *testing.T) {
	s := NewMemoryStore()
	s.Put(Job{ID: "a", Status: StatusRunning, UpdatedAt: time.Now().Add(-time.Minute)})

	before, _ := s.Get("a")
	if !s.Update("a", func(j *Job) { j.Message = "working" }) {
		t.Fatal("update reported unknown id")
	}
	after, _ := s.Get("a")

	if after.Message != "working" {
		t.Errorf("message = %q", after.Message)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Error("UpdatedAt not advanced by Update")
	}
	if s.Update("missing", func(j *Job) {}) {
		t.Error("update of unknown id must return false")
	}
}
