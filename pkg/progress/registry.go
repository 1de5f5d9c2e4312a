// Package progress tracks the transient state of URL imports. The registry is
// memory-resident only: a restart silently forgets in-flight jobs, and clients
// must treat "not found" as unknown-or-finished rather than a hard error.
package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Job is the tracked state of one URL import. Serialized as-is onto the
// status event stream.
type Job struct {
	Progress float64 `json:"progress"`
	Status   Status  `json:"status"`
	Error    string  `json:"error,omitempty"`
	VideoID  int64   `json:"videoId,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

// NewImportID generates an opaque correlation id for a new import.
func NewImportID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Registry is a mutex-guarded map from import id to job state. The only writer
// per id is that import's background task, but subscribers read concurrently,
// so every access goes through the lock.
type Registry struct {
	mu       sync.Mutex
	jobs     map[string]Job
	interval time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		jobs:     make(map[string]Job),
		interval: time.Second,
	}
}

// Create registers a fresh pending job under the given id.
func (r *Registry) Create(importID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[importID] = Job{Status: StatusPending}
}

// SetProgress updates the progress percentage of a pending job. Updates after
// the job was completed, failed or consumed are dropped.
func (r *Registry) SetProgress(importID string, percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[importID]
	if !ok || job.Terminal() {
		return
	}
	job.Progress = percent
	r.jobs[importID] = job
}

// Complete marks the job finished and links the created video record.
func (r *Registry) Complete(importID string, videoID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[importID]
	if !ok {
		return
	}
	job.Status = StatusCompleted
	job.Progress = 100
	job.VideoID = videoID
	r.jobs[importID] = job
}

// Fail marks the job failed with a message for the client.
func (r *Registry) Fail(importID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[importID]
	if !ok {
		return
	}
	job.Status = StatusError
	job.Error = message
	r.jobs[importID] = job
}

// Get returns the current state of a job.
func (r *Registry) Get(importID string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[importID]
	return job, ok
}

// Delete removes a job from the registry.
func (r *Registry) Delete(importID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, importID)
}

// take returns the current state and, when that state is terminal, consumes
// the entry in the same critical section. This is what makes terminal delivery
// at-most-once even with racing subscribers.
func (r *Registry) take(importID string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[importID]
	if ok && job.Terminal() {
		delete(r.jobs, importID)
	}
	return job, ok
}

// Subscribe returns a channel following the status-push contract: the current
// state is emitted immediately, then re-emitted about once a second while the
// job is pending. The first terminal state observed is emitted exactly once,
// the registry entry is deleted, and the channel closes. An unknown id yields
// a single synthetic error state.
func (r *Registry) Subscribe(ctx context.Context, importID string) <-chan Job {
	ch := make(chan Job, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			job, ok := r.take(importID)
			if !ok {
				select {
				case ch <- Job{Status: StatusError, Error: "Import not found or finished"}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case ch <- job:
			case <-ctx.Done():
				log.Debugf("Subscriber for import %s disconnected", importID)
				return
			}

			if job.Terminal() {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				log.Debugf("Subscriber for import %s disconnected", importID)
				return
			}
		}
	}()

	return ch
}
