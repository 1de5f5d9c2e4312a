package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.interval = 5 * time.Millisecond
	return r
}

func TestNewImportID(t *testing.T) {
	a := NewImportID()
	b := NewImportID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestRegistryLifecycle(t *testing.T) {
	r := newTestRegistry()
	id := NewImportID()

	_, ok := r.Get(id)
	assert.False(t, ok)

	r.Create(id)
	job, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusPending, job.Status)
	assert.Zero(t, job.Progress)

	r.SetProgress(id, 37.5)
	job, _ = r.Get(id)
	assert.InDelta(t, 37.5, job.Progress, 0.001)

	r.Complete(id, 42)
	job, ok = r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.InDelta(t, 100.0, job.Progress, 0.001)
	assert.Equal(t, int64(42), job.VideoID)
	assert.True(t, job.Terminal())

	// Progress updates after completion must be dropped.
	r.SetProgress(id, 10)
	job, _ = r.Get(id)
	assert.InDelta(t, 100.0, job.Progress, 0.001)
}

func TestRegistryFail(t *testing.T) {
	r := newTestRegistry()
	id := NewImportID()
	r.Create(id)

	r.Fail(id, "Download failed")
	job, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusError, job.Status)
	assert.Equal(t, "Download failed", job.Error)
	assert.True(t, job.Terminal())
}

func TestRegistryUpdatesOnUnknownID(t *testing.T) {
	r := newTestRegistry()

	r.SetProgress("missing", 50)
	r.Complete("missing", 1)
	r.Fail("missing", "boom")

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestSubscribePendingThenComplete(t *testing.T) {
	r := newTestRegistry()
	id := NewImportID()
	r.Create(id)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ch := r.Subscribe(ctx, id)

	first, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, StatusPending, first.Status)

	r.SetProgress(id, 60)
	r.Complete(id, 7)

	var last Job
	for job := range ch {
		last = job
	}
	assert.Equal(t, StatusCompleted, last.Status)
	assert.Equal(t, int64(7), last.VideoID)
	assert.InDelta(t, 100.0, last.Progress, 0.001)

	// Terminal delivery consumed the entry.
	_, ok = r.Get(id)
	assert.False(t, ok)
}

func TestSubscribeUnknownID(t *testing.T) {
	r := newTestRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ch := r.Subscribe(ctx, "does-not-exist")

	job, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, StatusError, job.Status)
	assert.Equal(t, "Import not found or finished", job.Error)

	_, ok = <-ch
	assert.False(t, ok, "channel must close after the synthetic error state")
}

func TestSubscribeAfterTerminalConsumed(t *testing.T) {
	r := newTestRegistry()
	id := NewImportID()
	r.Create(id)
	r.Complete(id, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first := r.Subscribe(ctx, id)
	job := <-first
	assert.Equal(t, StatusCompleted, job.Status)

	// The terminal state was delivered once; a second subscriber sees the
	// synthetic not-found state.
	second := r.Subscribe(ctx, id)
	job = <-second
	assert.Equal(t, StatusError, job.Status)
	assert.Equal(t, "Import not found or finished", job.Error)
}

func TestSubscribeClientDisconnect(t *testing.T) {
	r := newTestRegistry()
	id := NewImportID()
	r.Create(id)

	ctx, cancel := context.WithCancel(context.Background())
	ch := r.Subscribe(ctx, id)

	<-ch
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// One buffered emit may still be in flight; the close follows.
			_, ok = <-ch
			assert.False(t, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after subscriber context was cancelled")
	}

	// The pending job itself survives the disconnect.
	job, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusPending, job.Status)
}
