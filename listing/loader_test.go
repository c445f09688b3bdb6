package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderDropsStaleCommit(t *testing.T) {
	var l Loader[string]

	first := l.Begin()
	second := l.Begin()

	assert.True(t, l.Commit(second))
	assert.False(t, l.Commit(first), "older generation must not replace a newer one")
	assert.Equal(t, second, l.Committed())
}

func TestLoaderLoad(t *testing.T) {
	var l Loader[int]
	ctx := context.Background()

	v, stale, err := l.Load(ctx, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, 1, v)

	// A slow request is overtaken by a newer one while in flight.
	v, stale, err = l.Load(ctx, func(ctx context.Context) (int, error) {
		inner, innerStale, err := l.Load(ctx, func(context.Context) (int, error) { return 3, nil })
		require.NoError(t, err)
		assert.False(t, innerStale)
		assert.Equal(t, 3, inner)
		return 2, nil
	})
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, 2, v, "the overtaken request still gets its own result")
	assert.Equal(t, uint64(3), l.Committed())
}

func TestLoaderOverlappingFilters(t *testing.T) {
	var l Loader[[]string]
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})

	var (
		wg     sync.WaitGroup
		fixed  []string
		stale  bool
		fixErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		fixed, stale, fixErr = l.Load(ctx, func(context.Context) ([]string, error) {
			close(started)
			<-release
			return []string{"fixed-1"}, nil
		})
	}()

	<-started
	pending, pendingStale, err := l.Load(ctx, func(context.Context) ([]string, error) {
		return []string{"pend-1"}, nil
	})
	require.NoError(t, err)
	assert.False(t, pendingStale)
	assert.Equal(t, []string{"pend-1"}, pending)

	close(release)
	wg.Wait()
	require.NoError(t, fixErr)
	assert.True(t, stale)
	assert.Equal(t, []string{"fixed-1"}, fixed)
}

func TestLoaderLoadError(t *testing.T) {
	var l Loader[int]
	boom := errors.New("boom")

	_, _, err := l.Load(context.Background(), func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, l.Committed())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry[int](0)

	a := r.For("s1", "dashboard")
	assert.Same(t, a, r.For("s1", "dashboard"))
	assert.NotSame(t, a, r.For("s1", "my-reports"))
	assert.NotSame(t, a, r.For("s2", "dashboard"))
	assert.Equal(t, 2, r.Len())

	r.Forget("s1")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.For("s1", "dashboard"))
}

func TestRegistrySweepsIdleSessions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry[int](time.Hour)
	r.now = func() time.Time { return now }

	r.For("idle", "dashboard")
	now = now.Add(30 * time.Minute)
	r.For("active", "dashboard")

	now = now.Add(45 * time.Minute)
	r.For("active", "my-reports")
	assert.Equal(t, 1, r.Len())

	r.mu.Lock()
	_, kept := r.sessions["active"]
	r.mu.Unlock()
	assert.True(t, kept)
}
