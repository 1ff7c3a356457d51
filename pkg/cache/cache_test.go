package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecoaction/ecoaction/pkg/log"
	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

// fakeClock is a mutable time source for freshness tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func missionsQuery(key string, fetch FetchFunc) Query {
	return Query{Key: key, Fetch: fetch}
}

func TestRead_EmptyTriggersFetch(t *testing.T) {
	c := New()
	defer c.Close()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return []types.Mission{{ID: "m1", Spots: 10, SpotsLeft: 3}}, nil
	}

	snap := c.Read(context.Background(), missionsQuery(MissionsKey, fetch))
	assert.Nil(t, snap.Payload)
	assert.Equal(t, StatusFetching, snap.Status)

	waitFor(t, func() bool {
		p, ok := c.Peek(MissionsKey)
		return ok && len(p.([]types.Mission)) == 1
	}, "initial fetch to complete")

	snap = c.Read(context.Background(), missionsQuery(MissionsKey, fetch))
	assert.Equal(t, StatusIdle, snap.Status)
	require.NotNil(t, snap.Payload)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRead_ConcurrentReadsShareOneFetch(t *testing.T) {
	c := New()
	defer c.Close()

	gate := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return []types.Mission{{ID: "m1"}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Read(context.Background(), missionsQuery(MissionsKey, fetch))
		}()
	}
	wg.Wait()
	close(gate)

	waitFor(t, func() bool {
		_, ok := c.Peek(MissionsKey)
		return ok
	}, "shared fetch to complete")

	assert.EqualValues(t, 1, calls.Load(), "concurrent reads must share one in-flight fetch")
}

func TestRead_StaleAfterWindowRefetches(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	defer c.Close()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return []types.Mission{{ID: "m1"}}, nil
	}
	q := Query{Key: MissionsKey, Fetch: fetch, StaleAfter: 5 * time.Minute}

	c.Read(context.Background(), q)
	waitFor(t, func() bool { return calls.Load() == 1 }, "first fetch")

	// Within the staleness window: no refetch
	clock.Advance(4 * time.Minute)
	snap := c.Read(context.Background(), q)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.EqualValues(t, 1, calls.Load())

	// Past the window: background refetch, snapshot still served
	clock.Advance(2 * time.Minute)
	snap = c.Read(context.Background(), q)
	assert.Equal(t, StatusFetching, snap.Status)
	assert.NotNil(t, snap.Payload, "stale read still serves the cached snapshot")
	waitFor(t, func() bool { return calls.Load() == 2 }, "stale refetch")
}

func TestPatchLocal_PreservesFreshness(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	defer c.Close()

	c.Write(MissionsKey, []types.Mission{{ID: "m1", Spots: 10, SpotsLeft: 3}})

	applied := c.PatchLocal(MissionsKey, func(old any) any {
		missions := old.([]types.Mission)
		out := make([]types.Mission, len(missions))
		copy(out, missions)
		out[0].SpotsLeft--
		return out
	})
	require.True(t, applied)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	}
	snap := c.Read(context.Background(), missionsQuery(MissionsKey, fetch))
	assert.Equal(t, StatusIdle, snap.Status, "patch must not mark the entry stale")
	assert.EqualValues(t, 0, calls.Load())
	assert.Equal(t, 2, snap.Payload.([]types.Mission)[0].SpotsLeft)
}

func TestPatchLocal_MissingKeyIsNoop(t *testing.T) {
	c := New()
	defer c.Close()

	applied := c.PatchLocal("missing", func(old any) any { return old })
	assert.False(t, applied)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	c := New()
	defer c.Close()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return []types.Mission{{ID: "m1"}}, nil
	}

	c.Read(context.Background(), missionsQuery(MissionsKey, fetch))
	waitFor(t, func() bool { return calls.Load() == 1 }, "first fetch")

	c.Invalidate(MissionsKey)
	snap := c.Read(context.Background(), missionsQuery(MissionsKey, fetch))
	assert.Equal(t, StatusFetching, snap.Status)
	waitFor(t, func() bool { return calls.Load() == 2 }, "refetch after invalidation")
}

func TestFetchFailure_RetriesThenSurfacesError(t *testing.T) {
	c := New(WithBackoff(time.Millisecond, 5*time.Millisecond))
	defer c.Close()

	wantErr := errors.New("backend down")
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, wantErr
	}
	q := missionsQuery(MissionsKey, fetch)

	c.Read(context.Background(), q)
	waitFor(t, func() bool {
		return c.Read(context.Background(), q).Status == StatusError
	}, "error status after retries")

	// First attempt plus two retries
	assert.EqualValues(t, 3, calls.Load())

	snap := c.Read(context.Background(), q)
	assert.Equal(t, StatusError, snap.Status)
	assert.ErrorIs(t, snap.Err, wantErr)

	// Failed entries do not loop; reads keep surfacing the error
	assert.EqualValues(t, 3, calls.Load())

	// Manual retry path: invalidate, then read refetches
	c.Invalidate(MissionsKey)
	c.Read(context.Background(), q)
	waitFor(t, func() bool { return calls.Load() > 3 }, "refetch after manual retry")
}

func TestFetchRetry_RecoversOnLaterAttempt(t *testing.T) {
	c := New(WithBackoff(time.Millisecond, 5*time.Millisecond))
	defer c.Close()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("flaky")
		}
		return []types.Mission{{ID: "m1"}}, nil
	}
	q := missionsQuery(MissionsKey, fetch)

	c.Read(context.Background(), q)
	waitFor(t, func() bool {
		return c.Read(context.Background(), q).Status == StatusIdle
	}, "recovery on third attempt")
	assert.EqualValues(t, 3, calls.Load())
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	c := New()
	defer c.Close()

	gate := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		<-gate
		return []types.Mission{{ID: "from-network"}}, nil
	}

	c.Read(context.Background(), missionsQuery(MissionsKey, fetch))

	// Overwrite while the fetch is still in flight
	c.Write(MissionsKey, []types.Mission{{ID: "local-write"}})
	close(gate)

	// The fetch result must be dropped in favor of the newer write
	time.Sleep(50 * time.Millisecond)
	p, ok := c.Peek(MissionsKey)
	require.True(t, ok)
	assert.Equal(t, "local-write", p.([]types.Mission)[0].ID)
}

func TestEviction_DropsEntriesPastRetention(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	defer c.Close()

	c.Write(MissionsKey, []types.Mission{{ID: "m1"}})

	clock.Advance(5 * time.Minute)
	c.evictExpired()
	_, ok := c.Peek(MissionsKey)
	assert.True(t, ok, "entry inside retention window must survive")

	clock.Advance(10 * time.Minute)
	c.evictExpired()
	_, ok = c.Peek(MissionsKey)
	assert.False(t, ok, "entry past retention window must be evicted")
}
