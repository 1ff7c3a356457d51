package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ecoaction/ecoaction/pkg/events"
	"github.com/ecoaction/ecoaction/pkg/log"
	"github.com/ecoaction/ecoaction/pkg/metrics"
	"github.com/rs/zerolog"
)

// Status describes what a Read observed for a key.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusError    Status = "error"
)

// Default freshness windows, matching the read paths they serve.
const (
	DefaultStaleAfter = 5 * time.Minute
	DefaultRetainFor  = 10 * time.Minute

	// DefaultRetries is the number of extra fetch attempts after the first
	// failure on the read path. Mutating calls are never retried.
	DefaultRetries = 2

	backoffBase = time.Second
	backoffCap  = 10 * time.Second

	janitorInterval = 30 * time.Second
)

// FetchFunc loads a key's payload from the backend.
type FetchFunc func(ctx context.Context) (any, error)

// Query names a cached collection and how to (re)load it.
// Zero windows and retries take the package defaults.
type Query struct {
	Key        string
	Fetch      FetchFunc
	StaleAfter time.Duration
	RetainFor  time.Duration
	Retries    int
}

// Snapshot is the immediate result of a Read: the current payload (possibly
// nil if the key has never loaded) plus the fetch status. Callers must treat
// the payload as read-only; all mutation goes through Write and PatchLocal.
type Snapshot struct {
	Payload   any
	Status    Status
	Err       error
	FetchedAt time.Time
}

// entry is the per-key cache state.
type entry struct {
	payload    any
	fetchedAt  time.Time // zero until first successful fetch
	lastRead   time.Time
	staleAfter time.Duration
	retainFor  time.Duration
	fetching   bool
	invalid    bool // explicit invalidation, forces refetch on next read
	lastErr    error
	version    uint64 // bumped on Write/PatchLocal/Invalidate; stale fetch results are discarded
}

// Cache is a keyed store of fetched collections with freshness metadata and
// in-flight de-duplication. It is created explicitly at process start and
// torn down with Close; nothing in this package is a global.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	broker *events.Broker
	logger zerolog.Logger
	now    func() time.Time

	backoffBase time.Duration
	backoffCap  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
}

// Option configures a Cache.
type Option func(*Cache)

// WithBroker publishes entry lifecycle events to the given broker.
func WithBroker(b *events.Broker) Option {
	return func(c *Cache) { c.broker = b }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithBackoff overrides the retry backoff schedule, for tests.
func WithBackoff(base, cap time.Duration) Option {
	return func(c *Cache) {
		c.backoffBase = base
		c.backoffCap = cap
	}
}

// New creates an empty cache and starts its eviction janitor.
func New(opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		entries:     make(map[string]*entry),
		logger:      log.WithComponent("cache"),
		now:         time.Now,
		backoffBase: backoffBase,
		backoffCap:  backoffCap,
		ctx:         ctx,
		cancel:      cancel,
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.janitor()
	return c
}

// Close stops the janitor and abandons any in-flight fetches.
func (c *Cache) Close() {
	c.cancel()
	close(c.stopCh)
}

// Read returns the current snapshot for q.Key and, when the entry is empty,
// stale, or explicitly invalidated, triggers a background refetch. Concurrent
// reads for the same key share one in-flight fetch; duplicate network calls
// are never issued.
func (c *Cache) Read(ctx context.Context, q Query) Snapshot {
	q = withDefaults(q)
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[q.Key]
	if !ok {
		e = &entry{staleAfter: q.StaleAfter, retainFor: q.RetainFor}
		c.entries[q.Key] = e
	}
	e.lastRead = now
	e.staleAfter = q.StaleAfter
	e.retainFor = q.RetainFor

	outcome := "fresh"
	switch {
	case e.fetchedAt.IsZero():
		outcome = "empty"
	case e.invalid || now.Sub(e.fetchedAt) >= e.staleAfter:
		outcome = "stale"
	}
	metrics.CacheReadsTotal.WithLabelValues(q.Key, outcome).Inc()

	// A failed entry stays in error until explicitly invalidated; automatic
	// retries were already spent inside the fetch.
	needsFetch := !e.fetching && (e.invalid || (e.lastErr == nil && outcome != "fresh"))
	if needsFetch {
		e.fetching = true
		version := e.version
		go c.fetch(q, version)
	}

	snap := Snapshot{Payload: e.payload, FetchedAt: e.fetchedAt}
	switch {
	case e.fetching:
		snap.Status = StatusFetching
	case e.lastErr != nil:
		snap.Status = StatusError
		snap.Err = e.lastErr
	default:
		snap.Status = StatusIdle
	}
	c.mu.Unlock()
	return snap
}

// Write replaces the cached payload for key, marking it fresh as of now.
func (c *Cache) Write(key string, payload any) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{staleAfter: DefaultStaleAfter, retainFor: DefaultRetainFor}
		c.entries[key] = e
	}
	e.payload = payload
	e.fetchedAt = c.now()
	e.lastRead = e.fetchedAt
	e.invalid = false
	e.lastErr = nil
	e.version++
	c.mu.Unlock()

	c.publish(events.EventEntryUpdated, key)
}

// PatchLocal applies a pure transformation to the cached payload without a
// network round trip. Freshness is unchanged. The updater must build a new
// payload rather than mutate the old one in place; the previous value may
// still be held by snapshot readers. Returns false if the key holds no data.
func (c *Cache) PatchLocal(key string, updater func(any) any) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.payload == nil {
		c.mu.Unlock()
		return false
	}
	e.payload = updater(e.payload)
	e.version++ // supersedes any fetch started before the patch
	c.mu.Unlock()

	c.publish(events.EventEntryUpdated, key)
	return true
}

// Peek returns the cached payload without touching freshness or triggering
// a fetch. Used by the mutation coordinator for snapshots and reconciliation.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.payload == nil {
		return nil, false
	}
	return e.payload, true
}

// Invalidate marks the entry stale immediately; the next Read refetches.
// Also the manual-retry path after a read error.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		e.invalid = true
		e.version++
	}
	c.mu.Unlock()

	if ok {
		c.publish(events.EventEntryInvalidated, key)
	}
}

// fetch runs the network load for one key in the background, retrying
// transient read failures with exponential backoff. The result is discarded
// if the entry was written, patched, or invalidated while the fetch ran.
func (c *Cache) fetch(q Query, startVersion uint64) {
	metrics.CacheFetchesInFlight.Inc()
	metrics.CacheRefetchesTotal.WithLabelValues(q.Key).Inc()
	timer := metrics.NewTimer()
	defer func() {
		metrics.CacheFetchesInFlight.Dec()
		timer.ObserveDurationVec(metrics.FetchDuration, q.Key)
	}()

	var payload any
	var err error
	for attempt := 0; attempt <= q.Retries; attempt++ {
		if attempt > 0 {
			if !c.sleep(c.backoffDelay(attempt - 1)) {
				return // cache closed
			}
			c.logger.Debug().
				Str("key", q.Key).
				Int("attempt", attempt+1).
				Msg("retrying fetch")
		}
		payload, err = q.Fetch(c.ctx)
		if err == nil {
			break
		}
	}

	c.mu.Lock()
	e, ok := c.entries[q.Key]
	if !ok {
		c.mu.Unlock()
		return // evicted while fetching
	}
	e.fetching = false

	if e.version != startVersion {
		c.mu.Unlock()
		c.logger.Debug().Str("key", q.Key).Msg("discarding superseded fetch result")
		return
	}

	if err != nil {
		e.lastErr = err
		e.invalid = false
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("key", q.Key).Msg("fetch failed after retries")
		c.publish(events.EventFetchFailed, q.Key)
		return
	}

	e.payload = payload
	e.fetchedAt = c.now()
	e.invalid = false
	e.lastErr = nil
	c.mu.Unlock()

	c.publish(events.EventEntryUpdated, q.Key)
}

// janitor drops entries unread past their retention window.
func (c *Cache) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) evictExpired() {
	now := c.now()

	c.mu.Lock()
	var evicted []string
	for key, e := range c.entries {
		if e.fetching {
			continue
		}
		if now.Sub(e.lastRead) > e.retainFor {
			delete(c.entries, key)
			evicted = append(evicted, key)
		}
	}
	c.mu.Unlock()

	for _, key := range evicted {
		metrics.CacheEvictionsTotal.Inc()
		c.logger.Debug().Str("key", key).Msg("entry evicted")
		c.publish(events.EventEntryEvicted, key)
	}
}

// sleep waits for d unless the cache is closed first.
func (c *Cache) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Cache) publish(eventType events.EventType, key string) {
	if c.broker == nil {
		return
	}
	c.broker.Publish(&events.Event{Type: eventType, Key: key})
}

func withDefaults(q Query) Query {
	if q.StaleAfter == 0 {
		q.StaleAfter = DefaultStaleAfter
	}
	if q.RetainFor == 0 {
		q.RetainFor = DefaultRetainFor
	}
	if q.Retries == 0 {
		q.Retries = DefaultRetries
	}
	return q
}

// backoffDelay returns the wait before retry n: base doubled per retry,
// capped.
func (c *Cache) backoffDelay(n int) time.Duration {
	d := c.backoffBase << uint(n)
	if d > c.backoffCap {
		return c.backoffCap
	}
	return d
}
