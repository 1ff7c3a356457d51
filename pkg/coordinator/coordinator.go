package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ecoaction/ecoaction/pkg/cache"
	"github.com/ecoaction/ecoaction/pkg/events"
	"github.com/ecoaction/ecoaction/pkg/gateway"
	"github.com/ecoaction/ecoaction/pkg/log"
	"github.com/ecoaction/ecoaction/pkg/metrics"
	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrConflict is returned when an enroll or cancel is already in flight for
// the same (user, mission) pair. The caller must wait for the prior
// mutation's outcome; requests are rejected, never queued.
var ErrConflict = errors.New("mutation already in flight for this user and mission")

// Coordinator orchestrates enroll and cancel: optimistic local mutation of
// the cache, the server call, and reconciliation or rollback. It is the only
// writer of optimistic deltas.
type Coordinator struct {
	gw     *gateway.Client
	cache  *cache.Cache
	broker *events.Broker
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{} // keyed by userID+"/"+missionID
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBroker publishes mutation outcomes to the given broker.
func WithBroker(b *events.Broker) Option {
	return func(c *Coordinator) { c.broker = b }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a coordinator over the given gateway and cache.
func New(gw *gateway.Client, qc *cache.Cache, opts ...Option) *Coordinator {
	c := &Coordinator{
		gw:       gw,
		cache:    qc,
		logger:   log.WithComponent("coordinator"),
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enroll registers userID on missionID.
//
// The protocol has four phases: guard (already-enrolled is an idempotent
// no-op, a pending mutation for the pair is ErrConflict), optimistic cache
// patch with snapshots for rollback, the backend create, and on success a
// reconciliation push of SpotsLeft plus invalidation of both entries. On
// failure both snapshots are restored and the error is returned; no partial
// state survives.
func (c *Coordinator) Enroll(ctx context.Context, userID, missionID string) (*types.Participation, error) {
	release, err := c.acquire(userID, missionID)
	if err != nil {
		return nil, err
	}
	defer release()

	partsKey := cache.ParticipationsKey(userID)

	// Guard: already confirmed locally
	if existing := c.findConfirmed(partsKey, missionID); existing != nil {
		c.logger.Debug().
			Str("user_id", userID).
			Str("mission_id", missionID).
			Msg("already enrolled, nothing to do")
		return existing, nil
	}

	// Optimistic phase
	missionsSnap, missionsPatched := c.patchMissions(missionID, -1)
	partsSnap, partsPatched := c.appendProvisional(partsKey, userID, missionID)

	rollback := func() {
		if missionsPatched {
			c.cache.Write(cache.MissionsKey, missionsSnap)
		}
		if partsPatched {
			c.cache.Write(partsKey, partsSnap)
		}
	}

	// Network phase
	created, err := c.gw.CreateParticipation(ctx, types.Participation{
		UserID:    userID,
		MissionID: missionID,
		Status:    types.ParticipationConfirmed,
		CreatedAt: c.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		rollback()
		metrics.MutationFailuresTotal.WithLabelValues("enroll").Inc()
		c.logger.Error().Err(err).
			Str("user_id", userID).
			Str("mission_id", missionID).
			Msg("enroll failed, cache rolled back")
		c.publish(events.EventRolledBack, missionID, userID)
		return nil, err
	}

	// Reconciliation phase
	c.reconcileSpots(ctx, missionID)
	c.invalidate(missionID, partsKey)
	metrics.EnrollmentsTotal.Inc()
	c.publish(events.EventEnrolled, missionID, userID)
	return created, nil
}

// Cancel withdraws a confirmed participation. Mirrors Enroll: optimistic
// removal plus SpotsLeft increment (capped at Spots), backend patch to
// cancelled, rollback of both snapshots on failure, reconciliation and
// invalidation on success.
func (c *Coordinator) Cancel(ctx context.Context, participationID, missionID, userID string) error {
	release, err := c.acquire(userID, missionID)
	if err != nil {
		return err
	}
	defer release()

	partsKey := cache.ParticipationsKey(userID)

	// Optimistic phase
	missionsSnap, missionsPatched := c.patchMissions(missionID, +1)
	partsSnap, partsPatched := c.removeLocal(partsKey, missionID)

	rollback := func() {
		if missionsPatched {
			c.cache.Write(cache.MissionsKey, missionsSnap)
		}
		if partsPatched {
			c.cache.Write(partsKey, partsSnap)
		}
	}

	// Network phase
	if _, err := c.gw.CancelParticipation(ctx, participationID); err != nil {
		rollback()
		metrics.MutationFailuresTotal.WithLabelValues("cancel").Inc()
		c.logger.Error().Err(err).
			Str("participation_id", participationID).
			Str("mission_id", missionID).
			Msg("cancel failed, cache rolled back")
		c.publish(events.EventRolledBack, missionID, userID)
		return err
	}

	// Reconciliation phase
	c.reconcileSpots(ctx, missionID)
	c.invalidate(missionID, partsKey)
	metrics.CancellationsTotal.Inc()
	c.publish(events.EventCancelled, missionID, userID)
	return nil
}

// acquire takes the per-(user, mission) mutation guard. A second request for
// the same pair while one is pending fails with ErrConflict immediately.
func (c *Coordinator) acquire(userID, missionID string) (func(), error) {
	pair := userID + "/" + missionID

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, pending := c.inFlight[pair]; pending {
		metrics.MutationConflictsTotal.Inc()
		return nil, ErrConflict
	}
	c.inFlight[pair] = struct{}{}

	return func() {
		c.mu.Lock()
		delete(c.inFlight, pair)
		c.mu.Unlock()
	}, nil
}

// findConfirmed returns the locally cached confirmed participation for
// missionID, if any.
func (c *Coordinator) findConfirmed(partsKey, missionID string) *types.Participation {
	payload, ok := c.cache.Peek(partsKey)
	if !ok {
		return nil
	}
	parts, ok := payload.([]types.Participation)
	if !ok {
		return nil
	}
	for i := range parts {
		if parts[i].MissionID == missionID && parts[i].Status == types.ParticipationConfirmed {
			return &parts[i]
		}
	}
	return nil
}

// patchMissions applies delta to the target mission's SpotsLeft in the
// cached collection, floored at 0 and capped at Spots. Returns the
// pre-mutation payload for rollback and whether a patch was applied.
func (c *Coordinator) patchMissions(missionID string, delta int) (any, bool) {
	snap, ok := c.cache.Peek(cache.MissionsKey)
	if !ok {
		return nil, false
	}
	patched := c.cache.PatchLocal(cache.MissionsKey, func(old any) any {
		missions, ok := old.([]types.Mission)
		if !ok {
			return old
		}
		out := make([]types.Mission, len(missions))
		copy(out, missions)
		for i := range out {
			if out[i].ID != missionID {
				continue
			}
			left := out[i].SpotsLeft + delta
			if left < 0 {
				left = 0
			}
			if left > out[i].Spots {
				left = out[i].Spots
			}
			out[i].SpotsLeft = left
		}
		return out
	})
	return snap, patched
}

// appendProvisional adds a locally generated confirmed participation to the
// user's cached list.
func (c *Coordinator) appendProvisional(partsKey, userID, missionID string) (any, bool) {
	snap, ok := c.cache.Peek(partsKey)
	if !ok {
		return nil, false
	}
	provisional := types.Participation{
		ID:        "optimistic_" + uuid.NewString(),
		UserID:    userID,
		MissionID: missionID,
		Status:    types.ParticipationConfirmed,
		CreatedAt: c.now().UTC().Format(time.RFC3339),
	}
	patched := c.cache.PatchLocal(partsKey, func(old any) any {
		parts, ok := old.([]types.Participation)
		if !ok {
			return old
		}
		out := make([]types.Participation, len(parts), len(parts)+1)
		copy(out, parts)
		return append(out, provisional)
	})
	return snap, patched
}

// removeLocal drops the participation for missionID from the user's cached
// list.
func (c *Coordinator) removeLocal(partsKey, missionID string) (any, bool) {
	snap, ok := c.cache.Peek(partsKey)
	if !ok {
		return nil, false
	}
	patched := c.cache.PatchLocal(partsKey, func(old any) any {
		parts, ok := old.([]types.Participation)
		if !ok {
			return old
		}
		out := make([]types.Participation, 0, len(parts))
		for _, p := range parts {
			if p.MissionID != missionID {
				out = append(out, p)
			}
		}
		return out
	})
	return snap, patched
}

// reconcileSpots pushes the locally cached SpotsLeft to the backend. The
// backend has no atomic decrement, so the client-computed value is
// authoritative until the post-invalidation refetch re-syncs. A failure here
// is logged but not fatal: the mutation itself already succeeded and the
// invalidation below re-syncs the client either way.
func (c *Coordinator) reconcileSpots(ctx context.Context, missionID string) {
	payload, ok := c.cache.Peek(cache.MissionsKey)
	if !ok {
		return
	}
	missions, ok := payload.([]types.Mission)
	if !ok {
		return
	}
	for _, m := range missions {
		if m.ID != missionID {
			continue
		}
		left := m.SpotsLeft
		if left < 0 {
			left = 0
		}
		if _, err := c.gw.UpdateMissionSpots(ctx, missionID, left); err != nil {
			c.logger.Warn().Err(err).
				Str("mission_id", missionID).
				Msg("failed to push reconciled spots, refetch will re-sync")
		}
		return
	}
}

// invalidate marks both affected entries stale so the next read re-syncs
// with the server's authoritative state.
func (c *Coordinator) invalidate(missionID, partsKey string) {
	c.cache.Invalidate(cache.MissionsKey)
	c.cache.Invalidate(cache.MissionKey(missionID))
	c.cache.Invalidate(partsKey)
}

func (c *Coordinator) publish(eventType events.EventType, missionID, userID string) {
	if c.broker == nil {
		return
	}
	c.broker.Publish(&events.Event{
		Type: eventType,
		Key:  cache.MissionsKey,
		Metadata: map[string]string{
			"mission_id": missionID,
			"user_id":    userID,
		},
	})
}
