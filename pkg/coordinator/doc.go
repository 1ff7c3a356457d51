/*
Package coordinator orchestrates mission enrollment and cancellation with
optimistic cache updates.

Both operations follow the same four-phase protocol:

 1. Guard. An enroll for a mission the user is already confirmed on is an
    idempotent no-op. A second mutation for the same (user, mission) pair
    while one is pending is rejected synchronously with ErrConflict, never
    queued; within a pair, effects are therefore observed in issue order.
 2. Optimistic phase. The current missions and participations payloads are
    snapshotted for rollback, then patched locally: SpotsLeft moves by one
    (floored at 0, capped at Spots) and a provisional participation with a
    locally generated id is appended or the cancelled one removed. The UI
    sees the outcome immediately.
 3. Network phase. One backend call (create participation, or patch it to
    cancelled). Mutations are never retried. On failure both snapshots are
    restored, both or neither, and the error surfaces to the caller.
 4. Reconciliation phase. On success the cached SpotsLeft is pushed to the
    backend and both cache entries are invalidated so the next read
    re-syncs with the server's authoritative state.

The backend has no atomic decrement, so reconciliation pushes the
client-computed value (last writer wins across users); the post-mutation
invalidation bounds how long any divergence is visible.
*/
package coordinator
