/*
Package cache implements the keyed query cache at the center of the
EcoAction client: a process-lifetime store of fetched collections with
freshness metadata and in-flight request de-duplication.

# State Machine

Each key moves through:

	Empty -> Fetching -> Fresh -> Stale -> Fetching -> ...

Fresh and Stale are distinguished purely by elapsed time against the key's
staleness window; there is no separate event. An explicit Invalidate marks
the entry stale immediately.

# Operations

  - Read: returns the current snapshot (possibly nil payload) plus a status
    of idle, fetching, or error. Triggers a background fetch when the entry
    is empty, stale, or invalidated, unless one is already in flight for
    that key: concurrent reads share the one outstanding fetch.
  - Write: replaces the payload and resets freshness.
  - PatchLocal: applies a pure transformation without a network round trip;
    freshness is unchanged. Used by the mutation coordinator for optimistic
    updates.
  - Invalidate: forces the next read to refetch. Also the manual-retry path
    after a fetch error.
  - Peek: reads the payload without touching freshness or fetching.

# Retry and Failure

Read-path fetches retry transparently: up to 2 extra attempts with
exponential backoff (base 1s, doubling, capped at 10s). Only after retries
exhaust does the entry surface status error, carrying the last failure; it
then stays in error until invalidated, so views can offer a manual retry
without the cache looping on a dead backend. Mutating calls never pass
through this package and are never retried.

# Consistency

Writes, patches, and invalidations bump an entry version. A fetch that
completes against an older version is discarded: a superseded fetch is
abandoned, not actively interrupted. Updaters passed to PatchLocal must
build new payloads rather than mutate in place, since earlier snapshot
readers may still hold the previous value. The eviction janitor drops
entries unread past their retention window; the next read starts from
Empty.

# Lifecycle

The cache is an explicit object: created at process start, passed by
reference to every component that needs it, and torn down with Close.
Cached collections never persist across sessions.
*/
package cache
