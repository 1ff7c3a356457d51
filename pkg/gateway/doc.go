/*
Package gateway provides a typed request/response wrapper around the
EcoAction REST backend.

The backend exposes three flat collections (users, missions,
participations) with json-server semantics: equality filters on indexed
fields and a free-text q filter on missions. The gateway is the only path
in the client that reaches the network.

# Error Normalization

Every failure is normalized into a uniform shape:

  - transport failure or elapsed per-call timeout: *NetworkError, with
    Timeout distinguishing the two
  - HTTP 404: ErrNotFound (check with IsNotFound)
  - any other non-2xx: *ServerError{Status, Message}, Message taken from
    the response body when present

The gateway performs no retries. Read-path retry policy lives in
pkg/cache; mutation failures surface immediately to pkg/coordinator.

# Usage

	gw := gateway.New("http://localhost:3001",
		gateway.WithTimeout(10*time.Second))

	missions, err := gw.ListMissions(ctx, types.CategoryBeach, "plage")
	if gateway.IsTimeout(err) {
		// backend too slow, caller decides what to do
	}

# Integration Points

This package integrates with:

  - pkg/cache: fetch functions for cached collections
  - pkg/coordinator: create/patch calls for enroll and cancel
  - pkg/auth: user lookup and creation
*/
package gateway
