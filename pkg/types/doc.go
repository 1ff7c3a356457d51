/*
Package types defines the shared data model for the EcoAction client core.

The three backend collections map onto Mission, Participation, and User.
All structs carry JSON tags matching the backend's field names so they can
be marshalled directly onto the wire by pkg/gateway and pkg/mockapi.

Two invariants hold across the whole client:

  - For every mission m: 0 <= m.SpotsLeft <= m.Spots. SpotsLeft only moves
    through the mutation coordinator (enroll/cancel) and reconciliation
    against the backend's value.
  - At most one confirmed Participation exists per (UserID, MissionID) pair,
    enforced by the coordinator's enroll guard and by querying the backend
    with status=confirmed.

# Integration Points

This package is imported by:

  - pkg/gateway: typed request/response bodies
  - pkg/cache: cached collection payloads
  - pkg/coordinator: optimistic mutation of missions and participations
  - pkg/views: derived list building
  - pkg/mockapi: the mock backend's stored records
*/
package types
