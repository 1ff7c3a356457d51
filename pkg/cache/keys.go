package cache

// Cache keys for the three read paths. Scoped keys embed the scoping id so
// each user's participations and each mission detail get their own entry.
const MissionsKey = "missions"

// MissionKey returns the cache key for a single mission's detail entry.
func MissionKey(missionID string) string {
	return "missions/" + missionID
}

// ParticipationsKey returns the cache key for a user's confirmed
// participations.
func ParticipationsKey(userID string) string {
	return "participations/" + userID
}
