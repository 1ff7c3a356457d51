package views

import (
	"strings"
	"time"

	"github.com/ecoaction/ecoaction/pkg/types"
)

// FilterMissions narrows a mission collection by category and free-text
// search, preserving the original relative order. CategoryAll passes every
// category; any other value keeps exact matches only. The search text is
// trimmed and matched case-insensitively as a substring of title, city, or
// description; empty search keeps all. Pure function, no time dependency:
// debouncing the search input is the caller's job.
func FilterMissions(missions []types.Mission, category types.Category, search string) []types.Mission {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]types.Mission, 0, len(missions))
	for _, m := range missions {
		if category != "" && category != types.CategoryAll && m.Category != category {
			continue
		}
		if needle != "" && !matches(m, needle) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matches(m types.Mission, needle string) bool {
	return strings.Contains(strings.ToLower(m.Title), needle) ||
		strings.Contains(strings.ToLower(m.City), needle) ||
		strings.Contains(strings.ToLower(m.Description), needle)
}

// Partition splits enrolled missions around a point in time.
type Partition struct {
	Upcoming []types.Mission
	Past     []types.Mission
}

// PartitionByTime splits missions into upcoming and past relative to now.
// A mission is past iff its date is strictly before now, at full timestamp
// granularity. Missions with unparseable dates are kept in Upcoming so they
// stay visible rather than silently disappearing into history.
func PartitionByTime(enrolled []types.Mission, now time.Time) Partition {
	var p Partition
	for _, m := range enrolled {
		start, err := m.StartTime()
		if err == nil && start.Before(now) {
			p.Past = append(p.Past, m)
			continue
		}
		p.Upcoming = append(p.Upcoming, m)
	}
	return p
}

// EnrolledMissions joins a user's confirmed participations with the mission
// collection, preserving participation order. Participations whose mission
// is not in the collection are skipped.
func EnrolledMissions(participations []types.Participation, missions []types.Mission) []types.Mission {
	byID := make(map[string]types.Mission, len(missions))
	for _, m := range missions {
		byID[m.ID] = m
	}

	out := make([]types.Mission, 0, len(participations))
	for _, p := range participations {
		if p.Status != types.ParticipationConfirmed {
			continue
		}
		if m, ok := byID[p.MissionID]; ok {
			out = append(out, m)
		}
	}
	return out
}
