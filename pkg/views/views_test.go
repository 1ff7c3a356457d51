package views

import (
	"testing"
	"time"

	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMissions() []types.Mission {
	return []types.Mission{
		{ID: "m1", Title: "Nettoyage de plage", Category: types.CategoryBeach, City: "Marseille", Description: "Ramassage de déchets"},
		{ID: "m2", Title: "Plantation d'arbres", Category: types.CategoryForest, City: "Grenoble", Description: "Reboisement en forêt"},
		{ID: "m3", Title: "Collecte de déchets", Category: types.CategoryWaste, City: "Plage-sur-Mer", Description: "Tri sélectif"},
		{ID: "m4", Title: "Atelier pédagogique", Category: types.CategoryBeach, City: "Nice", Description: "Sensibilisation sur la plage"},
	}
}

func ids(missions []types.Mission) []string {
	out := make([]string, len(missions))
	for i, m := range missions {
		out[i] = m.ID
	}
	return out
}

func TestFilterMissions_AllAndEmptySearchIsIdentity(t *testing.T) {
	missions := sampleMissions()
	got := FilterMissions(missions, types.CategoryAll, "")
	assert.Equal(t, ids(missions), ids(got), "must keep all missions in original relative order")
}

func TestFilterMissions_CategoryExactMatch(t *testing.T) {
	got := FilterMissions(sampleMissions(), types.CategoryBeach, "")
	assert.Equal(t, []string{"m1", "m4"}, ids(got))
}

func TestFilterMissions_SearchOverTitleCityDescription(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"title match", "nettoyage", []string{"m1"}},
		{"city match", "grenoble", []string{"m2"}},
		{"description match", "tri sélectif", []string{"m3"}},
		{"case insensitive", "PLAGE", []string{"m1", "m3", "m4"}},
		{"trimmed input", "  plage  ", []string{"m1", "m3", "m4"}},
		{"no match", "montagne", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterMissions(sampleMissions(), types.CategoryAll, tt.search)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterMissions_CategoryAndSearchCombined(t *testing.T) {
	// Only beach missions whose text contains "plage"
	got := FilterMissions(sampleMissions(), types.CategoryBeach, "plage")
	assert.Equal(t, []string{"m1", "m4"}, ids(got))
}

func TestPartitionByTime_StrictlyBeforeIsPast(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	enrolled := []types.Mission{
		{ID: "past", Date: "2026-05-01T10:00:00Z"},
		{ID: "future", Date: "2026-07-01T10:00:00Z"},
	}

	p := PartitionByTime(enrolled, now)
	require.Len(t, p.Past, 1)
	require.Len(t, p.Upcoming, 1)
	assert.Equal(t, "past", p.Past[0].ID)
	assert.Equal(t, "future", p.Upcoming[0].ID)
}

func TestPartitionByTime_FullTimestampGranularity(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	enrolled := []types.Mission{
		{ID: "same-day-morning", Date: "2026-06-01T09:00:00Z"},
		{ID: "same-day-evening", Date: "2026-06-01T18:00:00Z"},
		{ID: "exactly-now", Date: "2026-06-01T12:00:00Z"},
	}

	p := PartitionByTime(enrolled, now)
	assert.Equal(t, []string{"same-day-morning"}, ids(p.Past))
	// A mission starting exactly at now is not strictly before it
	assert.Equal(t, []string{"same-day-evening", "exactly-now"}, ids(p.Upcoming))
}

func TestPartitionByTime_DateOnlyValues(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	enrolled := []types.Mission{
		{ID: "old", Date: "2026-05-01"},
		{ID: "new", Date: "2026-07-01"},
	}

	p := PartitionByTime(enrolled, now)
	assert.Equal(t, []string{"old"}, ids(p.Past))
	assert.Equal(t, []string{"new"}, ids(p.Upcoming))
}

func TestEnrolledMissions_JoinsConfirmedOnly(t *testing.T) {
	missions := sampleMissions()
	parts := []types.Participation{
		{ID: "p1", MissionID: "m2", Status: types.ParticipationConfirmed},
		{ID: "p2", MissionID: "m1", Status: types.ParticipationCancelled},
		{ID: "p3", MissionID: "m4", Status: types.ParticipationConfirmed},
		{ID: "p4", MissionID: "ghost", Status: types.ParticipationConfirmed},
	}

	got := EnrolledMissions(parts, missions)
	assert.Equal(t, []string{"m2", "m4"}, ids(got))
}
