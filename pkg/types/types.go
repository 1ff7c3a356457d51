package types

import (
	"time"
)

// Category classifies a mission. CategoryAll is a filter value only and
// never appears on a stored mission.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryBeach     Category = "beach"
	CategoryForest    Category = "forest"
	CategoryWaste     Category = "waste"
	CategoryEducation Category = "education"
)

// Valid reports whether c is a storable mission category.
func (c Category) Valid() bool {
	switch c {
	case CategoryBeach, CategoryForest, CategoryWaste, CategoryEducation:
		return true
	}
	return false
}

// Mission represents a volunteer event with a fixed date and capacity.
//
// Descriptive fields are immutable after creation. Spots is set at creation;
// SpotsLeft moves only through enroll (-1, floored at 0) and cancel
// (+1, capped at Spots), reconciled against the backend's value.
type Mission struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Category        Category `json:"category"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Location        string   `json:"location"`
	City            string   `json:"city"`
	Spots           int      `json:"spots"`
	SpotsLeft       int      `json:"spotsLeft"`
	ImageURL        string   `json:"imageUrl"`
	Organizer       string   `json:"organizer"`
	Duration        string   `json:"duration"`
	Requirements    []string `json:"requirements"`
	Tags            []string `json:"tags"`
	CreatedAt       string   `json:"createdAt"`
}

// StartTime parses the mission date. Missions carry dates as RFC 3339
// strings; a date-only value is interpreted at midnight UTC.
func (m *Mission) StartTime() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, m.Date); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", m.Date)
}

// ParticipationStatus is the lifecycle state of a participation.
type ParticipationStatus string

const (
	ParticipationConfirmed ParticipationStatus = "confirmed"
	ParticipationCancelled ParticipationStatus = "cancelled"
)

// Participation links a user to a mission.
//
// At most one confirmed participation may exist per (UserID, MissionID)
// pair at any time.
type Participation struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	MissionID string              `json:"missionId"`
	Status    ParticipationStatus `json:"status"`
	CreatedAt string              `json:"createdAt"`
}

// UserStats aggregates a user's participation history for display.
type UserStats struct {
	MissionsCompleted int    `json:"missionsCompleted"`
	UpcomingMissions  int    `json:"upcomingMissions"`
	TotalHours        int    `json:"totalHours"`
	Impact            string `json:"impact"`
}

// User is a registered volunteer.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"` // bcrypt hash, never logged
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio"`
	Stats     UserStats `json:"stats"`
	CreatedAt string    `json:"createdAt"`
}
