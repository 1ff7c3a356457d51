package gateway

import (
	"context"
	"net/url"
	"strings"

	"github.com/ecoaction/ecoaction/pkg/types"
)

// ListMissions fetches missions, optionally narrowed by category and by the
// backend's free-text q filter. CategoryAll and empty search fetch everything.
func (c *Client) ListMissions(ctx context.Context, category types.Category, search string) ([]types.Mission, error) {
	filters := url.Values{}
	if category != "" && category != types.CategoryAll {
		filters.Set("category", string(category))
	}
	if s := strings.TrimSpace(search); s != "" {
		filters.Set("q", s)
	}

	var missions []types.Mission
	if err := c.List(ctx, ResourceMissions, filters, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// GetMission fetches a single mission by id.
func (c *Client) GetMission(ctx context.Context, id string) (*types.Mission, error) {
	var mission types.Mission
	if err := c.Get(ctx, ResourceMissions, id, &mission); err != nil {
		return nil, err
	}
	return &mission, nil
}

// UpdateMissionSpots pushes a reconciled spotsLeft value to the backend.
func (c *Client) UpdateMissionSpots(ctx context.Context, missionID string, spotsLeft int) (*types.Mission, error) {
	var mission types.Mission
	err := c.Patch(ctx, ResourceMissions, missionID, map[string]int{"spotsLeft": spotsLeft}, &mission)
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// ListUserParticipations fetches a user's confirmed participations.
func (c *Client) ListUserParticipations(ctx context.Context, userID string) ([]types.Participation, error) {
	filters := url.Values{}
	filters.Set("userId", userID)
	filters.Set("status", string(types.ParticipationConfirmed))

	var participations []types.Participation
	if err := c.List(ctx, ResourceParticipations, filters, &participations); err != nil {
		return nil, err
	}
	return participations, nil
}

// ListMissionParticipations fetches the confirmed participations of a mission.
func (c *Client) ListMissionParticipations(ctx context.Context, missionID string) ([]types.Participation, error) {
	filters := url.Values{}
	filters.Set("missionId", missionID)
	filters.Set("status", string(types.ParticipationConfirmed))

	var participations []types.Participation
	if err := c.List(ctx, ResourceParticipations, filters, &participations); err != nil {
		return nil, err
	}
	return participations, nil
}

// CreateParticipation stores a new confirmed participation.
func (c *Client) CreateParticipation(ctx context.Context, p types.Participation) (*types.Participation, error) {
	var created types.Participation
	if err := c.Create(ctx, ResourceParticipations, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelParticipation marks a participation cancelled.
func (c *Client) CancelParticipation(ctx context.Context, participationID string) (*types.Participation, error) {
	var updated types.Participation
	partial := map[string]string{"status": string(types.ParticipationCancelled)}
	if err := c.Patch(ctx, ResourceParticipations, participationID, partial, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindUsersByEmail fetches users matching an exact email.
func (c *Client) FindUsersByEmail(ctx context.Context, email string) ([]types.User, error) {
	filters := url.Values{}
	filters.Set("email", email)

	var users []types.User
	if err := c.List(ctx, ResourceUsers, filters, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser stores a new user.
func (c *Client) CreateUser(ctx context.Context, u types.User) (*types.User, error) {
	var created types.User
	if err := c.Create(ctx, ResourceUsers, u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*types.User, error) {
	var user types.User
	if err := c.Get(ctx, ResourceUsers, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
