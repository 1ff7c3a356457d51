package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecoaction/ecoaction/pkg/gateway"
	"github.com/ecoaction/ecoaction/pkg/session"
	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecoaction/ecoaction/pkg/log"
)

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. The two cases are deliberately not
	// distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned by Register when a user with the given
	// email already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// Service authenticates users against the backend and maintains the
// local session.
type Service struct {
	gw       *gateway.Client
	sessions *session.Store
	logger   zerolog.Logger
}

// New creates an authentication service.
func New(gw *gateway.Client, sessions *session.Store) *Service {
	return &Service{
		gw:       gw,
		sessions: sessions,
		logger:   log.WithComponent("auth"),
	}
}

// Login verifies the credentials and, on success, stores the session.
func (s *Service) Login(ctx context.Context, email, password string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := s.gw.FindUsersByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}

	user := users[0]
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.logger.Warn().Str("user_id", user.ID).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	// The backend has no auth endpoint; the token is an opaque local
	// session marker.
	token := "session-" + uuid.NewString()
	user.Password = ""
	if err := s.sessions.Save(user, token); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &user, nil
}

// Register creates a new account. It does not log the user in; callers
// follow up with Login.
func (s *Service) Register(ctx context.Context, name, email, password string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.gw.FindUsersByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.gw.CreateUser(ctx, types.User{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Password:  string(hash),
		Avatar:    "https://i.pravatar.cc/150?u=" + email,
		Bio:       "Nouveau bénévole EcoAction",
		Stats:     types.UserStats{Impact: "0 kg de déchets collectés"},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	created.Password = ""
	return created, nil
}

// Logout clears the stored session. Logging out twice is a no-op.
func (s *Service) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info().Msg("user logged out")
	return nil
}
