package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ecoaction/ecoaction/pkg/log"
	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server is an in-memory stand-in for the EcoAction backend: three flat
// collections with json-server semantics, equality filters on indexed
// fields, and a free-text q filter on missions. Insertion order is
// preserved on list responses.
type Server struct {
	mu             sync.Mutex
	users          []types.User
	missions       []types.Mission
	participations []types.Participation

	router *mux.Router
	logger zerolog.Logger
}

// New creates an empty mock backend.
func New() *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: log.WithComponent("mockapi"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	s.router.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	s.router.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)

	s.router.HandleFunc("/missions", s.listMissions).Methods(http.MethodGet)
	s.router.HandleFunc("/missions", s.createMission).Methods(http.MethodPost)
	s.router.HandleFunc("/missions/{id}", s.getMission).Methods(http.MethodGet)
	s.router.HandleFunc("/missions/{id}", s.patchMission).Methods(http.MethodPatch)

	s.router.HandleFunc("/participations", s.listParticipations).Methods(http.MethodGet)
	s.router.HandleFunc("/participations", s.createParticipation).Methods(http.MethodPost)
	s.router.HandleFunc("/participations/{id}", s.patchParticipation).Methods(http.MethodPatch)
}

// Handler returns the HTTP handler for the mock backend.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SeedMission adds a mission, generating an id if missing.
func (s *Server) SeedMission(m types.Mission) types.Mission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.missions = append(s.missions, m)
	return m
}

// SeedUser adds a user, generating an id if missing.
func (s *Server) SeedUser(u types.User) types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users = append(s.users, u)
	return u
}

// SeedParticipation adds a participation, generating an id if missing.
func (s *Server) SeedParticipation(p types.Participation) types.Participation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.participations = append(s.participations, p)
	return p
}

// Mission returns a copy of the stored mission, for test assertions.
func (s *Server) Mission(id string) (types.Mission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.missions {
		if m.ID == id {
			return m, true
		}
	}
	return types.Mission{}, false
}

// Participation returns a copy of the stored participation.
func (s *Server) Participation(id string) (types.Participation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participations {
		if p.ID == id {
			return p, true
		}
	}
	return types.Participation{}, false
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	s.mu.Lock()
	out := make([]types.User, 0, len(s.users))
	for _, u := range s.users {
		if email != "" && u.Email != email {
			continue
		}
		out = append(out, u)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var u types.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user body")
		return
	}
	u.ID = uuid.NewString()
	if u.CreatedAt == "" {
		u.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()

	s.logger.Debug().Str("user_id", u.ID).Msg("user created")
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (s *Server) listMissions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	s.mu.Lock()
	out := make([]types.Mission, 0, len(s.missions))
	for _, m := range s.missions {
		if category != "" && string(m.Category) != category {
			continue
		}
		if q != "" && !missionMatches(m, q) {
			continue
		}
		out = append(out, m)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// missionMatches implements the free-text q filter over title, city, and
// description, case-insensitive.
func missionMatches(m types.Mission, q string) bool {
	return strings.Contains(strings.ToLower(m.Title), q) ||
		strings.Contains(strings.ToLower(m.City), q) ||
		strings.Contains(strings.ToLower(m.Description), q)
}

func (s *Server) createMission(w http.ResponseWriter, r *http.Request) {
	var m types.Mission
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid mission body")
		return
	}
	if !m.Category.Valid() {
		writeError(w, http.StatusBadRequest, "invalid mission category")
		return
	}
	m.ID = uuid.NewString()
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if m.SpotsLeft == 0 {
		m.SpotsLeft = m.Spots
	}

	s.mu.Lock()
	s.missions = append(s.missions, m)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) getMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.missions {
		if m.ID == id {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeError(w, http.StatusNotFound, "mission not found")
}

func (s *Server) patchMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var partial struct {
		SpotsLeft *int `json:"spotsLeft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusBadRequest, "invalid patch body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.missions {
		if s.missions[i].ID != id {
			continue
		}
		if partial.SpotsLeft != nil {
			left := *partial.SpotsLeft
			if left < 0 {
				left = 0
			}
			if left > s.missions[i].Spots {
				left = s.missions[i].Spots
			}
			s.missions[i].SpotsLeft = left
		}
		writeJSON(w, http.StatusOK, s.missions[i])
		return
	}
	writeError(w, http.StatusNotFound, "mission not found")
}

func (s *Server) listParticipations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	missionID := r.URL.Query().Get("missionId")
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	out := make([]types.Participation, 0, len(s.participations))
	for _, p := range s.participations {
		if userID != "" && p.UserID != userID {
			continue
		}
		if missionID != "" && p.MissionID != missionID {
			continue
		}
		if status != "" && string(p.Status) != status {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createParticipation(w http.ResponseWriter, r *http.Request) {
	var p types.Participation
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid participation body")
		return
	}
	p.ID = uuid.NewString()
	if p.Status == "" {
		p.Status = types.ParticipationConfirmed
	}
	if p.CreatedAt == "" {
		p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	s.participations = append(s.participations, p)
	s.mu.Unlock()

	s.logger.Debug().
		Str("participation_id", p.ID).
		Str("mission_id", p.MissionID).
		Msg("participation created")
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) patchParticipation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var partial struct {
		Status *types.ParticipationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusBadRequest, "invalid patch body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.participations {
		if s.participations[i].ID != id {
			continue
		}
		if partial.Status != nil {
			s.participations[i].Status = *partial.Status
		}
		writeJSON(w, http.StatusOK, s.participations[i])
		return
	}
	writeError(w, http.StatusNotFound, "participation not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
