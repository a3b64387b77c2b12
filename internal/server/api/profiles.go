// Package api provides HTTP API handlers for the chutki snap detection service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/chutki/internal/app"
	"github.com/ayusman/chutki/internal/store"
	"github.com/ayusman/chutki/internal/tracking"
)

// ProfileHandler handles HTTP requests for tuning profile resources.
type ProfileHandler struct {
	store *store.Store
	app   *app.App
}

// NewProfileHandler creates a new ProfileHandler. The app may be nil,
// in which case profiles can be managed but not applied.
func NewProfileHandler(s *store.Store, a *app.App) *ProfileHandler {
	return &ProfileHandler{store: s, app: a}
}

// ServeHTTP implements the http.Handler interface and routes requests
// to the appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles, /api/profiles/{id}, /api/profiles/{id}/apply
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/profiles
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/apply"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.apply(w, r, id)
		return
	}

	// Item endpoint: /api/profiles/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type profileRequest struct {
	Name              string  `json:"name"`
	TrackedHand       string  `json:"tracked_hand"`
	ReadyDistance     float64 `json:"ready_distance"`
	Velocity          float64 `json:"velocity"`
	CompletedDistance float64 `json:"completed_distance"`
}

type profileResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	TrackedHand       string  `json:"tracked_hand"`
	ReadyDistance     float64 `json:"ready_distance"`
	Velocity          float64 `json:"velocity"`
	CompletedDistance float64 `json:"completed_distance"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Profile to a profileResponse.
func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:                p.ID,
		Name:              p.Name,
		TrackedHand:       p.TrackedHand,
		ReadyDistance:     p.ReadyDistance,
		Velocity:          p.Velocity,
		CompletedDistance: p.CompletedDistance,
		CreatedAt:         p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:         p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// validate checks a profile request for usable values.
func (req *profileRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	h := tracking.Hand(req.TrackedHand)
	if h != tracking.LeftHand && h != tracking.RightHand {
		return "tracked_hand must be 'Left' or 'Right'"
	}
	if req.ReadyDistance <= 0 || req.Velocity <= 0 || req.CompletedDistance <= 0 {
		return "thresholds must be positive"
	}
	return ""
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/profiles.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := &store.Profile{
		ID:                uuid.NewString(),
		Name:              req.Name,
		TrackedHand:       req.TrackedHand,
		ReadyDistance:     req.ReadyDistance,
		Velocity:          req.Velocity,
		CompletedDistance: req.CompletedDistance,
	}
	if err := h.store.Profiles().Create(p); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			writeError(w, http.StatusConflict, "Profile name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(p))
}

// get handles GET /api/profiles/{id}.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

// update handles PUT /api/profiles/{id}.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := &store.Profile{
		ID:                id,
		Name:              req.Name,
		TrackedHand:       req.TrackedHand,
		ReadyDistance:     req.ReadyDistance,
		Velocity:          req.Velocity,
		CompletedDistance: req.CompletedDistance,
	}
	if err := h.store.Profiles().Update(p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

// delete handles DELETE /api/profiles/{id}.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// apply handles POST /api/profiles/{id}/apply: it loads the profile,
// applies its thresholds to the running detector, and remembers it as
// the active profile.
func (h *ProfileHandler) apply(w http.ResponseWriter, r *http.Request, id string) {
	if h.app == nil {
		writeError(w, http.StatusServiceUnavailable, "No detector attached")
		return
	}

	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	cfg := h.app.Tuning()
	cfg.ReadyDistance = p.ReadyDistance
	cfg.Velocity = p.Velocity
	cfg.CompletedDistance = p.CompletedDistance
	h.app.ApplyTuning(cfg)

	if err := h.store.SetSetting(store.SettingActiveProfile, p.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record active profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}
