package visits

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/careconnect/guardian-api/internal/session"
	"github.com/careconnect/guardian-api/pkg/logging"
)

// Handler handles HTTP requests for visits and alerts
type Handler struct {
	service *Service
	logger  *logging.Logger
	// now is swappable in tests
	now func() time.Time
}

// NewHandler creates a new visits handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

// Create handles POST /visits
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	var req CreateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	v, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.logger.Info("visit scheduled", "visit_id", v.ID, "user_id", userID, "date", v.ScheduledDate)
	respondJSON(w, http.StatusCreated, v)
}

// List handles GET /visits
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	visits, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"visits": visits, "count": len(visits)})
}

// Get handles GET /visits/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, visitID, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	v, err := h.service.Get(r.Context(), userID, visitID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// Update handles PUT /visits/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, visitID, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Update(r.Context(), userID, visitID, upd); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// UpdateStatusRequest is the request body for PUT /visits/{id}/status.
type UpdateStatusRequest struct {
	Status        Status `json:"status"`
	ActualArrival string `json:"actualArrival"`
}

// UpdateStatus handles PUT /visits/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, visitID, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), userID, visitID, req.Status, req.ActualArrival); err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("visit status updated", "visit_id", visitID, "status", req.Status)
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /visits/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, visitID, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, visitID); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Sweep handles POST /visits/sweep, the screen-focus trigger that flags
// overdue scheduled visits as missed.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	res, err := h.service.Sweep(r.Context(), userID, h.now(), "api")
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Today handles GET /visits/today
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	visits, err := h.service.Today(r.Context(), userID, h.now())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"visits": visits, "count": len(visits)})
}

// Alerts handles GET /alerts
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	alerts, err := h.service.Alerts(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

// Acknowledge handles POST /alerts/{id}/acknowledge
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	userID, visitID, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Acknowledge(r.Context(), userID, visitID); err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("alert acknowledged", "visit_id", visitID, "user_id", userID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (h *Handler) sessionAndID(w http.ResponseWriter, r *http.Request) (userID, visitID string, ok bool) {
	userID, ok = session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return "", "", false
	}
	visitID = chi.URLParam(r, "id")
	if visitID == "" {
		http.Error(w, "missing visit id", http.StatusBadRequest)
		return "", "", false
	}
	return userID, visitID, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrVisitNotFound):
		http.Error(w, "visit not found", http.StatusNotFound)
	case errors.Is(err, ErrMissingCaregiverName),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidTime),
		errors.Is(err, ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("visit request failed", "error", err)
		http.Error(w, "request failed, try again", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
