package profiles

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/careconnect/guardian-api/internal/session"
	"github.com/careconnect/guardian-api/pkg/logging"
)

// maxPhotoBytes caps profile photo uploads at 5 MiB.
const maxPhotoBytes = 5 << 20

// Handler handles HTTP requests for guardian profiles
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new profile handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Get handles GET /profile
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	p, err := h.service.Get(r.Context(), uid)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Complete handles POST /profile
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Complete(r.Context(), uid, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Update handles PUT /profile
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(r.Context(), uid, upd)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// UploadPhoto handles POST /profile/photo. Expects a multipart form with a
// "photo" file field.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	uid, ok := session.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "missing photo field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		http.Error(w, "failed to read photo", http.StatusBadRequest)
		return
	}
	if len(data) > maxPhotoBytes {
		http.Error(w, "photo too large", http.StatusRequestEntityTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	p, err := h.service.SetPhoto(r.Context(), uid, data, contentType)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("profile photo updated", "uid", uid)
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		http.Error(w, "profile not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidRelationship):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("profile request failed", "error", err)
		http.Error(w, "request failed, try again", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
