package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/cityclinic/desk-assistant/pkg/logging"
)

// Store is the persistence surface the management handler needs.
type Store interface {
	Create(ctx context.Context, f Fields) (*Appointment, error)
	List(ctx context.Context) ([]Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, id string, f Fields) (*Appointment, error)
	Delete(ctx context.Context, id string) error
}

// Handler provides the appointment management HTTP endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates an appointment management handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Routes returns a chi router with the management endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// List handles GET /appointments, newest-created first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, `{"error": "error fetching appointments"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, appts)
}

// Get handles GET /appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch appointment", "id", id, "error", err)
		http.Error(w, `{"error": "error fetching appointment"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, appt)
}

// CreateRequest is the body for creating an appointment directly via the
// management interface.
type CreateRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// Create handles POST /appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Contact != "" && !ValidPhone(req.Contact) {
		http.Error(w, `{"error": "invalid phone number. must be 10 digits"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.store.Create(r.Context(), Fields(req))
	if err != nil {
		h.logger.Error("failed to create appointment", "error", err)
		http.Error(w, `{"error": "error creating appointment"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, appt)
}

// UpdateRequest is the body for PUT /appointments/{id}. Absent fields keep
// their stored values.
type UpdateRequest struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Doctor  *string `json:"doctor"`
	Date    *string `json:"date"`
	Time    *string `json:"time"`
}

// Update handles PUT /appointments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Contact != nil && !ValidPhone(*req.Contact) {
		http.Error(w, `{"error": "invalid phone number. must be 10 digits"}`, http.StatusBadRequest)
		return
	}

	existing, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load appointment for update", "id", id, "error", err)
		http.Error(w, `{"error": "error updating appointment"}`, http.StatusInternalServerError)
		return
	}

	fields := Fields{
		Name:    existing.Name,
		Contact: existing.Contact,
		Doctor:  existing.Doctor,
		Date:    existing.Date,
		Time:    existing.Time,
	}
	if req.Name != nil {
		fields.Name = *req.Name
	}
	if req.Contact != nil {
		fields.Contact = *req.Contact
	}
	if req.Doctor != nil {
		fields.Doctor = *req.Doctor
	}
	if req.Date != nil {
		fields.Date = *req.Date
	}
	if req.Time != nil {
		fields.Time = *req.Time
	}

	updated, err := h.store.Update(r.Context(), id, fields)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to update appointment", "id", id, "error", err)
		http.Error(w, `{"error": "error updating appointment"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /appointments/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to delete appointment", "id", id, "error", err)
		http.Error(w, `{"error": "error deleting appointment"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

// ValidPhone reports whether the contact is exactly 10 digits after
// stripping whitespace.
func ValidPhone(contact string) bool {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, contact)
	if len(stripped) != 10 {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
