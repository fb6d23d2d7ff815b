package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/security/middleware"
	"github.com/aryan0dhankhar/workshop/internal/service"
)

// AppointmentsHandler serves appointment booking and status changes
type AppointmentsHandler struct {
	appointments *service.AppointmentService
	logger       *slog.Logger
}

// NewAppointmentsHandler creates a new appointments handler
func NewAppointmentsHandler(appointments *service.AppointmentService, logger *slog.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentsHandler{appointments: appointments, logger: logger}
}

// StatusRequest changes an appointment's status
type StatusRequest struct {
	Status string `json:"status"`
}

// List handles GET /api/appointments
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.appointments.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list appointments", err)
		return
	}
	writeData(w, http.StatusOK, list)
}

// Create handles POST /api/appointments
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.AppointmentInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, h.logger, "create appointment", err)
		return
	}
	a, err := h.appointments.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, "create appointment", err)
		return
	}
	writeData(w, http.StatusCreated, a)
}

// UpdateStatus handles PATCH /api/appointments/{id}/status. A missing
// appointment answers success with null data.
func (h *AppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, h.logger, "update appointment status", err)
		return
	}
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, "update appointment status", err)
		return
	}
	to, err := domain.ParseAppointmentStatus(req.Status)
	if err != nil {
		writeServiceError(w, h.logger, "update appointment status", err)
		return
	}

	a, err := h.appointments.Transition(r.Context(), actor, id, to)
	if err != nil {
		writeServiceError(w, h.logger, "update appointment status", err)
		return
	}
	writeData(w, http.StatusOK, a)
}
