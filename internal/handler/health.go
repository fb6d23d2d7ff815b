package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aryan0dhankhar/workshop/internal/service"
)

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health, readiness and seed endpoints
type HealthHandler struct {
	health *service.HealthService
	auth   *service.AuthService
	deps   map[string]Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. deps are probed by Ready;
// a nil entry is reported as not configured.
func NewHealthHandler(
	health *service.HealthService,
	authService *service.AuthService,
	deps map[string]Pinger,
	logger *slog.Logger,
) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		health: health,
		auth:   authService,
		deps:   deps,
		logger: logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// DatabaseCounts are the row counts reported by /api/health
type DatabaseCounts struct {
	Users    int `json:"users"`
	Vehicles int `json:"vehicles"`
	Parts    int `json:"parts"`
}

// DatabaseHealthResponse is the /api/health payload
type DatabaseHealthResponse struct {
	Status          string                `json:"status"`
	Database        DatabaseCounts        `json:"database"`
	AdminUserExists bool                  `json:"adminUserExists"`
	AdminUser       *service.AdminSummary `json:"adminUser"`
	Credentials     any                   `json:"credentials"`
}

// FailureResponse is returned by the administrative endpoints on error
type FailureResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Live handles GET /healthz - Simple liveness check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz
// Returns 200 only if every configured dependency answers
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	allHealthy := true
	for name, dep := range h.deps {
		if dep == nil {
			checks[name] = "not configured"
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "error: " + err.Error()
			allHealthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks})

	h.logger.Debug("readiness check", slog.String("status", status))
}

// Health handles GET /api/health. It reads the primary store directly, so a
// database outage shows up here even while the API serves fallback data.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report, err := h.health.Report(r.Context())
	if err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, FailureResponse{
			Status:  "error",
			Message: "Database connection failed",
			Error:   err.Error(),
		})
		return
	}

	var credentials any = "Database is empty - visit /api/seed to populate"
	if report.Users > 0 {
		credentials = map[string]string{
			"admin": service.AdminEmail + " / " + service.AdminPassword,
			"user":  service.UserEmail + " / " + service.UserPassword,
		}
	}

	writeJSON(w, http.StatusOK, DatabaseHealthResponse{
		Status: "ok",
		Database: DatabaseCounts{
			Users:    report.Users,
			Vehicles: report.Vehicles,
			Parts:    report.Parts,
		},
		AdminUserExists: report.AdminUserExists,
		AdminUser:       report.AdminUser,
		Credentials:     credentials,
	})
}

// Seed handles GET /api/seed
func (h *HealthHandler) Seed(w http.ResponseWriter, r *http.Request) {
	result, err := h.auth.Seed(r.Context())
	if err != nil {
		h.logger.Error("seed failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, FailureResponse{
			Status:  "error",
			Message: err.Error(),
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
