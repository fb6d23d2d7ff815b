// Package app assembles the HTTP surface: routes, per-route authorization and
// the global middleware chain.
package app

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/workshop/internal/handler"
	"github.com/aryan0dhankhar/workshop/internal/observability/metrics"
	"github.com/aryan0dhankhar/workshop/internal/security"
	"github.com/aryan0dhankhar/workshop/internal/security/audit"
	"github.com/aryan0dhankhar/workshop/internal/security/auth"
	"github.com/aryan0dhankhar/workshop/internal/security/middleware"
	"github.com/aryan0dhankhar/workshop/internal/security/ratelimit"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Auth         *handler.AuthHandler
	Health       *handler.HealthHandler
	Customers    *handler.CustomersHandler
	Vendors      *handler.VendorsHandler
	Appointments *handler.AppointmentsHandler
	Reports      *handler.ReportsHandler
	Pages        *handler.PagesHandler

	Tokens       *auth.TokenManager
	Authz        *security.AuthorizationService
	Audit        *audit.Logger
	LoginLimiter *ratelimit.Limiter

	CORSAllowedOrigins []string
	// StrictGate makes the session gate verify the cookie instead of only
	// checking that one is present.
	StrictGate bool
	Logger     *slog.Logger
}

// NewRouter returns the root handler.
// Chain: request id -> otelhttp -> metrics -> sanitize -> CORS -> session gate -> mux.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	if d.Audit == nil {
		d.Audit = audit.NewLogger(log)
	}
	if d.Authz == nil {
		d.Authz = security.NewAuthorizationService(log)
	}

	session := middleware.RequireSession(d.Tokens)
	audited := middleware.AuditMiddleware(d.Audit)
	jsonBody := middleware.ValidateJSONContentType(log)

	// guard wraps an API handler: session, audit of mutations, permission.
	guard := func(perm security.Permission, h http.HandlerFunc) http.Handler {
		return session(audited(middleware.RequirePermission(d.Authz, d.Audit, perm)(jsonBody(h))))
	}

	mux := http.NewServeMux()

	login := http.Handler(jsonBody(http.HandlerFunc(d.Auth.Login)))
	if d.LoginLimiter != nil {
		login = middleware.LoginRateLimit(d.LoginLimiter, log)(login)
	}
	mux.Handle("POST /api/auth/login", login)
	mux.HandleFunc("POST /api/auth/logout", d.Auth.Logout)
	mux.HandleFunc("GET /api/auth/session", d.Auth.Session)

	mux.HandleFunc("GET /api/seed", d.Health.Seed)
	mux.HandleFunc("GET /api/health", d.Health.Health)
	mux.HandleFunc("GET /healthz", d.Health.Live)
	mux.HandleFunc("GET /readyz", d.Health.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /api/customers", guard(security.PermViewCustomers, d.Customers.List))
	mux.Handle("POST /api/customers", guard(security.PermManageCustomers, d.Customers.Create))
	mux.Handle("GET /api/customers/{id}", guard(security.PermViewCustomers, d.Customers.Get))
	mux.Handle("PUT /api/customers/{id}", guard(security.PermManageCustomers, d.Customers.Update))
	mux.Handle("DELETE /api/customers/{id}", guard(security.PermManageCustomers, d.Customers.Delete))
	mux.Handle("GET /api/vehicles", guard(security.PermViewVehicles, d.Customers.Vehicles))

	mux.Handle("GET /api/vendors", guard(security.PermViewVendors, d.Vendors.List))
	mux.Handle("POST /api/vendors", guard(security.PermManageVendors, d.Vendors.Create))
	mux.Handle("PUT /api/vendors/{id}", guard(security.PermManageVendors, d.Vendors.Update))
	mux.Handle("DELETE /api/vendors/{id}", guard(security.PermManageVendors, d.Vendors.Delete))

	mux.Handle("GET /api/appointments", guard(security.PermViewAppointments, d.Appointments.List))
	mux.Handle("POST /api/appointments", guard(security.PermCreateAppointment, d.Appointments.Create))
	mux.Handle("PATCH /api/appointments/{id}/status", guard(security.PermTransitionAppointment, d.Appointments.UpdateStatus))

	mux.Handle("GET /api/service-history", guard(security.PermViewServiceHistory, d.Reports.ServiceHistory))
	mux.Handle("GET /api/dashboard/stats", guard(security.PermViewDashboard, d.Reports.DashboardStats))

	if d.Pages == nil {
		d.Pages = handler.NewPagesHandler("")
	}
	mux.Handle("/", d.Pages)

	gateOpts := middleware.GateOptions{Logger: log}
	if d.StrictGate {
		gateOpts.Tokens = d.Tokens
	}

	var h http.Handler = mux
	h = middleware.SessionGate(gateOpts)(h)
	h = middleware.CORS(d.CORSAllowedOrigins)(h)
	h = middleware.SanitizeInputs(log)(h)
	h = metrics.HTTPMetricsMiddleware(h)
	h = otelhttp.NewHandler(h, "workshop.http")
	h = middleware.RequestID(log)(h)
	return h
}
