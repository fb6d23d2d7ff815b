package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/service"
)

// CustomersHandler serves customers and vehicles
type CustomersHandler struct {
	customers *service.CustomerService
	logger    *slog.Logger
}

// NewCustomersHandler creates a new customers handler
func NewCustomersHandler(customers *service.CustomerService, logger *slog.Logger) *CustomersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomersHandler{customers: customers, logger: logger}
}

// List handles GET /api/customers
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list customers", err)
		return
	}
	writeData(w, http.StatusOK, customers)
}

// Get handles GET /api/customers/{id}
func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, h.logger, "get customer", err)
		return
	}
	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "get customer", err)
		return
	}
	writeData(w, http.StatusOK, c)
}

// Create handles POST /api/customers
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.CustomerInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, h.logger, "create customer", err)
		return
	}
	c, err := h.customers.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, "create customer", err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

// Update handles PUT /api/customers/{id}
func (h *CustomersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, h.logger, "update customer", err)
		return
	}
	var update domain.CustomerUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeServiceError(w, h.logger, "update customer", err)
		return
	}
	c, err := h.customers.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, h.logger, "update customer", err)
		return
	}
	writeData(w, http.StatusOK, c)
}

// Delete handles DELETE /api/customers/{id}
func (h *CustomersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, h.logger, "delete customer", err)
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, "delete customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Vehicles handles GET /api/vehicles
func (h *CustomersHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.customers.ListVehicles(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list vehicles", err)
		return
	}
	writeData(w, http.StatusOK, vehicles)
}
