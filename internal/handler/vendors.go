package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/service"
)

// VendorsHandler serves vendor management
type VendorsHandler struct {
	vendors *service.VendorService
	logger  *slog.Logger
}

// NewVendorsHandler creates a new vendors handler
func NewVendorsHandler(vendors *service.VendorService, logger *slog.Logger) *VendorsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VendorsHandler{vendors: vendors, logger: logger}
}

// List handles GET /api/vendors
func (h *VendorsHandler) List(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.vendors.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list vendors", err)
		return
	}
	writeData(w, http.StatusOK, vendors)
}

// Create handles POST /api/vendors
func (h *VendorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.VendorInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, h.logger, "create vendor", err)
		return
	}
	v, err := h.vendors.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, "create vendor", err)
		return
	}
	writeData(w, http.StatusCreated, v)
}

// Update handles PUT /api/vendors/{id}
func (h *VendorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, h.logger, "update vendor", err)
		return
	}
	var in domain.VendorInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, h.logger, "update vendor", err)
		return
	}
	v, err := h.vendors.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, h.logger, "update vendor", err)
		return
	}
	writeData(w, http.StatusOK, v)
}

// Delete handles DELETE /api/vendors/{id}
func (h *VendorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, h.logger, "delete vendor", err)
		return
	}
	if err := h.vendors.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, "delete vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
