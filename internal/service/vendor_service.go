package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

// VendorService manages parts suppliers
type VendorService struct {
	store  domain.VendorStore
	logger *slog.Logger
}

// NewVendorService creates a new vendor service
func NewVendorService(store domain.VendorStore, logger *slog.Logger) *VendorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VendorService{store: store, logger: logger}
}

// List returns vendors newest first with their purchase orders
func (s *VendorService) List(ctx context.Context) ([]domain.Vendor, error) {
	return s.store.ListVendors(ctx)
}

// Create stores a vendor with rating 3.0 and status ACTIVE unless given
func (s *VendorService) Create(ctx context.Context, in domain.VendorInput) (*domain.Vendor, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	v := in.Vendor()
	if err := s.store.CreateVendor(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("vendor created", slog.Int64("id", v.ID), slog.String("vendor_id", v.VendorID))
	return v, nil
}

// Update replaces a vendor's fields
func (s *VendorService) Update(ctx context.Context, id int64, in domain.VendorInput) (*domain.Vendor, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	v := in.Vendor()
	if err := s.store.UpdateVendor(ctx, id, v); err != nil {
		return nil, err
	}
	v.ID = id
	return v, nil
}

// Delete removes a vendor without purchase orders
func (s *VendorService) Delete(ctx context.Context, id int64) error {
	n, err := s.store.CountPurchaseOrdersByVendor(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count purchase orders: %w", err)
	}
	if n > 0 {
		return domain.NewRuleError(domain.ErrHasDependents,
			"Cannot delete vendor with %d purchase order(s). Please reassign or remove orders first.", n)
	}
	if err := s.store.DeleteVendor(ctx, id); err != nil {
		return err
	}
	s.logger.Info("vendor deleted", slog.Int64("id", id))
	return nil
}
