package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/repository"
)

func TestVendorCreateDefaults(t *testing.T) {
	s := NewVendorService(newStore(), testLogger)
	v, err := s.Create(context.Background(), domain.VendorInput{VendorID: "VEN-100", CompanyName: "Apex Spares", Phone: "9800011122"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultVendorRating, v.Rating)
	assert.Equal(t, domain.VendorActive, v.Status)
	assert.NotZero(t, v.ID)
}

func TestVendorCreateValidation(t *testing.T) {
	s := NewVendorService(newStore(), testLogger)
	bad := 7.5
	_, err := s.Create(context.Background(), domain.VendorInput{VendorID: "VEN-101", CompanyName: "X", Phone: "1", Rating: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.Create(context.Background(), domain.VendorInput{CompanyName: "X", Phone: "1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVendorDeleteGuard(t *testing.T) {
	ctx := context.Background()
	s := NewVendorService(newStore(), testLogger)

	err := s.Delete(ctx, 1)
	require.ErrorIs(t, err, domain.ErrHasDependents)
	assert.Contains(t, err.Error(), "2 purchase order(s)")

	v, err := s.Create(ctx, domain.VendorInput{VendorID: "VEN-102", CompanyName: "Bolt Co", Phone: "9800011133"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, v.ID))

	vendors, err := s.List(ctx)
	require.NoError(t, err)
	for _, other := range vendors {
		assert.NotEqual(t, v.ID, other.ID)
	}
}

func TestVendorDeleteGuardNamesOrderCount(t *testing.T) {
	ctx := context.Background()
	orders := make([]domain.PurchaseOrder, 3)
	for i := range orders {
		orders[i] = domain.PurchaseOrder{ID: int64(i + 1), OrderNumber: fmt.Sprintf("PO-9%02d", i), VendorID: 9}
	}
	store := repository.NewMemoryStore(repository.Fixtures{
		Vendors: []domain.Vendor{
			{ID: 9, VendorID: "VEN-009", CompanyName: "Three Orders Ltd", Status: domain.VendorActive, PurchaseOrders: orders},
			{ID: 10, VendorID: "VEN-010", CompanyName: "No Orders Ltd", Status: domain.VendorActive},
		},
	})
	s := NewVendorService(store, testLogger)

	err := s.Delete(ctx, 9)
	require.ErrorIs(t, err, domain.ErrHasDependents)
	assert.Equal(t, "Cannot delete vendor with 3 purchase order(s). Please reassign or remove orders first.", err.Error())

	require.NoError(t, s.Delete(ctx, 10))
	vendors, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "VEN-009", vendors[0].VendorID)
}

func TestVendorUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewVendorService(newStore(), testLogger)
	rating := 4.5
	v, err := s.Update(ctx, 2, domain.VendorInput{CompanyName: "Renamed", Phone: "9800000002", Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.ID)
	assert.Equal(t, "VEN-002", v.VendorID)
	assert.Equal(t, 4.5, v.Rating)
}
