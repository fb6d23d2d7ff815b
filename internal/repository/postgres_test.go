package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/migrations"
)

// openTestDB connects to WORKSHOP_TEST_DATABASE_URL and resets the schema.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("WORKSHOP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("WORKSHOP_TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, migrations.Run(ctx, db, "reset"))
	require.NoError(t, migrations.Run(ctx, db, "up"))
	return db
}

func TestPostgresCustomerTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	s := NewPostgresStore(db, slog.Default())
	ctx := context.Background()

	create := func(customerID string, regs ...string) error {
		return s.InCustomerTx(ctx, func(tx domain.CustomerTx) error {
			c := &domain.Customer{CustomerID: customerID, FirstName: "Test", Phone: "1"}
			if err := tx.CreateCustomer(ctx, c); err != nil {
				return err
			}
			for _, reg := range regs {
				if err := tx.CreateVehicle(ctx, &domain.Vehicle{RegNumber: reg, Model: "M", CustomerID: c.ID}); err != nil {
					return err
				}
			}
			return nil
		})
	}

	require.NoError(t, create("CUST-1", "KA-01-0001"))
	err := create("CUST-2", "KA-01-0002", "KA-01-0001")
	require.True(t, errors.Is(err, domain.ErrDuplicateRegistration), "got %v", err)

	n, err := s.Count(ctx, domain.EntityCustomers)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.Count(ctx, domain.EntityVehicles)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.Len(t, customers[0].Vehicles, 1)

	err = s.DeleteCustomer(ctx, customers[0].ID)
	assert.True(t, errors.Is(err, domain.ErrHasDependents))
}

func TestPostgresAppointmentStatusIsConditional(t *testing.T) {
	db := openTestDB(t)
	s := NewPostgresStore(db, slog.Default())
	ctx := context.Background()

	a := &domain.Appointment{ServiceType: "Wash", Date: time.Now().Add(time.Hour), Status: domain.StatusPending}
	require.NoError(t, s.CreateAppointment(ctx, a))

	require.NoError(t, s.UpdateAppointmentStatus(ctx, a.ID, domain.StatusPending, domain.StatusConfirmed))
	err := s.UpdateAppointmentStatus(ctx, a.ID, domain.StatusPending, domain.StatusCancelled)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "got %v", err)
	err = s.UpdateAppointmentStatus(ctx, a.ID+100, domain.StatusPending, domain.StatusCancelled)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	got, err := s.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestPostgresVendorCRUD(t *testing.T) {
	db := openTestDB(t)
	s := NewPostgresStore(db, slog.Default())
	ctx := context.Background()

	v := domain.VendorInput{VendorID: "VEN-1", CompanyName: "Acme", Phone: "1"}.Vendor()
	require.NoError(t, s.CreateVendor(ctx, v))
	assert.Equal(t, domain.DefaultVendorRating, v.Rating)

	v.CompanyName = "Acme Parts"
	require.NoError(t, s.UpdateVendor(ctx, v.ID, v))

	_, err := db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO purchase_orders (order_number, vendor_id) VALUES ('PO-1', %d)`, v.ID))
	require.NoError(t, err)

	n, err := s.CountPurchaseOrdersByVendor(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	vendors, err := s.ListVendors(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Acme Parts", vendors[0].CompanyName)
	assert.Len(t, vendors[0].PurchaseOrders, 1)

	assert.True(t, errors.Is(s.DeleteVendor(ctx, v.ID), domain.ErrHasDependents))
	assert.True(t, errors.Is(s.UpdateVendor(ctx, v.ID+100, v), domain.ErrNotFound))
}

func TestPostgresDeleteCustomerWithAppointmentsIsRestricted(t *testing.T) {
	db := openTestDB(t)
	s := NewPostgresStore(db, slog.Default())
	ctx := context.Background()

	var customerID int64
	require.NoError(t, s.InCustomerTx(ctx, func(tx domain.CustomerTx) error {
		c := &domain.Customer{CustomerID: "CUST-RESTRICT", FirstName: "Anita", Phone: "1"}
		if err := tx.CreateCustomer(ctx, c); err != nil {
			return err
		}
		customerID = c.ID
		return nil
	}))
	a := &domain.Appointment{CustomerID: &customerID, ServiceType: "Wash", Date: time.Now().Add(time.Hour), Status: domain.StatusPending}
	require.NoError(t, s.CreateAppointment(ctx, a))

	n, err := s.CountVehiclesByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Zero(t, n)

	err = s.DeleteCustomer(ctx, customerID)
	require.True(t, errors.Is(err, domain.ErrHasDependents), "got %v", err)
	assert.Contains(t, err.Error(), "existing appointments")

	got, err := s.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CustomerID)
	assert.Equal(t, customerID, *got.CustomerID)
}
