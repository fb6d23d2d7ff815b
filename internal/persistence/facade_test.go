package persistence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/workshop/internal/reliability/retry"
	"github.com/aryan0dhankhar/workshop/internal/repository"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// flakyStore is a primary store that fails every call while down is set and
// otherwise delegates to an empty in-memory store.
type flakyStore struct {
	*repository.MemoryStore
	down  bool
	calls int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: repository.NewMemoryStore(repository.Fixtures{})}
}

func (s *flakyStore) fail() error {
	s.calls++
	if s.down {
		return errConnRefused
	}
	return nil
}

func (s *flakyStore) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return s.MemoryStore.ListAppointments(ctx)
}

func (s *flakyStore) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return s.MemoryStore.ListVendors(ctx)
}

func (s *flakyStore) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return s.MemoryStore.ListCustomers(ctx)
}

func (s *flakyStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return s.MemoryStore.GetUserByEmail(ctx, email)
}

func (s *flakyStore) Count(ctx context.Context, e domain.Entity) (int, error) {
	if err := s.fail(); err != nil {
		return 0, err
	}
	return s.MemoryStore.Count(ctx, e)
}

func (s *flakyStore) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.CreateVendor(ctx, v)
}

func (s *flakyStore) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.DeleteCustomer(ctx, id)
}

func (s *flakyStore) InCustomerTx(ctx context.Context, fn func(tx domain.CustomerTx) error) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.InCustomerTx(ctx, fn)
}

func (s *flakyStore) UpdateAppointmentStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.UpdateAppointmentStatus(ctx, id, from, to)
}

func newTestFacade(primary domain.Store, breaker *circuitbreaker.CircuitBreaker) (*Facade, *repository.MemoryStore) {
	fallback := repository.NewFallbackStore(repository.DefaultFixtures())
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(100, 1, time.Minute)
	}
	f := NewFacade(primary, fallback, Options{
		Retry:   &retry.Config{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1},
		Breaker: breaker,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f, fallback
}

func TestReadFallsBackWhenPrimaryDown(t *testing.T) {
	primary := newFlakyStore()
	primary.down = true
	f, _ := newTestFacade(primary, nil)

	got, err := f.ListAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Priya", got[0].Customer.FirstName)
	assert.Equal(t, 2, primary.calls, "transient read failures are retried once")
}

func TestReadServedFromPrimaryWhenHealthy(t *testing.T) {
	primary := newFlakyStore()
	f, _ := newTestFacade(primary, nil)

	got, err := f.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "an empty primary answer is returned as-is for appointments")
	assert.NotNil(t, got)
}

func TestListVendorsFallsBackOnEmpty(t *testing.T) {
	f, _ := newTestFacade(newFlakyStore(), nil)

	got, err := f.ListVendors(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCountReturnsZeroWhenDown(t *testing.T) {
	primary := newFlakyStore()
	primary.down = true
	f, _ := newTestFacade(primary, nil)

	n, err := f.Count(context.Background(), domain.EntityCustomers)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCredentialsNeverServedFromFallback(t *testing.T) {
	primary := newFlakyStore()
	primary.down = true
	f, fallback := newTestFacade(primary, nil)
	require.NoError(t, fallback.CreateUser(context.Background(), &domain.User{ID: "x", Email: "admin@meghcomm.store"}))

	_, err := f.GetUserByEmail(context.Background(), "admin@meghcomm.store")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWriteSimulatedAgainstFallback(t *testing.T) {
	primary := newFlakyStore()
	primary.down = true
	f, fallback := newTestFacade(primary, nil)
	ctx := context.Background()

	v := &domain.Vendor{VendorID: "VEN-900", CompanyName: "Fallback Parts", Phone: "1", Status: domain.VendorActive}
	require.NoError(t, f.CreateVendor(ctx, v))
	assert.NotZero(t, v.ID)
	assert.Equal(t, 1, primary.calls, "writes are not retried")

	vendors, err := fallback.ListVendors(ctx)
	require.NoError(t, err)
	assert.Len(t, vendors, 4, "the simulated write is visible to later fallback reads")
}

func TestBusinessErrorsPassThrough(t *testing.T) {
	primary := newFlakyStore()
	f, _ := newTestFacade(primary, nil)
	ctx := context.Background()

	err := f.UpdateAppointmentStatus(ctx, 12345, domain.StatusPending, domain.StatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.InCustomerTx(ctx, func(tx domain.CustomerTx) error {
		return domain.DuplicateRegistration("KA-01-AB-1234")
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
	assert.Equal(t, "Vehicle with registration KA-01-AB-1234 already exists.", err.Error())
}

func TestCustomerTxRerunsAgainstFallback(t *testing.T) {
	primary := newFlakyStore()
	primary.down = true
	f, fallback := newTestFacade(primary, nil)
	ctx := context.Background()

	runs := 0
	err := f.InCustomerTx(ctx, func(tx domain.CustomerTx) error {
		runs++
		c := &domain.Customer{CustomerID: "CUST-500", FirstName: "Kiran", Phone: "1"}
		if err := tx.CreateCustomer(ctx, c); err != nil {
			return err
		}
		return tx.CreateVehicle(ctx, &domain.Vehicle{RegNumber: "KA-09-QQ-0009", Model: "Nexon", CustomerID: c.ID})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	n, _ := fallback.Count(ctx, domain.EntityVehicles)
	assert.Equal(t, 3, n)
}

func TestOpenCircuitSkipsPrimary(t *testing.T) {
	primary := newFlakyStore()
	primary.down = true
	breaker := circuitbreaker.NewCircuitBreaker(1, 1, time.Hour)
	f, _ := newTestFacade(primary, breaker)
	ctx := context.Background()

	_, err := f.ListCustomers(ctx)
	require.NoError(t, err)
	require.Equal(t, circuitbreaker.StateOpen, breaker.GetState())
	callsAfterTrip := primary.calls

	got, err := f.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, callsAfterTrip, primary.calls, "open circuit must not reach the primary")
}

func TestDeleteOnMissingIDUnderOutageIsSimulatedSuccess(t *testing.T) {
	primary := newFlakyStore()
	primary.down = true
	f, _ := newTestFacade(primary, nil)

	assert.NoError(t, f.DeleteCustomer(context.Background(), 9999))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errConnRefused))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(domain.NotFound("customer", 1)))
	assert.False(t, IsTransient(context.Canceled))
}

var errConnReset = errors.New("read tcp 10.0.0.5:5432: connection reset by peer")

// brokenWrites serves reads from its own rows and fails every write.
type brokenWrites struct {
	*repository.MemoryStore
}

func (brokenWrites) UpdateAppointmentStatus(context.Context, int64, domain.AppointmentStatus, domain.AppointmentStatus) error {
	return errConnReset
}
func (brokenWrites) DeleteCustomer(context.Context, int64) error { return errConnReset }
func (brokenWrites) DeleteVendor(context.Context, int64) error   { return errConnReset }

func TestFailedWriteOnPrimaryRowIsSimulatedSuccess(t *testing.T) {
	ctx := context.Background()
	primary := brokenWrites{repository.NewMemoryStore(repository.Fixtures{
		Customers:    []domain.Customer{{ID: 2, CustomerID: "CUST-700", FirstName: "Meera", Phone: "1"}},
		Vendors:      []domain.Vendor{{ID: 1, VendorID: "VEN-700", CompanyName: "Solo Spares", Status: domain.VendorActive}},
		Appointments: []domain.Appointment{{ID: 1, ServiceType: "Oil Change", Status: domain.StatusPending}},
	})}
	f, fallback := newTestFacade(primary, nil)

	a, err := f.GetAppointment(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, a.Status)
	assert.NoError(t, f.UpdateAppointmentStatus(ctx, 1, domain.StatusPending, domain.StatusConfirmed))

	n, err := f.CountVehiclesByCustomer(ctx, 2)
	require.NoError(t, err)
	require.Zero(t, n)
	assert.NoError(t, f.DeleteCustomer(ctx, 2))

	assert.NoError(t, f.DeleteVendor(ctx, 1))

	customers, err := fallback.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 2, "fixture rows are untouched by writes aimed at database ids")
	vendors, err := fallback.ListVendors(ctx)
	require.NoError(t, err)
	assert.Len(t, vendors, 3)
}
