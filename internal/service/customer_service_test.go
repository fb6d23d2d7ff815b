package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/infrastructure/events"
)

func customerInput(regs ...string) domain.CustomerInput {
	in := domain.CustomerInput{
		CustomerID: "CUST-100",
		FirstName:  "Anil",
		LastName:   "Mehta",
		Phone:      "9000000001",
		Address:    "12 MG Road",
		GSTIN:      "29ABCDE1234F1Z5",
	}
	for _, r := range regs {
		in.Vehicles = append(in.Vehicles, domain.VehicleInput{RegNumber: r, Model: "Nexon", Type: "SUV"})
	}
	return in
}

func TestCreateCustomerWithVehicles(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pub := &recordingPublisher{}
	s := NewCustomerService(store, pub, testLogger)

	c, err := s.Create(ctx, customerInput("KA-05-MN-1111", "KA-05-MN-2222"))
	require.NoError(t, err)
	require.Len(t, c.Vehicles, 2)
	for _, v := range c.Vehicles {
		assert.Equal(t, c.ID, v.CustomerID)
		assert.Equal(t, "Anil Mehta", v.OwnerName)
		assert.Equal(t, "9000000001", v.OwnerPhone)
		assert.Equal(t, "12 MG Road", v.OwnerAddress)
		assert.Equal(t, "29ABCDE1234F1Z5", v.OwnerGSTIN)
	}

	stored, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	regs := []string{}
	for _, v := range stored.Vehicles {
		regs = append(regs, v.RegNumber)
	}
	assert.ElementsMatch(t, []string{"KA-05-MN-1111", "KA-05-MN-2222"}, regs)
	assert.Equal(t, []string{events.TypeCustomerCreated}, pub.types())
}

func TestCreateCustomerDuplicateRegistrationWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	s := NewCustomerService(store, nil, testLogger)

	before, err := store.ListCustomers(ctx)
	require.NoError(t, err)
	vehiclesBefore, err := store.ListVehicles(ctx)
	require.NoError(t, err)

	_, err = s.Create(ctx, customerInput("KA-05-MN-3333", "KA-01-AB-1234"))
	require.ErrorIs(t, err, domain.ErrDuplicateRegistration)
	assert.Contains(t, err.Error(), "KA-01-AB-1234")

	after, _ := store.ListCustomers(ctx)
	vehiclesAfter, _ := store.ListVehicles(ctx)
	assert.Len(t, after, len(before))
	assert.Len(t, vehiclesAfter, len(vehiclesBefore))
}

func TestCreateCustomerRepeatedRegistrationInPayload(t *testing.T) {
	s := NewCustomerService(newStore(), nil, testLogger)
	_, err := s.Create(context.Background(), customerInput("KA-05-MN-4444", "KA-05-MN-4444"))
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
}

func TestCreateCustomerPublishFailureDoesNotFail(t *testing.T) {
	pub := &recordingPublisher{err: errBrokerDown}
	s := NewCustomerService(newStore(), pub, testLogger)
	_, err := s.Create(context.Background(), customerInput())
	require.NoError(t, err)
	assert.Len(t, pub.types(), 1)
}

func TestDeleteCustomerGuard(t *testing.T) {
	ctx := context.Background()
	s := NewCustomerService(newStore(), nil, testLogger)

	err := s.Delete(ctx, 1)
	require.ErrorIs(t, err, domain.ErrHasDependents)
	assert.Equal(t, "Cannot delete customer with 1 vehicle(s). Please reassign or remove vehicles first.", err.Error())

	c, err := s.Create(ctx, customerInput())
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, c.ID))
	// A second delete of the same id must not crash.
	assert.NoError(t, s.Delete(ctx, c.ID))
}

func TestDeleteCustomerWithAppointmentsIsRejected(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	customers := NewCustomerService(store, nil, testLogger)
	appointments := NewAppointmentService(store, nil, nil, testLogger)

	c, err := customers.Create(ctx, customerInput())
	require.NoError(t, err)
	_, err = appointments.Create(ctx, domain.AppointmentInput{
		CustomerID: &c.ID, ServiceType: "Wheel Alignment", Date: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	err = customers.Delete(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrHasDependents)
	assert.Contains(t, err.Error(), "1 appointment(s)")

	_, err = customers.Get(ctx, c.ID)
	assert.NoError(t, err, "the customer is kept")
}

func TestUpdateCustomerLeavesOwnerFields(t *testing.T) {
	ctx := context.Background()
	s := NewCustomerService(newStore(), nil, testLogger)

	updated, err := s.Update(ctx, 1, domain.CustomerUpdate{FirstName: "Rakesh", LastName: "Kumar", Phone: "9999999999"})
	require.NoError(t, err)
	assert.Equal(t, "Rakesh", updated.FirstName)

	vehicles, err := s.ListVehicles(ctx)
	require.NoError(t, err)
	for _, v := range vehicles {
		if v.CustomerID == 1 {
			assert.Equal(t, "Rajesh Kumar", v.OwnerName)
		}
	}

	_, err = s.Update(ctx, 1, domain.CustomerUpdate{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
