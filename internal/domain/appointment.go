package domain

import (
	"strings"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// appointmentTransitions lists the allowed successors of each state.
// COMPLETED and CANCELLED are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted},
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> to is in the transition table.
func (s AppointmentStatus) CanTransitionTo(to AppointmentStatus) bool {
	for _, next := range appointmentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseAppointmentStatus parses a status name case-insensitively.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", Invalid("unknown appointment status %q", s)
	}
	return status, nil
}

// AppointmentCustomer is the customer summary shown with an appointment.
type AppointmentCustomer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// AppointmentVehicle is the vehicle summary shown with an appointment.
type AppointmentVehicle struct {
	RegNumber string `json:"regNumber"`
	Model     string `json:"model"`
}

// Appointment is a booked service slot.
type Appointment struct {
	ID          int64                `json:"id"`
	CustomerID  *int64               `json:"customerId"`
	VehicleID   *int64               `json:"vehicleId"`
	ServiceType string               `json:"serviceType"`
	Date        time.Time            `json:"date"`
	Status      AppointmentStatus    `json:"status"`
	Notes       string               `json:"notes,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	Customer    *AppointmentCustomer `json:"customer,omitempty"`
	Vehicle     *AppointmentVehicle  `json:"vehicle,omitempty"`
}

// TransitionTo moves the appointment to the given status or returns an
// ErrInvalidTransition rule error leaving it untouched.
func (a *Appointment) TransitionTo(to AppointmentStatus) error {
	if !a.Status.CanTransitionTo(to) {
		return NewRuleError(ErrInvalidTransition,
			"Cannot change appointment status from %s to %s", a.Status, to)
	}
	a.Status = to
	return nil
}

// AppointmentInput books a new appointment.
type AppointmentInput struct {
	CustomerID  *int64    `json:"customerId"`
	VehicleID   *int64    `json:"vehicleId"`
	ServiceType string    `json:"serviceType"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes"`
}

// Validate checks required fields.
func (in AppointmentInput) Validate() error {
	if strings.TrimSpace(in.ServiceType) == "" {
		return Invalid("serviceType is required")
	}
	if in.Date.IsZero() {
		return Invalid("date is required")
	}
	return nil
}

// Appointment builds the appointment row. New appointments always start PENDING.
func (in AppointmentInput) Appointment() *Appointment {
	return &Appointment{
		CustomerID:  in.CustomerID,
		VehicleID:   in.VehicleID,
		ServiceType: strings.TrimSpace(in.ServiceType),
		Date:        in.Date,
		Status:      StatusPending,
		Notes:       in.Notes,
	}
}
