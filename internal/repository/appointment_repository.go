package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

func (s *PostgresStore) appointmentQuery() sq.SelectBuilder {
	return s.psql.Select(
		"a.id", "a.customer_id", "a.vehicle_id", "a.service_type", "a.date", "a.status", "a.notes", "a.created_at",
		"c.first_name", "c.last_name", "c.phone",
		"v.reg_number", "v.model",
	).
		From("appointments a").
		LeftJoin("customers c ON c.id = a.customer_id").
		LeftJoin("vehicles v ON v.id = a.vehicle_id")
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	var customerID, vehicleID sql.NullInt64
	var notes, firstName, lastName, phone, regNumber, model sql.NullString
	var status string
	err := row.Scan(
		&a.ID, &customerID, &vehicleID, &a.ServiceType, &a.Date, &status, &notes, &a.CreatedAt,
		&firstName, &lastName, &phone,
		&regNumber, &model,
	)
	if err != nil {
		return nil, err
	}
	a.CustomerID = int64Ptr(customerID)
	a.VehicleID = int64Ptr(vehicleID)
	a.Status = domain.AppointmentStatus(status)
	a.Notes = notes.String
	if customerID.Valid {
		a.Customer = &domain.AppointmentCustomer{
			FirstName: firstName.String,
			LastName:  lastName.String,
			Phone:     phone.String,
		}
	}
	if vehicleID.Valid {
		a.Vehicle = &domain.AppointmentVehicle{
			RegNumber: regNumber.String,
			Model:     model.String,
		}
	}
	return a, nil
}

// ListAppointments returns appointments by date, latest first
func (s *PostgresStore) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	query, args, err := s.appointmentQuery().OrderBy("a.date DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list appointments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	appointments := []domain.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

// GetAppointment retrieves one appointment
func (s *PostgresStore) GetAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	query, args, err := s.appointmentQuery().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment query: %w", err)
	}

	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("appointment", id)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

// CreateAppointment inserts an appointment
func (s *PostgresStore) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	query := `
		INSERT INTO appointments (customer_id, vehicle_id, service_type, date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx,
		query,
		nullInt64(a.CustomerID),
		nullInt64(a.VehicleID),
		a.ServiceType,
		a.Date,
		string(a.Status),
		nullString(a.Notes),
	).Scan(&a.ID, &a.CreatedAt)

	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return domain.Invalid("customer or vehicle does not exist")
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// UpdateAppointmentStatus performs a compare-and-set on the status column so
// a concurrent transition can never be overwritten.
func (s *PostgresStore) UpdateAppointmentStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 1 {
		return nil
	}

	current, err := s.GetAppointment(ctx, id)
	if err != nil {
		return err
	}
	return domain.NewRuleError(domain.ErrInvalidTransition,
		"Cannot change appointment status from %s to %s", current.Status, to)
}
