package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

const customerColumns = `id, customer_id, first_name, last_name, phone, email, address, gstin, created_at, updated_at`

const vehicleColumns = `id, reg_number, model, type, owner_name, owner_phone, owner_address, owner_gstin,
	chassis_number, engine_number, customer_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	c := &domain.Customer{Vehicles: []domain.Vehicle{}}
	var email, address, gstin sql.NullString
	err := row.Scan(
		&c.ID,
		&c.CustomerID,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&email,
		&address,
		&gstin,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Email, c.Address, c.GSTIN = email.String, address.String, gstin.String
	return c, nil
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	var phone, address, gstin, chassis, engine sql.NullString
	err := row.Scan(
		&v.ID,
		&v.RegNumber,
		&v.Model,
		&v.Type,
		&v.OwnerName,
		&phone,
		&address,
		&gstin,
		&chassis,
		&engine,
		&v.CustomerID,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.OwnerPhone, v.OwnerAddress, v.OwnerGSTIN = phone.String, address.String, gstin.String
	v.ChassisNumber, v.EngineNumber = chassis.String, engine.String
	return v, nil
}

// ListCustomers returns customers newest first with their vehicles and each
// vehicle's service records.
func (s *PostgresStore) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("failed to list customers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	ids := []int64{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	if len(ids) == 0 {
		return customers, nil
	}

	vehicles, err := s.vehiclesForCustomers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if vs, ok := vehicles[customers[i].ID]; ok {
			customers[i].Vehicles = vs
		}
	}
	return customers, nil
}

func (s *PostgresStore) vehiclesForCustomers(ctx context.Context, customerIDs []int64) (map[int64][]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE customer_id = ANY($1) ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(customerIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicleIDs []int64
	var all []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		all = append(all, v)
		vehicleIDs = append(vehicleIDs, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}

	records, err := s.serviceRecordsForVehicles(ctx, vehicleIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]domain.Vehicle, len(customerIDs))
	for _, v := range all {
		v.ServiceRecords = records[v.ID]
		out[v.CustomerID] = append(out[v.CustomerID], *v)
	}
	return out, nil
}

// GetCustomer retrieves a customer with its vehicles
func (s *PostgresStore) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("customer", id)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	vehicles, err := s.vehiclesForCustomers(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if vs, ok := vehicles[id]; ok {
		c.Vehicles = vs
	}
	return c, nil
}

// UpdateCustomer replaces the editable fields of a customer. Owner fields
// already copied onto vehicles are left as they are.
func (s *PostgresStore) UpdateCustomer(ctx context.Context, id int64, update domain.CustomerUpdate) (*domain.Customer, error) {
	c := &domain.Customer{ID: id}
	update.Apply(c)

	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, phone = $3, email = $4, address = $5, gstin = $6, updated_at = now()
		WHERE id = $7
		RETURNING ` + customerColumns

	updated, err := scanCustomer(s.db.QueryRowContext(ctx,
		query,
		c.FirstName,
		c.LastName,
		c.Phone,
		nullString(c.Email),
		nullString(c.Address),
		nullString(c.GSTIN),
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("customer", id)
		}
		s.logger.Error("failed to update customer",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return updated, nil
}

// DeleteCustomer removes a customer. A vehicle inserted after the caller's
// dependency check still blocks the delete through the foreign key.
func (s *PostgresStore) DeleteCustomer(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			if pqConstraint(err) == "appointments_customer_id_fkey" {
				return domain.NewRuleError(domain.ErrHasDependents,
					"Cannot delete customer with existing appointments. Please reassign or remove appointments first.")
			}
			return domain.NewRuleError(domain.ErrHasDependents,
				"Cannot delete customer with existing vehicles. Please reassign or remove vehicles first.")
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("customer", id)
	}
	return nil
}

// CountVehiclesByCustomer counts vehicles owned by a customer
func (s *PostgresStore) CountVehiclesByCustomer(ctx context.Context, customerID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles WHERE customer_id = $1`, customerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return n, nil
}

// ListVehicles returns all vehicles newest first
func (s *PostgresStore) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (s *PostgresStore) vehicleExists(ctx context.Context, q queryer, regNumber string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM vehicles WHERE reg_number = $1)`, regNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vehicle registration: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) createCustomer(ctx context.Context, q queryer, c *domain.Customer) error {
	query := `
		INSERT INTO customers (customer_id, first_name, last_name, phone, email, address, gstin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx,
		query,
		c.CustomerID,
		c.FirstName,
		c.LastName,
		c.Phone,
		nullString(c.Email),
		nullString(c.Address),
		nullString(c.GSTIN),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.NewRuleError(domain.ErrValidation, "Customer ID %s already exists.", c.CustomerID)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) createVehicle(ctx context.Context, q queryer, v *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (reg_number, model, type, owner_name, owner_phone, owner_address, owner_gstin,
			chassis_number, engine_number, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx,
		query,
		v.RegNumber,
		v.Model,
		v.Type,
		v.OwnerName,
		nullString(v.OwnerPhone),
		nullString(v.OwnerAddress),
		nullString(v.OwnerGSTIN),
		nullString(v.ChassisNumber),
		nullString(v.EngineNumber),
		v.CustomerID,
	).Scan(&v.ID, &v.CreatedAt)

	if err != nil {
		// Lost the race against a concurrent insert of the same registration.
		if isPQCode(err, pqUniqueViolation) {
			return domain.DuplicateRegistration(v.RegNumber)
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}
