package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

var countableTables = map[domain.Entity]string{
	domain.EntityUsers:          "users",
	domain.EntityCustomers:      "customers",
	domain.EntityVehicles:       "vehicles",
	domain.EntityVendors:        "vendors",
	domain.EntityAppointments:   "appointments",
	domain.EntityServiceRecords: "service_records",
	domain.EntityParts:          "parts",
}

// Count returns the number of rows of an entity
func (s *PostgresStore) Count(ctx context.Context, entity domain.Entity) (int, error) {
	table, ok := countableTables[entity]
	if !ok {
		return 0, domain.Invalid("unknown entity %q", entity)
	}
	return s.count(ctx, s.psql.Select("COUNT(*)").From(table))
}

// CountAppointmentsByStatus counts appointments in the given status
func (s *PostgresStore) CountAppointmentsByStatus(ctx context.Context, status domain.AppointmentStatus) (int, error) {
	return s.count(ctx, s.psql.Select("COUNT(*)").From("appointments").Where(sq.Eq{"status": string(status)}))
}

func (s *PostgresStore) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}
