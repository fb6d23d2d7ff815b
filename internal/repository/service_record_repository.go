package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

const serviceRecordColumns = `sr.id, sr.vehicle_id, sr.mechanic_id, sr.date, sr.service_type, sr.description,
	sr.status, sr.mileage, sr.total_cost`

func scanServiceRecord(row rowScanner, extra ...any) (*domain.ServiceRecord, error) {
	r := &domain.ServiceRecord{Parts: []domain.ServiceRecordPart{}}
	var mechanicID sql.NullInt64
	var description sql.NullString
	var mileage sql.NullInt64
	dest := append([]any{
		&r.ID,
		&r.VehicleID,
		&mechanicID,
		&r.Date,
		&r.ServiceType,
		&description,
		&r.Status,
		&mileage,
		&r.TotalCost,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	r.MechanicID = int64Ptr(mechanicID)
	r.Description = description.String
	r.Mileage = int(mileage.Int64)
	return r, nil
}

// ListServiceRecords returns the service history newest first with the
// vehicle, the mechanic and the consumed parts of each record.
func (s *PostgresStore) ListServiceRecords(ctx context.Context) ([]domain.ServiceRecord, error) {
	query := `
		SELECT ` + serviceRecordColumns + `,
			v.id, v.reg_number, v.model, v.type, v.owner_name, v.customer_id,
			m.id, m.name, m.phone, m.specialization
		FROM service_records sr
		JOIN vehicles v ON v.id = sr.vehicle_id
		LEFT JOIN mechanics m ON m.id = sr.mechanic_id
		ORDER BY sr.date DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list service records: %w", err)
	}
	defer rows.Close()

	records := []domain.ServiceRecord{}
	var ids []int64
	for rows.Next() {
		var v domain.Vehicle
		var mID sql.NullInt64
		var mName, mPhone, mSpec sql.NullString
		r, err := scanServiceRecord(rows,
			&v.ID, &v.RegNumber, &v.Model, &v.Type, &v.OwnerName, &v.CustomerID,
			&mID, &mName, &mPhone, &mSpec,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service record: %w", err)
		}
		r.Vehicle = &v
		if mID.Valid {
			r.Mechanic = &domain.Mechanic{
				ID:             mID.Int64,
				Name:           mName.String,
				Phone:          mPhone.String,
				Specialization: mSpec.String,
			}
		}
		records = append(records, *r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate service records: %w", err)
	}

	parts, err := s.partsForRecords(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if ps, ok := parts[records[i].ID]; ok {
			records[i].Parts = ps
		}
	}
	return records, nil
}

func (s *PostgresStore) serviceRecordsForVehicles(ctx context.Context, vehicleIDs []int64) (map[int64][]domain.ServiceRecord, error) {
	out := map[int64][]domain.ServiceRecord{}
	if len(vehicleIDs) == 0 {
		return out, nil
	}

	query := `SELECT ` + serviceRecordColumns + ` FROM service_records sr WHERE sr.vehicle_id = ANY($1) ORDER BY sr.date DESC`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(vehicleIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list service records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanServiceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service record: %w", err)
		}
		out[r.VehicleID] = append(out[r.VehicleID], *r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) partsForRecords(ctx context.Context, recordIDs []int64) (map[int64][]domain.ServiceRecordPart, error) {
	out := map[int64][]domain.ServiceRecordPart{}
	if len(recordIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT srp.service_record_id, srp.id, srp.part_id, srp.quantity, srp.price,
			p.id, p.part_number, p.name, p.price, p.quantity
		FROM service_record_parts srp
		JOIN parts p ON p.id = srp.part_id
		WHERE srp.service_record_id = ANY($1)
		ORDER BY srp.id
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(recordIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list service record parts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID int64
		var srp domain.ServiceRecordPart
		var p domain.Part
		if err := rows.Scan(
			&recordID, &srp.ID, &srp.PartID, &srp.Quantity, &srp.Price,
			&p.ID, &p.PartNumber, &p.Name, &p.Price, &p.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan service record part: %w", err)
		}
		srp.Part = &p
		out[recordID] = append(out[recordID], srp)
	}
	return out, rows.Err()
}
