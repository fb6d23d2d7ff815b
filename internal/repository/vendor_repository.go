package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

var vendorColumns = []string{
	"id", "vendor_id", "company_name", "contact_person", "email", "phone", "address", "city", "state",
	"pincode", "gstin", "pan", "category", "rating", "payment_terms", "credit_limit", "status", "notes",
	"created_at", "updated_at",
}

func scanVendor(row rowScanner) (*domain.Vendor, error) {
	v := &domain.Vendor{PurchaseOrders: []domain.PurchaseOrder{}}
	var contact, email, address, city, state, pincode, gstin, pan, category, terms, notes sql.NullString
	var creditLimit sql.NullFloat64
	var status string
	err := row.Scan(
		&v.ID, &v.VendorID, &v.CompanyName, &contact, &email, &v.Phone, &address, &city, &state,
		&pincode, &gstin, &pan, &category, &v.Rating, &terms, &creditLimit, &status, &notes,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.ContactPerson, v.Email, v.Address = contact.String, email.String, address.String
	v.City, v.State, v.Pincode = city.String, state.String, pincode.String
	v.GSTIN, v.PAN, v.Category = gstin.String, pan.String, category.String
	v.PaymentTerms, v.Notes = terms.String, notes.String
	v.CreditLimit = floatPtr(creditLimit)
	v.Status = domain.VendorStatus(status)
	return v, nil
}

func vendorValues(v *domain.Vendor) map[string]any {
	return map[string]any{
		"company_name":   v.CompanyName,
		"contact_person": nullString(v.ContactPerson),
		"email":          nullString(v.Email),
		"phone":          v.Phone,
		"address":        nullString(v.Address),
		"city":           nullString(v.City),
		"state":          nullString(v.State),
		"pincode":        nullString(v.Pincode),
		"gstin":          nullString(v.GSTIN),
		"pan":            nullString(v.PAN),
		"category":       nullString(v.Category),
		"rating":         v.Rating,
		"payment_terms":  nullString(v.PaymentTerms),
		"credit_limit":   nullFloat(v.CreditLimit),
		"status":         string(v.Status),
		"notes":          nullString(v.Notes),
	}
}

// ListVendors returns vendors newest first with their purchase orders
func (s *PostgresStore) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	query, args, err := s.psql.Select(vendorColumns...).From("vendors").OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build vendor query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list vendors", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	vendors := []domain.Vendor{}
	var ids []int64
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, *v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vendors: %w", err)
	}

	orders, err := s.purchaseOrdersForVendors(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range vendors {
		if pos, ok := orders[vendors[i].ID]; ok {
			vendors[i].PurchaseOrders = pos
		}
	}
	return vendors, nil
}

func (s *PostgresStore) purchaseOrdersForVendors(ctx context.Context, vendorIDs []int64) (map[int64][]domain.PurchaseOrder, error) {
	out := map[int64][]domain.PurchaseOrder{}
	if len(vendorIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT id, order_number, vendor_id, status, total_amount, order_date
		FROM purchase_orders
		WHERE vendor_id = ANY($1)
		ORDER BY order_date DESC
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(vendorIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var po domain.PurchaseOrder
		if err := rows.Scan(&po.ID, &po.OrderNumber, &po.VendorID, &po.Status, &po.TotalAmount, &po.OrderDate); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		out[po.VendorID] = append(out[po.VendorID], po)
	}
	return out, rows.Err()
}

// CreateVendor inserts a vendor and fills its generated fields
func (s *PostgresStore) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	values := vendorValues(vendor)
	values["vendor_id"] = vendor.VendorID

	query, args, err := s.psql.Insert("vendors").SetMap(values).Suffix("RETURNING id, created_at, updated_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build vendor insert: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt); err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.NewRuleError(domain.ErrValidation, "Vendor ID %s already exists.", vendor.VendorID)
		}
		s.logger.Error("failed to create vendor",
			slog.String("vendor_id", vendor.VendorID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}

// UpdateVendor replaces the editable fields of a vendor. vendor_id is immutable.
func (s *PostgresStore) UpdateVendor(ctx context.Context, id int64, vendor *domain.Vendor) error {
	query, args, err := s.psql.Update("vendors").
		SetMap(vendorValues(vendor)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING vendor_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build vendor update: %w", err)
	}

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&vendor.VendorID, &vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("vendor", id)
		}
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	vendor.ID = id
	return nil
}

// DeleteVendor removes a vendor
func (s *PostgresStore) DeleteVendor(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return domain.NewRuleError(domain.ErrHasDependents,
				"Cannot delete vendor with existing purchase orders. Please reassign or remove orders first.")
		}
		return fmt.Errorf("failed to delete vendor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("vendor", id)
	}
	return nil
}

// CountPurchaseOrdersByVendor counts purchase orders placed with a vendor
func (s *PostgresStore) CountPurchaseOrdersByVendor(ctx context.Context, vendorID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchase_orders WHERE vendor_id = $1`, vendorID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count purchase orders: %w", err)
	}
	return n, nil
}
