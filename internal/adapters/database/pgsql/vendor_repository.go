package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

const vendorColumns = `vendor_id, display_name, normalized_name, tax_id, phone, address, notes, created_at`

type PgxVendorRepository struct {
	pool *pgxpool.Pool
}

// NewPgxVendorRepository creates a new repository for vendor data.
func NewPgxVendorRepository(pool *pgxpool.Pool) ports.VendorRepository {
	return &PgxVendorRepository{pool: pool}
}

// SaveVendor inserts a vendor. The unique index on normalized_name makes
// concurrent creations of the same vendor lose with ErrDuplicate instead of
// producing twins.
func (r *PgxVendorRepository) SaveVendor(ctx context.Context, vendor models.Vendor) error {
	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		vendor.VendorID,
		vendor.DisplayName,
		vendor.NormalizedName,
		vendor.TaxID,
		vendor.Phone,
		vendor.Address,
		vendor.Notes,
		vendor.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: vendor %q: %v", apperrors.ErrDuplicate, vendor.DisplayName, err)
		}
		return fmt.Errorf("failed to insert vendor %s: %w", vendor.VendorID, err)
	}
	return nil
}

// FindVendorByID retrieves a vendor by its ID.
func (r *PgxVendorRepository) FindVendorByID(ctx context.Context, vendorID string) (*models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE vendor_id = $1;`
	return r.findOne(ctx, query, vendorID)
}

// FindVendorByNormalizedName retrieves a vendor by its matching key.
func (r *PgxVendorRepository) FindVendorByNormalizedName(ctx context.Context, normalizedName string) (*models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE normalized_name = $1;`
	return r.findOne(ctx, query, normalizedName)
}

// FindVendorByTaxID retrieves a vendor by its tax id.
func (r *PgxVendorRepository) FindVendorByTaxID(ctx context.Context, taxID string) (*models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE tax_id = $1;`
	return r.findOne(ctx, query, taxID)
}

func (r *PgxVendorRepository) findOne(ctx context.Context, query string, arg any) (*models.Vendor, error) {
	vendor, err := scanVendor(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find vendor: %w", err)
	}
	return vendor, nil
}

// ListVendors retrieves vendors alphabetically, optionally filtered by a
// case-insensitive display-name search.
func (r *PgxVendorRepository) ListVendors(ctx context.Context, search string, limit, offset int) ([]models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	args := []any{}
	if search != "" {
		query += ` WHERE display_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += fmt.Sprintf(` ORDER BY display_name LIMIT $%d OFFSET $%d;`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	vendors := []models.Vendor{}
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor row: %w", err)
		}
		vendors = append(vendors, *vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vendor rows: %w", err)
	}
	return vendors, nil
}

// ListVendorUsage retrieves every vendor joined with its ledger-entry count,
// the candidate set for fuzzy matching.
func (r *PgxVendorRepository) ListVendorUsage(ctx context.Context) ([]models.VendorUsage, error) {
	query := `
		SELECT v.vendor_id, v.display_name, v.normalized_name, v.tax_id, v.phone, v.address, v.notes, v.created_at,
			COUNT(e.entry_id) AS entry_count
		FROM vendors v
		LEFT JOIN ledger_entries e ON e.vendor_id = v.vendor_id
		GROUP BY v.vendor_id
		ORDER BY v.display_name;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor usage: %w", err)
	}
	defer rows.Close()

	usages := []models.VendorUsage{}
	for rows.Next() {
		var usage models.VendorUsage
		if err := rows.Scan(
			&usage.VendorID,
			&usage.DisplayName,
			&usage.NormalizedName,
			&usage.TaxID,
			&usage.Phone,
			&usage.Address,
			&usage.Notes,
			&usage.CreatedAt,
			&usage.EntryCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor usage row: %w", err)
		}
		usages = append(usages, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vendor usage rows: %w", err)
	}
	return usages, nil
}

// UpdateVendor replaces a vendor's mutable fields.
func (r *PgxVendorRepository) UpdateVendor(ctx context.Context, vendor models.Vendor) error {
	query := `
		UPDATE vendors
		SET display_name = $2, normalized_name = $3, tax_id = $4, phone = $5, address = $6, notes = $7
		WHERE vendor_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		vendor.VendorID,
		vendor.DisplayName,
		vendor.NormalizedName,
		vendor.TaxID,
		vendor.Phone,
		vendor.Address,
		vendor.Notes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: vendor %q: %v", apperrors.ErrDuplicate, vendor.DisplayName, err)
		}
		return fmt.Errorf("failed to update vendor %s: %w", vendor.VendorID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanVendor(row rowScanner) (*models.Vendor, error) {
	var vendor models.Vendor
	err := row.Scan(
		&vendor.VendorID,
		&vendor.DisplayName,
		&vendor.NormalizedName,
		&vendor.TaxID,
		&vendor.Phone,
		&vendor.Address,
		&vendor.Notes,
		&vendor.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}
