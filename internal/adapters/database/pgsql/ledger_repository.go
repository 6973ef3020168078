package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

const entryColumns = `entry_id, document_id, vendor_id, category_id, direction, amount, tax_amount, currency, entry_date, notes, created_at`

// PgxLedgerRepository persists ledger entries. There are deliberately no
// update or delete statements in this file; the table is insert-only.
type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPgxLedgerRepository creates a new repository for ledger entries.
func NewPgxLedgerRepository(pool *pgxpool.Pool) ports.LedgerRepository {
	return &PgxLedgerRepository{pool: pool}
}

// SaveEntry inserts a ledger entry.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.pool.Exec(ctx, query,
		entry.EntryID,
		entry.DocumentID,
		entry.VendorID,
		entry.CategoryID,
		entry.Direction,
		entry.Amount,
		entry.TaxAmount,
		entry.Currency,
		entry.EntryDate,
		entry.Notes,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// FindEntryByID retrieves an entry by its ID.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger entry by ID %s: %w", entryID, err)
	}
	return entry, nil
}

// FindEntryByDocumentID retrieves the entry created by confirming a document.
func (r *PgxLedgerRepository) FindEntryByDocumentID(ctx context.Context, documentID string) (*models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE document_id = $1;`
	entry, err := scanEntry(r.pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger entry for document %s: %w", documentID, err)
	}
	return entry, nil
}

// ListEntries retrieves entries newest first, narrowed by the filter.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, filter ports.LedgerFilter) ([]models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE 1=1`
	args := []any{}
	if filter.Direction != nil {
		args = append(args, *filter.Direction)
		query += fmt.Sprintf(` AND direction = $%d`, len(args))
	}
	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		query += fmt.Sprintf(` AND vendor_id = $%d`, len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}

func scanEntry(row rowScanner) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := row.Scan(
		&entry.EntryID,
		&entry.DocumentID,
		&entry.VendorID,
		&entry.CategoryID,
		&entry.Direction,
		&entry.Amount,
		&entry.TaxAmount,
		&entry.Currency,
		&entry.EntryDate,
		&entry.Notes,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
