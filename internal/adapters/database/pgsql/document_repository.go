package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

const documentColumns = `document_id, status, doc_type, doc_date, doc_no, vendor_id,
	total_gross, total_tax, total_net, currency, raw_ocr_text, confidence_score,
	image_ref, image_sha256, notes, created_at, updated_at`

type PgxDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPgxDocumentRepository creates a new repository for document data.
func NewPgxDocumentRepository(pool *pgxpool.Pool) ports.DocumentRepository {
	return &PgxDocumentRepository{pool: pool}
}

// SaveDocument inserts a new document row.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc models.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.pool.Exec(ctx, query,
		doc.DocumentID,
		doc.Status,
		doc.DocType,
		doc.DocDate,
		doc.DocNo,
		doc.VendorID,
		doc.TotalGross,
		doc.TotalTax,
		doc.TotalNet,
		doc.Currency,
		doc.RawOCRText,
		doc.ConfidenceScore,
		doc.ImageRef,
		doc.ImageSHA256,
		doc.Notes,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.DocumentID, err)
	}
	return nil
}

// FindDocumentByID retrieves a document by its ID.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE document_id = $1;`
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document by ID %s: %w", documentID, err)
	}
	return doc, nil
}

// ListDocuments retrieves documents newest first, optionally filtered by status.
func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, status *models.DocumentStatus, limit, offset int) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		documents = append(documents, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return documents, nil
}

// UpdateDraftFields persists user edits. The status guard in the WHERE clause
// makes edits to posted or cancelled documents fail even under races.
func (r *PgxDocumentRepository) UpdateDraftFields(ctx context.Context, doc models.Document) error {
	query := `
		UPDATE documents
		SET doc_type = $2, doc_date = $3, doc_no = $4, vendor_id = $5,
			total_gross = $6, total_tax = $7, total_net = $8, currency = $9,
			notes = $10, updated_at = $11
		WHERE document_id = $1 AND status = $12;
	`
	tag, err := r.pool.Exec(ctx, query,
		doc.DocumentID,
		doc.DocType,
		doc.DocDate,
		doc.DocNo,
		doc.VendorID,
		doc.TotalGross,
		doc.TotalTax,
		doc.TotalNet,
		doc.Currency,
		doc.Notes,
		doc.UpdatedAt,
		models.DocumentStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", doc.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, doc.DocumentID, apperrors.ErrDocumentLocked)
	}
	return nil
}

// UpdateExtraction persists pipeline output onto a draft. Same status guard as
// UpdateDraftFields; a document confirmed or cancelled mid-extraction keeps
// its fields.
func (r *PgxDocumentRepository) UpdateExtraction(ctx context.Context, doc models.Document) error {
	query := `
		UPDATE documents
		SET doc_date = $2, doc_no = $3, vendor_id = $4,
			total_gross = $5, total_tax = $6, total_net = $7, currency = $8,
			raw_ocr_text = $9, confidence_score = $10, updated_at = $11
		WHERE document_id = $1 AND status = $12;
	`
	tag, err := r.pool.Exec(ctx, query,
		doc.DocumentID,
		doc.DocDate,
		doc.DocNo,
		doc.VendorID,
		doc.TotalGross,
		doc.TotalTax,
		doc.TotalNet,
		doc.Currency,
		doc.RawOCRText,
		doc.ConfidenceScore,
		doc.UpdatedAt,
		models.DocumentStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to update extraction for document %s: %w", doc.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, doc.DocumentID, apperrors.ErrDocumentLocked)
	}
	return nil
}

// ConfirmDocument flips the draft to posted and inserts its ledger entry in
// one database transaction.
func (r *PgxDocumentRepository) ConfirmDocument(ctx context.Context, doc models.Document, entry models.LedgerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	docQuery := `
		UPDATE documents
		SET status = $2, doc_date = $3, vendor_id = $4,
			total_gross = $5, total_tax = $6, total_net = $7,
			notes = $8, updated_at = $9
		WHERE document_id = $1 AND status = $10;
	`
	tag, err := tx.Exec(ctx, docQuery,
		doc.DocumentID,
		models.DocumentStatusPosted,
		doc.DocDate,
		doc.VendorID,
		doc.TotalGross,
		doc.TotalTax,
		doc.TotalNet,
		doc.Notes,
		doc.UpdatedAt,
		models.DocumentStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to post document %s: %w", doc.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, doc.DocumentID, apperrors.ErrInvalidStateTransition)
	}

	entryQuery := `
		INSERT INTO ledger_entries (entry_id, document_id, vendor_id, category_id, direction, amount, tax_amount, currency, entry_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, entryQuery,
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
		return fmt.Errorf("failed to insert ledger entry for document %s: %w", doc.DocumentID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit confirmation of document %s: %w", doc.DocumentID, err)
	}
	return nil
}

// CancelDocument flips a draft to cancelled. The artifact and raw text stay in
// place for audit.
func (r *PgxDocumentRepository) CancelDocument(ctx context.Context, documentID string, now time.Time) error {
	query := `
		UPDATE documents
		SET status = $2, updated_at = $3
		WHERE document_id = $1 AND status = $4;
	`
	tag, err := r.pool.Exec(ctx, query, documentID, models.DocumentStatusCancelled, now, models.DocumentStatusDraft)
	if err != nil {
		return fmt.Errorf("failed to cancel document %s: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, documentID, apperrors.ErrInvalidStateTransition)
	}
	return nil
}

// guardFailure distinguishes a missing row from a status-guard rejection after
// a zero-row update.
func (r *PgxDocumentRepository) guardFailure(ctx context.Context, documentID string, guardErr error) error {
	var status models.DocumentStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM documents WHERE document_id = $1;`, documentID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check status of document %s: %w", documentID, err)
	}
	return fmt.Errorf("%w: document %s is %s", guardErr, documentID, status)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.DocumentID,
		&doc.Status,
		&doc.DocType,
		&doc.DocDate,
		&doc.DocNo,
		&doc.VendorID,
		&doc.TotalGross,
		&doc.TotalTax,
		&doc.TotalNet,
		&doc.Currency,
		&doc.RawOCRText,
		&doc.ConfidenceScore,
		&doc.ImageRef,
		&doc.ImageSHA256,
		&doc.Notes,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
