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

const categoryColumns = `category_id, parent_id, name, icon, color, created_at`

type PgxCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCategoryRepository creates a new repository for categories.
func NewPgxCategoryRepository(pool *pgxpool.Pool) ports.CategoryRepository {
	return &PgxCategoryRepository{pool: pool}
}

// SaveCategory inserts a category.
func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category models.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.pool.Exec(ctx, query,
		category.CategoryID,
		category.ParentID,
		category.Name,
		category.Icon,
		category.Color,
		category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", category.CategoryID, err)
	}
	return nil
}

// FindCategoryByID retrieves a category by its ID.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1;`
	category, err := scanCategory(r.pool.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID %s: %w", categoryID, err)
	}
	return category, nil
}

// ListCategories retrieves all categories alphabetically.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name;`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

// UpdateCategory replaces a category's mutable fields.
func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category models.Category) error {
	query := `
		UPDATE categories
		SET parent_id = $2, name = $3, icon = $4, color = $5
		WHERE category_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		category.CategoryID,
		category.ParentID,
		category.Name,
		category.Icon,
		category.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to update category %s: %w", category.CategoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	err := row.Scan(
		&category.CategoryID,
		&category.ParentID,
		&category.Name,
		&category.Icon,
		&category.Color,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}
