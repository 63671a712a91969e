package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warta-media/warta/internal/platform/db"
	"github.com/warta-media/warta/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const categoryColumns = `id, name, slug, created_at, updated_at`

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByID fetches a category by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id).
		Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category. Duplicate slug surfaces as
// shared.ErrDuplicateIdentity.
func (r *Repository) Create(ctx context.Context, name, slug string) (*Category, error) {
	var category Category
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING `+categoryColumns, name, slug).
		Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicateIdentity
		}
		return nil, err
	}
	return &category, nil
}

// Update renames a category.
func (r *Repository) Update(ctx context.Context, id int64, name, slug string) (*Category, error) {
	var category Category
	err := r.pool.QueryRow(ctx, `
		UPDATE categories SET name = $2, slug = $3, updated_at = NOW() WHERE id = $1
		RETURNING `+categoryColumns, id, name, slug).
		Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicateIdentity
		}
		return nil, err
	}
	return &category, nil
}

// Delete removes a category.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
