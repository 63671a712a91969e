package newspapers

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

const newspaperColumns = `id, title, language, description, created_at, updated_at`

func scanNewspaper(row pgx.Row) (*Newspaper, error) {
	var paper Newspaper
	err := row.Scan(&paper.ID, &paper.Title, &paper.Language, &paper.Description, &paper.CreatedAt, &paper.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &paper, nil
}

// List returns all newspapers, optionally filtered by language.
func (r *Repository) List(ctx context.Context, lang string) ([]Newspaper, error) {
	query := `SELECT ` + newspaperColumns + ` FROM newspapers`
	args := []any{}
	if lang != "" {
		query += ` WHERE language = $1`
		args = append(args, lang)
	}
	query += ` ORDER BY title`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Newspaper
	for rows.Next() {
		var paper Newspaper
		if err := rows.Scan(&paper.ID, &paper.Title, &paper.Language, &paper.Description, &paper.CreatedAt, &paper.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, paper)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByID fetches a newspaper by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Newspaper, error) {
	return scanNewspaper(r.pool.QueryRow(ctx, `SELECT `+newspaperColumns+` FROM newspapers WHERE id = $1`, id))
}

// Create inserts a newspaper. Duplicate titles per language surface as
// shared.ErrDuplicateIdentity.
func (r *Repository) Create(ctx context.Context, title, lang, description string) (*Newspaper, error) {
	paper, err := scanNewspaper(r.pool.QueryRow(ctx, `
		INSERT INTO newspapers (title, language, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING `+newspaperColumns, title, lang, description))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicateIdentity
		}
		return nil, err
	}
	return paper, nil
}

// Update rewrites a newspaper's fields.
func (r *Repository) Update(ctx context.Context, id int64, title, lang, description string) (*Newspaper, error) {
	paper, err := scanNewspaper(r.pool.QueryRow(ctx, `
		UPDATE newspapers SET title = $2, language = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+newspaperColumns, id, title, lang, description))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicateIdentity
		}
		return nil, err
	}
	return paper, nil
}

// Delete removes a newspaper.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM newspapers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
