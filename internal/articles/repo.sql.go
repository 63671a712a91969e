package articles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warta-media/warta/internal/shared"
)

// CreateParams carries the fields persisted for a new article.
type CreateParams struct {
	Title       string
	Body        string
	Language    string
	CategoryID  int64
	NewspaperID int64
	AuthorID    int64
	Published   bool
}

// UpdateParams carries the mutable article fields.
type UpdateParams struct {
	Title      string
	Body       string
	Language   string
	CategoryID int64
	Published  bool
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const articleColumns = `id, title, body, language, category_id, COALESCE(newspaper_id, 0), author_id, published, views, created_at, updated_at`

// List returns a page of articles plus the total count for the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Article, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Language != "" {
		args = append(args, filter.Language)
		where += fmt.Sprintf(" AND language = $%d", len(args))
	}
	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		where += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.OnlyLive {
		where += " AND published"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + articleColumns + ` FROM articles` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// FindByID fetches an article by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	return scanArticle(row)
}

// GetOwnerID returns only the author id, the single fact the mutation
// policy needs.
func (r *Repository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM articles WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// Create inserts a new article.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Article, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO articles (title, body, language, category_id, newspaper_id, author_id, published, views, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0), $6, $7, 0, NOW(), NOW())
		RETURNING `+articleColumns,
		params.Title, params.Body, params.Language, params.CategoryID, params.NewspaperID, params.AuthorID, params.Published)
	return scanArticle(row)
}

// Update rewrites the mutable fields. The author column is deliberately
// absent from the statement; ownership is immutable.
func (r *Repository) Update(ctx context.Context, id int64, params UpdateParams) (*Article, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE articles
		SET title = $2, body = $3, language = $4, category_id = $5, published = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+articleColumns,
		id, params.Title, params.Body, params.Language, params.CategoryID, params.Published)
	return scanArticle(row)
}

// Delete removes the article.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddViews folds a batch of counted views into the stored total.
func (r *Repository) AddViews(ctx context.Context, id, delta int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE articles SET views = views + $2 WHERE id = $1`, id, delta)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var article Article
	err := row.Scan(&article.ID, &article.Title, &article.Body, &article.Language, &article.CategoryID,
		&article.NewspaperID, &article.AuthorID, &article.Published, &article.Views,
		&article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}
