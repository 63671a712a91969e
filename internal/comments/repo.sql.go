package comments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

const commentColumns = `id, article_id, author_id, body, created_at, updated_at`

// ListByArticle returns a page of comments for one article, newest first.
func (r *Repository) ListByArticle(ctx context.Context, articleID int64, limit, offset int) ([]Comment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE article_id = $1`, articleID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+commentColumns+` FROM comments WHERE article_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		articleID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// FindByID fetches a comment by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	return scanComment(row)
}

// GetOwnerID returns only the author id for the mutation policy.
func (r *Repository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM comments WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// Create inserts a new comment.
func (r *Repository) Create(ctx context.Context, articleID, authorID int64, body string) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO comments (article_id, author_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING `+commentColumns,
		articleID, authorID, body)
	return scanComment(row)
}

// Update rewrites the comment body.
func (r *Repository) Update(ctx context.Context, id int64, body string) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `UPDATE comments SET body = $2, updated_at = NOW() WHERE id = $1 RETURNING `+commentColumns,
		id, body)
	return scanComment(row)
}

// Delete removes the comment.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*Comment, error) {
	var comment Comment
	err := row.Scan(&comment.ID, &comment.ArticleID, &comment.AuthorID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}
