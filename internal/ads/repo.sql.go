package ads

import (
	"context"
	"errors"
	"time"

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

const adColumns = `id, title, image_url, target_url, starts_at, ends_at, active, created_at, updated_at`

func scanAd(row pgx.Row) (*Ad, error) {
	var ad Ad
	err := row.Scan(&ad.ID, &ad.Title, &ad.ImageURL, &ad.TargetURL, &ad.StartsAt, &ad.EndsAt, &ad.Active, &ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ad, nil
}

// List returns ads. When liveOnly is set, only active ads inside their
// delivery window are returned.
func (r *Repository) List(ctx context.Context, liveOnly bool) ([]Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads`
	if liveOnly {
		query += ` WHERE active AND starts_at <= NOW() AND ends_at > NOW()`
	}
	query += ` ORDER BY starts_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Ad
	for rows.Next() {
		var ad Ad
		if err := rows.Scan(&ad.ID, &ad.Title, &ad.ImageURL, &ad.TargetURL, &ad.StartsAt, &ad.EndsAt, &ad.Active, &ad.CreatedAt, &ad.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByID fetches an ad by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Ad, error) {
	return scanAd(r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
}

// CreateParams carries insert fields.
type CreateParams struct {
	Title     string
	ImageURL  string
	TargetURL string
	StartsAt  time.Time
	EndsAt    time.Time
}

// Create inserts a new ad. Ads start inactive until explicitly enabled.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*Ad, error) {
	return scanAd(r.pool.QueryRow(ctx, `
		INSERT INTO ads (title, image_url, target_url, starts_at, ends_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		RETURNING `+adColumns, p.Title, p.ImageURL, p.TargetURL, p.StartsAt, p.EndsAt))
}

// Update rewrites an ad's placement fields.
func (r *Repository) Update(ctx context.Context, id int64, p CreateParams) (*Ad, error) {
	return scanAd(r.pool.QueryRow(ctx, `
		UPDATE ads SET title = $2, image_url = $3, target_url = $4, starts_at = $5, ends_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+adColumns, id, p.Title, p.ImageURL, p.TargetURL, p.StartsAt, p.EndsAt))
}

// SetActive flips the delivery flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (*Ad, error) {
	return scanAd(r.pool.QueryRow(ctx, `
		UPDATE ads SET active = $2, updated_at = NOW() WHERE id = $1
		RETURNING `+adColumns, id, active))
}

// Delete removes an ad.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeactivateEnded turns off active ads whose window has passed and
// returns how many were flipped.
func (r *Repository) DeactivateEnded(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE ads SET active = FALSE, updated_at = NOW() WHERE active AND ends_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
