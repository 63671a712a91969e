package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/platform/db"
	"github.com/warta-media/warta/internal/shared"
)

// CreateParams carries the fields persisted for a new identity.
type CreateParams struct {
	Email        string
	PasswordHash string
	FullName     string
	AvatarURL    string
	Role         authz.Role
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id int64) (*Identity, error)
	Create(ctx context.Context, params CreateParams) (*Identity, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const identityColumns = `id, email, password_hash, full_name, COALESCE(avatar_url, ''), role, created_at, updated_at`

// FindByEmail fetches an identity by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE email = $1`, email)
	return scanIdentity(row)
}

// FindByID fetches an identity by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE id = $1`, id)
	return scanIdentity(row)
}

// Create inserts a new identity. The unique index on email and the partial
// unique index on the SUPER_ADMIN role make this an atomic check-and-insert;
// losing either race surfaces as shared.ErrDuplicateIdentity.
func (r *PGRepository) Create(ctx context.Context, params CreateParams) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NOW(), NOW())
		RETURNING `+identityColumns,
		params.Email, params.PasswordHash, params.FullName, params.AvatarURL, string(params.Role))
	identity, err := scanIdentity(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicateIdentity
		}
		return nil, err
	}
	return identity, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*Identity, error) {
	var identity Identity
	var role string
	err := row.Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.FullName,
		&identity.AvatarURL, &role, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	identity.Role = authz.Role(role)
	return &identity, nil
}

var _ Repository = (*PGRepository)(nil)
