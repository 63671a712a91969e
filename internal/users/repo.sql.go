package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/platform/db"
	"github.com/warta-media/warta/internal/shared"
)

// CreateParams carries the fields for an administratively provisioned account.
type CreateParams struct {
	Email        string
	PasswordHash string
	FullName     string
	AvatarURL    string
	Role         authz.Role
}

// UpdateProfileParams carries mutable profile fields. Empty PasswordHash
// leaves the stored hash untouched.
type UpdateProfileParams struct {
	FullName     string
	AvatarURL    string
	PasswordHash string
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, full_name, COALESCE(avatar_url, ''), role, created_at, updated_at`

// List returns a page of users plus the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// FindByID fetches a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts an administratively provisioned account. Duplicate email
// surfaces as shared.ErrDuplicateIdentity.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NOW(), NOW())
		RETURNING `+userColumns,
		params.Email, params.PasswordHash, params.FullName, params.AvatarURL, string(params.Role))
	user, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicateIdentity
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates name, avatar, and optionally the password hash.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, params UpdateProfileParams) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2,
		    avatar_url = NULLIF($3, ''),
		    password_hash = COALESCE(NULLIF($4, ''), password_hash),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, params.FullName, params.AvatarURL, params.PasswordHash)
	return scanUser(row)
}

// UpdateRole replaces the account's role. The stored role is re-read
// inside the transaction and must still match the role the policy was
// evaluated against, so a concurrent change cannot slip past the check.
func (r *Repository) UpdateRole(ctx context.Context, id int64, expected, next authz.Role) (*User, error) {
	var user *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current string
		if err := tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if authz.Role(current) != expected {
			return shared.ErrForbidden
		}
		row := tx.QueryRow(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
			id, string(next))
		updated, err := scanUser(row)
		if err != nil {
			return err
		}
		user = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account. Returns shared.ErrNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
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

func scanUser(row rowScanner) (*User, error) {
	var user User
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.AvatarURL, &role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.Role = authz.Role(role)
	return &user, nil
}
