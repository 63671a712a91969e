package auth

import (
	"time"

	"github.com/warta-media/warta/internal/authz"
)

// Identity represents a user account.
type Identity struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	AvatarURL    string
	Role         authz.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
