package users

import (
	"time"

	"github.com/warta-media/warta/internal/authz"
)

// User represents a user account for management. The password hash never
// leaves the repository layer.
type User struct {
	ID        int64
	Email     string
	FullName  string
	AvatarURL string
	Role      authz.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
