package users

import (
	"context"
	"strconv"
	"strings"

	"github.com/warta-media/warta/internal/auth"
	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, params CreateParams) (*User, error)
	UpdateProfile(ctx context.Context, id int64, params UpdateProfileParams) (*User, error)
	UpdateRole(ctx context.Context, id int64, expected, next authz.Role) (*User, error)
	Delete(ctx context.Context, id int64) error
}

// Auditor records administrative actions. Satisfied by shared.AuditLogger.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user management. Every mutation takes the acting
// identity explicitly and evaluates the role policies before touching
// storage.
type Service struct {
	repo       RepositoryPort
	audit      Auditor
	bcryptCost int
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit Auditor, bcryptCost int) *Service {
	return &Service{repo: repo, audit: audit, bcryptCost: bcryptCost}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	result, total, err := s.repo.List(ctx, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// ProvisionInput carries an administrative account-creation request.
type ProvisionInput struct {
	Email    string
	FullName string
	Password string
	Role     string
}

// Provision creates an account with an explicit role on behalf of the
// actor. The role hierarchy decides whether the grant is allowed;
// SUPER_ADMIN is never grantable.
func (s *Service) Provision(ctx context.Context, actor shared.Actor, in ProvisionInput) (*User, error) {
	role := authz.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := authz.ParseRole(in.Role)
		if !ok {
			return nil, shared.ErrForbiddenRole
		}
		role = parsed
	}
	if !authz.CanAssignRole(authz.Role(actor.Role), role) {
		return nil, shared.ErrForbiddenRole
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.Create(ctx, CreateParams{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "user.provision", user.ID, map[string]any{"role": string(role)})
	return user, nil
}

// ProfileInput carries a profile update request.
type ProfileInput struct {
	FullName  string
	AvatarURL string
	Password  string
}

// UpdateProfile changes name/avatar/password. Permitted for the account
// itself, or for an actor whose role may manage the target's role.
func (s *Service) UpdateProfile(ctx context.Context, actor shared.Actor, id int64, in ProfileInput) (*User, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	isSelf := actor.ID == id
	if !isSelf && !authz.CanAssignRole(authz.Role(actor.Role), target.Role) {
		return nil, shared.ErrForbidden
	}
	params := UpdateProfileParams{
		FullName:  strings.TrimSpace(in.FullName),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		params.PasswordHash = hash
	}
	return s.repo.UpdateProfile(ctx, id, params)
}

// ChangeRole moves an account to a new role under the hierarchy policy.
func (s *Service) ChangeRole(ctx context.Context, actor shared.Actor, id int64, newRole string) (*User, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role, ok := authz.ParseRole(newRole)
	if !ok {
		return nil, shared.ErrForbiddenRole
	}
	if !authz.CanChangeRole(authz.Role(actor.Role), target.Role, role, actor.ID == id) {
		return nil, shared.ErrForbidden
	}
	user, err := s.repo.UpdateRole(ctx, id, target.Role, role)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "user.role_change", id, map[string]any{
		"from": string(target.Role),
		"to":   string(role),
	})
	return user, nil
}

// Delete removes an account under the deletion policy. The minimum actor
// privilege is enforced at the route gate.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteIdentity(target.Role, actor.ID == id) {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "user.delete", id, map[string]any{"role": string(target.Role)})
	return nil
}

func (s *Service) record(ctx context.Context, actor shared.Actor, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
