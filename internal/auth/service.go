package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

// dummyHash keeps login timing uniform when the email is unknown, so the
// response cannot be used for account enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("warta-dummy-credential"), MinBcryptCost)

// Service orchestrates registration and login.
type Service struct {
	repo   Repository
	tokens *TokenManager
	cost   int
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager, bcryptCost int) *Service {
	if bcryptCost < MinBcryptCost {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{repo: repo, tokens: tokens, cost: bcryptCost}
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
	Role     string
}

// Register creates an identity and issues its first token. The role
// defaults to USER; SUPER_ADMIN is rejected before anything is persisted,
// since this path is reachable anonymously.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Identity, string, error) {
	role := authz.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := authz.ParseRole(in.Role)
		if !ok {
			return nil, "", shared.ErrForbiddenRole
		}
		role = parsed
	}
	if role == authz.RoleSuperAdmin {
		return nil, "", shared.ErrForbiddenRole
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, "", err
	}
	identity, err := s.repo.Create(ctx, CreateParams{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
	})
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(identity.ID, identity.Role)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// Login validates credentials and issues a fresh token. Unknown email and
// wrong password collapse into the same error; storage failures pass
// through untouched so they surface as 500, not 401.
func (s *Service) Login(ctx context.Context, email, password string) (*Identity, string, error) {
	identity, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, "", shared.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !VerifyPassword(password, identity.PasswordHash) {
		return nil, "", shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(identity.ID, identity.Role)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}
