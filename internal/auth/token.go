package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

// Claims is the verified content of an identity token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed identity tokens. Tokens are
// stateless: validity is signature plus expiry, nothing is persisted and
// there is no revocation list.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and
// lifetime. An empty secret is a deployment mistake and refuses to start.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret not configured")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the subject with its role embedded.
func (t *TokenManager) Issue(subjectID int64, role authz.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(subjectID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and decodes the claims. Expired
// tokens return shared.ErrTokenExpired, everything else that fails
// returns shared.ErrTokenInvalid; callers surface both identically.
func (t *TokenManager) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrTokenExpired
		}
		return nil, shared.ErrTokenInvalid
	}
	if _, ok := authz.ParseRole(claims.Role); !ok {
		return nil, shared.ErrTokenInvalid
	}
	return claims, nil
}

// VerifyActor decodes a token into the actor shape the authorization gate
// consumes.
func (t *TokenManager) VerifyActor(raw string) (shared.Actor, error) {
	claims, err := t.Verify(raw)
	if err != nil {
		return shared.Actor{}, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return shared.Actor{}, shared.ErrTokenInvalid
	}
	return shared.Actor{ID: id, Role: claims.Role}, nil
}
