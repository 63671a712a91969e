package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warta-media/warta/internal/auth"
	"github.com/warta-media/warta/internal/observability"
	"github.com/warta-media/warta/internal/shared"
	_ "github.com/warta-media/warta/testing"
)

type handlerMockRepo struct {
	identities map[string]*auth.Identity
	nextID     int64
}

func newHandlerMockRepo() *handlerMockRepo {
	return &handlerMockRepo{identities: make(map[string]*auth.Identity), nextID: 1}
}

func (m *handlerMockRepo) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	identity, ok := m.identities[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return identity, nil
}

func (m *handlerMockRepo) FindByID(ctx context.Context, id int64) (*auth.Identity, error) {
	for _, identity := range m.identities {
		if identity.ID == id {
			return identity, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *handlerMockRepo) Create(ctx context.Context, params auth.CreateParams) (*auth.Identity, error) {
	if _, exists := m.identities[params.Email]; exists {
		return nil, shared.ErrDuplicateIdentity
	}
	identity := &auth.Identity{
		ID:           m.nextID,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FullName:     params.FullName,
		Role:         params.Role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.nextID++
	m.identities[params.Email] = identity
	return identity, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthRouter(t *testing.T) (chi.Router, *auth.Service) {
	t.Helper()
	manager, err := auth.NewTokenManager("test-secret", "warta-test", 0)
	require.NoError(t, err)
	service := auth.NewService(newHandlerMockRepo(), manager, auth.MinBcryptCost)
	handler := auth.NewHandler(discardLogger(), service, observability.NewMetrics())

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, service
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newAuthRouter(t)

	res := postJSON(t, router, "/auth/register", `{"email":"api@warta.id","full_name":"Api User","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	var payload struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "api@warta.id", payload.User.Email)
	assert.Equal(t, "USER", payload.User.Role)
	assert.NotEmpty(t, payload.Token)
	assert.NotContains(t, res.Body.String(), "password")
}

func TestRegisterEndpointRejectsSuperAdmin(t *testing.T) {
	router, _ := newAuthRouter(t)

	res := postJSON(t, router, "/auth/register", `{"email":"root@warta.id","full_name":"Root","password":"correct-horse","role":"SUPER_ADMIN"}`)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	router, _ := newAuthRouter(t)

	res := postJSON(t, router, "/auth/register", `{"email":"not-an-email","full_name":"x","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginEndpointUniformFailure(t *testing.T) {
	router, _ := newAuthRouter(t)

	res := postJSON(t, router, "/auth/register", `{"email":"login@warta.id","full_name":"Login User","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	wrongPassword := postJSON(t, router, "/auth/login", `{"email":"login@warta.id","password":"wrong-horse"}`)
	unknownEmail := postJSON(t, router, "/auth/login", `{"email":"ghost@warta.id","password":"correct-horse"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginEndpointSuccess(t *testing.T) {
	router, _ := newAuthRouter(t)

	res := postJSON(t, router, "/auth/register", `{"email":"ok@warta.id","full_name":"Ok User","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	login := postJSON(t, router, "/auth/login", `{"email":"ok@warta.id","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, login.Code)
	assert.Contains(t, login.Body.String(), `"token"`)
}
