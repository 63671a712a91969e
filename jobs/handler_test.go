package jobs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

type staticVerifier struct {
	actor shared.Actor
	err   error
}

func (v staticVerifier) VerifyActor(string) (shared.Actor, error) {
	if v.err != nil {
		return shared.Actor{}, v.err
	}
	return v.actor, nil
}

func newJobsRouter(verifier authz.TokenVerifier, client *Client) chi.Router {
	gate := authz.Middleware{Verifier: verifier, Logger: testLogger()}
	handler := NewHandler(nil, client, gate, testLogger())
	r := chi.NewRouter()
	r.Route("/jobs", handler.MountRoutes)
	return r
}

func doPost(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRunEndpointsRequireAuthentication(t *testing.T) {
	router := newJobsRouter(staticVerifier{err: shared.ErrTokenInvalid}, nil)

	assert.Equal(t, http.StatusUnauthorized, doPost(router, "/jobs/run/ads-expire", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doPost(router, "/jobs/run/views-flush", "any").Code)
}

func TestRunEndpointsRequireAdmin(t *testing.T) {
	router := newJobsRouter(staticVerifier{actor: shared.Actor{ID: 7, Role: string(authz.RoleEditor)}}, nil)

	res := doPost(router, "/jobs/run/ads-expire", "editor-token")
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRunEndpointsWithoutQueue(t *testing.T) {
	router := newJobsRouter(staticVerifier{actor: shared.Actor{ID: 1, Role: string(authz.RoleAdmin)}}, nil)

	res := doPost(router, "/jobs/run/views-flush", "admin-token")
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	assert.Contains(t, res.Body.String(), "not configured")
}

func TestHealthWithoutInspector(t *testing.T) {
	router := newJobsRouter(staticVerifier{err: shared.ErrTokenInvalid}, nil)

	req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, res.Body.String())
}
