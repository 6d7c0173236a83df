package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/metrics"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/utils"
)

const secret = "router-test-secret"

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// newServer registers every route.  The handlers have no stores: the
// tests only reach the middleware in front of them.
func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	log, _ := test.NewNullLogger()
	e := echo.New()
	e.Validator = handler.NewValidator()
	RegisterRoutes(e, metrics.New(), nil)
	RegisterAuth(e, &handler.AuthHandler{Log: log})
	RegisterUser(e, secret, &handler.CatalogHandler{Log: log}, &handler.ReservationHandler{Log: log}, passThrough, passThrough)
	RegisterAdmin(e, secret, &handler.AdminReservationHandler{Log: log}, &handler.AdminCatalogHandler{Log: log}, &handler.AdminUserHandler{Log: log})
	return e
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, role model.Role) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, 42, role, 5)
	require.NoError(t, err)
	return tok.Token
}

func TestOperationalRoutes(t *testing.T) {
	e := newServer(t)

	rec := serve(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := newServer(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/rooms"},
		{http.MethodPost, "/v1/reservations"},
		{http.MethodGet, "/v1/my-reservations"},
		{http.MethodGet, "/v1/admin/reservations"},
		{http.MethodDelete, "/v1/admin/reservations/all"},
	} {
		rec := serve(e, r.method, r.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, r.path)
	}

	rec := serve(e, http.MethodGet, "/v1/rooms", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	e := newServer(t)
	for _, role := range []model.Role{model.RoleStudent, model.RoleFaculty} {
		tok := token(t, role)
		for _, r := range []struct{ method, path string }{
			{http.MethodGet, "/v1/admin/reservations"},
			{http.MethodPost, "/v1/admin/reservations/1/decision"},
			{http.MethodDelete, "/v1/admin/reservations?status=rejected"},
			{http.MethodDelete, "/v1/admin/reservations/all"},
			{http.MethodPost, "/v1/admin/rooms"},
			{http.MethodPatch, "/v1/admin/users/1"},
		} {
			rec := serve(e, r.method, r.path, tok)
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s as %s", r.method, r.path, role)
		}
	}
}

func TestTokenFromOtherSecretIsRejected(t *testing.T) {
	e := newServer(t)
	tok, err := utils.NewAccessToken("some-other-secret", 42, model.RoleAdmin, 5)
	require.NoError(t, err)
	rec := serve(e, http.MethodGet, "/v1/admin/reservations", tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
