package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/dispatch"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/identity"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/users"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/middleware"
	"github.com/stretchr/testify/require"
)

// fakeVerifier maps raw bearer tokens to claims.
type fakeVerifier map[string]map[string]interface{}

func (f fakeVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims, ok := f[raw]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return middleware.ClaimsToken(claims), nil
}

var testTokens = fakeVerifier{
	"admin-token": {"sub": "admin-sub", "name": "Root", "email": "root@example.com", models.GroupsClaim: []interface{}{"admin"}},
	"user-token":  {"sub": "user-sub", "name": "Uma", "email": "uma@example.com", models.GroupsClaim: []interface{}{"viewer"}},
}

func setupUserRoutes(t *testing.T) (*gin.Engine, *identity.MemoryProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	prov := identity.NewMemoryProvider()
	svc := users.NewService(users.NewMemoryUserRepository(), prov)
	r := gin.New()
	NewUserHandler(dispatch.New(svc)).Register(r, testTokens, nil)
	return r, prov
}

func call(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserRoutes_RegisterListUpdate(t *testing.T) {
	r, prov := setupUserRoutes(t)

	w := call(r, http.MethodPost, "/api/v1/users", "admin-token", `{"name":"Alice","email":"alice@example.com","role":"viewer"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "true", w.Body.String())

	w = call(r, http.MethodGet, "/api/v1/users", "admin-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	id := list[0].ID

	w = call(r, http.MethodPut, "/api/v1/users/"+id+"/role", "admin-token", `{"role":"editor"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, []string{"editor"}, prov.GroupsOf("alice@example.com"))
}

func TestUserRoutes_NonAdminForbidden(t *testing.T) {
	r, prov := setupUserRoutes(t)

	w := call(r, http.MethodGet, "/api/v1/users", "user-token", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"access denied: admin only"}`, w.Body.String())

	w = call(r, http.MethodPost, "/api/v1/users", "user-token", `{"email":"x@example.com","role":"admin"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, prov.Calls())
}

func TestUserRoutes_MissingToken(t *testing.T) {
	r, _ := setupUserRoutes(t)
	w := call(r, http.MethodGet, "/api/v1/me", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodGet, "/api/v1/me", "forged", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserRoutes_MeFallsBackToClaims(t *testing.T) {
	r, _ := setupUserRoutes(t)
	w := call(r, http.MethodGet, "/api/v1/me", "user-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"user-sub","name":"Uma","email":"uma@example.com","role":"viewer"}`, w.Body.String())
}

func TestUserRoutes_UpdateUnknownUser(t *testing.T) {
	r, _ := setupUserRoutes(t)
	w := call(r, http.MethodPut, "/api/v1/users/ghost/role", "admin-token", `{"role":"editor"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"user not found"}`, w.Body.String())
}

func TestUserRoutes_DuplicateRegistrationIsBadGateway(t *testing.T) {
	r, _ := setupUserRoutes(t)
	body := `{"name":"Alice","email":"alice@example.com","role":"viewer"}`
	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/api/v1/users", "admin-token", body).Code)

	w := call(r, http.MethodPost, "/api/v1/users", "admin-token", body)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "already exists")
}

func TestGraphQLInvoke(t *testing.T) {
	r, _ := setupUserRoutes(t)

	w := call(r, http.MethodPost, "/graphql/invoke", "admin-token", `{"info":{"fieldName":"me"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"role":"admin"`)

	w = call(r, http.MethodPost, "/graphql/invoke", "admin-token", `{"info":{"fieldName":"dropTables"}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Unknown fieldName"}`, w.Body.String())

	// a body-supplied identity must not override the bearer token
	w = call(r, http.MethodPost, "/graphql/invoke", "user-token",
		`{"info":{"fieldName":"listUsers"},"identity":{"sub":"x","claims":{"cognito:groups":["admin"]}}}`)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserRoutes_NoVerifier(t *testing.T) {
	svc := users.NewService(users.NewMemoryUserRepository(), identity.NewMemoryProvider())
	r := gin.New()
	NewUserHandler(dispatch.New(svc)).Register(r, nil, nil)

	w := call(r, http.MethodGet, "/api/v1/me", "admin-token", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, statusFor(dispatch.KindStore))
	require.Equal(t, http.StatusInternalServerError, statusFor(dispatch.KindInternal))
	require.Equal(t, http.StatusUnauthorized, statusFor(dispatch.KindUnauthenticated))
}

func TestUserRoutes_RateLimitIsPerSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := users.NewService(users.NewMemoryUserRepository(), identity.NewMemoryProvider())
	tokens := fakeVerifier{
		"carol-token": {"sub": "rl-carol"},
		"dave-token":  {"sub": "rl-dave"},
	}
	r := gin.New()
	NewUserHandler(dispatch.New(svc)).Register(r, tokens, middleware.RateLimitMiddleware(0.0001, 1))

	// same client IP for every request
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/me", "carol-token", "").Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/me", "dave-token", "").Code)
	require.Equal(t, http.StatusTooManyRequests, call(r, http.MethodGet, "/api/v1/me", "carol-token", "").Code)
	require.Equal(t, http.StatusTooManyRequests,
		call(r, http.MethodPost, "/graphql/invoke", "dave-token", `{"info":{"fieldName":"me"}}`).Code)
}
