package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSwaggerEndpoints(t *testing.T) {
	g := gin.New()
	RegisterSwagger(g)

	req := httptest.NewRequest("GET", "/swagger/index.html", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "swagger-ui")

	req2 := httptest.NewRequest("GET", "/swagger/doc.json", nil)
	w2 := httptest.NewRecorder()
	g.ServeHTTP(w2, req2)
	require.Equal(t, 200, w2.Code)
	require.Contains(t, w2.Body.String(), "openapi")
	// ensure user endpoints are present and use correct paths
	require.Contains(t, w2.Body.String(), "/graphql/invoke")
	require.Contains(t, w2.Body.String(), "/api/v1/users/{id}/role")
	require.Contains(t, w2.Body.String(), "/api/v1/me")

	var doc struct {
		Components struct {
			SecuritySchemes map[string]struct {
				Type   string `json:"type"`
				Scheme string `json:"scheme"`
			} `json:"securitySchemes"`
		} `json:"components"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &doc))
	require.Equal(t, "bearer", doc.Components.SecuritySchemes["bearer"].Scheme)
	require.Contains(t, doc.Paths["/api/v1/users"], "get")
	require.Contains(t, doc.Paths["/api/v1/users"], "post")
	require.Contains(t, doc.Paths["/api/v1/users/{id}/role"], "put")
	require.Contains(t, doc.Paths["/graphql/invoke"], "post")
	require.Contains(t, doc.Paths["/dev/token"], "post")
}
