package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the user service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>appsync-rbac Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the user administration endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "appsync-rbac", "version": "v0.1.0" },
  "components": { "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } } },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/graphql/invoke": {
      "post": {
        "summary": "Run a resolver operation (registerUser, listUsers, updateUserRole, me)",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"info":{"type":"object","properties":{"fieldName":{"type":"string"}}},"arguments":{"type":"object"}}}}}},
        "responses": { "200": { "description": "operation result" }, "400": { "description": "unknown operation or bad arguments" }, "403": { "description": "admin only" } }
      }
    },
    "/api/v1/users": {
      "post": {
        "summary": "Register a user (admin only)",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"role":{"type":"string"}}}}}},
        "responses": { "200": { "description": "true" }, "403": { "description": "admin only" }, "502": { "description": "identity provider error" } }
      },
      "get": { "summary": "List users (admin only)", "responses": { "200": { "description": "user records" }, "403": { "description": "admin only" } } }
    },
    "/api/v1/users/{id}/role": {
      "put": {
        "summary": "Change a user's role (admin only)",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"role":{"type":"string"}}}}}},
        "responses": { "200": { "description": "true" }, "403": { "description": "admin only" }, "404": { "description": "user not found" } }
      }
    },
    "/api/v1/me": {
      "get": { "summary": "Caller's stored record, or a profile built from token claims", "responses": { "200": { "description": "user" } } }
    },
    "/dev/token": {
      "post": {
        "summary": "Mint a development token (development environment with JWT_SECRET only)",
        "security": [],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"sub":{"type":"string"},"name":{"type":"string"},"email":{"type":"string"},"groups":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": { "200": { "description": "access token" }, "400": { "description": "sub missing" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
