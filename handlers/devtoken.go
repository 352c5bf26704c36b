package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/tokens"
)

type devTokenRequest struct {
	Sub    string   `json:"sub" binding:"required"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Groups []string `json:"groups"`
}

// RegisterDevToken mounts POST /dev/token, which mints HS256 tokens with
// Cognito-shaped claims for local runs without a user pool. Only mounted in
// the development environment with JWT_SECRET set.
func RegisterDevToken(r *gin.Engine, secret string, ttl time.Duration, limit gin.HandlerFunc) {
	mint := func(c *gin.Context) {
		var req devTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		u := &models.User{ID: req.Sub, Name: req.Name, Email: req.Email}
		tok, err := tokens.GenerateAccessToken(secret, u, req.Groups, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": tok, "token_type": "Bearer", "expires_in": int(ttl.Seconds())})
	}
	if limit != nil {
		r.POST("/dev/token", limit, mint)
		return
	}
	r.POST("/dev/token", mint)
}
