package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/middleware"
)

// GenerateAccessToken creates an HS256 token carrying the same claims a
// Cognito token would (sub, name, email, cognito:groups). Used for local
// development when no user pool is reachable.
func GenerateAccessToken(secret string, u *models.User, groups []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("tokens: empty signing secret")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":              u.ID,
		"name":             u.Name,
		"email":            u.Email,
		models.GroupsClaim: groups,
		"iat":              now.Unix(),
		"exp":              now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// HMACVerifier verifies tokens produced by GenerateAccessToken.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("tokens: %w", err)
	}
	return middleware.ClaimsToken(claims), nil
}
