package oidc

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/middleware"
)

// InsecureVerifier implements a verifier that does NOT validate signatures.
// Only intended for local/integration tests under explicit opt-in via ALLOW_INSECURE_TOKEN.
type InsecureVerifier struct {
	parser *jwt.Parser
}

func NewInsecureVerifier() *InsecureVerifier {
	return &InsecureVerifier{parser: jwt.NewParser()}
}

func (v *InsecureVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}
	return middleware.ClaimsToken(claims), nil
}
