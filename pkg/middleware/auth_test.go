package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeVerifier accepts exactly one token
type fakeVerifier struct {
	good string
}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == f.good {
		return ClaimsToken{"sub": "user1", "email": "test@example.com", "cognito:groups": []string{"admin"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{good: "goodtoken"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "BadHeader")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{good: "goodtoken"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidTokenSetsIdentity(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{good: "goodtoken"}), func(c *gin.Context) {
		id := IdentityFrom(c)
		require.NotNil(t, id)
		c.JSON(http.StatusOK, gin.H{"sub": id.Sub, "groups": id.Groups()})
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "user1", got["sub"])
	require.Equal(t, []interface{}{"admin"}, got["groups"])
}

func TestAuthMiddleware_RejectsUnknownToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{good: "goodtoken"}), func(c *gin.Context) { c.Status(http.StatusOK) })
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestFirstOf(t *testing.T) {
	v := FirstOf{&fakeVerifier{good: "a"}, &fakeVerifier{good: "b"}}
	_, err := v.Verify(context.Background(), "b")
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), "c")
	require.Error(t, err)
	_, err = FirstOf{}.Verify(context.Background(), "a")
	require.Error(t, err)
}
