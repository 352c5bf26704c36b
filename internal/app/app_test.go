package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gokulstevee/appsync-rbac-lambda/internal/config"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/dispatch"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/tokens"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		AWS:                       config.AWSConfig{Region: "us-east-1"},
		Store:                     config.StoreConfig{Backend: config.StoreBackendMemory},
		IdentityBackend:           config.IdentityBackendMemory,
		CompensatePartialFailures: true,
	}
}

func TestBuild_MemoryBackends(t *testing.T) {
	a, err := Build(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer a.Close(context.Background())

	require.NotNil(t, a.Users)
	require.NotNil(t, a.Dispatcher)
	require.Nil(t, a.Verifier)

	admin := &models.Identity{Sub: "root", Claims: map[string]interface{}{models.GroupsClaim: []interface{}{"admin"}}}
	res := a.Dispatcher.Dispatch(context.Background(), dispatch.Invocation{
		Info:      dispatch.Info{FieldName: dispatch.OpRegisterUser},
		Arguments: json.RawMessage(`{"name":"Bob","email":"bob@example.com","role":"viewer"}`),
		Identity:  admin,
	})
	require.True(t, res.OK(), res.Error)
}

func TestBuild_HMACVerifier(t *testing.T) {
	cfg := memoryConfig()
	cfg.JWT.Secret = "dev-secret"
	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, a.Verifier)

	raw, err := tokens.GenerateAccessToken("dev-secret", &models.User{ID: "u-1"}, []string{"admin"}, time.Minute)
	require.NoError(t, err)
	tok, err := a.Verifier.Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "u-1", claims["sub"])
}

func TestBuild_UnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Backend = "sqlite"
	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
}
