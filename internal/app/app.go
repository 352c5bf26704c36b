package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/config"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/database"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/dispatch"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/identity"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/oidc"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/tokens"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/users"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/logger"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoConnectAttempts = 5

// App bundles the services shared by the HTTP server and the resolver Lambda.
type App struct {
	Config     *config.Config
	Users      *users.Service
	Dispatcher *dispatch.Dispatcher
	// Verifier is nil when no token verifier could be configured.
	Verifier middleware.Verifier

	mongo *mongo.Client
}

// Build wires the identity provider, the user store and the dispatcher
// selected by cfg. Clients are created once and reused across invocations.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var sess *session.Session
	if cfg.IdentityBackend == config.IdentityBackendCognito || cfg.Store.Backend == config.StoreBackendDynamoDB {
		s, err := database.NewAWSSession(cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			return nil, err
		}
		sess = s
	}

	var provider identity.Provider
	switch cfg.IdentityBackend {
	case config.IdentityBackendCognito:
		provider = identity.NewCognitoProvider(sess, cfg.Cognito.UserPoolID)
		logger.Infof("identity provider: cognito pool %s", cfg.Cognito.UserPoolID)
	case config.IdentityBackendMemory:
		provider = identity.NewMemoryProvider()
		logger.Warn("identity provider: in-memory (accounts are lost on restart)")
	default:
		return nil, fmt.Errorf("unknown identity backend %q", cfg.IdentityBackend)
	}

	var repo users.UserRepository
	switch cfg.Store.Backend {
	case config.StoreBackendDynamoDB:
		repo = users.NewDynamoUserRepository(sess, cfg.Store.TableName)
		logger.Infof("user store: dynamodb table %s", cfg.Store.TableName)
	case config.StoreBackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, err
		}
		a.mongo = client
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		repo = users.NewMongoUserRepository(col)
		logger.Infof("user store: mongodb %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	case config.StoreBackendMemory:
		repo = users.NewMemoryUserRepository()
		logger.Warn("user store: in-memory (records are lost on restart)")
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	a.Users = users.NewService(repo, provider, users.WithCompensation(cfg.CompensatePartialFailures))
	a.Dispatcher = dispatch.New(a.Users)
	a.Verifier = buildVerifier(ctx, cfg)
	return a, nil
}

// buildVerifier chains every configured token verifier. The user pool's
// JWKS comes first, then the HS256 development secret, then (integration
// runs only) the unverified parser.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	var chain middleware.FirstOf
	if issuer := cfg.Cognito.Issuer(cfg.AWS.Region); issuer != "" {
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Cognito.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier for %s: %v", issuer, err)
		} else {
			chain = append(chain, ver)
		}
	}
	if cfg.JWT.Secret != "" {
		chain = append(chain, tokens.NewHMACVerifier(cfg.JWT.Secret))
	}
	if cfg.AllowInsecureToken {
		logger.Warn("enabling insecure token verifier (integration mode)")
		chain = append(chain, oidc.NewInsecureVerifier())
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}

// Close releases backend connections.
func (a *App) Close(ctx context.Context) {
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
}
