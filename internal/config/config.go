package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	IdentityBackendCognito = "cognito"
	IdentityBackendMemory  = "memory"

	StoreBackendDynamoDB = "dynamodb"
	StoreBackendMongo    = "mongo"
	StoreBackendMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	AWS       AWSConfig
	Cognito   CognitoConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	Log       LogConfig

	// IdentityBackend selects the identity provider implementation.
	IdentityBackend string
	// AllowInsecureToken accepts unverified bearer tokens (integration runs only).
	AllowInsecureToken bool
	// CompensatePartialFailures rolls back earlier steps of registerUser and
	// updateUserRole when a later step fails.
	CompensatePartialFailures bool
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AWSConfig struct {
	Region   string
	Endpoint string
}

type CognitoConfig struct {
	UserPoolID string
	ClientID   string
}

// Issuer is the OIDC issuer URL of the configured user pool.
func (c CognitoConfig) Issuer(region string) string {
	if c.UserPoolID == "" {
		return ""
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, c.UserPoolID)
}

type StoreConfig struct {
	Backend   string
	TableName string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "production")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("IDENTITY_BACKEND", IdentityBackendCognito)
	v.SetDefault("STORE_BACKEND", StoreBackendDynamoDB)
	v.SetDefault("MONGODB_DATABASE", "users")
	v.SetDefault("MONGODB_COLLECTION", "users")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	v.SetDefault("COMPENSATE_PARTIAL_FAILURES", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		AWS: AWSConfig{
			Region:   v.GetString("AWS_REGION"),
			Endpoint: v.GetString("AWS_ENDPOINT"),
		},
		Cognito: CognitoConfig{
			UserPoolID: v.GetString("USER_POOL_ID"),
			ClientID:   v.GetString("COGNITO_CLIENT_ID"),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(v.GetString("STORE_BACKEND")),
			TableName: v.GetString("TABLE_NAME"),
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		IdentityBackend:           strings.ToLower(v.GetString("IDENTITY_BACKEND")),
		AllowInsecureToken:        v.GetBool("ALLOW_INSECURE_TOKEN"),
		CompensatePartialFailures: v.GetBool("COMPENSATE_PARTIAL_FAILURES"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every selected backend has the settings it needs.
func (c *Config) Validate() error {
	switch c.IdentityBackend {
	case IdentityBackendCognito:
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("environment variable USER_POOL_ID is required for identity backend %q", c.IdentityBackend)
		}
	case IdentityBackendMemory:
	default:
		return fmt.Errorf("unknown IDENTITY_BACKEND %q", c.IdentityBackend)
	}

	switch c.Store.Backend {
	case StoreBackendDynamoDB:
		if c.Store.TableName == "" {
			return fmt.Errorf("environment variable TABLE_NAME is required for store backend %q", c.Store.Backend)
		}
	case StoreBackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("environment variable MONGODB_URI is required for store backend %q", c.Store.Backend)
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}
