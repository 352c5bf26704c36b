package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/akrylysov/algnhsa"
	"github.com/gin-gonic/gin"
	"github.com/gokulstevee/appsync-rbac-lambda/handlers"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/app"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/config"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/logger"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/metrics"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFormat(os.Getenv("LOG_FORMAT"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Infof("config loaded: identity=%s store=%s redis=%v", cfg.IdentityBackend, cfg.Store.Backend, cfg.Redis.Host != "")

	ctx := context.Background()
	a, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to build services: %v", err)
	}
	defer a.Close(ctx)

	r := gin.New()

	// Lightweight CORS middleware: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional rate limiter. It is mounted per route group after authentication
	// so signed-in callers are keyed by subject; other routes fall back to IP.
	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limit = middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			limit = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when a caller can be identified and Redis is up when the limiter needs it
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"users":    a.Users != nil,
			"verifier": a.Verifier != nil,
			"redis":    !(cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis) || rdb != nil,
		}
		ready := true
		for _, ok := range deps {
			ready = ready && ok
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)
	handlers.NewUserHandler(a.Dispatcher).Register(r, a.Verifier, limit)
	if cfg.JWT.Secret != "" && cfg.Server.Environment == "development" {
		logger.Warn("development token endpoint enabled at POST /dev/token")
		handlers.RegisterDevToken(r, cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, limit)
	}
	if a.Verifier == nil {
		logger.Warn("no token verifier configured; user routes will answer 503")
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		logger.Infof("running inside Lambda, serving through API Gateway adapter")
		algnhsa.ListenAndServe(r, nil)
		return
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("Starting user service on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server failed: %v", err)
	}
}
