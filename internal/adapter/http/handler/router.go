package handler

import (
	"timelock-vault/internal/adapter/http/middleware"
	redisStore "timelock-vault/internal/adapter/storage/redis"
	"timelock-vault/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	VaultSvc       ports.VaultService
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	PauseSwitch    ports.PauseSwitch
	EventRepo      ports.EventRepository
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Operator login (public) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/auth/token", rl("auth_token"), authHandler.Token)

	// --- Vault operations (capability-authorized in the request body) ---
	vaultHandler := NewVaultHandler(deps.VaultSvc)
	v1.POST("/deposits", rl("deposits"), vaultHandler.Deposit)

	accounts := v1.Group("/accounts/:account")
	{
		accounts.POST("/withdrawals", rl("withdrawals"), vaultHandler.WithdrawAll)
		accounts.DELETE("/assets/:asset", rl("removals"), vaultHandler.RemoveAsset)
	}

	// --- Read-only queries ---
	queryHandler := NewQueryHandler(deps.VaultSvc)
	{
		accounts.GET("/balances/:asset", rl("queries"), queryHandler.BalanceOf)
		accounts.GET("/balances", rl("queries"), queryHandler.ListBalances)
		accounts.GET("/unlock-time", rl("queries"), queryHandler.UnlockTime)
		accounts.GET("/status", rl("queries"), queryHandler.Status)
		accounts.GET("/assets", rl("queries"), queryHandler.ListAssets)
	}

	// --- Admin surface (JWT) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminHandler := NewAdminHandler(deps.PauseSwitch, deps.EventRepo, deps.Logger)
	admin := v1.Group("/admin", jwtAuth)
	{
		admin.PUT("/pause", rl("admin"), adminHandler.SetPause)
		admin.GET("/events", rl("admin"), adminHandler.ListEvents)
	}

	return r
}
