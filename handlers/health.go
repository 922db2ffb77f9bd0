package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/recordbook/recordbook/pkg/logger"
	"github.com/recordbook/recordbook/pkg/response"
)

// Pinger is anything that can report whether its backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps lists what readiness depends on. Redis is only checked when
// RedisRequired is set (the distributed rate limiter is on).
type HealthDeps struct {
	Store         Pinger
	Redis         *redis.Client
	RedisRequired bool
	Started       time.Time
	Timeout       time.Duration
}

const (
	welcomeMessage = "Welcome to recordbook!"
	dbErrorMessage = "Error connecting to the database"
)

// RegisterHealth mounts /health, /ready and /api/healthchecker.
func RegisterHealth(r gin.IRouter, deps HealthDeps) {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), deps.Timeout)
		defer cancel()

		ready := true
		checks := map[string]bool{}

		checks["store"] = deps.Store != nil && deps.Store.Ping(ctx) == nil
		ready = ready && checks["store"]

		if deps.RedisRequired {
			checks["redis"] = deps.Redis != nil && deps.Redis.Ping(ctx).Err() == nil
			ready = ready && checks["redis"]
		}

		uptime := time.Since(deps.Started).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": checks, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": checks, "uptime": uptime})
	})

	r.GET("/api/healthchecker", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), deps.Timeout)
		defer cancel()
		if deps.Store == nil {
			response.Message(c, http.StatusInternalServerError, dbErrorMessage)
			return
		}
		if err := deps.Store.Ping(ctx); err != nil {
			logger.Errorf("healthchecker: %v", err)
			response.Message(c, http.StatusInternalServerError, dbErrorMessage)
			return
		}
		response.Message(c, http.StatusOK, welcomeMessage)
	})
}
