package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/recordbook/recordbook/handlers"
	"github.com/recordbook/recordbook/internal/config"
	"github.com/recordbook/recordbook/internal/records/handler"
	"github.com/recordbook/recordbook/internal/records/service"
	"github.com/recordbook/recordbook/internal/storage"
	"github.com/recordbook/recordbook/pkg/middleware"
)

var startTime = time.Now()

// deps are the constructed collaborators the router wires into handlers.
// Redis and Files may be nil.
type deps struct {
	Service *service.Service
	Redis   *redis.Client
	Files   storage.FileStore
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, X-Process-Time")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func newRouter(cfg *config.Config, d deps) *gin.Engine {
	r := gin.New()
	middleware.JSONFallbacks(r)

	r.Use(middleware.RequestID(), middleware.ProcessTime(), middleware.RequestLogger(), middleware.Recovery(), cors())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handlers.RegisterHealth(r, handlers.HealthDeps{
		Store:         d.Service,
		Redis:         d.Redis,
		RedisRequired: cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis,
		Started:       startTime,
		Timeout:       cfg.Store.Timeout,
	})
	handlers.RegisterSwagger(r)
	handler.Register(r, d.Service)
	handlers.RegisterUpload(r, d.Files, cfg.Server.UploadMaxBytes)

	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
