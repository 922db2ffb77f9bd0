package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/recordbook/recordbook/internal/config"
	"github.com/recordbook/recordbook/internal/records/repository"
	"github.com/recordbook/recordbook/internal/records/service"
	"github.com/recordbook/recordbook/internal/storage"
	"github.com/recordbook/recordbook/pkg/logger"
	"github.com/recordbook/recordbook/pkg/metrics"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetOutput(os.Stdout, cfg.Log.Format)
	logger.Infof("config loaded: store=%s redis=%v minio=%v rate_limit=%v",
		cfg.Store.Driver, cfg.Redis.Addr() != "", cfg.MinIO.Endpoint != "", cfg.RateLimit.Enabled)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warnf("closing store: %v", err)
		}
	}()
	logger.Infof("record store ready (%s)", cfg.Store.Driver)

	svc := service.New(store, service.Options{
		NotesMinLimit:      cfg.Notes.MinLimit,
		NotesMaxLimit:      cfg.Notes.MaxLimit,
		NotesMaxID:         cfg.Notes.MaxID,
		BirthdayWindowDays: cfg.Contacts.BirthdayWindowDays,
	})

	// Redis is optional; it only backs the distributed rate limiter.
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis: %s", addr)
		}
		defer rdb.Close()
	}

	d := deps{Service: svc, Redis: rdb}
	if cfg.MinIO.Endpoint != "" {
		files, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("object storage unavailable, /uploadfile disabled: %v", err)
		} else {
			d.Files = files
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := newRouter(cfg, d)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("starting recordbook on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Infof("shutting down")
	case err := <-errc:
		logger.Errorf("server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}
