// Command notes runs the notes routes on their own, for deployments that do
// not need contacts. It falls back to the in-memory store when the
// configured store cannot be reached.
package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recordbook/recordbook/handlers"
	"github.com/recordbook/recordbook/internal/config"
	"github.com/recordbook/recordbook/internal/records/handler"
	"github.com/recordbook/recordbook/internal/records/repository"
	"github.com/recordbook/recordbook/internal/records/service"
	"github.com/recordbook/recordbook/pkg/logger"
	"github.com/recordbook/recordbook/pkg/middleware"
)

func main() {
	port := os.Getenv("NOTES_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetOutput(os.Stdout, cfg.Log.Format)

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Warnf("cannot open %s store (%v), using memory-backed store", cfg.Store.Driver, err)
		store = repository.NewMemoryStore()
	}
	defer store.Close(ctx)

	svc := service.New(store, service.Options{
		NotesMinLimit: cfg.Notes.MinLimit,
		NotesMaxLimit: cfg.Notes.MaxLimit,
		NotesMaxID:    cfg.Notes.MaxID,
	})

	r := newRouter(svc, cfg.Store.Timeout)
	logger.Infof("notes service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

func newRouter(svc *service.Service, timeout time.Duration) *gin.Engine {
	r := gin.New()
	middleware.JSONFallbacks(r)
	r.Use(middleware.RequestID(), middleware.ProcessTime(), middleware.RequestLogger(), middleware.Recovery())
	handlers.RegisterHealth(r, handlers.HealthDeps{Store: svc, Timeout: timeout})
	handler.RegisterNoteRoutes(r, svc)
	return r
}
