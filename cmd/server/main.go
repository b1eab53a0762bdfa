package main

import (
	"context"
	"fmt"
	"log"

	"github.com/collegecms/internal/config"
	"github.com/collegecms/internal/db"
	"github.com/collegecms/internal/handler"
	"github.com/collegecms/internal/router"
	"github.com/collegecms/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseSource()); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatalf("failed to ensure super root user: %v", err)
	}

	store, err := newStorage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize media storage: %v", err)
	}

	api := handler.NewAPI(db.DB, store, cfg.SiteBaseURL)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg, api)
	log.Printf("college cms listening on %s (storage=%s, database=%s)", cfg.ListenAddr, cfg.StorageBackend, cfg.DatabaseDriver)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func newStorage(ctx context.Context, cfg config.AppConfig) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "", storage.BackendLocal:
		return storage.NewLocal(storage.LocalConfig{Dir: cfg.MediaDir, URLPrefix: cfg.MediaURLPath})
	case storage.BackendS3:
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicURL:       cfg.S3.PublicURL,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
