package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tencoder/tencoder-api/config"
	"github.com/tencoder/tencoder-api/internal/auth"
	"github.com/tencoder/tencoder-api/internal/bootstrap"
	"github.com/tencoder/tencoder-api/internal/digests"
	"github.com/tencoder/tencoder-api/internal/projects/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("[warn] redis unavailable, events and signal cache disabled: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	fb, err := auth.InitializeFirebase(ctx, cfg.Auth.FirebaseCredentialsFile)
	if err != nil {
		log.Printf("[warn] firebase disabled, falling back to header identity: %v", err)
		fb = nil
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Version:        cfg.App.Version,
		Environment:    cfg.App.Environment,
		StartedAt:      time.Now(),
		DB:             pool,
		Redis:          rdb,
		Firebase:       fb,
		CORSOrigins:    cfg.Server.CORSOrigins,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		UploadRate:     cfg.Upload.Rate,
		UploadBurst:    cfg.Upload.Burst,
	})

	scheduler := digests.NewScheduler(repository.NewDigestRepository(pool))
	if err := scheduler.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s (env=%s)", cfg.Server.Port, cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[warn] shutdown: %v", err)
	}
}
