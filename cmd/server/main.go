package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bithra/config"
	"bithra/internal/cache"
	"bithra/internal/database"
	"bithra/internal/logger"
	"bithra/internal/router"
	"bithra/internal/service"
	"bithra/pkg/cloudinary"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().WithError(err).Fatal("config")
	}
	logger.Init(cfg.Log.Level, cfg.Server.Env)
	log := logger.Component("main")

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}
	if err := database.SeedAdmin(db, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.WithError(err).Error("seed admin")
	}
	if err := database.SeedForumCategories(db); err != nil {
		log.WithError(err).Error("seed forum categories")
	}

	ctx := context.Background()
	deps := router.Deps{DB: db}

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.WithError(err).Warn("redis unavailable; cache and sorted-set leaderboards disabled")
		} else {
			deps.Redis = rdb
			log.Info("redis connected")
		}
	}

	if cfg.Cloudinary.Enabled() {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.WithError(err).Warn("cloudinary init failed; uploads disabled")
		} else {
			deps.Cloud = cloud
		}
	} else {
		log.Info("cloudinary not configured; uploads disabled")
	}

	deps.FCM = service.NewFCMService(ctx, cfg.Firebase.ServiceAccountPath)
	if deps.FCM != nil {
		log.Info("push notifications enabled")
	}

	app := router.Setup(cfg, deps)

	stopCleanup := make(chan struct{})
	app.Limiter.StartCleanup(5*time.Minute, stopCleanup)
	if err := app.Scheduler.Start(); err != nil {
		log.WithError(err).Fatal("scheduler")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	close(stopCleanup)
	app.Scheduler.Stop(shutdownCtx)
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
