// @title           Task Tracker API
// @version         1.0
// @description     Multi-user task tracker with per-task sharing permissions.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Tracker/internal/app"
	"Tracker/internal/config"
	"Tracker/internal/logger"

	_ "Tracker/docs"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.Log.Level)
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded (env=%s), connecting to DB...", cfg.App.Env)

	application, err := app.New(cfg)
	if err != nil {
		logger.Errorf("app init: %v", err)
		os.Exit(1)
	}
	logger.Info("app ready, starting HTTP server")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Infof("received %s, shutting down", sig)
	case err := <-serveErr:
		logger.Errorf("HTTP server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}

	if err := application.Close(ctx); err != nil {
		logger.Errorf("app close: %v", err)
	}
}
