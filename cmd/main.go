package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storyhouse/internal/config"
	"storyhouse/internal/handlers"
	"storyhouse/internal/logger"
	"storyhouse/internal/repository"
	"storyhouse/internal/repository/db"
	"storyhouse/internal/server"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title                       Storyhouse API
// @version                     1.0
// @description                 Read-only story feed and author data plus token issuance for API clients.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml + STORYHOUSE_* env
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "err", err)
	}
	if cfg.UsesDefaultSecret() {
		log.Warnw("auth.secret is the built-in default; set STORYHOUSE_AUTH_SECRET before exposing the site")
	}
	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// open DB and migrate
	conn, err := db.InitDB(context.Background(), cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, cfg.Auth.Secret)
	handler := handlers.NewHandler(services, log, handlers.Options{
		SessionTTL:    cfg.Auth.SessionTTL,
		RememberTTL:   cfg.Auth.RememberTTL,
		SecureCookies: cfg.Auth.SecureCookies,
	})

	srv := server.New(cfg.Port, handler.InitRoutes())
	runHTTPServer(srv, log)

	waitForShutdown(srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http_server_started", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
