package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "library-backend/docs"
	"library-backend/internal/library/books"
	"library-backend/internal/library/notifications"
	"library-backend/internal/library/reservations"
	"library-backend/internal/library/statistics"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/logging"
	"library-backend/internal/platform/mailer"
	"library-backend/internal/platform/scheduler"
)

// @title                      Library API
// @version                    1.0
// @description                Book catalog, reservations with return deadlines, and return statistics.
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfgPath := flag.String("config", config.DefaultPath, "path to the yaml config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.Mode, os.Stdout)
	ctx := context.Background()
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	logger.Info(ctx, "starting", "mode", cfg.Mode, "version", cfg.Version)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info(ctx, "connected to DB", "dbname", cfg.DB.DBName)

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	// ---- services ----
	secret := []byte(cfg.Auth.JWTSecret)
	statsStore := statistics.NewStore(conn)
	authSvc := auth.NewService(conn, statsStore, secret, cfg.Auth.TokenTTL)
	if created, err := authSvc.EnsureAdmin(ctx, cfg.Auth.Admin); err != nil {
		return err
	} else if created {
		logger.Info(ctx, "bootstrap admin created", "username", cfg.Auth.Admin.Username)
	}

	formatter, err := notifications.NewFormatter(cfg.Mail.Locale)
	if err != nil {
		return err
	}
	var sender notifications.Sender = mailer.NewLogSender(logger)
	if cfg.Mail.Enabled {
		smtp, err := mailer.NewSMTPSender(cfg.Mail)
		if err != nil {
			return err
		}
		sender = smtp
	}
	notifier := notifications.NewNotifier(notifications.NewSQLDirectory(conn), sender, formatter, logger)

	engine := reservations.NewService(reservations.NewStore(conn, statsStore), notifier, logger)

	// ---- deadline sweep ----
	sched := scheduler.New(logger)
	sweep := func(ctx context.Context) {
		if _, err := engine.UpdateMissedDeadlines(ctx); err != nil {
			logger.Error(ctx, "deadline sweep failed", "error", err)
		}
	}
	if err := sched.Schedule(cfg.Reservation.SweepCron, "deadline-sweep", sweep); err != nil {
		return err
	}
	sched.Start()
	if cfg.Reservation.SweepOnStart {
		if err := sched.RunNow("deadline-sweep"); err != nil {
			return err
		}
	}

	// ---- http ----
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logging.RequestID(), gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logging.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", logging.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/healthz", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	auth.RegisterRoutes(api, authSvc, secret)

	authed := api.Group("", auth.RequireAuth(secret))
	books.RegisterRoutes(authed, books.NewService(books.NewStore(conn), logger))
	reservations.RegisterRoutes(authed, engine)
	statistics.RegisterRoutes(authed, statistics.NewService(statsStore))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
			dir := filepath.Join("config", "tls", cfg.Mode)
			logger.Info(ctx, "listening (tls)", "addr", srv.Addr)
			err = srv.ListenAndServeTLS(filepath.Join(dir, cfg.Certificate.Cert), filepath.Join(dir, cfg.Certificate.Key))
		} else {
			logger.Info(ctx, "listening", "addr", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			_ = sched.Stop(ctx)
			return err
		}
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return sched.Stop(shutdownCtx)
}
