package main

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caretrack/caretrack/internal/config"
	"github.com/caretrack/caretrack/internal/domain/admin"
	"github.com/caretrack/caretrack/internal/domain/appointment"
	"github.com/caretrack/caretrack/internal/domain/contact"
	"github.com/caretrack/caretrack/internal/domain/invitation"
	"github.com/caretrack/caretrack/internal/domain/medicalrecord"
	"github.com/caretrack/caretrack/internal/domain/medication"
	"github.com/caretrack/caretrack/internal/domain/profile"
	"github.com/caretrack/caretrack/internal/domain/user"
	"github.com/caretrack/caretrack/internal/domain/vitals"
	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/internal/platform/cache"
	"github.com/caretrack/caretrack/internal/platform/db"
	"github.com/caretrack/caretrack/internal/platform/events"
	"github.com/caretrack/caretrack/internal/platform/metrics"
	"github.com/caretrack/caretrack/internal/platform/middleware"
	"github.com/caretrack/caretrack/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "caretrack-server",
		Short: "CareTrack patient management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	sessionSecret := []byte(cfg.SessionSecret)
	if len(sessionSecret) == 0 {
		// Dev only. Sessions do not survive restarts with an ephemeral key.
		buf := make([]byte, 32)
		if _, err := cryptorand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate session secret")
		}
		sessionSecret = []byte(hex.EncodeToString(buf))
		logger.Warn().Msg("SESSION_SECRET not set, using an ephemeral key")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis read cache, optional
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, caching disabled")
			rdb = nil
		}
	}

	// Event publisher, optional
	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL, logger)
	}

	// Repositories
	userRepo := user.NewRepoPG(pool)
	inviteRepo := invitation.NewRepoPG(pool)
	recordRepo := medicalrecord.NewRepoPG(pool)
	diseaseRepo := medicalrecord.NewDiseaseHistoryRepoPG(pool)
	bpRepo := vitals.NewBloodPressureRepoPG(pool)
	bsRepo := vitals.NewBloodSugarRepoPG(pool)
	medRepo := medication.NewRepoPG(pool)
	contactRepo := contact.NewRepoPG(pool)
	apptRepo := appointment.NewRepoPG(pool)
	profileRepo := profile.NewRepoPG(pool)
	smtpRepo := admin.NewSMTPRepoPG(pool)

	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// Notifications
	notifier := notification.NewDispatcher(logger, admin.SettingsLoader(smtpRepo))

	// Services
	userSvc := user.NewService(userRepo, notifier, cfg.BcryptCost)
	inviteSvc := invitation.NewService(inviteRepo, userSvc, notifier, txRunner, cfg.BaseURL, cfg.InviteTTLDuration())
	apptSvc := appointment.NewService(apptRepo, userSvc, notifier, publisher)
	medSvc := medication.NewService(medRepo)
	recordSvc := medicalrecord.NewService(recordRepo, diseaseRepo, apptSvc, medSvc)
	vitalsSvc := vitals.NewService(bpRepo, bsRepo)
	contactSvc := contact.NewService(contactRepo, txRunner)
	profileSvc := profile.NewService(profileRepo)
	adminSvc := admin.NewService(userSvc, apptSvc, smtpRepo, notifier)

	sessions := auth.NewSessions(sessionSecret, cfg.SessionTTLDuration(), cfg.IsProduction())

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	m := metrics.New()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Everything under /api requires a session. The public group handles
	// registration, login and invitation acceptance.
	public := e.Group("/api")
	e.Use(auth.SessionMiddleware(sessions, func(c echo.Context) bool {
		p := c.Path()
		return p == "/health" || p == "/metrics" ||
			p == "/api/register" || p == "/api/login" || p == "/api/logout" ||
			strings.HasPrefix(p, "/api/invitations/")
	}))

	api := e.Group("/api")
	api.Use(auth.RequireAuthenticated())
	api.Use(cache.Middleware(rdb, cache.Config{TTL: cfg.CacheTTLDuration()}, logger))
	adminGroup := api.Group("/admin", auth.RequireRole(auth.RoleAdmin, auth.RoleSubadmin))

	// Handlers
	user.NewHandler(userSvc, sessions).RegisterRoutes(public, api)
	invitation.NewHandler(inviteSvc).RegisterRoutes(public, adminGroup)
	medicalrecord.NewHandler(recordSvc).RegisterRoutes(api, adminGroup)
	vitals.NewHandler(vitalsSvc).RegisterRoutes(api)
	medication.NewHandler(medSvc).RegisterRoutes(api)
	contact.NewHandler(contactSvc).RegisterRoutes(api)
	appointment.NewHandler(apptSvc).RegisterRoutes(api, adminGroup)
	profile.NewHandler(profileSvc).RegisterRoutes(api)
	admin.NewHandler(adminSvc).RegisterRoutes(adminGroup)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/metrics", m.Handler())

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
