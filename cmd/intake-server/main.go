package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/careintake/intake/internal/config"
	"github.com/careintake/intake/internal/domain/intake"
	"github.com/careintake/intake/internal/domain/report"
	"github.com/careintake/intake/internal/platform/auth"
	"github.com/careintake/intake/internal/platform/db"
	"github.com/careintake/intake/internal/platform/middleware"
	"github.com/careintake/intake/internal/platform/notification"
	"github.com/careintake/intake/internal/platform/recordstore"
	"github.com/careintake/intake/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "intake-server",
		Short: "Patient intake pipeline server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate synthetic intake records into the record store",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			seed, _ := cmd.Flags().GetInt64("seed")
			kind, _ := cmd.Flags().GetString("kind")

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			store, cleanup, err := newStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			gen := intake.NewGenerator(seed)
			for i := 0; i < count; i++ {
				switch kind {
				case "benefit":
					if err := seedBenefit(ctx, store, gen, i); err != nil {
						return err
					}
				case "soap":
					if err := seedSOAP(ctx, store, gen, i); err != nil {
						return err
					}
				default:
					if err := seedBenefit(ctx, store, gen, i); err != nil {
						return err
					}
					if err := seedSOAP(ctx, store, gen, i); err != nil {
						return err
					}
				}
			}

			fmt.Printf("Seeded %d %s record(s).\n", count, kind)
			return nil
		},
	}
	cmd.Flags().Int("count", 5, "Number of records to generate")
	cmd.Flags().Int64("seed", 0, "Random seed (0 uses the current time)")
	cmd.Flags().String("kind", "both", "Record kind: benefit, soap, or both")
	return cmd
}

func seedBenefit(ctx context.Context, store recordstore.Store, gen *intake.Generator, i int) error {
	rec := gen.BenefitCheck(intake.Identity{})
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("generated benefit check %d failed validation: %w", i, err)
	}
	data, err := rec.ToMap()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("benefit_check_%s", rec.ClientInformation.IntakeClientID)
	return store.Put(ctx, "benefit_checks", name, data)
}

func seedSOAP(ctx context.Context, store recordstore.Store, gen *intake.Generator, i int) error {
	rec := gen.SOAPNote(intake.Identity{})
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("generated SOAP note %d failed validation: %w", i, err)
	}
	data, err := rec.ToMap()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("soap_note_%d", rec.ClientDetails.IntakeClientID)
	return store.Put(ctx, "soap_note_records", name, data)
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report from a synthetic record",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("type")
			seed, _ := cmd.Flags().GetInt64("seed")

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			store, cleanup, err := newStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := report.NewService(store, logger, nil)
			gen := intake.NewGenerator(seed)

			var res report.Result
			switch kind {
			case "soap-note":
				res = svc.GenerateSOAPNote(ctx, report.SOAPNoteRecord{Record: gen.SOAPNote(intake.Identity{})})
			default:
				res = svc.GenerateBenefitSummary(ctx, report.BenefitRecord{Record: gen.BenefitCheck(intake.Identity{})})
			}

			if res.Status != report.StatusSuccess {
				return fmt.Errorf("report generation failed: %s", res.Message)
			}

			fmt.Printf("Wrote %s\n\n", res.Filename)
			if res.SummaryText != "" {
				fmt.Println(res.SummaryText)
			}
			if res.SOAPNoteText != "" {
				fmt.Println(res.SOAPNoteText)
			}
			return nil
		},
	}
	cmd.Flags().String("type", "benefit-summary", "Report type: benefit-summary or soap-note")
	cmd.Flags().Int64("seed", 0, "Random seed (0 uses the current time)")
	return cmd
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newStore builds the record store named by STORE_BACKEND. The returned
// cleanup func closes any underlying resources (database pool).
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (recordstore.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		store := recordstore.NewPGStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate record store: %w", err)
		}
		logger.Info().Msg("connected to database")
		return store, pool.Close, nil
	case config.StoreMemory:
		return recordstore.NewMemoryStore(), func() {}, nil
	default:
		store, err := recordstore.NewFSStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open data dir: %w", err)
		}
		logger.Info().Str("dir", cfg.DataDir).Msg("using filesystem record store")
		return store, func() {}, nil
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	store, cleanup, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open record store")
	}
	defer cleanup()

	metrics := telemetry.New(telemetry.Config{
		Service: "intake-server",
		Version: version,
		Env:     cfg.Env,
	})

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.ResolvedAuthMode() == "development" {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// API group with rate limiting
	api := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Intake submissions
	submissionSvc := intake.NewSubmissionService(store, logger, metrics)
	intakeHandler := intake.NewHandler(submissionSvc)
	intakeHandler.RegisterRoutes(api)

	// Report generation
	reportSvc := report.NewService(store, logger, metrics)
	reportHandler := report.NewHandler(reportSvc)
	reportHandler.RegisterRoutes(api)

	// Notifications
	var sender notification.EmailSender
	if cfg.SMTPHost != "" {
		sender = notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	} else {
		logger.Warn().Msg("SMTP_HOST not set; outbound email is logged, not delivered")
		sender = &notification.MockEmailSender{}
	}
	notifyMgr := notification.NewManager(sender, notification.NewTemplateEngine())
	welcomeSvc := notification.NewWelcomeService(notifyMgr, store, intake.CategoryClients, cfg.Organization)
	notifyHandler := notification.NewHandler(notifyMgr, welcomeSvc)
	notifyHandler.RegisterRoutes(api)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if pg, ok := store.(*recordstore.PGStore); ok {
		e.GET("/health/db", db.HealthHandler(pg.Pool()))
	}

	// Prometheus metrics
	e.GET("/metrics", metrics.Handler())

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
