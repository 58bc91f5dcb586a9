package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swatch-backend/internal/config"
	"swatch-backend/internal/database"
	"swatch-backend/internal/handlers"
	"swatch-backend/internal/repository"
	"swatch-backend/internal/services"
	"swatch-backend/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

// Options are the command line flags
type Options struct {
	ConfigPath  string
	MigrateOnly bool
}

// ParseFlags reads the command line flags from args
func ParseFlags(args []string) (*Options, error) {
	var opts Options

	flagSet := pflag.NewFlagSet("swatch-backend", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to the YAML configuration file")
	flagSet.BoolVar(&opts.MigrateOnly, "migrate-only", false, "apply database migrations and exit")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	return &opts, nil
}

func Run() {
	opts, err := ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("Failed to parse flags")
	}

	// Load configuration
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := database.Connect(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	if opts.MigrateOnly {
		return
	}

	// Initialize storage
	backend, err := newStorageBackend(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	intake := storage.NewIntake(backend, cfg.Storage.ModelDir)

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	swatchRepo := repository.NewSwatchRepository(db)

	// Initialize services
	tokenService := services.NewTokenService(services.TokenConfig{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL,
	})
	accountService := services.NewAccountService(accountRepo, services.NewPasswordHasher(0), tokenService)
	hub := services.NewSwatchHub()
	swatchService := services.NewSwatchService(swatchRepo, intake, hub)

	if !cfg.Auth.RequireToken {
		log.Warn().Msg("Swatch routes accept requests without a bearer token (auth.require_token is false)")
	}

	// Setup router
	router := handlers.NewRouter(handlers.RouterOptions{
		Accounts:       handlers.NewAccountHandler(accountService),
		Swatches:       handlers.NewSwatchHandler(swatchService, cfg.Storage.MaxUploadBytes()),
		Feed:           handlers.NewFeedHandler(hub, tokenService),
		Root:           handlers.NewRootHandler(db),
		Tokens:         tokenService,
		RefreshHeader:  cfg.JWT.RefreshHeader,
		RequireToken:   cfg.Auth.RequireToken,
		RequestLogging: true,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Backend).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown
	hub.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newStorageBackend builds the configured file backend
func newStorageBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case config.StorageS3:
		backend, err := storage.NewS3Backend(ctx, storage.S3Options{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Storing uploads in S3")
		return backend, nil
	case config.StorageLocal:
		backend, err := storage.NewLocalBackend(cfg.BaseDir, cfg.ModelDir)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", backend.BaseDir()).Msg("Storing uploads on local disk")
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
