// WildTrace API - wildlife monitoring data service
//
// This is the main entry point for the WildTrace HTTP API. It serves camera
// trap devices, detection events, projects, field observations and survey
// submissions from a SQLite database, and streams uploaded images from the
// object store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/wildtrace/wildtrace-api/migrations"

	"github.com/wildtrace/wildtrace-api/internal/api"
	"github.com/wildtrace/wildtrace-api/internal/auth"
	"github.com/wildtrace/wildtrace-api/internal/blob"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/config"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/logging"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	dotenvPath        = ".env"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting WildTrace API",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", dotenvPath, err)
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:         cfg.Database.Path,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	var store blob.Store
	if cfg.Storage.UploadsDir != "" {
		fileStore, storeErr := blob.NewFileStore(cfg.Storage.UploadsDir)
		if storeErr != nil {
			return fmt.Errorf("opening object store: %w", storeErr)
		}
		defer fileStore.Close() //nolint:errcheck // nothing to flush
		store = fileStore
		log.Info("object store ready", "dir", cfg.Storage.UploadsDir)
	} else {
		log.Warn("object store disabled, image routes will answer with a configuration error")
	}

	var notifier mqtt.Notifier = mqtt.NopNotifier{}
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		notifier = mqtt.NewChangeNotifier(mqttClient, cfg.MQTT.TopicPrefix, log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled, change notifications off")
	}

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Secret:   cfg.Security.JWT.Secret,
		Issuer:   cfg.JWTIssuer(),
		Audience: cfg.Security.JWT.Audience,
	})
	if !verifier.Configured() {
		log.Warn("JWT secret or issuer missing, authenticated routes will answer with a configuration error")
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		DB:       db,
		Verifier: verifier,
		Blob:     store,
		Notifier: notifier,
		MQTT:     mqttClient,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred closes run in reverse order: API server, MQTT, object
	// store, database.
	return nil
}

// getConfigPath returns the configuration file path.
// Uses WILDTRACE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("WILDTRACE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
