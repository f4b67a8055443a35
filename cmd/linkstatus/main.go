// linkstatus-core - device and modem link status service
//
// This is the main entry point for the linkstatus-core service. It serves
// the device report consumed by the monitoring dashboard: each request
// fetches the upstream status feed, attaches modems to their parent devices
// using the configured link table, and returns online/offline counts.
//
// Optionally, a background reporter pushes the same report to MQTT,
// InfluxDB and WebSocket clients on a fixed interval.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nerrad567/linkstatus-core/internal/api"
	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/database"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/logging"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/linkstatus-core/internal/reporter"
	"github.com/nerrad567/linkstatus-core/internal/topology"
	"github.com/nerrad567/linkstatus-core/internal/upstream"
	"github.com/nerrad567/linkstatus-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

const (
	// defaultConfigPath is used when LINKSTATUS_CONFIG is not set.
	defaultConfigPath = "configs/config.yaml"

	// configPathEnv names the environment variable holding the config path.
	configPathEnv = "LINKSTATUS_CONFIG"
)

func main() {
	migrateDown := flag.Bool("migrate-down", false, "roll back the latest database migration and exit")
	flag.Parse()

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if *migrateDown {
		err = runMigrateDown(ctx)
	} else {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv reads an optional .env file; values already in the environment win.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// runMigrateDown rolls back the most recent schema migration of the
// configured database and exits. Used when downgrading a release.
func runMigrateDown(ctx context.Context) error {
	if err := loadEnv(); err != nil {
		return err
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // process exits next

	if err := db.MigrateDown(ctx, migrations.FS, "."); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	applied, pending, err := db.MigrationStatus(ctx, migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	log.Info("migration rolled back",
		"path", db.Path(),
		"applied", len(applied),
		"pending", len(pending),
	)
	return nil
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting linkstatus-core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := loadEnv(); err != nil {
		return err
	}

	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if configPath == "" {
		log.Info("no config file found, using built-in defaults")
	} else {
		log.Info("configuration loaded", "path", configPath)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the topology database only when the layout lives there
	var db *database.DB
	var repo topology.Repository
	if cfg.Topology.Source == config.TopologyDatabase {
		db, err = database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", db.Path())

		if migrateErr := db.Migrate(ctx, migrations.FS, "."); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database migrations complete")

		repo = topology.NewSQLiteRepository(db)
	}

	// Build the immutable link index once; every request shares it
	layout, err := topology.Load(ctx, cfg.Topology, repo, log)
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}
	transformer, err := devicestatus.NewTransformer(layout)
	if err != nil {
		return fmt.Errorf("building link index: %w", err)
	}
	log.Info("link index built",
		"sources", len(layout.Order),
		"entries", transformer.LinkCount(),
	)

	upstreamClient := upstream.New(cfg.Upstream)
	log.Info("upstream configured",
		"url", upstreamClient.URL(),
		"timeout", cfg.GetUpstreamTimeout(),
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"topic_prefix", mqttClient.Topics().Prefix(),
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// The hub is shared by the API server and the reporter's WebSocket sink
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	deps := api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log.Component("api"),
		Fetcher:     upstreamClient,
		Transformer: transformer,
		MQTT:        mqttClient,
		InfluxDB:    influxClient,
		DB:          sqlHandle(db),
		ExternalHub: hub,
		Version:     version,
	}

	// Start background reporter (optional)
	if cfg.Reporter.Enabled {
		rep, repErr := startReporter(ctx, cfg, upstreamClient, transformer, hub, mqttClient, influxClient, log)
		if repErr != nil {
			return fmt.Errorf("starting reporter: %w", repErr)
		}
		defer func() {
			log.Info("stopping reporter")
			rep.Stop()
		}()
		deps.Reporter = rep
	} else {
		log.Info("reporter disabled")
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Reporter (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database (if used)

	log.Info("linkstatus-core stopped")
	return nil
}

// getConfigPath returns the configuration file path and whether it was set
// explicitly through LINKSTATUS_CONFIG.
func getConfigPath() (string, bool) {
	if path := os.Getenv(configPathEnv); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}

// loadConfig reads the config file. When no path was given and the default
// file does not exist, built-in defaults are used and the returned path is "".
func loadConfig() (*config.Config, string, error) {
	path, explicit := getConfigPath()

	cfg, err := config.Load(path)
	if err == nil {
		return cfg, path, nil
	}
	if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}

	cfg, err = config.Default()
	if err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

// startReporter wires the enabled sinks and starts the periodic reporter.
//
// Parameters:
//   - ctx: Context bounding the reporter's lifetime
//   - cfg: Application configuration
//   - fetcher: Upstream client
//   - transformer: Shared link index and pipeline
//   - hub: WebSocket hub (always a sink)
//   - mqttClient: MQTT client (nil if disabled)
//   - influxClient: InfluxDB client (nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *reporter.Reporter: Running reporter
//   - error: If the reporter cannot be created
func startReporter(
	ctx context.Context,
	cfg *config.Config,
	fetcher reporter.Fetcher,
	transformer *devicestatus.Transformer,
	hub *api.Hub,
	mqttClient *mqtt.Client,
	influxClient *influxdb.Client,
	log *logging.Logger,
) (*reporter.Reporter, error) {
	sinks := []reporter.Sink{reporter.NewHubSink(hub)}
	if mqttClient != nil {
		sinks = append(sinks, reporter.NewMQTTSink(mqttClient, mqttClient.Topics()))
	}
	if influxClient != nil {
		sinks = append(sinks, reporter.NewInfluxSink(influxClient))
	}

	rep, err := reporter.New(reporter.Config{
		Interval:    cfg.GetReporterInterval(),
		Fetcher:     fetcher,
		Transformer: transformer,
		Sinks:       sinks,
		Logger:      log.Component("reporter"),
	})
	if err != nil {
		return nil, err
	}

	rep.Start(ctx)

	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	log.Info("reporter started", "interval", cfg.GetReporterInterval(), "sinks", names)

	return rep, nil
}

// sqlHandle returns the underlying pool, or nil when no database is open.
func sqlHandle(db *database.DB) *sql.DB {
	if db == nil {
		return nil
	}
	return db.DB
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check (may be nil if unused)
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
