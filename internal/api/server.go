// Package api provides the HTTP API and WebSocket server for linkstatus-core.
//
// It exposes the device report endpoint, the active link topology, health
// and metrics, and a WebSocket hub that relays reporter snapshots.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/logging"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/linkstatus-core/internal/reporter"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Fetcher retrieves the upstream device-status payload.
// Implemented by upstream.Client.
type Fetcher interface {
	Fetch(ctx context.Context) (*devicestatus.Payload, error)
}

// ReporterStatus exposes the background reporter's last run.
// Implemented by reporter.Reporter.
type ReporterStatus interface {
	Status() reporter.Status
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Logger      *logging.Logger
	Fetcher     Fetcher
	Transformer *devicestatus.Transformer
	Reporter    ReporterStatus   // optional: nil when the reporter is disabled
	MQTT        *mqtt.Client     // optional
	InfluxDB    *influxdb.Client // optional
	DB          *sql.DB          // optional: set when the topology lives in SQLite
	ExternalHub *Hub             // If set, the server uses this hub instead of creating its own
	Version     string
}

// Server is the HTTP API server for linkstatus-core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	fetcher     Fetcher
	transformer *devicestatus.Transformer
	reporter    ReporterStatus
	mqtt        *mqtt.Client
	influx      *influxdb.Client
	db          *sql.DB
	version     string
	startTime   time.Time
	stats       reportStats
	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, fetcher, transformer)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("upstream fetcher is required")
	}
	if deps.Transformer == nil {
		return nil, fmt.Errorf("transformer is required")
	}

	s := &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		logger:      deps.Logger,
		fetcher:     deps.Fetcher,
		transformer: deps.Transformer,
		reporter:    deps.Reporter,
		mqtt:        deps.MQTT,
		influx:      deps.InfluxDB,
		db:          deps.DB,
		version:     deps.Version,
		startTime:   time.Now(),
	}

	// The reporter's hub sink is wired before the server starts, so the hub
	// is usually created by the caller and injected here.
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the WebSocket hub, or nil before Start when none was injected.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub (unless injected) and
// launches the HTTP listener in a background goroutine. The server can be
// stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation of background goroutines
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.ReadTimeout(),
		WriteTimeout:      s.cfg.WriteTimeout(),
		IdleTimeout:       s.cfg.IdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
