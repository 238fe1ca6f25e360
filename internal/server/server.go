// Package server runs one agent: catalog store, auth gate, event publisher, metrics and
// the HTTP TaskService.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/agentmesh/internal/config"
	"github.com/morezero/agentmesh/pkg/agents"
	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/commsutil"
	"github.com/morezero/agentmesh/pkg/db"
	"github.com/morezero/agentmesh/pkg/events"
	"github.com/morezero/agentmesh/pkg/metrics"
)

const logPrefix = "server:server"

const shutdownTimeout = 10 * time.Second

// Server is one running agent.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	closeStore func()
	httpServer *http.Server
}

// SetupLogging installs the default slog handler for the given level name.
func SetupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

// Run starts the agent named agentName (empty = AGENT_NAME), blocks until a shutdown
// signal, then cleans up.
func Run(agentName string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if agentName != "" {
		cfg.AgentName = agentName
	}
	SetupLogging(cfg.LogLevel)

	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

// New builds the agent from cfg: store, registry, publisher, metrics and HTTP handler.
// The caller must call Serve, which releases everything New acquired.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	slog.Info(fmt.Sprintf("%s - Starting %s", logPrefix, cfg.AgentName))

	authCtx, err := cfg.AuthContext()
	if err != nil {
		return nil, err
	}
	if !authCtx.Enabled() {
		slog.Warn(fmt.Sprintf("%s - A2A_API_KEY not set, inbound requests are not authenticated", logPrefix))
	}

	s := &Server{cfg: cfg}

	// Step 1: Catalog store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.closeStore = closeStore

	// Step 2: Skill registry
	reg, err := agents.NewRegistry(cfg.AgentName, cfg.PublicURL(), cfg.AgentVersion, store)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("%s - failed to build registry: %w", logPrefix, err)
	}

	// Step 3: Auth event publisher (optional)
	var publisher events.EventPublisher = &events.NoOpPublisher{}
	if cfg.COMMSURL != "" {
		nc, err := commsutil.Connect(cfg.COMMSURL, commsutil.ConnectOptions{
			Service: cfg.COMMSName,
			Role:    commsutil.RoleAgent,
			Agent:   cfg.AgentName,
		})
		if err != nil {
			s.release()
			return nil, fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
		}
		s.nc = nc
		publisher = events.NewCommsPublisher(nc, &events.CommsPublisherOpts{GlobalAuthSubject: cfg.AuthEventSubject})
	}

	// Step 4: Metrics (optional)
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	handler := NewHandler(HandlerParams{
		Registry:           reg,
		Auth:               authCtx,
		Publisher:          publisher,
		Metrics:            collector,
		RequestTimeout:     cfg.RequestTimeout,
		HealthCheckTimeout: cfg.HealthCheckTimeout,
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ListenPort()),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info(fmt.Sprintf("%s - %s ready: %d skills, endpoint %s, %s",
		logPrefix, reg.Name(), len(reg.Describe().Skills), cfg.PublicURL(), authCtx))
	return s, nil
}

// Serve listens until ctx is done or the listener fails, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	defer s.release()

	errCh := make(chan error, 1)
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s - HTTP server error: %w", logPrefix, err)
		}
		return nil
	case <-ctx.Done():
		slog.Info(fmt.Sprintf("%s - Shutdown requested", logPrefix))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn(fmt.Sprintf("%s - HTTP shutdown: %v", logPrefix, err))
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// Handler returns the agent's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) release() {
	commsutil.Close(s.nc, 0)
	if s.closeStore != nil {
		s.closeStore()
	}
}

// openStore returns the Postgres repository when DATABASE_URL is set, otherwise an
// in-memory store loaded from CATALOG_FILE or the built-in catalog.
func openStore(ctx context.Context, cfg *config.Config) (catalog.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		c, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("%s - failed to load catalog: %w", logPrefix, err)
		}
		slog.Info(fmt.Sprintf("%s - Using in-memory catalog (%d products)", logPrefix, len(c.Products)))
		return catalog.NewMemoryStore(c), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
	}

	if cfg.RunMigrations {
		migrations, err := db.LoadMigrationFiles(cfg.MigrationPath)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
		}
		if err := db.RunMigrations(ctx, pool, migrations); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
		}
		c, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("%s - failed to load catalog: %w", logPrefix, err)
		}
		if err := db.SeedCatalog(ctx, pool, c); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("%s - failed to seed catalog: %w", logPrefix, err)
		}
	}

	return db.NewRepository(pool), pool.Close, nil
}
