package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/netsession/internal/api/http"
	"github.com/GriffinCanCode/netsession/internal/api/middleware"
	"github.com/GriffinCanCode/netsession/internal/api/ws"
	"github.com/GriffinCanCode/netsession/internal/domain/registry"
	"github.com/GriffinCanCode/netsession/internal/domain/session"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/config"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/netsession/internal/shared/utils"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	manager *session.Manager
	service *session.Service
	hub     *ws.Hub
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return New(cfg, logger)
}

// New creates a server using an existing logger
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Initializing session server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("session_dir", cfg.Session.Dir),
	)

	metrics := monitoring.NewMetrics()

	regs := registry.New()
	manager := session.NewManager(regs, logger.Component("session"))

	if cfg.Session.SeedDir != "" {
		seeder := registry.NewSeeder(regs.Styles, manager, cfg.Session.SeedDir, logger.Component("seeder"))
		if _, err := seeder.Seed(context.Background()); err != nil {
			logger.Warn("Failed to seed defaults", zap.Error(err))
		}
	}

	service := session.NewService(manager,
		session.WithServiceLogger(logger.Component("archive")),
		session.WithMetrics(metrics),
		session.WithHasher(utils.NewHasher(utils.ParseHashAlgorithm(cfg.Session.HashAlgorithm))),
		session.WithCompressionLevel(cfg.Session.CompressionLevel),
		session.WithBaseDir(cfg.Session.Dir),
		session.WithExtractDir(cfg.Session.ExtractDir),
		session.WithFetchSettings(session.FetchSettings{
			Timeout:         cfg.Fetch.Timeout,
			MaxRetries:      cfg.Fetch.MaxRetries,
			RetryWaitMin:    cfg.Fetch.RetryWaitMin,
			RetryWaitMax:    cfg.Fetch.RetryWaitMax,
			BreakerFailures: cfg.Fetch.BreakerFailures,
		}),
	)

	hub := ws.NewHub(logger.Component("ws"), metrics)
	manager.AddListener(hub.Listener())

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	corsCfg := middleware.NewCORSConfig(cfg.Server.Origins())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(service, metrics, logger.Component("http"))
	handlers.Register(router)
	router.GET("/ws", ws.NewHandler(hub, manager, corsCfg.OriginAllowed).HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		manager: manager,
		service: service,
		hub:     hub,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Manager returns the session manager
func (s *Server) Manager() *session.Manager {
	return s.manager
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.metrics.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Close releases resources
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.hub.Close()
	s.logger.Close()
	return nil
}
