package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lipish/postloop/internal/cli"
	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/history"
	"github.com/lipish/postloop/internal/pipeline"
	"github.com/lipish/postloop/internal/server/routes"
	"github.com/lipish/postloop/internal/versions"
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"gorm.io/gorm"
)

// Config wires the status server: the resolved application configuration, the
// listen port and the logger injected into every request context.
type Config struct {
	App    *config.Config
	Port   int
	Logger zerolog.Logger
	// HistoryPath overrides the default history database location;
	// ":memory:" is handy in tests.
	HistoryPath string
}

type Server struct {
	e      *echo.Echo
	config *Config
}

func New(cfg *Config) *Server {
	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogRemoteIP: true,
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info().
				Str("remote_ip", v.RemoteIP).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Int64("latency_ms", v.Latency.Milliseconds()).
				Msg("handled request")
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			cfg.Logger.Error().Err(err).Bytes("stack", stack).Send()
			return err
		},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := cfg.Logger.WithContext(req.Context())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	})

	s := &Server{e: e, config: cfg}
	s.init()
	return s
}

func (s *Server) init() {
	injector := do.New()
	s.injectDependencies(injector)
	s.registerRoutes(injector)
}

func (s *Server) injectDependencies(injector *do.Injector) {
	app := s.config.App
	do.Provide(injector, func(i *do.Injector) (*gorm.DB, error) {
		path := s.config.HistoryPath
		if path == "" {
			path = cli.HistoryPath(app.Watch.RepoPath)
		}
		return history.Open(path)
	})
	do.Provide(injector, func(i *do.Injector) (history.Store, error) {
		return history.NewStore(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (versions.Store, error) {
		return versions.Store{Root: app.Deploy.TargetDir}, nil
	})
	do.Provide(injector, func(i *do.Injector) (*pipeline.Pipeline, error) {
		p := pipeline.New(app)
		p.Recorder = history.NewRecorder(do.MustInvoke[history.Store](i))
		return p, nil
	})
}

func (s *Server) registerRoutes(injector *do.Injector) {
	routes.RegisterAPI(injector, s.e, s.config.App)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.config.Logger.Info().Str("addr", addr).Msg("starting status server")
	return s.e.Start(addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
