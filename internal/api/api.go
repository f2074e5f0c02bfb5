package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freshersjob/freshersjob/internal/api/authenticator"
	"github.com/freshersjob/freshersjob/internal/api/controllers"
	"github.com/freshersjob/freshersjob/internal/config"
	"github.com/freshersjob/freshersjob/internal/migrations"
	"github.com/freshersjob/freshersjob/internal/ratelimit"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/valyala/fasthttp"
)

// Server is the REST API over the FreshersJob services.
type Server struct {
	srv       *fasthttp.Server
	addr      string
	conf      *config.Config
	services  *services.Services
	auth      *authenticator.Authenticator
	rateLimit *controllers.RateLimit
	stop      func()
}

// New builds a server over store ("postgres" or "memory"). Postgres migrations run first.
func New(store string) (*Server, error) {
	conf := config.ReadConfig()

	if store == "" || store == services.StorePostgres {
		m, err := migrations.NewMigrator()
		if err != nil {
			return nil, fmt.Errorf("unable to create migrator: %w", err)
		}
		if err := m.Up(0); err != nil {
			return nil, fmt.Errorf("unable to run migrations: %w", err)
		}
	}

	svc, err := services.NewServices(conf, store)
	if err != nil {
		return nil, err
	}

	auth, err := authenticator.New(conf)
	if err != nil {
		return nil, fmt.Errorf("unable to create authenticator: %w", err)
	}

	s := &Server{
		srv: &fasthttp.Server{
			Name:               "freshersjob",
			MaxRequestBodySize: controllers.MaxUploadBytes + 1<<20,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       30 * time.Second,
		},
		addr:     fmt.Sprintf("0.0.0.0:%s", conf.PORT),
		conf:     conf,
		services: svc,
		auth:     auth,
		stop:     func() {},
	}
	s.rateLimit, s.stop = newRateLimit(conf)

	s.srv.Handler = s.initNewRoutes()

	return s, nil
}

func newRateLimit(conf *config.Config) (*controllers.RateLimit, func()) {
	if conf.RATE_LIMIT_PER_MINUTE <= 0 {
		slog.Info("Rate limiting disabled")
		return nil, func() {}
	}

	rate := ratelimit.PerMinute(conf.RATE_LIMIT_PER_MINUTE)
	if conf.REDIS_ADDR != "" {
		client, err := ratelimit.NewRedisClient(context.Background(), conf.REDIS_ADDR, conf.REDIS_PASSWORD)
		if err == nil {
			slog.Info("Using redis rate limiter", slog.String("addr", conf.REDIS_ADDR))
			l := ratelimit.NewRedisLimiter(client, "freshersjob:rate_limit:")
			return &controllers.RateLimit{Limiter: l, Rate: rate, Scope: "ip", TrustedProxies: conf.TRUSTED_PROXIES}, func() { _ = l.Close() }
		}
		slog.Warn("Redis unavailable, falling back to in-memory rate limiter", slog.Any("error", err))
	}

	l := ratelimit.NewMemoryLimiter()
	return &controllers.RateLimit{Limiter: l, Rate: rate, Scope: "ip", TrustedProxies: conf.TRUSTED_PROXIES}, l.Stop
}

// Start the rest server
func (s *Server) Start() {
	slog.Info("Starting REST server...", slog.String("addr", s.addr))
	go func() {
		if err := s.srv.ListenAndServe(s.addr); err != nil {
			slog.Error("Server shutdown", slog.Any("error", err))
		}
	}()
	slog.Info("REST server started!")

	// Listen for OS interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Block till we receive an interrupt
	<-c
	slog.Info("Received interrupt...")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s.shutdown(ctx)
}

func (s *Server) shutdown(ctx context.Context) {
	slog.Info("Gracefully shutting down REST server...")
	if err := s.srv.ShutdownWithContext(ctx); err != nil {
		slog.Error("Failed to shutdown the server", slog.Any("error", err))
	}
	s.stop()
	slog.Info("REST server shutdown!")
}
