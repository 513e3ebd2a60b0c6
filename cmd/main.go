package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/birdiecount/internal/adapters/feed"
	"github.com/okian/birdiecount/internal/adapters/http/api"
	app "github.com/okian/birdiecount/internal/app"
	"github.com/okian/birdiecount/internal/config"
	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/pkg/logger"
	"github.com/okian/birdiecount/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// System gauges come from our own registry; drop the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	applyLogLevel(ctx, cfg.LogLevel)
	log := logger.Get()
	m := metrics.Configure(cfg.MetricsOptions()...)

	svc := newService(cfg)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx, m.RefreshInterval())

	if path := os.Getenv(config.EnvConfigFile); path != "" {
		go func() {
			err := config.Watch(ctx, path, newReloader(ctx, cfg, svc))
			if err != nil {
				log.Warn(ctx, "config watch disabled", logger.Error(err))
			}
		}()
	}

	srv := newHTTPServer(ctx, cfg, svc)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// newService builds the scheduler host from configuration.
func newService(cfg *config.Config) *app.Service {
	client := feed.NewClient(cfg.FeedBaseURL,
		feed.WithTimeout(cfg.RequestTimeout()),
	)
	return app.New(
		app.WithLogger(logger.Get().Named("service")),
		app.WithFetcher(client),
		app.WithInterval(cfg.PollInterval()),
		app.WithParams(cfg.Params()),
	)
}

// newHTTPServer wires the API routes behind the standard middleware stack.
func newHTTPServer(ctx context.Context, cfg *config.Config, svc *app.Service) *http.Server {
	apiServer := api.NewServer(svc, svc,
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithCORSOrigins(cfg.CORSOrigins),
	)
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Handler(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// applyLogLevel sets the level, falling back to info on invalid input.
func applyLogLevel(ctx context.Context, level string) {
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// paramsApplier is the part of the service a config reload drives.
type paramsApplier interface {
	Apply(ctx context.Context, p model.Params) bool
}

// newReloader returns a Watch callback. Board params are re-applied only when
// the file's own params change, so edits to other keys keep params set over HTTP.
func newReloader(ctx context.Context, initial *config.Config, svc paramsApplier) func(*config.Config) {
	var mu sync.Mutex
	last := initial.Params()
	return func(next *config.Config) {
		applyLogLevel(ctx, next.LogLevel)

		p := next.Params()
		mu.Lock()
		changed := !p.Equal(last)
		last = p
		mu.Unlock()
		if !changed {
			return
		}
		if svc.Apply(ctx, p) {
			logger.Get().Info(ctx, "board params reloaded from config")
		}
	}
}

// startSystemMetricsUpdater updates system metrics every interval until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
