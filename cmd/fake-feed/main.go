// Command fake-feed serves synthetic hole-by-hole rounds for local runs:
//
//	go run ./cmd/fake-feed --seed 42 --addr :9090
//	BIRDIES_FEED_BASE_URL=http://localhost:9090 BIRDIES_EVENT=1 BIRDIES_ROUND=1 go run ./cmd
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/birdiecount/internal/fakefeed"
	"github.com/okian/birdiecount/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	a := &cli.App{
		Name:  "fake-feed",
		Usage: "serve random rounds at /Event/{event}/Round/{round}",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":9090", Usage: "listen address"},
			&cli.Int64Flag{Name: "seed", Usage: "base seed; 0 picks one from the clock"},
			&cli.IntFlag{Name: "players", Value: 156, Usage: "players per round"},
			&cli.IntFlag{Name: "holes", Value: 18, Usage: "holes per player"},
			&cli.Float64Flag{Name: "fail-rate", Usage: "fraction of requests answered with 500"},
			&cli.BoolFlag{Name: "verbose", Usage: "log every request"},
		},
		Action: serve,
	}
	if err := a.Run(os.Args); err != nil {
		logger.Get().Error(context.Background(), "fake feed failed", logger.Error(err))
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	if c.Bool("verbose") {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Get().Named("fake-feed")

	cfg := fakefeed.NewConfig(
		fakefeed.WithSeed(c.Int64("seed")),
		fakefeed.WithPlayers(c.Int("players")),
		fakefeed.WithHoles(c.Int("holes")),
		fakefeed.WithFailRate(c.Float64("fail-rate")),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           fakefeed.NewHandler(cfg),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving fake feed",
			logger.String("addr", srv.Addr),
			logger.Any("seed", cfg.Seed),
			logger.Int("players", cfg.Players),
			logger.Float64("fail_rate", cfg.FailRate))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
