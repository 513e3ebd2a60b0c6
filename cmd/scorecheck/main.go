// Command scorecheck runs the birdie/eagle pipeline from the terminal: one
// poll cycle by default, or a live session with --watch.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/okian/birdiecount/internal/adapters/feed"
	app "github.com/okian/birdiecount/internal/app"
	"github.com/okian/birdiecount/internal/config"
	"github.com/okian/birdiecount/internal/domain/merge"
	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/internal/domain/params"
	"github.com/okian/birdiecount/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "scorecheck",
		Usage:  "count birdies and eagles for one tournament round",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: params.KeyEvent, Usage: "event id", EnvVars: []string{"BIRDIES_EVENT"}},
			&cli.StringFlag{Name: params.KeyRound, Usage: "round id", EnvVars: []string{"BIRDIES_ROUND"}},
			&cli.StringFlag{Name: params.KeyEagle, Usage: "eagle override (leading digits used)", EnvVars: []string{"BIRDIES_EA"}},
			&cli.StringFlag{Name: params.KeyBirdie, Usage: "birdie override (leading digits used)", EnvVars: []string{"BIRDIES_BI"}},
			&cli.StringFlag{Name: "feed-url", Usage: "feed base URL", Value: config.DefaultFeedBaseURL, EnvVars: []string{"BIRDIES_FEED_BASE_URL"}},
			&cli.DurationFlag{Name: "timeout", Usage: "per-request timeout", Value: feed.DefaultTimeout},
			&cli.DurationFlag{Name: "interval", Usage: "poll interval with --watch", Value: app.DefaultInterval},
			&cli.BoolFlag{Name: "watch", Usage: "keep polling and print every state change"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON lines"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: "warn"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if err := logger.Init(logger.WithOutput(c.App.ErrWriter)); err != nil {
		return err
	}
	if err := logger.SetLevelString(c.String("log-level")); err != nil {
		return cli.Exit(err.Error(), 2) //nolint:mnd // usage error
	}

	p := params.Resolve(flagSource{c})
	client := feed.NewClient(c.String("feed-url"), feed.WithTimeout(c.Duration("timeout")))
	pr := printer{out: c.App.Writer, json: c.Bool("json")}

	if c.Bool("watch") {
		return watch(c.Context, p, client, c.Duration("interval"), pr)
	}

	st := once(c.Context, p, client)
	if err := pr.print(st); err != nil {
		return err
	}
	if st.Kind == model.StateError {
		return cli.Exit("", 1)
	}
	return nil
}

// once runs a single poll cycle.
func once(ctx context.Context, p model.Params, f app.Fetcher) model.State {
	if !merge.NeedsFetch(p) {
		return merge.Decide(p, nil).State(time.Now())
	}
	outcome := f.Fetch(ctx, p.EventID, p.RoundID)
	return merge.Decide(p, &outcome).State(time.Now())
}

// watch prints every published state until interrupted.
func watch(ctx context.Context, p model.Params, f app.Fetcher, interval time.Duration, pr printer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := app.StartSession(ctx, p,
		app.WithSessionFetcher(f),
		app.WithSessionInterval(interval),
		app.WithObserver(func(st model.State) { _ = pr.print(st) }),
	)
	<-ctx.Done()
	s.Stop()
	s.Wait()
	return nil
}

// flagSource exposes only the flags the user actually set, so an absent
// override stays absent.
type flagSource struct{ c *cli.Context }

func (f flagSource) Lookup(key string) (string, bool) {
	if !f.c.IsSet(key) {
		return "", false
	}
	return f.c.String(key), true
}

type printer struct {
	out  io.Writer
	json bool
}

type stateLine struct {
	State         string    `json:"state"`
	Birdies       int       `json:"birdies"`
	Eagles        int       `json:"eagles"`
	TotalDeployed int       `json:"total_deployed"`
	Message       string    `json:"message,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p printer) print(st model.State) error {
	shown := st.Displayed()
	if p.json {
		return json.NewEncoder(p.out).Encode(stateLine{
			State:         st.Kind.String(),
			Birdies:       shown.Birdies,
			Eagles:        shown.Eagles,
			TotalDeployed: shown.TotalDeployed(),
			Message:       st.Message,
			UpdatedAt:     st.UpdatedAt,
		})
	}

	line := fmt.Sprintf("%-7s birdies %s  eagles %s  balls deployed %s",
		st.Kind, model.Digits(shown.Birdies), model.Digits(shown.Eagles), model.Digits(shown.TotalDeployed()))
	if st.Message != "" {
		line += "  (" + st.Message + ")"
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}
