package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/urfave/cli/v2"

	"github.com/okian/birdiecount/internal/domain/counter"
	"github.com/okian/birdiecount/internal/fakefeed"
	"github.com/okian/birdiecount/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testApp(out *bytes.Buffer) *cli.App {
	a := newApp(out)
	a.ErrWriter = &bytes.Buffer{}
	a.ExitErrHandler = func(*cli.Context, error) {}
	return a
}

func TestScorecheck(t *testing.T) {
	convey.Convey("Given a fake feed", t, func() {
		feedCfg := fakefeed.NewConfig(fakefeed.WithSeed(5), fakefeed.WithPlayers(8))
		srv := httptest.NewServer(fakefeed.NewHandler(feedCfg))
		defer srv.Close()
		live := counter.Count(fakefeed.NewGenerator(feedCfg).Round("E1", "1").Records())

		var out bytes.Buffer

		convey.Convey("One cycle prints the merged board as JSON", func() {
			err := testApp(&out).Run([]string{"scorecheck",
				"--feed-url", srv.URL, "--event", "E1", "--round", "1", "--ea", "3", "--json"})
			convey.So(err, convey.ShouldBeNil)

			var line stateLine
			convey.So(json.Unmarshal(out.Bytes(), &line), convey.ShouldBeNil)
			convey.So(line.State, convey.ShouldEqual, "ready")
			convey.So(line.Birdies, convey.ShouldEqual, live.Birdies)
			convey.So(line.Eagles, convey.ShouldEqual, live.Eagles+3)
			convey.So(line.TotalDeployed, convey.ShouldEqual, live.Birdies+2*(live.Eagles+3))
		})

		convey.Convey("Overrides alone never touch the feed", func() {
			err := testApp(&out).Run([]string{"scorecheck", "--feed-url", "http://127.0.0.1:1", "--bi", "5", "--ea", "5"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(out.String(), convey.ShouldStartWith, "ready")
			convey.So(out.String(), convey.ShouldContainSubstring, "birdies 005  eagles 005  balls deployed 015")
		})

		convey.Convey("No inputs is idle", func() {
			err := testApp(&out).Run([]string{"scorecheck"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(out.String(), convey.ShouldStartWith, "idle")
		})

		convey.Convey("A failing feed without overrides exits 1", func() {
			err := testApp(&out).Run([]string{"scorecheck", "--feed-url", "http://127.0.0.1:1", "--event", "E1", "--round", "1"})
			convey.So(err, convey.ShouldNotBeNil)
			exit, ok := err.(cli.ExitCoder)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(exit.ExitCode(), convey.ShouldEqual, 1)
			convey.So(out.String(), convey.ShouldContainSubstring, "Failed to fetch scores")
		})

		convey.Convey("Watch prints each published state until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			err := testApp(&out).RunContext(ctx, []string{"scorecheck",
				"--feed-url", srv.URL, "--event", "E1", "--round", "1", "--watch", "--interval", "40ms", "--json"})
			convey.So(err, convey.ShouldBeNil)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			convey.So(len(lines), convey.ShouldBeGreaterThanOrEqualTo, 3)
			convey.So(lines[0], convey.ShouldContainSubstring, `"state":"loading"`)
			convey.So(lines[1], convey.ShouldContainSubstring, `"state":"ready"`)
		})
	})
}
