package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	app "github.com/okian/prhealth/internal/app"
	"github.com/okian/prhealth/internal/config"
	"github.com/okian/prhealth/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("PRHEALTH_DB_DSN", path)
	t.Setenv(config.EnvConfigFile, "")
	return path
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("Given the version command", t, func() {
		out, err := run(t, "version")

		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldStartWith, "prhealth dev")
	})
}

func TestMigrateAndSeed(t *testing.T) {
	convey.Convey("Given an empty sqlite database", t, func() {
		useTempDB(t)

		convey.Convey("When migrating", func() {
			out, err := run(t, "migrate")

			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Schema ready (sqlite)")
		})

		convey.Convey("When seeding and scoring every account", func() {
			out, err := run(t, "seed", "--accounts", "3", "--publications", "4", "--seed", "9")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldStartWith, "Seeded 3 account(s)")

			jsonOut, err := run(t, "score", "--all")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then JSON output holds one report per account", func() {
				var reports []map[string]any
				convey.So(json.Unmarshal([]byte(jsonOut), &reports), convey.ShouldBeNil)
				convey.So(reports, convey.ShouldHaveLength, 3)
				convey.So(reports[0], convey.ShouldContainKey, "publishing_velocity")
			})

			convey.Convey("Then YAML output uses the same field names", func() {
				yamlOut, err := run(t, "score", "--all", "-o", "yaml")
				convey.So(err, convey.ShouldBeNil)

				var reports []map[string]any
				convey.So(yaml.Unmarshal([]byte(yamlOut), &reports), convey.ShouldBeNil)
				convey.So(reports, convey.ShouldHaveLength, 3)
				convey.So(reports[0], convey.ShouldContainKey, "organic_findability")
			})
		})
	})
}

func TestScoreCommandErrors(t *testing.T) {
	convey.Convey("Given the score command", t, func() {
		useTempDB(t)

		convey.Convey("When no account is given", func() {
			_, err := run(t, "score")
			convey.So(errors.Is(err, errNoAccounts), convey.ShouldBeTrue)
		})

		convey.Convey("When the output format is unknown", func() {
			_, err := run(t, "score", "acme", "-o", "xml")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "unknown output")
		})

		convey.Convey("When the account does not exist", func() {
			_, err := run(t, "score", "ghost")
			convey.So(errors.Is(err, app.ErrAccountNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestIngestCommand(t *testing.T) {
	convey.Convey("Given a feed file on disk", t, func() {
		useTempDB(t)
		feed := filepath.Join(t.TempDir(), "feed.xml")
		doc := `<?xml version="1.0"?><rss version="2.0"><channel><title>Newsroom</title>
<item><title>Acme ships v2</title><guid>acme-v2</guid><pubDate>Fri, 13 Jun 2025 09:00:00 GMT</pubDate></item>
</channel></rss>`
		convey.So(os.WriteFile(feed, []byte(doc), 0o600), convey.ShouldBeNil)

		convey.Convey("When it is ingested", func() {
			out, err := run(t, "ingest", "acme", feed)

			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldStartWith, "Ingested 1 of 1 item(s)")
		})

		convey.Convey("When the file does not exist", func() {
			_, err := run(t, "ingest", "acme", filepath.Join(t.TempDir(), "missing.xml"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestConfigFlag(t *testing.T) {
	convey.Convey("Given a config file with an invalid driver", t, func() {
		useTempDB(t)
		path := filepath.Join(t.TempDir(), "prhealth.yaml")
		convey.So(os.WriteFile(path, []byte("db_driver: mysql\n"), 0o600), convey.ShouldBeNil)

		_, err := run(t, "--config", path, "migrate")

		convey.Convey("Then loading fails with a config error", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the serve handler over a started service", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		cfg := config.New()
		cfg.DBDSN = filepath.Join(t.TempDir(), "serve.db")
		svc := app.New(cfg)
		ctx := context.Background()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		h := newHandler(ctx, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then docs, metrics and the API are routed", func() {
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/accounts/ghost/health").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)


		convey.Convey("Then the updater returns once its context ends", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
