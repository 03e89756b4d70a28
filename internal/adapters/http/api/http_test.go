package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/prhealth/internal/adapters/http/api"
	service "github.com/okian/prhealth/internal/app"
	"github.com/okian/prhealth/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps implements api.Dependencies.
type mockDeps struct {
	triggered map[string]bool
	full      bool
	failWith  error
}

func (m *mockDeps) Health(_ context.Context, id string) (types.HealthReport, error) {
	if m.failWith != nil {
		return types.HealthReport{}, m.failWith
	}
	if id != "acme" {
		return types.HealthReport{}, fmt.Errorf("%w: %s", service.ErrAccountNotFound, id)
	}
	return types.HealthReport{
		AccountID: id,
		Velocity:  types.VelocityResult{Score: 80},
		Coverage:  types.CoverageResult{Score: 50, Baseline: true},
	}, nil
}

func (m *mockDeps) Metric(ctx context.Context, id, name string) (any, error) {
	report, err := m.Health(ctx, id)
	if err != nil {
		return nil, err
	}
	switch name {
	case "velocity":
		return report.Velocity, nil
	case "coverage":
		return report.Coverage, nil
	default:
		return nil, fmt.Errorf("%w: %q", service.ErrUnknownMetric, name)
	}
}

func (m *mockDeps) TriggerSummary(ctx context.Context, id string) (service.TriggerResult, error) {
	report, err := m.Health(ctx, id)
	if err != nil {
		return service.TriggerResult{}, err
	}
	if m.triggered == nil {
		m.triggered = map[string]bool{}
	}
	if m.triggered[id] {
		return service.TriggerResult{Status: service.TriggerDuplicate, Duplicate: true, Report: report}, nil
	}
	if m.full {
		return service.TriggerResult{}, service.ErrBackpressure
	}
	m.triggered[id] = true
	return service.TriggerResult{Status: service.TriggerAccepted, TriggerID: "t-1", Report: report}, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "triggerWorkers": 4}
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDeps{})

		Convey("Then /healthz serves Prometheus metrics", func() {
			w := do(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/plain")
		})

		Convey("Then /stats serves the service stats", func() {
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldEqual, true)
		})

		Convey("Then unknown paths are not found", func() {
			So(do(mux, http.MethodGet, "/leaderboard").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are rejected", func() {
			So(do(mux, http.MethodPost, "/accounts/acme/health").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodGet, "/accounts/acme/summary").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPost, "/stats").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestAccountsHandler_Health(t *testing.T) {
	Convey("Given an accounts API", t, func() {
		mux := newMux(&mockDeps{})

		Convey("When the full report is requested", func() {
			w := do(mux, http.MethodGet, "/accounts/acme/health")

			Convey("Then the report is returned with its JSON keys", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["account_id"], ShouldEqual, "acme")
				vel, ok := body["publishing_velocity"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(vel["score"], ShouldEqual, 80)
				So(body, ShouldContainKey, "distribution_reach")
				So(body, ShouldContainKey, "coverage_quality")
				So(body, ShouldContainKey, "organic_findability")
				So(body, ShouldNotContainKey, "overall")
			})
		})

		Convey("When a single metric is requested", func() {
			w := do(mux, http.MethodGet, "/accounts/acme/health/coverage")

			Convey("Then only that result is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["baseline"], ShouldEqual, true)
			})
		})

		Convey("When the metric is unknown", func() {
			w := do(mux, http.MethodGet, "/accounts/acme/health/vibes")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the account is unknown", func() {
			w := do(mux, http.MethodGet, "/accounts/ghost/health")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["message"], ShouldContainSubstring, "account not found")
			})
		})

		Convey("When the service is not started", func() {
			mux := newMux(&mockDeps{failWith: service.ErrNotStarted})
			So(do(mux, http.MethodGet, "/accounts/acme/health").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the service fails unexpectedly", func() {
			mux := newMux(&mockDeps{failWith: errors.New("disk on fire")})
			w := do(mux, http.MethodGet, "/accounts/acme/health")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode(w)["code"], ShouldEqual, "internal_error")
		})
	})
}

func TestAccountsHandler_Summary(t *testing.T) {
	Convey("Given an accounts API", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When a summary is requested", func() {
			w := do(mux, http.MethodPost, "/accounts/acme/summary")

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(decode(w)["status"], ShouldEqual, "accepted")
				So(decode(w)["trigger_id"], ShouldEqual, "t-1")
			})

			Convey("Then a repeat request is a duplicate", func() {
				again := do(mux, http.MethodPost, "/accounts/acme/summary")
				So(again.Code, ShouldEqual, http.StatusOK)
				So(decode(again)["duplicate"], ShouldEqual, true)
			})
		})

		Convey("When the queue is full", func() {
			deps.full = true
			w := do(mux, http.MethodPost, "/accounts/acme/summary")

			Convey("Then backpressure is signalled", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode(w)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the account is unknown", func() {
			So(do(mux, http.MethodPost, "/accounts/ghost/summary").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given kind errors", t, func() {
		cause := errors.New("boom")

		Convey("Then NewKind matches its kind", func() {
			err := api.NewKind("api.op", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request")
		})

		Convey("Then WrapKind matches both kind and cause", func() {
			err := api.WrapKind("api.op", api.ErrNotFound, cause)
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: not found: boom")
		})

		Convey("Then Wrap keeps an existing kind and defaults to internal", func() {
			inner := api.NewKind("api.inner", api.ErrBackpressure)
			So(errors.Is(api.Wrap("api.outer", inner), api.ErrBackpressure), ShouldBeTrue)
			So(errors.Is(api.Wrap("api.outer", cause), api.ErrInternal), ShouldBeTrue)
			So(api.Wrap("api.outer", nil), ShouldBeNil)
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped with metrics", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/teapot", http.NoBody))

		Convey("Then the response passes through unchanged", func() {
			So(w.Code, ShouldEqual, http.StatusTeapot)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "short and stout")
		})
	})
}
