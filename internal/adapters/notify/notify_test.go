package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/prhealth/internal/adapters/notify"
	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/internal/domain/types"
	"github.com/okian/prhealth/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func sampleTrigger() model.SummaryTrigger {
	overall := 71.0
	return model.SummaryTrigger{
		ID:          "trg-1",
		AccountID:   "acme",
		RequestedAt: time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		Report: types.HealthReport{
			AccountID:   "acme",
			Velocity:    types.VelocityResult{Score: 80},
			Reach:       types.ReachResult{Score: 64},
			Coverage:    types.CoverageResult{Score: 50, Baseline: true},
			Findability: types.FindabilityResult{Score: 20},
			Overall:     &overall,
		},
	}
}

func TestWebhookSink(t *testing.T) {
	convey.Convey("Given a webhook endpoint", t, func() {
		var (
			mu      sync.Mutex
			gotBody []byte
			gotKey  string
			status  = http.StatusAccepted
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			gotBody, _ = io.ReadAll(r.Body)
			gotKey = r.Header.Get("Idempotency-Key")
			w.WriteHeader(status)
		}))
		defer srv.Close()

		sink, err := notify.NewWebhookSink(srv.URL, notify.WithHTTPClient(srv.Client()))
		convey.So(err, convey.ShouldBeNil)
		convey.So(sink.Name(), convey.ShouldEqual, "webhook")

		convey.Convey("When a trigger is delivered", func() {
			err := sink.Deliver(context.Background(), sampleTrigger())

			convey.Convey("Then the payload is posted as JSON", func() {
				mu.Lock()
				defer mu.Unlock()
				convey.So(err, convey.ShouldBeNil)
				var payload map[string]any
				convey.So(json.Unmarshal(gotBody, &payload), convey.ShouldBeNil)
				convey.So(payload["trigger_id"], convey.ShouldEqual, "trg-1")
				convey.So(payload["account_id"], convey.ShouldEqual, "acme")
				report, ok := payload["report"].(map[string]any)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(report["overall"], convey.ShouldEqual, 71.0)
				convey.So(gotKey, convey.ShouldEqual, "trg-1")
			})
		})

		convey.Convey("When the endpoint rejects the trigger", func() {
			mu.Lock()
			status = http.StatusBadGateway
			mu.Unlock()
			err := sink.Deliver(context.Background(), sampleTrigger())

			convey.Convey("Then the error is ErrDeliveryRejected", func() {
				convey.So(errors.Is(err, notify.ErrDeliveryRejected), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "502")
			})
		})
	})

	convey.Convey("Given no URL", t, func() {
		_, err := notify.NewWebhookSink("")
		convey.So(errors.Is(err, notify.ErrMissingEndpoint), convey.ShouldBeTrue)
	})
}

func TestTelegramSink(t *testing.T) {
	convey.Convey("Given a fake Bot API server", t, func() {
		var (
			mu   sync.Mutex
			sent []string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case strings.HasSuffix(r.URL.Path, "/getMe"):
				_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"prhealth","username":"prhealth_bot"}}`)
			case strings.HasSuffix(r.URL.Path, "/sendMessage"):
				_ = r.ParseForm()
				mu.Lock()
				sent = append(sent, r.Form.Get("chat_id")+":"+r.Form.Get("text"))
				mu.Unlock()
				_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":7,"type":"private"}}}`)
			default:
				_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
			}
		}))
		defer srv.Close()

		sink, err := notify.NewTelegramSink("token", 7,
			notify.WithTelegramEndpoint(srv.URL+"/bot%s/%s"),
			notify.WithTelegramClient(srv.Client()),
		)
		convey.So(err, convey.ShouldBeNil)
		convey.So(sink.Name(), convey.ShouldEqual, "telegram")

		convey.Convey("When a trigger is delivered", func() {
			convey.So(sink.Deliver(context.Background(), sampleTrigger()), convey.ShouldBeNil)

			convey.Convey("Then the digest is sent to the chat", func() {
				mu.Lock()
				defer mu.Unlock()
				convey.So(len(sent), convey.ShouldEqual, 1)
				convey.So(sent[0], convey.ShouldStartWith, "7:PR health for acme (2025-06-15)")
				convey.So(sent[0], convey.ShouldContainSubstring, "Overall: 71")
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.So(sink.Deliver(ctx, sampleTrigger()), convey.ShouldEqual, context.Canceled)
		})
	})

	convey.Convey("Given missing credentials", t, func() {
		_, err := notify.NewTelegramSink("", 0)
		convey.So(errors.Is(err, notify.ErrMissingEndpoint), convey.ShouldBeTrue)
	})
}

func TestDigest(t *testing.T) {
	convey.Convey("Given a report without an overall score", t, func() {
		trg := sampleTrigger()
		trg.Report.Overall = nil
		text := notify.Digest(trg)

		convey.So(text, convey.ShouldContainSubstring, "Publishing velocity: 80")
		convey.So(text, convey.ShouldContainSubstring, "Distribution reach: 64")
		convey.So(text, convey.ShouldContainSubstring, "Coverage quality: 50")
		convey.So(text, convey.ShouldEndWith, "Organic findability: 20")
		convey.So(text, convey.ShouldNotContainSubstring, "Overall")
	})
}

type stubSink struct {
	name  string
	err   error
	calls int
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Deliver(context.Context, model.SummaryTrigger) error { //nolint:gocritic // matches Sink
	s.calls++
	return s.err
}

func TestMultiSink(t *testing.T) {
	convey.Convey("Given a multi sink with one failing child", t, func() {
		ok := &stubSink{name: "ok"}
		bad := &stubSink{name: "bad", err: errors.New("down")}
		m := notify.NewMultiSink(ok, nil, bad)

		convey.So(m.Len(), convey.ShouldEqual, 2)
		convey.So(m.Name(), convey.ShouldEqual, "multi(ok,bad)")

		convey.Convey("When delivering", func() {
			err := m.Deliver(context.Background(), sampleTrigger())

			convey.Convey("Then every child is attempted and the failure is reported", func() {
				convey.So(ok.calls, convey.ShouldEqual, 1)
				convey.So(bad.calls, convey.ShouldEqual, 1)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "bad: down")
			})
		})
	})
}

func TestLogSink(t *testing.T) {
	convey.Convey("Given a log sink", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		sink := notify.NewLogSink()

		convey.So(sink.Name(), convey.ShouldEqual, "log")
		convey.So(sink.Deliver(context.Background(), sampleTrigger()), convey.ShouldBeNil)
	})
}
