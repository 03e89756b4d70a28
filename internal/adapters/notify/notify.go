// Package notify implements the outbound sinks that receive summary triggers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/prhealth/internal/domain/model"
	"github.com/okian/prhealth/pkg/logger"
)

// Sink receives summary triggers. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, t model.SummaryTrigger) error
}

// Payload is the JSON document sent to external summary generators.
type Payload struct {
	TriggerID   string    `json:"trigger_id"`
	AccountID   string    `json:"account_id"`
	RequestedAt time.Time `json:"requested_at"`
	Report      any       `json:"report"`
}

// NewPayload builds the outbound document for t.
func NewPayload(t model.SummaryTrigger) Payload { //nolint:gocritic // hugeParam: triggers travel by value
	return Payload{
		TriggerID:   t.ID,
		AccountID:   t.AccountID,
		RequestedAt: t.RequestedAt.UTC(),
		Report:      t.Report,
	}
}

// LogSink writes triggers to the structured log. It is the fallback when no
// external sink is configured.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a sink that only logs.
func NewLogSink() *LogSink {
	return &LogSink{logger: logger.Get().Named("notify")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, t model.SummaryTrigger) error { //nolint:gocritic // hugeParam: triggers travel by value
	s.logger.Info(ctx, "summary requested",
		logger.String("trigger_id", t.ID),
		logger.String("account_id", t.AccountID),
		logger.Float64("velocity", t.Report.Velocity.Score),
		logger.Float64("reach", t.Report.Reach.Score),
		logger.Float64("coverage", t.Report.Coverage.Score),
		logger.Float64("findability", t.Report.Findability.Score),
	)
	return nil
}

// MultiSink fans a trigger out to every child sink. Delivery is attempted on
// all of them; the returned error joins the individual failures.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks. Nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *MultiSink) Deliver(ctx context.Context, t model.SummaryTrigger) error { //nolint:gocritic // hugeParam: triggers travel by value
	var errs []error
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of child sinks.
func (m *MultiSink) Len() int { return len(m.sinks) }
