// Package domain orchestrates size resolution and sleeve selection for the API.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/sleeveselector/internal/events"
	"example.com/sleeveselector/internal/observability"
	"example.com/sleeveselector/internal/reference"
	"example.com/sleeveselector/internal/sizing"
	"example.com/sleeveselector/internal/sleeve"
)

// Service wires the reference tables, the sleeve selector and event publication.
type Service struct {
	tables    *reference.Set
	selector  *sleeve.Selector
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService constructs a Service. A nil publisher discards events.
func NewService(tables *reference.Set, selector *sleeve.Selector, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		tables:    tables,
		selector:  selector,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ResolveInput captures a resolve request from the API layer.
type ResolveInput struct {
	Table        string
	Unit         sizing.Unit
	Measurements map[string]float64
	RequestID    string
}

// Tables lists the loaded reference tables.
func (s *Service) Tables() []sizing.Table {
	return s.tables.Tables()
}

// Table returns one reference table.
func (s *Service) Table(name string) (sizing.Table, error) {
	return s.tables.Table(name)
}

// ResolveSize resolves measurements against a named table and emits a
// sizing.resolved event on success. Publication failures are logged only.
func (s *Service) ResolveSize(ctx context.Context, input ResolveInput) (sizing.Result, error) {
	resolver, err := s.tables.Resolver(input.Table)
	if err != nil {
		return sizing.Result{}, err
	}

	result, err := resolver.ResolveIn(input.Unit, input.Measurements)
	if err != nil {
		observability.RecordResolutionError(input.Table, errorReason(err))
		return sizing.Result{}, err
	}
	observability.RecordResolution(result.Table, string(result.Fit))

	unit := input.Unit
	if unit == "" {
		unit = resolver.Table().Unit
	}
	event := events.SizeResolved{
		EventID:      uuid.NewString(),
		RequestID:    input.RequestID,
		Table:        result.Table,
		Label:        result.Label,
		Fit:          string(result.Fit),
		Distance:     result.Distance,
		Unit:         string(unit),
		Measurements: input.Measurements,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("table", result.Table).Msg("sizing event not published")
	}
	return result, nil
}

// CompatibleSleeves returns catalog products matching the query.
func (s *Service) CompatibleSleeves(_ context.Context, q sleeve.Query) ([]sleeve.Match, error) {
	matches, err := s.selector.Compatible(q)
	if err != nil {
		return nil, err
	}
	observability.ObserveCompatible(len(matches))
	return matches, nil
}

// SleeveOptions returns the form select options.
func (s *Service) SleeveOptions() sleeve.Options {
	return s.selector.Options()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, sizing.ErrMissingMeasurement):
		return "missing_measurement"
	case errors.Is(err, sizing.ErrInvalidMeasurement):
		return "invalid_measurement"
	case errors.Is(err, sizing.ErrOutOfRange):
		return "out_of_range"
	default:
		return "other"
	}
}
