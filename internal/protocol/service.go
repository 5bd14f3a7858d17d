package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/protocolengine/internal/telemetry/metrics"
	"github.com/2beens/protocolengine/internal/telemetry/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// matching flow states, logged in the "state" field
const (
	StateReceived      = "received"
	StateNormalized    = "normalized"
	StateResolved      = "resolved"
	StateNotFoundExact = "not_found_exact"
	StateFallback      = "fallback"
	StateErrorReturned = "error_returned"
)

// flows, used as log field and metrics label
const (
	FlowStrict    = "strict"
	FlowRecommend = "recommend"
)

type snapshotSource interface {
	Snapshot() *Snapshot
}

// Service runs the matching flow against the registry's current snapshot.
// It is the single resolver used by every transport adapter.
type Service struct {
	protocols snapshotSource
	logger    logrus.FieldLogger
	metrics   *metrics.Manager
}

func NewService(
	protocols snapshotSource,
	logger logrus.FieldLogger,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		protocols: protocols,
		logger:    logger,
		metrics:   metricsManager,
	}
}

// Match is the strict flow: it returns the matching record, ErrNotFound, or
// an ErrStoreUnavailable error. It never falls back.
func (s *Service) Match(ctx context.Context, raw RawProfile) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.protocol.match")
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	record, _, err := s.resolve(ctx, raw, FlowStrict)
	return record, err
}

// Recommend is the client-facing flow: on any matching failure it
// substitutes the fallback entry for the profile's target.
func (s *Service) Recommend(ctx context.Context, raw RawProfile) *Recommendation {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.protocol.recommend")
	defer span.End()

	record, profile, err := s.resolve(ctx, raw, FlowRecommend)
	if err == nil {
		return protocolRecommendation(record)
	}

	s.logger.WithFields(logrus.Fields{
		"flow":         FlowRecommend,
		"state":        StateFallback,
		"target":       profile.Target,
		"known_target": IsKnownTarget(profile.Target),
	}).WithError(err).Info("serving fallback protocol")
	s.metrics.MatchResult(FlowRecommend, metrics.ResultFallback)
	span.SetAttributes(attribute.Bool("protocol.fallback", true))

	return fallbackRecommendation(profile)
}

func (s *Service) resolve(ctx context.Context, raw RawProfile, flow string) (*Record, Profile, error) {
	logger := s.logger.WithField("flow", flow)
	logger.WithField("state", StateReceived).Debug("profile received")

	profile := Normalize(raw)
	logger.WithFields(logrus.Fields{
		"state":  StateNormalized,
		"target": profile.Target,
	}).Debug("profile normalized")

	snapshot := s.protocols.Snapshot()
	if snapshot == nil {
		err := fmt.Errorf("%w: no snapshot loaded", ErrStoreUnavailable)
		logger.WithField("state", StateErrorReturned).WithError(err).Error("cannot resolve profile")
		s.metrics.MatchResult(flow, metrics.ResultError)
		return nil, profile, err
	}

	if missing := profile.Missing(); len(missing) > 0 {
		logger.WithField("missing", missing).Warn("incomplete profile, it cannot match any protocol")
	}

	record, err := snapshot.Lookup(profile)
	if err != nil {
		logger.WithField("state", StateNotFoundExact).Info("no protocol matches the profile")
		s.metrics.MatchResult(flow, metrics.ResultNotFound)
		return nil, profile, err
	}

	logger.WithFields(logrus.Fields{
		"state": StateResolved,
		"stack": record.RecommendedStack,
	}).Info("protocol resolved")
	s.metrics.MatchResult(flow, metrics.ResultResolved)

	return record, profile, nil
}
