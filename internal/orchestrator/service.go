// Package orchestrator fans a search query out to every registered
// storefront, merges whatever listings came back before the shared deadline,
// and hands the merged set to the matching engine. It is the only place that
// knows a comparison involves more than one storefront.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/matching"
	"github.com/pricekart/compare-service/internal/platforms"
	"github.com/pricekart/compare-service/internal/types"
)

// DefaultTimeout bounds the whole storefront fan-out. Storefronts that have
// not answered by then contribute nothing to the comparison.
const DefaultTimeout = 45 * time.Second

// Geocoder resolves the coordinates a client sends into the address details
// the storefront handshakes need.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*geo.Location, error)
}

// Grouper folds merged listings into ranked cross-store groups.
type Grouper interface {
	GroupAndRank(ctx context.Context, listings []types.Listing, query string) []matching.Group
}

// SearchResult is the payload of a finished comparison: ranked groups plus
// the credential bundle clients should send with their next request.
type SearchResult struct {
	Groups      []matching.Group `json:"groups"`
	Credentials platforms.Bundle `json:"credentials"`
}

// LocationError wraps a reverse-geocoding failure. Nothing downstream can run
// without a resolved location, so this fails the whole comparison.
type LocationError struct {
	Err error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("resolve location: %v", e.Err)
}

func (e *LocationError) Unwrap() error { return e.Err }

// Config carries the orchestrator knobs.
type Config struct {
	// Timeout is the shared deadline for the storefront fan-out. Zero means
	// DefaultTimeout.
	Timeout time.Duration
}

// Service runs comparisons.
type Service struct {
	geocoder Geocoder
	registry *platforms.Registry
	grouper  Grouper
	timeout  time.Duration
	metrics  *MetricsRecorder
	tracer   trace.Tracer
	log      zerolog.Logger
}

// NewService wires a comparison service.
func NewService(geocoder Geocoder, registry *platforms.Registry, grouper Grouper, cfg Config, logger *zerolog.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		geocoder: geocoder,
		registry: registry,
		grouper:  grouper,
		timeout:  timeout,
		metrics:  NewMetricsRecorder(),
		tracer:   otel.Tracer("compare-service/orchestrator"),
		log:      logger.With().Str("component", "orchestrator").Logger(),
	}
}

// taskResult is one storefront's contribution, written into its own slot so
// the fan-out needs no locking.
type taskResult struct {
	listings []types.Listing
	cred     platforms.Credential
	err      error
	elapsed  time.Duration
}

// Compare resolves the location, searches every storefront concurrently and
// returns ranked groups. Storefront failures degrade the result instead of
// failing it: an errored storefront contributes no listings and keeps the
// credential the client sent in. Only a geocoding failure aborts the call.
func (s *Service) Compare(ctx context.Context, query string, lat, lon float64, creds *platforms.Bundle) (*SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "orchestrator.Compare",
		trace.WithAttributes(attribute.String("query", query)))
	defer span.End()
	started := time.Now()

	loc, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		s.metrics.RecordRequest("location_error", time.Since(started))
		span.RecordError(err)
		span.SetStatus(codes.Error, "reverse geocode failed")
		return nil, &LocationError{Err: err}
	}

	handlers := s.registry.All()
	results := make([]taskResult, len(handlers))

	fanoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(fanoutCtx)
	for i, h := range handlers {
		i, h := i, h
		g.Go(func() error {
			results[i] = s.searchOne(gctx, h, query, *loc, creds.Get(h.Platform()))
			// Handler errors are per-slot data, not reasons to cancel siblings.
			return nil
		})
	}
	// Err is always nil here; Wait is just the join point.
	_ = g.Wait()

	var merged []types.Listing
	out := platforms.Bundle{}
	failed := 0
	for i, h := range handlers {
		p := h.Platform()
		res := results[i]
		if res.err != nil {
			failed++
			s.log.Warn().Err(res.err).
				Str("platform", string(p)).
				Dur("elapsed", res.elapsed).
				Msg("storefront search failed")
			if in := creds.Get(p); in != nil {
				out.Set(in)
			}
			continue
		}
		out.Set(res.cred)
		merged = append(merged, res.listings...)
	}

	groups := s.grouper.GroupAndRank(ctx, merged, query)

	s.metrics.RecordRequest("success", time.Since(started))
	s.metrics.RecordGroupCount(len(groups))
	span.SetAttributes(
		attribute.Int("listings.merged", len(merged)),
		attribute.Int("groups", len(groups)),
		attribute.Int("platforms.failed", failed),
	)
	s.log.Info().
		Str("query", query).
		Int("listings", len(merged)).
		Int("groups", len(groups)).
		Int("failed_platforms", failed).
		Dur("elapsed", time.Since(started)).
		Msg("comparison finished")

	return &SearchResult{Groups: groups, Credentials: out}, nil
}

// searchOne runs a single storefront search under its own span and clocks it.
func (s *Service) searchOne(ctx context.Context, h platforms.Handler, query string, loc geo.Location, cred platforms.Credential) taskResult {
	p := h.Platform()
	ctx, span := s.tracer.Start(ctx, "platform.search",
		trace.WithAttributes(attribute.String("platform", string(p))))
	defer span.End()

	start := time.Now()
	listings, outCred, err := h.Search(ctx, query, loc, cred)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
	} else {
		span.SetAttributes(attribute.Int("listings", len(listings)))
	}
	s.metrics.RecordPlatformSearch(string(p), elapsed, len(listings), err == nil)

	return taskResult{listings: listings, cred: outCred, err: err, elapsed: elapsed}
}
