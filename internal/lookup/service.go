// Package lookup serves timezone requests: it interprets the raw query
// values, runs the catalog or the resolver, and records the outcome in logs,
// metrics and (optionally) the resolution event stream.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
	"github.com/couchcryptid/timezone-region-service/internal/observability"
)

// EventPublisher delivers resolution events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ResolutionEvent) error
}

// Pinger is implemented by stores backed by a remote database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Labels for the outcome dimension of LookupsTotal.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// publishTimeout bounds a single event delivery. Deliveries run in the
// background and do not inherit the request deadline.
const publishTimeout = 5 * time.Second

// Outcome is the successful result of a request. Regions is set in list
// mode; Resolution in resolve mode.
type Outcome struct {
	Mode       domain.ModeKind
	Regions    []domain.RegionSummary
	Resolution domain.Resolution
}

// Service answers timezone requests against a shape store and a band store.
type Service struct {
	resolver  *domain.Resolver
	catalog   *domain.Catalog
	settings  domain.Settings
	pingers   []Pinger
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	inflight sync.WaitGroup
}

// New creates a Service. publisher may be nil to disable resolution events.
func New(shapes domain.ShapeStore, bands domain.BandStore, settings domain.Settings, publisher EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	inst := &instrumentedStore{shapes: shapes, bands: bands, metrics: metrics}
	return &Service{
		resolver:  domain.NewResolver(inst, inst, settings),
		catalog:   domain.NewCatalog(inst, inst, settings),
		settings:  settings,
		pingers:   distinctPingers(shapes, bands),
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Lookup handles one request given the raw lat and lon query values. Errors
// match domain.ErrInvalidParameters, domain.ErrRegionNotFound or
// domain.ErrStoreUnavailable.
func (s *Service) Lookup(ctx context.Context, rawLat, rawLon string) (Outcome, error) {
	start := time.Now()
	mode := s.settings.ResolveParams(rawLat, rawLon)
	defer func() {
		s.metrics.LookupDuration.WithLabelValues(mode.Kind.String()).Observe(time.Since(start).Seconds())
	}()

	switch mode.Kind {
	case domain.ModeList:
		regions, err := s.catalog.ListAll(ctx)
		if err != nil {
			s.record(mode.Kind, err)
			return Outcome{}, err
		}
		s.record(mode.Kind, nil)
		return Outcome{Mode: mode.Kind, Regions: regions}, nil

	case domain.ModeResolve:
		res, err := s.resolver.Resolve(ctx, mode.Lat, mode.Lon)
		if err != nil {
			s.record(mode.Kind, err)
			return Outcome{}, err
		}
		s.record(mode.Kind, nil)
		s.metrics.Resolutions.WithLabelValues(string(res.Classification)).Inc()
		s.logger.Info("location resolved",
			"lat", mode.Lat,
			"lon", mode.Lon,
			"region", res.Region.Name,
			"tier", res.Region.Tier,
			"classification", res.Classification,
		)
		s.publish(ctx, res)
		return Outcome{Mode: mode.Kind, Resolution: res}, nil

	default:
		s.record(mode.Kind, mode.Err)
		return Outcome{}, mode.Err
	}
}

// CheckReadiness pings every store that supports it, once per backing store.
// In-memory stores are always ready once constructed.
func (s *Service) CheckReadiness(ctx context.Context) error {
	for _, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Drain waits for in-flight event deliveries to finish or for ctx to end.
// Call it after the HTTP server has stopped accepting requests.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// distinctPingers returns the stores that implement Pinger, skipping a store
// passed more than once.
func distinctPingers(stores ...any) []Pinger {
	var out []Pinger
	for _, st := range stores {
		p, ok := st.(Pinger)
		if !ok || containsPinger(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsPinger(list []Pinger, p Pinger) bool {
	if !reflect.TypeOf(p).Comparable() {
		return false
	}
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

func (s *Service) record(kind domain.ModeKind, err error) {
	outcome := outcomeOK
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidParameters):
		outcome = outcomeInvalid
	case errors.Is(err, domain.ErrRegionNotFound):
		outcome = outcomeNotFound
		s.logger.Error("no region covers location", "error", err)
	default:
		outcome = outcomeError
		s.logger.Error("region lookup failed", "mode", kind.String(), "error", err)
	}
	s.metrics.LookupsTotal.WithLabelValues(kind.String(), outcome).Inc()
}

// publish emits a resolution event in the background. The delivery outlives
// the request context; failures are logged and never fail the request.
func (s *Service) publish(ctx context.Context, res domain.Resolution) {
	if s.publisher == nil {
		return
	}
	event := domain.NewResolutionEvent(res)
	ctx = context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, event); err != nil {
			s.metrics.EventsPublished.WithLabelValues("error").Inc()
			s.logger.Warn("publish resolution event failed", "error", err, "event_id", event.ID)
			return
		}
		s.metrics.EventsPublished.WithLabelValues("success").Inc()
	}()
}
