package lookup

import (
	"context"
	"time"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
	"github.com/couchcryptid/timezone-region-service/internal/observability"
)

// instrumentedStore times every store query into StoreQueryDuration.
type instrumentedStore struct {
	shapes  domain.ShapeStore
	bands   domain.BandStore
	metrics *observability.Metrics
}

func (s *instrumentedStore) observe(query string, start time.Time) {
	s.metrics.StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) NearestShape(ctx context.Context, p domain.Point, radiusMeters float64) (domain.ShapeMatch, bool, error) {
	defer s.observe("nearest_shape", time.Now())
	return s.shapes.NearestShape(ctx, p, radiusMeters)
}

func (s *instrumentedStore) ShapeNames(ctx context.Context, exclude string) ([]string, error) {
	defer s.observe("shape_names", time.Now())
	return s.shapes.ShapeNames(ctx, exclude)
}

func (s *instrumentedStore) ListBands(ctx context.Context) ([]domain.BandRegion, error) {
	defer s.observe("list_bands", time.Now())
	return s.bands.ListBands(ctx)
}
