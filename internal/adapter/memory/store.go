// Package memory holds the region datasets in process memory. Shapes are
// indexed by bounding box in an R-tree; candidates are then measured exactly
// against their rings.
package memory

import (
	"context"
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

const (
	minChildren = 25
	maxChildren = 50
	dimensions  = 2

	earthRadiusMeters = 6371008.8

	// metersPerDegree is the length of one degree of latitude on the
	// mean-radius sphere.
	metersPerDegree = earthRadiusMeters * math.Pi / 180
)

// spatialShape wraps a shape for R-tree indexing.
type spatialShape struct {
	shape domain.ShapeRegion
	rect  rtreego.Rect
}

func (s *spatialShape) Bounds() rtreego.Rect {
	return s.rect
}

// Store is an immutable in-memory implementation of domain.ShapeStore and
// domain.BandStore. It is safe for concurrent use.
type Store struct {
	tree   *rtreego.Rtree
	shapes []domain.ShapeRegion
	bands  []domain.BandRegion
}

// NewStore indexes shapes and keeps bands in the given order. Shapes with an
// empty polygon are skipped.
func NewStore(shapes []domain.ShapeRegion, bands []domain.BandRegion) *Store {
	items := make([]rtreego.Spatial, 0, len(shapes))
	kept := make([]domain.ShapeRegion, 0, len(shapes))
	for _, s := range shapes {
		if len(s.Polygon) == 0 || len(s.Polygon[0]) == 0 {
			continue
		}
		rect, err := boundToRect(s.Polygon.Bound())
		if err != nil {
			continue
		}
		items = append(items, &spatialShape{shape: s, rect: rect})
		kept = append(kept, s)
	}

	return &Store{
		tree:   rtreego.NewTree(dimensions, minChildren, maxChildren, items...),
		shapes: kept,
		bands:  slices.Clone(bands),
	}
}

// ShapeCount returns the number of indexed polygon parts.
func (s *Store) ShapeCount() int { return len(s.shapes) }

// BandCount returns the number of bands.
func (s *Store) BandCount() int { return len(s.bands) }

// NearestShape implements domain.ShapeStore.
func (s *Store) NearestShape(ctx context.Context, p domain.Point, radiusMeters float64) (domain.ShapeMatch, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ShapeMatch{}, false, err
	}

	var (
		best  domain.ShapeMatch
		found bool
	)
	for _, item := range s.candidates(p, radiusMeters) {
		sh := item.(*spatialShape).shape
		d := distanceMeters(sh.Polygon, p)
		if d > radiusMeters {
			continue
		}
		if !found || d < best.DistanceMeters ||
			(d == best.DistanceMeters && sh.ID < best.Shape.ID) {
			best = domain.ShapeMatch{Shape: sh, DistanceMeters: d}
			found = true
		}
	}
	return best, found, nil
}

// ShapeNames implements domain.ShapeStore.
func (s *Store) ShapeNames(ctx context.Context, exclude string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names := make([]string, 0)
	seen := make(map[string]struct{})
	for _, sh := range s.shapes {
		if sh.Name == exclude {
			continue
		}
		if _, ok := seen[sh.Name]; ok {
			continue
		}
		seen[sh.Name] = struct{}{}
		names = append(names, sh.Name)
	}
	return names, nil
}

// ListBands implements domain.BandStore.
func (s *Store) ListBands(ctx context.Context) ([]domain.BandRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.bands), nil
}

// candidates returns the shapes whose bounding box intersects the query box
// around p. A box crossing the antimeridian is searched as two boxes.
func (s *Store) candidates(p domain.Point, radiusMeters float64) []rtreego.Spatial {
	dLat := radiusMeters / metersPerDegree
	minLat := math.Max(p.Lat-dLat, -90)
	maxLat := math.Min(p.Lat+dLat, 90)

	cosLat := math.Cos(p.Lat * math.Pi / 180)
	if maxLat >= 90 || minLat <= -90 || cosLat < 1e-9 {
		return s.search(orb.Bound{Min: orb.Point{-180, minLat}, Max: orb.Point{180, maxLat}})
	}
	dLon := dLat / cosLat
	if dLon >= 180 {
		return s.search(orb.Bound{Min: orb.Point{-180, minLat}, Max: orb.Point{180, maxLat}})
	}

	minLon, maxLon := p.Lon-dLon, p.Lon+dLon
	var out []rtreego.Spatial
	switch {
	case minLon < -180:
		out = s.search(orb.Bound{Min: orb.Point{-180, minLat}, Max: orb.Point{maxLon, maxLat}})
		out = append(out, s.search(orb.Bound{Min: orb.Point{minLon + 360, minLat}, Max: orb.Point{180, maxLat}})...)
	case maxLon > 180:
		out = s.search(orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{180, maxLat}})
		out = append(out, s.search(orb.Bound{Min: orb.Point{-180, minLat}, Max: orb.Point{maxLon - 360, maxLat}})...)
	default:
		out = s.search(orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}})
	}
	return out
}

func (s *Store) search(b orb.Bound) []rtreego.Spatial {
	rect, err := boundToRect(b)
	if err != nil {
		return nil
	}
	return s.tree.SearchIntersect(rect)
}

// boundToRect converts an orb bound to an R-tree rectangle. Degenerate sides
// are widened slightly because rtreego rejects zero lengths.
func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	const epsilon = 1e-9
	w := math.Max(b.Max[0]-b.Min[0], epsilon)
	h := math.Max(b.Max[1]-b.Min[1], epsilon)
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
}

// distanceMeters is zero when p lies inside poly, otherwise the distance from
// p to the nearest ring edge.
func distanceMeters(poly orb.Polygon, p domain.Point) float64 {
	pt := p.Orb()
	if planar.PolygonContains(poly, pt) {
		return 0
	}

	best := math.Inf(1)
	origin := orb.Point{0, 0}
	for _, ring := range poly {
		d := planar.DistanceFrom(projectRing(ring, p), origin)
		if d < best {
			best = d
		}
	}
	return best
}

// projectRing maps a ring onto a local equirectangular plane in meters
// centred on p. Longitudes are unwrapped relative to p so rings across the
// antimeridian stay contiguous.
func projectRing(ring orb.Ring, p domain.Point) orb.LineString {
	cosLat := math.Cos(p.Lat * math.Pi / 180)
	out := make(orb.LineString, len(ring))
	for i, v := range ring {
		dLon := v[0] - p.Lon
		if dLon > 180 {
			dLon -= 360
		} else if dLon < -180 {
			dLon += 360
		}
		out[i] = orb.Point{
			dLon * cosLat * metersPerDegree,
			(v[1] - p.Lat) * metersPerDegree,
		}
	}
	return out
}
