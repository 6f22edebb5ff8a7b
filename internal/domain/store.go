package domain

import "context"

// ShapeStore answers queries over the shape dataset.
type ShapeStore interface {
	// NearestShape returns the shape closest to p among those whose boundary
	// lies within radiusMeters, breaking distance ties by ascending ID.
	// The boolean is false when nothing is in range.
	NearestShape(ctx context.Context, p Point, radiusMeters float64) (ShapeMatch, bool, error)

	// ShapeNames returns every distinct shape name except exclude, in order
	// of first appearance.
	ShapeNames(ctx context.Context, exclude string) ([]string, error)
}

// BandStore enumerates the band dataset in its natural (ID) order.
type BandStore interface {
	ListBands(ctx context.Context) ([]BandRegion, error)
}
