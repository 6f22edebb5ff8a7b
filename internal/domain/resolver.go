package domain

import "context"

// Resolver maps a point to the region that owns it. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	shapes   ShapeStore
	bands    BandStore
	settings Settings
}

// NewResolver creates a Resolver over the given stores.
func NewResolver(shapes ShapeStore, bands BandStore, settings Settings) *Resolver {
	return &Resolver{
		shapes:   shapes,
		bands:    bands,
		settings: settings,
	}
}

// Resolve returns the region owning (lat, lon).
//
// The nearest shape within the territorial sea radius wins: inside the
// polygon is "on land", inside the buffer is "in territorial sea". When no
// shape is in range, or the nearest one is the uninhabited sentinel, the
// first band containing lon is used instead. Uninhabited shapes take part in
// the nearest query, so an uninhabited hit masks any inhabited shape behind
// it.
//
// A point no band covers yields *RegionNotFoundError; store failures yield
// *StoreError.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (Resolution, error) {
	p := Point{Lat: lat, Lon: lon}

	match, found, err := r.shapes.NearestShape(ctx, p, r.settings.TerritorialSeaMeters())
	if err != nil {
		return Resolution{}, &StoreError{Op: "nearest shape", Err: err}
	}

	uninhabited := found && r.settings.IsUninhabited(match.Shape.Name)
	if found && !uninhabited {
		class := OnLand
		if match.DistanceMeters > 0 {
			class = InTerritorialSea
		}
		return Resolution{
			Point:          p,
			Region:         Region{Name: match.Shape.Name, Tier: TierShape},
			Classification: class,
			DistanceMeters: match.DistanceMeters,
		}, nil
	}

	bands, err := r.bands.ListBands(ctx)
	if err != nil {
		return Resolution{}, &StoreError{Op: "list bands", Err: err}
	}
	band, ok := FindBand(bands, lon)
	if !ok {
		return Resolution{}, &RegionNotFoundError{Lat: lat, Lon: lon}
	}

	class := InInternationalWaters
	if uninhabited {
		class = InUninhabitedArea
	}
	return Resolution{
		Point:          p,
		Region:         Region{Name: band.Name, Tier: TierBand},
		Classification: class,
	}, nil
}
