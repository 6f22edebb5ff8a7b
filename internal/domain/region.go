package domain

import "github.com/paulmach/orb"

// Point is a WGS-84 coordinate. Geometry libraries take it as (lon, lat).
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Orb returns the point in orb's [lon, lat] order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// ShapeRegion is one polygon part of a named region. Several parts may share
// a name; ID is unique and stable across loads of the same dataset.
type ShapeRegion struct {
	ID      int64
	Name    string
	Polygon orb.Polygon
}

// ShapeMatch is a shape found near a point. DistanceMeters is zero when the
// point lies inside the polygon.
type ShapeMatch struct {
	Shape          ShapeRegion
	DistanceMeters float64
}

// BandRegion is a fallback region covering the closed longitude interval
// [LongMin, LongMax].
type BandRegion struct {
	ID      int64   `json:"-"`
	Name    string  `json:"name"`
	LongMin float64 `json:"long_min"`
	LongMax float64 `json:"long_max"`
}

// Contains reports whether lon falls inside the band, bounds included.
func (b BandRegion) Contains(lon float64) bool {
	return b.LongMin <= lon && lon <= b.LongMax
}

// Tier names the dataset a resolved region came from.
type Tier string

const (
	TierShape Tier = "shape"
	TierBand  Tier = "band"
)

// Region is the resolved identity returned to callers.
type Region struct {
	Name string
	Tier Tier
}

// Classification describes how a point was matched. It is informational and
// not part of the resolved identity.
type Classification string

const (
	OnLand                Classification = "on land"
	InTerritorialSea      Classification = "in territorial sea"
	InInternationalWaters Classification = "in international waters"
	InUninhabitedArea     Classification = "in an uninhabited area"
)

// Resolution is the outcome of resolving a single point.
type Resolution struct {
	Point          Point
	Region         Region
	Classification Classification
	// DistanceMeters is the distance to the matched shape, or zero for band
	// matches.
	DistanceMeters float64
}

// RegionSummary is the wire form of a region in list and single responses.
type RegionSummary struct {
	Name string `json:"name"`
}
