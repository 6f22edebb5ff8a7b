package domain

// MetersPerNauticalMile converts the territorial sea radius to store units.
const MetersPerNauticalMile = 1852.0

// DefaultUninhabitedName is the reserved shape name for areas with no
// timezone identity of their own.
const DefaultUninhabitedName = "uninhabited"

// SRIDWGS84 is the EPSG code of the WGS-84 geodetic reference system.
const SRIDWGS84 = 4326

// Settings holds the immutable resolution constants. It is passed by value to
// the resolver and catalog at construction time.
type Settings struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64

	SRID             int
	TerritorialSeaNM float64
	UninhabitedName  string
}

// DefaultSettings returns the WGS-84 bounds, a 12 nautical mile territorial
// sea and the "uninhabited" sentinel.
func DefaultSettings() Settings {
	return Settings{
		MinLat:           -90,
		MaxLat:           90,
		MinLon:           -180,
		MaxLon:           180,
		SRID:             SRIDWGS84,
		TerritorialSeaNM: 12,
		UninhabitedName:  DefaultUninhabitedName,
	}
}

// TerritorialSeaMeters is the shape buffer radius in meters.
func (s Settings) TerritorialSeaMeters() float64 {
	return s.TerritorialSeaNM * MetersPerNauticalMile
}

// IsUninhabited reports whether name is the uninhabited sentinel.
func (s Settings) IsUninhabited(name string) bool {
	return name == s.UninhabitedName
}
