package domain

import (
	"strconv"
	"strings"
)

// ModeKind selects the response a request gets.
type ModeKind int

const (
	ModeList ModeKind = iota
	ModeResolve
	ModeError
)

func (k ModeKind) String() string {
	switch k {
	case ModeList:
		return "list"
	case ModeResolve:
		return "resolve"
	default:
		return "error"
	}
}

// Mode is the result of interpreting the raw lat/lon request values.
// Lat and Lon are set for ModeResolve; Err is set for ModeError.
type Mode struct {
	Kind ModeKind
	Lat  float64
	Lon  float64
	Err  error
}

// ParseCoordinate parses a raw query value. Empty and non-numeric input
// reports false, exactly like an absent value.
func ParseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ValidLatLon reports whether both values are within the configured bounds,
// inclusive. NaN is never valid.
func (s Settings) ValidLatLon(lat, lon float64) bool {
	return s.MinLat <= lat && lat <= s.MaxLat && s.MinLon <= lon && lon <= s.MaxLon
}

// ResolveParams decides between listing, resolving and rejecting a request.
func (s Settings) ResolveParams(rawLat, rawLon string) Mode {
	lat, hasLat := ParseCoordinate(rawLat)
	lon, hasLon := ParseCoordinate(rawLon)

	if !hasLat && !hasLon {
		return Mode{Kind: ModeList}
	}
	if !hasLat || !hasLon || !s.ValidLatLon(lat, lon) {
		return Mode{Kind: ModeError, Err: ErrInvalidParameters}
	}
	return Mode{Kind: ModeResolve, Lat: lat, Lon: lon}
}
