package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResolutionEvent is the telemetry record emitted for each resolved point.
type ResolutionEvent struct {
	ID             string         `json:"id"`
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	Region         string         `json:"region"`
	Tier           Tier           `json:"tier"`
	Classification Classification `json:"classification"`
	DistanceMeters float64        `json:"distance_meters,omitempty"`
	ResolvedAt     time.Time      `json:"resolved_at"`
}

// NewResolutionEvent stamps a resolution with a random ID and the current
// time from the package clock.
func NewResolutionEvent(res Resolution) ResolutionEvent {
	return ResolutionEvent{
		ID:             uuid.NewString(),
		Lat:            res.Point.Lat,
		Lon:            res.Point.Lon,
		Region:         res.Region.Name,
		Tier:           res.Region.Tier,
		Classification: res.Classification,
		DistanceMeters: res.DistanceMeters,
		ResolvedAt:     clock.Now().UTC(),
	}
}
