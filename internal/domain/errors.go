package domain

import (
	"errors"
	"fmt"
)

// InvalidParametersMessage is returned verbatim to clients.
const InvalidParametersMessage = "Please provide both valid 'lat' and 'lon'"

var (
	// ErrInvalidParameters means one coordinate is missing or either is out of
	// range.
	ErrInvalidParameters = errors.New(InvalidParametersMessage)

	// ErrRegionNotFound matches every *RegionNotFoundError.
	ErrRegionNotFound = errors.New("region not found")

	// ErrStoreUnavailable matches every *StoreError.
	ErrStoreUnavailable = errors.New("region store unavailable")
)

// RegionNotFoundError reports a valid point that no shape buffer and no band
// covers. It points at a gap in the band dataset.
type RegionNotFoundError struct {
	Lat float64
	Lon float64
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("Timezone not found for the provided location at lat: %v, lon: %v", e.Lat, e.Lon)
}

func (e *RegionNotFoundError) Is(target error) bool {
	return target == ErrRegionNotFound
}

// StoreError wraps a failure of the underlying region store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
