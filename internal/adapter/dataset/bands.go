package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

// LoadBands reads a JSON array of {"name", "long_min", "long_max"} objects.
func LoadBands(path string) ([]domain.BandRegion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bands: %w", err)
	}
	return ParseBands(data)
}

// ParseBands decodes and validates a band list. IDs are assigned from 1 in
// array order.
func ParseBands(data []byte) ([]domain.BandRegion, error) {
	var bands []domain.BandRegion
	if err := json.Unmarshal(data, &bands); err != nil {
		return nil, fmt.Errorf("decode bands: %w", err)
	}

	for i := range bands {
		b := &bands[i]
		b.ID = int64(i + 1)
		b.Name = strings.TrimSpace(b.Name)
		if err := validateBand(*b); err != nil {
			return nil, fmt.Errorf("band %d: %w", i, err)
		}
	}
	return bands, nil
}

func validateBand(b domain.BandRegion) error {
	switch {
	case b.Name == "":
		return errors.New("empty name")
	case b.LongMin < -180 || b.LongMax > 180:
		return fmt.Errorf("%s: interval [%g, %g] outside [-180, 180]", b.Name, b.LongMin, b.LongMax)
	case b.LongMin > b.LongMax:
		return fmt.Errorf("%s: long_min %g greater than long_max %g", b.Name, b.LongMin, b.LongMax)
	}
	return nil
}
