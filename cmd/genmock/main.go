// Command genmock generates a synthetic region dataset and the expected
// resolution of a set of probe points. It resolves the probes with the actual
// domain resolver over the in-memory store, so the fixture matches real
// service behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -shapes-out data/mock/shapes.geojson \
//	  -bands-out data/mock/bands.json \
//	  -probes-out data/mock/probes.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/timezone-region-service/internal/adapter/memory"
	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

// probe is one expected-resolution fixture row.
type probe struct {
	Lat            float64               `json:"lat"`
	Lon            float64               `json:"lon"`
	Name           string                `json:"name,omitempty"`
	Classification domain.Classification `json:"classification,omitempty"`
	Error          string                `json:"error,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	shapesOut := flag.String("shapes-out", "", "output path for the shape GeoJSON fixture")
	bandsOut := flag.String("bands-out", "", "output path for the band JSON fixture")
	probesOut := flag.String("probes-out", "", "output path for the expected probe resolutions")
	rows := flag.Int("rows", 4, "rows of synthetic land squares")
	cols := flag.Int("cols", 8, "columns of synthetic land squares")
	every := flag.Int("uninhabited-every", 5, "mark every n-th square as uninhabited (0 disables)")
	flag.Parse()

	if *shapesOut == "" || *bandsOut == "" || *probesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -shapes-out, -bands-out, -probes-out")
	}
	if *rows <= 0 || *cols <= 0 {
		return fmt.Errorf("rows and cols must be positive")
	}

	settings := domain.DefaultSettings()
	shapes := gridShapes(*rows, *cols, *every, settings.UninhabitedName)
	bands := nauticalBands()
	log.Printf("generated %d shapes, %d bands", len(shapes), len(bands))

	if err := writeShapes(*shapesOut, shapes); err != nil {
		return fmt.Errorf("writing shapes fixture: %w", err)
	}
	log.Printf("wrote shapes fixture: %s", *shapesOut)

	if err := writeJSON(*bandsOut, bands); err != nil {
		return fmt.Errorf("writing bands fixture: %w", err)
	}
	log.Printf("wrote bands fixture: %s", *bandsOut)

	store := memory.NewStore(shapes, bands)
	resolver := domain.NewResolver(store, store, settings)
	probes := resolveProbes(resolver, probePoints(shapes, settings))
	if err := writeJSON(*probesOut, probes); err != nil {
		return fmt.Errorf("writing probes fixture: %w", err)
	}
	log.Printf("wrote probes fixture: %s", *probesOut)

	printStats(probes)
	return nil
}

// gridShapes lays out rows*cols one-degree squares two degrees apart,
// starting at lon -60, lat -20.
func gridShapes(rows, cols, every int, uninhabited string) []domain.ShapeRegion {
	shapes := make([]domain.ShapeRegion, 0, rows*cols)
	for r := range rows {
		for c := range cols {
			id := int64(len(shapes) + 1)
			minLon := -60 + float64(c)*2
			minLat := -20 + float64(r)*2

			name := fmt.Sprintf("Synthetic/Zone-%03d", id)
			if every > 0 && id%int64(every) == 0 {
				name = uninhabited
			}
			shapes = append(shapes, domain.ShapeRegion{
				ID:   id,
				Name: name,
				Polygon: orb.Polygon{{
					{minLon, minLat},
					{minLon + 1, minLat},
					{minLon + 1, minLat + 1},
					{minLon, minLat + 1},
					{minLon, minLat},
				}},
			})
		}
	}
	return shapes
}

// nauticalBands returns the 25 nautical time zones: 15 degree bands centred
// on multiples of 15, with the band at 180 split into two halves.
func nauticalBands() []domain.BandRegion {
	bands := make([]domain.BandRegion, 0, 25)
	for offset := 12; offset >= -12; offset-- {
		center := float64(-offset) * 15
		minLon := max(center-7.5, -180)
		maxLon := min(center+7.5, 180)

		name := "Etc/GMT"
		switch {
		case offset > 0:
			name = fmt.Sprintf("Etc/GMT+%d", offset)
		case offset < 0:
			name = fmt.Sprintf("Etc/GMT%d", offset)
		}
		bands = append(bands, domain.BandRegion{
			ID:      int64(len(bands) + 1),
			Name:    name,
			LongMin: minLon,
			LongMax: maxLon,
		})
	}
	return bands
}

// probePoints returns, per shape, its centre and a point 5 nautical miles
// east of it, plus a few open-ocean points.
func probePoints(shapes []domain.ShapeRegion, settings domain.Settings) []domain.Point {
	points := make([]domain.Point, 0, 2*len(shapes)+3)
	offshore := settings.TerritorialSeaMeters() * 5 / 12
	for _, s := range shapes {
		b := s.Polygon.Bound()
		center := b.Center()
		points = append(points, domain.Point{Lat: center[1], Lon: center[0]})

		edge := orb.Point{b.Max[0], center[1]}
		east := geo.PointAtBearingAndDistance(edge, 90, offshore)
		points = append(points, domain.Point{Lat: east[1], Lon: east[0]})
	}
	points = append(points,
		domain.Point{Lat: 0, Lon: -150},
		domain.Point{Lat: 45, Lon: 179.9},
		domain.Point{Lat: -60, Lon: 7.5},
	)
	return points
}

func resolveProbes(r *domain.Resolver, points []domain.Point) []probe {
	ctx := context.Background()
	probes := make([]probe, 0, len(points))
	for _, p := range points {
		res, err := r.Resolve(ctx, p.Lat, p.Lon)
		if err != nil {
			probes = append(probes, probe{Lat: p.Lat, Lon: p.Lon, Error: err.Error()})
			continue
		}
		probes = append(probes, probe{
			Lat:            p.Lat,
			Lon:            p.Lon,
			Name:           res.Region.Name,
			Classification: res.Classification,
		})
	}
	return probes
}

func writeShapes(path string, shapes []domain.ShapeRegion) error {
	fc := geojson.NewFeatureCollection()
	for _, s := range shapes {
		f := geojson.NewFeature(s.Polygon)
		f.Properties["tzid"] = s.Name
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // fixture files are not sensitive
}

func printStats(probes []probe) {
	counts := map[string]int{}
	for _, p := range probes {
		key := string(p.Classification)
		if p.Error != "" {
			key = "not found"
		}
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("\nProbe classifications:")
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, counts[k])
	}
}
