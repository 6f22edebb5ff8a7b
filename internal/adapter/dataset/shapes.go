// Package dataset reads the shape and band datasets from disk. Shapes come
// from GeoJSON or ESRI shapefiles; bands from a JSON array.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

// ErrUnsupportedFormat is returned for shape files that are neither GeoJSON
// nor shapefiles.
var ErrUnsupportedFormat = errors.New("unsupported shape file format")

// LoadShapes reads polygon parts from path, taking each part's name from the
// nameField attribute. MultiPolygons are split into one ShapeRegion per part.
// IDs are assigned from 1 in file order.
func LoadShapes(path, nameField string) ([]domain.ShapeRegion, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read shapes: %w", err)
		}
		return ParseGeoJSON(data, nameField)
	case ".shp":
		return loadShapefile(path, nameField)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseGeoJSON decodes a FeatureCollection. Features whose geometry is not a
// Polygon or MultiPolygon are rejected.
func ParseGeoJSON(data []byte, nameField string) ([]domain.ShapeRegion, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var shapes []domain.ShapeRegion
	for i, f := range fc.Features {
		name := strings.TrimSpace(f.Properties.MustString(nameField, ""))
		if name == "" {
			return nil, fmt.Errorf("feature %d: missing %q property", i, nameField)
		}

		var parts []orb.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			parts = []orb.Polygon{g}
		case orb.MultiPolygon:
			parts = g
		default:
			return nil, fmt.Errorf("feature %d (%s): unsupported geometry %T", i, name, f.Geometry)
		}
		shapes = appendParts(shapes, name, parts)
	}
	return shapes, nil
}

func loadShapefile(path, nameField string) ([]domain.ShapeRegion, error) {
	// The reader opens the attribute table lazily and reports a missing one
	// as an empty field list.
	dbf := attributeTablePath(path)
	if _, err := os.Stat(dbf); err != nil {
		return nil, fmt.Errorf("shapefile %s: attribute table %s: %w", path, dbf, err)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer reader.Close()

	nameIdx := -1
	for i, field := range reader.Fields() {
		if strings.EqualFold(trimDBF(string(field.Name[:])), nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("shapefile %s has no %q field", path, nameField)
	}

	var shapes []domain.ShapeRegion
	for reader.Next() {
		n, p := reader.Shape()
		poly, ok := p.(*shp.Polygon)
		if !ok {
			return nil, fmt.Errorf("record %d: unsupported shape type %T", n, p)
		}
		name := trimDBF(reader.ReadAttribute(n, nameIdx))
		if name == "" {
			return nil, fmt.Errorf("record %d: empty %q attribute", n, nameField)
		}
		shapes = appendParts(shapes, name, shapefileParts(poly))
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	return shapes, nil
}

// attributeTablePath is the .dbf file shp.Open reads for path: the same base
// name with the last three characters swapped.
func attributeTablePath(path string) string {
	return path[:len(path)-3] + "dbf"
}

// trimDBF strips the NUL and space padding of a fixed-width DBF value.
func trimDBF(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00 "))
}

// shapefileParts groups the rings of a shapefile polygon. Outer rings are
// clockwise and start a new part; counter-clockwise rings are holes of the
// preceding outer ring.
func shapefileParts(poly *shp.Polygon) []orb.Polygon {
	var parts []orb.Polygon
	for i, start := range poly.Parts {
		end := int32(len(poly.Points))
		if i+1 < len(poly.Parts) {
			end = poly.Parts[i+1]
		}
		ring := make(orb.Ring, 0, end-start)
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		if len(ring) < 4 {
			continue
		}

		if ring.Orientation() == orb.CCW && len(parts) > 0 {
			last := len(parts) - 1
			parts[last] = append(parts[last], ring)
			continue
		}
		parts = append(parts, orb.Polygon{ring})
	}
	return parts
}

func appendParts(shapes []domain.ShapeRegion, name string, parts []orb.Polygon) []domain.ShapeRegion {
	for _, part := range parts {
		if len(part) == 0 || len(part[0]) == 0 {
			continue
		}
		shapes = append(shapes, domain.ShapeRegion{
			ID:      int64(len(shapes) + 1),
			Name:    name,
			Polygon: part,
		})
	}
	return shapes
}
