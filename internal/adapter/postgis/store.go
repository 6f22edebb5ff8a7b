// Package postgis stores the region datasets in PostgreSQL with the PostGIS
// extension. Distances are measured on the geography type, so SRID must be
// geodetic (4326 in practice).
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

// Store implements domain.ShapeStore and domain.BandStore on a pooled
// database handle.
type Store struct {
	db     *sql.DB
	srid   int
	logger *slog.Logger
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, srid int, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("postgis connected", "srid", srid)
	return &Store{db: db, srid: srid, logger: logger}, nil
}

// InitSchema creates the extension, tables and indexes if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS timezone_shapes (
			id   BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			poly GEOMETRY(POLYGON, %d) NOT NULL
		)`, s.srid),
		`CREATE INDEX IF NOT EXISTS timezone_shapes_poly_geog_idx
			ON timezone_shapes USING GIST ((poly::geography))`,
		`CREATE INDEX IF NOT EXISTS timezone_shapes_name_idx ON timezone_shapes (name)`,
		`CREATE TABLE IF NOT EXISTS timezone_bands (
			id       BIGINT PRIMARY KEY,
			name     TEXT NOT NULL,
			long_min DOUBLE PRECISION NOT NULL,
			long_max DOUBLE PRECISION NOT NULL,
			CHECK (long_min <= long_max)
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// NearestShape implements domain.ShapeStore.
func (s *Store) NearestShape(ctx context.Context, p domain.Point, radiusMeters float64) (domain.ShapeMatch, bool, error) {
	const query = `
		WITH q AS (SELECT ST_SetSRID(ST_MakePoint($1, $2), $3)::geography AS g)
		SELECT s.id, s.name, ST_AsText(s.poly), ST_Distance(s.poly::geography, q.g) AS distance
		FROM timezone_shapes s, q
		WHERE ST_DWithin(s.poly::geography, q.g, $4)
		ORDER BY distance, s.id
		LIMIT 1`

	var (
		sh   domain.ShapeRegion
		text string
		dist float64
	)
	err := s.db.QueryRowContext(ctx, query, p.Lon, p.Lat, s.srid, radiusMeters).
		Scan(&sh.ID, &sh.Name, &text, &dist)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ShapeMatch{}, false, nil
	}
	if err != nil {
		return domain.ShapeMatch{}, false, fmt.Errorf("nearest shape: %w", err)
	}

	poly, err := decodePolygon(text)
	if err != nil {
		return domain.ShapeMatch{}, false, fmt.Errorf("shape %d: %w", sh.ID, err)
	}
	sh.Polygon = poly
	return domain.ShapeMatch{Shape: sh, DistanceMeters: dist}, true, nil
}

// ShapeNames implements domain.ShapeStore. Names are ordered by their first
// shape ID.
func (s *Store) ShapeNames(ctx context.Context, exclude string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM timezone_shapes
		WHERE name <> $1
		GROUP BY name
		ORDER BY MIN(id)`, exclude)
	if err != nil {
		return nil, fmt.Errorf("shape names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan shape name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("shape names: %w", err)
	}
	return names, nil
}

// ListBands implements domain.BandStore.
func (s *Store) ListBands(ctx context.Context) ([]domain.BandRegion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, long_min, long_max FROM timezone_bands ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list bands: %w", err)
	}
	defer rows.Close()

	bands := make([]domain.BandRegion, 0)
	for rows.Next() {
		var b domain.BandRegion
		if err := rows.Scan(&b.ID, &b.Name, &b.LongMin, &b.LongMax); err != nil {
			return nil, fmt.Errorf("scan band: %w", err)
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bands: %w", err)
	}
	return bands, nil
}

// ReplaceShapes swaps the stored shapes for shapes in one transaction.
func (s *Store) ReplaceShapes(ctx context.Context, shapes []domain.ShapeRegion) error {
	start := time.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM timezone_shapes`); err != nil {
			return fmt.Errorf("clear shapes: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO timezone_shapes (id, name, poly) VALUES ($1, $2, ST_GeomFromText($3, $4))`)
		if err != nil {
			return fmt.Errorf("prepare shape insert: %w", err)
		}
		defer stmt.Close()

		for _, sh := range shapes {
			if _, err := stmt.ExecContext(ctx, sh.ID, sh.Name, wkt.MarshalString(sh.Polygon), s.srid); err != nil {
				return fmt.Errorf("insert shape %d (%s): %w", sh.ID, sh.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `ANALYZE timezone_shapes`); err != nil {
		return fmt.Errorf("analyze shapes: %w", err)
	}
	s.logger.Info("shapes replaced", "count", len(shapes), "duration", time.Since(start))
	return nil
}

// ReplaceBands swaps the stored bands for bands in one transaction.
func (s *Store) ReplaceBands(ctx context.Context, bands []domain.BandRegion) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM timezone_bands`); err != nil {
			return fmt.Errorf("clear bands: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO timezone_bands (id, name, long_min, long_max) VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("prepare band insert: %w", err)
		}
		defer stmt.Close()

		for _, b := range bands {
			if _, err := stmt.ExecContext(ctx, b.ID, b.Name, b.LongMin, b.LongMax); err != nil {
				return fmt.Errorf("insert band %s: %w", b.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("bands replaced", "count", len(bands))
	return nil
}

// CountShapes returns the number of stored polygon parts.
func (s *Store) CountShapes(ctx context.Context) (int64, error) {
	return s.count(ctx, "timezone_shapes")
}

// CountBands returns the number of stored bands.
func (s *Store) CountBands(ctx context.Context) (int64, error) {
	return s.count(ctx, "timezone_bands")
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func decodePolygon(text string) (orb.Polygon, error) {
	g, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("decode wkt: %w", err)
	}
	poly, ok := g.(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("decode wkt: got %s, want Polygon", g.GeoJSONType())
	}
	return poly, nil
}
