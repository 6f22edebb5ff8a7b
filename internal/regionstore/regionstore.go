// Package regionstore opens the configured region store backend.
package regionstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/timezone-region-service/internal/adapter/dataset"
	"github.com/couchcryptid/timezone-region-service/internal/adapter/memory"
	"github.com/couchcryptid/timezone-region-service/internal/adapter/postgis"
	"github.com/couchcryptid/timezone-region-service/internal/config"
	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

// Store is a shape store and a band store in one.
type Store interface {
	domain.ShapeStore
	domain.BandStore
}

// Handle is an open backend with its dataset sizes.
type Handle struct {
	Store
	ShapeCount int64
	BandCount  int64

	close func() error
}

// Close releases backend resources.
func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// Open loads the memory backend from the dataset files or connects to
// PostGIS, depending on cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	switch cfg.StoreBackend {
	case config.BackendPostGIS:
		return openPostGIS(ctx, cfg, logger)
	default:
		return openMemory(cfg, logger)
	}
}

func openMemory(cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	shapes, err := dataset.LoadShapes(cfg.ShapesPath, cfg.ShapeNameField)
	if err != nil {
		return nil, err
	}
	bands, err := dataset.LoadBands(cfg.BandsPath)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore(shapes, bands)
	logger.Info("region dataset loaded",
		"backend", config.BackendMemory,
		"shapes", store.ShapeCount(),
		"bands", store.BandCount(),
	)
	return &Handle{
		Store:      store,
		ShapeCount: int64(store.ShapeCount()),
		BandCount:  int64(store.BandCount()),
	}, nil
}

func openPostGIS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	store, err := postgis.Open(ctx, cfg.DatabaseURL, cfg.SRID, logger)
	if err != nil {
		return nil, err
	}

	shapeCount, err := store.CountShapes(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("count shapes: %w", err)
	}
	bandCount, err := store.CountBands(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("count bands: %w", err)
	}

	logger.Info("region dataset loaded",
		"backend", config.BackendPostGIS,
		"shapes", shapeCount,
		"bands", bandCount,
	)
	return &Handle{
		Store:      store,
		ShapeCount: shapeCount,
		BandCount:  bandCount,
		close:      store.Close,
	}, nil
}

// WarnCoverage logs every gap and overlap in the band dataset. A gap means
// some open-ocean points resolve to no region.
func WarnCoverage(ctx context.Context, bands domain.BandStore, settings domain.Settings, logger *slog.Logger) (domain.Coverage, error) {
	list, err := bands.ListBands(ctx)
	if err != nil {
		return domain.Coverage{}, fmt.Errorf("list bands: %w", err)
	}
	cov := domain.CheckCoverage(list, settings.MinLon, settings.MaxLon)
	for _, gap := range cov.Gaps {
		logger.Warn("band coverage gap", "range", gap.String())
	}
	for _, o := range cov.Overlaps {
		logger.Warn("band overlap", "first", o.First.Name, "second", o.Second.Name, "range", o.Range.String())
	}
	return cov, nil
}
