package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/timezone-region-service/internal/adapter/dataset"
	"github.com/couchcryptid/timezone-region-service/internal/adapter/postgis"
	"github.com/couchcryptid/timezone-region-service/internal/config"
	"github.com/couchcryptid/timezone-region-service/internal/observability"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load shape and band datasets into PostGIS",
	Long:  `Create the PostGIS schema if needed and replace the stored shapes and bands with the given dataset files.`,
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("import needs --database-url or DATABASE_URL")
	}
	logger := observability.NewStderrLogger(cfg)
	ctx := cmd.Context()

	shapes, err := dataset.LoadShapes(cfg.ShapesPath, cfg.ShapeNameField)
	if err != nil {
		return err
	}
	bands, err := dataset.LoadBands(cfg.BandsPath)
	if err != nil {
		return err
	}

	store, err := postgis.Open(ctx, cfg.DatabaseURL, cfg.SRID, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	if err := store.ReplaceShapes(ctx, shapes); err != nil {
		return err
	}
	if err := store.ReplaceBands(ctx, bands); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d shapes and %d bands into %s\n", len(shapes), len(bands), config.BackendPostGIS)
	return nil
}
