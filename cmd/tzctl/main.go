// Command tzctl manages and queries the timezone region datasets.
//
// Usage:
//
//	tzctl import   --shapes data/tz_world.shp --bands data/bands.json
//	tzctl lookup   48.85 2.35
//	tzctl list
//	tzctl validate --shapes data/shapes.geojson --bands data/bands.json --probes data/mock/probes.json
//
// Settings come from the same environment variables as the service; flags
// override them.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/timezone-region-service/internal/config"
)

var (
	backend     string
	databaseURL string
	shapesPath  string
	bandsPath   string
	nameField   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:          "tzctl",
	Short:        "Manage and query timezone region datasets",
	Long:         `tzctl imports shape and band datasets into PostGIS, resolves points, lists regions and validates dataset coverage.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend: memory or postgis (default STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostGIS DSN (default DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&shapesPath, "shapes", "", "shape dataset, GeoJSON or shapefile (default SHAPES_PATH)")
	rootCmd.PersistentFlags().StringVar(&bandsPath, "bands", "", "band dataset JSON (default BANDS_PATH)")
	rootCmd.PersistentFlags().StringVar(&nameField, "name-field", "", "shape attribute holding the region name (default SHAPE_NAME_FIELD)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(importCmd, lookupCmd, listCmd, validateCmd)
}

func main() {
	_ = godotenv.Load(".env")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	if backend != "" {
		os.Setenv("STORE_BACKEND", backend) //nolint:errcheck,gosec // key is valid
	}
	if databaseURL != "" {
		os.Setenv("DATABASE_URL", databaseURL) //nolint:errcheck,gosec // key is valid
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if shapesPath != "" {
		cfg.ShapesPath = shapesPath
	}
	if bandsPath != "" {
		cfg.BandsPath = bandsPath
	}
	if nameField != "" {
		cfg.ShapeNameField = nameField
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	cfg.LogFormat = "text"
	return cfg, nil
}
