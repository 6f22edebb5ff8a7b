package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
	"github.com/couchcryptid/timezone-region-service/internal/observability"
	"github.com/couchcryptid/timezone-region-service/internal/regionstore"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup LAT LON",
	Short: "Resolve a point to its timezone region",
	Long:  `Resolve a point to its timezone region. Put -- before negative coordinates: tzctl lookup -- -33.9 18.4`,
	Args:  cobra.ExactArgs(2),
	RunE:  runLookup,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every region a lookup can return",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// lookupResult is the CLI rendering of a resolution.
type lookupResult struct {
	Name           string                `json:"name"`
	Tier           domain.Tier           `json:"tier"`
	Classification domain.Classification `json:"classification"`
	DistanceMeters float64               `json:"distance_meters,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings := cfg.Settings()

	mode := settings.ResolveParams(args[0], args[1])
	if mode.Kind != domain.ModeResolve {
		return domain.ErrInvalidParameters
	}

	store, err := regionstore.Open(cmd.Context(), cfg, observability.NewStderrLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := domain.NewResolver(store.Store, store.Store, settings).Resolve(cmd.Context(), mode.Lat, mode.Lon)
	if err != nil {
		return err
	}
	return printJSON(cmd, lookupResult{
		Name:           res.Region.Name,
		Tier:           res.Region.Tier,
		Classification: res.Classification,
		DistanceMeters: res.DistanceMeters,
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := regionstore.Open(cmd.Context(), cfg, observability.NewStderrLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	regions, err := domain.NewCatalog(store.Store, store.Store, cfg.Settings()).ListAll(cmd.Context())
	if err != nil {
		return err
	}
	for _, r := range regions {
		fmt.Fprintln(cmd.OutOrStdout(), r.Name)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
