package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/timezone-region-service/internal/adapter/dataset"
	"github.com/couchcryptid/timezone-region-service/internal/adapter/memory"
	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

var probesPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check dataset integrity and band coverage",
	Long: `Load the shape and band files and check ring structure, band intervals and
longitude coverage. With --probes, re-resolve a genmock probe fixture and
compare every result.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&probesPath, "probes", "", "expected probe resolutions written by genmock")
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// expectedProbe mirrors the genmock probe fixture rows.
type expectedProbe struct {
	Lat            float64               `json:"lat"`
	Lon            float64               `json:"lon"`
	Name           string                `json:"name"`
	Classification domain.Classification `json:"classification"`
	Error          string                `json:"error"`
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings := cfg.Settings()
	out := cmd.OutOrStdout()

	shapes, err := dataset.LoadShapes(cfg.ShapesPath, cfg.ShapeNameField)
	if err != nil {
		return fmt.Errorf("load shapes: %w", err)
	}
	bands, err := dataset.LoadBands(cfg.BandsPath)
	if err != nil {
		return fmt.Errorf("load bands: %w", err)
	}

	phases := []*phase{
		validateShapes(shapes, settings),
		validateBands(bands),
		validateCoverage(bands, settings),
	}
	if probesPath != "" {
		probes, err := loadProbes(probesPath)
		if err != nil {
			return fmt.Errorf("load probes: %w", err)
		}
		store := memory.NewStore(shapes, bands)
		phases = append(phases, validateProbes(cmd.Context(), domain.NewResolver(store, store, settings), probes))
	}

	if report(out, phases, len(shapes), len(bands)) {
		return nil
	}
	return errors.New("validation failed")
}

func validateShapes(shapes []domain.ShapeRegion, settings domain.Settings) *phase {
	p := &phase{name: "Shape rings closed and in range"}
	names := map[string]int{}
	for _, s := range shapes {
		names[s.Name]++
		for i, ring := range s.Polygon {
			if len(ring) < 4 {
				p.errorf("shape %d (%s) ring %d: %d points, need at least 4", s.ID, s.Name, i, len(ring))
				continue
			}
			if !ring.Closed() {
				p.errorf("shape %d (%s) ring %d: not closed", s.ID, s.Name, i)
			}
		}
		b := s.Polygon.Bound()
		if !settings.ValidLatLon(b.Min[1], b.Min[0]) || !settings.ValidLatLon(b.Max[1], b.Max[0]) {
			p.errorf("shape %d (%s): bound %v outside WGS-84 range", s.ID, s.Name, b)
		}
	}
	p.notef("%d distinct names, %d uninhabited parts", len(names), names[settings.UninhabitedName])
	return p
}

func validateBands(bands []domain.BandRegion) *phase {
	p := &phase{name: "Band names unique"}
	seen := map[string]int64{}
	for _, b := range bands {
		if first, dup := seen[b.Name]; dup {
			p.errorf("band %d (%s) repeats the name of band %d", b.ID, b.Name, first)
			continue
		}
		seen[b.Name] = b.ID
	}
	return p
}

func validateCoverage(bands []domain.BandRegion, settings domain.Settings) *phase {
	p := &phase{name: "Bands cover every longitude"}
	cov := domain.CheckCoverage(bands, settings.MinLon, settings.MaxLon)
	for _, gap := range cov.Gaps {
		p.errorf("no band covers %s", gap)
	}
	for _, o := range cov.Overlaps {
		p.notef("%s and %s overlap on %s; %s wins", o.First.Name, o.Second.Name, o.Range, o.First.Name)
	}
	return p
}

func validateProbes(ctx context.Context, r *domain.Resolver, probes []expectedProbe) *phase {
	p := &phase{name: "Probe resolutions match fixture"}
	for i, want := range probes {
		res, err := r.Resolve(ctx, want.Lat, want.Lon)
		switch {
		case err != nil && want.Error == "":
			p.errorf("probe %d (%g, %g): unexpected error: %v", i, want.Lat, want.Lon, err)
		case err != nil:
			if err.Error() != want.Error {
				p.errorf("probe %d (%g, %g): error %q, want %q", i, want.Lat, want.Lon, err, want.Error)
			}
		case want.Error != "":
			p.errorf("probe %d (%g, %g): resolved to %s, want error %q", i, want.Lat, want.Lon, res.Region.Name, want.Error)
		case res.Region.Name != want.Name || res.Classification != want.Classification:
			p.errorf("probe %d (%g, %g): got %s (%s), want %s (%s)",
				i, want.Lat, want.Lon, res.Region.Name, res.Classification, want.Name, want.Classification)
		}
	}
	p.notef("%d probes checked", len(probes))
	return p
}

func loadProbes(path string) ([]expectedProbe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probes []expectedProbe
	if err := json.Unmarshal(data, &probes); err != nil {
		return nil, err
	}
	return probes, nil
}

// report prints the phase table and details. It returns true when every
// phase passed.
func report(w io.Writer, phases []*phase, shapeCount, bandCount int) bool {
	fmt.Fprintln(w, "=== Timezone Dataset Validation ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d shape parts, %d bands\n", shapeCount, bandCount)

	for _, p := range phases {
		if p.passed() && (len(p.notes) == 0 || !verbose) {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		if verbose {
			for _, n := range p.notes {
				fmt.Fprintf(w, "  note: %s\n", n)
			}
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return false
}
