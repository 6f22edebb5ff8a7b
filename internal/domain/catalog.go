package domain

import "context"

// Catalog lists every region a lookup can return.
type Catalog struct {
	shapes   ShapeStore
	bands    BandStore
	settings Settings
}

// NewCatalog creates a Catalog over the given stores.
func NewCatalog(shapes ShapeStore, bands BandStore, settings Settings) *Catalog {
	return &Catalog{
		shapes:   shapes,
		bands:    bands,
		settings: settings,
	}
}

// ListAll returns the distinct shape names without the uninhabited sentinel,
// followed by every band name. Both groups keep store order.
func (c *Catalog) ListAll(ctx context.Context) ([]RegionSummary, error) {
	names, err := c.shapes.ShapeNames(ctx, c.settings.UninhabitedName)
	if err != nil {
		return nil, &StoreError{Op: "list shape names", Err: err}
	}
	bands, err := c.bands.ListBands(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list bands", Err: err}
	}

	out := make([]RegionSummary, 0, len(names)+len(bands))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if c.settings.IsUninhabited(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, RegionSummary{Name: name})
	}
	for _, b := range bands {
		out = append(out, RegionSummary{Name: b.Name})
	}
	return out, nil
}
