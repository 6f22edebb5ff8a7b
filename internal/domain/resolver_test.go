package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock stores ---

type mockShapeStore struct {
	matches    []ShapeMatch // candidates; the store returns the closest in range
	names      []string
	err        error
	lastRadius float64
	calls      int
}

func (m *mockShapeStore) NearestShape(_ context.Context, _ Point, radiusMeters float64) (ShapeMatch, bool, error) {
	m.calls++
	m.lastRadius = radiusMeters
	if m.err != nil {
		return ShapeMatch{}, false, m.err
	}
	var best ShapeMatch
	found := false
	for _, c := range m.matches {
		if c.DistanceMeters > radiusMeters {
			continue
		}
		if !found || c.DistanceMeters < best.DistanceMeters ||
			(c.DistanceMeters == best.DistanceMeters && c.Shape.ID < best.Shape.ID) {
			best = c
			found = true
		}
	}
	return best, found, nil
}

func (m *mockShapeStore) ShapeNames(_ context.Context, exclude string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for _, n := range m.names {
		if n != exclude {
			out = append(out, n)
		}
	}
	return out, nil
}

type mockBandStore struct {
	bands []BandRegion
	err   error
	calls int
}

func (m *mockBandStore) ListBands(_ context.Context) ([]BandRegion, error) {
	m.calls++
	return m.bands, m.err
}

func oceanBands() []BandRegion {
	return []BandRegion{
		{ID: 1, Name: "Ocean-Band-1", LongMin: -180, LongMax: 0},
		{ID: 2, Name: "Ocean-Band-2", LongMin: 0, LongMax: 180},
	}
}

func shape(id int64, name string) ShapeRegion {
	return ShapeRegion{ID: id, Name: name}
}

// --- tests ---

func TestResolve_OnLand(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{{Shape: shape(1, "Land-A"), DistanceMeters: 0}}}
	bands := &mockBandStore{bands: oceanBands()}
	r := NewResolver(shapes, bands, DefaultSettings())

	res, err := r.Resolve(context.Background(), 10, 10)
	require.NoError(t, err)

	assert.Equal(t, Region{Name: "Land-A", Tier: TierShape}, res.Region)
	assert.Equal(t, OnLand, res.Classification)
	assert.Equal(t, Point{Lat: 10, Lon: 10}, res.Point)
	assert.Equal(t, 0, bands.calls, "band store must not be consulted for a shape hit")
}

func TestResolve_UsesTerritorialSeaRadius(t *testing.T) {
	shapes := &mockShapeStore{}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	_, err := r.Resolve(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.InDelta(t, 22224.0, shapes.lastRadius, 1e-9)
}

func TestResolve_TerritorialSea(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{{Shape: shape(1, "Land-A"), DistanceMeters: 5 * MetersPerNauticalMile}}}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	res, err := r.Resolve(context.Background(), 10, 10)
	require.NoError(t, err)

	assert.Equal(t, "Land-A", res.Region.Name)
	assert.Equal(t, InTerritorialSea, res.Classification)
	assert.InDelta(t, 9260.0, res.DistanceMeters, 1e-9)
}

func TestResolve_InternationalWaters(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{{Shape: shape(1, "Land-A"), DistanceMeters: 50 * MetersPerNauticalMile}}}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	res, err := r.Resolve(context.Background(), 0, -30)
	require.NoError(t, err)

	assert.Equal(t, Region{Name: "Ocean-Band-1", Tier: TierBand}, res.Region)
	assert.Equal(t, InInternationalWaters, res.Classification)
	assert.Zero(t, res.DistanceMeters)
}

func TestResolve_UninhabitedFallsBackToBand(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{{Shape: shape(1, "uninhabited"), DistanceMeters: 0}}}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	res, err := r.Resolve(context.Background(), 0, 10)
	require.NoError(t, err)

	assert.Equal(t, Region{Name: "Ocean-Band-2", Tier: TierBand}, res.Region)
	assert.Equal(t, InUninhabitedArea, res.Classification)
}

// An uninhabited shape nearer than an inhabited one masks it: exclusion
// happens after the nearest query, not inside it.
func TestResolve_UninhabitedMasksSecondNearest(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{
		{Shape: shape(1, "Land-A"), DistanceMeters: 1000},
		{Shape: shape(2, "uninhabited"), DistanceMeters: 0},
	}}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	res, err := r.Resolve(context.Background(), 0, 10)
	require.NoError(t, err)

	assert.Equal(t, "Ocean-Band-2", res.Region.Name)
	assert.Equal(t, InUninhabitedArea, res.Classification)
}

func TestResolve_EquidistantShapesPreferLowerID(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{
		{Shape: shape(7, "Land-B"), DistanceMeters: 0},
		{Shape: shape(3, "Land-A"), DistanceMeters: 0},
	}}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	res, err := r.Resolve(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "Land-A", res.Region.Name)
}

func TestResolve_CustomUninhabitedName(t *testing.T) {
	settings := DefaultSettings()
	settings.UninhabitedName = "none"
	shapes := &mockShapeStore{matches: []ShapeMatch{{Shape: shape(1, "none"), DistanceMeters: 0}}}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, settings)

	res, err := r.Resolve(context.Background(), 0, -10)
	require.NoError(t, err)
	assert.Equal(t, "Ocean-Band-1", res.Region.Name)
	assert.Equal(t, InUninhabitedArea, res.Classification)
}

func TestResolve_NotFound(t *testing.T) {
	bands := []BandRegion{{ID: 1, Name: "West", LongMin: -180, LongMax: -10}}
	r := NewResolver(&mockShapeStore{}, &mockBandStore{bands: bands}, DefaultSettings())

	_, err := r.Resolve(context.Background(), 0, 5)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrRegionNotFound)
	var nf *RegionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 0.0, nf.Lat)
	assert.Equal(t, 5.0, nf.Lon)
	assert.Equal(t, "Timezone not found for the provided location at lat: 0, lon: 5", err.Error())
}

func TestResolve_UninhabitedWithoutBandIsNotFound(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{{Shape: shape(1, "uninhabited")}}}
	r := NewResolver(shapes, &mockBandStore{}, DefaultSettings())

	_, err := r.Resolve(context.Background(), 0, 5)
	assert.ErrorIs(t, err, ErrRegionNotFound)
}

func TestResolve_ShapeStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewResolver(&mockShapeStore{err: boom}, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	_, err := r.Resolve(context.Background(), 0, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrRegionNotFound)
}

func TestResolve_BandStoreError(t *testing.T) {
	boom := errors.New("timeout")
	r := NewResolver(&mockShapeStore{}, &mockBandStore{err: boom}, DefaultSettings())

	_, err := r.Resolve(context.Background(), 0, 5)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_Idempotent(t *testing.T) {
	shapes := &mockShapeStore{matches: []ShapeMatch{{Shape: shape(1, "Land-A"), DistanceMeters: 120}}}
	r := NewResolver(shapes, &mockBandStore{bands: oceanBands()}, DefaultSettings())

	first, err := r.Resolve(context.Background(), 1, 1)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
