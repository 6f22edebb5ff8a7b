package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/timezone-region-service/internal/adapter/http"
	"github.com/couchcryptid/timezone-region-service/internal/adapter/memory"
	"github.com/couchcryptid/timezone-region-service/internal/domain"
	"github.com/couchcryptid/timezone-region-service/internal/lookup"
	"github.com/couchcryptid/timezone-region-service/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

// unreachableStore is a memory dataset whose database ping always fails.
type unreachableStore struct {
	*memory.Store
}

func (unreachableStore) Ping(context.Context) error { return errors.New("connection refused") }

type mockLookup struct {
	out lookup.Outcome
	err error
}

func (m *mockLookup) Lookup(context.Context, string, string) (lookup.Outcome, error) {
	return m.out, m.err
}

func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{{{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat}}}
}

// newTestServer wires a real lookup service over an in-memory dataset: Land-A
// on the equator at lon 20..21, an uninhabited square around lon 10, and two
// ocean bands split at the prime meridian.
func newTestServer(readyErr error) *httpadapter.Server {
	store := memory.NewStore(
		[]domain.ShapeRegion{
			{ID: 1, Name: "Land-A", Polygon: square(20, 0, 21, 1)},
			{ID: 2, Name: "uninhabited", Polygon: square(9.5, -0.5, 10.5, 0.5)},
		},
		[]domain.BandRegion{
			{ID: 1, Name: "Ocean-Band-1", LongMin: -180, LongMax: 0},
			{ID: 2, Name: "Ocean-Band-2", LongMin: 0, LongMax: 180},
		},
	)
	svc := lookup.New(store, store, domain.DefaultSettings(), nil, slog.Default(), observability.NewMetricsForTesting())
	return httpadapter.NewServer(":0", svc, &mockReadiness{err: readyErr}, slog.Default())
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTimezones_List(t *testing.T) {
	rec := get(t, newTestServer(nil), "/timezones")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"name":"Land-A"},{"name":"Ocean-Band-1"},{"name":"Ocean-Band-2"}]`, rec.Body.String())
}

func TestTimezones_Resolve(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "on land", query: "lat=0.5&lon=20.5", want: "Land-A"},
		{name: "territorial sea", query: "lat=0.5&lon=21.08", want: "Land-A"},
		{name: "international waters", query: "lat=0&lon=-30", want: "Ocean-Band-1"},
		{name: "uninhabited area", query: "lat=0&lon=10", want: "Ocean-Band-2"},
		{name: "whitespace around values", query: "lat=%200.5%20&lon=20.5", want: "Land-A"},
	}
	srv := newTestServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, "/timezones?"+tt.query)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"name":%q}`, tt.want), rec.Body.String())
		})
	}
}

func TestTimezones_InvalidParameters(t *testing.T) {
	srv := newTestServer(nil)
	for _, query := range []string{"lat=91&lon=0", "lat=0", "lon=0", "lat=0&lon=181", "lat=abc&lon=0"} {
		t.Run(query, func(t *testing.T) {
			rec := get(t, srv, "/timezones?"+query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Please provide both valid 'lat' and 'lon'"}`, rec.Body.String())
		})
	}
}

// Non-numeric values on both sides count as absent, so the catalog is listed.
func TestTimezones_UnparseableBothListsCatalog(t *testing.T) {
	rec := get(t, newTestServer(nil), "/timezones?lat=x&lon=y")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 3)
}

func TestTimezones_NotFound(t *testing.T) {
	store := memory.NewStore(nil, []domain.BandRegion{{ID: 1, Name: "West", LongMin: -180, LongMax: -10}})
	svc := lookup.New(store, store, domain.DefaultSettings(), nil, slog.Default(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", svc, &mockReadiness{}, slog.Default())

	rec := get(t, srv, "/timezones?lat=1.5&lon=5")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Timezone not found for the provided location at lat: 1.5, lon: 5"}`, rec.Body.String())
}

func TestTimezones_StoreFailureIs500(t *testing.T) {
	tz := &mockLookup{err: &domain.StoreError{Op: "nearest shape", Err: fmt.Errorf("connection reset")}}
	srv := httpadapter.NewServer(":0", tz, &mockReadiness{}, slog.Default())

	rec := get(t, srv, "/timezones?lat=0&lon=0")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestTimezones_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/timezones", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(fmt.Errorf("database unreachable")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "database unreachable", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReadyz_ReportsStorePingThroughService(t *testing.T) {
	store := unreachableStore{Store: memory.NewStore(nil, nil)}
	svc := lookup.New(store, store, domain.DefaultSettings(), nil, slog.Default(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", svc, svc, slog.Default())

	rec := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "connection refused", body["error"])
}
