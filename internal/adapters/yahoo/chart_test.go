package yahoo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/adapters/yahoo"
	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile("../../../testdata/fixtures/" + name)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/CCF", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *yahoo.Client {
	return yahoo.NewClient(yahoo.Options{BaseURL: url, RatePerSec: 1000, RetryWait: time.Millisecond})
}

func window() (time.Time, time.Time) {
	end := time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -7), end
}

func TestFetchAdjustedClose_Success(t *testing.T) {
	srv := fixtureServer(t, "yahoo_chart.json")
	start, end := window()

	points, err := newTestClient(srv.URL).FetchAdjustedClose(context.Background(), "CCF", start, end)
	require.NoError(t, err)

	// el día con null se descarta
	require.Len(t, points, 3)
	assert.InDelta(t, 94.90, points[0].Price, 1e-9)
	assert.InDelta(t, 95.98, points[2].Price, 1e-9)
	assert.Equal(t, time.Unix(1760707800, 0).UTC(), points[2].Date)

	latest, err := domain.LatestPrice(points)
	require.NoError(t, err)
	assert.InDelta(t, 95.98, latest.Price, 1e-9)
}

func TestFetchAdjustedClose_FallsBackToClose(t *testing.T) {
	srv := fixtureServer(t, "yahoo_chart_noadj.json")
	start, end := window()

	points, err := newTestClient(srv.URL).FetchAdjustedClose(context.Background(), "CCF", start, end)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.InDelta(t, 100.25, points[0].Price, 1e-9)
	assert.InDelta(t, 101.5, points[1].Price, 1e-9)
}

func TestFetchAdjustedClose_ChartError(t *testing.T) {
	srv := fixtureServer(t, "yahoo_chart_error.json")
	start, end := window()

	_, err := newTestClient(srv.URL).FetchAdjustedClose(context.Background(), "CCF", start, end)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "delisted")
}

func TestFetchAdjustedClose_ServerErrorRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	start, end := window()

	_, err := newTestClient(srv.URL).FetchAdjustedClose(context.Background(), "CCF", start, end)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Equal(t, int32(4), calls.Load())
}

func TestFetchAdjustedClose_RecoversAfterTransientError(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/yahoo_chart.json")
	require.NoError(t, err)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()
	start, end := window()

	points, err := newTestClient(srv.URL).FetchAdjustedClose(context.Background(), "CCF", start, end)
	require.NoError(t, err)
	assert.Len(t, points, 3)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchAdjustedClose_ClientErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null}}`))
	}))
	defer srv.Close()
	start, end := window()

	_, err := newTestClient(srv.URL).FetchAdjustedClose(context.Background(), "CCF", start, end)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchAdjustedClose_EmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`))
	}))
	defer srv.Close()
	start, end := window()

	_, err := newTestClient(srv.URL).FetchAdjustedClose(context.Background(), "CCF", start, end)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestFetchAdjustedClose_EmptySymbol(t *testing.T) {
	start, end := window()
	_, err := newTestClient("http://127.0.0.1:0").FetchAdjustedClose(context.Background(), "", start, end)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}
