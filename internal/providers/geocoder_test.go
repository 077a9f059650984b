package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimProvider_Geocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Fredrik Bajers Vej 7, Aalborg", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "mayday-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"57.0147","lon":"9.9860","display_name":"AAU"}]`))
	}))
	defer server.Close()

	p := NewNominatimProvider(server.URL, "mayday-test", time.Second)
	coords, err := p.Geocode(context.Background(), "Fredrik Bajers Vej 7, Aalborg")

	require.NoError(t, err)
	assert.InDelta(t, 57.0147, coords.Latitude, 1e-9)
	assert.InDelta(t, 9.9860, coords.Longitude, 1e-9)
}

func TestNominatimProvider_Geocode_NoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := NewNominatimProvider(server.URL, "mayday-test", time.Second).Geocode(context.Background(), "nowhere")
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeNoResult, ErrorCode(err))
}

func TestNominatimProvider_Geocode_EmptyQuery(t *testing.T) {
	_, err := NewNominatimProvider("http://127.0.0.1:1", "mayday-test", time.Second).Geocode(context.Background(), "  ")
	assert.Equal(t, constants.ErrCodeInvalidDataFormat, ErrorCode(err))
}

func TestNominatimProvider_HTTPErrors(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusTooManyRequests, constants.ErrCodeRateLimited},
		{http.StatusInternalServerError, constants.ErrCodeUpstreamError},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		_, err := NewNominatimProvider(server.URL, "mayday-test", time.Second).Geocode(context.Background(), "x")
		assert.Equal(t, tc.code, ErrorCode(err), "status %d", tc.status)
		server.Close()
	}
}

func TestNominatimProvider_Reverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "57.0147", r.URL.Query().Get("lat"))
		assert.Equal(t, "9.986", r.URL.Query().Get("lon"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"road":"Fredrik Bajers Vej","house_number":"7","town":"Aalborg","postcode":"9220","country":"Danmark"}}`))
	}))
	defer server.Close()

	addr, err := NewNominatimProvider(server.URL, "mayday-test", time.Second).Reverse(context.Background(), 57.0147, 9.986)
	require.NoError(t, err)
	assert.Equal(t, "Fredrik Bajers Vej 7", *addr.Street)
	assert.Equal(t, "Aalborg", *addr.City)
	assert.Equal(t, "9220", *addr.Postcode)
	assert.Equal(t, "Danmark", *addr.Country)
}

func TestNominatimProvider_Reverse_UnableToGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	_, err := NewNominatimProvider(server.URL, "mayday-test", time.Second).Reverse(context.Background(), 0, 0)
	assert.Equal(t, constants.ErrCodeNoResult, ErrorCode(err))
}

// stubGeocoder counts upstream calls
type stubGeocoder struct {
	calls  atomic.Int32
	coords *Coordinates
	addr   *Address
	err    error
}

func (s *stubGeocoder) Geocode(context.Context, string) (*Coordinates, error) {
	s.calls.Add(1)
	return s.coords, s.err
}

func (s *stubGeocoder) Reverse(context.Context, float64, float64) (*Address, error) {
	s.calls.Add(1)
	return s.addr, s.err
}

func TestCachedGeocoder_CachesSuccess(t *testing.T) {
	stub := &stubGeocoder{coords: &Coordinates{Latitude: 1.5, Longitude: 2.5}}
	g := NewCachedGeocoder(stub, common.NewCacheService(60, 120), time.Minute, nil)

	for i := 0; i < 3; i++ {
		coords, err := g.Geocode(context.Background(), "Main Street 1")
		require.NoError(t, err)
		assert.Equal(t, 1.5, coords.Latitude)
	}
	assert.Equal(t, int32(1), stub.calls.Load())

	// Case and surrounding whitespace share a key
	_, err := g.Geocode(context.Background(), "  MAIN STREET 1 ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestCachedGeocoder_DoesNotCacheFailures(t *testing.T) {
	stub := &stubGeocoder{err: &ProviderError{Code: constants.ErrCodeNetworkError, Message: "down"}}
	g := NewCachedGeocoder(stub, common.NewCacheService(60, 120), time.Minute, nil)

	_, err := g.Reverse(context.Background(), 1, 2)
	require.Error(t, err)
	_, err = g.Reverse(context.Background(), 1, 2)
	require.Error(t, err)

	assert.Equal(t, int32(2), stub.calls.Load())
}

// blockingGeocoder holds every lookup until release is closed.
type blockingGeocoder struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingGeocoder) Geocode(ctx context.Context, _ string) (*Coordinates, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	select {
	case <-b.release:
		return &Coordinates{Latitude: 55.4, Longitude: 10.4}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingGeocoder) Reverse(context.Context, float64, float64) (*Address, error) {
	return nil, nil
}

func TestCachedGeocoder_CancelledCallerDoesNotFailOthers(t *testing.T) {
	upstream := &blockingGeocoder{started: make(chan struct{}), release: make(chan struct{})}
	g := NewCachedGeocoder(upstream, common.NewCacheService(60, 120), time.Minute, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.Geocode(firstCtx, "Odense")
		firstErr <- err
	}()
	<-upstream.started

	type result struct {
		coords *Coordinates
		err    error
	}
	second := make(chan result, 1)
	go func() {
		c, err := g.Geocode(context.Background(), "Odense")
		second <- result{c, err}
	}()

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(upstream.release)
	select {
	case r := <-second:
		require.NoError(t, r.err)
		assert.Equal(t, 55.4, r.coords.Latitude)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never got a result")
	}
	assert.Equal(t, int32(1), upstream.calls.Load())
}
