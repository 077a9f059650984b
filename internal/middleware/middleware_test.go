package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/metrics"
	"mayday/coordinator/internal/models/dtos"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-0123456789"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) dtos.APIResponse {
	t.Helper()
	var body dtos.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, _, err := issuer.Issue(7, constants.RoleVC)
	require.NoError(t, err)

	var seen auth.UserClaims
	h := AuthMiddleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetUserClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "valid bearer", header: "Bearer " + token, want: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + token, want: http.StatusNoContent},
		{name: "query token", query: "?access_token=" + token, want: http.StatusNoContent},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic Zm9vOmJhcg==", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/events"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, uint(7), seen.UserID())
				assert.Equal(t, constants.RoleVC, seen.Role())
			} else {
				assert.Nil(t, seen)
				assert.Equal(t, "error", decodeEnvelope(t, rec).Status)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole(constants.RoleAuthority, constants.RoleVC)(http.HandlerFunc(okHandler))

	serve := func(claims auth.UserClaims) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
		if claims != nil {
			req = req.WithContext(auth.SetUserClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(&auth.JWTClaims{UserIDValue: 1, RoleValue: constants.RoleAuthority}))
	assert.Equal(t, http.StatusNoContent, serve(&auth.JWTClaims{UserIDValue: 1, RoleValue: constants.RoleVC}))
	assert.Equal(t, http.StatusForbidden, serve(&auth.JWTClaims{UserIDValue: 1, RoleValue: constants.RoleSUV}))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 2})
	h := limiter.Middleware(http.HandlerFunc(okHandler))

	serve := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, serve("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusNoContent, serve("10.0.0.1:1112").Code)

	limited := serve("10.0.0.1:1113")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Equal(t, "error", decodeEnvelope(t, limited).Status)

	// separate bucket per client
	assert.Equal(t, http.StatusNoContent, serve("10.0.0.2:1111").Code)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusNoContent, serve("127.0.0.1:5000").Code)
	}
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("10.0.0.1")
	limiter.getLimiter("10.0.0.2")
	assert.Len(t, limiter.limiters, 2)

	now = now.Add(time.Hour)
	limiter.getLimiter("10.0.0.3")
	assert.Len(t, limiter.limiters, 1)
}

func TestRequestIDMiddleware(t *testing.T) {
	var got string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthCheck", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.Len(t, got, 36)
	assert.Equal(t, got, rec.Header().Get("X-Request-ID"))
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	reg := metrics.NewMetricsRegistry()

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Get("/api/v1/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/42", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, float64(1), gathered(t, reg, "mayday_http_requests_total", map[string]string{
		"endpoint": "/api/v1/events/{id}", "method": http.MethodGet, "status_code": "404",
	}))
	assert.Equal(t, float64(0), gathered(t, reg, "mayday_http_requests_in_flight", map[string]string{
		"endpoint": "/api/v1/events/{id}",
	}))
}

// gathered reads one sample from the registry; counters and gauges only.
func gathered(t *testing.T, reg *metrics.MetricsRegistry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/v1/events/{id}/close", NormalizeEndpoint("/api/v1/events/12/close"))
	assert.Equal(t, "/api/v1/x/{id}", NormalizeEndpoint("/api/v1/x/3f1c2a4e-9d1b-4a5e-8c7d-0123456789ab"))
	assert.Equal(t, "/api/v1/stats", NormalizeEndpoint("/api/v1/stats"))
}
