package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mayday/coordinator/internal/api"
	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/constants"
	appdb "mayday/coordinator/internal/db"
	"mayday/coordinator/internal/metrics"
	gormModels "mayday/coordinator/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	deps    *api.Dependencies
	orm     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Defaults()
	cfg.AppEnv = "test"
	cfg.JWTSecret = "router-test-secret-0123456789"
	cfg.Database = config.DatabaseConfig{SQLitePath: ":memory:", MaxRetries: 1}
	cfg.Geocoding.Enabled = false
	cfg.RateLimit = config.RateLimitConfig{RPS: 1000, Burst: 1000}

	orm, err := appdb.InitORM(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, appdb.AutoMigrate(orm))
	sqlxDB, err := appdb.InitSQLX(cfg.Database, orm)
	require.NoError(t, err)

	deps, err := api.InitDependencies(cfg, orm, sqlxDB, metrics.NewMetricsRegistry())
	require.NoError(t, err)

	t.Cleanup(func() {
		deps.Close()
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testServer{t: t, handler: RegisterRoutes(deps), deps: deps, orm: orm}
}

// seedUser inserts a user directly and returns it with a signed token.
func (s *testServer) seedUser(email string, role constants.UserRole) (*gormModels.User, string) {
	s.t.Helper()
	u := &gormModels.User{
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Status:       constants.UserStatusAvailable,
	}
	require.NoError(s.t, s.orm.Create(u).Error)

	token, _, err := s.deps.Tokens.Issue(u.ID, role)
	require.NoError(s.t, err)
	return u, token
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (s *testServer) createEvent(token string) uint {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/api/v1/events", token, map[string]any{
		"description": "River flooding",
		"priority":    4,
		"location":    map[string]any{"latitude": 57.05, "longitude": 9.92},
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var ev struct {
		ID uint `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &ev))
	return ev.ID
}

func TestRouter_RegisterLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Grace",
		"email":    "grace@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ok", env.Status)

	rec, _ = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Grace again",
		"email":    "GRACE@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "grace@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "grace@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "SUV", login.User.Role)

	rec, env = s.do(http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "grace@example.com", me.Email)
}

func TestRouter_RegisterValidationReturnsFields(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodGet, "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", env.Status)

	rec, _ = s.do(http.MethodGet, "/api/v1/events", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RoleGuards(t *testing.T) {
	s := newTestServer(t)
	_, suv := s.seedUser("suv@example.com", constants.RoleSUV)
	_, vc := s.seedUser("vc@example.com", constants.RoleVC)
	_, authority := s.seedUser("gov@example.com", constants.RoleAuthority)

	event := map[string]any{
		"description": "Wildfire",
		"priority":    5,
		"location":    map[string]any{"address": map[string]any{"city": "Odense"}},
	}
	rec, _ := s.do(http.MethodPost, "/api/v1/events", suv, event)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodPost, "/api/v1/events", vc, event)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/events", suv, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/resources/available", vc, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/v1/resources/available", authority, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/users", vc, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/v1/users", authority, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_VolunteerOwnership(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.seedUser("alice@example.com", constants.RoleSUV)
	bob, bobToken := s.seedUser("bob@example.com", constants.RoleSUV)
	_, vc := s.seedUser("vc@example.com", constants.RoleVC)
	eventID := s.createEvent(vc)

	// Self-service users cannot volunteer someone else.
	rec, _ := s.do(http.MethodPost, "/api/v1/volunteers", aliceToken, map[string]any{
		"user_id": bob.ID, "event_id": eventID,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(http.MethodPost, "/api/v1/volunteers", aliceToken, map[string]any{
		"user_id": alice.ID, "event_id": eventID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var vol struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &vol))
	assert.Equal(t, "active", vol.Status)

	// A repeat assignment returns the existing row.
	rec, env = s.do(http.MethodPost, "/api/v1/volunteers", aliceToken, map[string]any{
		"user_id": alice.ID, "event_id": eventID,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	var again struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &again))
	assert.Equal(t, vol.ID, again.ID)

	path := fmt.Sprintf("/api/v1/volunteers/%d/complete", vol.ID)
	rec, _ = s.do(http.MethodPost, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodPost, path, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var u gormModels.User
	require.NoError(t, s.orm.First(&u, alice.ID).Error)
	assert.Equal(t, constants.UserStatusAvailable, u.Status)
}

func TestRouter_CloseEventCompletesVolunteers(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.seedUser("alice@example.com", constants.RoleSUV)
	_, vc := s.seedUser("vc@example.com", constants.RoleVC)
	eventID := s.createEvent(vc)

	rec, _ := s.do(http.MethodPost, "/api/v1/volunteers", aliceToken, map[string]any{
		"user_id": alice.ID, "event_id": eventID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/events/%d/close", eventID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(http.MethodPost, fmt.Sprintf("/api/v1/events/%d/close", eventID), vc, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var closed struct {
		Updated int64 `json:"volunteers_completed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &closed))
	assert.EqualValues(t, 1, closed.Updated)

	var u gormModels.User
	require.NoError(t, s.orm.First(&u, alice.ID).Error)
	assert.Equal(t, constants.UserStatusAvailable, u.Status)
}

func TestRouter_NotFoundAndBadInput(t *testing.T) {
	s := newTestServer(t)
	_, vc := s.seedUser("vc@example.com", constants.RoleVC)

	rec, env := s.do(http.MethodGet, "/api/v1/events/999", vc, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)

	rec, _ = s.do(http.MethodGet, "/api/v1/events/abc", vc, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/events?limit=5000", vc, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/events?skip=-1", vc, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_StatsAndHealth(t *testing.T) {
	s := newTestServer(t)
	_, vc := s.seedUser("vc@example.com", constants.RoleVC)
	s.createEvent(vc)

	rec, env := s.do(http.MethodGet, "/api/v1/stats", vc, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats struct {
		ActiveEvents int64 `json:"activeEvents"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 1, stats.ActiveEvents)

	rec, _ = s.do(http.MethodGet, "/healthCheck", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
