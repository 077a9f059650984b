package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/constants"
	appdb "mayday/coordinator/internal/db"
	gormModels "mayday/coordinator/internal/models/gorm"
	"mayday/coordinator/internal/providers"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := appdb.InitORM(config.DatabaseConfig{SQLitePath: ":memory:", MaxRetries: 1})
	require.NoError(t, err)
	require.NoError(t, appdb.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *gormModels.User {
	t.Helper()
	u := &gormModels.User{
		Name:         "Test " + email,
		Email:        email,
		PasswordHash: "x",
		Role:         constants.RoleSUV,
		Status:       constants.UserStatusAvailable,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedEvent(t *testing.T, db *gorm.DB) *gormModels.Event {
	t.Helper()
	loc := &gormModels.Location{City: common.Ptr("Aalborg"), FullAddress: common.Ptr("Aalborg")}
	require.NoError(t, db.Create(loc).Error)

	now := time.Now().UTC()
	e := &gormModels.Event{
		Description:  "Flooding",
		Priority:     3,
		Status:       constants.EventStatusActive,
		LocationID:   loc.ID,
		CreateTime:   now,
		ModifiedTime: now,
	}
	require.NoError(t, db.Omit("Location").Create(e).Error)
	return e
}

func userStatus(t *testing.T, db *gorm.DB, id uint) constants.UserStatus {
	t.Helper()
	var u gormModels.User
	require.NoError(t, db.First(&u, id).Error)
	return u.Status
}

// countingReconciler records how often each user was reconciled.
type countingReconciler struct {
	inner Reconciler
	mu    sync.Mutex
	calls map[uint]int
}

func newCountingReconciler(inner Reconciler) *countingReconciler {
	return &countingReconciler{inner: inner, calls: map[uint]int{}}
}

func (c *countingReconciler) Reconcile(ctx context.Context, tx *gorm.DB, userID uint) (bool, error) {
	c.mu.Lock()
	c.calls[userID]++
	c.mu.Unlock()
	return c.inner.Reconcile(ctx, tx, userID)
}

// recordingSink keeps every published notification.
type recordingSink struct {
	mu    sync.Mutex
	notes []common.Notification
}

func (r *recordingSink) Publish(_ context.Context, n common.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingSink) Types() []constants.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]constants.NotificationType, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, n.Type)
	}
	return out
}

// mockGeocoder uses func fields so each test scripts its own answers.
type mockGeocoder struct {
	geocodeFunc func(ctx context.Context, query string) (*providers.Coordinates, error)
	reverseFunc func(ctx context.Context, lat, lon float64) (*providers.Address, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, query string) (*providers.Coordinates, error) {
	return m.geocodeFunc(ctx, query)
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lon float64) (*providers.Address, error) {
	return m.reverseFunc(ctx, lat, lon)
}

type testServices struct {
	db         *gorm.DB
	reconciler *countingReconciler
	sink       *recordingSink
	volunteers *VolunteerService
	locations  *LocationService
	events     *EventService
	users      *UserService
	resources  *ResourceService
}

func newTestServices(t *testing.T, geocoder providers.Geocoder) *testServices {
	t.Helper()
	db := setupTestDB(t)
	rec := newCountingReconciler(NewStatusReconciler(db, nil))
	sink := &recordingSink{}

	locs := NewLocationService(db, geocoder, sink)
	vols := NewVolunteerService(db, rec, sink, nil)
	users := NewUserService(db, rec, sink)
	users.hashCost = bcrypt.MinCost

	return &testServices{
		db:         db,
		reconciler: rec,
		sink:       sink,
		volunteers: vols,
		locations:  locs,
		events:     NewEventService(db, locs, vols, sink),
		users:      users,
		resources:  NewResourceService(db, sink),
	}
}
