package services

import (
	"context"
	"testing"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copenhagen() *dtos.LocationInput {
	return &dtos.LocationInput{Latitude: common.Ptr(55.6761), Longitude: common.Ptr(12.5683)}
}

func TestEventService_CreateThenCountVolunteers(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()

	ev, err := ts.events.Create(ctx, dtos.CreateEventReq{
		Description: "Storm surge",
		Priority:    3,
		Location:    copenhagen(),
	})
	require.NoError(t, err)
	assert.Equal(t, "active", ev.Status)
	assert.True(t, ev.CreateTime.Equal(ev.ModifiedTime))
	assert.InDelta(t, 55.6761, *ev.Location.Latitude, 1e-9)

	got, err := ts.events.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.VolunteersCount)

	u := seedUser(t, ts.db, "u1@example.com")
	createVolunteer(t, ts.volunteers, u.ID, ev.ID)

	got, err = ts.events.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.VolunteersCount)
}

func TestEventService_CountIncludesCompletedVolunteers(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()
	e := seedEvent(t, ts.db)
	u := seedUser(t, ts.db, "u1@example.com")
	v := createVolunteer(t, ts.volunteers, u.ID, e.ID)
	_, err := ts.volunteers.Complete(ctx, v.ID)
	require.NoError(t, err)

	got, err := ts.events.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.VolunteersCount)
}

func TestEventService_CreateValidation(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()

	cases := map[string]dtos.CreateEventReq{
		"priority": {Description: "x", Priority: 6, Location: copenhagen()},
		"location": {Description: "x", Priority: 2},
		"location.latitude": {Description: "x", Priority: 2,
			Location: &dtos.LocationInput{Latitude: common.Ptr(95.0), Longitude: common.Ptr(1.0)}},
		"location.address": {Description: "x", Priority: 2, Location: &dtos.LocationInput{}},
	}

	for field, req := range cases {
		_, err := ts.events.Create(ctx, req)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, field)
		assert.Contains(t, ve.Fields, field)
	}

	var n int64
	require.NoError(t, ts.db.Model(&gormModels.Location{}).Count(&n).Error)
	assert.Zero(t, n, "nothing is persisted for rejected input")
}

func TestEventService_GetMissingLocationIsNotFound(t *testing.T) {
	ts := newTestServices(t, nil)
	e := seedEvent(t, ts.db)
	require.NoError(t, ts.db.Delete(&gormModels.Location{}, e.LocationID).Error)

	_, err := ts.events.Get(context.Background(), e.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ts.events.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventService_ListOrdersByIDAndFilters(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()

	for i, p := range []int{2, 5, 2} {
		_, err := ts.events.Create(ctx, dtos.CreateEventReq{
			Description: "event",
			Priority:    p,
			Status:      []string{"active", "pending", "active"}[i],
			Location:    copenhagen(),
		})
		require.NoError(t, err)
	}

	all, err := ts.events.List(ctx, dtos.EventFilter{Page: dtos.Page{Limit: 100}})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)

	two := 2
	byPriority, err := ts.events.List(ctx, dtos.EventFilter{Page: dtos.Page{Limit: 100}, Priority: &two})
	require.NoError(t, err)
	assert.Len(t, byPriority, 2)

	pending := "pending"
	byStatus, err := ts.events.List(ctx, dtos.EventFilter{Page: dtos.Page{Limit: 100}, Status: &pending})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, 5, byStatus[0].Priority)

	paged, err := ts.events.List(ctx, dtos.EventFilter{Page: dtos.Page{Skip: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, all[1].ID, paged[0].ID)
}

func TestEventService_ListSkipsEventsWithMissingLocation(t *testing.T) {
	ts := newTestServices(t, nil)
	e1 := seedEvent(t, ts.db)
	e2 := seedEvent(t, ts.db)
	require.NoError(t, ts.db.Delete(&gormModels.Location{}, e1.LocationID).Error)

	list, err := ts.events.List(context.Background(), dtos.EventFilter{Page: dtos.Page{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e2.ID, list[0].ID)
}

func TestEventService_UpdateRepointsLocation(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()
	e := seedEvent(t, ts.db)

	updated, err := ts.events.Update(ctx, e.ID, dtos.UpdateEventReq{
		Priority: common.Ptr(5),
		Location: &dtos.LocationInput{Address: &dtos.LocationAddress{City: common.Ptr("Odense")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Priority)
	assert.Equal(t, "Flooding", updated.Description)
	assert.NotEqual(t, e.LocationID, updated.Location.ID)
	assert.Equal(t, "Odense", *updated.Location.Address.City)
	assert.False(t, updated.ModifiedTime.Before(e.ModifiedTime))

	// previous location row stays behind
	var n int64
	require.NoError(t, ts.db.Model(&gormModels.Location{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)

	_, err = ts.events.Update(ctx, 999, dtos.UpdateEventReq{Priority: common.Ptr(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventService_CloseCompletesVolunteers(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()
	e := seedEvent(t, ts.db)
	u1 := seedUser(t, ts.db, "u1@example.com")
	u2 := seedUser(t, ts.db, "u2@example.com")
	createVolunteer(t, ts.volunteers, u1.ID, e.ID)
	createVolunteer(t, ts.volunteers, u2.ID, e.ID)

	res, err := ts.events.Close(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Updated)
	assert.Equal(t, constants.EventStatusResolved, res.Event.Status)
	assert.Equal(t, int64(2), res.Event.VolunteersCount)
	assert.Equal(t, constants.UserStatusAvailable, userStatus(t, ts.db, u1.ID))
	assert.Equal(t, constants.UserStatusAvailable, userStatus(t, ts.db, u2.ID))
	assert.Contains(t, ts.sink.Types(), constants.NotifyEventClosed)
}

func TestEventService_DeleteCleansUp(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()
	e := seedEvent(t, ts.db)
	u := seedUser(t, ts.db, "u1@example.com")
	v := createVolunteer(t, ts.volunteers, u.ID, e.ID)

	_, err := ts.resources.CreateNeeded(ctx, dtos.CreateResourceNeededReq{
		Name: "Sandbags", ResourceType: "material", Quantity: 200,
		EventID: e.ID,
	})
	require.NoError(t, err)
	offer, err := ts.resources.CreateAvailable(ctx, dtos.CreateResourceAvailableReq{
		Name: "Pump", ResourceType: "equipment", Quantity: 1, VolunteerID: v.ID, EventID: &e.ID, IsAllocated: true,
	})
	require.NoError(t, err)

	require.NoError(t, ts.events.Delete(ctx, e.ID))

	_, err = ts.events.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, constants.UserStatusAvailable, userStatus(t, ts.db, u.ID))

	vol, err := ts.volunteers.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, vol.EventID)
	assert.Equal(t, "completed", vol.Status)

	res, err := ts.resources.GetAvailable(ctx, offer.ID)
	require.NoError(t, err)
	assert.Nil(t, res.EventID)
	assert.False(t, res.IsAllocated)

	needed, err := ts.resources.ListNeeded(ctx, dtos.ResourceFilter{Page: dtos.Page{Limit: 10}, EventID: &e.ID})
	require.NoError(t, err)
	assert.Empty(t, needed)

	assert.ErrorIs(t, ts.events.Delete(ctx, e.ID), ErrNotFound)
}

func TestEventService_IngestIsAtomic(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()

	out, err := ts.events.Ingest(ctx, dtos.IngestEventReq{
		Event: dtos.CreateEventReq{Description: "Wildfire", Priority: 4, Location: copenhagen()},
		ResourcesNeeded: []dtos.ResourceNeededItem{
			{Name: "Water", ResourceType: "supply", Quantity: 500},
			{Name: "Masks", ResourceType: "supply", Quantity: 100},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.ResourcesNeeded, 2)
	for _, r := range out.ResourcesNeeded {
		assert.Equal(t, out.Event.ID, r.EventID)
	}

	_, err = ts.events.Ingest(ctx, dtos.IngestEventReq{
		Event:           dtos.CreateEventReq{Description: "Bad", Priority: 4, Location: copenhagen()},
		ResourcesNeeded: []dtos.ResourceNeededItem{{Name: "Zero", ResourceType: "supply", Quantity: 0}},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	var n int64
	require.NoError(t, ts.db.Model(&gormModels.Event{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
