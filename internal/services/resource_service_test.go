package services

import (
	"context"
	"testing"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceService_NeededQuantityMustBePositive(t *testing.T) {
	ts := newTestServices(t, nil)
	e := seedEvent(t, ts.db)

	_, err := ts.resources.CreateNeeded(context.Background(), dtos.CreateResourceNeededReq{
		Name: "Blankets", ResourceType: "supply", Quantity: 0,
		EventID: e.ID,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "quantity")

	list, err := ts.resources.ListNeeded(context.Background(), dtos.ResourceFilter{Page: dtos.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResourceService_NeededLifecycle(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()
	e := seedEvent(t, ts.db)

	created, err := ts.resources.CreateNeeded(ctx, dtos.CreateResourceNeededReq{
		Name: "Blankets", ResourceType: "supply", Quantity: 50,
		EventID: e.ID,
	})
	require.NoError(t, err)

	updated, err := ts.resources.UpdateNeeded(ctx, created.ID, dtos.UpdateResourceNeededReq{IsFulfilled: common.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsFulfilled)
	assert.Equal(t, 50, updated.Quantity)

	_, err = ts.resources.UpdateNeeded(ctx, created.ID, dtos.UpdateResourceNeededReq{Quantity: common.Ptr(0)})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	fulfilled := true
	list, err := ts.resources.ListNeeded(ctx, dtos.ResourceFilter{Page: dtos.Page{Limit: 10}, Flag: &fulfilled})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, ts.resources.DeleteNeeded(ctx, created.ID))
	_, err = ts.resources.GetNeeded(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceService_NeededRequiresEvent(t *testing.T) {
	ts := newTestServices(t, nil)

	_, err := ts.resources.CreateNeeded(context.Background(), dtos.CreateResourceNeededReq{
		Name: "Blankets", ResourceType: "supply", Quantity: 5,
		EventID: 404,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceService_AvailableRequiresVolunteerAndAllocates(t *testing.T) {
	ts := newTestServices(t, nil)
	ctx := context.Background()
	e := seedEvent(t, ts.db)
	u := seedUser(t, ts.db, "u1@example.com")
	v := createVolunteer(t, ts.volunteers, u.ID, e.ID)

	_, err := ts.resources.CreateAvailable(ctx, dtos.CreateResourceAvailableReq{
		Name: "Boat", ResourceType: "vehicle", Quantity: 1, VolunteerID: 999,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	offer, err := ts.resources.CreateAvailable(ctx, dtos.CreateResourceAvailableReq{
		Name: "Boat", ResourceType: "vehicle", Quantity: 1, VolunteerID: v.ID,
	})
	require.NoError(t, err)
	assert.False(t, offer.IsAllocated)
	assert.Equal(t, "available", offer.Status)

	_, err = ts.resources.Allocate(ctx, offer.ID, dtos.AllocateResourceReq{EventID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	allocated, err := ts.resources.Allocate(ctx, offer.ID, dtos.AllocateResourceReq{EventID: e.ID})
	require.NoError(t, err)
	assert.True(t, allocated.IsAllocated)
	require.NotNil(t, allocated.EventID)
	assert.Equal(t, e.ID, *allocated.EventID)
	assert.Contains(t, ts.sink.Types(), constants.NotifyResourceAllocated)

	byVolunteer, err := ts.resources.ListAvailable(ctx, dtos.ResourceFilter{Page: dtos.Page{Limit: 10}, VolunteerID: &v.ID})
	require.NoError(t, err)
	assert.Len(t, byVolunteer, 1)

	_, err = ts.resources.UpdateAvailable(ctx, offer.ID, dtos.UpdateResourceAvailableReq{Quantity: common.Ptr(3)})
	require.NoError(t, err)

	require.NoError(t, ts.resources.DeleteAvailable(ctx, offer.ID))
	assert.ErrorIs(t, ts.resources.DeleteAvailable(ctx, offer.ID), ErrNotFound)
}
