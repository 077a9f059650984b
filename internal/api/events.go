package api

import (
	"net/http"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"
)

// ListEventsHandler handles GET /api/v1/events
//
// @Summary      List events with their location and volunteer count
// @Tags         Events
// @Produce      json
// @Param        skip      query  int     false  "Offset"  default(0)
// @Param        limit     query  int     false  "Page size (max 1000)"  default(100)
// @Param        priority  query  int     false  "Filter by priority"
// @Param        status    query  string  false  "Filter by status"
// @Success      200  {object}  dtos.APIResponse
// @Router       /api/v1/events [get]
func ListEventsHandler(events *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		page, err := parsePage(r)
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}
		priority, err := optionalInt(r, "priority")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}

		list, err := events.List(r.Context(), dtos.EventFilter{
			Page:     page,
			Priority: priority,
			Status:   optionalString(r, "status"),
		})
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to list events")
			return
		}
		common.RespondSuccess(w, initTime, "Events fetched", list)
	}
}

func CreateEventHandler(events *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateEventReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		event, err := events.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to create event")
			return
		}
		common.RespondSuccess(w, initTime, "Event created", event, http.StatusCreated)
	}
}

// IngestEventHandler handles POST /api/v1/events/ingest
//
// @Summary      Create an event with its location and needed resources in one transaction
// @Tags         Events
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.IngestEventReq  true  "Event and needed resources"
// @Success      201    {object}  dtos.APIResponse
// @Failure      400    {object}  dtos.APIResponse
// @Router       /api/v1/events/ingest [post]
func IngestEventHandler(events *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.IngestEventReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		out, err := events.Ingest(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to ingest event")
			return
		}
		common.RespondSuccess(w, initTime, "Event ingested", out, http.StatusCreated)
	}
}

func GetEventHandler(events *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		event, err := events.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgEventNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Event fetched", event)
	}
}

func UpdateEventHandler(events *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		var req dtos.UpdateEventReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		event, err := events.Update(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to update event")
			return
		}
		common.RespondSuccess(w, initTime, "Event updated", event)
	}
}

// CloseEventHandler handles POST /api/v1/events/{id}/close
//
// @Summary      Resolve an event and complete its active volunteers
// @Tags         Events
// @Produce      json
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  dtos.APIResponse
// @Failure      404  {object}  dtos.APIResponse
// @Router       /api/v1/events/{id}/close [post]
func CloseEventHandler(events *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		out, err := events.Close(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to close event")
			return
		}
		common.RespondSuccess(w, initTime, "Event closed", out)
	}
}

func DeleteEventHandler(events *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		if err := events.Delete(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err, "Failed to delete event")
			return
		}
		common.RespondSuccess(w, initTime, "Event deleted", nil)
	}
}
