package api

import (
	"net/http"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"
)

func ListLocationsHandler(locations *services.LocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		page, err := parsePage(r)
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}

		list, err := locations.List(r.Context(), page)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to list locations")
			return
		}
		common.RespondSuccess(w, initTime, "Locations fetched", list)
	}
}

// CreateLocationHandler handles POST /api/v1/locations
//
// @Summary      Create a location, geocoding whichever half is missing
// @Description  Returns 200 with the existing row when an identical location is already stored.
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.LocationInput  true  "Address and/or coordinates"
// @Success      201    {object}  dtos.APIResponse
// @Success      200    {object}  dtos.APIResponse
// @Failure      400    {object}  dtos.APIResponse
// @Router       /api/v1/locations [post]
func CreateLocationHandler(locations *services.LocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LocationInput
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		loc, created, err := locations.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to create location")
			return
		}
		if !created {
			common.RespondSuccess(w, initTime, "Location already exists", loc)
			return
		}
		common.RespondSuccess(w, initTime, "Location created", loc, http.StatusCreated)
	}
}

func GetLocationHandler(locations *services.LocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		loc, err := locations.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgLocationNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Location fetched", loc)
	}
}

func UpdateLocationHandler(locations *services.LocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		var req dtos.UpdateLocationReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		loc, err := locations.Update(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to update location")
			return
		}
		common.RespondSuccess(w, initTime, "Location updated", loc)
	}
}

func DeleteLocationHandler(locations *services.LocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		if err := locations.Delete(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err, "Failed to delete location")
			return
		}
		common.RespondSuccess(w, initTime, "Location deleted", nil)
	}
}
