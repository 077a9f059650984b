package api

import (
	"net/http"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"
)

// resourceFilter reads the shared list query; flag names the boolean column
// (is_fulfilled or is_allocated).
func resourceFilter(r *http.Request, flag string) (dtos.ResourceFilter, error) {
	var (
		f   dtos.ResourceFilter
		err error
	)
	if f.Page, err = parsePage(r); err != nil {
		return f, err
	}
	if f.EventID, err = optionalUint(r, "event_id"); err != nil {
		return f, err
	}
	if f.VolunteerID, err = optionalUint(r, "volunteer_id"); err != nil {
		return f, err
	}
	if f.Flag, err = optionalBool(r, flag); err != nil {
		return f, err
	}
	return f, nil
}

func ListNeededHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		filter, err := resourceFilter(r, "is_fulfilled")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}

		list, err := resources.ListNeeded(r.Context(), filter)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to list needed resources")
			return
		}
		common.RespondSuccess(w, initTime, "Needed resources fetched", list)
	}
}

func CreateNeededHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateResourceNeededReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		res, err := resources.CreateNeeded(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to create needed resource")
			return
		}
		common.RespondSuccess(w, initTime, "Needed resource created", res, http.StatusCreated)
	}
}

func GetNeededHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		res, err := resources.GetNeeded(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgResourceNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Needed resource fetched", res)
	}
}

func UpdateNeededHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		var req dtos.UpdateResourceNeededReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		res, err := resources.UpdateNeeded(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to update needed resource")
			return
		}
		common.RespondSuccess(w, initTime, "Needed resource updated", res)
	}
}

func DeleteNeededHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		if err := resources.DeleteNeeded(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err, "Failed to delete needed resource")
			return
		}
		common.RespondSuccess(w, initTime, "Needed resource deleted", nil)
	}
}

func ListAvailableHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		filter, err := resourceFilter(r, "is_allocated")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}

		list, err := resources.ListAvailable(r.Context(), filter)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to list available resources")
			return
		}
		common.RespondSuccess(w, initTime, "Available resources fetched", list)
	}
}

func CreateAvailableHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateResourceAvailableReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		res, err := resources.CreateAvailable(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to create available resource")
			return
		}
		common.RespondSuccess(w, initTime, "Available resource created", res, http.StatusCreated)
	}
}

func GetAvailableHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		res, err := resources.GetAvailable(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgResourceNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Available resource fetched", res)
	}
}

func UpdateAvailableHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		var req dtos.UpdateResourceAvailableReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		res, err := resources.UpdateAvailable(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to update available resource")
			return
		}
		common.RespondSuccess(w, initTime, "Available resource updated", res)
	}
}

// AllocateAvailableHandler handles POST /api/v1/resources/available/{id}/allocate
//
// @Summary      Commit an offered resource to an event
// @Tags         Resources
// @Accept       json
// @Produce      json
// @Param        id     path      int                       true  "Available resource ID"
// @Param        input  body      dtos.AllocateResourceReq  true  "Target event"
// @Success      200    {object}  dtos.APIResponse
// @Failure      404    {object}  dtos.APIResponse
// @Router       /api/v1/resources/available/{id}/allocate [post]
func AllocateAvailableHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		var req dtos.AllocateResourceReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		res, err := resources.Allocate(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to allocate resource")
			return
		}
		common.RespondSuccess(w, initTime, "Resource allocated", res)
	}
}

func DeleteAvailableHandler(resources *services.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		if err := resources.DeleteAvailable(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err, "Failed to delete available resource")
			return
		}
		common.RespondSuccess(w, initTime, "Available resource deleted", nil)
	}
}
