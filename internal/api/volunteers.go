package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"
)

// selfServiceOnly reports whether the caller may only touch their own assignments.
func selfServiceOnly(claims auth.UserClaims) bool {
	return claims == nil || claims.Role() == constants.RoleSUV
}

// checkVolunteerOwner loads the assignment and refuses self-service callers
// acting on someone else's row.
func checkVolunteerOwner(ctx context.Context, volunteers *services.VolunteerService, claims auth.UserClaims, id uint) error {
	if !selfServiceOnly(claims) {
		return nil
	}
	v, err := volunteers.Get(ctx, id)
	if err != nil {
		return err
	}
	if claims == nil || v.UserID != claims.UserID() {
		return fmt.Errorf("volunteer %d belongs to another user: %w", id, services.ErrForbidden)
	}
	return nil
}

func ListVolunteersHandler(volunteers *services.VolunteerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		page, err := parsePage(r)
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}
		eventID, err := optionalUint(r, "event_id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}
		userID, err := optionalUint(r, "user_id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}

		list, err := volunteers.List(r.Context(), dtos.VolunteerFilter{
			Page:    page,
			EventID: eventID,
			UserID:  userID,
			Status:  optionalString(r, "status"),
		})
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to list volunteers")
			return
		}
		common.RespondSuccess(w, initTime, "Volunteers fetched", list)
	}
}

// CreateVolunteerHandler handles POST /api/v1/volunteers
//
// @Summary      Assign a user to an event
// @Description  Self-service users may only assign themselves. Returns 200 with the existing
// @Description  row when the user already has an active assignment for the event.
// @Tags         Volunteers
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.CreateVolunteerReq  true  "Assignment"
// @Success      201    {object}  dtos.APIResponse
// @Success      200    {object}  dtos.APIResponse
// @Failure      403    {object}  dtos.APIResponse
// @Failure      404    {object}  dtos.APIResponse
// @Router       /api/v1/volunteers [post]
func CreateVolunteerHandler(volunteers *services.VolunteerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateVolunteerReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		claims := auth.GetUserClaims(r.Context())
		if selfServiceOnly(claims) && (claims == nil || req.UserID != claims.UserID()) {
			respondServiceError(w, initTime, fmt.Errorf("may only volunteer yourself: %w", services.ErrForbidden), constants.MsgForbidden)
			return
		}

		v, created, err := volunteers.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to create volunteer")
			return
		}
		if !created {
			common.RespondSuccess(w, initTime, "Volunteer already assigned", v)
			return
		}
		common.RespondSuccess(w, initTime, "Volunteer created", v, http.StatusCreated)
	}
}

// CompleteEventVolunteersHandler handles POST /api/v1/volunteers/complete
//
// @Summary      Complete every active assignment of an event
// @Tags         Volunteers
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.CompleteVolunteersReq  true  "Event"
// @Success      200    {object}  dtos.APIResponse
// @Failure      404    {object}  dtos.APIResponse
// @Router       /api/v1/volunteers/complete [post]
func CompleteEventVolunteersHandler(volunteers *services.VolunteerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CompleteVolunteersReq
		if err := decodeBody(r, &req); err != nil || req.EventID == 0 {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody+": event_id is required", http.StatusBadRequest)
			return
		}

		n, err := volunteers.CompleteAllForEvent(r.Context(), req.EventID)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to complete volunteers")
			return
		}
		common.RespondSuccess(w, initTime, "Volunteers completed", dtos.CompleteVolunteersResponse{
			EventID: req.EventID,
			Updated: n,
		})
	}
}

func GetVolunteerHandler(volunteers *services.VolunteerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		v, err := volunteers.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgVolunteerNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Volunteer fetched", v)
	}
}

func UpdateVolunteerHandler(volunteers *services.VolunteerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		var req dtos.UpdateVolunteerReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		claims := auth.GetUserClaims(r.Context())
		if err := checkVolunteerOwner(r.Context(), volunteers, claims, id); err != nil {
			respondServiceError(w, initTime, err, constants.MsgVolunteerNotFound)
			return
		}
		if selfServiceOnly(claims) && req.UserID != nil && *req.UserID != claims.UserID() {
			respondServiceError(w, initTime, fmt.Errorf("cannot reassign to another user: %w", services.ErrForbidden), constants.MsgForbidden)
			return
		}

		v, err := volunteers.Update(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to update volunteer")
			return
		}
		common.RespondSuccess(w, initTime, "Volunteer updated", v)
	}
}

func CompleteVolunteerHandler(volunteers *services.VolunteerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		if err := checkVolunteerOwner(r.Context(), volunteers, auth.GetUserClaims(r.Context()), id); err != nil {
			respondServiceError(w, initTime, err, constants.MsgVolunteerNotFound)
			return
		}

		v, err := volunteers.Complete(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to complete volunteer")
			return
		}
		common.RespondSuccess(w, initTime, "Volunteer completed", v)
	}
}

func DeleteVolunteerHandler(volunteers *services.VolunteerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		if err := checkVolunteerOwner(r.Context(), volunteers, auth.GetUserClaims(r.Context()), id); err != nil {
			respondServiceError(w, initTime, err, constants.MsgVolunteerNotFound)
			return
		}

		if err := volunteers.Delete(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err, "Failed to delete volunteer")
			return
		}
		common.RespondSuccess(w, initTime, "Volunteer deleted", nil)
	}
}
