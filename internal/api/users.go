package api

import (
	"fmt"
	"net/http"
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"
)

func ListUsersHandler(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		page, err := parsePage(r)
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidQuery, http.StatusBadRequest)
			return
		}

		list, err := users.List(r.Context(), dtos.UserFilter{Page: page, Status: optionalString(r, "status")})
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to list users")
			return
		}
		common.RespondSuccess(w, initTime, "Users fetched", list)
	}
}

// GetUserHandler lets a user read their own profile; coordinators and
// authorities may read anyone's.
func GetUserHandler(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		claims := auth.GetUserClaims(r.Context())
		if claims == nil || (claims.UserID() != id && !claims.HasRole(constants.RoleVC, constants.RoleAuthority)) {
			respondServiceError(w, initTime, fmt.Errorf("user %d: %w", id, services.ErrForbidden), constants.MsgForbidden)
			return
		}

		user, err := users.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgUserNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "User fetched", user)
	}
}

// UpdateUserHandler handles PATCH /api/v1/users/{id}
//
// @Summary      Update a user profile
// @Description  Users may edit themselves; only an AUTHORITY may edit others or change a role.
// @Description  status accepts "unavailable" (manual override) or "available" (clear it).
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id     path      int                 true  "User ID"
// @Param        input  body      dtos.UpdateUserReq  true  "Fields to change"
// @Success      200    {object}  dtos.APIResponse
// @Failure      403    {object}  dtos.APIResponse
// @Router       /api/v1/users/{id} [patch]
func UpdateUserHandler(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}
		var req dtos.UpdateUserReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		claims := auth.GetUserClaims(r.Context())
		isAuthority := claims != nil && claims.HasRole(constants.RoleAuthority)
		switch {
		case claims == nil:
			common.RespondError(w, initTime, nil, constants.MsgMissingClaims, http.StatusUnauthorized)
			return
		case claims.UserID() != id && !isAuthority:
			respondServiceError(w, initTime, fmt.Errorf("user %d: %w", id, services.ErrForbidden), constants.MsgForbidden)
			return
		case req.Role != nil && !isAuthority:
			respondServiceError(w, initTime, fmt.Errorf("changing roles requires AUTHORITY: %w", services.ErrForbidden), constants.MsgForbidden)
			return
		}

		user, err := users.Update(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to update user")
			return
		}
		common.RespondSuccess(w, initTime, "User updated", user)
	}
}

func DeleteUserHandler(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := pathID(r, "id")
		if err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidID, http.StatusBadRequest)
			return
		}

		if err := users.Delete(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err, "Failed to delete user")
			return
		}
		common.RespondSuccess(w, initTime, "User deleted", nil)
	}
}
