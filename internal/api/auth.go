package api

import (
	"net/http"
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"
)

// RegisterHandler handles POST /api/v1/auth/register
//
// @Summary      Register a self-service volunteer account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.RegisterUserReq  true  "Account details"
// @Success      201    {object}  dtos.APIResponse
// @Failure      400    {object}  dtos.APIResponse
// @Failure      409    {object}  dtos.APIResponse
// @Router       /api/v1/auth/register [post]
func RegisterHandler(users *services.UserService, tokens *auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.RegisterUserReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		user, err := users.Register(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to register user")
			return
		}

		resp, err := issueFor(tokens, user)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to issue token", http.StatusInternalServerError)
			return
		}
		common.RespondSuccess(w, initTime, "User registered", resp, http.StatusCreated)
	}
}

// LoginHandler handles POST /api/v1/auth/login
//
// @Summary      Exchange credentials for a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.LoginReq  true  "Credentials"
// @Success      200    {object}  dtos.APIResponse
// @Failure      401    {object}  dtos.APIResponse
// @Router       /api/v1/auth/login [post]
func LoginHandler(users *services.UserService, tokens *auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LoginReq
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		user, err := users.Authenticate(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to log in")
			return
		}

		resp, err := issueFor(tokens, user)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to issue token", http.StatusInternalServerError)
			return
		}
		common.RespondSuccess(w, initTime, "Logged in", resp)
	}
}

func MeHandler(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, constants.MsgMissingClaims, http.StatusUnauthorized)
			return
		}

		user, err := users.Get(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgUserNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "User fetched", user)
	}
}

func issueFor(tokens *auth.TokenIssuer, user *dtos.UserResponse) (*dtos.AuthResponse, error) {
	token, expiresAt, err := tokens.Issue(user.ID, constants.UserRole(user.Role))
	if err != nil {
		return nil, err
	}
	return &dtos.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
