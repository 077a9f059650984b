package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// respondServiceError maps service errors onto HTTP status codes. Anything
// unrecognised is a 500 carrying fallback as the message.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		common.RespondValidationError(w, initTime, ve.Error(), ve.Fields)
	case errors.Is(err, services.ErrNotFound):
		common.RespondError(w, initTime, err, fallback, http.StatusNotFound)
	case errors.Is(err, services.ErrConcurrentUpdate):
		common.RespondError(w, initTime, nil, constants.MsgConcurrentUpdate, http.StatusConflict)
	case errors.Is(err, services.ErrConflict):
		common.RespondError(w, initTime, err, fallback, http.StatusConflict)
	case errors.Is(err, services.ErrInvalidCredentials):
		common.RespondError(w, initTime, nil, constants.MsgInvalidCredentials, http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		common.RespondError(w, initTime, err, constants.MsgForbidden, http.StatusForbidden)
	case errors.Is(err, services.ErrTransient):
		common.RespondError(w, initTime, err, "Service temporarily unavailable, retry the request", http.StatusServiceUnavailable)
	default:
		common.RespondError(w, initTime, err, fallback, http.StatusInternalServerError)
	}
}

// decodeBody reads a JSON request body into dst, rejecting trailing data.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%s: %w", constants.MsgInvalidBody, err)
	}
	if dec.More() {
		return errors.New(constants.MsgInvalidBody + ": unexpected trailing data")
	}
	return nil
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s: %q", constants.MsgInvalidID, raw)
	}
	return uint(id), nil
}

// parsePage reads skip and limit; skip defaults to 0 and limit to 100.
func parsePage(r *http.Request) (dtos.Page, error) {
	page := dtos.Page{Skip: 0, Limit: constants.DefaultPageLimit}
	q := r.URL.Query()

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fmt.Errorf("%s: skip must be a non-negative integer", constants.MsgInvalidQuery)
		}
		page.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > constants.MaxPageLimit {
			return page, fmt.Errorf("%s: limit must be between 1 and %d", constants.MsgInvalidQuery, constants.MaxPageLimit)
		}
		page.Limit = n
	}
	return page, nil
}

func optionalUint(r *http.Request, name string) (*uint, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %s must be a positive integer", constants.MsgInvalidQuery, name)
	}
	u := uint(n)
	return &u, nil
}

func optionalInt(r *http.Request, name string) (*int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s must be an integer", constants.MsgInvalidQuery, name)
	}
	return &n, nil
}

func optionalBool(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s must be true or false", constants.MsgInvalidQuery, name)
	}
	return &b, nil
}

func optionalString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}
