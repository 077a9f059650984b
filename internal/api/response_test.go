package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.NewValidationError("priority", "must be between 1 and 5"), http.StatusBadRequest},
		{"not found", fmt.Errorf("event 3: %w", services.ErrNotFound), http.StatusNotFound},
		{"concurrent update", services.ErrConcurrentUpdate, http.StatusConflict},
		{"conflict", fmt.Errorf("email taken: %w", services.ErrConflict), http.StatusConflict},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"transient", fmt.Errorf("serialization failure: %w", services.ErrTransient), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, time.Now(), tt.err, "fallback")
			assert.Equal(t, tt.want, rec.Code)

			var body struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			if tt.want == http.StatusInternalServerError {
				assert.Equal(t, "fallback", body.Message)
			}
		})
	}
}

func TestRespondServiceError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, time.Now(), services.NewValidationError("quantity", "must be at least 1"), "fallback")

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "must be at least 1", body.Data["quantity"])
}

func TestDecodeBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"pumps"}`))
	require.NoError(t, decodeBody(r, &dst))
	assert.Equal(t, "pumps", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	assert.Error(t, decodeBody(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	err := decodeBody(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), constants.MsgInvalidBody)
}

func TestParsePage(t *testing.T) {
	page, err := parsePage(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 0, page.Skip)
	assert.Equal(t, constants.DefaultPageLimit, page.Limit)

	page, err = parsePage(httptest.NewRequest(http.MethodGet, "/?skip=20&limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, 20, page.Skip)
	assert.Equal(t, 5, page.Limit)

	for _, q := range []string{"skip=-1", "skip=x", "limit=0", "limit=1001"} {
		_, err := parsePage(httptest.NewRequest(http.MethodGet, "/?"+q, nil))
		assert.Error(t, err, q)
	}
}

func TestOptionalQueryParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?event_id=4&status=active", nil)

	id, err := optionalUint(r, "event_id")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.EqualValues(t, 4, *id)

	missing, err := optionalUint(r, "user_id")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = optionalUint(httptest.NewRequest(http.MethodGet, "/?event_id=-2", nil), "event_id")
	assert.Error(t, err)

	status := optionalString(r, "status")
	require.NotNil(t, status)
	assert.Equal(t, "active", *status)
}
