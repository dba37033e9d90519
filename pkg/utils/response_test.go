package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedKind string
	}{
		{"Not found", domain.NotFound("placement", 1), http.StatusNotFound, "not_found"},
		{"Unauthorized", domain.Unauthorized("nope"), http.StatusForbidden, "unauthorized"},
		{"Invalid state", domain.InvalidState("placed"), http.StatusConflict, "invalid_state"},
		{"Quota", domain.QuotaExceeded("full"), http.StatusConflict, "quota_exceeded"},
		{"Funds", domain.InsufficientFunds(decimal.NewFromInt(25), decimal.NewFromInt(5)), http.StatusPaymentRequired, "insufficient_funds"},
		{"Validation", domain.Validation("bad"), http.StatusBadRequest, "validation_error"},
		{"External", domain.ExternalFailure(errors.New("timeout"), "publish"), http.StatusBadGateway, "external_failure"},
		{"Wrapped", fmt.Errorf("purchase: %w", domain.NotFound("site", 2)), http.StatusNotFound, "not_found"},
		{"Plain", errors.New("connection refused"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithServiceError(w, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedKind, resp.Kind)
			if tt.expectedKind == "" {
				assert.Equal(t, "Internal server error", resp.Error)
			}
		})
	}
}

func TestRespondWithServiceError_FundsDetails(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithServiceError(w, domain.InsufficientFunds(decimal.NewFromInt(25), decimal.NewFromInt(5)))

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "25.00", resp.Required)
	assert.Equal(t, "5.00", resp.Available)
	assert.Equal(t, "insufficient balance: required $25.00, available $5.00", resp.Error)
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}
