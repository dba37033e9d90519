package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

type Response struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Required  string `json:"required,omitempty"`
	Available string `json:"available,omitempty"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Error: message})
}

var statusByKind = map[domain.Kind]int{
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindUnauthorized:      http.StatusForbidden,
	domain.KindInvalidState:      http.StatusConflict,
	domain.KindQuotaExceeded:     http.StatusConflict,
	domain.KindInsufficientFunds: http.StatusPaymentRequired,
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindExternalFailure:   http.StatusBadGateway,
}

// StatusFor maps a business error kind to its HTTP status.
func StatusFor(kind domain.Kind) int {
	if code, ok := statusByKind[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// RespondWithServiceError writes err with the status of its kind. Errors
// without a kind are logged and hidden behind a generic message.
func RespondWithServiceError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Kind == domain.KindUnknown {
		zap.L().Error("request failed", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp := Response{Error: derr.Error(), Kind: derr.Kind.String()}
	if derr.Kind == domain.KindInsufficientFunds {
		resp.Required = derr.Required.StringFixed(2)
		resp.Available = derr.Available.StringFixed(2)
	}
	RespondWithJSON(w, StatusFor(derr.Kind), resp)
}
