// Package api exposes the engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error codes surfaced in the error envelope.
const (
	codeInvalidRequest      = "invalid_request"
	codeUnauthorized        = "unauthorized"
	codeForbidden           = "forbidden"
	codeNotFound            = "not_found"
	codeMerchantNotFound    = "merchant_not_found"
	codePeriodQuotaExceeded = "period_quota_exceeded"
	codeDailyQuotaExceeded  = "daily_quota_exceeded"
	codeAlreadyCheckedIn    = "already_checked_in"
	codeAlreadyShared       = "already_shared"
	codeRateLimited         = "rate_limited"
	codeInternal            = "internal_error"
)

// successResponse wraps data in the standard {"data": ...} envelope.
type successResponse struct {
	Data any `json:"data"`
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes a success response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(successResponse{Data: data}); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{Error: errorBody{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON error response")
	}
}
