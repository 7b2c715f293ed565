package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/auth"
	"lucky-wheel/internal/model"
	"lucky-wheel/internal/pkg/db"
	"lucky-wheel/internal/repository"
	"lucky-wheel/internal/service"
)

// HealthHandler reports liveness, including database reachability.
func HealthHandler(pool *db.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pool.HealthCheck(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, codeInternal, "database unreachable")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// EligibleMerchantsHandler lists merchants currently open for the wheel.
func EligibleMerchantsHandler(eligibility *service.EligibilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchants, err := eligibility.ListEligible(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, merchants)
	}
}

// AllocateWheelHandler assigns one slice per requested merchant.
func AllocateWheelHandler(wheelSvc *service.WheelService) http.HandlerFunc {
	type request struct {
		MerchantIDs []int64 `json:"merchant_ids"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
			return
		}
		if len(req.MerchantIDs) == 0 {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "merchant_ids is required")
			return
		}

		slices, err := wheelSvc.Allocate(r.Context(), req.MerchantIDs)
		if err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, slices)
	}
}

// QuotaStatusHandler reports the caller's remaining draw quota.
func QuotaStatusHandler(quota *service.QuotaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		period, err := model.ParsePeriod(r.URL.Query().Get("period"))
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}

		status, err := quota.Status(r.Context(), id.UserID, period, id.IsPrivileged())
		if err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, status)
	}
}

// ConfirmDrawHandler accepts the client-declared landing slice and returns
// the server-authoritative outcome.
func ConfirmDrawHandler(draws *service.DrawService) http.HandlerFunc {
	type request struct {
		Period     string `json:"period"`
		MerchantID int64  `json:"merchant_id"`
		CouponID   *int64 `json:"coupon_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
			return
		}
		period, err := model.ParsePeriod(req.Period)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		if req.MerchantID == 0 {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "merchant_id is required")
			return
		}

		confirmed, err := draws.ConfirmDraw(r.Context(), id.UserID, period, req.MerchantID, req.CouponID, id.IsPrivileged())
		if err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, confirmed)
	}
}

// ShareDrawHandler records a share and grants the bonus attempt.
func ShareDrawHandler(draws *service.DrawService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		drawID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid draw id")
			return
		}

		if err := draws.RecordShare(r.Context(), id.UserID, drawID); err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"bonus_granted": true})
	}
}

// DrawHistoryHandler lists the caller's confirmed draws, newest first.
func DrawHistoryHandler(draws *service.DrawService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		history, err := draws.History(r.Context(), id.UserID, limit)
		if err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, history)
	}
}

// CheckInHandler records today's check-in and any milestone bonus.
func CheckInHandler(checkins *service.CheckInService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		result, err := checkins.CheckIn(r.Context(), id.UserID)
		if err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// CheckInStatusHandler reports today's check-in state.
func CheckInStatusHandler(checkins *service.CheckInService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		status, err := checkins.Status(r.Context(), id.UserID)
		if err != nil {
			serviceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, status)
	}
}

// serviceError maps service and repository sentinels onto the error
// envelope. Unknown errors are logged and surfaced as 500s without detail.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrMerchantNotFound):
		respondError(w, http.StatusNotFound, codeMerchantNotFound, err.Error())
	case errors.Is(err, repository.ErrCouponNotFound), errors.Is(err, repository.ErrDrawNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, repository.ErrPeriodQuotaExceeded):
		respondError(w, http.StatusTooManyRequests, codePeriodQuotaExceeded, err.Error())
	case errors.Is(err, repository.ErrDailyQuotaExceeded):
		respondError(w, http.StatusTooManyRequests, codeDailyQuotaExceeded, err.Error())
	case errors.Is(err, repository.ErrAlreadyCheckedIn):
		respondError(w, http.StatusConflict, codeAlreadyCheckedIn, err.Error())
	case errors.Is(err, repository.ErrAlreadyShared):
		respondError(w, http.StatusConflict, codeAlreadyShared, err.Error())
	case errors.Is(err, service.ErrNotDrawOwner):
		respondError(w, http.StatusForbidden, codeForbidden, err.Error())
	default:
		log.Error().Err(err).Msg("unhandled service error")
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
