package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/model"
	"lucky-wheel/internal/repository"
)

// Draw arbitration errors.
var (
	ErrNotDrawOwner = errors.New("draw belongs to another user")
)

// ConfirmedDraw is the server-authoritative outcome returned to the client.
// The client must display this record, not its locally animated result.
type ConfirmedDraw struct {
	Draw     *model.DrawRecord `json:"draw"`
	Merchant *model.Merchant   `json:"merchant"`
	Coupon   *model.Coupon     `json:"coupon"`
}

// DrawService reconciles a client-declared wheel outcome against policy and
// persists the authoritative record. The client computes where the pointer
// landed and declares merchant + coupon identity; the server re-validates
// existence and reward class, never honoring a streak-reward coupon through
// this path.
type DrawService struct {
	merchants MerchantReader
	coupons   CouponReader
	draws     DrawStore
	quota     *QuotaService
	loc       *time.Location
	now       func() time.Time
}

// NewDrawService creates a new DrawService instance.
func NewDrawService(merchants MerchantReader, coupons CouponReader, draws DrawStore, quota *QuotaService, loc *time.Location) *DrawService {
	return &DrawService{
		merchants: merchants,
		coupons:   coupons,
		draws:     draws,
		quota:     quota,
		loc:       loc,
		now:       time.Now,
	}
}

// ConfirmDraw validates a declared outcome and writes the draw record.
//
// Validation order matters: existence checks run before the quota
// reservation so a NotFound abort never consumes a quota slot, and the
// coupon downgrade check runs before reservation so rewarded_count is
// accurate at reserve time. A declared coupon that is missing, inactive,
// foreign to the merchant, or streak-protected downgrades the outcome to a
// merchant-only win rather than failing — refusing outright would let a
// probing client map which coupons are streak-protected.
func (s *DrawService) ConfirmDraw(ctx context.Context, userID int64, period model.Period, merchantID int64, couponID *int64, privileged bool) (*ConfirmedDraw, error) {
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	var coupon *model.Coupon
	if couponID != nil {
		coupon = s.validateDeclaredCoupon(ctx, userID, merchantID, *couponID)
	}

	if err := s.quota.Reserve(ctx, userID, period, privileged, coupon != nil); err != nil {
		return nil, err
	}

	var cid *int64
	if coupon != nil {
		cid = &coupon.ID
	}
	rec, err := s.draws.Create(ctx, userID, merchantID, cid, &period)
	if err != nil {
		return nil, fmt.Errorf("failed to persist draw: %w", err)
	}

	return &ConfirmedDraw{Draw: rec, Merchant: merchant, Coupon: coupon}, nil
}

// validateDeclaredCoupon returns the coupon when the declaration is sound,
// nil when the outcome must be downgraded. Downgrades are anomalies worth
// operator attention, so each one is logged with its reason.
func (s *DrawService) validateDeclaredCoupon(ctx context.Context, userID, merchantID, couponID int64) *model.Coupon {
	anomaly := func(reason string) {
		log.Warn().
			Int64("user_id", userID).
			Int64("merchant_id", merchantID).
			Int64("coupon_id", couponID).
			Str("reason", reason).
			Msg("declared coupon downgraded to merchant-only win")
	}

	c, err := s.coupons.GetByID(ctx, couponID)
	switch {
	case errors.Is(err, repository.ErrCouponNotFound):
		anomaly("coupon does not exist")
		return nil
	case err != nil:
		anomaly("coupon lookup failed")
		return nil
	case c.IsStreakReward:
		anomaly("coupon is a streak reward")
		return nil
	case !c.Active:
		anomaly("coupon inactive")
		return nil
	case c.MerchantID != merchantID:
		anomaly("coupon belongs to another merchant")
		return nil
	}
	return c
}

// RecordShare marks a draw as shared and grants one bonus attempt for the
// draw's period today. Sharing is idempotent-with-error: the first call
// grants, every later call fails with repository.ErrAlreadyShared and grants
// nothing.
func (s *DrawService) RecordShare(ctx context.Context, userID int64, drawID uuid.UUID) error {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return err
	}
	if draw.UserID != userID {
		return ErrNotDrawOwner
	}

	if err := s.draws.MarkShared(ctx, drawID); err != nil {
		return err
	}

	period := model.PeriodOf(s.now().In(s.loc))
	if draw.Period != nil {
		period = *draw.Period
	}
	if err := s.quota.GrantShareBonus(ctx, userID, period); err != nil {
		return fmt.Errorf("failed to grant share bonus: %w", err)
	}

	return nil
}

// History lists the user's confirmed draws, newest first.
func (s *DrawService) History(ctx context.Context, userID int64, limit int) ([]*model.DrawRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.draws.ListByUser(ctx, userID, limit)
}
