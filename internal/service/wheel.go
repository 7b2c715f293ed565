package service

import (
	"context"
	"fmt"

	"lucky-wheel/internal/model"
	"lucky-wheel/internal/repository"
	"lucky-wheel/internal/wheel"
)

// WheelService produces a fresh slice allocation for a set of merchants.
// Allocations are request-scoped: nothing is persisted, and repeated calls
// may assign a different coupon to the same merchant.
type WheelService struct {
	merchants MerchantReader
	coupons   CouponReader
	allocator *wheel.Allocator
}

// NewWheelService creates a new WheelService instance.
func NewWheelService(merchants MerchantReader, coupons CouponReader, allocator *wheel.Allocator) *WheelService {
	return &WheelService{
		merchants: merchants,
		coupons:   coupons,
		allocator: allocator,
	}
}

// Allocate assigns one slice per requested merchant, preserving input order.
// An unknown or inactive merchant id fails the whole request: a wheel must
// not be built around a merchant that cannot pay out.
func (s *WheelService) Allocate(ctx context.Context, merchantIDs []int64) ([]model.WheelSlice, error) {
	if len(merchantIDs) == 0 {
		return []model.WheelSlice{}, nil
	}

	merchants, err := s.merchants.ListByIDs(ctx, merchantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchants: %w", err)
	}

	known := make(map[int64]bool, len(merchants))
	for _, m := range merchants {
		known[m.ID] = m.Active
	}
	for _, id := range merchantIDs {
		if !known[id] {
			return nil, fmt.Errorf("%w: id %d", repository.ErrMerchantNotFound, id)
		}
	}

	couponsByMerchant, err := s.coupons.ListByMerchantIDs(ctx, merchantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	return s.allocator.Allocate(merchantIDs, couponsByMerchant), nil
}
