// Package wheel implements weighted wheel-slice allocation.
package wheel

import (
	"math/rand"

	"lucky-wheel/internal/model"
)

// Allocator assigns each wheel slice a coupon by weighted random selection.
// The draw source is injectable so tests can pin outcomes; production uses
// the shared math/rand source, which is safe for concurrent handlers.
type Allocator struct {
	intn func(n int) int
}

// New creates an Allocator backed by the default random source.
func New() *Allocator {
	return &Allocator{intn: rand.Intn}
}

// NewWithIntn creates an Allocator with a custom draw function.
func NewWithIntn(intn func(n int) int) *Allocator {
	return &Allocator{intn: intn}
}

// Allocate builds one slice per merchant id, preserving input order. Each
// merchant's coupon is chosen independently on every call; a merchant with
// no eligible coupons yields a slice with a nil coupon, still landable but
// rewardless. Streak-reward coupons are never allocated here: that reward
// class is only reachable through the check-in milestone.
func (a *Allocator) Allocate(merchantIDs []int64, couponsByMerchant map[int64][]model.Coupon) []model.WheelSlice {
	slices := make([]model.WheelSlice, 0, len(merchantIDs))
	for _, id := range merchantIDs {
		slice := model.WheelSlice{MerchantID: id}
		if c, ok := a.PickWeighted(WheelEligible(couponsByMerchant[id])); ok {
			couponID := c.ID
			slice.CouponID = &couponID
		}
		slices = append(slices, slice)
	}
	return slices
}

// PickWeighted draws one coupon with probability proportional to its weight:
// the draw is uniform over the sum of weights, not over distinct coupons.
// Returns false when the pool is empty or carries no positive weight.
func (a *Allocator) PickWeighted(coupons []model.Coupon) (model.Coupon, bool) {
	total := 0
	for _, c := range coupons {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total == 0 {
		return model.Coupon{}, false
	}

	n := a.intn(total)
	for _, c := range coupons {
		if c.Weight <= 0 {
			continue
		}
		n -= c.Weight
		if n < 0 {
			return c, true
		}
	}
	// Unreachable: n starts below total and every iteration subtracts.
	return coupons[len(coupons)-1], true
}

// WheelEligible filters a merchant's coupons down to those allowed on the
// wheel: active and not reserved for the streak milestone.
func WheelEligible(coupons []model.Coupon) []model.Coupon {
	out := make([]model.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.Active && !c.IsStreakReward {
			out = append(out, c)
		}
	}
	return out
}
