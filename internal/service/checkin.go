package service

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/model"
	"lucky-wheel/internal/repository"
	"lucky-wheel/internal/wheel"
)

// DefaultStreakMilestone is the consecutive-day count that unlocks the
// streak reward.
const DefaultStreakMilestone = 7

// CheckInResult is the outcome of a daily check-in.
type CheckInResult struct {
	ConsecutiveDays int           `json:"consecutive_days"`
	BonusCoupon     *model.Coupon `json:"bonus_coupon,omitempty"`
}

// CheckInStatus reports today's check-in state without mutating anything.
type CheckInStatus struct {
	HasCheckedInToday bool `json:"has_checked_in_today"`
	ConsecutiveDays   int  `json:"consecutive_days"`
}

// CheckInService tracks daily check-in streaks. A check-in the day after the
// previous one extends the streak; any larger gap resets it to one. Reaching
// the milestone grants a streak-reward coupon through a direct draw record —
// the only path that reward class is reachable from. The grant fires on any
// check-in at or past the milestone that has not already claimed within the
// current streak, so a user who misses the exact milestone day still
// receives the reward on the next check-in.
type CheckInService struct {
	checkins  CheckInStore
	coupons   CouponReader
	draws     DrawStore
	allocator *wheel.Allocator
	milestone int
	loc       *time.Location
	now       func() time.Time
	intn      func(n int) int
}

// NewCheckInService creates a new CheckInService instance.
func NewCheckInService(checkins CheckInStore, coupons CouponReader, draws DrawStore, allocator *wheel.Allocator, milestone int, loc *time.Location) *CheckInService {
	if milestone <= 0 {
		milestone = DefaultStreakMilestone
	}
	return &CheckInService{
		checkins:  checkins,
		coupons:   coupons,
		draws:     draws,
		allocator: allocator,
		milestone: milestone,
		loc:       loc,
		now:       time.Now,
		intn:      rand.Intn,
	}
}

// CheckIn records today's check-in and, at the milestone, grants the bonus.
// Returns repository.ErrAlreadyCheckedIn on a duplicate; concurrent
// duplicates lose the insert race on the (user, date) key rather than a
// pre-read.
func (s *CheckInService) CheckIn(ctx context.Context, userID int64) (*CheckInResult, error) {
	nowLocal := s.now().In(s.loc)
	today := model.DateKey(nowLocal)
	yesterday := model.DateKey(nowLocal.AddDate(0, 0, -1))

	latest, err := s.checkins.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}

	consecutive := 1
	claimed := false
	if latest != nil {
		switch latest.Date {
		case today:
			// Fast path; the insert below would reject it anyway.
			return nil, repository.ErrAlreadyCheckedIn
		case yesterday:
			consecutive = latest.ConsecutiveDays + 1
			claimed = latest.RewardClaimed
		}
	}

	if _, err := s.checkins.Create(ctx, userID, today, consecutive, claimed); err != nil {
		return nil, err
	}

	result := &CheckInResult{ConsecutiveDays: consecutive}
	if consecutive >= s.milestone && !claimed {
		result.BonusCoupon = s.grantStreakReward(ctx, userID, today)
	}

	return result, nil
}

// Status reports whether the user checked in today and the current streak
// length. A streak survives overnight: yesterday's count still shows until
// the day is missed.
func (s *CheckInService) Status(ctx context.Context, userID int64) (*CheckInStatus, error) {
	nowLocal := s.now().In(s.loc)
	today := model.DateKey(nowLocal)
	yesterday := model.DateKey(nowLocal.AddDate(0, 0, -1))

	latest, err := s.checkins.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &CheckInStatus{}
	if latest == nil {
		return status, nil
	}
	switch latest.Date {
	case today:
		status.HasCheckedInToday = true
		status.ConsecutiveDays = latest.ConsecutiveDays
	case yesterday:
		status.ConsecutiveDays = latest.ConsecutiveDays
	}
	return status, nil
}

// grantStreakReward picks one merchant uniformly among those offering an
// active streak-reward coupon, draws one of its coupons by weight, and
// writes the grant directly to the draw ledger. When no merchant currently
// offers one, the streak still advances with no bonus. Grant failures never
// fail the check-in itself.
func (s *CheckInService) grantStreakReward(ctx context.Context, userID int64, today string) *model.Coupon {
	pool, err := s.coupons.ListActiveStreakRewards(ctx)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to load streak reward pool")
		return nil
	}
	if len(pool) == 0 {
		return nil
	}

	byMerchant := make(map[int64][]model.Coupon)
	for _, c := range pool {
		byMerchant[c.MerchantID] = append(byMerchant[c.MerchantID], c)
	}
	merchantIDs := make([]int64, 0, len(byMerchant))
	for id := range byMerchant {
		merchantIDs = append(merchantIDs, id)
	}
	sort.Slice(merchantIDs, func(i, j int) bool { return merchantIDs[i] < merchantIDs[j] })

	merchantID := merchantIDs[s.intn(len(merchantIDs))]
	coupon, ok := s.allocator.PickWeighted(byMerchant[merchantID])
	if !ok {
		return nil
	}

	if _, err := s.draws.Create(ctx, userID, coupon.MerchantID, &coupon.ID, nil); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("coupon_id", coupon.ID).
			Msg("failed to persist streak reward grant")
		return nil
	}
	if err := s.checkins.MarkRewardClaimed(ctx, userID, today); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to mark streak reward claimed")
	}

	return &coupon
}
