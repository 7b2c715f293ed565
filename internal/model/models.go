// Package model defines the data models for the lucky wheel service.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Merchant represents a participating store. Merchants are owned by the
// back-office CRUD application; the engine only reads them.
type Merchant struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Active    bool            `db:"active" json:"active"`
	Schedule  json.RawMessage `db:"schedule" json:"schedule"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Coupon represents a discount reward offered by a merchant.
// IsStreakReward coupons are reserved for the 7-day check-in milestone and
// must never be selectable through wheel allocation.
type Coupon struct {
	ID             int64     `db:"id" json:"id"`
	MerchantID     int64     `db:"merchant_id" json:"merchant_id"`
	Title          string    `db:"title" json:"title"`
	Weight         int       `db:"weight" json:"weight"`
	Active         bool      `db:"active" json:"active"`
	IsStreakReward bool      `db:"is_streak_reward" json:"is_streak_reward"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// WheelSlice is one wheel position's outcome for a single allocation request.
// Slices are request-scoped and never persisted; repeated allocations may
// assign a different coupon to the same merchant.
type WheelSlice struct {
	MerchantID int64  `json:"merchant_id"`
	CouponID   *int64 `json:"coupon_id"`
}

// DrawRecord is the authoritative record of a confirmed draw. Immutable after
// creation except for the IsShared flag, which is set once.
type DrawRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	MerchantID int64     `db:"merchant_id" json:"merchant_id"`
	CouponID   *int64    `db:"coupon_id" json:"coupon_id"`
	Period     *Period   `db:"period" json:"period"`
	IsShared   bool      `db:"is_shared" json:"is_shared"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// QuotaCounter tracks draw consumption for one (user, date, period) bucket.
// A missing row reads as zero; date rollover needs no explicit reset.
// BonusCount raises the effective ceiling and is granted by sharing a draw.
type QuotaCounter struct {
	UserID        int64  `db:"user_id"`
	Date          string `db:"date"`
	Period        Period `db:"period"`
	UsedCount     int    `db:"used_count"`
	RewardedCount int    `db:"rewarded_count"`
	BonusCount    int    `db:"bonus_count"`
}

// QuotaStatus is the remaining-quota view returned to the client.
type QuotaStatus struct {
	Period            Period `json:"period"`
	UsedInPeriod      int    `json:"used_in_period"`
	UsedInDay         int    `json:"used_in_day"`
	RemainingInPeriod int    `json:"remaining_in_period"`
	RemainingInDay    int    `json:"remaining_in_day"`
	IsPrivileged      bool   `json:"is_privileged"`
}

// CheckInRecord is one user's check-in for one date. ConsecutiveDays is
// computed when the row is created and never recomputed retroactively.
// RewardClaimed carries forward along an unbroken streak so the milestone
// bonus is granted at most once per streak.
type CheckInRecord struct {
	UserID          int64     `db:"user_id"`
	Date            string    `db:"date"`
	ConsecutiveDays int       `db:"consecutive_days"`
	RewardClaimed   bool      `db:"reward_claimed"`
	CreatedAt       time.Time `db:"created_at"`
}

// DateKey formats a time as the calendar-date bucket key used by quota
// counters and check-in rows. The caller is responsible for resolving t to
// the configured home timezone first, so schedule matching and day-keyed
// ledgers agree on where midnight falls.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
