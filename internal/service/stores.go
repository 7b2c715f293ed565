// Package service provides business logic implementations.
package service

import (
	"context"

	"github.com/google/uuid"

	"lucky-wheel/internal/model"
)

// Persistence collaborators consumed by the services. The repository package
// provides the pgx-backed implementations; tests substitute in-memory fakes.

// MerchantReader reads merchant records.
type MerchantReader interface {
	GetByID(ctx context.Context, id int64) (*model.Merchant, error)
	ListActive(ctx context.Context) ([]*model.Merchant, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*model.Merchant, error)
}

// CouponReader reads coupon records.
type CouponReader interface {
	GetByID(ctx context.Context, id int64) (*model.Coupon, error)
	ListByMerchantIDs(ctx context.Context, merchantIDs []int64) (map[int64][]model.Coupon, error)
	ListActiveStreakRewards(ctx context.Context) ([]model.Coupon, error)
}

// DrawStore persists the authoritative draw ledger.
type DrawStore interface {
	Create(ctx context.Context, userID, merchantID int64, couponID *int64, period *model.Period) (*model.DrawRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.DrawRecord, error)
	MarkShared(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.DrawRecord, error)
}

// QuotaStore tracks per-user draw consumption.
type QuotaStore interface {
	CheckAndReserve(ctx context.Context, userID int64, date string, period model.Period, rewarded bool, maxPerPeriod, maxPerDay int) error
	DayCounters(ctx context.Context, userID int64, date string) ([]model.QuotaCounter, error)
	GrantBonus(ctx context.Context, userID int64, date string, period model.Period) error
}

// CheckInStore persists daily check-in rows.
type CheckInStore interface {
	Create(ctx context.Context, userID int64, date string, consecutiveDays int, rewardClaimed bool) (*model.CheckInRecord, error)
	GetLatest(ctx context.Context, userID int64) (*model.CheckInRecord, error)
	GetByDate(ctx context.Context, userID int64, date string) (*model.CheckInRecord, error)
	MarkRewardClaimed(ctx context.Context, userID int64, date string) error
}
