package service

import (
	"context"
	"fmt"
	"time"

	"lucky-wheel/internal/model"
)

// Default quota policy. Configurable; these are the shipped values.
const (
	DefaultMaxPerPeriod = 2
	DefaultMaxPerDay    = 10
)

// QuotaService is the draw-quota ledger: it enforces the per-period and
// per-day ceilings and exposes the remaining-quota view. Privileged accounts
// bypass enforcement entirely and never create or increment counter rows, so
// their usage stays out of quota statistics.
type QuotaService struct {
	store        QuotaStore
	maxPerPeriod int
	maxPerDay    int
	loc          *time.Location
	now          func() time.Time
}

// NewQuotaService creates a new QuotaService instance.
func NewQuotaService(store QuotaStore, maxPerPeriod, maxPerDay int, loc *time.Location) *QuotaService {
	if maxPerPeriod <= 0 {
		maxPerPeriod = DefaultMaxPerPeriod
	}
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxPerDay
	}
	return &QuotaService{
		store:        store,
		maxPerPeriod: maxPerPeriod,
		maxPerDay:    maxPerDay,
		loc:          loc,
		now:          time.Now,
	}
}

// Reserve consumes one draw attempt for today, or returns
// repository.ErrPeriodQuotaExceeded / ErrDailyQuotaExceeded. Privileged
// accounts short-circuit to always-allow without touching the store.
func (s *QuotaService) Reserve(ctx context.Context, userID int64, period model.Period, privileged, rewarded bool) error {
	if privileged {
		return nil
	}
	date := model.DateKey(s.now().In(s.loc))
	return s.store.CheckAndReserve(ctx, userID, date, period, rewarded, s.maxPerPeriod, s.maxPerDay)
}

// Status reports the user's consumption and remaining headroom for a period
// and for the whole day.
func (s *QuotaService) Status(ctx context.Context, userID int64, period model.Period, privileged bool) (*model.QuotaStatus, error) {
	date := model.DateKey(s.now().In(s.loc))
	counters, err := s.store.DayCounters(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota counters: %w", err)
	}

	status := &model.QuotaStatus{Period: period, IsPrivileged: privileged}
	periodCeiling := s.maxPerPeriod
	dayCeiling := s.maxPerDay
	for _, c := range counters {
		status.UsedInDay += c.UsedCount
		dayCeiling += c.BonusCount
		if c.Period == period {
			status.UsedInPeriod = c.UsedCount
			periodCeiling += c.BonusCount
		}
	}

	status.RemainingInPeriod = max(periodCeiling-status.UsedInPeriod, 0)
	status.RemainingInDay = max(dayCeiling-status.UsedInDay, 0)
	return status, nil
}

// GrantShareBonus adds one extra attempt for today in the given period.
func (s *QuotaService) GrantShareBonus(ctx context.Context, userID int64, period model.Period) error {
	date := model.DateKey(s.now().In(s.loc))
	return s.store.GrantBonus(ctx, userID, date, period)
}
