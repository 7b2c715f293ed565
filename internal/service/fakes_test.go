package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"lucky-wheel/internal/model"
	"lucky-wheel/internal/repository"
)

// In-memory stand-ins for the repository layer. They mirror the pgx
// implementations' error contracts so the services under test cannot tell
// the difference.

type fakeMerchants struct {
	byID map[int64]*model.Merchant
	err  error
}

func newFakeMerchants(ms ...*model.Merchant) *fakeMerchants {
	f := &fakeMerchants{byID: make(map[int64]*model.Merchant)}
	for _, m := range ms {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMerchants) GetByID(_ context.Context, id int64) (*model.Merchant, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrMerchantNotFound
	}
	return m, nil
}

func (f *fakeMerchants) ListActive(_ context.Context) ([]*model.Merchant, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Merchant, 0, len(f.byID))
	for _, m := range f.byID {
		if m.Active {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMerchants) ListByIDs(_ context.Context, ids []int64) ([]*model.Merchant, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Merchant, 0, len(ids))
	for _, id := range ids {
		if m, ok := f.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeCoupons struct {
	byID map[int64]model.Coupon
	err  error
}

func newFakeCoupons(cs ...model.Coupon) *fakeCoupons {
	f := &fakeCoupons{byID: make(map[int64]model.Coupon)}
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCoupons) GetByID(_ context.Context, id int64) (*model.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrCouponNotFound
	}
	return &c, nil
}

func (f *fakeCoupons) ListByMerchantIDs(_ context.Context, merchantIDs []int64) (map[int64][]model.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[int64]bool, len(merchantIDs))
	for _, id := range merchantIDs {
		want[id] = true
	}
	out := make(map[int64][]model.Coupon)
	for _, c := range f.byID {
		if want[c.MerchantID] {
			out[c.MerchantID] = append(out[c.MerchantID], c)
		}
	}
	for id := range out {
		sort.Slice(out[id], func(i, j int) bool { return out[id][i].ID < out[id][j].ID })
	}
	return out, nil
}

func (f *fakeCoupons) ListActiveStreakRewards(_ context.Context) ([]model.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Coupon, 0)
	for _, c := range f.byID {
		if c.IsStreakReward && c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeDraws struct {
	byID      map[uuid.UUID]*model.DrawRecord
	order     []uuid.UUID
	createErr error
}

func newFakeDraws() *fakeDraws {
	return &fakeDraws{byID: make(map[uuid.UUID]*model.DrawRecord)}
}

func (f *fakeDraws) Create(_ context.Context, userID, merchantID int64, couponID *int64, period *model.Period) (*model.DrawRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	rec := &model.DrawRecord{
		ID:         uuid.New(),
		UserID:     userID,
		MerchantID: merchantID,
		CouponID:   couponID,
		Period:     period,
	}
	f.byID[rec.ID] = rec
	f.order = append(f.order, rec.ID)
	return rec, nil
}

func (f *fakeDraws) GetByID(_ context.Context, id uuid.UUID) (*model.DrawRecord, error) {
	rec, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrDrawNotFound
	}
	return rec, nil
}

func (f *fakeDraws) MarkShared(_ context.Context, id uuid.UUID) error {
	rec, ok := f.byID[id]
	if !ok {
		return repository.ErrDrawNotFound
	}
	if rec.IsShared {
		return repository.ErrAlreadyShared
	}
	rec.IsShared = true
	return nil
}

func (f *fakeDraws) ListByUser(_ context.Context, userID int64, limit int) ([]*model.DrawRecord, error) {
	out := make([]*model.DrawRecord, 0)
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		if rec := f.byID[f.order[i]]; rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeDraws) last() *model.DrawRecord {
	if len(f.order) == 0 {
		return nil
	}
	return f.byID[f.order[len(f.order)-1]]
}

// fakeQuotaStore reimplements the ceiling arithmetic of the SQL store so
// quota behavior can be exercised without a database.
type fakeQuotaStore struct {
	counters   map[string]*model.QuotaCounter
	reserveErr error
	reserves   int
}

func newFakeQuotaStore() *fakeQuotaStore {
	return &fakeQuotaStore{counters: make(map[string]*model.QuotaCounter)}
}

func quotaKey(userID int64, date string, period model.Period) string {
	return fmt.Sprintf("%d|%s|%s", userID, date, period)
}

func (f *fakeQuotaStore) counter(userID int64, date string, period model.Period) *model.QuotaCounter {
	key := quotaKey(userID, date, period)
	c, ok := f.counters[key]
	if !ok {
		c = &model.QuotaCounter{UserID: userID, Date: date, Period: period}
		f.counters[key] = c
	}
	return c
}

func (f *fakeQuotaStore) CheckAndReserve(_ context.Context, userID int64, date string, period model.Period, rewarded bool, maxPerPeriod, maxPerDay int) error {
	f.reserves++
	if f.reserveErr != nil {
		return f.reserveErr
	}

	usedInDay, bonusInDay := 0, 0
	for _, c := range f.counters {
		if c.UserID == userID && c.Date == date {
			usedInDay += c.UsedCount
			bonusInDay += c.BonusCount
		}
	}
	target := f.counter(userID, date, period)
	if target.UsedCount >= maxPerPeriod+target.BonusCount {
		return repository.ErrPeriodQuotaExceeded
	}
	if usedInDay >= maxPerDay+bonusInDay {
		return repository.ErrDailyQuotaExceeded
	}

	target.UsedCount++
	if rewarded {
		target.RewardedCount++
	}
	return nil
}

func (f *fakeQuotaStore) DayCounters(_ context.Context, userID int64, date string) ([]model.QuotaCounter, error) {
	out := make([]model.QuotaCounter, 0)
	for _, c := range f.counters {
		if c.UserID == userID && c.Date == date {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (f *fakeQuotaStore) GrantBonus(_ context.Context, userID int64, date string, period model.Period) error {
	f.counter(userID, date, period).BonusCount++
	return nil
}

type fakeCheckIns struct {
	rows map[string]*model.CheckInRecord
}

func newFakeCheckIns() *fakeCheckIns {
	return &fakeCheckIns{rows: make(map[string]*model.CheckInRecord)}
}

func checkinKey(userID int64, date string) string {
	return fmt.Sprintf("%d|%s", userID, date)
}

func (f *fakeCheckIns) Create(_ context.Context, userID int64, date string, consecutiveDays int, rewardClaimed bool) (*model.CheckInRecord, error) {
	key := checkinKey(userID, date)
	if _, ok := f.rows[key]; ok {
		return nil, repository.ErrAlreadyCheckedIn
	}
	rec := &model.CheckInRecord{
		UserID:          userID,
		Date:            date,
		ConsecutiveDays: consecutiveDays,
		RewardClaimed:   rewardClaimed,
	}
	f.rows[key] = rec
	return rec, nil
}

func (f *fakeCheckIns) GetLatest(_ context.Context, userID int64) (*model.CheckInRecord, error) {
	var latest *model.CheckInRecord
	for _, rec := range f.rows {
		if rec.UserID != userID {
			continue
		}
		if latest == nil || rec.Date > latest.Date {
			latest = rec
		}
	}
	return latest, nil
}

func (f *fakeCheckIns) GetByDate(_ context.Context, userID int64, date string) (*model.CheckInRecord, error) {
	rec, ok := f.rows[checkinKey(userID, date)]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (f *fakeCheckIns) MarkRewardClaimed(_ context.Context, userID int64, date string) error {
	rec, ok := f.rows[checkinKey(userID, date)]
	if !ok {
		return fmt.Errorf("no check-in row for user %d on %s", userID, date)
	}
	rec.RewardClaimed = true
	return nil
}
