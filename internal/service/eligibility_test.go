package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucky-wheel/internal/model"
)

func merchantWithHours(id int64, schedule string) *model.Merchant {
	return &model.Merchant{
		ID:       id,
		Name:     "m",
		Active:   true,
		Schedule: json.RawMessage(schedule),
	}
}

func TestListEligible(t *testing.T) {
	merchants := newFakeMerchants(
		merchantWithHours(1, `{"friday": "10:00-22:00"}`),
		merchantWithHours(2, `{"friday": "14:00-17:00"}`),
		merchantWithHours(3, `{"thursday": "20:00-05:00"}`),
		merchantWithHours(4, `not json`),
		&model.Merchant{ID: 5, Name: "off", Active: false, Schedule: json.RawMessage(`{"friday": "00:00-24:00"}`)},
	)

	s := NewEligibilityService(merchants, time.UTC)
	// Friday noon: 1 is open, 2 opens at 14:00, 3's Thursday overnight shift
	// ended at 05:00, 4 fails open, 5 is inactive.
	s.now = fixedClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	eligible, err := s.ListEligible(context.Background())
	require.NoError(t, err)

	ids := make([]int64, 0, len(eligible))
	for _, m := range eligible {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int64{1, 4}, ids)
}

func TestListEligible_OvernightWrap(t *testing.T) {
	merchants := newFakeMerchants(
		merchantWithHours(1, `{"thursday": "20:00-05:00"}`),
	)

	s := NewEligibilityService(merchants, time.UTC)
	// Friday 02:00 still belongs to Thursday's late shift.
	s.now = fixedClock(time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC))

	eligible, err := s.ListEligible(context.Background())
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, int64(1), eligible[0].ID)
}

func TestListEligible_TimezoneResolution(t *testing.T) {
	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	merchants := newFakeMerchants(
		merchantWithHours(1, `{"friday": "10:00-22:00"}`),
	)

	s := NewEligibilityService(merchants, taipei)
	// 04:00 UTC Friday is 12:00 Friday in Taipei.
	s.now = fixedClock(time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC))

	eligible, err := s.ListEligible(context.Background())
	require.NoError(t, err)
	assert.Len(t, eligible, 1)
}

func TestListEligible_StoreError(t *testing.T) {
	merchants := newFakeMerchants()
	merchants.err = assert.AnError

	s := NewEligibilityService(merchants, time.UTC)
	_, err := s.ListEligible(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
