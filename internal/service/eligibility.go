package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/model"
	"lucky-wheel/internal/schedule"
)

// EligibilityService decides which merchants may appear on the wheel right
// now: active merchants whose weekly schedule is open at the current instant
// in the home timezone.
type EligibilityService struct {
	merchants MerchantReader
	loc       *time.Location
	now       func() time.Time
}

// NewEligibilityService creates a new EligibilityService instance.
func NewEligibilityService(merchants MerchantReader, loc *time.Location) *EligibilityService {
	return &EligibilityService{
		merchants: merchants,
		loc:       loc,
		now:       time.Now,
	}
}

// ListEligible returns the merchants currently open. No ordering beyond the
// stable id order of the read; presentation ordering is the client's concern.
func (s *EligibilityService) ListEligible(ctx context.Context) ([]*model.Merchant, error) {
	merchants, err := s.merchants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active merchants: %w", err)
	}

	at := s.now().In(s.loc)
	eligible := make([]*model.Merchant, 0, len(merchants))
	for _, m := range merchants {
		w := schedule.ParseWeekly(m.Schedule)
		if w.FailedOpen() {
			log.Warn().
				Int64("merchant_id", m.ID).
				Msg("merchant schedule unparseable, treating as open")
		}
		if w.IsOpenAt(at) {
			eligible = append(eligible, m)
		}
	}

	return eligible, nil
}
