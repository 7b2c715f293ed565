package service

import (
	"context"
	"errors"
	"testing"

	"pgregory.net/rapid"

	"lucky-wheel/internal/model"
	"lucky-wheel/internal/repository"
)

// TestQuotaLedgerInvariants drives random reserve and bonus sequences
// through the service and checks that usage never escapes the ceilings and
// that the status view always agrees with the ledger.
func TestQuotaLedgerInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxPerPeriod := rapid.IntRange(1, 4).Draw(t, "maxPerPeriod")
		maxPerDay := rapid.IntRange(maxPerPeriod, 12).Draw(t, "maxPerDay")

		store := newFakeQuotaStore()
		svc := newTestQuotaService(store, maxPerPeriod, maxPerDay)
		ctx := context.Background()

		periods := model.Periods()
		used := make(map[model.Period]int)
		bonus := make(map[model.Period]int)
		usedInDay, bonusInDay := 0, 0

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			period := periods[rapid.IntRange(0, len(periods)-1).Draw(t, "period")]

			if rapid.Float64Range(0, 1).Draw(t, "action") < 0.2 {
				if err := svc.GrantShareBonus(ctx, 1, period); err != nil {
					t.Fatalf("bonus grant failed: %v", err)
				}
				bonus[period]++
				bonusInDay++
				continue
			}

			err := svc.Reserve(ctx, 1, period, false, false)
			periodFull := used[period] >= maxPerPeriod+bonus[period]
			dayFull := usedInDay >= maxPerDay+bonusInDay

			switch {
			case periodFull:
				if !errors.Is(err, repository.ErrPeriodQuotaExceeded) {
					t.Fatalf("expected period quota error, got %v", err)
				}
			case dayFull:
				if !errors.Is(err, repository.ErrDailyQuotaExceeded) {
					t.Fatalf("expected daily quota error, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("reserve with headroom failed: %v", err)
				}
				used[period]++
				usedInDay++
			}

			status, err := svc.Status(ctx, 1, period, false)
			if err != nil {
				t.Fatalf("status failed: %v", err)
			}
			if status.UsedInPeriod != used[period] {
				t.Fatalf("status period usage %d, ledger %d", status.UsedInPeriod, used[period])
			}
			if status.UsedInDay != usedInDay {
				t.Fatalf("status day usage %d, ledger %d", status.UsedInDay, usedInDay)
			}
			if status.RemainingInPeriod < 0 || status.RemainingInDay < 0 {
				t.Fatalf("negative remaining quota: %+v", status)
			}
			if status.RemainingInPeriod != maxPerPeriod+bonus[period]-used[period] {
				t.Fatalf("period headroom %d, want %d", status.RemainingInPeriod, maxPerPeriod+bonus[period]-used[period])
			}
		}
	})
}
