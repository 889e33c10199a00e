package storage

import (
	"context"
	"fmt"

	"github.com/zerowastelink/platform/internal/impact"
	"github.com/zerowastelink/platform/internal/matching"
)

// ImpactReport aggregates a user's donations over the period ("month",
// "quarter" or "year") into estimated impact figures with breakdowns. The
// numbers are reporting approximations, not measurements.
func (s *DonationService) ImpactReport(ctx context.Context, userID, period string) (*ImpactReport, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	now := s.nowFn().UTC()
	since := now
	switch period {
	case "", "month":
		period = "month"
		since = now.AddDate(0, -1, 0)
	case "quarter":
		since = now.AddDate(0, -3, 0)
	case "year":
		since = now.AddDate(-1, 0, 0)
	default:
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}

	donations, err := s.donations.GetByParticipant(ctx, userID, user.Role, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get donations for report: %w", err)
	}

	report := &ImpactReport{
		UserID:          user.ID,
		Name:            user.Name,
		Role:            Role(user.Role),
		Period:          period,
		TotalDonations:  len(donations),
		ByFoodType:      make(map[string]int),
		ByStatus:        make(map[string]int),
		MonthlyTrend:    make(map[string]int),
		Recommendations: impact.Recommendations(user.Role),
		GeneratedAt:     now,
	}

	var totalKg float64
	foodTypes := make([]string, 0, len(donations))
	for _, d := range donations {
		totalKg += impact.ToKilograms(d.QuantityAmount, d.QuantityUnit)
		report.ByFoodType[d.FoodType]++
		report.ByStatus[d.Status]++
		report.MonthlyTrend[d.CreatedAt.Format("2006-01")]++
		foodTypes = append(foodTypes, d.FoodType)
	}

	report.TotalWeightKg = totalKg
	report.Impact = s.impactCfg.Estimate(totalKg)
	report.Achievements = impact.Achievements(user.TotalDonations, user.MealsProvided, user.CarbonSavedKg)
	report.Insights = matching.InsightsOrFallback(ctx, s.insights, matching.InsightRequest{
		Role:            user.Role,
		TotalDonations:  len(donations),
		TotalQuantityKg: totalKg,
		FoodTypes:       foodTypes,
	}, s.logger)

	return report, nil
}
