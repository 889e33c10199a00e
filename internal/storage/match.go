package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zerowastelink/platform/internal/matching"
	"github.com/zerowastelink/platform/internal/metrics"
	"github.com/zerowastelink/platform/internal/repository"
)

// Match ranks active NGOs near the donation and returns the ordered list
// plus a top recommendation. An empty list is a valid outcome meaning "no
// match found yet". A failing insight provider degrades to canned insights;
// it never fails the match.
func (s *DonationService) Match(ctx context.Context, donationID string) (*MatchResult, error) {
	d, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if Status(d.Status).Terminal() {
		return nil, fmt.Errorf("%w: donation %s is %s", ErrInvalidInput, donationID, d.Status)
	}

	ngos, err := s.locator.FindActiveNGOsNear(ctx, d.Latitude, d.Longitude, s.searchRadiusKm)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("match").Inc()
		return nil, fmt.Errorf("failed to find candidate NGOs: %w", err)
	}

	req := matching.Request{
		DonationID: d.ID,
		FoodType:   d.FoodType,
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
	}
	top, ranked := s.engine.Recommend(req, toCandidates(ngos))
	metrics.MatchesComputedTotal.Inc()

	insights := matching.InsightsOrFallback(ctx, s.insights, matching.InsightRequest{
		Role:            string(RoleDonor),
		TotalDonations:  1,
		TotalQuantityKg: d.QuantityAmount,
		FoodTypes:       []string{d.FoodType},
	}, s.logger)

	s.logger.Info("computed NGO matches",
		zap.String("donation_id", d.ID),
		zap.Int("candidates", len(ngos)),
		zap.Int("ranked", len(ranked)))

	return &MatchResult{
		DonationID:     d.ID,
		Matches:        ranked,
		Recommendation: top,
		Insights:       insights,
	}, nil
}

func toCandidates(ngos []*repository.User) []matching.Candidate {
	out := make([]matching.Candidate, 0, len(ngos))
	for _, n := range ngos {
		out = append(out, matching.Candidate{
			ID:                 n.ID,
			Name:               n.OrganizationName,
			Latitude:           n.Latitude,
			Longitude:          n.Longitude,
			Capacity:           n.Capacity,
			TotalDeliveries:    n.TotalDeliveries,
			WorkingHoursStart:  n.WorkingHoursStart,
			WorkingHoursEnd:    n.WorkingHoursEnd,
			PreferredFoodTypes: n.PreferredFoodTypes,
			RatingAverage:      n.RatingAverage,
		})
	}
	return out
}
