package matching

import (
	"context"

	"go.uber.org/zap"
)

// InsightRequest summarises a user's activity for the insight provider.
type InsightRequest struct {
	Role            string
	TotalDonations  int
	TotalQuantityKg float64
	FoodTypes       []string
}

// InsightProvider supplies qualitative remarks that accompany match results
// and impact reports. Insights are advisory only and never influence
// ranking.
type InsightProvider interface {
	Insights(ctx context.Context, req InsightRequest) ([]string, error)
}

// StaticInsightProvider returns a fixed insight set. It is the default
// provider and the fallback when an external one fails, so responses stay
// deterministic without network access.
type StaticInsightProvider struct{}

func NewStaticInsightProvider() *StaticInsightProvider {
	return &StaticInsightProvider{}
}

var cannedInsights = []string{
	"Peak donation hours are 6-8 PM",
	"Vegetarian items have 40% less waste",
	"Your contributions have significant environmental impact",
	"Consider increasing donation frequency during weekends",
	"Partner with more NGOs to expand reach",
}

func (p *StaticInsightProvider) Insights(_ context.Context, _ InsightRequest) ([]string, error) {
	out := make([]string, len(cannedInsights))
	copy(out, cannedInsights)
	return out, nil
}

// InsightsOrFallback asks the provider for insights and falls back to the
// canned set on any failure. A broken provider must never fail the request
// it decorates.
func InsightsOrFallback(ctx context.Context, provider InsightProvider, req InsightRequest, logger *zap.Logger) []string {
	if provider == nil {
		provider = NewStaticInsightProvider()
	}
	insights, err := provider.Insights(ctx, req)
	if err != nil || len(insights) == 0 {
		if err != nil && logger != nil {
			logger.Warn("insight provider failed, using canned insights", zap.Error(err))
		}
		fallback, _ := NewStaticInsightProvider().Insights(ctx, req)
		return fallback
	}
	return insights
}
