package matching

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zerowastelink/platform/internal/geo"
)

// Candidate is a snapshot of an NGO considered for a donation. It carries
// only the fields the scoring terms read, so the engine stays decoupled from
// the storage layer.
type Candidate struct {
	ID                 string
	Name               string
	Latitude           float64
	Longitude          float64
	Capacity           float64
	TotalDeliveries    int
	WorkingHoursStart  string // "HH:MM"
	WorkingHoursEnd    string // "HH:MM"
	PreferredFoodTypes []string
	RatingAverage      float64
}

// Request describes the donation being matched.
type Request struct {
	DonationID string
	FoodType   string
	Latitude   float64
	Longitude  float64
}

// ScoredMatch is one ranked candidate.
type ScoredMatch struct {
	NGO              Candidate `json:"ngo"`
	Score            int       `json:"score"`
	DistanceKm       float64   `json:"distance_km"`
	PickupETAMinutes int       `json:"estimated_pickup_minutes"`
}

// Weights holds the scoring constants. The defaults reproduce the platform's
// production heuristics; tests override individual terms.
type Weights struct {
	ProximityBase     float64 // score at zero distance
	ProximityPerKm    float64 // score lost per kilometer
	CapacityFactor    float64
	CapacityCap       float64
	ExperienceFactor  float64
	ExperienceCap     float64
	AvailabilityBonus float64 // added when the NGO is within working hours
	FoodTypeBonus     float64 // added when the food type is preferred
	RatingFactor      float64 // multiplier on the 0-5 average rating
	AvgSpeedKmh       float64 // assumed urban travel speed for pickup ETA
}

// DefaultWeights returns the standard scoring configuration. Proximity hits
// zero at 10 km, the same radius the candidate query uses.
func DefaultWeights() Weights {
	return Weights{
		ProximityBase:     100,
		ProximityPerKm:    10,
		CapacityFactor:    2,
		CapacityCap:       50,
		ExperienceFactor:  0.5,
		ExperienceCap:     30,
		AvailabilityBonus: 20,
		FoodTypeBonus:     25,
		RatingFactor:      5,
		AvgSpeedKmh:       25,
	}
}

// Engine ranks candidate NGOs for a donation. It is stateless apart from its
// configuration and safe for concurrent use.
type Engine struct {
	weights Weights
	nowFn   func() time.Time
	logger  *zap.Logger
}

func NewEngine(weights Weights, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		weights: weights,
		nowFn:   time.Now,
		logger:  logger,
	}
}

// WithNow overrides the clock used for the availability check. Intended for
// tests.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.nowFn = now
	return e
}

// MatchNGOs scores every candidate against the request and returns them
// ordered by descending score, ties broken by ascending distance and then by
// NGO ID. Candidates with unusable coordinates are skipped rather than
// failing the whole ranking. An empty result is a valid outcome, not an
// error.
func (e *Engine) MatchNGOs(req Request, candidates []Candidate) []ScoredMatch {
	if !geo.Valid(req.Latitude, req.Longitude) {
		e.logger.Warn("donation has no usable coordinates, skipping match",
			zap.String("donation_id", req.DonationID))
		return nil
	}

	matches := make([]ScoredMatch, 0, len(candidates))
	currentHour := e.nowFn().Hour()

	for _, ngo := range candidates {
		if !geo.Valid(ngo.Latitude, ngo.Longitude) {
			e.logger.Debug("candidate has no usable coordinates, excluded",
				zap.String("ngo_id", ngo.ID))
			continue
		}

		distance := geo.Haversine(req.Latitude, req.Longitude, ngo.Latitude, ngo.Longitude)

		score := e.proximityScore(distance)
		score += min64(ngo.Capacity*e.weights.CapacityFactor, e.weights.CapacityCap)
		score += min64(float64(ngo.TotalDeliveries)*e.weights.ExperienceFactor, e.weights.ExperienceCap)
		if withinWorkingHours(currentHour, ngo.WorkingHoursStart, ngo.WorkingHoursEnd) {
			score += e.weights.AvailabilityBonus
		}
		if containsFold(ngo.PreferredFoodTypes, req.FoodType) {
			score += e.weights.FoodTypeBonus
		}
		score += ngo.RatingAverage * e.weights.RatingFactor

		matches = append(matches, ScoredMatch{
			NGO:              ngo,
			Score:            int(score + 0.5),
			DistanceKm:       geo.RoundKm(distance),
			PickupETAMinutes: geo.TravelMinutes(distance, e.weights.AvgSpeedKmh),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].NGO.ID < matches[j].NGO.ID
	})

	return matches
}

// Recommend returns the ranked list plus the top pick. A nil recommendation
// means no candidate could be scored.
func (e *Engine) Recommend(req Request, candidates []Candidate) (*ScoredMatch, []ScoredMatch) {
	matches := e.MatchNGOs(req, candidates)
	if len(matches) == 0 {
		return nil, matches
	}
	top := matches[0]
	return &top, matches
}

func (e *Engine) proximityScore(distanceKm float64) float64 {
	s := e.weights.ProximityBase - distanceKm*e.weights.ProximityPerKm
	if s < 0 {
		return 0
	}
	return s
}

// withinWorkingHours checks the whole-hour window the NGO declared, bounds
// inclusive. An unparsable window counts as closed.
func withinWorkingHours(currentHour int, start, end string) bool {
	startHour, okStart := parseHour(start)
	endHour, okEnd := parseHour(end)
	if !okStart || !okEnd {
		return false
	}
	return currentHour >= startHour && currentHour <= endHour
}

func parseHour(hhmm string) (int, bool) {
	h, _, found := strings.Cut(hhmm, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
