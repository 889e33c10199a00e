// Package impact derives reporting figures (meals, carbon, monetary value)
// from donation quantities. Every number produced here is a rough estimate
// built on configurable heuristic constants; nothing downstream may treat
// them as precise.
package impact

import "math"

// MealEstimator converts a donation quantity into an estimated meal count
// using a food-type yield table.
type MealEstimator struct {
	multipliers map[string]float64
	// servingsMultiplier replaces the cooked-meals yield when the quantity
	// is already expressed in servings.
	servingsMultiplier float64
	defaultMultiplier  float64
}

// NewMealEstimator returns an estimator with the standard yield table.
func NewMealEstimator() *MealEstimator {
	return &MealEstimator{
		multipliers: map[string]float64{
			"cooked-meals":   0.8,
			"fresh-produce":  0.6,
			"packaged-food":  0.9,
			"dairy-products": 0.3,
		},
		servingsMultiplier: 1.0,
		defaultMultiplier:  0.7,
	}
}

// SetMultiplier overrides the yield for one food type. Intended for tests
// and configuration, not request-time mutation.
func (e *MealEstimator) SetMultiplier(foodType string, multiplier float64) {
	e.multipliers[foodType] = multiplier
}

// EstimateMeals applies the food-type yield to the quantity and floors the
// result. The result is never negative; a non-positive amount estimates zero
// meals. Callers must re-invoke this whenever quantity or food type change,
// it is a pure function of the current values.
func (e *MealEstimator) EstimateMeals(amount float64, unit, foodType string) int {
	if amount <= 0 {
		return 0
	}

	multiplier, ok := e.multipliers[foodType]
	if !ok {
		multiplier = e.defaultMultiplier
	}
	if foodType == "cooked-meals" && unit == "servings" {
		multiplier = e.servingsMultiplier
	}

	return int(math.Floor(amount * multiplier))
}

// Config holds the per-kilogram conversion constants for aggregate impact
// figures. The values are illustrative approximations carried over from the
// platform's reporting screens.
type Config struct {
	MealsPerKg  float64
	CarbonPerKg float64 // kg CO2 avoided per kg of food redistributed
	PeoplePerKg float64
	ValuePerKg  float64 // local currency (INR) per kg
}

func DefaultConfig() Config {
	return Config{
		MealsPerKg:  2.5,
		CarbonPerKg: 2.3,
		PeoplePerKg: 1.8,
		ValuePerKg:  150,
	}
}

// Impact aggregates the headline reporting figures for a total redistributed
// weight.
type Impact struct {
	Meals         int     `json:"meals_provided"`
	CarbonSavedKg float64 `json:"carbon_saved_kg"`
	PeopleHelped  int     `json:"people_helped"`
	ValueSaved    int     `json:"value_saved"`
}

// Estimate scales the configured constants by the total weight in
// kilograms. Negative input clamps to zero.
func (c Config) Estimate(totalKg float64) Impact {
	if totalKg < 0 {
		totalKg = 0
	}
	return Impact{
		Meals:         int(math.Floor(totalKg * c.MealsPerKg)),
		CarbonSavedKg: math.Round(totalKg*c.CarbonPerKg*100) / 100,
		PeopleHelped:  int(math.Floor(totalKg * c.PeoplePerKg)),
		ValueSaved:    int(math.Floor(totalKg * c.ValuePerKg)),
	}
}
