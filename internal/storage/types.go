package storage

import (
	"time"

	"github.com/zerowastelink/platform/internal/impact"
	"github.com/zerowastelink/platform/internal/matching"
)

type FoodType string

const (
	FoodCookedMeals   FoodType = "cooked-meals"
	FoodFreshProduce  FoodType = "fresh-produce"
	FoodPackaged      FoodType = "packaged-food"
	FoodDairy         FoodType = "dairy-products"
	FoodBakedGoods    FoodType = "baked-goods"
	FoodBeverages     FoodType = "beverages"
	FoodFrozen        FoodType = "frozen-food"
	FoodCannedGoods   FoodType = "canned-goods"
	FoodGrainsCereals FoodType = "grains-cereals"
	FoodSnacks        FoodType = "snacks"
	FoodDesserts      FoodType = "desserts"
	FoodOther         FoodType = "other"
)

var foodTypes = map[FoodType]struct{}{
	FoodCookedMeals: {}, FoodFreshProduce: {}, FoodPackaged: {}, FoodDairy: {},
	FoodBakedGoods: {}, FoodBeverages: {}, FoodFrozen: {}, FoodCannedGoods: {},
	FoodGrainsCereals: {}, FoodSnacks: {}, FoodDesserts: {}, FoodOther: {},
}

func (f FoodType) Valid() bool {
	_, ok := foodTypes[f]
	return ok
}

type Unit string

const (
	UnitKg       Unit = "kg"
	UnitLbs      Unit = "lbs"
	UnitLiters   Unit = "liters"
	UnitGallons  Unit = "gallons"
	UnitPieces   Unit = "pieces"
	UnitPortions Unit = "portions"
	UnitServings Unit = "servings"
	UnitBoxes    Unit = "boxes"
	UnitBags     Unit = "bags"
)

var units = map[Unit]struct{}{
	UnitKg: {}, UnitLbs: {}, UnitLiters: {}, UnitGallons: {}, UnitPieces: {},
	UnitPortions: {}, UnitServings: {}, UnitBoxes: {}, UnitBags: {},
}

func (u Unit) Valid() bool {
	_, ok := units[u]
	return ok
}

type Role string

const (
	RoleDonor     Role = "donor"
	RoleNGO       Role = "ngo"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type PickupWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type DietaryInfo struct {
	IsVegetarian bool `json:"is_vegetarian"`
	IsVegan      bool `json:"is_vegan"`
	IsGlutenFree bool `json:"is_gluten_free"`
	IsHalal      bool `json:"is_halal"`
	IsKosher     bool `json:"is_kosher"`
}

// Donation is the API-facing shape of a donation.
type Donation struct {
	ID                  string       `json:"id"`
	DonorID             string       `json:"donor_id"`
	AssignedNGOID       string       `json:"assigned_ngo_id,omitempty"`
	AssignedVolunteerID string       `json:"assigned_volunteer_id,omitempty"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	FoodType            FoodType     `json:"food_type"`
	Cuisine             string       `json:"cuisine,omitempty"`
	Quantity            Quantity     `json:"quantity"`
	Location            Location     `json:"location"`
	PickupWindow        PickupWindow `json:"pickup_window"`
	ExpiresAt           time.Time    `json:"expires_at"`
	Status              Status       `json:"status"`
	EstimatedMeals      int          `json:"estimated_meals"`
	Dietary             DietaryInfo  `json:"dietary_info"`
	Notes               string       `json:"notes,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

type HistoryEntry struct {
	DonationID string    `json:"donation_id"`
	Status     string    `json:"status"`
	ChangedAt  time.Time `json:"changed_at"`
}

// MatchResult is the ranked recommendation list for one donation.
type MatchResult struct {
	DonationID     string                 `json:"donation_id"`
	Matches        []matching.ScoredMatch `json:"matches"`
	Recommendation *matching.ScoredMatch  `json:"recommendation,omitempty"`
	Insights       []string               `json:"insights,omitempty"`
}

// ImpactReport aggregates a user's activity over a period. All figures are
// estimates.
type ImpactReport struct {
	UserID          string               `json:"user_id"`
	Name            string               `json:"name"`
	Role            Role                 `json:"role"`
	Period          string               `json:"period"`
	TotalDonations  int                  `json:"total_donations"`
	TotalWeightKg   float64              `json:"total_weight_kg"`
	Impact          impact.Impact        `json:"impact"`
	ByFoodType      map[string]int       `json:"by_food_type"`
	ByStatus        map[string]int       `json:"by_status"`
	MonthlyTrend    map[string]int       `json:"monthly_trend"`
	Achievements    []impact.Achievement `json:"achievements"`
	Recommendations []string             `json:"recommendations"`
	Insights        []string             `json:"insights"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// ListFilter narrows donation listings.
type ListFilter struct {
	Status   Status
	FoodType FoodType
	DonorID  string
	Page     int
	Limit    int
}
