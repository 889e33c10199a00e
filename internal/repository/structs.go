package repository

import (
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("not found")

type Donation struct {
	ID                  string    `db:"id"`
	DonorID             string    `db:"donor_id"`
	AssignedNGOID       *string   `db:"assigned_ngo_id"`
	AssignedVolunteerID *string   `db:"assigned_volunteer_id"`
	Title               string    `db:"title"`
	Description         string    `db:"description"`
	FoodType            string    `db:"food_type"`
	Cuisine             string    `db:"cuisine"`
	QuantityAmount      float64   `db:"quantity_amount"`
	QuantityUnit        string    `db:"quantity_unit"`
	Latitude            float64   `db:"latitude"`
	Longitude           float64   `db:"longitude"`
	PickupStart         time.Time `db:"pickup_start"`
	PickupEnd           time.Time `db:"pickup_end"`
	ExpiresAt           time.Time `db:"expires_at"`
	Status              string    `db:"status"`
	EstimatedMeals      int       `db:"estimated_meals"`
	IsVegetarian        bool      `db:"is_vegetarian"`
	IsVegan             bool      `db:"is_vegan"`
	IsGlutenFree        bool      `db:"is_gluten_free"`
	IsHalal             bool      `db:"is_halal"`
	IsKosher            bool      `db:"is_kosher"`
	Notes               string    `db:"notes"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type User struct {
	ID                 string    `db:"id"`
	Name               string    `db:"name"`
	Email              string    `db:"email"`
	Phone              string    `db:"phone"`
	PasswordHash       string    `db:"password_hash"`
	Role               string    `db:"role"`
	Latitude           float64   `db:"latitude"`
	Longitude          float64   `db:"longitude"`
	IsActive           bool      `db:"is_active"`
	OrganizationName   string    `db:"organization_name"`
	RegistrationNumber string    `db:"registration_number"`
	TaxID              string    `db:"tax_id"`
	Capacity           float64   `db:"capacity"`
	WorkingHoursStart  string    `db:"working_hours_start"`
	WorkingHoursEnd    string    `db:"working_hours_end"`
	PreferredFoodTypes []string  `db:"preferred_food_types"`
	VehicleType        string    `db:"vehicle_type"`
	Availability       string    `db:"availability"`
	RatingAverage      float64   `db:"rating_average"`
	RatingCount        int       `db:"rating_count"`
	TotalDonations     int       `db:"total_donations"`
	TotalPickups       int       `db:"total_pickups"`
	TotalDeliveries    int       `db:"total_deliveries"`
	MealsProvided      int       `db:"meals_provided"`
	CarbonSavedKg      float64   `db:"carbon_saved_kg"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type HistoryEntry struct {
	ID         int64     `db:"id"`
	DonationID string    `db:"donation_id"`
	Status     string    `db:"status"`
	ChangedAt  time.Time `db:"changed_at"`
}
