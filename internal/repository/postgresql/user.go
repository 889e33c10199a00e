package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/zerowastelink/platform/internal/db"
	"github.com/zerowastelink/platform/internal/repository"
	"github.com/zerowastelink/platform/internal/storage"
)

type UserRepo struct {
	db db.DB
}

func NewUserRepo(db db.DB) storage.UserRepository {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *repository.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
        INSERT INTO users (
            id, name, email, phone, password_hash, role, latitude, longitude, is_active,
            organization_name, registration_number, tax_id, capacity,
            working_hours_start, working_hours_end, preferred_food_types,
            vehicle_type, availability, rating_average, rating_count,
            total_donations, total_pickups, total_deliveries, meals_provided, carbon_saved_kg,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
                  $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
    `,
		u.ID, u.Name, u.Email, u.Phone, string(hashedPassword), u.Role, u.Latitude, u.Longitude, u.IsActive,
		u.OrganizationName, u.RegistrationNumber, u.TaxID, u.Capacity,
		u.WorkingHoursStart, u.WorkingHoursEnd, u.PreferredFoodTypes,
		u.VehicleType, u.Availability, u.RatingAverage, u.RatingCount,
		u.TotalDonations, u.TotalPickups, u.TotalDeliveries, u.MealsProvided, u.CarbonSavedKg,
		u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	var u repository.User
	err := r.db.Get(ctx, &u, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ValidateUser(ctx context.Context, email, password string) (bool, error) {
	var hashedPassword string
	err := r.db.ExecQueryRow(ctx,
		"SELECT password_hash FROM users WHERE email = $1 AND is_active", email).Scan(&hashedPassword)
	if err != nil {
		return false, errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// FindActiveNGOsNear pre-filters candidates with a great-circle distance
// computed in SQL so the ranking layer only ever sees NGOs inside the search
// radius. The least() clamp guards acos against floating point drift on
// near-identical coordinates.
func (r *UserRepo) FindActiveNGOsNear(ctx context.Context, lat, lng, radiusKm float64) ([]*repository.User, error) {
	query := `
        SELECT * FROM users
        WHERE role = 'ngo'
          AND is_active
          AND 6371 * acos(least(1.0,
                cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2))
              + sin(radians($1)) * sin(radians(latitude)))) < $3
    `
	var users []*repository.User
	err := r.db.Select(ctx, &users, query, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to find active ngos near (%f, %f): %w", lat, lng, err)
	}
	return users, nil
}

func (r *UserRepo) IncrementStatsTx(ctx context.Context, tx db.Tx, userID string, donations, pickups, deliveries, meals int, carbonKg float64) error {
	_, err := tx.Exec(ctx, `
        UPDATE users
        SET
            total_donations = total_donations + $1,
            total_pickups = total_pickups + $2,
            total_deliveries = total_deliveries + $3,
            meals_provided = meals_provided + $4,
            carbon_saved_kg = carbon_saved_kg + $5,
            updated_at = now()
        WHERE id = $6
    `, donations, pickups, deliveries, meals, carbonKg, userID)
	return err
}
