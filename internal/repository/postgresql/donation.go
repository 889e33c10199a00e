package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/zerowastelink/platform/internal/db"
	"github.com/zerowastelink/platform/internal/repository"
	"github.com/zerowastelink/platform/internal/storage"
)

type DonationRepo struct {
	db db.DB
}

func NewDonationRepo(db db.DB) storage.DonationRepository {
	return &DonationRepo{db: db}
}

const donationInsertQuery = `
        INSERT INTO donations (
            id, donor_id, assigned_ngo_id, assigned_volunteer_id, title, description,
            food_type, cuisine, quantity_amount, quantity_unit, latitude, longitude,
            pickup_start, pickup_end, expires_at, status, estimated_meals,
            is_vegetarian, is_vegan, is_gluten_free, is_halal, is_kosher, notes,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
                  $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
    `

func donationInsertArgs(d *repository.Donation) []interface{} {
	return []interface{}{
		d.ID, d.DonorID, d.AssignedNGOID, d.AssignedVolunteerID, d.Title, d.Description,
		d.FoodType, d.Cuisine, d.QuantityAmount, d.QuantityUnit, d.Latitude, d.Longitude,
		d.PickupStart, d.PickupEnd, d.ExpiresAt, d.Status, d.EstimatedMeals,
		d.IsVegetarian, d.IsVegan, d.IsGlutenFree, d.IsHalal, d.IsKosher, d.Notes,
		d.CreatedAt, d.UpdatedAt,
	}
}

func (r *DonationRepo) Create(ctx context.Context, d *repository.Donation) error {
	_, err := r.db.Exec(ctx, donationInsertQuery, donationInsertArgs(d)...)
	return err
}

func (r *DonationRepo) CreateTx(ctx context.Context, tx db.Tx, d *repository.Donation) error {
	_, err := tx.Exec(ctx, donationInsertQuery, donationInsertArgs(d)...)
	return err
}

func (r *DonationRepo) GetByID(ctx context.Context, id string) (*repository.Donation, error) {
	var d repository.Donation
	err := r.db.Get(ctx, &d, "SELECT * FROM donations WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Donation, error) {
	var d repository.Donation
	err := tx.Get(ctx, &d, "SELECT * FROM donations WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &d, nil
}

const donationUpdateQuery = `
        UPDATE donations
        SET
            assigned_ngo_id = $1,
            assigned_volunteer_id = $2,
            title = $3,
            description = $4,
            quantity_amount = $5,
            quantity_unit = $6,
            pickup_start = $7,
            pickup_end = $8,
            expires_at = $9,
            status = $10,
            estimated_meals = $11,
            notes = $12,
            updated_at = $13
        WHERE id = $14
    `

func donationUpdateArgs(d *repository.Donation) []interface{} {
	return []interface{}{
		d.AssignedNGOID, d.AssignedVolunteerID, d.Title, d.Description,
		d.QuantityAmount, d.QuantityUnit, d.PickupStart, d.PickupEnd,
		d.ExpiresAt, d.Status, d.EstimatedMeals, d.Notes, d.UpdatedAt, d.ID,
	}
}

func (r *DonationRepo) Update(ctx context.Context, d *repository.Donation) error {
	_, err := r.db.Exec(ctx, donationUpdateQuery, donationUpdateArgs(d)...)
	return err
}

func (r *DonationRepo) UpdateTx(ctx context.Context, tx db.Tx, d *repository.Donation) error {
	_, err := tx.Exec(ctx, donationUpdateQuery, donationUpdateArgs(d)...)
	return err
}

func (r *DonationRepo) GetByDonorID(ctx context.Context, donorID string, limit int, activeOnly bool) ([]*repository.Donation, error) {
	query := "SELECT * FROM donations WHERE donor_id = $1"
	args := []interface{}{donorID}

	if activeOnly {
		query += " AND status NOT IN ('delivered', 'cancelled')"
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var donations []*repository.Donation
	err := r.db.Select(ctx, &donations, query, args...)
	return donations, err
}

func (r *DonationRepo) GetByParticipant(ctx context.Context, userID, role string, since time.Time) ([]*repository.Donation, error) {
	// Admins report over the whole platform, not rows they participated in.
	if role == "admin" {
		query := `
        SELECT * FROM donations
        WHERE created_at >= $1
        ORDER BY created_at DESC
    `
		var donations []*repository.Donation
		err := r.db.Select(ctx, &donations, query, since)
		return donations, err
	}

	var column string
	switch role {
	case "ngo":
		column = "assigned_ngo_id"
	case "volunteer":
		column = "assigned_volunteer_id"
	default:
		column = "donor_id"
	}

	query := fmt.Sprintf(`
        SELECT * FROM donations
        WHERE %s = $1 AND created_at >= $2
        ORDER BY created_at DESC
    `, column)

	var donations []*repository.Donation
	err := r.db.Select(ctx, &donations, query, userID, since)
	return donations, err
}

func (r *DonationRepo) List(ctx context.Context, status, foodType, donorID string, offset, limit int) ([]*repository.Donation, error) {
	query := "SELECT * FROM donations WHERE 1=1"
	args := []interface{}{}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if foodType != "" {
		args = append(args, foodType)
		query += fmt.Sprintf(" AND food_type = $%d", len(args))
	}
	if donorID != "" {
		args = append(args, donorID)
		query += fmt.Sprintf(" AND donor_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var donations []*repository.Donation
	err := r.db.Select(ctx, &donations, query, args...)
	return donations, err
}

func (r *DonationRepo) GetAllActive(ctx context.Context) ([]*repository.Donation, error) {
	query := `
        SELECT * FROM donations
        WHERE status NOT IN ('delivered', 'cancelled')
        ORDER BY created_at ASC
    `
	var donations []*repository.Donation
	err := r.db.Select(ctx, &donations, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all active donations: %w", err)
	}
	return donations, nil
}

func (r *DonationRepo) GetExpiredPending(ctx context.Context, now time.Time) ([]*repository.Donation, error) {
	query := `
        SELECT * FROM donations
        WHERE status = 'pending' AND expires_at < $1
        ORDER BY expires_at ASC
    `
	var donations []*repository.Donation
	err := r.db.Select(ctx, &donations, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired pending donations: %w", err)
	}
	return donations, nil
}
