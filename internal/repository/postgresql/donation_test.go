package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_database "github.com/zerowastelink/platform/internal/db/mocks"
	"github.com/zerowastelink/platform/internal/repository"
	"github.com/zerowastelink/platform/internal/repository/postgresql"
)

func testDonation(now time.Time) *repository.Donation {
	return &repository.Donation{
		ID:             "donation-123",
		DonorID:        "donor-456",
		Title:          "Leftover lunch trays",
		FoodType:       "cooked-meals",
		QuantityAmount: 12,
		QuantityUnit:   "kg",
		Latitude:       12.9716,
		Longitude:      77.5946,
		PickupStart:    now,
		PickupEnd:      now.Add(2 * time.Hour),
		ExpiresAt:      now.Add(6 * time.Hour),
		Status:         "pending",
		EstimatedMeals: 9,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func donationInsertArgs(d *repository.Donation) []interface{} {
	return []interface{}{
		d.ID, d.DonorID, d.AssignedNGOID, d.AssignedVolunteerID, d.Title, d.Description,
		d.FoodType, d.Cuisine, d.QuantityAmount, d.QuantityUnit, d.Latitude, d.Longitude,
		d.PickupStart, d.PickupEnd, d.ExpiresAt, d.Status, d.EstimatedMeals,
		d.IsVegetarian, d.IsVegan, d.IsGlutenFree, d.IsHalal, d.IsKosher, d.Notes,
		d.CreatedAt, d.UpdatedAt,
	}
}

func TestDonationRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := testDonation(now)

		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), donationInsertArgs(d)...).Return(nil, nil)

		err := repo.Create(ctx, d)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		expectedErr := errors.New("database error")
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := testDonation(now)

		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), donationInsertArgs(d)...).Return(nil, expectedErr)

		err := repo.Create(ctx, d)
		assert.Equal(t, expectedErr, err)
	})
}

func TestDonationRepo_CreateTx(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := testDonation(now)

		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), donationInsertArgs(d)...).Return(nil, nil)

		err := repo.CreateTx(ctx, mockTx, d)
		assert.NoError(t, err)
	})
}

func TestDonationRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("donation found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := testDonation(now)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(d.ID)).
			DoAndReturn(func(_ context.Context, dest *repository.Donation, _ string, _ string) error {
				*dest = *d
				return nil
			})

		got, err := repo.GetByID(ctx, d.ID)
		assert.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("donation not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, "non-existent-id")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, got)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		got, err := repo.GetByID(ctx, "donation-123")
		assert.Equal(t, expectedErr, err)
		assert.Nil(t, got)
	})
}

func TestDonationRepo_GetByIDTx(t *testing.T) {
	ctx := context.Background()

	t.Run("locks row for update", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := testDonation(now)

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(d.ID)).
			DoAndReturn(func(_ context.Context, dest *repository.Donation, query string, _ string) error {
				assert.Contains(t, query, "FOR UPDATE")
				*dest = *d
				return nil
			})

		got, err := repo.GetByIDTx(ctx, mockTx, d.ID)
		assert.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		got, err := repo.GetByIDTx(ctx, mockTx, "missing")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, got)
	})
}

func TestDonationRepo_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := testDonation(now)
		d.Status = "accepted"

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(d.AssignedNGOID),
			gomock.Eq(d.AssignedVolunteerID),
			gomock.Eq(d.Title),
			gomock.Eq(d.Description),
			gomock.Eq(d.QuantityAmount),
			gomock.Eq(d.QuantityUnit),
			gomock.Eq(d.PickupStart),
			gomock.Eq(d.PickupEnd),
			gomock.Eq(d.ExpiresAt),
			gomock.Eq(d.Status),
			gomock.Eq(d.EstimatedMeals),
			gomock.Eq(d.Notes),
			gomock.Eq(d.UpdatedAt),
			gomock.Eq(d.ID),
		).Return(nil, nil)

		err := repo.Update(ctx, d)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		expectedErr := errors.New("database error")
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		d := testDonation(now)

		mockDB.EXPECT().Exec(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(),
		).Return(nil, expectedErr)

		err := repo.Update(ctx, d)
		assert.Equal(t, expectedErr, err)
	})
}

func TestDonationRepo_GetByDonorID(t *testing.T) {
	ctx := context.Background()

	t.Run("all donations with limit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		donorID := "donor-456"
		expected := []*repository.Donation{testDonation(now)}

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(donorID), gomock.Eq(10)).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Donation, _ string, _ ...interface{}) error {
				*dest = expected
				return nil
			})

		got, err := repo.GetByDonorID(ctx, donorID, 10, false)
		assert.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("active only excludes terminal statuses", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		donorID := "donor-456"

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(donorID)).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Donation, query string, _ string) error {
				assert.Contains(t, query, "NOT IN ('delivered', 'cancelled')")
				return nil
			})

		_, err := repo.GetByDonorID(ctx, donorID, 0, true)
		assert.NoError(t, err)
	})
}

func TestDonationRepo_GetByParticipant(t *testing.T) {
	ctx := context.Background()
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		role   string
		column string
	}{
		{role: "donor", column: "donor_id"},
		{role: "ngo", column: "assigned_ngo_id"},
		{role: "volunteer", column: "assigned_volunteer_id"},
	}
	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDB := mock_database.NewMockDB(ctrl)
			repo := postgresql.NewDonationRepo(mockDB)

			mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("user-1"), gomock.Eq(since)).
				DoAndReturn(func(_ context.Context, dest *[]*repository.Donation, query string, _ ...interface{}) error {
					assert.Contains(t, query, tc.column+" = $1")
					return nil
				})

			_, err := repo.GetByParticipant(ctx, "user-1", tc.role, since)
			assert.NoError(t, err)
		})
	}

	t.Run("admin sees the whole platform", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(since)).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Donation, query string, _ time.Time) error {
				assert.NotContains(t, query, "= $2")
				assert.Contains(t, query, "created_at >= $1")
				return nil
			})

		_, err := repo.GetByParticipant(ctx, "admin-1", "admin", since)
		assert.NoError(t, err)
	})
}

func TestDonationRepo_List(t *testing.T) {
	ctx := context.Background()

	t.Run("no filters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(20), gomock.Eq(0)).
			Return(nil)

		_, err := repo.List(ctx, "", "", "", 0, 20)
		assert.NoError(t, err)
	})

	t.Run("status and food type filters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Eq("pending"), gomock.Eq("cooked-meals"), gomock.Eq(20), gomock.Eq(40)).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Donation, query string, _ ...interface{}) error {
				assert.Contains(t, query, "status = $1")
				assert.Contains(t, query, "food_type = $2")
				assert.Contains(t, query, "LIMIT $3")
				assert.Contains(t, query, "OFFSET $4")
				return nil
			})

		_, err := repo.List(ctx, "pending", "cooked-meals", "", 40, 20)
		assert.NoError(t, err)
	})
}

func TestDonationRepo_GetExpiredPending(t *testing.T) {
	ctx := context.Background()

	t.Run("returns expired pending donations", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		expected := []*repository.Donation{testDonation(now.Add(-24 * time.Hour))}

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(now)).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Donation, query string, _ time.Time) error {
				assert.Contains(t, query, "status = 'pending'")
				*dest = expected
				return nil
			})

		got, err := repo.GetExpiredPending(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonationRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		got, err := repo.GetExpiredPending(ctx, time.Now())
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
