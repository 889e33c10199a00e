//go:generate mockgen -source ./repos.go -destination=./mocks/repos.go -package=mock_storage
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zerowastelink/platform/internal/db"
	"github.com/zerowastelink/platform/internal/repository"
)

type DonationRepository interface {
	Create(ctx context.Context, d *repository.Donation) error
	CreateTx(ctx context.Context, tx db.Tx, d *repository.Donation) error
	GetByID(ctx context.Context, id string) (*repository.Donation, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Donation, error)
	Update(ctx context.Context, d *repository.Donation) error
	UpdateTx(ctx context.Context, tx db.Tx, d *repository.Donation) error
	GetByDonorID(ctx context.Context, donorID string, limit int, activeOnly bool) ([]*repository.Donation, error)
	GetByParticipant(ctx context.Context, userID, role string, since time.Time) ([]*repository.Donation, error)
	List(ctx context.Context, status, foodType, donorID string, offset, limit int) ([]*repository.Donation, error)
	GetAllActive(ctx context.Context) ([]*repository.Donation, error)
	GetExpiredPending(ctx context.Context, now time.Time) ([]*repository.Donation, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *repository.User, password string) error
	GetByID(ctx context.Context, id string) (*repository.User, error)
	ValidateUser(ctx context.Context, email, password string) (bool, error)
	FindActiveNGOsNear(ctx context.Context, lat, lng, radiusKm float64) ([]*repository.User, error)
	IncrementStatsTx(ctx context.Context, tx db.Tx, userID string, donations, pickups, deliveries, meals int, carbonKg float64) error
}

// NGOLocator is the slice of UserRepository the matching path needs. Keeping
// it separate means the ranking flow carries no dependency on any particular
// storage engine.
type NGOLocator interface {
	FindActiveNGOsNear(ctx context.Context, lat, lng, radiusKm float64) ([]*repository.User, error)
}

type HistoryRepository interface {
	Create(ctx context.Context, entry *repository.HistoryEntry) error
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByDonationID(ctx context.Context, donationID string) ([]*repository.HistoryEntry, error)
}

type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
	GetProcessableTasks(ctx context.Context, db db.DB, limit int) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	UpdateTaskStatus(ctx context.Context, db db.DB, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
}
