package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "CREATED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDone       TaskStatus = "DONE"
)

type OutboxTask struct {
	ID          uuid.UUID       `db:"id"`
	Status      TaskStatus      `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	Topic       string          `db:"topic"`
	Attempts    int             `db:"attempts"`
	LastError   *string         `db:"last_error"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

// DonationEventPayload is the message body written to the outbox when a
// donation is created or changes status. It is what downstream consumers
// (notification dispatch, analytics) receive over Kafka.
type DonationEventPayload struct {
	Event          string    `json:"event"`
	DonationID     string    `json:"donation_id"`
	DonorID        string    `json:"donor_id"`
	NGOID          string    `json:"ngo_id,omitempty"`
	VolunteerID    string    `json:"volunteer_id,omitempty"`
	FoodType       string    `json:"food_type,omitempty"`
	OldStatus      string    `json:"old_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	EstimatedMeals int       `json:"estimated_meals,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
