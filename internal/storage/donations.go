package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zerowastelink/platform/internal/cache"
	"github.com/zerowastelink/platform/internal/db"
	"github.com/zerowastelink/platform/internal/geo"
	"github.com/zerowastelink/platform/internal/impact"
	"github.com/zerowastelink/platform/internal/matching"
	"github.com/zerowastelink/platform/internal/metrics"
	"github.com/zerowastelink/platform/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotOwner          = errors.New("donation is assigned to a different NGO")
)

const (
	defaultSearchRadiusKm = 10
	eventsTopic           = "donation_events"
)

// DonationService is the lifecycle and matching service for donations. All
// writes go through a single transaction that also records history and the
// outbox event for that change.
type DonationService struct {
	db        db.DB
	donations DonationRepository
	users     UserRepository
	history   HistoryRepository
	outbox    OutboxTaskRepository

	locator        NGOLocator
	engine         *matching.Engine
	meals          *impact.MealEstimator
	impactCfg      impact.Config
	insights       matching.InsightProvider
	donationCache  *cache.DonationCache
	searchRadiusKm float64
	nowFn          func() time.Time
	logger         *zap.Logger
}

func NewDonationService(
	database db.DB,
	donations DonationRepository,
	users UserRepository,
	history HistoryRepository,
	outbox OutboxTaskRepository,
	logger *zap.Logger,
) *DonationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonationService{
		db:             database,
		donations:      donations,
		users:          users,
		history:        history,
		outbox:         outbox,
		locator:        users,
		engine:         matching.NewEngine(matching.DefaultWeights(), logger),
		meals:          impact.NewMealEstimator(),
		impactCfg:      impact.DefaultConfig(),
		insights:       matching.NewStaticInsightProvider(),
		searchRadiusKm: defaultSearchRadiusKm,
		nowFn:          time.Now,
		logger:         logger,
	}
}

// WithLocator swaps the candidate source used for matching.
func (s *DonationService) WithLocator(locator NGOLocator) *DonationService {
	s.locator = locator
	return s
}

// WithEngine swaps the matching engine, e.g. to change scoring weights.
func (s *DonationService) WithEngine(engine *matching.Engine) *DonationService {
	s.engine = engine
	return s
}

// WithInsightProvider swaps the advisory insight source.
func (s *DonationService) WithInsightProvider(p matching.InsightProvider) *DonationService {
	s.insights = p
	return s
}

// WithCache attaches a read-through cache for active donations.
func (s *DonationService) WithCache(c *cache.DonationCache) *DonationService {
	s.donationCache = c
	return s
}

// WithNow overrides the clock. Intended for tests.
func (s *DonationService) WithNow(now func() time.Time) *DonationService {
	s.nowFn = now
	return s
}

// CreateDonation validates and stores a new donation. The estimated meal
// count is always recomputed here; whatever the client sent is ignored.
func (s *DonationService) CreateDonation(ctx context.Context, d Donation) (*Donation, error) {
	now := s.nowFn().UTC()

	if err := s.validateNew(&d, now); err != nil {
		return nil, err
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.Status = StatusPending
	d.EstimatedMeals = s.meals.EstimateMeals(d.Quantity.Amount, string(d.Quantity.Unit), string(d.FoodType))
	d.CreatedAt = now
	d.UpdatedAt = now

	repoDonation := toRepoDonation(&d)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if err := s.donations.CreateTx(ctx, tx, repoDonation); err != nil {
		return nil, fmt.Errorf("failed to add donation: %w", err)
	}
	if err := s.history.CreateTx(ctx, tx, &repository.HistoryEntry{
		DonationID: d.ID,
		Status:     string(d.Status),
		ChangedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("failed to add history entry: %w", err)
	}
	if err := s.enqueueEventTx(ctx, tx, "donation_created", repoDonation, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit donation: %w", err)
	}

	s.cacheSet(repoDonation)
	metrics.DonationsCreatedTotal.Inc()
	s.logger.Info("donation created",
		zap.String("donation_id", d.ID),
		zap.String("food_type", string(d.FoodType)),
		zap.Int("estimated_meals", d.EstimatedMeals))

	return &d, nil
}

// UpdateQuantity changes the quantity and/or food type of a pending donation
// and recomputes the meal estimate from the new values.
func (s *DonationService) UpdateQuantity(ctx context.Context, id string, quantity Quantity, foodType FoodType) (*Donation, error) {
	if quantity.Amount <= 0 || !quantity.Unit.Valid() || !foodType.Valid() {
		return nil, fmt.Errorf("%w: bad quantity or food type", ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	d, err := s.donations.GetByIDTx(ctx, tx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if Status(d.Status) != StatusPending {
		return nil, fmt.Errorf("%w: only pending donations can be edited", ErrInvalidTransition)
	}

	d.QuantityAmount = quantity.Amount
	d.QuantityUnit = string(quantity.Unit)
	d.FoodType = string(foodType)
	d.EstimatedMeals = s.meals.EstimateMeals(quantity.Amount, string(quantity.Unit), string(foodType))
	d.UpdatedAt = s.nowFn().UTC()

	if err := s.donations.UpdateTx(ctx, tx, d); err != nil {
		return nil, fmt.Errorf("failed to update donation: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit donation update: %w", err)
	}

	s.cacheSet(d)
	out := fromRepoDonation(d)
	return out, nil
}

func (s *DonationService) GetDonation(ctx context.Context, id string) (*Donation, error) {
	if s.donationCache != nil {
		if d, found := s.donationCache.Get(id); found {
			return fromRepoDonation(d), nil
		}
	}

	d, err := s.donations.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.cacheSet(d)
	return fromRepoDonation(d), nil
}

func (s *DonationService) ListDonations(ctx context.Context, filter ListFilter) ([]Donation, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	rows, err := s.donations.List(ctx, string(filter.Status), string(filter.FoodType), filter.DonorID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return fromRepoDonations(rows), nil
}

func (s *DonationService) UserDonations(ctx context.Context, userID string, lastN int, activeOnly bool) ([]Donation, error) {
	rows, err := s.donations.GetByDonorID(ctx, userID, lastN, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get user donations: %w", err)
	}
	return fromRepoDonations(rows), nil
}

func (s *DonationService) History(ctx context.Context, donationID string) ([]HistoryEntry, error) {
	rows, err := s.history.GetByDonationID(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation history: %w", err)
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, h := range rows {
		out = append(out, HistoryEntry{DonationID: h.DonationID, Status: h.Status, ChangedAt: h.ChangedAt})
	}
	return out, nil
}

// Accept moves a pending donation to accepted and assigns the NGO.
func (s *DonationService) Accept(ctx context.Context, donationID, ngoID string) error {
	ngo, err := s.users.GetByID(ctx, ngoID)
	if err != nil {
		return mapRepoError(err)
	}
	if Role(ngo.Role) != RoleNGO {
		return fmt.Errorf("%w: user %s is not an NGO", ErrInvalidInput, ngoID)
	}

	return s.transition(ctx, donationID, StatusAccepted, func(d *repository.Donation) error {
		d.AssignedNGOID = &ngoID
		return nil
	})
}

// AssignVolunteer moves an accepted donation to assigned. Only the NGO the
// donation was accepted by may assign a volunteer.
func (s *DonationService) AssignVolunteer(ctx context.Context, donationID, ngoID, volunteerID string) error {
	volunteer, err := s.users.GetByID(ctx, volunteerID)
	if err != nil {
		return mapRepoError(err)
	}
	if Role(volunteer.Role) != RoleVolunteer {
		return fmt.Errorf("%w: user %s is not a volunteer", ErrInvalidInput, volunteerID)
	}

	return s.transition(ctx, donationID, StatusAssigned, func(d *repository.Donation) error {
		if d.AssignedNGOID == nil || *d.AssignedNGOID != ngoID {
			return ErrNotOwner
		}
		d.AssignedVolunteerID = &volunteerID
		return nil
	})
}

// UpdateStatus applies a plain status transition with no side fields.
func (s *DonationService) UpdateStatus(ctx context.Context, donationID string, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	return s.transition(ctx, donationID, to, nil)
}

// CancelExpired cancels every pending donation whose expiry has passed and
// returns how many were swept.
func (s *DonationService) CancelExpired(ctx context.Context) (int, error) {
	expired, err := s.donations.GetExpiredPending(ctx, s.nowFn().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to find expired donations: %w", err)
	}

	cancelled := 0
	for _, d := range expired {
		if err := s.transition(ctx, d.ID, StatusCancelled, nil); err != nil {
			s.logger.Warn("failed to cancel expired donation",
				zap.String("donation_id", d.ID), zap.Error(err))
			continue
		}
		metrics.ExpiredDonationsCancelledTotal.Inc()
		cancelled++
	}
	return cancelled, nil
}

// transition is the single write path for status changes: row lock,
// state-machine check, optional mutation, history entry, outbox event, and
// stats bump on delivery, all in one transaction.
func (s *DonationService) transition(ctx context.Context, donationID string, to Status, mutate func(*repository.Donation) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	d, err := s.donations.GetByIDTx(ctx, tx, donationID)
	if err != nil {
		return mapRepoError(err)
	}

	from := Status(d.Status)
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if mutate != nil {
		if err := mutate(d); err != nil {
			return err
		}
	}

	now := s.nowFn().UTC()
	d.Status = string(to)
	d.UpdatedAt = now

	if err := s.donations.UpdateTx(ctx, tx, d); err != nil {
		return fmt.Errorf("failed to update donation: %w", err)
	}
	if err := s.history.CreateTx(ctx, tx, &repository.HistoryEntry{
		DonationID: d.ID,
		Status:     string(to),
		ChangedAt:  now,
	}); err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}
	if err := s.enqueueEventTx(ctx, tx, "status_changed", d, string(from)); err != nil {
		return err
	}
	if to == StatusDelivered {
		if err := s.bumpStatsTx(ctx, tx, d); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}

	s.cacheSet(d)
	metrics.StatusTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.logger.Info("donation status changed",
		zap.String("donation_id", d.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return nil
}

// bumpStatsTx credits the cumulative counters of everyone involved in a
// delivered donation. Counters only ever grow, and only from this path.
func (s *DonationService) bumpStatsTx(ctx context.Context, tx db.Tx, d *repository.Donation) error {
	kg := impact.ToKilograms(d.QuantityAmount, d.QuantityUnit)
	carbon := s.impactCfg.CarbonPerKg * kg

	if err := s.users.IncrementStatsTx(ctx, tx, d.DonorID, 1, 0, 0, d.EstimatedMeals, carbon); err != nil {
		return fmt.Errorf("failed to update donor stats: %w", err)
	}
	if d.AssignedNGOID != nil {
		if err := s.users.IncrementStatsTx(ctx, tx, *d.AssignedNGOID, 0, 0, 1, d.EstimatedMeals, carbon); err != nil {
			return fmt.Errorf("failed to update NGO stats: %w", err)
		}
	}
	if d.AssignedVolunteerID != nil {
		if err := s.users.IncrementStatsTx(ctx, tx, *d.AssignedVolunteerID, 0, 1, 1, 0, 0); err != nil {
			return fmt.Errorf("failed to update volunteer stats: %w", err)
		}
	}
	return nil
}

func (s *DonationService) enqueueEventTx(ctx context.Context, tx db.Tx, event string, d *repository.Donation, oldStatus string) error {
	payload := repository.DonationEventPayload{
		Event:          event,
		DonationID:     d.ID,
		DonorID:        d.DonorID,
		FoodType:       d.FoodType,
		OldStatus:      oldStatus,
		NewStatus:      d.Status,
		EstimatedMeals: d.EstimatedMeals,
		OccurredAt:     s.nowFn().UTC(),
	}
	if d.AssignedNGOID != nil {
		payload.NGOID = *d.AssignedNGOID
	}
	if d.AssignedVolunteerID != nil {
		payload.VolunteerID = *d.AssignedVolunteerID
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal donation event: %w", err)
	}
	if err := s.outbox.CreateTx(ctx, tx, &repository.OutboxTask{
		Topic:   eventsTopic,
		Payload: raw,
	}); err != nil {
		return fmt.Errorf("failed to enqueue donation event: %w", err)
	}
	return nil
}

func (s *DonationService) validateNew(d *Donation, now time.Time) error {
	switch {
	case d.DonorID == "":
		return fmt.Errorf("%w: missing donor", ErrInvalidInput)
	case d.Title == "":
		return fmt.Errorf("%w: missing title", ErrInvalidInput)
	case !d.FoodType.Valid():
		return fmt.Errorf("%w: unknown food type %q", ErrInvalidInput, d.FoodType)
	case !d.Quantity.Unit.Valid():
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, d.Quantity.Unit)
	case d.Quantity.Amount <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	case !geo.Valid(d.Location.Latitude, d.Location.Longitude):
		return fmt.Errorf("%w: invalid coordinates", ErrInvalidInput)
	case d.ExpiresAt.Before(now):
		return fmt.Errorf("%w: expiry is in the past", ErrInvalidInput)
	case !d.PickupWindow.End.After(d.PickupWindow.Start):
		return fmt.Errorf("%w: pickup window end must be after start", ErrInvalidInput)
	}
	return nil
}

func (s *DonationService) cacheSet(d *repository.Donation) {
	if s.donationCache != nil {
		s.donationCache.Set(d)
	}
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrObjectNotFound) {
		return fmt.Errorf("donation or user %w", ErrNotFound)
	}
	return err
}

func toRepoDonation(d *Donation) *repository.Donation {
	out := &repository.Donation{
		ID:             d.ID,
		DonorID:        d.DonorID,
		Title:          d.Title,
		Description:    d.Description,
		FoodType:       string(d.FoodType),
		Cuisine:        d.Cuisine,
		QuantityAmount: d.Quantity.Amount,
		QuantityUnit:   string(d.Quantity.Unit),
		Latitude:       d.Location.Latitude,
		Longitude:      d.Location.Longitude,
		PickupStart:    d.PickupWindow.Start,
		PickupEnd:      d.PickupWindow.End,
		ExpiresAt:      d.ExpiresAt,
		Status:         string(d.Status),
		EstimatedMeals: d.EstimatedMeals,
		IsVegetarian:   d.Dietary.IsVegetarian,
		IsVegan:        d.Dietary.IsVegan,
		IsGlutenFree:   d.Dietary.IsGlutenFree,
		IsHalal:        d.Dietary.IsHalal,
		IsKosher:       d.Dietary.IsKosher,
		Notes:          d.Notes,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.AssignedNGOID != "" {
		ngoID := d.AssignedNGOID
		out.AssignedNGOID = &ngoID
	}
	if d.AssignedVolunteerID != "" {
		volID := d.AssignedVolunteerID
		out.AssignedVolunteerID = &volID
	}
	return out
}

func fromRepoDonation(d *repository.Donation) *Donation {
	out := &Donation{
		ID:          d.ID,
		DonorID:     d.DonorID,
		Title:       d.Title,
		Description: d.Description,
		FoodType:    FoodType(d.FoodType),
		Cuisine:     d.Cuisine,
		Quantity: Quantity{
			Amount: d.QuantityAmount,
			Unit:   Unit(d.QuantityUnit),
		},
		Location: Location{
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
		},
		PickupWindow: PickupWindow{
			Start: d.PickupStart,
			End:   d.PickupEnd,
		},
		ExpiresAt:      d.ExpiresAt,
		Status:         Status(d.Status),
		EstimatedMeals: d.EstimatedMeals,
		Dietary: DietaryInfo{
			IsVegetarian: d.IsVegetarian,
			IsVegan:      d.IsVegan,
			IsGlutenFree: d.IsGlutenFree,
			IsHalal:      d.IsHalal,
			IsKosher:     d.IsKosher,
		},
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.AssignedNGOID != nil {
		out.AssignedNGOID = *d.AssignedNGOID
	}
	if d.AssignedVolunteerID != nil {
		out.AssignedVolunteerID = *d.AssignedVolunteerID
	}
	return out
}

func fromRepoDonations(rows []*repository.Donation) []Donation {
	out := make([]Donation, 0, len(rows))
	for _, d := range rows {
		out = append(out, *fromRepoDonation(d))
	}
	return out
}
