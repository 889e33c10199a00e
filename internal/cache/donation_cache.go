package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/zerowastelink/platform/internal/metrics"
	"github.com/zerowastelink/platform/internal/repository"
)

type DonationRepository interface {
	GetAllActive(ctx context.Context) ([]*repository.Donation, error)
}

// DonationCache keeps the in-flight donations (anything not yet delivered or
// cancelled) in memory so dashboard reads skip the database.
type DonationCache struct {
	mu    sync.RWMutex
	cache map[string]*repository.Donation
	repo  DonationRepository
	log   *zap.Logger
}

func NewDonationCache(repo DonationRepository, log *zap.Logger) *DonationCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &DonationCache{
		cache: make(map[string]*repository.Donation),
		repo:  repo,
		log:   log,
	}
}

func (c *DonationCache) LoadInitialData(ctx context.Context) error {
	donations, err := c.repo.GetAllActive(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range donations {
		donationCopy := *d
		c.cache[d.ID] = &donationCopy
	}
	metrics.DonationCacheItems.Set(float64(len(c.cache)))
	c.log.Info("loaded active donations into cache", zap.Int("count", len(c.cache)))
	return nil
}

func (c *DonationCache) Get(donationID string) (*repository.Donation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, found := c.cache[donationID]
	if !found {
		return nil, false
	}
	donationCopy := *d
	return &donationCopy, true
}

// Set stores an active donation, or evicts it once it reaches a terminal
// status.
func (c *DonationCache) Set(d *repository.Donation) {
	if !isActiveStatus(d.Status) {
		c.Delete(d.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	donationCopy := *d
	c.cache[d.ID] = &donationCopy
	metrics.DonationCacheItems.Set(float64(len(c.cache)))
}

func (c *DonationCache) Delete(donationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[donationID]; found {
		delete(c.cache, donationID)
		metrics.DonationCacheItems.Set(float64(len(c.cache)))
	}
}

func isActiveStatus(status string) bool {
	return status != "delivered" && status != "cancelled"
}
