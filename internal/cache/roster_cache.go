package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

const dateLayout = "2006-01-02"

// SnapshotPharmacy is the denormalized pharmacy view stored in the snapshot.
type SnapshotPharmacy struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   *string  `json:"address,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	CityID    int64    `json:"city_id"`
}

// RosterSnapshot is the read model published to Redis after each
// successful reconciliation. Readers get the current duty roster
// without touching Postgres.
type RosterSnapshot struct {
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Pharmacies []SnapshotPharmacy `json:"pharmacies"`
}

// RosterCache publishes roster snapshots to a KVStore.
type RosterCache struct {
	kv     KVStore
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRosterCache(kv KVStore, key string, ttl time.Duration, logger *zap.Logger) *RosterCache {
	return &RosterCache{
		kv:     kv,
		key:    key,
		ttl:    ttl,
		logger: logger,
	}
}

// Publish serializes the roster with its resolved pharmacies and stores
// the snapshot under the configured key.
func (c *RosterCache) Publish(ctx context.Context, roster *models.OnDutyRoster, pharmacies []models.Pharmacy) error {
	snapshot := RosterSnapshot{
		StartDate:  roster.Period.StartDate.Format(dateLayout),
		EndDate:    roster.Period.EndDate.Format(dateLayout),
		UpdatedAt:  roster.UpdatedAt,
		Pharmacies: make([]SnapshotPharmacy, 0, len(pharmacies)),
	}
	for _, p := range pharmacies {
		snapshot.Pharmacies = append(snapshot.Pharmacies, SnapshotPharmacy{
			ID:        p.ID,
			Name:      p.Name,
			Address:   p.Address,
			Phone:     p.Phone,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			CityID:    p.CityID,
		})
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal roster snapshot: %w", err)
	}

	if err := c.kv.Set(ctx, c.key, string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to cache roster snapshot: %w", err)
	}

	c.logger.Debug("Roster snapshot published",
		zap.String("key", c.key),
		zap.Int("pharmacies", len(snapshot.Pharmacies)))
	return nil
}

// Current returns the cached snapshot, or ErrCacheMiss when none is stored.
func (c *RosterCache) Current(ctx context.Context) (*RosterSnapshot, error) {
	data, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}

	var snapshot RosterSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster snapshot: %w", err)
	}
	return &snapshot, nil
}
