package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/krishna2206/pharmanio-backend/internal/ingest"
	"github.com/krishna2206/pharmanio-backend/internal/models"
)

// RosterState classifies the stored roster against the current date.
type RosterState string

const (
	StateNoRoster      RosterState = "NO_ROSTER"
	StateRosterValid   RosterState = "ROSTER_VALID"
	StateRosterExpired RosterState = "ROSTER_EXPIRED"
)

// RosterReader loads the current roster row.
type RosterReader interface {
	Current() (*models.OnDutyRoster, error)
}

// RegistryReader resolves roster member IDs to pharmacy records.
type RegistryReader interface {
	GetByIDs(ids []int64) ([]models.Pharmacy, error)
}

// SnapshotCache publishes the denormalized roster read model.
type SnapshotCache interface {
	Publish(ctx context.Context, roster *models.OnDutyRoster, pharmacies []models.Pharmacy) error
}

// IngestRunner executes one ingestion run against the publication source.
type IngestRunner interface {
	Run(ctx context.Context) (*ingest.RunSummary, error)
}

// ExpiryController decides when the roster needs refreshing and triggers
// ingestion runs. Concurrent triggers collapse onto a single run.
type ExpiryController struct {
	roster   RosterReader
	registry RegistryReader
	cache    SnapshotCache
	runner   IngestRunner
	group    singleflight.Group
	logger   *zap.Logger
}

func NewExpiryController(roster RosterReader, registry RegistryReader, cache SnapshotCache, runner IngestRunner, logger *zap.Logger) *ExpiryController {
	return &ExpiryController{
		roster:   roster,
		registry: registry,
		cache:    cache,
		runner:   runner,
		logger:   logger,
	}
}

// State reports whether a roster exists and whether it still covers today.
// A roster remains valid on its end date and expires the day after.
func (c *ExpiryController) State(today time.Time) (RosterState, error) {
	roster, err := c.roster.Current()
	if err != nil {
		return "", fmt.Errorf("failed to load current roster: %w", err)
	}
	if roster == nil {
		return StateNoRoster, nil
	}
	if roster.Period.ExpiredAt(today) {
		return StateRosterExpired, nil
	}
	return StateRosterValid, nil
}

// EnsureFresh checks the roster state and runs an ingestion when the
// roster is missing or expired. Callers arriving while a run is in
// flight share its result instead of starting another one.
func (c *ExpiryController) EnsureFresh(ctx context.Context) (RosterState, error) {
	result, err, shared := c.group.Do("roster", func() (interface{}, error) {
		return c.checkAndIngest(ctx)
	})
	if shared {
		c.logger.Debug("Joined in-flight roster check")
	}
	if err != nil {
		return "", err
	}
	return result.(RosterState), nil
}

func (c *ExpiryController) checkAndIngest(ctx context.Context) (RosterState, error) {
	state, err := c.State(time.Now())
	if err != nil {
		return "", err
	}

	if state == StateRosterValid {
		c.logger.Info("Roster still valid, skipping ingestion")
		return state, nil
	}

	c.logger.Info("Roster refresh required", zap.String("state", string(state)))
	summary, err := c.runner.Run(ctx)
	if err != nil {
		return state, err
	}

	if summary.RosterUpdated {
		// Snapshot publication is best effort; Postgres stays authoritative.
		if err := c.publishSnapshot(ctx); err != nil {
			c.logger.Error("Failed to publish roster snapshot", zap.Error(err))
		}
	}
	return state, nil
}

func (c *ExpiryController) publishSnapshot(ctx context.Context) error {
	roster, err := c.roster.Current()
	if err != nil {
		return fmt.Errorf("failed to load current roster: %w", err)
	}
	if roster == nil {
		return nil
	}

	pharmacies, err := c.registry.GetByIDs(roster.PharmacyIDs)
	if err != nil {
		return fmt.Errorf("failed to load roster pharmacies: %w", err)
	}
	return c.cache.Publish(ctx, roster, pharmacies)
}
