package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

// RosterRepository owns the singleton on-duty roster row. It is the only
// table the ingestion pipeline writes.
type RosterRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRosterRepository creates a roster repository.
func NewRosterRepository(db *sql.DB, logger *zap.Logger) *RosterRepository {
	return &RosterRepository{
		db:     db,
		logger: logger,
	}
}

// Current returns the on-duty roster, or nil when none has been created
// yet. The singleton is the first row ever created, not the newest by date.
func (r *RosterRepository) Current() (*models.OnDutyRoster, error) {
	query := `
		SELECT id, start_date, end_date, pharmacy_ids, updated_at
		FROM on_duty_pharmacies
		ORDER BY id
		LIMIT 1
	`

	var roster models.OnDutyRoster
	var pharmacyIDs []byte

	err := r.db.QueryRow(query).Scan(
		&roster.ID,
		&roster.Period.StartDate,
		&roster.Period.EndDate,
		&pharmacyIDs,
		&roster.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}

	if err := json.Unmarshal(pharmacyIDs, &roster.PharmacyIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pharmacy ids: %w", err)
	}

	return &roster, nil
}

// Upsert writes the period and pharmacy id set into the singleton row,
// creating it on the first ever ingest. Period, id set and updated_at move
// together in one transaction so a reader never sees them out of sync.
func (r *RosterRepository) Upsert(period models.ValidityPeriod, pharmacyIDs []int64) error {
	if pharmacyIDs == nil {
		pharmacyIDs = []int64{}
	}
	idsJSON, err := json.Marshal(pharmacyIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal pharmacy ids: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`SELECT id FROM on_duty_pharmacies ORDER BY id LIMIT 1`).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO on_duty_pharmacies (start_date, end_date, pharmacy_ids, updated_at)
			VALUES ($1, $2, $3, $4)
		`, period.StartDate, period.EndDate, idsJSON, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert roster: %w", err)
		}
		r.logger.Debug("Created roster row")
	case err != nil:
		return fmt.Errorf("failed to locate roster row: %w", err)
	default:
		_, err = tx.Exec(`
			UPDATE on_duty_pharmacies
			SET start_date = $1, end_date = $2, pharmacy_ids = $3, updated_at = $4
			WHERE id = $5
		`, period.StartDate, period.EndDate, idsJSON, time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("failed to update roster: %w", err)
		}
		r.logger.Debug("Updated roster row", zap.Int64("roster_id", id))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster update: %w", err)
	}

	return nil
}
