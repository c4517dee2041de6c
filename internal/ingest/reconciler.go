package ingest

import (
	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

// RosterStore is the write interface of the singleton roster.
type RosterStore interface {
	Upsert(period models.ValidityPeriod, pharmacyIDs []int64) error
}

// Reconciler merges matched pharmacy ids and the validity period into the
// singleton roster.
type Reconciler struct {
	store  RosterStore
	logger *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(store RosterStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
	}
}

// Reconcile upserts the roster and reports whether it wrote. With a nil
// period the roster is left untouched: a stale roster beats one with an
// unknown validity window. Storage failures surface as *ReconcileError.
func (r *Reconciler) Reconcile(period *models.ValidityPeriod, pharmacyIDs []int64) (bool, error) {
	if period == nil {
		r.logger.Warn("Validity period absent, keeping previous roster",
			zap.Int("matched_count", len(pharmacyIDs)),
		)
		return false, nil
	}

	deduped := dedupeIDs(pharmacyIDs)
	if err := r.store.Upsert(*period, deduped); err != nil {
		return false, &ReconcileError{Err: err}
	}

	r.logger.Info("Roster reconciled",
		zap.Time("start_date", period.StartDate),
		zap.Time("end_date", period.EndDate),
		zap.Int("pharmacy_count", len(deduped)),
	)

	return true, nil
}

// dedupeIDs removes duplicates, keeping first-seen (matching) order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	deduped := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	return deduped
}
