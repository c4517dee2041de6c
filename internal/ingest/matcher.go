package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

// PharmacyRegistry is the read-only view of the canonical registry the
// matcher consumes.
type PharmacyRegistry interface {
	ListByCity(city string) ([]models.Pharmacy, error)
	CityExists(city string) (bool, error)
}

// MatchOutcome classifies the result of matching one listing.
type MatchOutcome int

const (
	OutcomeMatched MatchOutcome = iota
	OutcomeNoCityCoverage
	OutcomeNoConfidentMatch
)

// Match is an accepted pairing of a raw listing with a canonical pharmacy.
type Match struct {
	PharmacyID int64
	Name       string
	Ratio      float64
}

// Matcher pairs raw listing names with canonical pharmacies, city by city.
type Matcher struct {
	registry  PharmacyRegistry
	threshold float64
	logger    *zap.Logger
}

// NewMatcher creates a matcher. threshold is the exclusive lower bound a
// similarity ratio must clear for a match to be accepted.
func NewMatcher(registry PharmacyRegistry, threshold float64, logger *zap.Logger) *Matcher {
	return &Matcher{
		registry:  registry,
		threshold: threshold,
		logger:    logger,
	}
}

// Match finds the canonical pharmacy best matching rawName within city.
// Candidates are scored in registry order and only a strictly better
// ratio displaces the current best, so ties keep the first-seen
// candidate and the result is deterministic for a given registry
// snapshot.
func (m *Matcher) Match(rawName, city string) (*Match, MatchOutcome, error) {
	candidates, err := m.registry.ListByCity(city)
	if err != nil {
		return nil, OutcomeNoCityCoverage, fmt.Errorf("failed to load candidates: %w", err)
	}

	if len(candidates) == 0 {
		exists, err := m.registry.CityExists(city)
		if err != nil {
			return nil, OutcomeNoCityCoverage, fmt.Errorf("failed to check city: %w", err)
		}
		if exists {
			m.logger.Warn("No pharmacies registered for city",
				zap.String("city", city),
				zap.String("raw_name", rawName),
			)
		} else {
			m.logger.Warn("City not covered by registry",
				zap.String("city", city),
				zap.String("raw_name", rawName),
			)
		}
		return nil, OutcomeNoCityCoverage, nil
	}

	var best *models.Pharmacy
	bestRatio := 0.0
	for i := range candidates {
		ratio := similarityRatio(rawName, candidates[i].Name)
		if ratio > bestRatio {
			bestRatio = ratio
			best = &candidates[i]
		}
	}

	if best == nil || bestRatio <= m.threshold {
		m.logger.Info("No confident match for listing",
			zap.String("raw_name", rawName),
			zap.String("city", city),
			zap.Float64("best_ratio", bestRatio),
			zap.Float64("threshold", m.threshold),
		)
		return nil, OutcomeNoConfidentMatch, nil
	}

	m.logger.Debug("Matched listing",
		zap.String("raw_name", rawName),
		zap.String("matched_name", best.Name),
		zap.Int64("pharmacy_id", best.ID),
		zap.Float64("ratio", bestRatio),
	)

	return &Match{PharmacyID: best.ID, Name: best.Name, Ratio: bestRatio}, OutcomeMatched, nil
}
