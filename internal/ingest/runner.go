package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

// PageFetcher retrieves the publication markup.
type PageFetcher interface {
	FetchPage(ctx context.Context) (string, error)
}

// PageParser extracts the period and raw listings from markup.
type PageParser interface {
	Parse(markup string) (*models.ValidityPeriod, []models.RawListing, error)
}

// CityNormalizer maps raw city tokens to canonical names.
type CityNormalizer interface {
	Normalize(token string) string
}

// RunSummary describes one ingest run.
type RunSummary struct {
	RunID            string
	Period           *models.ValidityPeriod
	Listings         int
	Matched          int
	NoCityCoverage   int
	NoConfidentMatch int
	RosterUpdated    bool
	Duration         time.Duration
}

// Runner executes the full ingest pipeline: fetch, parse, normalize,
// match, reconcile.
type Runner struct {
	fetcher    PageFetcher
	parser     PageParser
	normalizer CityNormalizer
	matcher    *Matcher
	reconciler *Reconciler
	logger     *zap.Logger
}

// NewRunner wires the pipeline stages together.
func NewRunner(
	fetcher PageFetcher,
	parser PageParser,
	normalizer CityNormalizer,
	matcher *Matcher,
	reconciler *Reconciler,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		fetcher:    fetcher,
		parser:     parser,
		normalizer: normalizer,
		matcher:    matcher,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Run performs one full ingest and reports what happened. Fetch and
// reconcile failures abort the run; parse gaps and unmatched listings
// degrade it listing by listing.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{RunID: uuid.New().String()}
	started := time.Now()
	log := r.logger.With(zap.String("run_id", summary.RunID))

	log.Info("Starting ingest run")

	markup, err := r.fetcher.FetchPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch publication: %w", err)
	}

	period, listings, err := r.parser.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publication: %w", err)
	}
	summary.Period = period
	summary.Listings = len(listings)

	var matchedIDs []int64
	for _, listing := range listings {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		city := r.normalizer.Normalize(listing.CityToken)
		match, outcome, err := r.matcher.Match(listing.Name, city)
		if err != nil {
			return nil, fmt.Errorf("failed to match listing %q: %w", listing.Name, err)
		}

		switch outcome {
		case OutcomeMatched:
			matchedIDs = append(matchedIDs, match.PharmacyID)
			summary.Matched++
		case OutcomeNoCityCoverage:
			summary.NoCityCoverage++
		case OutcomeNoConfidentMatch:
			summary.NoConfidentMatch++
		}
	}

	updated, err := r.reconciler.Reconcile(period, matchedIDs)
	if err != nil {
		return nil, err
	}
	summary.RosterUpdated = updated
	summary.Duration = time.Since(started)

	log.Info("Ingest run finished",
		zap.Int("listings", summary.Listings),
		zap.Int("matched", summary.Matched),
		zap.Int("no_city_coverage", summary.NoCityCoverage),
		zap.Int("no_confident_match", summary.NoConfidentMatch),
		zap.Bool("roster_updated", summary.RosterUpdated),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}
