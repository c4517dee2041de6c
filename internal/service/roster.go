package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/cache"
	"github.com/krishna2206/pharmanio-backend/internal/config"
	"github.com/krishna2206/pharmanio-backend/internal/database"
	"github.com/krishna2206/pharmanio-backend/internal/ingest"
	"github.com/krishna2206/pharmanio-backend/internal/repository"
	"github.com/krishna2206/pharmanio-backend/internal/scraper"
)

// RosterService owns the ingestion pipeline and its schedule. It keeps
// the duty roster fresh by checking expiry at startup and once a day.
type RosterService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	controller  *ExpiryController
}

func NewRosterService(cfg *config.Config, logger *zap.Logger) (*RosterService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	registryRepo := repository.NewRegistryRepository(db, logger)
	rosterRepo := repository.NewRosterRepository(db, logger)

	fetcher := scraper.NewFetcher(cfg.Source.URL, time.Duration(cfg.Source.TimeoutSeconds)*time.Second, logger)
	parser := scraper.NewParser(logger)
	normalizer := scraper.NewNormalizer(scraper.DefaultCityAliases())

	matcher := ingest.NewMatcher(registryRepo, cfg.Ingest.MatchThreshold, logger)
	reconciler := ingest.NewReconciler(rosterRepo, logger)
	runner := ingest.NewRunner(fetcher, parser, normalizer, matcher, reconciler, logger)

	kv := cache.NewRedisKVStore(redisClient)
	rosterCache := cache.NewRosterCache(kv, cfg.Ingest.Cache.RosterKey, time.Duration(cfg.Ingest.Cache.TTLSeconds)*time.Second, logger)

	controller := NewExpiryController(rosterRepo, registryRepo, rosterCache, runner, logger)

	return &RosterService{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		controller:  controller,
	}, nil
}

// Start runs the expiry check once, then on a daily schedule until the
// context is cancelled.
func (s *RosterService) Start(ctx context.Context) error {
	s.logger.Info("Starting roster service",
		zap.String("source_url", s.config.Source.URL),
		zap.Int("check_hour", s.config.Ingest.CheckHour),
		zap.Float64("match_threshold", s.config.Ingest.MatchThreshold))

	if _, err := s.controller.EnsureFresh(ctx); err != nil {
		// The next scheduled check is the retry; the service keeps running.
		s.logger.Error("Startup roster check failed", zap.Error(err))
	}

	return s.runDailySchedule(ctx)
}

func (s *RosterService) runDailySchedule(ctx context.Context) error {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), s.config.Ingest.CheckHour, 0, 0, 0, now.Location())
		if next.Before(now) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))
		s.logger.Info("Next roster check scheduled",
			zap.Time("next_run", next),
			zap.Duration("wait", next.Sub(now)))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Roster schedule stopped")
			return nil
		case <-timer.C:
			if _, err := s.controller.EnsureFresh(ctx); err != nil {
				s.logger.Error("Scheduled roster check failed", zap.Error(err))
			}
		}
	}
}

// Stop releases the service's connections.
func (s *RosterService) Stop() {
	s.logger.Info("Stopping roster service")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database", zap.Error(err))
		}
	}

	s.logger.Info("Roster service stopped")
}
