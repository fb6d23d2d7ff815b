package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/infrastructure/events"
	"github.com/aryan0dhankhar/workshop/pkg/cache"
)

const statsCacheKey = "dashboard:stats"

// StatsCache is the string cache shared by the redis client and the
// in-memory cache.Store. Get returns cache.ErrMiss for absent keys.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DashboardService computes the dashboard counters
type DashboardService struct {
	store  domain.StatsStore
	cache  StatsCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewDashboardService creates a dashboard service. A nil cache or a
// non-positive ttl disables caching.
func NewDashboardService(store domain.StatsStore, c StatsCache, ttl time.Duration, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{store: store, cache: c, ttl: ttl, logger: logger}
}

// Stats returns the headline counters, from the cache while fresh
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if stats, ok := s.cached(ctx); ok {
		return stats, nil
	}

	stats := &domain.DashboardStats{}
	counters := []struct {
		entity domain.Entity
		dst    *int
	}{
		{domain.EntityCustomers, &stats.Customers},
		{domain.EntityVehicles, &stats.Vehicles},
		{domain.EntityVendors, &stats.Vendors},
		{domain.EntityParts, &stats.Parts},
		{domain.EntityServiceRecords, &stats.ServiceRecords},
	}
	for _, c := range counters {
		n, err := s.store.Count(ctx, c.entity)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.entity, err)
		}
		*c.dst = n
	}
	pending, err := s.store.CountAppointmentsByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending appointments: %w", err)
	}
	stats.PendingAppointments = pending

	s.remember(ctx, stats)
	return stats, nil
}

// Invalidate drops the cached counters
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", slog.String("error", err.Error()))
	}
}

// Publish drops the cached counters when a domain event changes them, so the
// service can sit in an events.Fanout next to the broker publisher.
func (s *DashboardService) Publish(ctx context.Context, _ events.Event) error {
	s.Invalidate(ctx)
	return nil
}

func (s *DashboardService) cached(ctx context.Context) (*domain.DashboardStats, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("stats cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}
	var stats domain.DashboardStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (s *DashboardService) remember(ctx context.Context, stats *domain.DashboardStats) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, string(raw), s.ttl); err != nil {
		s.logger.Warn("stats cache write failed", slog.String("error", err.Error()))
	}
}
