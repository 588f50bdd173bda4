// Package report serves the aggregate reports, fronted by an optional
// redis cache.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"northwind/internal/model"
	"northwind/internal/repository"
)

type Service struct {
	repo *repository.ReportRepo
	rdb  *redis.Client // nil disables caching
	ttl  time.Duration
}

func NewService(repo *repository.ReportRepo, rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{repo: repo, rdb: rdb, ttl: ttl}
}

// cached serves key from redis when fresh, otherwise computes, stores and
// returns. A broken or absent cache never fails the report.
func cached[T any](ctx context.Context, s *Service, key string, compute func(context.Context) ([]T, error)) ([]T, error) {
	if s.rdb == nil {
		return compute(ctx)
	}

	// 1. Попытка загрузить из Redis
	cachedStr, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var out []T
		if err := json.Unmarshal([]byte(cachedStr), &out); err == nil {
			return out, nil
		}
		log.Warn().Str("key", key).Msg("⚠️ corrupt report cache entry, recomputing")
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("key", key).Msg("⚠️ report cache unreachable, computing directly")
	}

	// 2. Считаем отчёт напрямую
	out, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Сохраняем в Redis
	jsonData, err := json.Marshal(out)
	if err == nil {
		if err := s.rdb.Set(ctx, key, jsonData, s.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("⚠️ failed to cache report")
		}
	}
	return out, nil
}

func (s *Service) TopCustomers(ctx context.Context, limit, year int) ([]model.TopCustomerRow, error) {
	key := fmt.Sprintf("report:top-customers:limit=%d:year=%d", limit, year)
	return cached(ctx, s, key, func(ctx context.Context) ([]model.TopCustomerRow, error) {
		return s.repo.TopCustomers(ctx, limit, year)
	})
}

func (s *Service) SalesByCategory(ctx context.Context, year int) ([]model.CategorySalesRow, error) {
	key := fmt.Sprintf("report:sales-by-category:year=%d", year)
	return cached(ctx, s, key, func(ctx context.Context) ([]model.CategorySalesRow, error) {
		return s.repo.SalesByCategory(ctx, year)
	})
}

func (s *Service) SalesByYear(ctx context.Context) ([]model.YearSalesRow, error) {
	return cached(ctx, s, "report:sales-by-year", func(ctx context.Context) ([]model.YearSalesRow, error) {
		return s.repo.SalesByYear(ctx)
	})
}

func (s *Service) SupplierStats(ctx context.Context) ([]model.SupplierStatsRow, error) {
	return cached(ctx, s, "report:supplier-stats", func(ctx context.Context) ([]model.SupplierStatsRow, error) {
		return s.repo.SupplierStats(ctx)
	})
}

func (s *Service) EmployeeSales(ctx context.Context, year int) ([]model.EmployeeSalesRow, error) {
	key := fmt.Sprintf("report:employee-sales:year=%d", year)
	return cached(ctx, s, key, func(ctx context.Context) ([]model.EmployeeSalesRow, error) {
		return s.repo.EmployeeSales(ctx, year)
	})
}
