// internal/service/forecast_service.go
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/plannink/forecast-api/internal/cache"
	"github.com/plannink/forecast-api/internal/domain"
	"github.com/plannink/forecast-api/internal/forecast"
	"github.com/plannink/forecast-api/internal/repository"
)

// recalcWorkers bounds the errgroup fan-out during bulk recalculation.
const recalcWorkers = 8

type ForecastService struct {
	repo     repository.ProductRepository
	cache    cache.ProjectionCache
	engine   *forecast.Engine
	defaults domain.PlanningConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewForecastService(repo repository.ProductRepository, cacheImpl cache.ProjectionCache, defaults domain.PlanningConfig) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopProjectionCache()
	}
	return &ForecastService{
		repo:     repo,
		cache:    cacheImpl,
		engine:   forecast.NewEngine(),
		defaults: defaults,
		locks:    make(map[string]*sync.Mutex),
	}
}

// productLock serializes mutations per product code so concurrent transit
// operations on the same product cannot race each other into a lost update.
func (s *ForecastService) productLock(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[code] = lock
	}
	return lock
}

// loadProduct fetches a product with its history and fills in the default
// planning configuration and derived parameters.
func (s *ForecastService) loadProduct(ctx context.Context, code string) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, code)
	if err != nil {
		return nil, err
	}

	p.Config = s.defaults
	if p.TransitDays > 0 {
		p.Config.TransitDays = p.TransitDays
	}

	if err := s.derive(p); err != nil {
		return nil, err
	}

	return p, nil
}

// derive recomputes the product-level replenishment parameters from its
// history and configuration.
func (s *ForecastService) derive(p *domain.Product) error {
	params, err := forecast.CalculateReorderParams(p.History, p.SafetyStock, p.Config)
	if err != nil {
		return err
	}

	p.AvgConsumption = params.AverageConsumption
	p.DailyConsumption = params.DailyConsumption
	p.MinimumStock = params.MinimumStock
	p.ReorderPoint = params.ReorderPoint
	p.TotalStock = p.PhysicalStock + p.UnitsInTransit

	if days, err := forecast.DaysOfCoverage(p.TotalStock, p.DailyConsumption); err == nil {
		p.DaysOfCoverage = days
	} else {
		// Zero daily consumption: coverage is not applicable.
		p.DaysOfCoverage = 0
	}

	if p.DailyConsumption > 0 && p.TotalStock > p.ReorderPoint {
		days := int((p.TotalStock - p.ReorderPoint) / p.DailyConsumption)
		p.RepositionDate = time.Now().AddDate(0, 0, days).Format("2006-01-02")
	}

	return nil
}

// GetProduct returns a product with its derived parameters and stockout
// risk, without the projection sequence.
func (s *ForecastService) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	return s.loadProduct(ctx, code)
}

// GetProjections returns the ordered projection sequence for a product,
// served from cache when possible.
func (s *ForecastService) GetProjections(ctx context.Context, code string) ([]domain.Projection, error) {
	if projections, ok, err := s.cache.Get(ctx, code); err == nil && ok {
		return projections, nil
	} else if err != nil {
		log.Warn().Err(err).Str("product", code).Msg("projection cache get failed")
	}

	p, err := s.loadProduct(ctx, code)
	if err != nil {
		return nil, err
	}

	overrides, err := s.repo.GetOverrides(ctx, code)
	if err != nil {
		return nil, err
	}

	projections, err := forecast.Generate(p, overrides)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, code, projections); err != nil {
		log.Warn().Err(err).Str("product", code).Msg("projection cache set failed")
	}

	return projections, nil
}

// GetWeeklyProjections returns the 4-points-per-month weekly decomposition
// used by the stock charts.
func (s *ForecastService) GetWeeklyProjections(ctx context.Context, code string) ([]domain.WeeklyPoint, error) {
	projections, err := s.GetProjections(ctx, code)
	if err != nil {
		return nil, err
	}

	return forecast.DeriveWeeklyFromMonthly(projections), nil
}

// StockoutRisk estimates the stockout probability for a product, together
// with the demand variability percent behind the estimate.
func (s *ForecastService) StockoutRisk(ctx context.Context, code string) (float64, float64, error) {
	p, err := s.loadProduct(ctx, code)
	if err != nil {
		return 0, 0, err
	}

	risk := forecast.StockoutRiskPercent(p.TotalStock, p.History, p.Config.LeadTimeDays)
	variability := forecast.VariabilityPercent(p.History)

	return risk, variability, nil
}

// ListProducts returns a filtered, paginated product page.
func (s *ForecastService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	return s.repo.ListProducts(ctx, filter)
}

// GetStatusSummary returns product counts per stock status.
func (s *ForecastService) GetStatusSummary(ctx context.Context) ([]domain.StatusSummary, error) {
	return s.repo.GetStatusSummary(ctx)
}

// ApplyTransitUnits adds in-transit units to a product, persists the new
// transit state, and returns the product with regenerated projections.
func (s *ForecastService) ApplyTransitUnits(ctx context.Context, code string, units int) (*domain.Product, error) {
	lock := s.productLock(code)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.loadProduct(ctx, code)
	if err != nil {
		return nil, err
	}

	overrides, err := s.repo.GetOverrides(ctx, code)
	if err != nil {
		return nil, err
	}

	updated, err := s.engine.ApplyTransitUnits(*p, units, overrides)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveTransitState(ctx, code, updated.UnitsInTransit, updated.TransitDays); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, code); err != nil {
		log.Warn().Err(err).Str("product", code).Msg("projection cache invalidate failed")
	}

	return &updated, nil
}

// ApplyTransitDays sets transit days globally or for one projection index,
// persists the updated state, and returns the product with regenerated
// projections. Per-index applications keep every other projection's applied
// flag intact.
func (s *ForecastService) ApplyTransitDays(ctx context.Context, code string, days int, projectionIndex *int) (*domain.Product, error) {
	lock := s.productLock(code)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.loadProduct(ctx, code)
	if err != nil {
		return nil, err
	}

	overrides, err := s.repo.GetOverrides(ctx, code)
	if err != nil {
		return nil, err
	}

	updated, newOverrides, err := s.engine.ApplyTransitDays(*p, days, projectionIndex, overrides)
	if err != nil {
		return nil, err
	}

	if projectionIndex != nil {
		if err := s.repo.SaveOverride(ctx, newOverrides[*projectionIndex]); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.SaveTransitState(ctx, code, updated.UnitsInTransit, updated.TransitDays); err != nil {
			return nil, err
		}
	}

	if err := s.cache.Invalidate(ctx, code); err != nil {
		log.Warn().Err(err).Str("product", code).Msg("projection cache invalidate failed")
	}

	return &updated, nil
}

// Recalculate re-derives parameters and projections for every product,
// fanning out across products while keeping per-product serialization.
func (s *ForecastService) Recalculate(ctx context.Context) (int, error) {
	codes, err := s.repo.ListCodes(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("projection cache flush failed")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(recalcWorkers)

	for _, code := range codes {
		code := code
		g.Go(func() error {
			lock := s.productLock(code)
			lock.Lock()
			defer lock.Unlock()

			p, err := s.loadProduct(ctx, code)
			if err != nil {
				return err
			}

			return s.repo.SaveDerived(ctx, p)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.Info().Int("products", len(codes)).Msg("recalculation completed")

	return len(codes), nil
}
