package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/plannink/forecast-api/internal/cache"
	"github.com/plannink/forecast-api/internal/domain"
	"github.com/plannink/forecast-api/internal/repository"
)

type fakeRepo struct {
	mu        sync.Mutex
	products  map[string]*domain.Product
	overrides map[string]map[int]domain.TransitOverride
	saved     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:  make(map[string]*domain.Product),
		overrides: make(map[string]map[int]domain.TransitOverride),
	}
}

func (f *fakeRepo) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	p, ok := f.products[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrProductNotFound, code)
	}
	cp := *p
	cp.History = make(map[string]float64, len(p.History))
	for k, v := range p.History {
		cp.History[k] = v
	}
	return &cp, nil
}

func (f *fakeRepo) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	var out []domain.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	for code := range f.products {
		codes = append(codes, code)
	}
	return codes, nil
}

func (f *fakeRepo) SaveDerived(ctx context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved++
	return nil
}

func (f *fakeRepo) SaveTransitState(ctx context.Context, code string, unitsInTransit float64, transitDays int) error {
	p, ok := f.products[code]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.UnitsInTransit = unitsInTransit
	p.TransitDays = transitDays
	return nil
}

func (f *fakeRepo) GetHistory(ctx context.Context, code string) (map[string]float64, error) {
	if p, ok := f.products[code]; ok {
		return p.History, nil
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeRepo) GetOverrides(ctx context.Context, code string) (map[int]domain.TransitOverride, error) {
	result := make(map[int]domain.TransitOverride)
	for idx, ov := range f.overrides[code] {
		result[idx] = ov
	}
	return result, nil
}

func (f *fakeRepo) SaveOverride(ctx context.Context, override domain.TransitOverride) error {
	if f.overrides[override.ProductCode] == nil {
		f.overrides[override.ProductCode] = make(map[int]domain.TransitOverride)
	}
	f.overrides[override.ProductCode][override.ProjectionIndex] = override
	return nil
}

func (f *fakeRepo) GetStatusSummary(ctx context.Context) ([]domain.StatusSummary, error) {
	return []domain.StatusSummary{}, nil
}

func testDefaults() domain.PlanningConfig {
	return domain.PlanningConfig{
		SafetyStockDays:      15,
		ReorderPointDays:     44,
		StockAlarmDays:       7,
		LeadTimeDays:         15,
		MaxReplenishmentDays: 30,
		WorkingDaysPerMonth:  22,
		HorizonMonths:        6,
		ModelVersion:         "v2",
	}
}

func seedProduct(repo *fakeRepo) {
	repo.products["PRD-001"] = &domain.Product{
		Code:          "PRD-001",
		Description:   "Test product",
		PhysicalStock: 500,
		UnitsPerBox:   12,
		SafetyStock:   100,
		History: map[string]float64{
			"01-2024": 200,
			"02-2024": 250,
			"03-2024": 300,
			"04-2024": 280,
			"05-2024": 220,
		},
		HorizonStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestService() (*ForecastService, *fakeRepo) {
	repo := newFakeRepo()
	seedProduct(repo)
	return NewForecastService(repo, cache.NewNoopProjectionCache(), testDefaults()), repo
}

func TestGetProjections(t *testing.T) {
	svc, _ := newTestService()

	projections, err := svc.GetProjections(context.Background(), "PRD-001")
	if err != nil {
		t.Fatalf("GetProjections failed: %v", err)
	}

	if len(projections) != 6 {
		t.Fatalf("got %d projections, want 6", len(projections))
	}
	if projections[0].OpeningStock != 500 {
		t.Errorf("projection 0 opens at %v, want 500", projections[0].OpeningStock)
	}
}

func TestGetProjections_UnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetProjections(context.Background(), "NOPE")
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestApplyTransitUnits_PersistsState(t *testing.T) {
	svc, repo := newTestService()

	updated, err := svc.ApplyTransitUnits(context.Background(), "PRD-001", 120)
	if err != nil {
		t.Fatalf("ApplyTransitUnits failed: %v", err)
	}

	if updated.TotalStock != updated.PhysicalStock+updated.UnitsInTransit {
		t.Errorf("total stock invariant broken: %v != %v + %v",
			updated.TotalStock, updated.PhysicalStock, updated.UnitsInTransit)
	}

	if repo.products["PRD-001"].UnitsInTransit != 120 {
		t.Errorf("transit units not persisted: %v", repo.products["PRD-001"].UnitsInTransit)
	}

	if len(updated.Projections) != 6 {
		t.Errorf("projections not regenerated: %d", len(updated.Projections))
	}
}

func TestApplyTransitUnits_RejectedCallLeavesState(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.ApplyTransitUnits(context.Background(), "PRD-001", 0)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if repo.products["PRD-001"].UnitsInTransit != 0 {
		t.Errorf("rejected mutation changed persisted state: %v", repo.products["PRD-001"].UnitsInTransit)
	}
}

func TestApplyTransitDays_FlagSurvivesOtherMutations(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	idx2 := 2
	updated, err := svc.ApplyTransitDays(ctx, "PRD-001", 5, &idx2)
	if err != nil {
		t.Fatalf("ApplyTransitDays failed: %v", err)
	}
	if !updated.Projections[2].TransitDaysApplied {
		t.Fatal("projection 2 should carry the applied flag")
	}

	// An unrelated transit-units mutation regenerates everything; the
	// persisted flag must come back on projection 2 and nothing else.
	updated, err = svc.ApplyTransitUnits(ctx, "PRD-001", 60)
	if err != nil {
		t.Fatalf("ApplyTransitUnits failed: %v", err)
	}

	for i, proj := range updated.Projections {
		want := i == 2
		if proj.TransitDaysApplied != want {
			t.Errorf("projection %d applied flag = %v, want %v", i, proj.TransitDaysApplied, want)
		}
	}

	if ov := repo.overrides["PRD-001"][2]; !ov.Applied || ov.TransitDays != 5 {
		t.Errorf("override not persisted: %+v", ov)
	}
}

func TestApplyTransitDays_Global(t *testing.T) {
	svc, repo := newTestService()

	updated, err := svc.ApplyTransitDays(context.Background(), "PRD-001", 10, nil)
	if err != nil {
		t.Fatalf("ApplyTransitDays failed: %v", err)
	}

	if updated.TransitDays != 10 {
		t.Errorf("transit days = %d, want 10", updated.TransitDays)
	}
	if repo.products["PRD-001"].TransitDays != 10 {
		t.Errorf("global transit days not persisted: %d", repo.products["PRD-001"].TransitDays)
	}
}

func TestRecalculate(t *testing.T) {
	svc, repo := newTestService()
	repo.products["PRD-002"] = &domain.Product{
		Code:          "PRD-002",
		PhysicalStock: 40,
		SafetyStock:   10,
		History:       map[string]float64{"01-2024": 50, "02-2024": 60},
	}

	count, err := svc.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	if count != 2 {
		t.Errorf("recalculated %d products, want 2", count)
	}
	if repo.saved != 2 {
		t.Errorf("derived fields saved %d times, want 2", repo.saved)
	}
}

func TestStockoutRisk_InRange(t *testing.T) {
	svc, _ := newTestService()

	risk, variability, err := svc.StockoutRisk(context.Background(), "PRD-001")
	if err != nil {
		t.Fatalf("StockoutRisk failed: %v", err)
	}
	if risk < 0 || risk > 100 {
		t.Errorf("risk %v outside [0,100]", risk)
	}
	if variability < 0 {
		t.Errorf("variability %v should not be negative", variability)
	}
}
