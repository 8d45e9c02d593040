// internal/domain/models.go
package domain

import "time"

// Product represents a stock-keeping unit under planning.
// JSON tags follow the field naming used by the prediction API:
// uppercase snake-case for product-level fields.
type Product struct {
	Code                 string  `json:"CODIGO" db:"code"`
	Description          string  `json:"DESCRIPCION" db:"description"`
	PhysicalStock        float64 `json:"STOCK_FISICO" db:"physical_stock"`
	UnitsInTransit       float64 `json:"UNIDADES_TRANSITO" db:"units_in_transit"`
	TotalStock           float64 `json:"STOCK_TOTAL" db:"total_stock"`
	UnitsPerBox          int     `json:"UNIDADES_POR_CAJA" db:"units_per_box"`
	SafetyStock          float64 `json:"STOCK_SEGURIDAD" db:"safety_stock"`
	MinimumStock         float64 `json:"STOCK_MINIMO" db:"minimum_stock"`
	ReorderPoint         float64 `json:"PUNTO_REORDEN" db:"reorder_point"`
	AvgConsumption       float64 `json:"CONSUMO_PROMEDIO" db:"avg_consumption"`
	DailyConsumption     float64 `json:"CONSUMO_DIARIO" db:"daily_consumption"`
	ProjectedConsumption float64 `json:"CONSUMO_PROYECTADO" db:"projected_consumption"`
	Deficit              float64 `json:"DEFICIT" db:"deficit"`
	BoxesToOrder         int     `json:"CAJAS_A_PEDIR" db:"boxes_to_order"`
	UnitsToOrder         float64 `json:"UNIDADES_A_PEDIR" db:"units_to_order"`
	RepositionDate       string  `json:"FECHA_REPOSICION" db:"reposition_date"`
	DaysOfCoverage       int     `json:"DIAS_COBERTURA" db:"days_of_coverage"`
	ReplenishmentFrequency int   `json:"FRECUENCIA_REPOSICION" db:"replenishment_frequency"`
	TransitDays          int     `json:"DIAS_TRANSITO" db:"transit_days"`
	HorizonStart         time.Time `json:"FECHA_INICIO" db:"horizon_start"`

	// History maps "MM-YYYY" month keys to consumed quantities. It is
	// chronological once sorted with forecast.SortMonthKeys.
	History map[string]float64 `json:"CONSUMO_HISTORICO" db:"-"`

	Config PlanningConfig `json:"CONFIGURACION" db:"-"`

	Projections []Projection `json:"PROYECCIONES,omitempty" db:"-"`
}

// PlanningConfig is the immutable-per-calculation parameter set.
// All day-count fields must be positive.
type PlanningConfig struct {
	SafetyStockDays      int    `json:"DIAS_STOCK_SEGURIDAD" db:"safety_stock_days"`
	ReorderPointDays     int    `json:"DIAS_PUNTO_REORDEN" db:"reorder_point_days"`
	StockAlarmDays       int    `json:"DIAS_ALARMA_STOCK" db:"stock_alarm_days"`
	LeadTimeDays         int    `json:"DIAS_REPOSICION" db:"lead_time_days"`
	MaxReplenishmentDays int    `json:"DIAS_MAX_REPOSICION" db:"max_replenishment_days"`
	WorkingDaysPerMonth  int    `json:"DIAS_LABORALES_MES" db:"working_days_per_month"`
	TransitDays          int    `json:"DIAS_TRANSITO" db:"transit_days"`
	HorizonMonths        int    `json:"MESES_HORIZONTE" db:"horizon_months"`
	ModelVersion         string `json:"VERSION_MODELO" db:"model_version"`
	CalculationMethod    string `json:"METODO_CALCULO,omitempty" db:"calculation_method"`
}

// Projection is one forecast period in the ordered planning horizon.
// Index 0 is the nearest period. Lowercase snake-case tags match the
// prediction API's projection records.
type Projection struct {
	Month              string             `json:"mes"`
	ProjectedStock     float64            `json:"stock_proyectado"`
	OpeningStock       float64            `json:"stock_inicial"`
	TransitDays        int                `json:"dias_transito"`
	StartDate          time.Time          `json:"fecha_inicio"`
	EndDate            time.Time          `json:"fecha_fin"`
	MonthlyConsumption float64            `json:"consumo_mensual"`
	DailyConsumption   float64            `json:"consumo_diario"`
	SafetyStock        float64            `json:"stock_seguridad"`
	MinimumStock       float64            `json:"stock_minimo"`
	ReorderPoint       float64            `json:"punto_reorden"`
	Deficit            float64            `json:"deficit"`
	BoxesToOrder       int                `json:"cajas_a_pedir"`
	UnitsToOrder       float64            `json:"unidades_a_pedir"`
	StockAlert         bool               `json:"alerta_stock"`
	RepositionDate     string             `json:"fecha_reposicion"`
	RequestDate        string             `json:"fecha_solicitud"`
	ArrivalDate        string             `json:"fecha_llegada"`
	CoverageDays       int                `json:"dias_cobertura"`
	UnitsInTransit     float64            `json:"unidades_transito"`
	PendingOrders      map[string]float64 `json:"pedidos_pendientes,omitempty"`
	ReceivedOrders     float64            `json:"pedidos_recibidos"`
	RequiredAction     string             `json:"accion_requerida"`
	TransitDaysApplied bool               `json:"dias_transito_aplicados"`
}

// Critical reports whether the projection sits below safety stock. The UI
// renders this as a stricter sub-condition of the alert flag; it is computed
// on read, never stored.
func (p Projection) Critical() bool {
	return p.ProjectedStock < p.SafetyStock
}

// WeeklyPoint is a display-oriented weekly decomposition of a monthly
// projection. It approximates intra-month decay and is not authoritative
// stock accounting.
type WeeklyPoint struct {
	Label       string  `json:"semana"`
	Month       string  `json:"mes"`
	Stock       float64 `json:"stock"`
	Consumption float64 `json:"consumo"`
}

// TransitOverride is the persisted per-projection transit-day state. It is
// the durable home of the TransitDaysApplied flag: regeneration reads the
// overrides back onto the Projection records, so callers never see the flag
// reset by unrelated recomputation.
type TransitOverride struct {
	ProductCode     string `json:"product_code" db:"product_code"`
	ProjectionIndex int    `json:"projection_index" db:"projection_index"`
	TransitDays     int    `json:"transit_days" db:"transit_days"`
	Applied         bool   `json:"applied" db:"applied"`
}

// ProductFilter holds list-query filters.
type ProductFilter struct {
	Codes    []string `json:"codes"`
	Status   string   `json:"status"`
	Search   string   `json:"search"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// StatusSummary is one row of the per-status product count breakdown.
type StatusSummary struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}
