// internal/ingest/normalizer.go
package ingest

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plannink/forecast-api/internal/domain"
	"github.com/plannink/forecast-api/internal/forecast"
)

// SchemaVersion identifies the alias table in effect. Bump it when a new
// upstream export format introduces header names.
const SchemaVersion = "v1"

// Canonical column names produced by the normalizer.
const (
	colCode           = "code"
	colDescription    = "description"
	colPhysicalStock  = "physical_stock"
	colUnitsInTransit = "units_in_transit"
	colUnitsPerBox    = "units_per_box"
	colSafetyStock    = "safety_stock"
	colDeficit        = "deficit"
	colBoxesToOrder   = "boxes_to_order"
	colUnitsToOrder   = "units_to_order"
	colTransitDays    = "transit_days"
	colReplenishFreq  = "replenishment_frequency"
)

// headerAliases maps every legacy header spelling seen in upstream exports
// to its canonical column. The mapping happens once per file at the
// ingestion boundary; nothing downstream ever probes alternate names.
var headerAliases = map[string]string{
	"codigo":                 colCode,
	"código":                 colCode,
	"code":                   colCode,
	"sku":                    colCode,
	"descripcion":            colDescription,
	"descripción":            colDescription,
	"description":            colDescription,
	"nombre":                 colDescription,
	"producto":               colDescription,
	"stock":                  colPhysicalStock,
	"stock_fisico":           colPhysicalStock,
	"stock_físico":           colPhysicalStock,
	"existencias":            colPhysicalStock,
	"unidades_transito":      colUnitsInTransit,
	"unidades_tránsito":      colUnitsInTransit,
	"en_transito":            colUnitsInTransit,
	"transito":               colUnitsInTransit,
	"unidades_por_caja":      colUnitsPerBox,
	"unidades_caja":          colUnitsPerBox,
	"uxc":                    colUnitsPerBox,
	"stock_seguridad":        colSafetyStock,
	"safety_stock":           colSafetyStock,
	"deficit":                colDeficit,
	"déficit":                colDeficit,
	"cajas_a_pedir":          colBoxesToOrder,
	"cajas_pedir":            colBoxesToOrder,
	"unidades_a_pedir":       colUnitsToOrder,
	"unidades_pedir":         colUnitsToOrder,
	"dias_transito":          colTransitDays,
	"días_tránsito":          colTransitDays,
	"frecuencia_reposicion":  colReplenishFreq,
	"frecuencia_reposición":  colReplenishFreq,
}

// normalizeHeader lowercases, trims, and underscores a raw header cell.
func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.ReplaceAll(h, " ", "_")
}

// columnMap resolves a header row into column index -> canonical name.
// Headers that parse as "MM-YYYY" month keys become history columns keyed
// by the month. Unknown headers are reported and skipped.
type columnMap struct {
	canonical map[int]string
	months    map[int]string
}

func resolveColumns(headers []string) columnMap {
	cm := columnMap{
		canonical: make(map[int]string),
		months:    make(map[int]string),
	}

	for i, raw := range headers {
		h := normalizeHeader(raw)
		if h == "" {
			continue
		}

		if canonical, ok := headerAliases[h]; ok {
			cm.canonical[i] = canonical
			continue
		}

		if t, err := forecast.ParseMonthKey(h); err == nil {
			cm.months[i] = forecast.MonthKey(t)
			continue
		}

		log.Debug().Str("header", raw).Str("schema", SchemaVersion).Msg("unknown column skipped")
	}

	return cm
}

// ParseRecords turns a header row plus data rows into products with their
// monthly history. Rows without a product code are skipped with a warning;
// unparseable numeric cells default to 0 and are reported as
// DataIntegrityWarnings rather than aborting the file.
func ParseRecords(headers []string, rows [][]string) ([]domain.Product, []domain.DataIntegrityWarning) {
	cm := resolveColumns(headers)

	var products []domain.Product
	var warnings []domain.DataIntegrityWarning

	for _, row := range rows {
		p := domain.Product{History: make(map[string]float64)}

		for i, name := range cm.canonical {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])

			switch name {
			case colCode:
				p.Code = cell
			case colDescription:
				p.Description = cell
			default:
				value, ok := parseNumber(cell)
				if !ok && cell != "" {
					warnings = append(warnings, domain.DataIntegrityWarning{
						ProductCode: p.Code,
						Field:       name,
						Message:     "unparseable numeric value, defaulted to 0",
					})
				}
				assignNumeric(&p, name, value)
			}
		}

		for i, monthKey := range cm.months {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			value, ok := parseNumber(cell)
			if !ok {
				warnings = append(warnings, domain.DataIntegrityWarning{
					ProductCode: p.Code,
					Field:       monthKey,
					Message:     "unparseable history value, defaulted to 0",
				})
			}
			p.History[monthKey] = value
		}

		if p.Code == "" {
			warnings = append(warnings, domain.DataIntegrityWarning{
				Field:   colCode,
				Message: "row without product code skipped",
			})
			continue
		}

		p.TotalStock = p.PhysicalStock + p.UnitsInTransit
		products = append(products, p)
	}

	return products, warnings
}

func assignNumeric(p *domain.Product, name string, value float64) {
	switch name {
	case colPhysicalStock:
		p.PhysicalStock = value
	case colUnitsInTransit:
		p.UnitsInTransit = value
	case colUnitsPerBox:
		p.UnitsPerBox = int(value)
	case colSafetyStock:
		p.SafetyStock = value
	case colDeficit:
		p.Deficit = value
	case colBoxesToOrder:
		p.BoxesToOrder = int(value)
	case colUnitsToOrder:
		p.UnitsToOrder = value
	case colTransitDays:
		p.TransitDays = int(value)
	case colReplenishFreq:
		p.ReplenishmentFrequency = int(value)
	}
}

// parseNumber accepts both "1234.5" and the "1.234,5" style some exports
// use. Empty cells are 0 without being an error.
func parseNumber(cell string) (float64, bool) {
	if cell == "" {
		return 0, true
	}

	s := cell
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
