package domain

import "strings"

// StockStatus is the three-state stock classification.
type StockStatus string

const (
	StatusDanger  StockStatus = "danger"
	StatusWarning StockStatus = "warning"
	StatusSafe    StockStatus = "safe"
)

// RequiredAction classifies what the planner should do about a projection.
type RequiredAction string

const (
	ActionSufficient RequiredAction = "SUFFICIENT"
	ActionOrderNow   RequiredAction = "ORDER_NOW"
	ActionMonitor    RequiredAction = "MONITOR"
)

var actionLabels = map[RequiredAction]string{
	ActionSufficient: "Stock suficiente",
	ActionOrderNow:   "Pedir ahora",
	ActionMonitor:    "Monitorear",
}

var actionCodes = map[string]RequiredAction{
	"stock suficiente": ActionSufficient,
	"pedir ahora":      ActionOrderNow,
	"monitorear":       ActionMonitor,
}

// Label returns the display text the dashboard shows for an action.
func (a RequiredAction) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}

	return actionLabels[ActionMonitor]
}

// ParseRequiredAction returns the action for a given display label
// (case-insensitive).
func ParseRequiredAction(label string) (RequiredAction, bool) {
	action, ok := actionCodes[strings.ToLower(strings.TrimSpace(label))]

	return action, ok
}

// ClassifyStock applies the strict priority cascade: danger when stock is
// strictly below safety stock, warning when strictly below the reorder
// point, safe otherwise. Equality never downgrades (stock == safetyStock is
// not danger; stock == reorderPoint is not warning).
func ClassifyStock(stock, safetyStock, reorderPoint float64) StockStatus {
	switch {
	case stock < safetyStock:
		return StatusDanger
	case stock < reorderPoint:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// ActionFor maps the stock classification onto the planner action enum.
func ActionFor(status StockStatus) RequiredAction {
	switch status {
	case StatusDanger:
		return ActionOrderNow
	case StatusWarning:
		return ActionMonitor
	default:
		return ActionSufficient
	}
}
