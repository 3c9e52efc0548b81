package types

import "github.com/shopspring/decimal"

// Currency represents a currency code. The engine is currency-agnostic;
// callers attach a currency for display.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyDOP Currency = "DOP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// SelectionKind records which branch of plan selection produced a
// recommendation
type SelectionKind string

const (
	// SelectionCovering is the cheapest plan whose capacity covers demand
	SelectionCovering SelectionKind = "covering"

	// SelectionCapacityFallback is the highest-capacity plan when no
	// candidate covers demand
	SelectionCapacityFallback SelectionKind = "capacity_fallback"
)

// Recommendation is the plan chosen for a billable connection count
type Recommendation struct {
	// Plan is the chosen plan
	Plan SubscriptionPlan `json:"plan"`

	// BillableConnections is the demand used to choose it
	BillableConnections int64 `json:"billable_connections"`

	// Kind identifies the selection branch
	Kind SelectionKind `json:"kind"`

	// Reason is a human-readable justification
	Reason string `json:"reason"`
}

// IsFallback reports whether the plan under-covers demand
func (r Recommendation) IsFallback() bool {
	return r.Kind == SelectionCapacityFallback
}

// MonthlyCost is the monthly charge for an assigned plan
type MonthlyCost struct {
	// PlanID is the plan being costed
	PlanID string `json:"plan_id"`

	// BillableConnections is the usage the cost was computed for
	BillableConnections int64 `json:"billable_connections"`

	// Amount is the monthly charge
	Amount decimal.Decimal `json:"amount"`

	// Overage is true when usage exceeded the limit and the whole usage
	// was re-rated at the per-connection price
	Overage bool `json:"overage"`

	// Formula describes how Amount was calculated
	Formula string `json:"formula"`
}

// AdviceAction is the outcome of comparing an assigned plan against the
// recommendation
type AdviceAction string

const (
	AdviceKeep      AdviceAction = "keep"
	AdviceUpgrade   AdviceAction = "upgrade"
	AdviceDowngrade AdviceAction = "downgrade"
	AdviceSwitch    AdviceAction = "switch"
)

// UpgradeAdvice compares the assigned plan's cost with the recommended
// plan's cost at the same usage
type UpgradeAdvice struct {
	Action          AdviceAction    `json:"action"`
	FromPlanID      string          `json:"from_plan_id"`
	ToPlanID        string          `json:"to_plan_id"`
	CurrentCost     decimal.Decimal `json:"current_cost"`
	RecommendedCost decimal.Decimal `json:"recommended_cost"`

	// MonthlyDelta is RecommendedCost - CurrentCost; negative means savings
	MonthlyDelta decimal.Decimal `json:"monthly_delta"`
}
