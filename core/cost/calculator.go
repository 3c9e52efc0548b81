// Package cost computes the monthly charge of an assigned plan.
// Billing is flat-rate-beyond-limit: within the limit the flat price
// applies; over the limit every billable connection is re-rated at the
// per-connection price and the flat price no longer applies.
package cost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"isp-billing/core/catalog"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// Calculate returns the monthly charge of plan for totalBillable
// connections. A zero rate over the limit yields a zero charge; that is
// the catalog owner's concern, not an error.
func Calculate(plan types.SubscriptionPlan, totalBillable int64) (types.MonthlyCost, error) {
	if err := catalog.ValidatePlan(plan); err != nil {
		return types.MonthlyCost{}, err
	}
	if totalBillable < 0 {
		return types.MonthlyCost{}, errors.Newf(errors.TypeInput, "negative billable connection count %d", totalBillable)
	}

	result := types.MonthlyCost{
		PlanID:              plan.ID,
		BillableConnections: totalBillable,
	}

	switch {
	case plan.IsUnlimited():
		result.Amount = plan.Price
		result.Formula = "flat monthly price (unlimited plan)"
	case totalBillable <= *plan.ConnectionLimit:
		result.Amount = plan.Price
		result.Formula = fmt.Sprintf("flat monthly price (%d of %d connections)", totalBillable, *plan.ConnectionLimit)
	default:
		result.Amount = decimal.NewFromInt(totalBillable).Mul(plan.PricePerConnection)
		result.Overage = true
		result.Formula = fmt.Sprintf("%d billable connections x %s per connection (limit %d exceeded)",
			totalBillable, plan.PricePerConnection.String(), *plan.ConnectionLimit)
	}

	return result, nil
}
