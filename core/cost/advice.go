package cost

import (
	"isp-billing/core/types"
)

// Advise compares the assigned plan with a recommendation at the same usage.
// Action is keep when they are the same plan, otherwise upgrade or
// downgrade by capacity, or switch when capacities are equal.
func Advise(assigned types.SubscriptionPlan, rec types.Recommendation) (types.UpgradeAdvice, error) {
	current, err := Calculate(assigned, rec.BillableConnections)
	if err != nil {
		return types.UpgradeAdvice{}, err
	}
	proposed, err := Calculate(rec.Plan, rec.BillableConnections)
	if err != nil {
		return types.UpgradeAdvice{}, err
	}

	advice := types.UpgradeAdvice{
		FromPlanID:      assigned.ID,
		ToPlanID:        rec.Plan.ID,
		CurrentCost:     current.Amount,
		RecommendedCost: proposed.Amount,
		MonthlyDelta:    proposed.Amount.Sub(current.Amount),
	}

	switch {
	case assigned.ID == rec.Plan.ID:
		advice.Action = types.AdviceKeep
	case capacityGreater(rec.Plan, assigned):
		advice.Action = types.AdviceUpgrade
	case capacityGreater(assigned, rec.Plan):
		advice.Action = types.AdviceDowngrade
	default:
		advice.Action = types.AdviceSwitch
	}
	return advice, nil
}

func capacityGreater(a, b types.SubscriptionPlan) bool {
	switch {
	case a.IsUnlimited():
		return !b.IsUnlimited()
	case b.IsUnlimited():
		return false
	default:
		return *a.ConnectionLimit > *b.ConnectionLimit
	}
}
