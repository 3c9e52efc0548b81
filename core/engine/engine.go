// Package engine provides the API-primary billing engine.
// CLI and HTTP are thin wrappers around it. The engine performs no I/O:
// callers fetch snapshots and plans through providers and pass them in.
package engine

import (
	"isp-billing/core/catalog"
	"isp-billing/core/classify"
	"isp-billing/core/cost"
	"isp-billing/core/determinism"
	"isp-billing/core/ranking"
	"isp-billing/core/selection"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// Input is everything one evaluation needs
type Input struct {
	// Snapshots are the per-ISP connection counts of one owner
	Snapshots []types.ConnectionSnapshot `json:"snapshots"`

	// Plans is the subscription catalog, in any order
	Plans []types.SubscriptionPlan `json:"plans"`

	// ExcludeFreeTier skips zero-price plans when looking for a covering plan
	ExcludeFreeTier bool `json:"exclude_free_tier"`

	// AssignedPlanID is the owner's current plan. Empty skips costing.
	AssignedPlanID string `json:"assigned_plan_id,omitempty"`
}

// Result is the outcome of an evaluation
type Result struct {
	Usage          types.AggregatedUsage `json:"usage"`
	Recommendation types.Recommendation  `json:"recommendation"`

	// RecommendedCost is the recommended plan priced at current usage
	RecommendedCost types.MonthlyCost `json:"recommended_cost"`

	// AssignedCost and Advice are set only when an assigned plan was given
	AssignedCost *types.MonthlyCost   `json:"assigned_cost,omitempty"`
	Advice       *types.UpgradeAdvice `json:"advice,omitempty"`

	Warnings []types.Warning `json:"warnings,omitempty"`

	// InputHash identifies the input; identical input gives identical hash
	InputHash string `json:"input_hash"`
}

// Evaluate classifies usage, recommends a plan and, when an assigned plan
// is given, costs it and compares it with the recommendation.
func Evaluate(in Input) (*Result, error) {
	hash, err := determinism.HashJSON(in)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to hash input", err)
	}

	usage, err := classify.Classify(in.Snapshots)
	if err != nil {
		return nil, err
	}

	rec, err := selection.Select(usage.TotalBillable, in.Plans, selection.Options{ExcludeFreeTier: in.ExcludeFreeTier})
	if err != nil {
		return nil, err
	}

	recCost, err := cost.Calculate(rec.Plan, usage.TotalBillable)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Usage:           usage,
		Recommendation:  rec,
		RecommendedCost: recCost,
		Warnings:        usage.Warnings,
		InputHash:       hash.Hex(),
	}

	if in.AssignedPlanID != "" {
		assigned, ok := catalog.Find(in.Plans, in.AssignedPlanID)
		if !ok {
			return nil, errors.NotFound("assigned plan", in.AssignedPlanID).WithContext("plan_id", in.AssignedPlanID)
		}
		assignedCost, err := cost.Calculate(assigned, usage.TotalBillable)
		if err != nil {
			return nil, err
		}
		advice, err := cost.Advise(assigned, rec)
		if err != nil {
			return nil, err
		}
		result.AssignedCost = &assignedCost
		result.Advice = &advice
	}

	return result, nil
}

// Classify aggregates snapshots into billable usage
func Classify(snapshots []types.ConnectionSnapshot) (types.AggregatedUsage, error) {
	return classify.Classify(snapshots)
}

// Rank validates the catalog and returns it in selection order
func Rank(plans []types.SubscriptionPlan) ([]types.SubscriptionPlan, error) {
	if err := catalog.Validate(plans); err != nil {
		return nil, err
	}
	return ranking.Rank(plans), nil
}

// Recommend selects the plan for a billable connection count
func Recommend(totalBillable int64, plans []types.SubscriptionPlan, excludeFreeTier bool) (types.Recommendation, error) {
	return selection.Select(totalBillable, plans, selection.Options{ExcludeFreeTier: excludeFreeTier})
}

// Cost computes the monthly charge of a plan at a billable count
func Cost(plan types.SubscriptionPlan, totalBillable int64) (types.MonthlyCost, error) {
	return cost.Calculate(plan, totalBillable)
}
