// Package selection picks the subscription plan to recommend for a
// billable connection count.
package selection

import (
	"fmt"

	"isp-billing/core/catalog"
	"isp-billing/core/ranking"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// ReasonCapacityFallback is attached when no candidate plan covers demand
const ReasonCapacityFallback = "Highest-capacity plan available; demand exceeds all bounded tiers"

// CoveringReason is attached when the cheapest covering plan was found
func CoveringReason(billable int64) string {
	return fmt.Sprintf("Covers %d billable connections at the lowest available price", billable)
}

// Options carries caller policy flags
type Options struct {
	// ExcludeFreeTier removes zero-price plans from the candidates. Set it
	// when the acting context is a paying business with connections of any
	// kind, even if none are billable.
	ExcludeFreeTier bool `json:"exclude_free_tier"`
}

// Select returns the cheapest plan whose capacity covers totalBillable.
//
// Plans are ranked first (see ranking.Rank). When no candidate covers
// demand, the highest-capacity candidate is returned with the fallback
// reason. An unlimited plan wins the fallback even if the free-tier
// exclusion removed it from the candidates; excluded bounded plans do not.
func Select(totalBillable int64, plans []types.SubscriptionPlan, opts Options) (types.Recommendation, error) {
	if totalBillable < 0 {
		return types.Recommendation{}, errors.Newf(errors.TypeInput, "negative billable connection count %d", totalBillable)
	}
	if len(plans) == 0 {
		return types.Recommendation{}, errors.NoPlansAvailable()
	}
	if err := catalog.Validate(plans); err != nil {
		return types.Recommendation{}, err
	}

	ranked := ranking.Rank(plans)

	candidates := make([]types.SubscriptionPlan, 0, len(ranked))
	for _, p := range ranked {
		if opts.ExcludeFreeTier && p.IsFree() {
			continue
		}
		candidates = append(candidates, p)
	}

	for _, p := range candidates {
		if p.Covers(totalBillable) {
			return types.Recommendation{
				Plan:                p,
				BillableConnections: totalBillable,
				Kind:                types.SelectionCovering,
				Reason:              CoveringReason(totalBillable),
			}, nil
		}
	}

	return types.Recommendation{
		Plan:                highestCapacity(ranked, candidates),
		BillableConnections: totalBillable,
		Kind:                types.SelectionCapacityFallback,
		Reason:              ReasonCapacityFallback,
	}, nil
}

// highestCapacity returns the first unlimited plan of the whole ranked
// catalog, or the candidate with the largest limit, preferring the cheaper
// one on ties. With no candidates left the whole catalog is searched.
func highestCapacity(ranked, candidates []types.SubscriptionPlan) types.SubscriptionPlan {
	for _, p := range ranked {
		if p.IsUnlimited() {
			return p
		}
	}
	if len(candidates) == 0 {
		candidates = ranked
	}
	best := candidates[0]
	for _, p := range candidates[1:] {
		if *p.ConnectionLimit > *best.ConnectionLimit {
			best = p
		}
	}
	return best
}
