// Package ranking orders a plan catalog for selection.
package ranking

import (
	"isp-billing/core/determinism"
	"isp-billing/core/types"
)

// Rank returns a copy of plans sorted by ascending price. Equal prices are
// ordered by ascending connection limit with unlimited plans after every
// bounded plan, then by ID. The sort is stable, so plans identical in all
// three keys keep their catalog order. The input slice is not modified.
func Rank(plans []types.SubscriptionPlan) []types.SubscriptionPlan {
	ranked := make([]types.SubscriptionPlan, len(plans))
	for i, p := range plans {
		ranked[i] = p.Clone()
	}
	determinism.SortSlice(ranked, Less)
	return ranked
}

// Less reports whether a ranks before b
func Less(a, b types.SubscriptionPlan) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	if c := compareLimits(a.ConnectionLimit, b.ConnectionLimit); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// compareLimits orders bounded limits numerically and unlimited last
func compareLimits(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
