package catalog

import (
	"context"

	"isp-billing/core/types"
)

// Provider fetches the current plan catalog. Implementations return
// normalized, validated plans.
type Provider interface {
	Plans(ctx context.Context) ([]types.SubscriptionPlan, error)
}

// Static serves a fixed catalog
type Static []types.SubscriptionPlan

// Plans returns a deep copy of the catalog
func (s Static) Plans(ctx context.Context) ([]types.SubscriptionPlan, error) {
	out := make([]types.SubscriptionPlan, len(s))
	for i, p := range s {
		out[i] = p.Clone()
	}
	return out, nil
}
