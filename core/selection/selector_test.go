package selection

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

func plan(id, price string, limit *int64, rate string) types.SubscriptionPlan {
	return types.SubscriptionPlan{
		ID:                 id,
		Name:               id,
		Price:              decimal.RequireFromString(price),
		ConnectionLimit:    limit,
		PricePerConnection: decimal.RequireFromString(rate),
	}
}

func basicStandard() []types.SubscriptionPlan {
	return []types.SubscriptionPlan{
		plan("basic", "25", types.Limit(200), "0.125"),
		plan("standard", "45", types.Limit(500), "0.09"),
	}
}

func TestSelectCheapestCoveringPlan(t *testing.T) {
	rec, err := Select(150, basicStandard(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "basic", rec.Plan.ID)
	assert.Equal(t, int64(150), rec.BillableConnections)
	assert.Equal(t, types.SelectionCovering, rec.Kind)
	assert.Equal(t, "Covers 150 billable connections at the lowest available price", rec.Reason)
	assert.False(t, rec.IsFallback())
}

func TestSelectBoundaryIsInclusive(t *testing.T) {
	rec, err := Select(200, basicStandard(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "basic", rec.Plan.ID)

	rec, err = Select(201, basicStandard(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "standard", rec.Plan.ID)
}

func TestSelectCapacityFallback(t *testing.T) {
	rec, err := Select(600, basicStandard(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "standard", rec.Plan.ID)
	assert.Equal(t, types.SelectionCapacityFallback, rec.Kind)
	assert.Equal(t, ReasonCapacityFallback, rec.Reason)
	assert.Contains(t, rec.Reason, "exceeds all bounded tiers")
	assert.True(t, rec.IsFallback())
}

func TestSelectFallbackPrefersCheaperOnEqualCapacity(t *testing.T) {
	plans := []types.SubscriptionPlan{
		plan("pricey", "80", types.Limit(500), "0"),
		plan("cheap", "60", types.Limit(500), "0"),
		plan("small", "10", types.Limit(50), "0"),
	}
	rec, err := Select(10_000, plans, Options{})
	require.NoError(t, err)
	assert.Equal(t, "cheap", rec.Plan.ID)
}

func TestSelectUnlimitedCoversEverything(t *testing.T) {
	plans := append(basicStandard(), plan("unlimited", "120", nil, "0"))
	rec, err := Select(1_000_000, plans, Options{})
	require.NoError(t, err)
	assert.Equal(t, "unlimited", rec.Plan.ID)
	assert.Equal(t, types.SelectionCovering, rec.Kind)
}

func TestSelectZeroBillable(t *testing.T) {
	plans := append(basicStandard(), plan("free", "0", types.Limit(0), "0"))

	rec, err := Select(0, plans, Options{})
	require.NoError(t, err)
	assert.Equal(t, "free", rec.Plan.ID, "cheapest plan, price 0 allowed when the flag is unset")

	rec, err = Select(0, plans, Options{ExcludeFreeTier: true})
	require.NoError(t, err)
	assert.Equal(t, "basic", rec.Plan.ID)
	assert.Equal(t, types.SelectionCovering, rec.Kind)
}

func TestSelectZeroLimitNeverCoversPositiveDemand(t *testing.T) {
	plans := []types.SubscriptionPlan{
		plan("trial", "0", types.Limit(0), "0"),
		plan("basic", "25", types.Limit(200), "0.125"),
	}
	rec, err := Select(1, plans, Options{})
	require.NoError(t, err)
	assert.Equal(t, "basic", rec.Plan.ID)
}

func TestSelectExcludedUnlimitedStillWinsFallback(t *testing.T) {
	plans := append(basicStandard(), plan("community", "0", nil, "0"))

	rec, err := Select(100, plans, Options{ExcludeFreeTier: true})
	require.NoError(t, err)
	assert.Equal(t, "basic", rec.Plan.ID)

	rec, err = Select(5000, plans, Options{ExcludeFreeTier: true})
	require.NoError(t, err)
	assert.Equal(t, "community", rec.Plan.ID)
	assert.Equal(t, types.SelectionCapacityFallback, rec.Kind)
}

func TestSelectExcludedBoundedPlanNeverWinsFallback(t *testing.T) {
	plans := []types.SubscriptionPlan{
		plan("free-big", "0", types.Limit(1000), "0"),
		plan("paid", "10", types.Limit(500), "0.05"),
	}

	rec, err := Select(400, plans, Options{ExcludeFreeTier: true})
	require.NoError(t, err)
	assert.Equal(t, "paid", rec.Plan.ID)
	assert.Equal(t, types.SelectionCovering, rec.Kind)

	rec, err = Select(700, plans, Options{ExcludeFreeTier: true})
	require.NoError(t, err)
	assert.Equal(t, "paid", rec.Plan.ID)
	assert.Equal(t, types.SelectionCapacityFallback, rec.Kind)
	assert.False(t, rec.Plan.Covers(700))
	assert.Equal(t, ReasonCapacityFallback, rec.Reason)
}

func TestSelectOnlyFreePlansWithExclusion(t *testing.T) {
	plans := []types.SubscriptionPlan{
		plan("free-small", "0", types.Limit(10), "0"),
		plan("free-big", "0", types.Limit(50), "0"),
	}
	rec, err := Select(5, plans, Options{ExcludeFreeTier: true})
	require.NoError(t, err)
	assert.Equal(t, "free-big", rec.Plan.ID)
	assert.True(t, rec.IsFallback())
}

func TestSelectErrors(t *testing.T) {
	_, err := Select(10, nil, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNoPlansAvailable))

	_, err = Select(10, []types.SubscriptionPlan{plan("bad", "-1", types.Limit(10), "0")}, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidPlanData))

	_, err = Select(10, []types.SubscriptionPlan{plan("bad", "10", types.Limit(10), "-0.01")}, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidPlanData))

	_, err = Select(-1, basicStandard(), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func randomCatalog(rng *rand.Rand) []types.SubscriptionPlan {
	n := rng.Intn(6) + 1
	plans := make([]types.SubscriptionPlan, n)
	for i := range plans {
		var limit *int64
		if rng.Intn(5) > 0 {
			limit = types.Limit(rng.Int63n(1000))
		}
		plans[i] = types.SubscriptionPlan{
			ID:              string(rune('a' + i)),
			Price:           decimal.NewFromInt(rng.Int63n(100)),
			ConnectionLimit: limit,
		}
	}
	return plans
}

func TestSelectNeverSilentlyUnderCovers(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 1000; i++ {
		plans := randomCatalog(rng)
		demand := rng.Int63n(1500)
		opts := Options{ExcludeFreeTier: rng.Intn(2) == 0}

		rec, err := Select(demand, plans, opts)
		require.NoError(t, err)
		if !rec.Plan.Covers(demand) {
			require.True(t, rec.IsFallback(), "plan %s under-covers %d without fallback annotation", rec.Plan.ID, demand)
			require.Equal(t, ReasonCapacityFallback, rec.Reason)
		}
	}
}

func TestSelectPriceIsMonotonicInDemand(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	for i := 0; i < 300; i++ {
		plans := randomCatalog(rng)
		prev := decimal.NewFromInt(-1)
		for demand := int64(0); demand <= 1100; demand += 25 {
			rec, err := Select(demand, plans, Options{})
			require.NoError(t, err)
			require.True(t, rec.Plan.Price.GreaterThanOrEqual(prev),
				"price dropped from %s to %s at demand %d", prev, rec.Plan.Price, demand)
			prev = rec.Plan.Price
		}
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	a, err := Select(321, basicStandard(), Options{})
	require.NoError(t, err)
	b, err := Select(321, basicStandard(), Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
