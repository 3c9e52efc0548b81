// Package catalog - Catalog validation
// Ensures every plan entry is usable by selection and cost calculation.
package catalog

import (
	stderrors "errors"
	"fmt"

	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

// ValidationRule checks one plan and returns a reason when it is invalid
type ValidationRule func(types.SubscriptionPlan) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateID,
		validatePrice,
		validateRate,
		validateLimit,
	}
}

func validateID(p types.SubscriptionPlan) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

func validatePrice(p types.SubscriptionPlan) error {
	if p.Price.IsNegative() {
		return fmt.Errorf("negative price %s", p.Price)
	}
	return nil
}

func validateRate(p types.SubscriptionPlan) error {
	if p.PricePerConnection.IsNegative() {
		return fmt.Errorf("negative price_per_connection %s", p.PricePerConnection)
	}
	return nil
}

func validateLimit(p types.SubscriptionPlan) error {
	if p.ConnectionLimit != nil && *p.ConnectionLimit < 0 {
		return fmt.Errorf("malformed connection_limit %d", *p.ConnectionLimit)
	}
	return nil
}

// ValidatePlan applies the default rules to a single plan
func ValidatePlan(p types.SubscriptionPlan) error {
	for _, rule := range DefaultValidationRules() {
		if err := rule(p); err != nil {
			return errors.InvalidPlan(p.ID, err.Error())
		}
	}
	return nil
}

// Validate checks every plan and rejects duplicate IDs. All failures are
// reported in one INVALID_PLAN_DATA error.
func Validate(plans []types.SubscriptionPlan) error {
	var errs []error
	seen := make(map[string]bool, len(plans))

	for _, p := range plans {
		if err := ValidatePlan(p); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[p.ID] {
			errs = append(errs, errors.InvalidPlan(p.ID, "duplicate plan id"))
			continue
		}
		seen[p.ID] = true
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Wrap(errors.TypeInvalidPlanData, fmt.Sprintf("%d invalid plans", len(errs)), stderrors.Join(errs...))
}

// Find returns the plan with the given ID
func Find(plans []types.SubscriptionPlan, id string) (types.SubscriptionPlan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return types.SubscriptionPlan{}, false
}
