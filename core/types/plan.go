package types

import "github.com/shopspring/decimal"

// SubscriptionPlan is a priced service tier supplied by the backend.
// Plans are immutable for the duration of a calculation.
type SubscriptionPlan struct {
	// ID uniquely identifies the plan
	ID string `json:"id" yaml:"id"`

	// Name is the display name
	Name string `json:"name" yaml:"name"`

	// Price is the flat monthly fee
	Price decimal.Decimal `json:"price" yaml:"price"`

	// ConnectionLimit is the billable capacity; nil means unlimited
	ConnectionLimit *int64 `json:"connection_limit" yaml:"connection_limit"`

	// PricePerConnection is the overage rate applied once over the limit
	PricePerConnection decimal.Decimal `json:"price_per_connection" yaml:"price_per_connection"`

	// Features is the ordered feature list
	Features []string `json:"features" yaml:"features"`

	// Recommended is the catalog's informational default. Selection ignores it.
	Recommended bool `json:"recommended" yaml:"recommended"`
}

// IsUnlimited reports whether the plan has no connection limit
func (p SubscriptionPlan) IsUnlimited() bool {
	return p.ConnectionLimit == nil
}

// IsFree reports whether the plan's monthly price is zero
func (p SubscriptionPlan) IsFree() bool {
	return p.Price.IsZero()
}

// Covers reports whether the plan's capacity accommodates billable
// connections. A limit of zero covers only zero demand.
func (p SubscriptionPlan) Covers(billable int64) bool {
	return p.ConnectionLimit == nil || *p.ConnectionLimit >= billable
}

// Clone returns a deep copy so callers never share mutable slices with
// the catalog they were handed.
func (p SubscriptionPlan) Clone() SubscriptionPlan {
	c := p
	if p.ConnectionLimit != nil {
		limit := *p.ConnectionLimit
		c.ConnectionLimit = &limit
	}
	if p.Features != nil {
		c.Features = append([]string(nil), p.Features...)
	}
	return c
}

// Limit returns a pointer to n, for building bounded plans
func Limit(n int64) *int64 {
	return &n
}
