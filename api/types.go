// Package api - API types for billing calculations
// These types define the contract for the /v1 endpoints.
// API is stateless, idempotent, and deterministic.
package api

import (
	"isp-billing/core/snapshot"
	"isp-billing/core/types"
)

// PlanRecords is a catalog as sent by a client. Records are loosely typed
// and go through catalog normalization.
type PlanRecords []map[string]interface{}

// UsageSource names where billable usage comes from. Snapshots win over
// OwnerID; OwnerID asks the configured snapshot provider.
type UsageSource struct {
	Snapshots []snapshot.RawSnapshot `json:"snapshots,omitempty"`
	OwnerID   string                 `json:"owner_id,omitempty"`
}

// ClassifyRequest is the input to POST /v1/classify
type ClassifyRequest struct {
	UsageSource
}

// RecommendRequest is the input to POST /v1/recommend. TotalBillable, when
// set, is used instead of classifying snapshots.
type RecommendRequest struct {
	UsageSource
	TotalBillable   *int64      `json:"total_billable,omitempty"`
	Plans           PlanRecords `json:"plans,omitempty"`
	ExcludeFreeTier *bool       `json:"exclude_free_tier,omitempty"`
}

// CostRequest is the input to POST /v1/cost. The plan is given inline or
// by PlanID, looked up in Plans or the configured catalog.
type CostRequest struct {
	UsageSource
	TotalBillable *int64                 `json:"total_billable,omitempty"`
	Plan          map[string]interface{} `json:"plan,omitempty"`
	PlanID        string                 `json:"plan_id,omitempty"`
	Plans         PlanRecords            `json:"plans,omitempty"`
}

// EvaluateRequest is the input to POST /v1/evaluate
type EvaluateRequest struct {
	UsageSource
	Plans           PlanRecords `json:"plans,omitempty"`
	ExcludeFreeTier *bool       `json:"exclude_free_tier,omitempty"`
	AssignedPlanID  string      `json:"assigned_plan_id,omitempty"`
}

// Response wraps every reply
type Response struct {
	RequestID string      `json:"request_id"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the error part of a Response
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RecommendResponse is the data of POST /v1/recommend
type RecommendResponse struct {
	Recommendation types.Recommendation `json:"recommendation"`

	// Cost is the recommended plan priced at the same usage
	Cost types.MonthlyCost `json:"cost"`

	// Usage is set when usage was classified from snapshots
	Usage *types.AggregatedUsage `json:"usage,omitempty"`
}

// PlansResponse is the data of GET /v1/plans
type PlansResponse struct {
	Plans []types.SubscriptionPlan `json:"plans"`
}
