// Package api - HTTP handler for billing calculations
// This handler wraps the engine - it contains NO billing logic.
// All logic is delegated to core packages.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"isp-billing/core/catalog"
	"isp-billing/core/engine"
	"isp-billing/core/snapshot"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

// Handler resolves request inputs and calls the engine
type Handler struct {
	catalog         catalog.Provider
	snapshots       snapshot.Provider
	excludeFreeTier bool
	log             *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(opts Options) *Handler {
	return &Handler{
		catalog:         opts.Catalog,
		snapshots:       opts.Snapshots,
		excludeFreeTier: opts.ExcludeFreeTier,
		log:             logging.Named("api.handler"),
	}
}

// Classify handles POST /v1/classify
func (h *Handler) Classify(r *http.Request) (interface{}, error) {
	var req ClassifyRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	snaps, err := h.resolveSnapshots(r.Context(), req.UsageSource)
	if err != nil {
		return nil, err
	}
	usage, err := engine.Classify(snaps)
	if err != nil {
		return nil, err
	}
	h.logWarnings(r.Context(), usage.Warnings)
	return usage, nil
}

// Recommend handles POST /v1/recommend
func (h *Handler) Recommend(r *http.Request) (interface{}, error) {
	var req RecommendRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	ctx := r.Context()

	billable, usage, err := h.resolveBillable(ctx, req.TotalBillable, req.UsageSource)
	if err != nil {
		return nil, err
	}
	plans, err := h.resolvePlans(ctx, req.Plans)
	if err != nil {
		return nil, err
	}

	rec, err := engine.Recommend(billable, plans, h.exclude(req.ExcludeFreeTier))
	if err != nil {
		return nil, err
	}
	c, err := engine.Cost(rec.Plan, billable)
	if err != nil {
		return nil, err
	}

	h.log.Debug("recommended plan",
		logging.RequestID(RequestIDFrom(ctx)),
		logging.Plan(rec.Plan.ID),
		logging.Billable(billable),
		zap.String("kind", string(rec.Kind)))
	return RecommendResponse{Recommendation: rec, Cost: c, Usage: usage}, nil
}

// Cost handles POST /v1/cost
func (h *Handler) Cost(r *http.Request) (interface{}, error) {
	var req CostRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	ctx := r.Context()

	var plan types.SubscriptionPlan
	switch {
	case req.Plan != nil:
		p, err := catalog.Normalize(catalog.RawPlanFromRecord(req.Plan))
		if err != nil {
			return nil, err
		}
		plan = p
	case req.PlanID != "":
		plans, err := h.resolvePlans(ctx, req.Plans)
		if err != nil {
			return nil, err
		}
		p, ok := catalog.Find(plans, req.PlanID)
		if !ok {
			return nil, errors.NotFound("plan", req.PlanID)
		}
		plan = p
	default:
		return nil, errors.Input("plan or plan_id is required")
	}

	billable, _, err := h.resolveBillable(ctx, req.TotalBillable, req.UsageSource)
	if err != nil {
		return nil, err
	}
	return engine.Cost(plan, billable)
}

// Evaluate handles POST /v1/evaluate
func (h *Handler) Evaluate(r *http.Request) (interface{}, error) {
	var req EvaluateRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	ctx := r.Context()

	snaps, err := h.resolveSnapshots(ctx, req.UsageSource)
	if err != nil {
		return nil, err
	}
	plans, err := h.resolvePlans(ctx, req.Plans)
	if err != nil {
		return nil, err
	}

	result, err := engine.Evaluate(engine.Input{
		Snapshots:       snaps,
		Plans:           plans,
		ExcludeFreeTier: h.exclude(req.ExcludeFreeTier),
		AssignedPlanID:  req.AssignedPlanID,
	})
	if err != nil {
		return nil, err
	}
	h.logWarnings(ctx, result.Warnings)
	return result, nil
}

// Plans handles GET /v1/plans
func (h *Handler) Plans(r *http.Request) (interface{}, error) {
	plans, err := h.resolvePlans(r.Context(), nil)
	if err != nil {
		return nil, err
	}
	ranked, err := engine.Rank(plans)
	if err != nil {
		return nil, err
	}
	return PlansResponse{Plans: ranked}, nil
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.Parsing("invalid request body", err)
	}
	return nil
}

func (h *Handler) exclude(flag *bool) bool {
	if flag != nil {
		return *flag
	}
	return h.excludeFreeTier
}

// resolveSnapshots prefers inline snapshots, then the snapshot provider
func (h *Handler) resolveSnapshots(ctx context.Context, src UsageSource) ([]types.ConnectionSnapshot, error) {
	if src.Snapshots != nil {
		return snapshot.NormalizeAll(src.Snapshots)
	}
	if src.OwnerID == "" {
		return nil, errors.Input("snapshots or owner_id is required")
	}
	if h.snapshots == nil {
		return nil, errors.Input("owner_id given but no snapshot provider is configured")
	}
	return h.snapshots.Snapshots(ctx, src.OwnerID)
}

// resolveBillable uses an explicit count when given, otherwise classifies
func (h *Handler) resolveBillable(ctx context.Context, explicit *int64, src UsageSource) (int64, *types.AggregatedUsage, error) {
	if explicit != nil {
		if *explicit < 0 {
			return 0, nil, errors.Newf(errors.TypeInput, "total_billable must not be negative, got %d", *explicit)
		}
		return *explicit, nil, nil
	}
	snaps, err := h.resolveSnapshots(ctx, src)
	if err != nil {
		return 0, nil, err
	}
	usage, err := engine.Classify(snaps)
	if err != nil {
		return 0, nil, err
	}
	h.logWarnings(ctx, usage.Warnings)
	return usage.TotalBillable, &usage, nil
}

// resolvePlans prefers inline plans, then the catalog provider
func (h *Handler) resolvePlans(ctx context.Context, records PlanRecords) ([]types.SubscriptionPlan, error) {
	if records != nil {
		return catalog.NormalizeRecords(records)
	}
	if h.catalog == nil {
		return nil, errors.Input("plans are required when no catalog provider is configured")
	}
	return h.catalog.Plans(ctx)
}

func (h *Handler) logWarnings(ctx context.Context, warnings []types.Warning) {
	for _, w := range warnings {
		h.log.Warn(w.Message,
			logging.RequestID(RequestIDFrom(ctx)),
			logging.ISP(w.ISPID),
			zap.String("code", string(w.Code)))
	}
}
