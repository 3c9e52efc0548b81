package output

import (
	"fmt"
	"io"
	"strings"

	"isp-billing/core/types"
	"isp-billing/core/ui"
)

// TextFormatter renders reports for a terminal
type TextFormatter struct {
	opts Options
}

// NewTextFormatter creates a text formatter
func NewTextFormatter(opts Options) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Format returns the format type
func (f *TextFormatter) Format() Format { return FormatText }

// Render writes the report sections that are set
func (f *TextFormatter) Render(out io.Writer, r *Report) error {
	w := ui.NewWriter(out, f.opts.NoColor)
	w.SetVerbosity(f.opts.Verbosity)
	sym := f.opts.symbol()

	if r.Evaluation != nil {
		f.usage(w, &r.Evaluation.Usage)
		f.evaluation(w, r)
	} else if r.Usage != nil {
		f.usage(w, r.Usage)
	}

	if r.Recommendation != nil {
		rec := r.Recommendation
		s := w.NewSummary("Recommendation")
		s.Plan = PlanLabel(rec.Plan)
		s.MonthlyCost = Money(rec.Plan.Price, sym)
		if r.Cost != nil && r.Cost.PlanID == rec.Plan.ID {
			s.MonthlyCost = Money(r.Cost.Amount, sym)
		}
		s.Billable = rec.BillableConnections
		s.Total = rec.BillableConnections
		if r.Usage != nil {
			s.Total = r.Usage.TotalConnections
		}
		s.Fallback = rec.IsFallback()
		s.Render()
		w.Info("%s", rec.Reason)
	}

	if r.Cost != nil {
		w.Header("Monthly Cost")
		w.Println("Plan:    %s", r.Cost.PlanID)
		w.Println("Amount:  %s", Money(r.Cost.Amount, sym))
		w.Println("Formula: %s", r.Cost.Formula)
		if r.Cost.Overage {
			w.Warning("usage exceeds the plan limit; every billable connection is charged at the per-connection price")
		}
	}

	if len(r.Plans) > 0 {
		f.plans(w, r.Plans)
	}

	warnings := r.AllWarnings()
	if len(warnings) > 0 {
		w.Header("Warnings")
		for _, warn := range warnings {
			w.Warning("%s", warningText(warn))
		}
	}

	if r.Metadata.InputHash != "" {
		w.Debug("input hash %s", r.Metadata.InputHash)
	}
	return nil
}

func (f *TextFormatter) usage(w *ui.Writer, u *types.AggregatedUsage) {
	w.Header("Connection Usage")

	byState := w.NewTable("State", "Connections", "Billable")
	for _, s := range types.AllStates {
		billable := "no"
		if s.Billable() {
			billable = "yes"
		}
		byState.AddRow(s.String(), fmt.Sprintf("%d", u.ByState[s]), billable)
	}
	byState.Render()
	w.Println("")
	w.Println("Total connections: %d", u.TotalConnections)
	w.Println("Billable:          %d", u.TotalBillable)

	if len(u.ByISP) > 1 {
		w.Println("")
		w.SubHeader("By ISP")
		isps := w.NewTable("ISP", "Total", "Billable")
		for _, isp := range u.ByISP {
			name := isp.ISPID
			if isp.ISPName != "" {
				name = fmt.Sprintf("%s (%s)", isp.ISPName, isp.ISPID)
			}
			isps.AddRow(name, fmt.Sprintf("%d", isp.Total), fmt.Sprintf("%d", isp.Billable))
		}
		isps.Render()
	}
}

func (f *TextFormatter) evaluation(w *ui.Writer, r *Report) {
	sym := f.opts.symbol()
	res := r.Evaluation

	s := w.NewSummary("Recommendation")
	s.Plan = PlanLabel(res.Recommendation.Plan)
	s.MonthlyCost = Money(res.RecommendedCost.Amount, sym)
	s.Billable = res.Usage.TotalBillable
	s.Total = res.Usage.TotalConnections
	s.Fallback = res.Recommendation.IsFallback()
	s.Render()
	w.Info("%s", res.Recommendation.Reason)

	if res.AssignedCost == nil || res.Advice == nil {
		return
	}

	w.Header("Assigned Plan")
	w.Println("Plan:    %s", res.AssignedCost.PlanID)
	w.Println("Amount:  %s", Money(res.AssignedCost.Amount, sym))
	w.Println("Formula: %s", res.AssignedCost.Formula)
	w.Println("")

	a := res.Advice
	switch a.Action {
	case types.AdviceKeep:
		w.Success("keep %s: it is already the recommended plan", a.FromPlanID)
	default:
		msg := fmt.Sprintf("%s from %s to %s (%s per month)", a.Action, a.FromPlanID, a.ToPlanID, Money(a.MonthlyDelta, sym))
		if a.MonthlyDelta.IsNegative() {
			w.Success("%s", msg)
		} else {
			w.Warning("%s", msg)
		}
	}
}

func (f *TextFormatter) plans(w *ui.Writer, plans []types.SubscriptionPlan) {
	sym := f.opts.symbol()
	w.Header("Plans")

	t := w.NewTable("ID", "Name", "Price", "Limit", "Per connection", "Features")
	for _, p := range plans {
		id := p.ID
		if p.Recommended {
			id += " *"
		}
		t.AddRow(id, p.Name, Money(p.Price, sym), Limit(p), Rate(p.PricePerConnection, sym), strings.Join(p.Features, ", "))
	}
	t.Render()
}

func warningText(w types.Warning) string {
	if w.ISPID != "" {
		return fmt.Sprintf("[%s] isp %s: %s", w.Code, w.ISPID, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}
