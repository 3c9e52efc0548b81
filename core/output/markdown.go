package output

import (
	"fmt"
	"io"
	"strings"

	"isp-billing/core/types"
)

// MarkdownFormatter renders reports as markdown, suitable for tickets and
// customer emails
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{opts: opts}
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render writes the report sections that are set
func (f *MarkdownFormatter) Render(w io.Writer, r *Report) error {
	var b strings.Builder
	sym := f.opts.symbol()

	usage := r.Usage
	if r.Evaluation != nil {
		usage = &r.Evaluation.Usage
	}
	if usage != nil {
		b.WriteString("## Connection usage\n\n")
		b.WriteString("| State | Connections | Billable |\n|---|---:|---|\n")
		for _, s := range types.AllStates {
			billable := "no"
			if s.Billable() {
				billable = "yes"
			}
			fmt.Fprintf(&b, "| %s | %d | %s |\n", s, usage.ByState[s], billable)
		}
		fmt.Fprintf(&b, "\n**Total:** %d connections, **billable:** %d\n\n", usage.TotalConnections, usage.TotalBillable)
	}

	rec := r.Recommendation
	if r.Evaluation != nil {
		rec = &r.Evaluation.Recommendation
	}
	if rec != nil {
		b.WriteString("## Recommendation\n\n")
		fmt.Fprintf(&b, "**%s** at %s per month\n\n", mdEscape(PlanLabel(rec.Plan)), Money(rec.Plan.Price, sym))
		fmt.Fprintf(&b, "> %s\n\n", rec.Reason)
	}

	if r.Evaluation != nil && r.Evaluation.Advice != nil {
		a := r.Evaluation.Advice
		b.WriteString("## Assigned plan\n\n")
		b.WriteString("| Plan | Monthly cost |\n|---|---:|\n")
		fmt.Fprintf(&b, "| %s (assigned) | %s |\n", mdEscape(a.FromPlanID), Money(a.CurrentCost, sym))
		fmt.Fprintf(&b, "| %s (recommended) | %s |\n\n", mdEscape(a.ToPlanID), Money(a.RecommendedCost, sym))
		fmt.Fprintf(&b, "Action: **%s**, monthly delta %s\n\n", a.Action, Money(a.MonthlyDelta, sym))
	}

	if r.Cost != nil {
		b.WriteString("## Monthly cost\n\n")
		fmt.Fprintf(&b, "**%s** for plan `%s`\n\n", Money(r.Cost.Amount, sym), r.Cost.PlanID)
		fmt.Fprintf(&b, "_%s_\n\n", r.Cost.Formula)
	}

	if len(r.Plans) > 0 {
		b.WriteString("## Plans\n\n")
		b.WriteString("| ID | Name | Price | Limit | Per connection | Features |\n|---|---|---:|---:|---:|---|\n")
		for _, p := range r.Plans {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				mdEscape(p.ID), mdEscape(p.Name), Money(p.Price, sym), Limit(p),
				Rate(p.PricePerConnection, sym), mdEscape(strings.Join(p.Features, ", ")))
		}
		b.WriteString("\n")
	}

	if warnings := r.AllWarnings(); len(warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, warn := range warnings {
			fmt.Fprintf(&b, "- %s\n", warningText(warn))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
