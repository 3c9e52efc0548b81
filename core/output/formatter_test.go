package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-billing/core/engine"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func evaluation(t *testing.T) *engine.Result {
	t.Helper()
	res, err := engine.Evaluate(engine.Input{
		Snapshots: []types.ConnectionSnapshot{{
			ISPID:   "north",
			ISPName: "Norte Net",
			Counts:  map[types.ConnectionState]int64{types.StateActive: 230, types.StateDamaged: 20, types.StateLowForced: 7},
		}},
		Plans: []types.SubscriptionPlan{
			{ID: "basic", Name: "Básico", Price: dec("25"), ConnectionLimit: types.Limit(200), PricePerConnection: dec("0.125"), Features: []string{"SMS"}},
			{ID: "standard", Name: "Standard", Price: dec("45"), ConnectionLimit: types.Limit(500), PricePerConnection: dec("0.09")},
		},
		AssignedPlanID: "basic",
	})
	require.NoError(t, err)
	return res
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "md": FormatMarkdown, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("html")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestMoneyAndRate(t *testing.T) {
	assert.Equal(t, "$31.25", Money(dec("31.25"), "$"))
	assert.Equal(t, "-$20.00", Money(dec("-20"), "$"))
	assert.Equal(t, "RD$45.00", Money(dec("45"), "RD$"))
	assert.Equal(t, "$0.125", Rate(dec("0.125"), "$"))
	assert.Equal(t, "$0.09", Rate(dec("0.09"), "$"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{})
	for _, f := range []Format{FormatText, FormatJSON, FormatMarkdown} {
		got, ok := r.GetFormatter(f)
		require.True(t, ok, f)
		assert.Equal(t, f, got.Format())
	}
	assert.Len(t, r.GetAll(), 3)
	assert.Error(t, r.Register(NewJSONFormatter()))
}

func TestJSONFormatter(t *testing.T) {
	res := evaluation(t)
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Render(&buf, &Report{Evaluation: res, Metadata: Metadata{Currency: types.CurrencyUSD}}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	eval := decoded["evaluation"].(map[string]interface{})
	assert.Equal(t, "31.25", eval["assigned_cost"].(map[string]interface{})["amount"])
	assert.Equal(t, "standard", eval["recommendation"].(map[string]interface{})["plan"].(map[string]interface{})["id"])
	assert.Equal(t, "USD", decoded["metadata"].(map[string]interface{})["currency"])
	assert.NotContains(t, decoded, "plans")
}

func TestTextFormatterEvaluation(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(Options{NoColor: true, CurrencySymbol: "$"})
	require.NoError(t, f.Render(&buf, &Report{Evaluation: evaluation(t)}))

	out := buf.String()
	assert.Contains(t, out, "Billable:          250")
	assert.Contains(t, out, "Plan:         Standard (standard)")
	assert.Contains(t, out, "Monthly cost: $45.00")
	assert.Contains(t, out, "Amount:  $31.25")
	assert.Contains(t, out, "upgrade from basic to standard ($13.75 per month)")
}

func TestTextFormatterPlansAndWarnings(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(Options{NoColor: true})
	report := &Report{
		Plans: []types.SubscriptionPlan{
			{ID: "basic", Name: "Básico", Price: dec("25"), ConnectionLimit: types.Limit(200), PricePerConnection: dec("0.125"), Recommended: true},
			{ID: "max", Name: "Max", Price: dec("150")},
		},
		Warnings: []types.Warning{{Code: types.WarnDataInconsistency, ISPID: "north", Message: "reported 10, counted 12"}},
	}
	require.NoError(t, f.Render(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "basic *")
	assert.Contains(t, out, "unlimited")
	assert.Contains(t, out, "$0.125")
	assert.Contains(t, out, "[DATA_INCONSISTENCY] isp north: reported 10, counted 12")
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewMarkdownFormatter(Options{CurrencySymbol: "€"})
	require.NoError(t, f.Render(&buf, &Report{Evaluation: evaluation(t)}))

	out := buf.String()
	assert.Contains(t, out, "## Connection usage")
	assert.Contains(t, out, "| damaged | 20 | yes |")
	assert.Contains(t, out, "**Standard (standard)** at €45.00 per month")
	assert.Contains(t, out, "| basic (assigned) | €31.25 |")
	assert.Contains(t, out, "Action: **upgrade**, monthly delta €13.75")
}

func TestAllWarningsDeduplicates(t *testing.T) {
	w := types.Warning{Code: types.WarnEmptySnapshotSet, Message: "none"}
	r := &Report{Warnings: []types.Warning{w}, Usage: &types.AggregatedUsage{Warnings: []types.Warning{w}}}
	assert.Len(t, r.AllWarnings(), 1)
}
