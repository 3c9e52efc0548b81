package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-billing/internal/errors"
)

const testPlans = `plans:
  - id: basic
    name: Basic
    price: 25
    connection_limit: 200
    price_per_connection: 0.125
  - id: standard
    name: Standard
    price: 45
    connection_limit: 500
    price_per_connection: 0.09
  - id: enterprise
    name: Enterprise
    price: 150
    connection_limit: unlimited
`

const testSnapshots = `owners:
  "42":
    - isp_id: "7"
      isp_name: Norte Net
      counts:
        active: 3
        suspended: 1
        low_forced: 10
        damaged: 0
    - isp_id: "9"
      isp_name: Sur Fibra
      counts:
        active: 120
        damaged: 5
        low_voluntary: 8
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ispbill version dev\n", out)
}

func TestClassifyJSON(t *testing.T) {
	snaps := writeFile(t, "snapshots.yaml", testSnapshots)

	out, err := execute(t, "classify", "--snapshots", snaps, "--owner", "42", "--format", "json")
	require.NoError(t, err)

	var report struct {
		Usage struct {
			TotalConnections int64 `json:"total_connections"`
			TotalBillable    int64 `json:"total_billable"`
			ByISP            []struct {
				ISPID    string `json:"isp_id"`
				Billable int64  `json:"billable"`
			} `json:"by_isp"`
		} `json:"usage"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(147), report.Usage.TotalConnections)
	assert.Equal(t, int64(129), report.Usage.TotalBillable)
	require.Len(t, report.Usage.ByISP, 2)
	assert.Equal(t, int64(4), report.Usage.ByISP[0].Billable)
}

func TestClassifyNeedsASource(t *testing.T) {
	_, err := execute(t, "classify")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestRecommendFromBillable(t *testing.T) {
	plans := writeFile(t, "plans.yaml", testPlans)

	out, err := execute(t, "recommend", "--plans", plans, "--billable", "250", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Standard (standard)")
	assert.Contains(t, out, "Covers 250 billable connections")
	assert.Contains(t, out, "$45.00")
}

func TestRecommendFallbackMarkdown(t *testing.T) {
	plans := writeFile(t, "plans.yaml", `- id: small
  price: 10
  connection_limit: 10
- id: large
  price: 20
  connection_limit: 100
`)

	out, err := execute(t, "recommend", "--plans", plans, "--billable", "1000", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## Recommendation")
	assert.Contains(t, out, "**large**")
	assert.Contains(t, out, "exceeds all bounded tiers")
}

func TestRecommendRejectsNegativeBillable(t *testing.T) {
	plans := writeFile(t, "plans.yaml", testPlans)

	_, err := execute(t, "recommend", "--plans", plans, "--billable", "-1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestCostOverage(t *testing.T) {
	plans := writeFile(t, "plans.yaml", testPlans)

	out, err := execute(t, "cost", "--plans", plans, "--plan", "basic", "--billable", "250", "-f", "json")
	require.NoError(t, err)

	var report struct {
		Cost struct {
			PlanID  string `json:"plan_id"`
			Amount  string `json:"amount"`
			Overage bool   `json:"overage"`
		} `json:"cost"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "basic", report.Cost.PlanID)
	assert.Equal(t, "31.25", report.Cost.Amount)
	assert.True(t, report.Cost.Overage)
}

func TestCostUnknownPlan(t *testing.T) {
	plans := writeFile(t, "plans.yaml", testPlans)

	_, err := execute(t, "cost", "--plans", plans, "--plan", "gold", "--billable", "5")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestEvaluateWithAssignedPlan(t *testing.T) {
	plans := writeFile(t, "plans.yaml", testPlans)
	snaps := writeFile(t, "snapshots.yaml", testSnapshots)

	out, err := execute(t, "evaluate", "--plans", plans, "--snapshots", snaps, "--owner", "42",
		"--assigned", "standard", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Basic (basic)")
	assert.Contains(t, out, "downgrade from standard to basic (-$20.00 per month)")
}

func TestEvaluateExcludeFreeTierFromConfig(t *testing.T) {
	plans := writeFile(t, "plans.yaml", `- id: free
  price: 0
  connection_limit: 50
- id: basic
  price: 25
  connection_limit: 200
`)
	snaps := writeFile(t, "snapshots.json", `[{"isp_id": "1", "counts": {"active": 10}}]`)
	cfg := writeFile(t, "ispbill.yaml", "billing:\n  exclude_free_tier: true\n")

	out, err := execute(t, "evaluate", "--config", cfg, "--plans", plans, "--snapshots", snaps, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "basic"`)

	out, err = execute(t, "evaluate", "--config", cfg, "--plans", plans, "--snapshots", snaps,
		"--exclude-free-tier=false", "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "free"`)
}

func TestPlansList(t *testing.T) {
	plans := writeFile(t, "plans.yaml", testPlans)

	out, err := execute(t, "plans", "list", plans, "--no-color")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("basic")), bytes.Index([]byte(out), []byte("enterprise")))
	assert.Contains(t, out, "unlimited")
}

func TestPlansValidate(t *testing.T) {
	good := writeFile(t, "plans.yaml", testPlans)
	out, err := execute(t, "plans", "validate", good, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "3 valid plans")

	bad := writeFile(t, "bad.yaml", "- id: a\n  price: -1\n")
	_, err = execute(t, "plans", "validate", bad)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidPlanData))
}

func TestUnknownFormat(t *testing.T) {
	plans := writeFile(t, "plans.yaml", testPlans)

	_, err := execute(t, "recommend", "--plans", plans, "--billable", "1", "-f", "xml")
	require.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ispbill.yaml")

	_, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)

	_, err = execute(t, "config", "init", path, "--force")
	require.NoError(t, err)
}
