package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

func TestCatalogFormatsAgree(t *testing.T) {
	for _, name := range []string{"plans.json", "plans.yaml", "plans.hcl"} {
		t.Run(name, func(t *testing.T) {
			plans, err := NewCatalogProvider(filepath.Join("testdata", name)).Plans(context.Background())
			require.NoError(t, err)
			require.Len(t, plans, 3)

			basic, standard, enterprise := plans[0], plans[1], plans[2]
			assert.Equal(t, "basic", basic.ID)
			assert.Equal(t, "Básico", basic.Name)
			assert.True(t, basic.Price.Equal(decimal.NewFromInt(25)))
			assert.True(t, basic.PricePerConnection.Equal(decimal.RequireFromString("0.125")), basic.PricePerConnection.String())
			assert.Equal(t, int64(200), *basic.ConnectionLimit)
			assert.Equal(t, []string{"Facturación", "SMS"}, basic.Features)

			assert.True(t, standard.Recommended)
			assert.True(t, standard.PricePerConnection.Equal(decimal.RequireFromString("0.09")))

			assert.True(t, enterprise.IsUnlimited())
		})
	}
}

func TestDecodeCatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		errType  errors.Type
	}{
		{"unknown extension", "plans.toml", `x = 1`, errors.TypeInput},
		{"bad json", "plans.json", `[{`, errors.TypeParsing},
		{"object without list", "plans.json", `{"items": []}`, errors.TypeParsing},
		{"scalar items", "plans.yaml", "- basic\n- standard\n", errors.TypeParsing},
		{"bad hcl", "plans.hcl", `plan "a" {`, errors.TypeParsing},
		{"unknown hcl reference", "plans.hcl", "plan \"a\" {\n  price = forty\n}\n", errors.TypeParsing},
		{"invalid plan", "plans.yaml", "- id: a\n  price: -1\n", errors.TypeInvalidPlanData},
		{"duplicate ids", "plans.json", `[{"id":"a"},{"id":"a"}]`, errors.TypeInvalidPlanData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCatalog([]byte(tc.data), tc.filename)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tc.errType), "%v", err)
		})
	}
}

func TestHCLDiagnosticsCarryLine(t *testing.T) {
	_, err := DecodeCatalog([]byte("plan \"a\" {\n  price = 1\n}\n\nplan \"b\" {\n  price = nope\n}\n"), "catalog.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.hcl:6")
}

func TestCatalogMissingFile(t *testing.T) {
	_, err := NewCatalogProvider(filepath.Join(t.TempDir(), "missing.yaml")).Plans(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeProvider))
}

func TestCatalogHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCatalogProvider(filepath.Join("testdata", "plans.json")).Plans(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotsByOwner(t *testing.T) {
	p := NewSnapshotProvider(filepath.Join("testdata", "snapshots.yaml"))

	snaps, err := p.Snapshots(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, "7", snaps[0].ISPID)
	assert.Equal(t, int64(4), snaps[0].Billable())
	assert.Equal(t, int64(14), *snaps[0].ReportedTotal)
	assert.Equal(t, int64(125), snaps[1].Billable())
	assert.Equal(t, int64(8), snaps[1].Counts[types.StateLowVoluntary])

	snaps, err = p.Snapshots(context.Background(), "43")
	require.NoError(t, err)
	assert.Empty(t, snaps)

	_, err = p.Snapshots(context.Background(), "99")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestSnapshotsJSONList(t *testing.T) {
	snaps, err := NewSnapshotProvider(filepath.Join("testdata", "snapshots.json")).Snapshots(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(15), *snaps[0].ReportedTotal)
	assert.Equal(t, int64(14), snaps[0].Sum())
}

func TestSnapshotsErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"snapshots":[{"isp_id":"1","counts":{"retired":2}}]}`), 0o644))
	_, err := NewSnapshotProvider(unknown).Snapshots(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("snapshots: [\n"), 0o644))
	_, err = NewSnapshotProvider(broken).Snapshots(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeParsing))

	_, err = DecodeSnapshots([]byte(`[]`), "snaps.csv", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}
