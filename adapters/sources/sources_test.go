package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isp-billing/internal/config"
	"isp-billing/internal/errors"
)

func TestOpenFileSources(t *testing.T) {
	dir := t.TempDir()
	plans := filepath.Join(dir, "plans.yaml")
	require.NoError(t, os.WriteFile(plans, []byte("- id: basic\n  price: 25\n  connection_limit: 200\n"), 0o644))
	snaps := filepath.Join(dir, "snapshots.yaml")
	require.NoError(t, os.WriteFile(snaps, []byte("- isp_id: a\n  counts: {active: 3}\n"), 0o644))

	cfg := config.Default()
	cfg.Catalog = config.SourceConfig{Source: config.SourceFile, Path: plans}
	cfg.Snapshots = config.SourceConfig{Source: config.SourceFile, Path: snaps}

	set, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer set.Close()

	got, err := set.Catalog.Plans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "basic", got[0].ID)

	s, err := set.Snapshots.Snapshots(context.Background(), "any")
	require.NoError(t, err)
	assert.Equal(t, int64(3), s[0].Billable())
}

func TestOpenUnconfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog = config.SourceConfig{}

	set, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, set.Catalog)
	assert.Nil(t, set.Snapshots)
	assert.NoError(t, set.Close())
}

func TestOpenUnknownSource(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshots = config.SourceConfig{Source: "redis"}

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}
