package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gorustyt/gonavmesh/recast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, recast.PartitionWatershed, cfg.Build.Partition)
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
build:
  cell_size: 0.25
  agent_radius: 0.5
  partition: monotone
query:
  half_extents: [1, 2, 1]
logger:
  level: warn
`)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), cfg.Build.CellSize)
	assert.Equal(t, float32(0.5), cfg.Build.AgentRadius)
	assert.Equal(t, recast.PartitionMonotone, cfg.Build.Partition)
	assert.Equal(t, [3]float32{1, 2, 1}, cfg.Query.HalfExtents)
	assert.Equal(t, "warn", cfg.Logger.Level)
	// untouched keys keep their defaults
	assert.Equal(t, float32(0.2), cfg.Build.CellHeight)
	assert.Equal(t, 2048, cfg.Query.MaxNodes)

	p, err := cfg.Build.Partitioner()
	require.NoError(t, err)
	assert.Equal(t, recast.PartitionMonotone, p.Name())
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"cell size":  "build: {cell_size: 0}",
		"slope":      "build: {walkable_slope_angle: 90}",
		"verts":      "build: {max_verts_per_poly: 7}",
		"partition":  "build: {partition: layers}",
		"extents":    "query: {half_extents: [0, 1, 1]}",
		"straight":   "query: {max_straight_path: 1}",
		"log level":  "logger: {level: loud}",
		"bad yaml":   "build: [",
		"obstacles":  "build: {max_obstacles: 0}",
		"agent tall": "build: {agent_height: 0.2}",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
	_, err := Parse([]byte("build: {cell_size: -1}"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("build:\n  tile_size: 32\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Build.TileSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestToRcConfig(t *testing.T) {
	b := Default().Build
	b.CellSize = 0.25
	b.CellHeight = 0.2
	b.AgentHeight = 2.0
	b.AgentRadius = 0.3
	b.AgentMaxClimb = 0.5
	b.MinRegionSize = 4
	b.MergeRegionSize = 10

	cfg := b.ToRcConfig([3]float32{0, 0, 0}, [3]float32{10, 2, 5})
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
	assert.Equal(t, 10, cfg.WalkableHeight)
	assert.Equal(t, 2, cfg.WalkableRadius) // ceil(0.3 / 0.25)
	assert.Equal(t, 2, cfg.WalkableClimb)  // floor(0.5 / 0.2)
	assert.Equal(t, 16, cfg.MinRegionArea)
	assert.Equal(t, 100, cfg.MergeRegionArea)
	assert.Equal(t, 48, cfg.MaxEdgeLen)
	assert.InDelta(t, 1.5, cfg.DetailSampleDist, 1e-6)
	assert.InDelta(t, 0.2, cfg.DetailSampleMaxError, 1e-6)
	require.NoError(t, cfg.Validate())

	b.DetailSampleDist = 0.5
	assert.Zero(t, b.ToRcConfig([3]float32{}, [3]float32{1, 1, 1}).DetailSampleDist)
	assert.InDelta(t, 12, b.TileWorldSize(), 1e-6)
}
