package navmesh

import (
	"strings"
	"sync"
	"testing"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/config"
	"github.com/gorustyt/gonavmesh/debug_utils"
	"github.com/gorustyt/gonavmesh/detour"
	"github.com/gorustyt/gonavmesh/detour_tile_cache"
	"github.com/gorustyt/gonavmesh/recast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Build.CellSize = 0.25
	cfg.Build.CellHeight = 0.2
	cfg.Build.AgentRadius = 0.5
	cfg.Build.TileSize = 20
	cfg.Build.MaxObstacles = 4
	cfg.Build.DetailSampleDist = 6
	return cfg
}

func quad(x0, y, z0, x1, z1 float32) []common.Vec3 {
	return []common.Vec3{
		{x0, y, z0}, {x0, y, z1}, {x1, y, z1},
		{x0, y, z0}, {x1, y, z1}, {x1, y, z0},
	}
}

// box returns the closed triangle surface of an axis aligned box.
func box(bmin, bmax common.Vec3) []common.Vec3 {
	c := func(i int) common.Vec3 {
		v := bmin
		if i&1 != 0 {
			v[0] = bmax[0]
		}
		if i&2 != 0 {
			v[1] = bmax[1]
		}
		if i&4 != 0 {
			v[2] = bmax[2]
		}
		return v
	}
	faces := [][4]int{
		{0, 4, 6, 2}, {1, 3, 7, 5}, // -x +x
		{0, 1, 5, 4}, {2, 6, 7, 3}, // -y +y
		{0, 2, 3, 1}, {4, 5, 7, 6}, // -z +z
	}
	var tris []common.Vec3
	for _, f := range faces {
		tris = append(tris, c(f[0]), c(f[1]), c(f[2]), c(f[0]), c(f[2]), c(f[3]))
	}
	return tris
}

func floor(t *testing.T, extra ...[]common.Vec3) *recast.InputGeom {
	t.Helper()
	tris := quad(0, 0, 0, 10, 10)
	for _, e := range extra {
		tris = append(tris, e...)
	}
	geom, err := recast.NewInputGeom(tris)
	require.NoError(t, err)
	geom.Name = "floor"
	return geom
}

func newBuilt(t *testing.T, cfg *config.Config, geom *recast.InputGeom) *NavMeshManager {
	t.Helper()
	m, err := NewNavMeshManager(cfg)
	require.NoError(t, err)
	require.NoError(t, m.Build(geom))
	return m
}

func TestNotBuilt(t *testing.T) {
	m, err := NewNavMeshManager(nil)
	require.NoError(t, err)
	assert.False(t, m.Built())
	assert.False(t, m.FindPath(common.Vec3{}, common.Vec3{1, 0, 1}).Found())
	_, ok := m.SamplePosition(common.Vec3{}, 1)
	assert.False(t, ok)
	_, err = m.AddCylinderObstacle(common.Vec3{}, 1, 1)
	assert.ErrorIs(t, err, ErrNotBuilt)
	assert.ErrorIs(t, m.UpdateCarvingImmediately(), ErrNotBuilt)
	assert.ErrorIs(t, m.RemoveObstacle(1), ErrNotBuilt)
	assert.Empty(t, m.DebugLines())
	assert.Equal(t, Stats{}, m.Stats())
	_, err = m.DumpObj()
	assert.ErrorIs(t, err, ErrNotBuilt)

	bad := config.Default()
	bad.Build.TileSize = 0
	_, err = NewNavMeshManager(bad)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestFlatFloorStraightPath(t *testing.T) {
	m := newBuilt(t, testConfig(), floor(t))
	s := m.Stats()
	assert.Equal(t, 4, s.Tiles)
	assert.Equal(t, 4, s.Layers)
	assert.Greater(t, s.Polys, 0)

	path := m.FindPath(common.Vec3{0, 0, 0}, common.Vec3{9, 0, 9})
	require.True(t, path.Found())
	require.Len(t, path.Points, 2)
	end := path.Points[1]
	assert.InDelta(t, 9, end[0], 0.1)
	assert.InDelta(t, 9, end[2], 0.1)
	for _, p := range path.Points {
		assert.InDelta(t, 0, p[1], 0.5)
	}

	bmin, bmax, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, [3]float32{0, 0, 0}, bmin)
	assert.Equal(t, float32(10), bmax[0])
}

func TestSamePointPath(t *testing.T) {
	m := newBuilt(t, testConfig(), floor(t))
	p := common.Vec3{5, 0, 5}
	path := m.FindPath(p, p)
	assert.NotEmpty(t, path.Points)
	assert.LessOrEqual(t, len(path.Points), 2)
	assert.InDelta(t, 0, path.Length(), 1e-3)
}

func TestWallWithGap(t *testing.T) {
	geom := floor(t,
		box(common.Vec3{0, 0, 4.5}, common.Vec3{4, 2, 5.5}),
		box(common.Vec3{6, 0, 4.5}, common.Vec3{10, 2, 5.5}),
	)
	m := newBuilt(t, testConfig(), geom)

	start, end := common.Vec3{1, 0, 1}, common.Vec3{1, 0, 9}
	path := m.FindPath(start, end)
	require.True(t, path.Found())
	assert.Greater(t, path.Length(), float32(8.5))
	assert.Greater(t, len(path.Points), 2)

	crossed := false
	for i := 1; i < len(path.Points); i++ {
		a, b := path.Points[i-1], path.Points[i]
		if (a[2]-5)*(b[2]-5) > 0 {
			continue
		}
		tt := (5 - a[2]) / (b[2] - a[2])
		x := a[0] + (b[0]-a[0])*tt
		assert.True(t, x > 4 && x < 6, "path crosses the wall at x=%v", x)
		crossed = true
	}
	assert.True(t, crossed)
}

func TestUnreachableHeight(t *testing.T) {
	cfg := testConfig()
	cfg.Query.HalfExtents = [3]float32{0.5, 0.5, 0.5}
	m := newBuilt(t, cfg, floor(t))
	assert.False(t, m.FindPath(common.Vec3{5, 50, 5}, common.Vec3{9, 0, 9}).Found())
	assert.False(t, m.FindPath(common.Vec3{5, 0, 5}, common.Vec3{30, 0, 30}).Found())

	pos, ok := m.SamplePosition(common.Vec3{5, 1, 5}, 2)
	require.True(t, ok)
	assert.InDelta(t, 0, pos[1], 0.5)
	_, ok = m.SamplePosition(common.Vec3{5, 50, 5}, 2)
	assert.False(t, ok)
}

func TestMonotonePartition(t *testing.T) {
	cfg := testConfig()
	cfg.Build.Partition = recast.PartitionMonotone
	m := newBuilt(t, cfg, floor(t))
	path := m.FindPath(common.Vec3{1, 0, 1}, common.Vec3{9, 0, 9})
	require.True(t, path.Found())
	assert.InDelta(t, 8*1.41421356, path.Length(), 0.2)
}

func TestBuildFailureKeepsMesh(t *testing.T) {
	m := newBuilt(t, testConfig(), floor(t))
	before := m.Stats()

	assert.ErrorIs(t, m.Build(nil), recast.ErrEmptyGeometry)

	// A lone vertical wall has nothing walkable.
	wall, err := recast.NewInputGeom([]common.Vec3{
		{0, 0, 0}, {0, 5, 0}, {5, 5, 0},
		{0, 0, 0}, {5, 5, 0}, {5, 0, 0},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Build(wall), recast.ErrNoWalkableArea)

	assert.Equal(t, before, m.Stats())
	assert.True(t, m.FindPath(common.Vec3{1, 0, 1}, common.Vec3{9, 0, 9}).Found())
}

func TestObstacleRoundTrip(t *testing.T) {
	m := newBuilt(t, testConfig(), floor(t))
	before := m.Stats()
	start, end := common.Vec3{4.6, 0, 1}, common.Vec3{4.6, 0, 9}
	direct := m.FindPath(start, end).Length()
	assert.InDelta(t, 8, direct, 0.1)

	ref, err := m.AddBoxObstacle(common.Vec3{3.5, 0, 4.5}, common.Vec3{6.5, 1, 5.5})
	require.NoError(t, err)
	ob := m.Obstacle(ref)
	require.NotNil(t, ob)
	assert.Equal(t, detour_tile_cache.DT_OBSTACLE_PROCESSING, ob.State)

	require.NoError(t, m.UpdateCarvingImmediately())
	assert.Equal(t, detour_tile_cache.DT_OBSTACLE_PROCESSED, m.Obstacle(ref).State)
	assert.Equal(t, 1, m.Stats().Obstacles)
	assert.NotEqual(t, before.Polys, m.Stats().Polys)

	around := m.FindPath(start, end)
	require.True(t, around.Found())
	assert.Greater(t, around.Length(), direct+0.4)
	for _, p := range around.Points {
		inside := p[0] > 3.5 && p[0] < 6.5 && p[2] > 4.5 && p[2] < 5.5
		assert.False(t, inside, "waypoint %v inside the obstacle", p)
	}

	require.NoError(t, m.RemoveObstacle(ref))
	require.NoError(t, m.UpdateCarvingImmediately())
	assert.Nil(t, m.Obstacle(ref))
	assert.Equal(t, before, m.Stats())
	assert.InDelta(t, direct, m.FindPath(start, end).Length(), 1e-3)

	assert.Error(t, m.RemoveObstacle(ref), "stale refs are rejected")
}

func TestObstacleCapacity(t *testing.T) {
	cfg := testConfig()
	m := newBuilt(t, cfg, floor(t))
	for i := 0; i < cfg.Build.MaxObstacles; i++ {
		_, err := m.AddCylinderObstacle(common.Vec3{1 + 2*float32(i), 0, 2}, 0.3, 1)
		require.NoError(t, err)
	}
	_, err := m.AddCylinderObstacle(common.Vec3{5, 0, 8}, 0.3, 1)
	assert.ErrorIs(t, err, detour_tile_cache.ErrOutOfObstacles)
	require.NoError(t, m.UpdateCarvingImmediately())
	assert.Equal(t, cfg.Build.MaxObstacles, m.Stats().Obstacles)
}

func TestObstacleQueueDrains(t *testing.T) {
	cfg := testConfig()
	cfg.Build.MaxObstacles = 2 * detour_tile_cache.MAX_REQUESTS
	m := newBuilt(t, cfg, floor(t))

	var refs []detour_tile_cache.ObstacleRef
	for i := 0; i < detour_tile_cache.MAX_REQUESTS+4; i++ {
		pos := common.Vec3{1 + float32(i%8), 0, 1 + float32(i/8)}
		ref, err := m.AddCylinderObstacle(pos, 0.05, 1)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	// The full queue was flushed before the last requests.
	assert.Equal(t, detour_tile_cache.DT_OBSTACLE_PROCESSED, m.Obstacle(refs[0]).State)
	assert.Equal(t, detour_tile_cache.DT_OBSTACLE_PROCESSING, m.Obstacle(refs[len(refs)-1]).State)

	require.NoError(t, m.UpdateCarvingImmediately())
	assert.Equal(t, len(refs), m.Stats().Obstacles)
}

func TestDebugLinesFollowChanges(t *testing.T) {
	m := newBuilt(t, testConfig(), floor(t))
	lines := m.DebugLines()
	require.NotEmpty(t, lines)
	n := len(lines)
	assert.Len(t, m.DebugLines(), n)

	_, err := m.AddCylinderObstacle(common.Vec3{5, 0, 5}, 1, 1)
	require.NoError(t, err)
	require.NoError(t, m.UpdateCarvingImmediately())
	assert.NotEqual(t, n, len(m.DebugLines()))

	obj, err := m.DumpObj()
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(obj), "\ng tile_"))
}

func TestDebugLinesHeldAcrossRegeneration(t *testing.T) {
	m := newBuilt(t, testConfig(), floor(t))
	held := m.DebugLines()
	require.NotEmpty(t, held)
	saved := append([]debug_utils.DuLine(nil), held...)

	_, err := m.AddCylinderObstacle(common.Vec3{5, 0, 5}, 1, 1)
	require.NoError(t, err)
	require.NoError(t, m.UpdateCarvingImmediately())
	require.NotEmpty(t, m.DebugLines())
	assert.Equal(t, saved, held, "a previously returned list must not change")
}

func TestBuildFlatBoundsHasNoWalkableArea(t *testing.T) {
	m, err := NewNavMeshManager(testConfig())
	require.NoError(t, err)
	wall, err := recast.NewInputGeom([]common.Vec3{
		{0, 0, 3}, {0, 4, 3}, {6, 4, 3},
	})
	require.NoError(t, err)
	err = m.Build(wall)
	assert.ErrorIs(t, err, recast.ErrNoWalkableArea)
	assert.NotErrorIs(t, err, detour.ErrInvalidParam)
	assert.False(t, m.Built())
}

func TestConcurrentFindPath(t *testing.T) {
	m := newBuilt(t, testConfig(), floor(t))
	var wg sync.WaitGroup
	found := make([]int, 8)
	for g := range found {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				x := float32(1 + (g+i)%8)
				if m.FindPath(common.Vec3{1, 0, 1}, common.Vec3{x, 0, 9}).Found() {
					found[g]++
				}
			}
		}(g)
	}
	wg.Wait()
	for g, n := range found {
		assert.Equal(t, 20, n, "goroutine %d", g)
	}
}
