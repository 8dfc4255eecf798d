// Package navmesh owns a built navigation mesh together with its tile cache
// and answers path queries against it.
package navmesh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/logger"
	"github.com/gorustyt/gonavmesh/common/rw"
	"github.com/gorustyt/gonavmesh/config"
	"github.com/gorustyt/gonavmesh/debug_utils"
	"github.com/gorustyt/gonavmesh/detour"
	"github.com/gorustyt/gonavmesh/detour_tile_cache"
	"github.com/gorustyt/gonavmesh/recast"
	"go.uber.org/multierr"
)

var ErrNotBuilt = errors.New("navmesh: not built")

// Stats summarizes the current mesh.
type Stats struct {
	Tiles     int ///< Navmesh tiles holding polygons.
	Polys     int
	Layers    int ///< Cached tile layers.
	Obstacles int ///< Obstacles in any non-empty state.
}

// state is everything one Build produces. It is replaced as a whole.
type state struct {
	geom    *recast.InputGeom
	tc      *detour_tile_cache.TileCache
	nav     *detour.NavMesh
	queries sync.Pool
}

// NavMeshManager is the owned navigation state of a level. Queries may run
// concurrently; builds and obstacle updates take the write lock.
type NavMeshManager struct {
	cfg    *config.Config
	filter *detour.QueryFilter

	mu      sync.RWMutex
	st      *state
	version uint64 ///< Bumped on every navmesh change.

	linesMu      sync.Mutex
	lines        *debug_utils.DuLineList
	linesVersion uint64
}

// NewNavMeshManager validates cfg and returns an empty manager. A nil cfg
// uses config.Default.
func NewNavMeshManager(cfg *config.Config) (*NavMeshManager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter := detour.NewQueryFilter()
	filter.IncludeFlags = detour_tile_cache.POLYFLAGS_WALK
	return &NavMeshManager{
		cfg:    cfg,
		filter: filter,
	}, nil
}

func (m *NavMeshManager) Config() *config.Config { return m.cfg }

// Built reports whether a mesh is loaded.
func (m *NavMeshManager) Built() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st != nil
}

// tilePlan returns the tile grid of geom and the bit split of poly refs.
func tilePlan(rc *recast.RcConfig) (tilesX, tilesZ, maxPolys int) {
	ts := rc.TileSize
	tilesX = (rc.Width + ts - 1) / ts
	tilesZ = (rc.Height + ts - 1) / ts
	tileBits := int(common.Ilog2(common.NextPow2(uint32(tilesX * tilesZ))))
	polyBits := min(16, 22-tileBits)
	return tilesX, tilesZ, 1 << polyBits
}

// Build voxelizes geom into tiles and replaces the current mesh. On failure
// the previous mesh stays in place. Obstacles of the previous mesh are dropped.
// Individual tiles that fail are logged and left empty.
func (m *NavMeshManager) Build(geom *recast.InputGeom) error {
	st, err := m.build(geom)
	if err != nil {
		logger.Error("NavMeshManager.Build: %v", err)
		return err
	}
	m.mu.Lock()
	m.st = st
	m.version++
	m.mu.Unlock()

	s := m.Stats()
	logger.Info("NavMeshManager.Build: %s: %d tiles %d polys", geom.Name, s.Tiles, s.Polys)
	return nil
}

func (m *NavMeshManager) build(geom *recast.InputGeom) (*state, error) {
	if geom == nil || len(geom.Verts) < 9 {
		return nil, recast.ErrEmptyGeometry
	}
	b := &m.cfg.Build
	rc := b.ToRcConfig(geom.Bmin, geom.Bmax)
	partitioner, err := b.Partitioner()
	if err != nil {
		return nil, err
	}
	tilesX, tilesZ, maxPolys := tilePlan(rc)
	maxTiles := tilesX * tilesZ
	if maxTiles == 0 {
		// Bounds without xz extent, e.g. a lone vertical wall.
		return nil, fmt.Errorf("%w: grid %dx%d", recast.ErrNoWalkableArea, rc.Width, rc.Height)
	}

	tc, err := detour_tile_cache.NewTileCache(&detour_tile_cache.TileCacheParams{
		Orig:         geom.Bmin,
		Config:       *rc,
		AgentRadius:  b.AgentRadius,
		MaxTiles:     maxTiles,
		MaxObstacles: b.MaxObstacles,
		Partitioner:  partitioner,
	}, nil, nil)
	if err != nil {
		return nil, err
	}
	tw := b.TileWorldSize()
	nav, err := detour.NewNavMesh(&detour.NavMeshParams{
		Orig:       geom.Bmin,
		TileWidth:  tw,
		TileHeight: tw,
		MaxTiles:   maxTiles,
		MaxPolys:   maxPolys,
	})
	if err != nil {
		return nil, err
	}

	builder := detour_tile_cache.NewTileCacheBuilder(tc.Params(), tc.Compressor())
	var tileErrs error
	if err := builder.BuildTiles(geom, tc); err != nil {
		tileErrs = multierr.Append(tileErrs, err)
	}
	for ty := 0; ty < tilesZ; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			if err := tc.BuildNavMeshTilesAt(tx, ty, nav); err != nil {
				tileErrs = multierr.Append(tileErrs, err)
			}
		}
	}
	if nav.PolyCount() == 0 {
		return nil, multierr.Append(recast.ErrNoWalkableArea, tileErrs)
	}
	if tileErrs != nil {
		logger.Warn("NavMeshManager.Build: %d tile failures: %v", len(multierr.Errors(tileErrs)), tileErrs)
	}

	st := &state{geom: geom, tc: tc, nav: nav}
	maxNodes := m.cfg.Query.MaxNodes
	st.queries.New = func() any {
		q, err := detour.NewNavMeshQuery(nav, maxNodes)
		if err != nil {
			logger.Error("NavMeshManager: new query: %v", err)
			return nil
		}
		return q
	}
	return st, nil
}

func (st *state) getQuery() *detour.NavMeshQuery {
	q, _ := st.queries.Get().(*detour.NavMeshQuery)
	return q
}

// FindPath returns the straight path from start to end. Any failure, an
// unreachable end included, yields an empty Path; a path cut short by the
// waypoint cap is returned as is.
func (m *NavMeshManager) FindPath(start, end common.Vec3) detour.Path {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		logger.Debug("FindPath: %v", ErrNotBuilt)
		return detour.Path{}
	}
	q := m.st.getQuery()
	if q == nil {
		return detour.Path{}
	}
	defer m.st.queries.Put(q)

	qc := &m.cfg.Query
	path, err := q.ComputePath(start, end, qc.HalfExtents[:], m.filter, qc.MaxPath, qc.MaxStraightPath)
	if err != nil {
		logger.Debug("FindPath %v -> %v: %v", start, end, err)
		if errors.Is(err, detour.ErrFailure) || errors.Is(err, detour.ErrPartialResult) {
			return detour.Path{}
		}
	}
	return path
}

// SamplePosition returns the point on the mesh nearest to pos within extent
// along every axis.
func (m *NavMeshManager) SamplePosition(pos common.Vec3, extent float32) (common.Vec3, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return common.Vec3{}, false
	}
	q := m.st.getQuery()
	if q == nil {
		return common.Vec3{}, false
	}
	defer m.st.queries.Put(q)

	_, pt, err := q.FindNearestPoly(pos[:], []float32{extent, extent, extent}, m.filter)
	if err != nil {
		logger.Debug("SamplePosition %v: %v", pos, err)
		return common.Vec3{}, false
	}
	return common.SliceToVec3(pt), true
}

// addObstacle runs add against the tile cache, draining the request queue
// once when it is full.
func (m *NavMeshManager) addObstacle(add func(tc *detour_tile_cache.TileCache) (detour_tile_cache.ObstacleRef, error)) (detour_tile_cache.ObstacleRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == nil {
		return 0, ErrNotBuilt
	}
	ref, err := add(m.st.tc)
	if errors.Is(err, detour_tile_cache.ErrBufferTooSmall) {
		updateErr := m.updateLocked()
		ref, err = add(m.st.tc)
		err = multierr.Append(err, updateErr)
	}
	return ref, err
}

// AddBoxObstacle queues an axis aligned box obstacle. It carves the mesh on
// the next UpdateCarvingImmediately.
func (m *NavMeshManager) AddBoxObstacle(bmin, bmax common.Vec3) (detour_tile_cache.ObstacleRef, error) {
	return m.addObstacle(func(tc *detour_tile_cache.TileCache) (detour_tile_cache.ObstacleRef, error) {
		return tc.AddBoxObstacle(bmin[:], bmax[:])
	})
}

// AddCylinderObstacle queues a cylinder standing on pos.
func (m *NavMeshManager) AddCylinderObstacle(pos common.Vec3, radius, height float32) (detour_tile_cache.ObstacleRef, error) {
	return m.addObstacle(func(tc *detour_tile_cache.TileCache) (detour_tile_cache.ObstacleRef, error) {
		return tc.AddObstacle(pos[:], radius, height)
	})
}

func (m *NavMeshManager) RemoveObstacle(ref detour_tile_cache.ObstacleRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == nil {
		return ErrNotBuilt
	}
	err := m.st.tc.RemoveObstacle(ref)
	if errors.Is(err, detour_tile_cache.ErrBufferTooSmall) {
		updateErr := m.updateLocked()
		err = multierr.Append(m.st.tc.RemoveObstacle(ref), updateErr)
	}
	return err
}

// UpdateCarvingImmediately applies every queued obstacle change and rebuilds
// the touched tiles. Tiles that fail keep their previous polygons.
func (m *NavMeshManager) UpdateCarvingImmediately() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == nil {
		return ErrNotBuilt
	}
	return m.updateLocked()
}

func (m *NavMeshManager) updateLocked() error {
	if m.st.tc.UpToDate() {
		return nil
	}
	_, err := m.st.tc.Update(m.st.nav)
	m.version++
	if err != nil {
		return fmt.Errorf("navmesh: update: %w", err)
	}
	return nil
}

// Obstacle returns the obstacle ref points at, or nil when ref is stale.
func (m *NavMeshManager) Obstacle(ref detour_tile_cache.ObstacleRef) *detour_tile_cache.Obstacle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return nil
	}
	return m.st.tc.GetObstacleByRef(ref)
}

func (m *NavMeshManager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return Stats{}
	}
	return Stats{
		Tiles:     m.st.nav.TileCount(),
		Polys:     m.st.nav.PolyCount(),
		Layers:    m.st.tc.LayerCount(),
		Obstacles: m.st.tc.ActiveObstacles(),
	}
}

// Bounds returns the bounds of the geometry the mesh was built from.
func (m *NavMeshManager) Bounds() (bmin, bmax [3]float32, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return bmin, bmax, false
	}
	return m.st.geom.Bmin, m.st.geom.Bmax, true
}

// DebugLines returns polygon edges and obstacle wireframes. The list is
// regenerated only after the mesh changed; callers must not modify it.
func (m *NavMeshManager) DebugLines() []debug_utils.DuLine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.linesMu.Lock()
	defer m.linesMu.Unlock()
	if m.st == nil {
		m.lines = nil
		return nil
	}
	if m.lines == nil || m.linesVersion != m.version {
		// A returned list is never written again; regeneration starts a new one.
		lines := debug_utils.NewDuLineList()
		debug_utils.DuDebugDrawNavMeshPolyBoundaries(lines, m.st.nav, debug_utils.DuRGBA(0, 48, 64, 220), 2)
		debug_utils.DuDebugDrawTileCacheObstacles(lines, m.st.tc)
		m.lines = lines
		m.linesVersion = m.version
	}
	return m.lines.Lines
}

// DumpObj writes the polygons of every tile as Wavefront OBJ.
func (m *NavMeshManager) DumpObj() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return nil, ErrNotBuilt
	}
	w := rw.NewWriter()
	if err := debug_utils.DuDumpNavMeshToObj(m.st.nav, w); err != nil {
		return nil, err
	}
	return w.GetWriteBytes(), nil
}
