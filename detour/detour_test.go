package detour

import (
	"errors"
	"testing"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/recast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCs     = 0.25
	testCh     = 0.2
	polyFlagOK = 0x01
)

var testExtents = []float32{2, 4, 2}

func floorTris(x0, z0, x1, z1, y float32) []float32 {
	return []float32{
		x0, y, z0, x0, y, z1, x1, y, z1,
		x0, y, z0, x1, y, z1, x1, y, z0,
	}
}

func boxTris(x0, y0, z0, x1, y1, z1 float32) []float32 {
	tris := floorTris(x0, z0, x1, z1, y1)
	side := func(ax, az, bx, bz float32) {
		tris = append(tris,
			ax, y0, az, bx, y0, bz, bx, y1, bz,
			ax, y0, az, bx, y1, bz, ax, y1, az,
		)
	}
	side(x0, z0, x1, z0)
	side(x1, z0, x1, z1)
	side(x1, z1, x0, z1)
	side(x0, z1, x0, z0)
	return tris
}

// wallWithGapTris is a 10x10 floor split along z=5 by a wall with a 2 unit gap at x 4..6.
func wallWithGapTris() []float32 {
	tris := floorTris(0, 0, 10, 10, 0)
	tris = append(tris, boxTris(0, 0, 4.8, 4, 2, 5.2)...)
	tris = append(tris, boxTris(6, 0, 4.8, 10, 2, 5.2)...)
	return tris
}

func testRcConfig(agentRadius float32) *recast.RcConfig {
	return &recast.RcConfig{
		Cs:                     testCs,
		Ch:                     testCh,
		WalkableSlopeAngle:     45,
		WalkableHeight:         10,
		WalkableClimb:          4,
		WalkableRadius:         int(agentRadius/testCs + 0.999),
		MaxEdgeLen:             48,
		MaxSimplificationError: 1.3,
		MinRegionArea:          64,
		MergeRegionArea:        400,
		MaxVertsPerPoly:        6,
		DetailSampleDist:       1.5,
		DetailSampleMaxError:   0.2,
	}
}

func tileData(t *testing.T, cfg *recast.RcConfig, tris []float32, agentRadius float32, tx, ty int) *NavMeshData {
	t.Helper()
	chf, err := recast.RcBuildCompactTile(cfg, tris)
	require.NoError(t, err)
	pmesh, dmesh, err := recast.RcBuildTileMesh(cfg, chf, nil)
	require.NoError(t, err)
	for i := range pmesh.Flags {
		pmesh.Flags[i] = polyFlagOK
	}
	params := NewNavMeshCreateParams(pmesh, dmesh)
	params.TileX = tx
	params.TileY = ty
	params.WalkableHeight = float32(cfg.WalkableHeight) * cfg.Ch
	params.WalkableRadius = agentRadius
	params.WalkableClimb = float32(cfg.WalkableClimb) * cfg.Ch
	data, err := CreateNavMeshData(params)
	require.NoError(t, err)
	return data
}

func buildSingleTile(t *testing.T, tris []float32, agentRadius float32) (*NavMesh, *NavMeshQuery) {
	t.Helper()
	cfg := testRcConfig(agentRadius)
	cfg.Bmin, cfg.Bmax = recast.RcCalcBounds(tris)
	cfg.Bmax[1] += 2
	cfg.Width, cfg.Height = recast.RcCalcGridSize(cfg.Bmin[:], cfg.Bmax[:], cfg.Cs)
	nav, err := NewSingleTileNavMesh(tileData(t, cfg, tris, agentRadius, 0, 0))
	require.NoError(t, err)
	query, err := NewNavMeshQuery(nav, 2048)
	require.NoError(t, err)
	return nav, query
}

// buildTiledMesh cuts the 10x10 world into tiles of tileSize cells.
func buildTiledMesh(t *testing.T, tris []float32, agentRadius float32, tileSize int) (*NavMesh, *NavMeshQuery) {
	t.Helper()
	bmin, bmax := recast.RcCalcBounds(tris)
	tw := float32(tileSize) * testCs
	gw, gh := recast.RcCalcGridSize(bmin[:], bmax[:], testCs)
	tilesX := (gw + tileSize - 1) / tileSize
	tilesZ := (gh + tileSize - 1) / tileSize

	nav, err := NewNavMesh(&NavMeshParams{
		Orig:       bmin,
		TileWidth:  tw,
		TileHeight: tw,
		MaxTiles:   tilesX * tilesZ,
		MaxPolys:   256,
	})
	require.NoError(t, err)
	for ty := 0; ty < tilesZ; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			cfg := testRcConfig(agentRadius)
			cfg.TileSize = tileSize
			cfg.BorderSize = cfg.WalkableRadius + 3
			cfg.Width = tileSize + cfg.BorderSize*2
			cfg.Height = tileSize + cfg.BorderSize*2
			border := float32(cfg.BorderSize) * cfg.Cs
			cfg.Bmin = [3]float32{bmin[0] + float32(tx)*tw - border, bmin[1], bmin[2] + float32(ty)*tw - border}
			cfg.Bmax = [3]float32{bmin[0] + float32(tx+1)*tw + border, bmax[1] + 2, bmin[2] + float32(ty+1)*tw + border}
			_, err := nav.AddTile(tileData(t, cfg, tris, agentRadius, tx, ty), 0)
			require.NoError(t, err)
		}
	}
	query, err := NewNavMeshQuery(nav, 2048)
	require.NoError(t, err)
	return nav, query
}

func vec(x, y, z float32) common.Vec3 { return common.Vec3{x, y, z} }

func TestPolyRefEncoding(t *testing.T) {
	nav, err := NewNavMesh(&NavMeshParams{TileWidth: 1, TileHeight: 1, MaxTiles: 64, MaxPolys: 1024})
	require.NoError(t, err)

	for _, c := range []struct{ salt, it, ip uint32 }{
		{1, 0, 0},
		{3, 17, 999},
		{1023, 63, 1023},
	} {
		ref := nav.EncodePolyId(c.salt, c.it, c.ip)
		salt, it, ip := nav.DecodePolyId(ref)
		assert.Equal(t, c.salt, salt)
		assert.Equal(t, c.it, it)
		assert.Equal(t, c.ip, ip)
		assert.Equal(t, c.salt, nav.DecodePolyIdSalt(ref))
		assert.Equal(t, c.it, nav.DecodePolyIdTile(ref))
		assert.Equal(t, c.ip, nav.DecodePolyIdPoly(ref))
	}

	_, err = NewNavMesh(&NavMeshParams{TileWidth: 1, TileHeight: 1, MaxTiles: 1 << 12, MaxPolys: 1 << 12})
	assert.ErrorIs(t, err, ErrInvalidParam, "too few salt bits must be rejected")
}

func TestNodePool(t *testing.T) {
	pool := NewNodePool(4, 2)
	a := pool.GetNode(10, 0)
	require.NotNil(t, a)
	assert.Same(t, a, pool.GetNode(10, 0))
	b := pool.GetNode(10, 1)
	assert.NotSame(t, a, b)
	assert.Same(t, a, pool.FindNode(10, 0))
	assert.Len(t, pool.FindNodes(10), 2)
	assert.Same(t, b, pool.GetNodeAtIdx(pool.GetNodeIdx(b)))

	pool.GetNode(11, 0)
	pool.GetNode(12, 0)
	assert.Nil(t, pool.GetNode(13, 0), "pool is exhausted")

	pool.Clear()
	assert.Nil(t, pool.FindNode(10, 0))
	assert.Zero(t, pool.NodeCount())
}

func TestNodeQueueOrder(t *testing.T) {
	var q nodeQueue
	nodes := []*Node{
		{ID: 1, Total: 3, seq: 1},
		{ID: 2, Total: 1, seq: 2},
		{ID: 3, Total: 2, seq: 3},
		{ID: 4, Total: 1, seq: 4},
	}
	for _, n := range nodes {
		q.push(n)
	}
	nodes[0].Total = 0.5
	q.modify(nodes[0])

	var order []PolyRef
	for !q.empty() {
		order = append(order, q.pop().ID)
	}
	assert.Equal(t, []PolyRef{1, 2, 4, 3}, order, "equal totals pop in discovery order")
}

func TestCreateNavMeshDataPortals(t *testing.T) {
	// Two quads sharing an edge; the right quad's outer edge is an x+ portal.
	params := &NavMeshCreateParams{
		Verts:     []uint16{0, 0, 0, 0, 0, 4, 4, 0, 4, 4, 0, 0, 8, 0, 4, 8, 0, 0},
		VertCount: 6,
		Polys: []uint16{
			0, 1, 2, 3, meshNullIdx, meshNullIdx, 0x800f, 0x800f, 1, 0x800f, meshNullIdx, meshNullIdx,
			3, 2, 4, 5, meshNullIdx, meshNullIdx, 0, 0x800f, 0x8002, 0x800f, meshNullIdx, meshNullIdx,
		},
		PolyFlags: []uint16{1, 1},
		PolyAreas: []uint8{0, 0},
		PolyCount: 2,
		Nvp:       6,
		Bmax:      [3]float32{8, 1, 4},
		Cs:        1,
		Ch:        1,
	}
	data, err := CreateNavMeshData(params)
	require.NoError(t, err)

	assert.Equal(t, []uint16{0, 0, 2, 0, 0, 0}, data.Polys[0].Neis[:])
	assert.Equal(t, []uint16{1, 0, DT_EXT_LINK | 0, 0, 0, 0}, data.Polys[1].Neis[:])
	assert.Equal(t, 8+2, data.Header.MaxLinkCount)
	assert.Equal(t, 4, data.Header.DetailTriCount, "each quad gets a two triangle fan")
	assert.EqualValues(t, 4, data.Polys[0].VertCount)
	assert.Equal(t, float32(8), data.Verts[4*3])

	params.Nvp = 7
	_, err = CreateNavMeshData(params)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestFlatFloorNearestPoly(t *testing.T) {
	_, query := buildSingleTile(t, floorTris(0, 0, 10, 10, 0), 0.5)
	filter := NewQueryFilter()

	ref, pt, err := query.FindNearestPoly([]float32{5, 0, 5}, testExtents, filter)
	require.NoError(t, err)
	assert.NotZero(t, ref)
	assert.InDelta(t, 5, pt[0], 1e-4)
	assert.InDelta(t, 5, pt[2], 1e-4)
	assert.InDelta(t, 0, pt[1], 0.3)

	h, err := query.GetPolyHeight(ref, []float32{5, 0, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0, h, 0.3)

	_, _, err = query.FindNearestPoly([]float32{5, 50, 5}, []float32{0.5, 0.5, 0.5}, filter)
	assert.ErrorIs(t, err, ErrNoPolygon)

	// Outside the eroded border the nearest point is clamped onto the mesh.
	_, pt, err = query.FindNearestPoly([]float32{0, 0, 0}, testExtents, filter)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, pt[0], 0.26)
	assert.InDelta(t, 0.75, pt[2], 0.26)
}

func TestFlatFloorStraightPath(t *testing.T) {
	_, query := buildSingleTile(t, floorTris(0, 0, 10, 10, 0), 0.5)

	path, err := query.ComputePath(vec(0, 0, 0), vec(9, 0, 9), testExtents, nil, 256, 256)
	require.NoError(t, err)
	require.True(t, path.Found())
	assert.Len(t, path.Points, 2)
	assert.InDelta(t, 9, path.Points[1][0], 1e-3)
	assert.InDelta(t, 9, path.Points[1][2], 1e-3)
}

func TestSameStartAndEnd(t *testing.T) {
	_, query := buildSingleTile(t, floorTris(0, 0, 10, 10, 0), 0.5)

	path, err := query.ComputePath(vec(4, 0, 4), vec(4, 0, 4), testExtents, nil, 256, 256)
	require.NoError(t, err)
	assert.NotEmpty(t, path.Points)
	assert.LessOrEqual(t, len(path.Points), 2)
	assert.InDelta(t, 0, path.Length(), 1e-4)
}

func TestPathRoutesThroughGap(t *testing.T) {
	_, query := buildSingleTile(t, wallWithGapTris(), 0.25)

	start, end := vec(2, 0, 2), vec(2, 0, 8)
	path, err := query.ComputePath(start, end, testExtents, nil, 256, 256)
	require.NoError(t, err)
	require.True(t, path.Found())
	assert.Greater(t, len(path.Points), 2)
	assert.Greater(t, path.Length(), end.Sub(start).Len()+0.5)

	throughGap := false
	for _, p := range path.Points {
		if p[0] > 4 && p[0] < 6 && p[2] > 4 && p[2] < 6 {
			throughGap = true
		}
		// No waypoint may sit inside a wall.
		inWall := p[2] > 4.8 && p[2] < 5.2 && (p[0] < 4 || p[0] > 6)
		assert.False(t, inWall, "waypoint %v inside wall", p)
	}
	assert.True(t, throughGap, "path %v does not pass the gap", path.Points)

	// Every waypoint resolves to a polygon reachable from the start polygon.
	filter := NewQueryFilter()
	startRef, startPt, err := query.FindNearestPoly(start[:], testExtents, filter)
	require.NoError(t, err)
	for _, p := range path.Points {
		ref, pt, err := query.FindNearestPoly(p[:], testExtents, filter)
		require.NoError(t, err)
		polys, err := query.FindPath(startRef, ref, startPt, pt, filter, 256)
		require.NoError(t, err)
		assert.Equal(t, ref, polys[len(polys)-1])
	}
}

func TestFindPathDeterministic(t *testing.T) {
	_, query := buildSingleTile(t, wallWithGapTris(), 0.25)
	filter := NewQueryFilter()
	startRef, startPt, err := query.FindNearestPoly([]float32{1, 0, 1}, testExtents, filter)
	require.NoError(t, err)
	endRef, endPt, err := query.FindNearestPoly([]float32{9, 0, 9}, testExtents, filter)
	require.NoError(t, err)

	first, err := query.FindPath(startRef, endRef, startPt, endPt, filter, 256)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := query.FindPath(startRef, endRef, startPt, endPt, filter, 256)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, startRef, first[0])
	assert.Equal(t, endRef, first[len(first)-1])
}

func TestFindPathBuffers(t *testing.T) {
	_, query := buildSingleTile(t, wallWithGapTris(), 0.25)
	filter := NewQueryFilter()
	startRef, startPt, err := query.FindNearestPoly([]float32{2, 0, 2}, testExtents, filter)
	require.NoError(t, err)
	endRef, endPt, err := query.FindNearestPoly([]float32{2, 0, 8}, testExtents, filter)
	require.NoError(t, err)

	full, err := query.FindPath(startRef, endRef, startPt, endPt, filter, 256)
	require.NoError(t, err)
	require.Greater(t, len(full), 1)

	capped, err := query.FindPath(startRef, endRef, startPt, endPt, filter, 1)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Equal(t, full[:1], capped)

	corners, err := query.FindStraightPath(startPt, endPt, full, 256)
	require.NoError(t, err)
	require.Greater(t, len(corners), 2)
	assert.Equal(t, uint8(DT_STRAIGHTPATH_START), corners[0].Flags)
	assert.Equal(t, uint8(DT_STRAIGHTPATH_END), corners[len(corners)-1].Flags)

	short, err := query.FindStraightPath(startPt, endPt, full, 2)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Len(t, short, 2)

	_, err = query.FindPath(0, endRef, startPt, endPt, filter, 256)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestFilterExcludesPolys(t *testing.T) {
	nav, query := buildSingleTile(t, floorTris(0, 0, 10, 10, 0), 0.5)
	filter := NewQueryFilter()
	ref, _, err := query.FindNearestPoly([]float32{5, 0, 5}, testExtents, filter)
	require.NoError(t, err)

	require.NoError(t, nav.SetPolyFlags(ref, 0x02))
	flags, err := nav.GetPolyFlags(ref)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x02), flags)

	filter.ExcludeFlags = 0x02
	_, _, err = query.FindNearestPoly([]float32{5, 0, 5}, []float32{0.1, 1, 0.1}, filter)
	assert.ErrorIs(t, err, ErrNoPolygon)

	assert.ErrorIs(t, nav.SetPolyArea(ref, DT_MAX_AREAS), ErrInvalidParam)
	require.NoError(t, nav.SetPolyArea(ref, 3))
	area, err := nav.GetPolyArea(ref)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), area)
}

func TestRemoveTileStalesRefs(t *testing.T) {
	nav, query := buildSingleTile(t, floorTris(0, 0, 10, 10, 0), 0.5)
	ref, _, err := query.FindNearestPoly([]float32{5, 0, 5}, testExtents, NewQueryFilter())
	require.NoError(t, err)

	tile, _, err := nav.GetTileAndPolyByRef(ref)
	require.NoError(t, err)
	tileRef := nav.GetTileRef(tile)
	assert.Same(t, tile, nav.GetTileByRef(tileRef))

	data, err := nav.RemoveTile(tileRef)
	require.NoError(t, err)
	assert.False(t, nav.IsValidPolyRef(ref))
	_, _, err = nav.GetTileAndPolyByRef(ref)
	assert.ErrorIs(t, err, ErrStaleRef)
	assert.True(t, errors.Is(err, ErrFailure))
	assert.Nil(t, nav.GetTileByRef(tileRef))
	_, err = nav.RemoveTile(tileRef)
	assert.ErrorIs(t, err, ErrStaleRef)

	newRef, err := nav.AddTile(data, 0)
	require.NoError(t, err)
	assert.NotEqual(t, tileRef, newRef, "salt changes after a remove")
	assert.Equal(t, 1, nav.TileCount())

	_, err = nav.AddTile(data, 0)
	assert.ErrorIs(t, err, ErrOccupied)

	bad := *data
	bad.Header.Magic = 0
	_, err = nav.AddTile(&bad, 0)
	assert.ErrorIs(t, err, ErrWrongMagic)
}

func TestTiledMeshLinksAcrossTiles(t *testing.T) {
	nav, query := buildTiledMesh(t, floorTris(0, 0, 10, 10, 0), 0.5, 20)
	require.Equal(t, 4, nav.TileCount())

	// Every border link must have a matching link back.
	for i := 0; i < nav.MaxTiles(); i++ {
		tile := nav.Tile(i)
		if tile.Header == nil {
			continue
		}
		base := nav.GetPolyRefBase(tile)
		extLinks := 0
		for pi := range tile.Polys {
			poly := &tile.Polys[pi]
			for l := poly.FirstLink; l != DT_NULL_LINK; l = tile.Links[l].Next {
				link := tile.Links[l]
				if link.Side == dtInternalLinkSide {
					continue
				}
				extLinks++
				nt, np, err := nav.GetTileAndPolyByRef(link.Ref)
				require.NoError(t, err)
				back := false
				for k := np.FirstLink; k != DT_NULL_LINK; k = nt.Links[k].Next {
					if nt.Links[k].Ref == base|PolyRef(pi) {
						back = true
					}
				}
				assert.True(t, back, "tile %d poly %d link without back link", i, pi)
			}
		}
		assert.NotZero(t, extLinks, "tile %d has no border links", i)
	}

	start, end := vec(1, 0, 3), vec(9, 0, 8)
	path, err := query.ComputePath(start, end, testExtents, nil, 256, 256)
	require.NoError(t, err)
	require.True(t, path.Found())
	assert.InDelta(t, end.Sub(start).Len(), path.Length(), 0.1)
}

func TestRemoveTileBreaksCrossTilePath(t *testing.T) {
	nav, query := buildTiledMesh(t, floorTris(0, 0, 10, 10, 0), 0.5, 20)
	filter := NewQueryFilter()

	// Remove the x+ column of tiles.
	for _, tile := range append(nav.GetTilesAt(1, 0), nav.GetTilesAt(1, 1)...) {
		_, err := nav.RemoveTile(nav.GetTileRef(tile))
		require.NoError(t, err)
	}
	_, _, err := query.FindNearestPoly([]float32{8, 0, 5}, []float32{0.5, 2, 0.5}, filter)
	assert.ErrorIs(t, err, ErrNoPolygon)

	// Links into the removed tiles are gone.
	for _, tile := range append(nav.GetTilesAt(0, 0), nav.GetTilesAt(0, 1)...) {
		for pi := range tile.Polys {
			for l := tile.Polys[pi].FirstLink; l != DT_NULL_LINK; l = tile.Links[l].Next {
				assert.True(t, nav.IsValidPolyRef(tile.Links[l].Ref))
			}
		}
	}
}

func TestPathLength(t *testing.T) {
	p := Path{Points: []common.Vec3{vec(0, 0, 0), vec(3, 0, 4), vec(3, 0, 10)}}
	assert.True(t, p.Found())
	assert.InDelta(t, 11, p.Length(), 1e-5)
	assert.False(t, Path{Points: []common.Vec3{vec(1, 1, 1)}}.Found())
	assert.Zero(t, Path{}.Length())
}
