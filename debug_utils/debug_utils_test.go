package debug_utils

import (
	"strings"
	"testing"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/rw"
	"github.com/gorustyt/gonavmesh/detour"
	"github.com/gorustyt/gonavmesh/detour_tile_cache"
	"github.com/gorustyt/gonavmesh/recast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floorConfig() (*recast.RcConfig, []float32) {
	tris := []float32{
		0, 0, 0, 0, 0, 10, 10, 0, 10,
		0, 0, 0, 10, 0, 10, 10, 0, 0,
	}
	cfg := &recast.RcConfig{
		Cs:                     0.25,
		Ch:                     0.2,
		WalkableSlopeAngle:     45,
		WalkableHeight:         10,
		WalkableClimb:          4,
		WalkableRadius:         2,
		MaxEdgeLen:             48,
		MaxSimplificationError: 1.3,
		MinRegionArea:          64,
		MergeRegionArea:        400,
		MaxVertsPerPoly:        6,
		DetailSampleDist:       1.5,
		DetailSampleMaxError:   0.2,
	}
	cfg.Bmin, cfg.Bmax = recast.RcCalcBounds(tris)
	cfg.Bmax[1] += 2
	cfg.Width, cfg.Height = recast.RcCalcGridSize(cfg.Bmin[:], cfg.Bmax[:], cfg.Cs)
	return cfg, tris
}

func buildFloor(t *testing.T) (*recast.RcCompactHeightfield, *recast.RcPolyMesh, *recast.RcPolyMeshDetail) {
	t.Helper()
	cfg, tris := floorConfig()
	chf, err := recast.RcBuildCompactTile(cfg, tris)
	require.NoError(t, err)
	pmesh, dmesh, err := recast.RcBuildTileMesh(cfg, chf, nil)
	require.NoError(t, err)
	return chf, pmesh, dmesh
}

func TestLineListPrimitives(t *testing.T) {
	l := NewDuLineList()
	red := DuRGBA(255, 0, 0, 255)

	l.Begin(DU_DRAW_LINES, 2)
	l.Vertex1(0, 0, 0, red)
	l.Vertex1(1, 0, 0, red)
	l.Vertex1(1, 0, 1, red)
	l.End()
	require.Len(t, l.Lines, 1, "an unpaired vertex is dropped")
	assert.Equal(t, common.Vec3{1, 0, 0}, l.Lines[0].B)
	assert.Equal(t, float32(2), l.Lines[0].Width)

	l.Begin(DU_DRAW_TRIS, 1)
	l.Vertex([]float32{0, 0, 0}, red)
	l.Vertex([]float32{1, 0, 0}, red)
	l.Vertex([]float32{0, 0, 1}, red)
	l.End()
	assert.Len(t, l.Lines, 4)

	l.Begin(DU_DRAW_POINTS, 1)
	l.Vertex1(5, 5, 5, red)
	l.End()
	assert.Len(t, l.Lines, 4)

	l.Clear()
	assert.Empty(t, l.Lines)
}

func TestAppendWireShapes(t *testing.T) {
	l := NewDuLineList()
	col := DuRGBA(0, 0, 0, 255)
	DuDebugDrawBoxWire(l, 1, 2, 3, 4, 5, 6, col, 1)
	assert.Len(t, l.Lines, 12)
	bmin, bmax := l.Bounds()
	assert.Equal(t, common.Vec3{1, 2, 3}, bmin)
	assert.Equal(t, common.Vec3{4, 5, 6}, bmax)

	l.Clear()
	DuDebugDrawCylinderWire(l, -1, 0, -1, 1, 2, 1, col, 1)
	assert.Len(t, l.Lines, 16*2+4)
	bmin, bmax = l.Bounds()
	assert.InDelta(t, -1, bmin[0], 1e-5)
	assert.InDelta(t, 1, bmax[2], 1e-5)
	assert.Equal(t, float32(2), bmax[1])

	l.Clear()
	DuDebugDrawGridXZ(l, 0, 0, 0, 3, 2, 1, col, 1)
	assert.Len(t, l.Lines, 3+4)
}

func TestColors(t *testing.T) {
	c := DuRGBA(200, 100, 50, 255)
	var back Colorb
	back.FromInt(c.Int())
	assert.Equal(t, c, back)
	assert.Equal(t, DuRGBA(100, 50, 25, 255), DuDarkenCol(c))
	assert.Equal(t, DuRGBA(200, 100, 50, 7), DuTransCol(c, 7))
	assert.Equal(t, c, DuLerpCol(c, DuRGBA(0, 0, 0, 0), 0))
	assert.NotEqual(t, DuIntToCol(1, 255), DuIntToCol(2, 255))

	r, _, _, a := DuRGBA(255, 0, 0, 255).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestNavMeshPolyBoundaries(t *testing.T) {
	_, pmesh, dmesh := buildFloor(t)
	for i := range pmesh.Flags {
		pmesh.Flags[i] = 1
	}
	data, err := detour.CreateNavMeshData(detour.NewNavMeshCreateParams(pmesh, dmesh))
	require.NoError(t, err)
	nav, err := detour.NewSingleTileNavMesh(data)
	require.NoError(t, err)

	l := NewDuLineList()
	DuDebugDrawNavMeshPolyBoundaries(l, nav, DuRGBA(0, 48, 64, 220), 2)
	require.NotEmpty(t, l.Lines)
	bmin, bmax := l.Bounds()
	assert.InDelta(t, 0.5, bmin[0], 0.3)
	assert.InDelta(t, 9.5, bmax[2], 0.3)

	l.Clear()
	DuDebugDrawNavMeshPortals(l, nav)
	assert.Empty(t, l.Lines, "a single tile has no portals")

	l.Clear()
	DuDebugDrawNavMeshPolysWithFlags(l, nav, 1, DuRGBA(255, 0, 0, 255))
	assert.NotEmpty(t, l.Lines)
	n := len(l.Lines)
	DuDebugDrawNavMeshPoly(l, nav, 0, DuRGBA(255, 0, 0, 255))
	assert.Len(t, l.Lines, n, "a null ref draws nothing")

	var sb strings.Builder
	w := rw.NewWriter()
	require.NoError(t, DuDumpNavMeshToObj(nav, w))
	sb.Write(w.GetWriteBytes())
	assert.Contains(t, sb.String(), "g tile_0_0_0")
	assert.Equal(t, data.Header.VertCount, strings.Count(sb.String(), "\nv "))
}

func TestDrawTileCacheObstacles(t *testing.T) {
	params := &detour_tile_cache.TileCacheParams{
		Config:       recast.RcConfig{TileSize: 32, Cs: 0.3},
		MaxTiles:     4,
		MaxObstacles: 4,
	}
	tc, err := detour_tile_cache.NewTileCache(params, nil, nil)
	require.NoError(t, err)
	_, err = tc.AddBoxObstacle([]float32{1, 0, 1}, []float32{2, 1, 2})
	require.NoError(t, err)
	_, err = tc.AddObstacle([]float32{5, 0, 5}, 1, 2)
	require.NoError(t, err)

	l := NewDuLineList()
	DuDebugDrawTileCacheObstacles(l, tc)
	assert.Len(t, l.Lines, 12+16*2+4)
	assert.Equal(t, DuDarkenCol(DuRGBA(255, 255, 0, 128)), l.Lines[0].Color)
}

func TestDrawPath(t *testing.T) {
	l := NewDuLineList()
	path := detour.Path{Points: []common.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}}}
	DuDebugDrawPath(l, path, DuRGBA(255, 0, 0, 255), 2)
	assert.Len(t, l.Lines, 2+3*3)
	DuDebugDrawPath(l, detour.Path{}, DuRGBA(255, 0, 0, 255), 2)
	assert.Len(t, l.Lines, 2+3*3)
}

func TestDrawRecastMeshes(t *testing.T) {
	chf, pmesh, dmesh := buildFloor(t)

	l := NewDuLineList()
	DuDebugDrawPolyMesh(l, pmesh)
	edges := 0
	for i := 0; i < pmesh.Npolys; i++ {
		for _, v := range pmesh.Poly(i)[:pmesh.Nvp] {
			if v != recast.RC_MESH_NULL_IDX {
				edges++
			}
		}
	}
	assert.Len(t, l.Lines, edges)

	l.Clear()
	DuDebugDrawPolyMeshDetail(l, dmesh)
	assert.Len(t, l.Lines, dmesh.Ntris()*3)

	cset := recast.RcBuildContours(chf, 1.3, 48, recast.RC_CONTOUR_TESS_WALL_EDGES)
	require.NotEmpty(t, cset.Conts)
	l.Clear()
	DuDebugDrawContours(l, cset, 1)
	assert.GreaterOrEqual(t, len(l.Lines), 3)
	l.Clear()
	DuDebugDrawRawContours(l, cset, 0.5)
	assert.GreaterOrEqual(t, len(l.Lines), cset.Conts[0].Nverts())
}

func TestDumpPolyMeshToObj(t *testing.T) {
	_, pmesh, dmesh := buildFloor(t)
	w := rw.NewWriter()
	require.NoError(t, DuDumpPolyMeshToObj(pmesh, w))
	out := string(w.GetWriteBytes())
	assert.True(t, strings.HasPrefix(out, "# Recast Navmesh\n"))
	assert.Equal(t, pmesh.Nverts, strings.Count(out, "\nv "))
	tris := 0
	for i := 0; i < pmesh.Npolys; i++ {
		n := 0
		for _, v := range pmesh.Poly(i)[:pmesh.Nvp] {
			if v != recast.RC_MESH_NULL_IDX {
				n++
			}
		}
		tris += n - 2
	}
	assert.Equal(t, tris, strings.Count(out, "\nf "))

	w = rw.NewWriter()
	require.NoError(t, DuDumpPolyMeshDetailToObj(dmesh, w))
	assert.Equal(t, dmesh.Ntris(), strings.Count(string(w.GetWriteBytes()), "\nf "))

	assert.ErrorIs(t, DuDumpPolyMeshToObj(pmesh, nil), ErrNilIO)
}

func TestContourSetDumpRoundTrip(t *testing.T) {
	chf, _, _ := buildFloor(t)
	cset := recast.RcBuildContours(chf, 1.3, 48, recast.RC_CONTOUR_TESS_WALL_EDGES)

	w := rw.NewWriter()
	require.NoError(t, DuDumpContourSet(cset, w))
	data := w.GetWriteBytes()
	got, err := DuReadContourSet(rw.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, cset, got)

	_, err = DuReadContourSet(rw.NewReader(data[:len(data)-2]))
	assert.ErrorIs(t, err, ErrBadContourData)
	bad := append([]byte{}, data...)
	bad[0] ^= 0xff
	_, err = DuReadContourSet(rw.NewReader(bad))
	assert.ErrorIs(t, err, ErrBadContourData)
}

func TestRenderTopDown(t *testing.T) {
	red := DuRGBA(255, 0, 0, 255)
	lines := []DuLine{{A: common.Vec3{0, 0, 5}, B: common.Vec3{10, 0, 5}, Color: red, Width: 4}}
	img := RenderTopDown(lines, [3]float32{0, 0, 0}, [3]float32{10, 1, 5 * 2}, 100)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	r, g, b, _ := img.At(50, 50).RGBA()
	assert.Greater(t, r, uint32(0xf000))
	assert.Less(t, g, uint32(0x1000))
	assert.Less(t, b, uint32(0x1000))
	r, g, b, _ = img.At(50, 10).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}
