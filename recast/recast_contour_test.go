package recast

import (
	"testing"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridHeightfield builds a one-layer compact heightfield from rows of cells:
// '.' is empty, '#' is walkable without a region, a digit is walkable in
// that region.
func gridHeightfield(rows ...string) *RcCompactHeightfield {
	w, h := len(rows[0]), len(rows)
	chf := &RcCompactHeightfield{
		Width:  w,
		Height: h,
		Cs:     1,
		Ch:     1,
		Cells:  make([]RcCompactCell, w*h),
	}
	solid := func(x, z int) bool {
		return x >= 0 && z >= 0 && x < w && z < h && rows[z][x] != '.'
	}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			if !solid(x, z) {
				continue
			}
			chf.Cells[x+z*w] = RcCompactCell{Index: chf.SpanCount, Count: 1}
			var reg uint16
			if c := rows[z][x]; c >= '0' && c <= '9' {
				reg = uint16(c - '0')
				chf.MaxRegions = max(chf.MaxRegions, int(reg))
			}
			chf.Spans = append(chf.Spans, RcCompactSpan{Reg: reg, H: 10})
			chf.Areas = append(chf.Areas, RC_WALKABLE_AREA)
			chf.SpanCount++
		}
	}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			if !solid(x, z) {
				continue
			}
			s := &chf.Spans[chf.Cells[x+z*w].Index]
			for dir := 0; dir < 4; dir++ {
				con := RC_NOT_CONNECTED
				if solid(x+dirOffX(dir), z+dirOffZ(dir)) {
					con = 0
				}
				RcSetCon(s, dir, con)
			}
		}
	}
	chf.Dist = make([]uint16, chf.SpanCount)
	return chf
}

// rectOutline returns the raw outline of a w x h rectangle, one point per
// unit step, none of them a portal.
func rectOutline(w, h int) []int {
	var pts []int
	for x := 0; x < w; x++ {
		pts = append(pts, x, 0, 0, 0)
	}
	for z := 0; z < h; z++ {
		pts = append(pts, w, 0, z, 0)
	}
	for x := w; x > 0; x-- {
		pts = append(pts, x, 0, h, 0)
	}
	for z := h; z > 0; z-- {
		pts = append(pts, 0, 0, z, 0)
	}
	return pts
}

// maxDeviation returns the largest squared xz distance from a raw wall
// point to the closest edge of the simplified outline.
func maxDeviation(raw, simplified []int) float32 {
	n := len(simplified) / 4
	var worst float32
	for i := 0; i < len(raw); i += 4 {
		if raw[i+3]&RC_CONTOUR_REG_MASK != 0 {
			continue
		}
		best := float32(1e30)
		for j := 0; j < n; j++ {
			a := simplified[j*4:]
			b := simplified[((j+1)%n)*4:]
			best = min(best, common.DistancePtSegInt(raw[i], raw[i+2], a[0], a[2], b[0], b[2]))
		}
		worst = max(worst, best)
	}
	return worst
}

func edgeLenSqr(verts []int, i, n int) int {
	a := verts[i*4:]
	b := verts[((i+1)%n)*4:]
	dx, dz := b[0]-a[0], b[2]-a[2]
	return dx*dx + dz*dz
}

func TestSimplifyContourDeviation(t *testing.T) {
	raw := rectOutline(20, 10)
	// Push the middle of the bottom edge one cell out.
	raw[10*4+2] = -1

	tests := []struct {
		name     string
		maxError float32
		nverts   int
	}{
		{"bump within tolerance", 1.3, 4},
		{"bump kept", 0.8, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			simplified := simplifyContour(raw, nil, tt.maxError, 0, 0)
			assert.Len(t, simplified, tt.nverts*4)
			assert.LessOrEqual(t, maxDeviation(raw, simplified), tt.maxError*tt.maxError)
		})
	}
}

func TestSimplifyContourSplitsLongEdges(t *testing.T) {
	raw := rectOutline(20, 10)

	simplified := simplifyContour(raw, nil, 1.3, 0, 0)
	require.Len(t, simplified, 4*4)
	assert.Greater(t, edgeLenSqr(simplified, 0, 4), 6*6, "no split without the tessellation flag")

	simplified = simplifyContour(raw, nil, 1.3, 6, RC_CONTOUR_TESS_WALL_EDGES)
	n := len(simplified) / 4
	assert.Greater(t, n, 4)
	for i := 0; i < n; i++ {
		assert.LessOrEqual(t, edgeLenSqr(simplified, i, n), 6*6, "edge %d", i)
	}
}

func TestContoursDropDegenerate(t *testing.T) {
	chf := gridHeightfield(
		"....",
		".11.",
		"....",
	)
	// The six raw corners collapse onto the diagonal.
	cset := RcBuildContours(chf, 1.3, 0, 0)
	assert.Empty(t, cset.Conts)

	chf = gridHeightfield(
		"....",
		".11.",
		"....",
	)
	cset = RcBuildContours(chf, 0.5, 0, 0)
	require.Len(t, cset.Conts, 1)
	cont := cset.Conts[0]
	assert.Equal(t, uint16(1), cont.Reg)
	assert.Equal(t, 6, cont.Nrverts())
	assert.Equal(t, 4, cont.Nverts())
}

func TestContoursKeepRawAndSimplified(t *testing.T) {
	const maxError, maxEdgeLen = 1.3, 12
	chf, _, _ := buildTestMesh(t, floorTris(0, 0, 10, 10, 0), 0.5, WatershedPartitioner{})
	cset := RcBuildContours(chf, maxError, maxEdgeLen, RC_CONTOUR_TESS_WALL_EDGES)
	require.NotEmpty(t, cset.Conts)
	assert.Equal(t, float32(maxError), cset.MaxError)

	for ci, cont := range cset.Conts {
		n := cont.Nverts()
		assert.GreaterOrEqual(t, n, 3, "contour %d", ci)
		assert.GreaterOrEqual(t, cont.Nrverts(), n, "contour %d", ci)

		raw := map[[2]int]bool{}
		for i := 0; i < len(cont.Rverts); i += 4 {
			raw[[2]int{cont.Rverts[i], cont.Rverts[i+2]}] = true
		}
		for i := 0; i < n; i++ {
			v := cont.Verts[i*4:]
			assert.True(t, raw[[2]int{v[0], v[2]}], "contour %d vertex %d is not a raw vertex", ci, i)
			if v[3]&RC_CONTOUR_REG_MASK == 0 {
				assert.LessOrEqual(t, edgeLenSqr(cont.Verts, i, n), maxEdgeLen*maxEdgeLen, "contour %d wall edge %d", ci, i)
			}
		}
		assert.LessOrEqual(t, maxDeviation(cont.Rverts, cont.Verts), float32(maxError*maxError), "contour %d", ci)
	}
}

func TestExpandRegionsTieBreak(t *testing.T) {
	tests := []struct {
		name       string
		rows       string
		leftDist   uint16
		rightDist  uint16
		wantRegion uint16
	}{
		{"equal distance takes smaller id", "2#1", 0, 0, 1},
		{"equal distance takes smaller id mirrored", "1#2", 0, 0, 1},
		{"closer region wins over smaller id", "1#2", 4, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chf := gridHeightfield(tt.rows)
			srcReg := make([]uint16, chf.SpanCount)
			srcDist := make([]uint16, chf.SpanCount)
			for i, s := range chf.Spans {
				srcReg[i] = s.Reg
			}
			srcDist[0], srcDist[2] = tt.leftDist, tt.rightDist

			expandRegions(8, 0, chf, srcReg, srcDist, nil, true)
			assert.Equal(t, tt.wantRegion, srcReg[1])
			assert.Equal(t, min(tt.leftDist, tt.rightDist)+2, srcDist[1])
		})
	}
}
