package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Error(msg)
	}
}

// columnSpan returns the lowest span of column (x, z), or nil.
func columnSpan(hf *RcHeightfield, x, z int) *RcSpan {
	head := hf.Spans[x+z*hf.Width]
	if head == RC_NULL_SPAN {
		return nil
	}
	return hf.Span(head)
}

func assertSingleSpan(t *testing.T, hf *RcHeightfield, x, z int, smin, smax uint16, area uint8, msg string) {
	t.Helper()
	span := columnSpan(hf, x, z)
	if !assert.NotNil(t, span, msg) {
		return
	}
	assertTrue(t, span.Smin == smin, msg)
	assertTrue(t, span.Smax == smax, msg)
	assertTrue(t, span.Area == area, msg)
	assertTrue(t, span.Next == RC_NULL_SPAN, msg)
}

func TestCalcBounds(t *testing.T) {
	bmin, bmax := RcCalcBounds([]float32{1, 2, 3})
	assert.Equal(t, [3]float32{1, 2, 3}, bmin, "bounds of one vector")
	assert.Equal(t, [3]float32{1, 2, 3}, bmax, "bounds of one vector")

	bmin, bmax = RcCalcBounds([]float32{
		1, 2, 3,
		0, 2, 5,
	})
	assert.Equal(t, [3]float32{0, 2, 3}, bmin, "bounds of two vectors")
	assert.Equal(t, [3]float32{1, 2, 5}, bmax, "bounds of two vectors")
}

func TestCalcGridSize(t *testing.T) {
	bmin, bmax := RcCalcBounds([]float32{
		1, 2, 3,
		0, 2, 6,
	})
	width, height := RcCalcGridSize(bmin[:], bmax[:], 1.5)
	assertTrue(t, width == 1, "computes the size of an x & z axis grid")
	assertTrue(t, height == 2, "computes the size of an x & z axis grid")
}

func TestCreateHeightfield(t *testing.T) {
	bmin, bmax := RcCalcBounds([]float32{
		1, 2, 3,
		0, 2, 6,
	})
	width, height := RcCalcGridSize(bmin[:], bmax[:], 1.5)
	hf := RcCreateHeightfield(width, height, bmin[:], bmax[:], 1.5, 2.0)

	assert.Equal(t, width, hf.Width)
	assert.Equal(t, height, hf.Height)
	assert.Equal(t, bmin, hf.Bmin)
	assert.Equal(t, bmax, hf.Bmax)
	assert.Equal(t, float32(1.5), hf.Cs)
	assert.Equal(t, float32(2.0), hf.Ch)
	require.Len(t, hf.Spans, width*height)
	for _, head := range hf.Spans {
		assert.Equal(t, RC_NULL_SPAN, head)
	}
}

func TestMarkWalkableTriangles(t *testing.T) {
	walkable := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,
	}
	unwalkable := []float32{
		0, 0, 0,
		0, 0, -1,
		1, 0, 0,
	}
	areas := RcMarkWalkableTriangles(45, walkable)
	assertTrue(t, areas[0] == RC_WALKABLE_AREA, "One walkable triangle")

	areas = RcMarkWalkableTriangles(45, unwalkable)
	assertTrue(t, areas[0] == RC_NULL_AREA, "One non-walkable triangle")

	areas = RcMarkWalkableTriangles(0, walkable)
	assertTrue(t, areas[0] == RC_NULL_AREA, "Slopes equal to the max slope are considered unwalkable.")

	degenerate := []float32{
		0, 0, 0,
		1, 0, 0,
		2, 0, 0,
	}
	areas = RcMarkWalkableTriangles(45, degenerate)
	assertTrue(t, areas[0] == RC_NULL_AREA, "Degenerate triangles are not walkable")
}

func newSpanTestHeightfield() *RcHeightfield {
	bmin, bmax := RcCalcBounds([]float32{
		1, 2, 3,
		0, 2, 6,
	})
	width, height := RcCalcGridSize(bmin[:], bmax[:], 1.5)
	return RcCreateHeightfield(width, height, bmin[:], bmax[:], 1.5, 2.0)
}

func TestAddSpan(t *testing.T) {
	const area uint8 = 42
	const flagMergeThr = 1

	t.Run("Add a span to an empty heightfield.", func(t *testing.T) {
		hf := newSpanTestHeightfield()
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		assertSingleSpan(t, hf, 0, 0, 0, 1, area, "single span")
	})

	t.Run("Add a span that gets merged with an existing span.", func(t *testing.T) {
		hf := newSpanTestHeightfield()
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 1, 2, area, flagMergeThr)
		assertSingleSpan(t, hf, 0, 0, 0, 2, area, "merged span")
	})

	t.Run("Add a span that merges with two spans above and below.", func(t *testing.T) {
		hf := newSpanTestHeightfield()
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 2, 3, area, flagMergeThr)

		span := columnSpan(hf, 0, 0)
		require.NotNil(t, span)
		require.NotEqual(t, RC_NULL_SPAN, span.Next)
		upper := hf.Span(span.Next)
		assertTrue(t, upper.Smin == 2 && upper.Smax == 3, "upper span kept apart")

		RcAddSpan(hf, 0, 0, 1, 2, area, flagMergeThr)
		assertSingleSpan(t, hf, 0, 0, 0, 3, area, "bridging span merges both")
	})

	t.Run("Area of the span with the higher top wins outside the merge threshold.", func(t *testing.T) {
		hf := newSpanTestHeightfield()
		RcAddSpan(hf, 0, 0, 0, 2, RC_WALKABLE_AREA, flagMergeThr)
		RcAddSpan(hf, 0, 0, 0, 10, RC_NULL_AREA, flagMergeThr)
		assertSingleSpan(t, hf, 0, 0, 0, 10, RC_NULL_AREA, "lower walkable top is buried")

		hf = newSpanTestHeightfield()
		RcAddSpan(hf, 0, 0, 0, 9, RC_NULL_AREA, flagMergeThr)
		RcAddSpan(hf, 0, 0, 0, 10, RC_WALKABLE_AREA, flagMergeThr)
		assertSingleSpan(t, hf, 0, 0, 0, 10, RC_WALKABLE_AREA, "tops within threshold take the max area")
	})

	t.Run("Freed spans are reused.", func(t *testing.T) {
		hf := newSpanTestHeightfield()
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 1, 2, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 5, 6, area, flagMergeThr)
		assert.Len(t, hf.pool, 2)
	})
}

func TestRasterizeTriangle(t *testing.T) {
	verts := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,
	}
	bmin, bmax := RcCalcBounds(verts)
	width, height := RcCalcGridSize(bmin[:], bmax[:], 0.5)
	solid := RcCreateHeightfield(width, height, bmin[:], bmax[:], 0.5, 0.5)

	const area uint8 = 42
	msg := "Rasterize a triangle"
	skipped := RcRasterizeTriangles(verts, []uint8{area}, solid, 1)
	assertTrue(t, skipped == 0, msg)

	assertTrue(t, columnSpan(solid, 0, 0) != nil, msg)
	assertTrue(t, columnSpan(solid, 1, 0) == nil, msg)
	assertTrue(t, columnSpan(solid, 0, 1) != nil, msg)
	assertTrue(t, columnSpan(solid, 1, 1) != nil, msg)

	assertSingleSpan(t, solid, 0, 0, 0, 1, area, msg)
	assertSingleSpan(t, solid, 0, 1, 0, 1, area, msg)
	assertSingleSpan(t, solid, 1, 1, 0, 1, area, msg)
}

func TestRasterizeTriangleOutsideHeightfield(t *testing.T) {
	// A triangle whose bounds overlap the heightfield but whose surface does not.
	bmin := []float32{0, 0, 0}
	bmax := []float32{10, 10, 10}
	hf := RcCreateHeightfield(10, 10, bmin, bmax, 1, 1)

	verts := []float32{
		-10.0, 5.5, -10.0,
		-10.0, 5.5, 3,
		3.0, 5.5, -10.0,
	}
	RcRasterizeTriangles(verts, []uint8{42}, hf, 1)

	for _, head := range hf.Spans {
		assertTrue(t, head == RC_NULL_SPAN, "overlapping bb but non-overlapping triangle")
	}
}

func TestRasterizeSkinnyTriangles(t *testing.T) {
	for name, verts := range map[string][]float32{
		"Skinny triangle along x axis": {
			5, 0, 0.005,
			5, 0, -0.005,
			-5, 0, 0.005,

			-5, 0, 0.005,
			5, 0, -0.005,
			-5, 0, -0.005,
		},
		"Skinny triangle along z axis": {
			0.005, 0, 5,
			-0.005, 0, 5,
			0.005, 0, -5,

			0.005, 0, -5,
			-0.005, 0, 5,
			-0.005, 0, -5,
		},
	} {
		t.Run(name, func(t *testing.T) {
			bmin, bmax := RcCalcBounds(verts)
			width, height := RcCalcGridSize(bmin[:], bmax[:], 1)
			solid := RcCreateHeightfield(width, height, bmin[:], bmax[:], 1, 1)
			assert.Equal(t, 0, RcRasterizeTriangles(verts, []uint8{42, 42}, solid, 1))
		})
	}
}

func TestRasterizeTriangles(t *testing.T) {
	verts := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,

		0, 0, 0,
		0, 0, 1,
		1, 0, 0,
	}
	bmin, bmax := RcCalcBounds(verts)
	width, height := RcCalcGridSize(bmin[:], bmax[:], 0.5)
	solid := RcCreateHeightfield(width, height, bmin[:], bmax[:], 0.5, 0.5)

	msg := "Rasterize some triangles"
	RcRasterizeTriangles(verts, []uint8{1, 2}, solid, 1)

	assertTrue(t, columnSpan(solid, 0, 0) != nil, msg)
	assertTrue(t, columnSpan(solid, 0, 1) != nil, msg)
	assertTrue(t, columnSpan(solid, 0, 2) != nil, msg)
	assertTrue(t, columnSpan(solid, 0, 3) != nil, msg)
	assertTrue(t, columnSpan(solid, 1, 0) == nil, msg)
	assertTrue(t, columnSpan(solid, 1, 1) != nil, msg)
	assertTrue(t, columnSpan(solid, 1, 2) != nil, msg)
	assertTrue(t, columnSpan(solid, 1, 3) == nil, msg)

	assertSingleSpan(t, solid, 0, 0, 0, 1, 1, msg)
	assertSingleSpan(t, solid, 0, 1, 0, 1, 1, msg)
	assertSingleSpan(t, solid, 0, 2, 0, 1, 2, msg)
	assertSingleSpan(t, solid, 0, 3, 0, 1, 2, msg)
	assertSingleSpan(t, solid, 1, 1, 0, 1, 1, msg)
	assertSingleSpan(t, solid, 1, 2, 0, 1, 2, msg)
}

func TestRasterizeSkipsDegenerateTriangles(t *testing.T) {
	nan := float32(0)
	nan = nan / nan
	verts := []float32{
		// collinear
		0, 0, 0,
		1, 0, 0,
		2, 0, 0,
		// not finite
		0, 0, 0,
		nan, 0, 1,
		1, 0, 0,
		// valid
		0, 0, 0,
		0, 0, 1,
		1, 0, 0,
	}
	hf := RcCreateHeightfield(4, 4, []float32{0, 0, 0}, []float32{2, 1, 2}, 0.5, 0.5)
	skipped := RcRasterizeTriangles(verts, []uint8{1, 1, 1}, hf, 1)
	assert.Equal(t, 2, skipped)
	assert.NotNil(t, columnSpan(hf, 0, 0), "valid triangle still rasterized")
}

func TestFilterWalkableLowHeightSpans(t *testing.T) {
	hf := RcCreateHeightfield(1, 1, []float32{0, 0, 0}, []float32{1, 10, 1}, 1, 1)
	RcAddSpan(hf, 0, 0, 0, 1, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 0, 0, 3, 4, RC_WALKABLE_AREA, 1)

	RcFilterWalkableLowHeightSpans(3, hf)

	lower := columnSpan(hf, 0, 0)
	require.NotNil(t, lower)
	assert.Equal(t, uint8(RC_NULL_AREA), lower.Area, "2 voxels of clearance is too low")
	assert.Equal(t, uint8(RC_WALKABLE_AREA), hf.Span(lower.Next).Area, "open top is walkable")
}

func TestFilterLowHangingWalkableObstacles(t *testing.T) {
	hf := RcCreateHeightfield(1, 1, []float32{0, 0, 0}, []float32{1, 20, 1}, 1, 1)
	RcAddSpan(hf, 0, 0, 0, 1, RC_WALKABLE_AREA, 1)
	RcAddSpan(hf, 0, 0, 2, 3, RC_NULL_AREA, 1)
	RcAddSpan(hf, 0, 0, 5, 10, RC_NULL_AREA, 1)

	RcFilterLowHangingWalkableObstacles(2, hf)

	s := columnSpan(hf, 0, 0)
	s = hf.Span(s.Next)
	assert.Equal(t, uint8(RC_WALKABLE_AREA), s.Area, "step within climb becomes walkable")
	s = hf.Span(s.Next)
	assert.Equal(t, uint8(RC_NULL_AREA), s.Area, "walkable flag does not propagate twice")
}
