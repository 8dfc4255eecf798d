package recast

import (
	"math"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/logger"
)

type rcAxis int

const (
	RC_AXIS_X rcAxis = 0
	RC_AXIS_Y rcAxis = 1
	RC_AXIS_Z rcAxis = 2
)

// / Adds a span to the heightfield. If the new span overlaps existing spans,
// / it will merge the new span with the existing ones.
func addSpan(hf *RcHeightfield, x, z int, smin, smax uint16, areaID uint8, flagMergeThreshold int) {
	ns := hf.allocSpan()
	hf.pool[ns] = RcSpan{Smin: smin, Smax: smax, Area: areaID, Next: RC_NULL_SPAN}
	newSpan := &hf.pool[ns]

	columnIndex := x + z*hf.Width
	prev := RC_NULL_SPAN
	cur := hf.Spans[columnIndex]

	// Insert the new span, possibly merging it with existing spans.
	for cur != RC_NULL_SPAN {
		curSpan := &hf.pool[cur]
		if curSpan.Smin > newSpan.Smax {
			// Current span is completely after the new span, break.
			break
		}
		if curSpan.Smax < newSpan.Smin {
			// Current span is completely before the new span. Keep going.
			prev = cur
			cur = curSpan.Next
			continue
		}
		// The new span overlaps with an existing span. Merge them.
		newSpan.Smin = min(newSpan.Smin, curSpan.Smin)
		newSpan.Smax = max(newSpan.Smax, curSpan.Smax)

		// Merge flags.
		if common.Abs(int(newSpan.Smax)-int(curSpan.Smax)) <= flagMergeThreshold {
			// Higher area ID numbers indicate higher resolution priority.
			newSpan.Area = max(newSpan.Area, curSpan.Area)
		}

		// Remove the current span since it's now merged with newSpan.
		next := curSpan.Next
		hf.freeSpan(cur)
		if prev != RC_NULL_SPAN {
			hf.pool[prev].Next = next
		} else {
			hf.Spans[columnIndex] = next
		}
		cur = next
	}

	// Insert new span after prev
	if prev != RC_NULL_SPAN {
		newSpan.Next = hf.pool[prev].Next
		hf.pool[prev].Next = ns
	} else {
		newSpan.Next = hf.Spans[columnIndex]
		hf.Spans[columnIndex] = ns
	}
}

// RcAddSpan inserts the span [smin, smax] into column (x, z).
func RcAddSpan(hf *RcHeightfield, x, z int, smin, smax uint16, areaID uint8, flagMergeThreshold int) {
	addSpan(hf, x, z, smin, smax, areaID, flagMergeThreshold)
}

// / Divides a convex polygon of max 12 vertices into two convex polygons
// / across a separating axis.
func dividePoly(in []float32, nin int, out1 []float32, out2 []float32, axisOffset float32, axis rcAxis) (n1, n2 int) {
	// How far positive or negative away from the separating axis is each vertex.
	var d [12]float32
	for i := 0; i < nin; i++ {
		d[i] = axisOffset - in[i*3+int(axis)]
	}

	for a, b := 0, nin-1; a < nin; b, a = a, a+1 {
		// If the two vertices are on the same side of the separating axis
		sameSide := (d[a] >= 0) == (d[b] >= 0)
		if !sameSide {
			s := d[b] / (d[b] - d[a])
			out1[n1*3+0] = in[b*3+0] + (in[a*3+0]-in[b*3+0])*s
			out1[n1*3+1] = in[b*3+1] + (in[a*3+1]-in[b*3+1])*s
			out1[n1*3+2] = in[b*3+2] + (in[a*3+2]-in[b*3+2])*s
			copy(out2[n2*3:n2*3+3], out1[n1*3:n1*3+3])
			n1++
			n2++
			// add the a point to the right polygon. Do NOT add points that are on the dividing line
			// since these were already added above
			if d[a] > 0 {
				copy(out1[n1*3:n1*3+3], in[a*3:a*3+3])
				n1++
			} else if d[a] < 0 {
				copy(out2[n2*3:n2*3+3], in[a*3:a*3+3])
				n2++
			}
			continue
		}
		// add the a point to the right polygon. Addition is done even for points on the dividing line
		if d[a] >= 0 {
			copy(out1[n1*3:n1*3+3], in[a*3:a*3+3])
			n1++
			if d[a] != 0 {
				continue
			}
		}
		copy(out2[n2*3:n2*3+3], in[a*3:a*3+3])
		n2++
	}
	return n1, n2
}

// / Rasterize a single triangle to the heightfield.
func rasterizeTri(v0, v1, v2 []float32, areaID uint8, hf *RcHeightfield,
	cellSize, inverseCellSize, inverseCellHeight float32, flagMergeThreshold int) {
	bmin := hf.Bmin[:]
	bmax := hf.Bmax[:]

	// Calculate the bounding box of the triangle.
	var triMin, triMax [3]float32
	copy(triMin[:], v0)
	common.Vmin(triMin[:], v1)
	common.Vmin(triMin[:], v2)
	copy(triMax[:], v0)
	common.Vmax(triMax[:], v1)
	common.Vmax(triMax[:], v2)

	// If the triangle does not touch the bounding box of the heightfield, skip the triangle.
	if !common.OverlapBounds(triMin[:], triMax[:], bmin, bmax) {
		return
	}

	w := hf.Width
	h := hf.Height
	by := bmax[1] - bmin[1]

	// Calculate the footprint of the triangle on the grid's z-axis
	z0 := int((triMin[2] - bmin[2]) * inverseCellSize)
	z1 := int((triMax[2] - bmin[2]) * inverseCellSize)

	// use -1 rather than 0 to cut the polygon properly at the start of the tile
	z0 = common.Clamp(z0, -1, h-1)
	z1 = common.Clamp(z1, 0, h-1)

	// Clip the triangle into all grid cells it touches.
	var buf [7 * 3 * 4]float32
	in := buf[0 : 7*3]
	inRow := buf[7*3 : 14*3]
	p1 := buf[14*3 : 21*3]
	p2 := buf[21*3 : 28*3]

	copy(in[0:], v0)
	copy(in[3:], v1)
	copy(in[6:], v2)
	nvIn := 3
	var nvRow int

	for z := z0; z <= z1; z++ {
		// Clip polygon to row. Store the remaining polygon as well
		cellZ := bmin[2] + float32(z)*cellSize
		nvRow, nvIn = dividePoly(in, nvIn, inRow, p1, cellZ+cellSize, RC_AXIS_Z)
		in, p1 = p1, in
		if nvRow < 3 || z < 0 {
			continue
		}

		// find X-axis bounds of the row
		minX := inRow[0]
		maxX := inRow[0]
		for vert := 1; vert < nvRow; vert++ {
			minX = min(minX, inRow[vert*3])
			maxX = max(maxX, inRow[vert*3])
		}
		x0 := int((minX - bmin[0]) * inverseCellSize)
		x1 := int((maxX - bmin[0]) * inverseCellSize)
		if x1 < 0 || x0 >= w {
			continue
		}
		x0 = common.Clamp(x0, -1, w-1)
		x1 = common.Clamp(x1, 0, w-1)

		nv2 := nvRow
		for x := x0; x <= x1; x++ {
			// Clip polygon to column. store the remaining polygon as well
			cx := bmin[0] + float32(x)*cellSize
			var nv int
			nv, nv2 = dividePoly(inRow, nv2, p1, p2, cx+cellSize, RC_AXIS_X)
			inRow, p2 = p2, inRow
			if nv < 3 || x < 0 {
				continue
			}

			// Calculate min and max of the span.
			spanMin := p1[1]
			spanMax := p1[1]
			for vert := 1; vert < nv; vert++ {
				spanMin = min(spanMin, p1[vert*3+1])
				spanMax = max(spanMax, p1[vert*3+1])
			}
			spanMin -= bmin[1]
			spanMax -= bmin[1]

			// Skip the span if it's completely outside the heightfield bounding box
			if spanMax < 0 || spanMin > by {
				continue
			}
			// Clamp the span to the heightfield bounding box.
			spanMin = max(spanMin, 0)
			spanMax = min(spanMax, by)

			// Snap the span to the heightfield height grid.
			smin := common.Clamp(int(math.Floor(float64(spanMin*inverseCellHeight))), 0, RC_SPAN_MAX_HEIGHT)
			smax := common.Clamp(int(math.Ceil(float64(spanMax*inverseCellHeight))), smin+1, RC_SPAN_MAX_HEIGHT)
			addSpan(hf, x, z, uint16(smin), uint16(smax), areaID, flagMergeThreshold)
		}
	}
}

func isDegenerateTri(v0, v1, v2 []float32) bool {
	if !common.Visfinite(v0) || !common.Visfinite(v1) || !common.Visfinite(v2) {
		return true
	}
	var e0, e1, n [3]float32
	common.Vsub(e0[:], v1, v0)
	common.Vsub(e1[:], v2, v0)
	common.Vcross(n[:], e0[:], e1[:])
	return common.VlenSqr(n[:]) == 0
}

// RcRasterizeTriangles voxelizes a triangle soup (9 floats per triangle) with
// the given per-triangle area ids. Degenerate or non-finite triangles are
// skipped; their count is returned.
func RcRasterizeTriangles(tris []float32, triAreaIDs []uint8, hf *RcHeightfield, flagMergeThreshold int) (skipped int) {
	inverseCellSize := 1.0 / hf.Cs
	inverseCellHeight := 1.0 / hf.Ch
	ntris := len(tris) / 9
	for i := 0; i < ntris; i++ {
		v := tris[i*9 : i*9+9]
		if isDegenerateTri(v[0:3], v[3:6], v[6:9]) {
			skipped++
			continue
		}
		rasterizeTri(v[0:3], v[3:6], v[6:9], triAreaIDs[i], hf, hf.Cs, inverseCellSize, inverseCellHeight, flagMergeThreshold)
	}
	if skipped > 0 {
		logger.Warn("RcRasterizeTriangles: skipped %d degenerate triangles", skipped)
	}
	return skipped
}
