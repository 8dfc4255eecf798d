package recast

import (
	"github.com/gorustyt/gonavmesh/common"
)

type RcCompactCell struct {
	Index int ///< Index to the first span in the column.
	Count int ///< Number of spans in the column.
}

// / Represents a span of unobstructed space within a compact heightfield.
type RcCompactSpan struct {
	Y   uint16 ///< The lower extent of the span. (Measured from the heightfield's base.)
	Reg uint16 ///< The id of the region the span belongs to. (Or zero if not in a region.)
	Con uint32 ///< Packed neighbor connection data.
	H   uint8  ///< The height of the span.  (Measured from #y.)
}

// / A compact, static heightfield representing unobstructed space.
// / @ingroup recast
type RcCompactHeightfield struct {
	Width          int             ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height         int             ///< The height of the heightfield. (Along the z-axis in cell units.)
	SpanCount      int             ///< The number of spans in the heightfield.
	WalkableHeight int             ///< The walkable height used during the build of the field.
	WalkableClimb  int             ///< The walkable climb used during the build of the field.
	BorderSize     int             ///< The AABB border size used during the build of the field.
	MaxDistance    uint16          ///< The maximum distance value of any span within the field.
	MaxRegions     int             ///< The maximum region id of any span within the field.
	Bmin           [3]float32      ///< The minimum bounds in world space. [(x, y, z)]
	Bmax           [3]float32      ///< The maximum bounds in world space. [(x, y, z)]
	Cs             float32         ///< The size of each cell. (On the xz-plane.)
	Ch             float32         ///< The height of each cell. (The minimum increment along the y-axis.)
	Cells          []RcCompactCell ///< Array of cells. [Size: #width*#height]
	Spans          []RcCompactSpan ///< Array of spans. [Size: #spanCount]
	Dist           []uint16        ///< Array containing border distance data. [Size: #spanCount]
	Areas          []uint8         ///< Array containing area id data. [Size: #spanCount]
}

// / Sets the neighbor connection data for the specified direction.
func RcSetCon(s *RcCompactSpan, dir, i int) {
	shift := uint32(dir * 6)
	con := s.Con
	s.Con = (con &^ (0x3f << shift)) | ((uint32(i) & 0x3f) << shift)
}

// / Gets neighbor connection data for the specified direction.
func RcGetCon(s *RcCompactSpan, dir int) int {
	shift := uint32(dir * 6)
	return int((s.Con >> shift) & 0x3f)
}

// Neighbour returns the index of the span connected to span i of cell (x, z)
// in direction dir, or -1.
func (chf *RcCompactHeightfield) Neighbour(x, z, i, dir int) int {
	con := RcGetCon(&chf.Spans[i], dir)
	if con == RC_NOT_CONNECTED {
		return -1
	}
	ax := x + common.GetDirOffsetX(dir)
	az := z + common.GetDirOffsetY(dir)
	return chf.Cells[ax+az*chf.Width].Index + con
}

// chamferPass relaxes dist over one scan direction. Forward passes look at
// the (-1,0)/(-1,-1) and (0,-1)/(1,-1) neighbours, backward passes at the
// mirrored ones.
func chamferPass(chf *RcCompactHeightfield, dist []uint16, forward bool, limit uint16) {
	w, h := chf.Width, chf.Height
	d1, d1b, d2, d2b := 0, 3, 3, 2
	if !forward {
		d1, d1b, d2, d2b = 2, 1, 1, 0
	}
	relax := func(i int, cand uint16, add int) {
		nd := uint16(min(int(cand)+add, int(limit)))
		if nd < dist[i] {
			dist[i] = nd
		}
	}
	step := func(x, z int) {
		c := chf.Cells[x+z*w]
		for i := c.Index; i < c.Index+c.Count; i++ {
			for _, d := range [2][2]int{{d1, d1b}, {d2, d2b}} {
				ai := chf.Neighbour(x, z, i, d[0])
				if ai < 0 {
					continue
				}
				relax(i, dist[ai], 2)
				ax := x + common.GetDirOffsetX(d[0])
				az := z + common.GetDirOffsetY(d[0])
				if bi := chf.Neighbour(ax, az, ai, d[1]); bi >= 0 {
					relax(i, dist[bi], 3)
				}
			}
		}
	}
	if forward {
		for z := 0; z < h; z++ {
			for x := 0; x < w; x++ {
				step(x, z)
			}
		}
		return
	}
	for z := h - 1; z >= 0; z-- {
		for x := w - 1; x >= 0; x-- {
			step(x, z)
		}
	}
}

// / Erodes the walkable area within the heightfield by the specified radius.
// / Returns ErrNoWalkableArea when no span survives.
func RcErodeWalkableArea(erosionRadius int, chf *RcCompactHeightfield) error {
	w, h := chf.Width, chf.Height
	dist := make([]uint16, chf.SpanCount)
	for i := range dist {
		dist[i] = 0xff
	}

	// Mark boundary cells.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if chf.Areas[i] == RC_NULL_AREA {
					dist[i] = 0
					continue
				}
				// Check that there is a non-null adjacent span in each of the 4 cardinal directions.
				nc := 0
				for dir := 0; dir < 4; dir++ {
					ni := chf.Neighbour(x, z, i, dir)
					if ni < 0 || chf.Areas[ni] == RC_NULL_AREA {
						break
					}
					nc++
				}
				// At least one missing neighbour, so this is a boundary cell.
				if nc != 4 {
					dist[i] = 0
				}
			}
		}
	}

	chamferPass(chf, dist, true, 255)
	chamferPass(chf, dist, false, 255)

	thr := uint16(erosionRadius * 2)
	alive := 0
	for i := 0; i < chf.SpanCount; i++ {
		if dist[i] < thr {
			chf.Areas[i] = RC_NULL_AREA
		}
		if chf.Areas[i] != RC_NULL_AREA {
			alive++
		}
	}
	if alive == 0 {
		return ErrNoWalkableArea
	}
	return nil
}

func (chf *RcCompactHeightfield) gridFootprint(bmin, bmax []float32) (minX, minY, minZ, maxX, maxY, maxZ int, ok bool) {
	minX = int((bmin[0] - chf.Bmin[0]) / chf.Cs)
	minY = int((bmin[1] - chf.Bmin[1]) / chf.Ch)
	minZ = int((bmin[2] - chf.Bmin[2]) / chf.Cs)
	maxX = int((bmax[0] - chf.Bmin[0]) / chf.Cs)
	maxY = int((bmax[1] - chf.Bmin[1]) / chf.Ch)
	maxZ = int((bmax[2] - chf.Bmin[2]) / chf.Cs)

	// Early-out if the volume is outside the bounds of the grid.
	if maxX < 0 || minX >= chf.Width || maxZ < 0 || minZ >= chf.Height {
		return 0, 0, 0, 0, 0, 0, false
	}
	minX = max(minX, 0)
	maxX = min(maxX, chf.Width-1)
	minZ = max(minZ, 0)
	maxZ = min(maxZ, chf.Height-1)
	return minX, minY, minZ, maxX, maxY, maxZ, true
}

// / Applies an area id to all spans within the specified bounding box. (AABB)
func RcMarkBoxArea(bmin, bmax []float32, areaID uint8, chf *RcCompactHeightfield) int {
	minX, minY, minZ, maxX, maxY, maxZ, ok := chf.gridFootprint(bmin, bmax)
	if !ok {
		return 0
	}
	marked := 0
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			c := chf.Cells[x+z*chf.Width]
			for i := c.Index; i < c.Index+c.Count; i++ {
				y := int(chf.Spans[i].Y)
				// Skip if the span is outside the box extents or already removed.
				if y < minY || y > maxY || chf.Areas[i] == RC_NULL_AREA {
					continue
				}
				chf.Areas[i] = areaID
				marked++
			}
		}
	}
	return marked
}

// / Applies the area id to all spans within the specified y-axis-aligned cylinder.
func RcMarkCylinderArea(pos []float32, radius, height float32, areaID uint8, chf *RcCompactHeightfield) int {
	bmin := []float32{pos[0] - radius, pos[1], pos[2] - radius}
	bmax := []float32{pos[0] + radius, pos[1] + height, pos[2] + radius}
	minX, minY, minZ, maxX, maxY, maxZ, ok := chf.gridFootprint(bmin, bmax)
	if !ok {
		return 0
	}
	radiusSq := radius * radius
	marked := 0
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			cellX := chf.Bmin[0] + (float32(x)+0.5)*chf.Cs
			cellZ := chf.Bmin[2] + (float32(z)+0.5)*chf.Cs
			// Skip this column if it's too far from the center point of the cylinder.
			if common.Sqr(cellX-pos[0])+common.Sqr(cellZ-pos[2]) >= radiusSq {
				continue
			}
			c := chf.Cells[x+z*chf.Width]
			for i := c.Index; i < c.Index+c.Count; i++ {
				y := int(chf.Spans[i].Y)
				if chf.Areas[i] == RC_NULL_AREA || y < minY || y > maxY {
					continue
				}
				chf.Areas[i] = areaID
				marked++
			}
		}
	}
	return marked
}

func dirOffX(dir int) int { return common.GetDirOffsetX(dir) }

func dirOffZ(dir int) int { return common.GetDirOffsetY(dir) }
