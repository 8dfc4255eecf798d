package recast

import (
	"slices"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/logger"
)

// / Represents a simple, non-overlapping contour in field space.
type RcContour struct {
	Verts  []int  ///< Simplified contour vertex and connection data. [Size: 4 * #nverts]
	Rverts []int  ///< Raw contour vertex and connection data. [Size: 4 * #nrverts]
	Reg    uint16 ///< The region id of the contour.
	Area   uint8  ///< The area id of the contour.
}

func (c *RcContour) Nverts() int  { return len(c.Verts) / 4 }
func (c *RcContour) Nrverts() int { return len(c.Rverts) / 4 }

// / Represents a group of related contours.
type RcContourSet struct {
	Conts      []*RcContour ///< An array of the contours in the set.
	Bmin       [3]float32   ///< The minimum bounds in world space. [(x, y, z)]
	Bmax       [3]float32   ///< The maximum bounds in world space. [(x, y, z)]
	Cs         float32      ///< The size of each cell. (On the xz-plane.)
	Ch         float32      ///< The height of each cell. (The minimum increment along the y-axis.)
	Width      int          ///< The width of the set. (Along the x-axis in cell units.)
	Height     int          ///< The height of the set. (Along the z-axis in cell units.)
	BorderSize int          ///< The AABB border size used to generate the source data from which the contours were derived.
	MaxError   float32      ///< The max edge error that this contour set was simplified with.
}

func getCornerHeight(x, z, i, dir int, chf *RcCompactHeightfield) (height int, isBorderVertex bool) {
	s := &chf.Spans[i]
	height = int(s.Y)
	dirp := (dir + 1) & 0x3

	var regs [4]uint32
	// Combine region and area codes in order to prevent
	// border vertices which are in between two areas to be removed.
	regs[0] = uint32(s.Reg) | uint32(chf.Areas[i])<<16

	if ai := chf.Neighbour(x, z, i, dir); ai >= 0 {
		ax := x + dirOffX(dir)
		az := z + dirOffZ(dir)
		height = max(height, int(chf.Spans[ai].Y))
		regs[1] = uint32(chf.Spans[ai].Reg) | uint32(chf.Areas[ai])<<16
		if ai2 := chf.Neighbour(ax, az, ai, dirp); ai2 >= 0 {
			height = max(height, int(chf.Spans[ai2].Y))
			regs[2] = uint32(chf.Spans[ai2].Reg) | uint32(chf.Areas[ai2])<<16
		}
	}
	if ai := chf.Neighbour(x, z, i, dirp); ai >= 0 {
		ax := x + dirOffX(dirp)
		az := z + dirOffZ(dirp)
		height = max(height, int(chf.Spans[ai].Y))
		regs[3] = uint32(chf.Spans[ai].Reg) | uint32(chf.Areas[ai])<<16
		if ai2 := chf.Neighbour(ax, az, ai, dir); ai2 >= 0 {
			height = max(height, int(chf.Spans[ai2].Y))
			regs[2] = uint32(chf.Spans[ai2].Reg) | uint32(chf.Areas[ai2])<<16
		}
	}

	// Check if the vertex is special edge vertex, these vertices will be removed later.
	for j := 0; j < 4; j++ {
		a := j
		b := (j + 1) & 0x3
		c := (j + 2) & 0x3
		d := (j + 3) & 0x3

		// The vertex is a border vertex there are two same exterior cells in a row,
		// followed by two interior cells and none of the regions are out of bounds.
		twoSameExts := (regs[a]&regs[b]&RC_BORDER_REG) != 0 && regs[a] == regs[b]
		twoInts := ((regs[c] | regs[d]) & RC_BORDER_REG) == 0
		intsSameArea := (regs[c] >> 16) == (regs[d] >> 16)
		noZeros := regs[a] != 0 && regs[b] != 0 && regs[c] != 0 && regs[d] != 0
		if twoSameExts && twoInts && intsSameArea && noZeros {
			isBorderVertex = true
			break
		}
	}
	return height, isBorderVertex
}

func walkContour(x, z, i int, chf *RcCompactHeightfield, flags []uint8, points []int) []int {
	// Choose the first non-connected edge
	dir := 0
	for flags[i]&(1<<dir) == 0 {
		dir++
	}
	startDir := dir
	starti := i
	area := chf.Areas[i]

	for iter := 1; iter < 40000; iter++ {
		if flags[i]&(1<<dir) != 0 {
			// Choose the edge corner
			py, isBorderVertex := getCornerHeight(x, z, i, dir, chf)
			isAreaBorder := false
			px := x
			pz := z
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			r := 0
			if ai := chf.Neighbour(x, z, i, dir); ai >= 0 {
				r = int(chf.Spans[ai].Reg)
				if area != chf.Areas[ai] {
					isAreaBorder = true
				}
			}
			if isBorderVertex {
				r |= RC_BORDER_VERTEX
			}
			if isAreaBorder {
				r |= RC_AREA_BORDER
			}
			points = append(points, px, py, pz, r)
			flags[i] &^= 1 << dir // Remove visited edges
			dir = (dir + 1) & 0x3 // Rotate CW
		} else {
			ni := chf.Neighbour(x, z, i, dir)
			if ni == -1 {
				// Should not happen.
				return points
			}
			x += dirOffX(dir)
			z += dirOffZ(dir)
			i = ni
			dir = (dir + 3) & 0x3 // Rotate CCW
		}
		if starti == i && startDir == dir {
			break
		}
	}
	return points
}

func insertVert(simplified []int, at int, v ...int) []int {
	return slices.Insert(simplified, at*4, v...)
}

func simplifyContour(points []int, simplified []int, maxError float32, maxEdgeLen, buildFlags int) []int {
	pn := len(points) / 4

	// Add initial points.
	hasConnections := false
	for i := 0; i < len(points); i += 4 {
		if points[i+3]&RC_CONTOUR_REG_MASK != 0 {
			hasConnections = true
			break
		}
	}

	if hasConnections {
		// The contour has some portals to other regions.
		// Add a new point to every location where the region changes.
		for i := 0; i < pn; i++ {
			ii := (i + 1) % pn
			differentRegs := (points[i*4+3] & RC_CONTOUR_REG_MASK) != (points[ii*4+3] & RC_CONTOUR_REG_MASK)
			areaBorders := (points[i*4+3] & RC_AREA_BORDER) != (points[ii*4+3] & RC_AREA_BORDER)
			if differentRegs || areaBorders {
				simplified = append(simplified, points[i*4+0], points[i*4+1], points[i*4+2], i)
			}
		}
	}

	if len(simplified) == 0 {
		// If there is no connections at all,
		// create some initial points for the simplification process.
		// Find lower-left and upper-right vertices of the contour.
		llx, lly, llz, lli := points[0], points[1], points[2], 0
		urx, ury, urz, uri := points[0], points[1], points[2], 0
		for i := 0; i < len(points); i += 4 {
			x, y, z := points[i+0], points[i+1], points[i+2]
			if x < llx || (x == llx && z < llz) {
				llx, lly, llz, lli = x, y, z, i/4
			}
			if x > urx || (x == urx && z > urz) {
				urx, ury, urz, uri = x, y, z, i/4
			}
		}
		simplified = append(simplified, llx, lly, llz, lli, urx, ury, urz, uri)
	}

	// Add points until all raw points are within
	// error tolerance to the simplified shape.
	for i := 0; i < len(simplified)/4; {
		ii := (i + 1) % (len(simplified) / 4)

		ax, az, ai := simplified[i*4+0], simplified[i*4+2], simplified[i*4+3]
		bx, bz, bi := simplified[ii*4+0], simplified[ii*4+2], simplified[ii*4+3]

		// Find maximum deviation from the segment.
		var maxd float32
		maxi := -1
		var ci, cinc, endi int

		// Traverse the segment in lexilogical order so that the
		// max deviation is calculated similarly when traversing
		// opposite segments.
		if bx > ax || (bx == ax && bz > az) {
			cinc = 1
			ci = (ai + cinc) % pn
			endi = bi
		} else {
			cinc = pn - 1
			ci = (bi + cinc) % pn
			endi = ai
			ax, bx = bx, ax
			az, bz = bz, az
		}

		// Tessellate only outer edges or edges between areas.
		if points[ci*4+3]&RC_CONTOUR_REG_MASK == 0 || points[ci*4+3]&RC_AREA_BORDER != 0 {
			for ci != endi {
				d := common.DistancePtSegInt(points[ci*4+0], points[ci*4+2], ax, az, bx, bz)
				if d > maxd {
					maxd = d
					maxi = ci
				}
				ci = (ci + cinc) % pn
			}
		}

		// If the max deviation is larger than accepted error,
		// add new point, else continue to next segment.
		if maxi != -1 && maxd > maxError*maxError {
			simplified = insertVert(simplified, i+1, points[maxi*4+0], points[maxi*4+1], points[maxi*4+2], maxi)
		} else {
			i++
		}
	}

	// Split too long edges.
	if maxEdgeLen > 0 && buildFlags&(RC_CONTOUR_TESS_WALL_EDGES|RC_CONTOUR_TESS_AREA_EDGES) != 0 {
		for i := 0; i < len(simplified)/4; {
			ii := (i + 1) % (len(simplified) / 4)

			ax, az, ai := simplified[i*4+0], simplified[i*4+2], simplified[i*4+3]
			bx, bz, bi := simplified[ii*4+0], simplified[ii*4+2], simplified[ii*4+3]

			maxi := -1
			ci := (ai + 1) % pn

			// Tessellate only outer edges or edges between areas.
			tess := false
			// Wall edges.
			if buildFlags&RC_CONTOUR_TESS_WALL_EDGES != 0 && points[ci*4+3]&RC_CONTOUR_REG_MASK == 0 {
				tess = true
			}
			// Edges between areas.
			if buildFlags&RC_CONTOUR_TESS_AREA_EDGES != 0 && points[ci*4+3]&RC_AREA_BORDER != 0 {
				tess = true
			}

			if tess {
				dx := bx - ax
				dz := bz - az
				if dx*dx+dz*dz > maxEdgeLen*maxEdgeLen {
					// Round based on the segments in lexilogical order so that the
					// max tesselation is consistent regardless in which direction
					// segments are traversed.
					n := bi - ai
					if bi < ai {
						n = bi + pn - ai
					}
					if n > 1 {
						if bx > ax || (bx == ax && bz > az) {
							maxi = (ai + n/2) % pn
						} else {
							maxi = (ai + (n+1)/2) % pn
						}
					}
				}
			}

			if maxi != -1 {
				simplified = insertVert(simplified, i+1, points[maxi*4+0], points[maxi*4+1], points[maxi*4+2], maxi)
			} else {
				i++
			}
		}
	}

	for i := 0; i < len(simplified)/4; i++ {
		// The edge vertex flag is take from the current raw point,
		// and the neighbour region is take from the next raw point.
		ai := (simplified[i*4+3] + 1) % pn
		bi := simplified[i*4+3]
		simplified[i*4+3] = (points[ai*4+3] & (RC_CONTOUR_REG_MASK | RC_AREA_BORDER)) | (points[bi*4+3] & RC_BORDER_VERTEX)
	}
	return simplified
}

func removeDegenerateSegments(simplified []int) []int {
	// Remove adjacent vertices which are equal on xz-plane,
	// or else the triangulator will get confused.
	npts := len(simplified) / 4
	for i := 0; i < npts; i++ {
		ni := common.Next(i, npts)
		if common.Vequal2(simplified[i*4:], simplified[ni*4:]) {
			// Degenerate segment, remove.
			simplified = slices.Delete(simplified, i*4, i*4+4)
			npts--
		}
	}
	return simplified
}

func mergeContours(ca, cb *RcContour, ia, ib int) {
	na, nb := ca.Nverts(), cb.Nverts()
	verts := make([]int, 0, (na+nb+2)*4)

	// Copy contour A.
	for i := 0; i <= na; i++ {
		j := ((ia + i) % na) * 4
		verts = append(verts, ca.Verts[j:j+4]...)
	}
	// Copy contour B
	for i := 0; i <= nb; i++ {
		j := ((ib + i) % nb) * 4
		verts = append(verts, cb.Verts[j:j+4]...)
	}
	ca.Verts = verts
	cb.Verts = nil
}

type rcContourHole struct {
	contour              *RcContour
	minx, minz, leftmost int
}

type rcContourRegion struct {
	outline *RcContour
	holes   []rcContourHole
}

type rcPotentialDiagonal struct {
	vert int
	dist int
}

func findLeftMostVertex(contour *RcContour) (minx, minz, leftmost int) {
	minx = contour.Verts[0]
	minz = contour.Verts[2]
	for i := 1; i < contour.Nverts(); i++ {
		x := contour.Verts[i*4+0]
		z := contour.Verts[i*4+2]
		if x < minx || (x == minx && z < minz) {
			minx = x
			minz = z
			leftmost = i
		}
	}
	return
}

func contourInCone(i, n int, verts, pj []int) bool {
	pi := verts[i*4:]
	pi1 := verts[common.Next(i, n)*4:]
	pin1 := verts[common.Prev(i, n)*4:]

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if common.LeftOn(pin1, pi, pi1) {
		return common.Left(pi, pj, pin1) && common.Left(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(common.LeftOn(pi, pj, pi1) && common.LeftOn(pj, pi, pin1))
}

func intersectSegContour(d0, d1 []int, i, n int, verts []int) bool {
	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := common.Next(k, n)
		// Skip edges incident to i.
		if i == k || i == k1 {
			continue
		}
		p0 := verts[k*4:]
		p1 := verts[k1*4:]
		if common.Vequal2(d0, p0) || common.Vequal2(d1, p0) || common.Vequal2(d0, p1) || common.Vequal2(d1, p1) {
			continue
		}
		if common.Intersect(d0, d1, p0, p1) {
			return true
		}
	}
	return false
}

func mergeRegionHoles(region *rcContourRegion) {
	// Sort holes from left to right.
	for i := range region.holes {
		h := &region.holes[i]
		h.minx, h.minz, h.leftmost = findLeftMostVertex(h.contour)
	}
	slices.SortStableFunc(region.holes, func(a, b rcContourHole) int {
		if a.minx != b.minx {
			return a.minx - b.minx
		}
		return a.minz - b.minz
	})

	outline := region.outline
	var diags []rcPotentialDiagonal

	// Merge holes into the outline one by one.
	for i := range region.holes {
		hole := region.holes[i].contour
		index := -1
		bestVertex := region.holes[i].leftmost
		for iter := 0; iter < hole.Nverts(); iter++ {
			// Find potential diagonals.
			// The 'best' vertex must be in the cone described by 3 consecutive vertices of the outline.
			diags = diags[:0]
			corner := hole.Verts[bestVertex*4:]
			for j := 0; j < outline.Nverts(); j++ {
				if contourInCone(j, outline.Nverts(), outline.Verts, corner) {
					dx := outline.Verts[j*4+0] - corner[0]
					dz := outline.Verts[j*4+2] - corner[2]
					diags = append(diags, rcPotentialDiagonal{vert: j, dist: dx*dx + dz*dz})
				}
			}
			// Sort potential diagonals by distance, we want to make the connection as short as possible.
			slices.SortStableFunc(diags, func(a, b rcPotentialDiagonal) int { return a.dist - b.dist })

			// Find a diagonal that is not intersecting the outline not the remaining holes.
			index = -1
			for _, d := range diags {
				pt := outline.Verts[d.vert*4:]
				intersect := intersectSegContour(pt, corner, d.vert, outline.Nverts(), outline.Verts)
				for k := i; k < len(region.holes) && !intersect; k++ {
					hk := region.holes[k].contour
					intersect = intersectSegContour(pt, corner, -1, hk.Nverts(), hk.Verts)
				}
				if !intersect {
					index = d.vert
					break
				}
			}
			// If found non-intersecting diagonal, stop looking.
			if index != -1 {
				break
			}
			// All the potential diagonals for the current vertex were intersecting, try next vertex.
			bestVertex = (bestVertex + 1) % hole.Nverts()
		}

		if index == -1 {
			logger.Warn("mergeHoles: failed to find merge points for region %d", outline.Reg)
			continue
		}
		mergeContours(region.outline, hole, index, bestVertex)
	}
}

// / Builds a contour set from the region outlines in the provided compact heightfield.
func RcBuildContours(chf *RcCompactHeightfield, maxError float32, maxEdgeLen, buildFlags int) *RcContourSet {
	w, h := chf.Width, chf.Height
	borderSize := chf.BorderSize

	cset := &RcContourSet{
		Bmin:       chf.Bmin,
		Bmax:       chf.Bmax,
		Cs:         chf.Cs,
		Ch:         chf.Ch,
		Width:      w - borderSize*2,
		Height:     h - borderSize*2,
		BorderSize: borderSize,
		MaxError:   maxError,
	}
	if borderSize > 0 {
		// If the heightfield was build with bordersize, remove the offset.
		pad := float32(borderSize) * chf.Cs
		cset.Bmin[0] += pad
		cset.Bmin[2] += pad
		cset.Bmax[0] -= pad
		cset.Bmax[2] -= pad
	}

	flags := make([]uint8, chf.SpanCount)

	// Mark boundaries.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				s := &chf.Spans[i]
				if s.Reg == 0 || s.Reg&RC_BORDER_REG != 0 {
					flags[i] = 0
					continue
				}
				var res uint8
				for dir := 0; dir < 4; dir++ {
					var r uint16
					if ai := chf.Neighbour(x, z, i, dir); ai >= 0 {
						r = chf.Spans[ai].Reg
					}
					if r == s.Reg {
						res |= 1 << dir
					}
				}
				flags[i] = res ^ 0xf // Inverse, mark non connected edges.
			}
		}
	}

	var verts, simplified []int
	dropped := 0
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if flags[i] == 0 || flags[i] == 0xf {
					flags[i] = 0
					continue
				}
				reg := chf.Spans[i].Reg
				if reg == 0 || reg&RC_BORDER_REG != 0 {
					continue
				}
				area := chf.Areas[i]

				verts = walkContour(x, z, i, chf, flags, verts[:0])
				simplified = simplifyContour(verts, simplified[:0], maxError, maxEdgeLen, buildFlags)
				simplified = removeDegenerateSegments(simplified)

				if len(simplified)/4 < 3 {
					dropped++
					continue
				}
				cont := &RcContour{
					Verts:  slices.Clone(simplified),
					Rverts: slices.Clone(verts),
					Reg:    reg,
					Area:   area,
				}
				if borderSize > 0 {
					// If the heightfield was build with bordersize, remove the offset.
					for j := 0; j < len(cont.Verts); j += 4 {
						cont.Verts[j+0] -= borderSize
						cont.Verts[j+2] -= borderSize
					}
					for j := 0; j < len(cont.Rverts); j += 4 {
						cont.Rverts[j+0] -= borderSize
						cont.Rverts[j+2] -= borderSize
					}
				}
				cset.Conts = append(cset.Conts, cont)
			}
		}
	}
	if dropped > 0 {
		logger.Warn("RcBuildContours: dropped %d degenerate contours", dropped)
	}

	mergeHoles(cset, chf.MaxRegions)
	return cset
}

func mergeHoles(cset *RcContourSet, maxRegions int) {
	if len(cset.Conts) == 0 {
		return
	}
	// Calculate winding of all polygons.
	winding := make([]int8, len(cset.Conts))
	nholes := 0
	for i, cont := range cset.Conts {
		// If the contour is wound backwards, it is a hole.
		winding[i] = 1
		if common.CalcAreaOfPolygon2D(cont.Verts, cont.Nverts()) < 0 {
			winding[i] = -1
			nholes++
		}
	}
	if nholes == 0 {
		return
	}

	// Collect outline contour and holes contours per region.
	// We assume that there is one outline and multiple holes.
	regions := make([]rcContourRegion, maxRegions+1)
	for i, cont := range cset.Conts {
		if int(cont.Reg) >= len(regions) {
			continue
		}
		reg := &regions[cont.Reg]
		if winding[i] > 0 {
			if reg.outline != nil {
				logger.Warn("RcBuildContours: multiple outlines for region %d", cont.Reg)
			}
			reg.outline = cont
		} else {
			reg.holes = append(reg.holes, rcContourHole{contour: cont})
		}
	}
	// Finally merge each regions holes into the outline.
	for i := range regions {
		reg := &regions[i]
		if len(reg.holes) == 0 {
			continue
		}
		if reg.outline != nil {
			mergeRegionHoles(reg)
		} else {
			// The region does not have an outline.
			// This can happen if the contour becaomes selfoverlapping because of
			// too aggressive simplification settings.
			logger.Warn("RcBuildContours: missing outline for region %d, %d holes", i, len(reg.holes))
		}
	}
}
