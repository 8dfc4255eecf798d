package recast

import (
	"fmt"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/logger"
)

const VERTEX_BUCKET_COUNT = 1 << 12

// / Represents a polygon mesh suitable for use in building a navigation mesh.
type RcPolyMesh struct {
	Verts        []uint16   ///< The mesh vertices. [Form: (x, y, z) * #nverts]
	Polys        []uint16   ///< Polygon and neighbor data. [Length: #maxpolys * 2 * #nvp]
	Regs         []uint16   ///< The region id assigned to each polygon. [Length: #maxpolys]
	Flags        []uint16   ///< The user defined flags for each polygon. [Length: #maxpolys]
	Areas        []uint8    ///< The area id assigned to each polygon. [Length: #maxpolys]
	Nverts       int        ///< The number of vertices.
	Npolys       int        ///< The number of polygons.
	Nvp          int        ///< The maximum number of vertices per polygon.
	Bmin         [3]float32 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax         [3]float32 ///< The maximum bounds in world space. [(x, y, z)]
	Cs           float32    ///< The size of each cell. (On the xz-plane.)
	Ch           float32    ///< The height of each cell. (The minimum increment along the y-axis.)
	BorderSize   int        ///< The AABB border size used to generate the source data from which the mesh was derived.
	MaxEdgeError float32    ///< The max error of the polygon edges in the mesh.
}

// Poly returns the vertex and neighbour block of polygon i.
func (mesh *RcPolyMesh) Poly(i int) []uint16 {
	return mesh.Polys[i*mesh.Nvp*2 : (i+1)*mesh.Nvp*2]
}

type rcEdge struct {
	vert     [2]uint16
	polyEdge [2]uint16
	poly     [2]uint16
}

func buildMeshAdjacency(polys []uint16, npolys, nverts, vertsPerPoly int) error {
	// Based on code by Eric Lengyel from:
	// https://web.archive.org/web/20080704083314/http://www.terathon.com/code/edges.php
	maxEdgeCount := npolys * vertsPerPoly
	firstEdge := make([]uint16, nverts)
	nextEdge := make([]uint16, maxEdgeCount)
	edges := make([]rcEdge, 0, maxEdgeCount)
	for i := range firstEdge {
		firstEdge[i] = RC_MESH_NULL_IDX
	}

	edgeVerts := func(t []uint16, j int) (uint16, uint16) {
		v0 := t[j]
		if j+1 >= vertsPerPoly || t[j+1] == RC_MESH_NULL_IDX {
			return v0, t[0]
		}
		return v0, t[j+1]
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0, v1 := edgeVerts(t, j)
			if v0 < v1 {
				for e := firstEdge[v0]; e != RC_MESH_NULL_IDX; e = nextEdge[e] {
					if edges[e].vert[1] == v1 {
						return fmt.Errorf("%w: %d->%d by polys %d and %d", ErrDuplicateEdge, v0, v1, edges[e].poly[0], i)
					}
				}
				edges = append(edges, rcEdge{
					vert:     [2]uint16{v0, v1},
					poly:     [2]uint16{uint16(i), uint16(i)},
					polyEdge: [2]uint16{uint16(j), 0},
				})
				// Insert edge
				edgeCount := uint16(len(edges) - 1)
				nextEdge[edgeCount] = firstEdge[v0]
				firstEdge[v0] = edgeCount
			}
		}
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0, v1 := edgeVerts(t, j)
			if v0 > v1 {
				for e := firstEdge[v1]; e != RC_MESH_NULL_IDX; e = nextEdge[e] {
					edge := &edges[e]
					if edge.vert[1] != v0 {
						continue
					}
					if edge.poly[0] != edge.poly[1] {
						return fmt.Errorf("%w: %d->%d by polys %d and %d", ErrDuplicateEdge, v0, v1, edge.poly[1], i)
					}
					edge.poly[1] = uint16(i)
					edge.polyEdge[1] = uint16(j)
					break
				}
			}
		}
	}

	// Store adjacency
	for _, e := range edges {
		if e.poly[0] != e.poly[1] {
			p0 := polys[int(e.poly[0])*vertsPerPoly*2:]
			p1 := polys[int(e.poly[1])*vertsPerPoly*2:]
			p0[vertsPerPoly+int(e.polyEdge[0])] = e.poly[1]
			p1[vertsPerPoly+int(e.polyEdge[1])] = e.poly[0]
		}
	}
	return nil
}

func computeVertexHash(x, y, z int) int {
	const h1 uint32 = 0x8da6b343 // Large multiplicative constants;
	const h2 uint32 = 0xd8163841 // here arbitrarily chosen primes
	const h3 uint32 = 0xcb1ab31f
	n := h1*uint32(x) + h2*uint32(y) + h3*uint32(z)
	return int(n & (VERTEX_BUCKET_COUNT - 1))
}

type vertexWelder struct {
	verts     []uint16
	firstVert []int
	nextVert  []int
}

func newVertexWelder(maxVertices int) *vertexWelder {
	w := &vertexWelder{
		verts:     make([]uint16, 0, maxVertices*3),
		firstVert: make([]int, VERTEX_BUCKET_COUNT),
		nextVert:  make([]int, 0, maxVertices),
	}
	for i := range w.firstVert {
		w.firstVert[i] = -1
	}
	return w
}

// addVertex returns the index of (x, y, z), welding vertices that share x
// and z and lie within 2 voxels vertically.
func (w *vertexWelder) addVertex(x, y, z int) uint16 {
	bucket := computeVertexHash(x, 0, z)
	for i := w.firstVert[bucket]; i != -1; i = w.nextVert[i] {
		v := w.verts[i*3:]
		if int(v[0]) == x && common.Abs(int(v[1])-y) <= 2 && int(v[2]) == z {
			return uint16(i)
		}
	}
	// Could not find, create new.
	i := len(w.verts) / 3
	w.verts = append(w.verts, uint16(x), uint16(y), uint16(z))
	w.nextVert = append(w.nextVert, w.firstVert[bucket])
	w.firstVert[bucket] = i
	return uint16(i)
}

func countPolyVerts(p []uint16, nvp int) int {
	for i := 0; i < nvp; i++ {
		if p[i] == RC_MESH_NULL_IDX {
			return i
		}
	}
	return nvp
}

func uleft(a, b, c []uint16) bool {
	return (int(b[0])-int(a[0]))*(int(c[2])-int(a[2]))-
		(int(c[0])-int(a[0]))*(int(b[2])-int(a[2])) < 0
}

func getPolyMergeValue(pa, pb []uint16, verts []uint16, nvp int) (value, ea, eb int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// If the merged polygon would be too big, do not merge.
	if na+nb-2 > nvp {
		return -1, -1, -1
	}

	// Check if the polygons share an edge.
	ea, eb = -1, -1
	for i := 0; i < na && ea == -1; i++ {
		va0 := pa[i]
		va1 := pa[(i+1)%na]
		if va0 > va1 {
			va0, va1 = va1, va0
		}
		for j := 0; j < nb; j++ {
			vb0 := pb[j]
			vb1 := pb[(j+1)%nb]
			if vb0 > vb1 {
				vb0, vb1 = vb1, vb0
			}
			if va0 == vb0 && va1 == vb1 {
				ea = i
				eb = j
				break
			}
		}
	}

	// No common edge, cannot merge.
	if ea == -1 || eb == -1 {
		return -1, -1, -1
	}

	// Check to see if the merged polygon would be convex.
	va := int(pa[(ea+na-1)%na])
	vb := int(pa[ea])
	vc := int(pb[(eb+2)%nb])
	if !uleft(verts[va*3:], verts[vb*3:], verts[vc*3:]) {
		return -1, -1, -1
	}

	va = int(pb[(eb+nb-1)%nb])
	vb = int(pb[eb])
	vc = int(pa[(ea+2)%na])
	if !uleft(verts[va*3:], verts[vb*3:], verts[vc*3:]) {
		return -1, -1, -1
	}

	va = int(pa[ea])
	vb = int(pa[(ea+1)%na])

	dx := int(verts[va*3+0]) - int(verts[vb*3+0])
	dy := int(verts[va*3+2]) - int(verts[vb*3+2])
	return dx*dx + dy*dy, ea, eb
}

func mergePolyVerts(pa, pb []uint16, ea, eb int, tmp []uint16, nvp int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// Merge polygons.
	for i := range tmp[:nvp] {
		tmp[i] = RC_MESH_NULL_IDX
	}
	n := 0
	// Add pa
	for i := 0; i < na-1; i++ {
		tmp[n] = pa[(ea+1+i)%na]
		n++
	}
	// Add pb
	for i := 0; i < nb-1; i++ {
		tmp[n] = pb[(eb+1+i)%nb]
		n++
	}
	copy(pa[:nvp], tmp[:nvp])
}

// / Builds a polygon mesh from the provided contours.
// / Contour vertices flagged RC_BORDER_VERTEX are kept; polygon edges lying on
// / the tile border are tagged 0x8000|side.
func RcBuildPolyMesh(cset *RcContourSet, nvp int) (*RcPolyMesh, error) {
	if nvp < 3 {
		return nil, fmt.Errorf("%w: max verts per poly %d", ErrInvalidConfig, nvp)
	}
	mesh := &RcPolyMesh{
		Nvp:          nvp,
		Bmin:         cset.Bmin,
		Bmax:         cset.Bmax,
		Cs:           cset.Cs,
		Ch:           cset.Ch,
		BorderSize:   cset.BorderSize,
		MaxEdgeError: cset.MaxError,
	}

	maxVertices := 0
	maxTris := 0
	maxVertsPerCont := 0
	for _, c := range cset.Conts {
		// Skip null contours.
		if c.Nverts() < 3 {
			continue
		}
		maxVertices += c.Nverts()
		maxTris += c.Nverts() - 2
		maxVertsPerCont = max(maxVertsPerCont, c.Nverts())
	}
	if maxVertices >= 0xfffe {
		return nil, fmt.Errorf("%w: %d vertices", ErrTooManyVertices, maxVertices)
	}

	welder := newVertexWelder(maxVertices)
	mesh.Polys = make([]uint16, 0, maxTris*nvp*2)
	mesh.Regs = make([]uint16, 0, maxTris)
	mesh.Areas = make([]uint8, 0, maxTris)

	indices := make([]int, maxVertsPerCont)
	vertIdx := make([]uint16, maxVertsPerCont)
	tris := make([]int, maxVertsPerCont*3)
	polys := make([]uint16, (maxVertsPerCont+1)*nvp)
	tmpPoly := polys[maxVertsPerCont*nvp:]

	for ci, cont := range cset.Conts {
		// Skip null contours.
		if cont.Nverts() < 3 {
			continue
		}
		nv := cont.Nverts()

		// Triangulate contour
		for j := 0; j < nv; j++ {
			indices[j] = j
		}
		ntris := common.Triangulate(nv, cont.Verts, indices[:nv], tris)
		if ntris <= 0 {
			// Bad triangulation, should not happen.
			logger.Warn("RcBuildPolyMesh: bad triangulation contour %d", ci)
			ntris = -ntris
		}

		// Add and merge vertices.
		for j := 0; j < nv; j++ {
			v := cont.Verts[j*4:]
			vertIdx[j] = welder.addVertex(v[0], v[1], v[2])
		}

		// Build initial polygons.
		npolys := 0
		for i := range polys[:maxVertsPerCont*nvp] {
			polys[i] = RC_MESH_NULL_IDX
		}
		for j := 0; j < ntris; j++ {
			t := tris[j*3:]
			if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
				polys[npolys*nvp+0] = vertIdx[t[0]]
				polys[npolys*nvp+1] = vertIdx[t[1]]
				polys[npolys*nvp+2] = vertIdx[t[2]]
				npolys++
			}
		}
		if npolys == 0 {
			continue
		}

		// Merge polygons.
		if nvp > 3 {
			for {
				// Find best polygons to merge.
				bestMergeVal := 0
				bestPa, bestPb, bestEa, bestEb := 0, 0, 0, 0
				for j := 0; j < npolys-1; j++ {
					pj := polys[j*nvp : (j+1)*nvp]
					for k := j + 1; k < npolys; k++ {
						pk := polys[k*nvp : (k+1)*nvp]
						v, ea, eb := getPolyMergeValue(pj, pk, welder.verts, nvp)
						if v > bestMergeVal {
							bestMergeVal = v
							bestPa, bestPb, bestEa, bestEb = j, k, ea, eb
						}
					}
				}
				if bestMergeVal <= 0 {
					// Could not merge any polygons, stop.
					break
				}
				// Found best, merge.
				pa := polys[bestPa*nvp : (bestPa+1)*nvp]
				pb := polys[bestPb*nvp : (bestPb+1)*nvp]
				mergePolyVerts(pa, pb, bestEa, bestEb, tmpPoly, nvp)
				if bestPb != npolys-1 {
					copy(pb, polys[(npolys-1)*nvp:npolys*nvp])
				}
				npolys--
			}
		}

		// Store polygons.
		for j := 0; j < npolys; j++ {
			mesh.Polys = append(mesh.Polys, polys[j*nvp:(j+1)*nvp]...)
			for k := 0; k < nvp; k++ {
				mesh.Polys = append(mesh.Polys, RC_MESH_NULL_IDX)
			}
			mesh.Regs = append(mesh.Regs, cont.Reg)
			mesh.Areas = append(mesh.Areas, cont.Area)
			mesh.Npolys++
		}
	}
	mesh.Verts = welder.verts
	mesh.Nverts = len(welder.verts) / 3

	// Calculate adjacency.
	if err := buildMeshAdjacency(mesh.Polys, mesh.Npolys, mesh.Nverts, nvp); err != nil {
		return nil, err
	}

	// Find portal edges
	if mesh.BorderSize > 0 {
		w := uint16(cset.Width)
		h := uint16(cset.Height)
		for i := 0; i < mesh.Npolys; i++ {
			p := mesh.Poly(i)
			for j := 0; j < nvp; j++ {
				if p[j] == RC_MESH_NULL_IDX {
					break
				}
				// Skip connected edges.
				if p[nvp+j] != RC_MESH_NULL_IDX {
					continue
				}
				nj := j + 1
				if nj >= nvp || p[nj] == RC_MESH_NULL_IDX {
					nj = 0
				}
				va := mesh.Verts[int(p[j])*3:]
				vb := mesh.Verts[int(p[nj])*3:]
				switch {
				case va[0] == 0 && vb[0] == 0:
					p[nvp+j] = 0x8000 | 0
				case va[2] == h && vb[2] == h:
					p[nvp+j] = 0x8000 | 1
				case va[0] == w && vb[0] == w:
					p[nvp+j] = 0x8000 | 2
				case va[2] == 0 && vb[2] == 0:
					p[nvp+j] = 0x8000 | 3
				}
			}
		}
	}

	// The user is responsible to fill the flags.
	mesh.Flags = make([]uint16, mesh.Npolys)

	if mesh.Nverts > 0xffff {
		return nil, fmt.Errorf("%w: %d vertices", ErrTooManyVertices, mesh.Nverts)
	}
	return mesh, nil
}
