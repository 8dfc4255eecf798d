package recast

import (
	"fmt"
	"math"

	"github.com/gorustyt/gonavmesh/common"
)

const (
	RC_UNSET_HEIGHT = 0xffff

	// Detail triangle edge lies on the polygon boundary.
	RC_DETAIL_EDGE_BOUNDARY = 0x01

	maxDetailVerts = 127
	maxDetailTris  = 255
)

// / Contains triangle meshes that represent detailed height data associated
// / with the polygons in its associated polygon mesh object.
type RcPolyMeshDetail struct {
	Meshes []uint32  ///< The sub-mesh data. [Size: 4*#nmeshes]
	Verts  []float32 ///< The mesh vertices. [Size: 3*#nverts]
	Tris   []uint8   ///< The mesh triangles. [Size: 4*#ntris]
}

func (dmesh *RcPolyMeshDetail) Nmeshes() int { return len(dmesh.Meshes) / 4 }
func (dmesh *RcPolyMeshDetail) Nverts() int  { return len(dmesh.Verts) / 3 }
func (dmesh *RcPolyMeshDetail) Ntris() int   { return len(dmesh.Tris) / 4 }

type rcHeightPatch struct {
	data                      []uint16
	xmin, zmin, width, height int
}

func (hp *rcHeightPatch) at(x, z int) uint16 {
	x -= hp.xmin
	z -= hp.zmin
	if x < 0 || z < 0 || x >= hp.width || z >= hp.height {
		return RC_UNSET_HEIGHT
	}
	return hp.data[x+z*hp.width]
}

// fill samples the spans of region reg inside the cell rectangle.
func (hp *rcHeightPatch) fill(chf *RcCompactHeightfield, reg uint16) {
	if cap(hp.data) < hp.width*hp.height {
		hp.data = make([]uint16, hp.width*hp.height)
	}
	hp.data = hp.data[:hp.width*hp.height]
	for i := range hp.data {
		hp.data[i] = RC_UNSET_HEIGHT
	}
	for hz := 0; hz < hp.height; hz++ {
		z := hp.zmin + hz + chf.BorderSize
		if z < 0 || z >= chf.Height {
			continue
		}
		for hx := 0; hx < hp.width; hx++ {
			x := hp.xmin + hx + chf.BorderSize
			if x < 0 || x >= chf.Width {
				continue
			}
			c := chf.Cells[x+z*chf.Width]
			for i := c.Index; i < c.Index+c.Count; i++ {
				s := &chf.Spans[i]
				if s.Reg == reg {
					hp.data[hx+hz*hp.width] = s.Y
					break
				}
			}
		}
	}
}

// getHeight returns the sampled height at cell (x, z), searching nearby cells
// when the cell itself has no sample.
func (hp *rcHeightPatch) getHeight(x, z, radius int) (uint16, bool) {
	if h := hp.at(x, z); h != RC_UNSET_HEIGHT {
		return h, true
	}
	for r := 1; r <= radius; r++ {
		best := uint16(RC_UNSET_HEIGHT)
		bestDist := math.MaxInt
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if common.Abs(dx) != r && common.Abs(dz) != r {
					continue
				}
				h := hp.at(x+dx, z+dz)
				if h == RC_UNSET_HEIGHT {
					continue
				}
				if d := dx*dx + dz*dz; d < bestDist {
					bestDist = d
					best = h
				}
			}
		}
		if best != RC_UNSET_HEIGHT {
			return best, true
		}
	}
	return 0, false
}

func getEdgeFlags(va, vb, nv int) uint8 {
	if va >= nv || vb >= nv {
		return 0
	}
	if (va+1)%nv == vb || (vb+1)%nv == va {
		return RC_DETAIL_EDGE_BOUNDARY
	}
	return 0
}

func getTriFlags(va, vb, vc, nv int) uint8 {
	var flags uint8
	flags |= getEdgeFlags(va, vb, nv) << 0
	flags |= getEdgeFlags(vb, vc, nv) << 2
	flags |= getEdgeFlags(vc, va, nv) << 4
	return flags
}

// distToPolyEdges returns the xz distance from p to the closest polygon edge.
func distToPolyEdges(p []float32, verts []float32, nv int) float32 {
	dmin := float32(math.MaxFloat32)
	for i, j := 0, nv-1; i < nv; j, i = i, i+1 {
		d, _ := common.DistancePtSegSqr2D(p, verts[j*3:], verts[i*3:])
		dmin = min(dmin, d)
	}
	return common.Sqrt(dmin)
}

// buildPolyDetail triangulates one polygon and refines it with interior
// height samples. Poly vertices occupy the first nv entries of the result.
func buildPolyDetail(in []float32, nv int, sampleDist, sampleMaxError float32,
	hp *rcHeightPatch, orig []float32, cs, ch float32, heightSearchRadius int) (verts []float32, tris []int) {

	verts = append(verts, in[:nv*3]...)
	for i := 2; i < nv; i++ {
		tris = append(tris, 0, i-1, i)
	}
	if sampleDist <= 0 || nv < 3 {
		return verts, tris
	}

	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	common.Vcopy(bmin, in)
	common.Vcopy(bmax, in)
	for i := 1; i < nv; i++ {
		common.Vmin(bmin, in[i*3:])
		common.Vmax(bmax, in[i*3:])
	}
	x0 := int(math.Floor(float64(bmin[0] / sampleDist)))
	x1 := int(math.Ceil(float64(bmax[0] / sampleDist)))
	z0 := int(math.Floor(float64(bmin[2] / sampleDist)))
	z1 := int(math.Ceil(float64(bmax[2] / sampleDist)))

	var samples []float32
	pt := make([]float32, 3)
	for z := z0; z < z1; z++ {
		for x := x0; x < x1; x++ {
			pt[0] = float32(x) * sampleDist
			pt[2] = float32(z) * sampleDist
			if !common.PointInPolygon(pt, in, nv) {
				continue
			}
			if distToPolyEdges(pt, in, nv) < sampleDist/2 {
				continue
			}
			ix := int(math.Floor(float64((pt[0] - orig[0]) / cs)))
			iz := int(math.Floor(float64((pt[2] - orig[2]) / cs)))
			h, ok := hp.getHeight(ix, iz, heightSearchRadius)
			if !ok {
				continue
			}
			samples = append(samples, pt[0], orig[1]+float32(h)*ch, pt[2])
		}
	}

	nsamples := len(samples) / 3
	used := make([]bool, nsamples)
	for len(verts)/3 < maxDetailVerts && len(tris)/3+2 <= maxDetailTris {
		// Find the sample with the largest height error.
		bestDist := sampleMaxError
		besti := -1
		bestTri := -1
		for i := 0; i < nsamples; i++ {
			if used[i] {
				continue
			}
			s := samples[i*3:]
			for t := 0; t < len(tris)/3; t++ {
				a, b, c := verts[tris[t*3]*3:], verts[tris[t*3+1]*3:], verts[tris[t*3+2]*3:]
				h, ok := common.ClosestHeightPointTriangle(s, a, b, c)
				if !ok {
					continue
				}
				if d := common.Abs(h - s[1]); d > bestDist {
					bestDist = d
					besti = i
					bestTri = t
				}
				break
			}
		}
		if besti == -1 {
			break
		}
		used[besti] = true

		ta, tb, tc := tris[bestTri*3], tris[bestTri*3+1], tris[bestTri*3+2]
		s := samples[besti*3:]
		const eps = 1e-6
		if common.Abs(common.TriArea2D(verts[ta*3:], verts[tb*3:], s)) < eps ||
			common.Abs(common.TriArea2D(verts[tb*3:], verts[tc*3:], s)) < eps ||
			common.Abs(common.TriArea2D(verts[tc*3:], verts[ta*3:], s)) < eps {
			continue
		}
		vi := len(verts) / 3
		verts = append(verts, s[0], s[1], s[2])
		tris[bestTri*3+2] = vi
		tris = append(tris, tb, tc, vi, tc, ta, vi)
	}
	return verts, tris
}

// / Builds a detail mesh from the provided polygon mesh.
// / Each polygon gets its own sub-mesh; sampleDist <= 0 keeps the plain
// / polygon triangulation.
func RcBuildPolyMeshDetail(mesh *RcPolyMesh, chf *RcCompactHeightfield, sampleDist, sampleMaxError float32) (*RcPolyMeshDetail, error) {
	dmesh := &RcPolyMeshDetail{}
	if mesh.Nverts == 0 || mesh.Npolys == 0 {
		return dmesh, nil
	}
	nvp := mesh.Nvp
	cs := mesh.Cs
	ch := mesh.Ch
	orig := mesh.Bmin[:]
	heightSearchRadius := max(1, int(math.Ceil(float64(mesh.MaxEdgeError))))

	dmesh.Meshes = make([]uint32, 0, mesh.Npolys*4)
	poly := make([]float32, nvp*3)
	hp := &rcHeightPatch{}

	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)

		// Store polygon vertices for processing.
		npoly := 0
		xmin, zmin := chf.Width, chf.Height
		xmax, zmax := 0, 0
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			v := mesh.Verts[int(p[j])*3:]
			poly[j*3+0] = orig[0] + float32(v[0])*cs
			poly[j*3+1] = orig[1] + float32(v[1])*ch
			poly[j*3+2] = orig[2] + float32(v[2])*cs
			xmin = min(xmin, int(v[0]))
			xmax = max(xmax, int(v[0]))
			zmin = min(zmin, int(v[2]))
			zmax = max(zmax, int(v[2]))
			npoly++
		}

		hp.xmin = xmin - 1
		hp.zmin = zmin - 1
		hp.width = xmax - xmin + 2
		hp.height = zmax - zmin + 2
		hp.fill(chf, mesh.Regs[i])

		verts, tris := buildPolyDetail(poly, npoly, sampleDist, sampleMaxError, hp, orig, cs, ch, heightSearchRadius)
		nverts := len(verts) / 3
		ntris := len(tris) / 3
		if nverts > 0xff || ntris > 0xff {
			return nil, fmt.Errorf("%w: detail mesh of poly %d has %d verts %d tris", ErrTooManyVertices, i, nverts, ntris)
		}

		dmesh.Meshes = append(dmesh.Meshes,
			uint32(dmesh.Nverts()), uint32(nverts), uint32(dmesh.Ntris()), uint32(ntris))
		dmesh.Verts = append(dmesh.Verts, verts...)
		for t := 0; t < ntris; t++ {
			a, b, c := tris[t*3], tris[t*3+1], tris[t*3+2]
			dmesh.Tris = append(dmesh.Tris, uint8(a), uint8(b), uint8(c), getTriFlags(a, b, c, npoly))
		}
	}
	return dmesh, nil
}
