package debug_utils

import (
	"github.com/gorustyt/gonavmesh/recast"
)

func contourVertex(cset *recast.RcContourSet, v []int, lift int) (x, y, z float32) {
	orig := cset.Bmin
	x = orig[0] + float32(v[0])*cset.Cs
	y = orig[1] + float32(v[1]+1+lift)*cset.Ch
	z = orig[2] + float32(v[2])*cset.Cs
	return
}

// DuDebugDrawRawContours draws the unsimplified region outlines, one color
// per region. Every other contour is lifted a cell so shared edges stay visible.
func DuDebugDrawRawContours(dd DuDebugDraw, cset *recast.RcContourSet, alpha float32) {
	if dd == nil || cset == nil {
		return
	}
	a := int(alpha * 255)
	dd.Begin(DU_DRAW_LINES, 2)
	for i, c := range cset.Conts {
		color := DuIntToCol(int(c.Reg), a)
		n := c.Nrverts()
		for j, k := 0, n-1; j < n; k, j = j, j+1 {
			dd.Vertex1(contourVertexCol(cset, c.Rverts[k*4:], i&1, color))
			dd.Vertex1(contourVertexCol(cset, c.Rverts[j*4:], i&1, color))
		}
	}
	dd.End()
}

// DuDebugDrawContours draws the simplified region outlines. Edges on an area
// border are lightened.
func DuDebugDrawContours(dd DuDebugDraw, cset *recast.RcContourSet, alpha float32) {
	if dd == nil || cset == nil {
		return
	}
	a := int(alpha * 255)
	dd.Begin(DU_DRAW_LINES, 2.5)
	for i, c := range cset.Conts {
		n := c.Nverts()
		if n == 0 {
			continue
		}
		color := DuIntToCol(int(c.Reg), a)
		bcolor := DuLerpCol(color, DuRGBA(255, 255, 255, a), 128)
		for j, k := 0, n-1; j < n; k, j = j, j+1 {
			va := c.Verts[k*4:]
			vb := c.Verts[j*4:]
			col := color
			if va[3]&recast.RC_AREA_BORDER != 0 {
				col = bcolor
			}
			dd.Vertex1(contourVertexCol(cset, va, i&1, col))
			dd.Vertex1(contourVertexCol(cset, vb, i&1, col))
		}
	}
	dd.End()

	// Border vertices get a white tick.
	dd.Begin(DU_DRAW_LINES, 1)
	for i, c := range cset.Conts {
		for j := 0; j < c.Nverts(); j++ {
			v := c.Verts[j*4:]
			if v[3]&recast.RC_BORDER_VERTEX == 0 {
				continue
			}
			x, y, z := contourVertex(cset, v, i&1)
			dd.Vertex1(x, y, z, DuRGBA(255, 255, 255, a))
			dd.Vertex1(x, y+cset.Ch*2, z, DuRGBA(255, 255, 255, a))
		}
	}
	dd.End()
}

func contourVertexCol(cset *recast.RcContourSet, v []int, lift int, col Colorb) (x, y, z float32, c Colorb) {
	x, y, z = contourVertex(cset, v, lift)
	return x, y, z, col
}

func polyMeshVertex(mesh *recast.RcPolyMesh, vi uint16) (x, y, z float32) {
	v := mesh.Verts[int(vi)*3:]
	x = mesh.Bmin[0] + float32(v[0])*mesh.Cs
	y = mesh.Bmin[1] + float32(v[1]+1)*mesh.Ch + 0.1
	z = mesh.Bmin[2] + float32(v[2])*mesh.Cs
	return
}

// DuDebugDrawPolyMesh draws the polygon edges of mesh: shared edges faint,
// walls dark and tile portals white.
func DuDebugDrawPolyMesh(dd DuDebugDraw, mesh *recast.RcPolyMesh) {
	if dd == nil || mesh == nil {
		return
	}
	nvp := mesh.Nvp
	coln := DuRGBA(0, 48, 64, 32)
	colb := DuRGBA(0, 48, 64, 220)
	colp := DuRGBA(255, 255, 255, 128)

	dd.Begin(DU_DRAW_LINES, 1.5)
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		for j := 0; j < nvp; j++ {
			if p[j] == recast.RC_MESH_NULL_IDX {
				break
			}
			nj := j + 1
			if nj >= nvp || p[nj] == recast.RC_MESH_NULL_IDX {
				nj = 0
			}
			col := coln
			if nei := p[nvp+j]; nei&0x8000 != 0 {
				col = colb
				if nei&0xf != 0xf {
					col = colp
				}
			}
			x, y, z := polyMeshVertex(mesh, p[j])
			dd.Vertex1(x, y, z, col)
			x, y, z = polyMeshVertex(mesh, p[nj])
			dd.Vertex1(x, y, z, col)
		}
	}
	dd.End()
}

// DuDebugDrawPolyMeshDetail draws the detail triangles of every sub-mesh.
func DuDebugDrawPolyMeshDetail(dd DuDebugDraw, dmesh *recast.RcPolyMeshDetail) {
	if dd == nil || dmesh == nil {
		return
	}
	dd.Begin(DU_DRAW_TRIS, 1)
	for i := 0; i < dmesh.Nmeshes(); i++ {
		m := dmesh.Meshes[i*4:]
		bverts := int(m[0])
		btris := int(m[2])
		ntris := int(m[3])
		color := DuIntToCol(i, 192)
		for j := 0; j < ntris; j++ {
			t := dmesh.Tris[(btris+j)*4:]
			for k := 0; k < 3; k++ {
				dd.Vertex(dmesh.Verts[(bverts+int(t[k]))*3:], color)
			}
		}
	}
	dd.End()
}
