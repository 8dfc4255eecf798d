package debug_utils

import (
	"errors"
	"fmt"

	"github.com/gorustyt/gonavmesh/common/rw"
	"github.com/gorustyt/gonavmesh/detour"
	"github.com/gorustyt/gonavmesh/recast"
)

var (
	ErrNilIO          = errors.New("debug_utils: input IO is null")
	ErrBadContourData = errors.New("debug_utils: bad contour set data")
)

const (
	CSET_MAGIC   = 'c'<<24 | 's'<<16 | 'e'<<8 | 't'
	CSET_VERSION = 2
)

// DuDumpPolyMeshToObj writes the polygons of pmesh as triangle fans in
// Wavefront OBJ form.
func DuDumpPolyMeshToObj(pmesh *recast.RcPolyMesh, w *rw.ReaderWriter) error {
	if w == nil {
		return fmt.Errorf("DuDumpPolyMeshToObj: %w", ErrNilIO)
	}
	nvp := pmesh.Nvp
	w.WriteString("# Recast Navmesh\n")
	w.WriteString("o NavMesh\n\n")
	for i := 0; i < pmesh.Nverts; i++ {
		x, y, z := polyMeshVertex(pmesh, uint16(i))
		w.WriteString("v %f %f %f\n", x, y, z)
	}
	w.WriteString("\n")
	for i := 0; i < pmesh.Npolys; i++ {
		p := pmesh.Poly(i)
		for j := 2; j < nvp; j++ {
			if p[j] == recast.RC_MESH_NULL_IDX {
				break
			}
			w.WriteString("f %d %d %d\n", p[0]+1, p[j-1]+1, p[j]+1)
		}
	}
	return w.Err()
}

func DuDumpPolyMeshDetailToObj(dmesh *recast.RcPolyMeshDetail, w *rw.ReaderWriter) error {
	if w == nil {
		return fmt.Errorf("DuDumpPolyMeshDetailToObj: %w", ErrNilIO)
	}
	w.WriteString("# Recast Navmesh\n")
	w.WriteString("o NavMesh\n\n")
	for i := 0; i < dmesh.Nverts(); i++ {
		v := dmesh.Verts[i*3:]
		w.WriteString("v %f %f %f\n", v[0], v[1], v[2])
	}
	w.WriteString("\n")
	for i := 0; i < dmesh.Nmeshes(); i++ {
		m := dmesh.Meshes[i*4:]
		bverts := int(m[0])
		btris := int(m[2])
		for j := 0; j < int(m[3]); j++ {
			t := dmesh.Tris[(btris+j)*4:]
			w.WriteString("f %d %d %d\n", bverts+int(t[0])+1, bverts+int(t[1])+1, bverts+int(t[2])+1)
		}
	}
	return w.Err()
}

// DuDumpNavMeshToObj writes every loaded tile of mesh, one OBJ group per tile.
func DuDumpNavMeshToObj(mesh *detour.NavMesh, w *rw.ReaderWriter) error {
	if w == nil {
		return fmt.Errorf("DuDumpNavMeshToObj: %w", ErrNilIO)
	}
	w.WriteString("# Detour Navmesh\n")
	base := 1
	for i := 0; i < mesh.MaxTiles(); i++ {
		tile := mesh.Tile(i)
		if tile.Header == nil {
			continue
		}
		w.WriteString("\ng tile_%d_%d_%d\n", tile.Header.X, tile.Header.Y, tile.Header.Layer)
		for v := 0; v < tile.Header.VertCount; v++ {
			p := tile.Verts[v*3:]
			w.WriteString("v %f %f %f\n", p[0], p[1], p[2])
		}
		for j := 0; j < tile.Header.PolyCount; j++ {
			p := &tile.Polys[j]
			for k := 2; k < int(p.VertCount); k++ {
				w.WriteString("f %d %d %d\n", base+int(p.Verts[0]), base+int(p.Verts[k-1]), base+int(p.Verts[k]))
			}
		}
		base += tile.Header.VertCount
	}
	return w.Err()
}

// DuDumpContourSet writes cset in a binary form DuReadContourSet understands.
func DuDumpContourSet(cset *recast.RcContourSet, w *rw.ReaderWriter) error {
	if w == nil {
		return fmt.Errorf("DuDumpContourSet: %w", ErrNilIO)
	}
	w.WriteInt32(CSET_MAGIC)
	w.WriteInt32(CSET_VERSION)
	w.WriteInt32(int32(len(cset.Conts)))
	w.WriteFloat32s(cset.Bmin[:])
	w.WriteFloat32s(cset.Bmax[:])
	w.WriteFloat32(cset.Cs)
	w.WriteFloat32(cset.Ch)
	w.WriteInt32(int32(cset.Width))
	w.WriteInt32(int32(cset.Height))
	w.WriteInt32(int32(cset.BorderSize))
	w.WriteFloat32(cset.MaxError)
	for _, cont := range cset.Conts {
		w.WriteInt32(int32(cont.Nverts()))
		w.WriteInt32(int32(cont.Nrverts()))
		w.WriteUInt16(cont.Reg)
		w.WriteUInt8(cont.Area)
		writeInts(w, cont.Verts)
		writeInts(w, cont.Rverts)
	}
	return w.Err()
}

func writeInts(w *rw.ReaderWriter, v []int) {
	for _, x := range v {
		w.WriteInt32(int32(x))
	}
}

func readInts(r *rw.ReaderWriter, n int) []int {
	v := make([]int, n)
	for i := range v {
		v[i] = int(r.ReadInt32())
	}
	return v
}

func DuReadContourSet(r *rw.ReaderWriter) (*recast.RcContourSet, error) {
	if r == nil {
		return nil, fmt.Errorf("DuReadContourSet: %w", ErrNilIO)
	}
	magic := r.ReadInt32()
	version := r.ReadInt32()
	if magic != CSET_MAGIC || version != CSET_VERSION {
		return nil, fmt.Errorf("%w: magic %x version %d", ErrBadContourData, magic, version)
	}
	nconts := int(r.ReadInt32())
	cset := &recast.RcContourSet{}
	r.ReadFloat32s(cset.Bmin[:])
	r.ReadFloat32s(cset.Bmax[:])
	cset.Cs = r.ReadFloat32()
	cset.Ch = r.ReadFloat32()
	cset.Width = int(r.ReadInt32())
	cset.Height = int(r.ReadInt32())
	cset.BorderSize = int(r.ReadInt32())
	cset.MaxError = r.ReadFloat32()
	if err := r.Err(); err != nil || nconts < 0 {
		return nil, fmt.Errorf("%w: header: %v", ErrBadContourData, err)
	}
	for i := 0; i < nconts; i++ {
		nverts := int(r.ReadInt32())
		nrverts := int(r.ReadInt32())
		if r.Err() != nil || nverts < 0 || nrverts < 0 || (nverts+nrverts)*16 > r.Size() {
			return nil, fmt.Errorf("%w: contour %d", ErrBadContourData, i)
		}
		cont := &recast.RcContour{Reg: r.ReadUInt16(), Area: r.ReadUInt8()}
		cont.Verts = readInts(r, nverts*4)
		cont.Rverts = readInts(r, nrverts*4)
		cset.Conts = append(cset.Conts, cont)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadContourData, err)
	}
	return cset, nil
}
