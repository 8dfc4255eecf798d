package recast

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/gorustyt/gonavmesh/common"
)

// InputGeom is the triangle soup a navigation mesh is built from.
type InputGeom struct {
	Name  string
	Verts []float32 ///< Triangle corners. [(x, y, z) * 3 * #ntris]
	Bmin  [3]float32
	Bmax  [3]float32
}

// NewInputGeom builds geometry from a flat corner list, three per triangle.
// A trailing partial triangle is ignored.
func NewInputGeom(tris []common.Vec3) (*InputGeom, error) {
	n := len(tris) / 3 * 3
	if n == 0 {
		return nil, ErrEmptyGeometry
	}
	geom := &InputGeom{Verts: common.FlattenVec3(tris[:n])}
	geom.calcBounds()
	return geom, nil
}

func (g *InputGeom) calcBounds() {
	g.Bmin, g.Bmax = RcCalcBounds(g.Verts)
}

func (g *InputGeom) TriCount() int { return len(g.Verts) / 9 }

// TrianglesInBounds returns the triangles whose xz bounds overlap the
// rectangle [bmin, bmax].
func (g *InputGeom) TrianglesInBounds(bmin, bmax []float32) []float32 {
	var res []float32
	for i := 0; i < len(g.Verts); i += 9 {
		t := g.Verts[i : i+9]
		tmin := [3]float32{t[0], t[1], t[2]}
		tmax := tmin
		common.Vmin(tmin[:], t[3:])
		common.Vmin(tmin[:], t[6:])
		common.Vmax(tmax[:], t[3:])
		common.Vmax(tmax[:], t[6:])
		if tmin[0] > bmax[0] || tmax[0] < bmin[0] || tmin[2] > bmax[2] || tmax[2] < bmin[2] {
			continue
		}
		res = append(res, t...)
	}
	return res
}

// LoadObj reads a Wavefront OBJ file.
func LoadObj(p string) (*InputGeom, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	geom, err := ParseObj(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p, err)
	}
	geom.Name = path.Base(p)
	return geom, nil
}

// ParseObj reads vertices and faces from OBJ text. Faces are fanned into
// triangles; texture and normal indices are ignored.
func ParseObj(r io.Reader) (*InputGeom, error) {
	var verts []float32
	geom := &InputGeom{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			for _, s := range fields[1:4] {
				v, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				verts = append(verts, float32(v))
			}
		case "f":
			nv := len(verts) / 3
			face := make([]int, 0, len(fields)-1)
			for _, s := range fields[1:] {
				idx, err := strconv.Atoi(strings.SplitN(s, "/", 2)[0])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				if idx < 0 {
					idx += nv
				} else {
					idx--
				}
				if idx < 0 || idx >= nv {
					return nil, fmt.Errorf("line %d: vertex index %s out of range", lineNo, s)
				}
				face = append(face, idx)
			}
			for i := 2; i < len(face); i++ {
				for _, vi := range []int{face[0], face[i-1], face[i]} {
					geom.Verts = append(geom.Verts, verts[vi*3:vi*3+3]...)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(geom.Verts) == 0 {
		return nil, ErrEmptyGeometry
	}
	geom.calcBounds()
	return geom, nil
}
