package debug_utils

import (
	"math"

	"github.com/gorustyt/gonavmesh/common"
)

type DuDebugDrawPrimitives int

const (
	DU_DRAW_POINTS DuDebugDrawPrimitives = iota
	DU_DRAW_LINES
	DU_DRAW_TRIS
	DU_DRAW_QUADS
)

// / Abstract debug draw interface.
type DuDebugDraw interface {
	DepthMask(state bool)

	/// Begin drawing primitives.
	///  @param prim [in] primitive type to draw, one of DuDebugDrawPrimitives.
	///  @param size [in] size of a primitive, applies to point size and line width only.
	Begin(prim DuDebugDrawPrimitives, size float32)

	/// Submit a vertex
	///  @param pos [in] position of the verts.
	///  @param color [in] color of the verts.
	Vertex(pos []float32, color Colorb)

	/// Submit a vertex
	///  @param x,y,z [in] position of the verts.
	///  @param color [in] color of the verts.
	Vertex1(x, y, z float32, color Colorb)

	/// End drawing primitives.
	End()
}

// DuLine is one colored segment of a line list.
type DuLine struct {
	A, B  common.Vec3
	Color Colorb
	Width float32
}

// DuLineList is a DuDebugDraw that keeps every primitive as line segments:
// triangles and quads contribute their edges, points are dropped.
type DuLineList struct {
	Lines []DuLine

	prim  DuDebugDrawPrimitives
	size  float32
	verts []common.Vec3
	cols  []Colorb
}

func NewDuLineList() *DuLineList {
	return &DuLineList{prim: DU_DRAW_LINES, size: 1}
}

func (l *DuLineList) DepthMask(state bool) {}

func (l *DuLineList) Begin(prim DuDebugDrawPrimitives, size float32) {
	l.prim = prim
	l.size = size
	l.verts = l.verts[:0]
	l.cols = l.cols[:0]
}

func (l *DuLineList) Vertex(pos []float32, color Colorb) {
	l.Vertex1(pos[0], pos[1], pos[2], color)
}

func (l *DuLineList) Vertex1(x, y, z float32, color Colorb) {
	l.verts = append(l.verts, common.Vec3{x, y, z})
	l.cols = append(l.cols, color)
	n := len(l.verts)
	switch l.prim {
	case DU_DRAW_LINES:
		if n < 2 {
			return
		}
		l.add(0, 1)
	case DU_DRAW_TRIS:
		if n < 3 {
			return
		}
		l.add(0, 1)
		l.add(1, 2)
		l.add(2, 0)
	case DU_DRAW_QUADS:
		if n < 4 {
			return
		}
		for i := 0; i < 4; i++ {
			l.add(i, (i+1)%4)
		}
	}
	l.verts = l.verts[:0]
	l.cols = l.cols[:0]
}

func (l *DuLineList) add(a, b int) {
	l.Lines = append(l.Lines, DuLine{A: l.verts[a], B: l.verts[b], Color: l.cols[a], Width: l.size})
}

func (l *DuLineList) End() {
	l.verts = l.verts[:0]
	l.cols = l.cols[:0]
}

func (l *DuLineList) Clear() {
	l.Lines = l.Lines[:0]
	l.End()
}

// Bounds returns the box around every line end.
func (l *DuLineList) Bounds() (bmin, bmax common.Vec3) {
	if len(l.Lines) == 0 {
		return
	}
	bmin, bmax = l.Lines[0].A, l.Lines[0].A
	for _, ln := range l.Lines {
		for _, p := range []common.Vec3{ln.A, ln.B} {
			common.Vmin(bmin[:], p[:])
			common.Vmax(bmax[:], p[:])
		}
	}
	return
}

// unitCircle returns n (cos, sin) pairs around the circle.
func unitCircle(n int) []float32 {
	dir := make([]float32, n*2)
	for i := 0; i < n; i++ {
		a := float64(i) / float64(n) * math.Pi * 2
		dir[i*2] = float32(math.Cos(a))
		dir[i*2+1] = float32(math.Sin(a))
	}
	return dir
}

var (
	cylinderDirs = unitCircle(16)
	circleDirs   = unitCircle(40)
)

func DuDebugDrawCylinderWire(dd DuDebugDraw, minx, miny, minz, maxx, maxy, maxz float32, col Colorb, lineWidth float32) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	DuAppendCylinderWire(dd, minx, miny, minz, maxx, maxy, maxz, col)
	dd.End()
}

func DuDebugDrawBoxWire(dd DuDebugDraw, minx, miny, minz, maxx, maxy, maxz float32, col Colorb, lineWidth float32) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	DuAppendBoxWire(dd, minx, miny, minz, maxx, maxy, maxz, col)
	dd.End()
}

func DuDebugDrawCircle(dd DuDebugDraw, x, y, z, r float32, col Colorb, lineWidth float32) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	DuAppendCircle(dd, x, y, z, r, col)
	dd.End()
}

func DuDebugDrawCross(dd DuDebugDraw, x, y, z, size float32, col Colorb, lineWidth float32) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	DuAppendCross(dd, x, y, z, size, col)
	dd.End()
}

// DuDebugDrawGridXZ draws a w by h grid of size sized cells starting at (ox, oy, oz).
func DuDebugDrawGridXZ(dd DuDebugDraw, ox, oy, oz float32, w, h int, size float32, col Colorb, lineWidth float32) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	for i := 0; i <= h; i++ {
		dd.Vertex1(ox, oy, oz+float32(i)*size, col)
		dd.Vertex1(ox+float32(w)*size, oy, oz+float32(i)*size, col)
	}
	for i := 0; i <= w; i++ {
		dd.Vertex1(ox+float32(i)*size, oy, oz, col)
		dd.Vertex1(ox+float32(i)*size, oy, oz+float32(h)*size, col)
	}
	dd.End()
}

// DuAppendCylinderWire appends the rims and four struts of the cylinder
// inscribed in the box.
func DuAppendCylinderWire(dd DuDebugDraw, minx, miny, minz, maxx, maxy, maxz float32, col Colorb) {
	if dd == nil {
		return
	}
	n := len(cylinderDirs) / 2
	dir := cylinderDirs
	cx := (maxx + minx) / 2
	cz := (maxz + minz) / 2
	rx := (maxx - minx) / 2
	rz := (maxz - minz) / 2

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		dd.Vertex1(cx+dir[j*2]*rx, miny, cz+dir[j*2+1]*rz, col)
		dd.Vertex1(cx+dir[i*2]*rx, miny, cz+dir[i*2+1]*rz, col)
		dd.Vertex1(cx+dir[j*2]*rx, maxy, cz+dir[j*2+1]*rz, col)
		dd.Vertex1(cx+dir[i*2]*rx, maxy, cz+dir[i*2+1]*rz, col)
	}
	for i := 0; i < n; i += n / 4 {
		dd.Vertex1(cx+dir[i*2]*rx, miny, cz+dir[i*2+1]*rz, col)
		dd.Vertex1(cx+dir[i*2]*rx, maxy, cz+dir[i*2+1]*rz, col)
	}
}

// DuAppendBoxWire appends the twelve edges of the box.
func DuAppendBoxWire(dd DuDebugDraw, minx, miny, minz, maxx, maxy, maxz float32, col Colorb) {
	if dd == nil {
		return
	}
	for _, y := range [2]float32{miny, maxy} {
		dd.Vertex1(minx, y, minz, col)
		dd.Vertex1(maxx, y, minz, col)
		dd.Vertex1(maxx, y, minz, col)
		dd.Vertex1(maxx, y, maxz, col)
		dd.Vertex1(maxx, y, maxz, col)
		dd.Vertex1(minx, y, maxz, col)
		dd.Vertex1(minx, y, maxz, col)
		dd.Vertex1(minx, y, minz, col)
	}
	// Sides
	for _, c := range [4][2]float32{{minx, minz}, {maxx, minz}, {maxx, maxz}, {minx, maxz}} {
		dd.Vertex1(c[0], miny, c[1], col)
		dd.Vertex1(c[0], maxy, c[1], col)
	}
}

func DuAppendCircle(dd DuDebugDraw, x, y, z, r float32, col Colorb) {
	if dd == nil {
		return
	}
	n := len(circleDirs) / 2
	dir := circleDirs
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		dd.Vertex1(x+dir[j*2]*r, y, z+dir[j*2+1]*r, col)
		dd.Vertex1(x+dir[i*2]*r, y, z+dir[i*2+1]*r, col)
	}
}

func DuAppendCross(dd DuDebugDraw, x, y, z, s float32, col Colorb) {
	if dd == nil {
		return
	}
	dd.Vertex1(x-s, y, z, col)
	dd.Vertex1(x+s, y, z, col)
	dd.Vertex1(x, y-s, z, col)
	dd.Vertex1(x, y+s, z, col)
	dd.Vertex1(x, y, z-s, col)
	dd.Vertex1(x, y, z+s, col)
}
