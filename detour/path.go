package detour

import "github.com/gorustyt/gonavmesh/common"

// Path is an ordered list of world positions from start to end.
type Path struct {
	Points []common.Vec3
}

// Found reports whether the path holds a usable segment.
func (p Path) Found() bool {
	return len(p.Points) >= 2
}

// Length returns the summed length of the path segments.
func (p Path) Length() float32 {
	var l float32
	for i := 1; i < len(p.Points); i++ {
		l += p.Points[i].Sub(p.Points[i-1]).Len()
	}
	return l
}
