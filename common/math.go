package common

import (
	"cmp"
	"math"
)

// / Returns the square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// / Returns the absolute value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// / Clamps the value to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// / Performs a vector addition. (@p v1 + @p v2)
func Vadd(res, v1, v2 []float32) {
	res[0] = v1[0] + v2[0]
	res[1] = v1[1] + v2[1]
	res[2] = v1[2] + v2[2]
}

// / Performs a vector subtraction. (@p v1 - @p v2)
func Vsub(res, v1, v2 []float32) {
	res[0] = v1[0] - v2[0]
	res[1] = v1[1] - v2[1]
	res[2] = v1[2] - v2[2]
}

// / Selects the minimum value of each element from the specified vectors.
func Vmin(mn, v []float32) {
	mn[0] = min(mn[0], v[0])
	mn[1] = min(mn[1], v[1])
	mn[2] = min(mn[2], v[2])
}

// / Selects the maximum value of each element from the specified vectors.
func Vmax(mx, v []float32) {
	mx[0] = max(mx[0], v[0])
	mx[1] = max(mx[1], v[1])
	mx[2] = max(mx[2], v[2])
}

func Vcopy(res, v []float32) {
	res[0] = v[0]
	res[1] = v[1]
	res[2] = v[2]
}

// / Derives the cross product of two vectors. (@p v1 x @p v2)
func Vcross(res, v1, v2 []float32) {
	res[0] = v1[1]*v2[2] - v1[2]*v2[1]
	res[1] = v1[2]*v2[0] - v1[0]*v2[2]
	res[2] = v1[0]*v2[1] - v1[1]*v2[0]
}

func Vdot(v1, v2 []float32) float32 {
	return v1[0]*v2[0] + v1[1]*v2[1] + v1[2]*v2[2]
}

func Vlen(v []float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func VlenSqr(v []float32) float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func Vdist(v1, v2 []float32) float32 {
	return Sqrt(VdistSqr(v1, v2))
}

func VdistSqr(v1, v2 []float32) float32 {
	dx := v2[0] - v1[0]
	dy := v2[1] - v1[1]
	dz := v2[2] - v1[2]
	return dx*dx + dy*dy + dz*dz
}

// / Normalizes the vector. Zero-length vectors are left untouched.
func Vnormalize(v []float32) {
	l := Vlen(v)
	if l == 0 {
		return
	}
	d := 1.0 / l
	v[0] *= d
	v[1] *= d
	v[2] *= d
}

// / Performs a linear interpolation between two vectors. (@p v1 toward @p v2)
func Vlerp(dest, v1, v2 []float32, t float32) []float32 {
	dest[0] = v1[0] + (v2[0]-v1[0])*t
	dest[1] = v1[1] + (v2[1]-v1[1])*t
	dest[2] = v1[2] + (v2[2]-v1[2])*t
	return dest
}

// / Performs a 'sloppy' colocation check of the specified points.
func Vequal(p0, p1 []float32) bool {
	thr := Sqr(float32(1.0 / 16384.0))
	return VdistSqr(p0, p1) < thr
}

func IsFinite(v float32) bool {
	return !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}

func Visfinite(v []float32) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

// / Derives the signed xz-plane area of the triangle ABC, or the relationship
// / of line AB to point C.
func TriArea2D(a, b, c []float32) float32 {
	abx := b[0] - a[0]
	abz := b[2] - a[2]
	acx := c[0] - a[0]
	acz := c[2] - a[2]
	return acx*abz - abx*acz
}

// / Determines if two axis-aligned bounding boxes overlap.
func OverlapBounds(amin, amax, bmin, bmax []float32) bool {
	return amin[0] <= bmax[0] && amax[0] >= bmin[0] &&
		amin[1] <= bmax[1] && amax[1] >= bmin[1] &&
		amin[2] <= bmax[2] && amax[2] >= bmin[2]
}

// DistancePtSegSqr2D returns the squared xz distance from pt to segment pq
// and the segment parameter of the closest point.
func DistancePtSegSqr2D(pt, p, q []float32) (dist, t float32) {
	pqx := q[0] - p[0]
	pqz := q[2] - p[2]
	dx := pt[0] - p[0]
	dz := pt[2] - p[2]
	d := pqx*pqx + pqz*pqz
	t = pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = Clamp(t, 0, 1)
	dx = p[0] + t*pqx - pt[0]
	dz = p[2] + t*pqz - pt[2]
	return dx*dx + dz*dz, t
}

// ClosestHeightPointTriangle returns the height of the triangle abc at the
// xz position of p.
func ClosestHeightPointTriangle(p, a, b, c []float32) (h float32, ok bool) {
	const eps = 1e-6
	v0 := make([]float32, 3)
	v1 := make([]float32, 3)
	v2 := make([]float32, 3)
	Vsub(v0, c, a)
	Vsub(v1, b, a)
	Vsub(v2, p, a)

	denom := v0[0]*v1[2] - v0[2]*v1[0]
	if Abs(denom) < eps {
		return 0, false
	}
	u := v1[2]*v2[0] - v1[0]*v2[2]
	v := v0[0]*v2[2] - v0[2]*v2[0]
	if denom < 0 {
		denom = -denom
		u = -u
		v = -v
	}
	if u >= 0 && v >= 0 && (u+v) <= denom {
		return a[1] + (v0[1]*u+v1[1]*v)/denom, true
	}
	return 0, false
}

// PointInPolygon tests pt against a convex or concave polygon on the xz-plane.
func PointInPolygon(pt, verts []float32, nverts int) bool {
	c := false
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*3:]
		vj := verts[j*3:]
		if ((vi[2] > pt[2]) != (vj[2] > pt[2])) &&
			(pt[0] < (vj[0]-vi[0])*(pt[2]-vi[2])/(vj[2]-vi[2])+vi[0]) {
			c = !c
		}
	}
	return c
}

// CalcPolyCenter returns the centroid of the indexed polygon.
func CalcPolyCenter(idx []uint16, nidx int, verts []float32) []float32 {
	tc := make([]float32, 3)
	for j := 0; j < nidx; j++ {
		v := verts[int(idx[j])*3:]
		tc[0] += v[0]
		tc[1] += v[1]
		tc[2] += v[2]
	}
	s := 1.0 / float32(nidx)
	tc[0] *= s
	tc[1] *= s
	tc[2] *= s
	return tc
}

// / Gets the standard width (x-axis) offset for the specified direction.
func GetDirOffsetX(direction int) int {
	offset := [4]int{-1, 0, 1, 0}
	return offset[direction&0x03]
}

// / Gets the standard height (z-axis) offset for the specified direction.
func GetDirOffsetY(direction int) int {
	offset := [4]int{0, 1, 0, -1}
	return offset[direction&0x03]
}

// / Gets the direction for the specified offset. One of x and y should be 0.
func GetDirForOffset(offsetX, offsetZ int) int {
	dirs := [5]int{3, 0, -1, 2, 1}
	return dirs[((offsetZ+1)<<1)+offsetX]
}

func NextPow2(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}

func Ilog2(v uint32) uint32 {
	var r, shift uint32
	if v > 0xffff {
		r = 1 << 4
	}
	v >>= r
	if v > 0xff {
		shift = 1 << 3
	} else {
		shift = 0
	}
	v >>= shift
	r |= shift
	if v > 0xf {
		shift = 1 << 2
	} else {
		shift = 0
	}
	v >>= shift
	r |= shift
	if v > 0x3 {
		shift = 1 << 1
	} else {
		shift = 0
	}
	v >>= shift
	r |= shift
	r |= v >> 1
	return r
}

// ComputeTileHash hashes tile grid coordinates into a lookup bucket.
func ComputeTileHash(x, y, mask int) int {
	const h1 uint32 = 0x8da6b343 // Large multiplicative constants;
	const h2 uint32 = 0xd8163841 // here arbitrarily chosen primes
	n := h1*uint32(x) + h2*uint32(y)
	return int(n & uint32(mask))
}
