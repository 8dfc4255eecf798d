package common

// Integer polygon helpers shared by the contour tracer and the poly mesher.
// Vertices are laid out 4 ints apart (x, y, z, flags); only x and z are used.

const indexMask = 0x0fffffff
const removableEar = 0x80000000

func Prev(i, n int) int {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

func Next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

func Area2(a, b, c []int) int {
	return (b[0]-a[0])*(c[2]-a[2]) - (c[0]-a[0])*(b[2]-a[2])
}

// Left reports whether c is strictly left of the directed line a->b.
func Left(a, b, c []int) bool {
	return Area2(a, b, c) < 0
}

func LeftOn(a, b, c []int) bool {
	return Area2(a, b, c) <= 0
}

func Collinear(a, b, c []int) bool {
	return Area2(a, b, c) == 0
}

func Xorb(x, y bool) bool {
	return x != y
}

// IntersectProp reports a proper intersection of ab and cd: they share a
// point interior to both segments.
func IntersectProp(a, b, c, d []int) bool {
	// Eliminate improper cases.
	if Collinear(a, b, c) || Collinear(a, b, d) || Collinear(c, d, a) || Collinear(c, d, b) {
		return false
	}
	return Xorb(Left(a, b, c), Left(a, b, d)) && Xorb(Left(c, d, a), Left(c, d, b))
}

// Between reports whether c lies on the closed segment ab.
func Between(a, b, c []int) bool {
	if !Collinear(a, b, c) {
		return false
	}
	// If ab not vertical, check betweenness on x; else on z.
	if a[0] != b[0] {
		return ((a[0] <= c[0]) && (c[0] <= b[0])) || ((a[0] >= c[0]) && (c[0] >= b[0]))
	}
	return ((a[2] <= c[2]) && (c[2] <= b[2])) || ((a[2] >= c[2]) && (c[2] >= b[2]))
}

// Intersect reports whether segments ab and cd intersect, properly or improperly.
func Intersect(a, b, c, d []int) bool {
	if IntersectProp(a, b, c, d) {
		return true
	}
	return Between(a, b, c) || Between(a, b, d) || Between(c, d, a) || Between(c, d, b)
}

func Vequal2(a, b []int) bool {
	return a[0] == b[0] && a[2] == b[2]
}

func vertAt(verts []int, indices []int, i int) []int {
	return verts[(indices[i]&indexMask)*4:]
}

// Diagonalie reports whether (v_i, v_j) is a proper internal or external
// diagonal of the polygon, ignoring edges incident to v_i and v_j.
func Diagonalie(i, j, n int, verts []int, indices []int) bool {
	d0 := vertAt(verts, indices, i)
	d1 := vertAt(verts, indices, j)
	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := Next(k, n)
		// Skip edges incident to i or j
		if (k == i) || (k1 == i) || (k == j) || (k1 == j) {
			continue
		}
		p0 := vertAt(verts, indices, k)
		p1 := vertAt(verts, indices, k1)
		if Vequal2(d0, p0) || Vequal2(d1, p0) || Vequal2(d0, p1) || Vequal2(d1, p1) {
			continue
		}
		if Intersect(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

// InCone reports whether the diagonal (i,j) is strictly internal to the
// polygon in the neighborhood of the i endpoint.
func InCone(i, j, n int, verts []int, indices []int) bool {
	pi := vertAt(verts, indices, i)
	pj := vertAt(verts, indices, j)
	pi1 := vertAt(verts, indices, Next(i, n))
	pin1 := vertAt(verts, indices, Prev(i, n))

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if LeftOn(pin1, pi, pi1) {
		return Left(pi, pj, pin1) && Left(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(LeftOn(pi, pj, pi1) && LeftOn(pj, pi, pin1))
}

func Diagonal(i, j, n int, verts []int, indices []int) bool {
	return InCone(i, j, n, verts, indices) && Diagonalie(i, j, n, verts, indices)
}

func DiagonalieLoose(i, j, n int, verts []int, indices []int) bool {
	d0 := vertAt(verts, indices, i)
	d1 := vertAt(verts, indices, j)
	for k := 0; k < n; k++ {
		k1 := Next(k, n)
		if (k == i) || (k1 == i) || (k == j) || (k1 == j) {
			continue
		}
		p0 := vertAt(verts, indices, k)
		p1 := vertAt(verts, indices, k1)
		if Vequal2(d0, p0) || Vequal2(d1, p0) || Vequal2(d0, p1) || Vequal2(d1, p1) {
			continue
		}
		if IntersectProp(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

func InConeLoose(i, j, n int, verts []int, indices []int) bool {
	pi := vertAt(verts, indices, i)
	pj := vertAt(verts, indices, j)
	pi1 := vertAt(verts, indices, Next(i, n))
	pin1 := vertAt(verts, indices, Prev(i, n))
	if LeftOn(pin1, pi, pi1) {
		return LeftOn(pi, pj, pin1) && LeftOn(pj, pi, pi1)
	}
	return !(LeftOn(pi, pj, pi1) && LeftOn(pj, pi, pin1))
}

func DiagonalLoose(i, j, n int, verts []int, indices []int) bool {
	return InConeLoose(i, j, n, verts, indices) && DiagonalieLoose(i, j, n, verts, indices)
}

// Triangulate ear-clips the polygon described by indices into tris (3 per
// triangle). It returns the number of triangles, negated when the outline
// could not be fully triangulated.
func Triangulate(n int, verts []int, indices []int, tris []int) int {
	ntris := 0
	dst := 0

	// The last bit of the index is used to indicate if the vertex can be removed.
	for i := 0; i < n; i++ {
		i1 := Next(i, n)
		i2 := Next(i1, n)
		if Diagonal(i, i2, n, verts, indices) {
			indices[i1] |= removableEar
		}
	}

	for n > 3 {
		minLen := -1
		mini := -1
		for i := 0; i < n; i++ {
			i1 := Next(i, n)
			if indices[i1]&removableEar != 0 {
				p0 := vertAt(verts, indices, i)
				p2 := vertAt(verts, indices, Next(i1, n))
				dx := p2[0] - p0[0]
				dy := p2[2] - p0[2]
				l := dx*dx + dy*dy
				if minLen < 0 || l < minLen {
					minLen = l
					mini = i
				}
			}
		}

		if mini == -1 {
			// Overlapping segments can hide every ear; loosen the cone test.
			for i := 0; i < n; i++ {
				i1 := Next(i, n)
				i2 := Next(i1, n)
				if DiagonalLoose(i, i2, n, verts, indices) {
					p0 := vertAt(verts, indices, i)
					p2 := vertAt(verts, indices, i2)
					dx := p2[0] - p0[0]
					dy := p2[2] - p0[2]
					l := dx*dx + dy*dy
					if minLen < 0 || l < minLen {
						minLen = l
						mini = i
					}
				}
			}
			if mini == -1 {
				// The contour is messed up. This sometimes happens
				// if the contour simplification is too aggressive.
				return -ntris
			}
		}

		i := mini
		i1 := Next(i, n)
		i2 := Next(i1, n)

		tris[dst] = indices[i] & indexMask
		tris[dst+1] = indices[i1] & indexMask
		tris[dst+2] = indices[i2] & indexMask
		dst += 3
		ntris++

		// Removes P[i1] by copying P[i+1]...P[n-1] left one index.
		n--
		for k := i1; k < n; k++ {
			indices[k] = indices[k+1]
		}

		if i1 >= n {
			i1 = 0
		}
		i = Prev(i1, n)
		// Update diagonal flags.
		if Diagonal(Prev(i, n), i1, n, verts, indices) {
			indices[i] |= removableEar
		} else {
			indices[i] &= indexMask
		}

		if Diagonal(i, Next(i1, n), n, verts, indices) {
			indices[i1] |= removableEar
		} else {
			indices[i1] &= indexMask
		}
	}

	// Append the remaining triangle.
	tris[dst] = indices[0] & indexMask
	tris[dst+1] = indices[1] & indexMask
	tris[dst+2] = indices[2] & indexMask
	ntris++

	return ntris
}

// CalcAreaOfPolygon2D returns twice the signed area of an integer contour.
func CalcAreaOfPolygon2D(verts []int, nverts int) int {
	area := 0
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*4:]
		vj := verts[j*4:]
		area += vi[0]*vj[2] - vj[0]*vi[2]
	}
	return (area + 1) / 2
}

// DistancePtSegInt returns the squared xz distance from (x,z) to segment p-q.
func DistancePtSegInt(x, z, px, pz, qx, qz int) float32 {
	pqx := float32(qx - px)
	pqz := float32(qz - pz)
	dx := float32(x - px)
	dz := float32(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	dx = float32(px) + t*pqx - float32(x)
	dz = float32(pz) + t*pqz - float32(z)
	return dx*dx + dz*dz
}
