package common

import "github.com/go-gl/mathgl/mgl32"

type Vec3 = mgl32.Vec3

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// SliceToVec3 reads the first three elements of v.
func SliceToVec3(v []float32) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// FlattenVec3 packs a vector list into an x,y,z float slice.
func FlattenVec3(vs []Vec3) []float32 {
	res := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		res = append(res, v[0], v[1], v[2])
	}
	return res
}
