package debug_utils

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// RenderTopDown rasterizes lines seen from above (x right, z down) into an
// image whose longer side is size pixels. bmin..bmax is the world area shown.
func RenderTopDown(lines []DuLine, bmin, bmax [3]float32, size int) *image.RGBA {
	ex := bmax[0] - bmin[0]
	ez := bmax[2] - bmin[2]
	scale := float32(size) / max(ex, ez, 1e-6)
	w := max(1, int(math.Ceil(float64(ex*scale))))
	h := max(1, int(math.Ceil(float64(ez*scale))))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	// One pass per color keeps overlapping lines of a color from stacking alpha.
	var order []Colorb
	byColor := map[Colorb][]DuLine{}
	for _, l := range lines {
		if _, ok := byColor[l.Color]; !ok {
			order = append(order, l.Color)
		}
		byColor[l.Color] = append(byColor[l.Color], l)
	}

	z := vector.NewRasterizer(w, h)
	for _, col := range order {
		z.Reset(w, h)
		for _, l := range byColor[col] {
			ax := (l.A[0] - bmin[0]) * scale
			ay := (l.A[2] - bmin[2]) * scale
			bx := (l.B[0] - bmin[0]) * scale
			by := (l.B[2] - bmin[2]) * scale
			strokeSegment(z, ax, ay, bx, by, max(l.Width, 1)*0.5)
		}
		z.Draw(dst, dst.Bounds(), image.NewUniform(col), image.Point{})
	}
	return dst
}

// strokeSegment adds the quad covering segment a-b widened by hw on each side.
func strokeSegment(z *vector.Rasterizer, ax, ay, bx, by, hw float32) {
	dx, dy := bx-ax, by-ay
	l := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if l < 1e-6 {
		// Degenerate segments render as a dot.
		dx, dy, l = 1, 0, 1
		ax -= hw
		bx += hw
	}
	nx, ny := -dy/l*hw, dx/l*hw
	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	z.ClosePath()
}
