package recast

import (
	"math"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/logger"
)

// / Specifies a configuration to use when performing Recast builds.
// / @ingroup recast
type RcConfig struct {
	/// The width of the field along the x-axis. [Limit: >= 0] [Units: vx]
	Width int

	/// The height of the field along the z-axis. [Limit: >= 0] [Units: vx]
	Height int

	/// The width/height size of tile's on the xz-plane. [Limit: >= 0] [Units: vx]
	TileSize int

	/// The size of the non-navigable border around the heightfield. [Limit: >=0] [Units: vx]
	BorderSize int

	/// The xz-plane cell size to use for fields. [Limit: > 0] [Units: wu]
	Cs float32

	/// The y-axis cell size to use for fields. [Limit: > 0] [Units: wu]
	Ch float32

	/// The minimum bounds of the field's AABB. [(x, y, z)] [Units: wu]
	Bmin [3]float32

	/// The maximum bounds of the field's AABB. [(x, y, z)] [Units: wu]
	Bmax [3]float32

	/// The maximum slope that is considered walkable. [Limits: 0 <= value < 90] [Units: Degrees]
	WalkableSlopeAngle float32

	/// Minimum floor to 'ceiling' height that will still allow the floor area to
	/// be considered walkable. [Limit: >= 3] [Units: vx]
	WalkableHeight int

	/// Maximum ledge height that is considered to still be traversable. [Limit: >=0] [Units: vx]
	WalkableClimb int

	/// The distance to erode/shrink the walkable area of the heightfield away from
	/// obstructions.  [Limit: >=0] [Units: vx]
	WalkableRadius int

	/// The maximum allowed length for contour edges along the border of the mesh. [Limit: >=0] [Units: vx]
	MaxEdgeLen int

	/// The maximum distance a simplified contour's border edges should deviate from
	/// the raw contour. [Limit: >=0] [Units: vx]
	MaxSimplificationError float32

	/// The minimum number of cells allowed to form isolated island areas. [Limit: >=0] [Units: vx]
	MinRegionArea int

	/// Any regions with a span count smaller than this value will, if possible,
	/// be merged with larger regions. [Limit: >=0] [Units: vx]
	MergeRegionArea int

	/// The maximum number of vertices allowed for polygons generated during the
	/// contour to polygon conversion process. [Limit: >= 3]
	MaxVertsPerPoly int

	/// Sets the sampling distance to use when generating the detail mesh.
	/// (For height detail only.) [Limits: 0 or >= 0.9] [Units: wu]
	DetailSampleDist float32

	/// The maximum distance the detail mesh surface should deviate from heightfield
	/// data. (For height detail only.) [Limit: >=0] [Units: wu]
	DetailSampleMaxError float32
}

const (
	/// Defines the number of bits allocated to RcSpan::smin and RcSpan::smax.
	RC_SPAN_HEIGHT_BITS = 13
	/// Defines the maximum value for RcSpan::smin and RcSpan::smax.
	RC_SPAN_MAX_HEIGHT = (1 << RC_SPAN_HEIGHT_BITS) - 1
	/// Represents the null area.
	RC_NULL_AREA = 0
	/// The default area id used to indicate a walkable polygon.
	/// This is also the maximum allowed area id.
	RC_WALKABLE_AREA = 63
	/// The value returned by RcGetCon if the specified direction is not connected
	/// to another span. (Has no neighbor.)
	RC_NOT_CONNECTED = 0x3f
	/// Heightfield border flag. A region id carrying it lies in the tile border
	/// and is never turned into a contour.
	RC_BORDER_REG = 0x8000
	/// Border vertex flag of a contour vertex.
	RC_BORDER_VERTEX = 0x10000
	/// Area border flag of a contour vertex.
	RC_AREA_BORDER = 0x20000
	/// Applied to the region id field of contour vertices to extract the region id.
	RC_CONTOUR_REG_MASK = 0xffff
	/// An value which indicates an invalid index within a mesh.
	RC_MESH_NULL_IDX = 0xffff
)

// / Contour build flags.
const (
	RC_CONTOUR_TESS_WALL_EDGES = 0x01 ///< Tessellate solid (impassable) edges during contour simplification.
	RC_CONTOUR_TESS_AREA_EDGES = 0x02 ///< Tessellate edges between areas during contour simplification.
)

func RcCalcBounds(verts []float32) (bmin, bmax [3]float32) {
	if len(verts) < 3 {
		return
	}
	copy(bmin[:], verts)
	copy(bmax[:], verts)
	for i := 3; i+3 <= len(verts); i += 3 {
		common.Vmin(bmin[:], verts[i:])
		common.Vmax(bmax[:], verts[i:])
	}
	return
}

func RcCalcGridSize(minBounds, maxBounds []float32, cellSize float32) (sizeX, sizeZ int) {
	sizeX = int((maxBounds[0]-minBounds[0])/cellSize + 0.5)
	sizeZ = int((maxBounds[2]-minBounds[2])/cellSize + 0.5)
	return
}

func calcTriNormal(v0, v1, v2 []float32, faceNormal []float32) {
	var e0, e1 [3]float32
	common.Vsub(e0[:], v1, v0)
	common.Vsub(e1[:], v2, v0)
	common.Vcross(faceNormal, e0[:], e1[:])
	common.Vnormalize(faceNormal)
}

// RcMarkWalkableTriangles classifies each triangle of the soup (9 floats per
// triangle) and returns its area id. Triangles steeper than the slope limit
// stay RC_NULL_AREA and are still rasterized as blockers.
func RcMarkWalkableTriangles(walkableSlopeAngle float32, tris []float32) []uint8 {
	walkableThr := float32(math.Cos(float64(walkableSlopeAngle) / 180.0 * math.Pi))
	ntris := len(tris) / 9
	areas := make([]uint8, ntris)
	var norm [3]float32
	for i := 0; i < ntris; i++ {
		v := tris[i*9 : i*9+9]
		calcTriNormal(v[0:3], v[3:6], v[6:9], norm[:])
		// Check if the face is walkable.
		if norm[1] > walkableThr {
			areas[i] = RC_WALKABLE_AREA
		}
	}
	return areas
}

func rcGetHeightFieldSpanCount(hf *RcHeightfield) int {
	spanCount := 0
	for _, head := range hf.Spans {
		for s := head; s != RC_NULL_SPAN; s = hf.pool[s].Next {
			if hf.pool[s].Area != RC_NULL_AREA {
				spanCount++
			}
		}
	}
	return spanCount
}

// / Builds a compact heightfield representing open space, from a heightfield
// / representing solid space.
func RcBuildCompactHeightfield(walkableHeight, walkableClimb int, hf *RcHeightfield) (*RcCompactHeightfield, error) {
	xSize := hf.Width
	zSize := hf.Height
	spanCount := rcGetHeightFieldSpanCount(hf)
	if spanCount == 0 {
		return nil, ErrNoWalkableArea
	}

	chf := &RcCompactHeightfield{
		Width:          xSize,
		Height:         zSize,
		SpanCount:      spanCount,
		WalkableHeight: walkableHeight,
		WalkableClimb:  walkableClimb,
		Bmin:           hf.Bmin,
		Bmax:           hf.Bmax,
		Cs:             hf.Cs,
		Ch:             hf.Ch,
		Cells:          make([]RcCompactCell, xSize*zSize),
		Spans:          make([]RcCompactSpan, spanCount),
		Areas:          make([]uint8, spanCount),
	}
	chf.Bmax[1] += float32(walkableHeight) * hf.Ch
	const maxHeight = 0xffff

	// Fill in cells and spans.
	idx := 0
	for c, head := range hf.Spans {
		if head == RC_NULL_SPAN {
			continue
		}
		cell := &chf.Cells[c]
		cell.Index = idx
		for s := head; s != RC_NULL_SPAN; s = hf.pool[s].Next {
			span := &hf.pool[s]
			if span.Area == RC_NULL_AREA {
				continue
			}
			bot := int(span.Smax)
			top := maxHeight
			if span.Next != RC_NULL_SPAN {
				top = int(hf.pool[span.Next].Smin)
			}
			chf.Spans[idx].Y = uint16(common.Clamp(bot, 0, 0xffff))
			chf.Spans[idx].H = uint8(common.Clamp(top-bot, 0, 0xff))
			chf.Areas[idx] = span.Area
			idx++
			cell.Count++
		}
		if cell.Count == 0 {
			cell.Index = 0
		}
	}

	// Find neighbour connections.
	maxLayers := RC_NOT_CONNECTED - 1
	tooHighNeighbour := 0
	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			cell := chf.Cells[x+z*xSize]
			for i := cell.Index; i < cell.Index+cell.Count; i++ {
				s := &chf.Spans[i]
				for dir := 0; dir < 4; dir++ {
					RcSetCon(s, dir, RC_NOT_CONNECTED)
					nx := x + common.GetDirOffsetX(dir)
					nz := z + common.GetDirOffsetY(dir)
					// First check that the neighbour cell is in bounds.
					if nx < 0 || nz < 0 || nx >= xSize || nz >= zSize {
						continue
					}
					// Iterate over all neighbour spans and check if any of the is
					// accessible from current cell.
					nc := chf.Cells[nx+nz*xSize]
					for k := nc.Index; k < nc.Index+nc.Count; k++ {
						ns := &chf.Spans[k]
						bot := max(int(s.Y), int(ns.Y))
						top := min(int(s.Y)+int(s.H), int(ns.Y)+int(ns.H))
						// Check that the gap between the spans is walkable,
						// and that the climb height between the gaps is not too high.
						if (top-bot) >= walkableHeight && common.Abs(int(ns.Y)-int(s.Y)) <= walkableClimb {
							lidx := k - nc.Index
							if lidx > maxLayers {
								tooHighNeighbour = max(tooHighNeighbour, lidx)
								continue
							}
							RcSetCon(s, dir, lidx)
							break
						}
					}
				}
			}
		}
	}
	if tooHighNeighbour > maxLayers {
		logger.Warn("RcBuildCompactHeightfield: heightfield has too many layers %d (max: %d)", tooHighNeighbour, maxLayers)
	}
	return chf, nil
}
