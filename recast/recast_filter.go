package recast

import "github.com/gorustyt/gonavmesh/common"

// RC_NULL_SPAN terminates a span column.
const RC_NULL_SPAN int32 = -1

type RcSpan struct {
	Smin uint16 ///< The lower limit of the span. [Limit: < #smax]
	Smax uint16 ///< The upper limit of the span. [Limit: <= #RC_SPAN_MAX_HEIGHT]
	Area uint8  ///< The area id assigned to the span.
	Next int32  ///< Index of the next span higher up in column, or RC_NULL_SPAN.
}

// / A dynamic heightfield representing obstructed space.
// / Spans live in one arena and reference each other by index.
// / @ingroup recast
type RcHeightfield struct {
	Width  int        ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height int        ///< The height of the heightfield. (Along the z-axis in cell units.)
	Bmin   [3]float32 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax   [3]float32 ///< The maximum bounds in world space. [(x, y, z)]
	Cs     float32    ///< The size of each cell. (On the xz-plane.)
	Ch     float32    ///< The height of each cell. (The minimum increment along the y-axis.)
	Spans  []int32    ///< Column heads (width*height), RC_NULL_SPAN when empty.

	pool     []RcSpan
	freelist int32
}

func RcCreateHeightfield(sizeX, sizeZ int, minBounds, maxBounds []float32, cellSize, cellHeight float32) *RcHeightfield {
	hf := &RcHeightfield{
		Width:    sizeX,
		Height:   sizeZ,
		Cs:       cellSize,
		Ch:       cellHeight,
		Spans:    make([]int32, sizeX*sizeZ),
		freelist: RC_NULL_SPAN,
	}
	copy(hf.Bmin[:], minBounds)
	copy(hf.Bmax[:], maxBounds)
	for i := range hf.Spans {
		hf.Spans[i] = RC_NULL_SPAN
	}
	return hf
}

// Span returns the span stored at arena index i. The pointer is only valid
// until the next span allocation.
func (hf *RcHeightfield) Span(i int32) *RcSpan {
	return &hf.pool[i]
}

func (hf *RcHeightfield) allocSpan() int32 {
	if hf.freelist != RC_NULL_SPAN {
		i := hf.freelist
		hf.freelist = hf.pool[i].Next
		return i
	}
	hf.pool = append(hf.pool, RcSpan{})
	return int32(len(hf.pool) - 1)
}

func (hf *RcHeightfield) freeSpan(i int32) {
	hf.pool[i] = RcSpan{Next: hf.freelist}
	hf.freelist = i
}

// / Marks non-walkable spans as walkable if their maximum is within @p walkableClimb of the span below them.
// / This removes small obstacles and rasterization artifacts the agent can step over,
// / like curbs and stair lips.
func RcFilterLowHangingWalkableObstacles(walkableClimb int, hf *RcHeightfield) {
	for _, head := range hf.Spans {
		prev := RC_NULL_SPAN
		previousWasWalkable := false
		var previousArea uint8 = RC_NULL_AREA
		for s := head; s != RC_NULL_SPAN; prev, s = s, hf.pool[s].Next {
			span := &hf.pool[s]
			walkable := span.Area != RC_NULL_AREA
			// If current span is not walkable, but there is walkable
			// span just below it, mark the span above it walkable too.
			if !walkable && previousWasWalkable {
				if common.Abs(int(span.Smax)-int(hf.pool[prev].Smax)) <= walkableClimb {
					span.Area = previousArea
				}
			}
			// Copy walkable flag so that it cannot propagate
			// past multiple non-walkable objects.
			previousWasWalkable = walkable
			previousArea = span.Area
		}
	}
}

// / Marks spans that are ledges as not-walkable.
// / A ledge is a span with one or more neighbors whose maximum is further away than @p walkableClimb
// / from the current span's maximum, or whose accessible neighbors span more than @p walkableClimb.
func RcFilterLedgeSpans(walkableHeight, walkableClimb int, hf *RcHeightfield) {
	const maxHeight = 0xffff
	xSize := hf.Width
	zSize := hf.Height

	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			for s := hf.Spans[x+z*xSize]; s != RC_NULL_SPAN; s = hf.pool[s].Next {
				span := &hf.pool[s]
				// Skip non walkable spans.
				if span.Area == RC_NULL_AREA {
					continue
				}
				bot := int(span.Smax)
				top := maxHeight
				if span.Next != RC_NULL_SPAN {
					top = int(hf.pool[span.Next].Smin)
				}

				// Find neighbours minimum height.
				minNeighborHeight := maxHeight
				// Min and max height of accessible neighbours.
				accessibleMin := int(span.Smax)
				accessibleMax := int(span.Smax)

				for dir := 0; dir < 4; dir++ {
					dx := x + common.GetDirOffsetX(dir)
					dz := z + common.GetDirOffsetY(dir)
					// Skip neighbours which are out of bounds.
					if dx < 0 || dz < 0 || dx >= xSize || dz >= zSize {
						minNeighborHeight = min(minNeighborHeight, -walkableClimb-bot)
						continue
					}

					// From minus infinity to the first span.
					ns := hf.Spans[dx+dz*xSize]
					neighborBot := -walkableClimb
					neighborTop := maxHeight
					if ns != RC_NULL_SPAN {
						neighborTop = int(hf.pool[ns].Smin)
					}
					// Skip neighbour if the gap between the spans is too small.
					if min(top, neighborTop)-max(bot, neighborBot) > walkableHeight {
						minNeighborHeight = min(minNeighborHeight, neighborBot-bot)
					}

					// Rest of the spans.
					for ; ns != RC_NULL_SPAN; ns = hf.pool[ns].Next {
						neighborBot = int(hf.pool[ns].Smax)
						neighborTop = maxHeight
						if next := hf.pool[ns].Next; next != RC_NULL_SPAN {
							neighborTop = int(hf.pool[next].Smin)
						}
						if min(top, neighborTop)-max(bot, neighborBot) > walkableHeight {
							minNeighborHeight = min(minNeighborHeight, neighborBot-bot)
							// Find min/max accessible neighbour height.
							if common.Abs(neighborBot-bot) <= walkableClimb {
								accessibleMin = min(accessibleMin, neighborBot)
								accessibleMax = max(accessibleMax, neighborBot)
							}
						}
					}
				}

				// The current span is close to a ledge if the drop to any
				// neighbour span is less than the walkableClimb.
				if minNeighborHeight < -walkableClimb {
					span.Area = RC_NULL_AREA
				} else if (accessibleMax - accessibleMin) > walkableClimb {
					// If the difference between all neighbours is too large,
					// we are at steep slope, mark the span as ledge.
					span.Area = RC_NULL_AREA
				}
			}
		}
	}
}

// / Marks walkable spans as not walkable if the clearance above the span is less than the specified height.
func RcFilterWalkableLowHeightSpans(walkableHeight int, hf *RcHeightfield) {
	const maxHeight = 0xffff
	for _, head := range hf.Spans {
		for s := head; s != RC_NULL_SPAN; s = hf.pool[s].Next {
			span := &hf.pool[s]
			bot := int(span.Smax)
			top := maxHeight
			if span.Next != RC_NULL_SPAN {
				top = int(hf.pool[span.Next].Smin)
			}
			if (top - bot) < walkableHeight {
				span.Area = RC_NULL_AREA
			}
		}
	}
}
