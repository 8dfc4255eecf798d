package recast

import (
	"github.com/gorustyt/gonavmesh/common/logger"
)

type LevelStackEntry struct {
	x     int
	z     int
	index int
}

type dirtyEntry struct {
	index     int
	region    uint16
	distance2 uint16
}

// WatershedPartitioner floods regions outward from the maxima of the
// distance-to-border field, level by level.
type WatershedPartitioner struct{}

func (WatershedPartitioner) Name() string { return PartitionWatershed }

func (WatershedPartitioner) BuildRegions(chf *RcCompactHeightfield, borderSize, minRegionArea, mergeRegionArea int) error {
	if chf.Dist == nil {
		RcBuildDistanceField(chf)
	}
	return rcBuildRegions(chf, borderSize, minRegionArea, mergeRegionArea)
}

func calculateDistanceField(chf *RcCompactHeightfield, src []uint16) (maxDist uint16) {
	w, h := chf.Width, chf.Height
	for i := range src {
		src[i] = 0xffff
	}

	// Mark boundary cells.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				area := chf.Areas[i]
				nc := 0
				for dir := 0; dir < 4; dir++ {
					if ai := chf.Neighbour(x, z, i, dir); ai >= 0 && area == chf.Areas[ai] {
						nc++
					}
				}
				if nc != 4 {
					src[i] = 0
				}
			}
		}
	}

	chamferPass(chf, src, true, 0xffff)
	chamferPass(chf, src, false, 0xffff)

	for i := 0; i < chf.SpanCount; i++ {
		maxDist = max(src[i], maxDist)
	}
	return maxDist
}

func boxBlur(chf *RcCompactHeightfield, thr int, src, dst []uint16) []uint16 {
	w, h := chf.Width, chf.Height
	thr *= 2
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				cd := int(src[i])
				if cd <= thr {
					dst[i] = uint16(cd)
					continue
				}
				d := cd
				for dir := 0; dir < 4; dir++ {
					ai := chf.Neighbour(x, z, i, dir)
					if ai < 0 {
						d += cd * 2
						continue
					}
					d += int(src[ai])
					ax := x + dirOffX(dir)
					az := z + dirOffZ(dir)
					dir2 := (dir + 1) & 0x3
					if a2 := chf.Neighbour(ax, az, ai, dir2); a2 >= 0 {
						d += int(src[a2])
					} else {
						d += cd
					}
				}
				dst[i] = uint16((d + 5) / 9)
			}
		}
	}
	return dst
}

// / Builds the distance field for the specified compact heightfield.
func RcBuildDistanceField(chf *RcCompactHeightfield) {
	src := make([]uint16, chf.SpanCount)
	dst := make([]uint16, chf.SpanCount)
	chf.MaxDistance = calculateDistanceField(chf, src)
	// Blur
	chf.Dist = boxBlur(chf, 1, src, dst)
}

func floodRegion(x, z, i int, level, r uint16, chf *RcCompactHeightfield,
	srcReg, srcDist []uint16, stack []LevelStackEntry) ([]LevelStackEntry, bool) {
	area := chf.Areas[i]

	// Flood fill mark region.
	stack = append(stack[:0], LevelStackEntry{x, z, i})
	srcReg[i] = r
	srcDist[i] = 0

	var lev uint16
	if level >= 2 {
		lev = level - 2
	}
	count := 0

	for len(stack) > 0 {
		back := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cz, ci := back.x, back.z, back.index

		// Check if any of the neighbours already have a valid region set.
		var ar uint16
		for dir := 0; dir < 4 && ar == 0; dir++ {
			ai := chf.Neighbour(cx, cz, ci, dir)
			if ai < 0 || chf.Areas[ai] != area {
				continue
			}
			nr := srcReg[ai]
			if nr&RC_BORDER_REG != 0 { // Do not take borders into account.
				continue
			}
			if nr != 0 && nr != r {
				ar = nr
				break
			}
			ax := cx + dirOffX(dir)
			az := cz + dirOffZ(dir)
			dir2 := (dir + 1) & 0x3
			if ai2 := chf.Neighbour(ax, az, ai, dir2); ai2 >= 0 && chf.Areas[ai2] == area {
				nr2 := srcReg[ai2]
				if nr2 != 0 && nr2 != r {
					ar = nr2
				}
			}
		}
		if ar != 0 {
			srcReg[ci] = 0
			continue
		}
		count++

		// Expand neighbours.
		for dir := 0; dir < 4; dir++ {
			ai := chf.Neighbour(cx, cz, ci, dir)
			if ai < 0 || chf.Areas[ai] != area {
				continue
			}
			if chf.Dist[ai] >= lev && srcReg[ai] == 0 {
				srcReg[ai] = r
				srcDist[ai] = 0
				stack = append(stack, LevelStackEntry{cx + dirOffX(dir), cz + dirOffZ(dir), ai})
			}
		}
	}
	return stack, count > 0
}

// expandRegions grows labelled regions into unlabelled spans of at least the
// given level. A span joins the neighbour with the smallest flood distance;
// equal distances go to the smaller region id.
func expandRegions(maxIter int, level uint16, chf *RcCompactHeightfield,
	srcReg, srcDist []uint16, stack []LevelStackEntry, fillStack bool) []LevelStackEntry {
	w, h := chf.Width, chf.Height

	if fillStack {
		// Find cells revealed by the raised level.
		stack = stack[:0]
		for z := 0; z < h; z++ {
			for x := 0; x < w; x++ {
				c := chf.Cells[x+z*w]
				for i := c.Index; i < c.Index+c.Count; i++ {
					if chf.Dist[i] >= level && srcReg[i] == 0 && chf.Areas[i] != RC_NULL_AREA {
						stack = append(stack, LevelStackEntry{x, z, i})
					}
				}
			}
		}
	} else {
		// mark all cells which already have a region
		for j := range stack {
			if i := stack[j].index; i >= 0 && srcReg[i] != 0 {
				stack[j].index = -1
			}
		}
	}

	var dirty []dirtyEntry
	iter := 0
	for len(stack) > 0 {
		failed := 0
		dirty = dirty[:0]

		for j := range stack {
			x, z, i := stack[j].x, stack[j].z, stack[j].index
			if i < 0 {
				failed++
				continue
			}
			r := srcReg[i]
			d2 := uint16(0xffff)
			area := chf.Areas[i]
			for dir := 0; dir < 4; dir++ {
				ai := chf.Neighbour(x, z, i, dir)
				if ai < 0 || chf.Areas[ai] != area {
					continue
				}
				nr := srcReg[ai]
				if nr > 0 && nr&RC_BORDER_REG == 0 {
					nd := srcDist[ai] + 2
					if nd < d2 || (nd == d2 && nr < r) {
						r = nr
						d2 = nd
					}
				}
			}
			if r != 0 {
				stack[j].index = -1 // mark as used
				dirty = append(dirty, dirtyEntry{i, r, d2})
			} else {
				failed++
			}
		}

		// Copy entries that differ between src and dst to keep them in sync.
		for _, d := range dirty {
			srcReg[d.index] = d.region
			srcDist[d.index] = d.distance2
		}

		if failed == len(stack) {
			break
		}
		if level > 0 {
			iter++
			if iter >= maxIter {
				break
			}
		}
	}
	return stack
}

func sortCellsByLevel(startLevel uint16, chf *RcCompactHeightfield, srcReg []uint16,
	stacks [][]LevelStackEntry, loglevelsPerStack uint) {
	w, h := chf.Width, chf.Height
	start := int(startLevel >> loglevelsPerStack)
	for j := range stacks {
		stacks[j] = stacks[j][:0]
	}

	// put all cells in the level range into the appropriate stacks
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if chf.Areas[i] == RC_NULL_AREA || srcReg[i] != 0 {
					continue
				}
				level := int(chf.Dist[i] >> loglevelsPerStack)
				sId := max(start-level, 0)
				if sId >= len(stacks) {
					continue
				}
				stacks[sId] = append(stacks[sId], LevelStackEntry{x, z, i})
			}
		}
	}
}

func appendStacks(src, dst []LevelStackEntry, srcReg []uint16) []LevelStackEntry {
	for _, e := range src {
		if e.index < 0 || srcReg[e.index] != 0 {
			continue
		}
		dst = append(dst, e)
	}
	return dst
}

func rcBuildRegions(chf *RcCompactHeightfield, borderSize, minRegionArea, mergeRegionArea int) error {
	const logLevelsPerStack = 1
	const nbStacks = 8
	const expandIters = 8

	srcReg := make([]uint16, chf.SpanCount)
	srcDist := make([]uint16, chf.SpanCount)
	lvlStacks := make([][]LevelStackEntry, nbStacks)
	var stack []LevelStackEntry

	var regionId uint16 = 1
	level := (chf.MaxDistance + 1) &^ 1

	regionId = paintBorderRegions(chf, borderSize, srcReg, regionId)
	chf.BorderSize = borderSize

	sId := -1
	for level > 0 {
		if level >= 2 {
			level -= 2
		} else {
			level = 0
		}
		sId = (sId + 1) & (nbStacks - 1)

		if sId == 0 {
			sortCellsByLevel(level, chf, srcReg, lvlStacks, logLevelsPerStack)
		} else {
			lvlStacks[sId] = appendStacks(lvlStacks[sId-1], lvlStacks[sId], srcReg) // copy left overs from last level
		}

		lvlStacks[sId] = expandRegions(expandIters, level, chf, srcReg, srcDist, lvlStacks[sId], false)

		// Mark new regions with IDs.
		for _, e := range lvlStacks[sId] {
			if e.index < 0 || srcReg[e.index] != 0 {
				continue
			}
			var ok bool
			stack, ok = floodRegion(e.x, e.z, e.index, level, regionId, chf, srcReg, srcDist, stack)
			if ok {
				if regionId == 0xffff {
					return ErrTooManyRegions
				}
				regionId++
			}
		}
	}

	// Expand current regions until no empty connected cells found.
	expandRegions(expandIters*8, 0, chf, srcReg, srcDist, stack, true)

	// Merge regions and filter out small regions.
	maxRegionId := regionId
	overlaps := mergeAndFilterRegions(minRegionArea, mergeRegionArea, &maxRegionId, chf, srcReg)
	if len(overlaps) > 0 {
		logger.Warn("rcBuildRegions: %d overlapping regions", len(overlaps))
	}
	storeRegions(chf, srcReg, maxRegionId)
	return nil
}
