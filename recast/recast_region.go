package recast

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gorustyt/gonavmesh/common"
)

const (
	PartitionWatershed = "watershed"
	PartitionMonotone  = "monotone"
)

// RegionPartitioner segments the walkable spans of a compact heightfield into
// regions and stores the ids in RcCompactSpan.Reg.
type RegionPartitioner interface {
	Name() string
	BuildRegions(chf *RcCompactHeightfield, borderSize, minRegionArea, mergeRegionArea int) error
}

func PartitionerByName(name string) (RegionPartitioner, error) {
	switch strings.ToLower(name) {
	case PartitionWatershed, "":
		return WatershedPartitioner{}, nil
	case PartitionMonotone:
		return MonotonePartitioner{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPartition, name)
}

type rcRegion struct {
	spanCount   int    // Number of spans belonging to this region
	id          uint16 // ID of the region
	areaType    uint8  // Are type.
	remap       bool
	visited     bool
	overlap     bool
	connections []uint16
	floors      []uint16
}

func removeAdjacentNeighbours(reg *rcRegion) {
	// Remove adjacent duplicates.
	for i := 0; i < len(reg.connections) && len(reg.connections) > 1; {
		ni := (i + 1) % len(reg.connections)
		if reg.connections[i] == reg.connections[ni] {
			reg.connections = slices.Delete(reg.connections, i, i+1)
		} else {
			i++
		}
	}
}

func replaceNeighbour(reg *rcRegion, oldId, newId uint16) {
	neiChanged := false
	for i := range reg.connections {
		if reg.connections[i] == oldId {
			reg.connections[i] = newId
			neiChanged = true
		}
	}
	for i := range reg.floors {
		if reg.floors[i] == oldId {
			reg.floors[i] = newId
		}
	}
	if neiChanged {
		removeAdjacentNeighbours(reg)
	}
}

func canMergeWithRegion(rega, regb *rcRegion) bool {
	if rega.areaType != regb.areaType {
		return false
	}
	n := 0
	for _, c := range rega.connections {
		if c == regb.id {
			n++
		}
	}
	if n > 1 {
		return false
	}
	return !slices.Contains(rega.floors, regb.id)
}

func addUniqueFloorRegion(reg *rcRegion, n uint16) {
	if !slices.Contains(reg.floors, n) {
		reg.floors = append(reg.floors, n)
	}
}

func mergeRegions(rega, regb *rcRegion) bool {
	aid := rega.id
	bid := regb.id

	// Duplicate current neighbourhood.
	acon := slices.Clone(rega.connections)
	bcon := regb.connections

	// Find insertion point on A.
	insa := slices.Index(acon, bid)
	if insa == -1 {
		return false
	}
	// Find insertion point on B.
	insb := slices.Index(bcon, aid)
	if insb == -1 {
		return false
	}

	// Merge neighbours.
	rega.connections = rega.connections[:0]
	for i, ni := 0, len(acon); i < ni-1; i++ {
		rega.connections = append(rega.connections, acon[(insa+1+i)%ni])
	}
	for i, ni := 0, len(bcon); i < ni-1; i++ {
		rega.connections = append(rega.connections, bcon[(insb+1+i)%ni])
	}
	removeAdjacentNeighbours(rega)

	for _, f := range regb.floors {
		addUniqueFloorRegion(rega, f)
	}
	rega.spanCount += regb.spanCount
	regb.spanCount = 0
	regb.connections = nil
	return true
}

func isRegionConnectedToBorder(reg *rcRegion) bool {
	// Region is connected to border if
	// one of the neighbours is null id.
	return slices.Contains(reg.connections, 0)
}

func isSolidEdge(chf *RcCompactHeightfield, srcReg []uint16, x, z, i, dir int) bool {
	var r uint16
	if ai := chf.Neighbour(x, z, i, dir); ai >= 0 {
		r = srcReg[ai]
	}
	return r != srcReg[i]
}

func walkRegionContour(x, z, i, dir int, chf *RcCompactHeightfield, srcReg []uint16) []uint16 {
	startDir := dir
	starti := i

	var curReg uint16
	if ai := chf.Neighbour(x, z, i, dir); ai >= 0 {
		curReg = srcReg[ai]
	}
	cont := []uint16{curReg}

	for iter := 1; iter < 40000; iter++ {
		if isSolidEdge(chf, srcReg, x, z, i, dir) {
			// Choose the edge corner
			var r uint16
			if ai := chf.Neighbour(x, z, i, dir); ai >= 0 {
				r = srcReg[ai]
			}
			if r != curReg {
				curReg = r
				cont = append(cont, curReg)
			}
			dir = (dir + 1) & 0x3 // Rotate CW
		} else {
			ni := chf.Neighbour(x, z, i, dir)
			if ni == -1 {
				// Should not happen.
				return cont
			}
			x += common.GetDirOffsetX(dir)
			z += common.GetDirOffsetY(dir)
			i = ni
			dir = (dir + 3) & 0x3 // Rotate CCW
		}
		if starti == i && startDir == dir {
			break
		}
	}

	// Remove adjacent duplicates.
	for j := 0; j < len(cont) && len(cont) > 1; {
		nj := (j + 1) % len(cont)
		if cont[j] == cont[nj] {
			cont = slices.Delete(cont, j, j+1)
		} else {
			j++
		}
	}
	return cont
}

// mergeAndFilterRegions removes isolated islands smaller than minRegionArea,
// folds regions smaller than mergeRegionSize into their smallest neighbour
// and compacts the surviving ids to 1..n.
func mergeAndFilterRegions(minRegionArea, mergeRegionSize int, maxRegionId *uint16,
	chf *RcCompactHeightfield, srcReg []uint16) (overlaps []uint16) {
	w, h := chf.Width, chf.Height
	nreg := int(*maxRegionId) + 1
	regions := make([]rcRegion, nreg)
	for i := range regions {
		regions[i].id = uint16(i)
	}

	// Find edge of a region and find connections around the contour.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				r := srcReg[i]
				if r == 0 || int(r) >= nreg {
					continue
				}
				reg := &regions[r]
				reg.spanCount++

				// Update floors.
				for j := c.Index; j < c.Index+c.Count; j++ {
					if i == j {
						continue
					}
					floorId := srcReg[j]
					if floorId == 0 || int(floorId) >= nreg {
						continue
					}
					if floorId == r {
						reg.overlap = true
					}
					addUniqueFloorRegion(reg, floorId)
				}

				// Have found contour
				if len(reg.connections) > 0 {
					continue
				}
				reg.areaType = chf.Areas[i]

				// Check if this cell is next to a border.
				ndir := -1
				for dir := 0; dir < 4; dir++ {
					if isSolidEdge(chf, srcReg, x, z, i, dir) {
						ndir = dir
						break
					}
				}
				if ndir != -1 {
					// The cell is at border.
					// Walk around the contour to find all the neighbours.
					reg.connections = walkRegionContour(x, z, i, ndir, chf, srcReg)
				}
			}
		}
	}

	// Remove too small regions.
	var stack, trace []uint16
	for i := 0; i < nreg; i++ {
		reg := &regions[i]
		if reg.id == 0 || reg.id&RC_BORDER_REG != 0 || reg.spanCount == 0 || reg.visited {
			continue
		}

		// Count the total size of all the connected regions.
		// Also keep track of the regions connects to a tile border.
		connectsToBorder := false
		spanCount := 0
		stack = stack[:0]
		trace = trace[:0]

		reg.visited = true
		stack = append(stack, uint16(i))
		for len(stack) > 0 {
			ri := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			creg := &regions[ri]
			spanCount += creg.spanCount
			trace = append(trace, ri)

			for _, conn := range creg.connections {
				if conn&RC_BORDER_REG != 0 {
					connectsToBorder = true
					continue
				}
				neireg := &regions[conn]
				if neireg.visited || neireg.id == 0 || neireg.id&RC_BORDER_REG != 0 {
					continue
				}
				stack = append(stack, neireg.id)
				neireg.visited = true
			}
		}

		// If the accumulated regions size is too small, remove it.
		// Do not remove areas which connect to tile borders
		// as their size cannot be estimated correctly and removing them
		// can potentially remove necessary areas.
		if spanCount < minRegionArea && !connectsToBorder {
			for _, t := range trace {
				regions[t].spanCount = 0
				regions[t].id = 0
			}
		}
	}

	// Merge too small regions to neighbour regions.
	for {
		mergeCount := 0
		for i := 0; i < nreg; i++ {
			reg := &regions[i]
			if reg.id == 0 || reg.id&RC_BORDER_REG != 0 || reg.overlap || reg.spanCount == 0 {
				continue
			}
			// Check to see if the region should be merged.
			if reg.spanCount > mergeRegionSize && isRegionConnectedToBorder(reg) {
				continue
			}

			// Small region with more than 1 connection.
			// Or region which is not connected to a border at all.
			// Find smallest neighbour region that connects to this one.
			smallest := 0xfffffff
			mergeId := reg.id
			for _, conn := range reg.connections {
				if conn&RC_BORDER_REG != 0 {
					continue
				}
				mreg := &regions[conn]
				if mreg.id == 0 || mreg.id&RC_BORDER_REG != 0 || mreg.overlap {
					continue
				}
				if (mreg.spanCount < smallest || (mreg.spanCount == smallest && mreg.id < mergeId)) &&
					canMergeWithRegion(reg, mreg) && canMergeWithRegion(mreg, reg) {
					smallest = mreg.spanCount
					mergeId = mreg.id
				}
			}
			// Found new id.
			if mergeId != reg.id {
				oldId := reg.id
				target := &regions[mergeId]
				// Merge neighbours.
				if mergeRegions(target, reg) {
					// Fixup regions pointing to current region.
					for j := 0; j < nreg; j++ {
						if regions[j].id == 0 || regions[j].id&RC_BORDER_REG != 0 {
							continue
						}
						// If another region was already merged into current region
						// change the nid of the previous region too.
						if regions[j].id == oldId {
							regions[j].id = mergeId
						}
						// Replace the current region with the new one if the
						// current regions is neighbour.
						replaceNeighbour(&regions[j], oldId, mergeId)
					}
					mergeCount++
				}
			}
		}
		if mergeCount == 0 {
			break
		}
	}

	// Compress region Ids.
	for i := range regions {
		regions[i].remap = regions[i].id != 0 && regions[i].id&RC_BORDER_REG == 0
	}
	var regIdGen uint16
	for i := 0; i < nreg; i++ {
		if !regions[i].remap {
			continue
		}
		oldId := regions[i].id
		regIdGen++
		newId := regIdGen
		for j := i; j < nreg; j++ {
			if regions[j].id == oldId {
				regions[j].id = newId
				regions[j].remap = false
			}
		}
	}
	*maxRegionId = regIdGen

	// Remap regions.
	for i := 0; i < chf.SpanCount; i++ {
		if srcReg[i]&RC_BORDER_REG == 0 {
			srcReg[i] = regions[srcReg[i]].id
		}
	}

	// Return regions that we found to be overlapping.
	for i := range regions {
		if regions[i].overlap {
			overlaps = append(overlaps, regions[i].id)
		}
	}
	return overlaps
}

func paintRectRegion(minx, maxx, minz, maxz int, regId uint16, chf *RcCompactHeightfield, srcReg []uint16) {
	for z := minz; z < maxz; z++ {
		for x := minx; x < maxx; x++ {
			c := chf.Cells[x+z*chf.Width]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if chf.Areas[i] != RC_NULL_AREA {
					srcReg[i] = regId
				}
			}
		}
	}
}

// paintBorderRegions marks the tile border strips with RC_BORDER_REG ids and
// returns the next free region id.
func paintBorderRegions(chf *RcCompactHeightfield, borderSize int, srcReg []uint16, regionId uint16) uint16 {
	if borderSize <= 0 {
		return regionId
	}
	w, h := chf.Width, chf.Height
	// Make sure border will not overflow.
	bw := min(w, borderSize)
	bh := min(h, borderSize)
	paintRectRegion(0, bw, 0, h, regionId|RC_BORDER_REG, chf, srcReg)
	regionId++
	paintRectRegion(w-bw, w, 0, h, regionId|RC_BORDER_REG, chf, srcReg)
	regionId++
	paintRectRegion(0, w, 0, bh, regionId|RC_BORDER_REG, chf, srcReg)
	regionId++
	paintRectRegion(0, w, h-bh, h, regionId|RC_BORDER_REG, chf, srcReg)
	regionId++
	return regionId
}

func storeRegions(chf *RcCompactHeightfield, srcReg []uint16, maxRegionId uint16) {
	chf.MaxRegions = int(maxRegionId)
	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
}
