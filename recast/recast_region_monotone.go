package recast

const RC_NULL_NEI = 0xffff

type rcSweepSpan struct {
	rid uint16 // row id
	id  uint16 // region id
	ns  uint16 // number samples
	nei uint16 // neighbour id
}

// MonotonePartitioner sweeps the field row by row and joins each row run
// with the single region above it. Fast, but regions come out long and thin.
type MonotonePartitioner struct{}

func (MonotonePartitioner) Name() string { return PartitionMonotone }

func (MonotonePartitioner) BuildRegions(chf *RcCompactHeightfield, borderSize, minRegionArea, mergeRegionArea int) error {
	return rcBuildRegionsMonotone(chf, borderSize, minRegionArea, mergeRegionArea)
}

func rcBuildRegionsMonotone(chf *RcCompactHeightfield, borderSize, minRegionArea, mergeRegionArea int) error {
	w, h := chf.Width, chf.Height
	var id uint16 = 1

	srcReg := make([]uint16, chf.SpanCount)
	sweeps := make([]rcSweepSpan, max(w, h)+1)

	// Mark border regions.
	id = paintBorderRegions(chf, borderSize, srcReg, id)
	chf.BorderSize = borderSize

	var prev []int

	// Sweep one line at a time.
	for z := borderSize; z < h-borderSize; z++ {
		// Collect spans from this row.
		prev = append(prev[:0], make([]int, int(id)+1)...)
		var rid uint16 = 1

		for x := borderSize; x < w-borderSize; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}

				// -x
				var previd uint16
				if ai := chf.Neighbour(x, z, i, 0); ai >= 0 {
					if srcReg[ai]&RC_BORDER_REG == 0 && chf.Areas[i] == chf.Areas[ai] {
						previd = srcReg[ai]
					}
				}
				if previd == 0 {
					previd = rid
					rid++
					for int(previd) >= len(sweeps) {
						sweeps = append(sweeps, rcSweepSpan{})
					}
					sweeps[previd] = rcSweepSpan{rid: previd}
				}

				// -z
				if ai := chf.Neighbour(x, z, i, 3); ai >= 0 {
					nr := srcReg[ai]
					if nr != 0 && nr&RC_BORDER_REG == 0 && chf.Areas[i] == chf.Areas[ai] {
						sw := &sweeps[previd]
						if sw.nei == 0 || sw.nei == nr {
							sw.nei = nr
							sw.ns++
							prev[nr]++
						} else {
							sw.nei = RC_NULL_NEI
						}
					}
				}
				srcReg[i] = previd
			}
		}

		// Create unique ID.
		for i := uint16(1); i < rid; i++ {
			sw := &sweeps[i]
			if sw.nei != RC_NULL_NEI && sw.nei != 0 && prev[sw.nei] == int(sw.ns) {
				sw.id = sw.nei
			} else {
				if id == 0xffff {
					return ErrTooManyRegions
				}
				sw.id = id
				id++
			}
		}

		// Remap IDs
		for x := borderSize; x < w-borderSize; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if srcReg[i] > 0 && srcReg[i] < rid {
					srcReg[i] = sweeps[srcReg[i]].id
				}
			}
		}
	}

	// Merge regions and filter out small regions.
	maxRegionId := id
	mergeAndFilterRegions(minRegionArea, mergeRegionArea, &maxRegionId, chf, srcReg)
	storeRegions(chf, srcReg, maxRegionId)
	return nil
}
