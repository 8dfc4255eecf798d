package detour

import (
	"errors"
	"fmt"
	"math"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/logger"
	"go.uber.org/multierr"
)

// / Defines polygon filtering and traversal costs for navigation mesh query operations.
type QueryFilter struct {
	AreaCost     [DT_MAX_AREAS]float32 ///< Cost per area type. (Used by default implementation.)
	IncludeFlags uint16                ///< Flags for polygons that can be visited. (Used by default implementation.)
	ExcludeFlags uint16                ///< Flags for polygons that should not be visited. (Used by default implementation.)
}

// NewQueryFilter returns a filter that accepts every flagged polygon at unit cost.
func NewQueryFilter() *QueryFilter {
	f := &QueryFilter{IncludeFlags: 0xffff}
	for i := range f.AreaCost {
		f.AreaCost[i] = 1.0
	}
	return f
}

// / Returns true if the polygon can be visited. (I.e. Is traversable.)
func (f *QueryFilter) PassFilter(ref PolyRef, tile *MeshTile, poly *Poly) bool {
	return poly.Flags&f.IncludeFlags != 0 && poly.Flags&f.ExcludeFlags == 0
}

// / Returns cost to move from the beginning to the end of a line segment
// / that is fully contained within a polygon.
func (f *QueryFilter) GetCost(pa, pb []float32, curPoly *Poly) float32 {
	return common.Vdist(pa, pb) * f.AreaCost[curPoly.Area]
}

// StraightPathPoint is one corner of a string-pulled path.
type StraightPathPoint struct {
	Pos   [3]float32
	Flags uint8   ///< DT_STRAIGHTPATH_* flags.
	Ref   PolyRef ///< Polygon entered at this vertex, 0 at the end.
}

// / Provides the ability to perform pathfinding related queries against
// / a navigation mesh.
type NavMeshQuery struct {
	nav      *NavMesh
	nodePool *NodePool
	openList nodeQueue
	seq      uint32
}

const H_SCALE = 0.999 // Search heuristic scale.

// NewNavMeshQuery creates a query bound to nav with a search budget of maxNodes.
func NewNavMeshQuery(nav *NavMesh, maxNodes int) (*NavMeshQuery, error) {
	if nav == nil || maxNodes <= 0 || maxNodes > 0xffff {
		return nil, fmt.Errorf("%w: max nodes %d", ErrInvalidParam, maxNodes)
	}
	return &NavMeshQuery{
		nav:      nav,
		nodePool: NewNodePool(maxNodes, int(common.NextPow2(uint32(maxNodes/4)))),
		openList: make(nodeQueue, 0, maxNodes),
	}, nil
}

// / Gets the navigation mesh the query object is using.
func (q *NavMeshQuery) AttachedNavMesh() *NavMesh { return q.nav }

// / Gets the node pool of the last search.
func (q *NavMeshQuery) NodePool() *NodePool { return q.nodePool }

// / Returns true if the polygon reference is valid and passes the filter restrictions.
func (q *NavMeshQuery) IsValidPolyRef(ref PolyRef, filter *QueryFilter) bool {
	tile, poly, err := q.nav.GetTileAndPolyByRef(ref)
	if err != nil {
		return false
	}
	return filter == nil || filter.PassFilter(ref, tile, poly)
}

// / Finds polygons that overlap the search box.
func (q *NavMeshQuery) QueryPolygons(center, halfExtents []float32, filter *QueryFilter) ([]PolyRef, error) {
	if len(center) < 3 || len(halfExtents) < 3 || !common.Visfinite(center) || !common.Visfinite(halfExtents) ||
		halfExtents[0] < 0 || halfExtents[1] < 0 || halfExtents[2] < 0 {
		return nil, ErrInvalidParam
	}
	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	common.Vsub(bmin, center, halfExtents)
	common.Vadd(bmax, center, halfExtents)

	// Find tiles the query touches.
	minx, miny := q.nav.CalcTileLoc(bmin)
	maxx, maxy := q.nav.CalcTileLoc(bmax)
	var polys []PolyRef
	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			for _, tile := range q.nav.GetTilesAt(x, y) {
				polys = append(polys, q.nav.QueryPolygonsInTile(tile, bmin, bmax, filter)...)
			}
		}
	}
	return polys, nil
}

// / Finds the polygon nearest to the specified center point.
// / Returns ErrNoPolygon when no polygon overlaps the search box.
func (q *NavMeshQuery) FindNearestPoly(center, halfExtents []float32, filter *QueryFilter) (PolyRef, []float32, error) {
	polys, err := q.QueryPolygons(center, halfExtents, filter)
	if err != nil {
		return 0, nil, err
	}
	var nearestRef PolyRef
	var nearestPt []float32
	nearestDistanceSqr := float32(math.MaxFloat32)
	diff := make([]float32, 3)
	for _, ref := range polys {
		closestPtPoly, posOverPoly, err := q.nav.ClosestPointOnPoly(ref, center)
		if err != nil {
			continue
		}
		tile, _ := q.nav.getTileAndPolyByRefUnsafe(ref)

		// If a point is directly over a polygon and closer than
		// climb height, favor that instead of straight line nearest point.
		common.Vsub(diff, center, closestPtPoly)
		var d float32
		if posOverPoly {
			d = common.Abs(diff[1]) - tile.Header.WalkableClimb
			if d > 0 {
				d = d * d
			} else {
				d = 0
			}
		} else {
			d = common.VlenSqr(diff)
		}
		if d < nearestDistanceSqr {
			nearestPt = closestPtPoly
			nearestDistanceSqr = d
			nearestRef = ref
		}
	}
	if nearestRef == 0 {
		return 0, nil, fmt.Errorf("%w: (%.2f, %.2f, %.2f)", ErrNoPolygon, center[0], center[1], center[2])
	}
	return nearestRef, nearestPt, nil
}

// / Finds the closest point on the polygon boundary, or pos itself when it is
// / inside the polygon. The height of the result is not adjusted.
func (q *NavMeshQuery) ClosestPointOnPolyBoundary(ref PolyRef, pos []float32) ([]float32, error) {
	tile, poly, err := q.nav.GetTileAndPolyByRef(ref)
	if err != nil {
		return nil, err
	}
	if !common.Visfinite(pos) {
		return nil, ErrInvalidParam
	}
	// Collect vertices.
	nv := int(poly.VertCount)
	verts := q.nav.PolyVerts(tile, poly)
	edged := make([]float32, nv)
	edget := make([]float32, nv)

	closest := make([]float32, 3)
	if distancePtPolyEdgesSqr(pos, verts, nv, edged, edget) {
		common.Vcopy(closest, pos)
		return closest, nil
	}
	// Point is outside the polygon, clamp to nearest edge.
	dmin := edged[0]
	imin := 0
	for i := 1; i < nv; i++ {
		if edged[i] < dmin {
			dmin = edged[i]
			imin = i
		}
	}
	va := verts[imin*3:]
	vb := verts[((imin+1)%nv)*3:]
	return common.Vlerp(closest, va, vb, edget[imin]), nil
}

// distancePtPolyEdgesSqr fills the squared distance and segment parameter of
// pt to every polygon edge and reports whether pt is inside the polygon.
func distancePtPolyEdgesSqr(pt, verts []float32, nverts int, ed, et []float32) bool {
	c := false
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*3:]
		vj := verts[j*3:]
		if ((vi[2] > pt[2]) != (vj[2] > pt[2])) &&
			(pt[0] < (vj[0]-vi[0])*(pt[2]-vi[2])/(vj[2]-vi[2])+vi[0]) {
			c = !c
		}
		ed[j], et[j] = common.DistancePtSegSqr2D(pt, vj, vi)
	}
	return c
}

// / Gets the height of the polygon at the provided position using the height detail.
func (q *NavMeshQuery) GetPolyHeight(ref PolyRef, pos []float32) (float32, error) {
	return q.nav.GetPolyHeight(ref, pos)
}

// getPortalPoints returns the left and right vertex of the edge of from that
// leads into to, clamped to the shared range for tile border links.
func (q *NavMeshQuery) getPortalPoints(from PolyRef, fromPoly *Poly, fromTile *MeshTile, to PolyRef) (left, right []float32, err error) {
	// Find the link that points to the 'to' polygon.
	var link *Link
	for i := fromPoly.FirstLink; i != DT_NULL_LINK; i = fromTile.Links[i].Next {
		if fromTile.Links[i].Ref == to {
			link = &fromTile.Links[i]
			break
		}
	}
	if link == nil {
		return nil, nil, fmt.Errorf("%w: %#x does not link to %#x", ErrInvalidParam, uint32(from), uint32(to))
	}

	// Find portal vertices.
	v0 := fromPoly.vert(fromTile, int(link.Edge))
	v1 := fromPoly.vert(fromTile, (int(link.Edge)+1)%int(fromPoly.VertCount))
	left = make([]float32, 3)
	right = make([]float32, 3)
	common.Vcopy(left, v0)
	common.Vcopy(right, v1)

	// If the link is at tile boundary, clamp the vertices to
	// the link width.
	if link.Side != dtInternalLinkSide {
		// Unpack portal limits.
		if link.Bmin != 0 || link.Bmax != 255 {
			const s = 1.0 / 255.0
			common.Vlerp(left, v0, v1, float32(link.Bmin)*s)
			common.Vlerp(right, v0, v1, float32(link.Bmax)*s)
		}
	}
	return left, right, nil
}

// / Returns the portal points between two polygons.
func (q *NavMeshQuery) GetPortalPoints(from, to PolyRef) (left, right []float32, err error) {
	fromTile, fromPoly, err := q.nav.GetTileAndPolyByRef(from)
	if err != nil {
		return nil, nil, err
	}
	if _, _, err := q.nav.GetTileAndPolyByRef(to); err != nil {
		return nil, nil, err
	}
	return q.getPortalPoints(from, fromPoly, fromTile, to)
}

// Returns edge mid point between two polygons.
func (q *NavMeshQuery) getEdgeMidPoint(from PolyRef, fromPoly *Poly, fromTile *MeshTile, to PolyRef, mid []float32) error {
	left, right, err := q.getPortalPoints(from, fromPoly, fromTile, to)
	if err != nil {
		return err
	}
	mid[0] = (left[0] + right[0]) * 0.5
	mid[1] = (left[1] + right[1]) * 0.5
	mid[2] = (left[2] + right[2]) * 0.5
	return nil
}

// polyCenter returns the vertex centroid of ref.
func (q *NavMeshQuery) polyCenter(ref PolyRef) []float32 {
	tile, poly := q.nav.getTileAndPolyByRefUnsafe(ref)
	return common.CalcPolyCenter(poly.Verts[:], int(poly.VertCount), tile.Verts)
}

// / Finds a path from the start polygon to the end polygon.
// / The search expands polygon edge midpoints, guided by the straight line
// / distance to the centroid of the end polygon; equal totals are expanded in
// / the order the nodes were discovered.
// / If the end polygon cannot be reached the path to the polygon closest to it
// / is returned together with ErrPartialResult.
func (q *NavMeshQuery) FindPath(startRef, endRef PolyRef, startPos, endPos []float32, filter *QueryFilter, maxPath int) ([]PolyRef, error) {
	// Validate input
	if maxPath <= 0 || !common.Visfinite(startPos) || !common.Visfinite(endPos) {
		return nil, ErrInvalidParam
	}
	if filter == nil {
		filter = NewQueryFilter()
	}
	if !q.IsValidPolyRef(startRef, filter) || !q.IsValidPolyRef(endRef, filter) {
		return nil, fmt.Errorf("%w: start %#x end %#x", ErrInvalidParam, uint32(startRef), uint32(endRef))
	}

	if startRef == endRef {
		return []PolyRef{startRef}, nil
	}

	q.nodePool.Clear()
	q.openList.clear()
	q.seq = 0

	goal := q.polyCenter(endRef)

	startNode := q.nodePool.GetNode(startRef, 0)
	common.Vcopy(startNode.Pos[:], startPos)
	startNode.Pidx = 0
	startNode.Cost = 0
	startNode.Total = common.Vdist(startPos, goal) * H_SCALE
	startNode.ID = startRef
	startNode.Flags = DT_NODE_OPEN
	startNode.seq = q.nextSeq()
	q.openList.push(startNode)

	lastBestNode := startNode
	lastBestNodeCost := startNode.Total

	outOfNodes := false
	for !q.openList.empty() {
		// Remove node from open list and put it in closed list.
		bestNode := q.openList.pop()
		bestNode.Flags &^= DT_NODE_OPEN
		bestNode.Flags |= DT_NODE_CLOSED

		// Reached the goal, stop searching.
		if bestNode.ID == endRef {
			lastBestNode = bestNode
			break
		}

		// Get current poly and tile.
		// The API input has been checked already, skip checking internal data.
		bestRef := bestNode.ID
		bestTile, bestPoly := q.nav.getTileAndPolyByRefUnsafe(bestRef)

		// Get parent poly and tile.
		var parentRef PolyRef
		if bestNode.Pidx != 0 {
			parentRef = q.nodePool.GetNodeAtIdx(bestNode.Pidx).ID
		}

		for i := bestPoly.FirstLink; i != DT_NULL_LINK; i = bestTile.Links[i].Next {
			neighbourRef := bestTile.Links[i].Ref

			// Skip invalid ids and do not expand back to where we came from.
			if neighbourRef == 0 || neighbourRef == parentRef {
				continue
			}

			// Get neighbour poly and tile.
			neighbourTile, neighbourPoly := q.nav.getTileAndPolyByRefUnsafe(neighbourRef)
			if !filter.PassFilter(neighbourRef, neighbourTile, neighbourPoly) {
				continue
			}

			// deal explicitly with crossing tile boundaries
			var crossSide uint8
			if bestTile.Links[i].Side != dtInternalLinkSide {
				crossSide = bestTile.Links[i].Side >> 1
			}

			// get the node
			neighbourNode := q.nodePool.GetNode(neighbourRef, crossSide)
			if neighbourNode == nil {
				outOfNodes = true
				continue
			}

			// If the node is visited the first time, calculate node position.
			if neighbourNode.Flags == 0 {
				if err := q.getEdgeMidPoint(bestRef, bestPoly, bestTile, neighbourRef, neighbourNode.Pos[:]); err != nil {
					continue
				}
				neighbourNode.seq = q.nextSeq()
			}

			// Calculate cost and heuristic.
			var cost, heuristic float32

			// Special case for last node.
			if neighbourRef == endRef {
				// Cost
				curCost := filter.GetCost(bestNode.Pos[:], neighbourNode.Pos[:], bestPoly)
				endCost := filter.GetCost(neighbourNode.Pos[:], endPos, neighbourPoly)
				cost = bestNode.Cost + curCost + endCost
				heuristic = 0
			} else {
				// Cost
				curCost := filter.GetCost(bestNode.Pos[:], neighbourNode.Pos[:], bestPoly)
				cost = bestNode.Cost + curCost
				heuristic = common.Vdist(neighbourNode.Pos[:], goal) * H_SCALE
			}

			total := cost + heuristic

			// The node is already in open list and the new result is worse, skip.
			if neighbourNode.Flags&DT_NODE_OPEN != 0 && total >= neighbourNode.Total {
				continue
			}
			// The node is already visited and process, and the new result is worse, skip.
			if neighbourNode.Flags&DT_NODE_CLOSED != 0 && total >= neighbourNode.Total {
				continue
			}

			// Add or update the node.
			neighbourNode.Pidx = q.nodePool.GetNodeIdx(bestNode)
			neighbourNode.ID = neighbourRef
			neighbourNode.Flags &^= DT_NODE_CLOSED
			neighbourNode.Cost = cost
			neighbourNode.Total = total

			if neighbourNode.Flags&DT_NODE_OPEN != 0 {
				// Already in open, update node location.
				q.openList.modify(neighbourNode)
			} else {
				// Put the node in open list.
				neighbourNode.Flags |= DT_NODE_OPEN
				q.openList.push(neighbourNode)
			}

			// Update nearest node to target so far.
			if heuristic < lastBestNodeCost {
				lastBestNodeCost = heuristic
				lastBestNode = neighbourNode
			}
		}
	}

	path, err := q.getPathToNode(lastBestNode, maxPath)
	if lastBestNode.ID != endRef {
		err = multierr.Append(err, ErrPartialResult)
	}
	if outOfNodes {
		err = multierr.Append(err, ErrOutOfNodes)
	}
	return path, err
}

func (q *NavMeshQuery) nextSeq() uint32 {
	q.seq++
	return q.seq
}

// getPathToNode walks the parent chain of endNode. When the chain is longer
// than maxPath the start of the path is kept.
func (q *NavMeshQuery) getPathToNode(endNode *Node, maxPath int) ([]PolyRef, error) {
	// Find the length of the entire path.
	length := 0
	for cur := endNode; cur != nil; cur = q.nodePool.GetNodeAtIdx(cur.Pidx) {
		length++
	}

	// If the path cannot be fully stored then advance to the last node we will be able to store.
	curNode := endNode
	writeCount := length
	for ; writeCount > maxPath; writeCount-- {
		curNode = q.nodePool.GetNodeAtIdx(curNode.Pidx)
	}

	// Write path
	path := make([]PolyRef, writeCount)
	for i := writeCount - 1; i >= 0; i-- {
		path[i] = curNode.ID
		curNode = q.nodePool.GetNodeAtIdx(curNode.Pidx)
	}
	if length > maxPath {
		return path, ErrBufferTooSmall
	}
	return path, nil
}

// straightPath collects funnel output up to a fixed number of vertices.
type straightPath struct {
	points    []StraightPathPoint
	max       int
	truncated bool
}

// appendVertex adds pos unless it repeats the last vertex, in which case the
// last vertex takes over flags and ref. It reports whether the path is complete.
func (sp *straightPath) appendVertex(pos []float32, flags uint8, ref PolyRef) bool {
	if n := len(sp.points); n > 0 && common.Vequal(sp.points[n-1].Pos[:], pos) {
		// The vertices are equal, update flags and poly.
		sp.points[n-1].Flags = flags
		sp.points[n-1].Ref = ref
		return false
	}
	// Append new vertex.
	sp.points = append(sp.points, StraightPathPoint{Pos: [3]float32{pos[0], pos[1], pos[2]}, Flags: flags, Ref: ref})

	// If reached end of path, return.
	if flags == DT_STRAIGHTPATH_END {
		return true
	}
	// If there is no space to append more vertices, return.
	if len(sp.points) >= sp.max {
		sp.truncated = true
		return true
	}
	return false
}

func (sp *straightPath) result() ([]StraightPathPoint, error) {
	if sp.truncated {
		return sp.points, ErrBufferTooSmall
	}
	return sp.points, nil
}

// / Finds the straight path from the start to the end position within the
// / polygon corridor, keeping at most maxStraightPath vertices.
// / A capped path is returned together with ErrBufferTooSmall.
func (q *NavMeshQuery) FindStraightPath(startPos, endPos []float32, path []PolyRef, maxStraightPath int) ([]StraightPathPoint, error) {
	if !common.Visfinite(startPos) || !common.Visfinite(endPos) || len(path) == 0 || path[0] == 0 || maxStraightPath <= 0 {
		return nil, ErrInvalidParam
	}
	sp := &straightPath{max: maxStraightPath}

	closestStartPos, err := q.ClosestPointOnPolyBoundary(path[0], startPos)
	if err != nil {
		return nil, err
	}
	closestEndPos, err := q.ClosestPointOnPolyBoundary(path[len(path)-1], endPos)
	if err != nil {
		return nil, err
	}

	// Add start point.
	if sp.appendVertex(closestStartPos, DT_STRAIGHTPATH_START, path[0]) {
		return sp.result()
	}

	pathSize := len(path)
	if pathSize > 1 {
		portalApex := make([]float32, 3)
		portalLeft := make([]float32, 3)
		portalRight := make([]float32, 3)
		common.Vcopy(portalApex, closestStartPos)
		common.Vcopy(portalLeft, portalApex)
		common.Vcopy(portalRight, portalApex)
		apexIndex := 0
		leftIndex := 0
		rightIndex := 0

		leftPolyRef := path[0]
		rightPolyRef := path[0]

		for i := 0; i < pathSize; i++ {
			var left, right []float32
			if i+1 < pathSize {
				// Next portal.
				left, right, err = q.GetPortalPoints(path[i], path[i+1])
				if err != nil {
					// Failed to get portal points, in practice this means that path[i+1] is invalid polygon.
					// Clamp the end point to path[i], and return the path so far.
					closestEndPos, err = q.ClosestPointOnPolyBoundary(path[i], endPos)
					if err != nil {
						// This should only happen when the first polygon is invalid.
						return nil, err
					}
					sp.appendVertex(closestEndPos, 0, path[i])
					points, err := sp.result()
					return points, multierr.Append(err, ErrPartialResult)
				}

				// If starting really close the portal, advance.
				if i == 0 {
					if d, _ := common.DistancePtSegSqr2D(portalApex, left, right); d < common.Sqr(float32(0.001)) {
						continue
					}
				}
			} else {
				// End of the path.
				left = closestEndPos
				right = closestEndPos
			}

			// Right vertex.
			if common.TriArea2D(portalApex, portalRight, right) <= 0.0 {
				if common.Vequal(portalApex, portalRight) || common.TriArea2D(portalApex, portalLeft, right) > 0.0 {
					common.Vcopy(portalRight, right)
					rightPolyRef = 0
					if i+1 < pathSize {
						rightPolyRef = path[i+1]
					}
					rightIndex = i
				} else {
					common.Vcopy(portalApex, portalLeft)
					apexIndex = leftIndex

					var flags uint8
					if leftPolyRef == 0 {
						flags = DT_STRAIGHTPATH_END
					}
					// Append or update vertex
					if sp.appendVertex(portalApex, flags, leftPolyRef) {
						return sp.result()
					}

					common.Vcopy(portalLeft, portalApex)
					common.Vcopy(portalRight, portalApex)
					leftIndex = apexIndex
					rightIndex = apexIndex

					// Restart
					i = apexIndex
					continue
				}
			}

			// Left vertex.
			if common.TriArea2D(portalApex, portalLeft, left) >= 0.0 {
				if common.Vequal(portalApex, portalLeft) || common.TriArea2D(portalApex, portalRight, left) < 0.0 {
					common.Vcopy(portalLeft, left)
					leftPolyRef = 0
					if i+1 < pathSize {
						leftPolyRef = path[i+1]
					}
					leftIndex = i
				} else {
					common.Vcopy(portalApex, portalRight)
					apexIndex = rightIndex

					var flags uint8
					if rightPolyRef == 0 {
						flags = DT_STRAIGHTPATH_END
					}
					// Append or update vertex
					if sp.appendVertex(portalApex, flags, rightPolyRef) {
						return sp.result()
					}

					common.Vcopy(portalLeft, portalApex)
					common.Vcopy(portalRight, portalApex)
					leftIndex = apexIndex
					rightIndex = apexIndex

					// Restart
					i = apexIndex
					continue
				}
			}
		}
	}

	sp.appendVertex(closestEndPos, DT_STRAIGHTPATH_END, 0)
	return sp.result()
}

// ComputePath runs the full query: nearest polygons of start and end, the
// polygon search and the funnel. A failure at any stage yields an empty Path.
// A partial polygon path still produces points, flagged with ErrPartialResult.
func (q *NavMeshQuery) ComputePath(start, end common.Vec3, halfExtents []float32, filter *QueryFilter, maxPath, maxStraightPath int) (Path, error) {
	if filter == nil {
		filter = NewQueryFilter()
	}
	startRef, startPt, err := q.FindNearestPoly(start[:], halfExtents, filter)
	if err != nil {
		return Path{}, fmt.Errorf("start: %w", err)
	}
	endRef, endPt, err := q.FindNearestPoly(end[:], halfExtents, filter)
	if err != nil {
		return Path{}, fmt.Errorf("end: %w", err)
	}

	polys, pathErr := q.FindPath(startRef, endRef, startPt, endPt, filter, maxPath)
	if errors.Is(pathErr, ErrFailure) || len(polys) == 0 {
		return Path{}, multierr.Append(pathErr, ErrNoPath)
	}
	if errors.Is(pathErr, ErrOutOfNodes) {
		logger.Debug("ComputePath: search ran out of %d nodes", q.nodePool.MaxNodes())
	}

	// A partial corridor ends at the polygon closest to the goal.
	if polys[len(polys)-1] != endRef {
		if endPt, _, err = q.nav.ClosestPointOnPoly(polys[len(polys)-1], end[:]); err != nil {
			return Path{}, err
		}
	}

	corners, err := q.FindStraightPath(startPt, endPt, polys, maxStraightPath)
	if errors.Is(err, ErrFailure) {
		return Path{}, err
	}
	path := Path{Points: make([]common.Vec3, 0, len(corners))}
	for _, c := range corners {
		path.Points = append(path.Points, common.Vec3(c.Pos))
	}
	return path, multierr.Combine(pathErr, err)
}
