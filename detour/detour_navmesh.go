package detour

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/gorustyt/gonavmesh/common"
)

// / A navigation mesh based on tiles of convex polygons.
// / Polygons are addressed by PolyRef, which packs the tile salt, the tile
// / index and the polygon index; a ref taken before a tile was removed fails
// / to resolve afterwards.
type NavMesh struct {
	params                NavMeshParams ///< Current initialization params.
	orig                  [3]float32    ///< Origin of the tile (0,0)
	tileWidth, tileHeight float32       ///< Dimensions of each tile.
	maxTiles              int           ///< Max number of tiles.
	tileLutMask           int           ///< Tile hash lookup mask.
	posLookup             []*MeshTile   ///< Tile hash lookup.
	nextFree              *MeshTile     ///< Freelist of tiles.
	tiles                 []MeshTile    ///< List of tiles.

	saltBits uint32 ///< Number of salt bits in the tile ID.
	tileBits uint32 ///< Number of tile bits in the tile ID.
	polyBits uint32 ///< Number of poly bits in the tile ID.
}

// NewNavMesh initializes an empty tiled navigation mesh.
func NewNavMesh(params *NavMeshParams) (*NavMesh, error) {
	if params.MaxTiles <= 0 || params.MaxPolys <= 0 || params.TileWidth <= 0 || params.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: nav mesh params %+v", ErrInvalidParam, *params)
	}
	mesh := &NavMesh{
		params:     *params,
		orig:       params.Orig,
		tileWidth:  params.TileWidth,
		tileHeight: params.TileHeight,
		maxTiles:   params.MaxTiles,
	}
	// Init tiles
	lutSize := int(common.NextPow2(uint32(params.MaxTiles / 4)))
	if lutSize == 0 {
		lutSize = 1
	}
	mesh.tileLutMask = lutSize - 1
	mesh.posLookup = make([]*MeshTile, lutSize)
	mesh.tiles = make([]MeshTile, params.MaxTiles)
	for i := params.MaxTiles - 1; i >= 0; i-- {
		mesh.tiles[i].Salt = 1
		mesh.tiles[i].next = mesh.nextFree
		mesh.nextFree = &mesh.tiles[i]
	}

	// Init ID generator values.
	mesh.tileBits = common.Ilog2(common.NextPow2(uint32(params.MaxTiles)))
	mesh.polyBits = common.Ilog2(common.NextPow2(uint32(params.MaxPolys)))
	// Only allow 31 salt bits, since the salt mask is calculated using 32bit uint and it will overflow.
	mesh.saltBits = min(31, 32-mesh.tileBits-mesh.polyBits)
	if mesh.tileBits+mesh.polyBits > 32 || mesh.saltBits < 10 {
		return nil, fmt.Errorf("%w: %d tiles with %d polys leave %d salt bits", ErrInvalidParam, params.MaxTiles, params.MaxPolys, mesh.saltBits)
	}
	return mesh, nil
}

// NewSingleTileNavMesh creates a one-tile navigation mesh holding data.
func NewSingleTileNavMesh(data *NavMeshData) (*NavMesh, error) {
	h := &data.Header
	params := &NavMeshParams{
		Orig:       h.Bmin,
		TileWidth:  h.Bmax[0] - h.Bmin[0],
		TileHeight: h.Bmax[2] - h.Bmin[2],
		MaxTiles:   1,
		MaxPolys:   h.PolyCount,
	}
	mesh, err := NewNavMesh(params)
	if err != nil {
		return nil, err
	}
	if _, err := mesh.AddTile(data, 0); err != nil {
		return nil, err
	}
	return mesh, nil
}

func (mesh *NavMesh) Params() NavMeshParams { return mesh.params }
func (mesh *NavMesh) MaxTiles() int         { return mesh.maxTiles }

// Tile returns the tile slot i, which may be empty (nil Header).
func (mesh *NavMesh) Tile(i int) *MeshTile { return &mesh.tiles[i] }

/// @{
/// @name Encoding and Decoding

// / Derives a standard polygon reference.
func (mesh *NavMesh) EncodePolyId(salt, it, ip uint32) PolyRef {
	return PolyRef(salt<<(mesh.polyBits+mesh.tileBits) | it<<mesh.polyBits | ip)
}

// / Decodes a standard polygon reference.
func (mesh *NavMesh) DecodePolyId(ref PolyRef) (salt, it, ip uint32) {
	saltMask := uint32(1)<<mesh.saltBits - 1
	tileMask := uint32(1)<<mesh.tileBits - 1
	polyMask := uint32(1)<<mesh.polyBits - 1
	salt = (uint32(ref) >> (mesh.polyBits + mesh.tileBits)) & saltMask
	it = (uint32(ref) >> mesh.polyBits) & tileMask
	ip = uint32(ref) & polyMask
	return
}

func (mesh *NavMesh) DecodePolyIdSalt(ref PolyRef) uint32 {
	saltMask := uint32(1)<<mesh.saltBits - 1
	return (uint32(ref) >> (mesh.polyBits + mesh.tileBits)) & saltMask
}

func (mesh *NavMesh) DecodePolyIdTile(ref PolyRef) uint32 {
	tileMask := uint32(1)<<mesh.tileBits - 1
	return (uint32(ref) >> mesh.polyBits) & tileMask
}

func (mesh *NavMesh) DecodePolyIdPoly(ref PolyRef) uint32 {
	polyMask := uint32(1)<<mesh.polyBits - 1
	return uint32(ref) & polyMask
}

/// @}

func (mesh *NavMesh) tileIndex(tile *MeshTile) uint32 {
	return uint32((uintptr(unsafe.Pointer(tile)) - uintptr(unsafe.Pointer(&mesh.tiles[0]))) / unsafe.Sizeof(MeshTile{}))
}

// / Gets the tile reference for the specified tile.
func (mesh *NavMesh) GetTileRef(tile *MeshTile) TileRef {
	if tile == nil || tile.Header == nil {
		return 0
	}
	return TileRef(mesh.EncodePolyId(tile.Salt, mesh.tileIndex(tile), 0))
}

// / Gets the polygon reference for the tile's base polygon.
func (mesh *NavMesh) GetPolyRefBase(tile *MeshTile) PolyRef {
	if tile == nil || tile.Header == nil {
		return 0
	}
	return mesh.EncodePolyId(tile.Salt, mesh.tileIndex(tile), 0)
}

// / Gets the tile for the specified tile reference, or nil when the reference
// / is stale or invalid.
func (mesh *NavMesh) GetTileByRef(ref TileRef) *MeshTile {
	if ref == 0 {
		return nil
	}
	tileIndex := mesh.DecodePolyIdTile(PolyRef(ref))
	tileSalt := mesh.DecodePolyIdSalt(PolyRef(ref))
	if int(tileIndex) >= mesh.maxTiles {
		return nil
	}
	tile := &mesh.tiles[tileIndex]
	if tile.Salt != tileSalt || tile.Header == nil {
		return nil
	}
	return tile
}

// / Calculates the tile grid location for the specified world position.
func (mesh *NavMesh) CalcTileLoc(pos []float32) (tx, ty int) {
	tx = int(math.Floor(float64((pos[0] - mesh.orig[0]) / mesh.tileWidth)))
	ty = int(math.Floor(float64((pos[2] - mesh.orig[2]) / mesh.tileHeight)))
	return tx, ty
}

// / Gets the tile at the specified grid location.
func (mesh *NavMesh) GetTileAt(x, y, layer int) *MeshTile {
	// Find tile based on hash.
	h := common.ComputeTileHash(x, y, mesh.tileLutMask)
	for tile := mesh.posLookup[h]; tile != nil; tile = tile.next {
		if tile.Header != nil && tile.Header.X == x && tile.Header.Y == y && tile.Header.Layer == layer {
			return tile
		}
	}
	return nil
}

// / Gets all tile layers at the specified grid location.
func (mesh *NavMesh) GetTilesAt(x, y int) []*MeshTile {
	var tiles []*MeshTile
	h := common.ComputeTileHash(x, y, mesh.tileLutMask)
	for tile := mesh.posLookup[h]; tile != nil; tile = tile.next {
		if tile.Header != nil && tile.Header.X == x && tile.Header.Y == y {
			tiles = append(tiles, tile)
		}
	}
	return tiles
}

func (mesh *NavMesh) getNeighbourTilesAt(x, y, side int) []*MeshTile {
	nx, ny := x, y
	switch side {
	case 0:
		nx++
	case 1:
		nx++
		ny++
	case 2:
		ny++
	case 3:
		nx--
		ny++
	case 4:
		nx--
	case 5:
		nx--
		ny--
	case 6:
		ny--
	case 7:
		nx++
		ny--
	}
	return mesh.GetTilesAt(nx, ny)
}

// / Adds a tile to the navigation mesh and links it with its neighbours.
// /  @param[in]		data		Data for the new tile mesh.
// /  @param[in]		lastRef		The desired reference for the tile. (When reloading a tile.) [opt] [Default: 0]
func (mesh *NavMesh) AddTile(data *NavMeshData, lastRef TileRef) (TileRef, error) {
	header := data.Header
	// Make sure the data is in right format.
	if header.Magic != DT_NAVMESH_MAGIC {
		return 0, ErrWrongMagic
	}
	if header.Version != DT_NAVMESH_VERSION {
		return 0, ErrWrongVersion
	}
	if header.PolyCount > 1<<mesh.polyBits {
		return 0, fmt.Errorf("%w: %d polys exceed %d", ErrInvalidParam, header.PolyCount, 1<<mesh.polyBits)
	}
	// Make sure the location is free.
	if mesh.GetTileAt(header.X, header.Y, header.Layer) != nil {
		return 0, fmt.Errorf("%w: (%d,%d,%d)", ErrOccupied, header.X, header.Y, header.Layer)
	}

	// Allocate a tile.
	var tile *MeshTile
	if lastRef == 0 {
		if mesh.nextFree != nil {
			tile = mesh.nextFree
			mesh.nextFree = tile.next
			tile.next = nil
		}
	} else {
		// Try to relocate the tile to specific index with same salt.
		tileIndex := int(mesh.DecodePolyIdTile(PolyRef(lastRef)))
		if tileIndex >= mesh.maxTiles {
			return 0, fmt.Errorf("%w: tile index %d", ErrOutOfMemory, tileIndex)
		}
		// Try to find the specific tile id from the free list.
		target := &mesh.tiles[tileIndex]
		var prev *MeshTile
		tile = mesh.nextFree
		for tile != nil && tile != target {
			prev = tile
			tile = tile.next
		}
		// Could not find the correct location.
		if tile != target {
			return 0, fmt.Errorf("%w: tile index %d in use", ErrOutOfMemory, tileIndex)
		}
		// Remove from freelist
		if prev == nil {
			mesh.nextFree = tile.next
		} else {
			prev.next = tile.next
		}
		// Restore salt.
		tile.Salt = mesh.DecodePolyIdSalt(PolyRef(lastRef))
	}

	// Make sure we could allocate a tile.
	if tile == nil {
		return 0, fmt.Errorf("%w: all %d tiles in use", ErrOutOfMemory, mesh.maxTiles)
	}

	// Insert tile into the position lut.
	h := common.ComputeTileHash(header.X, header.Y, mesh.tileLutMask)
	tile.next = mesh.posLookup[h]
	mesh.posLookup[h] = tile

	tile.Data = data
	tile.Header = &data.Header
	tile.Polys = make([]Poly, len(data.Polys))
	copy(tile.Polys, data.Polys)
	tile.Verts = data.Verts
	tile.DetailMeshes = data.DetailMeshes
	tile.DetailVerts = data.DetailVerts
	tile.DetailTris = data.DetailTris

	// Build links freelist
	tile.Links = make([]Link, header.MaxLinkCount)
	tile.linksFreeList = DT_NULL_LINK
	if header.MaxLinkCount > 0 {
		tile.linksFreeList = 0
		for i := 0; i < header.MaxLinkCount-1; i++ {
			tile.Links[i].Next = uint32(i + 1)
		}
		tile.Links[header.MaxLinkCount-1].Next = DT_NULL_LINK
	}

	mesh.connectIntLinks(tile)

	// Connect with layers in current tile.
	for _, nei := range mesh.GetTilesAt(header.X, header.Y) {
		if nei == tile {
			continue
		}
		mesh.connectExtLinks(tile, nei, -1)
		mesh.connectExtLinks(nei, tile, -1)
	}

	// Connect with neighbour tiles.
	for i := 0; i < 8; i++ {
		for _, nei := range mesh.getNeighbourTilesAt(header.X, header.Y, i) {
			mesh.connectExtLinks(tile, nei, i)
			mesh.connectExtLinks(nei, tile, OppositeTile(i))
		}
	}
	return mesh.GetTileRef(tile), nil
}

// / Removes the specified tile from the navigation mesh.
// / The tile salt is bumped so that references into the old tile go stale.
func (mesh *NavMesh) RemoveTile(ref TileRef) (*NavMeshData, error) {
	if ref == 0 {
		return nil, ErrInvalidParam
	}
	tileIndex := mesh.DecodePolyIdTile(PolyRef(ref))
	tileSalt := mesh.DecodePolyIdSalt(PolyRef(ref))
	if int(tileIndex) >= mesh.maxTiles {
		return nil, fmt.Errorf("%w: tile index %d", ErrInvalidParam, tileIndex)
	}
	tile := &mesh.tiles[tileIndex]
	if tile.Salt != tileSalt || tile.Header == nil {
		return nil, ErrStaleRef
	}

	// Remove tile from hash lookup.
	h := common.ComputeTileHash(tile.Header.X, tile.Header.Y, mesh.tileLutMask)
	var prev *MeshTile
	for cur := mesh.posLookup[h]; cur != nil; cur = cur.next {
		if cur == tile {
			if prev != nil {
				prev.next = cur.next
			} else {
				mesh.posLookup[h] = cur.next
			}
			break
		}
		prev = cur
	}

	// Disconnect from other layers in current tile.
	for _, nei := range mesh.GetTilesAt(tile.Header.X, tile.Header.Y) {
		if nei == tile {
			continue
		}
		mesh.unconnectLinks(nei, tile)
	}
	// Disconnect from neighbour tiles.
	for i := 0; i < 8; i++ {
		for _, nei := range mesh.getNeighbourTilesAt(tile.Header.X, tile.Header.Y, i) {
			mesh.unconnectLinks(nei, tile)
		}
	}

	data := tile.Data
	// Reset tile.
	tile.Header = nil
	tile.Data = nil
	tile.Polys = nil
	tile.Verts = nil
	tile.Links = nil
	tile.DetailMeshes = nil
	tile.DetailVerts = nil
	tile.DetailTris = nil
	tile.linksFreeList = 0

	// Update salt, salt should never be zero.
	tile.Salt = (tile.Salt + 1) & (uint32(1)<<mesh.saltBits - 1)
	if tile.Salt == 0 {
		tile.Salt++
	}

	// Add to free list.
	tile.next = mesh.nextFree
	mesh.nextFree = tile
	return data, nil
}

func (mesh *NavMesh) connectIntLinks(tile *MeshTile) {
	base := mesh.GetPolyRefBase(tile)
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		poly.FirstLink = DT_NULL_LINK

		// Build edge links backwards so that the links will be
		// in the linked list from lowest index to highest.
		for j := int(poly.VertCount) - 1; j >= 0; j-- {
			// Skip hard and non-internal edges.
			if poly.Neis[j] == 0 || poly.Neis[j]&DT_EXT_LINK != 0 {
				continue
			}
			idx := tile.allocLink()
			if idx == DT_NULL_LINK {
				continue
			}
			tile.Links[idx] = Link{
				Ref:  base | PolyRef(poly.Neis[j]-1),
				Edge: uint8(j),
				Side: dtInternalLinkSide,
				Next: poly.FirstLink,
			}
			poly.FirstLink = idx
		}
	}
}

func (mesh *NavMesh) connectExtLinks(tile, target *MeshTile, side int) {
	if tile == nil || target == nil {
		return
	}
	// Connect border links.
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		nv := int(poly.VertCount)
		for j := 0; j < nv; j++ {
			// Skip non-portal edges.
			if poly.Neis[j]&DT_EXT_LINK == 0 {
				continue
			}
			dir := int(poly.Neis[j] & 0xff)
			if side != -1 && dir != side {
				continue
			}
			// Create new links
			va := poly.vert(tile, j)
			vb := poly.vert(tile, (j+1)%nv)
			neis, neia := mesh.findConnectingPolys(va, vb, target, OppositeTile(dir), 4)
			for k := range neis {
				idx := tile.allocLink()
				if idx == DT_NULL_LINK {
					continue
				}
				link := &tile.Links[idx]
				*link = Link{
					Ref:  neis[k],
					Edge: uint8(j),
					Side: uint8(dir),
					Next: poly.FirstLink,
				}
				poly.FirstLink = idx

				// Compress portal limits to a byte value.
				var tmin, tmax float32
				if dir == 0 || dir == 4 {
					tmin = (neia[k*2+0] - va[2]) / (vb[2] - va[2])
					tmax = (neia[k*2+1] - va[2]) / (vb[2] - va[2])
				} else {
					tmin = (neia[k*2+0] - va[0]) / (vb[0] - va[0])
					tmax = (neia[k*2+1] - va[0]) / (vb[0] - va[0])
				}
				if tmin > tmax {
					tmin, tmax = tmax, tmin
				}
				link.Bmin = uint8(math.Round(float64(common.Clamp(tmin, 0, 1) * 255)))
				link.Bmax = uint8(math.Round(float64(common.Clamp(tmax, 0, 1) * 255)))
			}
		}
	}
}

func getSlabCoord(va []float32, side int) float32 {
	if side == 0 || side == 4 {
		return va[0]
	} else if side == 2 || side == 6 {
		return va[2]
	}
	return 0
}

func calcSlabEndPoints(va, vb []float32, side int) (bmin, bmax [2]float32) {
	if side == 0 || side == 4 {
		if va[2] < vb[2] {
			return [2]float32{va[2], va[1]}, [2]float32{vb[2], vb[1]}
		}
		return [2]float32{vb[2], vb[1]}, [2]float32{va[2], va[1]}
	} else if side == 2 || side == 6 {
		if va[0] < vb[0] {
			return [2]float32{va[0], va[1]}, [2]float32{vb[0], vb[1]}
		}
		return [2]float32{vb[0], vb[1]}, [2]float32{va[0], va[1]}
	}
	return
}

func overlapSlabs(amin, amax, bmin, bmax [2]float32, px, py float32) bool {
	// Check for horizontal overlap.
	// The segment is shrunken a little so that slabs which touch
	// at end points are not connected.
	minx := max(amin[0]+px, bmin[0]+px)
	maxx := min(amax[0]-px, bmax[0]-px)
	if minx > maxx {
		return false
	}

	// Check vertical overlap.
	ad := (amax[1] - amin[1]) / (amax[0] - amin[0])
	ak := amin[1] - ad*amin[0]
	bd := (bmax[1] - bmin[1]) / (bmax[0] - bmin[0])
	bk := bmin[1] - bd*bmin[0]
	aminy := ad*minx + ak
	amaxy := ad*maxx + ak
	bminy := bd*minx + bk
	bmaxy := bd*maxx + bk
	dmin := bminy - aminy
	dmax := bmaxy - amaxy

	// Crossing segments always overlap.
	if dmin*dmax < 0 {
		return true
	}

	// Check for overlap at endpoints.
	thr := common.Sqr(py * 2)
	return dmin*dmin <= thr || dmax*dmax <= thr
}

// findConnectingPolys returns the polygons of tile whose portal edges on side
// overlap the segment va-vb, with the overlapping range of each.
func (mesh *NavMesh) findConnectingPolys(va, vb []float32, tile *MeshTile, side, maxcon int) (con []PolyRef, conarea []float32) {
	amin, amax := calcSlabEndPoints(va, vb, side)
	apos := getSlabCoord(va, side)

	// Remove links pointing to 'side' and compact the links array.
	m := uint16(DT_EXT_LINK | side)
	base := mesh.GetPolyRefBase(tile)
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		nv := int(poly.VertCount)
		for j := 0; j < nv; j++ {
			// Skip edges which do not point to the right side.
			if poly.Neis[j] != m {
				continue
			}
			vc := poly.vert(tile, j)
			vd := poly.vert(tile, (j+1)%nv)
			bpos := getSlabCoord(vc, side)

			// Segments are not close enough.
			if common.Abs(apos-bpos) > 0.01 {
				continue
			}

			// Check if the segments touch.
			bmin, bmax := calcSlabEndPoints(vc, vd, side)
			if !overlapSlabs(amin, amax, bmin, bmax, 0.01, tile.Header.WalkableClimb) {
				continue
			}

			// Add return value.
			if len(con) < maxcon {
				conarea = append(conarea, max(amin[0], bmin[0]), min(amax[0], bmax[0]))
				con = append(con, base|PolyRef(i))
			}
			break
		}
	}
	return con, conarea
}

// unconnectLinks drops every link of tile that points into target.
func (mesh *NavMesh) unconnectLinks(tile, target *MeshTile) {
	if tile == nil || target == nil {
		return
	}
	targetNum := mesh.tileIndex(target)
	for i := range tile.Polys {
		poly := &tile.Polys[i]
		j := poly.FirstLink
		pj := uint32(DT_NULL_LINK)
		for j != DT_NULL_LINK {
			if mesh.DecodePolyIdTile(tile.Links[j].Ref) == targetNum {
				// Remove link.
				nj := tile.Links[j].Next
				if pj == DT_NULL_LINK {
					poly.FirstLink = nj
				} else {
					tile.Links[pj].Next = nj
				}
				tile.freeLink(j)
				j = nj
			} else {
				// Advance
				pj = j
				j = tile.Links[j].Next
			}
		}
	}
}

// / Gets the tile and polygon for the specified polygon reference.
func (mesh *NavMesh) GetTileAndPolyByRef(ref PolyRef) (*MeshTile, *Poly, error) {
	if ref == 0 {
		return nil, nil, ErrInvalidParam
	}
	salt, it, ip := mesh.DecodePolyId(ref)
	if int(it) >= mesh.maxTiles {
		return nil, nil, fmt.Errorf("%w: tile index %d", ErrInvalidParam, it)
	}
	tile := &mesh.tiles[it]
	if tile.Salt != salt || tile.Header == nil {
		return nil, nil, fmt.Errorf("%w: %#x", ErrStaleRef, uint32(ref))
	}
	if int(ip) >= tile.Header.PolyCount {
		return nil, nil, fmt.Errorf("%w: poly index %d", ErrInvalidParam, ip)
	}
	return tile, &tile.Polys[ip], nil
}

// getTileAndPolyByRefUnsafe skips validation; use only with refs that came
// out of the mesh in the current query.
func (mesh *NavMesh) getTileAndPolyByRefUnsafe(ref PolyRef) (*MeshTile, *Poly) {
	_, it, ip := mesh.DecodePolyId(ref)
	tile := &mesh.tiles[it]
	return tile, &tile.Polys[ip]
}

// / Checks the validity of a polygon reference.
func (mesh *NavMesh) IsValidPolyRef(ref PolyRef) bool {
	_, _, err := mesh.GetTileAndPolyByRef(ref)
	return err == nil
}

// PolyVerts copies the world-space vertices of poly into a flat slice.
func (mesh *NavMesh) PolyVerts(tile *MeshTile, poly *Poly) []float32 {
	verts := make([]float32, 0, int(poly.VertCount)*3)
	for i := 0; i < int(poly.VertCount); i++ {
		verts = append(verts, poly.vert(tile, i)...)
	}
	return verts
}

// getPolyHeight returns the detail-mesh height of poly at pos, or false when
// pos is outside the polygon on the xz-plane.
func (mesh *NavMesh) getPolyHeight(tile *MeshTile, poly *Poly, pos []float32) (float32, bool) {
	verts := mesh.PolyVerts(tile, poly)
	if !common.PointInPolygon(pos, verts, int(poly.VertCount)) {
		return 0, false
	}

	// Find height at the location.
	pd := &tile.DetailMeshes[tile.polyIndex(poly)]
	for j := 0; j < int(pd.TriCount); j++ {
		t := tile.DetailTris[(int(pd.TriBase)+j)*4:]
		a := tile.detailVert(poly, pd, t[0])
		b := tile.detailVert(poly, pd, t[1])
		c := tile.detailVert(poly, pd, t[2])
		if h, ok := common.ClosestHeightPointTriangle(pos, a, b, c); ok {
			return h, true
		}
	}

	// If all triangle checks failed above (can happen with degenerate triangles
	// or larger floating point values) the point is on an edge, so just select
	// closest.
	closest := mesh.closestPointOnDetailEdges(tile, poly, pos, false)
	return closest[1], true
}

// closestPointOnDetailEdges finds the closest point to pos on the detail
// triangle edges of poly.
func (mesh *NavMesh) closestPointOnDetailEdges(tile *MeshTile, poly *Poly, pos []float32, onlyBoundary bool) []float32 {
	pd := &tile.DetailMeshes[tile.polyIndex(poly)]
	const anyBoundaryEdge = DT_DETAIL_EDGE_BOUNDARY<<0 | DT_DETAIL_EDGE_BOUNDARY<<2 | DT_DETAIL_EDGE_BOUNDARY<<4

	dmin := float32(math.MaxFloat32)
	var tmin float32
	var pmin, pmax []float32
	for i := 0; i < int(pd.TriCount); i++ {
		tris := tile.DetailTris[(int(pd.TriBase)+i)*4:]
		if onlyBoundary && tris[3]&anyBoundaryEdge == 0 {
			continue
		}
		var v [3][]float32
		for j := 0; j < 3; j++ {
			v[j] = tile.detailVert(poly, pd, tris[j])
		}
		for k, j := 0, 2; k < 3; j, k = k, k+1 {
			if GetDetailTriEdgeFlags(tris[3], j)&DT_DETAIL_EDGE_BOUNDARY == 0 && (onlyBoundary || tris[j] < tris[k]) {
				// Only looking at boundary edges and this is internal, or
				// this is an inner edge that we will see again or have already seen.
				continue
			}
			d, t := common.DistancePtSegSqr2D(pos, v[j], v[k])
			if d < dmin {
				dmin = d
				tmin = t
				pmin = v[j]
				pmax = v[k]
			}
		}
	}
	closest := make([]float32, 3)
	if pmin == nil {
		common.Vcopy(closest, poly.vert(tile, 0))
		return closest
	}
	return common.Vlerp(closest, pmin, pmax, tmin)
}

// / Finds the closest point on the specified polygon.
// / posOverPoly reports whether pos lies above the polygon on the xz-plane.
func (mesh *NavMesh) ClosestPointOnPoly(ref PolyRef, pos []float32) (closest []float32, posOverPoly bool, err error) {
	tile, poly, err := mesh.GetTileAndPolyByRef(ref)
	if err != nil {
		return nil, false, err
	}
	closest = make([]float32, 3)
	common.Vcopy(closest, pos)
	if h, ok := mesh.getPolyHeight(tile, poly, pos); ok {
		closest[1] = h
		return closest, true, nil
	}
	return mesh.closestPointOnDetailEdges(tile, poly, pos, true), false, nil
}

// / Gets the height of the polygon at the provided position using the height
// / detail. Fails with ErrInvalidParam when pos is outside the polygon.
func (mesh *NavMesh) GetPolyHeight(ref PolyRef, pos []float32) (float32, error) {
	tile, poly, err := mesh.GetTileAndPolyByRef(ref)
	if err != nil {
		return 0, err
	}
	h, ok := mesh.getPolyHeight(tile, poly, pos)
	if !ok {
		return 0, fmt.Errorf("%w: position outside polygon", ErrInvalidParam)
	}
	return h, nil
}

// / Queries polygons within a tile whose bounds overlap the query box.
func (mesh *NavMesh) QueryPolygonsInTile(tile *MeshTile, qmin, qmax []float32, filter *QueryFilter) []PolyRef {
	var polys []PolyRef
	base := mesh.GetPolyRefBase(tile)
	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	for i := range tile.Polys {
		p := &tile.Polys[i]
		ref := base | PolyRef(i)
		if filter != nil && !filter.PassFilter(ref, tile, p) {
			continue
		}
		// Calc polygon bounds.
		common.Vcopy(bmin, p.vert(tile, 0))
		common.Vcopy(bmax, p.vert(tile, 0))
		for j := 1; j < int(p.VertCount); j++ {
			common.Vmin(bmin, p.vert(tile, j))
			common.Vmax(bmax, p.vert(tile, j))
		}
		if common.OverlapBounds(qmin, qmax, bmin, bmax) {
			polys = append(polys, ref)
		}
	}
	return polys
}

// / Sets the user defined flags for the specified polygon.
func (mesh *NavMesh) SetPolyFlags(ref PolyRef, flags uint16) error {
	_, poly, err := mesh.GetTileAndPolyByRef(ref)
	if err != nil {
		return err
	}
	poly.Flags = flags
	return nil
}

// / Gets the user defined flags for the specified polygon.
func (mesh *NavMesh) GetPolyFlags(ref PolyRef) (uint16, error) {
	_, poly, err := mesh.GetTileAndPolyByRef(ref)
	if err != nil {
		return 0, err
	}
	return poly.Flags, nil
}

// / Sets the user defined area for the specified polygon.
func (mesh *NavMesh) SetPolyArea(ref PolyRef, area uint8) error {
	if area >= DT_MAX_AREAS {
		return fmt.Errorf("%w: area %d", ErrInvalidParam, area)
	}
	_, poly, err := mesh.GetTileAndPolyByRef(ref)
	if err != nil {
		return err
	}
	poly.Area = area
	return nil
}

// / Gets the user defined area for the specified polygon.
func (mesh *NavMesh) GetPolyArea(ref PolyRef) (uint8, error) {
	_, poly, err := mesh.GetTileAndPolyByRef(ref)
	if err != nil {
		return 0, err
	}
	return poly.Area, nil
}

// PolyCount returns the number of polygons over all loaded tiles.
func (mesh *NavMesh) PolyCount() int {
	n := 0
	for i := range mesh.tiles {
		if mesh.tiles[i].Header != nil {
			n += mesh.tiles[i].Header.PolyCount
		}
	}
	return n
}

// TileCount returns the number of loaded tiles.
func (mesh *NavMesh) TileCount() int {
	n := 0
	for i := range mesh.tiles {
		if mesh.tiles[i].Header != nil {
			n++
		}
	}
	return n
}
