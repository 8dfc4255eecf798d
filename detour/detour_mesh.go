package detour

import "unsafe"

const (
	/// The maximum number of vertices per navigation polygon.
	DT_VERTS_PER_POLYGON = 6

	/// A magic number used to detect compatibility of navigation tile data.
	DT_NAVMESH_MAGIC = 'D'<<24 | 'N'<<16 | 'A'<<8 | 'V'

	/// A version number used to detect compatibility of navigation tile data.
	DT_NAVMESH_VERSION = 7

	/// A flag that indicates that an entity links to an external entity.
	/// (E.g. A polygon edge is a portal that links to another polygon.)
	DT_EXT_LINK = 0x8000

	/// A value that indicates the entity does not link to anything.
	DT_NULL_LINK = 0xffffffff

	/// The maximum number of user defined area ids.
	DT_MAX_AREAS = 64

	/// Detail triangle edge is part of the poly boundary.
	DT_DETAIL_EDGE_BOUNDARY = 0x01

	/// Link side value of links that stay inside one tile.
	dtInternalLinkSide = 0xff
)

// / Straight path vertex flags.
const (
	DT_STRAIGHTPATH_START = 0x01 ///< The vertex is the start position in the path.
	DT_STRAIGHTPATH_END   = 0x02 ///< The vertex is the end position in the path.
)

// / A handle to a polygon within a navigation mesh tile.
type PolyRef uint32

// / A handle to a tile within a navigation mesh.
type TileRef uint32

// / Defines a polygon within a MeshTile object.
type Poly struct {
	/// Index to first link in linked list. (Or #DT_NULL_LINK if there is no link.)
	FirstLink uint32

	/// The indices of the polygon's vertices.
	/// The actual vertices are located in MeshTile::Verts.
	Verts [DT_VERTS_PER_POLYGON]uint16

	/// Packed data representing neighbor polygons references and flags for each edge.
	/// Zero is a wall, idx+1 an internal neighbour, DT_EXT_LINK|side a tile portal.
	Neis [DT_VERTS_PER_POLYGON]uint16

	Flags     uint16 ///< The user defined polygon flags.
	VertCount uint8  ///< The number of vertices in the polygon.
	Area      uint8  ///< The user defined area id. [Limit: < #DT_MAX_AREAS]
}

// / Defines the location of detail sub-mesh data within a MeshTile.
type PolyDetail struct {
	VertBase  uint32 ///< The offset of the vertices in the MeshTile::DetailVerts array.
	TriBase   uint32 ///< The offset of the triangles in the MeshTile::DetailTris array.
	VertCount uint8  ///< The number of vertices in the sub-mesh.
	TriCount  uint8  ///< The number of triangles in the sub-mesh.
}

// / Defines a link between polygons.
type Link struct {
	Ref  PolyRef ///< Neighbour reference. (The neighbor that is linked to.)
	Next uint32  ///< Index of the next link.
	Edge uint8   ///< Index of the polygon edge that owns this link.
	Side uint8   ///< If a boundary link, defines on which side the link is.
	Bmin uint8   ///< If a boundary link, defines the minimum sub-edge area.
	Bmax uint8   ///< If a boundary link, defines the maximum sub-edge area.
}

// / Provides high level information related to a MeshTile object.
type MeshHeader struct {
	Magic           int32      ///< Tile magic number. (Used to identify the data format.)
	Version         int32      ///< Tile data format version number.
	X               int        ///< The x-position of the tile within the NavMesh tile grid. (x, y, layer)
	Y               int        ///< The y-position of the tile within the NavMesh tile grid. (x, y, layer)
	Layer           int        ///< The layer of the tile within the NavMesh tile grid. (x, y, layer)
	UserID          uint32     ///< The user defined id of the tile.
	PolyCount       int        ///< The number of polygons in the tile.
	VertCount       int        ///< The number of vertices in the tile.
	MaxLinkCount    int        ///< The number of allocated links.
	DetailMeshCount int        ///< The number of sub-meshes in the detail mesh.
	DetailVertCount int        ///< The number of unique vertices in the detail mesh. (In addition to the polygon vertices.)
	DetailTriCount  int        ///< The number of triangles in the detail mesh.
	WalkableHeight  float32    ///< The height of the agents using the tile.
	WalkableRadius  float32    ///< The radius of the agents using the tile.
	WalkableClimb   float32    ///< The maximum climb height of the agents using the tile.
	Bmin            [3]float32 ///< The minimum bounds of the tile's AABB. [(x, y, z)]
	Bmax            [3]float32 ///< The maximum bounds of the tile's AABB. [(x, y, z)]
}

// NavMeshData is the immutable payload of one tile as produced by
// CreateNavMeshData. AddTile copies the mutable parts, so the same data can be
// added again after the tile is removed.
type NavMeshData struct {
	Header       MeshHeader
	Polys        []Poly
	Verts        []float32
	DetailMeshes []PolyDetail
	DetailVerts  []float32
	DetailTris   []uint8
}

// / Defines a navigation mesh tile.
type MeshTile struct {
	Salt          uint32 ///< Counter describing modifications to the tile.
	linksFreeList uint32 ///< Index to the next free link.

	Header       *MeshHeader  ///< The tile header.
	Polys        []Poly       ///< The tile polygons. [Size: MeshHeader::PolyCount]
	Verts        []float32    ///< The tile vertices. [(x, y, z) * MeshHeader::VertCount]
	Links        []Link       ///< The tile links. [Size: MeshHeader::MaxLinkCount]
	DetailMeshes []PolyDetail ///< The tile's detail sub-meshes. [Size: MeshHeader::DetailMeshCount]

	/// The detail mesh's unique vertices. [(x, y, z) * MeshHeader::DetailVertCount]
	DetailVerts []float32

	/// The detail mesh's triangles. [(vertA, vertB, vertC, triFlags) * MeshHeader::DetailTriCount].
	DetailTris []uint8

	Data *NavMeshData ///< The data the tile was added from.
	next *MeshTile    ///< The next free tile, or the next tile in the spatial grid.
}

// / Configuration parameters used to define multi-tile navigation meshes.
type NavMeshParams struct {
	Orig       [3]float32 ///< The world space origin of the navigation mesh's tile space. [(x, y, z)]
	TileWidth  float32    ///< The width of each tile. (Along the x-axis.)
	TileHeight float32    ///< The height of each tile. (Along the z-axis.)
	MaxTiles   int        ///< The maximum number of tiles the navigation mesh can contain.
	MaxPolys   int        ///< The maximum number of polygons each tile can contain.
}

// / Get flags for edge in detail triangle.
// /  @param[in]	triFlags		The flags for the triangle (last component of detail vertices above).
// /  @param[in]	edgeIndex		The index of the first vertex of the edge. For instance, if 0,
// /								returns flags for edge AB.
func GetDetailTriEdgeFlags(triFlags uint8, edgeIndex int) uint8 {
	return (triFlags >> (edgeIndex * 2)) & 0x3
}

// / Returns the side opposite to the given tile side.
func OppositeTile(side int) int {
	return (side + 4) & 0x7
}

func (p *Poly) vert(tile *MeshTile, i int) []float32 {
	return tile.Verts[int(p.Verts[i])*3 : int(p.Verts[i])*3+3]
}

// detailVert resolves a detail triangle index: indices below the vertex count
// address the polygon's own vertices.
func (tile *MeshTile) detailVert(p *Poly, pd *PolyDetail, idx uint8) []float32 {
	if int(idx) < int(p.VertCount) {
		return p.vert(tile, int(idx))
	}
	i := (int(pd.VertBase) + int(idx) - int(p.VertCount)) * 3
	return tile.DetailVerts[i : i+3]
}

func (tile *MeshTile) polyIndex(p *Poly) int {
	return int((uintptr(unsafe.Pointer(p)) - uintptr(unsafe.Pointer(&tile.Polys[0]))) / unsafe.Sizeof(Poly{}))
}

func (tile *MeshTile) allocLink() uint32 {
	if tile.linksFreeList == DT_NULL_LINK {
		return DT_NULL_LINK
	}
	link := tile.linksFreeList
	tile.linksFreeList = tile.Links[link].Next
	return link
}

func (tile *MeshTile) freeLink(link uint32) {
	tile.Links[link].Next = tile.linksFreeList
	tile.linksFreeList = link
}
