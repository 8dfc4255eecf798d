package detour

import (
	"fmt"

	"github.com/gorustyt/gonavmesh/recast"
)

const meshNullIdx = 0xffff

// / Represents the source data used to build a navigation mesh tile.
type NavMeshCreateParams struct {
	/// @name Polygon Mesh Attributes
	/// Used to create the base navigation graph.
	/// See #recast.RcPolyMesh for details related to these attributes.
	/// @{

	Verts     []uint16 ///< The polygon mesh vertices. [(x, y, z) * #VertCount] [Unit: vx]
	VertCount int      ///< The number vertices in the polygon mesh. [Limit: >= 3]
	Polys     []uint16 ///< The polygon data. [Size: #PolyCount * 2 * #Nvp]
	PolyFlags []uint16 ///< The user defined flags assigned to each polygon. [Size: #PolyCount]
	PolyAreas []uint8  ///< The user defined area ids assigned to each polygon. [Size: #PolyCount]
	PolyCount int      ///< Number of polygons in the mesh. [Limit: >= 1]
	Nvp       int      ///< Number maximum number of vertices per polygon. [Limit: >= 3]

	/// @}
	/// @name Height Detail Attributes (Optional)
	/// See #recast.RcPolyMeshDetail for details related to these attributes.
	/// @{

	DetailMeshes []uint32  ///< The height detail sub-mesh data. [Size: 4 * #PolyCount]
	DetailVerts  []float32 ///< The detail mesh vertices. [Size: 3 * detail vertex count] [Unit: wu]
	DetailTris   []uint8   ///< The detail mesh triangles. [Size: 4 * detail triangle count]

	/// @}
	/// @name Tile Attributes
	/// @note The tile grid/layer data can be left at zero if the destination is a single tile mesh.
	/// @{

	UserID    uint32     ///< The user defined id of the tile.
	TileX     int        ///< The tile's x-grid location within the multi-tile destination mesh. (Along the x-axis.)
	TileY     int        ///< The tile's y-grid location within the multi-tile destination mesh. (Along the z-axis.)
	TileLayer int        ///< The tile's layer within the layered destination mesh. [Limit: >= 0] (Along the y-axis.)
	Bmin      [3]float32 ///< The minimum bounds of the tile. [(x, y, z)] [Unit: wu]
	Bmax      [3]float32 ///< The maximum bounds of the tile. [(x, y, z)] [Unit: wu]

	/// @}
	/// @name General Configuration Attributes
	/// @{

	WalkableHeight float32 ///< The agent height. [Unit: wu]
	WalkableRadius float32 ///< The agent radius. [Unit: wu]
	WalkableClimb  float32 ///< The agent maximum traversable ledge. (Up/Down) [Unit: wu]
	Cs             float32 ///< The xz-plane cell size of the polygon mesh. [Limit: > 0] [Unit: wu]
	Ch             float32 ///< The y-axis cell height of the polygon mesh. [Limit: > 0] [Unit: wu]
	/// @}
}

// NewNavMeshCreateParams fills the polygon and detail attributes from a
// recast build. Tile location and agent settings are left to the caller.
func NewNavMeshCreateParams(pmesh *recast.RcPolyMesh, dmesh *recast.RcPolyMeshDetail) *NavMeshCreateParams {
	params := &NavMeshCreateParams{
		Verts:     pmesh.Verts,
		VertCount: pmesh.Nverts,
		Polys:     pmesh.Polys,
		PolyFlags: pmesh.Flags,
		PolyAreas: pmesh.Areas,
		PolyCount: pmesh.Npolys,
		Nvp:       pmesh.Nvp,
		Bmin:      pmesh.Bmin,
		Bmax:      pmesh.Bmax,
		Cs:        pmesh.Cs,
		Ch:        pmesh.Ch,
	}
	if dmesh != nil && dmesh.Nmeshes() == pmesh.Npolys {
		params.DetailMeshes = dmesh.Meshes
		params.DetailVerts = dmesh.Verts
		params.DetailTris = dmesh.Tris
	}
	return params
}

// / Builds navigation mesh tile data from the provided tile creation data.
func CreateNavMeshData(params *NavMeshCreateParams) (*NavMeshData, error) {
	if params.Nvp > DT_VERTS_PER_POLYGON || params.Nvp < 3 {
		return nil, fmt.Errorf("%w: nvp %d", ErrInvalidParam, params.Nvp)
	}
	if params.VertCount >= 0xffff || params.VertCount == 0 || len(params.Verts) < params.VertCount*3 {
		return nil, fmt.Errorf("%w: vertex count %d", ErrInvalidParam, params.VertCount)
	}
	if params.PolyCount == 0 || len(params.Polys) < params.PolyCount*2*params.Nvp {
		return nil, fmt.Errorf("%w: poly count %d", ErrInvalidParam, params.PolyCount)
	}
	nvp := params.Nvp

	// Find portal edges which are at tile borders.
	edgeCount := 0
	portalCount := 0
	for i := 0; i < params.PolyCount; i++ {
		p := params.Polys[i*2*nvp:]
		for j := 0; j < nvp; j++ {
			if p[j] == meshNullIdx {
				break
			}
			edgeCount++
			if p[nvp+j]&0x8000 != 0 {
				dir := p[nvp+j] & 0xf
				if dir != 0xf {
					portalCount++
				}
			}
		}
	}
	maxLinkCount := edgeCount + portalCount*2

	// Find unique detail vertices.
	uniqueDetailVertCount := 0
	detailTriCount := 0
	hasDetail := len(params.DetailMeshes) >= params.PolyCount*4
	if hasDetail {
		detailTriCount = len(params.DetailTris) / 4
		for i := 0; i < params.PolyCount; i++ {
			p := params.Polys[i*nvp*2:]
			ndv := int(params.DetailMeshes[i*4+1])
			nv := 0
			for j := 0; j < nvp; j++ {
				if p[j] == meshNullIdx {
					break
				}
				nv++
			}
			uniqueDetailVertCount += ndv - nv
		}
	} else {
		for i := 0; i < params.PolyCount; i++ {
			p := params.Polys[i*nvp*2:]
			nv := 0
			for j := 0; j < nvp; j++ {
				if p[j] == meshNullIdx {
					break
				}
				nv++
			}
			detailTriCount += nv - 2
		}
	}

	data := &NavMeshData{
		Header: MeshHeader{
			Magic:           DT_NAVMESH_MAGIC,
			Version:         DT_NAVMESH_VERSION,
			X:               params.TileX,
			Y:               params.TileY,
			Layer:           params.TileLayer,
			UserID:          params.UserID,
			PolyCount:       params.PolyCount,
			VertCount:       params.VertCount,
			MaxLinkCount:    maxLinkCount,
			DetailMeshCount: params.PolyCount,
			DetailVertCount: uniqueDetailVertCount,
			DetailTriCount:  detailTriCount,
			WalkableHeight:  params.WalkableHeight,
			WalkableRadius:  params.WalkableRadius,
			WalkableClimb:   params.WalkableClimb,
			Bmin:            params.Bmin,
			Bmax:            params.Bmax,
		},
		Polys:        make([]Poly, params.PolyCount),
		Verts:        make([]float32, params.VertCount*3),
		DetailMeshes: make([]PolyDetail, params.PolyCount),
		DetailVerts:  make([]float32, 0, uniqueDetailVertCount*3),
		DetailTris:   make([]uint8, 0, detailTriCount*4),
	}

	// Store vertices
	for i := 0; i < params.VertCount; i++ {
		iv := params.Verts[i*3:]
		v := data.Verts[i*3:]
		v[0] = params.Bmin[0] + float32(iv[0])*params.Cs
		v[1] = params.Bmin[1] + float32(iv[1])*params.Ch
		v[2] = params.Bmin[2] + float32(iv[2])*params.Cs
	}

	// Store polygons
	for i := 0; i < params.PolyCount; i++ {
		src := params.Polys[i*2*nvp:]
		p := &data.Polys[i]
		if i < len(params.PolyFlags) {
			p.Flags = params.PolyFlags[i]
		}
		if i < len(params.PolyAreas) {
			p.Area = params.PolyAreas[i]
		}
		for j := 0; j < nvp; j++ {
			if src[j] == meshNullIdx {
				break
			}
			p.Verts[j] = src[j]
			if src[nvp+j]&0x8000 != 0 {
				// Border or portal edge.
				switch src[nvp+j] & 0xf {
				case 0xf: // Border
					p.Neis[j] = 0
				case 0: // Portal x-
					p.Neis[j] = DT_EXT_LINK | 4
				case 1: // Portal z+
					p.Neis[j] = DT_EXT_LINK | 2
				case 2: // Portal x+
					p.Neis[j] = DT_EXT_LINK | 0
				case 3: // Portal z-
					p.Neis[j] = DT_EXT_LINK | 6
				}
			} else {
				// Normal connection
				p.Neis[j] = src[nvp+j] + 1
			}
			p.VertCount++
		}
	}

	// Store detail meshes and vertices.
	// The nav polygon vertices are stored as the first vertices on each mesh.
	// We compress the mesh data by skipping them and using the navmesh coordinates.
	if hasDetail {
		vbase := 0
		for i := 0; i < params.PolyCount; i++ {
			dtl := &data.DetailMeshes[i]
			vb := int(params.DetailMeshes[i*4+0])
			ndv := int(params.DetailMeshes[i*4+1])
			nv := int(data.Polys[i].VertCount)
			dtl.VertBase = uint32(vbase)
			dtl.VertCount = uint8(ndv - nv)
			dtl.TriBase = params.DetailMeshes[i*4+2]
			dtl.TriCount = uint8(params.DetailMeshes[i*4+3])
			// Copy vertices except the first 'nv' verts which are equal to nav poly verts.
			if ndv-nv > 0 {
				data.DetailVerts = append(data.DetailVerts, params.DetailVerts[(vb+nv)*3:(vb+ndv)*3]...)
				vbase += ndv - nv
			}
		}
		data.DetailTris = append(data.DetailTris, params.DetailTris[:detailTriCount*4]...)
	} else {
		// Create dummy detail mesh by triangulating polys.
		tbase := 0
		for i := 0; i < params.PolyCount; i++ {
			dtl := &data.DetailMeshes[i]
			nv := int(data.Polys[i].VertCount)
			dtl.TriBase = uint32(tbase)
			dtl.TriCount = uint8(nv - 2)
			// Triangulate polygon (local indices).
			for j := 2; j < nv; j++ {
				// Bit for each edge that belongs to poly boundary.
				flags := uint8(DT_DETAIL_EDGE_BOUNDARY << 2)
				if j == 2 {
					flags |= DT_DETAIL_EDGE_BOUNDARY << 0
				}
				if j == nv-1 {
					flags |= DT_DETAIL_EDGE_BOUNDARY << 4
				}
				data.DetailTris = append(data.DetailTris, 0, uint8(j-1), uint8(j), flags)
				tbase++
			}
		}
	}
	return data, nil
}
