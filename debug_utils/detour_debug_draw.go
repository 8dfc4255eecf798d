package debug_utils

import (
	"github.com/gorustyt/gonavmesh/detour"
	"github.com/gorustyt/gonavmesh/detour_tile_cache"
)

func polyVert(tile *detour.MeshTile, p *detour.Poly, j int) []float32 {
	return tile.Verts[int(p.Verts[j%int(p.VertCount)])*3:]
}

// edgeLinked reports whether edge j of p has an external link.
func edgeLinked(tile *detour.MeshTile, p *detour.Poly, j int) bool {
	for k := p.FirstLink; k != detour.DT_NULL_LINK; k = tile.Links[k].Next {
		if int(tile.Links[k].Edge) == j {
			return true
		}
	}
	return false
}

// drawPolyBoundaries draws the wall edges of the tile, or with inner set the
// edges shared with other polygons. Connected portals are light, open ones dark.
func drawPolyBoundaries(dd DuDebugDraw, tile *detour.MeshTile, col Colorb, linew float32, inner bool) {
	dd.Begin(DU_DRAW_LINES, linew)
	for i := 0; i < tile.Header.PolyCount; i++ {
		p := &tile.Polys[i]
		for j := 0; j < int(p.VertCount); j++ {
			c := col
			if inner {
				if p.Neis[j] == 0 {
					continue
				}
				if p.Neis[j]&detour.DT_EXT_LINK != 0 {
					if edgeLinked(tile, p, j) {
						c = DuRGBA(255, 255, 255, 48)
					} else {
						c = DuRGBA(0, 0, 0, 48)
					}
				} else {
					c = DuRGBA(0, 48, 64, 32)
				}
			} else if p.Neis[j] != 0 {
				continue
			}
			dd.Vertex(polyVert(tile, p, j), c)
			dd.Vertex(polyVert(tile, p, j+1), c)
		}
	}
	dd.End()
}

// DuDebugDrawNavMeshPolyBoundaries draws polygon edges of every tile: shared
// edges faint, walls in col.
func DuDebugDrawNavMeshPolyBoundaries(dd DuDebugDraw, mesh *detour.NavMesh, col Colorb, lineWidth float32) {
	if dd == nil || mesh == nil {
		return
	}
	for i := 0; i < mesh.MaxTiles(); i++ {
		tile := mesh.Tile(i)
		if tile.Header == nil {
			continue
		}
		drawPolyBoundaries(dd, tile, DuRGBA(0, 48, 64, 32), lineWidth*0.5, true)
		drawPolyBoundaries(dd, tile, col, lineWidth, false)
	}
}

func drawMeshTilePortal(dd DuDebugDraw, tile *detour.MeshTile) {
	const padx = 0.04
	pady := tile.Header.WalkableClimb

	dd.Begin(DU_DRAW_LINES, 2)
	for side := 0; side < 8; side += 2 {
		m := uint16(detour.DT_EXT_LINK | side)
		col := DuRGBA(128, 0, 128, 128)
		switch side {
		case 0:
			col = DuRGBA(128, 0, 0, 128)
		case 2:
			col = DuRGBA(0, 128, 0, 128)
		case 6:
			col = DuRGBA(0, 128, 128, 128)
		}
		for i := 0; i < tile.Header.PolyCount; i++ {
			poly := &tile.Polys[i]
			for j := 0; j < int(poly.VertCount); j++ {
				// Skip edges which do not point to the right side.
				if poly.Neis[j] != m {
					continue
				}
				va := polyVert(tile, poly, j)
				vb := polyVert(tile, poly, j+1)
				var a, b [3]float32
				copy(a[:], va)
				copy(b[:], vb)
				switch side {
				case 0, 4:
					x := va[0] + padx
					if side == 0 {
						x = va[0] - padx
					}
					a[0], b[0] = x, x
				case 2, 6:
					z := va[2] + padx
					if side == 2 {
						z = va[2] - padx
					}
					a[2], b[2] = z, z
				}
				// Outline the portal as a slab of climb height.
				dd.Vertex1(a[0], a[1]-pady, a[2], col)
				dd.Vertex1(a[0], a[1]+pady, a[2], col)
				dd.Vertex1(a[0], a[1]+pady, a[2], col)
				dd.Vertex1(b[0], b[1]+pady, b[2], col)
				dd.Vertex1(b[0], b[1]+pady, b[2], col)
				dd.Vertex1(b[0], b[1]-pady, b[2], col)
				dd.Vertex1(b[0], b[1]-pady, b[2], col)
				dd.Vertex1(a[0], a[1]-pady, a[2], col)
			}
		}
	}
	dd.End()
}

func DuDebugDrawNavMeshPortals(dd DuDebugDraw, mesh *detour.NavMesh) {
	if dd == nil || mesh == nil {
		return
	}
	for i := 0; i < mesh.MaxTiles(); i++ {
		tile := mesh.Tile(i)
		if tile.Header == nil {
			continue
		}
		drawMeshTilePortal(dd, tile)
	}
}

// DuDebugDrawNavMeshPoly outlines the polygon ref. Stale refs draw nothing.
func DuDebugDrawNavMeshPoly(dd DuDebugDraw, mesh *detour.NavMesh, ref detour.PolyRef, col Colorb) {
	if dd == nil || mesh == nil {
		return
	}
	tile, poly, err := mesh.GetTileAndPolyByRef(ref)
	if err != nil {
		return
	}
	dd.DepthMask(false)
	dd.Begin(DU_DRAW_LINES, 2)
	for j := 0; j < int(poly.VertCount); j++ {
		dd.Vertex(polyVert(tile, poly, j), col)
		dd.Vertex(polyVert(tile, poly, j+1), col)
	}
	dd.End()
	dd.DepthMask(true)
}

// DuDebugDrawNavMeshPolysWithFlags outlines every polygon carrying any of polyFlags.
func DuDebugDrawNavMeshPolysWithFlags(dd DuDebugDraw, mesh *detour.NavMesh, polyFlags uint16, col Colorb) {
	if dd == nil || mesh == nil {
		return
	}
	for i := 0; i < mesh.MaxTiles(); i++ {
		tile := mesh.Tile(i)
		if tile.Header == nil {
			continue
		}
		base := mesh.GetPolyRefBase(tile)
		for j := 0; j < tile.Header.PolyCount; j++ {
			if tile.Polys[j].Flags&polyFlags == 0 {
				continue
			}
			DuDebugDrawNavMeshPoly(dd, mesh, base|detour.PolyRef(j), col)
		}
	}
}

// DuDebugDrawTileCacheObstacles draws the wireframe of every live obstacle,
// colored by its state.
func DuDebugDrawTileCacheObstacles(dd DuDebugDraw, tc *detour_tile_cache.TileCache) {
	if dd == nil || tc == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, 2)
	for i := 0; i < tc.ObstacleCount(); i++ {
		ob := tc.Obstacle(i)
		var col Colorb
		switch ob.State {
		case detour_tile_cache.DT_OBSTACLE_EMPTY:
			continue
		case detour_tile_cache.DT_OBSTACLE_PROCESSING:
			col = DuRGBA(255, 255, 0, 128)
		case detour_tile_cache.DT_OBSTACLE_PROCESSED:
			col = DuRGBA(255, 192, 0, 192)
		case detour_tile_cache.DT_OBSTACLE_REMOVING:
			col = DuRGBA(220, 0, 0, 128)
		}
		bmin, bmax := tc.GetObstacleBounds(ob)
		if ob.Type == detour_tile_cache.DT_OBSTACLE_CYLINDER {
			DuAppendCylinderWire(dd, bmin[0], bmin[1], bmin[2], bmax[0], bmax[1], bmax[2], DuDarkenCol(col))
		} else {
			DuAppendBoxWire(dd, bmin[0], bmin[1], bmin[2], bmax[0], bmax[1], bmax[2], DuDarkenCol(col))
		}
	}
	dd.End()
}

// DuDebugDrawPath draws the path segments with a cross at every waypoint.
func DuDebugDrawPath(dd DuDebugDraw, path detour.Path, col Colorb, lineWidth float32) {
	if dd == nil || len(path.Points) == 0 {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	for i := 1; i < len(path.Points); i++ {
		dd.Vertex(path.Points[i-1][:], col)
		dd.Vertex(path.Points[i][:], col)
	}
	for _, p := range path.Points {
		DuAppendCross(dd, p[0], p[1], p[2], 0.2, col)
	}
	dd.End()
}
