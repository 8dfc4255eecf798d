package detour_tile_cache

import (
	"errors"
	"fmt"

	"github.com/gorustyt/gonavmesh/common/logger"
	"github.com/gorustyt/gonavmesh/recast"
	"go.uber.org/multierr"
)

// TileCacheBuilder voxelizes input geometry tile by tile and encodes each
// tile's eroded compact heightfield as a cache layer.
type TileCacheBuilder struct {
	params *TileCacheParams
	comp   TileCacheCompressor
}

func NewTileCacheBuilder(params *TileCacheParams, comp TileCacheCompressor) *TileCacheBuilder {
	if comp == nil {
		comp = RLECompressor{}
	}
	return &TileCacheBuilder{params: params, comp: comp}
}

// TileGrid returns the number of tiles along x and z needed to cover
// Orig..bmax.
func (b *TileCacheBuilder) TileGrid(bmax [3]float32) (tilesX, tilesZ int) {
	ts := b.params.Config.TileSize
	gw, gh := recast.RcCalcGridSize(b.params.Orig[:], bmax[:], b.params.Config.Cs)
	return (gw + ts - 1) / ts, (gh + ts - 1) / ts
}

// TileConfig returns the voxel config of tile (tx, ty). The tile bounds are
// grown by a border of walkableRadius + 3 cells so that neighbouring tiles
// erode and partition consistently along their shared edge.
func (b *TileCacheBuilder) TileConfig(geom *recast.InputGeom, tx, ty int) *recast.RcConfig {
	cfg := b.params.Config
	ts := cfg.TileSize
	cfg.BorderSize = cfg.WalkableRadius + 3
	cfg.Width = ts + cfg.BorderSize*2
	cfg.Height = ts + cfg.BorderSize*2

	tw := b.params.TileWorldSize()
	border := float32(cfg.BorderSize) * cfg.Cs
	orig := b.params.Orig
	cfg.Bmin = [3]float32{
		orig[0] + float32(tx)*tw - border,
		geom.Bmin[1],
		orig[2] + float32(ty)*tw - border,
	}
	cfg.Bmax = [3]float32{
		orig[0] + float32(tx+1)*tw + border,
		geom.Bmax[1] + float32(cfg.WalkableHeight)*cfg.Ch,
		orig[2] + float32(ty+1)*tw + border,
	}
	return &cfg
}

// BuildTileLayer returns the encoded layer of tile (tx, ty), or nil when the
// tile holds no walkable area.
func (b *TileCacheBuilder) BuildTileLayer(geom *recast.InputGeom, tx, ty int) ([]byte, error) {
	cfg := b.TileConfig(geom, tx, ty)
	tris := geom.TrianglesInBounds(cfg.Bmin[:], cfg.Bmax[:])
	if len(tris) == 0 {
		return nil, nil
	}
	chf, err := recast.RcBuildCompactTile(cfg, tris)
	if errors.Is(err, recast.ErrNoWalkableArea) {
		logger.Debug("BuildTileLayer: tile (%d,%d) has no walkable area", tx, ty)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tile (%d,%d): %w", tx, ty, err)
	}
	return EncodeTileCacheLayer(NewTileCacheLayer(tx, ty, 0, chf), b.comp)
}

// BuildTiles encodes every tile of geom and adds the layers to tc. Tiles
// that fail are skipped; the failures are returned together.
func (b *TileCacheBuilder) BuildTiles(geom *recast.InputGeom, tc *TileCache) error {
	tilesX, tilesZ := b.TileGrid(geom.Bmax)
	var errs error
	for ty := 0; ty < tilesZ; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			data, err := b.BuildTileLayer(geom, tx, ty)
			if err != nil {
				logger.Warn("BuildTiles: %v", err)
				errs = multierr.Append(errs, err)
				continue
			}
			if data == nil {
				continue
			}
			if _, err := tc.AddTile(data); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("tile (%d,%d): %w", tx, ty, err))
			}
		}
	}
	return errs
}
