package detour_tile_cache

import (
	"fmt"
	"math"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/common/logger"
	"github.com/gorustyt/gonavmesh/detour"
	"github.com/gorustyt/gonavmesh/recast"
	"go.uber.org/multierr"
)

// / A handle to an obstacle: salt<<16 | index.
type ObstacleRef uint32

// / A handle to a compressed tile: salt<<tileBits | index.
type CompressedTileRef uint32

type ObstacleState uint8

const (
	DT_OBSTACLE_EMPTY ObstacleState = iota
	DT_OBSTACLE_PROCESSING
	DT_OBSTACLE_PROCESSED
	DT_OBSTACLE_REMOVING
)

type ObstacleType uint8

const (
	DT_OBSTACLE_CYLINDER ObstacleType = iota
	DT_OBSTACLE_BOX                   // AABB
)

// Maximum number of obstacle requests waiting for Update.
const MAX_REQUESTS = 64

const obstacleSaltMask = 1<<16 - 1

// / Poly flag given by DefaultMeshProcess.
const POLYFLAGS_WALK = 0x01

type CompressedTile struct {
	Salt   uint32 ///< Counter describing modifications to the tile.
	Header *TileCacheLayerHeader
	Data   []byte ///< The encoded layer.
	index  uint32
	next   *CompressedTile
}

type ObstacleCylinder struct {
	Pos    [3]float32
	Radius float32
	Height float32
}

type ObstacleBox struct {
	Bmin [3]float32
	Bmax [3]float32
}

type Obstacle struct {
	Cylinder ObstacleCylinder
	Box      ObstacleBox
	Type     ObstacleType
	State    ObstacleState

	touched []CompressedTileRef
	pending []CompressedTileRef
	salt    uint32
	index   uint32
	next    *Obstacle
}

// TileCacheParams configures a tile cache. Config holds the voxel settings
// every tile is rebuilt with; its TileSize is the tile edge in cells.
type TileCacheParams struct {
	Orig         [3]float32
	Config       recast.RcConfig
	AgentRadius  float32 ///< Obstacles are widened by this much. [Units: wu]
	MaxTiles     int
	MaxObstacles int
	Partitioner  recast.RegionPartitioner
}

// TileWorldSize is the tile edge length in world units.
func (p *TileCacheParams) TileWorldSize() float32 {
	return float32(p.Config.TileSize) * p.Config.Cs
}

// TileCacheMeshProcess adjusts tile creation parameters before a tile is
// turned into navmesh data, typically to assign poly flags.
type TileCacheMeshProcess interface {
	Process(params *detour.NavMeshCreateParams)
}

// DefaultMeshProcess marks every walkable polygon with POLYFLAGS_WALK.
type DefaultMeshProcess struct{}

func (DefaultMeshProcess) Process(params *detour.NavMeshCreateParams) {
	for i := 0; i < params.PolyCount; i++ {
		if params.PolyAreas[i] != recast.RC_NULL_AREA {
			params.PolyFlags[i] = POLYFLAGS_WALK
		}
	}
}

const (
	requestAdd = iota
	requestRemove
)

type obstacleRequest struct {
	action int
	ref    ObstacleRef
}

// TileCache stores compressed tile layers and rebuilds navmesh tiles from
// them when obstacles change.
type TileCache struct {
	tileLutMask  int
	posLookup    []*CompressedTile ///< Tile hash lookup.
	nextFreeTile *CompressedTile   ///< Freelist of tiles.
	tiles        []CompressedTile

	saltBits uint32 ///< Number of salt bits in the tile ID.
	tileBits uint32 ///< Number of tile bits in the tile ID.

	params      TileCacheParams
	comp        TileCacheCompressor
	meshProcess TileCacheMeshProcess

	obstacles        []Obstacle
	nextFreeObstacle *Obstacle
	reqs             []obstacleRequest
	update           []CompressedTileRef
}

func NewTileCache(params *TileCacheParams, comp TileCacheCompressor, meshProcess TileCacheMeshProcess) (*TileCache, error) {
	tc := &TileCache{}
	if err := tc.Init(params, comp, meshProcess); err != nil {
		return nil, err
	}
	return tc, nil
}

func (tc *TileCache) Init(params *TileCacheParams, comp TileCacheCompressor, meshProcess TileCacheMeshProcess) error {
	if params.MaxTiles <= 0 || params.MaxObstacles <= 0 || params.MaxObstacles > obstacleSaltMask {
		return fmt.Errorf("%w: %d tiles %d obstacles", detour.ErrInvalidParam, params.MaxTiles, params.MaxObstacles)
	}
	if params.Config.TileSize <= 0 || params.Config.Cs <= 0 {
		return fmt.Errorf("%w: tile size %d cell size %v", detour.ErrInvalidParam, params.Config.TileSize, params.Config.Cs)
	}
	if comp == nil {
		comp = RLECompressor{}
	}
	if meshProcess == nil {
		meshProcess = DefaultMeshProcess{}
	}
	tc.params = *params
	tc.comp = comp
	tc.meshProcess = meshProcess
	tc.reqs = tc.reqs[:0]
	tc.update = tc.update[:0]

	// Alloc space for obstacles.
	tc.obstacles = make([]Obstacle, params.MaxObstacles)
	tc.nextFreeObstacle = nil
	for i := params.MaxObstacles - 1; i >= 0; i-- {
		tc.obstacles[i].salt = 1
		tc.obstacles[i].index = uint32(i)
		tc.obstacles[i].next = tc.nextFreeObstacle
		tc.nextFreeObstacle = &tc.obstacles[i]
	}

	// Init tiles
	lutSize := max(1, int(common.NextPow2(uint32(params.MaxTiles/4))))
	tc.tileLutMask = lutSize - 1
	tc.posLookup = make([]*CompressedTile, lutSize)
	tc.tiles = make([]CompressedTile, params.MaxTiles)
	tc.nextFreeTile = nil
	for i := params.MaxTiles - 1; i >= 0; i-- {
		tc.tiles[i].Salt = 1
		tc.tiles[i].index = uint32(i)
		tc.tiles[i].next = tc.nextFreeTile
		tc.nextFreeTile = &tc.tiles[i]
	}

	// Init ID generator values.
	tc.tileBits = common.Ilog2(common.NextPow2(uint32(params.MaxTiles)))
	// Only allow 31 salt bits, since the salt mask is calculated using 32bit uint and it will overflow.
	tc.saltBits = min(31, 32-tc.tileBits)
	if tc.saltBits < 10 {
		return fmt.Errorf("%w: %d tiles leave %d salt bits", detour.ErrInvalidParam, params.MaxTiles, tc.saltBits)
	}
	return nil
}

func (tc *TileCache) Compressor() TileCacheCompressor { return tc.comp }
func (tc *TileCache) Params() *TileCacheParams        { return &tc.params }

func (tc *TileCache) TileCount() int             { return len(tc.tiles) }
func (tc *TileCache) Tile(i int) *CompressedTile { return &tc.tiles[i] }
func (tc *TileCache) ObstacleCount() int         { return len(tc.obstacles) }
func (tc *TileCache) Obstacle(i int) *Obstacle   { return &tc.obstacles[i] }

// / Encodes a tile id.
func (tc *TileCache) encodeTileId(salt, it uint32) CompressedTileRef {
	return CompressedTileRef(salt<<tc.tileBits | it)
}

func (tc *TileCache) decodeTileIdSalt(ref CompressedTileRef) uint32 {
	saltMask := uint32(1)<<tc.saltBits - 1
	return (uint32(ref) >> tc.tileBits) & saltMask
}

func (tc *TileCache) decodeTileIdTile(ref CompressedTileRef) uint32 {
	tileMask := uint32(1)<<tc.tileBits - 1
	return uint32(ref) & tileMask
}

func encodeObstacleId(salt, it uint32) ObstacleRef {
	return ObstacleRef(salt<<16 | it)
}

func decodeObstacleIdSalt(ref ObstacleRef) uint32 {
	return (uint32(ref) >> 16) & obstacleSaltMask
}

func decodeObstacleIdObstacle(ref ObstacleRef) uint32 {
	return uint32(ref) & obstacleSaltMask
}

// ActiveObstacles counts the obstacles that are not EMPTY.
func (tc *TileCache) ActiveObstacles() int {
	n := 0
	for i := range tc.obstacles {
		if tc.obstacles[i].State != DT_OBSTACLE_EMPTY {
			n++
		}
	}
	return n
}

// LayerCount counts the tiles holding layer data.
func (tc *TileCache) LayerCount() int {
	n := 0
	for i := range tc.tiles {
		if tc.tiles[i].Header != nil {
			n++
		}
	}
	return n
}

func (tc *TileCache) GetTileByRef(ref CompressedTileRef) *CompressedTile {
	if ref == 0 {
		return nil
	}
	idx := tc.decodeTileIdTile(ref)
	if int(idx) >= len(tc.tiles) {
		return nil
	}
	tile := &tc.tiles[idx]
	if tile.Salt != tc.decodeTileIdSalt(ref) || tile.Header == nil {
		return nil
	}
	return tile
}

func (tc *TileCache) GetTileRef(tile *CompressedTile) CompressedTileRef {
	if tile == nil {
		return 0
	}
	return tc.encodeTileId(tile.Salt, tile.index)
}

// GetTilesAt returns the refs of every layer at grid location (tx, ty).
func (tc *TileCache) GetTilesAt(tx, ty int) []CompressedTileRef {
	var refs []CompressedTileRef
	h := common.ComputeTileHash(tx, ty, tc.tileLutMask)
	for tile := tc.posLookup[h]; tile != nil; tile = tile.next {
		if tile.Header != nil && tile.Header.TX == tx && tile.Header.TY == ty {
			refs = append(refs, tc.GetTileRef(tile))
		}
	}
	return refs
}

func (tc *TileCache) getTileAt(tx, ty, tlayer int) *CompressedTile {
	h := common.ComputeTileHash(tx, ty, tc.tileLutMask)
	for tile := tc.posLookup[h]; tile != nil; tile = tile.next {
		if tile.Header != nil && tile.Header.TX == tx && tile.Header.TY == ty && tile.Header.TLayer == tlayer {
			return tile
		}
	}
	return nil
}

func (tc *TileCache) GetObstacleRef(ob *Obstacle) ObstacleRef {
	if ob == nil {
		return 0
	}
	return encodeObstacleId(ob.salt, ob.index)
}

// GetObstacleByRef resolves ref, or returns nil when it is stale.
func (tc *TileCache) GetObstacleByRef(ref ObstacleRef) *Obstacle {
	if ref == 0 {
		return nil
	}
	idx := decodeObstacleIdObstacle(ref)
	if int(idx) >= len(tc.obstacles) {
		return nil
	}
	ob := &tc.obstacles[idx]
	if ob.salt != decodeObstacleIdSalt(ref) {
		return nil
	}
	return ob
}

// AddTile stores an encoded layer. The cache keeps data; the caller must not
// modify it afterwards.
func (tc *TileCache) AddTile(data []byte) (CompressedTileRef, error) {
	header, err := DecodeTileCacheLayerHeader(data)
	if err != nil {
		return 0, err
	}
	// Make sure the data is in right format.
	if header.Magic != DT_TILECACHE_MAGIC {
		return 0, detour.ErrWrongMagic
	}
	if header.Version != DT_TILECACHE_VERSION {
		return 0, detour.ErrWrongVersion
	}
	// Make sure the location is free.
	if tc.getTileAt(header.TX, header.TY, header.TLayer) != nil {
		return 0, fmt.Errorf("%w: (%d,%d,%d)", ErrTileExists, header.TX, header.TY, header.TLayer)
	}

	// Allocate a tile.
	tile := tc.nextFreeTile
	if tile == nil {
		return 0, fmt.Errorf("%w: all %d tiles in use", detour.ErrOutOfMemory, len(tc.tiles))
	}
	tc.nextFreeTile = tile.next

	// Insert tile into the position lut.
	h := common.ComputeTileHash(header.TX, header.TY, tc.tileLutMask)
	tile.next = tc.posLookup[h]
	tc.posLookup[h] = tile

	tile.Header = &header
	tile.Data = data
	return tc.GetTileRef(tile), nil
}

// RemoveTile drops a layer and returns its encoded data.
func (tc *TileCache) RemoveTile(ref CompressedTileRef) ([]byte, error) {
	tile := tc.GetTileByRef(ref)
	if tile == nil {
		return nil, fmt.Errorf("%w: tile ref %d", detour.ErrStaleRef, ref)
	}

	// Remove tile from hash lookup.
	h := common.ComputeTileHash(tile.Header.TX, tile.Header.TY, tc.tileLutMask)
	var prev *CompressedTile
	for cur := tc.posLookup[h]; cur != nil; cur = cur.next {
		if cur == tile {
			if prev != nil {
				prev.next = cur.next
			} else {
				tc.posLookup[h] = cur.next
			}
			break
		}
		prev = cur
	}

	data := tile.Data
	tile.Header = nil
	tile.Data = nil

	// Update salt, salt should never be zero.
	tile.Salt = (tile.Salt + 1) & (uint32(1)<<tc.saltBits - 1)
	if tile.Salt == 0 {
		tile.Salt++
	}

	// Add to free list.
	tile.next = tc.nextFreeTile
	tc.nextFreeTile = tile
	return data, nil
}

func (tc *TileCache) allocObstacle() (*Obstacle, error) {
	if len(tc.reqs) >= MAX_REQUESTS {
		return nil, ErrBufferTooSmall
	}
	ob := tc.nextFreeObstacle
	if ob == nil {
		return nil, ErrOutOfObstacles
	}
	tc.nextFreeObstacle = ob.next
	*ob = Obstacle{salt: ob.salt, index: ob.index, State: DT_OBSTACLE_PROCESSING}
	return ob, nil
}

// AddObstacle queues a cylinder obstacle standing on pos. It takes effect on
// the next Update.
func (tc *TileCache) AddObstacle(pos []float32, radius, height float32) (ObstacleRef, error) {
	ob, err := tc.allocObstacle()
	if err != nil {
		return 0, err
	}
	ob.Type = DT_OBSTACLE_CYLINDER
	copy(ob.Cylinder.Pos[:], pos)
	ob.Cylinder.Radius = radius
	ob.Cylinder.Height = height

	ref := tc.GetObstacleRef(ob)
	tc.reqs = append(tc.reqs, obstacleRequest{action: requestAdd, ref: ref})
	return ref, nil
}

// AddBoxObstacle queues an axis aligned box obstacle.
func (tc *TileCache) AddBoxObstacle(bmin, bmax []float32) (ObstacleRef, error) {
	ob, err := tc.allocObstacle()
	if err != nil {
		return 0, err
	}
	ob.Type = DT_OBSTACLE_BOX
	copy(ob.Box.Bmin[:], bmin)
	copy(ob.Box.Bmax[:], bmax)

	ref := tc.GetObstacleRef(ob)
	tc.reqs = append(tc.reqs, obstacleRequest{action: requestAdd, ref: ref})
	return ref, nil
}

// RemoveObstacle queues the removal of ref. Removing ref 0 is a no-op.
func (tc *TileCache) RemoveObstacle(ref ObstacleRef) error {
	if ref == 0 {
		return nil
	}
	if len(tc.reqs) >= MAX_REQUESTS {
		return ErrBufferTooSmall
	}
	ob := tc.GetObstacleByRef(ref)
	if ob == nil || ob.State == DT_OBSTACLE_EMPTY || ob.State == DT_OBSTACLE_REMOVING {
		return fmt.Errorf("%w: obstacle ref %d", detour.ErrStaleRef, ref)
	}
	tc.reqs = append(tc.reqs, obstacleRequest{action: requestRemove, ref: ref})
	return nil
}

// QueryTiles returns the refs of the layers whose bounds, border included,
// overlap bmin..bmax.
func (tc *TileCache) QueryTiles(bmin, bmax []float32) []CompressedTileRef {
	tw := tc.params.TileWorldSize()
	orig := tc.params.Orig
	// Layers overlap their neighbours by the border, so look one tile further.
	tx0 := int(math.Floor(float64((bmin[0]-orig[0])/tw))) - 1
	tx1 := int(math.Floor(float64((bmax[0]-orig[0])/tw))) + 1
	ty0 := int(math.Floor(float64((bmin[2]-orig[2])/tw))) - 1
	ty1 := int(math.Floor(float64((bmax[2]-orig[2])/tw))) + 1

	var results []CompressedTileRef
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			for _, ref := range tc.GetTilesAt(tx, ty) {
				h := tc.tiles[tc.decodeTileIdTile(ref)].Header
				if common.OverlapBounds(bmin, bmax, h.Bmin[:], h.Bmax[:]) {
					results = append(results, ref)
				}
			}
		}
	}
	return results
}

// GetObstacleBounds returns the world bounds of the obstacle shape.
func (tc *TileCache) GetObstacleBounds(ob *Obstacle) (bmin, bmax [3]float32) {
	switch ob.Type {
	case DT_OBSTACLE_CYLINDER:
		cl := &ob.Cylinder
		bmin = [3]float32{cl.Pos[0] - cl.Radius, cl.Pos[1], cl.Pos[2] - cl.Radius}
		bmax = [3]float32{cl.Pos[0] + cl.Radius, cl.Pos[1] + cl.Height, cl.Pos[2] + cl.Radius}
	case DT_OBSTACLE_BOX:
		bmin, bmax = ob.Box.Bmin, ob.Box.Bmax
	}
	return
}

// carveBounds widens the obstacle bounds by the agent radius on the xz-plane.
func (tc *TileCache) carveBounds(ob *Obstacle) (bmin, bmax [3]float32) {
	bmin, bmax = tc.GetObstacleBounds(ob)
	r := tc.params.AgentRadius
	bmin[0] -= r
	bmin[2] -= r
	bmax[0] += r
	bmax[2] += r
	return
}

func (tc *TileCache) markObstacle(ob *Obstacle, chf *recast.RcCompactHeightfield) {
	switch ob.Type {
	case DT_OBSTACLE_CYLINDER:
		cl := &ob.Cylinder
		recast.RcMarkCylinderArea(cl.Pos[:], cl.Radius+tc.params.AgentRadius, cl.Height, recast.RC_NULL_AREA, chf)
	case DT_OBSTACLE_BOX:
		bmin, bmax := tc.carveBounds(ob)
		recast.RcMarkBoxArea(bmin[:], bmax[:], recast.RC_NULL_AREA, chf)
	}
}

// UpToDate reports whether no request or tile rebuild is outstanding.
func (tc *TileCache) UpToDate() bool {
	return len(tc.reqs) == 0 && len(tc.update) == 0
}

func containsRef(refs []CompressedTileRef, ref CompressedTileRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}

// Update consumes the queued obstacle requests and rebuilds every touched
// tile into navmesh. A tile that fails to rebuild keeps its previous navmesh
// tile; the failures are returned together.
func (tc *TileCache) Update(navmesh *detour.NavMesh) (upToDate bool, err error) {
	// Process requests.
	for _, req := range tc.reqs {
		ob := tc.GetObstacleByRef(req.ref)
		if ob == nil {
			continue
		}
		switch req.action {
		case requestAdd:
			// Find touched tiles.
			bmin, bmax := tc.carveBounds(ob)
			ob.touched = tc.QueryTiles(bmin[:], bmax[:])
		case requestRemove:
			// Prepare to remove obstacle.
			ob.State = DT_OBSTACLE_REMOVING
		}
		// Add tiles to update list.
		ob.pending = append(ob.pending[:0], ob.touched...)
		for _, ref := range ob.touched {
			if !containsRef(tc.update, ref) {
				tc.update = append(tc.update, ref)
			}
		}
	}
	tc.reqs = tc.reqs[:0]
	// Obstacles touching no tile are done right away.
	tc.settleObstacles(0)

	// Process updates
	for len(tc.update) > 0 {
		ref := tc.update[0]
		tc.update = append(tc.update[:0], tc.update[1:]...)
		if tc.GetTileByRef(ref) != nil {
			if buildErr := tc.BuildNavMeshTile(ref, navmesh); buildErr != nil {
				logger.Warn("TileCache.Update: %v", buildErr)
				err = multierr.Append(err, buildErr)
			}
		}
		tc.settleObstacles(ref)
	}
	return tc.UpToDate(), err
}

// settleObstacles removes ref from the pending lists and advances obstacles
// whose tiles are all rebuilt.
func (tc *TileCache) settleObstacles(ref CompressedTileRef) {
	for i := range tc.obstacles {
		ob := &tc.obstacles[i]
		if ob.State != DT_OBSTACLE_PROCESSING && ob.State != DT_OBSTACLE_REMOVING {
			continue
		}
		// Remove handled tile from pending list.
		for j, p := range ob.pending {
			if p == ref {
				ob.pending = append(ob.pending[:j], ob.pending[j+1:]...)
				break
			}
		}
		if len(ob.pending) > 0 {
			continue
		}
		// If all pending tiles processed, change state.
		if ob.State == DT_OBSTACLE_PROCESSING {
			ob.State = DT_OBSTACLE_PROCESSED
			continue
		}
		ob.State = DT_OBSTACLE_EMPTY
		ob.touched = nil
		// Update salt, salt should never be zero.
		ob.salt = (ob.salt + 1) & obstacleSaltMask
		if ob.salt == 0 {
			ob.salt++
		}
		// Return obstacle to free list.
		ob.next = tc.nextFreeObstacle
		tc.nextFreeObstacle = ob
	}
}

// BuildNavMeshTilesAt rebuilds every layer at grid location (tx, ty).
func (tc *TileCache) BuildNavMeshTilesAt(tx, ty int, navmesh *detour.NavMesh) error {
	var err error
	for _, ref := range tc.GetTilesAt(tx, ty) {
		err = multierr.Append(err, tc.BuildNavMeshTile(ref, navmesh))
	}
	return err
}

func (tc *TileCache) tileConfig(h *TileCacheLayerHeader) *recast.RcConfig {
	cfg := tc.params.Config
	cfg.Width = h.Width
	cfg.Height = h.Height
	cfg.BorderSize = h.BorderSize
	cfg.Bmin = h.Bmin
	cfg.Bmax = h.Bmax
	return &cfg
}

// BuildNavMeshTile rebuilds the navmesh tile of one layer with the current
// obstacles carved out. The navmesh tile is only replaced once the new tile
// data is complete.
func (tc *TileCache) BuildNavMeshTile(ref CompressedTileRef, navmesh *detour.NavMesh) error {
	tile := tc.GetTileByRef(ref)
	if tile == nil {
		return fmt.Errorf("%w: tile ref %d", detour.ErrStaleRef, ref)
	}
	h := tile.Header

	// Decompress tile layer data.
	layer, err := DecompressTileCacheLayer(tc.comp, tile.Data)
	if err != nil {
		return fmt.Errorf("tile (%d,%d,%d): %w", h.TX, h.TY, h.TLayer, err)
	}
	chf := layer.CompactHeightfield()

	// Rasterize obstacles.
	for i := range tc.obstacles {
		ob := &tc.obstacles[i]
		if ob.State == DT_OBSTACLE_EMPTY || ob.State == DT_OBSTACLE_REMOVING {
			continue
		}
		if containsRef(ob.touched, ref) {
			tc.markObstacle(ob, chf)
		}
	}

	// Build navmesh
	cfg := tc.tileConfig(h)
	pmesh, dmesh, err := recast.RcBuildTileMesh(cfg, chf, tc.params.Partitioner)
	if err != nil {
		return fmt.Errorf("tile (%d,%d,%d): %w", h.TX, h.TY, h.TLayer, err)
	}

	old := navmesh.GetTileAt(h.TX, h.TY, h.TLayer)
	// Early out if the mesh tile is empty.
	if pmesh.Npolys == 0 {
		if old != nil {
			if _, err := navmesh.RemoveTile(navmesh.GetTileRef(old)); err != nil {
				return fmt.Errorf("tile (%d,%d,%d): %w", h.TX, h.TY, h.TLayer, err)
			}
		}
		return nil
	}

	params := detour.NewNavMeshCreateParams(pmesh, dmesh)
	params.TileX = h.TX
	params.TileY = h.TY
	params.TileLayer = h.TLayer
	params.WalkableHeight = float32(cfg.WalkableHeight) * cfg.Ch
	params.WalkableRadius = tc.params.AgentRadius
	params.WalkableClimb = float32(cfg.WalkableClimb) * cfg.Ch
	tc.meshProcess.Process(params)

	data, err := detour.CreateNavMeshData(params)
	if err != nil {
		return fmt.Errorf("tile (%d,%d,%d): %w", h.TX, h.TY, h.TLayer, err)
	}
	if err := replaceTile(navmesh, old, data); err != nil {
		return fmt.Errorf("tile (%d,%d,%d): %w", h.TX, h.TY, h.TLayer, err)
	}
	return nil
}

// replaceTile swaps old for data. When data cannot be added the old tile is
// put back under its previous ref.
func replaceTile(navmesh *detour.NavMesh, old *detour.MeshTile, data *detour.NavMeshData) error {
	var (
		prev    *detour.NavMeshData
		prevRef detour.TileRef
	)
	if old != nil {
		prevRef = navmesh.GetTileRef(old)
		var err error
		if prev, err = navmesh.RemoveTile(prevRef); err != nil {
			return err
		}
	}
	if _, err := navmesh.AddTile(data, 0); err != nil {
		if prev != nil {
			if _, restoreErr := navmesh.AddTile(prev, prevRef); restoreErr != nil {
				return multierr.Append(err, restoreErr)
			}
		}
		return err
	}
	return nil
}
