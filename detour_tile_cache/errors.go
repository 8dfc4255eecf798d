package detour_tile_cache

import (
	"fmt"

	"github.com/gorustyt/gonavmesh/detour"
)

// Tile cache failures share the detour failure root.
var (
	ErrBufferTooSmall = fmt.Errorf("%w: obstacle request queue full", detour.ErrFailure)
	ErrOutOfObstacles = fmt.Errorf("%w: out of obstacles", detour.ErrFailure)
	ErrTileExists     = fmt.Errorf("%w: tile layer already present", detour.ErrFailure)
	ErrCorruptLayer   = fmt.Errorf("%w: corrupt layer data", detour.ErrFailure)
)
