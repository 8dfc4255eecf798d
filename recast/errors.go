package recast

import "errors"

var (
	ErrNoWalkableArea   = errors.New("recast: no walkable area")
	ErrDuplicateEdge    = errors.New("recast: polygon edge claimed twice")
	ErrTooManyVertices  = errors.New("recast: too many vertices")
	ErrInvalidConfig    = errors.New("recast: invalid config")
	ErrEmptyGeometry    = errors.New("recast: empty geometry")
	ErrTooManyRegions   = errors.New("recast: region id overflow")
	ErrTriangulation    = errors.New("recast: bad triangulation")
	ErrUnknownPartition = errors.New("recast: unknown partition type")
)
