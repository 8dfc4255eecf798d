package detour

import (
	"errors"
	"fmt"
)

// ErrFailure is the root of every detour failure; errors.Is(err, ErrFailure)
// reports whether an operation failed outright.
var ErrFailure = errors.New("detour: failure")

var (
	ErrInvalidParam = fmt.Errorf("%w: invalid param", ErrFailure)
	ErrStaleRef     = fmt.Errorf("%w: stale reference", ErrFailure)
	ErrOutOfMemory  = fmt.Errorf("%w: out of memory", ErrFailure)
	ErrWrongMagic   = fmt.Errorf("%w: wrong magic", ErrFailure)
	ErrWrongVersion = fmt.Errorf("%w: wrong version", ErrFailure)
	ErrOccupied     = fmt.Errorf("%w: tile location already occupied", ErrFailure)
	ErrNoPolygon    = fmt.Errorf("%w: no polygon near position", ErrFailure)
	ErrNoPath       = fmt.Errorf("%w: no path", ErrFailure)
)

// Detail statuses. The result they accompany is still usable.
var (
	ErrBufferTooSmall = errors.New("detour: result buffer too small")
	ErrOutOfNodes     = errors.New("detour: query ran out of nodes")
	ErrPartialResult  = errors.New("detour: partial result")
)
