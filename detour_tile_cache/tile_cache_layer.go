package detour_tile_cache

import (
	"fmt"

	"github.com/gorustyt/gonavmesh/common/message"
	"github.com/gorustyt/gonavmesh/common/rw"
	"github.com/gorustyt/gonavmesh/recast"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	DT_TILECACHE_MAGIC   = 'D'<<24 | 'T'<<16 | 'L'<<8 | 'R' ///< 'DTLR'
	DT_TILECACHE_VERSION = 1
)

// Header field numbers of an encoded layer.
const (
	fieldMagic protowire.Number = iota + 1
	fieldVersion
	fieldTX
	fieldTY
	fieldTLayer
	fieldBminX
	fieldBminY
	fieldBminZ
	fieldBmaxX
	fieldBmaxY
	fieldBmaxZ
	fieldWidth
	fieldHeight
	fieldBorderSize
	fieldWalkableHeight
	fieldWalkableClimb
	fieldCs
	fieldCh
	fieldSpanCount
	fieldRawSize
	fieldBody
)

// TileCacheLayerHeader describes one cached tile layer. The bounds cover the
// whole layer including its border.
type TileCacheLayerHeader struct {
	Magic          int32
	Version        int32
	TX, TY, TLayer int
	Bmin, Bmax     [3]float32
	Width, Height  int ///< Dimension of the layer in cells, border included.
	BorderSize     int
	WalkableHeight int ///< [Units: vx]
	WalkableClimb  int ///< [Units: vx]
	Cs, Ch         float32
	SpanCount      int
}

// TileCacheLayer is the eroded compact heightfield of one tile, flattened to
// plain arrays. Region data is not kept; it is rebuilt on every mesh build.
type TileCacheLayer struct {
	Header TileCacheLayerHeader
	Counts []uint16 ///< Spans per cell. [Size: Width*Height]
	Ys     []uint16 ///< Span floor heights. [Size: SpanCount]
	Hs     []uint8  ///< Span clearances. [Size: SpanCount]
	Cons   []uint32 ///< Packed neighbour connections. [Size: SpanCount]
	Areas  []uint8  ///< Area ids. [Size: SpanCount]
}

// NewTileCacheLayer captures chf as the layer at grid location (tx, ty, tlayer).
func NewTileCacheLayer(tx, ty, tlayer int, chf *recast.RcCompactHeightfield) *TileCacheLayer {
	layer := &TileCacheLayer{
		Header: TileCacheLayerHeader{
			Magic:          DT_TILECACHE_MAGIC,
			Version:        DT_TILECACHE_VERSION,
			TX:             tx,
			TY:             ty,
			TLayer:         tlayer,
			Bmin:           chf.Bmin,
			Bmax:           chf.Bmax,
			Width:          chf.Width,
			Height:         chf.Height,
			BorderSize:     chf.BorderSize,
			WalkableHeight: chf.WalkableHeight,
			WalkableClimb:  chf.WalkableClimb,
			Cs:             chf.Cs,
			Ch:             chf.Ch,
			SpanCount:      chf.SpanCount,
		},
		Counts: make([]uint16, len(chf.Cells)),
		Ys:     make([]uint16, chf.SpanCount),
		Hs:     make([]uint8, chf.SpanCount),
		Cons:   make([]uint32, chf.SpanCount),
		Areas:  make([]uint8, chf.SpanCount),
	}
	for i, c := range chf.Cells {
		layer.Counts[i] = uint16(c.Count)
	}
	for i := 0; i < chf.SpanCount; i++ {
		s := &chf.Spans[i]
		layer.Ys[i] = s.Y
		layer.Hs[i] = s.H
		layer.Cons[i] = s.Con
	}
	copy(layer.Areas, chf.Areas)
	return layer
}

// CompactHeightfield expands the layer into a fresh compact heightfield that
// the caller may modify.
func (l *TileCacheLayer) CompactHeightfield() *recast.RcCompactHeightfield {
	h := &l.Header
	chf := &recast.RcCompactHeightfield{
		Width:          h.Width,
		Height:         h.Height,
		SpanCount:      h.SpanCount,
		WalkableHeight: h.WalkableHeight,
		WalkableClimb:  h.WalkableClimb,
		BorderSize:     h.BorderSize,
		Bmin:           h.Bmin,
		Bmax:           h.Bmax,
		Cs:             h.Cs,
		Ch:             h.Ch,
		Cells:          make([]recast.RcCompactCell, h.Width*h.Height),
		Spans:          make([]recast.RcCompactSpan, h.SpanCount),
		Areas:          make([]uint8, h.SpanCount),
	}
	idx := 0
	for i, n := range l.Counts {
		if n == 0 {
			continue
		}
		chf.Cells[i] = recast.RcCompactCell{Index: idx, Count: int(n)}
		idx += int(n)
	}
	for i := range chf.Spans {
		chf.Spans[i] = recast.RcCompactSpan{Y: l.Ys[i], H: l.Hs[i], Con: l.Cons[i]}
	}
	copy(chf.Areas, l.Areas)
	return chf
}

func (l *TileCacheLayer) bodySize() int {
	n := l.Header.SpanCount
	return len(l.Counts)*2 + n*2 + n + n*4 + n
}

// EncodeTileCacheLayer serializes the layer: a tagged header followed by the
// compressed array body.
func EncodeTileCacheLayer(layer *TileCacheLayer, comp TileCacheCompressor) ([]byte, error) {
	body := rw.NewWriter()
	body.WriteUInt16s(layer.Counts)
	body.WriteUInt16s(layer.Ys)
	body.WriteUInt8s(layer.Hs)
	body.WriteUInt32s(layer.Cons)
	body.WriteUInt8s(layer.Areas)
	raw := body.GetWriteBytes()
	compressed, err := comp.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress layer (%d,%d,%d): %w", layer.Header.TX, layer.Header.TY, layer.Header.TLayer, err)
	}

	h := &layer.Header
	var enc message.Encoder
	enc.Int(fieldMagic, int64(h.Magic))
	enc.Int(fieldVersion, int64(h.Version))
	enc.Int(fieldTX, int64(h.TX))
	enc.Int(fieldTY, int64(h.TY))
	enc.Int(fieldTLayer, int64(h.TLayer))
	enc.Float32(fieldBminX, h.Bmin[0])
	enc.Float32(fieldBminY, h.Bmin[1])
	enc.Float32(fieldBminZ, h.Bmin[2])
	enc.Float32(fieldBmaxX, h.Bmax[0])
	enc.Float32(fieldBmaxY, h.Bmax[1])
	enc.Float32(fieldBmaxZ, h.Bmax[2])
	enc.Uint(fieldWidth, uint64(h.Width))
	enc.Uint(fieldHeight, uint64(h.Height))
	enc.Uint(fieldBorderSize, uint64(h.BorderSize))
	enc.Uint(fieldWalkableHeight, uint64(h.WalkableHeight))
	enc.Uint(fieldWalkableClimb, uint64(h.WalkableClimb))
	enc.Float32(fieldCs, h.Cs)
	enc.Float32(fieldCh, h.Ch)
	enc.Uint(fieldSpanCount, uint64(h.SpanCount))
	enc.Uint(fieldRawSize, uint64(len(raw)))
	enc.Bytes(fieldBody, compressed)
	return enc.Data(), nil
}

func decodeLayer(data []byte) (header TileCacheLayerHeader, rawSize int, body []byte, err error) {
	err = message.Decode(data, func(f message.Field) error {
		switch f.Num {
		case fieldMagic:
			header.Magic = int32(f.Int())
		case fieldVersion:
			header.Version = int32(f.Int())
		case fieldTX:
			header.TX = int(f.Int())
		case fieldTY:
			header.TY = int(f.Int())
		case fieldTLayer:
			header.TLayer = int(f.Int())
		case fieldBminX, fieldBminY, fieldBminZ:
			header.Bmin[f.Num-fieldBminX] = f.Float32()
		case fieldBmaxX, fieldBmaxY, fieldBmaxZ:
			header.Bmax[f.Num-fieldBmaxX] = f.Float32()
		case fieldWidth:
			header.Width = int(f.Value)
		case fieldHeight:
			header.Height = int(f.Value)
		case fieldBorderSize:
			header.BorderSize = int(f.Value)
		case fieldWalkableHeight:
			header.WalkableHeight = int(f.Value)
		case fieldWalkableClimb:
			header.WalkableClimb = int(f.Value)
		case fieldCs:
			header.Cs = f.Float32()
		case fieldCh:
			header.Ch = f.Float32()
		case fieldSpanCount:
			header.SpanCount = int(f.Value)
		case fieldRawSize:
			rawSize = int(f.Value)
		case fieldBody:
			body = f.Bytes
		}
		return nil
	})
	if err != nil {
		return header, 0, nil, fmt.Errorf("%w: %v", ErrCorruptLayer, err)
	}
	if header.Width <= 0 || header.Height <= 0 || header.Cs <= 0 || header.Ch <= 0 || header.SpanCount < 0 {
		return header, 0, nil, fmt.Errorf("%w: header %dx%d cs %v ch %v", ErrCorruptLayer, header.Width, header.Height, header.Cs, header.Ch)
	}
	return header, rawSize, body, nil
}

// DecodeTileCacheLayerHeader reads only the header of an encoded layer.
func DecodeTileCacheLayerHeader(data []byte) (TileCacheLayerHeader, error) {
	header, _, _, err := decodeLayer(data)
	return header, err
}

// DecompressTileCacheLayer decodes a layer produced by EncodeTileCacheLayer.
func DecompressTileCacheLayer(comp TileCacheCompressor, data []byte) (*TileCacheLayer, error) {
	header, rawSize, body, err := decodeLayer(data)
	if err != nil {
		return nil, err
	}
	layer := &TileCacheLayer{
		Header: header,
		Counts: make([]uint16, header.Width*header.Height),
		Ys:     make([]uint16, header.SpanCount),
		Hs:     make([]uint8, header.SpanCount),
		Cons:   make([]uint32, header.SpanCount),
		Areas:  make([]uint8, header.SpanCount),
	}
	if rawSize != layer.bodySize() {
		return nil, fmt.Errorf("%w: body size %d, want %d", ErrCorruptLayer, rawSize, layer.bodySize())
	}
	raw, err := comp.Decompress(body, rawSize)
	if err != nil {
		return nil, err
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorruptLayer, len(raw), rawSize)
	}

	r := rw.NewReader(raw)
	r.ReadUInt16s(layer.Counts)
	r.ReadUInt16s(layer.Ys)
	r.ReadUInt8s(layer.Hs)
	r.ReadUInt32s(layer.Cons)
	r.ReadUInt8s(layer.Areas)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLayer, err)
	}
	total := 0
	for _, n := range layer.Counts {
		total += int(n)
	}
	if total != header.SpanCount {
		return nil, fmt.Errorf("%w: cells hold %d spans, header says %d", ErrCorruptLayer, total, header.SpanCount)
	}
	return layer, nil
}
