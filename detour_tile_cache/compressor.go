package detour_tile_cache

import "fmt"

// TileCacheCompressor packs the body of a tile cache layer.
type TileCacheCompressor interface {
	MaxCompressedSize(bufferSize int) int
	Compress(buffer []byte) ([]byte, error)
	Decompress(compressed []byte, maxBufferSize int) ([]byte, error)
}

const (
	rleMaxLiteral = 128
	rleMinRun     = 3
	rleMaxRun     = rleMinRun + 127
)

// RLECompressor is a byte oriented run-length coder. A control byte below
// 128 announces ctl+1 literal bytes; any other control byte repeats the next
// byte ctl-125 times.
type RLECompressor struct{}

func (RLECompressor) MaxCompressedSize(bufferSize int) int {
	return bufferSize + (bufferSize+rleMaxLiteral-1)/rleMaxLiteral
}

func (RLECompressor) Compress(buffer []byte) ([]byte, error) {
	out := make([]byte, 0, len(buffer)/2+1)
	n := len(buffer)
	for i := 0; i < n; {
		run := 1
		for i+run < n && run < rleMaxRun && buffer[i+run] == buffer[i] {
			run++
		}
		if run >= rleMinRun {
			out = append(out, byte(run+125), buffer[i])
			i += run
			continue
		}
		j := i
		for j < n && j-i < rleMaxLiteral {
			if j+2 < n && buffer[j] == buffer[j+1] && buffer[j] == buffer[j+2] {
				break
			}
			j++
		}
		out = append(out, byte(j-i-1))
		out = append(out, buffer[i:j]...)
		i = j
	}
	return out, nil
}

func (RLECompressor) Decompress(compressed []byte, maxBufferSize int) ([]byte, error) {
	out := make([]byte, 0, maxBufferSize)
	for i := 0; i < len(compressed); {
		ctl := int(compressed[i])
		i++
		if ctl < rleMaxLiteral {
			k := ctl + 1
			if i+k > len(compressed) {
				return nil, fmt.Errorf("%w: literal run past end of data", ErrCorruptLayer)
			}
			out = append(out, compressed[i:i+k]...)
			i += k
		} else {
			if i >= len(compressed) {
				return nil, fmt.Errorf("%w: repeat run without value", ErrCorruptLayer)
			}
			for k := ctl - 125; k > 0; k-- {
				out = append(out, compressed[i])
			}
			i++
		}
		if len(out) > maxBufferSize {
			return nil, fmt.Errorf("%w: decompressed size exceeds %d", ErrCorruptLayer, maxBufferSize)
		}
	}
	return out, nil
}
