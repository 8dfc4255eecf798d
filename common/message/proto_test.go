package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestEncodeDecode(t *testing.T) {
	var e Encoder
	e.Uint(1, 300)
	e.Int(2, -7)
	e.Float32(3, 0.25)
	e.Bytes(4, []byte("layer"))

	got := map[protowire.Number]Field{}
	require.NoError(t, Decode(e.Data(), func(f Field) error {
		got[f.Num] = f
		return nil
	}))
	assert.Equal(t, uint64(300), got[1].Value)
	assert.Equal(t, int64(-7), got[2].Int())
	assert.Equal(t, float32(0.25), got[3].Float32())
	assert.Equal(t, []byte("layer"), got[4].Bytes)
}

func TestDecodeTruncated(t *testing.T) {
	var e Encoder
	e.Bytes(1, []byte("abcdef"))
	data := e.Data()
	err := Decode(data[:len(data)-2], func(Field) error { return nil })
	assert.True(t, errors.Is(err, ErrMalformed))
}
