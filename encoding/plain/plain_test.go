package plain

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInt32(t *testing.T) {
	src := make([]byte, 12)
	binary.LittleEndian.PutUint32(src[0:], uint32(int32(-1)))
	binary.LittleEndian.PutUint32(src[4:], 42)
	binary.LittleEndian.PutUint32(src[8:], 7)

	dst := make([]int32, 3)
	n, err := DecodeInt32(dst, src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int32{-1, 42, 7}, dst)
}

func TestDecodeByteArray(t *testing.T) {
	var src []byte
	src = binary.LittleEndian.AppendUint32(src, 5)
	src = append(src, "hello"...)
	src = binary.LittleEndian.AppendUint32(src, 3)
	src = append(src, "abc"...)

	dst := make([][]byte, 2)
	n, consumed, err := DecodeByteArray(dst, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, len(src), consumed)
	assert.Equal(t, "hello", string(dst[0]))
	assert.Equal(t, "abc", string(dst[1]))
}

func TestDecodeBoolean(t *testing.T) {
	src := []byte{0b00000101} // true, false, true, false, false...
	dst := make([]bool, 5)
	n, err := DecodeBoolean(dst, src)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []bool{true, false, true, false, false}, dst)
}

func TestDecodeFixedLenByteArray(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([][]byte, 2)
	n, err := DecodeFixedLenByteArray(dst, src, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{1, 2, 3}, dst[0])
	assert.Equal(t, []byte{4, 5, 6}, dst[1])
}
