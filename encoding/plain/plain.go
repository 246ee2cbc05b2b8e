// Package plain decodes Parquet's PLAIN encoding: fixed-width little-endian
// values back to back, with a 4-byte length prefix for BYTE_ARRAY and no
// prefix (just type_length bytes) for FIXED_LEN_BYTE_ARRAY.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#plain-plain--0
package plain

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeBoolean unpacks up to len(dst) booleans, one bit per value, LSB
// first within each byte.
func DecodeBoolean(dst []bool, src []byte) (int, error) {
	n := len(dst)
	if need := (n + 7) / 8; len(src) < need {
		n = len(src) * 8
		if n > len(dst) {
			n = len(dst)
		}
	}
	for i := 0; i < n; i++ {
		dst[i] = (src[i/8]>>(uint(i)%8))&1 != 0
	}
	return n, nil
}

func DecodeInt32(dst []int32, src []byte) (int, error) {
	n := len(src) / 4
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int32(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return n, nil
}

func DecodeInt64(dst []int64, src []byte) (int, error) {
	n := len(src) / 8
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int64(binary.LittleEndian.Uint64(src[i*8:]))
	}
	return n, nil
}

// DecodeInt96 decodes the 12-byte INT96 physical representation, returning
// each value as its 3 little-endian uint32 words (low, mid, high-with-sign
// julian day), matching the historical Parquet INT96 layout.
func DecodeInt96(dst [][3]uint32, src []byte) (int, error) {
	n := len(src) / 12
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		b := src[i*12:]
		dst[i][0] = binary.LittleEndian.Uint32(b[0:4])
		dst[i][1] = binary.LittleEndian.Uint32(b[4:8])
		dst[i][2] = binary.LittleEndian.Uint32(b[8:12])
	}
	return n, nil
}

func DecodeFloat(dst []float32, src []byte) (int, error) {
	n := len(src) / 4
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return n, nil
}

func DecodeDouble(dst []float64, src []byte) (int, error) {
	n := len(src) / 8
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
	}
	return n, nil
}

// DecodeByteArray decodes up to len(dst) length-prefixed byte strings from
// src, returning the number decoded and the number of input bytes
// consumed. Returned slices alias src; callers that retain them past the
// lifetime of src's backing buffer must copy.
func DecodeByteArray(dst [][]byte, src []byte) (n, consumed int, err error) {
	for n < len(dst) {
		if consumed+4 > len(src) {
			return n, consumed, nil
		}
		size := int(binary.LittleEndian.Uint32(src[consumed:]))
		consumed += 4
		if size < 0 || consumed+size > len(src) {
			return n, consumed, fmt.Errorf("plain: byte array length %d exceeds remaining input", size)
		}
		dst[n] = src[consumed : consumed+size]
		consumed += size
		n++
	}
	return n, consumed, nil
}

// DecodeFixedLenByteArray slices up to len(dst) fixed-size byte strings of
// length size from src. Returned slices alias src.
func DecodeFixedLenByteArray(dst [][]byte, src []byte, size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("plain: invalid fixed length %d", size)
	}
	n := len(src) / size
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = src[i*size : (i+1)*size]
	}
	return n, nil
}
