// Package dict decodes Parquet's PLAIN_DICTIONARY and RLE_DICTIONARY index
// streams: a leading byte giving the bit width of the indices, followed by
// a hybrid RLE/bit-packed stream of dictionary indices.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#dictionary-encoding-plain_dictionary--2-and-rle_dictionary--8
package dict

import (
	"fmt"

	"github.com/cobalt-data/parquet-go/encoding/rle"
)

// DecodeIndices fills dst with up to len(dst) dictionary indices decoded
// from src.
func DecodeIndices(dst []int32, src []byte) (int, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("dict: index stream is empty, expected a leading bit-width byte")
	}
	bitWidth := int(src[0])
	if bitWidth < 0 || bitWidth > 32 {
		return 0, fmt.Errorf("dict: invalid bit width %d", bitWidth)
	}
	dec := rle.NewDecoder(src[1:], bitWidth)
	return dec.Decode(dst)
}
