// Package rle decodes Parquet's hybrid RLE/bit-packed integer stream
// encoding, used for definition levels, repetition levels, and
// dictionary-index streams.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#run-length-encoding--bit-packing-hybrid-rle--3
package rle

import (
	"fmt"
	"io"
)

const (
	modeNone = iota
	modeRun
	modeBitPacked
)

// Decoder decodes a hybrid RLE/bit-packed stream of fixed-width unsigned
// integers. It is not safe for concurrent use.
type Decoder struct {
	data     []byte
	pos      int
	bitWidth uint

	mode int

	// modeRun state: runRemaining repetitions of runValue.
	runRemaining int
	runValue     uint64

	// modeBitPacked state: a little-endian bit accumulator refilled one
	// byte at a time, drained bitWidth bits per value.
	bitpackRemaining int
	bitBuf           uint64
	bitBufLen        uint
}

// NewDecoder returns a Decoder reading from data, whose values are packed
// at bitWidth bits wide (0-32). A width of 0 decodes every value as 0
// without reading data.
func NewDecoder(data []byte, bitWidth int) *Decoder {
	return &Decoder{data: data, bitWidth: uint(bitWidth)}
}

// Decode fills dst with up to len(dst) decoded values, returning the number
// actually written. If the stream runs out before len(dst) values are
// decoded, it returns the count decoded so far together with
// io.ErrUnexpectedEOF.
func (d *Decoder) Decode(dst []int32) (int, error) {
	n := 0
	for n < len(dst) {
		v, err := d.next()
		if err != nil {
			return n, err
		}
		dst[n] = int32(v)
		n++
	}
	return n, nil
}

func (d *Decoder) next() (uint64, error) {
	for d.mode == modeNone {
		if err := d.readRunHeader(); err != nil {
			return 0, err
		}
	}

	switch d.mode {
	case modeRun:
		v := d.runValue
		d.runRemaining--
		if d.runRemaining == 0 {
			d.mode = modeNone
		}
		return v, nil

	default: // modeBitPacked
		v, err := d.readBitPackedValue()
		if err != nil {
			return 0, err
		}
		d.bitpackRemaining--
		if d.bitpackRemaining == 0 {
			d.mode = modeNone
			d.bitBuf = 0
			d.bitBufLen = 0
		}
		return v, nil
	}
}

func (d *Decoder) readRunHeader() error {
	if d.bitWidth == 0 {
		// A zero-width level/index stream means every value is 0; treat the
		// whole remainder of data as one infinite run so callers can Decode
		// exactly the count they expect.
		d.mode = modeRun
		d.runValue = 0
		d.runRemaining = 1 << 30
		return nil
	}

	h, err := d.readUvarint()
	if err != nil {
		return err
	}

	if h&1 == 0 {
		count := int(h >> 1)
		if count <= 0 {
			return fmt.Errorf("rle: non-positive run length %d", count)
		}
		width := int((d.bitWidth + 7) / 8)
		if d.pos+width > len(d.data) {
			return io.ErrUnexpectedEOF
		}
		var v uint64
		for i := 0; i < width; i++ {
			v |= uint64(d.data[d.pos+i]) << (8 * uint(i))
		}
		d.pos += width
		d.mode = modeRun
		d.runValue = v
		d.runRemaining = count
		return nil
	}

	groups := int(h >> 1)
	if groups <= 0 {
		return fmt.Errorf("rle: non-positive bit-packed group count %d", groups)
	}
	d.mode = modeBitPacked
	d.bitpackRemaining = groups * 8
	return nil
}

func (d *Decoder) readBitPackedValue() (uint64, error) {
	for d.bitBufLen < d.bitWidth {
		if d.pos >= len(d.data) {
			return 0, io.ErrUnexpectedEOF
		}
		d.bitBuf |= uint64(d.data[d.pos]) << d.bitBufLen
		d.bitBufLen += 8
		d.pos++
	}
	mask := uint64(1)<<d.bitWidth - 1
	v := d.bitBuf & mask
	d.bitBuf >>= d.bitWidth
	d.bitBufLen -= d.bitWidth
	return v, nil
}

func (d *Decoder) readUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		if d.pos >= len(d.data) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.data[d.pos]
		d.pos++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("rle: varint overflow")
		}
	}
}

// BitWidth returns ceil(log2(maxValue + 1)), the bit width Parquet uses to
// pack a level or dictionary-index stream whose largest possible value is
// maxValue.
func BitWidth(maxValue int) int {
	width := 0
	for (1 << width) <= maxValue {
		width++
	}
	return width
}
