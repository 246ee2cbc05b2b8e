// Package thrift implements the subset of the Thrift compact protocol used to
// decode Parquet file metadata. It reads directly off an io.Reader; it does
// not depend on the apache/thrift runtime.
//
// https://github.com/apache/thrift/blob/master/doc/specs/thrift-compact-protocol.md
package thrift

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// Compact protocol type codes, as they appear in field headers and list/set
// element headers.
const (
	TypeStop   = 0x0
	TypeTrue   = 0x1
	TypeFalse  = 0x2
	TypeByte   = 0x3
	TypeI16    = 0x4
	TypeI32    = 0x5
	TypeI64    = 0x6
	TypeDouble = 0x7
	TypeBinary = 0x8
	TypeList   = 0x9
	TypeSet    = 0xa
	TypeMap    = 0xb
	TypeStruct = 0xc
)

// Reader decodes Thrift compact protocol structs. It tracks the field-ID
// stack required to resolve short-form (delta-encoded) field headers inside
// nested structs.
type Reader struct {
	r     *bufio.Reader
	stack []int16
	last  int16
}

func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// ReadStructBegin pushes the current field-id cursor so that a nested
// struct's field deltas start counting from zero again.
func (r *Reader) ReadStructBegin() {
	r.stack = append(r.stack, r.last)
	r.last = 0
}

// ReadStructEnd restores the enclosing struct's field-id cursor.
func (r *Reader) ReadStructEnd() {
	n := len(r.stack)
	r.last = r.stack[n-1]
	r.stack = r.stack[:n-1]
}

// FieldHeader describes one field header read from a struct body. Stop is
// true when the struct terminator was read, in which case Type and ID are
// not meaningful.
type FieldHeader struct {
	Type byte
	ID   int16
	Stop bool
}

// ReadFieldBegin reads the next field header. Boolean fields encode their
// value in the type nibble (TypeTrue / TypeFalse); callers pass the header's
// Type to ReadBool, which decodes it without consuming further input.
func (r *Reader) ReadFieldBegin() (FieldHeader, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return FieldHeader{}, err
	}
	if b == TypeStop {
		return FieldHeader{Stop: true}, nil
	}

	delta := int16(b>>4) & 0xf
	typ := b & 0xf

	var id int16
	if delta == 0 {
		v, err := r.readZigzagI16()
		if err != nil {
			return FieldHeader{}, err
		}
		id = v
	} else {
		id = r.last + delta
	}
	r.last = id

	return FieldHeader{Type: typ, ID: id}, nil
}

func (r *Reader) ReadBool(fieldType byte) (bool, error) {
	switch fieldType {
	case TypeTrue:
		return true, nil
	case TypeFalse:
		return false, nil
	default:
		return false, fmt.Errorf("thrift: %#x is not a boolean field type", fieldType)
	}
}

func (r *Reader) ReadByte() (int8, error) {
	b, err := r.r.ReadByte()
	return int8(b), err
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.readZigzagI64()
	return int16(v), err
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.readZigzagI64()
	return int32(v), err
}

func (r *Reader) ReadI64() (int64, error) {
	return r.readZigzagI64()
}

func (r *Reader) ReadDouble() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, err
	}
	bits := uint64(0)
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(buf[i])
	}
	return math.Float64frombits(bits), nil
}

func (r *Reader) ReadBinary() ([]byte, error) {
	n, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBinary()
	return string(b), err
}

// ListHeader describes a list or set header: its element type and length.
type ListHeader struct {
	Type byte
	Size int32
}

func (r *Reader) ReadListBegin() (ListHeader, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return ListHeader{}, err
	}

	size := int32(b>>4) & 0xf
	typ := b & 0xf

	if size == 0xf {
		n, err := r.readUvarint()
		if err != nil {
			return ListHeader{}, err
		}
		size = int32(n)
	}

	return ListHeader{Type: typ, Size: size}, nil
}

// Skip discards a value of the given compact type without interpreting it,
// used for fields present in the wire format that this reader does not
// project into Go structs.
func (r *Reader) Skip(fieldType byte) error {
	switch fieldType {
	case TypeTrue, TypeFalse:
		return nil
	case TypeByte:
		_, err := r.r.ReadByte()
		return err
	case TypeI16, TypeI32, TypeI64:
		_, err := r.readZigzagI64()
		return err
	case TypeDouble:
		_, err := r.ReadDouble()
		return err
	case TypeBinary:
		_, err := r.ReadBinary()
		return err
	case TypeList, TypeSet:
		lh, err := r.ReadListBegin()
		if err != nil {
			return err
		}
		for i := int32(0); i < lh.Size; i++ {
			if err := r.Skip(lh.Type); err != nil {
				return err
			}
		}
		return nil
	case TypeMap:
		return r.skipMap()
	case TypeStruct:
		r.ReadStructBegin()
		for {
			fh, err := r.ReadFieldBegin()
			if err != nil {
				return err
			}
			if fh.Stop {
				break
			}
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
		r.ReadStructEnd()
		return nil
	default:
		return fmt.Errorf("thrift: cannot skip unknown type %#x", fieldType)
	}
}

func (r *Reader) skipMap() error {
	size, err := r.readUvarint()
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	kv, err := r.r.ReadByte()
	if err != nil {
		return err
	}
	keyType := kv >> 4
	valType := kv & 0xf
	for i := uint64(0); i < size; i++ {
		if err := r.Skip(keyType); err != nil {
			return err
		}
		if err := r.Skip(valType); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("thrift: varint overflow")
		}
	}
}

func (r *Reader) readZigzagI64() (int64, error) {
	u, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -(int64(u) & 1), nil
}

func (r *Reader) readZigzagI16() (int16, error) {
	v, err := r.readZigzagI64()
	return int16(v), err
}
