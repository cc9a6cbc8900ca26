package binary

import (
	"encoding/binary"
	"fmt"

	"github.com/fvrmatteo/DEXParse/errors"
)

// MaxLEB128Len is the longest encoding of a 32-bit LEB128 value.
const MaxLEB128Len = 5

// Reader is a cursor over a flat byte slice with DEX-specific read methods.
// Every read is bounds-checked against the slice; a read that would run past
// the end fails with an unexpected_eof error and leaves the position unchanged.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt creates a new Reader positioned at off.
func NewReaderAt(data []byte, off int) (*Reader, error) {
	r := NewReader(data)
	if err := r.Reset(off); err != nil {
		return nil, err
	}
	return r, nil
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Reset seeks to the given position. Seeking to len(data) is allowed; the
// next read will fail.
func (r *Reader) Reset(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return errors.OutOfRange(errors.PhaseDecode, nil, uint64(pos), uint64(len(r.data)))
	}
	r.pos = pos
	return nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.eof(1)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the
// underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.eof(n)
	}
	buf := r.data[r.pos : r.pos+n]
	r.pos += n
	return buf, nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU16LE reads a little-endian uint16 (fixed 2 bytes).
func (r *Reader) ReadU16LE() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32. A fifth byte that still
// has its continuation bit set is an overflow.
func (r *Reader) ReadU32() (uint32, error) {
	start := r.pos
	var result uint32
	var shift uint
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			r.pos = start
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if i+1 >= MaxLEB128Len {
			r.pos = start
			return 0, errors.Overflow(errors.PhaseDecode, start, "uint32")
		}
	}
}

// ReadS32 reads a signed LEB128 encoded int32. The sign bit is bit 6 of the
// last byte consumed.
func (r *Reader) ReadS32() (int32, error) {
	start := r.pos
	var result int32
	var shift uint
	var b byte
	var err error
	for i := 0; ; i++ {
		b, err = r.ReadByte()
		if err != nil {
			r.pos = start
			return 0, err
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if i+1 >= MaxLEB128Len {
			r.pos = start
			return 0, errors.Overflow(errors.PhaseDecode, start, "int32")
		}
	}
	// Sign extend
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, nil
}

func (r *Reader) eof(n int) error {
	return errors.UnexpectedEOF(errors.PhaseDecode, r.pos, n, len(r.data))
}

// WrapError annotates err with the table being read and the current position.
func (r *Reader) WrapError(section string, err error) error {
	return fmt.Errorf("dex: %s at position %d: %w", section, r.pos, err)
}
