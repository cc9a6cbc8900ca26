package dex

import (
	"github.com/fvrmatteo/DEXParse/dex/internal/binary"
	"github.com/fvrmatteo/DEXParse/errors"
)

// LEB128 encoding/decoding utilities for the DEX binary format.
// https://source.android.com/docs/core/runtime/dex-format#leb128

// Varint errors. Compare with errors.Is.
var (
	ErrUnexpectedEOF = errors.Sentinel(errors.PhaseDecode, errors.KindUnexpectedEOF)
	ErrOverflow      = errors.Sentinel(errors.PhaseDecode, errors.KindOverflow)
)

// DecodeULEB128 decodes an unsigned LEB128 value starting at buf[off].
// It returns the value and the number of bytes consumed.
func DecodeULEB128(buf []byte, off int) (uint32, int, error) {
	r, err := readerAt(buf, off)
	if err != nil {
		return 0, 0, err
	}
	v, err := r.ReadU32()
	if err != nil {
		return 0, 0, err
	}
	return v, r.Position() - off, nil
}

// DecodeULEB128p1 decodes a uleb128p1 value: the unsigned encoding of v+1.
// NoIndex is encoded as a single 0x00 byte and decodes to -1.
func DecodeULEB128p1(buf []byte, off int) (int32, int, error) {
	v, n, err := DecodeULEB128(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return int32(v - 1), n, nil
}

// DecodeSLEB128 decodes a signed LEB128 value starting at buf[off].
// It returns the value and the number of bytes consumed.
func DecodeSLEB128(buf []byte, off int) (int32, int, error) {
	r, err := readerAt(buf, off)
	if err != nil {
		return 0, 0, err
	}
	v, err := r.ReadS32()
	if err != nil {
		return 0, 0, err
	}
	return v, r.Position() - off, nil
}

// readerAt positions a reader at off. Offsets past the end read as EOF.
func readerAt(buf []byte, off int) (*binary.Reader, error) {
	if off < 0 || off > len(buf) {
		return nil, errors.UnexpectedEOF(errors.PhaseDecode, off, 1, len(buf))
	}
	return binary.NewReaderAt(buf, off)
}

// EncodeULEB128 encodes an unsigned 32-bit LEB128 value to bytes.
func EncodeULEB128(v uint32) []byte {
	w := binary.NewWriter()
	w.WriteU32(v)
	return w.Bytes()
}

// EncodeULEB128p1 encodes v+1 as unsigned LEB128.
func EncodeULEB128p1(v int32) []byte {
	return EncodeULEB128(uint32(v) + 1)
}

// EncodeSLEB128 encodes a signed 32-bit LEB128 value to bytes.
func EncodeSLEB128(v int32) []byte {
	w := binary.NewWriter()
	w.WriteS32(v)
	return w.Bytes()
}
