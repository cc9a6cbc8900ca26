package dex

import (
	"strings"
	"unicode/utf16"

	"github.com/fvrmatteo/DEXParse/errors"
)

// DEX file strings use a "Modified" UTF-8 encoding:
// https://source.android.com/docs/core/runtime/dex-format#mutf-8
//
// U+0000 is written as C0 80, so a raw 00 byte always terminates the string,
// and code points above the BMP are written as two 3-byte encoded surrogates.

// MUTF-8 errors. Compare with errors.Is.
var (
	ErrBadContinuation = errors.Sentinel(errors.PhaseDecode, errors.KindBadContinuation)
	ErrBadLeadByte     = errors.Sentinel(errors.PhaseDecode, errors.KindBadLeadByte)
	ErrUnterminated    = errors.Sentinel(errors.PhaseDecode, errors.KindUnterminated)
)

// DecodeMUTF8 decodes a NUL-terminated MUTF-8 sequence at the start of data.
// It returns the decoded text and the number of bytes consumed, including the
// terminator. declaredUTF16Len only sizes the output; decoding stops at the
// first 00 byte regardless of it.
//
// An unpaired surrogate cannot be held in a Go string and is decoded as
// U+FFFD.
func DecodeMUTF8(data []byte, declaredUTF16Len uint32) (string, int, error) {
	s, n, _, err := decodeMUTF8(data, declaredUTF16Len)
	return s, n, err
}

// decodeMUTF8 additionally reports the number of UTF-16 code units decoded.
func decodeMUTF8(data []byte, hint uint32) (string, int, int, error) {
	var sb strings.Builder
	if hint > 0 && int64(hint) <= int64(len(data)) {
		sb.Grow(int(hint))
	}
	units := 0
	pos := 0
	for {
		if pos >= len(data) {
			return "", 0, 0, errors.New(errors.PhaseDecode, errors.KindUnterminated).
				Value(pos).
				Detail("no terminating NUL within %d byte(s)", len(data)).
				Build()
		}
		a := data[pos]
		if a == 0 {
			return sb.String(), pos + 1, units, nil
		}

		u, n, err := decodeUnit(data, pos)
		if err != nil {
			return "", 0, 0, err
		}
		pos += n

		if utf16.IsSurrogate(rune(u)) && u < 0xdc00 {
			if lo, m, ok := peekLowSurrogate(data, pos); ok {
				sb.WriteRune(utf16.DecodeRune(rune(u), rune(lo)))
				pos += m
				units += 2
				continue
			}
		}
		// WriteRune turns a lone surrogate into U+FFFD.
		sb.WriteRune(rune(u))
		units++
	}
}

// decodeUnit decodes one 1-, 2- or 3-byte sequence into a UTF-16 code unit.
func decodeUnit(data []byte, pos int) (uint16, int, error) {
	a := data[pos]
	switch {
	case a < 0x80:
		return uint16(a), 1, nil
	case a&0xe0 == 0xc0:
		b, err := continuation(data, pos, 1)
		if err != nil {
			return 0, 0, err
		}
		return uint16(a&0x1f)<<6 | uint16(b&0x3f), 2, nil
	case a&0xf0 == 0xe0:
		b, err := continuation(data, pos, 1)
		if err != nil {
			return 0, 0, err
		}
		c, err := continuation(data, pos, 2)
		if err != nil {
			return 0, 0, err
		}
		return uint16(a&0x0f)<<12 | uint16(b&0x3f)<<6 | uint16(c&0x3f), 3, nil
	default:
		return 0, 0, errors.New(errors.PhaseDecode, errors.KindBadLeadByte).
			Value(pos).
			Detail("byte 0x%02x at offset %d cannot start a sequence", a, pos).
			Build()
	}
}

// continuation returns data[pos+i], which must be a 10xxxxxx byte.
func continuation(data []byte, pos, i int) (byte, error) {
	if pos+i >= len(data) {
		return 0, errors.New(errors.PhaseDecode, errors.KindUnterminated).
			Value(pos).
			Detail("sequence at offset %d truncated", pos).
			Build()
	}
	b := data[pos+i]
	if b&0xc0 != 0x80 {
		return 0, errors.New(errors.PhaseDecode, errors.KindBadContinuation).
			Value(pos + i).
			Detail("byte 0x%02x at offset %d is not a continuation byte", b, pos+i).
			Build()
	}
	return b, nil
}

// peekLowSurrogate reports whether a 3-byte encoded low surrogate starts at pos.
func peekLowSurrogate(data []byte, pos int) (uint16, int, bool) {
	if pos >= len(data) || data[pos]&0xf0 != 0xe0 {
		return 0, 0, false
	}
	u, n, err := decodeUnit(data, pos)
	if err != nil || u < 0xdc00 || u > 0xdfff {
		return 0, 0, false
	}
	return u, n, true
}

// EncodeMUTF8 encodes s as MUTF-8 without the terminating NUL.
// Invalid UTF-8 in s is encoded as U+FFFD.
func EncodeMUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = appendUnit(out, uint16(hi))
			out = appendUnit(out, uint16(lo))
			continue
		}
		out = appendUnit(out, uint16(r))
	}
	return out
}

func appendUnit(out []byte, u uint16) []byte {
	switch {
	case u != 0 && u < 0x80:
		return append(out, byte(u))
	case u < 0x800:
		return append(out, 0xc0|byte(u>>6), 0x80|byte(u&0x3f))
	default:
		return append(out, 0xe0|byte(u>>12), 0x80|byte(u>>6&0x3f), 0x80|byte(u&0x3f))
	}
}

// UTF16Len returns the number of UTF-16 code units needed for s, the value
// stored as utf16_size in a string_data_item.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// EncodeStringData encodes s as a complete string_data_item: the ULEB128
// UTF-16 length, the MUTF-8 bytes and the terminating NUL.
func EncodeStringData(s string) []byte {
	out := EncodeULEB128(uint32(UTF16Len(s)))
	out = append(out, EncodeMUTF8(s)...)
	return append(out, 0)
}
