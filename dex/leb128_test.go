package dex_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fvrmatteo/DEXParse/dex"
)

func TestULEB128(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x7f}, 16256},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got := dex.EncodeULEB128(tt.value); !bytes.Equal(got, tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, got, tt.encoded)
			}

			got, n, err := dex.DecodeULEB128(tt.encoded, 0)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
			if n != len(tt.encoded) {
				t.Errorf("decode consumed %d bytes, want %d", n, len(tt.encoded))
			}
		})
	}
}

func TestULEB128RoundTrip(t *testing.T) {
	var values []uint32
	for shift := uint(0); shift < 32; shift++ {
		v := uint32(1) << shift
		values = append(values, v-1, v, v+1)
	}
	values = append(values, 0xFFFFFFFE, 0xFFFFFFFF)

	// A simple LCG covers the space between the boundaries.
	x := uint32(2463534242)
	for i := 0; i < 1000; i++ {
		x = x*1664525 + 1013904223
		values = append(values, x)
	}

	for _, v := range values {
		enc := dex.EncodeULEB128(v)
		got, n, err := dex.DecodeULEB128(enc, 0)
		if err != nil {
			t.Fatalf("DecodeULEB128(%d): %v", v, err)
		}
		if got != v || n != len(enc) {
			t.Errorf("round trip %d: got %d (%d bytes), want %d (%d bytes)", v, got, n, v, len(enc))
		}
	}
}

func TestULEB128AtOffset(t *testing.T) {
	buf := []byte{0xaa, 0xbb, 0x80, 0x01, 0xcc}
	v, n, err := dex.DecodeULEB128(buf, 2)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v != 128 || n != 2 {
		t.Errorf("got %d (%d bytes), want 128 (2 bytes)", v, n)
	}
}

func TestULEB128Errors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		off  int
		want error
	}{
		{"empty", nil, 0, dex.ErrUnexpectedEOF},
		{"truncated", []byte{0x80, 0x80}, 0, dex.ErrUnexpectedEOF},
		{"offset at end", []byte{0x01}, 1, dex.ErrUnexpectedEOF},
		{"offset past end", []byte{0x01}, 7, dex.ErrUnexpectedEOF},
		{"negative offset", []byte{0x01}, -1, dex.ErrUnexpectedEOF},
		{"sixth byte", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, 0, dex.ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := dex.DecodeULEB128(tt.buf, tt.off)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestULEB128p1(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int32
	}{
		{[]byte{0x00}, -1},
		{[]byte{0x01}, 0},
		{[]byte{0x02}, 1},
		{[]byte{0x80, 0x01}, 127},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, -2},
	}

	for _, tt := range tests {
		got, n, err := dex.DecodeULEB128p1(tt.encoded, 0)
		if err != nil {
			t.Fatalf("DecodeULEB128p1(%v): %v", tt.encoded, err)
		}
		if got != tt.value || n != len(tt.encoded) {
			t.Errorf("DecodeULEB128p1(%v): got %d (%d bytes), want %d", tt.encoded, got, n, tt.value)
		}
		if enc := dex.EncodeULEB128p1(tt.value); !bytes.Equal(enc, tt.encoded) {
			t.Errorf("EncodeULEB128p1(%d): got %v, want %v", tt.value, enc, tt.encoded)
		}
	}

	if got, _, _ := dex.DecodeULEB128p1([]byte{0x00}, 0); uint32(got) != dex.NoIndex {
		t.Errorf("0x00 should decode to NoIndex, got %d", got)
	}
}

func TestSLEB128(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0x7e}, -2},
		{[]byte{0x3f}, 63},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x40}, -64},
		{[]byte{0xbf, 0x7f}, -65},
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x80, 0x7f}, -128},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x7e}, -129},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, 0x7fffffff},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x78}, -0x80000000},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got := dex.EncodeSLEB128(tt.value); !bytes.Equal(got, tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, got, tt.encoded)
			}

			got, n, err := dex.DecodeSLEB128(tt.encoded, 0)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
			if n != len(tt.encoded) {
				t.Errorf("decode consumed %d bytes, want %d", n, len(tt.encoded))
			}
		})
	}
}

func TestSLEB128SignFromLastByte(t *testing.T) {
	// 0xff alone would be -1 if its bit 6 were used; the last byte 0x00 is
	// what decides the sign.
	got, n, err := dex.DecodeSLEB128([]byte{0xff, 0x00, 0x55}, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != 127 || n != 2 {
		t.Errorf("got %d (%d bytes), want 127 (2 bytes)", got, n)
	}
}

func TestSLEB128RoundTrip(t *testing.T) {
	var values []int32
	for shift := uint(0); shift < 31; shift++ {
		v := int32(1) << shift
		values = append(values, v-1, v, -v, -v-1)
	}
	values = append(values, 0x7fffffff, -0x80000000)

	for _, v := range values {
		enc := dex.EncodeSLEB128(v)
		got, n, err := dex.DecodeSLEB128(enc, 0)
		if err != nil {
			t.Fatalf("DecodeSLEB128(%d): %v", v, err)
		}
		if got != v || n != len(enc) {
			t.Errorf("round trip %d: got %d (%d bytes)", v, got, n)
		}
	}
}

func TestSLEB128Errors(t *testing.T) {
	if _, _, err := dex.DecodeSLEB128([]byte{0xff}, 0); !errors.Is(err, dex.ErrUnexpectedEOF) {
		t.Errorf("truncated: got %v, want unexpected_eof", err)
	}
	if _, _, err := dex.DecodeSLEB128([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, 0); !errors.Is(err, dex.ErrOverflow) {
		t.Errorf("six bytes: got %v, want overflow", err)
	}
}
