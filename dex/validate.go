package dex

import (
	"bytes"
	"crypto/sha1"
	"fmt"

	"go.uber.org/zap"

	"github.com/fvrmatteo/DEXParse/errors"
)

// Header validation errors, one per rule. Compare with errors.Is.
var (
	ErrTooShort           = errors.Sentinel(errors.PhaseHeader, errors.KindTooShort)
	ErrBadMagic           = errors.Sentinel(errors.PhaseHeader, errors.KindBadMagic)
	ErrBadVersion         = errors.Sentinel(errors.PhaseHeader, errors.KindBadVersion)
	ErrFileSizeMismatch   = errors.Sentinel(errors.PhaseHeader, errors.KindFileSizeMismatch)
	ErrHeaderSizeMismatch = errors.Sentinel(errors.PhaseHeader, errors.KindHeaderSizeMismatch)
	ErrBadEndianTag       = errors.Sentinel(errors.PhaseHeader, errors.KindBadEndianTag)
	ErrOffsetOutOfRange   = errors.Sentinel(errors.PhaseHeader, errors.KindOffsetOutOfRange)
	ErrChecksumMismatch   = errors.Sentinel(errors.PhaseHeader, errors.KindChecksumMismatch)
	ErrSignatureMismatch  = errors.Sentinel(errors.PhaseHeader, errors.KindSignatureMismatch)
	ErrLinkOutOfRange     = errors.Sentinel(errors.PhaseHeader, errors.KindLinkOutOfRange)
	ErrMapOffZero         = errors.Sentinel(errors.PhaseHeader, errors.KindMapOffZero)
	ErrMapOutOfRange      = errors.Sentinel(errors.PhaseHeader, errors.KindMapOutOfRange)
	ErrDataSizeMisaligned = errors.Sentinel(errors.PhaseHeader, errors.KindDataSizeMisaligned)
)

// Validate checks the header at the start of buf against buf's length using
// DefaultOptions.
func Validate(buf []byte) (*ValidatedHeader, error) {
	return ValidateWithOptions(buf, DefaultOptions())
}

// ValidateWithOptions checks every structural rule of the header and returns
// the first violation. On success every offset field is known to lie inside buf.
func ValidateWithOptions(buf []byte, opts Options) (*ValidatedHeader, error) {
	if len(buf) < HeaderSize {
		return nil, errors.Mismatch(errors.PhaseHeader, errors.KindTooShort, nil,
			fmt.Sprintf("%d bytes", len(buf)), fmt.Sprintf("at least %d", HeaderSize))
	}
	h, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	n := uint64(len(buf))

	checks := []func(*Header, uint64) error{
		validateMagic,
		opts.validateVersion,
		validateFileSize,
		validateHeaderSize,
		validateEndianTag,
		validateOffsets,
	}
	for _, check := range checks {
		if err := check(&h, n); err != nil {
			return nil, err
		}
	}

	if opts.VerifyChecksum {
		if err := verifyChecksum(buf, &h); err != nil {
			return nil, err
		}
	}
	if opts.VerifySignature {
		if err := verifySignature(buf, &h); err != nil {
			return nil, err
		}
	}

	checks = []func(*Header, uint64) error{
		validateLink,
		validateMap,
		validateDataSize,
	}
	for _, check := range checks {
		if err := check(&h, n); err != nil {
			return nil, err
		}
	}

	Logger().Debug("dex header validated",
		zap.String("version", h.Version()),
		zap.Uint32("file_size", h.FileSize),
		zap.Uint32("string_ids_size", h.StringIDsSize),
		zap.Uint32("checksum", h.Checksum))

	return &ValidatedHeader{h: h, length: uint32(n)}, nil
}

func validateMagic(h *Header, _ uint64) error {
	if !bytes.Equal(h.Magic[:len(magicPrefix)], magicPrefix[:]) || h.Magic[magicLen-1] != 0 {
		return errors.New(errors.PhaseHeader, errors.KindBadMagic).
			Path("magic").
			Value(h.Magic).
			Detail("got % x, want 64 65 78 0a <version> 00", h.Magic[:]).
			Build()
	}
	return nil
}

func (o Options) validateVersion(h *Header, _ uint64) error {
	if v := h.Version(); !o.acceptsVersion(v) {
		return errors.New(errors.PhaseHeader, errors.KindBadVersion).
			Path("magic", "version").
			Value(v).
			Detail("version %q not in %v", v, o.Versions).
			Build()
	}
	return nil
}

func validateFileSize(h *Header, n uint64) error {
	if uint64(h.FileSize) != n {
		return errors.Mismatch(errors.PhaseHeader, errors.KindFileSizeMismatch,
			[]string{"file_size"}, h.FileSize, n)
	}
	return nil
}

func validateHeaderSize(h *Header, _ uint64) error {
	if h.HeaderSize != HeaderSize {
		return errors.Mismatch(errors.PhaseHeader, errors.KindHeaderSizeMismatch,
			[]string{"header_size"}, h.HeaderSize, HeaderSize)
	}
	return nil
}

func validateEndianTag(h *Header, _ uint64) error {
	if h.EndianTag != EndianConstant && h.EndianTag != ReverseEndianConstant {
		return errors.New(errors.PhaseHeader, errors.KindBadEndianTag).
			Path("endian_tag").
			Value(h.EndianTag).
			Detail("got 0x%08x, want 0x%08x or 0x%08x", h.EndianTag, EndianConstant, ReverseEndianConstant).
			Build()
	}
	return nil
}

// validateOffsets requires every table offset to be inside the buffer, even
// for empty tables.
func validateOffsets(h *Header, n uint64) error {
	offsets := []struct {
		name string
		off  uint32
	}{
		{"string_ids_off", h.StringIDsOff},
		{"type_ids_off", h.TypeIDsOff},
		{"proto_ids_off", h.ProtoIDsOff},
		{"field_ids_off", h.FieldIDsOff},
		{"method_ids_off", h.MethodIDsOff},
		{"class_defs_off", h.ClassDefsOff},
		{"data_off", h.DataOff},
	}
	for _, o := range offsets {
		if uint64(o.off) >= n {
			return errors.OutOfRange(errors.PhaseHeader, []string{o.name}, uint64(o.off), n)
		}
	}
	return nil
}

func verifyChecksum(buf []byte, h *Header) error {
	if sum := Adler32(buf[signatureOffset:]); sum != h.Checksum {
		return errors.New(errors.PhaseHeader, errors.KindChecksumMismatch).
			Path("checksum").
			Value(h.Checksum).
			Detail("stored 0x%08x, computed 0x%08x", h.Checksum, sum).
			Build()
	}
	return nil
}

func verifySignature(buf []byte, h *Header) error {
	if sum := sha1.Sum(buf[fileSizeOffset:]); sum != h.Signature {
		return errors.New(errors.PhaseHeader, errors.KindSignatureMismatch).
			Path("signature").
			Value(h.Signature).
			Detail("stored %x, computed %x", h.Signature, sum).
			Build()
	}
	return nil
}

func validateLink(h *Header, n uint64) error {
	if h.LinkSize != 0 && uint64(h.LinkOff) >= n {
		return errors.New(errors.PhaseHeader, errors.KindLinkOutOfRange).
			Path("link_off").
			Value(h.LinkOff).
			Detail("offset 0x%x out of range (length 0x%x) with link_size %d", h.LinkOff, n, h.LinkSize).
			Build()
	}
	return nil
}

func validateMap(h *Header, n uint64) error {
	if h.MapOff == 0 {
		return errors.InvalidData(errors.PhaseHeader, errors.KindMapOffZero,
			[]string{"map_off"}, "must be non-zero")
	}
	if uint64(h.MapOff) >= n || h.MapOff < h.DataOff {
		return errors.New(errors.PhaseHeader, errors.KindMapOutOfRange).
			Path("map_off").
			Value(h.MapOff).
			Detail("offset 0x%x not in data section [0x%x, 0x%x)", h.MapOff, h.DataOff, n).
			Build()
	}
	return nil
}

func validateDataSize(h *Header, _ uint64) error {
	if h.DataSize%4 != 0 {
		return errors.New(errors.PhaseHeader, errors.KindDataSizeMisaligned).
			Path("data_size").
			Value(h.DataSize).
			Detail("%d is not a multiple of 4", h.DataSize).
			Build()
	}
	return nil
}
