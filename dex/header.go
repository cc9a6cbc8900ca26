package dex

import (
	"github.com/fvrmatteo/DEXParse/dex/internal/binary"
)

// Header is the fixed header_item at offset 0 of a DEX file, decoded
// little-endian. Nothing in it has been checked; see Validate.
type Header struct {
	Magic         [8]byte
	Checksum      uint32
	Signature     [20]byte
	FileSize      uint32
	HeaderSize    uint32
	EndianTag     uint32
	LinkSize      uint32
	LinkOff       uint32
	MapOff        uint32
	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

// Version returns the 3-byte version field of the magic, e.g. "035".
func (h *Header) Version() string {
	return string(h.Magic[versionOffset : versionOffset+versionLen])
}

// Section is a (size, offset) pair from the header.
type Section struct {
	Name string
	Size uint32
	Off  uint32
}

// Sections returns the header's table descriptors in file order.
func (h *Header) Sections() []Section {
	return []Section{
		{"link", h.LinkSize, h.LinkOff},
		{"string_ids", h.StringIDsSize, h.StringIDsOff},
		{"type_ids", h.TypeIDsSize, h.TypeIDsOff},
		{"proto_ids", h.ProtoIDsSize, h.ProtoIDsOff},
		{"field_ids", h.FieldIDsSize, h.FieldIDsOff},
		{"method_ids", h.MethodIDsSize, h.MethodIDsOff},
		{"class_defs", h.ClassDefsSize, h.ClassDefsOff},
		{"data", h.DataSize, h.DataOff},
	}
}

// ParseHeader decodes the header fields from the start of buf without
// validating them. buf must hold at least HeaderSize bytes.
func ParseHeader(buf []byte) (Header, error) {
	var h Header
	r := binary.NewReader(buf)

	magic, err := r.ReadBytes(magicLen)
	if err != nil {
		return h, r.WrapError("header", err)
	}
	copy(h.Magic[:], magic)

	if h.Checksum, err = r.ReadU32LE(); err != nil {
		return h, r.WrapError("header", err)
	}

	sig, err := r.ReadBytes(len(h.Signature))
	if err != nil {
		return h, r.WrapError("header", err)
	}
	copy(h.Signature[:], sig)

	fields := []*uint32{
		&h.FileSize, &h.HeaderSize, &h.EndianTag,
		&h.LinkSize, &h.LinkOff, &h.MapOff,
		&h.StringIDsSize, &h.StringIDsOff,
		&h.TypeIDsSize, &h.TypeIDsOff,
		&h.ProtoIDsSize, &h.ProtoIDsOff,
		&h.FieldIDsSize, &h.FieldIDsOff,
		&h.MethodIDsSize, &h.MethodIDsOff,
		&h.ClassDefsSize, &h.ClassDefsOff,
		&h.DataSize, &h.DataOff,
	}
	for _, f := range fields {
		if *f, err = r.ReadU32LE(); err != nil {
			return h, r.WrapError("header", err)
		}
	}
	return h, nil
}

// ValidatedHeader is a Header that passed every structural check against a
// buffer of a specific length. It can only be obtained from Validate.
type ValidatedHeader struct {
	h      Header
	length uint32
}

// Header returns a copy of the validated header fields.
func (v *ValidatedHeader) Header() Header {
	return v.h
}

// Length returns the buffer length the header was validated against.
func (v *ValidatedHeader) Length() uint32 {
	return v.length
}

// Version returns the accepted version string.
func (v *ValidatedHeader) Version() string {
	return v.h.Version()
}

// StringIDs returns the string_ids table descriptor.
func (v *ValidatedHeader) StringIDs() Section {
	return Section{"string_ids", v.h.StringIDsSize, v.h.StringIDsOff}
}

// ReverseEndian reports whether the endian tag is the byte-swapped constant.
// Values are still decoded little-endian.
func (v *ValidatedHeader) ReverseEndian() bool {
	return v.h.EndianTag == ReverseEndianConstant
}
