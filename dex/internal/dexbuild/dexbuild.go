// Package dexbuild lays out small well-formed DEX images for tests: a
// header, a string_ids table, string_data_items and a map_list, with the
// signature and checksum filled in.
package dexbuild

import (
	"encoding/binary"

	"github.com/fvrmatteo/DEXParse/dex"
	dexbin "github.com/fvrmatteo/DEXParse/dex/internal/binary"
)

// Header field offsets, for tests that corrupt a single field.
const (
	OffMagic         = 0
	OffVersion       = 4
	OffChecksum      = 8
	OffSignature     = 12
	OffFileSize      = 32
	OffHeaderSize    = 36
	OffEndianTag     = 40
	OffLinkSize      = 44
	OffLinkOff       = 48
	OffMapOff        = 52
	OffStringIDsSize = 56
	OffStringIDsOff  = 60
	OffTypeIDsSize   = 64
	OffTypeIDsOff    = 68
	OffProtoIDsSize  = 72
	OffProtoIDsOff   = 76
	OffFieldIDsSize  = 80
	OffFieldIDsOff   = 84
	OffMethodIDsSize = 88
	OffMethodIDsOff  = 92
	OffClassDefsSize = 96
	OffClassDefsOff  = 100
	OffDataSize      = 104
	OffDataOff       = 108
)

const mapItemSize = 12

// Builder accumulates string_data_items in string_ids order.
type Builder struct {
	Version   string
	EndianTag uint32
	items     [][]byte
}

// New returns a Builder for a version 035 little-endian file.
func New() *Builder {
	return &Builder{Version: dex.Version035, EndianTag: dex.EndianConstant}
}

// String appends a correctly encoded string_data_item for s.
func (b *Builder) String(s string) *Builder {
	b.items = append(b.items, dex.EncodeStringData(s))
	return b
}

// Strings appends one item per value.
func (b *Builder) Strings(ss ...string) *Builder {
	for _, s := range ss {
		b.String(s)
	}
	return b
}

// Raw appends item verbatim as a string_data_item.
func (b *Builder) Raw(item []byte) *Builder {
	b.items = append(b.items, append([]byte(nil), item...))
	return b
}

// Build lays out the image and repairs its signature and checksum.
func (b *Builder) Build() []byte {
	n := uint32(len(b.items))
	w := dexbin.NewWriter()

	w.WriteBytes([]byte{'d', 'e', 'x', '\n'})
	w.WriteBytes([]byte(b.Version))
	w.Byte(0)
	w.WriteU32LE(0) // checksum
	w.WriteBytes(make([]byte, 20))
	for w.Len() < dex.HeaderSize {
		w.WriteU32LE(0)
	}

	var stringIDsOff uint32
	if n > 0 {
		stringIDsOff = uint32(w.Len())
		for range b.items {
			w.WriteU32LE(0)
		}
	}
	w.Align(4)

	dataOff := uint32(w.Len())
	for i, item := range b.items {
		w.PutU32LE(int(stringIDsOff)+4*i, uint32(w.Len()))
		w.WriteBytes(item)
	}
	w.Align(4)

	mapOff := uint32(w.Len())
	type mapItem struct {
		typ       uint16
		size, off uint32
	}
	items := []mapItem{{dex.TypeHeaderItem, 1, 0}}
	if n > 0 {
		items = append(items,
			mapItem{dex.TypeStringIDItem, n, stringIDsOff},
			mapItem{dex.TypeStringDataItem, n, dataOff})
	}
	items = append(items, mapItem{dex.TypeMapList, 1, mapOff})
	w.WriteU32LE(uint32(len(items)))
	for _, it := range items {
		w.WriteU16LE(it.typ)
		w.WriteU16LE(0)
		w.WriteU32LE(it.size)
		w.WriteU32LE(it.off)
	}

	fileSize := uint32(w.Len())
	w.PutU32LE(OffFileSize, fileSize)
	w.PutU32LE(OffHeaderSize, dex.HeaderSize)
	w.PutU32LE(OffEndianTag, b.EndianTag)
	w.PutU32LE(OffMapOff, mapOff)
	w.PutU32LE(OffStringIDsSize, n)
	w.PutU32LE(OffStringIDsOff, stringIDsOff)
	w.PutU32LE(OffDataSize, fileSize-dataOff)
	w.PutU32LE(OffDataOff, dataOff)

	buf := append([]byte(nil), w.Bytes()...)
	Fix(buf)
	return buf
}

// StringIDOffset returns the offset of the i'th string_ids entry in a
// built image with at least one string.
func StringIDOffset(i int) int {
	return dex.HeaderSize + 4*i
}

// Put32 overwrites the little-endian uint32 at off.
func Put32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

// Get32 reads the little-endian uint32 at off.
func Get32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

// Fix recomputes signature and checksum after buf was modified.
func Fix(buf []byte) {
	if err := dex.Repair(buf); err != nil {
		panic(err)
	}
}
