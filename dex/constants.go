package dex

import "strings"

// Header layout.
// https://source.android.com/docs/core/runtime/dex-format#header-item
const (
	HeaderSize = 0x70

	magicLen      = 8
	versionOffset = 4
	versionLen    = 3

	checksumOffset  = 8
	signatureOffset = 12
	fileSizeOffset  = 32
)

// Endian tags. Only the tag is checked; values are always read little-endian.
const (
	EndianConstant        = 0x12345678
	ReverseEndianConstant = 0x78563412
)

// NoIndex marks an absent index. uleb128p1 encodes it as a single 0x00 byte.
const NoIndex = 0xffffffff

// Dex file versions accepted by default.
const (
	Version035 = "035"
	Version036 = "036"
)

// magicPrefix is "dex\n"; the version follows, then a NUL.
var magicPrefix = [4]byte{'d', 'e', 'x', '\n'}

// Map item type codes written by this module.
// https://source.android.com/docs/core/runtime/dex-format#type-codes
const (
	TypeHeaderItem     uint16 = 0x0000
	TypeStringIDItem   uint16 = 0x0001
	TypeMapList        uint16 = 0x1000
	TypeStringDataItem uint16 = 0x2002
)

// AccessFlags are the access_flags bit values used by classes, fields and methods.
type AccessFlags uint32

const (
	AccPublic               AccessFlags = 0x1
	AccPrivate              AccessFlags = 0x2
	AccProtected            AccessFlags = 0x4
	AccStatic               AccessFlags = 0x8
	AccFinal                AccessFlags = 0x10
	AccSynchronized         AccessFlags = 0x20
	AccVolatile             AccessFlags = 0x40
	AccBridge               AccessFlags = 0x40
	AccTransient            AccessFlags = 0x80
	AccVarargs              AccessFlags = 0x80
	AccNative               AccessFlags = 0x100
	AccInterface            AccessFlags = 0x200
	AccAbstract             AccessFlags = 0x400
	AccStrict               AccessFlags = 0x800
	AccSynthetic            AccessFlags = 0x1000
	AccAnnotation           AccessFlags = 0x2000
	AccEnum                 AccessFlags = 0x4000
	AccConstructor          AccessFlags = 0x10000
	AccDeclaredSynchronized AccessFlags = 0x20000
)

// 0x40 and 0x80 mean different things on fields and methods; the field
// meaning is used for rendering.
var accessFlagNames = []struct {
	flag AccessFlags
	name string
}{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccSynchronized, "synchronized"},
	{AccVolatile, "volatile"},
	{AccTransient, "transient"},
	{AccNative, "native"},
	{AccInterface, "interface"},
	{AccAbstract, "abstract"},
	{AccStrict, "strictfp"},
	{AccSynthetic, "synthetic"},
	{AccAnnotation, "annotation"},
	{AccEnum, "enum"},
	{AccConstructor, "constructor"},
	{AccDeclaredSynchronized, "declared-synchronized"},
}

// String renders the set flags as space-separated modifiers in declaration order.
func (f AccessFlags) String() string {
	var parts []string
	for _, n := range accessFlagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}
