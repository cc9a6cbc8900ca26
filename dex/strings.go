package dex

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fvrmatteo/DEXParse/dex/internal/binary"
	"github.com/fvrmatteo/DEXParse/errors"
)

// String table errors. Compare with errors.Is.
var (
	ErrStringOffsetOutOfRange = errors.Sentinel(errors.PhasePool, errors.KindOffsetOutOfRange)
	ErrUTF16LengthMismatch    = errors.Sentinel(errors.PhasePool, errors.KindLengthMismatch)
)

const stringIDItemSize = 4

// DecodedString is one entry of the string table.
type DecodedString struct {
	// Err is set only for entries kept by Options.ContinueOnError.
	Err error
	// Text is the decoded value, independent of the input buffer.
	Text string
	// Index is the position in the string_ids table.
	Index uint32
	// UTF16Size is the declared utf16_size, kept as stored.
	UTF16Size uint32
	// Off is the absolute offset of the string_data_item.
	Off uint32
}

// ReadStrings decodes the whole string table in index order using
// DefaultOptions.
func ReadStrings(buf []byte, vh *ValidatedHeader) ([]DecodedString, error) {
	return ReadStringsWithOptions(buf, vh, DefaultOptions())
}

// ReadStringsWithOptions decodes the whole string table in index order.
//
// By default the first malformed entry fails the read and no strings are
// returned. With opts.ContinueOnError every entry is returned, malformed ones
// with Err set, together with all failures combined by multierr.
func ReadStringsWithOptions(buf []byte, vh *ValidatedHeader, opts Options) ([]DecodedString, error) {
	if err := checkHeader(buf, vh); err != nil {
		return nil, err
	}

	size := vh.h.StringIDsSize
	capacity := uint64(size)
	if limit := idCapacity(vh); capacity > limit {
		capacity = limit
	}
	out := make([]DecodedString, 0, capacity)

	var errs error
	for i := uint32(0); i < size; i++ {
		s, err := readString(buf, vh, i, opts)
		if err != nil {
			if !opts.ContinueOnError {
				return nil, err
			}
			if uint64(i) >= idCapacity(vh) {
				// The id table itself runs past the end; so does every later entry.
				Logger().Debug("string_ids table truncated", zap.Uint32("index", i), zap.Uint32("size", size))
				return out, multierr.Append(errs, err)
			}
			Logger().Debug("skipping malformed string", zap.Uint32("index", i), zap.Error(err))
			s.Err = err
			errs = multierr.Append(errs, err)
		}
		out = append(out, s)
	}
	return out, errs
}

// ReadString decodes the single string table entry idx. Entries are
// independent of each other and may be decoded concurrently over a shared buf.
func ReadString(buf []byte, vh *ValidatedHeader, idx uint32) (DecodedString, error) {
	if err := checkHeader(buf, vh); err != nil {
		return DecodedString{}, err
	}
	if idx >= vh.h.StringIDsSize {
		return DecodedString{}, errors.NotFound(errors.PhasePool, "string index", idx)
	}
	return readString(buf, vh, idx, DefaultOptions())
}

// idCapacity returns how many string ids fit between string_ids_off and the
// end of the buffer.
func idCapacity(vh *ValidatedHeader) uint64 {
	return (uint64(vh.length) - uint64(vh.h.StringIDsOff)) / stringIDItemSize
}

func checkHeader(buf []byte, vh *ValidatedHeader) error {
	if vh == nil || vh.length == 0 {
		return errors.InvalidInput(errors.PhasePool, "header has not been validated")
	}
	if uint64(len(buf)) != uint64(vh.length) {
		return errors.InvalidInput(errors.PhasePool,
			fmt.Sprintf("buffer length %d differs from validated length %d", len(buf), vh.length))
	}
	return nil
}

func readString(buf []byte, vh *ValidatedHeader, i uint32, opts Options) (DecodedString, error) {
	s := DecodedString{Index: i}
	path := []string{"string_ids", strconv.FormatUint(uint64(i), 10)}

	idOff := uint64(vh.h.StringIDsOff) + uint64(i)*stringIDItemSize
	if idOff+stringIDItemSize > uint64(len(buf)) {
		return s, errors.OutOfRange(errors.PhasePool, path, idOff, uint64(len(buf)))
	}
	r, err := binary.NewReaderAt(buf, int(idOff))
	if err != nil {
		return s, err
	}
	dataOff, err := r.ReadU32LE()
	if err != nil {
		return s, err
	}
	s.Off = dataOff
	if uint64(dataOff) >= uint64(len(buf)) {
		return s, errors.OutOfRange(errors.PhasePool, append(path, "string_data_off"), uint64(dataOff), uint64(len(buf)))
	}

	utf16Size, n, err := DecodeULEB128(buf, int(dataOff))
	if err != nil {
		return s, wrapStringError(err, i, dataOff)
	}
	s.UTF16Size = utf16Size

	payload := int(dataOff) + n
	text, _, units, err := decodeMUTF8(buf[payload:], utf16Size)
	if err != nil {
		return s, wrapStringError(err, i, uint32(payload))
	}
	if opts.StrictUTF16Length && uint32(units) != utf16Size {
		return s, errors.Mismatch(errors.PhasePool, errors.KindLengthMismatch, path, units, utf16Size)
	}
	s.Text = text
	return s, nil
}

// wrapStringError places a primitive decode failure in the pool phase while
// keeping it reachable through errors.Is.
func wrapStringError(err error, idx, off uint32) error {
	return errors.Wrap(errors.PhasePool, errors.KindOf(err), err,
		fmt.Sprintf("string %d at offset 0x%x", idx, off))
}
