package dex

import (
	"github.com/fvrmatteo/DEXParse/errors"
)

// File is a validated DEX buffer with its decoded string table.
type File struct {
	Header  *ValidatedHeader
	Strings []DecodedString
}

// Parse validates buf and decodes its string table using DefaultOptions.
func Parse(buf []byte) (*File, error) {
	return ParseWithOptions(buf, DefaultOptions())
}

// ParseWithOptions validates buf and decodes its string table. A header
// failure returns no File. With opts.ContinueOnError a File is returned
// alongside any combined string failures.
func ParseWithOptions(buf []byte, opts Options) (*File, error) {
	vh, err := ValidateWithOptions(buf, opts)
	if err != nil {
		return nil, err
	}
	strs, err := ReadStringsWithOptions(buf, vh, opts)
	if err != nil && !opts.ContinueOnError {
		return nil, err
	}
	return &File{Header: vh, Strings: strs}, err
}

// String returns the text of string idx.
func (f *File) String(idx uint32) (string, error) {
	if uint64(idx) >= uint64(len(f.Strings)) {
		return "", errors.NotFound(errors.PhasePool, "string index", idx)
	}
	s := f.Strings[idx]
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}
