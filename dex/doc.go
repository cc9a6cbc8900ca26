// Package dex provides structural validation of Dalvik Executable (DEX)
// files and decoding of their string table.
//
// See https://source.android.com/docs/core/runtime/dex-format for the format.
// Everything operates on a caller-owned byte slice; nothing is read from
// disk and the buffer is never modified except by the explicit Update and
// Repair helpers.
//
// # Validation
//
// Validate checks the fixed 0x70-byte header against the buffer: magic and
// version, file and header sizes, endian tag, every table offset, the
// Adler-32 checksum, the link and map sections and data alignment. The
// first violated rule is returned as an *errors.Error whose Kind names it:
//
//	data, _ := os.ReadFile("classes.dex")
//	vh, err := dex.Validate(data)
//	if errors.Is(err, dex.ErrChecksumMismatch) {
//	    // file was modified after it was built
//	}
//
// Only a *ValidatedHeader can be passed to the string table reader.
//
// # Strings
//
// ReadStrings walks string_ids in index order and decodes each
// string_data_item (a ULEB128 UTF-16 length followed by NUL-terminated
// MUTF-8):
//
//	strs, err := dex.ReadStrings(data, vh)
//	for _, s := range strs {
//	    fmt.Println(s.Index, s.UTF16Size, s.Text)
//	}
//
// Parse combines both steps. Options controls accepted versions, checksum
// and SHA-1 signature verification, and whether a malformed string fails
// the whole read or only its own entry.
//
// # Primitives
//
// The LEB128 (ULEB128, ULEB128p1, SLEB128), MUTF-8 and Adler-32 codecs are
// exported with matching encoders for building test inputs. Every decoder is
// bounds-checked and returns unexpected_eof rather than reading past the
// slice.
//
// # Thread Safety
//
// All functions are pure over their inputs. A buffer may be shared by
// goroutines decoding different entries with ReadString.
package dex
