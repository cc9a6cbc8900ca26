package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad   Phase = "load"   // reading input from storage
	PhaseSave   Phase = "save"   // writing output to storage
	PhaseHeader Phase = "header" // header structural validation
	PhaseDecode Phase = "decode" // varint / MUTF-8 primitives
	PhasePool   Phase = "pool"   // string table walk
)

// Kind categorizes the error
type Kind string

// Header validation kinds, one per structural rule.
const (
	KindTooShort           Kind = "too_short"
	KindBadMagic           Kind = "bad_magic"
	KindBadVersion         Kind = "bad_version"
	KindFileSizeMismatch   Kind = "file_size_mismatch"
	KindHeaderSizeMismatch Kind = "header_size_mismatch"
	KindBadEndianTag       Kind = "bad_endian_tag"
	KindOffsetOutOfRange   Kind = "offset_out_of_range"
	KindChecksumMismatch   Kind = "checksum_mismatch"
	KindSignatureMismatch  Kind = "signature_mismatch"
	KindLinkOutOfRange     Kind = "link_out_of_range"
	KindMapOffZero         Kind = "map_off_zero"
	KindMapOutOfRange      Kind = "map_out_of_range"
	KindDataSizeMisaligned Kind = "data_size_misaligned"
)

// Primitive decoding kinds.
const (
	KindUnexpectedEOF   Kind = "unexpected_eof"
	KindOverflow        Kind = "overflow"
	KindBadContinuation Kind = "bad_continuation"
	KindBadLeadByte     Kind = "bad_lead_byte"
	KindUnterminated    Kind = "unterminated"
	KindLengthMismatch  Kind = "utf16_length_mismatch"
)

// General kinds.
const (
	KindIO           Kind = "io"
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindUnsupported  Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Sentinel returns a detail-free error usable as an errors.Is target.
func Sentinel(phase Phase, kind Kind) *Error {
	return &Error{Phase: phase, Kind: kind}
}

// Convenience constructors for common error patterns

// OutOfRange creates an offset error for a position that is not inside a buffer
// of the given length.
func OutOfRange(phase Phase, path []string, off, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOffsetOutOfRange,
		Path:   path,
		Detail: fmt.Sprintf("offset 0x%x out of range (length 0x%x)", off, length),
		Value:  off,
	}
}

// UnexpectedEOF creates an error for a read of n bytes at off that runs past
// the end of a buffer of the given length.
func UnexpectedEOF(phase Phase, off, n, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnexpectedEOF,
		Detail: fmt.Sprintf("need %d byte(s) at offset 0x%x, buffer length 0x%x", n, off, length),
		Value:  off,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, off int, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value at offset 0x%x overflows %s", off, targetType),
		Value:  off,
	}
}

// Mismatch creates an error for a stored value that disagrees with the expected one.
func Mismatch(phase Phase, kind Kind, path []string, got, want any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Path:   path,
		Detail: fmt.Sprintf("got %v, want %v", got, want),
		Value:  got,
	}
}

// InvalidData creates an invalid data error of the given kind
func InvalidData(phase Phase, kind Kind, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, index uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %d not found", what, index),
		Value:  index,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// Save creates an output writing error
func Save(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseSave,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}
