// Package errors provides structured error types for the DEX decoder.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the header field or table path involved, the offending value
// and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseHeader, errors.KindOffsetOutOfRange).
//		Path("string_ids_off").
//		Value(off).
//		Detail("offset 0x%x not below file size 0x%x", off, size).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfRange(errors.PhasePool, []string{"string_ids", "3"}, 0x9000, 0x400)
//	err := errors.Load("read dex file", ioErr)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when Phase and Kind are equal, so
// zero-detail sentinels can be compared against fully populated errors.
package errors
