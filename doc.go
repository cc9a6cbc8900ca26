// Package dexparse validates Dalvik Executable (DEX) files and decodes their
// string tables.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	dexparse/            Root package: one-call helpers over files and APKs
//	├── dex/             Header validation, string pool, LEB128/MUTF-8/Adler-32 codecs
//	├── loader/          Reading .dex files and APK entries, writing buffers back
//	├── errors/          Structured error types keyed by phase and kind
//	└── cmd/dexparse/    Command line report and interactive string browser
//
// # Quick Start
//
// Parse a file from disk:
//
//	f, err := dexparse.ParseFile("classes.dex", dex.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range f.Strings {
//	    fmt.Println(s.Index, s.Text)
//	}
//
// Work on a buffer already in memory:
//
//	vh, err := dex.Validate(data)
//	if errors.Is(err, dex.ErrChecksumMismatch) {
//	    _ = dex.Repair(data)
//	}
//
// # Errors
//
// Every failure is an *errors.Error naming the phase (load, save, header,
// decode, pool) and the kind of violation. The dex package exports one
// sentinel per kind for use with errors.Is.
//
// # Thread Safety
//
// Nothing in the module keeps state between calls apart from the package
// loggers, which must be set before use. Buffers are only read, except by
// dex.Repair and its Update helpers.
package dexparse
