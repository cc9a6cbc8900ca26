package dexparse

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/fvrmatteo/DEXParse/dex"
	"github.com/fvrmatteo/DEXParse/loader"
)

// ParseFile loads the file at path and parses it with opts.
func ParseFile(path string, opts dex.Options) (*dex.File, error) {
	data, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return dex.ParseWithOptions(data, opts)
}

// Entry is one parsed .dex entry of an archive. File is nil when the entry
// failed header validation.
type Entry struct {
	Err  error
	File *dex.File
	Name string
}

// ParseAPK parses every .dex entry of the archive at path in archive order.
// Entries are parsed independently; the returned error combines the failures
// of all entries.
func ParseAPK(path string, opts dex.Options) ([]Entry, error) {
	raw, err := loader.LoadAPK(path)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, len(raw))
	var errs error
	for i, e := range raw {
		f, err := dex.ParseWithOptions(e.Data, opts)
		out[i] = Entry{Name: e.Name, File: f, Err: err}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.Name, err))
		}
	}
	return out, errs
}
