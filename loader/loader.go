// Package loader moves DEX images between disk and memory. It reads plain
// .dex files and the .dex entries of APK archives, and writes buffers back.
// Nothing here interprets the bytes; see package dex.
package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"

	"go.uber.org/zap"

	"github.com/fvrmatteo/DEXParse/errors"
)

// FilePerm is the mode Save creates files with.
const FilePerm = 0o644

var isDex = regexp.MustCompile(`^\S+\.dex$`)

// Entry is one DEX image extracted from an archive.
type Entry struct {
	Name string
	Data []byte
}

// Load reads the whole file at path into a caller-owned buffer.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("read %s", path), err)
	}
	Logger().Debug("loaded file", zap.String("path", path), zap.Int("size", len(data)))
	return data, nil
}

// Save writes data to path, replacing any existing file.
func Save(path string, data []byte) error {
	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return errors.Save(fmt.Sprintf("write %s", path), err)
	}
	Logger().Debug("saved file", zap.String("path", path), zap.Int("size", len(data)))
	return nil
}

// LoadAPK returns every .dex entry of the APK (or any ZIP archive) at path,
// in archive order.
func LoadAPK(path string) ([]Entry, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("open archive %s", path), err)
	}
	defer rc.Close()
	return readArchive(path, &rc.Reader)
}

// ReadAPK is LoadAPK over an archive already in memory.
func ReadAPK(data []byte) ([]Entry, error) {
	z, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Load("open archive", err)
	}
	return readArchive("<memory>", z)
}

func readArchive(name string, z *zip.Reader) ([]Entry, error) {
	Logger().Debug("reading archive", zap.String("archive", name), zap.Int("entries", len(z.File)))

	var out []Entry
	for i, f := range z.File {
		if !isDex.MatchString(f.Name) {
			continue
		}
		Logger().Debug("dex entry", zap.String("name", f.Name), zap.Int("index", i),
			zap.Uint64("size", f.UncompressedSize64))

		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Name: f.Name, Data: data})
	}
	if len(out) == 0 {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("no .dex entries in %s", name).
			Build()
	}
	return out, nil
}

// readEntry reads one entry, refusing sizes a DEX header cannot describe and
// entries whose content disagrees with the directory.
func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > math.MaxUint32 {
		return nil, errors.Unsupported(errors.PhaseLoad,
			fmt.Sprintf("entry %s is %d bytes, larger than any DEX file", f.Name, f.UncompressedSize64))
	}

	r, err := f.Open()
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("open entry %s", f.Name), err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, int64(f.UncompressedSize64)+1))
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("read entry %s", f.Name), err)
	}
	if uint64(len(data)) != f.UncompressedSize64 {
		return nil, errors.Mismatch(errors.PhaseLoad, errors.KindIO, []string{f.Name},
			len(data), f.UncompressedSize64)
	}
	return data, nil
}
