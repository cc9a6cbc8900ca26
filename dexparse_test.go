package dexparse_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"

	dexparse "github.com/fvrmatteo/DEXParse"
	"github.com/fvrmatteo/DEXParse/dex"
	dexerrors "github.com/fvrmatteo/DEXParse/errors"
)

const fixture = "cmd/dexparse/testdata/hello.dex"

func TestParseFile(t *testing.T) {
	f, err := dexparse.ParseFile(fixture, dex.DefaultOptions())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(f.Strings) != 4 {
		t.Fatalf("got %d strings, want 4", len(f.Strings))
	}
	if s, _ := f.String(1); s != "Lcom/example/Main;" {
		t.Errorf("String(1): got %q", s)
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := dexparse.ParseFile(filepath.Join(t.TempDir(), "missing.dex"), dex.DefaultOptions())
	if !errors.Is(err, dexerrors.Sentinel(dexerrors.PhaseLoad, dexerrors.KindIO)) {
		t.Errorf("got %v, want load io error", err)
	}
}

func TestParseAPK(t *testing.T) {
	good, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	bad := append([]byte(nil), good...)
	copy(bad[4:7], "099")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string][]byte{"classes.dex": good, "classes2.dex": bad} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "app.apk")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := dexparse.ParseAPK(path, dex.DefaultOptions())
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if n := len(multierr.Errors(err)); n != 1 || !errors.Is(err, dex.ErrBadVersion) {
		t.Errorf("got %v, want one bad_version", err)
	}
	for _, e := range entries {
		switch e.Name {
		case "classes.dex":
			if e.Err != nil || e.File == nil || len(e.File.Strings) != 4 {
				t.Errorf("classes.dex: got %+v", e)
			}
		case "classes2.dex":
			if e.File != nil || !errors.Is(e.Err, dex.ErrBadVersion) {
				t.Errorf("classes2.dex: got %+v", e)
			}
		default:
			t.Errorf("unexpected entry %s", e.Name)
		}
	}
}
