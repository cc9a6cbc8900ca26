package main

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fvrmatteo/DEXParse/dex"
)

const fixture = "testdata/hello.dex"

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func defaultConfig() config {
	return config{opts: dex.DefaultOptions()}
}

func TestRun(t *testing.T) {
	cfg := defaultConfig()
	cfg.strings = true

	var out bytes.Buffer
	if err := run(&out, fixture, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{
		fixture + ": ok",
		"035",
		"0x4e091ce2",
		"470769e9579eb6830bd317db92c6a6ff26c20ca5",
		"4 decoded",
		`[0] "Hello"`,
		`[1] "Lcom/example/Main;"`,
		`[2] "main"`,
		`[3] ""`,
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunWithoutStrings(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, fixture, defaultConfig()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out.String(), `"Hello"`) {
		t.Errorf("strings listed without -strings:\n%s", out.String())
	}
}

func TestRunInvalid(t *testing.T) {
	data := readFixture(t)
	data[0x82] = 'E'
	path := writeTemp(t, "bad.dex", data)

	var out bytes.Buffer
	err := run(&out, path, defaultConfig())
	if !errors.Is(err, dex.ErrChecksumMismatch) {
		t.Fatalf("got %v, want checksum_mismatch", err)
	}
	if !strings.Contains(out.String(), "invalid") || !strings.Contains(out.String(), "checksum_mismatch") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRunFixAndSave(t *testing.T) {
	data := readFixture(t)
	data[0x82] = 'E'
	path := writeTemp(t, "bad.dex", data)
	outPath := filepath.Join(t.TempDir(), "fixed.dex")

	cfg := defaultConfig()
	cfg.fix = true
	cfg.out = outPath
	cfg.strings = true

	var out bytes.Buffer
	if err := run(&out, path, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"HEllo"`) || !strings.Contains(out.String(), "Saved "+outPath) {
		t.Errorf("output:\n%s", out.String())
	}

	saved, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	opts := dex.DefaultOptions()
	opts.VerifySignature = true
	if _, err := dex.ValidateWithOptions(saved, opts); err != nil {
		t.Errorf("saved file: %v", err)
	}
}

func TestRunNoSaveOnFailure(t *testing.T) {
	data := readFixture(t)
	data[0x82] = 'E'
	path := writeTemp(t, "bad.dex", data)
	outPath := filepath.Join(t.TempDir(), "out.dex")

	cfg := defaultConfig()
	cfg.out = outPath
	if err := run(&bytes.Buffer{}, path, cfg); err == nil {
		t.Fatal("got nil error")
	}
	if _, err := os.Stat(outPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output written for an invalid file: %v", err)
	}
}

func TestRunSignature(t *testing.T) {
	data := readFixture(t)
	data[0x82] = 'E'
	if err := dex.UpdateChecksum(data); err != nil {
		t.Fatal(err)
	}
	path := writeTemp(t, "resigned.dex", data)

	if err := run(&bytes.Buffer{}, path, defaultConfig()); err != nil {
		t.Errorf("without -sha1: %v", err)
	}
	cfg := defaultConfig()
	cfg.opts.VerifySignature = true
	if err := run(&bytes.Buffer{}, path, cfg); !errors.Is(err, dex.ErrSignatureMismatch) {
		t.Errorf("with -sha1: got %v, want signature_mismatch", err)
	}
}

func TestRunLenient(t *testing.T) {
	data := readFixture(t)
	data[0x82] = 0xff
	if err := dex.Repair(data); err != nil {
		t.Fatal(err)
	}
	path := writeTemp(t, "badstring.dex", data)

	var out bytes.Buffer
	if err := run(&out, path, defaultConfig()); !errors.Is(err, dex.ErrBadLeadByte) {
		t.Fatalf("strict: got %v, want bad_lead_byte", err)
	}

	cfg := defaultConfig()
	cfg.opts.ContinueOnError = true
	cfg.strings = true
	out.Reset()
	if err := run(&out, path, cfg); !errors.Is(err, dex.ErrBadLeadByte) {
		t.Fatalf("lenient: got %v, want bad_lead_byte", err)
	}
	for _, want := range []string{"1 malformed string(s)", "3 decoded", `[1] "Lcom/example/Main;"`, "bad_lead_byte"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunMissingFile(t *testing.T) {
	if err := run(&bytes.Buffer{}, filepath.Join(t.TempDir(), "none.dex"), defaultConfig()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want not exist", err)
	}
}

func TestRunAPK(t *testing.T) {
	good := readFixture(t)
	bad := readFixture(t)
	bad[0x82] = 'E'

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range []struct {
		name string
		data []byte
	}{
		{"classes.dex", good},
		{"AndroidManifest.xml", []byte("<manifest/>")},
		{"classes2.dex", bad},
	} {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeTemp(t, "app.apk", buf.Bytes())

	var out bytes.Buffer
	err := runAPK(&out, path, defaultConfig())
	if got := len(multierr.Errors(err)); got != 1 {
		t.Fatalf("got %d errors (%v), want 1", got, err)
	}
	if !errors.Is(err, dex.ErrChecksumMismatch) || !strings.Contains(err.Error(), "classes2.dex") {
		t.Errorf("got %v", err)
	}
	for _, want := range []string{"2 dex entries", "app.apk!classes.dex: ok", "app.apk!classes2.dex: invalid"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestNewLogger(t *testing.T) {
	quiet, err := newLogger(false, true)
	if err != nil {
		t.Fatal(err)
	}
	if quiet.Core().Enabled(zap.ErrorLevel) {
		t.Error("quiet logger enabled at error level")
	}

	verbose, err := newLogger(true, false)
	if err != nil {
		t.Fatal(err)
	}
	if !verbose.Core().Enabled(zap.DebugLevel) {
		t.Error("verbose logger disabled at debug level")
	}

	def, err := newLogger(false, false)
	if err != nil {
		t.Fatal(err)
	}
	if def.Core().Enabled(zap.InfoLevel) || !def.Core().Enabled(zap.WarnLevel) {
		t.Error("default logger should start at warn level")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 0, "short"},
		{"short", 80, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer string", 10, "a longe..."},
		{"日本語テキスト", 9, "日本語..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d): got %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
