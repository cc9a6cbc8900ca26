package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fvrmatteo/DEXParse/dex"
	"github.com/fvrmatteo/DEXParse/loader"
)

type config struct {
	opts    dex.Options
	out     string
	fix     bool
	strings bool
	width   int
}

func main() {
	var (
		dexFile     = flag.String("dex", "", "Path to a .dex file")
		apkFile     = flag.String("apk", "", "Path to an APK; every .dex entry is checked")
		outFile     = flag.String("o", "", "Write the buffer to this path after it validates")
		fix         = flag.Bool("fix", false, "Recompute signature and checksum before validating")
		checkSHA1   = flag.Bool("sha1", false, "Also verify the SHA-1 signature")
		lenient     = flag.Bool("lenient", false, "Keep reading strings after a malformed entry")
		strictLen   = flag.Bool("strict-len", false, "Reject strings whose UTF-16 length differs from utf16_size")
		listStrings = flag.Bool("strings", false, "Print every decoded string")
		interactive = flag.Bool("i", false, "Browse the string table in a TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
		quiet       = flag.Bool("q", false, "No logging")
	)
	flag.Parse()

	if (*dexFile == "") == (*apkFile == "") {
		fmt.Fprintln(os.Stderr, "Usage: dexparse -dex <classes.dex> [-strings] [-sha1] [-lenient] [-strict-len]")
		fmt.Fprintln(os.Stderr, "       dexparse -dex <classes.dex> -fix -o <out.dex>")
		fmt.Fprintln(os.Stderr, "       dexparse -apk <app.apk> [-strings]")
		fmt.Fprintln(os.Stderr, "       dexparse -dex <classes.dex> -i  (interactive mode)")
		os.Exit(1)
	}
	if *apkFile != "" && (*outFile != "" || *interactive) {
		fmt.Fprintln(os.Stderr, "Error: -o and -i need a single -dex input")
		os.Exit(1)
	}

	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if *interactive && !stdoutTTY {
		fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
		os.Exit(1)
	}

	logger, err := newLogger(*verbose && !*interactive, *quiet || *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	dex.SetLogger(logger)
	loader.SetLogger(logger)

	opts := dex.DefaultOptions()
	opts.VerifySignature = *checkSHA1
	opts.ContinueOnError = *lenient
	opts.StrictUTF16Length = *strictLen

	cfg := config{
		opts:    opts,
		out:     *outFile,
		fix:     *fix,
		strings: *listStrings,
	}
	if stdoutTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cfg.width = w
		}
	}

	if *interactive {
		if err := runInteractive(*dexFile, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *apkFile != "" {
		err = runAPK(os.Stdout, *apkFile, cfg)
	} else {
		err = run(os.Stdout, *dexFile, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose, quiet bool) (*zap.Logger, error) {
	switch {
	case quiet:
		return zap.NewNop(), nil
	case verbose:
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// run checks one .dex file and saves it to cfg.out when requested.
func run(w io.Writer, path string, cfg config) error {
	data, err := loader.Load(path)
	if err != nil {
		return err
	}
	f, err := check(w, path, data, cfg)
	if err != nil {
		return err
	}
	if cfg.out != "" {
		if err := loader.Save(cfg.out, data); err != nil {
			return err
		}
		fmt.Fprintf(w, "Saved %s (%d bytes)\n", cfg.out, f.Header.Length())
	}
	return nil
}

// runAPK checks every .dex entry of an archive and reports all failures.
func runAPK(w io.Writer, path string, cfg config) error {
	entries, err := loader.LoadAPK(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Archive: %s (%d dex entries)\n\n", path, len(entries))

	var errs error
	for _, e := range entries {
		if _, err := check(w, path+"!"+e.Name, e.Data, cfg); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.Name, err))
		}
		fmt.Fprintln(w)
	}
	return errs
}

// check optionally repairs data, parses it and writes the report. In lenient
// mode a File with string failures is reported and the failures returned.
func check(w io.Writer, name string, data []byte, cfg config) (*dex.File, error) {
	if cfg.fix {
		if err := dex.Repair(data); err != nil {
			return nil, err
		}
	}

	f, err := dex.ParseWithOptions(data, cfg.opts)
	if f == nil {
		writeFailure(w, name, err)
		return nil, err
	}
	writeReport(w, name, f, cfg)
	return f, err
}
