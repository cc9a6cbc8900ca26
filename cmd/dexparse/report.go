package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fvrmatteo/DEXParse/dex"
)

type styles struct {
	name  lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	label lipgloss.Style
	text  lipgloss.Style
}

// newStyles binds the report colours to w's colour profile, so a pipe or a
// buffer receives plain text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		name:  r.NewStyle().Bold(true),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		label: r.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Width(12),
		text:  r.NewStyle().Foreground(lipgloss.Color("#98FB98")),
	}
}

func writeFailure(w io.Writer, name string, err error) {
	st := newStyles(w)
	fmt.Fprintf(w, "%s: %s\n", st.name.Render(name), st.fail.Render("invalid"))
	fmt.Fprintf(w, "  %s\n", st.fail.Render(err.Error()))
}

func writeReport(w io.Writer, name string, f *dex.File, cfg config) {
	st := newStyles(w)
	h := f.Header.Header()

	failed := 0
	for _, s := range f.Strings {
		if s.Err != nil {
			failed++
		}
	}
	status := st.ok.Render("ok")
	if failed > 0 {
		status = st.fail.Render(fmt.Sprintf("%d malformed string(s)", failed))
	}
	fmt.Fprintf(w, "%s: %s\n", st.name.Render(name), status)

	endian := "little"
	if f.Header.ReverseEndian() {
		endian = "reverse tag"
	}
	field := func(label, format string, args ...any) {
		fmt.Fprintf(w, "  %s%s\n", st.label.Render(label), fmt.Sprintf(format, args...))
	}
	field("version", "%s", f.Header.Version())
	field("file size", "%d", h.FileSize)
	field("checksum", "0x%08x", h.Checksum)
	field("signature", "%x", h.Signature)
	field("endian", "%s", endian)
	field("map", "0x%x", h.MapOff)
	for _, sec := range h.Sections() {
		field(sec.Name, "%-8d 0x%x", sec.Size, sec.Off)
	}
	field("strings", "%d decoded", len(f.Strings)-failed)

	if !cfg.strings {
		return
	}
	fmt.Fprintln(w)
	for _, s := range f.Strings {
		if s.Err != nil {
			fmt.Fprintf(w, "  [%d] %s\n", s.Index, st.fail.Render(s.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "  [%d] %s\n", s.Index, st.text.Render(truncate(fmt.Sprintf("%q", s.Text), cfg.width-12)))
	}
}

// truncate shortens s to at most width cells. A width below 4 means no limit.
func truncate(s string, width int) string {
	if width < 4 || lipgloss.Width(s) <= width {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if lipgloss.Width(b.String()+string(r)) > width-3 {
			break
		}
		b.WriteRune(r)
	}
	b.WriteString("...")
	return b.String()
}
