// Package emit renders a lowered compilation unit as a NASM translation
// unit. Section order is fixed: externs, the passthrough header, .data,
// .bss, unmanaged sections, .text. Library routines come last in .text so
// user code reads top-down.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/asmfmt"

	"hasm/internal/intern"
	"hasm/internal/lower"
	"hasm/internal/stdlib"
)

// Render produces the complete output file. Empty sections are omitted.
func Render(res *lower.Result, inj stdlib.Injection) string {
	var b strings.Builder

	for _, e := range inj.Externs {
		fmt.Fprintf(&b, "extern %s\n", e)
	}
	if len(inj.Externs) > 0 {
		b.WriteByte('\n')
	}

	for _, line := range res.Header {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	data := make([]string, 0, len(res.Data)+len(res.Interned)+len(inj.Data))
	data = append(data, res.Data...)
	for _, e := range res.Interned {
		data = append(data, dataLine(e))
	}
	data = append(data, inj.Data...)
	writeSection(&b, "section .data", data)

	bss := make([]string, 0, len(res.BSS)+len(inj.BSS))
	bss = append(bss, res.BSS...)
	bss = append(bss, inj.BSS...)
	writeSection(&b, "section .bss", bss)

	if len(res.Other) > 0 {
		b.WriteByte('\n')
		for _, line := range res.Other {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	if len(res.Text) > 0 || len(inj.Text) > 0 {
		b.WriteString("\nsection .text\n")
		for _, line := range res.Text {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		for _, routine := range inj.Text {
			b.WriteByte('\n')
			b.WriteString(routine)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func writeSection(b *strings.Builder, directive string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteByte('\n')
	b.WriteString(directive)
	b.WriteByte('\n')
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// dataLine renders one interned string as a NUL-terminated db directive.
func dataLine(e intern.Entry) string {
	return e.Label + " db " + nasmString(e.Text)
}

// nasmString encodes arbitrary bytes for a db directive: printable runs in
// double quotes, everything else numeric, with a trailing NUL. NASM
// double-quoted strings have no escape sequences, so the quote character
// itself is emitted numerically.
func nasmString(s string) string {
	var parts []string
	var run []byte
	flush := func() {
		if len(run) > 0 {
			parts = append(parts, `"`+string(run)+`"`)
			run = run[:0]
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c < 0x7f && c != '"' {
			run = append(run, c)
			continue
		}
		flush()
		parts = append(parts, strconv.Itoa(int(c)))
	}
	flush()
	parts = append(parts, "0")
	return strings.Join(parts, ", ")
}

// Format runs the rendered output through asmfmt for consistent column
// alignment. Formatting failures leave the input untouched.
func Format(src string) string {
	out, err := asmfmt.Format(strings.NewReader(src))
	if err != nil {
		return src
	}
	return string(out)
}
