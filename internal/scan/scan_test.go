package scan

import (
	"testing"

	"hasm/internal/token"
)

func TestScanClassifiesLines(t *testing.T) {
	source := `global main
; full line comment

section .text
main:
    mov rax, 60
if rax == 60
call println rax ; print it
endif
FOR i = 0, 9
endfor`

	lines := Scan(source)
	if len(lines) != 11 {
		t.Fatalf("expected 11 lines, got %d", len(lines))
	}

	tests := []struct {
		idx  int
		kind token.Kind
		args string
	}{
		{0, token.RAW, ""},
		{1, token.RAW, ""},
		{2, token.RAW, ""},
		{3, token.RAW, ""},
		{4, token.RAW, ""},
		{5, token.RAW, ""},
		{6, token.IF, "rax == 60"},
		{7, token.CALL, "println rax"},
		{8, token.ENDIF, ""},
		{9, token.FOR, "i = 0, 9"},
		{10, token.ENDFOR, ""},
	}

	for _, tt := range tests {
		ln := lines[tt.idx]
		if ln.Kind != tt.kind {
			t.Errorf("line %d: kind = %v, want %v (%q)", tt.idx+1, ln.Kind, tt.kind, ln.Text)
		}
		if ln.Kind != token.RAW && ln.Args != tt.args {
			t.Errorf("line %d: args = %q, want %q", tt.idx+1, ln.Args, tt.args)
		}
	}
}

func TestScanPreservesRawText(t *testing.T) {
	source := "    mov rax, [buffer + 8]   ; keep me"
	lines := Scan(source)
	if len(lines) != 1 || lines[0].Kind != token.RAW {
		t.Fatalf("expected one raw line, got %+v", lines)
	}
	if lines[0].Text != source {
		t.Errorf("raw text altered: %q", lines[0].Text)
	}
}

func TestScanCallParenForm(t *testing.T) {
	lines := Scan(`call f(1, 2)`)
	if lines[0].Kind != token.CALL {
		t.Fatalf("expected CALL, got %v", lines[0].Kind)
	}
	if lines[0].Args != "f(1, 2)" {
		t.Errorf("args = %q, want %q", lines[0].Args, "f(1, 2)")
	}
}

func TestStripCommentIgnoresSemicolonInString(t *testing.T) {
	lines := Scan(`call print "a;b" ; trailing`)
	if lines[0].Args != `print "a;b"` {
		t.Errorf("args = %q", lines[0].Args)
	}
}

func TestScanLineNumbersAreOneBased(t *testing.T) {
	lines := Scan("nop\nbreak")
	if lines[0].No != 1 || lines[1].No != 2 {
		t.Errorf("line numbers = %d, %d", lines[0].No, lines[1].No)
	}
}

func FuzzScan(f *testing.F) {
	f.Add("if rax == 1\ncall print \"x\"\nendif")
	f.Add("for i = 0, 9\nbreak\nendfor")
	f.Add("; comment\n\nmov rax, 1")
	f.Fuzz(func(t *testing.T, source string) {
		lines := Scan(source)
		for _, ln := range lines {
			if ln.No <= 0 {
				t.Fatalf("non-positive line number %d", ln.No)
			}
			if ln.Kind == token.RAW && ln.Args != "" {
				t.Fatalf("raw line carries args: %+v", ln)
			}
		}
	})
}
