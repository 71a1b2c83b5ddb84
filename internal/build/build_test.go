package build

import (
	"strings"
	"testing"
)

func TestObjectFormat(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"linux", "elf64"},
		{"windows", "win64"},
		{"macos", "macho64"},
		{"", "elf64"},
	}
	for _, tt := range tests {
		if got := ObjectFormat(tt.target); got != tt.want {
			t.Errorf("ObjectFormat(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestAssembleArgsUseTargetFormat(t *testing.T) {
	argv := assembleArgs("windows", "in.asm", "out.o")
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "-f win64") {
		t.Errorf("argv = %v", argv)
	}
}

func TestLinkArgsAppendExtraFlags(t *testing.T) {
	for _, argv := range linkArgs("linux", "a.o", "a.out", "-lm", "-s") {
		n := len(argv)
		if n < 2 || argv[n-2] != "-lm" || argv[n-1] != "-s" {
			t.Errorf("extra flags not appended: %v", argv)
		}
	}
}

func TestLinkArgsAlwaysHaveFallback(t *testing.T) {
	for _, target := range []string{"linux", "windows", "macos"} {
		cands := linkArgs(target, "a.o", "a.out")
		if len(cands) < 2 {
			t.Errorf("%s: %d link candidates, want a fallback", target, len(cands))
		}
		for _, argv := range cands {
			joined := strings.Join(argv, " ")
			if !strings.Contains(joined, "a.o") || !strings.Contains(joined, "a.out") {
				t.Errorf("%s: candidate %v missing paths", target, argv)
			}
		}
	}
}
