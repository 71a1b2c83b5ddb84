package main

import "testing"

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path   string
		newExt string
		want   string
	}{
		{"prog.hasm", ".asm", "prog.asm"},
		{"prog.hasm", "", "prog"},
		{"prog", ".asm", "prog.asm"},
		{"prog", "", "prog.out"},
		{"dir.v2/prog.hasm", ".asm", "dir.v2/prog.asm"},
		{"dir.v2/prog", "", "dir.v2/prog.out"},
	}
	for _, tt := range tests {
		if got := replaceExt(tt.path, tt.newExt); got != tt.want {
			t.Errorf("replaceExt(%q, %q) = %q, want %q", tt.path, tt.newExt, got, tt.want)
		}
	}
}
