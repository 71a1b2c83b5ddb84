package operand

import (
	"testing"

	"hasm/internal/diag"
)

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		input string
		want  Operand
	}{
		{"rax", Operand{Kind: Register, Text: "rax", CharCode: -1}},
		{"R12D", Operand{Kind: Register, Text: "r12d", CharCode: -1}},
		{"al", Operand{Kind: Register, Text: "al", CharCode: -1}},
		{"42", Operand{Kind: Immediate, Text: "42", Value: 42, CharCode: -1}},
		{"-7", Operand{Kind: Immediate, Text: "-7", Value: -7, CharCode: -1}},
		{"0x1F", Operand{Kind: Immediate, Text: "0x1F", Value: 31, CharCode: -1}},
		{"0b101", Operand{Kind: Immediate, Text: "0b101", Value: 5, CharCode: -1}},
		{"counter", Operand{Kind: Identifier, Text: "counter", CharCode: -1}},
		{"[buffer]", Operand{Kind: Memory, Inner: "buffer", CharCode: -1}},
		{"byte [flag]", Operand{Kind: Memory, Size: "byte", Inner: "flag", CharCode: -1}},
		{"dword [i + 4]", Operand{Kind: Memory, Size: "dword", Inner: "i + 4", CharCode: -1}},
		{"qword[rsp]", Operand{Kind: Memory, Size: "qword", Inner: "rsp", CharCode: -1}},
		{"&buffer", Operand{Kind: Identifier, Text: "buffer", AddressOf: true, CharCode: -1}},
		{"&[table + 8]", Operand{Kind: Memory, Inner: "table + 8", AddressOf: true, CharCode: -1}},
	}

	for _, tt := range tests {
		got, err := Classify(tt.input)
		if err != nil {
			t.Errorf("Classify(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestClassifyStringLiterals(t *testing.T) {
	op, err := Classify(`"Hello, World!\n"`)
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind != String || op.Str != "Hello, World!\n" {
		t.Errorf("got %+v", op)
	}
	if op.CharCode != -1 {
		t.Errorf("multi-char literal should not carry a char code, got %d", op.CharCode)
	}
}

func TestSingleCharLiteralCarriesASCIICode(t *testing.T) {
	op, err := Classify(`"."`)
	if err != nil {
		t.Fatal(err)
	}
	if op.CharCode != 46 {
		t.Errorf("CharCode = %d, want 46", op.CharCode)
	}
}

func TestAddressOfRejectsRegisterAndImmediate(t *testing.T) {
	for _, input := range []string{"&rax", "&5"} {
		_, err := Classify(input)
		if diag.KindOf(err) != diag.InvalidAddressOf {
			t.Errorf("Classify(%q) error = %v, want InvalidAddressOf", input, err)
		}
	}
}

func TestClassifyErrors(t *testing.T) {
	bad := []string{"", `"unterminated`, "[]", "[buffer + x]", "12abc", "[+4]"}
	for _, input := range bad {
		if _, err := Classify(input); err == nil {
			t.Errorf("Classify(%q) succeeded, want error", input)
		}
	}
}

func TestAsmRendering(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"byte [flag]", "byte [flag]"},
		{"[buffer + 8]", "[buffer + 8]"},
		{"rax", "rax"},
		{"0x10", "0x10"},
	}
	for _, tt := range tests {
		op, err := Classify(tt.input)
		if err != nil {
			t.Fatal(err)
		}
		if got := op.Asm(); got != tt.want {
			t.Errorf("Asm(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRegisterTables(t *testing.T) {
	if w := RegisterWidth("r13w"); w != 16 {
		t.Errorf("RegisterWidth(r13w) = %d, want 16", w)
	}
	if b := BaseRegister("ah"); b != "rax" {
		t.Errorf("BaseRegister(ah) = %q, want rax", b)
	}
	if b := BaseRegister("r15b"); b != "r15" {
		t.Errorf("BaseRegister(r15b) = %q, want r15", b)
	}
	if s := SubRegister("rbx", 8); s != "bl" {
		t.Errorf("SubRegister(rbx, 8) = %q, want bl", s)
	}
	if s := SubRegister("r12", 32); s != "r12d" {
		t.Errorf("SubRegister(r12, 32) = %q, want r12d", s)
	}
	if IsRegister("rfx") {
		t.Error("rfx should not be a register")
	}
}

func FuzzClassify(f *testing.F) {
	f.Add("rax")
	f.Add(`"s"`)
	f.Add("dword [x + 1]")
	f.Add("&label")
	f.Add("0xff")
	f.Fuzz(func(t *testing.T, input string) {
		op, err := Classify(input)
		if err != nil {
			return
		}
		if op.Kind == Register && !IsRegister(op.Text) {
			t.Fatalf("register operand with unknown name %q", op.Text)
		}
		if op.AddressOf && op.Kind != Memory && op.Kind != Identifier {
			t.Fatalf("address-of leaked onto %v", op.Kind)
		}
	})
}
