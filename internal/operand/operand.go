package operand

import (
	"strconv"
	"strings"

	"hasm/internal/diag"
)

// Kind tags a classified operand. Classification happens exactly once;
// downstream lowering pattern-matches on Kind and never re-sniffs the text.
type Kind string

const (
	Register   Kind = "register"
	Immediate  Kind = "immediate"
	Identifier Kind = "identifier"
	Memory     Kind = "memory"
	String     Kind = "string"
)

var memorySizes = map[string]int{
	"byte":  8,
	"word":  16,
	"dword": 32,
	"qword": 64,
}

// Operand is one classified operand. Immutable once returned by Classify.
type Operand struct {
	Kind  Kind
	Text  string // register name, immediate literal or identifier, as written
	Value int64  // numeric value for Immediate operands
	Str   string // decoded contents for String operands
	Size  string // memory size hint: byte, word, dword, qword, or ""
	Inner string // memory expression inside the brackets
	// AddressOf marks a '&' prefix: load the effective address rather than
	// the value.
	AddressOf bool
	// CharCode holds the ASCII code of a single-character string literal so
	// comparisons against byte registers can use an immediate. -1 otherwise.
	CharCode int
}

// Asm renders the operand as assembly text. String operands have no direct
// rendering; they are interned first.
func (o Operand) Asm() string {
	if o.Kind == Memory {
		if o.Size != "" {
			return o.Size + " [" + o.Inner + "]"
		}
		return "[" + o.Inner + "]"
	}
	return o.Text
}

// SizeBits returns the size hint of a memory operand in bits, or 0.
func (o Operand) SizeBits() int {
	return memorySizes[o.Size]
}

// Classify categorizes one textual operand. Priority: quoted text, bracketed
// (optionally size-prefixed) text, register name, numeric literal, identifier.
// A leading '&' requests effective-address loading and is only valid on
// memory expressions and identifiers.
func Classify(text string) (Operand, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Operand{}, diag.Errorf(diag.SyntaxError, 0, "", "empty operand")
	}

	if strings.HasPrefix(s, "&") {
		inner, err := Classify(s[1:])
		if err != nil {
			return Operand{}, err
		}
		switch inner.Kind {
		case Memory, Identifier:
			inner.AddressOf = true
			return inner, nil
		default:
			return Operand{}, diag.Errorf(diag.InvalidAddressOf, 0, "",
				"cannot take the address of %s %q", inner.Kind, inner.Asm())
		}
	}

	if strings.HasPrefix(s, `"`) {
		return classifyString(s)
	}

	if op, ok, err := classifyMemory(s); ok || err != nil {
		return op, err
	}

	if IsRegister(s) {
		return Operand{Kind: Register, Text: strings.ToLower(s), CharCode: -1}, nil
	}

	if v, ok := parseImmediate(s); ok {
		return Operand{Kind: Immediate, Text: s, Value: v, CharCode: -1}, nil
	}

	if isIdentifier(s) {
		return Operand{Kind: Identifier, Text: s, CharCode: -1}, nil
	}

	return Operand{}, diag.Errorf(diag.SyntaxError, 0, "", "cannot classify operand %q", s)
}

func classifyString(s string) (Operand, error) {
	if len(s) < 2 || !strings.HasSuffix(s, `"`) {
		return Operand{}, diag.Errorf(diag.SyntaxError, 0, "", "unterminated string literal %s", s)
	}
	decoded, err := decodeEscapes(s[1 : len(s)-1])
	if err != nil {
		return Operand{}, err
	}
	op := Operand{Kind: String, Str: decoded, CharCode: -1}
	if len(decoded) == 1 {
		op.CharCode = int(decoded[0])
	}
	return op, nil
}

func decodeEscapes(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", diag.Errorf(diag.SyntaxError, 0, "", "dangling escape in string literal")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", diag.Errorf(diag.SyntaxError, 0, "", "unknown escape '\\%c'", s[i])
		}
	}
	return b.String(), nil
}

// classifyMemory recognizes "[expr]" and "size [expr]" forms. The inner
// expression must be an identifier or register with an optional +/- integer
// displacement.
func classifyMemory(s string) (Operand, bool, error) {
	size := ""
	rest := s
	if i := strings.IndexAny(s, " \t["); i > 0 {
		word := strings.ToLower(strings.TrimSpace(s[:i]))
		if _, ok := memorySizes[word]; ok {
			after := strings.TrimSpace(s[i:])
			if strings.HasPrefix(after, "[") {
				size = word
				rest = after
			}
		}
	}
	if !strings.HasPrefix(rest, "[") {
		return Operand{}, false, nil
	}
	if !strings.HasSuffix(rest, "]") {
		return Operand{}, false, diag.Errorf(diag.SyntaxError, 0, "",
			"expected closing ']' in memory operand %q", s)
	}
	inner := strings.TrimSpace(rest[1 : len(rest)-1])
	if inner == "" {
		return Operand{}, false, diag.Errorf(diag.SyntaxError, 0, "", "empty memory operand '[]'")
	}
	normalized, err := normalizeMemoryExpr(inner)
	if err != nil {
		return Operand{}, false, err
	}
	return Operand{Kind: Memory, Size: size, Inner: normalized, CharCode: -1}, true, nil
}

func normalizeMemoryExpr(inner string) (string, error) {
	base := inner
	sign := ""
	disp := ""
	if i := strings.IndexAny(inner, "+-"); i > 0 {
		base = strings.TrimSpace(inner[:i])
		sign = string(inner[i])
		disp = strings.TrimSpace(inner[i+1:])
	}
	if base == "rel" || strings.HasPrefix(base, "rel ") {
		// "rel label" passes through untouched; NASM rel addressing
		return inner, nil
	}
	if !IsRegister(base) && !isIdentifier(base) {
		return "", diag.Errorf(diag.SyntaxError, 0, "",
			"memory operand base %q is neither register nor identifier", base)
	}
	if sign == "" {
		return base, nil
	}
	if _, ok := parseImmediate(disp); !ok {
		return "", diag.Errorf(diag.SyntaxError, 0, "",
			"memory displacement %q is not an integer", disp)
	}
	return base + " " + sign + " " + disp, nil
}

func parseImmediate(s string) (int64, bool) {
	t := s
	neg := false
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	}
	var v int64
	var err error
	switch {
	case strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X"):
		v, err = strconv.ParseInt(t[2:], 16, 64)
	case strings.HasPrefix(t, "0b") || strings.HasPrefix(t, "0B"):
		v, err = strconv.ParseInt(t[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(t, 10, 64)
	}
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c == '.' && i == 0:
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}
