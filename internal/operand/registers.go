package operand

import "strings"

// register widths in bits, keyed by lowercase register name
var registerWidths = map[string]int{
	"rax": 64, "rbx": 64, "rcx": 64, "rdx": 64,
	"rsi": 64, "rdi": 64, "rbp": 64, "rsp": 64,
	"r8": 64, "r9": 64, "r10": 64, "r11": 64,
	"r12": 64, "r13": 64, "r14": 64, "r15": 64,

	"eax": 32, "ebx": 32, "ecx": 32, "edx": 32,
	"esi": 32, "edi": 32, "ebp": 32, "esp": 32,
	"r8d": 32, "r9d": 32, "r10d": 32, "r11d": 32,
	"r12d": 32, "r13d": 32, "r14d": 32, "r15d": 32,

	"ax": 16, "bx": 16, "cx": 16, "dx": 16,
	"si": 16, "di": 16, "bp": 16, "sp": 16,
	"r8w": 16, "r9w": 16, "r10w": 16, "r11w": 16,
	"r12w": 16, "r13w": 16, "r14w": 16, "r15w": 16,

	"al": 8, "bl": 8, "cl": 8, "dl": 8,
	"ah": 8, "bh": 8, "ch": 8, "dh": 8,
	"sil": 8, "dil": 8, "bpl": 8, "spl": 8,
	"r8b": 8, "r9b": 8, "r10b": 8, "r11b": 8,
	"r12b": 8, "r13b": 8, "r14b": 8, "r15b": 8,
}

// sub-register families keyed by the 64-bit name
var families = map[string][4]string{
	// 64, 32, 16, 8
	"rax": {"rax", "eax", "ax", "al"},
	"rbx": {"rbx", "ebx", "bx", "bl"},
	"rcx": {"rcx", "ecx", "cx", "cl"},
	"rdx": {"rdx", "edx", "dx", "dl"},
	"rsi": {"rsi", "esi", "si", "sil"},
	"rdi": {"rdi", "edi", "di", "dil"},
	"rbp": {"rbp", "ebp", "bp", "bpl"},
	"rsp": {"rsp", "esp", "sp", "spl"},
	"r8":  {"r8", "r8d", "r8w", "r8b"},
	"r9":  {"r9", "r9d", "r9w", "r9b"},
	"r10": {"r10", "r10d", "r10w", "r10b"},
	"r11": {"r11", "r11d", "r11w", "r11b"},
	"r12": {"r12", "r12d", "r12w", "r12b"},
	"r13": {"r13", "r13d", "r13w", "r13b"},
	"r14": {"r14", "r14d", "r14w", "r14b"},
	"r15": {"r15", "r15d", "r15w", "r15b"},
}

// IsRegister reports whether name is a known x86-64 register of any width.
func IsRegister(name string) bool {
	_, ok := registerWidths[strings.ToLower(name)]
	return ok
}

// RegisterWidth returns the width in bits of a register name, or 0 when the
// name is not a register.
func RegisterWidth(name string) int {
	return registerWidths[strings.ToLower(name)]
}

// BaseRegister maps any register name to its 64-bit family name, so eax,
// ax and al all map to rax. The high-byte forms ah..dh belong to the same
// families as al..dl.
func BaseRegister(name string) string {
	name = strings.ToLower(name)
	if _, ok := families[name]; ok {
		return name
	}
	for base, forms := range families {
		for _, f := range forms {
			if f == name {
				return base
			}
		}
	}
	switch name {
	case "ah":
		return "rax"
	case "bh":
		return "rbx"
	case "ch":
		return "rcx"
	case "dh":
		return "rdx"
	}
	return ""
}

// SubRegister returns the form of the given 64-bit register at the requested
// width in bits: SubRegister("r12", 32) is "r12d", SubRegister("rbx", 8) is
// "bl". Returns "" for unknown names or widths.
func SubRegister(base string, width int) string {
	forms, ok := families[strings.ToLower(base)]
	if !ok {
		return ""
	}
	switch width {
	case 64:
		return forms[0]
	case 32:
		return forms[1]
	case 16:
		return forms[2]
	case 8:
		return forms[3]
	}
	return ""
}
