package lower

import (
	"strconv"
	"strings"

	"hasm/internal/diag"
	"hasm/internal/operand"
)

// comparison is two classified operands joined by a predicate.
type comparison struct {
	left  operand.Operand
	right operand.Operand
	op    string
}

// two-character operators must be tried before their one-character prefixes
var comparisonOps = []string{"==", "!=", "<=", ">=", "<", ">"}

// inverseJump maps a predicate to the conditional jump taken when the
// predicate FAILS: the jump skips the true-block.
var inverseJump = map[string]string{
	"==": "jne",
	"!=": "je",
	"<":  "jge",
	">":  "jle",
	"<=": "jg",
	">=": "jl",
}

// mirrored returns the predicate with its operands swapped.
func mirrored(op string) string {
	switch op {
	case "<":
		return ">"
	case ">":
		return "<"
	case "<=":
		return ">="
	case ">=":
		return "<="
	}
	return op // == and != are symmetric
}

// parseComparison splits "lhs <op> rhs" on the first top-level comparison
// operator, honoring quotes and brackets.
func parseComparison(args string, line int, construct string) (comparison, error) {
	idx, op := findComparisonOp(args)
	if idx < 0 {
		return comparison{}, diag.Errorf(diag.SyntaxError, line, construct,
			"expected a comparison in %q", args)
	}

	left, err := operand.Classify(args[:idx])
	if err != nil {
		return comparison{}, diag.At(err, line, construct)
	}
	right, err := operand.Classify(args[idx+len(op):])
	if err != nil {
		return comparison{}, diag.At(err, line, construct)
	}
	return comparison{left: left, right: right, op: op}, nil
}

func findComparisonOp(s string) (int, string) {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inString {
				i++
			}
			continue
		case '"':
			inString = !inString
			continue
		case '[':
			depth++
			continue
		case ']':
			depth--
			continue
		}
		if inString || depth > 0 {
			continue
		}
		for _, op := range comparisonOps {
			if strings.HasPrefix(s[i:], op) {
				// reject the '=' of a two-char operator matched as '<' or '>'
				return i, op
			}
		}
	}
	return -1, ""
}

// fold resolves a comparison between two compile-time constants. The second
// result reports whether folding applied.
func (c comparison) fold() (bool, bool) {
	if c.left.Kind != operand.Immediate || c.right.Kind != operand.Immediate {
		return false, false
	}
	a, b := c.left.Value, c.right.Value
	switch c.op {
	case "==":
		return a == b, true
	case "!=":
		return a != b, true
	case "<":
		return a < b, true
	case ">":
		return a > b, true
	case "<=":
		return a <= b, true
	case ">=":
		return a >= b, true
	}
	return false, false
}

// lowerCondJump emits exactly one compare and one conditional jump whose
// sense is the logical inverse of the predicate: control transfers to
// falseLabel when the predicate fails. Constant comparisons must be folded
// by the caller and never reach this point.
func (l *Lowerer) lowerCondJump(c comparison, falseLabel string, line int, construct string) error {
	left, right, op := c.left, c.right, c.op

	// a single-character literal compared against a byte register becomes
	// an immediate compare against its ASCII code
	if left.Kind == operand.String {
		left, right = right, left
		op = mirrored(op)
	}
	if right.Kind == operand.String {
		if right.CharCode < 0 || left.Kind != operand.Register || operand.RegisterWidth(left.Text) != 8 {
			return diag.Errorf(diag.SyntaxError, line, construct,
				"string comparisons are only supported between a single-character literal and a byte register")
		}
		right = operand.Operand{Kind: operand.Immediate, Text: strconv.Itoa(right.CharCode), Value: int64(right.CharCode)}
	}

	// an immediate is never a valid compare destination
	if left.Kind == operand.Immediate {
		left, right = right, left
		op = mirrored(op)
	}

	switch left.Kind {
	case operand.Register, operand.Memory:
	case operand.Identifier:
		if _, ok := l.alloc.Lookup(left.Text); !ok {
			return diag.Errorf(diag.SyntaxError, line, construct,
				"%q cannot be compared directly; use a sized memory operand like 'byte [%s]'",
				left.Text, left.Text)
		}
	default:
		return diag.Errorf(diag.SyntaxError, line, construct,
			"%q is not comparable", left.Asm())
	}
	if left.Kind == operand.Memory && right.Kind == operand.Memory {
		return diag.Errorf(diag.SyntaxError, line, construct,
			"cannot compare two memory operands in one instruction")
	}
	// without a register on either side nothing fixes the operand width
	if left.Kind == operand.Memory && left.Size == "" {
		sized := right.Kind == operand.Register
		if right.Kind == operand.Identifier {
			_, sized = l.alloc.Lookup(right.Text)
		}
		if !sized {
			return diag.Errorf(diag.SyntaxError, line, construct,
				"memory operand needs a size hint here, e.g. 'qword %s'", left.Asm())
		}
	}

	jump, ok := inverseJump[op]
	if !ok {
		return diag.Errorf(diag.SyntaxError, line, construct, "unknown comparison operator %q", op)
	}

	lhs, err := l.resolve(left, line, construct)
	if err != nil {
		return err
	}
	rhs, err := l.resolve(right, line, construct)
	if err != nil {
		return err
	}

	l.emit("    cmp %s, %s", lhs, rhs)
	l.emit("    %s %s", jump, falseLabel)
	return nil
}
