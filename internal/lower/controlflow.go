package lower

import (
	"strings"

	"hasm/internal/diag"
	"hasm/internal/operand"
	"hasm/internal/token"
)

// lowerIf handles an if/elif/else/endif chain. Arms with constant
// conditions are resolved at lowering time: a false arm's block is still
// validated but emits nothing, a true arm makes every later arm dead.
func (l *Lowerer) lowerIf(open token.Line) error {
	endLabel := l.newLabel("endif")
	endLabelUsed := false
	branchTaken := false

	arm := open
	for {
		cond, err := parseComparison(arm.Args, arm.No, "if")
		if err != nil {
			return err
		}
		l.advance()

		result, constant := cond.fold()
		switch {
		case branchTaken || (constant && !result):
			if err := l.lowerDeadBlock(arm, token.ELIF, token.ELSE, token.ENDIF); err != nil {
				return err
			}
		case constant && result:
			branchTaken = true
			if err := l.lowerBlock(arm, token.ELIF, token.ELSE, token.ENDIF); err != nil {
				return err
			}
		default:
			falseLabel := l.newLabel("else")
			if err := l.lowerCondJump(cond, falseLabel, arm.No, "if"); err != nil {
				return err
			}
			if err := l.lowerBlock(arm, token.ELIF, token.ELSE, token.ENDIF); err != nil {
				return err
			}
			if cur, ok := l.current(); ok && (cur.Kind == token.ELIF || cur.Kind == token.ELSE) {
				l.emit("    jmp %s", endLabel)
				endLabelUsed = true
			}
			l.emit("%s:", falseLabel)
		}

		cur, ok := l.current()
		if !ok {
			return diag.Errorf(diag.SyntaxError, open.No, "if", "missing 'endif'")
		}
		switch cur.Kind {
		case token.ELIF:
			arm = cur
			continue
		case token.ELSE:
			l.advance()
			if branchTaken {
				if err := l.lowerDeadBlock(cur, token.ENDIF); err != nil {
					return err
				}
			} else {
				if err := l.lowerBlock(cur, token.ENDIF); err != nil {
					return err
				}
			}
			end, ok := l.current()
			if !ok || end.Kind != token.ENDIF {
				return diag.Errorf(diag.SyntaxError, open.No, "if", "missing 'endif'")
			}
			l.advance()
		case token.ENDIF:
			l.advance()
		}
		break
	}

	if endLabelUsed {
		l.emit("%s:", endLabel)
	}
	return nil
}

// lowerDeadBlock validates a block that constant folding eliminated.
// Lowering runs normally so structural errors still surface and library
// references still count, but nothing is emitted.
func (l *Lowerer) lowerDeadBlock(open token.Line, stops ...token.Kind) error {
	var discard []string
	l.pushSink(&discard)
	defer l.popSink()
	return l.lowerBlock(open, stops...)
}

// lowerFor handles both surface forms:
//
//	for v = start, end    inclusive range; exit once v > end
//	for v <comp> bound    implied start 0; exit once the comparison fails
//
// The loop variable gets a register for the whole construct, preferring the
// exact register when the variable names one.
func (l *Lowerer) lowerFor(open token.Line) error {
	head, err := parseForHeader(open)
	if err != nil {
		return err
	}
	l.advance()

	requested := ""
	if head.v.Kind == operand.Register {
		requested = head.v.Text
	}
	reg, err := l.alloc.Reserve(head.name, requested)
	if err != nil {
		return diag.At(err, open.No, "for")
	}
	defer l.alloc.Release(head.name)

	start, err := l.resolve(head.start, open.No, "for")
	if err != nil {
		return err
	}
	bound, err := l.resolve(head.bound, open.No, "for")
	if err != nil {
		return err
	}

	topLabel := l.newLabel("for")
	contLabel := l.newLabel("forinc")
	endLabel := l.newLabel("endfor")

	l.emit("    mov %s, %s", reg, start)
	l.emit("%s:", topLabel)
	l.emit("    cmp %s, %s", reg, bound)
	l.emit("    %s %s", head.exitJump, endLabel)

	l.pushLoop(loopContext{start: topLabel, end: endLabel, cont: contLabel})
	defer l.popLoop()

	if err := l.lowerBlock(open, token.ENDFOR); err != nil {
		return err
	}
	l.advance()

	l.emit("%s:", contLabel)
	l.emit("    inc %s", reg)
	l.emit("    jmp %s", topLabel)
	l.emit("%s:", endLabel)
	return nil
}

type forHeader struct {
	v        operand.Operand
	name     string
	start    operand.Operand
	bound    operand.Operand
	exitJump string
}

func parseForHeader(open token.Line) (forHeader, error) {
	args := open.Args

	if idx := findAssign(args); idx >= 0 {
		// range form: for v = start, end (end inclusive)
		v, err := operand.Classify(args[:idx])
		if err != nil {
			return forHeader{}, diag.At(err, open.No, "for")
		}
		rest := args[idx+1:]
		comma := findTopLevelComma(rest)
		if comma < 0 {
			return forHeader{}, diag.Errorf(diag.SyntaxError, open.No, "for",
				"expected 'for %s = start, end'", strings.TrimSpace(args[:idx]))
		}
		start, err := operand.Classify(rest[:comma])
		if err != nil {
			return forHeader{}, diag.At(err, open.No, "for")
		}
		bound, err := operand.Classify(rest[comma+1:])
		if err != nil {
			return forHeader{}, diag.At(err, open.No, "for")
		}
		h := forHeader{v: v, start: start, bound: bound, exitJump: "jg"}
		return h.withName(open)
	}

	if idx, op := findComparisonOp(args); idx >= 0 {
		// comparison form: for v <comp> bound, counting from zero
		v, err := operand.Classify(args[:idx])
		if err != nil {
			return forHeader{}, diag.At(err, open.No, "for")
		}
		bound, err := operand.Classify(args[idx+len(op):])
		if err != nil {
			return forHeader{}, diag.At(err, open.No, "for")
		}
		jump, ok := inverseJump[op]
		if !ok {
			return forHeader{}, diag.Errorf(diag.SyntaxError, open.No, "for",
				"unknown comparison operator %q", op)
		}
		zero := operand.Operand{Kind: operand.Immediate, Text: "0", CharCode: -1}
		h := forHeader{v: v, start: zero, bound: bound, exitJump: jump}
		return h.withName(open)
	}

	return forHeader{}, diag.Errorf(diag.SyntaxError, open.No, "for",
		"expected '=' or a comparison after the loop variable")
}

func (h forHeader) withName(open token.Line) (forHeader, error) {
	switch h.v.Kind {
	case operand.Register, operand.Identifier:
		h.name = strings.ToLower(h.v.Text)
		return h, nil
	}
	return forHeader{}, diag.Errorf(diag.SyntaxError, open.No, "for",
		"loop variable must be an identifier or register, got %q", h.v.Asm())
}

// findAssign locates a bare '=' that is not part of ==, <=, >= or !=.
func findAssign(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '=' {
			i++ // skip ==
			continue
		}
		if i > 0 && (s[i-1] == '=' || s[i-1] == '<' || s[i-1] == '>' || s[i-1] == '!') {
			continue
		}
		return i
	}
	return -1
}

func findTopLevelComma(s string) int {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if !inString && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lowerWhile emits a test-at-top loop. The continue target is the test
// itself. A constant-false condition removes the loop entirely; the body is
// still validated.
func (l *Lowerer) lowerWhile(open token.Line) error {
	cond, err := parseComparison(open.Args, open.No, "while")
	if err != nil {
		return err
	}
	l.advance()

	result, constant := cond.fold()
	if constant && !result {
		l.pushLoop(loopContext{})
		defer l.popLoop()
		if err := l.lowerDeadBlock(open, token.ENDWHILE); err != nil {
			return err
		}
		l.advance()
		return nil
	}

	topLabel := l.newLabel("while")
	endLabel := l.newLabel("endwhile")

	l.emit("%s:", topLabel)
	if !constant {
		if err := l.lowerCondJump(cond, endLabel, open.No, "while"); err != nil {
			return err
		}
	}

	l.pushLoop(loopContext{start: topLabel, end: endLabel, cont: topLabel})
	defer l.popLoop()

	if err := l.lowerBlock(open, token.ENDWHILE); err != nil {
		return err
	}
	l.advance()

	l.emit("    jmp %s", topLabel)
	l.emit("%s:", endLabel)
	return nil
}

// lowerBreak jumps past the innermost loop's end label.
func (l *Lowerer) lowerBreak(ln token.Line) error {
	lc, ok := l.innermostLoop()
	if !ok {
		return diag.Errorf(diag.NoEnclosingLoop, ln.No, "break", "'break' outside a loop")
	}
	l.advance()
	l.emit("    jmp %s", lc.end)
	return nil
}

// lowerContinue jumps to the innermost loop's continue target: the
// increment step of a for loop, or the test of a while loop.
func (l *Lowerer) lowerContinue(ln token.Line) error {
	lc, ok := l.innermostLoop()
	if !ok {
		return diag.Errorf(diag.NoEnclosingLoop, ln.No, "continue", "'continue' outside a loop")
	}
	l.advance()
	l.emit("    jmp %s", lc.cont)
	return nil
}
