package lower

import (
	"strings"

	"github.com/samber/lo"

	"hasm/internal/diag"
	"hasm/internal/operand"
	"hasm/internal/token"
)

// lowerCall loads up to four arguments into the target ABI's registers and
// emits the call. Library routines referenced here are recorded for
// injection; the callee label resolves against library routines first, then
// user functions, then raw labels.
func (l *Lowerer) lowerCall(ln token.Line) error {
	l.advance()

	name, rawArgs, err := splitCall(ln)
	if err != nil {
		return err
	}

	args, err := classifyArgs(rawArgs, ln.No)
	if err != nil {
		return err
	}
	if len(args) > len(l.abi) {
		return diag.Errorf(diag.ArgumentLimitExceeded, ln.No, "call",
			"'%s' called with %d arguments, the limit is %d", name, len(args), len(l.abi))
	}

	callee := name
	switch {
	case l.lib.Has(name):
		l.markUsed(name)
		callee = l.lib.Routine(name)
	case l.funcs[name], l.labels[name]:
	default:
		return diag.Errorf(diag.UnresolvedIdentifier, ln.No, "call", "unknown routine %q", name)
	}

	if len(args) > 0 {
		rendered := lo.Map(args, func(a operand.Operand, _ int) string { return a.Asm() })
		l.emit("    ; call %s(%s)", name, strings.Join(rendered, ", "))
	}
	for i, arg := range args {
		if err := l.loadArg(l.abi[i], arg, ln.No); err != nil {
			return err
		}
	}
	l.emit("    call %s", callee)
	return nil
}

// splitCall accepts both surface forms:
//
//	call name arg, arg
//	call name(arg, arg)
func splitCall(ln token.Line) (string, []string, error) {
	args := strings.TrimSpace(ln.Args)
	if args == "" {
		return "", nil, diag.Errorf(diag.SyntaxError, ln.No, "call", "missing routine name")
	}

	var name, rest string
	if i := strings.IndexByte(args, '('); i >= 0 && !strings.ContainsAny(args[:i], " \t") {
		if !strings.HasSuffix(args, ")") {
			return "", nil, diag.Errorf(diag.SyntaxError, ln.No, "call", "missing ')' in %q", args)
		}
		name = strings.TrimSpace(args[:i])
		rest = args[i+1 : len(args)-1]
	} else if i := strings.IndexAny(args, " \t"); i >= 0 {
		name = args[:i]
		rest = args[i+1:]
	} else {
		name = args
	}
	if name == "" {
		return "", nil, diag.Errorf(diag.SyntaxError, ln.No, "call", "missing routine name")
	}

	var parts []string
	for rest = strings.TrimSpace(rest); rest != ""; {
		if i := findTopLevelComma(rest); i >= 0 {
			parts = append(parts, rest[:i])
			rest = strings.TrimSpace(rest[i+1:])
			continue
		}
		parts = append(parts, rest)
		break
	}
	return name, parts, nil
}

func classifyArgs(raw []string, line int) ([]operand.Operand, error) {
	args := make([]operand.Operand, 0, len(raw))
	for _, r := range raw {
		op, err := operand.Classify(r)
		if err != nil {
			return nil, diag.At(err, line, "call")
		}
		args = append(args, op)
	}
	return args, nil
}

// loadArg materializes one argument into an ABI register. Sub-64-bit
// sources are widened so the callee always sees a full register.
func (l *Lowerer) loadArg(dst string, arg operand.Operand, line int) error {
	switch arg.Kind {
	case operand.String:
		label := l.interner.Intern(arg.Str)
		l.labels[label] = true
		l.emit("    lea %s, [rel %s]", dst, label)
		return nil
	case operand.Memory:
		if arg.AddressOf {
			src, err := l.resolve(arg, line, "call")
			if err != nil {
				return err
			}
			l.emit("    lea %s, %s", dst, stripSize(src))
			return nil
		}
		src, err := l.resolve(arg, line, "call")
		if err != nil {
			return err
		}
		switch arg.Size {
		case "byte", "word":
			l.emit("    movzx %s, %s", dst, src)
		case "dword":
			l.emit("    mov %s, %s", operand.SubRegister(dst, 32), src)
		default:
			l.emit("    mov %s, %s", dst, src)
		}
		return nil
	case operand.Identifier:
		if arg.AddressOf {
			src, err := l.resolve(arg, line, "call")
			if err != nil {
				return err
			}
			if operand.IsRegister(src) {
				return diag.Errorf(diag.InvalidAddressOf, line, "call",
					"cannot take the address of register-bound %q", arg.Text)
			}
			l.emit("    lea %s, [rel %s]", dst, src)
			return nil
		}
		src, err := l.resolve(arg, line, "call")
		if err != nil {
			return err
		}
		if operand.IsRegister(src) {
			return l.loadRegister(dst, src)
		}
		// a bare data label passes its address
		l.emit("    lea %s, [rel %s]", dst, src)
		return nil
	case operand.Register:
		src, err := l.resolve(arg, line, "call")
		if err != nil {
			return err
		}
		return l.loadRegister(dst, src)
	case operand.Immediate:
		l.emit("    mov %s, %s", dst, arg.Text)
		return nil
	}
	return diag.Errorf(diag.SyntaxError, line, "call", "argument %q cannot be passed", arg.Asm())
}

// loadRegister widens a source register into the 64-bit destination.
func (l *Lowerer) loadRegister(dst, src string) error {
	switch operand.RegisterWidth(src) {
	case 8, 16:
		l.emit("    movzx %s, %s", dst, src)
	case 32:
		l.emit("    mov %s, %s", operand.SubRegister(dst, 32), src)
	default:
		if src != dst {
			l.emit("    mov %s, %s", dst, src)
		}
	}
	return nil
}

// stripSize drops a size prefix so the operand is usable with lea.
func stripSize(s string) string {
	if i := strings.IndexByte(s, '['); i > 0 {
		return s[i:]
	}
	return s
}
