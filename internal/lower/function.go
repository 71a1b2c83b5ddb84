package lower

import (
	"hasm/internal/diag"
	"hasm/internal/operand"
	"hasm/internal/token"
)

// lowerFunc emits one complete routine: label, frame setup, saves for every
// callee-saved register the body binds, parameter moves out of the ABI
// registers, the lowered body, and a single epilogue that every return in
// the body jumps to. The body is lowered into a buffer first; which
// registers to save is only known once it has been.
func (l *Lowerer) lowerFunc(open token.Line) error {
	if l.epilogue != "" {
		return diag.Errorf(diag.SyntaxError, open.No, "func",
			"nested function definitions are not supported")
	}

	name, params, err := parseFuncHeader(open)
	if err != nil {
		return err
	}
	if len(params) > len(l.abi) {
		return diag.Errorf(diag.ArgumentLimitExceeded, open.No, "func",
			"'%s' declares %d parameters, the limit is %d", name, len(params), len(l.abi))
	}
	l.advance()

	scope := l.alloc.PushScope()
	defer l.alloc.PopScope()

	paramRegs := make([]string, len(params))
	for i, p := range params {
		reg, err := l.alloc.Reserve(p, "")
		if err != nil {
			return diag.At(err, open.No, "func")
		}
		paramRegs[i] = reg
	}

	l.epilogue = l.newLabel("ret")
	defer func() { l.epilogue = "" }()

	var body []string
	l.pushSink(&body)
	blockErr := l.lowerBlock(open, token.ENDFUNC)
	l.popSink()
	if blockErr != nil {
		return blockErr
	}
	l.advance() // consume endfunc

	saved := scope.Touched()

	l.emit("")
	l.emit("%s:", name)
	l.emit("    push rbp")
	l.emit("    mov rbp, rsp")
	for _, reg := range saved {
		l.emit("    push %s", reg)
	}
	for i, reg := range paramRegs {
		l.emit("    mov %s, %s", reg, l.abi[i])
	}
	for _, line := range body {
		l.emit("%s", line)
	}
	l.emit("%s:", l.epilogue)
	for i := len(saved) - 1; i >= 0; i-- {
		l.emit("    pop %s", saved[i])
	}
	l.emit("    pop rbp")
	l.emit("    ret")
	return nil
}

func parseFuncHeader(open token.Line) (string, []string, error) {
	ln := open
	name, rawParams, err := splitCall(ln)
	if err != nil {
		return "", nil, diag.Errorf(diag.SyntaxError, open.No, "func", "missing function name")
	}
	params := make([]string, 0, len(rawParams))
	for _, raw := range rawParams {
		op, cerr := operand.Classify(raw)
		if cerr != nil {
			return "", nil, diag.At(cerr, open.No, "func")
		}
		if op.Kind != operand.Identifier {
			return "", nil, diag.Errorf(diag.SyntaxError, open.No, "func",
				"parameter %q must be a plain name", op.Asm())
		}
		params = append(params, op.Text)
	}
	return name, params, nil
}

// lowerReturn leaves the enclosing routine. Inside a func it jumps to the
// shared epilogue so saved registers unwind in exactly one place; at the top
// level it tears down the frame inline. An operand, when present, becomes
// the return value in rax.
func (l *Lowerer) lowerReturn(ln token.Line) error {
	l.advance()

	if args := ln.Args; args != "" {
		op, err := operand.Classify(args)
		if err != nil {
			return diag.At(err, ln.No, "return")
		}
		src, err := l.resolve(op, ln.No, "return")
		if err != nil {
			return err
		}
		switch {
		case op.Kind == operand.Memory && (op.Size == "byte" || op.Size == "word"):
			l.emit("    movzx rax, %s", src)
		case op.Kind == operand.Memory && op.Size == "dword":
			l.emit("    mov eax, %s", src)
		case operand.IsRegister(src) && operand.RegisterWidth(src) <= 16:
			l.emit("    movzx rax, %s", src)
		case operand.IsRegister(src) && operand.RegisterWidth(src) == 32:
			l.emit("    mov eax, %s", src)
		case src != "rax":
			l.emit("    mov rax, %s", src)
		}
	}

	if l.epilogue != "" {
		l.emit("    jmp %s", l.epilogue)
		return nil
	}
	l.emit("    pop rbp")
	l.emit("    ret")
	return nil
}
