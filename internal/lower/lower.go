package lower

import (
	"fmt"
	"regexp"
	"strings"

	"hasm/internal/diag"
	"hasm/internal/intern"
	"hasm/internal/operand"
	"hasm/internal/regalloc"
	"hasm/internal/stdlib"
	"hasm/internal/token"
)

// section buckets for passthrough routing
const (
	sectNone  = ""
	sectData  = "data"
	sectBSS   = "bss"
	sectText  = "text"
	sectOther = "other"
)

// Result is the lowered compilation unit, ready for the emitter.
type Result struct {
	Target   string
	Header   []string // passthrough lines before the first section directive
	Data     []string
	BSS      []string
	Other    []string // passthrough sections we do not manage
	Text     []string // lowered code interleaved with raw .text lines
	Interned []intern.Entry
	UsedLib  []string // referenced library symbols, in first-reference order
}

// Lowerer drives the single-pass translation. All mutable compiler state
// lives here and is passed by reference into every lowering step; there are
// no package-level singletons.
type Lowerer struct {
	target string
	abi    []string

	alloc    *regalloc.Allocator
	interner *intern.Table
	lib      *stdlib.Library

	lines []token.Line
	pos   int

	labelCount int

	usedLib []string
	usedSet map[string]bool

	loops []loopContext

	// funcs and labels are collected up front so calls may reference
	// definitions later in the file
	funcs  map[string]bool
	labels map[string]bool

	epilogue   string // epilogue label of the function being lowered, or ""
	blockDepth int    // open high-level constructs

	header  []string
	data    []string
	bss     []string
	other   []string
	text    []string
	section string

	sinks []*[]string // nested emission buffers (function bodies, dead branches)
}

type loopContext struct {
	start string
	end   string
	cont  string
}

// abiArgRegisters maps a target to its integer argument registers, capped at
// the four arguments the call lowerer supports.
func abiArgRegisters(target string) []string {
	if target == "windows" {
		return []string{"rcx", "rdx", "r8", "r9"}
	}
	// System V (linux, macos)
	return []string{"rdi", "rsi", "rdx", "rcx"}
}

// New builds a lowerer for one compilation unit.
func New(target string) *Lowerer {
	return &Lowerer{
		target:   target,
		abi:      abiArgRegisters(target),
		alloc:    regalloc.New(),
		interner: intern.NewTable(),
		lib:      stdlib.ForTarget(target),
		usedSet:  make(map[string]bool),
		funcs:    make(map[string]bool),
		labels:   make(map[string]bool),
		section:  sectNone,
	}
}

var (
	rawLabelPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	rawDeclPattern  = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s+(?:db|dw|dd|dq|resb|resw|resd|resq|equ)\b`)
	sectionPattern  = regexp.MustCompile(`^\s*[Ss][Ee][Cc][Tt][Ii][Oo][Nn]\s+(\S+)`)
)

// Lower translates the classified lines into a Result. The unit lowers
// completely or fails with the first error; partial output never reaches the
// emitter.
func (l *Lowerer) Lower(lines []token.Line) (*Result, error) {
	l.lines = lines
	l.collectDeclarations()

	for l.pos < len(l.lines) {
		if err := l.lowerStatement(l.lines[l.pos]); err != nil {
			return nil, err
		}
	}

	return &Result{
		Target:   l.target,
		Header:   l.header,
		Data:     l.data,
		BSS:      l.bss,
		Other:    l.other,
		Text:     l.text,
		Interned: l.interner.Entries(),
		UsedLib:  l.usedLib,
	}, nil
}

// collectDeclarations records user function names and labels declared by raw
// lines, so forward references resolve in a single lowering pass.
func (l *Lowerer) collectDeclarations() {
	for _, ln := range l.lines {
		switch ln.Kind {
		case token.FUNC:
			if name := funcName(ln.Args); name != "" {
				l.funcs[name] = true
			}
		case token.RAW:
			if m := rawLabelPattern.FindStringSubmatch(ln.Text); m != nil {
				l.labels[m[1]] = true
			} else if m := rawDeclPattern.FindStringSubmatch(ln.Text); m != nil {
				l.labels[m[1]] = true
			}
		}
	}
}

func funcName(args string) string {
	name := args
	if i := strings.IndexAny(name, "( \t"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// lowerStatement dispatches one statement by keyword. Block keywords consume
// everything through their matching closer.
func (l *Lowerer) lowerStatement(ln token.Line) error {
	switch ln.Kind {
	case token.RAW:
		l.advance()
		l.routeRaw(ln)
		return nil
	case token.IF:
		return l.lowerIf(ln)
	case token.FOR:
		return l.lowerFor(ln)
	case token.WHILE:
		return l.lowerWhile(ln)
	case token.FUNC:
		return l.lowerFunc(ln)
	case token.CALL:
		return l.lowerCall(ln)
	case token.RETURN:
		return l.lowerReturn(ln)
	case token.BREAK:
		return l.lowerBreak(ln)
	case token.CONTINUE:
		return l.lowerContinue(ln)
	case token.ELIF, token.ELSE:
		return diag.Errorf(diag.SyntaxError, ln.No, "if",
			"'%s' without a matching 'if'", strings.ToLower(string(ln.Kind)))
	case token.ENDIF, token.ENDFOR, token.ENDWHILE, token.ENDFUNC:
		return diag.Errorf(diag.SyntaxError, ln.No, "",
			"unexpected '%s'", strings.ToLower(string(ln.Kind)))
	}
	return diag.Errorf(diag.SyntaxError, ln.No, "", "unhandled statement kind %s", ln.Kind)
}

// lowerBlock lowers statements until one of the stop keywords appears at the
// current position. The stop line is left unconsumed. Running out of input
// means the opening construct was never closed.
func (l *Lowerer) lowerBlock(open token.Line, stops ...token.Kind) error {
	l.blockDepth++
	defer func() { l.blockDepth-- }()
	for {
		if l.pos >= len(l.lines) {
			return diag.Errorf(diag.SyntaxError, open.No, strings.ToLower(string(open.Kind)),
				"missing '%s'", strings.ToLower(string(open.Kind.Closer())))
		}
		cur := l.lines[l.pos]
		for _, stop := range stops {
			if cur.Kind == stop {
				return nil
			}
		}
		if err := l.lowerStatement(cur); err != nil {
			return err
		}
	}
}

func (l *Lowerer) current() (token.Line, bool) {
	if l.pos < len(l.lines) {
		return l.lines[l.pos], true
	}
	return token.Line{}, false
}

func (l *Lowerer) advance() {
	l.pos++
}

// newLabel generates a globally unique label with an origin prefix, so
// nested and sibling constructs never collide. The ..@ form is special to
// NASM: unlike .-prefixed local labels it needs no preceding non-local
// label and does not interrupt the user's own local-label blocks.
func (l *Lowerer) newLabel(prefix string) string {
	label := fmt.Sprintf("..@%s%d", prefix, l.labelCount)
	l.labelCount++
	return label
}

// emit appends one line of assembly to the active sink.
func (l *Lowerer) emit(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if n := len(l.sinks); n > 0 {
		*l.sinks[n-1] = append(*l.sinks[n-1], line)
		return
	}
	l.text = append(l.text, line)
}

func (l *Lowerer) pushSink(buf *[]string) {
	l.sinks = append(l.sinks, buf)
}

func (l *Lowerer) popSink() {
	l.sinks = l.sinks[:len(l.sinks)-1]
}

// routeRaw forwards a passthrough line verbatim. At the top level lines are
// routed into their section bucket; inside an open construct they join the
// surrounding lowered code so interleaving is preserved.
func (l *Lowerer) routeRaw(ln token.Line) {
	if len(l.sinks) > 0 || l.blockDepth > 0 {
		l.emit("%s", ln.Text)
		return
	}
	if m := sectionPattern.FindStringSubmatch(ln.Text); m != nil {
		switch strings.ToLower(m[1]) {
		case ".data":
			l.section = sectData
		case ".bss":
			l.section = sectBSS
		case ".text":
			l.section = sectText
		default:
			// a section we do not manage: keep the directive and all its
			// lines together, emitted between .bss and .text
			l.section = sectOther
			l.other = append(l.other, ln.Text)
		}
		return
	}
	switch l.section {
	case sectNone:
		l.header = append(l.header, ln.Text)
	case sectData:
		l.data = append(l.data, ln.Text)
	case sectBSS:
		l.bss = append(l.bss, ln.Text)
	case sectOther:
		l.other = append(l.other, ln.Text)
	default:
		l.text = append(l.text, ln.Text)
	}
}

// markUsed records a referenced library symbol. The used-set is lexical:
// references inside constant-folded dead branches still count.
func (l *Lowerer) markUsed(name string) {
	if !l.usedSet[name] {
		l.usedSet[name] = true
		l.usedLib = append(l.usedLib, name)
	}
}

// pushLoop enters a loop construct; the matching popLoop must run on every
// exit path, including errors.
func (l *Lowerer) pushLoop(lc loopContext) {
	l.loops = append(l.loops, lc)
}

func (l *Lowerer) popLoop() {
	l.loops = l.loops[:len(l.loops)-1]
}

func (l *Lowerer) innermostLoop() (loopContext, bool) {
	if len(l.loops) == 0 {
		return loopContext{}, false
	}
	return l.loops[len(l.loops)-1], true
}

// resolve renders an operand as assembly text, mapping symbolic names bound
// by the register allocator onto their physical registers. Identifiers that
// resolve to nothing known are an error.
func (l *Lowerer) resolve(op operand.Operand, line int, construct string) (string, error) {
	switch op.Kind {
	case operand.Register:
		if reg, ok := l.alloc.Lookup(op.Text); ok {
			return reg, nil
		}
		return op.Text, nil
	case operand.Identifier:
		if reg, ok := l.alloc.Lookup(op.Text); ok {
			return reg, nil
		}
		if l.knownName(op.Text) {
			return op.Text, nil
		}
		return "", diag.Errorf(diag.UnresolvedIdentifier, line, construct,
			"unknown name %q", op.Text)
	case operand.Memory:
		return l.resolveMemory(op, line, construct)
	case operand.Immediate:
		return op.Text, nil
	}
	return "", diag.Errorf(diag.SyntaxError, line, construct,
		"operand %q cannot be used here", op.Asm())
}

func (l *Lowerer) resolveMemory(op operand.Operand, line int, construct string) (string, error) {
	parts := strings.Fields(op.Inner)
	base := parts[0]
	if reg, ok := l.alloc.Lookup(strings.ToLower(base)); ok {
		parts[0] = reg
	} else if !operand.IsRegister(base) && !strings.EqualFold(base, "rel") {
		if !l.knownName(base) {
			return "", diag.Errorf(diag.UnresolvedIdentifier, line, construct,
				"unknown name %q in memory operand", base)
		}
	}
	inner := strings.Join(parts, " ")
	if op.Size != "" {
		return op.Size + " [" + inner + "]", nil
	}
	return "[" + inner + "]", nil
}

func (l *Lowerer) knownName(name string) bool {
	return l.labels[name] || l.funcs[name] || l.lib.Has(name)
}
