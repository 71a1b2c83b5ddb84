package regalloc

import (
	"hasm/internal/diag"
	"hasm/internal/operand"
)

// preference is the callee-saved fallback order. Loop counters and
// parameters must survive calls inside the construct body, so only
// callee-saved registers are fallback candidates; transient argument
// registers never are.
var preference = [...]string{"r12", "r13", "r14", "r15", "rbx"}

// Binding maps a symbolic name to a physical register for the lifetime of
// its enclosing scope.
type Binding struct {
	Name  string
	Base  string // 64-bit family name, e.g. "r12"
	Width int    // width the binding was requested at, in bits
}

// Scope is one register-binding scope. Scopes nest: a function body opens a
// scope over the file-level top scope, loops reserve within the scope they
// appear in. Each name holds a stack of bindings so a nested construct
// reusing a name shadows the outer binding instead of destroying it; the
// shadowed register stays live until its own release.
type Scope struct {
	bindings map[string][]*Binding
	// touched records every base register reserved in this scope at any
	// point, in reservation order, including ones released before the scope
	// closed. Function prologues save exactly these.
	touched []string
}

// Allocator assigns physical registers to symbolic roles. One instance is
// shared by all lowering components of a compilation unit.
type Allocator struct {
	scopes []*Scope
}

func New() *Allocator {
	a := &Allocator{}
	a.PushScope() // file-level top scope
	return a
}

// PushScope opens a nested binding scope and returns it.
func (a *Allocator) PushScope() *Scope {
	s := &Scope{bindings: make(map[string][]*Binding)}
	a.scopes = append(a.scopes, s)
	return s
}

// PopScope closes the innermost scope, releasing all its bindings.
func (a *Allocator) PopScope() {
	if len(a.scopes) <= 1 {
		return // the top scope stays for the whole unit
	}
	a.scopes = a.scopes[:len(a.scopes)-1]
}

// Reserve binds name to a physical register. When requested names a specific
// register and that register is free in the scope chain it is taken at the
// requested width; otherwise the first free register from the callee-saved
// preference list is chosen, deterministically. Returns the register name at
// the binding's width.
func (a *Allocator) Reserve(name, requested string) (string, error) {
	width := 64
	if requested != "" {
		base := operand.BaseRegister(requested)
		if base == "" {
			return "", diag.Errorf(diag.SyntaxError, 0, "", "unknown register %q", requested)
		}
		width = operand.RegisterWidth(requested)
		if a.free(base) {
			a.bind(name, base, width)
			return operand.SubRegister(base, width), nil
		}
	}
	for _, base := range preference {
		if a.free(base) {
			a.bind(name, base, width)
			return operand.SubRegister(base, width), nil
		}
	}
	return "", diag.Errorf(diag.AllocationExhausted, 0, "",
		"no free callee-saved register for %q", name)
}

// Release frees the newest binding for name in the innermost scope that
// holds one. A binding it shadowed becomes visible again.
func (a *Allocator) Release(name string) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		stack := a.scopes[i].bindings[name]
		if len(stack) == 0 {
			continue
		}
		if len(stack) == 1 {
			delete(a.scopes[i].bindings, name)
		} else {
			a.scopes[i].bindings[name] = stack[:len(stack)-1]
		}
		return
	}
}

// Lookup resolves a symbolic name through the scope chain, innermost first,
// and returns the bound register at its reserved width. Shadowed names
// resolve to their newest binding.
func (a *Allocator) Lookup(name string) (string, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if stack := a.scopes[i].bindings[name]; len(stack) > 0 {
			b := stack[len(stack)-1]
			return operand.SubRegister(b.Base, b.Width), true
		}
	}
	return "", false
}

// Touched lists the base registers ever reserved in the given scope, in
// first-reservation order.
func (s *Scope) Touched() []string {
	return s.touched
}

func (a *Allocator) free(base string) bool {
	for _, s := range a.scopes {
		for _, stack := range s.bindings {
			for _, b := range stack {
				if b.Base == base {
					return false
				}
			}
		}
	}
	return true
}

func (a *Allocator) bind(name, base string, width int) {
	s := a.scopes[len(a.scopes)-1]
	s.bindings[name] = append(s.bindings[name], &Binding{Name: name, Base: base, Width: width})
	for _, t := range s.touched {
		if t == base {
			return
		}
	}
	s.touched = append(s.touched, base)
}
