package stdlib

import (
	"github.com/samber/lo"

	"hasm/internal/diag"
)

// Symbol is one library routine: its implementation template plus the
// symbols it depends on. A symbol may bring along data, bss reservations
// and extern declarations.
type Symbol struct {
	Name     string
	Requires []string
	Text     string
	Data     []string
	BSS      []string
	Externs  []string
}

// Routine returns the label the routine is emitted under.
func (s *Symbol) Routine() string {
	return "_" + s.Name
}

// Library is the symbol table for one target platform.
type Library struct {
	symbols map[string]*Symbol
}

// ForTarget returns the library for the given target. The windows table
// calls into kernel32; every other target gets the syscall-based linux
// table.
func ForTarget(target string) *Library {
	if target == "windows" {
		return newLibrary(windowsSymbols)
	}
	return newLibrary(linuxSymbols)
}

func newLibrary(symbols []*Symbol) *Library {
	l := &Library{symbols: make(map[string]*Symbol, len(symbols))}
	for _, s := range symbols {
		l.symbols[s.Name] = s
	}
	return l
}

// Has reports whether name is a recognized library symbol.
func (l *Library) Has(name string) bool {
	_, ok := l.symbols[name]
	return ok
}

// Routine returns the emitted label for a library symbol name.
func (l *Library) Routine(name string) string {
	return l.symbols[name].Routine()
}

// Injection is everything the used symbols contribute to the output.
type Injection struct {
	Text    []string
	Data    []string
	BSS     []string
	Externs []string
}

// Inject resolves the used symbol set into emission order: every symbol's
// dependencies precede it, every symbol appears at most once, unused
// symbols never appear. A dependency cycle is a compile error.
func (l *Library) Inject(used []string) (Injection, error) {
	var inj Injection

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)

	var visit func(name string) error
	visit = func(name string) error {
		sym, ok := l.symbols[name]
		if !ok {
			return nil
		}
		switch state[name] {
		case done:
			return nil
		case visiting:
			return diag.Errorf(diag.CyclicStdlibDependency, 0, "",
				"library symbol %q depends on itself", name)
		}
		state[name] = visiting
		for _, req := range sym.Requires {
			if err := visit(req); err != nil {
				return err
			}
		}
		state[name] = done

		inj.Text = append(inj.Text, sym.Text)
		inj.Data = append(inj.Data, sym.Data...)
		inj.BSS = append(inj.BSS, sym.BSS...)
		inj.Externs = append(inj.Externs, sym.Externs...)
		return nil
	}

	for _, name := range used {
		if err := visit(name); err != nil {
			return Injection{}, err
		}
	}

	inj.Externs = lo.Uniq(inj.Externs)
	return inj, nil
}
