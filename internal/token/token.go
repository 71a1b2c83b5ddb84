package token

// Kind is a string alias for statement kinds
// Using string makes debugging easier (we can print "FOR" instead of a number)
type Kind string

const (
	// RAW is any line that is not recognized as a high-level statement.
	// Raw lines are forwarded to the output verbatim.
	RAW Kind = "RAW"

	// High-level keywords
	IF       Kind = "IF"
	ELIF     Kind = "ELIF"
	ELSE     Kind = "ELSE"
	ENDIF    Kind = "ENDIF"
	FOR      Kind = "FOR"
	ENDFOR   Kind = "ENDFOR"
	WHILE    Kind = "WHILE"
	ENDWHILE Kind = "ENDWHILE"
	BREAK    Kind = "BREAK"
	CONTINUE Kind = "CONTINUE"
	FUNC     Kind = "FUNC"
	ENDFUNC  Kind = "ENDFUNC"
	RETURN   Kind = "RETURN"
	CALL     Kind = "CALL"
)

// Line is one classified source line. For RAW lines Text preserves the
// original line byte for byte; for keyword lines Args holds the text after
// the keyword with any trailing comment stripped.
type Line struct {
	No   int
	Kind Kind
	Text string
	Args string
}

var keywords = map[string]Kind{
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"endif":    ENDIF,
	"for":      FOR,
	"endfor":   ENDFOR,
	"while":    WHILE,
	"endwhile": ENDWHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"func":     FUNC,
	"endfunc":  ENDFUNC,
	"return":   RETURN,
	"call":     CALL,
}

// LookupKeyword checks whether word starts a high-level statement.
// Keywords are case-insensitive, matching assembler convention.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}

// Closer returns the keyword that closes a block opened by k,
// or RAW if k does not open a block.
func (k Kind) Closer() Kind {
	switch k {
	case IF:
		return ENDIF
	case FOR:
		return ENDFOR
	case WHILE:
		return ENDWHILE
	case FUNC:
		return ENDFUNC
	}
	return RAW
}
