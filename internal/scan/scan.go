package scan

import (
	"strings"

	"hasm/internal/token"
)

// Scan classifies every line of source as either a raw passthrough line or a
// high-level statement. A line is high-level when its first word is a known
// keyword; everything else, including blank lines and full-line comments, is
// forwarded untouched.
func Scan(source string) []token.Line {
	rawLines := strings.Split(source, "\n")
	lines := make([]token.Line, 0, len(rawLines))

	for i, text := range rawLines {
		no := i + 1
		trimmed := strings.TrimSpace(text)

		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			lines = append(lines, token.Line{No: no, Kind: token.RAW, Text: text})
			continue
		}

		word := firstWord(trimmed)
		kind, ok := token.LookupKeyword(strings.ToLower(word))
		if !ok {
			lines = append(lines, token.Line{No: no, Kind: token.RAW, Text: text})
			continue
		}

		args := strings.TrimSpace(trimmed[len(word):])
		args = stripComment(args)
		lines = append(lines, token.Line{No: no, Kind: kind, Text: text, Args: args})
	}

	return lines
}

func firstWord(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' || s[i] == '(' {
			return s[:i]
		}
	}
	return s
}

// stripComment removes a trailing ; comment, ignoring semicolons inside
// string literals.
func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return strings.TrimSpace(s[:i])
			}
		}
	}
	return strings.TrimSpace(s)
}
