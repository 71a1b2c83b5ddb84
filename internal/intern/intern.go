package intern

import "fmt"

// Entry is one interned string literal: a generated data label and the
// literal bytes it names.
type Entry struct {
	Label string
	Text  string
}

// Table deduplicates string literals by content. Entries keep their
// first-interned order so emission is stable.
type Table struct {
	labels  map[string]string
	entries []Entry
}

func NewTable() *Table {
	return &Table{labels: make(map[string]string)}
}

// Intern returns the label for text, allocating a fresh one on first sight.
// Byte-identical text always yields the same label.
func (t *Table) Intern(text string) string {
	if label, ok := t.labels[text]; ok {
		return label
	}
	label := fmt.Sprintf("_str_%d", len(t.entries))
	t.labels[text] = label
	t.entries = append(t.entries, Entry{Label: label, Text: text})
	return label
}

// Entries returns all interned entries in first-interned order.
func (t *Table) Entries() []Entry {
	return t.entries
}
