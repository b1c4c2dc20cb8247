package fetch

import (
	"slices"
	"strings"
	"unicode"
)

// Entry is one parsed response header line.
type Entry struct {
	Name  string
	Value string
}

// Headers is the read-only view of a response's headers. Names are always
// lower-cased; Get and Has lower-case their argument before looking it up.
type Headers struct {
	keys    []string
	entries []Entry
	lookup  map[string]string
}

// ParseHeaders builds a Headers from a raw "Name: value" header dump as
// returned by getAllResponseHeaders. Each physical line yields one key and
// one entry. Lines without a colon are skipped, and so are lines whose name
// is empty: ": x" and ":" produce nothing rather than an entry named "".
// Repeated names are joined with "," in the lookup used by Get.
func ParseHeaders(raw string) *Headers {
	h := &Headers{lookup: make(map[string]string)}
	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' })
	for _, line := range lines {
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		name := strings.ToLower(line[:idx])
		value := strings.TrimLeftFunc(line[idx+1:], unicode.IsSpace)

		h.keys = append(h.keys, name)
		h.entries = append(h.entries, Entry{Name: name, Value: value})
		if prev, ok := h.lookup[name]; ok {
			h.lookup[name] = prev + "," + value
		} else {
			h.lookup[name] = value
		}
	}
	return h
}

// Keys returns the header names in the order they were parsed, one per line.
func (h *Headers) Keys() []string {
	return slices.Clone(h.keys)
}

// Entries returns one name/value pair per header line, in parse order.
func (h *Headers) Entries() []Entry {
	return slices.Clone(h.entries)
}

// Get returns the value for name, or "" when absent.
func (h *Headers) Get(name string) string {
	return h.lookup[strings.ToLower(name)]
}

// Has reports whether a header named name was received.
func (h *Headers) Has(name string) bool {
	_, ok := h.lookup[strings.ToLower(name)]
	return ok
}
