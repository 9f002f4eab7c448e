package schemabind

import (
	"strconv"
	"strings"

	eng "github.com/reoring/schemabind/internal/engine"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
// The zero value is the document root. PathRefs are immutable.
type PathRef struct {
	ptr string
}

// Root returns the PathRef for the document root.
func Root() PathRef { return PathRef{} }

// At returns a PathRef for an already-escaped JSON Pointer.
func At(pointer string) PathRef {
	if pointer == "/" {
		pointer = ""
	}
	return PathRef{ptr: pointer}
}

// Field appends an object key. The key is escaped per RFC 6901.
func (p PathRef) Field(name string) PathRef {
	return PathRef{ptr: eng.JoinPointer(p.ptr, name)}
}

// Index appends an array index.
func (p PathRef) Index(i int) PathRef {
	return PathRef{ptr: p.ptr + "/" + strconv.Itoa(i)}
}

// Pointer renders the path; the root renders as "/".
func (p PathRef) Pointer() string {
	if p.ptr == "" {
		return "/"
	}
	return p.ptr
}

// IsRoot reports whether p points at the document root.
func (p PathRef) IsRoot() bool { return p.ptr == "" }

// Issue creates an Issue at this path. kv holds alternating param names and
// values.
func (p PathRef) Issue(code string, kv ...any) Issue {
	var params map[string]any
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				params[k] = kv[i+1]
			}
		}
	}
	return NewIssue(p.Pointer(), code, params)
}

// SplitPointer returns the unescaped reference tokens of a JSON Pointer.
func SplitPointer(pointer string) []string {
	if pointer == "" || pointer == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, s := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
	}
	return parts
}

// Lookup evaluates a JSON Pointer against a Document Value.
func Lookup(doc any, pointer string) (any, bool) {
	cur := doc
	for _, tok := range SplitPointer(pointer) {
		switch n := cur.(type) {
		case map[string]any:
			v, ok := n[tok]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(n) {
				return nil, false
			}
			cur = n[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
