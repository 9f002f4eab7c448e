package engine

import (
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
// Path is a JSON Pointer; the document root renders as "/".
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Offset  int64
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives every issue, fatal or not. Non-fatal issues (duplicate
	// keys under DupWarn) are only visible through it.
	IssueSink func(SimpleIssue)
	// FailFast turns warnings into errors.
	FailFast bool
}

// frame is one open container. For objects, keys maps every key seen so
// far to the offset of its first occurrence and key holds the member whose
// value comes next.
type frame struct {
	object bool
	path   string
	keys   map[string]int64
	key    string
	index  int
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes while tokens stream
// through it.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	var path string
	switch tok.Kind {
	case KindKey:
		path, err = e.key(tok)
	case KindBeginObject, KindBeginArray:
		path = e.valuePath()
		f := frame{object: tok.Kind == KindBeginObject, path: path}
		if f.object && e.opt.OnDuplicate != DupIgnore {
			f.keys = map[string]int64{}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			err = e.raise(SimpleIssue{Code: "parse_error", Path: path, Message: "max depth exceeded", Offset: tok.Offset}, true)
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			path = e.stack[n-1].path
			e.stack = e.stack[:n-1]
		}
	default:
		path = e.valuePath()
	}
	if err != nil {
		return Token{}, err
	}

	if e.opt.MaxBytes > 0 {
		if off := e.inner.Location(); off > e.opt.MaxBytes {
			return Token{}, e.raise(SimpleIssue{Code: "truncated", Path: path, Message: "max bytes exceeded", Offset: off}, true)
		}
	}
	return tok, nil
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

// key records an object key and checks it against earlier keys of the same
// object.
func (e *enforcingTokenSource) key(tok Token) (string, error) {
	n := len(e.stack)
	if n == 0 || !e.stack[n-1].object {
		return JoinPointer("", tok.String), nil
	}
	top := &e.stack[n-1]
	top.key = tok.String
	path := JoinPointer(top.path, tok.String)
	if top.keys == nil {
		return path, nil
	}
	if first, dup := top.keys[tok.String]; dup {
		msg := "key '" + tok.String + "' duplicated (first at offset " + strconv.FormatInt(first, 10) + ")"
		fatal := e.opt.OnDuplicate == DupError || e.opt.FailFast
		if err := e.raise(SimpleIssue{Code: "duplicate_key", Path: path, Message: msg, Offset: tok.Offset}, fatal); err != nil {
			return path, err
		}
		return path, nil
	}
	top.keys[tok.String] = tok.Offset
	return path, nil
}

// valuePath returns the pointer of the value token about to be consumed and
// advances the enclosing array index.
func (e *enforcingTokenSource) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.object {
		return JoinPointer(top.path, top.key)
	}
	p := JoinPointer(top.path, strconv.Itoa(top.index))
	top.index++
	return p
}

func (e *enforcingTokenSource) raise(si SimpleIssue, fatal bool) error {
	if si.Path == "" {
		si.Path = "/"
	}
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
	if fatal {
		return IssueError{si}
	}
	return nil
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapePointerToken escapes a reference token per RFC 6901.
func EscapePointerToken(s string) string {
	return jsonPointerEscaper.Replace(s)
}

// JoinPointer appends an unescaped token to a JSON Pointer.
func JoinPointer(base, token string) string {
	return base + "/" + EscapePointerToken(token)
}
