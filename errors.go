package schemabind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/schemabind/i18n"
)

// Issue codes.
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeUnknownField         = "unknown_field"
	CodeUnknownRecord        = "unknown_record"
	CodeDuplicateKey         = "duplicate_key"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidFormat        = "invalid_format"
	CodeUnionAmbiguous       = "union_ambiguous"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeArity                = "arity"
	CodeParseError           = "parse_error"
	CodeTruncated            = "truncated"
)

// Issue represents a single binding or validation failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /basedOn/0/reference).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	// Field is the logical field name from the catalogue when the issue is
	// tied to one. It can differ from the last path token for choice fields.
	Field  string
	Cause  error // Optional: underlying error.
	Offset int64 // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"code":"bogus"}) for i18n
	// and log fields.
	Params map[string]any
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (it Issue) Unwrap() error { return it.Cause }

// Error renders a single issue.
func (it Issue) Error() string {
	msg := it.Message
	if msg == "" {
		msg = i18n.T(it.Code, it.Params)
	}
	if it.Path == "" {
		return it.Code + ": " + msg
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, msg)
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, pathOrRoot(it.Path))
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap lets errors.Is see the causes of every issue.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// Codes returns the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Code)
	}
	return out
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally. A bare
// Issue is promoted to a single-element Issues.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var it Issue
	if errors.As(err, &it) {
		return Issues{it}, true
	}
	return nil, false
}

// HasCode reports whether err carries at least one issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// NewIssue builds an Issue whose message is rendered from the i18n catalogue.
func NewIssue(path, code string, params map[string]any) Issue {
	return Issue{Path: path, Code: code, Message: i18n.T(code, params), Offset: -1, Params: params}
}

// MissingRequiredField reports that a required field is absent.
func MissingRequiredField(path, field string) Issues {
	it := NewIssue(path, CodeRequired, map[string]any{"field": field})
	it.Field = field
	return Issues{it}
}

// UnknownEnumCode reports a code outside an enumeration's closed set.
func UnknownEnumCode(path, field, code string) Issues {
	it := NewIssue(path, CodeInvalidEnum, map[string]any{"field": field, "code": code})
	it.Field = field
	return Issues{it}
}

// AmbiguousChoice reports that more than one alternative of a choice field is
// present.
func AmbiguousChoice(path, field string, keys []string) Issues {
	it := NewIssue(path, CodeUnionAmbiguous, map[string]any{"field": field, "keys": strings.Join(keys, ", ")})
	it.Field = field
	return Issues{it}
}

// InvalidType reports a value whose JSON kind does not match the declared one.
func InvalidType(path, field, want, got string) Issues {
	it := NewIssue(path, CodeInvalidType, map[string]any{"field": field, "expected": want, "actual": got})
	it.Field = field
	return Issues{it}
}
