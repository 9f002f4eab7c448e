package schemabind

import (
	"io"

	eng "github.com/reoring/schemabind/internal/engine"
)

// DetectDuplicateKeys scans a JSON source and reports every duplicated object
// key as a duplicate_key issue. maxIssues <= 0 means unlimited. Syntax errors
// are returned as the error value.
func DetectDuplicateKeys(src Source, maxIssues int) (Issues, error) {
	var found Issues
	stop := errStop{}
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink: func(si eng.SimpleIssue) {
			found = append(found, fromSimpleIssue(si))
		},
	})
	limited := &limitSource{inner: enforced, found: &found, max: maxIssues, stop: stop}
	if err := eng.Drain(limited); err != nil && err != stop {
		return found, toIssues(err, src.Location())
	}
	return found, nil
}

// DetectDuplicateKeysBytes is DetectDuplicateKeys over a byte slice.
func DetectDuplicateKeysBytes(b []byte, maxIssues int) (Issues, error) {
	return DetectDuplicateKeys(JSONBytes(b), maxIssues)
}

// DetectDuplicateKeysReader is DetectDuplicateKeys over a reader. The reader
// is consumed fully unless the issue limit is reached.
func DetectDuplicateKeysReader(r io.Reader, maxIssues int) (Issues, error) {
	return DetectDuplicateKeys(JSONReader(r), maxIssues)
}

type errStop struct{}

func (errStop) Error() string { return "issue limit reached" }

type limitSource struct {
	inner eng.TokenSource
	found *Issues
	max   int
	stop  error
}

func (l *limitSource) NextToken() (eng.Token, error) {
	if l.max > 0 && len(*l.found) >= l.max {
		return eng.Token{}, l.stop
	}
	return l.inner.NextToken()
}

func (l *limitSource) Location() int64 { return l.inner.Location() }
