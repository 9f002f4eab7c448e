package schemabind

import (
	"context"
	"errors"
	"io"

	eng "github.com/reoring/schemabind/internal/engine"
)

// ParseDocument consumes tokens from the Source and builds a Document Value:
// map[string]any, []any, string, bool, nil and json.Number (or float64 under
// NumberFloat64). Duplicate keys, depth and size limits are enforced as the
// options request. Failures are returned as Issues.
func ParseDocument(ctx context.Context, src Source, opts ...ParseOpt) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, singleIssue(CodeParseError, "nil source")
	}
	opt := lastOpt(opts)
	conv := eng.JSONNumber
	if src.NumberMode() == NumberFloat64 {
		conv = eng.Float64
	}
	v, err := eng.DecodeDocument(enforce(src, opt), conv)
	if err != nil {
		return nil, toIssues(err, src.Location())
	}
	return v, nil
}

// ParseDocumentReader parses a JSON document from r using the current driver.
// When MaxBytes is set the size cap is applied before tokenizing.
func ParseDocumentReader(ctx context.Context, r io.Reader, opts ...ParseOpt) (any, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return nil, singleIssue(CodeParseError, err.Error())
		}
		if int64(len(data)) > opt.MaxBytes {
			return nil, singleIssue(CodeTruncated, "max bytes exceeded")
		}
		return ParseDocument(ctx, JSONBytes(data), opts...)
	}
	return ParseDocument(ctx, JSONReader(r), opts...)
}

// ParseBytes parses a JSON document held in memory using the current driver.
func ParseBytes(ctx context.Context, b []byte, opts ...ParseOpt) (any, error) {
	return ParseDocument(ctx, JSONBytes(b), opts...)
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}

func enforce(src Source, opt ParseOpt) eng.TokenSource {
	inner := engineTokenSource(src)
	if opt.Strictness.OnDuplicateKey == Ignore && opt.MaxDepth == 0 && opt.MaxBytes == 0 {
		return inner
	}
	var sink func(eng.SimpleIssue)
	if opt.Warnings != nil {
		sink = func(si eng.SimpleIssue) {
			if si.Code == CodeDuplicateKey && opt.Strictness.OnDuplicateKey == Warn && !opt.FailFast {
				opt.Warnings(fromSimpleIssue(si))
			}
		}
	}
	return eng.WrapWithEnforcement(inner, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   sink,
		FailFast:    opt.FailFast,
	})
}

func toIssues(err error, offset int64) Issues {
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{fromSimpleIssue(ie.SimpleIssue)}
	}
	msg := err.Error()
	if errors.Is(err, io.ErrUnexpectedEOF) {
		msg = "unexpected end of input"
	}
	return Issues{{Code: CodeParseError, Message: msg, Cause: err, Offset: offset}}
}

func fromSimpleIssue(si eng.SimpleIssue) Issue {
	return Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: si.Offset}
}

func singleIssue(code, msg string) Issues {
	return AppendIssues(nil, Issue{Code: code, Message: msg, Offset: -1})
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
