// Package middleware validates catalogue documents at net/http boundaries.
// Documents parses and validates the request body, then hands the View to
// the next handler through the request context.
package middleware

import (
	"context"
	"errors"
	"mime"
	"net/http"

	gojson "github.com/goccy/go-json"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/i18n"
	"github.com/reoring/schemabind/schema"
)

type ctxKeyView struct{}

// ContextWithView attaches a validated View to the context.
func ContextWithView(ctx context.Context, v bind.View) context.Context {
	return context.WithValue(ctx, ctxKeyView{}, v)
}

// ViewFromContext retrieves the View stored by Documents.
func ViewFromContext(ctx context.Context) (bind.View, bool) {
	v, ok := ctx.Value(ctxKeyView{}).(bind.View)
	return v, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors and nesting is bounded.
func DefaultParseOpt() schemabind.ParseOpt {
	return schemabind.ParseOpt{
		Strictness: schemabind.Strictness{OnDuplicateKey: schemabind.Error},
		MaxDepth:   bind.DefaultMaxDepth,
	}
}

// IssueJSON is the wire form of one issue.
type IssueJSON struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Hint    string         `json:"hint,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// ErrorPayload shapes Issues for JSON responses. Messages are rendered in
// the current i18n language when the issue has none.
func ErrorPayload(issues schemabind.Issues) map[string]any {
	out := make([]IssueJSON, 0, len(issues))
	for _, it := range issues {
		msg := it.Message
		if msg == "" {
			msg = i18n.T(it.Code, it.Params)
		}
		out = append(out, IssueJSON{
			Path:    it.Path,
			Code:    it.Code,
			Message: msg,
			Field:   it.Field,
			Hint:    it.Hint,
			Params:  it.Params,
		})
	}
	return map[string]any{"issues": out}
}

// Options configures Documents.
type Options struct {
	// Record projects every body as this record type. Empty resolves the
	// type through the catalogue discriminator.
	Record string
	// RecordFunc, when set, picks the record per request and wins over
	// Record.
	RecordFunc func(*http.Request) string
	Parse      schemabind.ParseOpt
	Validate   bind.ValidateOpt
	// OnIssues is called with the issues of every rejected request.
	OnIssues func(*http.Request, schemabind.Issues)
}

// Documents returns middleware that rejects requests whose body is not a
// valid document. Malformed JSON yields 400, a wrong content type 415 and
// schema violations 422; all carry an issues payload.
func Documents(cat *schema.Catalog, opt Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isJSON(r.Header.Get("Content-Type")) {
				reject(w, r, opt, http.StatusUnsupportedMediaType, schemabind.Issues{{
					Code:    schemabind.CodeInvalidType,
					Message: "Content-Type must be application/json",
					Offset:  -1,
				}})
				return
			}
			ctx := r.Context()
			doc, err := schemabind.ParseDocumentReader(ctx, r.Body, opt.Parse)
			if err != nil {
				reject(w, r, opt, http.StatusBadRequest, issuesOf(err))
				return
			}
			record := opt.Record
			if opt.RecordFunc != nil {
				record = opt.RecordFunc(r)
			}
			var v bind.View
			if record != "" {
				v, err = bind.NewView(cat, record, doc)
			} else {
				v, err = bind.Open(cat, doc)
			}
			if err == nil {
				err = bind.Validate(ctx, v, opt.Validate)
			}
			if err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					return
				}
				reject(w, r, opt, http.StatusUnprocessableEntity, issuesOf(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithView(ctx, v)))
		})
	}
}

func isJSON(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && (mt == "application/json" || mt == "application/fhir+json")
}

func issuesOf(err error) schemabind.Issues {
	if iss, ok := schemabind.AsIssues(err); ok {
		return iss
	}
	return schemabind.Issues{{Code: schemabind.CodeParseError, Message: err.Error(), Cause: err, Offset: -1}}
}

func reject(w http.ResponseWriter, r *http.Request, opt Options, status int, iss schemabind.Issues) {
	if opt.OnIssues != nil {
		opt.OnIssues(r, iss)
	}
	WriteJSON(w, status, ErrorPayload(iss))
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(v)
}
