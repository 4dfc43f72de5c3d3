package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Machine-readable error codes, grouped by tier.
const (
	// Scraper tier. Always recoverable: the source is excluded from the run.
	CodeNavigation  = "navigation_error"
	CodeExtraction  = "extraction_error"
	CodeUnavailable = "marketplace_unavailable"

	// Reasoning tier. Connection/response failures trigger the heuristic
	// fallback; a parse failure is fatal to the whole run.
	CodeLLMConnection = "llm_connection_error"
	CodeLLMResponse   = "llm_response_error"
	CodeQueryParse    = "query_parse_error"

	// Pipeline tier.
	CodeWorker       = "worker_error"
	CodeOrchestrator = "orchestrator_error"
)

// Error is the shared shape of every typed scout failure: a human message,
// a machine-readable code, and a context map for diagnostics.
type Error struct {
	Code    string
	Message string
	Context map[string]string
	Wrapped error
}

// E creates a typed error with the given code and message.
func E(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// With returns the error with an added context key/value pair.
func (e *Error) With(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, e.Context[k])
		}
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %v", e.Wrapped)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches two typed errors by code, so sentinel-style checks like
// errors.Is(err, domain.E(domain.CodeNavigation, "")) work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the machine-readable code from an error chain, or ""
// when the chain carries no typed scout error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Recoverable reports whether an error may be absorbed at a lower tier
// (source skipped or heuristic fallback) instead of aborting the run.
func Recoverable(err error) bool {
	switch CodeOf(err) {
	case CodeNavigation, CodeExtraction, CodeUnavailable, CodeLLMConnection, CodeLLMResponse, CodeWorker:
		return true
	}
	return false
}
