package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind buckets a failure for retry decisions.
type Kind string

const (
	KindNetwork  Kind = "network"
	KindParse    Kind = "parse"
	KindStorage  Kind = "storage"
	KindNotFound Kind = "not_found"
	KindUnknown  Kind = "unknown"
)

// Error is a classified failure. Retryable drives the retry executor;
// ambiguous failures classify as non-retryable Unknown so unrecoverable
// conditions never loop forever.
type Error struct {
	Kind      Kind
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var networkHints = []string{"network", "timeout", "connection refused", "no such host", "socket", "fetch"}
var parseHints = []string{"parse", "json", "syntax"}
var storageHints = []string{"storage", "file", "permission"}
var notFoundHints = []string{"not found", "未找到"}

// Classify maps any error to a *Error by substring inspection of its
// lowercased message. Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, networkHints):
		return &Error{Kind: KindNetwork, Retryable: true, Err: err}
	case containsAny(msg, parseHints):
		return &Error{Kind: KindParse, Retryable: false, Err: err}
	case containsAny(msg, storageHints):
		return &Error{Kind: KindStorage, Retryable: true, Err: err}
	case containsAny(msg, notFoundHints):
		return &Error{Kind: KindNotFound, Retryable: false, Err: err}
	default:
		return &Error{Kind: KindUnknown, Retryable: false, Err: err}
	}
}

func containsAny(msg string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(msg, h) {
			return true
		}
	}
	return false
}
