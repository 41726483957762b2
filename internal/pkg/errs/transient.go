package errs

import cr "github.com/cockroachdb/errors"

// ErrTransient marks failures that may succeed when retried unchanged
// (network errors, 5xx from upstream, serialization conflicts).
var ErrTransient = cr.New("transient failure")

func MarkTransient(err error) error {
	return Mark(err, ErrTransient)
}

func IsTransient(err error) bool {
	return cr.Is(err, ErrTransient)
}
