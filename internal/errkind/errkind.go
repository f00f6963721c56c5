// Package errkind classifies run failures so callers can branch on the
// failure class instead of parsing log text.
package errkind

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	// Exhaustion: no eligible source media remains.
	Exhaustion
	// Transport: download, upload or publish network/API failure.
	Transport
	// Processing: media decode/encode failure.
	Processing
	// Persistence: tracker state could not be written.
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Exhaustion:
		return "exhaustion"
	case Transport:
		return "transport"
	case Processing:
		return "processing"
	case Persistence:
		return "persistence"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with a kind. Returns nil for a nil err.
func Wrap(k Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Err: err}
}

func Wrapf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost tagged error in err's chain,
// or Unknown when no tag is present.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, k Kind) bool {
	return KindOf(err) == k
}
