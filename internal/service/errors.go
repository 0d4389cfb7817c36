package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an unlock attempt failed.
type ErrorKind int

const (
	// KindUnknown is reported for errors that did not come from the unlock flow.
	KindUnknown ErrorKind = iota
	// KindMalformedDocument: the input is empty or not a parseable PDF.
	KindMalformedDocument
	// KindAuthenticationFailed: wrong password or unsupported encryption.
	KindAuthenticationFailed
	// KindReconstructionFailed: page copy or serialization failed after a successful read.
	KindReconstructionFailed
	// KindCanceled: the caller went away or the processing deadline passed.
	KindCanceled
)

var (
	ErrMalformedDocument    = errors.New("malformed document")
	ErrAuthenticationFailed = errors.New("incorrect password or failed to decrypt")
	ErrReconstructionFailed = errors.New("reconstruction failed")
	ErrCanceled             = errors.New("unlock canceled")
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedDocument:
		return "malformed_document"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindReconstructionFailed:
		return "reconstruction_failed"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindMalformedDocument:
		return ErrMalformedDocument
	case KindAuthenticationFailed:
		return ErrAuthenticationFailed
	case KindReconstructionFailed:
		return ErrReconstructionFailed
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// UnlockError is the error returned by UnlockService.Unlock.
// Err carries the underlying cause and never contains the password.
type UnlockError struct {
	Kind ErrorKind
	Err  error
}

func (e *UnlockError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *UnlockError) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel of the error's kind.
func (e *UnlockError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ue *UnlockError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindUnknown
}

func newError(kind ErrorKind, err error) *UnlockError {
	return &UnlockError{Kind: kind, Err: err}
}
