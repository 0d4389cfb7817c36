// Package pdf adapts the PDF structure library (pdfcpu) to the operations the unlock
// flow needs: parse with decryption, page-by-page reconstruction and serialization.
// Everything happens in memory; nothing is read from or written to local disk.
package pdf

import (
	"errors"
	"io"
)

var (
	// ErrMalformed is returned when the input is empty or cannot be parsed as a PDF.
	ErrMalformed = errors.New("malformed pdf document")
	// ErrCredentials is returned when an encrypted document cannot be decrypted with the
	// supplied password, or uses an encryption scheme that is not supported.
	ErrCredentials = errors.New("pdf decryption failed")
	// ErrRebuild is returned when copying pages or serializing the output fails.
	ErrRebuild = errors.New("pdf reconstruction failed")
)

// Size is a page size in PDF user space units (points).
type Size struct {
	Width  float64
	Height float64
}

// Engine is the PDF structure library used by the unlock service.
// Implementations must be safe for concurrent use and hold no per-request state.
type Engine interface {
	// Open parses data and, when the document is encrypted, decrypts it with password.
	// The password is ignored for unencrypted documents.
	Open(data []byte, password string) (*Document, error)
	// Rebuild copies every page of doc, in order, into a new unencrypted document.
	Rebuild(doc *Document) (*Document, error)
	// Write serializes doc to w.
	Write(w io.Writer, doc *Document) error
	// PageSizes returns the media box size of every page in page order.
	PageSizes(doc *Document) ([]Size, error)
}
