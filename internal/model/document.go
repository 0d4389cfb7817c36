package model

// UnlockResult is the outcome of a successful password removal.
// It exists only for the lifetime of one request and is never persisted.
type UnlockResult struct {
	// Filename is the download name offered to the client ("unlocked_<original>").
	Filename string `json:"filename"`
	// Content is the serialized, unencrypted PDF.
	Content []byte `json:"-"`
	// PageCount is the number of pages in both the input and the output.
	PageCount int `json:"page_count"`
	// WasEncrypted reports whether the uploaded document carried encryption.
	WasEncrypted bool `json:"was_encrypted"`
}
