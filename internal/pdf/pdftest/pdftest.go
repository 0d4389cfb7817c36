// Package pdftest builds in-memory PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/phpdave11/gofpdf"
)

// PageWidth returns the width in points used for page n (1-based) by New.
// Every page gets a distinct width so page order can be checked after a rewrite.
func PageWidth(n int) float64 {
	return 200 + float64(n)*50
}

// PageHeight is the height in points of every page created by New.
const PageHeight = 600

// New returns an unencrypted PDF with the given number of pages.
// Page n carries the text "Page n" and is PageWidth(n) points wide.
func New(tb testing.TB, pages int) []byte {
	tb.Helper()

	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 18)
	for n := 1; n <= pages; n++ {
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: PageWidth(n), Ht: PageHeight})
		doc.Cell(120, 24, fmt.Sprintf("Page %d", n))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		tb.Fatalf("generate pdf: %v", err)
	}
	return buf.Bytes()
}

// Encrypt protects plain with AES-256 using the given user and owner passwords.
func Encrypt(tb testing.TB, plain []byte, userPW, ownerPW string) []byte {
	tb.Helper()
	return EncryptWith(tb, plain, model.NewAESConfiguration(userPW, ownerPW, 256))
}

// EncryptWith protects plain using conf, built with model.NewAESConfiguration or
// model.NewRC4Configuration.
func EncryptWith(tb testing.TB, plain []byte, conf *model.Configuration) []byte {
	tb.Helper()

	var out bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(plain), &out, conf); err != nil {
		tb.Fatalf("encrypt pdf: %v", err)
	}
	return out.Bytes()
}

// NewEncrypted returns a PDF with the given number of pages, encrypted so that
// password opens it as the user password.
func NewEncrypted(tb testing.TB, pages int, password string) []byte {
	tb.Helper()
	return Encrypt(tb, New(tb, pages), password, password+"-owner")
}
