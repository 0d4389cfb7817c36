package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// headerWindow is how far into the input the %PDF- marker may appear.
// Readers tolerate leading garbage before the header up to this offset.
const headerWindow = 1024

var (
	pdfHeader    = []byte("%PDF-")
	encryptToken = []byte("/Encrypt")
)

func init() {
	// Keep pdfcpu away from the user's config directory; defaults are compiled in.
	api.DisableConfigDir()
}

// Document is a parsed, readable PDF held entirely in memory.
type Document struct {
	// Encrypted reports whether the source carried an encryption dictionary.
	Encrypted bool
	// PageCount is the number of pages in the document.
	PageCount int

	ctx *model.Context
}

// pdfcpuEngine implements Engine on top of github.com/pdfcpu/pdfcpu.
// It is stateless and safe for concurrent use by multiple goroutines.
type pdfcpuEngine struct{}

// NewPDFCPU returns an Engine backed by pdfcpu.
func NewPDFCPU() Engine {
	return pdfcpuEngine{}
}

var _ Engine = pdfcpuEngine{}

func (pdfcpuEngine) Open(data []byte, password string) (doc *Document, err error) {
	if !hasHeader(data) {
		return nil, ErrMalformed
	}

	// pdfcpu is not hardened against every malformed input.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: parser panic: %v", ErrMalformed, r)
		}
	}()

	// The /Encrypt marker only picks the read mode. A false positive is retried
	// as a plain read; credentials are judged by pdfcpu alone.
	marked := bytes.Contains(data, encryptToken)
	ctx, err := readContext(data, password, marked)
	if err != nil && marked && !isCredentialsError(err) {
		ctx, err = readContext(data, password, false)
	}
	if err != nil {
		if isCredentialsError(err) {
			return nil, ErrCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrMalformed)
	}
	if err := api.OptimizeContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return &Document{
		Encrypted: ctx.Encrypt != nil,
		PageCount: ctx.PageCount,
		ctx:       ctx,
	}, nil
}

func readContext(data []byte, password string, decrypt bool) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	if decrypt {
		conf.Cmd = model.DECRYPT
	}
	conf.UserPW = password
	conf.OwnerPW = password
	return api.ReadContext(bytes.NewReader(data), conf)
}

// isCredentialsError reports a rejected password or an encryption scheme pdfcpu
// cannot handle. Both mean the document was read far enough to find its encryption
// dictionary.
func isCredentialsError(err error) bool {
	return errors.Is(err, pdfcpu.ErrWrongPassword) ||
		strings.Contains(err.Error(), "pdfcpu: unsupported encryption")
}

func (pdfcpuEngine) Rebuild(doc *Document) (out *Document, err error) {
	if doc == nil || doc.ctx == nil {
		return nil, fmt.Errorf("%w: no source document", ErrRebuild)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: page copy panic: %v", ErrRebuild, r)
		}
	}()

	pageNrs := make([]int, doc.PageCount)
	for i := range pageNrs {
		pageNrs[i] = i + 1
	}

	dst, err := pdfcpu.ExtractPages(doc.ctx, pageNrs, false)
	if err != nil {
		return nil, fmt.Errorf("%w: copy pages: %v", ErrRebuild, err)
	}
	if err := dst.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: count pages: %v", ErrRebuild, err)
	}
	if dst.PageCount != doc.PageCount {
		return nil, fmt.Errorf("%w: copied %d of %d pages", ErrRebuild, dst.PageCount, doc.PageCount)
	}

	return &Document{PageCount: dst.PageCount, ctx: dst}, nil
}

func (pdfcpuEngine) Write(w io.Writer, doc *Document) (err error) {
	if doc == nil || doc.ctx == nil {
		return fmt.Errorf("%w: no document to write", ErrRebuild)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: writer panic: %v", ErrRebuild, r)
		}
	}()

	if err := api.WriteContext(doc.ctx, w); err != nil {
		return fmt.Errorf("%w: serialize: %v", ErrRebuild, err)
	}
	return nil
}

func (pdfcpuEngine) PageSizes(doc *Document) ([]Size, error) {
	if doc == nil || doc.ctx == nil {
		return nil, fmt.Errorf("%w: no document", ErrMalformed)
	}
	sizes := make([]Size, 0, doc.PageCount)
	for p := 1; p <= doc.PageCount; p++ {
		_, _, inh, err := doc.ctx.PageDict(p, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p, err)
		}
		if inh == nil || inh.MediaBox == nil {
			return nil, fmt.Errorf("page %d: missing media box", p)
		}
		sizes = append(sizes, Size{Width: inh.MediaBox.Width(), Height: inh.MediaBox.Height()})
	}
	return sizes, nil
}

// PageCount parses data with the pdfcpu engine and reports its number of pages.
func PageCount(data []byte, password string) (int, error) {
	doc, err := NewPDFCPU().Open(data, password)
	if err != nil {
		return 0, err
	}
	return doc.PageCount, nil
}

func hasHeader(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, pdfHeader)
}
