package service

import (
	"bytes"
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Gedamu-tinsae/remove-password/internal/model"
	"github.com/Gedamu-tinsae/remove-password/internal/pdf"
)

const (
	// OutputPrefix is prepended to the uploaded filename to name the download.
	OutputPrefix = "unlocked_"
	// DefaultFilename is used when the client did not send a filename.
	DefaultFilename = "document.pdf"
)

var tracer = otel.Tracer("github.com/Gedamu-tinsae/remove-password/internal/service")

// UnlockInput is a single request-scoped unlock attempt.
type UnlockInput struct {
	Content  []byte
	Filename string
	Password string
}

// UnlockService defines the password removal use case.
type UnlockService interface {
	// Unlock parses the document, decrypts it when needed, copies every page into a new
	// unencrypted document and serializes it.
	// Failures are *UnlockError values; no partial output is ever returned.
	Unlock(ctx context.Context, in UnlockInput) (*model.UnlockResult, error)
}

// unlockService is a concrete implementation of UnlockService.
type unlockService struct {
	engine pdf.Engine
}

// NewUnlockService constructs a new UnlockService.
func NewUnlockService(engine pdf.Engine) UnlockService {
	return &unlockService{engine: engine}
}

func (s *unlockService) Unlock(ctx context.Context, in UnlockInput) (res *model.UnlockResult, err error) {
	ctx, span := tracer.Start(ctx, "service.Unlock")
	defer func() {
		kind := KindOf(err)
		if err != nil {
			span.SetStatus(codes.Error, kind.String())
			span.SetAttributes(attribute.String("unlock.result", kind.String()))
		} else {
			span.SetAttributes(attribute.String("unlock.result", "ok"))
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("pdf.size", len(in.Content)))

	if len(in.Content) == 0 {
		return nil, newError(KindMalformedDocument, errors.New("empty document"))
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, err)
	}

	src, err := s.engine.Open(in.Content, in.Password)
	if err != nil {
		if errors.Is(err, pdf.ErrCredentials) {
			return nil, newError(KindAuthenticationFailed, err)
		}
		return nil, newError(KindMalformedDocument, err)
	}
	span.SetAttributes(
		attribute.Bool("pdf.encrypted", src.Encrypted),
		attribute.Int("pdf.pages", src.PageCount),
	)

	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, err)
	}

	dst, err := s.engine.Rebuild(src)
	if err != nil {
		return nil, newError(KindReconstructionFailed, err)
	}
	if dst.PageCount != src.PageCount {
		return nil, newError(KindReconstructionFailed, errors.New("page count changed during rebuild"))
	}

	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, err)
	}

	var buf bytes.Buffer
	if err := s.engine.Write(&buf, dst); err != nil {
		return nil, newError(KindReconstructionFailed, err)
	}
	if buf.Len() == 0 {
		return nil, newError(KindReconstructionFailed, errors.New("serializer produced no output"))
	}

	// The client may have gone away while serializing; drop the result.
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, err)
	}

	return &model.UnlockResult{
		Filename:     OutputFilename(in.Filename),
		Content:      buf.Bytes(),
		PageCount:    dst.PageCount,
		WasEncrypted: src.Encrypted,
	}, nil
}

// OutputFilename derives the download name for an uploaded file.
func OutputFilename(original string) string {
	if original == "" {
		original = DefaultFilename
	}
	return OutputPrefix + original
}
