package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Gedamu-tinsae/remove-password/internal/http/middleware"
	"github.com/Gedamu-tinsae/remove-password/internal/logging"
	"github.com/Gedamu-tinsae/remove-password/internal/metrics"
	"github.com/Gedamu-tinsae/remove-password/internal/service"
)

const (
	// HeaderPageCount carries the number of pages in the returned document.
	HeaderPageCount = "X-Page-Count"
	// HeaderWasEncrypted reports whether the upload was password protected.
	HeaderWasEncrypted = "X-Was-Encrypted"

	// MsgIncorrectPassword is the user-facing message for a failed decryption.
	MsgIncorrectPassword = "Incorrect password or failed to decrypt."
	// MsgMalformedDocument is the user-facing message for unparseable uploads.
	MsgMalformedDocument = "failed to parse PDF document"
)

// UnlockOptions configures the unlock endpoint.
type UnlockOptions struct {
	// ProcessingTimeout bounds parse, decrypt, rebuild and serialize. Zero means no limit.
	ProcessingTimeout time.Duration
	// Metrics may be nil.
	Metrics *metrics.UnlockMetrics
	// Logger may be nil.
	Logger *logging.Logger
}

// UnlockDocument handles POST /api/unlock.
//
// @Summary Remove password protection from a PDF
// @Description Decrypts the uploaded PDF with the given password and returns an unprotected copy.
// @Tags pdf
// @Accept multipart/form-data
// @Produce application/pdf
// @Param file formData file true "PDF file"
// @Param password formData string true "Current password (may be empty for unprotected files)"
// @Success 200 {file} application/pdf "Unlocked PDF"
// @Failure 400 {object} errorPayload "Incorrect password or missing file"
// @Failure 422 {object} errorPayload "Password field missing"
// @Failure 500 {object} errorPayload "Malformed document or internal error"
// @Router /api/unlock [post]
func UnlockDocument(svc service.UnlockService, opts UnlockOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart/form-data body is required")
		}

		files := form.File["file"]
		if len(files) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		// The field must be present; an empty value is allowed for unprotected files.
		passwords, ok := form.Value["password"]
		if !ok {
			return writeError(c, fiber.StatusUnprocessableEntity, "PASSWORD_REQUIRED", "password field is required")
		}
		var password string
		if len(passwords) > 0 {
			password = passwords[0]
		}

		fh := files[0]
		content, err := readUpload(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}

		ctx := c.UserContext()
		if opts.ProcessingTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.ProcessingTimeout)
			defer cancel()
		}

		res, err := svc.Unlock(ctx, service.UnlockInput{
			Content:  content,
			Filename: cleanFilename(fh.Filename),
			Password: password,
		})
		if err != nil {
			kind := service.KindOf(err)
			opts.Metrics.Observe(kind.String(), len(content), 0)
			return writeUnlockError(c, opts.Logger, kind, err)
		}
		opts.Metrics.Observe("ok", len(content), res.PageCount)

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, contentDisposition(res.Filename))
		c.Set(HeaderPageCount, strconv.Itoa(res.PageCount))
		c.Set(HeaderWasEncrypted, strconv.FormatBool(res.WasEncrypted))
		return c.Status(fiber.StatusOK).Send(res.Content)
	}
}

func writeUnlockError(c *fiber.Ctx, l *logging.Logger, kind service.ErrorKind, err error) error {
	switch kind {
	case service.KindAuthenticationFailed:
		return writeError(c, fiber.StatusBadRequest, "INCORRECT_PASSWORD", MsgIncorrectPassword)
	case service.KindMalformedDocument:
		logUnlockFailure(c, l, kind, err)
		return writeError(c, fiber.StatusInternalServerError, "MALFORMED_DOCUMENT", MsgMalformedDocument)
	case service.KindCanceled:
		logUnlockFailure(c, l, kind, err)
		return writeError(c, fiber.StatusRequestTimeout, "REQUEST_TIMEOUT", "processing did not finish in time")
	default:
		logUnlockFailure(c, l, kind, err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func logUnlockFailure(c *fiber.Ctx, l *logging.Logger, kind service.ErrorKind, err error) {
	if l == nil {
		return
	}
	l.Warn("unlock_failed", logging.Fields{
		"request_id": middleware.RequestIDFromCtx(c),
		"kind":       kind.String(),
		"error":      err,
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if fh.Size > 0 && int64(len(data)) != fh.Size {
		return nil, errors.New("short read of uploaded file")
	}
	return data, nil
}

// cleanFilename keeps the last path element of a client supplied name and drops
// characters that cannot appear inside a quoted header value.
// Browsers on some platforms send full paths such as C:\fakepath\file.pdf.
func cleanFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// contentDisposition builds an attachment header. Non-ASCII names get an ASCII
// fallback plus an RFC 5987 filename* parameter.
func contentDisposition(name string) string {
	ascii := true
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return `attachment; filename="` + name + `"`
	}

	fallback := strings.Map(func(r rune) rune {
		if r >= 0x80 {
			return '_'
		}
		return r
	}, name)
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + url.PathEscape(name)
}
