package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gedamu-tinsae/remove-password/internal/model"
	"github.com/Gedamu-tinsae/remove-password/internal/service"
	serviceMocks "github.com/Gedamu-tinsae/remove-password/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// uploadForm describes a multipart body. A nil password omits the field entirely.
type uploadForm struct {
	filename string
	content  []byte
	password *string
	noFile   bool
}

func strPtr(s string) *string { return &s }

func newUploadRequest(t *testing.T, f uploadForm) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if !f.noFile {
		part, err := writer.CreateFormFile("file", f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	if f.password != nil {
		require.NoError(t, writer.WriteField("password", *f.password))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/unlock", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck())

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(func(context.Context) error { return errors.New("down") }))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestRegisterRoutes_HealthReflectsService(t *testing.T) {
	ready := fiber.New()
	RegisterRoutes(ready, new(serviceMocks.MockUnlockService), RouteOptions{})
	resp, _ := ready.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	unwired := fiber.New()
	RegisterRoutes(unwired, nil, RouteOptions{})
	resp, _ = unwired.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnlockDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockUnlockService)
	app := fiber.New()
	app.Post("/api/unlock", UnlockDocument(mockSvc, UnlockOptions{}))

	t.Run("success", func(t *testing.T) {
		pdfBytes := []byte("%PDF-1.7 unlocked")
		mockSvc.On("Unlock", mock.Anything, mock.MatchedBy(func(in service.UnlockInput) bool {
			return in.Filename == "statement.pdf" && in.Password == "secret123" && string(in.Content) == "locked"
		})).Return(&model.UnlockResult{
			Filename:     "unlocked_statement.pdf",
			Content:      pdfBytes,
			PageCount:    3,
			WasEncrypted: true,
		}, nil).Once()

		req := newUploadRequest(t, uploadForm{filename: "statement.pdf", content: []byte("locked"), password: strPtr("secret123")})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="unlocked_statement.pdf"`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, "3", resp.Header.Get(HeaderPageCount))
		assert.Equal(t, "true", resp.Header.Get(HeaderWasEncrypted))

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, pdfBytes, body)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty password is forwarded", func(t *testing.T) {
		mockSvc.On("Unlock", mock.Anything, mock.MatchedBy(func(in service.UnlockInput) bool {
			return in.Password == "" && in.Filename == "plain.pdf"
		})).Return(&model.UnlockResult{Filename: "unlocked_plain.pdf", Content: []byte("%PDF"), PageCount: 1}, nil).Once()

		req := newUploadRequest(t, uploadForm{filename: "plain.pdf", content: []byte("x"), password: strPtr("")})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("client path is stripped from filename", func(t *testing.T) {
		mockSvc.On("Unlock", mock.Anything, mock.MatchedBy(func(in service.UnlockInput) bool {
			return in.Filename == "report.pdf"
		})).Return(&model.UnlockResult{Filename: "unlocked_report.pdf", Content: []byte("%PDF"), PageCount: 1}, nil).Once()

		req := newUploadRequest(t, uploadForm{filename: `C:\fakepath\report.pdf`, content: []byte("x"), password: strPtr("pw")})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		req := newUploadRequest(t, uploadForm{noFile: true, password: strPtr("pw")})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("missing password field", func(t *testing.T) {
		req := newUploadRequest(t, uploadForm{filename: "a.pdf", content: []byte("x")})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "PASSWORD_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/unlock", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_FORM", decodeError(t, resp).Error.Code)
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"wrong password", &service.UnlockError{Kind: service.KindAuthenticationFailed}, http.StatusBadRequest, "INCORRECT_PASSWORD", MsgIncorrectPassword},
		{"malformed document", &service.UnlockError{Kind: service.KindMalformedDocument}, http.StatusInternalServerError, "MALFORMED_DOCUMENT", MsgMalformedDocument},
		{"reconstruction failure", &service.UnlockError{Kind: service.KindReconstructionFailed}, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
		{"canceled", &service.UnlockError{Kind: service.KindCanceled, Err: context.DeadlineExceeded}, http.StatusRequestTimeout, "REQUEST_TIMEOUT", "processing did not finish in time"},
		{"unexpected error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc.On("Unlock", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			req := newUploadRequest(t, uploadForm{filename: "a.pdf", content: []byte("x"), password: strPtr("hunter2")})
			resp, _ := app.Test(req)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			raw, _ := io.ReadAll(resp.Body)
			assert.NotContains(t, string(raw), "hunter2")

			var res errorPayload
			require.NoError(t, json.Unmarshal(raw, &res))
			assert.Equal(t, tc.wantCode, res.Error.Code)
			assert.Equal(t, tc.wantMsg, res.Error.Message)
			assert.Equal(t, tc.wantMsg, res.Detail)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestUnlockDocument_ProcessingTimeoutReachesService(t *testing.T) {
	mockSvc := new(serviceMocks.MockUnlockService)
	app := fiber.New()
	app.Post("/api/unlock", UnlockDocument(mockSvc, UnlockOptions{ProcessingTimeout: 1}))

	mockSvc.On("Unlock", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(nil, &service.UnlockError{Kind: service.KindCanceled, Err: context.DeadlineExceeded}).Once()

	req := newUploadRequest(t, uploadForm{filename: "a.pdf", content: []byte("x"), password: strPtr("")})
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusRequestTimeout, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"statement.pdf", "statement.pdf"},
		{"/etc/passwd", "passwd"},
		{`C:\Users\me\bank.pdf`, "bank.pdf"},
		{"evil\"\r\nX-Injected: 1.pdf", "evilX-Injected: 1.pdf"},
		{"..", ""},
		{"", ""},
		{"  spaced.pdf ", "spaced.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanFilename(tt.in), "input %q", tt.in)
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="unlocked_a b.pdf"`, contentDisposition("unlocked_a b.pdf"))
	assert.Equal(t,
		`attachment; filename="unlocked_r_sum_.pdf"; filename*=UTF-8''unlocked_r%C3%A9sum%C3%A9.pdf`,
		contentDisposition("unlocked_résumé.pdf"))
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockUnlockService)
	RegisterRoutes(app, mockSvc, RouteOptions{Gatherer: prometheus.NewRegistry()})

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Unlock only accepts POST
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/unlock", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/too-large", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("secret internals") })

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/too-large", nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, resp).Error.Code)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "secret internals")
}
