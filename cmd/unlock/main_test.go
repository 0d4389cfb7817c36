package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gedamu-tinsae/remove-password/internal/pdf"
	"github.com/Gedamu-tinsae/remove-password/internal/pdf/pdftest"
	"github.com/Gedamu-tinsae/remove-password/internal/service"
)

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRun(t *testing.T) {
	svc := service.NewUnlockService(pdf.NewPDFCPU())
	locked := pdftest.NewEncrypted(t, 2, "secret123")

	t.Run("default output path", func(t *testing.T) {
		in := writeFixture(t, "statement.pdf", locked)
		var stdout, stderr bytes.Buffer

		code := run(context.Background(), []string{"-in", in, "-password", "secret123"}, &stdout, &stderr, svc)

		require.Equal(t, exitOK, code, stderr.String())
		want := filepath.Join(filepath.Dir(in), "unlocked_statement.pdf")
		assert.Contains(t, stdout.String(), want)

		data, err := os.ReadFile(want)
		require.NoError(t, err)
		doc, err := pdf.NewPDFCPU().Open(data, "")
		require.NoError(t, err)
		assert.False(t, doc.Encrypted)
		assert.Equal(t, 2, doc.PageCount)
	})

	t.Run("explicit output path", func(t *testing.T) {
		in := writeFixture(t, "statement.pdf", locked)
		out := filepath.Join(t.TempDir(), "plain.pdf")
		var stdout, stderr bytes.Buffer

		code := run(context.Background(), []string{"-in", in, "-out", out, "-password", "secret123"}, &stdout, &stderr, svc)

		require.Equal(t, exitOK, code, stderr.String())
		assert.FileExists(t, out)
	})

	t.Run("password from environment", func(t *testing.T) {
		t.Setenv("PDF_PASSWORD", "secret123")
		in := writeFixture(t, "statement.pdf", locked)
		var stdout, stderr bytes.Buffer

		code := run(context.Background(), []string{"-in", in}, &stdout, &stderr, svc)

		assert.Equal(t, exitOK, code, stderr.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		in := writeFixture(t, "statement.pdf", locked)
		var stdout, stderr bytes.Buffer

		code := run(context.Background(), []string{"-in", in, "-password", "nope-nope"}, &stdout, &stderr, svc)

		assert.Equal(t, exitPassword, code)
		assert.Equal(t, "Incorrect password or failed to decrypt.\n", stderr.String())
		assert.NotContains(t, stderr.String(), "nope-nope")
		assert.NoFileExists(t, filepath.Join(filepath.Dir(in), "unlocked_statement.pdf"))
	})

	t.Run("not a pdf", func(t *testing.T) {
		in := writeFixture(t, "notes.pdf", []byte("plain text"))
		var stdout, stderr bytes.Buffer

		code := run(context.Background(), []string{"-in", in, "-password", "x"}, &stdout, &stderr, svc)

		assert.Equal(t, exitFailure, code)
		assert.Equal(t, 1, strings.Count(stderr.String(), "malformed_document"), stderr.String())
	})

	t.Run("missing input flag", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitFailure, run(context.Background(), nil, &stdout, &stderr, svc))
		assert.Contains(t, stderr.String(), "-in is required")
	})

	t.Run("unreadable input", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		missing := filepath.Join(t.TempDir(), "missing.pdf")
		assert.Equal(t, exitFailure, run(context.Background(), []string{"-in", missing}, &stdout, &stderr, svc))
	})
}
