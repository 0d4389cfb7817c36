// Command unlock removes password protection from a local PDF file.
//
//	unlock -in statement.pdf [-out unlocked.pdf] [-password secret]
//
// The password defaults to PDF_PASSWORD, which may come from a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Gedamu-tinsae/remove-password/internal/http/handler"
	"github.com/Gedamu-tinsae/remove-password/internal/pdf"
	"github.com/Gedamu-tinsae/remove-password/internal/service"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitPassword = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, service.NewUnlockService(pdf.NewPDFCPU()))
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, svc service.UnlockService) int {
	fs := flag.NewFlagSet("unlock", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "input PDF `path`")
	out := fs.String("out", "", "output `path` (default: unlocked_<name> next to the input)")
	password := fs.String("password", os.Getenv("PDF_PASSWORD"), "document password (default $PDF_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}
	if *in == "" {
		fmt.Fprintln(stderr, "unlock: -in is required")
		fs.Usage()
		return exitFailure
	}

	content, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(stderr, "unlock: %v\n", err)
		return exitFailure
	}

	res, err := svc.Unlock(ctx, service.UnlockInput{
		Content:  content,
		Filename: filepath.Base(*in),
		Password: *password,
	})
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		fmt.Fprintln(stderr, handler.MsgIncorrectPassword)
		return exitPassword
	case err != nil:
		fmt.Fprintf(stderr, "unlock: %v\n", err)
		return exitFailure
	}

	dst := *out
	if dst == "" {
		dst = filepath.Join(filepath.Dir(*in), res.Filename)
	}
	if err := os.WriteFile(dst, res.Content, 0o644); err != nil {
		fmt.Fprintf(stderr, "unlock: %v\n", err)
		return exitFailure
	}

	fmt.Fprintf(stdout, "Unlocked PDF saved to %s (%d pages)\n", dst, res.PageCount)
	return exitOK
}
