// Package extractor turns a PDF file into raw text by invoking the
// poppler pdftotext tool. The core pipeline only sees the TextExtractor
// interface, so tests never spawn a process.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ExtractionError reports a failed text extraction: missing tool,
// unreadable file, or a file pdftotext rejects.
type ExtractionError struct {
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Path, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// TextExtractor produces raw text from a PDF path.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Poppler extracts text with pdftotext.
type Poppler struct {
	binary string
	layout bool // pass -layout to keep the physical text layout
}

func NewPoppler() *Poppler {
	return &Poppler{binary: "pdftotext", layout: true}
}

func (p *Poppler) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &ExtractionError{Path: path, Cause: err}
	}

	if _, err := exec.LookPath(p.binary); err != nil {
		return "", &ExtractionError{Path: path, Cause: fmt.Errorf("%s not found; run 'pdftran install' to install poppler", p.binary)}
	}

	args := []string{}
	if p.layout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-") // "-" writes the text to stdout

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", &ExtractionError{Path: path, Cause: fmt.Errorf("pdftotext: %s", msg)}
	}

	return stdout.String(), nil
}

// Installed reports whether a working poppler pdftotext is on PATH.
// pdftotext prints its version banner to stderr.
func (p *Poppler) Installed() bool {
	var stderr bytes.Buffer
	cmd := exec.Command(p.binary, "-v")
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false
	}
	return strings.Contains(stderr.String(), "Poppler")
}
