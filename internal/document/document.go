// Package document gives the pipeline a uniform view of DOCX and PDF files:
// an ordered sequence of text units (one paragraph for DOCX, one page for
// PDF) that can be extracted, transformed elsewhere, and written back.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrorKind classifies document failures.
type ErrorKind int

const (
	// UnreadableSource means the source file cannot be opened or parsed.
	UnreadableSource ErrorKind = iota
	// UnsupportedFormat means the file extension is not .docx or .pdf.
	UnsupportedFormat
	// WriteFailure means the destination could not be written. No partial
	// file is left behind.
	WriteFailure
)

func (k ErrorKind) String() string {
	switch k {
	case UnreadableSource:
		return "unreadable source"
	case UnsupportedFormat:
		return "unsupported format"
	case WriteFailure:
		return "write failure"
	default:
		return "unknown"
	}
}

// Error is a classified document failure.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Adapter extracts and rewrites the text units of one document format.
// WriteTextUnits receives the source path as well because formats like DOCX
// rebuild the output package from the original.
type Adapter interface {
	ExtractTextUnits(path string) ([]string, error)
	WriteTextUnits(srcPath, destPath string, units []string) error
}

// ForPath returns the adapter for the file's extension, or an
// UnsupportedFormat error.
func ForPath(path string) (Adapter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return &DocxAdapter{}, nil
	case ".pdf":
		return &PDFAdapter{}, nil
	default:
		return nil, &Error{
			Kind: UnsupportedFormat,
			Path: path,
			Err:  fmt.Errorf("extension %q is not supported", filepath.Ext(path)),
		}
	}
}

// writeAtomic writes through a temp file in the destination directory and
// renames it into place, so a failed write never leaves a truncated file at
// destPath.
func writeAtomic(destPath string, write func(io.Writer) error) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
