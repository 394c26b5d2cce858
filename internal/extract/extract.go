package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies a supported upload format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var (
	// ErrUnsupportedFormat is returned for anything other than PDF or DOCX.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtraction matches every *ExtractionError via errors.Is.
	ErrExtraction = errors.New("extraction failed")
)

// ExtractionError reports a malformed or corrupt document. It is never retried.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extract %s: %s", e.Format, ErrExtraction)
	}
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is lets callers match any extraction failure with errors.Is(err, ErrExtraction).
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// UploadedDocument is the transient input of a single upload.
type UploadedDocument struct {
	Data     []byte
	FileName string
	Format   Format
}

// ExtractedText is the plain-text result of an extraction.
type ExtractedText struct {
	Text           string
	SourceFormat   Format
	CharacterCount int
	PageCount      int
}

// FormatFromFileName maps a file extension (case-insensitive) to a Format.
func FormatFromFileName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(name))) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Extract converts the document bytes to plain text. A structurally valid document with
// no text yields an empty ExtractedText and no error.
// Libraries used: github.com/ledongthuc/pdf (PDF), archive/zip + encoding/xml (DOCX).
func Extract(ctx context.Context, doc UploadedDocument) (ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return ExtractedText{}, err
	}

	var (
		text  string
		pages int
		err   error
	)
	switch doc.Format {
	case FormatPDF:
		text, pages, err = extractPDF(doc.Data)
	case FormatDOCX:
		text, err = extractDOCX(doc.Data)
	default:
		return ExtractedText{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)
	}
	if err != nil {
		return ExtractedText{}, &ExtractionError{Format: doc.Format, Err: err}
	}

	return ExtractedText{
		Text:           text,
		SourceFormat:   doc.Format,
		CharacterCount: utf8.RuneCountInString(text),
		PageCount:      pages,
	}, nil
}
