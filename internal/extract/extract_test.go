package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-matcher/internal/extract/extracttest"
)

func TestFormatFromFileName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    Format
		wantErr bool
	}{
		{name: "pdf", file: "resume.pdf", want: FormatPDF},
		{name: "pdf uppercase", file: "RESUME.PDF", want: FormatPDF},
		{name: "docx mixed case", file: "cv.DocX", want: FormatDOCX},
		{name: "doc rejected", file: "cv.doc", wantErr: true},
		{name: "txt rejected", file: "notes.txt", wantErr: true},
		{name: "no extension", file: "resume", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromFileName(tt.file)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("FormatFromFileName(%q) err = %v, want ErrUnsupportedFormat", tt.file, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFromFileName(%q): %v", tt.file, err)
			}
			if got != tt.want {
				t.Fatalf("FormatFromFileName(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestExtractPDFPreservesPageOrder(t *testing.T) {
	data := extracttest.PDF("Python Developer", "with 5 years experience")

	got, err := Extract(context.Background(), UploadedDocument{Data: data, FileName: "resume.pdf", Format: FormatPDF})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.PageCount != 2 {
		t.Fatalf("expected 2 pages, got %d", got.PageCount)
	}
	first := strings.Index(got.Text, "Python Developer")
	second := strings.Index(got.Text, "with 5 years experience")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("page text missing or out of order: %q", got.Text)
	}
	if normalized := strings.Join(strings.Fields(got.Text), " "); normalized != "Python Developer with 5 years experience" {
		t.Fatalf("unexpected text: %q", normalized)
	}
	if got.CharacterCount != len([]rune(got.Text)) {
		t.Fatalf("character count %d does not match text length %d", got.CharacterCount, len([]rune(got.Text)))
	}
}

func TestExtractDOCXJoinsParagraphsWithNewlines(t *testing.T) {
	data := extracttest.DOCX("Jane Doe", "Senior Engineer", "Go & Postgres")

	got, err := Extract(context.Background(), UploadedDocument{Data: data, FileName: "cv.docx", Format: FormatDOCX})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Jane Doe\nSenior Engineer\nGo & Postgres"
	if got.Text != want {
		t.Fatalf("Extract text = %q, want %q", got.Text, want)
	}
	if got.SourceFormat != FormatDOCX {
		t.Fatalf("unexpected source format %q", got.SourceFormat)
	}
}

func TestExtractDOCXWithoutTextSucceedsEmpty(t *testing.T) {
	data := extracttest.DOCX()

	got, err := Extract(context.Background(), UploadedDocument{Data: data, FileName: "blank.docx", Format: FormatDOCX})
	if err != nil {
		t.Fatalf("expected empty document to extract, got %v", err)
	}
	if got.Text != "" || got.CharacterCount != 0 {
		t.Fatalf("expected empty text, got %q (%d)", got.Text, got.CharacterCount)
	}
}

func TestExtractPDFWithoutTextSucceedsEmpty(t *testing.T) {
	data := extracttest.PDF("", "")

	got, err := Extract(context.Background(), UploadedDocument{Data: data, FileName: "scan.pdf", Format: FormatPDF})
	if err != nil {
		t.Fatalf("expected text-less pdf to extract, got %v", err)
	}
	if got.PageCount != 2 {
		t.Fatalf("expected 2 pages, got %d", got.PageCount)
	}
	if strings.TrimSpace(got.Text) != "" {
		t.Fatalf("expected blank text, got %q", got.Text)
	}
}

func TestExtractDOCXSkipsFallbackContent(t *testing.T) {
	doc := `<w:document xmlns:w="w" xmlns:mc="mc"><w:body>` +
		`<w:p><w:r><w:t>Summary</w:t><w:tab/><w:t>Go</w:t></w:r></w:p>` +
		`<w:p><mc:AlternateContent><mc:Choice><w:t>Box</w:t></mc:Choice><mc:Fallback><w:t>Box</w:t></mc:Fallback></mc:AlternateContent></w:p>` +
		`</w:body></w:document>`
	data := extracttest.Zip(map[string]string{"word/document.xml": doc})

	got, err := Extract(context.Background(), UploadedDocument{Data: data, Format: FormatDOCX})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Text != "Summary\tGo\nBox" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestExtractMalformedInputFails(t *testing.T) {
	tests := []struct {
		name string
		doc  UploadedDocument
	}{
		{name: "garbage pdf", doc: UploadedDocument{Data: []byte("definitely not a pdf"), Format: FormatPDF}},
		{name: "truncated pdf", doc: UploadedDocument{Data: extracttest.PDF("hello")[:40], Format: FormatPDF}},
		{name: "garbage docx", doc: UploadedDocument{Data: []byte("PK not really a zip"), Format: FormatDOCX}},
		{name: "zip without document", doc: UploadedDocument{Data: extracttest.Zip(map[string]string{"notes.txt": "hello"}), Format: FormatDOCX}},
		{name: "broken xml", doc: UploadedDocument{Data: extracttest.Zip(map[string]string{"word/document.xml": "<w:document><w:p>"}), Format: FormatDOCX}},
		{name: "pdf declared as docx", doc: UploadedDocument{Data: extracttest.PDF("hello"), Format: FormatDOCX}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(context.Background(), tt.doc)
			if !errors.Is(err, ErrExtraction) {
				t.Fatalf("expected ErrExtraction, got %v", err)
			}
			var extErr *ExtractionError
			if !errors.As(err, &extErr) || extErr.Format != tt.doc.Format {
				t.Fatalf("expected *ExtractionError for %q, got %#v", tt.doc.Format, err)
			}
			if got.Text != "" {
				t.Fatalf("expected no partial text, got %q", got.Text)
			}
		})
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := Extract(context.Background(), UploadedDocument{Data: []byte("x"), Format: Format("rtf")})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Extract(ctx, UploadedDocument{Data: extracttest.DOCX("x"), Format: FormatDOCX}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
