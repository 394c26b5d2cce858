package content

import (
	"errors"
	"fmt"
	"strings"

	"resume-matcher/internal/extract"
)

const (
	FieldResumeText     = "resumeText"
	FieldJobDescription = "jobDescription"
)

// ErrEmptyContent matches every *ValidationError via errors.Is.
var ErrEmptyContent = errors.New("empty content")

// ValidationError names the field whose content was blank.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, ErrEmptyContent)
}

func (e *ValidationError) Is(target error) bool { return target == ErrEmptyContent }

// ValidateExtractedText rejects extracted text that is empty after trimming.
func ValidateExtractedText(t extract.ExtractedText) error {
	return requireText(FieldResumeText, t.Text)
}

// ValidateJobDescription rejects a job description that is empty after trimming.
func ValidateJobDescription(s string) error {
	return requireText(FieldJobDescription, s)
}

func requireText(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return &ValidationError{Field: field}
	}
	return nil
}
