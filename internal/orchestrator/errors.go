package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"resume-matcher/internal/scoring"
)

var (
	ErrEmptyFile         = errors.New("empty file")
	ErrResumeNotFound    = errors.New("resume not found")
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrPersistAfterScore = errors.New("persistence failed after scoring")

	// ErrOriginalUnavailable is returned when no original upload was archived for a resume.
	ErrOriginalUnavailable = errors.New("original document unavailable")
)

// PersistenceAfterScoringError carries a computed score whose analysis record
// could not be stored. Pass the fields to SaveScored to retry persistence
// without calling the scoring engine again.
type PersistenceAfterScoringError struct {
	Request    AnalysisRequest
	Result     scoring.Result
	AnalyzedAt time.Time
	Err        error
}

func (e *PersistenceAfterScoringError) Error() string {
	return fmt.Sprintf("%s: resume %s: %v", ErrPersistAfterScore, e.Request.ResumeID, e.Err)
}

func (e *PersistenceAfterScoringError) Unwrap() error { return e.Err }

func (e *PersistenceAfterScoringError) Is(target error) bool { return target == ErrPersistAfterScore }
