package analyses

import (
	"time"

	"resume-matcher/internal/scoring"
)

// Analysis is an append-only record of one successful scoring of a resume
// against a job description.
type Analysis struct {
	ID             string `json:"id"`
	ResumeID       string `json:"resumeId"`
	OwnerID        string `json:"ownerId"`
	JobDescription string `json:"jobDescription"`
	scoring.Result
	AnalyzedAt time.Time `json:"analyzedAt"`
}
