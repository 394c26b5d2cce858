// Package gateway is the persistence boundary used by the orchestrator. It
// composes the user, resume and analysis repositories and owns the
// resume-to-analyses cascade.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/resumes"
	"resume-matcher/internal/scoring"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/users"
)

// NewResume is the data handed over after a successful extraction.
type NewResume struct {
	OwnerID   string
	FileName  string
	Text      string
	SourceKey string
}

// NewAnalysis is the data handed over after a successful scoring call.
type NewAnalysis struct {
	ResumeID       string
	OwnerID        string
	JobDescription string
	Result         scoring.Result
	AnalyzedAt     time.Time
}

type Gateway struct {
	Users    users.Repo
	Resumes  resumes.Repo
	Analyses analyses.Repo
	Now      func() time.Time
	NewID    func() string
}

func New(usersRepo users.Repo, resumesRepo resumes.Repo, analysesRepo analyses.Repo) *Gateway {
	return &Gateway{
		Users:    usersRepo,
		Resumes:  resumesRepo,
		Analyses: analysesRepo,
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    uuid.NewString,
	}
}

// CreateResume stores a resume for an existing owner.
func (g *Gateway) CreateResume(ctx context.Context, in NewResume) (resumes.Resume, error) {
	if _, err := g.Users.GetByID(ctx, in.OwnerID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return resumes.Resume{}, users.ErrOwnerNotFound
		}
		return resumes.Resume{}, fmt.Errorf("lookup owner: %w", err)
	}

	resume := resumes.Resume{
		ID:         g.NewID(),
		OwnerID:    in.OwnerID,
		FileName:   in.FileName,
		ResumeText: in.Text,
		SourceKey:  in.SourceKey,
		UploadedAt: g.Now(),
	}
	if err := g.Resumes.Create(ctx, resume); err != nil {
		return resumes.Resume{}, err
	}
	return resume, nil
}

func (g *Gateway) GetResume(ctx context.Context, resumeID string) (resumes.Resume, error) {
	return g.Resumes.GetByID(ctx, resumeID)
}

func (g *Gateway) ListResumesByOwner(ctx context.Context, ownerID string) ([]resumes.Resume, error) {
	return g.Resumes.ListByOwner(ctx, ownerID)
}

// DeleteResume removes a resume and every analysis that references it.
func (g *Gateway) DeleteResume(ctx context.Context, resumeID string) error {
	if _, err := g.Resumes.GetByID(ctx, resumeID); err != nil {
		return err
	}
	removed, err := g.deleteResume(ctx, resumeID)
	if err != nil {
		return err
	}
	telemetry.Info("resume.deleted", map[string]any{
		"request_id":       telemetry.RequestIDFromContext(ctx),
		"resume_id":        resumeID,
		"analyses_removed": removed,
	})
	return nil
}

// cascadeDeleter is implemented by resume repos that can drop a resume and its
// analyses atomically.
type cascadeDeleter interface {
	DeleteWithAnalyses(ctx context.Context, resumeID string) (int64, error)
}

func (g *Gateway) deleteResume(ctx context.Context, resumeID string) (int64, error) {
	if cd, ok := g.Resumes.(cascadeDeleter); ok {
		return cd.DeleteWithAnalyses(ctx, resumeID)
	}
	// Resume first so a failed delete leaves its analyses in place.
	if err := g.Resumes.Delete(ctx, resumeID); err != nil {
		return 0, err
	}
	removed, err := g.Analyses.DeleteByResume(ctx, resumeID)
	if err != nil {
		return 0, fmt.Errorf("delete analyses: %w", err)
	}
	return removed, nil
}

// CreateAnalysis appends a new analysis record.
func (g *Gateway) CreateAnalysis(ctx context.Context, in NewAnalysis) (analyses.Analysis, error) {
	analyzedAt := in.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = g.Now()
	}
	analysis := analyses.Analysis{
		ID:             g.NewID(),
		ResumeID:       in.ResumeID,
		OwnerID:        in.OwnerID,
		JobDescription: in.JobDescription,
		Result:         scoring.Normalize(in.Result),
		AnalyzedAt:     analyzedAt,
	}
	if err := g.Analyses.Create(ctx, analysis); err != nil {
		return analyses.Analysis{}, err
	}
	return analysis, nil
}

func (g *Gateway) GetAnalysis(ctx context.Context, analysisID string) (analyses.Analysis, error) {
	return g.Analyses.GetByID(ctx, analysisID)
}

func (g *Gateway) ListAnalysesByResume(ctx context.Context, resumeID string) ([]analyses.Analysis, error) {
	if _, err := g.Resumes.GetByID(ctx, resumeID); err != nil {
		return nil, err
	}
	return g.Analyses.ListByResume(ctx, resumeID)
}

func (g *Gateway) ListAnalysesByOwner(ctx context.Context, ownerID string) ([]analyses.Analysis, error) {
	return g.Analyses.ListByOwner(ctx, ownerID)
}

// NewMemory returns a gateway backed by in-memory repositories.
func NewMemory() *Gateway {
	return New(users.NewMemoryRepo(), resumes.NewMemoryRepo(), analyses.NewMemoryRepo())
}
