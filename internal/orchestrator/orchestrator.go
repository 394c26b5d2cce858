// Package orchestrator sequences extraction, validation, scoring and
// persistence for the upload and analyze flows.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/content"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/gateway"
	"resume-matcher/internal/resumes"
	"resume-matcher/internal/scoring"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/shared/util"
)

// Scorer computes a match between resume text and a job description.
type Scorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (scoring.Result, error)
}

// Store is the persistence gateway consumed by the orchestrator.
type Store interface {
	CreateResume(ctx context.Context, in gateway.NewResume) (resumes.Resume, error)
	GetResume(ctx context.Context, resumeID string) (resumes.Resume, error)
	ListResumesByOwner(ctx context.Context, ownerID string) ([]resumes.Resume, error)
	DeleteResume(ctx context.Context, resumeID string) error
	CreateAnalysis(ctx context.Context, in gateway.NewAnalysis) (analyses.Analysis, error)
	GetAnalysis(ctx context.Context, analysisID string) (analyses.Analysis, error)
	ListAnalysesByResume(ctx context.Context, resumeID string) ([]analyses.Analysis, error)
	ListAnalysesByOwner(ctx context.Context, ownerID string) ([]analyses.Analysis, error)
}

// AnalysisRequest asks for a resume to be scored against a job description.
type AnalysisRequest struct {
	ResumeID       string `json:"resumeId"`
	JobDescription string `json:"jobDescription"`
}

// Orchestrator holds no per-request state and is safe for concurrent use.
// Archive is optional; when nil, original uploads are not kept.
type Orchestrator struct {
	Store   Store
	Scorer  Scorer
	Archive object.Store
	Now     func() time.Time
}

func New(store Store, scorer Scorer) *Orchestrator {
	return &Orchestrator{
		Store:  store,
		Scorer: scorer,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Upload extracts and validates a document and stores it as a resume. Nothing
// is persisted unless extraction and validation both succeed.
func (o *Orchestrator) Upload(ctx context.Context, ownerID, fileName string, data []byte) (resumes.Resume, error) {
	f := startFlow(ctx, o.Now, "resume.status", StateReceived, map[string]any{
		"owner_id":   ownerID,
		"file_name":  fileName,
		"size_bytes": len(data),
		"sha256":     util.HashBytes(data),
	})
	resume, err := o.upload(ctx, f, ownerID, fileName, data)
	if err != nil {
		metrics.IncUploadRejected()
		return resumes.Resume{}, f.fail(err)
	}
	metrics.IncUploadCreated()
	f.set("resume_id", resume.ID)
	f.done(nil)
	return resume, nil
}

func (o *Orchestrator) upload(ctx context.Context, f *flow, ownerID, fileName string, data []byte) (resumes.Resume, error) {
	if len(data) == 0 {
		return resumes.Resume{}, ErrEmptyFile
	}
	format, err := extract.FormatFromFileName(fileName)
	if err != nil {
		return resumes.Resume{}, err
	}

	f.to(StateExtracting)
	text, err := extract.Extract(ctx, extract.UploadedDocument{Data: data, FileName: fileName, Format: format})
	if err != nil {
		return resumes.Resume{}, err
	}
	f.set("characters", text.CharacterCount)

	f.to(StateValidating)
	if err := content.ValidateExtractedText(text); err != nil {
		return resumes.Resume{}, err
	}

	in := gateway.NewResume{OwnerID: ownerID, FileName: fileName, Text: text.Text}
	if o.Archive != nil {
		f.to(StateArchiving)
		key, err := o.archive(ctx, ownerID, fileName, data)
		if err != nil {
			return resumes.Resume{}, err
		}
		in.SourceKey = key
		f.set("source_key", key)
	}

	f.to(StatePersisting)
	resume, err := o.Store.CreateResume(ctx, in)
	if err != nil {
		if in.SourceKey != "" {
			o.discardOriginal(ctx, in.SourceKey)
		}
		return resumes.Resume{}, err
	}
	return resume, nil
}

// archive stores the original bytes under <owner hash>/<random id>/<file name>.
func (o *Orchestrator) archive(ctx context.Context, ownerID, fileName string, data []byte) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	key := path.Join(util.HashKey(ownerID), uuid.NewString(), name)
	if _, err := o.Archive.Put(ctx, key, object.ContentType(name), bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("archive original: %w", err)
	}
	return key, nil
}

func (o *Orchestrator) discardOriginal(ctx context.Context, key string) {
	if o.Archive == nil || key == "" {
		return
	}
	if err := o.Archive.Delete(context.WithoutCancel(ctx), key); err != nil {
		telemetry.Warn("resume.archive_cleanup_failed", map[string]any{
			"request_id": telemetry.RequestIDFromContext(ctx),
			"source_key": key,
			"error":      err.Error(),
		})
	}
}

// Analyze scores a stored resume against a job description and appends an
// analysis record. If storing fails after a successful score, the score is
// returned inside a *PersistenceAfterScoringError and the engine is not called again.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalysisRequest) (analyses.Analysis, error) {
	f := startFlow(ctx, o.Now, "analysis.status", StateLookup, map[string]any{
		"resume_id": req.ResumeID,
	})
	resume, err := o.lookup(ctx, req.ResumeID)
	if err != nil {
		return analyses.Analysis{}, f.fail(err)
	}
	f.set("owner_id", resume.OwnerID)

	f.to(StateValidating)
	if err := content.ValidateJobDescription(req.JobDescription); err != nil {
		return analyses.Analysis{}, f.fail(err)
	}

	f.to(StateScoring)
	metrics.IncAnalysisStarted()
	result, err := o.Scorer.Score(ctx, resume.ResumeText, req.JobDescription)
	if err != nil {
		metrics.IncAnalysisFailed()
		return analyses.Analysis{}, f.fail(err)
	}

	if err := ctx.Err(); err != nil {
		metrics.IncAnalysisFailed()
		return analyses.Analysis{}, f.fail(err)
	}

	f.to(StatePersisting)
	analyzedAt := o.Now()
	analysis, err := o.Store.CreateAnalysis(ctx, gateway.NewAnalysis{
		ResumeID:       resume.ID,
		OwnerID:        resume.OwnerID,
		JobDescription: req.JobDescription,
		Result:         result,
		AnalyzedAt:     analyzedAt,
	})
	if err != nil {
		metrics.IncAnalysisFailed()
		return analyses.Analysis{}, f.fail(&PersistenceAfterScoringError{
			Request:    req,
			Result:     result,
			AnalyzedAt: analyzedAt,
			Err:        err,
		})
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(f.elapsedMs())
	f.set("analysis_id", analysis.ID)
	f.done(map[string]any{"match_score": analysis.MatchScore})
	return analysis, nil
}

// SaveScored persists an already computed score, typically the payload of a
// *PersistenceAfterScoringError. The scoring engine is not called.
func (o *Orchestrator) SaveScored(ctx context.Context, req AnalysisRequest, result scoring.Result, analyzedAt time.Time) (analyses.Analysis, error) {
	f := startFlow(ctx, o.Now, "analysis.status", StateLookup, map[string]any{
		"resume_id": req.ResumeID,
		"recovery":  true,
	})
	resume, err := o.lookup(ctx, req.ResumeID)
	if err != nil {
		return analyses.Analysis{}, f.fail(err)
	}

	f.to(StateValidating)
	if err := content.ValidateJobDescription(req.JobDescription); err != nil {
		return analyses.Analysis{}, f.fail(err)
	}

	f.to(StatePersisting)
	analysis, err := o.Store.CreateAnalysis(ctx, gateway.NewAnalysis{
		ResumeID:       resume.ID,
		OwnerID:        resume.OwnerID,
		JobDescription: req.JobDescription,
		Result:         result,
		AnalyzedAt:     analyzedAt,
	})
	if err != nil {
		return analyses.Analysis{}, f.fail(&PersistenceAfterScoringError{
			Request:    req,
			Result:     result,
			AnalyzedAt: analyzedAt,
			Err:        err,
		})
	}
	f.set("analysis_id", analysis.ID)
	f.done(nil)
	return analysis, nil
}

func (o *Orchestrator) lookup(ctx context.Context, resumeID string) (resumes.Resume, error) {
	resume, err := o.Store.GetResume(ctx, resumeID)
	if err != nil {
		return resumes.Resume{}, mapResumeErr(resumeID, err)
	}
	return resume, nil
}

func (o *Orchestrator) GetResume(ctx context.Context, resumeID string) (resumes.Resume, error) {
	return o.lookup(ctx, resumeID)
}

func (o *Orchestrator) ListResumesByOwner(ctx context.Context, ownerID string) ([]resumes.Resume, error) {
	return o.Store.ListResumesByOwner(ctx, ownerID)
}

// DeleteResume removes a resume together with its analyses and archived original.
func (o *Orchestrator) DeleteResume(ctx context.Context, resumeID string) error {
	resume, err := o.lookup(ctx, resumeID)
	if err != nil {
		return err
	}
	if err := o.Store.DeleteResume(ctx, resumeID); err != nil {
		return mapResumeErr(resumeID, err)
	}
	o.discardOriginal(ctx, resume.SourceKey)
	return nil
}

// OpenOriginal returns the archived upload of a resume. The caller closes the reader.
func (o *Orchestrator) OpenOriginal(ctx context.Context, resumeID string) (resumes.Resume, io.ReadCloser, error) {
	resume, err := o.lookup(ctx, resumeID)
	if err != nil {
		return resumes.Resume{}, nil, err
	}
	if o.Archive == nil || resume.SourceKey == "" {
		return resumes.Resume{}, nil, fmt.Errorf("%w: %s", ErrOriginalUnavailable, resumeID)
	}
	rc, err := o.Archive.Open(ctx, resume.SourceKey)
	if errors.Is(err, object.ErrNotFound) {
		return resumes.Resume{}, nil, fmt.Errorf("%w: %s", ErrOriginalUnavailable, resumeID)
	}
	if err != nil {
		return resumes.Resume{}, nil, err
	}
	return resume, rc, nil
}

func (o *Orchestrator) GetAnalysis(ctx context.Context, analysisID string) (analyses.Analysis, error) {
	analysis, err := o.Store.GetAnalysis(ctx, analysisID)
	if errors.Is(err, analyses.ErrNotFound) {
		return analyses.Analysis{}, fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
	}
	return analysis, err
}

func (o *Orchestrator) ListAnalysesByResume(ctx context.Context, resumeID string) ([]analyses.Analysis, error) {
	list, err := o.Store.ListAnalysesByResume(ctx, resumeID)
	if err != nil {
		return nil, mapResumeErr(resumeID, err)
	}
	return list, nil
}

func (o *Orchestrator) ListAnalysesByOwner(ctx context.Context, ownerID string) ([]analyses.Analysis, error) {
	return o.Store.ListAnalysesByOwner(ctx, ownerID)
}

func mapResumeErr(resumeID string, err error) error {
	if errors.Is(err, resumes.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrResumeNotFound, resumeID)
	}
	return err
}
