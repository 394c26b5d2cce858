package analyses

import (
	"context"
	"sort"
	"sync"

	"resume-matcher/internal/scoring"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	analysis.Result = cloneResult(analysis.Result)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

func (r *MemoryRepo) ListByResume(ctx context.Context, resumeID string) ([]Analysis, error) {
	return r.list(ctx, func(a Analysis) bool { return a.ResumeID == resumeID })
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Analysis, error) {
	return r.list(ctx, func(a Analysis) bool { return a.OwnerID == ownerID })
}

func (r *MemoryRepo) DeleteByResume(ctx context.Context, resumeID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, analysis := range r.byID {
		if analysis.ResumeID == resumeID {
			delete(r.byID, id)
			removed++
		}
	}
	return removed, nil
}

// list returns matching analyses, newest first.
func (r *MemoryRepo) list(ctx context.Context, match func(Analysis) bool) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Analysis, 0)
	for _, analysis := range r.byID {
		if match(analysis) {
			out = append(out, analysis)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AnalyzedAt.Equal(out[j].AnalyzedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].AnalyzedAt.After(out[j].AnalyzedAt)
	})
	return out, nil
}

func cloneResult(r scoring.Result) scoring.Result {
	r = scoring.Normalize(r)
	r.ResumeSkills = append([]string{}, r.ResumeSkills...)
	r.JobSkills = append([]string{}, r.JobSkills...)
	r.MissingSkills = append([]string{}, r.MissingSkills...)
	r.Suggestions = append([]string{}, r.Suggestions...)
	return r
}
