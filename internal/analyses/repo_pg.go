package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-matcher/internal/scoring"
)

// PGRepo implements Repo using Postgres. Skill lists are stored as JSONB arrays.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT a.id, a.resume_id, r.owner_id, a.job_description, a.match_score,
       a.resume_skills, a.job_skills, a.missing_skills, a.suggestions, a.analyzed_at
FROM analyses a
JOIN resumes r ON r.id = a.resume_id`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, resume_id, job_description, match_score,
	resume_skills, job_skills, missing_skills, suggestions, analyzed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	result := scoring.Normalize(analysis.Result)
	lists := make([][]byte, 0, 4)
	for _, values := range [][]string{result.ResumeSkills, result.JobSkills, result.MissingSkills, result.Suggestions} {
		payload, err := json.Marshal(values)
		if err != nil {
			return err
		}
		lists = append(lists, payload)
	}
	_, err := r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.ResumeID,
		analysis.JobDescription,
		result.MatchScore,
		lists[0],
		lists[1],
		lists[2],
		lists[3],
		analysis.AnalyzedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+`
WHERE a.id = $1
LIMIT 1`, analysisID)
	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return analysis, nil
}

func (r *PGRepo) ListByResume(ctx context.Context, resumeID string) ([]Analysis, error) {
	return r.list(ctx, selectColumns+`
WHERE a.resume_id = $1
ORDER BY a.analyzed_at DESC, a.id DESC`, resumeID)
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Analysis, error) {
	return r.list(ctx, selectColumns+`
WHERE r.owner_id = $1
ORDER BY a.analyzed_at DESC, a.id DESC`, ownerID)
}

func (r *PGRepo) DeleteByResume(ctx context.Context, resumeID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analyses WHERE resume_id = $1`, resumeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) list(ctx context.Context, query string, arg string) ([]Analysis, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, analysis)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a                                    Analysis
		resumeSkills, jobSkills, missing, sg []byte
	)
	if err := row.Scan(
		&a.ID,
		&a.ResumeID,
		&a.OwnerID,
		&a.JobDescription,
		&a.MatchScore,
		&resumeSkills,
		&jobSkills,
		&missing,
		&sg,
		&a.AnalyzedAt,
	); err != nil {
		return Analysis{}, err
	}
	targets := []struct {
		name string
		raw  []byte
		dst  *[]string
	}{
		{"resume_skills", resumeSkills, &a.ResumeSkills},
		{"job_skills", jobSkills, &a.JobSkills},
		{"missing_skills", missing, &a.MissingSkills},
		{"suggestions", sg, &a.Suggestions},
	}
	for _, target := range targets {
		if len(target.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(target.raw, target.dst); err != nil {
			return Analysis{}, fmt.Errorf("decode %s: %w", target.name, err)
		}
	}
	a.Result = scoring.Normalize(a.Result)
	return a, nil
}
