package analyses

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("analysis not found")

// Repo defines persistence operations for analyses. There is no update.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByResume(ctx context.Context, resumeID string) ([]Analysis, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Analysis, error)
	DeleteByResume(ctx context.Context, resumeID string) (int64, error)
}
