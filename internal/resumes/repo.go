package resumes

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("resume not found")

// Repo defines persistence operations for resumes.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, resumeID string) (Resume, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Resume, error)
	Delete(ctx context.Context, resumeID string) error
}
