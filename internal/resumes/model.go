package resumes

import "time"

// Resume is the stored result of a successful upload. It is immutable once created.
type Resume struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	FileName   string    `json:"fileName"`
	ResumeText string    `json:"resumeText"`
	SourceKey  string    `json:"sourceKey,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}
