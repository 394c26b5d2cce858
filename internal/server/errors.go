package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resume-matcher/internal/content"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/orchestrator"
	"resume-matcher/internal/scoring"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/util"
	"resume-matcher/internal/users"
)

// writeError maps domain errors onto the standard error envelope.
func writeError(c *gin.Context, err error) {
	var persistErr *orchestrator.PersistenceAfterScoringError
	if errors.As(err, &persistErr) {
		respond.Error(c, http.StatusInternalServerError, "persistence_failed", "analysis scored but could not be saved", gin.H{
			"request":    persistErr.Request,
			"result":     persistErr.Result,
			"analyzedAt": persistErr.AnalyzedAt,
		})
		return
	}

	var validationErr *content.ValidationError
	var extractionErr *extract.ExtractionError
	var engineErr *scoring.EngineError

	switch {
	case errors.Is(err, orchestrator.ErrEmptyFile):
		respond.Error(c, http.StatusBadRequest, "empty_file", "uploaded file is empty", nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, "unsupported_format", "only PDF and DOCX files are supported", nil)
	case errors.As(err, &validationErr):
		respond.Error(c, http.StatusBadRequest, "empty_content", err.Error(), gin.H{"field": validationErr.Field})
	case errors.Is(err, users.ErrInvalidUser), errors.Is(err, util.ErrInvalidFileName):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, orchestrator.ErrResumeNotFound):
		respond.Error(c, http.StatusNotFound, "resume_not_found", "resume not found", nil)
	case errors.Is(err, orchestrator.ErrOriginalUnavailable):
		respond.Error(c, http.StatusNotFound, "original_not_found", "original document is not available", nil)
	case errors.Is(err, orchestrator.ErrAnalysisNotFound):
		respond.Error(c, http.StatusNotFound, "analysis_not_found", "analysis not found", nil)
	case errors.Is(err, users.ErrOwnerNotFound), errors.Is(err, users.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "user_not_found", "user not found", nil)
	case errors.Is(err, users.ErrEmailTaken):
		respond.Error(c, http.StatusConflict, "email_taken", "email is already registered", nil)
	case errors.As(err, &extractionErr):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "document could not be read", gin.H{"format": extractionErr.Format})
	case errors.Is(err, scoring.ErrTimeout):
		respond.Error(c, http.StatusGatewayTimeout, "scoring_timeout", "scoring engine timed out", nil)
	case errors.Is(err, scoring.ErrMalformedResponse):
		respond.Error(c, http.StatusBadGateway, "scoring_malformed_response", "scoring engine returned an invalid response", nil)
	case errors.As(err, &engineErr):
		respond.Error(c, http.StatusBadGateway, "scoring_engine_error", "scoring engine failed", gin.H{
			"statusCode": engineErr.StatusCode,
			"body":       engineErr.Body,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "request_canceled", "request was canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// bindingDetails lists failing fields from gin's validator errors.
func bindingDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]gin.H, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, gin.H{"field": fe.Field(), "rule": fe.Tag()})
	}
	return gin.H{"fields": fields}
}
