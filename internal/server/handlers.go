package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/orchestrator"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/users"
)

type handlers struct {
	orch           *orchestrator.Orchestrator
	users          *users.Service
	maxUploadBytes int64
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"max=200"`
}

type uploadForm struct {
	UserID string `form:"userId" binding:"required"`
}

type analyzeResumeRequest struct {
	JobDescription string `json:"jobDescription"`
}

type analyzeRequest struct {
	ResumeID       string `json:"resumeId" binding:"required"`
	JobDescription string `json:"jobDescription"`
}

func (h *handlers) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", bindingDetails(err))
		return
	}
	user, err := h.users.Create(c.Request.Context(), users.CreateInput{Email: req.Email, FullName: req.FullName})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.OwnerIDKey, user.ID)
	respond.Created(c, user)
}

func (h *handlers) getUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *handlers) uploadResume(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		if isTooLarge(err) {
			respondTooLarge(c, h.maxUploadBytes)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "userId is required", bindingDetails(err))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			respondTooLarge(c, h.maxUploadBytes)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		respondTooLarge(c, h.maxUploadBytes)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	ownerID := strings.TrimSpace(form.UserID)
	c.Set(middleware.OwnerIDKey, ownerID)
	resume, err := h.orch.Upload(c.Request.Context(), ownerID, fileHeader.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ID)
	respond.Created(c, resume)
}

func (h *handlers) getResume(c *gin.Context) {
	c.Set(middleware.ResumeIDKey, c.Param("id"))
	resume, err := h.orch.GetResume(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, resume)
}

func (h *handlers) deleteResume(c *gin.Context) {
	c.Set(middleware.ResumeIDKey, c.Param("id"))
	if err := h.orch.DeleteResume(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *handlers) downloadOriginal(c *gin.Context) {
	c.Set(middleware.ResumeIDKey, c.Param("id"))
	resume, rc, err := h.orch.OpenOriginal(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	name := path.Base(resume.SourceKey)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", "resume"+path.Ext(name))
	}
	c.DataFromReader(http.StatusOK, -1, object.ContentType(name), rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (h *handlers) listResumesByOwner(c *gin.Context) {
	ownerID := c.Param("id")
	c.Set(middleware.OwnerIDKey, ownerID)
	if _, err := h.users.GetByID(c.Request.Context(), ownerID); err != nil {
		writeError(c, err)
		return
	}
	list, err := h.orch.ListResumesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *handlers) listAnalysesByResume(c *gin.Context) {
	c.Set(middleware.ResumeIDKey, c.Param("id"))
	list, err := h.orch.ListAnalysesByResume(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *handlers) listAnalysesByOwner(c *gin.Context) {
	ownerID := c.Param("id")
	c.Set(middleware.OwnerIDKey, ownerID)
	if _, err := h.users.GetByID(c.Request.Context(), ownerID); err != nil {
		writeError(c, err)
		return
	}
	list, err := h.orch.ListAnalysesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *handlers) analyzeResume(c *gin.Context) {
	var req analyzeResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", bindingDetails(err))
		return
	}
	h.runAnalysis(c, orchestrator.AnalysisRequest{ResumeID: c.Param("id"), JobDescription: req.JobDescription})
}

func (h *handlers) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", bindingDetails(err))
		return
	}
	h.runAnalysis(c, orchestrator.AnalysisRequest{ResumeID: strings.TrimSpace(req.ResumeID), JobDescription: req.JobDescription})
}

func (h *handlers) runAnalysis(c *gin.Context, req orchestrator.AnalysisRequest) {
	c.Set(middleware.ResumeIDKey, req.ResumeID)
	analysis, err := h.orch.Analyze(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.AnalysisIDKey, analysis.ID)
	respond.OK(c, analysis)
}

func (h *handlers) getAnalysis(c *gin.Context) {
	c.Set(middleware.AnalysisIDKey, c.Param("id"))
	analysis, err := h.orch.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, analysis)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func respondTooLarge(c *gin.Context, limit int64) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", gin.H{"maxBytes": limit})
}
