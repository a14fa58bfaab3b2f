// Package handler exposes the applicant pipeline over HTTP: public intake and
// video completion, and the founder admin console.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hiring_pipeline_backend/internal/adapters/storage"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/repository"
	"hiring_pipeline_backend/internal/hiring/transport"
	"hiring_pipeline_backend/platform/apperr"
	"hiring_pipeline_backend/platform/httpkit"
	"hiring_pipeline_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid applicant id"
	defaultPageSize     = 50
	defaultRedriveAge   = 30 * time.Minute
	defaultRedriveLimit = 100
	resumeFolder        = "resumes"
	videoFolder         = "videos"
)

// Pipeline is the slice of the stage controller the API drives.
type Pipeline interface {
	Submit(ctx context.Context, in hiring.Intake) (hiring.Applicant, error)
	CompleteVideo(ctx context.Context, in hiring.VideoCompletion) (hiring.Applicant, error)
	RecordInterview(ctx context.Context, in hiring.InterviewSubmission) (hiring.Applicant, error)
	ResolveReview(ctx context.Context, in hiring.Resolution) (hiring.Applicant, error)
	Redrive(ctx context.Context, id uuid.UUID) error
	RedriveParked(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// Reader serves the admin views.
type Reader interface {
	Get(ctx context.Context, id uuid.UUID) (hiring.Applicant, error)
	List(ctx context.Context, p repository.ListParams) ([]hiring.Applicant, int, error)
	ListTimeline(ctx context.Context, applicantID uuid.UUID) ([]hiring.TimelineEntry, error)
	ListEscalations(ctx context.Context, applicantID *uuid.UUID, limit int) ([]hiring.Escalation, error)
}

// Uploads presigns applicant uploads.
type Uploads interface {
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error)
}

type Handler struct {
	pipeline Pipeline
	reader   Reader
	uploads  Uploads
	buckets  storage.Buckets
	val      *validator.Validator
}

func New(pipeline Pipeline, reader Reader, uploads Uploads, buckets storage.Buckets, val *validator.Validator) *Handler {
	return &Handler{pipeline: pipeline, reader: reader, uploads: uploads, buckets: buckets, val: val}
}

// RegisterPublicRoutes mounts the unauthenticated candidate endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
	rg.POST("/uploads", h.PresignUpload)
	rg.POST("/:id/video", h.CompleteVideo)
}

// RegisterAdminRoutes mounts the founder console endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/applicants", h.List)
	rg.GET("/applicants/:id", h.Get)
	rg.POST("/applicants/:id/interview", h.RecordInterview)
	rg.POST("/applicants/:id/resolution", h.Resolve)
	rg.POST("/applicants/:id/redrive", h.Redrive)
	rg.POST("/applicants/redrive", h.RedriveParked)
	rg.GET("/escalations", h.ListEscalations)
}

// Submit accepts an application and queues it for scoring.
// POST /api/v1/applications
func (h *Handler) Submit(c *gin.Context) {
	var req transport.ApplicationRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.pipeline.Submit(c.Request.Context(), req.Intake())
	if httpkit.HandleError(c, hiring.ToAppErr(err)) {
		return
	}
	httpkit.Accepted(c, transport.ApplicationAccepted{ID: a.ID, Status: a.Status})
}

// PresignUpload returns a presigned PUT URL for a résumé or a video clip.
// POST /api/v1/applications/uploads
func (h *Handler) PresignUpload(c *gin.Context) {
	var req transport.PresignedUploadRequest
	if !h.bind(c, &req) {
		return
	}
	contentType := storage.NormalizeContentType(req.ContentType)
	bucket, folder := h.buckets.Resumes, resumeFolder
	switch req.Kind {
	case transport.UploadResume:
		if contentType != "application/pdf" {
			httpkit.Error(c, http.StatusBadRequest, "resume must be a PDF", nil)
			return
		}
	case transport.UploadVideo:
		if !storage.IsVideoContentType(contentType) {
			httpkit.Error(c, http.StatusBadRequest, "video must be webm, mp4 or quicktime", nil)
			return
		}
		bucket, folder = h.buckets.Videos, videoFolder
	}

	presigned, err := h.uploads.GenerateUploadURL(c.Request.Context(), bucket, folder, req.FileName, contentType, req.SizeBytes)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindValidation, err.Error(), err))
		return
	}
	httpkit.OK(c, transport.PresignedUploadResponse{
		UploadURL: presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt.Unix(),
	})
}

// CompleteVideo records the uploaded clips and queues video scoring.
// POST /api/v1/applications/:id/video
func (h *Handler) CompleteVideo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.VideoCompletionRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.pipeline.CompleteVideo(c.Request.Context(), hiring.VideoCompletion{
		ApplicantID: id,
		Token:       req.Token,
		VideoPaths:  req.VideoPaths,
	})
	if httpkit.HandleError(c, hiring.ToAppErr(err)) {
		return
	}
	httpkit.Accepted(c, transport.ApplicationAccepted{ID: a.ID, Status: a.Status})
}

// List returns a filtered page of applicants.
// GET /api/v1/admin/applicants
func (h *Handler) List(c *gin.Context) {
	var req transport.ListApplicantsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Size == 0 {
		req.Size = defaultPageSize
	}

	params := repository.ListParams{
		Search: strings.TrimSpace(req.Search),
		Limit:  req.Size,
		Offset: (req.Page - 1) * req.Size,
	}
	if req.Status != "" {
		st := hiring.Status(req.Status)
		params.Status = &st
	}
	if req.Source != "" {
		src := hiring.Source(req.Source)
		params.Source = &src
	}

	items, total, err := h.reader.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	resp := transport.ApplicantListResponse{
		Items:      make([]transport.ApplicantSummary, 0, len(items)),
		Total:      total,
		Page:       req.Page,
		PageSize:   req.Size,
		TotalPages: (total + req.Size - 1) / req.Size,
	}
	for _, a := range items {
		resp.Items = append(resp.Items, transport.ToSummary(a))
	}
	httpkit.OK(c, resp)
}

// Get returns one applicant with its timeline.
// GET /api/v1/admin/applicants/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.reader.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, hiring.ToAppErr(err)) {
		return
	}
	timeline, err := h.reader.ListTimeline(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToResponse(a, timeline))
}

// RecordInterview stores interview ratings and queues the final decision.
// POST /api/v1/admin/applicants/:id/interview
func (h *Handler) RecordInterview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.InterviewRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.pipeline.RecordInterview(c.Request.Context(), hiring.InterviewSubmission{ApplicantID: id, Scores: req.Scores()})
	if httpkit.HandleError(c, hiring.ToAppErr(err)) {
		return
	}
	httpkit.Accepted(c, transport.ToResponse(a, nil))
}

// Resolve applies a founder's decision to a review_needed applicant.
// POST /api/v1/admin/applicants/:id/resolution
func (h *Handler) Resolve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.ResolutionRequest
	if !h.bind(c, &req) {
		return
	}
	res := hiring.Resolution{ApplicantID: id, Decision: hiring.Decision(req.Decision)}
	if identity := httpkit.GetIdentity(c); identity.IsAuthenticated() {
		res.ResolvedBy = &identity.UserID
	}
	a, err := h.pipeline.ResolveReview(c.Request.Context(), res)
	if httpkit.HandleError(c, hiring.ToAppErr(err)) {
		return
	}
	httpkit.OK(c, transport.ToResponse(a, nil))
}

// Redrive re-queues the processing task of one parked applicant.
// POST /api/v1/admin/applicants/:id/redrive
func (h *Handler) Redrive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.pipeline.Redrive(c.Request.Context(), id); httpkit.HandleError(c, hiring.ToAppErr(err)) {
		return
	}
	httpkit.Accepted(c, gin.H{"status": "queued"})
}

// RedriveParked re-queues every applicant parked longer than the threshold.
// POST /api/v1/admin/applicants/redrive
func (h *Handler) RedriveParked(c *gin.Context) {
	var req transport.RedriveParkedRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	age := defaultRedriveAge
	if req.OlderThanMinutes > 0 {
		age = time.Duration(req.OlderThanMinutes) * time.Minute
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultRedriveLimit
	}
	n, err := h.pipeline.RedriveParked(c.Request.Context(), age, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, transport.RedriveParkedResponse{Queued: n})
}

// ListEscalations returns recent pipeline failures.
// GET /api/v1/admin/escalations
func (h *Handler) ListEscalations(c *gin.Context) {
	var applicantID *uuid.UUID
	if raw := c.Query("applicantId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
			return
		}
		applicantID = &id
	}
	items, err := h.reader.ListEscalations(c.Request.Context(), applicantID, 100)
	if httpkit.HandleError(c, err) {
		return
	}
	if items == nil {
		items = []hiring.Escalation{}
	}
	httpkit.OK(c, transport.EscalationListResponse{Items: items})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) validate(c *gin.Context, req any) bool {
	if err := h.val.Struct(req); err != nil {
		field, tag := validator.FirstFieldError(err)
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, gin.H{"field": field, "rule": tag})
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
