package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type submissionService interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, *response.Pagination, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	Create(ctx context.Context, req dto.CreateSubmissionRequest) (*models.Submission, *dto.UploadedFile, error)
	Update(ctx context.Context, id string, req dto.UpdateSubmissionRequest) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
	FileURL(ctx context.Context, id string) (string, error)
}

// SubmissionHandler exposes task submission endpoints.
type SubmissionHandler struct {
	submissions submissionService
	maxUpload   int64
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(submissions submissionService, maxUpload int64) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, maxUpload: maxUpload}
}

// List godoc
// @Summary List submissions
// @Tags Submissions
// @Produce json
// @Param taskId query string false "Filter by task"
// @Param studentId query string false "Filter by student"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	filter := models.SubmissionFilter{TaskID: c.Query("taskId"), StudentID: c.Query("studentId")}
	filter.Page, filter.PageSize = pageParams(c)
	items, pagination, err := h.submissions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get submission with a download link
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	item, err := h.submissions.Get(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.submissions.FileURL(ctx, item.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"submission": item, "fileUrl": link}, nil)
}

// Create godoc
// @Summary Submit a file against a task
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Param taskId formData string true "Task ID"
// @Param studentName formData string true "Submitter name"
// @Param studentId formData string false "Student ID"
// @Param file formData file true "Submission file"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	limitBody(c, h.maxUpload)
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	file, header, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer file.Close()
	req.FileName = header.Filename
	req.ContentType = header.Header.Get("Content-Type")
	req.Size = header.Size
	req.File = file

	item, uploaded, err := h.submissions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"submission": item, "file": uploaded})
}

// Update godoc
// @Summary Update submitter details
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.UpdateSubmissionRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [put]
func (h *SubmissionHandler) Update(c *gin.Context) {
	var req dto.UpdateSubmissionRequest
	if !bindJSON(c, &req, "submission") {
		return
	}
	item, err := h.submissions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete submission and its file
// @Tags Submissions
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) Delete(c *gin.Context) {
	if err := h.submissions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	respondDeleted(c, c.Param("id"))
}
