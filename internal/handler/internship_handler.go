package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type internshipService interface {
	List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, *response.Pagination, error)
	Get(ctx context.Context, id string) (*models.Internship, error)
	Create(ctx context.Context, req dto.CreateInternshipRequest) (*models.Internship, error)
	Update(ctx context.Context, id string, req dto.UpdateInternshipRequest) (*models.Internship, error)
	Delete(ctx context.Context, id string) error
}

// InternshipHandler exposes internship posting endpoints.
type InternshipHandler struct {
	internships internshipService
}

// NewInternshipHandler constructs InternshipHandler.
func NewInternshipHandler(internships internshipService) *InternshipHandler {
	return &InternshipHandler{internships: internships}
}

// List godoc
// @Summary List internships
// @Tags Internships
// @Produce json
// @Param universityId query string false "Filter by university"
// @Param approved query bool false "Filter by approval"
// @Param complete query bool false "Filter by completion"
// @Param search query string false "Search title or host institution"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /internships [get]
func (h *InternshipHandler) List(c *gin.Context) {
	filter := models.InternshipFilter{
		UniversityID: c.Query("universityId"),
		IsApproved:   boolQuery(c, "approved"),
		IsComplete:   boolQuery(c, "complete"),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	items, pagination, err := h.internships.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get internship detail
// @Tags Internships
// @Produce json
// @Param internshipId path string true "Internship ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /internship/{internshipId} [get]
func (h *InternshipHandler) Get(c *gin.Context) {
	item, err := h.internships.Get(c.Request.Context(), c.Param("internshipId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Post an internship
// @Tags Internships
// @Accept json
// @Produce json
// @Param payload body dto.CreateInternshipRequest true "Internship payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /internships [post]
func (h *InternshipHandler) Create(c *gin.Context) {
	var req dto.CreateInternshipRequest
	if !bindJSON(c, &req, "internship") {
		return
	}
	item, err := h.internships.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update internship details
// @Description Assigned students, faculty and the approval and completion flags are not changed here.
// @Tags Internships
// @Accept json
// @Produce json
// @Param internshipId path string true "Internship ID"
// @Param payload body dto.UpdateInternshipRequest true "Internship payload"
// @Success 200 {object} response.Envelope
// @Router /internship/{internshipId} [patch]
func (h *InternshipHandler) Update(c *gin.Context) {
	var req dto.UpdateInternshipRequest
	if !bindJSON(c, &req, "internship") {
		return
	}
	item, err := h.internships.Update(c.Request.Context(), c.Param("internshipId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete internship
// @Tags Internships
// @Accept json
// @Produce json
// @Param payload body dto.DeleteInternshipRequest true "Internship id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /internships [delete]
func (h *InternshipHandler) Delete(c *gin.Context) {
	var req dto.DeleteInternshipRequest
	if !bindValid(c, &req, "internship") {
		return
	}
	if err := h.internships.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	respondDeleted(c, req.ID)
}
