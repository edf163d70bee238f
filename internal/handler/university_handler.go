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

type universityService interface {
	List(ctx context.Context, filter models.UniversityFilter) ([]models.University, *response.Pagination, error)
	Get(ctx context.Context, id string) (*models.University, error)
	Create(ctx context.Context, req dto.CreateUniversityRequest) (*models.University, error)
	Update(ctx context.Context, id string, req dto.UpdateUniversityRequest) (*models.University, error)
	Delete(ctx context.Context, id string) error
}

// UniversityHandler exposes university endpoints.
type UniversityHandler struct {
	universities universityService
}

// NewUniversityHandler constructs UniversityHandler.
func NewUniversityHandler(universities universityService) *UniversityHandler {
	return &UniversityHandler{universities: universities}
}

// List godoc
// @Summary List universities
// @Tags Universities
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /universities [get]
func (h *UniversityHandler) List(c *gin.Context) {
	filter := models.UniversityFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.PageSize = pageParams(c)
	items, pagination, err := h.universities.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get university
// @Tags Universities
// @Produce json
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [get]
func (h *UniversityHandler) Get(c *gin.Context) {
	item, err := h.universities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create university
// @Tags Universities
// @Accept json
// @Produce json
// @Param payload body dto.CreateUniversityRequest true "University payload"
// @Success 201 {object} response.Envelope
// @Router /universities [post]
func (h *UniversityHandler) Create(c *gin.Context) {
	var req dto.CreateUniversityRequest
	if !bindJSON(c, &req, "university") {
		return
	}
	item, err := h.universities.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update university
// @Tags Universities
// @Accept json
// @Produce json
// @Param id path string true "University ID"
// @Param payload body dto.UpdateUniversityRequest true "University payload"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [put]
func (h *UniversityHandler) Update(c *gin.Context) {
	var req dto.UpdateUniversityRequest
	if !bindJSON(c, &req, "university") {
		return
	}
	item, err := h.universities.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete university
// @Tags Universities
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [delete]
func (h *UniversityHandler) Delete(c *gin.Context) {
	if err := h.universities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	respondDeleted(c, c.Param("id"))
}
