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

type facultyService interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *response.Pagination, error)
	Get(ctx context.Context, id string) (*models.Faculty, error)
	Create(ctx context.Context, req dto.CreateFacultyRequest) (*models.Faculty, error)
	Update(ctx context.Context, id string, req dto.UpdateFacultyRequest) (*models.Faculty, error)
	Delete(ctx context.Context, id string) error
}

// FacultyHandler exposes faculty endpoints.
type FacultyHandler struct {
	faculty facultyService
}

// NewFacultyHandler constructs FacultyHandler.
func NewFacultyHandler(faculty facultyService) *FacultyHandler {
	return &FacultyHandler{faculty: faculty}
}

// List godoc
// @Summary List faculty members
// @Tags Faculty
// @Produce json
// @Param universityId query string false "Filter by university"
// @Param departmentId query string false "Filter by department"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	filter := models.FacultyFilter{
		UniversityID: c.Query("universityId"),
		DepartmentID: c.Query("departmentId"),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	filter.Page, filter.PageSize = pageParams(c)
	items, pagination, err := h.faculty.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get faculty member
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	item, err := h.faculty.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create faculty member
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body dto.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Router /faculty [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	var req dto.CreateFacultyRequest
	if !bindJSON(c, &req, "faculty") {
		return
	}
	item, err := h.faculty.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update faculty member
// @Tags Faculty
// @Accept json
// @Produce json
// @Param id path string true "Faculty ID"
// @Param payload body dto.UpdateFacultyRequest true "Faculty payload"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id} [put]
func (h *FacultyHandler) Update(c *gin.Context) {
	var req dto.UpdateFacultyRequest
	if !bindJSON(c, &req, "faculty") {
		return
	}
	item, err := h.faculty.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete faculty member
// @Tags Faculty
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id} [delete]
func (h *FacultyHandler) Delete(c *gin.Context) {
	if err := h.faculty.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	respondDeleted(c, c.Param("id"))
}
