package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *response.Pagination, error)
	Lookup(ctx context.Context, idOrEmail string) (*models.Student, error)
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id string) error
	UploadCV(ctx context.Context, id, filename, contentType string, size int64, r io.Reader) (*dto.UploadedFile, error)
}

type studentImporter interface {
	ImportStudents(ctx context.Context, defaults dto.ImportStudentsDefaults, r io.Reader) (*dto.ImportStudentsResponse, error)
}

// StudentHandler exposes student endpoints, CV upload and bulk import.
type StudentHandler struct {
	students  studentService
	importer  studentImporter
	maxUpload int64
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, importer studentImporter, maxUpload int64) *StudentHandler {
	return &StudentHandler{students: students, importer: importer, maxUpload: maxUpload}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param universityId query string false "Filter by university"
// @Param departmentId query string false "Filter by department"
// @Param didInternship query bool false "Filter by internship completion"
// @Param search query string false "Search by name, email or registration number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		UniversityID:  c.Query("universityId"),
		DepartmentID:  c.Query("departmentId"),
		DidInternship: boolQuery(c, "didInternship"),
		Search:        strings.TrimSpace(c.Query("search")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student by ID or email
// @Tags Students
// @Produce json
// @Param id path string true "Student ID or email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if !bindJSON(c, &req, "student") {
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Description didInternship is derived from completed internships and cannot be set here.
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if !bindJSON(c, &req, "student") {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	respondDeleted(c, c.Param("id"))
}

// UploadCV godoc
// @Summary Upload a student's CV
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param file formData file true "CV (pdf, doc, docx)"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /students/{id}/cv [post]
func (h *StudentHandler) UploadCV(c *gin.Context) {
	limitBody(c, h.maxUpload)
	file, header, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer file.Close()

	uploaded, err := h.students.UploadCV(c.Request.Context(), c.Param("id"), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, uploaded, nil)
}

// Import godoc
// @Summary Bulk import students from an xlsx sheet
// @Description Rows with a duplicate email or registration number are skipped and reported.
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Student workbook (xlsx)"
// @Param students formData string true "JSON defaults: universityId, departmentId, batch, section"
// @Success 200 {object} response.Envelope
// @Router /upload-students [post]
func (h *StudentHandler) Import(c *gin.Context) {
	limitBody(c, h.maxUpload)
	var defaults dto.ImportStudentsDefaults
	if err := json.Unmarshal([]byte(c.PostForm("students")), &defaults); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "students must be a JSON object"))
		return
	}
	file, _, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.importer.ImportStudents(c.Request.Context(), defaults, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, nil)
}
