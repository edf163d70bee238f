package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/service"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type assignmentService interface {
	AssignStudentToInternship(ctx context.Context, internshipID, studentID string) (*models.Internship, error)
	UnassignStudent(ctx context.Context, internshipID, studentID string) (*models.Internship, error)
	AssignFaculty(ctx context.Context, internshipID, facultyID string) (*models.Internship, error)
	UnassignedStudents(ctx context.Context, universityID, departmentID string) ([]models.Student, error)
	CompleteInternship(ctx context.Context, internshipID string) (*dto.CompletionResult, error)
	ApproveInternship(ctx context.Context, internshipID string, approve bool) (*models.Internship, error)
	ReconcileCompletions(ctx context.Context) (*dto.ReconcileResult, error)
}

type rosterService interface {
	Roster(ctx context.Context, internshipID, format string) (*service.RosterFile, error)
}

// AssignmentHandler exposes the assignment and completion workflow.
type AssignmentHandler struct {
	assignments assignmentService
	rosters     rosterService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService, rosters rosterService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, rosters: rosters}
}

// AssignStudent godoc
// @Summary Assign a student to an internship
// @Description Idempotent: assigning a student already in the set returns the internship unchanged.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param internshipId path string true "Internship ID"
// @Param payload body dto.AssignStudentRequest true "Student"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /internship/{internshipId} [put]
func (h *AssignmentHandler) AssignStudent(c *gin.Context) {
	var req dto.AssignStudentRequest
	if !bindJSON(c, &req, "assignment") {
		return
	}
	item, err := h.assignments.AssignStudentToInternship(c.Request.Context(), c.Param("internshipId"), req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// UnassignStudent godoc
// @Summary Remove a student from an internship
// @Tags Assignments
// @Produce json
// @Param internshipId path string true "Internship ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /internship/{internshipId}/students/{studentId} [delete]
func (h *AssignmentHandler) UnassignStudent(c *gin.Context) {
	item, err := h.assignments.UnassignStudent(c.Request.Context(), c.Param("internshipId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// AssignFaculty godoc
// @Summary Assign a faculty supervisor to an internship
// @Tags Assignments
// @Accept json
// @Produce json
// @Param internshipId path string true "Internship ID"
// @Param payload body dto.AssignFacultyRequest true "Faculty"
// @Success 200 {object} response.Envelope
// @Router /internship/{internshipId}/faculty [put]
func (h *AssignmentHandler) AssignFaculty(c *gin.Context) {
	var req dto.AssignFacultyRequest
	if !bindJSON(c, &req, "assignment") {
		return
	}
	item, err := h.assignments.AssignFaculty(c.Request.Context(), c.Param("internshipId"), req.FacultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Approve godoc
// @Summary Approve or unapprove an internship
// @Tags Internships
// @Accept json
// @Produce json
// @Param payload body dto.ApproveInternshipRequest true "Approval"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /internships [put]
func (h *AssignmentHandler) Approve(c *gin.Context) {
	var req dto.ApproveInternshipRequest
	if !bindValid(c, &req, "approval") {
		return
	}
	item, err := h.assignments.ApproveInternship(c.Request.Context(), req.ID, *req.IsApproved)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, item, nil)
}

// Complete godoc
// @Summary Mark an internship complete
// @Description Sets isComplete and marks every assigned student as having done an internship.
// @Tags Assignments
// @Produce json
// @Param internshipId path string true "Internship ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /MarkasComplete/{internshipId} [put]
func (h *AssignmentHandler) Complete(c *gin.Context) {
	result, err := h.assignments.CompleteInternship(c.Request.Context(), c.Param("internshipId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, nil)
}

// Reconcile godoc
// @Summary Re-apply didInternship for completed internships
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /internships/reconcile [post]
func (h *AssignmentHandler) Reconcile(c *gin.Context) {
	result, err := h.assignments.ReconcileCompletions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, nil)
}

// Unassigned godoc
// @Summary Students of a university not assigned to any internship
// @Tags Assignments
// @Produce json
// @Param universityId path string true "University ID"
// @Param department query string false "Department ID"
// @Success 200 {object} response.Envelope
// @Router /studentNoInternship/{universityId} [get]
func (h *AssignmentHandler) Unassigned(c *gin.Context) {
	students, err := h.assignments.UnassignedStudents(c.Request.Context(), c.Param("universityId"), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, students, nil)
}

// Roster godoc
// @Summary Export the assigned students of an internship
// @Tags Assignments
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param internshipId path string true "Internship ID"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /internship/{internshipId}/roster [get]
func (h *AssignmentHandler) Roster(c *gin.Context) {
	file, err := h.rosters.Roster(c.Request.Context(), c.Param("internshipId"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
