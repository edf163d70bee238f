package dto

import "time"

// CreateInternshipRequest defines payload for posting an internship.
type CreateInternshipRequest struct {
	UniversityID       string    `json:"universityId" validate:"required"`
	Title              string    `json:"title" validate:"required,max=200"`
	HostInstitution    string    `json:"hostInstitution" validate:"required,max=200"`
	Category           string    `json:"category" validate:"omitempty,max=100"`
	CompensationType   string    `json:"compensationType" validate:"omitempty,oneof=paid unpaid"`
	Stipend            *float64  `json:"stipend" validate:"omitempty,min=0"`
	Location           string    `json:"location" validate:"omitempty,max=200"`
	Description        string    `json:"description" validate:"omitempty,max=5000"`
	StartDate          time.Time `json:"startDate" validate:"required"`
	EndDate            time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	NumberOfStudents   int       `json:"numberOfStudents" validate:"required,min=1"`
	AssignedDepartment []string  `json:"assignedDepartment" validate:"omitempty,dive,required"`
}

// UpdateInternshipRequest carries a partial update of descriptive fields.
type UpdateInternshipRequest struct {
	Title              *string    `json:"title" validate:"omitempty,min=1,max=200"`
	HostInstitution    *string    `json:"hostInstitution" validate:"omitempty,min=1,max=200"`
	Category           *string    `json:"category" validate:"omitempty,max=100"`
	CompensationType   *string    `json:"compensationType" validate:"omitempty,oneof=paid unpaid"`
	Stipend            *float64   `json:"stipend" validate:"omitempty,min=0"`
	Location           *string    `json:"location" validate:"omitempty,max=200"`
	Description        *string    `json:"description" validate:"omitempty,max=5000"`
	StartDate          *time.Time `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
	NumberOfStudents   *int       `json:"numberOfStudents" validate:"omitempty,min=1"`
	AssignedDepartment []string   `json:"assignedDepartment" validate:"omitempty,dive,required"`
}

// ApproveInternshipRequest is the body of PUT /internships.
type ApproveInternshipRequest struct {
	ID         string `json:"id" validate:"required"`
	IsApproved *bool  `json:"isApproved" validate:"required"`
}

// DeleteInternshipRequest is the body of DELETE /internships.
type DeleteInternshipRequest struct {
	ID string `json:"id" validate:"required"`
}

// AssignStudentRequest is the body of PUT /internship/:internshipId.
type AssignStudentRequest struct {
	StudentID string `json:"studentId" validate:"required"`
}

// AssignFacultyRequest is the body of PUT /internship/:internshipId/faculty.
type AssignFacultyRequest struct {
	FacultyID string `json:"facultyId" validate:"required"`
}

// CompletionResult reports the outcome of completing an internship.
type CompletionResult struct {
	InternshipID     string   `json:"internshipId"`
	IsComplete       bool     `json:"isComplete"`
	AssignedStudents []string `json:"assignedStudents"`
	StudentsUpdated  int64    `json:"studentsUpdated"`
}

// ReconcileResult reports the outcome of a reconciliation run.
type ReconcileResult struct {
	StudentsRepaired int64     `json:"studentsRepaired"`
	RanAt            time.Time `json:"ranAt"`
}
