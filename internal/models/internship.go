package models

import (
	"time"

	"github.com/lib/pq"
)

// Compensation types accepted for internships.
const (
	CompensationPaid   = "paid"
	CompensationUnpaid = "unpaid"
)

// Internship is a placement offered to a university's students. The three
// reference sets are never NULL in storage.
type Internship struct {
	ID                 string         `db:"id" json:"id"`
	UniversityID       string         `db:"university_id" json:"university_id"`
	Title              string         `db:"title" json:"title"`
	HostInstitution    string         `db:"host_institution" json:"host_institution"`
	Category           string         `db:"category" json:"category"`
	CompensationType   string         `db:"compensation_type" json:"compensation_type"`
	Stipend            *float64       `db:"stipend" json:"stipend,omitempty"`
	Location           string         `db:"location" json:"location"`
	Description        string         `db:"description" json:"description"`
	StartDate          time.Time      `db:"start_date" json:"start_date"`
	EndDate            time.Time      `db:"end_date" json:"end_date"`
	IsApproved         bool           `db:"is_approved" json:"is_approved"`
	IsComplete         bool           `db:"is_complete" json:"is_complete"`
	NumberOfStudents   int            `db:"number_of_students" json:"number_of_students"`
	AssignedFaculty    pq.StringArray `db:"assigned_faculty" json:"assigned_faculty"`
	AssignedStudents   pq.StringArray `db:"assigned_students" json:"assigned_students"`
	AssignedDepartment pq.StringArray `db:"assigned_department" json:"assigned_department"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// HasStudent reports whether the student is in the assigned set.
func (i *Internship) HasStudent(studentID string) bool {
	return contains(i.AssignedStudents, studentID)
}

// HasFaculty reports whether the faculty member is in the assigned set.
func (i *Internship) HasFaculty(facultyID string) bool {
	return contains(i.AssignedFaculty, facultyID)
}

// Normalize replaces nil reference sets with empty ones.
func (i *Internship) Normalize() {
	if i.AssignedFaculty == nil {
		i.AssignedFaculty = pq.StringArray{}
	}
	if i.AssignedStudents == nil {
		i.AssignedStudents = pq.StringArray{}
	}
	if i.AssignedDepartment == nil {
		i.AssignedDepartment = pq.StringArray{}
	}
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// InternshipFilter narrows internship listings.
type InternshipFilter struct {
	UniversityID string
	IsApproved   *bool
	IsComplete   *bool
	Search       string
	Page         int
	PageSize     int
}
