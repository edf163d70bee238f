package models

import "time"

// Student is a learner enrolled in a university department. DidInternship is
// derived from completed internships and only written by the assignment flow.
type Student struct {
	ID                 string    `db:"id" json:"id"`
	UniversityID       string    `db:"university_id" json:"university_id"`
	DepartmentID       string    `db:"department_id" json:"department_id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Email              string    `db:"email" json:"email"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	Batch              string    `db:"batch" json:"batch"`
	Section            string    `db:"section" json:"section"`
	Phone              string    `db:"phone" json:"phone"`
	DidInternship      bool      `db:"did_internship" json:"did_internship"`
	CV                 *string   `db:"cv" json:"cv,omitempty"`
	GPA                *float64  `db:"gpa" json:"gpa,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	UniversityID  string
	DepartmentID  string
	DidInternship *bool
	Search        string
	Page          int
	PageSize      int
}
