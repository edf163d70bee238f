package dto

// QualificationPayload mirrors the faculty qualification record.
type QualificationPayload struct {
	Degree         string `json:"degree" validate:"required,max=100"`
	Institute      string `json:"institute" validate:"required,max=200"`
	PassingYear    int    `json:"passingYear" validate:"omitempty,min=1950,max=2100"`
	Specialization string `json:"specialization" validate:"omitempty,max=200"`
}

// CreateFacultyRequest defines payload for creating a faculty member.
type CreateFacultyRequest struct {
	UniversityID  string               `json:"universityId" validate:"required"`
	DepartmentID  string               `json:"departmentId" validate:"required"`
	FirstName     string               `json:"firstName" validate:"required,max=100"`
	LastName      string               `json:"lastName" validate:"omitempty,max=100"`
	Email         string               `json:"email" validate:"required,email"`
	CNIC          string               `json:"cnic" validate:"required,max=20"`
	Phone         string               `json:"phone" validate:"omitempty,max=30"`
	Designation   string               `json:"designation" validate:"omitempty,max=100"`
	Qualification QualificationPayload `json:"qualification" validate:"required"`
}

// UpdateFacultyRequest carries a partial update.
type UpdateFacultyRequest struct {
	UniversityID  *string               `json:"universityId" validate:"omitempty,min=1"`
	DepartmentID  *string               `json:"departmentId" validate:"omitempty,min=1"`
	FirstName     *string               `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName      *string               `json:"lastName" validate:"omitempty,max=100"`
	Email         *string               `json:"email" validate:"omitempty,email"`
	CNIC          *string               `json:"cnic" validate:"omitempty,min=1,max=20"`
	Phone         *string               `json:"phone" validate:"omitempty,max=30"`
	Designation   *string               `json:"designation" validate:"omitempty,max=100"`
	Qualification *QualificationPayload `json:"qualification" validate:"omitempty"`
}
