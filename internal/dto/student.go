package dto

// CreateStudentRequest defines payload for creating a student. There is no
// didInternship field; that flag is derived.
type CreateStudentRequest struct {
	UniversityID       string   `json:"universityId" validate:"required"`
	DepartmentID       string   `json:"departmentId" validate:"required"`
	FirstName          string   `json:"firstName" validate:"required,max=100"`
	LastName           string   `json:"lastName" validate:"omitempty,max=100"`
	Email              string   `json:"email" validate:"required,email"`
	RegistrationNumber string   `json:"registrationNumber" validate:"required,max=50"`
	Batch              string   `json:"batch" validate:"omitempty,max=20"`
	Section            string   `json:"section" validate:"omitempty,max=20"`
	Phone              string   `json:"phone" validate:"omitempty,max=30"`
	GPA                *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
}

// UpdateStudentRequest carries a partial update.
type UpdateStudentRequest struct {
	UniversityID       *string  `json:"universityId" validate:"omitempty,min=1"`
	DepartmentID       *string  `json:"departmentId" validate:"omitempty,min=1"`
	FirstName          *string  `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName           *string  `json:"lastName" validate:"omitempty,max=100"`
	Email              *string  `json:"email" validate:"omitempty,email"`
	RegistrationNumber *string  `json:"registrationNumber" validate:"omitempty,min=1,max=50"`
	Batch              *string  `json:"batch" validate:"omitempty,max=20"`
	Section            *string  `json:"section" validate:"omitempty,max=20"`
	Phone              *string  `json:"phone" validate:"omitempty,max=30"`
	GPA                *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
}

// ImportStudentsDefaults are applied to every row of an uploaded sheet.
type ImportStudentsDefaults struct {
	UniversityID string `json:"universityId" validate:"required"`
	DepartmentID string `json:"departmentId" validate:"required"`
	Batch        string `json:"batch" validate:"omitempty,max=20"`
	Section      string `json:"section" validate:"omitempty,max=20"`
}

// ImportRowError reports a row that was not imported.
type ImportRowError struct {
	Row    int    `json:"row"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

// ImportStudentsResponse summarises a bulk import.
type ImportStudentsResponse struct {
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Skipped  []ImportRowError `json:"skipped"`
}
