package dto

// CreateDepartmentRequest defines payload for creating a department.
type CreateDepartmentRequest struct {
	UniversityID     string `json:"universityId" validate:"required"`
	Name             string `json:"name" validate:"required,max=200"`
	Category         string `json:"category" validate:"omitempty,max=100"`
	HODName          string `json:"hodName" validate:"omitempty,max=200"`
	Email            string `json:"email" validate:"required,email"`
	CNIC             string `json:"cnic" validate:"required,max=20"`
	CoordinatorName  string `json:"coordinatorName" validate:"omitempty,max=200"`
	CoordinatorEmail string `json:"coordinatorEmail" validate:"omitempty,email"`
	FocalPersonName  string `json:"focalPersonName" validate:"omitempty,max=200"`
	FocalPersonEmail string `json:"focalPersonEmail" validate:"omitempty,email"`
}

// UpdateDepartmentRequest carries a partial update.
type UpdateDepartmentRequest struct {
	UniversityID     *string `json:"universityId" validate:"omitempty,min=1"`
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Category         *string `json:"category" validate:"omitempty,max=100"`
	HODName          *string `json:"hodName" validate:"omitempty,max=200"`
	Email            *string `json:"email" validate:"omitempty,email"`
	CNIC             *string `json:"cnic" validate:"omitempty,min=1,max=20"`
	CoordinatorName  *string `json:"coordinatorName" validate:"omitempty,max=200"`
	CoordinatorEmail *string `json:"coordinatorEmail" validate:"omitempty,email"`
	FocalPersonName  *string `json:"focalPersonName" validate:"omitempty,max=200"`
	FocalPersonEmail *string `json:"focalPersonEmail" validate:"omitempty,email"`
}
