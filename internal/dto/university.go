package dto

// CreateUniversityRequest defines payload for registering a university.
type CreateUniversityRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"omitempty,max=200"`
	Address  string `json:"address" validate:"omitempty,max=500"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateUniversityRequest carries a partial update. Nil fields are left unchanged.
type UpdateUniversityRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Location *string `json:"location" validate:"omitempty,max=200"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	Email    *string `json:"email" validate:"omitempty,email"`
}
