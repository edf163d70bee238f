package dto

import "time"

// CreateTaskRequest defines payload for creating a task.
type CreateTaskRequest struct {
	InternshipID string    `json:"internshipId" validate:"required"`
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"omitempty,max=5000"`
	Deadline     time.Time `json:"deadline" validate:"required"`
	Marks        int       `json:"marks" validate:"min=0"`
	Weightage    float64   `json:"weightage" validate:"min=0,max=100"`
}

// UpdateTaskRequest carries a partial update.
type UpdateTaskRequest struct {
	InternshipID *string    `json:"internshipId" validate:"omitempty,min=1"`
	Title        *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=5000"`
	Deadline     *time.Time `json:"deadline"`
	Marks        *int       `json:"marks" validate:"omitempty,min=0"`
	Weightage    *float64   `json:"weightage" validate:"omitempty,min=0,max=100"`
}
