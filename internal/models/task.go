package models

import "time"

// Task is a graded piece of work attached to an internship.
type Task struct {
	ID           string    `db:"id" json:"id"`
	InternshipID string    `db:"internship_id" json:"internship_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	Deadline     time.Time `db:"deadline" json:"deadline"`
	Marks        int       `db:"marks" json:"marks"`
	Weightage    float64   `db:"weightage" json:"weightage"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	InternshipID string
	Page         int
	PageSize     int
}
