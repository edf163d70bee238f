package models

import "time"

// Submission is a file handed in against a task. StudentName is kept as
// submitted; StudentID is set when the submitter is a known student.
type Submission struct {
	ID          string    `db:"id" json:"id"`
	TaskID      string    `db:"task_id" json:"task_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	StudentID   *string   `db:"student_id" json:"student_id,omitempty"`
	File        string    `db:"file" json:"file"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	TaskID    string
	StudentID string
	Page      int
	PageSize  int
}
