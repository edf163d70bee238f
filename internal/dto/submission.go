package dto

import "io"

// CreateSubmissionRequest is assembled from the multipart form of POST /submissions.
type CreateSubmissionRequest struct {
	TaskID      string `form:"taskId" validate:"required"`
	StudentName string `form:"studentName" validate:"required,max=200"`
	StudentID   string `form:"studentId" validate:"omitempty"`

	FileName    string    `form:"-" validate:"required"`
	ContentType string    `form:"-" validate:"-"`
	Size        int64     `form:"-" validate:"-"`
	File        io.Reader `form:"-" validate:"-"`
}

// UpdateSubmissionRequest carries a partial update of submitter fields.
type UpdateSubmissionRequest struct {
	StudentName *string `json:"studentName" validate:"omitempty,min=1,max=200"`
	StudentID   *string `json:"studentId"`
}

// UploadedFile describes a stored file and how to fetch it.
type UploadedFile struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
}
