package models

import "time"

// Department belongs to a university and carries the HOD, coordinator and
// focal person contacts. Email and CNIC identify the HOD and are unique.
type Department struct {
	ID               string    `db:"id" json:"id"`
	UniversityID     string    `db:"university_id" json:"university_id"`
	Name             string    `db:"name" json:"name"`
	Category         string    `db:"category" json:"category"`
	HODName          string    `db:"hod_name" json:"hod_name"`
	Email            string    `db:"email" json:"email"`
	CNIC             string    `db:"cnic" json:"cnic"`
	CoordinatorName  string    `db:"coordinator_name" json:"coordinator_name"`
	CoordinatorEmail string    `db:"coordinator_email" json:"coordinator_email"`
	FocalPersonName  string    `db:"focal_person_name" json:"focal_person_name"`
	FocalPersonEmail string    `db:"focal_person_email" json:"focal_person_email"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentFilter narrows department listings.
type DepartmentFilter struct {
	UniversityID string
	Search       string
	Page         int
	PageSize     int
}
