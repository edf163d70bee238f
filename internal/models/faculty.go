package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Qualification is the academic record embedded in a faculty row.
type Qualification struct {
	Degree         string `json:"degree"`
	Institute      string `json:"institute"`
	PassingYear    int    `json:"passing_year,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (q Qualification) Value() (driver.Value, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (q *Qualification) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*q = Qualification{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported qualification type %T", src)
	}
	if len(raw) == 0 {
		*q = Qualification{}
		return nil
	}
	return json.Unmarshal(raw, q)
}

// Faculty is a university staff member who can supervise internships.
type Faculty struct {
	ID            string        `db:"id" json:"id"`
	UniversityID  string        `db:"university_id" json:"university_id"`
	DepartmentID  string        `db:"department_id" json:"department_id"`
	FirstName     string        `db:"first_name" json:"first_name"`
	LastName      string        `db:"last_name" json:"last_name"`
	Email         string        `db:"email" json:"email"`
	CNIC          string        `db:"cnic" json:"cnic"`
	Phone         string        `db:"phone" json:"phone"`
	Designation   string        `db:"designation" json:"designation"`
	Qualification Qualification `db:"qualification" json:"qualification"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// FacultyFilter narrows faculty listings.
type FacultyFilter struct {
	UniversityID string
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
}
