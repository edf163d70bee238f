package models

import "time"

// University is the root tenant every other record points at.
type University struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	Address   string    `db:"address" json:"address"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UniversityFilter narrows university listings.
type UniversityFilter struct {
	Search   string
	Page     int
	PageSize int
}
