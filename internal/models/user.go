package models

import "time"

// UserType enumerates the account roles.
type UserType string

const (
	TypeAdmin   UserType = "ADMIN"
	TypeStudent UserType = "STUDENT"
	TypeTeacher UserType = "TEACHER"
)

// Valid reports whether the user type is one of the known roles.
func (t UserType) Valid() bool {
	switch t {
	case TypeAdmin, TypeStudent, TypeTeacher:
		return true
	}
	return false
}

// User represents an account stored in the users table. PersonName is the
// display name shown on dashboards and matched against Course.Professor for
// teacher accounts.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	UserType     UserType  `db:"user_type" json:"user_type"`
	PersonName   string    `db:"person_name" json:"person_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	UserType *UserType
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
