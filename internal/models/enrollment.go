package models

import "time"

// Enrollment links a user to a course they registered for. Created on
// registration, deleted on drop. There is no uniqueness constraint over
// (user_id, course_id); duplicates each hold a capacity slot.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EnrollmentFilter provides filters for admin enrollment listings.
type EnrollmentFilter struct {
	UserID   string
	CourseID string
	Page     int
	PageSize int
}
