package models

import "time"

// Course represents an offered course. Professor is a free-text display name,
// not a user reference; teacher course listings match it against the teacher's
// PersonName.
type Course struct {
	ID               string    `db:"id" json:"id"`
	CourseName       string    `db:"course_name" json:"course_name"`
	CourseNumber     string    `db:"course_number" json:"course_number"`
	Professor        string    `db:"professor" json:"professor"`
	Capacity         int       `db:"capacity" json:"capacity"`
	EnrolledStudents int       `db:"enrolled_students" json:"enrolled_students"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CourseSummary is the registered-course projection for student listings.
type CourseSummary struct {
	ID               string `db:"id" json:"id"`
	CourseName       string `db:"course_name" json:"course_name"`
	CourseNumber     string `db:"course_number" json:"course_number"`
	Professor        string `db:"professor" json:"professor"`
	EnrolledStudents int    `db:"enrolled_students" json:"enrolled_students"`
}

// CourseCatalog pairs the full course list with the ids the requesting user
// is enrolled in, for UI highlighting.
type CourseCatalog struct {
	Courses           []Course `json:"courses"`
	EnrolledCourseIDs []string `json:"enrolled_course_ids"`
}
