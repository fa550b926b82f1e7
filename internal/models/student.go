package models

// Student is the per-enrollment gradable record, distinct from the User
// account of type STUDENT. Its lifecycle is decoupled from the enrollment:
// dropping a course does not delete it.
type Student struct {
	ID           string `db:"id" json:"id"`
	StudentName  string `db:"student_name" json:"student_name"`
	Grade        string `db:"grade" json:"grade"`
	EnrollmentID string `db:"enrollment_id" json:"enrollment_id"`
}

// RosterEntry is one row of a course roster view.
type RosterEntry struct {
	StudentID   string `db:"id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	Grade       string `db:"grade" json:"grade"`
}

// Roster is the full roster view for one course.
type Roster struct {
	Course   Course        `json:"course"`
	Students []RosterEntry `json:"students"`
}
