package student

import (
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type Grade struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	AssignmentID string    `json:"assignment_id"`
	CourseID     string    `json:"course_id"`
	Score        float64   `json:"score"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

type Attendance struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	Date      time.Time `json:"date"`
	Present   bool      `json:"present"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Detail is a student decorated with the requesting teacher's view of them:
// the subset of the teacher's courses they are enrolled in, plus their grade
// and attendance rows restricted to those courses.
type Detail struct {
	user.User
	EnrolledCourses []course.Course `json:"enrolled_courses"`
	Grades          []Grade         `json:"grades"`
	Attendance      []Attendance    `json:"attendance"`
}

// NewGrade contains information needed to record a Grade.
type NewGrade struct {
	StudentID    string  `json:"student_id" validate:"required"`
	AssignmentID string  `json:"assignment_id" validate:"required"`
	CourseID     string  `json:"course_id" validate:"required"`
	Score        float64 `json:"score" validate:"gte=0"`
}

func (ng *NewGrade) Validate() error { return core.Validate.Struct(ng) }

// NewAttendance contains information needed to record an Attendance.
type NewAttendance struct {
	StudentID string    `json:"student_id" validate:"required"`
	CourseID  string    `json:"course_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Present   bool      `json:"present"`
}

func (na *NewAttendance) Validate() error { return core.Validate.Struct(na) }
