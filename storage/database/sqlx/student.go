package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/student"
)

type gradeRow struct {
	ID           string    `db:"id"`
	StudentID    string    `db:"student_id"`
	AssignmentID string    `db:"assignment_id"`
	CourseID     string    `db:"course_id"`
	Score        float64   `db:"score"`
	CreatedAt    null.Time `db:"created_at"`
}

func (row gradeRow) unpack() student.Grade {
	return student.Grade{
		ID:           row.ID,
		StudentID:    row.StudentID,
		AssignmentID: row.AssignmentID,
		CourseID:     row.CourseID,
		Score:        row.Score,
		CreatedAt:    row.CreatedAt.Time,
	}
}

type attendanceRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	Date      time.Time `db:"date"`
	Present   bool      `db:"present"`
	CreatedAt null.Time `db:"created_at"`
}

func (row attendanceRow) unpack() student.Attendance {
	return student.Attendance{
		ID:        row.ID,
		StudentID: row.StudentID,
		CourseID:  row.CourseID,
		Date:      row.Date,
		Present:   row.Present,
		CreatedAt: row.CreatedAt.Time,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateGrade(ctx context.Context, grd student.Grade) (student.Grade, error) {
	grd.ID = uuid.New().String()
	row := gradeRow{
		ID:           grd.ID,
		StudentID:    grd.StudentID,
		AssignmentID: grd.AssignmentID,
		CourseID:     grd.CourseID,
		Score:        grd.Score,
		CreatedAt:    null.TimeFrom(grd.CreatedAt.UTC()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO grade (id, student_id, assignment_id, course_id, score, created_at)
		VALUES (:id, :student_id, :assignment_id, :course_id, :score, :created_at)`,
		row,
	)
	if err != nil {
		return student.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return grd, nil
}

func (repo *studentRepository) QueryGradesByStudent(ctx context.Context, studentID string) ([]student.Grade, error) {
	var rows []gradeRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grade WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]student.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.unpack())
	}
	return grades, nil
}

func (repo *studentRepository) CreateAttendance(ctx context.Context, att student.Attendance) (student.Attendance, error) {
	att.ID = uuid.New().String()
	row := attendanceRow{
		ID:        att.ID,
		StudentID: att.StudentID,
		CourseID:  att.CourseID,
		Date:      att.Date.UTC(),
		Present:   att.Present,
		CreatedAt: null.TimeFrom(att.CreatedAt.UTC()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance (id, student_id, course_id, date, present, created_at)
		VALUES (:id, :student_id, :course_id, :date, :present, :created_at)`,
		row,
	)
	if err != nil {
		return student.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo *studentRepository) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]student.Attendance, error) {
	var rows []attendanceRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM attendance WHERE student_id = $1 ORDER BY date DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	attendance := make([]student.Attendance, 0, len(rows))
	for _, row := range rows {
		attendance = append(attendance, row.unpack())
	}
	return attendance, nil
}
