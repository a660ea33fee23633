package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/course"
)

type courseRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description null.String    `db:"description"`
	TeacherID   string         `db:"teacher_id"`
	Students    pq.StringArray `db:"students"`
	CreatedAt   null.Time      `db:"created_at"`
	UpdatedAt   null.Time      `db:"updated_at"`
}

func (row courseRow) unpack() course.Course {
	return course.Course{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		TeacherID:   row.TeacherID,
		StudentIDs:  row.Students,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func packCourse(crs course.Course) courseRow {
	students := crs.StudentIDs
	if students == nil {
		students = []string{}
	}
	return courseRow{
		ID:          crs.ID,
		Name:        crs.Name,
		Description: null.NewString(crs.Description, crs.Description != ""),
		TeacherID:   crs.TeacherID,
		Students:    students,
		CreatedAt:   null.NewTime(crs.CreatedAt.UTC(), !crs.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(crs.UpdatedAt.UTC(), !crs.UpdatedAt.IsZero()),
	}
}

type assignmentRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	DueDate     time.Time   `db:"due_date"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (row assignmentRow) unpack() course.Assignment {
	return course.Assignment{
		ID:          row.ID,
		CourseID:    row.CourseID,
		Title:       row.Title,
		Description: row.Description.String,
		DueDate:     row.DueDate,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func packAssignment(asg course.Assignment) assignmentRow {
	return assignmentRow{
		ID:          asg.ID,
		CourseID:    asg.CourseID,
		Title:       asg.Title,
		Description: null.NewString(asg.Description, asg.Description != ""),
		DueDate:     asg.DueDate.UTC(),
		CreatedAt:   null.NewTime(asg.CreatedAt.UTC(), !asg.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(asg.UpdatedAt.UTC(), !asg.UpdatedAt.IsZero()),
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, name, description, teacher_id, students, created_at, updated_at)
		VALUES (:id, :name, :description, :teacher_id, :students, :created_at, :updated_at)`,
		packCourse(crs),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, course.ErrNotFound, "getting course")
	}
	return row.unpack(), nil
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course WHERE teacher_id = $1 ORDER BY created_at`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unpack())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE course SET name = :name, description = :description, updated_at = :updated_at
		WHERE id = :id`,
		packCourse(crs),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

// SetCourseStudents locks the course row while the merged set is computed so
// concurrent enrollment mutations serialize instead of clobbering each other.
func (repo *courseRepository) SetCourseStudents(ctx context.Context, id string, merge func(current []string) []string) (course.Course, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "beginning enrollment update")
	}
	defer func() { _ = tx.Rollback() }()

	var row courseRow
	if err = tx.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1 FOR UPDATE`, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, course.ErrNotFound, "getting course for update")
	}

	row.Students = merge(row.Students)
	if row.Students == nil {
		row.Students = []string{}
	}
	row.UpdatedAt = null.TimeFrom(time.Now().UTC())

	_, err = tx.NamedExecContext(ctx, `UPDATE course SET students = :students, updated_at = :updated_at WHERE id = :id`, row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating enrollment")
	}
	if err = tx.Commit(); err != nil {
		return course.Course{}, errors.Wrap(err, "committing enrollment update")
	}
	return row.unpack(), nil
}

func (repo *courseRepository) CreateAssignment(ctx context.Context, asg course.Assignment) (course.Assignment, error) {
	asg.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO assignment (id, course_id, title, description, due_date, created_at, updated_at)
		VALUES (:id, :course_id, :title, :description, :due_date, :created_at, :updated_at)`,
		packAssignment(asg),
	)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo *courseRepository) GetAssignmentByID(ctx context.Context, id string) (course.Assignment, error) {
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		return course.Assignment{}, repo.trapNoRowsErr(err, course.ErrAssignmentNotFound, "getting assignment")
	}
	return row.unpack(), nil
}

func (repo *courseRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]course.Assignment, error) {
	var rows []assignmentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM assignment WHERE course_id = $1 ORDER BY due_date`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]course.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.unpack())
	}
	return assignments, nil
}

func (repo *courseRepository) UpdateAssignment(ctx context.Context, asg course.Assignment) (course.Assignment, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE assignment SET title = :title, description = :description, due_date = :due_date, updated_at = :updated_at
		WHERE id = :id`,
		packAssignment(asg),
	)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Assignment{}, course.ErrAssignmentNotFound
	}
	return asg, nil
}

// DeleteAssignment removes the assignment and its grade rows in one
// transaction so no orphaned grades survive.
func (repo *courseRepository) DeleteAssignment(ctx context.Context, id string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning assignment delete")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM grade WHERE assignment_id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting assignment grades")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrAssignmentNotFound
	}
	return errors.Wrap(tx.Commit(), "committing assignment delete")
}
