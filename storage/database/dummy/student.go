package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateGrade(_ context.Context, grd student.Grade) (student.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	grd.ID = uuid.New().String()
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *studentRepository) QueryGradesByStudent(_ context.Context, studentID string) ([]student.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]student.Grade, 0)
	for _, grd := range repo.db.grades {
		if grd.StudentID == studentID {
			grades = append(grades, *grd)
		}
	}
	return grades, nil
}

func (repo *studentRepository) CreateAttendance(_ context.Context, att student.Attendance) (student.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	att.ID = uuid.New().String()
	repo.db.attendance[att.ID] = &att
	return att, nil
}

func (repo *studentRepository) QueryAttendanceByStudent(_ context.Context, studentID string) ([]student.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	attendance := make([]student.Attendance, 0)
	for _, att := range repo.db.attendance {
		if att.StudentID == studentID {
			attendance = append(attendance, *att)
		}
	}
	return attendance, nil
}
