package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *courseTable
	// grade rows live in the student table; assignment deletion cascades
	// into them
	studentDB *studentTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, studentDB: db.student}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCoursesByTeacher(_ context.Context, teacherID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.db.courses {
		if crs.TeacherID == teacherID {
			courses = append(courses, *crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	orig.Name = crs.Name
	orig.Description = crs.Description
	orig.UpdatedAt = crs.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) SetCourseStudents(_ context.Context, id string, merge func(current []string) []string) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs.StudentIDs = merge(crs.StudentIDs)
	return *crs, nil
}

func (repo *courseRepository) CreateAssignment(_ context.Context, asg course.Assignment) (course.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg.ID = uuid.New().String()
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *courseRepository) GetAssignmentByID(_ context.Context, id string) (course.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asg, ok := repo.db.assignments[id]; ok {
		return *asg, nil
	}
	return course.Assignment{}, course.ErrAssignmentNotFound
}

func (repo *courseRepository) QueryAssignmentsByCourse(_ context.Context, courseID string) ([]course.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]course.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.CourseID == courseID {
			assignments = append(assignments, *asg)
		}
	}
	return assignments, nil
}

func (repo *courseRepository) UpdateAssignment(_ context.Context, asg course.Assignment) (course.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.assignments[asg.ID]
	if !ok {
		return course.Assignment{}, course.ErrAssignmentNotFound
	}
	orig.Title = asg.Title
	orig.Description = asg.Description
	orig.DueDate = asg.DueDate
	orig.UpdatedAt = asg.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) DeleteAssignment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return course.ErrAssignmentNotFound
	}
	delete(repo.db.assignments, id)

	repo.studentDB.Lock()
	defer repo.studentDB.Unlock()
	for gid, grd := range repo.studentDB.grades {
		if grd.AssignmentID == id {
			delete(repo.studentDB.grades, gid)
		}
	}
	return nil
}
