package student

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotEnrolled = errors.New("student is not enrolled in this course")

	errAssignmentCourseMismatch = "assignment does not belong to this course"
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		QueryGradesByStudent(ctx context.Context, studentID string) ([]Grade, error)
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		QueryAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error)
	}

	Service interface {
		// Query returns every student enrolled in any of the actor's courses,
		// each decorated as in GetDetail.
		Query(ctx context.Context, actor user.User) ([]Detail, error)
		// GetDetail returns the teacher-scoped view of a student. A student
		// enrolled in none of the actor's courses yields empty lists, not an
		// error.
		GetDetail(ctx context.Context, actor user.User, studentID string) (Detail, error)
		RecordGrade(ctx context.Context, actor user.User, ng NewGrade) (Grade, error)
		RecordAttendance(ctx context.Context, actor user.User, na NewAttendance) (Attendance, error)
	}

	service struct {
		repo      Repository
		courseSvc course.Service
		usrRepo   user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courseSvc course.Service, usrRepo user.Repository) Service {
	return &service{
		repo:      repo,
		courseSvc: courseSvc,
		usrRepo:   usrRepo,
	}
}

func (svc *service) Query(ctx context.Context, actor user.User) ([]Detail, error) {
	teacherCourses, err := svc.courseSvc.QueryOwned(ctx, actor)
	if err != nil {
		return nil, err
	}

	// unique student IDs across all of the teacher's courses
	var studentIDs []string
	seen := make(map[string]struct{})
	for _, crs := range teacherCourses {
		for _, id := range crs.StudentIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				studentIDs = append(studentIDs, id)
			}
		}
	}

	students, err := svc.usrRepo.GetUsersByID(ctx, studentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "resolving students")
	}

	details := make([]Detail, 0, len(students))
	for _, stu := range students {
		detail, err := svc.decorate(ctx, stu, teacherCourses)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (svc *service) GetDetail(ctx context.Context, actor user.User, studentID string) (Detail, error) {
	stu, err := svc.usrRepo.GetUserByID(ctx, studentID)
	if err != nil {
		return Detail{}, err
	}
	teacherCourses, err := svc.courseSvc.QueryOwned(ctx, actor)
	if err != nil {
		return Detail{}, err
	}
	return svc.decorate(ctx, stu, teacherCourses)
}

// decorate assembles the teacher-scoped view of a student. Grade and
// attendance rows are restricted to the resolved enrolled-course set so one
// teacher never sees rows belonging to another teacher's courses.
func (svc *service) decorate(ctx context.Context, stu user.User, teacherCourses []course.Course) (Detail, error) {
	enrolled := make([]course.Course, 0)
	courseIDs := make(map[string]struct{})
	for _, crs := range teacherCourses {
		if crs.HasStudent(stu.ID) {
			enrolled = append(enrolled, crs)
			courseIDs[crs.ID] = struct{}{}
		}
	}

	allGrades, err := svc.repo.QueryGradesByStudent(ctx, stu.ID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying grades")
	}
	grades := make([]Grade, 0, len(allGrades))
	for _, grd := range allGrades {
		if _, ok := courseIDs[grd.CourseID]; ok {
			grades = append(grades, grd)
		}
	}
	sort.SliceStable(grades, func(i, j int) bool { return grades[i].CreatedAt.After(grades[j].CreatedAt) })

	allAtt, err := svc.repo.QueryAttendanceByStudent(ctx, stu.ID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying attendance")
	}
	attendance := make([]Attendance, 0, len(allAtt))
	for _, att := range allAtt {
		if _, ok := courseIDs[att.CourseID]; ok {
			attendance = append(attendance, att)
		}
	}
	sort.SliceStable(attendance, func(i, j int) bool { return attendance[i].Date.After(attendance[j].Date) })

	return Detail{
		User:            stu,
		EnrolledCourses: enrolled,
		Grades:          grades,
		Attendance:      attendance,
	}, nil
}

func (svc *service) RecordGrade(ctx context.Context, actor user.User, ng NewGrade) (Grade, error) {
	crs, err := svc.courseSvc.GetOwned(ctx, actor, ng.CourseID)
	if err != nil {
		return Grade{}, err
	}
	if !crs.HasStudent(ng.StudentID) {
		return Grade{}, ErrNotEnrolled
	}
	asg, err := svc.courseSvc.GetOwnedAssignment(ctx, actor, ng.AssignmentID)
	if err != nil {
		return Grade{}, err
	}
	if asg.CourseID != ng.CourseID {
		return Grade{}, core.NewValidationError(
			errors.New(errAssignmentCourseMismatch),
			core.FieldError{Field: "assignment_id", Error: errAssignmentCourseMismatch},
		)
	}

	grd := Grade{
		StudentID:    ng.StudentID,
		AssignmentID: ng.AssignmentID,
		CourseID:     ng.CourseID,
		Score:        ng.Score,
		CreatedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateGrade(ctx, grd)
}

func (svc *service) RecordAttendance(ctx context.Context, actor user.User, na NewAttendance) (Attendance, error) {
	crs, err := svc.courseSvc.GetOwned(ctx, actor, na.CourseID)
	if err != nil {
		return Attendance{}, err
	}
	if !crs.HasStudent(na.StudentID) {
		return Attendance{}, ErrNotEnrolled
	}

	att := Attendance{
		StudentID: na.StudentID,
		CourseID:  na.CourseID,
		Date:      na.Date,
		Present:   na.Present,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateAttendance(ctx, att)
}
