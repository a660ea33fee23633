package course

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrNotOwner           = errors.New("not the course teacher")

	errUnknownStudents = "unknown student ids"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// SetCourseStudents persists the merged student set computed by merge
		// from the current set, atomically with respect to concurrent
		// enrollment mutations on the same course.
		SetCourseStudents(ctx context.Context, id string, merge func(current []string) []string) (Course, error)

		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		// DeleteAssignment hard-deletes the assignment and its grade rows.
		DeleteAssignment(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, actor user.User, nc NewCourse) (Course, error)
		QueryOwned(ctx context.Context, actor user.User) ([]Course, error)
		// GetOwned returns the course iff the actor is its teacher;
		// ErrNotFound / ErrNotOwner otherwise. It is the ownership guard
		// primitive all course-scoped operations go through.
		GetOwned(ctx context.Context, actor user.User, id string) (Course, error)
		GetDetail(ctx context.Context, actor user.User, id string) (Detail, error)
		Update(ctx context.Context, actor user.User, id string, uc UpdateCourse) (Course, error)
		AddStudents(ctx context.Context, actor user.User, id string, studentIDs []string) (Course, error)
		RemoveStudents(ctx context.Context, actor user.User, id string, studentIDs []string) (Course, error)

		QueryAssignments(ctx context.Context, actor user.User, courseID string) ([]Assignment, error)
		CreateAssignment(ctx context.Context, actor user.User, courseID string, na NewAssignment) (Assignment, error)
		// GetOwnedAssignment resolves the assignment's parent course and
		// applies the course ownership guard.
		GetOwnedAssignment(ctx context.Context, actor user.User, id string) (Assignment, error)
		UpdateAssignment(ctx context.Context, actor user.User, id string, ua UpdateAssignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
	}
}

func (svc *service) Create(ctx context.Context, actor user.User, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Name:        nc.Name,
		Description: nc.Description,
		TeacherID:   actor.ID,
		StudentIDs:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) QueryOwned(ctx context.Context, actor user.User) ([]Course, error) {
	return svc.repo.QueryCoursesByTeacher(ctx, actor.ID)
}

func (svc *service) GetOwned(ctx context.Context, actor user.User, id string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if !crs.OwnedBy(actor) {
		return Course{}, ErrNotOwner
	}
	return crs, nil
}

func (svc *service) GetDetail(ctx context.Context, actor user.User, id string) (Detail, error) {
	crs, err := svc.GetOwned(ctx, actor, id)
	if err != nil {
		return Detail{}, err
	}

	students, err := svc.usrRepo.GetUsersByID(ctx, crs.StudentIDs)
	if err != nil {
		return Detail{}, errors.Wrap(err, "resolving enrolled students")
	}
	return Detail{Course: crs, Students: students}, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.GetOwned(ctx, actor, id)
	if err != nil {
		return Course{}, err
	}
	crs.Name = uc.Name
	crs.Description = uc.Description
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) AddStudents(ctx context.Context, actor user.User, id string, studentIDs []string) (Course, error) {
	if _, err := svc.GetOwned(ctx, actor, id); err != nil {
		return Course{}, err
	}

	// a course's student set may only hold valid user references
	known, err := svc.usrRepo.GetUsersByID(ctx, studentIDs)
	if err != nil {
		return Course{}, errors.Wrap(err, "resolving students")
	}
	if len(known) != len(uniq(studentIDs)) {
		return Course{}, core.NewValidationError(
			errors.New(errUnknownStudents),
			core.FieldError{Field: "student_ids", Error: unknownIDsError(studentIDs, known)},
		)
	}

	return svc.repo.SetCourseStudents(ctx, id, func(current []string) []string {
		return union(current, studentIDs)
	})
}

func (svc *service) RemoveStudents(ctx context.Context, actor user.User, id string, studentIDs []string) (Course, error) {
	if _, err := svc.GetOwned(ctx, actor, id); err != nil {
		return Course{}, err
	}
	// removing a non-member is a no-op, not an error
	return svc.repo.SetCourseStudents(ctx, id, func(current []string) []string {
		return difference(current, studentIDs)
	})
}

func (svc *service) QueryAssignments(ctx context.Context, actor user.User, courseID string) ([]Assignment, error) {
	if _, err := svc.GetOwned(ctx, actor, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignmentsByCourse(ctx, courseID)
}

func (svc *service) CreateAssignment(ctx context.Context, actor user.User, courseID string, na NewAssignment) (Assignment, error) {
	if _, err := svc.GetOwned(ctx, actor, courseID); err != nil {
		return Assignment{}, err
	}

	now := time.Now().UTC()
	asg := Assignment{
		CourseID:    courseID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *service) GetOwnedAssignment(ctx context.Context, actor user.User, id string) (Assignment, error) {
	asg, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if _, err = svc.GetOwned(ctx, actor, asg.CourseID); err != nil {
		return Assignment{}, err
	}
	return asg, nil
}

func (svc *service) UpdateAssignment(ctx context.Context, actor user.User, id string, ua UpdateAssignment) (Assignment, error) {
	asg, err := svc.GetOwnedAssignment(ctx, actor, id)
	if err != nil {
		return Assignment{}, err
	}
	asg.Title = ua.Title
	asg.Description = ua.Description
	asg.DueDate = *ua.DueDate
	asg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, asg)
}

func (svc *service) DeleteAssignment(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.GetOwnedAssignment(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(ctx, id)
}

// set helpers; enrollment is order-irrelevant

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			res = append(res, id)
		}
	}
	return res
}

func union(current, add []string) []string {
	return uniq(append(append(make([]string, 0, len(current)+len(add)), current...), add...))
}

func difference(current, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, id := range remove {
		drop[id] = struct{}{}
	}
	res := make([]string, 0, len(current))
	for _, id := range current {
		if _, ok := drop[id]; !ok {
			res = append(res, id)
		}
	}
	return res
}

func unknownIDsError(requested []string, known []user.User) string {
	have := make(map[string]struct{}, len(known))
	for _, u := range known {
		have[u.ID] = struct{}{}
	}
	var missing []string
	for _, id := range uniq(requested) {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return errUnknownStudents + ": " + strings.Join(missing, ", ")
}
