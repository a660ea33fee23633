package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/iep"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	name, teacherID string,
	studentIDs ...string,
) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs := course.Course{
		Name:       name,
		TeacherID:  teacherID,
		StudentIDs: studentIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if crs.StudentIDs == nil {
		crs.StudentIDs = []string{}
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateAssignment(
	t *testing.T,
	repo course.Repository,
	courseID, title string,
	dueDate time.Time,
) course.Assignment {
	t.Helper()

	now := time.Now().UTC()
	asg := course.Assignment{
		CourseID:  courseID,
		Title:     title,
		DueDate:   dueDate.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	asg, err := repo.CreateAssignment(context.Background(), asg)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateAnnouncement(
	t *testing.T,
	repo announcement.Repository,
	teacherID, courseID, title, content string,
	createdAt ...time.Time,
) announcement.Announcement {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	ann := announcement.Announcement{
		TeacherID: teacherID,
		CourseID:  courseID,
		Title:     title,
		Content:   content,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	ann, err := repo.CreateAnnouncement(context.Background(), ann)
	if err != nil {
		t.Fatalf("CreateAnnouncement() failed: %v", err)
	}
	return ann
}

func CreateDraft(
	t *testing.T,
	repo iep.Repository,
	studentID, presentLevels string,
	goals ...string,
) iep.Draft {
	t.Helper()

	now := time.Now().UTC()
	draft := iep.Draft{
		StudentID:     studentID,
		Status:        iep.StatusDraft,
		PresentLevels: presentLevels,
		Goals:         goals,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if draft.Goals == nil {
		draft.Goals = []string{}
	}
	draft, err := repo.CreateDraft(context.Background(), draft)
	if err != nil {
		t.Fatalf("CreateDraft() failed: %v", err)
	}
	return draft
}
