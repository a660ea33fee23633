package announcement

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("announcement not found")
	ErrNotOwner = errors.New("not the announcement owner")
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncementsByTeacher optionally filters by course when
		// courseID is non-empty.
		QueryAnnouncementsByTeacher(ctx context.Context, teacherID, courseID string) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) error
	}

	Service interface {
		// Query returns the actor's announcements, newest first, optionally
		// filtered to one course, each decorated with the resolved course
		// (nil for school-wide).
		Query(ctx context.Context, actor user.User, courseID string) ([]Detail, error)
		Create(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error)
		Update(ctx context.Context, actor user.User, id string, ua UpdateAnnouncement) (Announcement, error)
		Delete(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo      Repository
		courseSvc course.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courseSvc course.Service) Service {
	return &service{
		repo:      repo,
		courseSvc: courseSvc,
	}
}

func (svc *service) Query(ctx context.Context, actor user.User, courseID string) ([]Detail, error) {
	anns, err := svc.repo.QueryAnnouncementsByTeacher(ctx, actor.ID, courseID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })

	// resolve each announcement's course once
	courses := make(map[string]*course.Course)
	details := make([]Detail, 0, len(anns))
	for _, ann := range anns {
		detail := Detail{Announcement: ann}
		if !ann.SchoolWide() {
			crs, ok := courses[ann.CourseID]
			if !ok {
				if c, err := svc.courseSvc.GetOwned(ctx, actor, ann.CourseID); err == nil {
					crs = &c
				}
				courses[ann.CourseID] = crs
			}
			detail.Course = crs
		}
		details = append(details, detail)
	}
	return details, nil
}

func (svc *service) Create(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error) {
	// a course-bound announcement must reference a course the actor owns
	if na.CourseID != "" {
		if _, err := svc.courseSvc.GetOwned(ctx, actor, na.CourseID); err != nil {
			return Announcement{}, err
		}
	}

	now := time.Now().UTC()
	ann := Announcement{
		TeacherID: actor.ID,
		CourseID:  na.CourseID,
		Title:     na.Title,
		Content:   na.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateAnnouncement(ctx, ann)
}

func (svc *service) getOwned(ctx context.Context, actor user.User, id string) (Announcement, error) {
	ann, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if ann.TeacherID != actor.ID {
		return Announcement{}, ErrNotOwner
	}
	return ann, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, ua UpdateAnnouncement) (Announcement, error) {
	ann, err := svc.getOwned(ctx, actor, id)
	if err != nil {
		return Announcement{}, err
	}
	if err = ua.Validate(ann); err != nil {
		return Announcement{}, err
	}
	if *ua.CourseID != "" {
		if _, err := svc.courseSvc.GetOwned(ctx, actor, *ua.CourseID); err != nil {
			return Announcement{}, err
		}
	}

	ann.Title = ua.Title
	ann.Content = ua.Content
	ann.CourseID = *ua.CourseID
	ann.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAnnouncement(ctx, ann)
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.getOwned(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteAnnouncement(ctx, id)
}
