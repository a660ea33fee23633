package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ann.ID = uuid.New().String()
	repo.db.table[ann.ID] = &ann
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ann, ok := repo.db.table[id]; ok {
		return *ann, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncementsByTeacher(_ context.Context, teacherID, courseID string) ([]announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	anns := make([]announcement.Announcement, 0)
	for _, ann := range repo.db.table {
		if ann.TeacherID != teacherID {
			continue
		}
		if courseID != "" && ann.CourseID != courseID {
			continue
		}
		anns = append(anns, *ann)
	}
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[ann.ID]
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	orig.Title = ann.Title
	orig.Content = ann.Content
	orig.CourseID = ann.CourseID
	orig.UpdatedAt = ann.UpdatedAt
	return *orig, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return announcement.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
