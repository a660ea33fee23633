package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/iep"
)

type iepRepository struct {
	db *iepTable
}

var _ iep.Repository = (*iepRepository)(nil) // interface compliance check

func NewIepRepository(db *DB) iep.Repository {
	return &iepRepository{db: db.iep}
}

func (repo *iepRepository) CreateDraft(_ context.Context, draft iep.Draft) (iep.Draft, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	draft.ID = uuid.New().String()
	repo.db.drafts[draft.ID] = &draft
	return draft, nil
}

func (repo *iepRepository) GetDraftByID(_ context.Context, id string) (iep.Draft, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if draft, ok := repo.db.drafts[id]; ok {
		return *draft, nil
	}
	return iep.Draft{}, iep.ErrDraftNotFound
}

func (repo *iepRepository) QueryDraftsByStudent(_ context.Context, studentID string) ([]iep.Draft, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	drafts := make([]iep.Draft, 0)
	for _, draft := range repo.db.drafts {
		if draft.StudentID == studentID {
			drafts = append(drafts, *draft)
		}
	}
	return drafts, nil
}

func (repo *iepRepository) UpdateDraft(_ context.Context, draft iep.Draft) (iep.Draft, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.drafts[draft.ID]
	if !ok {
		return iep.Draft{}, iep.ErrDraftNotFound
	}
	orig.Status = draft.Status
	orig.PresentLevels = draft.PresentLevels
	orig.Services = draft.Services
	orig.Accommodations = draft.Accommodations
	orig.Timestamps = draft.Timestamps
	orig.UpdatedAt = draft.UpdatedAt
	return *orig, nil
}

func (repo *iepRepository) AppendDraftGoal(_ context.Context, id, goal string) (iep.Draft, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	draft, ok := repo.db.drafts[id]
	if !ok {
		return iep.Draft{}, iep.ErrDraftNotFound
	}
	draft.Goals = append(draft.Goals, goal)
	draft.UpdatedAt = time.Now().UTC()
	return *draft, nil
}

func (repo *iepRepository) CreateServiceLog(_ context.Context, slog iep.ServiceLog) (iep.ServiceLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	slog.ID = uuid.New().String()
	repo.db.serviceLogs[slog.ID] = &slog
	return slog, nil
}

func (repo *iepRepository) QueryServiceLogsByStudent(_ context.Context, studentID string) ([]iep.ServiceLog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	logs := make([]iep.ServiceLog, 0)
	for _, slog := range repo.db.serviceLogs {
		if slog.StudentID == studentID {
			logs = append(logs, *slog)
		}
	}
	return logs, nil
}
