package iep

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrDraftNotFound = errors.New("draft not found")
)

// systemPrompt frames the generator as a special-education goal writer.
const systemPrompt = "You are an expert special education teacher. " +
	"Write clear, concise, SMART academic goals based on student's present levels."

type (
	Repository interface {
		CreateDraft(ctx context.Context, draft Draft) (Draft, error)
		GetDraftByID(ctx context.Context, id string) (Draft, error)
		QueryDraftsByStudent(ctx context.Context, studentID string) ([]Draft, error)
		UpdateDraft(ctx context.Context, draft Draft) (Draft, error)
		// AppendDraftGoal atomically appends a goal to the draft's goal list.
		AppendDraftGoal(ctx context.Context, id, goal string) (Draft, error)

		CreateServiceLog(ctx context.Context, slog ServiceLog) (ServiceLog, error)
		QueryServiceLogsByStudent(ctx context.Context, studentID string) ([]ServiceLog, error)
	}

	Service interface {
		Create(ctx context.Context, nd NewDraft) (Draft, error)
		Get(ctx context.Context, id string) (Draft, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Draft, error)
		Update(ctx context.Context, id string, ud UpdateDraft) (Draft, error)
		// GenerateGoal drafts one SMART goal from a present-levels narrative.
		// The provider call is fire-once with an explicit timeout; it never
		// mutates any draft.
		GenerateGoal(ctx context.Context, presentLevels string) (string, error)
		// SaveGeneratedGoal appends the goal to the draft's goal list.
		SaveGeneratedGoal(ctx context.Context, draftID, goal string) (Draft, error)

		LogService(ctx context.Context, ns NewServiceLog) (ServiceLog, error)
		QueryServiceLogs(ctx context.Context, studentID string) ([]ServiceLog, error)
	}

	service struct {
		repo    Repository
		textGen core.TextGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, textGen core.TextGenerator) Service {
	return &service{
		repo:    repo,
		textGen: textGen,
	}
}

func (svc *service) Create(ctx context.Context, nd NewDraft) (Draft, error) {
	now := time.Now().UTC()
	draft := Draft{
		StudentID:     nd.StudentID,
		Status:        StatusDraft,
		PresentLevels: nd.PresentLevels,
		Goals:         []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateDraft(ctx, draft)
}

func (svc *service) Get(ctx context.Context, id string) (Draft, error) {
	return svc.repo.GetDraftByID(ctx, id)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID string) ([]Draft, error) {
	return svc.repo.QueryDraftsByStudent(ctx, studentID)
}

func (svc *service) Update(ctx context.Context, id string, ud UpdateDraft) (Draft, error) {
	draft, err := svc.repo.GetDraftByID(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	if ud.Status != nil {
		draft.Status = *ud.Status
	}
	if ud.PresentLevels != nil {
		draft.PresentLevels = *ud.PresentLevels
	}
	if ud.Services != nil {
		draft.Services = ud.Services
	}
	if ud.Accommodations != nil {
		draft.Accommodations = ud.Accommodations
	}
	if ud.Timestamps != nil {
		draft.Timestamps = ud.Timestamps
	}
	draft.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDraft(ctx, draft)
}

func (svc *service) GenerateGoal(ctx context.Context, presentLevels string) (string, error) {
	prompt := fmt.Sprintf("Student's present levels: %q. Write one SMART academic goal.", presentLevels)
	goal, err := svc.textGen.GenerateText(ctx, systemPrompt, prompt)
	if err != nil {
		return "", err
	}
	if goal = core.CleanString(goal); goal == "" {
		return "", core.ErrTextGenFailed
	}
	return goal, nil
}

func (svc *service) SaveGeneratedGoal(ctx context.Context, draftID, goal string) (Draft, error) {
	return svc.repo.AppendDraftGoal(ctx, draftID, goal)
}

func (svc *service) LogService(ctx context.Context, ns NewServiceLog) (ServiceLog, error) {
	slog := ServiceLog{
		StudentID:        ns.StudentID,
		ServiceType:      ns.ServiceType,
		MinutesScheduled: ns.MinutesScheduled,
		MinutesDelivered: ns.MinutesDelivered,
		Date:             ns.Date,
		CreatedAt:        time.Now().UTC(),
	}
	return svc.repo.CreateServiceLog(ctx, slog)
}

func (svc *service) QueryServiceLogs(ctx context.Context, studentID string) ([]ServiceLog, error) {
	return svc.repo.QueryServiceLogsByStudent(ctx, studentID)
}
