package iep_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/iep"
	"github.com/trezcool/darasa/core/user"
	textgensvc "github.com/trezcool/darasa/services/textgen"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func setup(t *testing.T, textGen core.TextGenerator) (iep.Service, iep.Repository, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewIepRepository(db)
	return iep.NewService(repo, textGen), repo, dummydb.NewUserRepository(db)
}

func TestService_Drafts(t *testing.T) {
	svc, _, usrRepo := setup(t, textgensvc.NewDummyService("", nil))
	ctx := context.Background()

	stu := testutil.CreateUser(t, usrRepo, "Stu One", "stuone", "stu1@test.cd", "", user.StudentRoles, true)

	draft, err := svc.Create(ctx, iep.NewDraft{StudentID: stu.ID, PresentLevels: "Reads at 2nd grade level"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if draft.Status != iep.StatusDraft {
		t.Errorf("Create() status = %v, want %v", draft.Status, iep.StatusDraft)
	}
	if draft.Goals == nil || len(draft.Goals) != 0 {
		t.Errorf("Create() goals = %v, want empty list", draft.Goals)
	}

	t.Run("update patches only set fields", func(t *testing.T) {
		signed := iep.StatusSigned
		reviewDate := time.Date(2027, time.May, 15, 0, 0, 0, 0, time.UTC)
		upd, err := svc.Update(ctx, draft.ID, iep.UpdateDraft{
			Status:     &signed,
			Services:   []string{"speech therapy"},
			Timestamps: map[string]time.Time{"annual_review": reviewDate},
		})
		if err != nil {
			t.Fatalf("Update() failed: %v", err)
		}
		if upd.Status != iep.StatusSigned {
			t.Errorf("Update() status = %v, want %v", upd.Status, iep.StatusSigned)
		}
		if upd.PresentLevels != draft.PresentLevels {
			t.Errorf("Update() clobbered present levels: %q", upd.PresentLevels)
		}
		if !reflect.DeepEqual(upd.Services, []string{"speech therapy"}) {
			t.Errorf("Update() services = %v", upd.Services)
		}
		if !upd.Timestamps["annual_review"].Equal(reviewDate) {
			t.Errorf("Update() timestamps = %v", upd.Timestamps)
		}
	})

	t.Run("query by student", func(t *testing.T) {
		drafts, err := svc.QueryByStudent(ctx, stu.ID)
		if err != nil {
			t.Fatalf("QueryByStudent() failed: %v", err)
		}
		if len(drafts) != 1 || drafts[0].ID != draft.ID {
			t.Errorf("QueryByStudent() = %v", drafts)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "04d46550-65cc-48a4-9e1a-ad08c4d9b555")
		if errors.Cause(err) != iep.ErrDraftNotFound {
			t.Errorf("Get() error = %v, wantErr %v", err, iep.ErrDraftNotFound)
		}
	})
}

func TestService_GenerateGoal(t *testing.T) {
	goal := "By May 2027, given a 4th grade passage, the student will read 110 wpm with 95% accuracy."

	tests := []struct {
		name    string
		textGen *textgensvc.DummyService
		want    string
		wantErr error
	}{
		{name: "success", textGen: textgensvc.NewDummyService(goal, nil), want: goal},
		{name: "whitespace trimmed", textGen: textgensvc.NewDummyService("  "+goal+"\n", nil), want: goal},
		{name: "provider failure", textGen: textgensvc.NewDummyService("", core.ErrTextGenFailed), wantErr: core.ErrTextGenFailed},
		{name: "provider timeout", textGen: textgensvc.NewDummyService("", core.ErrTextGenTimeout), wantErr: core.ErrTextGenTimeout},
		{name: "empty response", textGen: textgensvc.NewDummyService("   ", nil), wantErr: core.ErrTextGenFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := setup(t, tt.textGen)

			got, err := svc.GenerateGoal(context.Background(), "Reads at 2nd grade level")
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Fatalf("GenerateGoal() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateGoal() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("GenerateGoal() = %q, want %q", got, tt.want)
			}
			if len(tt.textGen.Prompts) != 1 {
				t.Fatalf("GenerateGoal() sent %d prompts, want 1", len(tt.textGen.Prompts))
			}
		})
	}
}

func TestService_SaveGeneratedGoal(t *testing.T) {
	svc, repo, usrRepo := setup(t, textgensvc.NewDummyService("", nil))
	ctx := context.Background()

	stu := testutil.CreateUser(t, usrRepo, "Stu One", "stuone", "stu1@test.cd", "", user.StudentRoles, true)
	draft := testutil.CreateDraft(t, repo, stu.ID, "Reads at 2nd grade level", "g1")

	upd, err := svc.SaveGeneratedGoal(ctx, draft.ID, "goal text")
	if err != nil {
		t.Fatalf("SaveGeneratedGoal() failed: %v", err)
	}
	if want := []string{"g1", "goal text"}; !reflect.DeepEqual(upd.Goals, want) {
		t.Errorf("SaveGeneratedGoal() goals = %v, want %v", upd.Goals, want)
	}

	_, err = svc.SaveGeneratedGoal(ctx, "04d46550-65cc-48a4-9e1a-ad08c4d9b555", "goal text")
	if errors.Cause(err) != iep.ErrDraftNotFound {
		t.Errorf("SaveGeneratedGoal() error = %v, wantErr %v", err, iep.ErrDraftNotFound)
	}
}

func TestService_ServiceLogs(t *testing.T) {
	svc, _, usrRepo := setup(t, textgensvc.NewDummyService("", nil))
	ctx := context.Background()

	stu := testutil.CreateUser(t, usrRepo, "Stu One", "stuone", "stu1@test.cd", "", user.StudentRoles, true)
	date := time.Date(2027, time.March, 3, 0, 0, 0, 0, time.UTC)

	slog, err := svc.LogService(ctx, iep.NewServiceLog{
		StudentID:        stu.ID,
		ServiceType:      "speech therapy",
		MinutesScheduled: 30,
		MinutesDelivered: 25,
		Date:             date,
	})
	if err != nil {
		t.Fatalf("LogService() failed: %v", err)
	}
	if slog.MinutesDelivered != 25 {
		t.Errorf("LogService() = %+v", slog)
	}

	logs, err := svc.QueryServiceLogs(ctx, stu.ID)
	if err != nil {
		t.Fatalf("QueryServiceLogs() failed: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != slog.ID {
		t.Errorf("QueryServiceLogs() = %v", logs)
	}
}
