package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/iep"
)

// timestampsMap maps the draft's named dates to a jsonb column.
type timestampsMap map[string]time.Time

var (
	_ driver.Valuer = (timestampsMap)(nil)
	_ sql.Scanner   = (*timestampsMap)(nil)
)

func (m timestampsMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *timestampsMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return errors.Errorf("unsupported timestamps type %T", src)
	}
	return json.Unmarshal(data, m)
}

type draftRow struct {
	ID             string         `db:"id"`
	StudentID      string         `db:"student_id"`
	Status         string         `db:"status"`
	PresentLevels  null.String    `db:"present_levels"`
	Goals          pq.StringArray `db:"goals"`
	Services       pq.StringArray `db:"services"`
	Accommodations pq.StringArray `db:"accommodations"`
	Timestamps     timestampsMap  `db:"timestamps"`
	CreatedAt      null.Time      `db:"created_at"`
	UpdatedAt      null.Time      `db:"updated_at"`
}

func (row draftRow) unpack() iep.Draft {
	goals := []string(row.Goals)
	if goals == nil {
		goals = []string{}
	}
	return iep.Draft{
		ID:             row.ID,
		StudentID:      row.StudentID,
		Status:         row.Status,
		PresentLevels:  row.PresentLevels.String,
		Goals:          goals,
		Services:       row.Services,
		Accommodations: row.Accommodations,
		Timestamps:     row.Timestamps,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

func packDraft(draft iep.Draft) draftRow {
	goals := draft.Goals
	if goals == nil {
		goals = []string{}
	}
	return draftRow{
		ID:             draft.ID,
		StudentID:      draft.StudentID,
		Status:         draft.Status,
		PresentLevels:  null.NewString(draft.PresentLevels, draft.PresentLevels != ""),
		Goals:          goals,
		Services:       draft.Services,
		Accommodations: draft.Accommodations,
		Timestamps:     draft.Timestamps,
		CreatedAt:      null.NewTime(draft.CreatedAt.UTC(), !draft.CreatedAt.IsZero()),
		UpdatedAt:      null.NewTime(draft.UpdatedAt.UTC(), !draft.UpdatedAt.IsZero()),
	}
}

type serviceLogRow struct {
	ID               string    `db:"id"`
	StudentID        string    `db:"student_id"`
	ServiceType      string    `db:"service_type"`
	MinutesScheduled int       `db:"minutes_scheduled"`
	MinutesDelivered int       `db:"minutes_delivered"`
	Date             time.Time `db:"date"`
	CreatedAt        null.Time `db:"created_at"`
}

func (row serviceLogRow) unpack() iep.ServiceLog {
	return iep.ServiceLog{
		ID:               row.ID,
		StudentID:        row.StudentID,
		ServiceType:      row.ServiceType,
		MinutesScheduled: row.MinutesScheduled,
		MinutesDelivered: row.MinutesDelivered,
		Date:             row.Date,
		CreatedAt:        row.CreatedAt.Time,
	}
}

type iepRepository struct {
	db *sqlx.DB
}

var _ iep.Repository = (*iepRepository)(nil) // interface compliance check

func NewIepRepository(db *sqlx.DB) iep.Repository {
	return &iepRepository{db: db}
}

func (repo *iepRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return iep.ErrDraftNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *iepRepository) CreateDraft(ctx context.Context, draft iep.Draft) (iep.Draft, error) {
	draft.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO iep_draft (id, student_id, status, present_levels, goals, services, accommodations, timestamps, created_at, updated_at)
		VALUES (:id, :student_id, :status, :present_levels, :goals, :services, :accommodations, :timestamps, :created_at, :updated_at)`,
		packDraft(draft),
	)
	if err != nil {
		return iep.Draft{}, errors.Wrap(err, "inserting draft")
	}
	return draft, nil
}

func (repo *iepRepository) GetDraftByID(ctx context.Context, id string) (iep.Draft, error) {
	var row draftRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM iep_draft WHERE id = $1`, id); err != nil {
		return iep.Draft{}, repo.trapNoRowsErr(err, "getting draft")
	}
	return row.unpack(), nil
}

func (repo *iepRepository) QueryDraftsByStudent(ctx context.Context, studentID string) ([]iep.Draft, error) {
	var rows []draftRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM iep_draft WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying drafts")
	}
	drafts := make([]iep.Draft, 0, len(rows))
	for _, row := range rows {
		drafts = append(drafts, row.unpack())
	}
	return drafts, nil
}

func (repo *iepRepository) UpdateDraft(ctx context.Context, draft iep.Draft) (iep.Draft, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE iep_draft
		SET status = :status, present_levels = :present_levels, services = :services,
			accommodations = :accommodations, timestamps = :timestamps, updated_at = :updated_at
		WHERE id = :id`,
		packDraft(draft),
	)
	if err != nil {
		return iep.Draft{}, errors.Wrap(err, "updating draft")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return iep.Draft{}, iep.ErrDraftNotFound
	}
	return draft, nil
}

// AppendDraftGoal appends in a single statement so concurrent appends never
// lose an element.
func (repo *iepRepository) AppendDraftGoal(ctx context.Context, id, goal string) (iep.Draft, error) {
	var row draftRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE iep_draft SET goals = array_append(goals, $2), updated_at = $3
		WHERE id = $1
		RETURNING *`,
		id, goal, time.Now().UTC(),
	)
	if err != nil {
		return iep.Draft{}, repo.trapNoRowsErr(err, "appending draft goal")
	}
	return row.unpack(), nil
}

func (repo *iepRepository) CreateServiceLog(ctx context.Context, slog iep.ServiceLog) (iep.ServiceLog, error) {
	slog.ID = uuid.New().String()
	row := serviceLogRow{
		ID:               slog.ID,
		StudentID:        slog.StudentID,
		ServiceType:      slog.ServiceType,
		MinutesScheduled: slog.MinutesScheduled,
		MinutesDelivered: slog.MinutesDelivered,
		Date:             slog.Date.UTC(),
		CreatedAt:        null.TimeFrom(slog.CreatedAt.UTC()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO service_log (id, student_id, service_type, minutes_scheduled, minutes_delivered, date, created_at)
		VALUES (:id, :student_id, :service_type, :minutes_scheduled, :minutes_delivered, :date, :created_at)`,
		row,
	)
	if err != nil {
		return iep.ServiceLog{}, errors.Wrap(err, "inserting service log")
	}
	return slog, nil
}

func (repo *iepRepository) QueryServiceLogsByStudent(ctx context.Context, studentID string) ([]iep.ServiceLog, error) {
	var rows []serviceLogRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM service_log WHERE student_id = $1 ORDER BY date DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying service logs")
	}
	logs := make([]iep.ServiceLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.unpack())
	}
	return logs, nil
}
