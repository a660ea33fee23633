package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/announcement"
)

type announcementRow struct {
	ID        string      `db:"id"`
	TeacherID string      `db:"teacher_id"`
	CourseID  null.String `db:"course_id"`
	Title     string      `db:"title"`
	Content   string      `db:"content"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (row announcementRow) unpack() announcement.Announcement {
	return announcement.Announcement{
		ID:        row.ID,
		TeacherID: row.TeacherID,
		CourseID:  row.CourseID.String,
		Title:     row.Title,
		Content:   row.Content,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func packAnnouncement(ann announcement.Announcement) announcementRow {
	return announcementRow{
		ID:        ann.ID,
		TeacherID: ann.TeacherID,
		CourseID:  null.NewString(ann.CourseID, ann.CourseID != ""), // NULL = school-wide
		Title:     ann.Title,
		Content:   ann.Content,
		CreatedAt: null.NewTime(ann.CreatedAt.UTC(), !ann.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(ann.UpdatedAt.UTC(), !ann.UpdatedAt.IsZero()),
	}
}

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	ann.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO announcement (id, teacher_id, course_id, title, content, created_at, updated_at)
		VALUES (:id, :teacher_id, :course_id, :title, :content, :created_at, :updated_at)`,
		packAnnouncement(ann),
	)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	var row announcementRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM announcement WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, errors.Wrap(err, "getting announcement")
	}
	return row.unpack(), nil
}

func (repo *announcementRepository) QueryAnnouncementsByTeacher(ctx context.Context, teacherID, courseID string) ([]announcement.Announcement, error) {
	query := `SELECT * FROM announcement WHERE teacher_id = $1`
	args := []interface{}{teacherID}
	if courseID != "" {
		query += ` AND course_id = $2`
		args = append(args, courseID)
	}
	query += ` ORDER BY created_at DESC`

	var rows []announcementRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	anns := make([]announcement.Announcement, 0, len(rows))
	for _, row := range rows {
		anns = append(anns, row.unpack())
	}
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE announcement SET title = :title, content = :content, course_id = :course_id, updated_at = :updated_at
		WHERE id = :id`,
		packAnnouncement(ann),
	)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return ann, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM announcement WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return announcement.ErrNotFound
	}
	return nil
}
