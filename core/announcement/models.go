package announcement

import (
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type Announcement struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	CourseID  string    `json:"course_id,omitempty"` // empty = school-wide
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// SchoolWide reports whether the announcement is not tied to a course.
func (a *Announcement) SchoolWide() bool { return a.CourseID == "" }

// Detail is an Announcement decorated with its resolved course, or nil for a
// school-wide announcement.
type Detail struct {
	Announcement
	Course *course.Course `json:"course"`
}

// NewAnnouncement contains information needed to create a new Announcement.
type NewAnnouncement struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	CourseID string `json:"course_id"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return core.Validate.Struct(na)
}

// UpdateAnnouncement defines what information may be provided to modify an
// existing Announcement. Fields supplied overwrite; fields omitted are
// preserved. CourseID nil preserves the current course reference; a pointer
// to "" clears it (school-wide).
type UpdateAnnouncement struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	CourseID *string `json:"course_id"`
}

func (ua *UpdateAnnouncement) Validate(orig Announcement) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	if content := core.CleanString(ua.Content); content != "" {
		ua.Content = content
	} else {
		ua.Content = orig.Content
	}
	if ua.CourseID == nil {
		courseID := orig.CourseID
		ua.CourseID = &courseID
	}
	return core.Validate.Struct(ua)
}
