package iep

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Draft statuses
const (
	StatusDraft  = "draft"
	StatusSigned = "signed"
)

// Draft is an Individualized Education Program draft for a student.
type Draft struct {
	ID             string               `json:"id"`
	StudentID      string               `json:"student_id"`
	Status         string               `json:"status"`
	PresentLevels  string               `json:"present_levels,omitempty"` // PLAAFP narrative
	Goals          []string             `json:"goals"`
	Services       []string             `json:"services,omitempty"`
	Accommodations []string             `json:"accommodations,omitempty"`
	Timestamps     map[string]time.Time `json:"timestamps,omitempty"` // important dates (eg. "annual_review")
	CreatedAt      time.Time            `json:"created_at"`           // UTC
	UpdatedAt      time.Time            `json:"updated_at"`           // UTC
}

// ServiceLog records minutes of a therapy service scheduled vs delivered.
type ServiceLog struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	ServiceType      string    `json:"service_type"` // eg. "speech therapy"
	MinutesScheduled int       `json:"minutes_scheduled"`
	MinutesDelivered int       `json:"minutes_delivered"`
	Date             time.Time `json:"date"`
	CreatedAt        time.Time `json:"created_at"` // UTC
}

// NewDraft contains information needed to create a new Draft.
type NewDraft struct {
	StudentID     string `json:"student_id" validate:"required"`
	PresentLevels string `json:"present_levels"`
}

func (nd *NewDraft) Validate() error {
	nd.PresentLevels = core.CleanString(nd.PresentLevels)
	return core.Validate.Struct(nd)
}

// UpdateDraft defines what information may be provided to modify an existing
// Draft. Nil fields are preserved.
type UpdateDraft struct {
	Status         *string              `json:"status" validate:"omitempty,oneof=draft signed"`
	PresentLevels  *string              `json:"present_levels"`
	Services       []string             `json:"services"`
	Accommodations []string             `json:"accommodations"`
	Timestamps     map[string]time.Time `json:"timestamps"`
}

func (ud *UpdateDraft) Validate() error {
	if ud.PresentLevels != nil {
		plaafp := core.CleanString(*ud.PresentLevels)
		ud.PresentLevels = &plaafp
	}
	return core.Validate.Struct(ud)
}

// NewServiceLog contains information needed to record a ServiceLog.
type NewServiceLog struct {
	StudentID        string    `json:"student_id" validate:"required"`
	ServiceType      string    `json:"service_type" validate:"required"`
	MinutesScheduled int       `json:"minutes_scheduled" validate:"gte=0"`
	MinutesDelivered int       `json:"minutes_delivered" validate:"gte=0"`
	Date             time.Time `json:"date" validate:"required"`
}

func (ns *NewServiceLog) Validate() error {
	ns.ServiceType = core.CleanString(ns.ServiceType)
	return core.Validate.Struct(ns)
}

// GenerateGoalRequest carries the present-levels narrative for goal drafting.
type GenerateGoalRequest struct {
	PresentLevels string `json:"present_levels" validate:"required"`
}

func (gr *GenerateGoalRequest) Validate() error {
	gr.PresentLevels = core.CleanString(gr.PresentLevels)
	return core.Validate.Struct(gr)
}

// SaveGoalRequest carries a generated goal to append to a draft.
type SaveGoalRequest struct {
	Goal string `json:"goal" validate:"required"`
}

func (sr *SaveGoalRequest) Validate() error {
	sr.Goal = core.CleanString(sr.Goal)
	return core.Validate.Struct(sr)
}
