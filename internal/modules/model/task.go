package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskTodo    TaskStatus = "TODO"
	TaskDoing   TaskStatus = "DOING"
	TaskDone    TaskStatus = "DONE"
	TaskExpired TaskStatus = "EXPIRED"
)

// Task is one concrete occurrence of a template within a plan, or a
// free-standing ad-hoc task (nil PlanID and TemplateID). Title,
// description and points are snapshots copied at generation time so
// later template edits never rewrite history.
//
// Instance slots are unique per plan and template: DAILY slots key on
// for_date, WEEKLY slots on period_key. The unused column of each pair
// stays NULL, so a single composite unique index would never conflict;
// db.Migrate creates one partial unique index per kind instead, and
// generation inserts with ON CONFLICT DO NOTHING against them.
type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PlanID     *uuid.UUID `gorm:"type:uuid;index:ix_tasks_plan_id;index:ix_tasks_plan_status,priority:1" json:"plan_id"`
	TemplateID *uuid.UUID `gorm:"type:uuid" json:"template_id"`

	Kind        RecurrenceKind `gorm:"type:text;not null;check:kind IN ('DAILY','WEEKLY','AD_HOC')" json:"kind"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description"`
	Points      int            `gorm:"not null;check:points > 0" json:"points"`

	Status TaskStatus `gorm:"type:text;not null;default:'TODO';check:status IN ('TODO','DOING','DONE','EXPIRED');index:ix_tasks_plan_status,priority:2" json:"status"`

	// ForDate identifies the calendar day a DAILY instance belongs to;
	// PeriodKey identifies the period of a WEEKLY instance.
	ForDate       *time.Time `gorm:"type:date" json:"for_date"`
	PeriodKey     *string    `gorm:"type:text" json:"period_key"`
	InstanceIndex int        `gorm:"not null;default:0" json:"instance_index"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DoneAt    *time.Time `json:"done_at"`

	// Task <-> Plan
	Plan *Plan `gorm:"foreignKey:PlanID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"plan,omitempty"`

	// Task <-> Template: instances survive template deletion.
	Template *Template `gorm:"foreignKey:TemplateID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE;" json:"template,omitempty"`
}

func (Task) TableName() string { return "tasks" }
