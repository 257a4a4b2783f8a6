package model

import (
	"time"

	"github.com/google/uuid"
)

type PlanStatus string

const (
	PlanActive        PlanStatus = "ACTIVE"
	PlanPendingUpdate PlanStatus = "PENDING_UPDATE"
	PlanCompleted     PlanStatus = "COMPLETED"
)

// PlanMode governs weekend generation for DAILY templates: NORMAL
// suppresses weekend days, EXTREME always generates.
type PlanMode string

const (
	ModeNormal  PlanMode = "NORMAL"
	ModeExtreme PlanMode = "EXTREME"
)

type PeriodType string

const (
	PeriodWeekly PeriodType = "WEEKLY"
)

// Plan is a time-boxed container for one calendar period. At most one
// plan holds status ACTIVE at a time.
type Plan struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PeriodType  PeriodType `gorm:"type:text;not null;default:'WEEKLY';check:period_type IN ('WEEKLY')" json:"period_type"`
	PeriodKey   string     `gorm:"type:text;not null" json:"period_key"`
	Description *string    `gorm:"type:text" json:"description"`

	Mode   PlanMode   `gorm:"type:text;not null;default:'NORMAL';check:mode IN ('NORMAL','EXTREME')" json:"mode"`
	Status PlanStatus `gorm:"type:text;not null;default:'ACTIVE';check:status IN ('ACTIVE','PENDING_UPDATE','COMPLETED');index:ix_plans_status" json:"status"`

	// Date through which instance generation has been applied.
	LastSyncDate *time.Time `gorm:"type:date" json:"last_sync_date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Plan <-> PlanTemplate
	Templates []PlanTemplate `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"templates,omitempty"`

	// Plan <-> Task
	Tasks []Task `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"tasks,omitempty"`
}

func (Plan) TableName() string { return "plans" }
