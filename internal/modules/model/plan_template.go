package model

import (
	"time"

	"github.com/google/uuid"
)

// PlanTemplate links a template into a plan. The link's kind and
// frequency, not the template's defaults, are authoritative for
// generation; a plan may override either.
type PlanTemplate struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PlanID     uuid.UUID `gorm:"type:uuid;not null;index:ix_plan_templates_plan_id;uniqueIndex:uq_plan_template,priority:1" json:"plan_id"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_plan_template,priority:2" json:"template_id"`

	Kind      RecurrenceKind `gorm:"type:text;not null;check:kind IN ('DAILY','WEEKLY','AD_HOC')" json:"kind"`
	Frequency int            `gorm:"not null;default:1;check:frequency > 0" json:"frequency"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// PlanTemplate <-> Plan
	Plan *Plan `gorm:"foreignKey:PlanID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"plan,omitempty"`

	// PlanTemplate <-> Template
	Template *Template `gorm:"foreignKey:TemplateID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"template,omitempty"`
}

func (PlanTemplate) TableName() string { return "plan_templates" }
