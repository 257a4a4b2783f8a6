package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RecurrenceKind controls how instances are generated from a template.
type RecurrenceKind string

const (
	KindDaily  RecurrenceKind = "DAILY"
	KindWeekly RecurrenceKind = "WEEKLY"
	KindAdHoc  RecurrenceKind = "AD_HOC"
)

// Template is a reusable definition of a recurring task. Kind is immutable
// after creation; a plan link may override kind/frequency for generation.
type Template struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Points      int       `gorm:"not null;check:points > 0" json:"points"`

	Kind      RecurrenceKind `gorm:"type:text;not null;check:kind IN ('DAILY','WEEKLY','AD_HOC')" json:"kind"`
	Frequency int            `gorm:"not null;default:1;check:frequency > 0" json:"frequency"`

	// Display settings (icon, color) edited by the template form.
	Meta datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"meta"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Template) TableName() string { return "templates" }
