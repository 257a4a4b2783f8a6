package db

import (
	"fmt"

	"github.com/planloop-io/planloop/internal/modules/model"
	"gorm.io/gorm"
)

// taskSlotIndexes are the uniqueness backstops instance generation
// relies on. A single composite unique index over both slot columns is
// inert here: DAILY rows carry a NULL period_key and WEEKLY rows a NULL
// for_date, and Postgres treats NULLs as distinct, so generated rows
// would never conflict. One partial unique index per recurrence kind
// keys each row on the column that is actually populated.
var taskSlotIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_task_slot_daily
		ON tasks (plan_id, template_id, for_date, instance_index)
		WHERE kind = 'DAILY'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_task_slot_weekly
		ON tasks (plan_id, template_id, period_key, instance_index)
		WHERE kind = 'WEEKLY'`,
}

// Migrate creates the schema plus the slot indexes GORM tags cannot
// express. ON CONFLICT DO NOTHING in the generation path conflicts
// against these indexes, which is what makes re-runs idempotent.
func Migrate(g *gorm.DB) error {
	if err := g.AutoMigrate(
		&model.Template{},
		&model.Plan{},
		&model.PlanTemplate{},
		&model.Task{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range taskSlotIndexes {
		if err := g.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create task slot index: %w", err)
		}
	}
	return nil
}
