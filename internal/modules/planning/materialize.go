package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/pkg/calendar"
)

// Instances expands one configured template into the task rows that
// should exist for the current generation window. Title, description and
// points are copied from the template so instances are insulated from
// later template edits.
//
//   - WEEKLY emits frequency instances keyed by periodKey.
//   - DAILY emits frequency instances keyed by today, except on weekend
//     days in NORMAL mode, which emit nothing.
//   - AD_HOC never emits: ad-hoc tasks are created directly and only
//     linked to plans.
//
// The caller persists the result with duplicate-skipping semantics, so
// re-running a pass for an already materialized slot creates no rows.
func Instances(planID uuid.UUID, periodKey string, today time.Time, mode model.PlanMode, cfg TemplateConfig, tmpl *model.Template) []model.Task {
	pid := planID
	tid := cfg.TemplateID

	switch cfg.Kind {
	case model.KindWeekly:
		tasks := make([]model.Task, 0, cfg.Frequency)
		key := periodKey
		for i := 0; i < cfg.Frequency; i++ {
			tasks = append(tasks, model.Task{
				PlanID:        &pid,
				TemplateID:    &tid,
				Kind:          cfg.Kind,
				Title:         tmpl.Title,
				Description:   tmpl.Description,
				Points:        tmpl.Points,
				Status:        model.TaskTodo,
				PeriodKey:     &key,
				InstanceIndex: i,
			})
		}
		return tasks

	case model.KindDaily:
		if mode == model.ModeNormal && calendar.IsWeekend(today) {
			return nil
		}
		tasks := make([]model.Task, 0, cfg.Frequency)
		day := calendar.Midnight(today)
		for i := 0; i < cfg.Frequency; i++ {
			tasks = append(tasks, model.Task{
				PlanID:        &pid,
				TemplateID:    &tid,
				Kind:          cfg.Kind,
				Title:         tmpl.Title,
				Description:   tmpl.Description,
				Points:        tmpl.Points,
				Status:        model.TaskTodo,
				ForDate:       &day,
				InstanceIndex: i,
			})
		}
		return tasks

	default:
		return nil
	}
}
