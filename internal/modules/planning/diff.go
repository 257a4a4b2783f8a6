package planning

import (
	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
)

// TemplateConfig is the desired generation configuration of one template
// within a plan. The link overrides the template's defaults.
type TemplateConfig struct {
	TemplateID uuid.UUID
	Kind       model.RecurrenceKind
	Frequency  int
}

// Diff classifies a desired template set against a plan's current links.
// Unchanged templates are deliberately not carried: the reconciler must
// not touch them. Collections carry no ordering guarantee; the reconciler
// applies removed, then modified, then added.
type Diff struct {
	Added    []TemplateConfig
	Removed  []uuid.UUID
	Modified []TemplateConfig
}

// Empty reports whether the reconciliation would be a no-op.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// CalculateDiff compares current plan-template links against the desired
// configuration by template id. A template present in both sets is
// modified when its kind or frequency differs, unchanged otherwise.
func CalculateDiff(current []model.PlanTemplate, desired []TemplateConfig) Diff {
	currentByID := make(map[uuid.UUID]model.PlanTemplate, len(current))
	for _, link := range current {
		currentByID[link.TemplateID] = link
	}
	desiredByID := make(map[uuid.UUID]TemplateConfig, len(desired))
	for _, cfg := range desired {
		desiredByID[cfg.TemplateID] = cfg
	}

	var diff Diff
	for _, cfg := range desired {
		link, ok := currentByID[cfg.TemplateID]
		switch {
		case !ok:
			diff.Added = append(diff.Added, cfg)
		case link.Kind != cfg.Kind || link.Frequency != cfg.Frequency:
			diff.Modified = append(diff.Modified, cfg)
		}
	}
	for _, link := range current {
		if _, ok := desiredByID[link.TemplateID]; !ok {
			diff.Removed = append(diff.Removed, link.TemplateID)
		}
	}
	return diff
}
