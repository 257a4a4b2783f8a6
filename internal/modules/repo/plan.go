package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/planning"
	"github.com/planloop-io/planloop/internal/pkg/calendar"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Plan, error)
	// GetActive returns nil without error when no plan is ACTIVE.
	GetActive(ctx context.Context) (*model.Plan, error)
	GetByStatus(ctx context.Context, status model.PlanStatus) (*model.Plan, error)
	GetLinks(ctx context.Context, planID uuid.UUID) ([]model.PlanTemplate, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	CreateWithTemplates(ctx context.Context, in CreatePlanInput) (*model.Plan, error)
	Reconcile(ctx context.Context, in ReconcileInput) error
}

// CreatePlanInput carries everything the plan-creation transaction needs.
// PendingPlanID, when set, names a PENDING_UPDATE plan to retire: its
// ad-hoc tasks not carried into AdhocTaskIDs are unlinked (never deleted)
// before it is marked COMPLETED.
type CreatePlanInput struct {
	Plan          model.Plan
	Templates     []planning.TemplateConfig
	AdhocTaskIDs  []uuid.UUID
	PendingPlanID *uuid.UUID
	Today         time.Time
}

// ReconcileInput is one atomic plan update. Diff drives link and instance
// mutation; HasAdhoc distinguishes "set the ad-hoc selection to exactly
// AdhocTaskIDs" from "leave ad-hoc links alone".
type ReconcileInput struct {
	PlanID        uuid.UUID
	Diff          planning.Diff
	EffectiveMode model.PlanMode
	PeriodKey     string
	Today         time.Time

	HasAdhoc     bool
	AdhocTaskIDs []uuid.UUID

	Description *string
	Mode        *model.PlanMode
}

type planRepo struct{ db *gorm.DB }

func NewPlanRepo(db *gorm.DB) PlanRepo {
	return &planRepo{db: db}
}

func (r *planRepo) Get(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	var p model.Plan
	if err := r.db.WithContext(ctx).Preload("Templates").Where(&model.Plan{ID: id}).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) GetActive(ctx context.Context) (*model.Plan, error) {
	return r.GetByStatus(ctx, model.PlanActive)
}

func (r *planRepo) GetByStatus(ctx context.Context, status model.PlanStatus) (*model.Plan, error) {
	var plans []model.Plan
	err := r.db.WithContext(ctx).Preload("Templates").
		Where("status = ?", status).Limit(1).Find(&plans).Error
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}

func (r *planRepo) GetLinks(ctx context.Context, planID uuid.UUID) ([]model.PlanTemplate, error) {
	var links []model.PlanTemplate
	return links, r.db.WithContext(ctx).Where("plan_id = ?", planID).Find(&links).Error
}

func (r *planRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Plan{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrPlanNotFound
	}
	return nil
}

func (r *planRepo) CreateWithTemplates(ctx context.Context, in CreatePlanInput) (*model.Plan, error) {
	plan := in.Plan
	plan.Status = model.PlanActive

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The guard read ran outside the transaction; re-check here so a
		// concurrent create surfaces a structured conflict instead of a
		// second ACTIVE plan.
		var active int64
		if err := tx.Model(&model.Plan{}).Where("status = ?", model.PlanActive).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return model.ErrActivePlanExists
		}

		if err := tx.Create(&plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}

		if len(in.Templates) > 0 {
			if err := createLinks(tx, plan.ID, in.Templates); err != nil {
				return err
			}
			if err := generateInstances(tx, plan.ID, plan.PeriodKey, in.Today, plan.Mode, in.Templates); err != nil {
				return err
			}
		}

		// Attach the selected ad-hoc tasks to the new plan.
		if len(in.AdhocTaskIDs) > 0 {
			if err := linkTasks(tx, in.AdhocTaskIDs, plan.ID); err != nil {
				return err
			}
		}

		// Retire the pending plan: unlink its deselected ad-hoc tasks,
		// then mark it COMPLETED. Ad-hoc tasks are never deleted here.
		if in.PendingPlanID != nil {
			if err := unlinkAdhocExcept(tx, *in.PendingPlanID, in.AdhocTaskIDs); err != nil {
				return err
			}
			if err := tx.Model(&model.Plan{}).Where("id = ?", *in.PendingPlanID).
				Update("status", model.PlanCompleted).Error; err != nil {
				return fmt.Errorf("retire pending plan: %w", err)
			}
		}

		sync := calendar.Midnight(in.Today)
		if err := tx.Model(&model.Plan{}).Where("id = ?", plan.ID).
			Update("last_sync_date", sync).Error; err != nil {
			return err
		}
		plan.LastSyncDate = &sync
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Reconcile applies one structural diff to a live plan in a single
// transaction: removed links first, then modified, then added, so a
// template swapped for another in the same request never trips the
// instance slot uniqueness. DONE instances are never touched.
func (r *planRepo) Reconcile(ctx context.Context, in ReconcileInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan model.Plan
		if err := tx.Where(&model.Plan{ID: in.PlanID}).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrPlanNotFound
			}
			return err
		}

		// Removed: drop incomplete instances, then the links. Completed
		// work keeps its plan and template references.
		if len(in.Diff.Removed) > 0 {
			if err := deleteIncompleteTasks(tx, in.PlanID, in.Diff.Removed); err != nil {
				return err
			}
			if err := tx.Where("plan_id = ? AND template_id IN ?", in.PlanID, in.Diff.Removed).
				Delete(&model.PlanTemplate{}).Error; err != nil {
				return fmt.Errorf("delete links: %w", err)
			}
		}

		// Modified: the old configuration's incomplete instances are
		// invalidated; the link is rewritten and instances regenerated
		// under the new kind/frequency.
		for _, cfg := range in.Diff.Modified {
			if err := deleteIncompleteTasks(tx, in.PlanID, []uuid.UUID{cfg.TemplateID}); err != nil {
				return err
			}
			if err := tx.Model(&model.PlanTemplate{}).
				Where("plan_id = ? AND template_id = ?", in.PlanID, cfg.TemplateID).
				Updates(map[string]interface{}{"kind": cfg.Kind, "frequency": cfg.Frequency}).Error; err != nil {
				return fmt.Errorf("update link: %w", err)
			}
		}
		if len(in.Diff.Modified) > 0 {
			if err := generateInstances(tx, in.PlanID, in.PeriodKey, in.Today, in.EffectiveMode, in.Diff.Modified); err != nil {
				return err
			}
		}

		if len(in.Diff.Added) > 0 {
			if err := createLinks(tx, in.PlanID, in.Diff.Added); err != nil {
				return err
			}
			if err := generateInstances(tx, in.PlanID, in.PeriodKey, in.Today, in.EffectiveMode, in.Diff.Added); err != nil {
				return err
			}
		}

		if !in.Diff.Empty() {
			if err := tx.Model(&model.Plan{}).Where("id = ?", in.PlanID).
				Update("last_sync_date", calendar.Midnight(in.Today)).Error; err != nil {
				return err
			}
		}

		// Ad-hoc selection: link the kept set, unlink everything else.
		if in.HasAdhoc {
			if len(in.AdhocTaskIDs) > 0 {
				if err := linkTasks(tx, in.AdhocTaskIDs, in.PlanID); err != nil {
					return err
				}
			}
			if err := unlinkAdhocExcept(tx, in.PlanID, in.AdhocTaskIDs); err != nil {
				return err
			}
		}

		fields := map[string]interface{}{}
		if in.Description != nil {
			fields["description"] = *in.Description
		}
		if in.Mode != nil {
			fields["mode"] = *in.Mode
		}
		if len(fields) > 0 {
			if err := tx.Model(&model.Plan{}).Where("id = ?", in.PlanID).Updates(fields).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func createLinks(tx *gorm.DB, planID uuid.UUID, cfgs []planning.TemplateConfig) error {
	links := make([]model.PlanTemplate, 0, len(cfgs))
	for _, cfg := range cfgs {
		links = append(links, model.PlanTemplate{
			PlanID:     planID,
			TemplateID: cfg.TemplateID,
			Kind:       cfg.Kind,
			Frequency:  cfg.Frequency,
		})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return fmt.Errorf("create links: %w", err)
	}
	return nil
}

// generateInstances materializes task rows for the given configurations.
// A template deleted between selection and generation is skipped: that is
// an expected benign race, not an error. Duplicate slots are skipped by
// the ON CONFLICT clause, which keeps re-runs idempotent.
func generateInstances(tx *gorm.DB, planID uuid.UUID, periodKey string, today time.Time, mode model.PlanMode, cfgs []planning.TemplateConfig) error {
	var rows []model.Task
	for _, cfg := range cfgs {
		var tmpl model.Template
		err := tx.Select("id", "title", "description", "points").
			Where("id = ?", cfg.TemplateID).First(&tmpl).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load template %s: %w", cfg.TemplateID, err)
		}
		rows = append(rows, planning.Instances(planID, periodKey, today, mode, cfg, &tmpl)...)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("create instances: %w", err)
	}
	return nil
}

// deleteIncompleteTasks removes TODO/DOING instances for the given
// templates on one plan. DONE and EXPIRED rows are never deleted.
func deleteIncompleteTasks(tx *gorm.DB, planID uuid.UUID, templateIDs []uuid.UUID) error {
	err := tx.Where("plan_id = ? AND template_id IN ? AND status IN ?",
		planID, templateIDs, []model.TaskStatus{model.TaskTodo, model.TaskDoing}).
		Delete(&model.Task{}).Error
	if err != nil {
		return fmt.Errorf("delete incomplete instances: %w", err)
	}
	return nil
}

func linkTasks(tx *gorm.DB, taskIDs []uuid.UUID, planID uuid.UUID) error {
	err := tx.Model(&model.Task{}).Where("id IN ?", taskIDs).
		Update("plan_id", planID).Error
	if err != nil {
		return fmt.Errorf("link tasks: %w", err)
	}
	return nil
}

// unlinkAdhocExcept clears plan_id on every AD_HOC task linked to the
// plan whose id is not in keepIDs. Tasks are detached, never deleted.
func unlinkAdhocExcept(tx *gorm.DB, planID uuid.UUID, keepIDs []uuid.UUID) error {
	q := tx.Model(&model.Task{}).Where("plan_id = ? AND kind = ?", planID, model.KindAdHoc)
	if len(keepIDs) > 0 {
		q = q.Where("id NOT IN ?", keepIDs)
	}
	if err := q.Update("plan_id", nil).Error; err != nil {
		return fmt.Errorf("unlink ad-hoc tasks: %w", err)
	}
	return nil
}
