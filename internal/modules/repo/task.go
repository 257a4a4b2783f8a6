package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"gorm.io/gorm"
)

type TaskRepo interface {
	Create(ctx context.Context, t *model.Task) error
	Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByPlan(ctx context.Context, planID uuid.UUID, statuses []model.TaskStatus) ([]model.Task, error)
	ListNonDoneAdhoc(ctx context.Context) ([]model.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus, doneAt *time.Time) error
	CountIncompleteByTemplate(ctx context.Context, planID uuid.UUID, templateIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LinkToPlan(ctx context.Context, taskIDs []uuid.UUID, planID uuid.UUID) error
	UnlinkAdhocExcept(ctx context.Context, planID uuid.UUID, keepIDs []uuid.UUID) error
	ExpireStaleDaily(ctx context.Context, planID uuid.UUID, cutoff time.Time) (int64, error)
	ExpireAllNonDone(ctx context.Context, planID uuid.UUID) (int64, error)
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taskRepo) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var t model.Task
	if err := r.db.WithContext(ctx).Where(&model.Task{ID: id}).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) ListByPlan(ctx context.Context, planID uuid.UUID, statuses []model.TaskStatus) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("plan_id = ?", planID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var items []model.Task
	return items, q.Order("created_at ASC, id ASC").Find(&items).Error
}

func (r *taskRepo) ListNonDoneAdhoc(ctx context.Context) ([]model.Task, error) {
	var items []model.Task
	err := r.db.WithContext(ctx).
		Where("kind = ? AND status <> ?", model.KindAdHoc, model.TaskDone).
		Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus, doneAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "done_at": doneAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

// CountIncompleteByTemplate returns, per template, how many TODO/DOING
// instances a reconciliation removing that template would delete.
func (r *taskRepo) CountIncompleteByTemplate(ctx context.Context, planID uuid.UUID, templateIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(templateIDs))
	if len(templateIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TemplateID uuid.UUID
		N          int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("template_id, COUNT(*) AS n").
		Where("plan_id = ? AND template_id IN ? AND status IN ?",
			planID, templateIDs, []model.TaskStatus{model.TaskTodo, model.TaskDoing}).
		Group("template_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TemplateID] = row.N
	}
	return counts, nil
}

func (r *taskRepo) LinkToPlan(ctx context.Context, taskIDs []uuid.UUID, planID uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	return linkTasks(r.db.WithContext(ctx), taskIDs, planID)
}

func (r *taskRepo) UnlinkAdhocExcept(ctx context.Context, planID uuid.UUID, keepIDs []uuid.UUID) error {
	return unlinkAdhocExcept(r.db.WithContext(ctx), planID, keepIDs)
}

// ExpireStaleDaily marks non-DONE daily instances older than the cutoff
// as EXPIRED. The caller decides the cutoff (typically yesterday, for a
// one-day rollover buffer).
func (r *taskRepo) ExpireStaleDaily(ctx context.Context, planID uuid.UUID, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("plan_id = ? AND for_date < ? AND status <> ?", planID, cutoff, model.TaskDone).
		Update("status", model.TaskExpired)
	return res.RowsAffected, res.Error
}

// ExpireAllNonDone is the end-of-period sweep: every instance that never
// reached DONE expires, except ad-hoc tasks, which outlive plans.
func (r *taskRepo) ExpireAllNonDone(ctx context.Context, planID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("plan_id = ? AND status <> ? AND kind <> ?", planID, model.TaskDone, model.KindAdHoc).
		Update("status", model.TaskExpired)
	return res.RowsAffected, res.Error
}
