package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/config"
	"github.com/planloop-io/planloop/internal/infra/queue"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/repo"
	"github.com/planloop-io/planloop/internal/pkg/calendar"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type TaskService interface {
	CreateAdhoc(ctx context.Context, in CreateAdhocInput) (*model.Task, error)
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error)
	ListByPlan(ctx context.Context, planID uuid.UUID, statuses []model.TaskStatus) ([]model.Task, error)
	ListAdhocPool(ctx context.Context) ([]model.Task, error)
	LinkAdhoc(ctx context.Context, planID uuid.UUID, taskIDs []uuid.UUID) error
	UnlinkAdhocExcept(ctx context.Context, planID uuid.UUID, keepIDs []uuid.UUID) error
	ExpireStaleDaily(ctx context.Context, planID uuid.UUID, cutoff time.Time) (int64, error)
	ExpireAllNonDone(ctx context.Context, planID uuid.UUID) (int64, error)
}

type taskService struct {
	tasks repo.TaskRepo
	clock calendar.Clock
	mq    *amqp.Connection
	cfg   *config.Config
	log   *zap.Logger
}

func NewTaskService(tasks repo.TaskRepo, clock calendar.Clock, mq *amqp.Connection, cfg *config.Config, log *zap.Logger) TaskService {
	return &taskService{
		tasks: tasks,
		clock: clock,
		mq:    mq,
		cfg:   cfg,
		log:   log,
	}
}

type CreateAdhocInput struct {
	Title       string
	Description *string
	Points      int
	PlanID      *uuid.UUID
}

// CreateAdhoc creates a free-standing AD_HOC task. PlanID is optional:
// nil means unlinked, attachable to the open plan later.
func (s *taskService) CreateAdhoc(ctx context.Context, in CreateAdhocInput) (*model.Task, error) {
	task := &model.Task{
		PlanID:      in.PlanID,
		Kind:        model.KindAdHoc,
		Title:       in.Title,
		Description: in.Description,
		Points:      in.Points,
		Status:      model.TaskTodo,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves a task on the board. doneAt is set exactly when the
// task transitions to DONE and cleared on any other status. EXPIRED is
// terminal for board moves.
func (s *taskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == model.TaskExpired && status != model.TaskExpired {
		return nil, model.ErrTaskExpired
	}
	if task.Status == status {
		return task, nil
	}

	var doneAt *time.Time
	if status == model.TaskDone {
		now := s.clock.Now()
		doneAt = &now
	}
	if err := s.tasks.UpdateStatus(ctx, taskID, status, doneAt); err != nil {
		return nil, err
	}

	prev := task.Status
	task.Status = status
	task.DoneAt = doneAt
	s.publishStatusChanged(ctx, task, prev)
	return task, nil
}

func (s *taskService) ListByPlan(ctx context.Context, planID uuid.UUID, statuses []model.TaskStatus) ([]model.Task, error) {
	return s.tasks.ListByPlan(ctx, planID, statuses)
}

func (s *taskService) ListAdhocPool(ctx context.Context) ([]model.Task, error) {
	return s.tasks.ListNonDoneAdhoc(ctx)
}

func (s *taskService) LinkAdhoc(ctx context.Context, planID uuid.UUID, taskIDs []uuid.UUID) error {
	return s.tasks.LinkToPlan(ctx, taskIDs, planID)
}

func (s *taskService) UnlinkAdhocExcept(ctx context.Context, planID uuid.UUID, keepIDs []uuid.UUID) error {
	return s.tasks.UnlinkAdhocExcept(ctx, planID, keepIDs)
}

func (s *taskService) ExpireStaleDaily(ctx context.Context, planID uuid.UUID, cutoff time.Time) (int64, error) {
	return s.tasks.ExpireStaleDaily(ctx, planID, cutoff)
}

func (s *taskService) ExpireAllNonDone(ctx context.Context, planID uuid.UUID) (int64, error) {
	return s.tasks.ExpireAllNonDone(ctx, planID)
}

type taskStatusEvent struct {
	TaskID    uuid.UUID        `json:"task_id"`
	PlanID    *uuid.UUID       `json:"plan_id"`
	From      model.TaskStatus `json:"from"`
	To        model.TaskStatus `json:"to"`
	Points    int              `json:"points"`
	ChangedAt time.Time        `json:"changed_at"`
}

func (s *taskService) publishStatusChanged(ctx context.Context, task *model.Task, prev model.TaskStatus) {
	if s.mq == nil {
		return
	}
	p, err := queue.NewPublisher(s.mq, s.cfg.RabbitMQ.TaskEventQueue, s.log)
	if err != nil {
		s.log.Sugar().Warnw("create task event publisher failed", "err", err)
		return
	}
	defer p.Close()

	event := taskStatusEvent{
		TaskID:    task.ID,
		PlanID:    task.PlanID,
		From:      prev,
		To:        task.Status,
		Points:    task.Points,
		ChangedAt: s.clock.Now(),
	}
	if err := p.PublishJSON(ctx, event); err != nil {
		s.log.Sugar().Warnw("publish task.status_changed failed", "task_id", task.ID, "err", err)
	}
}
