package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/config"
	"github.com/planloop-io/planloop/internal/infra/queue"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/planning"
	"github.com/planloop-io/planloop/internal/modules/repo"
	"github.com/planloop-io/planloop/internal/pkg/calendar"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const activePlanCacheKey = "plan:active"

type PlanService interface {
	Create(ctx context.Context, in CreatePlanInput) (*model.Plan, error)
	Update(ctx context.Context, planID uuid.UUID, in UpdatePlanInput) error
	GetActive(ctx context.Context) (*model.Plan, error)
	CountRemovable(ctx context.Context, planID uuid.UUID, templateIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type planService struct {
	plans repo.PlanRepo
	tasks repo.TaskRepo
	clock calendar.Clock
	rdb   *redis.Client
	mq    *amqp.Connection
	cfg   *config.Config
	log   *zap.Logger
}

func NewPlanService(plans repo.PlanRepo, tasks repo.TaskRepo, clock calendar.Clock, rdb *redis.Client, mq *amqp.Connection, cfg *config.Config, log *zap.Logger) PlanService {
	return &planService{
		plans: plans,
		tasks: tasks,
		clock: clock,
		rdb:   rdb,
		mq:    mq,
		cfg:   cfg,
		log:   log,
	}
}

type CreatePlanInput struct {
	PeriodType   model.PeriodType
	Description  *string
	Mode         model.PlanMode
	Templates    []planning.TemplateConfig
	AdhocTaskIDs []uuid.UUID
}

// UpdatePlanInput is a partial update. Nil means "leave alone"; a non-nil
// Templates or AdhocTaskIDs means "make the set exactly this", including
// the empty set.
type UpdatePlanInput struct {
	Description  *string
	Mode         *model.PlanMode
	Templates    *[]planning.TemplateConfig
	AdhocTaskIDs *[]uuid.UUID
}

// Create activates a new plan. At most one plan is ACTIVE system-wide:
// a create while one exists returns ErrActivePlanExists and performs no
// writes. A PENDING_UPDATE plan, if present, is retired inside the same
// transaction with its leftover ad-hoc tasks unlinked, never deleted.
func (s *planService) Create(ctx context.Context, in CreatePlanInput) (*model.Plan, error) {
	existing, err := s.plans.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("check active plan: %w", err)
	}
	if existing != nil {
		return nil, model.ErrActivePlanExists
	}

	pending, err := s.plans.GetByStatus(ctx, model.PlanPendingUpdate)
	if err != nil {
		return nil, fmt.Errorf("check pending plan: %w", err)
	}

	today := s.clock.Today()
	periodType := in.PeriodType
	if periodType == "" {
		periodType = model.PeriodWeekly
	}
	mode := in.Mode
	if mode == "" {
		mode = model.ModeNormal
	}

	create := repo.CreatePlanInput{
		Plan: model.Plan{
			PeriodType:  periodType,
			PeriodKey:   calendar.ISOWeekKey(today),
			Description: in.Description,
			Mode:        mode,
		},
		Templates:    in.Templates,
		AdhocTaskIDs: in.AdhocTaskIDs,
		Today:        today,
	}
	if pending != nil {
		create.PendingPlanID = &pending.ID
	}

	plan, err := s.plans.CreateWithTemplates(ctx, create)
	if err != nil {
		return nil, err
	}

	s.invalidateActiveCache(ctx)
	s.publishPlanSynced(ctx, plan.ID, plan.PeriodKey, len(in.Templates), 0, 0)
	return plan, nil
}

// Update reconciles a live plan against a newly desired configuration.
// Template changes are applied as a structural diff inside one
// transaction; completed work is never deleted. A zero diff with no
// ad-hoc, description or mode change is a no-op that leaves the plan's
// lastSyncDate untouched. Description/mode-only edits bypass the
// transaction entirely.
func (s *planService) Update(ctx context.Context, planID uuid.UUID, in UpdatePlanInput) error {
	hasTemplates := in.Templates != nil
	hasAdhoc := in.AdhocTaskIDs != nil

	var diff planning.Diff
	if hasTemplates {
		links, err := s.plans.GetLinks(ctx, planID)
		if err != nil {
			return fmt.Errorf("load plan links: %w", err)
		}
		diff = planning.CalculateDiff(links, *in.Templates)
	}

	if diff.Empty() && !hasAdhoc {
		// Nothing structural to do. Persist description/mode as a single
		// write, or bail out entirely.
		return s.updateFieldsOnly(ctx, planID, in)
	}

	effectiveMode, err := s.effectiveMode(ctx, planID, in.Mode)
	if err != nil {
		return err
	}

	today := s.clock.Today()
	rec := repo.ReconcileInput{
		PlanID:        planID,
		Diff:          diff,
		EffectiveMode: effectiveMode,
		PeriodKey:     calendar.ISOWeekKey(today),
		Today:         today,
		HasAdhoc:      hasAdhoc,
		Description:   in.Description,
		Mode:          in.Mode,
	}
	if hasAdhoc {
		rec.AdhocTaskIDs = *in.AdhocTaskIDs
	}

	if err := s.plans.Reconcile(ctx, rec); err != nil {
		return err
	}

	s.invalidateActiveCache(ctx)
	s.publishPlanSynced(ctx, planID, rec.PeriodKey, len(diff.Added), len(diff.Removed), len(diff.Modified))
	return nil
}

func (s *planService) updateFieldsOnly(ctx context.Context, planID uuid.UUID, in UpdatePlanInput) error {
	fields := map[string]interface{}{}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Mode != nil {
		fields["mode"] = *in.Mode
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.plans.UpdateFields(ctx, planID, fields); err != nil {
		return err
	}
	s.invalidateActiveCache(ctx)
	return nil
}

func (s *planService) effectiveMode(ctx context.Context, planID uuid.UUID, override *model.PlanMode) (model.PlanMode, error) {
	if override != nil {
		return *override, nil
	}
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return "", err
	}
	return plan.Mode, nil
}

// GetActive returns the single ACTIVE plan with its template links,
// through a short-lived Redis cache. Cache failures degrade to the
// database read.
func (s *planService) GetActive(ctx context.Context) (*model.Plan, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, activePlanCacheKey).Bytes()
		if err == nil {
			var plan model.Plan
			if err := sonic.Unmarshal(raw, &plan); err == nil {
				return &plan, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Sugar().Warnw("active plan cache read failed", "err", err)
		}
	}

	plan, err := s.plans.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, model.ErrPlanNotFound
	}

	if s.rdb != nil {
		if raw, err := sonic.Marshal(plan); err == nil {
			ttl := time.Duration(s.cfg.Redis.ActivePlanTTL) * time.Second
			if err := s.rdb.Set(ctx, activePlanCacheKey, raw, ttl).Err(); err != nil {
				s.log.Sugar().Warnw("active plan cache write failed", "err", err)
			}
		}
	}
	return plan, nil
}

// CountRemovable previews, per template, how many TODO/DOING instances a
// reconciliation removing those templates would delete. DONE instances
// are excluded since they are never removed.
func (s *planService) CountRemovable(ctx context.Context, planID uuid.UUID, templateIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.tasks.CountIncompleteByTemplate(ctx, planID, templateIDs)
}

func (s *planService) invalidateActiveCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, activePlanCacheKey).Err(); err != nil {
		s.log.Sugar().Warnw("active plan cache invalidation failed", "err", err)
	}
}

type planSyncedEvent struct {
	PlanID    uuid.UUID `json:"plan_id"`
	PeriodKey string    `json:"period_key"`
	Added     int       `json:"added"`
	Removed   int       `json:"removed"`
	Modified  int       `json:"modified"`
	SyncedAt  time.Time `json:"synced_at"`
}

// publishPlanSynced emits a plan.synced event after a successful commit.
// Publishing is best-effort: a broker failure never fails the write.
func (s *planService) publishPlanSynced(ctx context.Context, planID uuid.UUID, periodKey string, added, removed, modified int) {
	if s.mq == nil {
		return
	}
	p, err := queue.NewPublisher(s.mq, s.cfg.RabbitMQ.PlanEventQueue, s.log)
	if err != nil {
		s.log.Sugar().Warnw("create plan event publisher failed", "err", err)
		return
	}
	defer p.Close()

	event := planSyncedEvent{
		PlanID:    planID,
		PeriodKey: periodKey,
		Added:     added,
		Removed:   removed,
		Modified:  modified,
		SyncedAt:  s.clock.Now(),
	}
	if err := p.PublishJSON(ctx, event); err != nil {
		s.log.Sugar().Warnw("publish plan.synced failed", "plan_id", planID, "err", err)
	}
}
