package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/repo"
	"github.com/stretchr/testify/mock"
)

type mockPlanRepo struct{ mock.Mock }

func (m *mockPlanRepo) Get(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*model.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanRepo) GetActive(ctx context.Context) (*model.Plan, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.(*model.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanRepo) GetByStatus(ctx context.Context, status model.PlanStatus) (*model.Plan, error) {
	args := m.Called(ctx, status)
	if p := args.Get(0); p != nil {
		return p.(*model.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanRepo) GetLinks(ctx context.Context, planID uuid.UUID) ([]model.PlanTemplate, error) {
	args := m.Called(ctx, planID)
	if l := args.Get(0); l != nil {
		return l.([]model.PlanTemplate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *mockPlanRepo) CreateWithTemplates(ctx context.Context, in repo.CreatePlanInput) (*model.Plan, error) {
	args := m.Called(ctx, in)
	if p := args.Get(0); p != nil {
		return p.(*model.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanRepo) Reconcile(ctx context.Context, in repo.ReconcileInput) error {
	return m.Called(ctx, in).Error(0)
}

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) Create(ctx context.Context, t *model.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepo) ListByPlan(ctx context.Context, planID uuid.UUID, statuses []model.TaskStatus) ([]model.Task, error) {
	args := m.Called(ctx, planID, statuses)
	if t := args.Get(0); t != nil {
		return t.([]model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepo) ListNonDoneAdhoc(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.([]model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus, doneAt *time.Time) error {
	return m.Called(ctx, id, status, doneAt).Error(0)
}

func (m *mockTaskRepo) CountIncompleteByTemplate(ctx context.Context, planID uuid.UUID, templateIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, planID, templateIDs)
	if c := args.Get(0); c != nil {
		return c.(map[uuid.UUID]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepo) LinkToPlan(ctx context.Context, taskIDs []uuid.UUID, planID uuid.UUID) error {
	return m.Called(ctx, taskIDs, planID).Error(0)
}

func (m *mockTaskRepo) UnlinkAdhocExcept(ctx context.Context, planID uuid.UUID, keepIDs []uuid.UUID) error {
	return m.Called(ctx, planID, keepIDs).Error(0)
}

func (m *mockTaskRepo) ExpireStaleDaily(ctx context.Context, planID uuid.UUID, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, planID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTaskRepo) ExpireAllNonDone(ctx context.Context, planID uuid.UUID) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}

type mockTemplateRepo struct{ mock.Mock }

func (m *mockTemplateRepo) Create(ctx context.Context, t *model.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTemplateRepo) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*model.Template), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTemplateRepo) List(ctx context.Context) ([]model.Template, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.([]model.Template), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTemplateRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// fixedClock pins time for deterministic tests.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) Today() time.Time {
	y, m, d := c.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.now.Location())
}
