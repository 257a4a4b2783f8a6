package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/config"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newTaskService(tasks *mockTaskRepo) TaskService {
	return NewTaskService(tasks, fixedClock{now: testNow}, nil, &config.Config{}, zap.NewNop())
}

func TestTaskCreateAdhoc(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := newTaskService(tasks)

	tasks.On("Create", mock.Anything, mock.Anything).Return(nil)

	task, err := svc.CreateAdhoc(context.Background(), CreateAdhocInput{Title: "fix leaky faucet", Points: 2})

	assert.NoError(t, err)
	assert.Equal(t, model.KindAdHoc, task.Kind)
	assert.Equal(t, model.TaskTodo, task.Status)
	assert.Nil(t, task.PlanID)
}

func TestTaskUpdateStatusToDoneSetsDoneAt(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := newTaskService(tasks)

	id := uuid.New()
	tasks.On("Get", mock.Anything, id).Return(&model.Task{ID: id, Status: model.TaskDoing, Points: 3}, nil)

	var capturedDoneAt *time.Time
	tasks.On("UpdateStatus", mock.Anything, id, model.TaskDone, mock.Anything).
		Run(func(args mock.Arguments) {
			if v := args.Get(3); v != nil {
				capturedDoneAt = v.(*time.Time)
			}
		}).
		Return(nil)

	task, err := svc.UpdateStatus(context.Background(), id, model.TaskDone)

	assert.NoError(t, err)
	assert.Equal(t, model.TaskDone, task.Status)
	assert.NotNil(t, capturedDoneAt)
	assert.Equal(t, testNow, *capturedDoneAt)
	assert.Equal(t, testNow, *task.DoneAt)
}

func TestTaskUpdateStatusAwayFromDoneClearsDoneAt(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := newTaskService(tasks)

	id := uuid.New()
	doneAt := testNow.Add(-time.Hour)
	tasks.On("Get", mock.Anything, id).Return(&model.Task{ID: id, Status: model.TaskDone, DoneAt: &doneAt}, nil)
	tasks.On("UpdateStatus", mock.Anything, id, model.TaskTodo, (*time.Time)(nil)).Return(nil)

	task, err := svc.UpdateStatus(context.Background(), id, model.TaskTodo)

	assert.NoError(t, err)
	assert.Equal(t, model.TaskTodo, task.Status)
	assert.Nil(t, task.DoneAt)
	tasks.AssertExpectations(t)
}

func TestTaskUpdateStatusExpiredIsTerminal(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := newTaskService(tasks)

	id := uuid.New()
	tasks.On("Get", mock.Anything, id).Return(&model.Task{ID: id, Status: model.TaskExpired}, nil)

	_, err := svc.UpdateStatus(context.Background(), id, model.TaskTodo)

	assert.ErrorIs(t, err, model.ErrTaskExpired)
	tasks.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskUpdateStatusSameStatusShortCircuits(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := newTaskService(tasks)

	id := uuid.New()
	tasks.On("Get", mock.Anything, id).Return(&model.Task{ID: id, Status: model.TaskDoing}, nil)

	task, err := svc.UpdateStatus(context.Background(), id, model.TaskDoing)

	assert.NoError(t, err)
	assert.Equal(t, model.TaskDoing, task.Status)
	tasks.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskUpdateStatusNotFound(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := newTaskService(tasks)

	id := uuid.New()
	tasks.On("Get", mock.Anything, id).Return(nil, model.ErrTaskNotFound)

	_, err := svc.UpdateStatus(context.Background(), id, model.TaskDone)

	assert.ErrorIs(t, err, model.ErrTaskNotFound)
}

func TestTaskExpireStaleDaily(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := newTaskService(tasks)

	planID := uuid.New()
	cutoff := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tasks.On("ExpireStaleDaily", mock.Anything, planID, cutoff).Return(int64(3), nil)

	n, err := svc.ExpireStaleDaily(context.Background(), planID, cutoff)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
