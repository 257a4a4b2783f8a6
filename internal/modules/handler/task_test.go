package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) CreateAdhoc(ctx context.Context, in service.CreateAdhocInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	if t := args.Get(0); t != nil {
		return t.(*model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	args := m.Called(ctx, taskID, status)
	if t := args.Get(0); t != nil {
		return t.(*model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) ListByPlan(ctx context.Context, planID uuid.UUID, statuses []model.TaskStatus) ([]model.Task, error) {
	args := m.Called(ctx, planID, statuses)
	if t := args.Get(0); t != nil {
		return t.([]model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) ListAdhocPool(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.([]model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskService) LinkAdhoc(ctx context.Context, planID uuid.UUID, taskIDs []uuid.UUID) error {
	return m.Called(ctx, planID, taskIDs).Error(0)
}

func (m *mockTaskService) UnlinkAdhocExcept(ctx context.Context, planID uuid.UUID, keepIDs []uuid.UUID) error {
	return m.Called(ctx, planID, keepIDs).Error(0)
}

func (m *mockTaskService) ExpireStaleDaily(ctx context.Context, planID uuid.UUID, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, planID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTaskService) ExpireAllNonDone(ctx context.Context, planID uuid.UUID) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}

func newTaskRouter(svc service.TaskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTaskHandler(svc)
	r := gin.New()
	r.GET("/task", h.GetTasks)
	r.POST("/task", h.CreateAdhocTask)
	r.PUT("/task/:task_id/status", h.UpdateTaskStatus)
	r.GET("/task/adhoc", h.GetAdhocPool)
	r.POST("/plan/:plan_id/expire_stale", h.ExpireStale)
	r.POST("/plan/:plan_id/expire_all", h.ExpireAll)
	return r
}

func TestUpdateTaskStatusExpiredConflict(t *testing.T) {
	svc := new(mockTaskService)
	svc.On("UpdateStatus", mock.Anything, mock.Anything, model.TaskDoing).Return(nil, model.ErrTaskExpired)
	r := newTaskRouter(svc)

	url := "/task/" + uuid.New().String() + "/status"
	req := httptest.NewRequest(http.MethodPut, url, bytes.NewReader([]byte(`{"status":"DOING"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateTaskStatusNotFound(t *testing.T) {
	svc := new(mockTaskService)
	svc.On("UpdateStatus", mock.Anything, mock.Anything, model.TaskDone).Return(nil, model.ErrTaskNotFound)
	r := newTaskRouter(svc)

	url := "/task/" + uuid.New().String() + "/status"
	req := httptest.NewRequest(http.MethodPut, url, bytes.NewReader([]byte(`{"status":"DONE"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTaskStatusRejectsUnknownStatus(t *testing.T) {
	svc := new(mockTaskService)
	r := newTaskRouter(svc)

	url := "/task/" + uuid.New().String() + "/status"
	req := httptest.NewRequest(http.MethodPut, url, bytes.NewReader([]byte(`{"status":"ARCHIVED"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAdhocTaskRequiresPoints(t *testing.T) {
	svc := new(mockTaskService)
	r := newTaskRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/task", bytes.NewReader([]byte(`{"title":"no points"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateAdhoc", mock.Anything, mock.Anything)
}

func TestGetTasksStatusFilter(t *testing.T) {
	svc := new(mockTaskService)
	planID := uuid.New()
	svc.On("ListByPlan", mock.Anything, planID, []model.TaskStatus{model.TaskTodo, model.TaskDoing}).
		Return([]model.Task{{ID: uuid.New(), Title: "write report", Status: model.TaskTodo}}, nil)
	r := newTaskRouter(svc)

	url := "/task?plan_id=" + planID.String() + "&status=TODO&status=DOING"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "write report")
	svc.AssertExpectations(t)
}

func TestExpireStaleParsesCutoff(t *testing.T) {
	svc := new(mockTaskService)
	planID := uuid.New()
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)
	svc.On("ExpireStaleDaily", mock.Anything, planID, want).Return(int64(2), nil)
	r := newTaskRouter(svc)

	url := "/plan/" + planID.String() + "/expire_stale"
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(`{"cutoff":"2024-03-04"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expired":2`)
	svc.AssertExpectations(t)
}

func TestExpireAll(t *testing.T) {
	svc := new(mockTaskService)
	planID := uuid.New()
	svc.On("ExpireAllNonDone", mock.Anything, planID).Return(int64(7), nil)
	r := newTaskRouter(svc)

	url := "/plan/" + planID.String() + "/expire_all"
	req := httptest.NewRequest(http.MethodPost, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expired":7`)
}
