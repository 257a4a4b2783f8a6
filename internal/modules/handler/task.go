package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/serializer"
	"github.com/planloop-io/planloop/internal/modules/service"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(s service.TaskService) *TaskHandler {
	return &TaskHandler{svc: s}
}

type ListTasksReq struct {
	PlanID string   `form:"plan_id" binding:"required,uuid"`
	Status []string `form:"status" binding:"omitempty,dive,oneof=TODO DOING DONE EXPIRED"`
}

// GetTasks godoc
//
//	@Summary		List tasks
//	@Description	List a plan's tasks, optionally filtered by status
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			plan_id	query	string	true	"Plan ID"	Format(uuid)
//	@Param			status	query	[]string	false	"Status filter"	collectionFormat(multi)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Task}
//	@Router			/task [get]
func (h *TaskHandler) GetTasks(c *gin.Context) {
	req := ListTasksReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	statuses := make([]model.TaskStatus, 0, len(req.Status))
	for _, s := range req.Status {
		statuses = append(statuses, model.TaskStatus(s))
	}

	tasks, err := h.svc.ListByPlan(c.Request.Context(), planID, statuses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: tasks})
}

type CreateAdhocTaskReq struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Points      int     `json:"points" binding:"required,min=1"`
	PlanID      *string `json:"plan_id" binding:"omitempty,uuid"`
}

// CreateAdhocTask godoc
//
//	@Summary		Create ad-hoc task
//	@Description	Create a free-standing AD_HOC task, optionally attached to a plan
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateAdhocTaskReq	true	"CreateAdhocTask payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Task}
//	@Router			/task [post]
func (h *TaskHandler) CreateAdhocTask(c *gin.Context) {
	req := CreateAdhocTaskReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.CreateAdhocInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
	}
	if req.PlanID != nil {
		planID, err := uuid.Parse(*req.PlanID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
			return
		}
		in.PlanID = &planID
	}

	task, err := h.svc.CreateAdhoc(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: task})
}

type UpdateTaskStatusReq struct {
	Status string `json:"status" binding:"required,oneof=TODO DOING DONE EXPIRED"`
}

// UpdateTaskStatus godoc
//
//	@Summary		Update task status
//	@Description	Move a task on the board. doneAt is set on the transition to DONE and cleared otherwise.
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			task_id	path	string						true	"Task ID"	Format(uuid)
//	@Param			payload	body	handler.UpdateTaskStatusReq	true	"UpdateTaskStatus payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Task}
//	@Failure		404	{object}	serializer.Response
//	@Failure		409	{object}	serializer.Response
//	@Router			/task/{task_id}/status [put]
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateTaskStatusReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	task, err := h.svc.UpdateStatus(c.Request.Context(), taskID, model.TaskStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("task not found", err))
		case errors.Is(err, model.ErrTaskExpired):
			c.JSON(http.StatusConflict, serializer.ConflictErr("expired tasks cannot change status", err))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: task})
}

// GetAdhocPool godoc
//
//	@Summary		List ad-hoc pool
//	@Description	List all non-DONE ad-hoc tasks, linked or not
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Task}
//	@Router			/task/adhoc [get]
func (h *TaskHandler) GetAdhocPool(c *gin.Context) {
	tasks, err := h.svc.ListAdhocPool(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: tasks})
}

type ExpireStaleReq struct {
	// Cutoff day in YYYY-MM-DD form; daily instances strictly before it
	// expire. Callers typically pass yesterday for a one-day buffer.
	Cutoff string `json:"cutoff" binding:"required,datetime=2006-01-02"`
}

type ExpireResult struct {
	Expired int64 `json:"expired"`
}

// ExpireStale godoc
//
//	@Summary		Expire stale daily tasks
//	@Description	Mark non-DONE daily instances older than the cutoff as EXPIRED
//	@Tags			plan
//	@Accept			json
//	@Produce		json
//	@Param			plan_id	path	string					true	"Plan ID"	Format(uuid)
//	@Param			payload	body	handler.ExpireStaleReq	true	"ExpireStale payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.ExpireResult}
//	@Router			/plan/{plan_id}/expire_stale [post]
func (h *TaskHandler) ExpireStale(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := ExpireStaleReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	cutoff, err := time.ParseInLocation("2006-01-02", req.Cutoff, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	n, err := h.svc.ExpireStaleDaily(c.Request.Context(), planID, cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: ExpireResult{Expired: n}})
}

// ExpireAll godoc
//
//	@Summary		Expire all non-done tasks
//	@Description	End-of-period sweep: expire every non-DONE, non-ad-hoc instance of a plan
//	@Tags			plan
//	@Accept			json
//	@Produce		json
//	@Param			plan_id	path	string	true	"Plan ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.ExpireResult}
//	@Router			/plan/{plan_id}/expire_all [post]
func (h *TaskHandler) ExpireAll(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	n, err := h.svc.ExpireAllNonDone(c.Request.Context(), planID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: ExpireResult{Expired: n}})
}
