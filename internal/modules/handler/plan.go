package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/planning"
	"github.com/planloop-io/planloop/internal/modules/serializer"
	"github.com/planloop-io/planloop/internal/modules/service"
)

type PlanHandler struct {
	svc service.PlanService
}

func NewPlanHandler(s service.PlanService) *PlanHandler {
	return &PlanHandler{svc: s}
}

type PlanTemplateReq struct {
	TemplateID string `json:"template_id" binding:"required,uuid"`
	Kind       string `json:"kind" binding:"required,oneof=DAILY WEEKLY AD_HOC"`
	Frequency  int    `json:"frequency" binding:"required,min=1"`
}

type CreatePlanReq struct {
	PeriodType   string            `json:"period_type" binding:"omitempty,oneof=WEEKLY"`
	Description  *string           `json:"description"`
	Mode         string            `json:"mode" binding:"omitempty,oneof=NORMAL EXTREME"`
	Templates    []PlanTemplateReq `json:"templates" binding:"omitempty,dive"`
	AdhocTaskIDs []string          `json:"adhoc_task_ids" binding:"omitempty,dive,uuid"`
}

type UpdatePlanReq struct {
	Description  *string            `json:"description"`
	Mode         *string            `json:"mode" binding:"omitempty,oneof=NORMAL EXTREME"`
	Templates    *[]PlanTemplateReq `json:"templates" binding:"omitempty,dive"`
	AdhocTaskIDs *[]string          `json:"adhoc_task_ids" binding:"omitempty,dive,uuid"`
}

// CreatePlan godoc
//
//	@Summary		Create plan
//	@Description	Activate a new plan for the current period. Fails with 409 while another plan is ACTIVE.
//	@Tags			plan
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreatePlanReq	true	"CreatePlan payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Plan}
//	@Failure		409	{object}	serializer.Response
//	@Router			/plan [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	req := CreatePlanReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	templates, err := toTemplateConfigs(req.Templates)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	adhocIDs, err := toUUIDs(req.AdhocTaskIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	plan, err := h.svc.Create(c.Request.Context(), service.CreatePlanInput{
		PeriodType:   model.PeriodType(req.PeriodType),
		Description:  req.Description,
		Mode:         model.PlanMode(req.Mode),
		Templates:    templates,
		AdhocTaskIDs: adhocIDs,
	})
	if err != nil {
		if errors.Is(err, model.ErrActivePlanExists) {
			c.JSON(http.StatusConflict, serializer.ConflictErr("an active plan already exists", err))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: plan})
}

// UpdatePlan godoc
//
//	@Summary		Update plan
//	@Description	Reconcile a plan against a new template/ad-hoc selection. Completed tasks are never deleted.
//	@Tags			plan
//	@Accept			json
//	@Produce		json
//	@Param			plan_id	path	string					true	"Plan ID"	Format(uuid)
//	@Param			payload	body	handler.UpdatePlanReq	true	"UpdatePlan payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/plan/{plan_id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdatePlanReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.UpdatePlanInput{
		Description: req.Description,
	}
	if req.Mode != nil {
		mode := model.PlanMode(*req.Mode)
		in.Mode = &mode
	}
	if req.Templates != nil {
		templates, err := toTemplateConfigs(*req.Templates)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
			return
		}
		in.Templates = &templates
	}
	if req.AdhocTaskIDs != nil {
		ids, err := toUUIDs(*req.AdhocTaskIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
			return
		}
		in.AdhocTaskIDs = &ids
	}

	if err := h.svc.Update(c.Request.Context(), planID, in); err != nil {
		if errors.Is(err, model.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("plan not found", err))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}

// GetActivePlan godoc
//
//	@Summary		Get active plan
//	@Description	Fetch the single ACTIVE plan with its template links
//	@Tags			plan
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Plan}
//	@Failure		404	{object}	serializer.Response
//	@Router			/plan/active [get]
func (h *PlanHandler) GetActivePlan(c *gin.Context) {
	plan, err := h.svc.GetActive(c.Request.Context())
	if err != nil {
		if errors.Is(err, model.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("no active plan", err))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: plan})
}

// GetRemovableCount godoc
//
//	@Summary		Count removable instances
//	@Description	Per-template counts of TODO/DOING instances that removing those templates would delete
//	@Tags			plan
//	@Accept			json
//	@Produce		json
//	@Param			plan_id			path	string	true	"Plan ID"	Format(uuid)
//	@Param			template_ids	query	string	true	"Comma-separated template IDs"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=map[string]int64}
//	@Router			/plan/{plan_id}/removable_count [get]
func (h *PlanHandler) GetRemovableCount(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	raw := c.Query("template_ids")
	if raw == "" {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("template_ids is required", nil))
		return
	}
	templateIDs, err := toUUIDs(strings.Split(raw, ","))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	counts, err := h.svc.CountRemovable(c.Request.Context(), planID, templateIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	out := make(map[string]int64, len(counts))
	for id, n := range counts {
		out[id.String()] = n
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

func toTemplateConfigs(reqs []PlanTemplateReq) ([]planning.TemplateConfig, error) {
	cfgs := make([]planning.TemplateConfig, 0, len(reqs))
	for _, r := range reqs {
		id, err := uuid.Parse(r.TemplateID)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, planning.TemplateConfig{
			TemplateID: id,
			Kind:       model.RecurrenceKind(r.Kind),
			Frequency:  r.Frequency,
		})
	}
	return cfgs, nil
}

func toUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
